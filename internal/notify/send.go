package notify

import (
	"fmt"
	"maps"
	"net/url"

	"github.com/nicholas-fedor/shoutrrr"
)

// Target holds a fully resolved notification target ready to send.
type Target struct {
	ServiceName string
	URL         string
	Message     string
	Params      map[string]string
}

// NotifyRef is a notify entry from the config: a service plus overrides.
type NotifyRef struct {
	ServiceName string
	Template    string
	Params      map[string]string
}

// ServiceDef is a service definition from the config.
type ServiceDef struct {
	URL    string
	Params map[string]string
}

// ResolveTargets builds the list of notification targets. It renders the
// message template (per-target override → default) and any templates inside
// param values for each target.
func ResolveTargets(
	notifyList []NotifyRef,
	services map[string]ServiceDef,
	defaultTemplate string,
	data TemplateData,
) ([]Target, error) {
	if defaultTemplate == "" {
		defaultTemplate = DefaultTemplate
	}

	var targets []Target
	for _, ref := range notifyList {
		svc, ok := services[ref.ServiceName]
		if !ok {
			return nil, fmt.Errorf("unknown service %q", ref.ServiceName)
		}

		tmplStr := defaultTemplate
		if ref.Template != "" {
			tmplStr = ref.Template
		}

		msg, err := Render(tmplStr, data)
		if err != nil {
			return nil, fmt.Errorf("rendering template for %s: %w", ref.ServiceName, err)
		}

		// service base ← per-target override
		merged := make(map[string]string, len(svc.Params)+len(ref.Params))
		maps.Copy(merged, svc.Params)
		maps.Copy(merged, ref.Params)

		for k, v := range merged {
			rendered, err := Render(v, data)
			if err != nil {
				return nil, fmt.Errorf("rendering param %q for %s: %w", k, ref.ServiceName, err)
			}
			merged[k] = rendered
		}

		targets = append(targets, Target{
			ServiceName: ref.ServiceName,
			URL:         svc.URL,
			Message:     msg,
			Params:      merged,
		})
	}

	return targets, nil
}

// Validate checks that the target URL produces a working sender without
// sending anything.
func Validate(t Target) error {
	u, err := applyParams(t.URL, t.Params)
	if err != nil {
		return fmt.Errorf("building url for %s: %w", t.ServiceName, err)
	}
	if _, err := shoutrrr.CreateSender(u); err != nil {
		return fmt.Errorf("creating sender for %s: %w", t.ServiceName, err)
	}
	return nil
}

// Send delivers a notification to a single target via Shoutrrr.
func Send(t Target) error {
	u, err := applyParams(t.URL, t.Params)
	if err != nil {
		return fmt.Errorf("building url for %s: %w", t.ServiceName, err)
	}

	sender, err := shoutrrr.CreateSender(u)
	if err != nil {
		return fmt.Errorf("creating sender for %s: %w", t.ServiceName, err)
	}

	for _, e := range sender.Send(t.Message, nil) {
		if e != nil {
			return fmt.Errorf("sending to %s: %w", t.ServiceName, e)
		}
	}
	return nil
}

// applyParams merges params into the query string of a service URL.
func applyParams(raw string, params map[string]string) (string, error) {
	if len(params) == 0 {
		return raw, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
