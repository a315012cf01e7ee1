package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct constraints plus the rules the tags cannot express:
// unique figure names, known notify services, parseable durations and at most
// one trigger kind.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	if len(cfg.Figures) == 0 {
		return fmt.Errorf("invalid config: no figures")
	}

	seen := make(map[string]bool, len(cfg.Figures))
	for _, f := range cfg.Figures {
		if seen[f.Name] {
			return fmt.Errorf("invalid config: duplicate figure %q", f.Name)
		}
		seen[f.Name] = true

		if len(f.Metrics) == 0 && len(f.Groups) == 0 {
			return fmt.Errorf("invalid config: figure %q has no metrics", f.Name)
		}
		for _, s := range append(append([]Step(nil), f.Collect...), f.Generate...) {
			if err := checkDuration(s.Timeout); err != nil {
				return fmt.Errorf("invalid config: figure %q step %q timeout: %w", f.Name, s.Command[0], err)
			}
		}
	}

	if err := checkDuration(cfg.Options.Timeout); err != nil {
		return fmt.Errorf("invalid config: options.timeout: %w", err)
	}

	for _, n := range cfg.Notify {
		if _, ok := cfg.Services[n.Service]; !ok {
			return fmt.Errorf("invalid config: notify references unknown service %q", n.Service)
		}
	}

	return validateTrigger(cfg.Trigger)
}

func validateTrigger(t Trigger) error {
	set := 0
	if t.Interval != "" {
		set++
		d, err := time.ParseDuration(t.Interval)
		if err != nil {
			return fmt.Errorf("invalid config: trigger.interval: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("invalid config: trigger.interval must be positive")
		}
	}
	if t.Cron != "" {
		set++
		if _, err := cron.ParseStandard(t.Cron); err != nil {
			return fmt.Errorf("invalid config: trigger.cron: %w", err)
		}
	}
	if t.Watch != "" {
		set++
	}
	if set > 1 {
		return fmt.Errorf("invalid config: trigger must set only one of interval, cron, watch")
	}
	return nil
}

func checkDuration(s string) error {
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	if d < 0 {
		return fmt.Errorf("negative duration %s", s)
	}
	return nil
}
