package command

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Vars is the data available to templated arguments and paths, e.g.
// "{{.RepoDir}}/VM-Bench" or "--thp={{.Globals.thp | default \"never\"}}".
type Vars struct {
	RepoDir string
	EvalDir string
	Figure  string
	Globals map[string]any
}

// Expand renders s as a Go text/template with Sprig functions.
// Strings without template actions are returned unchanged.
func Expand(s string, vars Vars) (string, error) {
	if !strings.Contains(s, "{{") {
		return s, nil
	}

	t, err := template.New("arg").Funcs(sprig.TxtFuncMap()).Parse(s)
	if err != nil {
		return "", fmt.Errorf("parsing template %q: %w", s, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("executing template %q: %w", s, err)
	}
	return buf.String(), nil
}

// ExpandAll renders every element of args.
func ExpandAll(args []string, vars Vars) ([]string, error) {
	out := make([]string, len(args))
	for i, a := range args {
		s, err := Expand(a, vars)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}
