package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/a8m/envsubst"
	"github.com/goccy/go-yaml"
)

type Config struct {
	Options  Options            `yaml:"options"`
	Globals  map[string]any     `yaml:"globals"`
	Services map[string]Service `yaml:"services" validate:"dive"`
	Notify   []NotifyTarget     `yaml:"notify" validate:"dive"`
	Template string             `yaml:"template"`
	Trigger  Trigger            `yaml:"trigger"`
	Figures  []Figure           `yaml:"figures" validate:"dive"`
}

// Options are the run-wide settings. Each field is also a CLI flag
// (yaml tag with '_' → '-').
type Options struct {
	RepoDir     string  `yaml:"repo_dir"`
	EvalDir     string  `yaml:"eval_dir"`
	LogsDir     string  `yaml:"logs_dir"`
	Tolerance   float64 `yaml:"tolerance" validate:"gte=0,lt=1"`
	Timeout     string  `yaml:"timeout"`
	SkipCollect bool    `yaml:"skip_collect"`
}

type Service struct {
	URL    string            `yaml:"url" validate:"required"`
	Params map[string]string `yaml:"params"`
}

type Trigger struct {
	Interval string `yaml:"interval"`
	Cron     string `yaml:"cron"`
	Watch    string `yaml:"watch"`
}

// Figure is one experiment whose metrics are checked against a reference.
type Figure struct {
	Name          string             `yaml:"name" validate:"required"`
	Title         string             `yaml:"title"`
	Tolerance     *float64           `yaml:"tolerance" validate:"omitempty,gte=0,lt=1"`
	Collect       []Step             `yaml:"collect" validate:"dive"`
	Generate      []Step             `yaml:"generate" validate:"dive"`
	Metrics       []Metric           `yaml:"metrics" validate:"dive"`
	Groups        []Group            `yaml:"groups" validate:"dive"`
	Reference     map[string]float64 `yaml:"reference"`
	ReferenceFile string             `yaml:"reference_file"` // relative to options.eval_dir
}

// DisplayName returns the title, or the name when no title is set.
func (f Figure) DisplayName() string {
	if f.Title != "" {
		return f.Title
	}
	return f.Name
}

// Step is one external command. Arguments and Dir may use templates such as
// {{.RepoDir}}; a relative Dir is resolved against options.repo_dir.
type Step struct {
	Command []string          `yaml:"command" validate:"required,min=1,dive,required"`
	Dir     string            `yaml:"dir"`
	Timeout string            `yaml:"timeout"`
	Env     map[string]string `yaml:"env"`
}

// UnmarshalYAML accepts a bare argument list or an object with command/dir/timeout/env.
func (s *Step) UnmarshalYAML(unmarshal func(any) error) error {
	var args []string
	if err := unmarshal(&args); err == nil {
		s.Command = args
		return nil
	}

	type stepAlias Step
	var obj stepAlias
	if err := unmarshal(&obj); err != nil {
		return fmt.Errorf("step: must be an argument list or an object with command/dir/timeout/env")
	}
	*s = Step(obj)
	return nil
}

// Metric is a speedup computed from one column of a baseline and a
// treatment CSV. Paths are relative to options.repo_dir.
type Metric struct {
	Name      string `yaml:"name" validate:"required"`
	Label     string `yaml:"label"`
	Column    string `yaml:"column" validate:"required"`
	Baseline  string `yaml:"baseline" validate:"required"`
	Treatment string `yaml:"treatment" validate:"required"`
	Direction string `yaml:"direction" validate:"omitempty,oneof=higher_is_better lower_is_better"`
}

// Group is a per-(system, category) breakdown read from one CSV.
type Group struct {
	File           string   `yaml:"file" validate:"required"`
	ValueColumn    string   `yaml:"value_column" validate:"required"`
	SystemColumn   string   `yaml:"system_column"`
	CategoryColumn string   `yaml:"category_column"`
	Systems        []string `yaml:"systems" validate:"required,min=1,dive,required"`
	Categories     []string `yaml:"categories" validate:"required,min=1,dive,required"`
}

// NotifyTarget handles a plain service name string or an object with overrides.
type NotifyTarget struct {
	Service  string            `yaml:"service" validate:"required"`
	Template string            `yaml:"template"`
	Params   map[string]string `yaml:"params"`
}

func (n *NotifyTarget) UnmarshalYAML(unmarshal func(any) error) error {
	var str string
	if err := unmarshal(&str); err == nil {
		n.Service = str
		return nil
	}

	type notifyAlias NotifyTarget
	var obj notifyAlias
	if err := unmarshal(&obj); err != nil {
		return fmt.Errorf("notify: must be a service name string or an object with service/template/params")
	}
	*n = NotifyTarget(obj)
	return nil
}

// Default returns the configuration used when no file sets a value.
func Default() Config {
	return Config{
		Options: Options{
			RepoDir:   ".",
			EvalDir:   ".",
			LogsDir:   "logs",
			Tolerance: 0.1,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse expands environment variables in data, decodes it over Default(),
// fills built-in figures, and validates the result.
func Parse(data []byte) (*Config, error) {
	data, err := envsubst.Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("expanding env vars: %w", err)
	}

	cfg := Default()
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := applyBuiltins(&cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FindFigure returns the figure with the given name, or nil if not found.
func (c *Config) FindFigure(name string) *Figure {
	for i := range c.Figures {
		if c.Figures[i].Name == name {
			return &c.Figures[i]
		}
	}
	return nil
}

// FigureTolerance returns the figure's tolerance override or the run-wide one.
func (c *Config) FigureTolerance(f *Figure) float64 {
	if f.Tolerance != nil {
		return *f.Tolerance
	}
	return c.Options.Tolerance
}
