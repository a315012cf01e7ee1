package main

import (
	"reflect"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sznuper/repro/internal/config"
)

// registerOptionFlags adds a persistent --flag for every field in config.Options,
// deriving the flag name from the yaml struct tag (snake_case → kebab-case).
func registerOptionFlags(cmd *cobra.Command) {
	t := reflect.TypeOf(config.Options{})
	for i := range t.NumField() {
		yamlTag := t.Field(i).Tag.Get("yaml")
		flagName := strings.ReplaceAll(yamlTag, "_", "-")
		usage := "override options." + yamlTag
		switch t.Field(i).Type.Kind() {
		case reflect.Float64:
			cmd.PersistentFlags().Float64(flagName, 0, usage)
		case reflect.Bool:
			cmd.PersistentFlags().Bool(flagName, false, usage)
		default:
			cmd.PersistentFlags().String(flagName, "", usage)
		}
	}
}

// applyOptionFlags overlays CLI flag values onto the config. Only flags
// explicitly set by the user are applied.
func applyOptionFlags(cmd *cobra.Command, cfg *config.Config) error {
	t := reflect.TypeOf(cfg.Options)
	v := reflect.ValueOf(&cfg.Options).Elem()
	for i := range t.NumField() {
		yamlTag := t.Field(i).Tag.Get("yaml")
		flagName := strings.ReplaceAll(yamlTag, "_", "-")
		if !cmd.Flags().Changed(flagName) {
			continue
		}
		switch t.Field(i).Type.Kind() {
		case reflect.Float64:
			val, err := cmd.Flags().GetFloat64(flagName)
			if err != nil {
				return err
			}
			v.Field(i).SetFloat(val)
		case reflect.Bool:
			val, err := cmd.Flags().GetBool(flagName)
			if err != nil {
				return err
			}
			v.Field(i).SetBool(val)
		default:
			val, err := cmd.Flags().GetString(flagName)
			if err != nil {
				return err
			}
			v.Field(i).SetString(val)
		}
	}
	return nil
}
