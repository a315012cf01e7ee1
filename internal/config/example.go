package config

import _ "embed"

// Example is the annotated sample configuration written by `repro init`.
//
//go:embed example.yaml
var Example []byte
