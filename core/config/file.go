package config

import (
	"fmt"

	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// Defaults is the schema of the optional YAML defaults file. Every field is
// optional; explicit command-line flags always win over file values.
type Defaults struct {
	Placeholder string   `json:"placeholder"`
	Shell       string   `json:"shell"`
	Encoding    string   `json:"encoding"`
	ErrorPolicy string   `json:"errors"`
	MaxProcs    int      `json:"max_procs"`
	Rate        float64  `json:"rate"`
	Strip       *bool    `json:"strip"`
	KeepEmpty   *bool    `json:"keep_empty"`
	Quote       *bool    `json:"quote"`
	Env         []string `json:"env"`
}

// LoadDefaults reads and parses the defaults file at path. Unknown keys are
// rejected so typos don't silently change behavior.
func LoadDefaults(fsys afero.Fs, path string) (*Defaults, error) {
	contents, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, err
	}

	var out Defaults
	if err := yaml.UnmarshalStrict(contents, &out); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &out, nil
}

// Apply copies file defaults into cfg for every field whose flag the user did
// not set explicitly. The changed callback reports whether the named flag was
// given on the command line. File env entries are prepended so command-line
// entries override them on duplicate keys.
func (d *Defaults) Apply(cfg *Config, changed func(flag string) bool) {
	if d.Placeholder != "" && !changed("placeholder") {
		cfg.Placeholder = d.Placeholder
	}
	if d.Shell != "" && !changed("shell") {
		cfg.Shell = d.Shell
	}
	if d.Encoding != "" && !changed("encoding") {
		cfg.Encoding = d.Encoding
	}
	if d.ErrorPolicy != "" && !changed("errors") {
		cfg.ErrorPolicy = d.ErrorPolicy
	}
	if d.MaxProcs > 0 && !changed("max-procs") {
		cfg.MaxProcs = d.MaxProcs
	}
	if d.Rate > 0 && !changed("rate") {
		cfg.Rate = d.Rate
	}
	if d.Strip != nil && !changed("strip") {
		cfg.Strip = *d.Strip
	}
	if d.KeepEmpty != nil && !changed("keep-empty") {
		cfg.KeepEmpty = *d.KeepEmpty
	}
	if d.Quote != nil && !changed("no-quote") {
		cfg.Quote = *d.Quote
	}
	if len(d.Env) > 0 {
		cfg.Env = append(append([]string{}, d.Env...), cfg.Env...)
	}
}
