// Package config holds the validated, immutable run configuration for each.
package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Process exit codes. Values above 63 follow BSD sysexits conventions.
const (
	ExitOK                      = 0
	ExitUsage                   = 64
	ExitNoPlaceholder           = 65
	ExitBadEnv                  = 66
	ExitNeedsNoStdinForParallel = 67
	ExitChildFailed             = 70
)

// Defaults applied by the CLI layer when the corresponding flag is absent.
const (
	DefaultPlaceholder = "{}"
	DefaultEncoding    = "utf-8"
	DefaultErrorPolicy = "strict"
	DefaultShell       = "/bin/sh"
)

// Config is the full run configuration. It is built once by the CLI layer,
// validated, and never mutated afterwards.
type Config struct {
	// Template is the shell command template containing the placeholder.
	Template string `validate:"required"`
	// Placeholder is the literal substring replaced by each token.
	Placeholder string `validate:"required"`

	// Delimiters are literal substrings to split input on. Empty means
	// line splitting.
	Delimiters []string
	// NullDelimited splits raw input on NUL bytes, overriding Delimiters.
	NullDelimited bool
	// Strip trims leading/trailing whitespace from each token.
	Strip bool
	// KeepEmpty retains tokens that are empty after splitting/stripping.
	KeepEmpty bool

	// Encoding is the IANA name of the input text encoding.
	Encoding string `validate:"required"`
	// ErrorPolicy selects how undecodable input bytes are handled.
	ErrorPolicy string `validate:"oneof=strict replace raw"`

	// MaxProcs is the maximum number of concurrently running children.
	MaxProcs int `validate:"gte=1"`
	// ForwardStdin passes the parent's stdin through to children. It must
	// be false when MaxProcs is greater than one.
	ForwardStdin bool
	// DryRun prints each built command instead of executing it.
	DryRun bool
	// Trace prints each built command to stderr before executing it.
	Trace bool
	// Quote shell-quotes tokens before substitution.
	Quote bool
	// Rate caps child-process starts per second; zero means unlimited.
	Rate float64 `validate:"gte=0"`

	// Env holds extra KEY=VALUE entries merged over the parent environment.
	Env []string
	// Shell is the shell executable; empty selects DefaultShell.
	Shell string
}

// Validate checks the configuration for the errors that must be detected
// before any token is processed. Each failure carries its reserved exit code.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return &UsageError{Err: err}
	}

	if !strings.Contains(c.Template, c.Placeholder) {
		return &PlaceholderError{Placeholder: c.Placeholder}
	}

	if _, err := ParseEnv(c.Env); err != nil {
		return err
	}

	if c.MaxProcs > 1 && c.ForwardStdin {
		return &StdinConflictError{MaxProcs: c.MaxProcs}
	}

	return nil
}
