// Package cmd implements the each command line.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/bmtlab/each/core"
	"github.com/bmtlab/each/core/config"
)

const version = "1.0.0"

var (
	flagPlaceholder string
	flagDelimiters  []string
	flagNull        bool
	flagStrip       bool
	flagKeepEmpty   bool
	flagEncoding    string
	flagErrors      string
	flagMaxProcs    int
	flagNoStdin     bool
	flagDryRun      bool
	flagTrace       bool
	flagNoQuote     bool
	flagRate        float64
	flagEnv         []string
	flagShell       string
	flagArgFile     string
	flagConfigPath  string

	// exitCode carries the aggregate child exit code out of RunE, which
	// reserves its error return for configuration and input failures.
	exitCode int
	// runEntered distinguishes flag-parse failures from runtime failures
	// when mapping an error to an exit code.
	runEntered bool
)

var rootCmd = &cobra.Command{
	Use:   "each [flags] COMMAND",
	Short: "Run a command once per input token.",
	Long: `Run a shell command template once per input token, substituting a
placeholder (default '{}') with the token. Tokens are read from stdin, split
on lines, NUL bytes, or literal delimiters, and shell-quoted by default.

Conceptually similar to xargs, but with an explicit placeholder and one
shell invocation per token.`,
	Example: `  printf '%s\n' a b c | each 'echo {}'
  find . -type f -print0 | each -0 'wc -l {}'
  printf 'foo ;  bar ;baz' | each -d ';' --strip 'echo {}'
  find logs -type f -name '*.log' -print0 | each -0 -P 4 --no-stdin 'gzip -9 {}'`,
	Args:    cobra.ExactArgs(1),
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		runEntered = true
		cmd.SilenceUsage = true

		cfg, err := buildConfig(cmd, args[0])
		if err != nil {
			return err
		}

		raw, err := readInput(afero.NewOsFs(), cmd.InOrStdin())
		if err != nil {
			return err
		}

		engine, err := core.NewEngine(cfg, core.ShellRunner{}, os.Environ(),
			cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		code, err := engine.Run(cmd.Context(), raw)
		if err != nil {
			return err
		}
		exitCode = code
		return nil
	},
}

// Execute runs the root command and exits the process with the resolved
// exit code.
func Execute() {
	os.Exit(execute(os.Args[1:]))
}

func execute(args []string) int {
	exitCode = 0
	runEntered = false
	rootCmd.SetArgs(args)
	rootCmd.SilenceErrors = true

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "each: %v\n", err)

		var coded interface{ ExitCode() int }
		if errors.As(err, &coded) {
			return coded.ExitCode()
		}
		if !runEntered {
			return config.ExitUsage
		}
		return 1
	}
	return exitCode
}

// buildConfig assembles and validates the run configuration from the parsed
// flags, the positional template, and the optional defaults file.
func buildConfig(cmd *cobra.Command, template string) (*config.Config, error) {
	cfg := &config.Config{
		Template:      template,
		Placeholder:   flagPlaceholder,
		Delimiters:    flagDelimiters,
		NullDelimited: flagNull,
		Strip:         flagStrip,
		KeepEmpty:     flagKeepEmpty,
		Encoding:      flagEncoding,
		ErrorPolicy:   flagErrors,
		MaxProcs:      flagMaxProcs,
		ForwardStdin:  !flagNoStdin,
		DryRun:        flagDryRun,
		Trace:         flagTrace,
		Quote:         !flagNoQuote,
		Rate:          flagRate,
		Env:           flagEnv,
		Shell:         flagShell,
	}

	if flagConfigPath != "" {
		defaults, err := config.LoadDefaults(afero.NewOsFs(), flagConfigPath)
		if err != nil {
			return nil, err
		}
		defaults.Apply(cfg, cmd.Flags().Changed)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readInput returns the raw token bytes: all of stdin, or the contents of
// --arg-file when given. An arg-file of "-" means stdin.
func readInput(fsys afero.Fs, stdin io.Reader) ([]byte, error) {
	if flagArgFile == "" || flagArgFile == "-" {
		return io.ReadAll(stdin)
	}
	return afero.ReadFile(fsys, flagArgFile)
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&flagPlaceholder, "placeholder", "p", config.DefaultPlaceholder, "placeholder to replace in COMMAND")
	flags.StringArrayVarP(&flagDelimiters, "delimiter", "d", nil, "literal delimiter to split input on (repeatable)")
	flags.BoolVarP(&flagNull, "null", "0", false, "split input on NUL bytes (like xargs -0)")
	flags.BoolVar(&flagStrip, "strip", false, "strip leading/trailing whitespace from each token")
	flags.BoolVar(&flagKeepEmpty, "keep-empty", false, "keep empty tokens produced by consecutive delimiters")
	flags.StringVarP(&flagEncoding, "encoding", "E", config.DefaultEncoding, "input text encoding (IANA name)")
	flags.StringVar(&flagErrors, "errors", config.DefaultErrorPolicy, "decode-error policy: strict, replace or raw")
	flags.IntVarP(&flagMaxProcs, "max-procs", "P", 1, "run up to N commands in parallel (requires --no-stdin)")
	flags.BoolVar(&flagNoStdin, "no-stdin", false, "do not forward stdin to child processes (required for -P > 1)")
	flags.BoolVar(&flagDryRun, "dry-run", false, "print the final commands without executing them")
	flags.BoolVarP(&flagTrace, "trace", "t", false, "print each command to stderr before executing it (like xargs -t)")
	flags.BoolVar(&flagNoQuote, "no-quote", false, "insert tokens without shell quoting (unsafe)")
	flags.Float64Var(&flagRate, "rate", 0, "max child-process starts per second (0 = unlimited)")
	flags.StringArrayVar(&flagEnv, "env", nil, "extra environment variable KEY=VALUE (repeatable)")
	flags.StringVar(&flagShell, "shell", "", "shell executable to run commands with (default "+config.DefaultShell+")")
	flags.StringVarP(&flagArgFile, "arg-file", "a", "", "read tokens from FILE instead of stdin")
	flags.StringVar(&flagConfigPath, "config", "", "YAML file with flag defaults")
}
