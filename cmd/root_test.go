package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bmtlab/each/core/config"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// runEach drives the root command the way main does, with stdin and the
// output streams captured. Parsed flag values and their Changed markers
// stick to rootCmd between calls, so every flag is reset to its default
// before each run.
func runEach(t *testing.T, stdin string, args ...string) (code int, stdout, stderr string) {
	t.Helper()

	rootCmd.Flags().VisitAll(func(f *pflag.Flag) {
		if slice, ok := f.Value.(pflag.SliceValue); ok {
			require.NoError(t, slice.Replace(nil))
		} else {
			require.NoError(t, f.Value.Set(f.DefValue))
		}
		f.Changed = false
	})

	var outBuf, errBuf bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&outBuf)
	rootCmd.SetErr(&errBuf)

	return execute(args), outBuf.String(), errBuf.String()
}

func TestExecute(t *testing.T) {
	t.Run("dry run prints built commands", func(t *testing.T) {
		code, stdout, _ := runEach(t, "a\nb c\n", "--dry-run", "echo {}")
		assert.Equal(t, config.ExitOK, code)
		assert.Equal(t, "echo a\necho 'b c'\n", stdout)
	})

	t.Run("empty input exits zero", func(t *testing.T) {
		code, stdout, _ := runEach(t, "", "--dry-run", "echo {}")
		assert.Equal(t, config.ExitOK, code)
		assert.Empty(t, stdout)
	})

	t.Run("trace goes to stderr", func(t *testing.T) {
		code, stdout, stderr := runEach(t, "a\n", "--dry-run", "-t", "echo {}")
		assert.Equal(t, config.ExitOK, code)
		assert.Equal(t, "echo a\n", stdout)
		assert.Equal(t, "+ echo a\n", stderr)
	})

	t.Run("missing placeholder", func(t *testing.T) {
		code, stdout, _ := runEach(t, "a\n", "--dry-run", "-t=false", "echo hi")
		assert.Equal(t, config.ExitNoPlaceholder, code)
		assert.Empty(t, stdout)
	})

	t.Run("malformed env entry", func(t *testing.T) {
		code, _, _ := runEach(t, "a\n", "--dry-run", "--env", "NOVALUE", "echo {}")
		assert.Equal(t, config.ExitBadEnv, code)
	})

	t.Run("parallel without no-stdin", func(t *testing.T) {
		code, stdout, _ := runEach(t, "a\n", "--dry-run", "-P", "2", "echo {}")
		assert.Equal(t, config.ExitNeedsNoStdinForParallel, code)
		assert.Empty(t, stdout)
	})

	t.Run("missing template argument", func(t *testing.T) {
		code, _, _ := runEach(t, "", "--dry-run", "-P", "1")
		assert.Equal(t, config.ExitUsage, code)
	})

	t.Run("unknown flag", func(t *testing.T) {
		code, _, _ := runEach(t, "", "--bogus", "echo {}")
		assert.Equal(t, config.ExitUsage, code)
	})

	t.Run("custom placeholder without quoting", func(t *testing.T) {
		code, stdout, _ := runEach(t, "a b\n",
			"--dry-run", "-P", "1", "--no-quote", "-p", "{FILE}", "echo {FILE}")
		assert.Equal(t, config.ExitOK, code)
		assert.Equal(t, "echo a b\n", stdout)
	})

	t.Run("delimiter splitting with strip", func(t *testing.T) {
		code, stdout, _ := runEach(t, "foo ;  bar ;baz",
			"--dry-run", "--no-quote=false", "-p", "{}", "-d", ";", "--strip", "echo {}")
		assert.Equal(t, config.ExitOK, code)
		assert.Equal(t, "echo foo\necho bar\necho baz\n", stdout)
	})
}

func TestReadInput(t *testing.T) {
	restore := flagArgFile
	defer func() { flagArgFile = restore }()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "tokens.txt", []byte("x\ny\n"), 0644))

	t.Run("stdin by default", func(t *testing.T) {
		flagArgFile = ""
		raw, err := readInput(fsys, strings.NewReader("a\n"))
		require.NoError(t, err)
		assert.Equal(t, []byte("a\n"), raw)
	})

	t.Run("dash means stdin", func(t *testing.T) {
		flagArgFile = "-"
		raw, err := readInput(fsys, strings.NewReader("a\n"))
		require.NoError(t, err)
		assert.Equal(t, []byte("a\n"), raw)
	})

	t.Run("arg file", func(t *testing.T) {
		flagArgFile = "tokens.txt"
		raw, err := readInput(fsys, strings.NewReader("ignored"))
		require.NoError(t, err)
		assert.Equal(t, []byte("x\ny\n"), raw)
	})

	t.Run("missing arg file", func(t *testing.T) {
		flagArgFile = "nope.txt"
		_, err := readInput(fsys, strings.NewReader(""))
		assert.Error(t, err)
	})
}

func TestExecuteConfigDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "each.yaml")
	require.NoError(t, os.WriteFile(path, []byte("placeholder: '@@'\n"), 0644))

	t.Run("file supplies the default", func(t *testing.T) {
		code, stdout, _ := runEach(t, "a b\n",
			"--dry-run", "--config", path, "tar cf @@.tar @@")
		assert.Equal(t, config.ExitOK, code)
		assert.Equal(t, "tar cf 'a b'.tar 'a b'\n", stdout)
	})

	t.Run("explicit flag wins over the file", func(t *testing.T) {
		code, stdout, _ := runEach(t, "a\n",
			"--dry-run", "--config", path, "-p", "{}", "echo {} @@")
		assert.Equal(t, config.ExitOK, code)
		assert.Equal(t, "echo a @@\n", stdout)
	})

	t.Run("missing config file", func(t *testing.T) {
		code, stdout, _ := runEach(t, "a\n",
			"--dry-run", "--config", filepath.Join(t.TempDir(), "nope.yaml"), "echo {}")
		assert.Equal(t, 1, code)
		assert.Empty(t, stdout)
	})
}

func TestExecuteVersionFlag(t *testing.T) {
	code, stdout, _ := runEach(t, "", "--version")
	assert.Equal(t, config.ExitOK, code)
	assert.Contains(t, stdout, version)
}
