package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"uma-config/codec"
	"uma-config/config"
	"uma-config/kv"
	"uma-config/preset"
)

func run(t *testing.T, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	out, _, err := runWithStderr(t, dir, stdin, args...)
	return out, err
}

func runWithStderr(t *testing.T, dir, stdin string, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--data-dir", dir, "--log-level", "warn"}, args...))

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func sampleToken(t *testing.T, name string) string {
	t.Helper()

	c := config.Default()
	c.ConfigName = name
	c.Trainee = "Special Week"
	token, err := codec.Encode(c)
	require.NoError(t, err)
	return token
}

func TestPresetsListsDefaults(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "", "presets")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, preset.Capacity+1)
	require.Contains(t, lines[1], "*")
	require.Contains(t, lines[1], "Preset 1")
	require.NotContains(t, lines[2], "*")
	require.Contains(t, lines[10], "Preset 10")
	require.FileExists(t, filepath.Join(dir, preset.StorageKey+".json"))
}

func TestImportThenExport(t *testing.T) {
	dir := t.TempDir()
	token := sampleToken(t, "Imported")

	out, err := run(t, dir, "", "import", token, "--slot", "3")
	require.NoError(t, err)
	require.Contains(t, out, `"Imported"`)
	require.Contains(t, out, "slot 3")

	out, err = run(t, dir, "", "export", "--slot", "3")
	require.NoError(t, err)

	got, err := codec.Decode(strings.TrimSpace(out))
	require.NoError(t, err)
	require.Equal(t, "Imported", got.ConfigName)
	require.Equal(t, "Special Week", got.Trainee)

	// The active slot is untouched.
	out, err = run(t, dir, "", "export")
	require.NoError(t, err)
	got, err = codec.Decode(strings.TrimSpace(out))
	require.NoError(t, err)
	require.Equal(t, config.Default().ConfigName, got.ConfigName)
}

func TestImportFromFileAndStdin(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(t.TempDir(), "token.txt")
	require.NoError(t, os.WriteFile(path, []byte(sampleToken(t, "From file")+"\n"), 0o644))

	_, err := run(t, dir, "", "import", "--file", path)
	require.NoError(t, err)

	out, err := run(t, dir, "", "presets")
	require.NoError(t, err)
	require.Contains(t, out, "From file")

	_, err = run(t, dir, sampleToken(t, "From stdin")+"\n", "import", "--slot", "9")
	require.NoError(t, err)

	out, err = run(t, dir, "", "presets")
	require.NoError(t, err)
	require.Contains(t, out, "From stdin")
}

func TestImportErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "", "import", "garbage")
	require.ErrorIs(t, err, codec.ErrCorrupted)

	_, err = run(t, dir, "", "import")
	require.Error(t, err)

	_, err = run(t, dir, "", "import", sampleToken(t, "x"), "--slot", "10")
	require.ErrorIs(t, err, preset.ErrOutOfRange)

	_, err = run(t, dir, "", "import", sampleToken(t, "x"), "--file", "token.txt")
	require.Error(t, err)
}

func TestExportOutAndCopy(t *testing.T) {
	dir := t.TempDir()
	outDir := t.TempDir()

	_, err := run(t, dir, "", "import", sampleToken(t, "My Build"))
	require.NoError(t, err)

	var copied string
	orig := clipboardWrite
	clipboardWrite = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { clipboardWrite = orig })

	out, err := run(t, dir, "", "export", "--copy", "--out", outDir)
	require.NoError(t, err)

	token := strings.TrimSpace(out)
	require.Equal(t, token, copied)

	data, err := os.ReadFile(filepath.Join(outDir, "My_Build_Special_Week.txt"))
	require.NoError(t, err)
	require.Equal(t, token, string(data))
}

func TestBackendFromEnvironment(t *testing.T) {
	t.Setenv(EnvPrefix+"_BACKEND", "memory")
	dir := filepath.Join(t.TempDir(), "unused")

	_, err := run(t, dir, "", "presets")
	require.NoError(t, err)
	require.NoDirExists(t, dir)
}

func TestBadgerBackend(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "", "--backend", "badger", "import", sampleToken(t, "In badger"))
	require.NoError(t, err)

	out, err := run(t, dir, "", "--backend", "badger", "presets")
	require.NoError(t, err)
	require.Contains(t, out, "In badger")
}

func TestInvalidSettings(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "", "--backend", "postgres", "presets")
	require.Error(t, err)

	_, err = run(t, dir, "", "--log-format", "xml", "presets")
	require.Error(t, err)

	_, err = run(t, dir, "", "--log-level", "loud", "presets")
	require.Error(t, err)
}

func TestStorageCloseErrorIsLogged(t *testing.T) {
	orig := openStore
	openStore = func(backend, dir string) (kv.Store, func() error, error) {
		return kv.NewMemory(), func() error { return errors.New("flush failed") }, nil
	}
	t.Cleanup(func() { openStore = orig })

	for _, args := range [][]string{
		{"presets"},
		{"export"},
		{"import", sampleToken(t, "Closed")},
	} {
		_, stderr, err := runWithStderr(t, t.TempDir(), "", args...)
		require.NoError(t, err, args)
		require.Contains(t, stderr, "close storage", args)
		require.Contains(t, stderr, "flush failed", args)
	}
}
