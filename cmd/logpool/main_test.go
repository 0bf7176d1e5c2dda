package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (cfgPath, staging, root string) {
	t.Helper()
	base := t.TempDir()
	staging = filepath.Join(base, "staging")
	root = filepath.Join(base, "pools")

	cfgPath = filepath.Join(base, "logpool.yaml")
	content := "pool: logs\nbackend: local\nprefix: cli/\nrestore: false\n" +
		"temporary_directory: " + staging + "\n" +
		"local:\n  root: " + root + "\n" +
		"log:\n  level: error\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))
	return cfgPath, staging, root
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestShip(t *testing.T) {
	cfgPath, staging, root := setup(t)

	_, err := run(t, "one\ntwo\nthree\n", "ship", "-c", cfgPath)
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(root, "logs", "cli"))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(root, "logs", "cli", entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\nthree\n", string(data))

	left, err := filepath.Glob(filepath.Join(staging, "*.txt"))
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestRestoreAndCheck(t *testing.T) {
	cfgPath, staging, _ := setup(t)
	require.NoError(t, os.MkdirAll(staging, 0o750))

	name := "ls.logpool.crashed.2026-10-19T01.00.part0.txt"
	require.NoError(t, os.WriteFile(filepath.Join(staging, name), []byte("recovered\n"), 0o640))

	out, err := run(t, "", "restore", "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "restored 1 file(s)")

	out, err = run(t, "", "check", "-c", cfgPath, "cli/"+name)
	require.NoError(t, err)
	assert.Contains(t, out, "present")

	_, err = run(t, "", "check", "-c", cfgPath, "cli/missing.txt")
	assert.Error(t, err)
}
