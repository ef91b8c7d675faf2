package main

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arturoeanton/go-module-pack/pkg/config"
)

func TestToolsCommand(t *testing.T) {
	t.Setenv("MODULE_NAME", "numpy")

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs([]string{"tools"})

	require.NoError(t, root.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 8)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.Contains(t, out.String(), "get_numpy_summary")
	assert.Contains(t, out.String(), "inspect_numpy_docstring")
	for _, line := range lines {
		if strings.HasPrefix(line, "search_numpy_docstring ") {
			assert.True(t, strings.HasSuffix(line, "2 (1 required)"), line)
		}
		if strings.HasPrefix(line, "get_numpy_summary ") {
			assert.True(t, strings.HasSuffix(line, "-"), line)
		}
	}
}

func TestToolsCommandFlagOverridesEnv(t *testing.T) {
	t.Setenv("MODULE_NAME", "numpy")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"tools", "--module", "pandas"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "get_pandas_functions")
	assert.NotContains(t, out.String(), "numpy")
}

func TestServeRejectsInvalidConfig(t *testing.T) {
	t.Setenv("MODULE_NAME", "")

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"serve", "--transport", "carrier-pigeon"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "module name is required")
	assert.Contains(t, err.Error(), "unknown transport")
}

func TestNewLoggerLeavesDefaultAlone(t *testing.T) {
	before := slog.Default()

	var buf bytes.Buffer
	logger := newLogger(&config.Config{Debug: true, LogFormat: "text"}, &buf)
	logger.Debug("hello", "k", "v")

	assert.Same(t, before, slog.Default())
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "k=v")
}
