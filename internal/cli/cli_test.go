package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/nastranwrap/internal/app"
)

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("Success: Collects flags and paths", func(t *testing.T) {
		t.Parallel()
		out := &bytes.Buffer{}
		cfg, shouldExit, err := Parse([]string{
			"-component", "bar3",
			"-set", "area1=2", "-set", "area2 = 0.5",
			"-cases", "cases.yaml",
			"-output", "JSON",
			"-record", "runs.db",
			"-log-level", "DEBUG",
			"manifests", "extra.hcl",
		}, out)
		require.NoError(t, err)
		require.False(t, shouldExit)

		assert.Equal(t, &app.Config{
			ManifestPaths: []string{"manifests", "extra.hcl"},
			Component:     "bar3",
			Sets:          []string{"area1=2", "area2 = 0.5"},
			CasesPath:     "cases.yaml",
			Output:        "json",
			RecordPath:    "runs.db",
			LogFormat:     "text",
			LogLevel:      "debug",
		}, cfg)
		assert.Empty(t, out.String())
	})

	t.Run("Success: Help and missing path exit cleanly", func(t *testing.T) {
		t.Parallel()
		for _, args := range [][]string{{"-h"}, {}} {
			out := &bytes.Buffer{}
			cfg, shouldExit, err := Parse(args, out)
			require.NoError(t, err)
			assert.True(t, shouldExit)
			assert.Nil(t, cfg)
			assert.Contains(t, out.String(), "Usage:")
		}
	})

	t.Run("Failure: Invalid arguments", func(t *testing.T) {
		t.Parallel()
		cases := []struct {
			name        string
			args        []string
			errContains string
		}{
			{name: "unknown flag", args: []string{"-workers", "4", "m.hcl"}, errContains: "flag provided but not defined"},
			{name: "log format", args: []string{"-log-format", "xml", "m.hcl"}, errContains: "invalid log-format"},
			{name: "log level", args: []string{"-log-level", "trace", "m.hcl"}, errContains: "invalid log-level"},
			{name: "output", args: []string{"-output", "csv", "m.hcl"}, errContains: "invalid output format"},
			{name: "assignment", args: []string{"-set", "area1", "m.hcl"}, errContains: "expected name=value"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, _, err := Parse(tc.args, &bytes.Buffer{})
				var exitErr *ExitError
				require.ErrorAs(t, err, &exitErr)
				assert.Equal(t, 2, exitErr.Code)
				assert.Contains(t, exitErr.Message, tc.errContains)
			})
		}
	})
}
