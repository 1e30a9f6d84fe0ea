package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/nastranwrap/internal/config"
	"github.com/specialistvlad/nastranwrap/internal/hcl_adapter"
)

// LoadFakeComponent loads the only component of manifest and points it at
// the fake solver in mode. Working directories are created below a test
// temporary directory.
func LoadFakeComponent(t *testing.T, manifest, mode string) *config.Component {
	t.Helper()
	model, err := hcl_adapter.NewLoader().Load(context.Background(), manifest)
	require.NoError(t, err)
	def, err := model.Select("")
	require.NoError(t, err)

	def.Command, def.Env = FakeSolverCommand(mode)
	def.CommandArgs = nil
	def.Workdir.Parent = t.TempDir()
	return def
}
