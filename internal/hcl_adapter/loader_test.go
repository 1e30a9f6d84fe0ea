package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/nastranwrap/internal/config"
)

// loadHCL writes files into a temporary directory and loads it.
func loadHCL(t *testing.T, files map[string]string) (*config.Model, string, error) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	model, err := NewLoader().Load(context.Background(), dir)
	return model, dir, err
}

func TestLoader_Component(t *testing.T) {
	t.Parallel()

	t.Run("Success: Parses a full component block", func(t *testing.T) {
		t.Parallel()
		hcl := `
		component "bar3" {
			description  = "Three bar truss."
			deck         = "decks/bar3.bdf"
			command      = "python3"
			command_args = ["fake_nastran.py"]
			env          = { NAST_LICENSE = "local" }
			timeout      = "90s"
			model        = "bar3"

			workdir {
				parent    = "runs"
				keep_last = false
			}

			input "area1" {
				type    = number
				default = 1
				low     = 0.01
				high    = 100
				units   = "in^2"
				card    = "PROD"
				id      = 1
				field   = "A"
			}

			input "thick" {
				default     = 0.1
				card        = "PCOMP"
				id          = 801
				field       = "T"
				field_index = 2
			}

			input "area3" {
				var     = "AREA3"
				default = 2
			}

			output "disp4" {
				func  = "displacement"
				args  = { id = 4, xyz = 0 }
				units = "in"
			}

			output "s11" {
				table   = "rod stress"
				subcase = 2
				id      = 11
				column  = "AXIAL"
			}

			output "stress_max" {
				default     = 0
				description = "Set by the model."
			}
		}`

		model, dir, err := loadHCL(t, map[string]string{"bar3.hcl": hcl})
		require.NoError(t, err)
		require.Len(t, model.Components, 1)

		c, err := model.Select("")
		require.NoError(t, err)
		assert.Equal(t, "bar3", c.Name)
		assert.Equal(t, filepath.Join(dir, "bar3.hcl"), c.SourceFile)
		assert.Equal(t, filepath.Join(dir, "decks", "bar3.bdf"), c.Deck)
		assert.Equal(t, "python3", c.Command)
		assert.Equal(t, []string{"fake_nastran.py"}, c.CommandArgs)
		assert.Equal(t, map[string]string{"NAST_LICENSE": "local"}, c.Env)
		assert.Equal(t, 90*time.Second, c.Timeout)
		assert.Equal(t, "bar3", c.Model)

		want := config.WorkdirPolicy{Parent: filepath.Join(dir, "runs"), Delete: true, KeepFirst: true, KeepLast: false}
		if diff := cmp.Diff(want, c.Workdir); diff != "" {
			t.Errorf("workdir policy mismatch (-want +got):\n%s", diff)
		}

		// --- Assert on 'area1' (bounded deck input) ---
		area1 := c.Inputs["area1"]
		require.NotNil(t, area1)
		require.True(t, area1.Type.Equals(cty.Number))
		require.True(t, area1.Default.RawEquals(cty.NumberIntVal(1)))
		assert.Equal(t, 0.01, *area1.Low)
		assert.Equal(t, 100.0, *area1.High)
		assert.Equal(t, "in^2", area1.Units)
		assert.Equal(t, "PROD", *area1.Card)
		assert.Equal(t, 1, *area1.ID)
		assert.Equal(t, "A", *area1.Field)
		assert.Nil(t, area1.FieldIndex)

		// --- Assert on 'thick' (indexed field, untyped) ---
		thick := c.Inputs["thick"]
		require.NotNil(t, thick)
		assert.Equal(t, cty.DynamicPseudoType, thick.Type)
		assert.Equal(t, 2, *thick.FieldIndex)

		// --- Assert on 'area3' (placeholder) ---
		area3 := c.Inputs["area3"]
		assert.Equal(t, "AREA3", area3.Var)
		assert.Nil(t, area3.Card)

		// --- Assert on outputs ---
		disp := c.Outputs["disp4"]
		assert.Equal(t, "displacement", disp.Func)
		require.Len(t, disp.Args, 2)
		assert.True(t, disp.Args["id"].RawEquals(cty.NumberIntVal(4)))
		assert.True(t, disp.Default.IsNull())

		s11 := c.Outputs["s11"]
		assert.Equal(t, "rod stress", *s11.Table)
		assert.Equal(t, 2, *s11.Subcase)
		assert.Equal(t, 11, *s11.ID)
		assert.Equal(t, "AXIAL", *s11.Column)
		assert.Nil(t, s11.Args)

		stressMax := c.Outputs["stress_max"]
		assert.True(t, stressMax.Default.RawEquals(cty.NumberIntVal(0)))
		assert.Empty(t, stressMax.Func)
	})

	t.Run("Success: Applies defaults", func(t *testing.T) {
		t.Parallel()
		model, _, err := loadHCL(t, map[string]string{"c.hcl": `component "c" { deck = "/abs/c.bdf" }`})
		require.NoError(t, err)

		c := model.Components["c"]
		require.NotNil(t, c)
		assert.Equal(t, "/abs/c.bdf", c.Deck)
		assert.Equal(t, DefaultCommand, c.Command)
		assert.Zero(t, c.Timeout)
		assert.Equal(t, config.DefaultWorkdirPolicy(), c.Workdir)
	})

	t.Run("Success: Expands dynamic input blocks", func(t *testing.T) {
		t.Parallel()
		hcl := `
		component "bar25" {
			deck = "bar25.bdf"

			dynamic "input" {
				for_each = range(1, 9)
				labels   = [format("area%d", input.value)]
				content {
					type    = number
					default = 2
					low     = 0.01
					card    = "PROD"
					id      = input.value
					field   = "A"
				}
			}

			output "mass" {
				func = "mass"
			}
		}`

		model, _, err := loadHCL(t, map[string]string{"bar25.hcl": hcl})
		require.NoError(t, err)

		c := model.Components["bar25"]
		require.NotNil(t, c)
		require.Len(t, c.Inputs, 8)
		for i := 1; i <= 8; i++ {
			in := c.Inputs[fmt.Sprintf("area%d", i)]
			require.NotNil(t, in, "area%d", i)
			assert.Equal(t, i, *in.ID)
			assert.True(t, in.Type.Equals(cty.Number))
			assert.True(t, in.Default.RawEquals(cty.NumberIntVal(2)))
		}
	})

	t.Run("Success: Merges components from several files", func(t *testing.T) {
		t.Parallel()
		model, _, err := loadHCL(t, map[string]string{
			"a.hcl":        `component "a" { deck = "a.bdf" }`,
			"nested/b.hcl": `component "b" { deck = "b.bdf" }`,
			"notes.txt":    `component "ignored" {}`,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, model.Names())

		_, err = model.Select("")
		require.ErrorContains(t, err, "several components")
	})
}

func TestLoader_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		files       map[string]string
		errContains string
	}{
		{
			name:        "syntax error",
			files:       map[string]string{"c.hcl": `component "c" {`},
			errContains: "failed to parse HCL file",
		},
		{
			name:        "missing deck",
			files:       map[string]string{"c.hcl": `component "c" {}`},
			errContains: "Missing required argument",
		},
		{
			name: "invalid timeout",
			files: map[string]string{"c.hcl": `
			component "c" {
				deck    = "c.bdf"
				timeout = "soon"
			}`},
			errContains: "invalid timeout",
		},
		{
			name: "default type mismatch",
			files: map[string]string{"c.hcl": `
			component "c" {
				deck = "c.bdf"
				input "a" {
					type    = number
					default = "thick"
				}
			}`},
			errContains: "does not match type number",
		},
		{
			name: "unknown type",
			files: map[string]string{"c.hcl": `
			component "c" {
				deck = "c.bdf"
				input "a" {
					type = integer
				}
			}`},
			errContains: `unknown primitive type "integer"`,
		},
		{
			name: "inverted bounds",
			files: map[string]string{"c.hcl": `
			component "c" {
				deck = "c.bdf"
				input "a" {
					low  = 2
					high = 1
				}
			}`},
			errContains: "above high bound",
		},
		{
			name: "duplicate input",
			files: map[string]string{"c.hcl": `
			component "c" {
				deck = "c.bdf"
				input "a" {}
				input "a" {}
			}`},
			errContains: "duplicate input 'a'",
		},
		{
			name: "args not an object",
			files: map[string]string{"c.hcl": `
			component "c" {
				deck = "c.bdf"
				output "m" {
					func = "mass"
					args = [0]
				}
			}`},
			errContains: "args must be an object",
		},
		{
			name: "duplicate component across files",
			files: map[string]string{
				"a.hcl": `component "c" { deck = "a.bdf" }`,
				"b.hcl": `component "c" { deck = "b.bdf" }`,
			},
			errContains: "already defined",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := loadHCL(t, tc.files)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errContains)
		})
	}
}

func TestLoader_MissingPathIsSkipped(t *testing.T) {
	t.Parallel()
	model, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, model.Components)
}
