package registry

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/nastranwrap/internal/bdf"
	"github.com/specialistvlad/nastranwrap/internal/config"
	"github.com/specialistvlad/nastranwrap/internal/results"
)

func sampleResults() *results.Results {
	res := results.New(results.SourceF06, "input.f06")
	res.Displacements[1] = &results.Displacements{
		Translations: map[int][3]float64{4: {0.5, -0.25, 0}},
		Rotations:    map[int][3]float64{4: {0, 0, 0.125}},
	}
	res.RodStress[2] = &results.RodStress{
		Axial:         map[int]float64{11: 1500},
		MarginAxial:   map[int]float64{},
		Torsion:       map[int]float64{},
		MarginTorsion: map[int]float64{},
	}
	res.GridPointWeight = &results.GridPointWeight{Mass: [3]float64{24, 24, 24}}
	return res
}

func TestBuiltins(t *testing.T) {
	res := sampleResults()
	testCases := []struct {
		name      string
		fn        string
		args      map[string]cty.Value
		expected  float64
		expectErr string
	}{
		{name: "displacement default subcase", fn: "displacement", args: map[string]cty.Value{"id": cty.NumberIntVal(4), "xyz": cty.NumberIntVal(1)}, expected: -0.25},
		{name: "rotation", fn: "rotation", args: map[string]cty.Value{"isubcase": cty.NumberIntVal(1), "id": cty.NumberIntVal(4), "xyz": cty.NumberIntVal(2)}, expected: 0.125},
		{name: "mass default axis", fn: "mass", args: nil, expected: 24},
		{name: "rod axial", fn: "rod_axial", args: map[string]cty.Value{"isubcase": cty.NumberIntVal(2), "id": cty.NumberIntVal(11)}, expected: 1500},
		{name: "missing id", fn: "displacement", args: map[string]cty.Value{"xyz": cty.NumberIntVal(1)}, expectErr: "missing required argument 'id'"},
		{name: "fractional id", fn: "displacement", args: map[string]cty.Value{"id": cty.NumberFloatVal(4.5), "xyz": cty.NumberIntVal(1)}, expectErr: "argument 'id'"},
		{name: "unknown element", fn: "rod_axial", args: map[string]cty.Value{"isubcase": cty.NumberIntVal(2), "id": cty.NumberIntVal(99)}, expectErr: "element 99"},
	}
	r := New()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fn, ok := r.OutputFunc(tc.fn)
			require.True(t, ok)
			v, err := fn(res, tc.args)
			if tc.expectErr != "" {
				require.ErrorContains(t, err, tc.expectErr)
				return
			}
			require.NoError(t, err)
			f, err := Number(v)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, f)
		})
	}
}

func TestRegister_DuplicatePanics(t *testing.T) {
	r := New()
	assert.Panics(t, func() {
		r.RegisterOutputFunc("mass", mass)
	})
	r.RegisterModel("bar3", Hooks{})
	assert.Panics(t, func() {
		r.RegisterModel("bar3", Hooks{})
	})
}

func TestHooks_NilFuncsAreNoops(t *testing.T) {
	run := &Run{Outputs: map[string]cty.Value{}}
	var h Hooks
	require.NoError(t, h.UpdateDeck(context.Background(), run))
	require.NoError(t, h.PostProcess(context.Background(), run))

	h.PostProcessFn = func(_ context.Context, run *Run) error {
		run.SetOutput("stress", 2.5)
		return nil
	}
	require.NoError(t, h.PostProcess(context.Background(), run))
	assert.True(t, cty.NumberFloatVal(2.5).RawEquals(run.Outputs["stress"]))
}

func TestIntListArg(t *testing.T) {
	args := map[string]cty.Value{
		"ids": cty.TupleVal([]cty.Value{cty.NumberIntVal(3), cty.NumberIntVal(1)}),
	}
	ids, err := IntListArg(args, "ids")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1}, ids)

	_, err = IntListArg(args, "missing")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	r := New()
	r.RegisterModel("bar3", Hooks{})

	model := config.NewModel()
	model.Components["ok"] = &config.Component{
		Name:  "ok",
		Model: "bar3",
		Outputs: map[string]*config.OutputDefinition{
			"mass":   {Name: "mass", Func: "mass"},
			"stress": {Name: "stress"},
		},
	}
	require.NoError(t, r.Validate(context.Background(), model))

	model.Components["bad"] = &config.Component{
		Name:  "bad",
		Model: "nope",
		Outputs: map[string]*config.OutputDefinition{
			"x": {Name: "x", Func: "does_not_exist"},
		},
	}
	err := r.Validate(context.Background(), model)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model 'nope' is not registered")
	assert.Contains(t, err.Error(), "func 'does_not_exist' is not registered")
}

func TestCombinedRodStress(t *testing.T) {
	assert.InDelta(t, 3.0, CombinedRodStress(-3, 0), 1e-12)
	assert.InDelta(t, math.Sqrt(0.5*(2*16+3*4)), CombinedRodStress(4, 2), 1e-12)
	assert.Equal(t, 5.0, MaxAbs(1, -5, 2))
	assert.Zero(t, MaxAbs())
}

func TestRodStressOutputs(t *testing.T) {
	run := &Run{
		Results: sampleResults(),
		Outputs: map[string]cty.Value{"bar11_stress": cty.NullVal(cty.Number)},
	}
	hook := RodStressOutputs(2, func(eid int) string { return fmt.Sprintf("bar%d_stress", eid) })
	require.NoError(t, hook(context.Background(), run))
	assert.True(t, cty.NumberFloatVal(1500).RawEquals(run.Outputs["bar11_stress"]))
	assert.Len(t, run.Outputs, 1)

	_, err := run.Results.Rod(1)
	require.Error(t, err)
	require.Error(t, RodStressOutputs(1, strconv.Itoa)(context.Background(), run))
}

func TestRodStressOutputs_MissingElement(t *testing.T) {
	deck := &bdf.Deck{}
	for _, eid := range []int{11, 12, 13} {
		deck.Add(bdf.NewCard("CROD", bdf.IntValue(eid), bdf.IntValue(eid), bdf.IntValue(1), bdf.IntValue(2)))
	}
	hook := RodStressOutputs(2, func(eid int) string { return fmt.Sprintf("bar%d_stress", eid) })

	// Element 12 has no declared output, so only 13 is missing.
	run := &Run{
		Deck:    deck,
		Results: sampleResults(),
		Outputs: map[string]cty.Value{
			"bar11_stress": cty.NullVal(cty.Number),
			"bar13_stress": cty.NumberIntVal(0),
		},
	}
	err := hook(context.Background(), run)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output 'bar13_stress': no rod stress for CROD 13 in subcase 2")

	delete(run.Outputs, "bar13_stress")
	require.NoError(t, hook(context.Background(), run))
	assert.True(t, cty.NumberFloatVal(1500).RawEquals(run.Outputs["bar11_stress"]))
}
