package recorder

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/nastranwrap/internal/nastran"
	"github.com/specialistvlad/nastranwrap/internal/results"
)

func TestStore_RecordAndCases(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db", "cases.sqlite")
	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	started := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	evs := []*nastran.Evaluation{
		{
			RunID: "a", Component: "bar3", Started: started, Duration: 1500 * time.Millisecond,
			Dir: "/tmp/w1", Retained: true, Source: results.SourceF06,
			Inputs:  map[string]cty.Value{"area1": cty.NumberFloatVal(1.5), "label": cty.StringVal("x")},
			Outputs: map[string]cty.Value{"mass": cty.NumberFloatVal(4.25)},
		},
		{
			RunID: "b", Component: "blade", Started: started.Add(time.Second),
			Dir: "/tmp/w2", Source: results.SourceOP2,
		},
		{
			RunID: "c", Component: "bar3", Started: started.Add(2 * time.Second),
			Dir: "/tmp/w3", Source: results.SourceOP2,
			Inputs:  map[string]cty.Value{"area1": cty.NumberIntVal(2)},
			Outputs: map[string]cty.Value{"mass": cty.NumberIntVal(5)},
		},
	}
	for _, ev := range evs {
		require.NoError(t, store.Record(ctx, ev))
	}

	cases, err := store.Cases(ctx, "bar3")
	require.NoError(t, err)
	require.Len(t, cases, 2)

	first := cases[0]
	assert.Equal(t, "a", first.RunID)
	assert.True(t, first.Started.Equal(started))
	assert.Equal(t, 1500*time.Millisecond, first.Duration)
	assert.True(t, first.Retained)
	assert.Equal(t, "f06", first.Source)

	got := map[string]any{}
	for k, v := range first.Inputs {
		got[k] = nastran.PlainValue(v)
	}
	if diff := cmp.Diff(map[string]any{"area1": 1.5, "label": "x"}, got); diff != "" {
		t.Errorf("inputs mismatch (-want +got):\n%s", diff)
	}
	mass, _ := first.Outputs["mass"].AsBigFloat().Float64()
	assert.Equal(t, 4.25, mass)
	assert.Equal(t, "c", cases[1].RunID)

	all, err := store.Cases(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Empty(t, all[1].Inputs)

	require.Error(t, store.Record(ctx, evs[0]), "run ids are unique")
}
