package workdir

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/nastranwrap/internal/config"
)

func exists(t *testing.T, dir string) bool {
	t.Helper()
	_, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return false
	}
	require.NoError(t, err)
	return true
}

func TestManager_Retention(t *testing.T) {
	testCases := []struct {
		name      string
		keepFirst bool
		keepLast  bool
		// expected presence of the dirs of four evaluations after the last release
		expected []bool
	}{
		{name: "keep first and last", keepFirst: true, keepLast: true, expected: []bool{true, false, false, true}},
		{name: "keep first only", keepFirst: true, expected: []bool{true, false, false, false}},
		{name: "keep last only", keepLast: true, expected: []bool{false, false, false, true}},
		{name: "keep none", expected: []bool{false, false, false, false}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := New(config.WorkdirPolicy{Parent: t.TempDir(), Delete: true, KeepFirst: tc.keepFirst, KeepLast: tc.keepLast})
			dirs := make([]string, len(tc.expected))
			for i := range dirs {
				dir, err := m.Create()
				require.NoError(t, err)
				dirs[i] = dir
				kept, err := m.Release(context.Background(), dir)
				require.NoError(t, err)
				assert.Equal(t, exists(t, dir), kept)
			}
			for i, dir := range dirs {
				assert.Equal(t, tc.expected[i], exists(t, dir), "evaluation %d", i)
			}
		})
	}
}

func TestManager_NoDelete(t *testing.T) {
	m := New(config.WorkdirPolicy{Parent: t.TempDir(), Delete: false})
	for i := 0; i < 3; i++ {
		dir, err := m.Create()
		require.NoError(t, err)
		kept, err := m.Release(context.Background(), dir)
		require.NoError(t, err)
		assert.True(t, kept)
		assert.True(t, exists(t, dir))
	}
}

func TestManager_FailedEvaluationSkipsPolicy(t *testing.T) {
	m := New(config.WorkdirPolicy{Parent: t.TempDir(), Delete: true, KeepFirst: true, KeepLast: true})

	failed, err := m.Create()
	require.NoError(t, err)

	first, err := m.Create()
	require.NoError(t, err)
	_, err = m.Release(context.Background(), first)
	require.NoError(t, err)

	second, err := m.Create()
	require.NoError(t, err)
	_, err = m.Release(context.Background(), second)
	require.NoError(t, err)

	assert.True(t, exists(t, failed), "unreleased dir is left alone")
	assert.True(t, exists(t, first))
	assert.True(t, exists(t, second))
}

func TestNew_DefaultsParent(t *testing.T) {
	m := New(config.WorkdirPolicy{})
	assert.Equal(t, os.TempDir(), m.Policy().Parent)
}

func TestManager_KeepLastAfterFailedRemoval(t *testing.T) {
	m := New(config.WorkdirPolicy{Parent: t.TempDir(), Delete: true, KeepLast: true})
	busy := errors.New("directory busy")
	var removed []string
	m.remove = func(dir string) error {
		removed = append(removed, dir)
		if len(removed) == 1 {
			return busy
		}
		return os.RemoveAll(dir)
	}

	dirs := make([]string, 3)
	for i := range dirs {
		dir, err := m.Create()
		require.NoError(t, err)
		dirs[i] = dir
	}

	_, err := m.Release(context.Background(), dirs[0])
	require.NoError(t, err)
	kept, err := m.Release(context.Background(), dirs[1])
	require.ErrorIs(t, err, busy)
	assert.True(t, kept)

	// The next release removes the second dir, not the one that failed.
	_, err = m.Release(context.Background(), dirs[2])
	require.NoError(t, err)
	assert.Equal(t, []string{dirs[0], dirs[1]}, removed)
	assert.True(t, exists(t, dirs[0]))
	assert.False(t, exists(t, dirs[1]))
	assert.True(t, exists(t, dirs[2]))
}
