package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunctionKeys_ExactlyEleven(t *testing.T) {
	require.Len(t, FunctionKeys, 11)

	seen := make(map[FunctionKey]bool)
	for _, k := range FunctionKeys {
		assert.False(t, seen[k], "duplicate key %s", k)
		seen[k] = true
	}
}

func TestResilienceFunctions_CoverAllKeys(t *testing.T) {
	require.Len(t, ResilienceFunctions, 11)

	byKey := make(map[FunctionKey]FunctionInfo)
	for _, fi := range ResilienceFunctions {
		byKey[fi.Key] = fi
	}
	for _, k := range FunctionKeys {
		fi, ok := byKey[k]
		require.True(t, ok, "missing metadata for %s", k)
		assert.NotEmpty(t, fi.Code)
		assert.NotEmpty(t, fi.Label)
	}
}

func TestTerritoryRecord_FunctionScoreRoundTrip(t *testing.T) {
	var rec TerritoryRecord
	for i, k := range FunctionKeys {
		v := float64(i * 10)
		rec.SetFunctionScore(k, &v)
	}
	for i, k := range FunctionKeys {
		got := rec.FunctionScore(k)
		require.NotNil(t, got, "score for %s", k)
		assert.Equal(t, float64(i*10), *got)
	}

	assert.Nil(t, rec.FunctionScore("unknown"))
}

func TestTerritoryRecord_AbsentScoresAreNil(t *testing.T) {
	rec := TerritoryRecord{CodeSiren: "200000000", Name: "CC Test", GlobalScore: 55}
	for _, k := range FunctionKeys {
		assert.Nil(t, rec.FunctionScore(k))
	}
}
