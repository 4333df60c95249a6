package series

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconstructHoldsValuesOnHalfOpenIntervals(t *testing.T) {
	frames := []Keyframe{{Time: 0, Value: 100}, {Time: 5, Value: 50}, {Time: 8, Value: 75}}

	got := Reconstruct(frames, 0, 8)
	require.Len(t, got, 8)

	for i, p := range got[:5] {
		assert.Equal(t, int64(i), p.Time)
		assert.Equal(t, 100.0, p.Value)
	}
	for i, p := range got[5:] {
		assert.Equal(t, int64(5+i), p.Time)
		assert.Equal(t, 50.0, p.Value)
	}
	// The last keyframe lands exactly on run end, so its value never holds.
	for _, p := range got {
		assert.NotEqual(t, 75.0, p.Value)
	}
}

func TestReconstructExtendsFinalValueThroughRunEnd(t *testing.T) {
	frames := []Keyframe{{Time: 0, Value: 10}, {Time: 4, Value: 20}}

	got := Reconstruct(frames, 0, 10)
	require.Len(t, got, 10)

	assert.Equal(t, 10.0, got[3].Value)
	for _, p := range got[4:] {
		assert.Equal(t, 20.0, p.Value)
	}
	assert.Equal(t, int64(9), got[len(got)-1].Time)
}

func TestReconstructOffsetsByEntryTime(t *testing.T) {
	frames := []Keyframe{{Time: 2, Value: 9}, {Time: 4, Value: 1}}

	got := Reconstruct(frames, 10, 20)
	require.Len(t, got, 8)

	assert.Equal(t, int64(12), got[0].Time)
	assert.Equal(t, int64(19), got[len(got)-1].Time)
	assert.Equal(t, 9.0, got[0].Value)
	assert.Equal(t, 9.0, got[1].Value)
	for _, p := range got[2:] {
		assert.Equal(t, 1.0, p.Value)
	}
}

func TestReconstructCoversEveryTimestepExactlyOnce(t *testing.T) {
	frames := []Keyframe{{Time: 0, Value: 1}, {Time: 7, Value: 2}, {Time: 13, Value: 3}}

	got := Reconstruct(frames, 5, 40)
	require.NotEmpty(t, got)

	next := int64(5)
	for _, p := range got {
		require.Equal(t, next, p.Time)
		next++
	}
	assert.Equal(t, int64(40), next)
}

func TestReconstructIsDeterministic(t *testing.T) {
	frames := []Keyframe{{Time: 0, Value: 3.25}, {Time: 9, Value: 0.5}}

	first := Reconstruct(frames, 2, 30)
	second := Reconstruct(frames, 2, 30)
	assert.Equal(t, first, second)
}

func TestReconstructEmptyInput(t *testing.T) {
	assert.Nil(t, Reconstruct(nil, 0, 10))
	assert.Nil(t, Reconstruct([]Keyframe{}, 3, 10))
}

func TestSum(t *testing.T) {
	pts := []Point{{Time: 0, Value: 1.5}, {Time: 1, Value: 2.5}, {Time: 2, Value: -1}}
	assert.Equal(t, 3.0, Sum(pts))
	assert.Zero(t, Sum(nil))
}
