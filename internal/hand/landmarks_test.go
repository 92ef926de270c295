package hand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerString(t *testing.T) {
	tests := []struct {
		finger Finger
		want   string
	}{
		{Thumb, "thumb"},
		{Index, "index"},
		{Middle, "middle"},
		{Ring, "ring"},
		{Pinky, "pinky"},
		{Finger(9), "finger(9)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.finger.String())
	}
}

func TestParseFinger(t *testing.T) {
	f, err := ParseFinger("ring")
	require.NoError(t, err)
	assert.Equal(t, Ring, f)

	_, err = ParseFinger("toe")
	assert.Error(t, err)
}

func TestFingerIndicesTable(t *testing.T) {
	tests := []struct {
		finger Finger
		want   FingerIndices
	}{
		{Thumb, FingerIndices{Tip: ThumbTip, Base: ThumbMCP, Mid: ThumbIP}},
		{Index, FingerIndices{Tip: IndexTip, Base: IndexPIP, Mid: IndexDIP}},
		{Middle, FingerIndices{Tip: MiddleTip, Base: MiddlePIP, Mid: MiddleDIP}},
		{Ring, FingerIndices{Tip: RingTip, Base: RingPIP, Mid: RingDIP}},
		{Pinky, FingerIndices{Tip: PinkyTip, Base: PinkyPIP, Mid: PinkyDIP}},
	}
	for _, tt := range tests {
		t.Run(tt.finger.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.finger.Indices())
		})
	}
}

func TestTriple(t *testing.T) {
	var ls Landmarks
	ls[IndexTip] = Landmark{X: 0.1, Y: 0.2}
	ls[IndexPIP] = Landmark{X: 0.3, Y: 0.4}
	ls[IndexDIP] = Landmark{X: 0.5, Y: 0.6}

	tip, base, mid := ls.Triple(Index)
	assert.Equal(t, Landmark{X: 0.1, Y: 0.2}, tip)
	assert.Equal(t, Landmark{X: 0.3, Y: 0.4}, base)
	assert.Equal(t, Landmark{X: 0.5, Y: 0.6}, mid)
}

func TestLandmarkIndexBounds(t *testing.T) {
	assert.Equal(t, 20, PinkyTip)
	assert.Equal(t, 0, Wrist)
	for _, f := range AllFingers {
		idx := f.Indices()
		assert.Less(t, idx.Tip, NumLandmarks)
		assert.Less(t, idx.Base, NumLandmarks)
		assert.Less(t, idx.Mid, NumLandmarks)
		assert.Greater(t, idx.Tip, idx.Mid, "tip is beyond mid for %s", f)
		assert.Greater(t, idx.Mid, idx.Base, "mid is beyond base for %s", f)
	}
}
