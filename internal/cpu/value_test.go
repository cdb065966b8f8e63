package cpu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSelectionOrder(t *testing.T) {
	v := Value{kind: KindInt | KindFloat | KindString, i: 9, f: 9.5, s: "nine"}
	assert.Equal(t, KindInt, v.SelectedKind())
	assert.Equal(t, "9", v.AsString())

	v.kind = KindFloat | KindString
	assert.Equal(t, KindFloat, v.SelectedKind())

	v.kind = KindString
	assert.Equal(t, KindString, v.SelectedKind())
}

func TestNewChannelValueMaterializesAllThreeKinds(t *testing.T) {
	v := NewChannelValue("9")
	require.True(t, v.Kind().Has(KindInt))
	require.True(t, v.Kind().Has(KindFloat))
	require.True(t, v.Kind().Has(KindString))
	assert.Equal(t, int32(9), v.IntOrZero())
	assert.Equal(t, float32(9), v.FloatOrZero())
	assert.Equal(t, "9", v.StringOrEmpty())

	unparseable := NewChannelValue("hi")
	assert.Equal(t, int32(0), unparseable.IntOrZero())
	assert.Equal(t, float32(0), unparseable.FloatOrZero())
	assert.Equal(t, "hi", unparseable.StringOrEmpty())
}

func TestStringConversionFailureSentinels(t *testing.T) {
	bad := NewStringValue("not-a-number")
	assert.Equal(t, int32(-1), bad.AsInt())
	assert.True(t, math.IsNaN(float64(bad.AsFloat())))
}

func TestBitReinterpretRoundTrip(t *testing.T) {
	for _, i := range []int32{0, 1, -1, math.MinInt32, math.MaxInt32, 0x7FFFFFFF} {
		got := floatToBits(bitsToFloat(i))
		assert.Equal(t, i, got)
	}

	for _, f := range []float32{0, 1, -1, 3.14159, float32(math.MaxFloat32)} {
		got := bitsToFloat(floatToBits(f))
		assert.Equal(t, f, got)
	}
}
