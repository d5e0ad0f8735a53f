package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasSignal(t *testing.T) {
	tests := []struct {
		name string
		s    Stream
		want bool
	}{
		{"nil", nil, false},
		{"all missing", Stream{Null(), Null()}, false},
		{"all zero", FromValues(0, 0, 0), false},
		{"zero and missing", Stream{Of(0), Null()}, false},
		{"one reading", Stream{Null(), Of(0), Of(3)}, true},
		{"negative reading", FromValues(0, -2), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.s.HasSignal())
		})
	}
}

func TestMeanMax(t *testing.T) {
	s := Stream{Of(100), Null(), Of(200), Of(300), Null()}

	mean, ok := s.Mean()
	require.True(t, ok)
	assert.InDelta(t, 200, mean, 1e-9)

	max, ok := s.Max()
	require.True(t, ok)
	assert.Equal(t, 300.0, max)

	assert.Equal(t, 3, s.Count())

	_, ok = Stream{Null(), Null()}.Mean()
	assert.False(t, ok)
	_, ok = Stream{}.Max()
	assert.False(t, ok)
}

func TestSlice(t *testing.T) {
	s := FromValues(0, 1, 2, 3, 4, 5)

	assert.Equal(t, FromValues(2, 3, 4), s.Slice(2, 4))
	assert.Equal(t, FromValues(4, 5), s.Slice(4, 99))
	assert.Equal(t, FromValues(0, 1), s.Slice(-3, 1))
	assert.Empty(t, s.Slice(4, 2))
	assert.Nil(t, Stream(nil).Slice(0, 3))

	// slices must not alias the source
	sub := s.Slice(0, 1)
	sub[0] = Of(42)
	assert.Equal(t, 0.0, s[0].GetOr(-1))
}

func TestZeroFilledAndPtrs(t *testing.T) {
	s := Stream{Of(5), Null(), Of(7)}
	assert.Equal(t, []float64{5, 0, 7}, s.ZeroFilled())
	assert.Equal(t, []float64{5, 7}, s.Present())

	ptrs := s.Ptrs()
	require.Len(t, ptrs, 3)
	assert.Nil(t, ptrs[1])
	assert.Equal(t, 7.0, *ptrs[2])
	assert.Equal(t, s, FromPtrs(ptrs))
}

func TestAt(t *testing.T) {
	s := FromValues(1, 2)
	assert.True(t, s.At(1).IsValue())
	assert.True(t, s.At(2).IsNull())
	assert.True(t, s.At(-1).IsNull())
}
