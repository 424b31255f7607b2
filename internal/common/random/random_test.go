package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMathSource_Ranges(t *testing.T) {
	s := NewSeededSource(42)
	for i := 0; i < 1000; i++ {
		n := s.Intn(10)
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 10)

		f := s.Float64()
		assert.GreaterOrEqual(t, f, 0.0)
		assert.Less(t, f, 1.0)
	}
}

func TestFixedSource_Clamps(t *testing.T) {
	assert.Equal(t, 4, FixedSource{Int: 99}.Intn(5))
	assert.Equal(t, 0, FixedSource{Int: -1}.Intn(5))
	assert.Equal(t, 3, FixedSource{Int: 3}.Intn(5))
}
