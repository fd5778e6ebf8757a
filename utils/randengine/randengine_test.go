package randengine_test

import (
	"testing"

	"github.com/fuzzylts/fuzzylts-go/utils/randengine"
	"github.com/stretchr/testify/assert"
)

func TestEngineDeterministic(t *testing.T) {
	a, b := randengine.New(42), randengine.New(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.PTrue(0.3), b.PTrue(0.3))
	}
	e := randengine.New(1)
	assert.False(t, e.PTrue(0))
	assert.True(t, e.PTrue(1))
}
