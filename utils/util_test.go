package utils_test

import (
	"testing"

	"github.com/fuzzylts/fuzzylts-go/utils"
	"github.com/stretchr/testify/assert"
)

func TestFind(t *testing.T) {
	data := map[string]int{"a": 1, "b": 2}
	all := []int{1, 2}

	ok, failed := utils.Find(data, all, nil)
	assert.Equal(t, all, ok)
	assert.Empty(t, failed)

	ok, failed = utils.Find(data, all, []string{"b", "x"})
	assert.Equal(t, []int{2}, ok)
	assert.Equal(t, []string{"x"}, failed)
}
