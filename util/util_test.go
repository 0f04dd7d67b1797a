package util

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTern(t *testing.T) {
	assert.Equal(t, "yes", Tern(true, "yes", "no"))
	assert.Equal(t, "no", Tern(false, "yes", "no"))
}

func TestMap(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "3"}, Map([]int{1, 2, 3}, strconv.Itoa))
	assert.Nil(t, Map(nil, strconv.Itoa))
}

func TestFilter(t *testing.T) {
	even := func(n int) bool { return n%2 == 0 }
	assert.Equal(t, []int{2, 4}, Filter([]int{1, 2, 3, 4}, even))
	assert.Nil(t, Filter([]int{1, 3}, even))
}

func TestAssert(t *testing.T) {
	Assert(true, "never fires")
	assert.PanicsWithError(t, "assertion failed: got 3", func() {
		Assert(false, "got %d", 3)
	})
	assert.Panics(t, func() { Assert(false) })
}

func TestMinMax(t *testing.T) {
	assert.Equal(t, 1, Min(1, 2))
	assert.Equal(t, 2, Max(1, 2))
	assert.Equal(t, "a", Min("a", "b"))
}
