package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrelation(t *testing.T) {
	c := NewCorrelation()

	_, ok := c.Resolve("tok-1")
	assert.False(t, ok)

	c.Register("tok-1", 0)
	c.Register("tok-2", 1)

	id, ok := c.Resolve("tok-1")
	assert.True(t, ok)
	assert.Equal(t, int64(0), id)

	id, ok = c.Resolve("tok-2")
	assert.True(t, ok)
	assert.Equal(t, int64(1), id)

	assert.Equal(t, 2, c.Len())
}
