package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickerStartsAtBase(t *testing.T) {
	c := NewTicker(4_200)
	assert.Equal(t, int64(4_200), c.Height())
}

func TestTickerAdvances(t *testing.T) {
	c := NewTicker(100)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx, time.Millisecond)

	require.Eventually(t, func() bool { return c.Height() > 100 },
		time.Second, 5*time.Millisecond)

	cancel()
	// depois do cancelamento a altura congela
	time.Sleep(10 * time.Millisecond)
	frozen := c.Height()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, frozen, c.Height())
}
