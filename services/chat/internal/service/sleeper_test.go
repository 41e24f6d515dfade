package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimerSleeper(t *testing.T) {
	var s TimerSleeper

	assert.NoError(t, s.Sleep(context.Background(), 0))
	assert.NoError(t, s.Sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Sleep(ctx, time.Hour), context.Canceled)
	assert.ErrorIs(t, s.Sleep(ctx, 0), context.Canceled)
}
