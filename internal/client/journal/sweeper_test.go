package journal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeper_FlushesOnReconnect(t *testing.T) {
	h := newHarness(t, happyAnalyzer())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := h.service.Create(ctx, testToken, "written in a tunnel", "", nil)
	require.NoError(t, err)

	sweeper := NewSweeper(h.service, func() string { return testToken }, time.Hour)
	go sweeper.Run(ctx)

	h.monitor.SetOnline(true)

	require.Eventually(t, func() bool {
		n, err := h.service.engine.QueueLength(context.Background())
		return err == nil && n == 0
	}, 3*time.Second, 10*time.Millisecond, "reconnect must trigger a flush without waiting for the tick")
}

func TestSweeper_SkipsWithoutToken(t *testing.T) {
	h := newHarness(t, happyAnalyzer())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := h.service.Create(ctx, testToken, "signed out", "", nil)
	require.NoError(t, err)

	sweeper := NewSweeper(h.service, func() string { return "" }, 20*time.Millisecond)
	go sweeper.Run(ctx)

	h.monitor.SetOnline(true)
	time.Sleep(100 * time.Millisecond)

	n, err := h.service.engine.QueueLength(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n, "no sweep without a session")
}

func TestSweeper_OfflineTransitionUpdatesStatus(t *testing.T) {
	h := newHarness(t, happyAnalyzer())
	h.monitor.SetOnline(true)

	NewSweeper(h.service, func() string { return testToken }, time.Hour)
	h.monitor.SetOnline(false)

	assert.Equal(t, StatusOffline, h.service.Status())
}
