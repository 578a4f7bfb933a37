package schedule

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/faqbot/internal/domain/faq"
)

type countingReloader struct {
	calls atomic.Int64
	err   error
}

func (c *countingReloader) Reload(context.Context) (faq.CatalogInfo, error) {
	c.calls.Add(1)
	return faq.CatalogInfo{Entries: 3}, c.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCatalogReloader_EmptySpecIsDisabled(t *testing.T) {
	r, err := NewCatalogReloader("", &countingReloader{}, time.Second, discardLogger())
	require.NoError(t, err)
	require.False(t, r.Enabled())
	r.Start()
	r.Stop()
}

func TestCatalogReloader_InvalidSpec(t *testing.T) {
	_, err := NewCatalogReloader("every tuesday", &countingReloader{}, time.Second, discardLogger())
	require.Error(t, err)
}

func TestCatalogReloader_Fires(t *testing.T) {
	target := &countingReloader{}
	r, err := NewCatalogReloader("@every 1s", target, time.Second, discardLogger())
	require.NoError(t, err)
	require.True(t, r.Enabled())

	r.Start()
	require.Eventually(t, func() bool { return target.calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
	r.Stop()
}

func TestCatalogReloader_RunLogsFailure(t *testing.T) {
	target := &countingReloader{err: errors.New("source down")}
	r, err := NewCatalogReloader("@hourly", target, 0, discardLogger())
	require.NoError(t, err)
	r.run()
	require.Equal(t, int64(1), target.calls.Load())
}
