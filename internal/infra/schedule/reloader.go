package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yanqian/faqbot/internal/domain/faq"
)

// Reloader is the slice of the FAQ service a scheduled reload needs.
type Reloader interface {
	Reload(ctx context.Context) (faq.CatalogInfo, error)
}

// CatalogReloader rebuilds the catalog on a cron schedule.
type CatalogReloader struct {
	cron    *cron.Cron
	target  Reloader
	timeout time.Duration
	logger  *slog.Logger
}

// NewCatalogReloader parses spec (standard five-field cron or a descriptor
// such as "@every 15m"). An empty spec yields a reloader that never fires.
func NewCatalogReloader(spec string, target Reloader, timeout time.Duration, logger *slog.Logger) (*CatalogReloader, error) {
	r := &CatalogReloader{
		target:  target,
		timeout: timeout,
		logger:  logger.With("component", "schedule.reloader"),
	}
	if spec == "" {
		return r, nil
	}
	r.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := r.cron.AddFunc(spec, r.run); err != nil {
		return nil, fmt.Errorf("parse reload schedule %q: %w", spec, err)
	}
	return r, nil
}

// Enabled reports whether a schedule was configured.
func (r *CatalogReloader) Enabled() bool {
	return r.cron != nil
}

// Start begins firing in the background.
func (r *CatalogReloader) Start() {
	if r.cron == nil {
		return
	}
	r.logger.Info("catalog reload schedule started", "entries", len(r.cron.Entries()))
	r.cron.Start()
}

// Stop halts the schedule and waits for a running reload to finish.
func (r *CatalogReloader) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
}

func (r *CatalogReloader) run() {
	ctx := context.Background()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	info, err := r.target.Reload(ctx)
	if err != nil {
		r.logger.Error("scheduled catalog reload failed", "error", err)
		return
	}
	r.logger.Info("scheduled catalog reload", "entries", info.Entries, "model", info.Model)
}
