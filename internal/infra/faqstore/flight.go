package faqstore

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yanqian/faqbot/internal/domain/faq"
)

// detach keeps the values of ctx but not its cancellation, so a shared
// computation outlives the caller that happened to start it.
func detach(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx = context.WithoutCancel(ctx)
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// await returns the flight result, or the caller's own context error when
// it gives up first.
func await(ctx context.Context, ch <-chan singleflight.Result) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// guarded turns a panic in compute into an error. DoChan re-panics on its
// own goroutine, where no caller could recover it.
func guarded(compute faq.ComputeFunc) faq.ComputeFunc {
	return func(ctx context.Context) (value string, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("reply computation panicked: %v", r)
			}
		}()
		return compute(ctx)
	}
}
