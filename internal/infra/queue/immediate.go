package queue

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/yanqian/faqbot/internal/domain/faq"
)

// ErrClosed is returned when a turn arrives after Close.
var ErrClosed = errors.New("queue closed")

// Recorder is a faq.TurnRecorder that can be drained on shutdown.
type Recorder interface {
	faq.TurnRecorder
	Close() error
}

// ImmediateQueue writes each turn to the log in its own goroutine so the
// reply path never waits on storage.
type ImmediateQueue struct {
	log    faq.ConversationLog
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewImmediateQueue constructs the queue.
func NewImmediateQueue(log faq.ConversationLog, logger *slog.Logger) *ImmediateQueue {
	return &ImmediateQueue{log: log, logger: logger.With("component", "queue.immediate")}
}

// Record implements faq.TurnRecorder.
func (q *ImmediateQueue) Record(ctx context.Context, turn faq.Turn) error {
	if q.log == nil {
		return nil
	}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.wg.Add(1)
	q.mu.Unlock()

	go func() {
		defer q.wg.Done()
		if err := q.log.Append(context.WithoutCancel(ctx), turn); err != nil {
			q.logger.Warn("conversation append failed", "session", turn.SessionID, "error", err)
		}
	}()
	return nil
}

// Close stops accepting turns and waits for in-flight writes.
func (q *ImmediateQueue) Close() error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.wg.Wait()
	return nil
}

var _ Recorder = (*ImmediateQueue)(nil)
