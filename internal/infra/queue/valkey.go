package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/faqbot/internal/domain/faq"
)

// ValkeyQueue persists turns in a Valkey list and drains them into the
// conversation log with a pool of workers.
type ValkeyQueue struct {
	client      valkey.Client
	queueKey    string
	log         faq.ConversationLog
	logger      *slog.Logger
	pollTimeout time.Duration
	pushTimeout time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewValkeyQueue constructs a Valkey-backed queue.
func NewValkeyQueue(client valkey.Client, queueKey string, log faq.ConversationLog, logger *slog.Logger) *ValkeyQueue {
	if queueKey == "" {
		queueKey = "faqbot:turns"
	}
	return &ValkeyQueue{
		client:      client,
		queueKey:    queueKey,
		log:         log,
		logger:      logger.With("component", "queue.valkey"),
		pollTimeout: 5 * time.Second,
		pushTimeout: 2 * time.Second,
	}
}

// Start launches the consumers. Call Close to stop them.
func (q *ValkeyQueue) Start(workers int) {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			q.consume(ctx)
		}()
	}
}

// Record implements faq.TurnRecorder.
func (q *ValkeyQueue) Record(ctx context.Context, turn faq.Turn) error {
	encoded, err := json.Marshal(turn)
	if err != nil {
		return err
	}
	ctx, cancel := q.pushContext(ctx)
	defer cancel()
	cmd := q.client.B().Lpush().Key(q.queueKey).Element(string(encoded)).Build()
	return q.client.Do(ctx, cmd).Error()
}

// pushContext bounds the LPUSH, which runs on the reply path.
func (q *ValkeyQueue) pushContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, q.pushTimeout)
}

func (q *ValkeyQueue) consume(ctx context.Context) {
	for ctx.Err() == nil {
		resp := q.client.Do(ctx, q.client.B().Brpop().Key(q.queueKey).Timeout(q.pollTimeout.Seconds()).Build())
		values, err := resp.ToArray()
		if err != nil {
			if !valkey.IsValkeyNil(err) && ctx.Err() == nil {
				q.logger.Warn("valkey queue pop failed", "error", err)
				time.Sleep(time.Second)
			}
			continue
		}
		if len(values) < 2 {
			continue
		}
		raw, err := values[1].ToString()
		if err != nil {
			q.logger.Warn("valkey queue payload decode failed", "error", err)
			continue
		}
		var turn faq.Turn
		if err := json.Unmarshal([]byte(raw), &turn); err != nil {
			q.logger.Warn("valkey queue unmarshal failed", "error", err)
			continue
		}
		if err := q.log.Append(context.WithoutCancel(ctx), turn); err != nil {
			q.logger.Warn("conversation append failed", "session", turn.SessionID, "error", err)
		}
	}
}

// Close stops the consumers and waits for the current pops to return.
func (q *ValkeyQueue) Close() error {
	if q.cancel != nil {
		q.cancel()
	}
	q.wg.Wait()
	return nil
}

var _ Recorder = (*ValkeyQueue)(nil)
