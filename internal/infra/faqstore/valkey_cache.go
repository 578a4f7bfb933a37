package faqstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"
	"golang.org/x/sync/singleflight"

	"github.com/yanqian/faqbot/internal/domain/faq"
)

// releaseLock deletes the lock only when it still holds our token.
var releaseLock = valkey.NewLuaScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0`)

// ValkeyOptions tunes the shared cache.
type ValkeyOptions struct {
	Prefix       string
	TTL          time.Duration
	LockTTL      time.Duration
	PollInterval time.Duration
}

// ValkeyCache shares replies across instances through a Valkey-compatible
// database. One instance computes a missing key while others wait for it.
// Backend failures fall back to computing locally.
type ValkeyCache struct {
	client valkey.Client
	opts   ValkeyOptions
	group  singleflight.Group
	logger *slog.Logger
}

// NewValkeyCache constructs a cache backed by Valkey.
func NewValkeyCache(client valkey.Client, opts ValkeyOptions, logger *slog.Logger) *ValkeyCache {
	if opts.Prefix == "" {
		opts.Prefix = "faqbot:reply"
	}
	if opts.LockTTL < time.Second {
		opts.LockTTL = 15 * time.Second
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 50 * time.Millisecond
	}
	return &ValkeyCache{
		client: client,
		opts:   opts,
		logger: logger.With("component", "faqstore.valkey"),
	}
}

// GetOrCompute implements faq.ResponseCache. Local callers share one
// flight, bounded by the lock windows rather than by the first caller's context.
func (c *ValkeyCache) GetOrCompute(ctx context.Context, key string, compute faq.ComputeFunc) (string, error) {
	ch := c.group.DoChan(key, func() (any, error) {
		// one lock window waiting on a peer, one computing locally
		fctx, cancel := detach(ctx, 2*c.opts.LockTTL)
		defer cancel()
		return c.fetch(fctx, key, guarded(compute))
	})
	return await(ctx, ch)
}

func (c *ValkeyCache) fetch(ctx context.Context, key string, compute faq.ComputeFunc) (string, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		c.degrade("generation lookup failed", err)
		return compute(ctx)
	}
	entryKey := c.entryKey(gen, key)

	value, found, err := c.get(ctx, entryKey)
	if err != nil {
		c.degrade("reply lookup failed", err)
		return compute(ctx)
	}
	if found {
		return value, nil
	}

	token := uuid.NewString()
	lockKey := entryKey + ":lock"
	err = c.client.Do(ctx, c.client.B().Set().Key(lockKey).Value(token).Nx().ExSeconds(int64(c.opts.LockTTL/time.Second)).Build()).Error()
	switch {
	case err == nil:
		defer c.unlock(lockKey, token)
		return c.computeAndStore(ctx, entryKey, compute)
	case valkey.IsValkeyNil(err):
		return c.awaitPeer(ctx, entryKey, compute)
	default:
		c.degrade("lock acquire failed", err)
		return compute(ctx)
	}
}

// awaitPeer polls for a value another instance is computing. When the lock
// window passes without one, the reply is computed here.
func (c *ValkeyCache) awaitPeer(ctx context.Context, entryKey string, compute faq.ComputeFunc) (string, error) {
	deadline := time.NewTimer(c.opts.LockTTL)
	defer deadline.Stop()
	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-deadline.C:
			c.logger.Warn("reply lock expired without a value, computing locally")
			return c.computeAndStore(ctx, entryKey, compute)
		case <-ticker.C:
			value, found, err := c.get(ctx, entryKey)
			if err != nil {
				c.degrade("reply poll failed", err)
				return compute(ctx)
			}
			if found {
				return value, nil
			}
		}
	}
}

func (c *ValkeyCache) computeAndStore(ctx context.Context, entryKey string, compute faq.ComputeFunc) (string, error) {
	value, err := compute(ctx)
	if err != nil {
		return "", err
	}
	if err := c.setString(context.WithoutCancel(ctx), entryKey, value, c.opts.TTL); err != nil {
		c.degrade("reply store failed", err)
	}
	return value, nil
}

// Clear bumps the generation so every existing key becomes unreachable.
// Orphaned entries expire through their TTL.
func (c *ValkeyCache) Clear(ctx context.Context) error {
	return c.client.Do(ctx, c.client.B().Incr().Key(c.generationKey()).Build()).Error()
}

func (c *ValkeyCache) generation(ctx context.Context) (int64, error) {
	resp := c.client.Do(ctx, c.client.B().Get().Key(c.generationKey()).Build())
	gen, err := resp.AsInt64()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return 0, nil
		}
		return 0, err
	}
	return gen, nil
}

func (c *ValkeyCache) get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Do(ctx, c.client.B().Get().Key(key).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (c *ValkeyCache) setString(ctx context.Context, key, value string, ttl time.Duration) error {
	builder := c.client.B().Set().Key(key).Value(value)
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return c.client.Do(ctx, cmd).Error()
}

func (c *ValkeyCache) unlock(lockKey, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := releaseLock.Exec(ctx, c.client, []string{lockKey}, []string{token}).Error(); err != nil {
		c.degrade("lock release failed", err)
	}
}

func (c *ValkeyCache) degrade(msg string, err error) {
	c.logger.Warn(msg, "code", faq.CodeCacheFailed, "error", err)
}

func (c *ValkeyCache) entryKey(gen int64, key string) string {
	return fmt.Sprintf("%s:%d:%s", c.opts.Prefix, gen, hashKey(key))
}

func (c *ValkeyCache) generationKey() string {
	return c.opts.Prefix + ":generation"
}

// hashKey bounds key length whatever the user typed.
func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:16])
}

var _ faq.ResponseCache = (*ValkeyCache)(nil)
