// Package blockhash manages the short-lived recent-blockhash token the
// ledger requires on every transaction.
//
// The ledger rejects a transaction that is byte-identical to a previous
// one, so a blockhash must never be shared by two otherwise identical
// transactions. The Cache therefore consumes its value on read and
// immediately schedules a replacement fetch, mirroring the behavior of
// the revalidate-on-timer cache this package replaces.
package blockhash

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/lugondev/go-swapkit/internal/metrics"
)

// DefaultRefreshInterval matches the 30s revalidation timer of the
// original deployment.
const DefaultRefreshInterval = 30 * time.Second

// Token is a recent blockhash plus the last block height at which the
// ledger will still accept it.
type Token struct {
	Blockhash            solana.Hash
	LastValidBlockHeight uint64
}

// Fetcher fetches the latest blockhash from the ledger.
type Fetcher interface {
	LatestBlockhash(ctx context.Context) (solana.Hash, uint64, error)
}

// Cache holds at most one Token and guarantees at-most-one consumer per
// token value.
type Cache struct {
	fetcher  Fetcher
	interval time.Duration
	logger   *slog.Logger
	metrics  metrics.Metrics

	mu      sync.Mutex
	current *Token
	runCtx  context.Context
}

// NewCache creates a Cache. A zero interval selects
// DefaultRefreshInterval; nil logger and metrics select defaults.
func NewCache(fetcher Fetcher, interval time.Duration, logger *slog.Logger, m metrics.Metrics) *Cache {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.NewNoopMetrics()
	}
	return &Cache{
		fetcher:  fetcher,
		interval: interval,
		logger:   logger,
		metrics:  m,
		runCtx:   context.Background(),
	}
}

// Start refreshes the cache on a timer until ctx is cancelled. Call it
// in its own goroutine.
func (c *Cache) Start(ctx context.Context) {
	c.mu.Lock()
	c.runCtx = ctx
	c.mu.Unlock()

	c.refresh(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.refresh(ctx)
		}
	}
}

// Consume returns a valid token, removing it from the cache so no other
// caller can observe the same value, and schedules a replacement fetch.
// When the cache is empty it fetches synchronously.
func (c *Cache) Consume(ctx context.Context) (Token, error) {
	c.mu.Lock()
	if c.current != nil {
		tok := *c.current
		c.current = nil
		runCtx := c.runCtx
		c.mu.Unlock()

		go c.refresh(runCtx)

		_ = c.metrics.IncrementCounter(ctx, metrics.MetricBlockhashConsumed, 1)
		return tok, nil
	}
	c.mu.Unlock()

	hash, height, err := c.fetcher.LatestBlockhash(ctx)
	if err != nil {
		return Token{}, err
	}
	_ = c.metrics.IncrementCounter(ctx, metrics.MetricBlockhashConsumed, 1)
	return Token{Blockhash: hash, LastValidBlockHeight: height}, nil
}

// Peek returns a copy of the cached token without consuming it, or nil
// when the cache is empty.
func (c *Cache) Peek() *Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	tok := *c.current
	return &tok
}

// refresh fetches a new token and stores it, unless ctx was cancelled
// while the fetch was in flight.
func (c *Cache) refresh(ctx context.Context) {
	hash, height, err := c.fetcher.LatestBlockhash(ctx)
	if err != nil {
		c.logger.Warn("blockhash refresh failed", "error", err)
		return
	}
	if ctx.Err() != nil {
		return
	}

	c.mu.Lock()
	c.current = &Token{Blockhash: hash, LastValidBlockHeight: height}
	c.mu.Unlock()

	_ = c.metrics.IncrementCounter(ctx, metrics.MetricBlockhashRefreshes, 1)
	c.logger.Debug("blockhash refreshed", "last_valid_block_height", height)
}
