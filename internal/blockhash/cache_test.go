package blockhash

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

// fakeFetcher hands out a distinct blockhash per call.
type fakeFetcher struct {
	mu    sync.Mutex
	calls int
	err   error
	block chan struct{} // when set, fetches wait until closed
}

func (f *fakeFetcher) LatestBlockhash(ctx context.Context) (solana.Hash, uint64, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return solana.Hash{}, 0, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return solana.Hash{}, 0, f.err
	}
	f.calls++
	var h solana.Hash
	h[0] = byte(f.calls)
	return h, uint64(1000 + f.calls), nil
}

func TestConsumeNeverRepeatsToken(t *testing.T) {
	f := &fakeFetcher{}
	c := NewCache(f, 0, nil, nil)

	ctx := context.Background()
	first, err := c.Consume(ctx)
	require.NoError(t, err)

	second, err := c.Consume(ctx)
	require.NoError(t, err)

	require.NotEqual(t, first.Blockhash, second.Blockhash)
}

func TestConsumeReturnsCachedValueBeforeRefreshCompletes(t *testing.T) {
	f := &fakeFetcher{}
	c := NewCache(f, 0, nil, nil)

	// Seed the cache.
	c.refresh(context.Background())
	seeded := c.Peek()
	require.NotNil(t, seeded)

	// Block the replacement fetch so it cannot complete.
	f.block = make(chan struct{})

	tok, err := c.Consume(context.Background())
	require.NoError(t, err)
	require.Equal(t, seeded.Blockhash, tok.Blockhash)
	require.NotZero(t, tok.LastValidBlockHeight)

	close(f.block)
}

func TestConsumeFetchesSynchronouslyWhenEmpty(t *testing.T) {
	f := &fakeFetcher{}
	c := NewCache(f, 0, nil, nil)

	require.Nil(t, c.Peek())

	tok, err := c.Consume(context.Background())
	require.NoError(t, err)
	require.NotZero(t, tok.LastValidBlockHeight)
}

func TestConsumePropagatesFetchError(t *testing.T) {
	f := &fakeFetcher{err: errors.New("rpc down")}
	c := NewCache(f, 0, nil, nil)

	_, err := c.Consume(context.Background())
	require.Error(t, err)
}

func TestAbortedRefreshDoesNotApplyResult(t *testing.T) {
	f := &fakeFetcher{}
	c := NewCache(f, 0, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.refresh(ctx)

	require.Nil(t, c.Peek())
}

func TestStartRefreshesOnTimer(t *testing.T) {
	f := &fakeFetcher{}
	c := NewCache(f, 10*time.Millisecond, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Start(ctx)

	require.Eventually(t, func() bool {
		return c.Peek() != nil
	}, time.Second, 5*time.Millisecond)
}

func TestConcurrentConsumersNeverShareToken(t *testing.T) {
	f := &fakeFetcher{}
	c := NewCache(f, 0, nil, nil)
	c.refresh(context.Background())

	const n = 8
	tokens := make(chan Token, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := c.Consume(context.Background())
			require.NoError(t, err)
			tokens <- tok
		}()
	}
	wg.Wait()
	close(tokens)

	seen := make(map[solana.Hash]bool)
	for tok := range tokens {
		require.False(t, seen[tok.Blockhash], "token %v handed to two consumers", tok.Blockhash)
		seen[tok.Blockhash] = true
	}
}
