package lock

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	km := NewKeyedMutex()

	const workers = 16
	var inSection, maxInSection int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := km.WithLock(context.Background(), "provider:a", func(ctx context.Context) error {
				mu.Lock()
				inSection++
				if inSection > maxInSection {
					maxInSection = inSection
				}
				mu.Unlock()

				mu.Lock()
				inSection--
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInSection, "critical section must never admit two holders")
}

func TestKeyedMutex_IndependentKeysDoNotBlock(t *testing.T) {
	km := NewKeyedMutex()

	release := make(chan struct{})
	held := make(chan struct{})
	go func() {
		_ = km.WithLock(context.Background(), "provider:a", func(ctx context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	// A different key must proceed while provider:a is held.
	err := km.WithLock(context.Background(), "provider:b", func(ctx context.Context) error {
		return nil
	})
	require.NoError(t, err)
	close(release)
}

func TestKeyedMutex_CancelledContext(t *testing.T) {
	km := NewKeyedMutex()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := km.WithLock(ctx, "provider:a", func(ctx context.Context) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
}
