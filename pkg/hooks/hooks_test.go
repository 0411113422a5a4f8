package hooks_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forumkit/alertkit/pkg/hooks"
)

func TestDispatcher_RunOrder(t *testing.T) {
	d := hooks.NewDispatcher()

	var got []int
	d.Register("test.hook", func(ctx context.Context, payload any) {
		got = append(got, 1)
	})
	d.Register("test.hook", func(ctx context.Context, payload any) {
		got = append(got, 2)
	})
	d.Register("test.hook", func(ctx context.Context, payload any) {
		got = append(got, 3)
	})

	d.Run(context.Background(), "test.hook", nil)

	assert.Equal(t, []int{1, 2, 3}, got, "handlers must run in registration order")
}

func TestDispatcher_PayloadMutation(t *testing.T) {
	type payload struct {
		Value string
	}

	d := hooks.NewDispatcher()
	d.Register("test.mutate", func(ctx context.Context, p any) {
		p.(*payload).Value = "first"
	})
	d.Register("test.mutate", func(ctx context.Context, p any) {
		// Later handlers observe earlier mutations.
		pl := p.(*payload)
		require.Equal(t, "first", pl.Value)
		pl.Value = "second"
	})

	p := &payload{}
	d.Run(context.Background(), "test.mutate", p)

	assert.Equal(t, "second", p.Value)
}

func TestDispatcher_UnknownHookIsNoOp(t *testing.T) {
	d := hooks.NewDispatcher()

	assert.NotPanics(t, func() {
		d.Run(context.Background(), "never.registered", struct{}{})
	})
	assert.Zero(t, d.HandlerCount("never.registered"))
}

func TestDispatcher_NilHandlerIgnored(t *testing.T) {
	d := hooks.NewDispatcher()
	d.Register("test.nil", nil)

	assert.Zero(t, d.HandlerCount("test.nil"))
	assert.NotPanics(t, func() {
		d.Run(context.Background(), "test.nil", nil)
	})
}

func TestDispatcher_ConcurrentRegisterAndRun(t *testing.T) {
	d := hooks.NewDispatcher()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			d.Register("test.concurrent", func(ctx context.Context, payload any) {})
		}()
		go func() {
			defer wg.Done()
			d.Run(context.Background(), "test.concurrent", nil)
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, d.HandlerCount("test.concurrent"))
}
