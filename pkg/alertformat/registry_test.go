package alertformat_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forumkit/alertkit/pkg/alertformat"
	"github.com/forumkit/alertkit/pkg/alerts"
	"github.com/forumkit/alertkit/pkg/hooks"
)

type stubFormatter struct {
	code      string
	initErr   error
	initCalls atomic.Int64
	output    string
}

func (f *stubFormatter) AlertTypeCode() string { return f.code }

func (f *stubFormatter) Init(ctx context.Context) error {
	f.initCalls.Add(1)
	return f.initErr
}

func (f *stubFormatter) FormatAlert(ctx context.Context, a *alerts.Alert, rc alertformat.RenderContext) (string, error) {
	return fmt.Sprintf("%s: %s", f.output, rc.FromUsername), nil
}

func (f *stubFormatter) BuildShowLink(a *alerts.Alert) (string, error) {
	return fmt.Sprintf("/alerts/%d", a.ID), nil
}

func TestNewRegistry(t *testing.T) {
	t.Parallel()

	t.Run("requires dispatcher", func(t *testing.T) {
		t.Parallel()

		registry, err := alertformat.NewRegistry(nil)
		require.ErrorIs(t, err, alertformat.ErrDispatcherRequired)
		assert.Nil(t, registry)
	})

	t.Run("creates registry", func(t *testing.T) {
		t.Parallel()

		registry, err := alertformat.NewRegistry(hooks.NewDispatcher())
		require.NoError(t, err)
		assert.NotNil(t, registry)
		assert.Empty(t, registry.Codes())
	})
}

func TestRegistryFormatterFor(t *testing.T) {
	t.Parallel()

	t.Run("registration event fires exactly once", func(t *testing.T) {
		t.Parallel()

		dispatcher := hooks.NewDispatcher()
		var fired atomic.Int64
		dispatcher.Register(alertformat.HookRegisterFormatters, func(ctx context.Context, payload any) {
			fired.Add(1)
			p, ok := payload.(*alertformat.RegisterFormattersPayload)
			if !ok {
				return
			}
			p.Registry.Register(&stubFormatter{code: "mention", output: "mentioned you"})
		})

		registry, err := alertformat.NewRegistry(dispatcher)
		require.NoError(t, err)

		ctx := context.Background()
		for i := 0; i < 10; i++ {
			f, err := registry.FormatterFor(ctx, "mention")
			require.NoError(t, err)
			assert.Equal(t, "mention", f.AlertTypeCode())
		}
		assert.Equal(t, int64(1), fired.Load())
	})

	t.Run("unknown code", func(t *testing.T) {
		t.Parallel()

		registry, err := alertformat.NewRegistry(hooks.NewDispatcher())
		require.NoError(t, err)

		_, err = registry.FormatterFor(context.Background(), "nope")
		require.ErrorIs(t, err, alertformat.ErrFormatterNotFound)
	})

	t.Run("init runs once", func(t *testing.T) {
		t.Parallel()

		registry, err := alertformat.NewRegistry(hooks.NewDispatcher())
		require.NoError(t, err)

		f := &stubFormatter{code: "pm", output: "sent you a message"}
		registry.Register(f)

		ctx := context.Background()
		for i := 0; i < 5; i++ {
			_, err := registry.FormatterFor(ctx, "pm")
			require.NoError(t, err)
		}
		assert.Equal(t, int64(1), f.initCalls.Load())
	})

	t.Run("failed init is retried", func(t *testing.T) {
		t.Parallel()

		registry, err := alertformat.NewRegistry(hooks.NewDispatcher())
		require.NoError(t, err)

		f := &stubFormatter{code: "rep", initErr: errors.New("template missing")}
		registry.Register(f)

		ctx := context.Background()
		_, err = registry.FormatterFor(ctx, "rep")
		require.ErrorIs(t, err, alertformat.ErrInitFailed)

		f.initErr = nil
		got, err := registry.FormatterFor(ctx, "rep")
		require.NoError(t, err)
		assert.Same(t, f, got)
		assert.Equal(t, int64(2), f.initCalls.Load())
	})

	t.Run("last registration wins", func(t *testing.T) {
		t.Parallel()

		registry, err := alertformat.NewRegistry(hooks.NewDispatcher())
		require.NoError(t, err)

		first := &stubFormatter{code: "quoted", output: "first"}
		second := &stubFormatter{code: "quoted", output: "second"}
		registry.Register(first)
		registry.Register(second)

		got, err := registry.FormatterFor(context.Background(), "quoted")
		require.NoError(t, err)

		out, err := got.FormatAlert(context.Background(), &alerts.Alert{}, alertformat.RenderContext{FromUsername: "alice"})
		require.NoError(t, err)
		assert.Equal(t, "second: alice", out)
	})

	t.Run("replacement resets initialization", func(t *testing.T) {
		t.Parallel()

		registry, err := alertformat.NewRegistry(hooks.NewDispatcher())
		require.NoError(t, err)

		first := &stubFormatter{code: "post", output: "first"}
		registry.Register(first)

		_, err = registry.FormatterFor(context.Background(), "post")
		require.NoError(t, err)

		second := &stubFormatter{code: "post", output: "second"}
		registry.Register(second)

		_, err = registry.FormatterFor(context.Background(), "post")
		require.NoError(t, err)
		assert.Equal(t, int64(1), second.initCalls.Load())
	})
}
