package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type renameCommand struct {
	Name string
}

func (c renameCommand) Validate() error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

type recordingLogger struct {
	messages []string
}

func (l *recordingLogger) Info(msg string, _ ...interface{})  { l.messages = append(l.messages, msg) }
func (l *recordingLogger) Error(msg string, _ ...interface{}) { l.messages = append(l.messages, msg) }

type recordingMetrics struct {
	names []string
	errs  []error
}

func (m *recordingMetrics) RecordCommandExecution(_ context.Context, name string, _ time.Duration, err error) {
	m.names = append(m.names, name)
	m.errs = append(m.errs, err)
}

func TestCommandBus_Send(t *testing.T) {
	var handled []string
	handler := CommandHandlerFunc(func(_ context.Context, cmd Command) error {
		handled = append(handled, cmd.(renameCommand).Name)
		return nil
	})

	t.Run("dispatches by type", func(t *testing.T) {
		b := NewCommandBus()
		require.NoError(t, b.Register(renameCommand{}, handler))

		require.NoError(t, b.Send(context.Background(), renameCommand{Name: "fern"}))
		assert.Equal(t, []string{"fern"}, handled)
	})

	t.Run("rejects a second registration", func(t *testing.T) {
		b := NewCommandBus()
		require.NoError(t, b.Register(renameCommand{}, handler))
		assert.Error(t, b.Register(renameCommand{}, handler))
	})

	t.Run("invalid command never reaches the handler", func(t *testing.T) {
		handled = nil
		b := NewCommandBus()
		require.NoError(t, b.Register(renameCommand{}, handler))

		err := b.Send(context.Background(), renameCommand{})
		assert.ErrorIs(t, err, ErrValidationFailed)
		assert.Empty(t, handled)
	})

	t.Run("unknown command", func(t *testing.T) {
		err := NewCommandBus().Send(context.Background(), renameCommand{Name: "x"})
		assert.ErrorIs(t, err, ErrHandlerNotFound)
	})
}

func TestCommandBus_Middleware(t *testing.T) {
	logger := &recordingLogger{}
	metrics := &recordingMetrics{}
	boom := errors.New("boom")

	b := NewCommandBus(LoggingMiddleware(logger), MetricsMiddleware(metrics))
	require.NoError(t, b.Register(renameCommand{}, CommandHandlerFunc(func(context.Context, Command) error {
		return boom
	})))

	err := b.Send(context.Background(), renameCommand{Name: "ivy"})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"Executing command", "Command failed"}, logger.messages)
	assert.Equal(t, []string{"renameCommand"}, metrics.names)
	assert.Equal(t, []error{boom}, metrics.errs)
}

func TestPipeline_Order(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next CommandHandler) CommandHandler {
			return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
				order = append(order, name)
				return next.Handle(ctx, cmd)
			})
		}
	}

	h := NewPipeline(tag("outer"), tag("inner")).Execute(CommandHandlerFunc(func(context.Context, Command) error {
		order = append(order, "handler")
		return nil
	}))

	require.NoError(t, h.Handle(context.Background(), renameCommand{Name: "a"}))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}
