package bus

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"
)

// Command represents a command that changes state
type Command interface {
	Validate() error
}

// CommandHandler handles a specific command type
type CommandHandler interface {
	Handle(ctx context.Context, cmd Command) error
}

// CommandBus dispatches commands to their handlers
type CommandBus struct {
	handlers map[reflect.Type]CommandHandler
	pipeline *Pipeline
	mu       sync.RWMutex
}

// NewCommandBus creates a new command bus. Every registered handler is
// wrapped by the given middleware, outermost first.
func NewCommandBus(middlewares ...Middleware) *CommandBus {
	return &CommandBus{
		handlers: make(map[reflect.Type]CommandHandler),
		pipeline: NewPipeline(middlewares...),
	}
}

// Register registers a handler for a command type
func (b *CommandBus) Register(cmdType Command, handler CommandHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := reflect.TypeOf(cmdType)
	if _, exists := b.handlers[t]; exists {
		return fmt.Errorf("handler already registered for command type %s", t.Name())
	}

	b.handlers[t] = b.pipeline.Execute(handler)
	return nil
}

// Send dispatches a command to its handler
func (b *CommandBus) Send(ctx context.Context, cmd Command) error {
	// Validate command
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	b.mu.RLock()
	handler, exists := b.handlers[reflect.TypeOf(cmd)]
	b.mu.RUnlock()

	if !exists {
		return fmt.Errorf("%w: %T", ErrHandlerNotFound, cmd)
	}

	return handler.Handle(ctx, cmd)
}

// Middleware defines command middleware
type Middleware func(next CommandHandler) CommandHandler

// CommandHandlerFunc is an adapter to allow functions to be used as handlers
type CommandHandlerFunc func(ctx context.Context, cmd Command) error

// Handle implements CommandHandler
func (f CommandHandlerFunc) Handle(ctx context.Context, cmd Command) error {
	return f(ctx, cmd)
}

// LoggingMiddleware logs command execution
func LoggingMiddleware(logger Logger) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
			cmdType := commandName(cmd)
			logger.Info("Executing command", "type", cmdType)

			err := next.Handle(ctx, cmd)
			if err != nil {
				logger.Error("Command failed", "type", cmdType, "error", err)
			} else {
				logger.Info("Command succeeded", "type", cmdType)
			}

			return err
		})
	}
}

// MetricsMiddleware records the duration and outcome of every command
func MetricsMiddleware(metrics Metrics) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
			start := time.Now()
			err := next.Handle(ctx, cmd)
			metrics.RecordCommandExecution(ctx, commandName(cmd), time.Since(start), err)
			return err
		})
	}
}

// Logger interface for logging
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Metrics interface for command metrics
type Metrics interface {
	RecordCommandExecution(ctx context.Context, commandName string, duration time.Duration, err error)
}

// Pipeline chains multiple middleware together
type Pipeline struct {
	middlewares []Middleware
}

// NewPipeline creates a new middleware pipeline
func NewPipeline(middlewares ...Middleware) *Pipeline {
	return &Pipeline{
		middlewares: middlewares,
	}
}

// Execute runs the command through the pipeline
func (p *Pipeline) Execute(handler CommandHandler) CommandHandler {
	// Apply middleware in reverse order
	for i := len(p.middlewares) - 1; i >= 0; i-- {
		handler = p.middlewares[i](handler)
	}
	return handler
}

func commandName(cmd Command) string {
	t := reflect.TypeOf(cmd)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Errors
var (
	ErrHandlerNotFound  = errors.New("command handler not found")
	ErrValidationFailed = errors.New("command validation failed")
)
