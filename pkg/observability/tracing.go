package observability

import (
	"context"
	"fmt"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// Tracer provides distributed tracing capabilities.
// Every method is a no-op when tracing is disabled or no segment is active,
// so callers never need to check.
type Tracer struct {
	serviceName string
	enabled     bool
}

// NewTracer creates a new tracer instance
func NewTracer(serviceName string, enabled bool) *Tracer {
	return &Tracer{
		serviceName: serviceName,
		enabled:     enabled,
	}
}

// StartSubsegment starts a subsegment when the context carries a segment.
// The returned end func closes it, recording err if non-nil.
func (t *Tracer) StartSubsegment(ctx context.Context, name string) (context.Context, func(err error)) {
	if t == nil || !t.enabled || xray.GetSegment(ctx) == nil {
		return ctx, func(error) {}
	}

	ctx, seg := xray.BeginSubsegment(ctx, fmt.Sprintf("%s.%s", t.serviceName, name))
	if seg == nil {
		return ctx, func(error) {}
	}
	return ctx, func(err error) {
		seg.Close(err)
	}
}

// TraceFunction wraps a function with tracing
func (t *Tracer) TraceFunction(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, end := t.StartSubsegment(ctx, name)
	err := fn(ctx)
	end(err)
	return err
}

// AddMetadata adds metadata to the current segment
func (t *Tracer) AddMetadata(ctx context.Context, key string, value interface{}) {
	if seg := t.segment(ctx); seg != nil {
		_ = seg.AddMetadata(key, value)
	}
}

// AddAnnotation adds an indexed annotation to the current segment
func (t *Tracer) AddAnnotation(ctx context.Context, key string, value interface{}) {
	if seg := t.segment(ctx); seg != nil {
		_ = seg.AddAnnotation(key, value)
	}
}

// RecordError records an error in the current segment
func (t *Tracer) RecordError(ctx context.Context, err error) {
	if seg := t.segment(ctx); seg != nil && err != nil {
		_ = seg.AddError(err)
	}
}

func (t *Tracer) segment(ctx context.Context) *xray.Segment {
	if t == nil || !t.enabled {
		return nil
	}
	return xray.GetSegment(ctx)
}
