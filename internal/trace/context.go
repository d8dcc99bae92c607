package trace

import "context"

type ctxKey struct{}

type spanCtxKey struct{}

// FromContext returns the tracer carried by ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx == nil {
		return Nop
	}
	if t, ok := ctx.Value(ctxKey{}).(Tracer); ok {
		return t
	}
	return Nop
}

// WithTracer attaches t to ctx.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, ctxKey{}, t)
}

// CurrentSpan returns the id of the span ctx was derived under, or 0.
func CurrentSpan(ctx context.Context) uint64 {
	if ctx == nil {
		return 0
	}
	id, _ := ctx.Value(spanCtxKey{}).(uint64)
	return id
}

// WithSpan records span as the parent for spans opened under ctx.
func WithSpan(ctx context.Context, span *Span) context.Context {
	if span == nil || span.id == 0 {
		return ctx
	}
	return context.WithValue(ctx, spanCtxKey{}, span.id)
}
