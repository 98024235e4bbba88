package slogx

import (
	"context"
	"log/slog"
	"sync"
)

type ctxKey struct{}

type annotationsKey struct{}

// annotations collects attributes added while a request is being handled so
// the access log line can carry them too.
type annotations struct {
	mu   sync.Mutex
	args []any
}

func (a *annotations) add(args []any) {
	a.mu.Lock()
	a.args = append(a.args, args...)
	a.mu.Unlock()
}

func (a *annotations) list() []any {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]any(nil), a.args...)
}

func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the request logger, or slog.Default outside a request.
func FromContext(ctx context.Context) *slog.Logger {
	l, ok := ctx.Value(ctxKey{}).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return l
}

// With returns ctx with a logger carrying args. Under HTTPMiddleware the args
// are also added to the request's http_request line.
func With(ctx context.Context, args ...any) context.Context {
	if a, ok := ctx.Value(annotationsKey{}).(*annotations); ok {
		a.add(args)
	}
	return WithContext(ctx, FromContext(ctx).With(args...))
}

func withAnnotations(ctx context.Context) (context.Context, *annotations) {
	a := &annotations{}
	return context.WithValue(ctx, annotationsKey{}, a), a
}
