package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/UkralStul/blog-service/internal/logger"
)

// Call describes the request passing through a middleware chain.
type Call struct {
	Name    string
	Kind    Kind
	Request any
}

// Outcome is the untyped view of a Result that middlewares observe.
type Outcome struct {
	Failed  bool
	Invalid bool // rejected by the validator
	Reason  string
}

// Step is one link of the chain.
type Step func(ctx context.Context, call Call) (Outcome, error)

// Middleware wraps a Step with cross-cutting behaviour.
type Middleware func(next Step) Step

// Chain applies middlewares around step; the first middleware is outermost.
func Chain(step Step, mws ...Middleware) Step {
	wrapped := step
	for i := len(mws) - 1; i >= 0; i-- {
		wrapped = mws[i](wrapped)
	}
	return wrapped
}

type ctxKey string

const requestIDKey ctxKey = "request_id"

// WithRequestID stores id on the context for downstream logging.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFrom returns the request id stored on ctx, if any.
func RequestIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok && id != ""
}

// RequestID stamps a fresh id on the context unless one is already present.
func RequestID() Middleware {
	return func(next Step) Step {
		return func(ctx context.Context, call Call) (Outcome, error) {
			if _, ok := RequestIDFrom(ctx); !ok {
				ctx = WithRequestID(ctx, uuid.NewString())
			}
			return next(ctx, call)
		}
	}
}

// Logging records every dispatched request: faults at error level, failures
// at info, successes at debug.
func Logging(log *slog.Logger) Middleware {
	return func(next Step) Step {
		return func(ctx context.Context, call Call) (Outcome, error) {
			start := time.Now()
			out, err := next(ctx, call)

			attrs := []any{
				slog.String("request", call.Name),
				slog.String("kind", string(call.Kind)),
				slog.Duration("duration", time.Since(start)),
			}
			if id, ok := RequestIDFrom(ctx); ok {
				attrs = append(attrs, slog.String("request_id", id))
			}

			switch {
			case err != nil:
				log.ErrorContext(ctx, "request faulted", append(attrs, logger.Error(err))...)
			case out.Failed:
				attrs = append(attrs, slog.String("reason", out.Reason), slog.Bool("invalid", out.Invalid))
				log.InfoContext(ctx, "request failed", attrs...)
			default:
				log.DebugContext(ctx, "request succeeded", attrs...)
			}
			return out, err
		}
	}
}
