package dispatch

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UkralStul/blog-service/internal/logger"
	"github.com/UkralStul/blog-service/internal/result"
	"github.com/UkralStul/blog-service/internal/validator"
)

type echo struct {
	Text string
}

func validateEcho(req echo) error {
	return validator.Apply(validator.Required("text", req.Text))
}

func TestPipeline_ValidationShortCircuits(t *testing.T) {
	called := false
	p := NewCommand("test.echo", func(ctx context.Context, req echo) (result.Result[string], error) {
		called = true
		return result.Success(req.Text), nil
	}, validateEcho)

	res, err := p.Dispatch(context.Background(), echo{Text: "  "})
	require.NoError(t, err)
	assert.True(t, res.IsFailure())
	assert.Equal(t, "validation failed: text: must not be empty", res.Reason())
	assert.False(t, called, "handler must not run for an invalid request")
}

func TestPipeline_NoValidatorPasses(t *testing.T) {
	p := NewQuery("test.echo", func(ctx context.Context, req echo) (result.Result[string], error) {
		return result.Success("got " + req.Text), nil
	}, nil)

	res, err := p.Dispatch(context.Background(), echo{})
	require.NoError(t, err)
	assert.Equal(t, "got ", res.Value())
	assert.Equal(t, KindQuery, p.Kind())
	assert.Equal(t, "test.echo", p.Name())
}

func TestPipeline_HandlerFailureIsResult(t *testing.T) {
	p := NewQuery("test.echo", func(ctx context.Context, req echo) (result.Result[string], error) {
		return result.Failure[string]("Comment does not exist"), nil
	}, validateEcho)

	res, err := p.Dispatch(context.Background(), echo{Text: "x"})
	require.NoError(t, err)
	assert.Equal(t, "Comment does not exist", res.Reason())
}

func TestPipeline_FaultPropagates(t *testing.T) {
	boom := errors.New("connection refused")
	p := NewCommand("test.echo", func(ctx context.Context, req echo) (result.Result[string], error) {
		return result.Result[string]{}, boom
	}, nil)

	_, err := p.Dispatch(context.Background(), echo{Text: "x"})
	assert.ErrorIs(t, err, boom)
}

func TestPipeline_MiddlewareOrder(t *testing.T) {
	var trace []string
	mark := func(name string) Middleware {
		return func(next Step) Step {
			return func(ctx context.Context, call Call) (Outcome, error) {
				trace = append(trace, name+">")
				out, err := next(ctx, call)
				trace = append(trace, "<"+name)
				return out, err
			}
		}
	}

	p := NewCommand("test.echo", func(ctx context.Context, req echo) (result.Result[string], error) {
		trace = append(trace, "handler")
		return result.Success(req.Text), nil
	}, nil, mark("a"), mark("b"))

	_, err := p.Dispatch(context.Background(), echo{Text: "x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a>", "b>", "handler", "<b", "<a"}, trace)
}

func TestRequestID_StampsOnceAndKeepsExisting(t *testing.T) {
	var seen string
	p := NewQuery("test.echo", func(ctx context.Context, req echo) (result.Result[string], error) {
		seen, _ = RequestIDFrom(ctx)
		return result.Success(""), nil
	}, nil, RequestID())

	_, err := p.Dispatch(context.Background(), echo{})
	require.NoError(t, err)
	assert.NotEmpty(t, seen)

	_, err = p.Dispatch(WithRequestID(context.Background(), "req-1"), echo{})
	require.NoError(t, err)
	assert.Equal(t, "req-1", seen)
}

func TestLogging_RecordsOutcome(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf))

	p := NewCommand("comments.create", func(ctx context.Context, req echo) (result.Result[string], error) {
		return result.Success(req.Text), nil
	}, validateEcho, RequestID(), Logging(log))

	_, err := p.Dispatch(context.Background(), echo{})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"request failed"`)
	assert.Contains(t, out, `"request":"comments.create"`)
	assert.Contains(t, out, `"invalid":true`)
	assert.Contains(t, out, `"request_id"`)
}
