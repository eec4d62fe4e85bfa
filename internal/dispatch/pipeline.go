// Package dispatch runs typed requests through validation and exactly one
// handler, producing a result.Result.
//
// A Pipeline is bound to one request type at construction time, so there is
// no registry to consult per call and no way to send a request that has no
// handler.
package dispatch

import (
	"context"

	"github.com/UkralStul/blog-service/internal/result"
)

// Kind distinguishes state-changing commands from read-only queries.
type Kind string

const (
	KindCommand Kind = "command"
	KindQuery   Kind = "query"
)

// HandlerFunc executes one request. A non-nil error is an infrastructure
// fault; business failures are reported as result.Failure.
type HandlerFunc[Req, Res any] func(ctx context.Context, req Req) (result.Result[Res], error)

// ValidatorFunc checks the structure of a request. A non-nil error rejects it.
type ValidatorFunc[Req any] func(req Req) error

// Pipeline binds a request type to its validator and handler.
type Pipeline[Req, Res any] struct {
	name        string
	kind        Kind
	validate    ValidatorFunc[Req]
	handle      HandlerFunc[Req, Res]
	middlewares []Middleware
}

// NewCommand creates a pipeline for a state-changing request. validate may be nil.
func NewCommand[Req, Res any](name string, handle HandlerFunc[Req, Res], validate ValidatorFunc[Req], mws ...Middleware) *Pipeline[Req, Res] {
	return newPipeline(name, KindCommand, handle, validate, mws)
}

// NewQuery creates a pipeline for a read-only request. validate may be nil.
func NewQuery[Req, Res any](name string, handle HandlerFunc[Req, Res], validate ValidatorFunc[Req], mws ...Middleware) *Pipeline[Req, Res] {
	return newPipeline(name, KindQuery, handle, validate, mws)
}

func newPipeline[Req, Res any](name string, kind Kind, handle HandlerFunc[Req, Res], validate ValidatorFunc[Req], mws []Middleware) *Pipeline[Req, Res] {
	if handle == nil {
		panic("dispatch: nil handler for " + name)
	}
	return &Pipeline[Req, Res]{
		name:        name,
		kind:        kind,
		validate:    validate,
		handle:      handle,
		middlewares: mws,
	}
}

func (p *Pipeline[Req, Res]) Name() string { return p.name }

func (p *Pipeline[Req, Res]) Kind() Kind { return p.kind }

// Dispatch validates req and, if it is structurally valid, runs the handler
// through the middleware chain. Validation failures never reach the handler.
func (p *Pipeline[Req, Res]) Dispatch(ctx context.Context, req Req) (result.Result[Res], error) {
	var res result.Result[Res]

	core := func(ctx context.Context, call Call) (Outcome, error) {
		if p.validate != nil {
			if err := p.validate(req); err != nil {
				res = result.Failure[Res](err.Error())
				return Outcome{Failed: true, Reason: res.Reason(), Invalid: true}, nil
			}
		}

		r, err := p.handle(ctx, req)
		if err != nil {
			return Outcome{}, err
		}
		res = r
		return Outcome{Failed: r.IsFailure(), Reason: r.Reason()}, nil
	}

	call := Call{Name: p.name, Kind: p.kind, Request: req}
	if _, err := Chain(core, p.middlewares...)(ctx, call); err != nil {
		var zero result.Result[Res]
		return zero, err
	}
	return res, nil
}
