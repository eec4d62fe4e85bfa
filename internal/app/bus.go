// Package app wires every request type to its validator and handler.
package app

import (
	"context"
	"log/slog"

	"github.com/UkralStul/blog-service/internal/comments"
	"github.com/UkralStul/blog-service/internal/dispatch"
	"github.com/UkralStul/blog-service/internal/identity"
	"github.com/UkralStul/blog-service/internal/posts"
	"github.com/UkralStul/blog-service/internal/result"
	"github.com/UkralStul/blog-service/internal/storage"
)

// Deps are the collaborators the handlers need.
type Deps struct {
	Storage             storage.Storage
	Identity            identity.Accessor
	Notifier            comments.Notifier
	Logger              *slog.Logger
	UnknownFilterPolicy posts.UnknownFilterPolicy
}

// Bus is the dispatcher: one pipeline per request type, fixed at construction.
type Bus struct {
	createComment  *dispatch.Pipeline[comments.CreateCommand, comments.CommentCreated]
	commentDetails *dispatch.Pipeline[comments.DetailsQuery, comments.CommentDetails]
	listComments   *dispatch.Pipeline[comments.ListQuery, []comments.CommentDetails]
	listPosts      *dispatch.Pipeline[posts.ListQuery, []posts.PostSummary]
}

func NewBus(deps Deps) *Bus {
	mws := []dispatch.Middleware{dispatch.RequestID()}
	if deps.Logger != nil {
		mws = append(mws, dispatch.Logging(deps.Logger))
	}

	ident := deps.Identity
	if ident == nil {
		ident = identity.ContextAccessor{}
	}

	createOpts := []comments.CreateOption{}
	if deps.Notifier != nil {
		createOpts = append(createOpts, comments.WithNotifier(deps.Notifier))
	}

	create := comments.NewCreateHandler(deps.Storage, ident, createOpts...)
	details := comments.NewDetailsHandler(deps.Storage)
	postComments := comments.NewListHandler(deps.Storage)
	list := posts.NewListHandler(deps.Storage, posts.WithUnknownFilterPolicy(deps.UnknownFilterPolicy))

	return &Bus{
		createComment:  dispatch.NewCommand("comments.create", create.Handle, comments.ValidateCreate, mws...),
		commentDetails: dispatch.NewQuery("comments.details", details.Handle, comments.ValidateDetails, mws...),
		listComments:   dispatch.NewQuery("comments.list", postComments.Handle, comments.ValidateList, mws...),
		listPosts:      dispatch.NewQuery("posts.list", list.Handle, nil, mws...),
	}
}

func (b *Bus) CreateComment(ctx context.Context, cmd comments.CreateCommand) (result.Result[comments.CommentCreated], error) {
	return b.createComment.Dispatch(ctx, cmd)
}

func (b *Bus) CommentDetails(ctx context.Context, q comments.DetailsQuery) (result.Result[comments.CommentDetails], error) {
	return b.commentDetails.Dispatch(ctx, q)
}

func (b *Bus) ListComments(ctx context.Context, q comments.ListQuery) (result.Result[[]comments.CommentDetails], error) {
	return b.listComments.Dispatch(ctx, q)
}

func (b *Bus) ListPosts(ctx context.Context, q posts.ListQuery) (result.Result[[]posts.PostSummary], error) {
	return b.listPosts.Dispatch(ctx, q)
}
