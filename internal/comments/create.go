package comments

import (
	"context"
	"errors"
	"time"

	"github.com/UkralStul/blog-service/internal/domain"
	"github.com/UkralStul/blog-service/internal/identity"
	"github.com/UkralStul/blog-service/internal/notify"
	"github.com/UkralStul/blog-service/internal/result"
	"github.com/UkralStul/blog-service/internal/storage"
	"github.com/UkralStul/blog-service/internal/validator"
)

// MaxBodyLength is the longest comment body accepted, in characters.
const MaxBodyLength = 2000

// CreateCommand adds a comment to a post on behalf of the current user.
// PostID comes from the route, not the request body.
type CreateCommand struct {
	PostID uint   `json:"-"`
	Body   string `json:"body"`
}

// CommentCreated is returned after a successful create. The author is not
// part of this projection.
type CommentCreated struct {
	ID        uint      `json:"id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

func ValidateCreate(cmd CreateCommand) error {
	return validator.Apply(
		validator.RequiredID("post_id", cmd.PostID),
		validator.Required("body", cmd.Body),
		validator.MaxLen("body", cmd.Body, MaxBodyLength),
	)
}

// Notifier is told about every committed comment.
type Notifier interface {
	Publish(ev notify.CommentEvent)
}

// CreateHandler executes CreateCommand.
type CreateHandler struct {
	store    storage.Storage
	identity identity.Accessor
	notifier Notifier
	now      func() time.Time
}

// CreateOption configures a CreateHandler.
type CreateOption func(*CreateHandler)

// WithNotifier publishes created comments to n.
func WithNotifier(n Notifier) CreateOption {
	return func(h *CreateHandler) { h.notifier = n }
}

// WithClock overrides the time source used for CreatedAt.
func WithClock(now func() time.Time) CreateOption {
	return func(h *CreateHandler) { h.now = now }
}

func NewCreateHandler(store storage.Storage, ident identity.Accessor, opts ...CreateOption) *CreateHandler {
	h := &CreateHandler{
		store:    store,
		identity: ident,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *CreateHandler) Handle(ctx context.Context, cmd CreateCommand) (result.Result[CommentCreated], error) {
	post, err := h.store.GetPostByID(ctx, cmd.PostID, storage.PostRelations{Comments: true})
	if errors.Is(err, storage.ErrNotFound) {
		return result.Failure[CommentCreated](ReasonPostNotFound), nil
	}
	if err != nil {
		return result.Result[CommentCreated]{}, err
	}

	author, err := h.currentAuthor(ctx)
	if err != nil {
		return result.Result[CommentCreated]{}, err
	}
	if author == nil {
		return result.Failure[CommentCreated](ReasonAuthorNotFound), nil
	}

	comment := &domain.Comment{
		Body:      cmd.Body,
		CreatedAt: h.now().UTC().Truncate(time.Microsecond),
		AuthorID:  author.ID,
		Author:    author,
	}

	if err := h.store.AddComment(ctx, post, comment); err != nil {
		// Пост мог быть удален между чтением и записью.
		if errors.Is(err, storage.ErrNotFound) {
			return result.Failure[CommentCreated](ReasonPostNotFound), nil
		}
		return result.Result[CommentCreated]{}, err
	}

	if h.notifier != nil {
		h.notifier.Publish(commentEvent(comment))
	}

	return result.Success(toCommentCreated(comment)), nil
}

// currentAuthor resolves the acting user. A nil user with a nil error means
// there is no such user.
func (h *CreateHandler) currentAuthor(ctx context.Context) (*domain.User, error) {
	username := h.identity.CurrentUsername(ctx)
	if username == "" {
		return nil, nil
	}
	user, err := h.store.GetUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return user, err
}
