package comments

import (
	"context"
	"errors"
	"fmt"

	"github.com/UkralStul/blog-service/internal/result"
	"github.com/UkralStul/blog-service/internal/storage"
	"github.com/UkralStul/blog-service/internal/validator"
)

// ListQuery fetches every comment of one post, oldest first.
type ListQuery struct {
	PostID uint
}

func ValidateList(q ListQuery) error {
	return validator.Apply(
		validator.RequiredID("post_id", q.PostID),
	)
}

// ListHandler executes ListQuery.
type ListHandler struct {
	store storage.Storage
}

func NewListHandler(store storage.Storage) *ListHandler {
	return &ListHandler{store: store}
}

// Handle fails with ReasonPostNotFound for an unknown post; a post without
// comments yields an empty list.
func (h *ListHandler) Handle(ctx context.Context, q ListQuery) (result.Result[[]CommentDetails], error) {
	post, err := h.store.GetPostByID(ctx, q.PostID, storage.PostRelations{CommentAuthors: true})
	if errors.Is(err, storage.ErrNotFound) {
		return result.Failure[[]CommentDetails](ReasonPostNotFound), nil
	}
	if err != nil {
		return result.Result[[]CommentDetails]{}, err
	}

	out := make([]CommentDetails, 0, len(post.Comments))
	for _, c := range post.Comments {
		if c.Author == nil {
			return result.Result[[]CommentDetails]{}, fmt.Errorf("comment %d has no author", c.ID)
		}
		out = append(out, toCommentDetails(c))
	}
	return result.Success(out), nil
}
