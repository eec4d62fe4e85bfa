package comments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/UkralStul/blog-service/internal/result"
	"github.com/UkralStul/blog-service/internal/storage"
	"github.com/UkralStul/blog-service/internal/validator"
)

// DetailsQuery fetches one comment of one post.
type DetailsQuery struct {
	PostID uint
	ID     uint
}

// Author is the public view of a comment author.
type Author struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// CommentDetails is the projection returned by DetailsQuery.
type CommentDetails struct {
	ID        uint      `json:"id"`
	Body      string    `json:"body"`
	Author    Author    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

func ValidateDetails(q DetailsQuery) error {
	return validator.Apply(
		validator.RequiredID("post_id", q.PostID),
		validator.RequiredID("id", q.ID),
	)
}

// DetailsHandler executes DetailsQuery.
type DetailsHandler struct {
	store storage.Storage
}

func NewDetailsHandler(store storage.Storage) *DetailsHandler {
	return &DetailsHandler{store: store}
}

// Handle looks the comment up by id and treats a comment that belongs to a
// different post as missing.
func (h *DetailsHandler) Handle(ctx context.Context, q DetailsQuery) (result.Result[CommentDetails], error) {
	comment, err := h.store.GetCommentByID(ctx, q.ID, storage.CommentRelations{Author: true})
	if errors.Is(err, storage.ErrNotFound) {
		return result.Failure[CommentDetails](ReasonCommentNotFound), nil
	}
	if err != nil {
		return result.Result[CommentDetails]{}, err
	}
	if comment.PostID != q.PostID {
		return result.Failure[CommentDetails](ReasonCommentNotFound), nil
	}
	if comment.Author == nil {
		return result.Result[CommentDetails]{}, fmt.Errorf("comment %d has no author", comment.ID)
	}

	return result.Success(toCommentDetails(comment)), nil
}
