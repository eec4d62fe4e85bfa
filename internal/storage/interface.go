package storage

import (
	"context"
	"errors"

	"github.com/UkralStul/blog-service/internal/domain"
)

// ErrNotFound is returned by every lookup when the requested row is absent.
var ErrNotFound = errors.New("record not found")

// ErrMissingAuthor is returned by AddComment when the comment's author row
// does not exist. It is a fault, not a not-found: handlers resolve the author
// before writing.
var ErrMissingAuthor = errors.New("comment author does not exist")

// PostRelations declares which related entities a post lookup materializes.
type PostRelations struct {
	Author         bool
	Category       bool
	Tags           bool
	Comments       bool
	CommentAuthors bool // implies Comments
}

// FullPost is the relation set the post listing projection requires.
var FullPost = PostRelations{
	Author:         true,
	Category:       true,
	Tags:           true,
	Comments:       true,
	CommentAuthors: true,
}

// CommentRelations declares which related entities a comment lookup materializes.
type CommentRelations struct {
	Author bool
}

// PostFilter narrows a post listing. Nil fields apply no constraint; set
// fields compose with AND.
type PostFilter struct {
	TagID      *uint
	AuthorID   *uint
	CategoryID *uint
}

// Storage определяет контракт для хранилищ.
//
// Returned entities are detached copies: mutating them does not change the
// store until they are passed back to a write method.
type Storage interface {
	GetPostByID(ctx context.Context, id uint, rel PostRelations) (*domain.Post, error)
	ListPosts(ctx context.Context, filter PostFilter, rel PostRelations) ([]*domain.Post, error)
	CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error)

	GetCommentByID(ctx context.Context, id uint, rel CommentRelations) (*domain.Comment, error)
	// AddComment inserts comment and attaches it to post in one atomic unit.
	// On success comment carries its assigned ID and PostID.
	AddComment(ctx context.Context, post *domain.Post, comment *domain.Comment) error

	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetTagByName(ctx context.Context, name string) (*domain.Tag, error)
	GetCategoryByName(ctx context.Context, name string) (*domain.Category, error)

	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	CreateTag(ctx context.Context, tag *domain.Tag) (*domain.Tag, error)
}
