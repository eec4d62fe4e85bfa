// Package posts holds the post listing query.
package posts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/UkralStul/blog-service/internal/result"
	"github.com/UkralStul/blog-service/internal/storage"
)

// UnknownFilterPolicy decides what a listing does with a criterion that
// names a tag, author or category that does not exist.
type UnknownFilterPolicy string

const (
	// PolicyIgnore drops the criterion as if it had not been supplied.
	PolicyIgnore UnknownFilterPolicy = "ignore"
	// PolicyEmpty returns an empty listing.
	PolicyEmpty UnknownFilterPolicy = "empty"
	// PolicyReject fails the query with a not-found reason.
	PolicyReject UnknownFilterPolicy = "reject"
)

// UnmarshalText lets the policy be read straight from configuration.
func (p *UnknownFilterPolicy) UnmarshalText(text []byte) error {
	switch v := UnknownFilterPolicy(strings.ToLower(strings.TrimSpace(string(text)))); v {
	case PolicyIgnore, PolicyEmpty, PolicyReject:
		*p = v
		return nil
	case "":
		*p = PolicyIgnore
		return nil
	default:
		return fmt.Errorf("unknown filter policy %q: must be %q, %q or %q", string(text), PolicyIgnore, PolicyEmpty, PolicyReject)
	}
}

// Failure reasons used by PolicyReject.
const (
	ReasonTagNotFound      = "Tag does not exist"
	ReasonAuthorNotFound   = "Author does not exist"
	ReasonCategoryNotFound = "Category does not exist"
)

// ListQuery lists posts, optionally narrowed by tag name, author username
// and category name. Blank criteria are ignored.
type ListQuery struct {
	Tag      string `json:"tag"`
	Author   string `json:"author"`
	Category string `json:"category"`
}

// ListHandler executes ListQuery.
type ListHandler struct {
	store  storage.Storage
	policy UnknownFilterPolicy
}

// ListOption configures a ListHandler.
type ListOption func(*ListHandler)

func WithUnknownFilterPolicy(p UnknownFilterPolicy) ListOption {
	return func(h *ListHandler) {
		if p != "" {
			h.policy = p
		}
	}
}

func NewListHandler(store storage.Storage, opts ...ListOption) *ListHandler {
	h := &ListHandler{store: store, policy: PolicyIgnore}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// criterion resolves one named filter to an id.
type criterion struct {
	value   string
	reason  string
	resolve func(ctx context.Context, name string) (uint, error)
	target  **uint
}

// Handle returns posts newest first. With the default policy it never fails:
// no matches is an empty list.
func (h *ListHandler) Handle(ctx context.Context, q ListQuery) (result.Result[[]PostSummary], error) {
	var filter storage.PostFilter

	criteria := []criterion{
		{value: q.Tag, reason: ReasonTagNotFound, target: &filter.TagID, resolve: h.tagID},
		{value: q.Author, reason: ReasonAuthorNotFound, target: &filter.AuthorID, resolve: h.authorID},
		{value: q.Category, reason: ReasonCategoryNotFound, target: &filter.CategoryID, resolve: h.categoryID},
	}

	for _, c := range criteria {
		if strings.TrimSpace(c.value) == "" {
			continue
		}
		id, err := c.resolve(ctx, c.value)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			switch h.policy {
			case PolicyEmpty:
				return result.Success([]PostSummary{}), nil
			case PolicyReject:
				return result.Failure[[]PostSummary](c.reason), nil
			}
			// PolicyIgnore: no constraint for this criterion.
		case err != nil:
			return result.Result[[]PostSummary]{}, err
		default:
			*c.target = &id
		}
	}

	posts, err := h.store.ListPosts(ctx, filter, storage.FullPost)
	if err != nil {
		return result.Result[[]PostSummary]{}, err
	}
	return result.Success(toSummaries(posts)), nil
}

func (h *ListHandler) tagID(ctx context.Context, name string) (uint, error) {
	tag, err := h.store.GetTagByName(ctx, name)
	if err != nil {
		return 0, err
	}
	return tag.ID, nil
}

func (h *ListHandler) authorID(ctx context.Context, username string) (uint, error) {
	user, err := h.store.GetUserByUsername(ctx, username)
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

func (h *ListHandler) categoryID(ctx context.Context, name string) (uint, error) {
	category, err := h.store.GetCategoryByName(ctx, name)
	if err != nil {
		return 0, err
	}
	return category.ID, nil
}

// PostSummary is one entry of a post listing.
type PostSummary struct {
	ID        uint          `json:"id"`
	Title     string        `json:"title"`
	Body      string        `json:"body"`
	Category  string        `json:"category"`
	Author    string        `json:"author"`
	Tags      []string      `json:"tags"`
	Comments  []CommentView `json:"comments"`
	CreatedAt time.Time     `json:"createdAt"`
}

// CommentView is a comment nested in a PostSummary.
type CommentView struct {
	ID        uint      `json:"id"`
	Body      string    `json:"body"`
	Author    Author    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

type Author struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}
