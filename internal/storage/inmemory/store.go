package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/UkralStul/blog-service/internal/domain"
	"github.com/UkralStul/blog-service/internal/storage"
)

// Store реализует интерфейс Storage в памяти.
//
// Rows are kept flat (foreign keys only); relations are assembled on read
// into fresh copies, so nothing handed out aliases internal state.
type Store struct {
	mu sync.RWMutex

	users      map[uint]*domain.User
	categories map[uint]*domain.Category
	tags       map[uint]*domain.Tag
	posts      map[uint]*domain.Post
	comments   map[uint]*domain.Comment

	postTags       map[uint][]uint // map[postID][]tagID
	commentsByPost map[uint][]uint // map[postID][]commentID

	lastID map[string]uint
}

// New создает новый экземпляр in-memory хранилища.
func New() *Store {
	return &Store{
		users:          make(map[uint]*domain.User),
		categories:     make(map[uint]*domain.Category),
		tags:           make(map[uint]*domain.Tag),
		posts:          make(map[uint]*domain.Post),
		comments:       make(map[uint]*domain.Comment),
		postTags:       make(map[uint][]uint),
		commentsByPost: make(map[uint][]uint),
		lastID:         make(map[string]uint),
	}
}

var _ storage.Storage = (*Store)(nil)

func (s *Store) nextID(collection string) uint {
	s.lastID[collection]++
	return s.lastID[collection]
}

// === Post Methods ===

func (s *Store) CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[post.AuthorID]; !ok {
		return nil, fmt.Errorf("post author %d: %w", post.AuthorID, storage.ErrNotFound)
	}
	if _, ok := s.categories[post.CategoryID]; !ok {
		return nil, fmt.Errorf("post category %d: %w", post.CategoryID, storage.ErrNotFound)
	}
	tagIDs := make([]uint, 0, len(post.Tags))
	for _, t := range post.Tags {
		if _, ok := s.tags[t.ID]; !ok {
			return nil, fmt.Errorf("post tag %d: %w", t.ID, storage.ErrNotFound)
		}
		tagIDs = append(tagIDs, t.ID)
	}

	post.ID = s.nextID("posts")
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	s.posts[post.ID] = &domain.Post{
		ID:         post.ID,
		Title:      post.Title,
		Body:       post.Body,
		CreatedAt:  post.CreatedAt,
		CategoryID: post.CategoryID,
		AuthorID:   post.AuthorID,
	}
	s.postTags[post.ID] = tagIDs
	return post, nil
}

func (s *Store) GetPostByID(ctx context.Context, id uint, rel storage.PostRelations) (*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %d: %w", id, storage.ErrNotFound)
	}
	return s.assemblePost(post, rel), nil
}

func (s *Store) ListPosts(ctx context.Context, filter storage.PostFilter, rel storage.PostRelations) ([]*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*domain.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if s.matches(p, filter) {
			matched = append(matched, p)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	result := make([]*domain.Post, len(matched))
	for i, p := range matched {
		result[i] = s.assemblePost(p, rel)
	}
	return result, nil
}

func (s *Store) matches(p *domain.Post, filter storage.PostFilter) bool {
	if filter.AuthorID != nil && p.AuthorID != *filter.AuthorID {
		return false
	}
	if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
		return false
	}
	if filter.TagID != nil {
		found := false
		for _, tagID := range s.postTags[p.ID] {
			if tagID == *filter.TagID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// assemblePost must be called with at least a read lock held.
func (s *Store) assemblePost(p *domain.Post, rel storage.PostRelations) *domain.Post {
	out := *p
	if rel.Author {
		out.Author = s.copyUser(p.AuthorID)
	}
	if rel.Category {
		if c, ok := s.categories[p.CategoryID]; ok {
			cp := *c
			out.Category = &cp
		}
	}
	if rel.Tags {
		out.Tags = make([]*domain.Tag, 0, len(s.postTags[p.ID]))
		for _, tagID := range s.postTags[p.ID] {
			if t, ok := s.tags[tagID]; ok {
				cp := *t
				out.Tags = append(out.Tags, &cp)
			}
		}
	}
	if rel.Comments || rel.CommentAuthors {
		ids := s.commentsByPost[p.ID]
		out.Comments = make([]*domain.Comment, 0, len(ids))
		for _, id := range ids {
			c := *s.comments[id]
			if rel.CommentAuthors {
				c.Author = s.copyUser(c.AuthorID)
			}
			out.Comments = append(out.Comments, &c)
		}
		sort.SliceStable(out.Comments, func(i, j int) bool {
			if !out.Comments[i].CreatedAt.Equal(out.Comments[j].CreatedAt) {
				return out.Comments[i].CreatedAt.Before(out.Comments[j].CreatedAt)
			}
			return out.Comments[i].ID < out.Comments[j].ID
		})
	}
	return &out
}

func (s *Store) copyUser(id uint) *domain.User {
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	cp := *u
	return &cp
}

// === Comment Methods ===

func (s *Store) GetCommentByID(ctx context.Context, id uint, rel storage.CommentRelations) (*domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comment, ok := s.comments[id]
	if !ok {
		return nil, fmt.Errorf("comment %d: %w", id, storage.ErrNotFound)
	}
	out := *comment
	if rel.Author {
		out.Author = s.copyUser(comment.AuthorID)
	}
	return &out, nil
}

func (s *Store) AddComment(ctx context.Context, post *domain.Post, comment *domain.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Все проверки выполняются до любой записи: частичного состояния не бывает.
	if _, ok := s.posts[post.ID]; !ok {
		return fmt.Errorf("post %d: %w", post.ID, storage.ErrNotFound)
	}
	if _, ok := s.users[comment.AuthorID]; !ok {
		return fmt.Errorf("user %d: %w", comment.AuthorID, storage.ErrMissingAuthor)
	}

	comment.ID = s.nextID("comments")
	comment.PostID = post.ID
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}

	stored := *comment
	stored.Author = nil
	s.comments[stored.ID] = &stored
	s.commentsByPost[post.ID] = append(s.commentsByPost[post.ID], stored.ID)

	post.Comments = append(post.Comments, comment)
	return nil
}

// === Lookup Methods ===

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, storage.ErrNotFound)
}

func (s *Store) GetTagByName(ctx context.Context, name string) (*domain.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tags {
		if t.Name == name {
			cp := *t
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("tag %q: %w", name, storage.ErrNotFound)
}

func (s *Store) GetCategoryByName(ctx context.Context, name string) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.categories {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("category %q: %w", name, storage.ErrNotFound)
}

// === Seed Methods ===

func (s *Store) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username {
			return nil, fmt.Errorf("username %q is already taken", user.Username)
		}
	}
	user.ID = s.nextID("users")
	cp := *user
	s.users[user.ID] = &cp
	return user, nil
}

func (s *Store) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.categories {
		if c.Name == category.Name {
			return nil, fmt.Errorf("category %q already exists", category.Name)
		}
	}
	category.ID = s.nextID("categories")
	cp := *category
	s.categories[category.ID] = &cp
	return category, nil
}

func (s *Store) CreateTag(ctx context.Context, tag *domain.Tag) (*domain.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tags {
		if t.Name == tag.Name {
			return nil, fmt.Errorf("tag %q already exists", tag.Name)
		}
	}
	tag.ID = s.nextID("tags")
	cp := *tag
	s.tags[tag.ID] = &cp
	return tag, nil
}
