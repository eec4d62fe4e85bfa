// Package storagetest seeds stores with a known blog and checks that a
// storage.Storage implementation honours the contract handlers rely on.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UkralStul/blog-service/internal/domain"
	"github.com/UkralStul/blog-service/internal/storage"
)

// T1 and T2 are the creation times of the scenario posts; T2 is later.
var (
	T1 = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	T2 = T1.Add(time.Hour)
)

// Scenario is the seeded blog:
//
//	P1: author alice, category tech, tags [go infra], created T1
//	P2: author bob,   category tech, no tags,         created T2
//
// Tag "rust" and category "life" exist but are used by no post.
type Scenario struct {
	Alice, Bob *domain.User
	Tech, Life *domain.Category
	Go, Infra  *domain.Tag
	Rust       *domain.Tag
	P1, P2     *domain.Post
}

// Seed fills s with the Scenario.
func Seed(t testing.TB, s storage.Storage) Scenario {
	t.Helper()
	ctx := context.Background()

	var sc Scenario
	var err error

	sc.Alice, err = s.CreateUser(ctx, &domain.User{Username: "alice", DisplayName: "Alice"})
	require.NoError(t, err)
	sc.Bob, err = s.CreateUser(ctx, &domain.User{Username: "bob", DisplayName: "Bob"})
	require.NoError(t, err)

	sc.Tech, err = s.CreateCategory(ctx, &domain.Category{Name: "tech"})
	require.NoError(t, err)
	sc.Life, err = s.CreateCategory(ctx, &domain.Category{Name: "life"})
	require.NoError(t, err)

	sc.Go, err = s.CreateTag(ctx, &domain.Tag{Name: "go"})
	require.NoError(t, err)
	sc.Infra, err = s.CreateTag(ctx, &domain.Tag{Name: "infra"})
	require.NoError(t, err)
	sc.Rust, err = s.CreateTag(ctx, &domain.Tag{Name: "rust"})
	require.NoError(t, err)

	sc.P1 = CreatePost(t, s, "Go in production", sc.Alice, sc.Tech, T1, sc.Go, sc.Infra)
	sc.P2 = CreatePost(t, s, "Notes on tooling", sc.Bob, sc.Tech, T2)
	return sc
}

// CreatePost inserts a post with the given relations.
func CreatePost(t testing.TB, s storage.Storage, title string, author *domain.User, category *domain.Category, createdAt time.Time, tags ...*domain.Tag) *domain.Post {
	t.Helper()
	post, err := s.CreatePost(context.Background(), &domain.Post{
		Title:      title,
		Body:       "Body of " + title,
		CreatedAt:  createdAt,
		AuthorID:   author.ID,
		CategoryID: category.ID,
		Tags:       tags,
	})
	require.NoError(t, err)
	require.NotZero(t, post.ID)
	return post
}

// PostIDs returns the ids of posts in order.
func PostIDs(posts []*domain.Post) []uint {
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}

func ptr(v uint) *uint { return &v }

// RunContract runs the shared storage behaviour against stores produced by newStore.
func RunContract(t *testing.T, newStore func(t *testing.T) storage.Storage) {
	ctx := context.Background()

	t.Run("GetPostByID loads only declared relations", func(t *testing.T) {
		s := newStore(t)
		sc := Seed(t, s)

		bare, err := s.GetPostByID(ctx, sc.P1.ID, storage.PostRelations{})
		require.NoError(t, err)
		assert.Equal(t, "Go in production", bare.Title)
		assert.Nil(t, bare.Author)
		assert.Nil(t, bare.Category)
		assert.Empty(t, bare.Tags)

		full, err := s.GetPostByID(ctx, sc.P1.ID, storage.FullPost)
		require.NoError(t, err)
		require.NotNil(t, full.Author)
		require.NotNil(t, full.Category)
		assert.Equal(t, "alice", full.Author.Username)
		assert.Equal(t, "tech", full.Category.Name)
		names := make([]string, 0, len(full.Tags))
		for _, tag := range full.Tags {
			names = append(names, tag.Name)
		}
		assert.ElementsMatch(t, []string{"go", "infra"}, names)
		assert.True(t, T1.Equal(full.CreatedAt))
	})

	t.Run("GetPostByID missing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetPostByID(ctx, 999, storage.PostRelations{})
		assert.True(t, errors.Is(err, storage.ErrNotFound))
	})

	t.Run("lookups by name are exact", func(t *testing.T) {
		s := newStore(t)
		sc := Seed(t, s)

		u, err := s.GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, sc.Alice.ID, u.ID)

		_, err = s.GetUserByUsername(ctx, "Alice")
		assert.ErrorIs(t, err, storage.ErrNotFound)

		tag, err := s.GetTagByName(ctx, "infra")
		require.NoError(t, err)
		assert.Equal(t, sc.Infra.ID, tag.ID)
		_, err = s.GetTagByName(ctx, "inf")
		assert.ErrorIs(t, err, storage.ErrNotFound)

		c, err := s.GetCategoryByName(ctx, "tech")
		require.NoError(t, err)
		assert.Equal(t, sc.Tech.ID, c.ID)
		_, err = s.GetCategoryByName(ctx, "science")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("ListPosts orders newest first and filters conjunctively", func(t *testing.T) {
		s := newStore(t)
		sc := Seed(t, s)
		p3 := CreatePost(t, s, "Weekend", sc.Alice, sc.Life, T2.Add(time.Hour), sc.Go)

		all, err := s.ListPosts(ctx, storage.PostFilter{}, storage.PostRelations{})
		require.NoError(t, err)
		assert.Equal(t, []uint{p3.ID, sc.P2.ID, sc.P1.ID}, PostIDs(all))

		byTag, err := s.ListPosts(ctx, storage.PostFilter{TagID: ptr(sc.Go.ID)}, storage.PostRelations{})
		require.NoError(t, err)
		assert.Equal(t, []uint{p3.ID, sc.P1.ID}, PostIDs(byTag))

		byAuthor, err := s.ListPosts(ctx, storage.PostFilter{AuthorID: ptr(sc.Bob.ID)}, storage.PostRelations{})
		require.NoError(t, err)
		assert.Equal(t, []uint{sc.P2.ID}, PostIDs(byAuthor))

		both, err := s.ListPosts(ctx, storage.PostFilter{TagID: ptr(sc.Go.ID), CategoryID: ptr(sc.Tech.ID)}, storage.PostRelations{})
		require.NoError(t, err)
		assert.Equal(t, []uint{sc.P1.ID}, PostIDs(both))

		none, err := s.ListPosts(ctx, storage.PostFilter{TagID: ptr(sc.Rust.ID)}, storage.PostRelations{})
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})

	t.Run("ListPosts breaks timestamp ties by id descending", func(t *testing.T) {
		s := newStore(t)
		sc := Seed(t, s)
		same := T1.Add(30 * time.Minute)
		a := CreatePost(t, s, "Twin A", sc.Alice, sc.Life, same)
		b := CreatePost(t, s, "Twin B", sc.Bob, sc.Life, same)

		got, err := s.ListPosts(ctx, storage.PostFilter{CategoryID: ptr(sc.Life.ID)}, storage.PostRelations{})
		require.NoError(t, err)
		assert.Equal(t, []uint{b.ID, a.ID}, PostIDs(got))
	})

	t.Run("AddComment inserts and links atomically", func(t *testing.T) {
		s := newStore(t)
		sc := Seed(t, s)

		post, err := s.GetPostByID(ctx, sc.P1.ID, storage.PostRelations{Comments: true})
		require.NoError(t, err)
		require.Empty(t, post.Comments)

		comment := &domain.Comment{Body: "Nice", CreatedAt: T2, AuthorID: sc.Bob.ID, Author: sc.Bob}
		require.NoError(t, s.AddComment(ctx, post, comment))
		assert.NotZero(t, comment.ID)
		assert.Equal(t, sc.P1.ID, comment.PostID)
		assert.Len(t, post.Comments, 1)

		stored, err := s.GetCommentByID(ctx, comment.ID, storage.CommentRelations{Author: true})
		require.NoError(t, err)
		assert.Equal(t, "Nice", stored.Body)
		assert.Equal(t, sc.P1.ID, stored.PostID)
		require.NotNil(t, stored.Author)
		assert.Equal(t, "bob", stored.Author.Username)

		full, err := s.GetPostByID(ctx, sc.P1.ID, storage.FullPost)
		require.NoError(t, err)
		require.Len(t, full.Comments, 1)
		require.NotNil(t, full.Comments[0].Author)
		assert.Equal(t, "bob", full.Comments[0].Author.Username)
	})

	t.Run("AddComment on a missing post persists nothing", func(t *testing.T) {
		s := newStore(t)
		sc := Seed(t, s)

		ghost := &domain.Post{ID: 999}
		comment := &domain.Comment{Body: "lost", CreatedAt: T2, AuthorID: sc.Alice.ID}
		err := s.AddComment(ctx, ghost, comment)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.Empty(t, ghost.Comments)

		all, err := s.ListPosts(ctx, storage.PostFilter{}, storage.PostRelations{Comments: true})
		require.NoError(t, err)
		for _, p := range all {
			assert.Empty(t, p.Comments)
		}
	})

	t.Run("AddComment with a missing author persists nothing", func(t *testing.T) {
		s := newStore(t)
		sc := Seed(t, s)

		post, err := s.GetPostByID(ctx, sc.P1.ID, storage.PostRelations{Comments: true})
		require.NoError(t, err)

		err = s.AddComment(ctx, post, &domain.Comment{Body: "orphan", CreatedAt: T2, AuthorID: 999})
		assert.ErrorIs(t, err, storage.ErrMissingAuthor)
		assert.NotErrorIs(t, err, storage.ErrNotFound)
		assert.Empty(t, post.Comments)

		again, err := s.GetPostByID(ctx, sc.P1.ID, storage.PostRelations{Comments: true})
		require.NoError(t, err)
		assert.Empty(t, again.Comments)
	})

	t.Run("GetCommentByID missing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetCommentByID(ctx, 42, storage.CommentRelations{Author: true})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("returned posts are detached", func(t *testing.T) {
		s := newStore(t)
		sc := Seed(t, s)

		p, err := s.GetPostByID(ctx, sc.P1.ID, storage.PostRelations{})
		require.NoError(t, err)
		p.Title = "changed"

		again, err := s.GetPostByID(ctx, sc.P1.ID, storage.PostRelations{})
		require.NoError(t, err)
		assert.Equal(t, "Go in production", again.Title)
	})
}
