package main

import (
	"context"
	"fmt"
	"time"

	"github.com/UkralStul/blog-service/internal/domain"
	"github.com/UkralStul/blog-service/internal/storage"
)

// fillWithMockData seeds a small blog so the endpoints have something to show.
func fillWithMockData(ctx context.Context, s storage.Storage) error {
	users := map[string]*domain.User{}
	for _, u := range []domain.User{
		{Username: "alice", DisplayName: "Alice"},
		{Username: "bob", DisplayName: "Bob"},
	} {
		created, err := s.CreateUser(ctx, &u)
		if err != nil {
			return fmt.Errorf("create user %s: %w", u.Username, err)
		}
		users[u.Username] = created
	}

	categories := map[string]*domain.Category{}
	for _, name := range []string{"tech", "life"} {
		created, err := s.CreateCategory(ctx, &domain.Category{Name: name})
		if err != nil {
			return fmt.Errorf("create category %s: %w", name, err)
		}
		categories[name] = created
	}

	tags := map[string]*domain.Tag{}
	for _, name := range []string{"go", "graphql", "databases"} {
		created, err := s.CreateTag(ctx, &domain.Tag{Name: name})
		if err != nil {
			return fmt.Errorf("create tag %s: %w", name, err)
		}
		tags[name] = created
	}

	now := time.Now().UTC().Truncate(time.Microsecond)

	// 1. Пост с тегами и комментарием.
	first, err := s.CreatePost(ctx, &domain.Post{
		Title:      "Тестовый пост о Go",
		Body:       "Это содержимое тестового поста. Здесь мы обсуждаем Go и базы данных.",
		CreatedAt:  now.Add(-2 * time.Hour),
		AuthorID:   users["alice"].ID,
		CategoryID: categories["tech"].ID,
		Tags:       []*domain.Tag{tags["go"], tags["databases"]},
	})
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}

	err = s.AddComment(ctx, first, &domain.Comment{
		Body:      "Отличный пост! Очень информативно.",
		CreatedAt: now.Add(-time.Hour),
		AuthorID:  users["bob"].ID,
	})
	if err != nil {
		return fmt.Errorf("add comment: %w", err)
	}

	// 2. Пост без тегов и комментариев.
	_, err = s.CreatePost(ctx, &domain.Post{
		Title:      "Выходные",
		Body:       "Пост без тегов.",
		CreatedAt:  now,
		AuthorID:   users["bob"].ID,
		CategoryID: categories["life"].ID,
	})
	if err != nil {
		return fmt.Errorf("create second post: %w", err)
	}
	return nil
}
