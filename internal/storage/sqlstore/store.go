package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/UkralStul/blog-service/internal/domain"
	"github.com/UkralStul/blog-service/internal/storage"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Store реализует интерфейс Storage поверх gorm (PostgreSQL или SQLite).
type Store struct {
	db *gorm.DB
}

var _ storage.Storage = (*Store)(nil)

// Option configures how the underlying gorm connection is opened.
type Option func(*gorm.Config)

// WithLogLevel sets gorm's own SQL logger verbosity.
func WithLogLevel(level logger.LogLevel) Option {
	return func(c *gorm.Config) {
		c.Logger = logger.Default.LogMode(level)
	}
}

// NewPostgres создает хранилище PostgreSQL.
func NewPostgres(dsn string, opts ...Option) (*Store, error) {
	return open(postgres.Open(dsn), opts...)
}

// NewSQLite opens a SQLite database. Use a shared-cache memory DSN such as
// "file:blog?mode=memory&cache=shared" for throwaway databases.
func NewSQLite(dsn string, opts ...Option) (*Store, error) {
	return open(sqlite.Open(dsn), opts...)
}

func open(dialector gorm.Dialector, opts ...Option) (*Store, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// post_tags описывается явной моделью PostTag; регистрируем до миграции.
	if err := db.SetupJoinTable(&domain.Post{}, "Tags", &domain.PostTag{}); err != nil {
		return nil, fmt.Errorf("failed to set up post_tags join table: %w", err)
	}

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Category{},
		&domain.Tag{},
		&domain.Post{},
		&domain.PostTag{},
		&domain.Comment{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// notFound maps gorm's missing-row error onto storage.ErrNotFound.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, storage.ErrNotFound)
	}
	return err
}

func withPostRelations(q *gorm.DB, rel storage.PostRelations) *gorm.DB {
	if rel.Author {
		q = q.Preload("Author")
	}
	if rel.Category {
		q = q.Preload("Category")
	}
	if rel.Tags {
		q = q.Preload("Tags")
	}
	if rel.Comments || rel.CommentAuthors {
		q = q.Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC, comments.id ASC")
		})
	}
	if rel.CommentAuthors {
		q = q.Preload("Comments.Author")
	}
	return q
}

// === Post Methods ===

func (s *Store) CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	// Теги должны существовать заранее; gorm добавит только строки post_tags.
	if err := s.db.WithContext(ctx).Omit("Author", "Category", "Comments", "Tags.*").Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

func (s *Store) GetPostByID(ctx context.Context, id uint, rel storage.PostRelations) (*domain.Post, error) {
	var post domain.Post
	q := withPostRelations(s.db.WithContext(ctx), rel)
	if err := q.First(&post, "id = ?", id).Error; err != nil {
		return nil, notFound(err, fmt.Sprintf("post %d", id))
	}
	return &post, nil
}

func (s *Store) ListPosts(ctx context.Context, filter storage.PostFilter, rel storage.PostRelations) ([]*domain.Post, error) {
	q := s.db.WithContext(ctx).Model(&domain.Post{})

	if filter.AuthorID != nil {
		q = q.Where("posts.author_id = ?", *filter.AuthorID)
	}
	if filter.CategoryID != nil {
		q = q.Where("posts.category_id = ?", *filter.CategoryID)
	}
	if filter.TagID != nil {
		tagged := s.db.Model(&domain.PostTag{}).Select("post_id").Where("tag_id = ?", *filter.TagID)
		q = q.Where("posts.id IN (?)", tagged)
	}

	posts := make([]*domain.Post, 0)
	err := withPostRelations(q, rel).
		Order("posts.created_at DESC, posts.id DESC").
		Find(&posts).Error
	return posts, err
}

// === Comment Methods ===

func (s *Store) GetCommentByID(ctx context.Context, id uint, rel storage.CommentRelations) (*domain.Comment, error) {
	var comment domain.Comment
	q := s.db.WithContext(ctx)
	if rel.Author {
		q = q.Preload("Author")
	}
	if err := q.First(&comment, "id = ?", id).Error; err != nil {
		return nil, notFound(err, fmt.Sprintf("comment %d", id))
	}
	return &comment, nil
}

func (s *Store) AddComment(ctx context.Context, post *domain.Post, comment *domain.Comment) error {
	// Проверка поста и вставка комментария в одной транзакции
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Post{}).Where("id = ?", post.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("post %d: %w", post.ID, storage.ErrNotFound)
		}

		// sqlite без _foreign_keys=1 не проверяет ссылки, поэтому автора проверяем сами.
		if err := tx.Model(&domain.User{}).Where("id = ?", comment.AuthorID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("user %d: %w", comment.AuthorID, storage.ErrMissingAuthor)
		}

		comment.PostID = post.ID
		return tx.Omit(clause.Associations).Create(comment).Error
	})
	if err != nil {
		return err
	}

	post.Comments = append(post.Comments, comment)
	return nil
}

// === Lookup Methods ===

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err, fmt.Sprintf("user %q", username))
	}
	return &user, nil
}

func (s *Store) GetTagByName(ctx context.Context, name string) (*domain.Tag, error) {
	var tag domain.Tag
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error; err != nil {
		return nil, notFound(err, fmt.Sprintf("tag %q", name))
	}
	return &tag, nil
}

func (s *Store) GetCategoryByName(ctx context.Context, name string) (*domain.Category, error) {
	var category domain.Category
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&category).Error; err != nil {
		return nil, notFound(err, fmt.Sprintf("category %q", name))
	}
	return &category, nil
}

// === Seed Methods ===

func (s *Store) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Store) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

func (s *Store) CreateTag(ctx context.Context, tag *domain.Tag) (*domain.Tag, error) {
	if err := s.db.WithContext(ctx).Create(tag).Error; err != nil {
		return nil, err
	}
	return tag, nil
}
