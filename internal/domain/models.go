package domain

import "time"

// User is a registered author of posts and comments.
type User struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Username    string `json:"username" gorm:"type:varchar(255);not null;uniqueIndex"`
	DisplayName string `json:"displayName" gorm:"type:varchar(255)"`
}

// Category groups posts. Every post has exactly one.
type Category struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"type:varchar(255);not null;uniqueIndex"`
}

// Tag labels posts through the post_tags join table.
type Tag struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"type:varchar(255);not null;uniqueIndex"`
}

// PostTag is the join row between a post and a tag.
type PostTag struct {
	PostID uint `gorm:"primaryKey"`
	TagID  uint `gorm:"primaryKey"`
}

// Post represents a blog post.
type Post struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	Title      string     `json:"title" gorm:"type:varchar(255);not null"`
	Body       string     `json:"body" gorm:"type:text;not null"`
	CreatedAt  time.Time  `json:"createdAt" gorm:"not null;index"`
	CategoryID uint       `json:"categoryId" gorm:"not null;index"`
	Category   *Category  `json:"-" gorm:"foreignKey:CategoryID"`
	AuthorID   uint       `json:"authorId" gorm:"not null;index"`
	Author     *User      `json:"-" gorm:"foreignKey:AuthorID"`
	Tags       []*Tag     `json:"-" gorm:"many2many:post_tags"`
	Comments   []*Comment `json:"-" gorm:"foreignKey:PostID"`
}

// Comment belongs to exactly one post and one author.
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Body      string    `json:"body" gorm:"type:varchar(2000);not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null"`
	PostID    uint      `json:"postId" gorm:"not null;index"`
	AuthorID  uint      `json:"authorId" gorm:"not null;index"`
	Author    *User     `json:"-" gorm:"foreignKey:AuthorID"`
}
