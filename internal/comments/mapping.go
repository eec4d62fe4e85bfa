// Package comments holds the comment command and query handlers.
package comments

import (
	"github.com/UkralStul/blog-service/internal/domain"
	"github.com/UkralStul/blog-service/internal/notify"
)

// Failure reasons returned to callers.
const (
	ReasonPostNotFound    = "Post does not exist"
	ReasonAuthorNotFound  = "Author does not exist"
	ReasonCommentNotFound = "Comment does not exist"
)

func toCommentCreated(c *domain.Comment) CommentCreated {
	return CommentCreated{
		ID:        c.ID,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
	}
}

func toCommentDetails(c *domain.Comment) CommentDetails {
	return CommentDetails{
		ID:        c.ID,
		Body:      c.Body,
		Author:    Author{ID: c.Author.ID, Username: c.Author.Username},
		CreatedAt: c.CreatedAt,
	}
}

func commentEvent(c *domain.Comment) notify.CommentEvent {
	ev := notify.CommentEvent{
		PostID:    c.PostID,
		CommentID: c.ID,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
	}
	if c.Author != nil {
		ev.Author = c.Author.Username
	}
	return ev
}
