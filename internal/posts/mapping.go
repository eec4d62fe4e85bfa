package posts

import "github.com/UkralStul/blog-service/internal/domain"

func toSummaries(posts []*domain.Post) []PostSummary {
	out := make([]PostSummary, 0, len(posts))
	for _, p := range posts {
		out = append(out, toSummary(p))
	}
	return out
}

func toSummary(p *domain.Post) PostSummary {
	s := PostSummary{
		ID:        p.ID,
		Title:     p.Title,
		Body:      p.Body,
		Tags:      make([]string, 0, len(p.Tags)),
		Comments:  make([]CommentView, 0, len(p.Comments)),
		CreatedAt: p.CreatedAt,
	}
	if p.Category != nil {
		s.Category = p.Category.Name
	}
	if p.Author != nil {
		s.Author = p.Author.Username
	}
	for _, t := range p.Tags {
		s.Tags = append(s.Tags, t.Name)
	}
	for _, c := range p.Comments {
		view := CommentView{ID: c.ID, Body: c.Body, CreatedAt: c.CreatedAt}
		if c.Author != nil {
			view.Author = Author{ID: c.Author.ID, Username: c.Author.Username}
		}
		s.Comments = append(s.Comments, view)
	}
	return s
}
