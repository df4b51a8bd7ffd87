package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type CommentStore struct {
	db *sqlx.DB
}

func NewCommentStore(db *sqlx.DB) *CommentStore {
	return &CommentStore{db: db}
}

func (s *CommentStore) Create(ctx context.Context, c *Comment) error {
	c.DatePosted = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (author_id, content, date_posted)
		VALUES (?, ?, ?)`, c.AuthorID, c.Content, c.DatePosted)
	if err != nil {
		return fmt.Errorf("inserting comment: %w", err)
	}

	c.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading comment id: %w", err)
	}
	return nil
}

func (s *CommentStore) ListOrderedBy(ctx context.Context, field string) ([]Comment, error) {
	order, err := orderClause(field)
	if err != nil {
		return nil, err
	}

	comments := []Comment{}
	err = s.db.SelectContext(ctx, &comments, `
		SELECT r.id, r.author_id, u.username AS author, r.content, r.date_posted
		FROM comments r
		JOIN users u ON u.id = r.author_id
		ORDER BY `+order)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	return comments, nil
}
