package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mkarsten/campground-api/internal/domain"
)

// CommentRepo defines the persistence operations for Comments.
// Comments are read-only in this service apart from Create, which exists
// so integration tests can seed the detail-view expansion.
type CommentRepo interface {
	// Create inserts a new comment and returns the persisted record.
	Create(ctx context.Context, c domain.Comment) (domain.Comment, error)

	// ListByCampgroundID returns all comments on a campground, oldest first.
	ListByCampgroundID(ctx context.Context, campgroundID uuid.UUID) ([]domain.Comment, error)
}

// pgCommentRepo is the Postgres implementation of CommentRepo.
type pgCommentRepo struct {
	db db
}

// NewCommentRepo constructs a CommentRepo backed by the provided db connection.
func NewCommentRepo(db db) CommentRepo {
	return &pgCommentRepo{db: db}
}

// Create inserts a new comment row and returns the full persisted record.
func (r *pgCommentRepo) Create(ctx context.Context, c domain.Comment) (domain.Comment, error) {
	const q = `
		INSERT INTO comments (campground_id, text, author_id, author_username)
		VALUES (@campground_id, @text, @author_id, @author_username)
		RETURNING id, campground_id, text, author_id, author_username, created_at`

	args := pgx.NamedArgs{
		"campground_id":   c.CampgroundID,
		"text":            c.Text,
		"author_id":       c.Author.ID,
		"author_username": c.Author.Username,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanComment(row)
	if err != nil {
		return domain.Comment{}, fmt.Errorf("repo.CommentRepo.Create: %w", err)
	}
	return result, nil
}

// ListByCampgroundID returns all comments on a campground ordered by created_at.
func (r *pgCommentRepo) ListByCampgroundID(ctx context.Context, campgroundID uuid.UUID) ([]domain.Comment, error) {
	const q = `
		SELECT id, campground_id, text, author_id, author_username, created_at
		FROM comments
		WHERE campground_id = @campground_id
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"campground_id": campgroundID})
	if err != nil {
		return nil, fmt.Errorf("repo.CommentRepo.ListByCampgroundID: %w", err)
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.CommentRepo.ListByCampgroundID: scan: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.CommentRepo.ListByCampgroundID: rows: %w", err)
	}

	return comments, nil
}

// scanComment maps a single database row into a domain.Comment.
func scanComment(s scanner) (domain.Comment, error) {
	var (
		c            domain.Comment
		id           pgtype.UUID
		campgroundID pgtype.UUID
		authorID     pgtype.UUID
	)

	err := s.Scan(&id, &campgroundID, &c.Text, &authorID, &c.Author.Username, &c.CreatedAt)
	if err != nil {
		return domain.Comment{}, err
	}

	c.ID = uuid.UUID(id.Bytes)
	c.CampgroundID = uuid.UUID(campgroundID.Bytes)
	c.Author.ID = uuid.UUID(authorID.Bytes)

	return c, nil
}
