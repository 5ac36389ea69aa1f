// Package repo contains all database access logic for the campground API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mkarsten/campground-api/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CampgroundRepo defines the persistence operations for Campgrounds.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
type CampgroundRepo interface {
	// Create inserts a new campground and returns the persisted record (with
	// DB-generated id, created_at, and updated_at populated).
	Create(ctx context.Context, cg domain.Campground) (domain.Campground, error)

	// GetByID retrieves a single campground by its UUID primary key.
	// Returns domain.ErrNotFound if no campground with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Campground, error)

	// List returns campgrounds in insertion order. When search is non-empty
	// it filters on name with a case-insensitive literal substring match:
	// LIKE metacharacters in search match themselves, never act as wildcards.
	List(ctx context.Context, search string) ([]domain.Campground, error)

	// Update overwrites name, image, description, price, location, lat, and
	// lng as a unit. The author columns are deliberately absent from the SET
	// list: authorship is fixed at creation. Returns domain.ErrNotFound if
	// no campground with that ID exists.
	Update(ctx context.Context, cg domain.Campground) (domain.Campground, error)

	// Delete removes a campground by ID (comments cascade).
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgCampgroundRepo is the Postgres implementation of CampgroundRepo.
type pgCampgroundRepo struct {
	db db
}

// NewCampgroundRepo constructs a CampgroundRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewCampgroundRepo(db db) CampgroundRepo {
	return &pgCampgroundRepo{db: db}
}

const campgroundColumns = `id, name, price, description, image, location, lat, lng,
	       author_id, author_username, created_at, updated_at`

// Create inserts a new campground row and returns the full persisted record.
func (r *pgCampgroundRepo) Create(ctx context.Context, cg domain.Campground) (domain.Campground, error) {
	const q = `
		INSERT INTO campgrounds (name, price, description, image, location, lat, lng,
		                         author_id, author_username)
		VALUES (@name, @price, @description, @image, @location, @lat, @lng,
		        @author_id, @author_username)
		RETURNING ` + campgroundColumns

	args := pgx.NamedArgs{
		"name":            cg.Name,
		"price":           cg.Price,
		"description":     cg.Description,
		"image":           cg.Image,
		"location":        cg.Location,
		"lat":             cg.Lat,
		"lng":             cg.Lng,
		"author_id":       cg.Author.ID,
		"author_username": cg.Author.Username,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanCampground(row)
	if err != nil {
		return domain.Campground{}, fmt.Errorf("repo.CampgroundRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a campground by primary key.
func (r *pgCampgroundRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Campground, error) {
	const q = `
		SELECT ` + campgroundColumns + `
		FROM campgrounds
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanCampground(row)
	if err != nil {
		return domain.Campground{}, fmt.Errorf("repo.CampgroundRepo.GetByID: %w", err)
	}
	return result, nil
}

// List returns campgrounds in insertion order, optionally filtered by a
// literal (escaped) case-insensitive substring match on name.
func (r *pgCampgroundRepo) List(ctx context.Context, search string) ([]domain.Campground, error) {
	q := `
		SELECT ` + campgroundColumns + `
		FROM campgrounds`
	args := pgx.NamedArgs{}

	if search != "" {
		q += `
		WHERE name ILIKE @pattern`
		args["pattern"] = "%" + escapeLike(search) + "%"
	}
	q += `
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.CampgroundRepo.List: %w", err)
	}
	defer rows.Close()

	var campgrounds []domain.Campground
	for rows.Next() {
		cg, err := scanCampground(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.CampgroundRepo.List: scan: %w", err)
		}
		campgrounds = append(campgrounds, cg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.CampgroundRepo.List: rows: %w", err)
	}

	return campgrounds, nil
}

// Update overwrites the geocode-derived and user-supplied fields and returns
// the updated record. author_id and author_username are never touched here.
func (r *pgCampgroundRepo) Update(ctx context.Context, cg domain.Campground) (domain.Campground, error) {
	const q = `
		UPDATE campgrounds
		SET name        = @name,
		    price       = @price,
		    description = @description,
		    image       = @image,
		    location    = @location,
		    lat         = @lat,
		    lng         = @lng,
		    updated_at  = now()
		WHERE id = @id
		RETURNING ` + campgroundColumns

	args := pgx.NamedArgs{
		"id":          cg.ID,
		"name":        cg.Name,
		"price":       cg.Price,
		"description": cg.Description,
		"image":       cg.Image,
		"location":    cg.Location,
		"lat":         cg.Lat,
		"lng":         cg.Lng,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanCampground(row)
	if err != nil {
		return domain.Campground{}, fmt.Errorf("repo.CampgroundRepo.Update: %w", err)
	}
	return result, nil
}

// Delete removes a campground by primary key.
func (r *pgCampgroundRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM campgrounds WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.CampgroundRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.CampgroundRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// escapeLike escapes the LIKE/ILIKE metacharacters so user-supplied search
// text is matched literally. Backslash must be escaped first.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanCampground
// to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanCampground maps a single database row into a domain.Campground.
func scanCampground(s scanner) (domain.Campground, error) {
	var (
		cg       domain.Campground
		id       pgtype.UUID
		authorID pgtype.UUID
	)

	err := s.Scan(&id, &cg.Name, &cg.Price, &cg.Description, &cg.Image,
		&cg.Location, &cg.Lat, &cg.Lng,
		&authorID, &cg.Author.Username, &cg.CreatedAt, &cg.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Campground{}, domain.ErrNotFound
		}
		return domain.Campground{}, err
	}

	cg.ID = uuid.UUID(id.Bytes)
	cg.Author.ID = uuid.UUID(authorID.Bytes)

	return cg, nil
}
