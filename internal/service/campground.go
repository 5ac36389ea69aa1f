// Package service contains the business logic for the campground API.
// Services validate inputs, enforce business rules, and orchestrate
// external-service and repo calls. No SQL lives here — services depend
// on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/mkarsten/campground-api/internal/domain"
	"github.com/mkarsten/campground-api/internal/observability"
	"github.com/mkarsten/campground-api/internal/repo"
)

// priceRe matches a display-formatted decimal amount: "12", "9.5", "9.00".
var priceRe = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// CreateInput carries the user-supplied fields plus the acting session's
// identity into Create. ImagePath points at the uploaded file on local disk;
// the caller owns that file and removes it after Create returns.
type CreateInput struct {
	Name        string
	Price       string
	Description string
	Location    string
	ImagePath   string
	Author      domain.Author
}

// UpdateInput carries the full replacement field set into Update.
// Image is a plain URL string, not a re-uploaded file: the edit form
// pre-fills the existing URL. Author is deliberately absent — authorship
// is fixed at creation.
type UpdateInput struct {
	ID          uuid.UUID
	Name        string
	Price       string
	Description string
	Location    string
	Image       string
}

// CampgroundService implements business logic for Campground operations.
// Create and Update sequence the external calls strictly: geocode, then
// upload (create only), then the single store write. Nothing durable
// happens until every upstream call has succeeded.
type CampgroundService struct {
	campgrounds repo.CampgroundRepo
	comments    repo.CommentRepo
	geocoder    domain.Geocoder
	uploader    domain.Uploader
	metrics     *observability.Metrics
}

// NewCampgroundService constructs a CampgroundService with its collaborators.
func NewCampgroundService(
	campgrounds repo.CampgroundRepo,
	comments repo.CommentRepo,
	geocoder domain.Geocoder,
	uploader domain.Uploader,
	metrics *observability.Metrics,
) *CampgroundService {
	return &CampgroundService{
		campgrounds: campgrounds,
		comments:    comments,
		geocoder:    geocoder,
		uploader:    uploader,
		metrics:     metrics,
	}
}

// List returns campgrounds, optionally filtered by a literal case-insensitive
// substring match on name. Always returns a non-nil slice.
func (s *CampgroundService) List(ctx context.Context, search string) ([]domain.Campground, error) {
	campgrounds, err := s.campgrounds.List(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("service.CampgroundService.List: %w", err)
	}
	if campgrounds == nil {
		return []domain.Campground{}, nil
	}
	return campgrounds, nil
}

// Create geocodes the location, uploads the image, and persists the merged
// entity. The store write is last: a failure in either external call leaves
// no partial record. Location, Lat, and Lng all come from the same geocode
// response, and the author is captured from in.Author exactly once.
func (s *CampgroundService) Create(ctx context.Context, in CreateInput) (domain.Campground, error) {
	if err := validateFields(in.Name, in.Price); err != nil {
		return domain.Campground{}, err
	}
	if strings.TrimSpace(in.Location) == "" {
		return domain.Campground{}, fmt.Errorf("%w: location is required", domain.ErrValidation)
	}

	geo, err := s.geocoder.Geocode(ctx, in.Location)
	if err != nil {
		return domain.Campground{}, externalErr("service.CampgroundService.Create: geocode", err)
	}

	imageURL, err := s.uploader.Upload(ctx, in.ImagePath)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return domain.Campground{}, fmt.Errorf("service.CampgroundService.Create: %w", err)
		}
		return domain.Campground{}, externalErr("service.CampgroundService.Create: upload", err)
	}

	created, err := s.campgrounds.Create(ctx, domain.Campground{
		Name:        in.Name,
		Price:       in.Price,
		Description: in.Description,
		Image:       imageURL,
		Location:    geo.FormattedAddress,
		Lat:         geo.Lat,
		Lng:         geo.Lng,
		Author:      in.Author,
	})
	if err != nil {
		return domain.Campground{}, fmt.Errorf("service.CampgroundService.Create: %w", err)
	}

	s.metrics.CampgroundsCreated.Inc()
	return created, nil
}

// GetByID returns a single campground with its comments expanded.
// Returns domain.ErrNotFound when the campground does not exist.
func (s *CampgroundService) GetByID(ctx context.Context, id uuid.UUID) (domain.Campground, []domain.Comment, error) {
	cg, err := s.campgrounds.GetByID(ctx, id)
	if err != nil {
		return domain.Campground{}, nil, fmt.Errorf("service.CampgroundService.GetByID: %w", err)
	}

	comments, err := s.comments.ListByCampgroundID(ctx, id)
	if err != nil {
		return domain.Campground{}, nil, fmt.Errorf("service.CampgroundService.GetByID: comments: %w", err)
	}
	if comments == nil {
		comments = []domain.Comment{}
	}

	return cg, comments, nil
}

// Get returns a single campground without comment expansion (edit form,
// ownership checks).
func (s *CampgroundService) Get(ctx context.Context, id uuid.UUID) (domain.Campground, error) {
	cg, err := s.campgrounds.GetByID(ctx, id)
	if err != nil {
		return domain.Campground{}, fmt.Errorf("service.CampgroundService.Get: %w", err)
	}
	return cg, nil
}

// Update geocodes the submitted location and overwrites {name, image,
// description, price, location, lat, lng} as a unit. The stored author is
// untouched: the repo's SET list does not include it.
func (s *CampgroundService) Update(ctx context.Context, in UpdateInput) (domain.Campground, error) {
	if err := validateFields(in.Name, in.Price); err != nil {
		return domain.Campground{}, err
	}
	if strings.TrimSpace(in.Location) == "" {
		return domain.Campground{}, fmt.Errorf("%w: location is required", domain.ErrValidation)
	}

	geo, err := s.geocoder.Geocode(ctx, in.Location)
	if err != nil {
		return domain.Campground{}, externalErr("service.CampgroundService.Update: geocode", err)
	}

	updated, err := s.campgrounds.Update(ctx, domain.Campground{
		ID:          in.ID,
		Name:        in.Name,
		Price:       in.Price,
		Description: in.Description,
		Image:       in.Image,
		Location:    geo.FormattedAddress,
		Lat:         geo.Lat,
		Lng:         geo.Lng,
	})
	if err != nil {
		return domain.Campground{}, fmt.Errorf("service.CampgroundService.Update: %w", err)
	}

	return updated, nil
}

// Delete removes a campground by ID; its comments cascade in the store.
// Returns domain.ErrNotFound when it does not exist.
func (s *CampgroundService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.campgrounds.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.CampgroundService.Delete: %w", err)
	}
	s.metrics.CampgroundsDeleted.Inc()
	return nil
}

// validateFields enforces business rules common to Create and Update.
func validateFields(name, price string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if !priceRe.MatchString(price) {
		return fmt.Errorf("%w: price must be a decimal amount like 9.00", domain.ErrValidation)
	}
	return nil
}

// externalErr tags a collaborating-service failure with domain.ErrExternal
// while preserving the underlying error chain (errors.Is still sees
// domain.ErrNoResults through it).
func externalErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrExternal, err)
}
