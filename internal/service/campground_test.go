package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarsten/campground-api/internal/domain"
	"github.com/mkarsten/campground-api/internal/observability"
	"github.com/mkarsten/campground-api/internal/repo"
	"github.com/mkarsten/campground-api/internal/service"
)

// ---- mocks -----------------------------------------------------------------

// mockCampgroundRepo is a hand-written test double for repo.CampgroundRepo.
// Set only the method fields your test needs.
type mockCampgroundRepo struct {
	create  func(ctx context.Context, cg domain.Campground) (domain.Campground, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Campground, error)
	list    func(ctx context.Context, search string) ([]domain.Campground, error)
	update  func(ctx context.Context, cg domain.Campground) (domain.Campground, error)
	delete  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockCampgroundRepo) Create(ctx context.Context, cg domain.Campground) (domain.Campground, error) {
	return m.create(ctx, cg)
}
func (m *mockCampgroundRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Campground, error) {
	return m.getByID(ctx, id)
}
func (m *mockCampgroundRepo) List(ctx context.Context, search string) ([]domain.Campground, error) {
	return m.list(ctx, search)
}
func (m *mockCampgroundRepo) Update(ctx context.Context, cg domain.Campground) (domain.Campground, error) {
	return m.update(ctx, cg)
}
func (m *mockCampgroundRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

// compile-time check: mockCampgroundRepo must satisfy repo.CampgroundRepo.
var _ repo.CampgroundRepo = (*mockCampgroundRepo)(nil)

type mockCommentRepo struct {
	create             func(ctx context.Context, c domain.Comment) (domain.Comment, error)
	listByCampgroundID func(ctx context.Context, campgroundID uuid.UUID) ([]domain.Comment, error)
}

func (m *mockCommentRepo) Create(ctx context.Context, c domain.Comment) (domain.Comment, error) {
	return m.create(ctx, c)
}
func (m *mockCommentRepo) ListByCampgroundID(ctx context.Context, campgroundID uuid.UUID) ([]domain.Comment, error) {
	return m.listByCampgroundID(ctx, campgroundID)
}

var _ repo.CommentRepo = (*mockCommentRepo)(nil)

type mockGeocoder struct {
	geocode func(ctx context.Context, address string) (domain.GeocodeResult, error)
}

func (m *mockGeocoder) Geocode(ctx context.Context, address string) (domain.GeocodeResult, error) {
	return m.geocode(ctx, address)
}

type mockUploader struct {
	upload func(ctx context.Context, localPath string) (string, error)
}

func (m *mockUploader) Upload(ctx context.Context, localPath string) (string, error) {
	return m.upload(ctx, localPath)
}

// ---- helpers ---------------------------------------------------------------

func okGeocoder() *mockGeocoder {
	return &mockGeocoder{
		geocode: func(_ context.Context, _ string) (domain.GeocodeResult, error) {
			return domain.GeocodeResult{
				FormattedAddress: "1 Main St, Springfield, IL, USA",
				Lat:              39.8,
				Lng:              -89.6,
			}, nil
		},
	}
}

func okUploader() *mockUploader {
	return &mockUploader{
		upload: func(_ context.Context, _ string) (string, error) {
			return "https://cdn/img123.jpg", nil
		},
	}
}

// echoCreateRepo stores the created entity into dst and assigns an ID.
func echoCreateRepo(dst *domain.Campground, writes *int) *mockCampgroundRepo {
	return &mockCampgroundRepo{
		create: func(_ context.Context, cg domain.Campground) (domain.Campground, error) {
			*writes++
			cg.ID = uuid.New()
			*dst = cg
			return cg, nil
		},
	}
}

func validCreateInput() service.CreateInput {
	return service.CreateInput{
		Name:        "Springfield Riverside",
		Price:       "15.00",
		Description: "Shaded sites by the river",
		Location:    "1 Main St, Springfield",
		ImagePath:   "/tmp/upload-123.jpg",
		Author:      domain.Author{ID: uuid.New(), Username: "trailhead_tom"},
	}
}

func newService(campgrounds repo.CampgroundRepo, comments repo.CommentRepo, g domain.Geocoder, u domain.Uploader) *service.CampgroundService {
	return service.NewCampgroundService(campgrounds, comments, g, u, observability.NewMetricsForTesting())
}

// ---- Create ----------------------------------------------------------------

func TestCampgroundService_Create_OK(t *testing.T) {
	var stored domain.Campground
	writes := 0
	in := validCreateInput()

	svc := newService(echoCreateRepo(&stored, &writes), nil, okGeocoder(), okUploader())

	got, err := svc.Create(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, 1, writes, "exactly one store write")

	// location/lat/lng all derive from the same geocode response.
	assert.Equal(t, "1 Main St, Springfield, IL, USA", stored.Location)
	assert.Equal(t, 39.8, stored.Lat)
	assert.Equal(t, -89.6, stored.Lng)

	assert.Equal(t, "https://cdn/img123.jpg", stored.Image)
	assert.Equal(t, in.Author, stored.Author, "author comes from the acting session")
	assert.Equal(t, in.Name, stored.Name)
	assert.Equal(t, in.Price, stored.Price)
	assert.Equal(t, got.ID, stored.ID)
}

func TestCampgroundService_Create_GeocodeBeforeUploadBeforeStore(t *testing.T) {
	var order []string
	writes := 0
	var stored domain.Campground

	geocoder := &mockGeocoder{
		geocode: func(_ context.Context, _ string) (domain.GeocodeResult, error) {
			order = append(order, "geocode")
			return domain.GeocodeResult{FormattedAddress: "x", Lat: 1, Lng: 2}, nil
		},
	}
	uploader := &mockUploader{
		upload: func(_ context.Context, _ string) (string, error) {
			order = append(order, "upload")
			return "https://cdn/a.jpg", nil
		},
	}
	repo := echoCreateRepo(&stored, &writes)
	createInner := repo.create
	repo.create = func(ctx context.Context, cg domain.Campground) (domain.Campground, error) {
		order = append(order, "store")
		return createInner(ctx, cg)
	}

	svc := newService(repo, nil, geocoder, uploader)
	_, err := svc.Create(context.Background(), validCreateInput())

	require.NoError(t, err)
	assert.Equal(t, []string{"geocode", "upload", "store"}, order)
}

func TestCampgroundService_Create_UploadFails_NoStoreWrite(t *testing.T) {
	writes := 0
	repo := &mockCampgroundRepo{
		create: func(_ context.Context, _ domain.Campground) (domain.Campground, error) {
			writes++
			return domain.Campground{}, nil
		},
	}
	uploader := &mockUploader{
		upload: func(_ context.Context, _ string) (string, error) {
			return "", errors.New("upload service down")
		},
	}

	svc := newService(repo, nil, okGeocoder(), uploader)
	_, err := svc.Create(context.Background(), validCreateInput())

	require.ErrorIs(t, err, domain.ErrExternal)
	assert.Equal(t, 0, writes, "no partial record may exist")
}

func TestCampgroundService_Create_GeocodeFails_NothingElseRuns(t *testing.T) {
	uploads, writes := 0, 0
	geocoder := &mockGeocoder{
		geocode: func(_ context.Context, _ string) (domain.GeocodeResult, error) {
			return domain.GeocodeResult{}, errors.New("geocoder down")
		},
	}
	uploader := &mockUploader{
		upload: func(_ context.Context, _ string) (string, error) {
			uploads++
			return "", nil
		},
	}
	repo := &mockCampgroundRepo{
		create: func(_ context.Context, _ domain.Campground) (domain.Campground, error) {
			writes++
			return domain.Campground{}, nil
		},
	}

	svc := newService(repo, nil, geocoder, uploader)
	_, err := svc.Create(context.Background(), validCreateInput())

	require.ErrorIs(t, err, domain.ErrExternal)
	assert.Equal(t, 0, uploads)
	assert.Equal(t, 0, writes)
}

func TestCampgroundService_Create_EmptyGeocodeResults(t *testing.T) {
	geocoder := &mockGeocoder{
		geocode: func(_ context.Context, _ string) (domain.GeocodeResult, error) {
			return domain.GeocodeResult{}, domain.ErrNoResults
		},
	}

	svc := newService(nil, nil, geocoder, okUploader())
	_, err := svc.Create(context.Background(), validCreateInput())

	// Zero results is an explicit geocoding failure, still visible through
	// the external-error wrapper.
	require.ErrorIs(t, err, domain.ErrNoResults)
	require.ErrorIs(t, err, domain.ErrExternal)
}

func TestCampgroundService_Create_Validation(t *testing.T) {
	svc := newService(nil, nil, okGeocoder(), okUploader())

	for name, mutate := range map[string]func(*service.CreateInput){
		"blank name":       func(in *service.CreateInput) { in.Name = "   " },
		"malformed price":  func(in *service.CreateInput) { in.Price = "9.999" },
		"negative price":   func(in *service.CreateInput) { in.Price = "-1" },
		"missing location": func(in *service.CreateInput) { in.Location = "" },
	} {
		t.Run(name, func(t *testing.T) {
			in := validCreateInput()
			mutate(&in)
			_, err := svc.Create(context.Background(), in)
			require.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestCampgroundService_Create_NonImageUploadRejected(t *testing.T) {
	writes := 0
	repo := &mockCampgroundRepo{
		create: func(_ context.Context, _ domain.Campground) (domain.Campground, error) {
			writes++
			return domain.Campground{}, nil
		},
	}
	uploader := &mockUploader{
		upload: func(_ context.Context, _ string) (string, error) {
			// Mirrors the uploader's extension rejection.
			return "", fmt.Errorf("%w: only image files are allowed", domain.ErrValidation)
		},
	}

	svc := newService(repo, nil, okGeocoder(), uploader)
	_, err := svc.Create(context.Background(), validCreateInput())

	require.ErrorIs(t, err, domain.ErrValidation)
	assert.NotErrorIs(t, err, domain.ErrExternal, "a rejected file is the caller's fault, not the service's")
	assert.Equal(t, 0, writes)
}

// ---- List ------------------------------------------------------------------

func TestCampgroundService_List_NilBecomesEmptySlice(t *testing.T) {
	repo := &mockCampgroundRepo{
		list: func(_ context.Context, search string) ([]domain.Campground, error) {
			assert.Equal(t, "pines", search)
			return nil, nil
		},
	}

	svc := newService(repo, nil, nil, nil)
	got, err := svc.List(context.Background(), "pines")

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

// ---- GetByID ---------------------------------------------------------------

func TestCampgroundService_GetByID_ExpandsComments(t *testing.T) {
	id := uuid.New()
	repo := &mockCampgroundRepo{
		getByID: func(_ context.Context, got uuid.UUID) (domain.Campground, error) {
			assert.Equal(t, id, got)
			return domain.Campground{ID: id, Name: "Cloud's Rest"}, nil
		},
	}
	comments := &mockCommentRepo{
		listByCampgroundID: func(_ context.Context, campgroundID uuid.UUID) ([]domain.Comment, error) {
			return []domain.Comment{{CampgroundID: campgroundID, Text: "great spot"}}, nil
		},
	}

	svc := newService(repo, comments, nil, nil)
	cg, cs, err := svc.GetByID(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, "Cloud's Rest", cg.Name)
	require.Len(t, cs, 1)
	assert.Equal(t, "great spot", cs[0].Text)
}

func TestCampgroundService_GetByID_NotFound(t *testing.T) {
	repo := &mockCampgroundRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Campground, error) {
			return domain.Campground{}, domain.ErrNotFound
		},
	}

	svc := newService(repo, nil, nil, nil)
	_, _, err := svc.GetByID(context.Background(), uuid.New())

	require.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- Update ----------------------------------------------------------------

func TestCampgroundService_Update_OK_FullOverwrite(t *testing.T) {
	var sent domain.Campground
	repo := &mockCampgroundRepo{
		update: func(_ context.Context, cg domain.Campground) (domain.Campground, error) {
			sent = cg
			return cg, nil
		},
	}

	svc := newService(repo, nil, okGeocoder(), nil)
	in := service.UpdateInput{
		ID:          uuid.New(),
		Name:        "Springfield Riverside",
		Price:       "20.00",
		Description: "",
		Location:    "1 Main St, Springfield",
		Image:       "https://cdn/old.jpg",
	}

	_, err := svc.Update(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, in.ID, sent.ID)
	assert.Equal(t, "1 Main St, Springfield, IL, USA", sent.Location)
	assert.Equal(t, 39.8, sent.Lat)
	assert.Equal(t, -89.6, sent.Lng)
	assert.Equal(t, "https://cdn/old.jpg", sent.Image, "image is the submitted URL, never re-uploaded")
	assert.Equal(t, "", sent.Description, "omitted fields blank — full-replacement semantics")
	assert.Equal(t, domain.Author{}, sent.Author, "service never sends an author on update")
}

func TestCampgroundService_Update_GeocodeFails_NoStoreWrite(t *testing.T) {
	writes := 0
	repo := &mockCampgroundRepo{
		update: func(_ context.Context, _ domain.Campground) (domain.Campground, error) {
			writes++
			return domain.Campground{}, nil
		},
	}
	geocoder := &mockGeocoder{
		geocode: func(_ context.Context, _ string) (domain.GeocodeResult, error) {
			return domain.GeocodeResult{}, domain.ErrNoResults
		},
	}

	svc := newService(repo, nil, geocoder, nil)
	_, err := svc.Update(context.Background(), service.UpdateInput{
		ID: uuid.New(), Name: "x", Price: "1", Location: "nowhere",
	})

	require.ErrorIs(t, err, domain.ErrNoResults)
	assert.Equal(t, 0, writes)
}

// ---- Delete ----------------------------------------------------------------

func TestCampgroundService_Delete_OK(t *testing.T) {
	id := uuid.New()
	repo := &mockCampgroundRepo{
		delete: func(_ context.Context, got uuid.UUID) error {
			assert.Equal(t, id, got)
			return nil
		},
	}

	svc := newService(repo, nil, nil, nil)
	require.NoError(t, svc.Delete(context.Background(), id))
}

func TestCampgroundService_Delete_NotFound(t *testing.T) {
	repo := &mockCampgroundRepo{
		delete: func(_ context.Context, _ uuid.UUID) error {
			return domain.ErrNotFound
		},
	}

	svc := newService(repo, nil, nil, nil)
	err := svc.Delete(context.Background(), uuid.New())

	require.ErrorIs(t, err, domain.ErrNotFound)
}
