package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mkarsten/campground-api/internal/domain"
	"github.com/mkarsten/campground-api/internal/middleware"
	"github.com/mkarsten/campground-api/internal/service"
	"github.com/mkarsten/campground-api/internal/upload"
)

// createForm is the multipart field set for POST /campgrounds.
// The image arrives as a file part, handled separately.
type createForm struct {
	Name        string `validate:"required,max=140"`
	Price       string `validate:"required,max=20"`
	Description string `validate:"max=2000"`
	Location    string `validate:"required,max=280"`
}

// updateForm is the JSON body for PUT /campgrounds/{id}. It is a full
// replacement: every field is resubmitted, and Image is a plain URL string
// (the edit form pre-fills the existing one) — images are not re-uploaded
// on update.
type updateForm struct {
	Name        string `json:"name" validate:"required,max=140"`
	Price       string `json:"price" validate:"required,max=20"`
	Description string `json:"description" validate:"max=2000"`
	Location    string `json:"location" validate:"required,max=280"`
	Image       string `json:"image" validate:"omitempty,url,max=500"`
}

// ListCampgrounds handles GET /campgrounds.
// The optional ?search= parameter filters on name as a literal,
// case-insensitive substring — metacharacters in the search text never act
// as wildcards.
func (s *Server) ListCampgrounds(w http.ResponseWriter, r *http.Request) {
	campgrounds, err := s.campgrounds.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		s.writeServiceError(w, r, err, "campgrounds not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"campgrounds": campgrounds})
}

// CreateCampground handles POST /campgrounds (multipart/form-data).
// The uploaded image is spooled to a temp file that is removed on every
// exit path, then the service runs geocode → upload → persist with the
// store write last.
func (s *Server) CreateCampground(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "you need to be logged in to do that")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			writeError(w, http.StatusUnprocessableEntity, "validation_error", "image file is required")
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", "malformed multipart body")
		return
	}
	defer file.Close()

	// Reject non-images before any temp file or external call.
	if !upload.AllowedExtension(header.Filename) {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "only image files are allowed")
		return
	}

	form := createForm{
		Name:        r.FormValue("name"),
		Price:       r.FormValue("price"),
		Description: r.FormValue("description"),
		Location:    r.FormValue("location"),
	}
	if err := s.validate.Struct(form); err != nil {
		writeValidatorError(w, err)
		return
	}

	tmpPath, err := spoolUpload(file, header.Filename)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "spool upload", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
		return
	}
	// The temp file is a scoped resource: release it no matter how the
	// request ends, or local disk grows without bound.
	defer os.Remove(tmpPath)

	created, err := s.campgrounds.Create(r.Context(), service.CreateInput{
		Name:        form.Name,
		Price:       form.Price,
		Description: form.Description,
		Location:    form.Location,
		ImagePath:   tmpPath,
		Author: domain.Author{
			ID:       identity.UserID,
			Username: identity.Username,
		},
	})
	if err != nil {
		s.writeServiceError(w, r, err, "campground not found")
		return
	}

	w.Header().Set("Location", "/campgrounds/"+created.ID.String())
	writeJSON(w, http.StatusCreated, map[string]any{"campground": created})
}

// GetNewForm handles GET /campgrounds/new.
// No data operation — it returns the creation form view model so clients
// can render the form without hardcoding field names or the image rules.
func (s *Server) GetNewForm(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"form": map[string]any{
			"fields":                    []string{"name", "price", "description", "location", "image"},
			"accepted_image_extensions": []string{".jpg", ".jpeg", ".png", ".gif"},
			"encoding":                  "multipart/form-data",
		},
	})
}

// GetCampground handles GET /campgrounds/{id}.
// The response includes the campground's comments, expanded from the store.
func (s *Server) GetCampground(w http.ResponseWriter, r *http.Request) {
	id, ok := s.campgroundID(w, r)
	if !ok {
		return
	}

	cg, comments, err := s.campgrounds.GetByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, "campground not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"campground": cg,
		"comments":   comments,
	})
}

// GetEditForm handles GET /campgrounds/{id}/edit (owner only).
// It returns the record as an edit view model: all current values,
// including the image URL, prefilled for resubmission.
func (s *Server) GetEditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := s.campgroundID(w, r)
	if !ok {
		return
	}

	cg, err := s.campgrounds.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, "campground not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"campground": cg})
}

// UpdateCampground handles PUT /campgrounds/{id} (owner only).
// The submitted location is re-geocoded and {name, image, description,
// price, location, lat, lng} are overwritten as a unit; the stored author
// is never touched.
func (s *Server) UpdateCampground(w http.ResponseWriter, r *http.Request) {
	id, ok := s.campgroundID(w, r)
	if !ok {
		return
	}

	var form updateForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed JSON body")
		return
	}
	if err := s.validate.Struct(form); err != nil {
		writeValidatorError(w, err)
		return
	}

	updated, err := s.campgrounds.Update(r.Context(), service.UpdateInput{
		ID:          id,
		Name:        form.Name,
		Price:       form.Price,
		Description: form.Description,
		Location:    form.Location,
		Image:       form.Image,
	})
	if err != nil {
		s.writeServiceError(w, r, err, "campground not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"campground": updated})
}

// DeleteCampground handles DELETE /campgrounds/{id} (owner only).
// Comments cascade in the store.
func (s *Server) DeleteCampground(w http.ResponseWriter, r *http.Request) {
	id, ok := s.campgroundID(w, r)
	if !ok {
		return
	}

	if err := s.campgrounds.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err, "campground not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// campgroundID parses the {id} URL parameter. A malformed id cannot name
// any record, so it reports 404 rather than 400, matching the ownership
// middleware.
func (s *Server) campgroundID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "campground not found")
		return uuid.UUID{}, false
	}
	return id, true
}

// spoolUpload copies the uploaded part to a temp file carrying the original
// extension (the upload service checks it) and returns its path. The caller
// removes the file when done.
func spoolUpload(src io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	tmp, err := os.CreateTemp("", "campground-*"+ext)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
