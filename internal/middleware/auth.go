package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mkarsten/campground-api/internal/domain"
)

// Identity is the authenticated caller, extracted from validated JWT claims.
type Identity struct {
	UserID   uuid.UUID
	Username string
}

type ctxKey int

const identityKey ctxKey = iota

// IdentityFrom returns the authenticated Identity stored by RequireLogin.
// The boolean is false on requests that did not pass through RequireLogin.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// WithIdentity returns a context carrying the given identity.
// Exported for handler tests, which have no real token to present.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// authClaims is the expected JWT payload: standard registered claims
// (Subject holds the user's UUID) plus the display username.
type authClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Authenticator validates bearer tokens minted by the auth service.
// Tokens are HS256-signed; this API holds the shared secret and only verifies.
type Authenticator struct {
	secret []byte
}

// NewAuthenticator constructs an Authenticator for the given signing secret.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// RequireLogin rejects requests without a valid bearer token (401) and
// stores the caller's Identity in the request context for downstream
// handlers.
func (a *Authenticator) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := a.authenticate(r)
		if err != nil {
			writeAuthError(w, http.StatusUnauthorized, "unauthorized", "you need to be logged in to do that")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// CampgroundFinder is the lookup RequireOwnership needs to compare the
// stored author against the caller. Satisfied by *service.CampgroundService.
type CampgroundFinder interface {
	Get(ctx context.Context, id uuid.UUID) (domain.Campground, error)
}

// RequireOwnership gates a route on the caller being the campground's
// author. It must run after RequireLogin. The campground named by the
// {id} URL parameter is fetched to read its author: a missing record is
// 404, a non-owner caller is 403. The handler behind this middleware may
// fetch the record again; that duplication is accepted for simplicity.
func (a *Authenticator) RequireOwnership(finder CampgroundFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFrom(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized", "you need to be logged in to do that")
				return
			}

			id, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				writeAuthError(w, http.StatusNotFound, "not_found", "campground not found")
				return
			}

			cg, err := finder.Get(r.Context(), id)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					writeAuthError(w, http.StatusNotFound, "not_found", "campground not found")
					return
				}
				writeAuthError(w, http.StatusInternalServerError, "internal", "internal server error")
				return
			}

			if cg.Author.ID != identity.UserID {
				writeAuthError(w, http.StatusForbidden, "forbidden", "you don't have permission to do that")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// authenticate extracts and validates the bearer token from the request.
func (a *Authenticator) authenticate(r *http.Request) (Identity, error) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return Identity{}, errors.New("missing or malformed authorization header")
	}

	claims := &authClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return Identity{}, err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, errors.New("token subject is not a valid user id")
	}
	if claims.Username == "" {
		return Identity{}, errors.New("token has no username claim")
	}

	return Identity{UserID: userID, Username: claims.Username}, nil
}

// writeAuthError writes the same error envelope the handlers use, so
// middleware rejections look identical to handler rejections on the wire.
func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
