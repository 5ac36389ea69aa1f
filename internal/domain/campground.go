// Package domain contains the core data types for the campground API.
// This package has zero external dependencies beyond uuid and is imported
// by every other internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Campground is the primary entity: a location listing with descriptive
// and geospatial metadata. Location, Lat, and Lng are always derived
// together from a single geocoding call — never set independently, so the
// displayed address and the map marker cannot drift apart.
type Campground struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Price       string    `json:"price"` // display-formatted decimal, e.g. "9.00"
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"` // absolute URL from the upload service
	Location    string    `json:"location"`        // formatted address from the geocoder
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	Author      Author    `json:"author"` // set once at create, never updated
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Author is the identity of the user who created a campground, captured
// from the authenticated session at creation time and immutable thereafter.
type Author struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}
