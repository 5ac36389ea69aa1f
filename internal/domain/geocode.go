package domain

import "context"

// GeocodeResult is the best-match answer from a geocoding provider for a
// free-text address query.
type GeocodeResult struct {
	FormattedAddress string
	Lat              float64
	Lng              float64
}

// Geocoder resolves free-text addresses to a formatted address plus
// coordinates. Implementations must return ErrNoResults (possibly wrapped)
// when the provider matches nothing, so callers never have to guard an
// empty result list themselves.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (GeocodeResult, error)
}

// Uploader stores a local file with an external hosting service and
// returns the durable public URL it is served from.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}
