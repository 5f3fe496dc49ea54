package lyrics

import (
	"context"
	"errors"
)

// ErrNotFound means the provider has no synced lyrics for the requested
// track. Callers treat this as a valid empty result, not a failure.
var ErrNotFound = errors.New("lyrics not found")

// Provider fetches time-coded lyrics for a track.
type Provider interface {
	// Fetch returns the raw lines for a track, or ErrNotFound.
	Fetch(ctx context.Context, title, artist string) ([]RawLine, error)
	// Name returns the provider identifier.
	Name() string
}
