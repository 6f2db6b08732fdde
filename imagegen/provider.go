// Package imagegen implements the generation pipeline: provider adapters
// that turn normalized parameters into raw images, the synthetic placeholder
// renderer, the fetcher for URL-returning providers, and the normalizer that
// converts every provider output into a browser-ready JPEG data URL.
package imagegen

import (
	"context"
	"errors"

	"artgen_backend/models"
)

var (
	ErrMissingCredential = errors.New("imagegen: provider credential is not configured")
	ErrMissingEndpoint   = errors.New("imagegen: provider endpoint is not configured")
	ErrEmptyResponse     = errors.New("imagegen: provider returned no image")
)

// Image is a provider result in one of two shapes: a temporary remote URL
// that still needs fetching, or raw bytes already in hand. Exactly one of
// URL and Data is set.
type Image struct {
	URL  string
	Data []byte

	// MIME is the declared content type of Data, when known.
	MIME string
}

// Provider generates an image for a fully-normalized parameter set.
// Implementations must be safe for concurrent use.
type Provider interface {
	Generate(ctx context.Context, params models.Params) (*Image, error)
}
