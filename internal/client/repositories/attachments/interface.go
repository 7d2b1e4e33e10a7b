package attachments

import (
	"context"

	"github.com/emezab/registro/internal/client/models"
)

// Repository stores captured image blobs keyed by the owning entry's
// (temporary or real) ID.
type Repository interface {
	// Put merges the given slots into the stored record: nil slots preserve
	// whatever is already stored.
	Put(ctx context.Context, att *models.Attachments) error

	// GetByOwner returns the stored blobs, or (nil, nil) when the owner has
	// none.
	GetByOwner(ctx context.Context, ownerID string) (*models.Attachments, error)

	// DeleteByOwner removes all blobs for the owner. Missing owners are not
	// an error.
	DeleteByOwner(ctx context.Context, ownerID string) error

	// Count returns the number of owners with stored blobs.
	Count(ctx context.Context) (int, error)

	// Clear drops every stored blob.
	Clear(ctx context.Context) error
}
