package entries

import (
	"context"

	"github.com/emezab/registro/internal/client/models"
)

// Repository is the local cache of affiliate entries. Keys are entry IDs,
// which may be temporary for entries created offline.
type Repository interface {
	// Put inserts or replaces the cached copy for entry.ID.
	Put(ctx context.Context, entry *models.LocalEntry) error

	// GetByID returns one cached entry, or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.LocalEntry, error)

	// GetAll returns all cached entries: folio-less ones first (newest
	// created first among themselves), then by folio descending as an
	// integer.
	GetAll(ctx context.Context) ([]*models.LocalEntry, error)

	// Search performs accent- and case-insensitive substring matching over
	// folio + full name. Results follow the GetAll order.
	Search(ctx context.Context, query string) ([]*models.LocalEntry, error)

	// DeleteByID removes the cached copy. Deleting a missing ID is not an
	// error.
	DeleteByID(ctx context.Context, id string) error

	// Count returns the number of cached entries.
	Count(ctx context.Context) (int, error)

	// Clear drops every cached entry.
	Clear(ctx context.Context) error
}
