package client

import (
	"context"

	"github.com/emezab/registro/internal/client/models"
)

// Client is the remote registry API as seen by the sync engine and the read
// path. Implementations translate transport failures into the sentinel
// errors of internal/common: ErrNetworkUnreachable, ErrNotFound,
// ErrValidation, ErrFolioConflict.
type Client interface {
	// Ping probes reachability of the service. Used by the connectivity
	// monitor.
	Ping(ctx context.Context) error

	// NextFolio asks the service for the next sequential folio. The value is
	// not reserved: a concurrent writer may take it first, in which case
	// CreateEntry fails with ErrFolioConflict.
	NextFolio(ctx context.Context) (string, error)

	// CreateEntry creates a new entry. idempotencyKey is passed through so a
	// replayed create can be deduplicated server-side.
	CreateEntry(ctx context.Context, data *models.EntryData, idempotencyKey string) (*models.Entry, error)

	// UpdateEntry replaces an entry's fields and returns the stored result.
	UpdateEntry(ctx context.Context, id string, data *models.EntryData) (*models.Entry, error)

	// DeleteEntry removes an entry. Deleting a missing entry returns
	// ErrNotFound; callers decide whether that is fatal.
	DeleteEntry(ctx context.Context, id string) error

	// GetEntry fetches one entry by its server-assigned ID.
	GetEntry(ctx context.Context, id string) (*models.Entry, error)

	// ListEntries returns one page plus the cursor for the next one ("" when
	// exhausted).
	ListEntries(ctx context.Context, limit int, cursor string) ([]*models.Entry, string, error)

	// SearchEntries performs a server-side search.
	SearchEntries(ctx context.Context, query string) ([]*models.Entry, error)

	// Localities returns the locality reference list.
	Localities(ctx context.Context) ([]string, error)

	// ElectoralSections returns the electoral-section reference list.
	ElectoralSections(ctx context.Context) ([]string, error)
}
