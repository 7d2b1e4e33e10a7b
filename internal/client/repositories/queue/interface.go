package queue

import (
	"context"

	"github.com/emezab/registro/internal/client/models"
)

// Repository is the durable append-only log of pending mutations. Insertion
// order is replay order; implementations must preserve it.
type Repository interface {
	// Insert appends one queued action.
	Insert(ctx context.Context, item *models.QueuedAction) error

	// GetAll returns every queued action in insertion order.
	GetAll(ctx context.Context) ([]*models.QueuedAction, error)

	// GetByStatus returns queued actions with the given status, in insertion
	// order.
	GetByStatus(ctx context.Context, status models.QueueStatus) ([]*models.QueuedAction, error)

	// Update rewrites the stored status, retry counter and payload of item.
	Update(ctx context.Context, item *models.QueuedAction) error

	// DeleteByID removes one queued action.
	DeleteByID(ctx context.Context, id string) error

	// Count returns the total number of queued actions.
	Count(ctx context.Context) (int, error)

	// CountByStatus returns the number of queued actions with the given
	// status.
	CountByStatus(ctx context.Context, status models.QueueStatus) (int, error)

	// Clear drops the whole queue.
	Clear(ctx context.Context) error
}
