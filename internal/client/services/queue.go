// Package services implements the client's business logic on top of the
// local repositories and the remote registry client.
package services

import (
	"context"
	"time"

	"github.com/emezab/registro/internal/client/models"
	"github.com/emezab/registro/internal/client/repositories/queue"
	"github.com/google/uuid"
)

const queueIDPrefix = "QUEUE-"

// NewQueuedAction wraps a validated action in a fresh queue item. The item ID
// doubles as the idempotency key when the action is replayed.
func NewQueuedAction(action models.Action) (*models.QueuedAction, error) {
	if err := action.Validate(); err != nil {
		return nil, err
	}
	return &models.QueuedAction{
		ID:        queueIDPrefix + uuid.NewString(),
		Action:    action,
		Status:    models.QueuePending,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// RetryPolicy bounds automatic replay attempts per queue item. Items past the
// bound stay failed until the user asks for a manual retry.
type RetryPolicy struct {
	MaxAttempts int
}

// Exhausted reports whether the item has used up its automatic retries.
func (p RetryPolicy) Exhausted(item *models.QueuedAction) bool {
	return p.MaxAttempts > 0 && item.RetryCount >= p.MaxAttempts
}

// QueueService manages the durable mutation queue's lifecycle transitions.
type QueueService interface {
	// Enqueue appends a new pending item for action.
	Enqueue(ctx context.Context, action models.Action) (*models.QueuedAction, error)

	// Pending returns items eligible for replay, in insertion order.
	Pending(ctx context.Context) ([]*models.QueuedAction, error)

	// PendingCount returns how many items await replay.
	PendingCount(ctx context.Context) (int, error)

	// FailedCount returns how many items gave up after repeated failures.
	FailedCount(ctx context.Context) (int, error)

	// MarkSyncing flags the item as currently being replayed.
	MarkSyncing(ctx context.Context, item *models.QueuedAction) error

	// RecordFailure bumps the item's retry counter after a rejected replay.
	// The item stays pending while attempts remain under policy and is
	// parked as failed once they are exhausted.
	RecordFailure(ctx context.Context, item *models.QueuedAction, policy RetryPolicy) error

	// MarkPending puts the item back in line without counting an attempt.
	// Used when replay is interrupted rather than rejected.
	MarkPending(ctx context.Context, item *models.QueuedAction) error

	// Rewrite persists in-place changes to the item's action, such as a
	// temporary target ID replaced by the server-assigned one.
	Rewrite(ctx context.Context, item *models.QueuedAction) error

	// Remove drops a replayed item.
	Remove(ctx context.Context, id string) error

	// ResetFailed moves every failed item back to pending with a fresh retry
	// budget. This is the manual retry path.
	ResetFailed(ctx context.Context) (int, error)

	// ResetStuck moves items left in the syncing state by an interrupted
	// session back to pending. Called once at startup.
	ResetStuck(ctx context.Context) (int, error)
}

type queueService struct {
	repo queue.Repository
}

func NewQueueService(repo queue.Repository) QueueService {
	return &queueService{repo: repo}
}

func (s *queueService) Enqueue(ctx context.Context, action models.Action) (*models.QueuedAction, error) {
	item, err := NewQueuedAction(action)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Insert(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *queueService) Pending(ctx context.Context) ([]*models.QueuedAction, error) {
	return s.repo.GetByStatus(ctx, models.QueuePending)
}

func (s *queueService) PendingCount(ctx context.Context) (int, error) {
	return s.repo.CountByStatus(ctx, models.QueuePending)
}

func (s *queueService) FailedCount(ctx context.Context) (int, error) {
	return s.repo.CountByStatus(ctx, models.QueueFailed)
}

func (s *queueService) MarkSyncing(ctx context.Context, item *models.QueuedAction) error {
	item.Status = models.QueueSyncing
	return s.repo.Update(ctx, item)
}

func (s *queueService) RecordFailure(ctx context.Context, item *models.QueuedAction, policy RetryPolicy) error {
	item.RetryCount++
	if policy.Exhausted(item) {
		item.Status = models.QueueFailed
	} else {
		item.Status = models.QueuePending
	}
	return s.repo.Update(ctx, item)
}

func (s *queueService) MarkPending(ctx context.Context, item *models.QueuedAction) error {
	item.Status = models.QueuePending
	return s.repo.Update(ctx, item)
}

func (s *queueService) Rewrite(ctx context.Context, item *models.QueuedAction) error {
	return s.repo.Update(ctx, item)
}

func (s *queueService) Remove(ctx context.Context, id string) error {
	return s.repo.DeleteByID(ctx, id)
}

func (s *queueService) ResetFailed(ctx context.Context) (int, error) {
	return s.reset(ctx, models.QueueFailed, true)
}

func (s *queueService) ResetStuck(ctx context.Context) (int, error) {
	return s.reset(ctx, models.QueueSyncing, false)
}

func (s *queueService) reset(ctx context.Context, from models.QueueStatus, clearRetries bool) (int, error) {
	items, err := s.repo.GetByStatus(ctx, from)
	if err != nil {
		return 0, err
	}
	for _, item := range items {
		item.Status = models.QueuePending
		if clearRetries {
			item.RetryCount = 0
		}
		if err := s.repo.Update(ctx, item); err != nil {
			return 0, err
		}
	}
	return len(items), nil
}
