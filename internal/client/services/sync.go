package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/emezab/registro/internal/client/client"
	"github.com/emezab/registro/internal/client/models"
	"github.com/emezab/registro/internal/client/repositories/metadata"
	"github.com/emezab/registro/internal/client/repositories/queue"
	"github.com/emezab/registro/internal/common"
	"github.com/emezab/registro/internal/logging"
	"github.com/sethvargo/go-retry"
)

// maxFolioAttempts bounds how many folios a single create will try before
// giving up. Each conflict means another device took the folio first.
const maxFolioAttempts = 5

const folioRetryDelay = 500 * time.Millisecond

// SyncProgress is a point-in-time snapshot reported while a drain runs.
type SyncProgress struct {
	Total     int
	Completed int
	Failed    int
	Current   string
}

// ProgressFunc receives progress snapshots during a drain.
type ProgressFunc func(SyncProgress)

// Result summarizes one drain of the mutation queue.
type Result struct {
	Succeeded int
	Failed    int
}

// SyncEngine drains the mutation queue against the remote registry. Replay is
// at-least-once: the queue item ID travels as an idempotency key so a retried
// create cannot duplicate an entry.
type SyncEngine struct {
	store    *client.Store
	remote   client.Client
	uploader client.Uploader
	queue    QueueService
	policy   RetryPolicy
	log      logging.Logger
	running  atomic.Bool
}

func NewSyncEngine(store *client.Store, remote client.Client, uploader client.Uploader,
	queue QueueService, policy RetryPolicy, log logging.Logger) *SyncEngine {
	return &SyncEngine{
		store:    store,
		remote:   remote,
		uploader: uploader,
		queue:    queue,
		policy:   policy,
		log:      log.With("component", "sync"),
	}
}

// Running reports whether a drain is in flight.
func (e *SyncEngine) Running() bool {
	return e.running.Load()
}

// applyFunc commits one replayed item's local effects. It runs inside a
// transaction together with the removal of the queue item.
type applyFunc func(r *client.Repositories) error

// Sync replays every pending queue item in insertion order. Only one drain
// runs at a time; a concurrent call gets common.ErrSyncInProgress. Items that
// the server rejects are recorded and skipped so one bad item cannot block
// the rest; losing the connection mid-drain stops the run and leaves the
// remaining items pending.
func (e *SyncEngine) Sync(ctx context.Context, onProgress ProgressFunc) (*Result, error) {
	if !e.running.CompareAndSwap(false, true) {
		return nil, common.ErrSyncInProgress
	}
	defer e.running.Store(false)

	items, err := e.queue.Pending(ctx)
	if err != nil {
		return nil, err
	}

	e.log.Info(ctx, "sync started", "pending", len(items))

	// Server IDs assigned during this drain, keyed by the temporary ID they
	// replace. Later items targeting a temporary ID are rewritten before
	// dispatch.
	resolved := make(map[string]string)

	res := &Result{}
	report := func(current string) {
		if onProgress != nil {
			onProgress(SyncProgress{Total: len(items), Completed: res.Succeeded, Failed: res.Failed, Current: current})
		}
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		report(item.Action.Label())

		if rewriteTarget(&item.Action, resolved) {
			if err := e.queue.Rewrite(ctx, item); err != nil {
				return res, err
			}
		}

		if err := e.queue.MarkSyncing(ctx, item); err != nil {
			return res, err
		}

		apply, err := e.dispatch(ctx, item, resolved)
		if err != nil {
			if errors.Is(err, common.ErrNetworkUnreachable) {
				// the connection dropped, not the item; put it back in line
				_ = e.queue.MarkPending(ctx, item)
				e.log.Warn(ctx, "sync interrupted", "completed", res.Succeeded, "error", err)
				return res, err
			}
			e.log.Error(ctx, "replay rejected", "item", item.ID, "action", item.Action.Label(), "error", err)
			if rerr := e.queue.RecordFailure(ctx, item, e.policy); rerr != nil {
				return res, rerr
			}
			if e.policy.Exhausted(item) {
				e.markEntryFailed(ctx, item.Action)
			}
			res.Failed++
			continue
		}

		err = e.store.WithTx(ctx, func(r *client.Repositories) error {
			if err := apply(r); err != nil {
				return err
			}
			return r.Queue.DeleteByID(ctx, item.ID)
		})
		if err != nil {
			return res, err
		}
		res.Succeeded++
	}

	if err := e.store.Metadata.Set(ctx, metadata.KeyLastSync,
		[]byte(time.Now().UTC().Format(time.RFC3339))); err != nil {
		e.log.Warn(ctx, "failed to record sync time", "error", err)
	}

	report("")
	e.log.Info(ctx, "sync finished", "succeeded", res.Succeeded, "failed", res.Failed)
	return res, nil
}

// rewriteTarget replaces a temporary target ID with the server-assigned one
// when the owning create has already replayed in this drain. Returns true
// when the action changed.
func rewriteTarget(a *models.Action, resolved map[string]string) bool {
	switch a.Kind {
	case models.ActionUpdate:
		if real, ok := resolved[a.Update.ID.String()]; ok && a.Update.ID.IsLocal() {
			a.Update.ID = models.RemoteID(real)
			return true
		}
	case models.ActionDelete:
		if real, ok := resolved[a.Delete.ID.String()]; ok && a.Delete.ID.IsLocal() {
			a.Delete.ID = models.RemoteID(real)
			return true
		}
	}
	return false
}

func (e *SyncEngine) dispatch(ctx context.Context, item *models.QueuedAction, resolved map[string]string) (applyFunc, error) {
	switch item.Action.Kind {
	case models.ActionCreate:
		return e.replayCreate(ctx, item, resolved)
	case models.ActionUpdate:
		return e.replayUpdate(ctx, item)
	case models.ActionDelete:
		return e.replayDelete(ctx, item)
	default:
		return nil, fmt.Errorf("unknown action kind %q", item.Action.Kind)
	}
}

func (e *SyncEngine) replayCreate(ctx context.Context, item *models.QueuedAction, resolved map[string]string) (applyFunc, error) {
	data := item.Action.Create.Data
	tempID := item.Action.Create.TempID.String()

	if err := e.uploadAttachments(ctx, tempID, &data); err != nil {
		return nil, err
	}

	entry, err := e.createWithFolio(ctx, &data, item.ID)
	if err != nil {
		return nil, err
	}

	resolved[tempID] = entry.ID
	e.log.Info(ctx, "entry created", "tempId", tempID, "id", entry.ID, "folio", entry.Folio)

	return func(r *client.Repositories) error {
		if err := r.Entries.DeleteByID(ctx, tempID); err != nil {
			return err
		}
		// blobs are uploaded now, the local copies are no longer needed
		if err := r.Attachments.DeleteByOwner(ctx, tempID); err != nil {
			return err
		}
		if err := retargetQueued(ctx, r.Queue, tempID, entry.ID); err != nil {
			return err
		}
		return r.Entries.Put(ctx, &models.LocalEntry{Entry: *entry, SyncStatus: models.SyncStatusSynced})
	}, nil
}

// retargetQueued rewrites every queued item still aimed at tempID to the
// server-assigned ID. It runs inside the create's transaction so the mapping
// is durable: dependent updates and deletes stay replayable even when the
// drain is interrupted before reaching them.
func retargetQueued(ctx context.Context, repo queue.Repository, tempID, realID string) error {
	items, err := repo.GetAll(ctx)
	if err != nil {
		return err
	}
	mapping := map[string]string{tempID: realID}
	for _, queued := range items {
		if rewriteTarget(&queued.Action, mapping) {
			if err := repo.Update(ctx, queued); err != nil {
				return err
			}
		}
	}
	return nil
}

// markEntryFailed flags the action's target entry once its queue item has
// used up the retry budget, so listings show which records gave up. A later
// successful replay overwrites the flag.
func (e *SyncEngine) markEntryFailed(ctx context.Context, a models.Action) {
	target := actionTarget(a)
	if target == "" {
		return
	}
	entry, err := e.store.Entries.GetByID(ctx, target)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			e.log.Warn(ctx, "failed to flag entry", "id", target, "error", err)
		}
		return
	}
	entry.SyncStatus = models.SyncStatusFailed
	if err := e.store.Entries.Put(ctx, entry); err != nil {
		e.log.Warn(ctx, "failed to flag entry", "id", target, "error", err)
	}
}

func (e *SyncEngine) replayUpdate(ctx context.Context, item *models.QueuedAction) (applyFunc, error) {
	remoteID, err := item.Action.Update.ID.Remote()
	if err != nil {
		// the target is still temporary, so its create never succeeded
		return nil, err
	}

	data := item.Action.Update.Data
	if err := e.uploadAttachments(ctx, remoteID, &data); err != nil {
		return nil, err
	}

	entry, err := e.remote.UpdateEntry(ctx, remoteID, &data)
	if err != nil {
		return nil, err
	}

	return func(r *client.Repositories) error {
		if err := r.Attachments.DeleteByOwner(ctx, remoteID); err != nil {
			return err
		}
		return r.Entries.Put(ctx, &models.LocalEntry{Entry: *entry, SyncStatus: models.SyncStatusSynced})
	}, nil
}

func (e *SyncEngine) replayDelete(ctx context.Context, item *models.QueuedAction) (applyFunc, error) {
	remoteID, err := item.Action.Delete.ID.Remote()
	if err != nil {
		return nil, err
	}

	// already gone on the server counts as done
	if err := e.remote.DeleteEntry(ctx, remoteID); err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	return func(r *client.Repositories) error {
		if err := r.Entries.DeleteByID(ctx, remoteID); err != nil {
			return err
		}
		return r.Attachments.DeleteByOwner(ctx, remoteID)
	}, nil
}

// uploadAttachments pushes the locally stored blobs for ownerID and records
// the resulting URLs and storage keys in data. Upload order is front ID,
// back ID, portrait; the first failure aborts the whole item so it can be
// retried from scratch.
func (e *SyncEngine) uploadAttachments(ctx context.Context, ownerID string, data *models.EntryData) error {
	att, err := e.store.Attachments.GetByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	if att.Empty() {
		return nil
	}

	slots := []struct {
		blob     []byte
		category client.Category
		url, key *string
	}{
		{att.FrontID, client.CategoryFrontID, &data.FrontIDURL, &data.FrontIDKey},
		{att.BackID, client.CategoryBackID, &data.BackIDURL, &data.BackIDKey},
		{att.Portrait, client.CategoryPortrait, &data.PortraitURL, &data.PortraitKey},
	}
	for _, s := range slots {
		if s.blob == nil {
			continue
		}
		res, err := e.uploader.Upload(ctx, s.blob, client.UploadFilename(s.category), s.category)
		if err != nil {
			return err
		}
		*s.url, *s.key = res.URL, res.Key
	}
	return nil
}

// createWithFolio creates the entry remotely, allocating a folio when the
// captured data has none and re-allocating on conflict. A folio fetched from
// the server is not reserved, so another device may create with it first.
func (e *SyncEngine) createWithFolio(ctx context.Context, data *models.EntryData, idempotencyKey string) (*models.Entry, error) {
	var entry *models.Entry
	needFolio := data.Folio == ""

	backoff := retry.WithMaxRetries(maxFolioAttempts-1,
		retry.WithJitter(folioRetryDelay, retry.NewConstant(folioRetryDelay)))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if needFolio {
			folio, err := e.remote.NextFolio(ctx)
			if err != nil {
				return err
			}
			data.Folio = folio
		}
		created, err := e.remote.CreateEntry(ctx, data, idempotencyKey)
		if err != nil {
			if errors.Is(err, common.ErrFolioConflict) {
				needFolio = true
				return retry.RetryableError(err)
			}
			return err
		}
		entry = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}
