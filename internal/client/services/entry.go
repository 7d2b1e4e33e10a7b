package services

import (
	"context"
	"errors"
	"time"

	"github.com/emezab/registro/internal/client/client"
	"github.com/emezab/registro/internal/client/models"
	"github.com/emezab/registro/internal/common"
	"github.com/emezab/registro/internal/logging"
)

// listPageSize is how many entries each remote list page asks for.
const listPageSize = 100

// EntryService is the read and write path for affiliate entries. Reads go to
// the network first and fall back to the local cache; writes always go
// through the mutation queue with an optimistic local copy.
type EntryService interface {
	// List returns all entries: locally captured unsynced ones first, then
	// synced ones by folio descending.
	List(ctx context.Context) ([]*models.LocalEntry, error)

	// Get returns one entry by (temporary or real) ID.
	Get(ctx context.Context, id string) (*models.LocalEntry, error)

	// Search matches folio and name, accent- and case-insensitive.
	Search(ctx context.Context, query string) ([]*models.LocalEntry, error)

	// Create captures a new entry. It is stored locally under a temporary ID
	// and queued for replay; the returned copy carries that temporary ID.
	Create(ctx context.Context, data *models.EntryData, att *models.Attachments) (*models.LocalEntry, error)

	// Update replaces an entry's fields and queues the change.
	Update(ctx context.Context, id string, data *models.EntryData, att *models.Attachments) (*models.LocalEntry, error)

	// Delete queues removal of an entry. Deleting a not-yet-synced entry
	// cancels its queued mutations instead.
	Delete(ctx context.Context, id string) error

	// Attachments returns the locally stored blobs for an entry, if any.
	Attachments(ctx context.Context, id string) (*models.Attachments, error)
}

type entryService struct {
	store  *client.Store
	remote client.Client
	log    logging.Logger
}

func NewEntryService(store *client.Store, remote client.Client, log logging.Logger) EntryService {
	return &entryService{store: store, remote: remote, log: log.With("component", "entries")}
}

// remoteUnavailable reports whether err means the registry could not serve
// the request at all. That covers both an unreachable network and a
// reachable but erroring server; reads degrade to the local cache in either
// case.
func remoteUnavailable(err error) bool {
	return errors.Is(err, common.ErrNetworkUnreachable) || errors.Is(err, common.ErrServerUnavailable)
}

func (s *entryService) List(ctx context.Context) ([]*models.LocalEntry, error) {
	if err := s.refreshCache(ctx); err != nil {
		if !remoteUnavailable(err) {
			return nil, err
		}
		s.log.Debug(ctx, "listing from cache", "error", err)
	}
	return s.store.Entries.GetAll(ctx)
}

// refreshCache pulls every remote page into the local cache. Entries with
// unsynced local changes are left alone so a refresh cannot clobber work
// that has not replayed yet.
func (s *entryService) refreshCache(ctx context.Context) error {
	cursor := ""
	for {
		page, next, err := s.remote.ListEntries(ctx, listPageSize, cursor)
		if err != nil {
			return err
		}
		for _, entry := range page {
			if err := s.cacheRemote(ctx, entry); err != nil {
				return err
			}
		}
		if next == "" {
			return nil
		}
		cursor = next
	}
}

func (s *entryService) cacheRemote(ctx context.Context, entry *models.Entry) error {
	cached, err := s.store.Entries.GetByID(ctx, entry.ID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return err
	}
	if cached != nil && cached.SyncStatus != models.SyncStatusSynced {
		return nil
	}
	return s.store.Entries.Put(ctx, &models.LocalEntry{Entry: *entry, SyncStatus: models.SyncStatusSynced})
}

func (s *entryService) Get(ctx context.Context, id string) (*models.LocalEntry, error) {
	eid := models.ParseEntryID(id)
	if eid.IsLocal() {
		return s.store.Entries.GetByID(ctx, id)
	}

	entry, err := s.remote.GetEntry(ctx, id)
	if err == nil {
		local := &models.LocalEntry{Entry: *entry, SyncStatus: models.SyncStatusSynced}
		if cerr := s.cacheRemote(ctx, entry); cerr != nil {
			return nil, cerr
		}
		return local, nil
	}
	if remoteUnavailable(err) || errors.Is(err, common.ErrNotFound) {
		if cached, cerr := s.store.Entries.GetByID(ctx, id); cerr == nil {
			return cached, nil
		}
	}
	return nil, err
}

func (s *entryService) Search(ctx context.Context, query string) ([]*models.LocalEntry, error) {
	found, err := s.remote.SearchEntries(ctx, query)
	if err == nil {
		result := make([]*models.LocalEntry, 0, len(found))
		for _, entry := range found {
			result = append(result, &models.LocalEntry{Entry: *entry, SyncStatus: models.SyncStatusSynced})
		}
		return result, nil
	}
	if remoteUnavailable(err) {
		s.log.Debug(ctx, "searching in cache", "error", err)
		return s.store.Entries.Search(ctx, query)
	}
	return nil, err
}

func (s *entryService) Create(ctx context.Context, data *models.EntryData, att *models.Attachments) (*models.LocalEntry, error) {
	tempID := models.NewLocalID()
	now := time.Now().UTC()

	local := &models.LocalEntry{
		Entry: models.Entry{
			EntryData: *data,
			ID:        tempID.String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		SyncStatus: models.SyncStatusPending,
	}

	item, err := NewQueuedAction(models.NewCreateAction(tempID, *data))
	if err != nil {
		return nil, err
	}

	// the optimistic copy, its blobs and the queue item land together
	err = s.store.WithTx(ctx, func(r *client.Repositories) error {
		if err := r.Entries.Put(ctx, local); err != nil {
			return err
		}
		if !att.Empty() {
			att.OwnerID = tempID.String()
			if err := r.Attachments.Put(ctx, att); err != nil {
				return err
			}
		}
		return r.Queue.Insert(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return local, nil
}

func (s *entryService) Update(ctx context.Context, id string, data *models.EntryData, att *models.Attachments) (*models.LocalEntry, error) {
	eid := models.ParseEntryID(id)

	existing, err := s.store.Entries.GetByID(ctx, id)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	local := &models.LocalEntry{
		Entry: models.Entry{
			EntryData: *data,
			ID:        id,
			UpdatedAt: now,
		},
		SyncStatus: models.SyncStatusPending,
	}
	if existing != nil {
		local.CreatedAt = existing.CreatedAt
	} else {
		local.CreatedAt = now
	}

	item, err := NewQueuedAction(models.NewUpdateAction(eid, *data))
	if err != nil {
		return nil, err
	}

	err = s.store.WithTx(ctx, func(r *client.Repositories) error {
		if err := r.Entries.Put(ctx, local); err != nil {
			return err
		}
		if !att.Empty() {
			att.OwnerID = id
			if err := r.Attachments.Put(ctx, att); err != nil {
				return err
			}
		}
		return r.Queue.Insert(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return local, nil
}

func (s *entryService) Delete(ctx context.Context, id string) error {
	eid := models.ParseEntryID(id)

	if eid.IsLocal() {
		return s.cancelLocal(ctx, id)
	}

	item, err := NewQueuedAction(models.NewDeleteAction(eid))
	if err != nil {
		return err
	}

	// the cached copy stays visible (as pending) until the replay confirms
	return s.store.WithTx(ctx, func(r *client.Repositories) error {
		existing, err := r.Entries.GetByID(ctx, id)
		if err == nil {
			existing.SyncStatus = models.SyncStatusPending
			if err := r.Entries.Put(ctx, existing); err != nil {
				return err
			}
		} else if !errors.Is(err, common.ErrNotFound) {
			return err
		}
		return r.Queue.Insert(ctx, item)
	})
}

// cancelLocal removes an entry that never reached the server: its cached
// copy, its blobs and every queued mutation targeting it.
func (s *entryService) cancelLocal(ctx context.Context, tempID string) error {
	return s.store.WithTx(ctx, func(r *client.Repositories) error {
		items, err := r.Queue.GetAll(ctx)
		if err != nil {
			return err
		}
		for _, item := range items {
			if actionTarget(item.Action) == tempID {
				if err := r.Queue.DeleteByID(ctx, item.ID); err != nil {
					return err
				}
			}
		}
		if err := r.Entries.DeleteByID(ctx, tempID); err != nil {
			return err
		}
		return r.Attachments.DeleteByOwner(ctx, tempID)
	})
}

func actionTarget(a models.Action) string {
	switch a.Kind {
	case models.ActionCreate:
		return a.Create.TempID.String()
	case models.ActionUpdate:
		return a.Update.ID.String()
	case models.ActionDelete:
		return a.Delete.ID.String()
	}
	return ""
}

func (s *entryService) Attachments(ctx context.Context, id string) (*models.Attachments, error) {
	return s.store.Attachments.GetByOwner(ctx, id)
}
