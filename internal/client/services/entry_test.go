package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/emezab/registro/internal/client/models"
	"github.com/emezab/registro/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errOffline    = fmt.Errorf("%w: dial tcp: no route to host", common.ErrNetworkUnreachable)
	errServerDown = fmt.Errorf("%w: status 500: internal error", common.ErrServerUnavailable)
)

func TestEntryService_Create(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	svc := NewEntryService(store, &fakeRemote{}, testLogger())

	data := &models.EntryData{FirstName: "Ana", LastNames: "García"}
	att := &models.Attachments{Portrait: []byte{0x1}}

	local, err := svc.Create(ctx, data, att)
	require.NoError(t, err)

	id := models.ParseEntryID(local.ID)
	assert.True(t, id.IsLocal(), "a new entry gets a temporary ID")
	assert.Equal(t, models.SyncStatusPending, local.SyncStatus)

	cached, err := store.Entries.GetByID(ctx, local.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", cached.FirstName)

	stored, err := store.Attachments.GetByOwner(ctx, local.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, []byte{0x1}, stored.Portrait)

	items, err := store.Queue.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.ActionCreate, items[0].Action.Kind)
	assert.Equal(t, local.ID, items[0].Action.Create.TempID.String())
}

func TestEntryService_Update(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	svc := NewEntryService(store, &fakeRemote{}, testLogger())

	created := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Entries.Put(ctx, &models.LocalEntry{
		Entry: models.Entry{
			EntryData: models.EntryData{Folio: "000001", FirstName: "Ana"},
			ID:        "srv-1",
			CreatedAt: created,
		},
		SyncStatus: models.SyncStatusSynced,
	}))

	data := &models.EntryData{Folio: "000001", FirstName: "Ana", Phone: "5551234567"}
	local, err := svc.Update(ctx, "srv-1", data, nil)
	require.NoError(t, err)

	assert.Equal(t, models.SyncStatusPending, local.SyncStatus)
	assert.Equal(t, created, local.CreatedAt, "update keeps the original creation time")

	items, err := store.Queue.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.ActionUpdate, items[0].Action.Kind)
	assert.Equal(t, "srv-1", items[0].Action.Update.ID.String())
}

func TestEntryService_Delete_QueuesAndKeepsLocalCopy(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	svc := NewEntryService(store, &fakeRemote{}, testLogger())

	require.NoError(t, store.Entries.Put(ctx, &models.LocalEntry{
		Entry:      models.Entry{EntryData: models.EntryData{FirstName: "Ana"}, ID: "srv-1"},
		SyncStatus: models.SyncStatusSynced,
	}))

	require.NoError(t, svc.Delete(ctx, "srv-1"))

	// still cached, now pending, until the replay confirms
	cached, err := store.Entries.GetByID(ctx, "srv-1")
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusPending, cached.SyncStatus)

	items, err := store.Queue.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.ActionDelete, items[0].Action.Kind)
}

func TestEntryService_Delete_CancelsUnsyncedEntry(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	svc := NewEntryService(store, &fakeRemote{}, testLogger())

	data := &models.EntryData{FirstName: "Ana"}
	local, err := svc.Create(ctx, data, &models.Attachments{Portrait: []byte{0x1}})
	require.NoError(t, err)

	updated := *data
	updated.Phone = "5551234567"
	_, err = svc.Update(ctx, local.ID, &updated, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, local.ID))

	// nothing reaches the server: the queued create and update are gone
	count, err := store.Queue.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, err = store.Entries.GetByID(ctx, local.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	att, err := store.Attachments.GetByOwner(ctx, local.ID)
	require.NoError(t, err)
	assert.Nil(t, att)
}

func TestEntryService_List_RefreshesCacheWhenOnline(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	remote := &fakeRemote{
		listFn: func(ctx context.Context, limit int, cursor string) ([]*models.Entry, string, error) {
			if cursor == "" {
				return []*models.Entry{serverEntry("srv-1", "000002", models.EntryData{FirstName: "Ana"})}, "srv-1", nil
			}
			return []*models.Entry{serverEntry("srv-2", "000001", models.EntryData{FirstName: "Luis"})}, "", nil
		},
	}
	svc := NewEntryService(store, remote, testLogger())

	// a pending local edit of srv-2 must survive the refresh
	require.NoError(t, store.Entries.Put(ctx, &models.LocalEntry{
		Entry:      models.Entry{EntryData: models.EntryData{Folio: "000001", FirstName: "Luisa"}, ID: "srv-2"},
		SyncStatus: models.SyncStatusPending,
	}))

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	byID := map[string]*models.LocalEntry{}
	for _, e := range all {
		byID[e.ID] = e
	}
	assert.Equal(t, models.SyncStatusSynced, byID["srv-1"].SyncStatus)
	assert.Equal(t, "Luisa", byID["srv-2"].FirstName, "pending local edit not clobbered")
	assert.Equal(t, models.SyncStatusPending, byID["srv-2"].SyncStatus)
}

func TestEntryService_List_FallsBackToCacheOffline(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	remote := &fakeRemote{
		listFn: func(ctx context.Context, limit int, cursor string) ([]*models.Entry, string, error) {
			return nil, "", errOffline
		},
	}
	svc := NewEntryService(store, remote, testLogger())

	require.NoError(t, store.Entries.Put(ctx, &models.LocalEntry{
		Entry:      models.Entry{EntryData: models.EntryData{Folio: "000001", FirstName: "Ana"}, ID: "srv-1"},
		SyncStatus: models.SyncStatusSynced,
	}))

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "srv-1", all[0].ID)
}

func TestEntryService_List_FallsBackToCacheOnServerError(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	remote := &fakeRemote{
		listFn: func(ctx context.Context, limit int, cursor string) ([]*models.Entry, string, error) {
			return nil, "", errServerDown
		},
	}
	svc := NewEntryService(store, remote, testLogger())

	require.NoError(t, store.Entries.Put(ctx, &models.LocalEntry{
		Entry:      models.Entry{EntryData: models.EntryData{Folio: "000001", FirstName: "Ana"}, ID: "srv-1"},
		SyncStatus: models.SyncStatusSynced,
	}))

	// a reachable but erroring server degrades to the cache like being offline
	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "srv-1", all[0].ID)
}

func TestEntryService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("remote copy is cached", func(t *testing.T) {
		store := openTestStore(t)
		remote := &fakeRemote{
			getFn: func(ctx context.Context, id string) (*models.Entry, error) {
				return serverEntry(id, "000001", models.EntryData{FirstName: "Ana"}), nil
			},
		}
		svc := NewEntryService(store, remote, testLogger())

		entry, err := svc.Get(ctx, "srv-1")
		require.NoError(t, err)
		assert.Equal(t, "Ana", entry.FirstName)

		cached, err := store.Entries.GetByID(ctx, "srv-1")
		require.NoError(t, err)
		assert.Equal(t, models.SyncStatusSynced, cached.SyncStatus)
	})

	t.Run("offline falls back to cache", func(t *testing.T) {
		store := openTestStore(t)
		remote := &fakeRemote{
			getFn: func(ctx context.Context, id string) (*models.Entry, error) { return nil, errOffline },
		}
		svc := NewEntryService(store, remote, testLogger())

		require.NoError(t, store.Entries.Put(ctx, &models.LocalEntry{
			Entry:      models.Entry{EntryData: models.EntryData{FirstName: "Ana"}, ID: "srv-1"},
			SyncStatus: models.SyncStatusSynced,
		}))

		entry, err := svc.Get(ctx, "srv-1")
		require.NoError(t, err)
		assert.Equal(t, "Ana", entry.FirstName)
	})

	t.Run("erroring server falls back to cache", func(t *testing.T) {
		store := openTestStore(t)
		remote := &fakeRemote{
			getFn: func(ctx context.Context, id string) (*models.Entry, error) { return nil, errServerDown },
		}
		svc := NewEntryService(store, remote, testLogger())

		require.NoError(t, store.Entries.Put(ctx, &models.LocalEntry{
			Entry:      models.Entry{EntryData: models.EntryData{FirstName: "Ana"}, ID: "srv-1"},
			SyncStatus: models.SyncStatusSynced,
		}))

		entry, err := svc.Get(ctx, "srv-1")
		require.NoError(t, err)
		assert.Equal(t, "Ana", entry.FirstName)
	})

	t.Run("missing everywhere is not found", func(t *testing.T) {
		store := openTestStore(t)
		remote := &fakeRemote{
			getFn: func(ctx context.Context, id string) (*models.Entry, error) {
				return nil, fmt.Errorf("%w: no such entry", common.ErrNotFound)
			},
		}
		svc := NewEntryService(store, remote, testLogger())

		_, err := svc.Get(ctx, "srv-1")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("temporary ID reads locally without network", func(t *testing.T) {
		store := openTestStore(t)
		svc := NewEntryService(store, &fakeRemote{}, testLogger())

		tempID := models.NewLocalID()
		require.NoError(t, store.Entries.Put(ctx, &models.LocalEntry{
			Entry:      models.Entry{EntryData: models.EntryData{FirstName: "Ana"}, ID: tempID.String()},
			SyncStatus: models.SyncStatusPending,
		}))

		entry, err := svc.Get(ctx, tempID.String())
		require.NoError(t, err)
		assert.Equal(t, "Ana", entry.FirstName)
	})
}

func TestEntryService_Search_FallsBackToCacheOnServerError(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	remote := &fakeRemote{
		searchFn: func(ctx context.Context, query string) ([]*models.Entry, error) { return nil, errServerDown },
	}
	svc := NewEntryService(store, remote, testLogger())

	require.NoError(t, store.Entries.Put(ctx, &models.LocalEntry{
		Entry:      models.Entry{EntryData: models.EntryData{Folio: "000001", FirstName: "Ana"}, ID: "srv-1"},
		SyncStatus: models.SyncStatusSynced,
	}))

	found, err := svc.Search(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "srv-1", found[0].ID)
}

func TestEntryService_Search_FallsBackToCacheOffline(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	remote := &fakeRemote{
		searchFn: func(ctx context.Context, query string) ([]*models.Entry, error) { return nil, errOffline },
	}
	svc := NewEntryService(store, remote, testLogger())

	require.NoError(t, store.Entries.Put(ctx, &models.LocalEntry{
		Entry:      models.Entry{EntryData: models.EntryData{Folio: "000001", FirstName: "José", LastNames: "Martínez"}, ID: "srv-1"},
		SyncStatus: models.SyncStatusSynced,
	}))

	found, err := svc.Search(ctx, "jose martinez")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "srv-1", found[0].ID)
}
