package entries

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/emezab/registro/internal/client/models"
	"github.com/emezab/registro/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE entries (
  id TEXT PRIMARY KEY,
  folio TEXT NOT NULL DEFAULT '',
  first_name TEXT NOT NULL DEFAULT '',
  middle_name TEXT NOT NULL DEFAULT '',
  last_names TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL DEFAULT '',
  contact_method TEXT NOT NULL DEFAULT '',
  birth_date TEXT NOT NULL DEFAULT '',
  electoral_section TEXT NOT NULL DEFAULT '',
  polling_place TEXT NOT NULL DEFAULT '',
  zone TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL DEFAULT '',
  support_notes TEXT NOT NULL DEFAULT '',
  locality TEXT NOT NULL DEFAULT '',
  portrait_url TEXT NOT NULL DEFAULT '',
  portrait_key TEXT NOT NULL DEFAULT '',
  front_id_url TEXT NOT NULL DEFAULT '',
  front_id_key TEXT NOT NULL DEFAULT '',
  back_id_url TEXT NOT NULL DEFAULT '',
  back_id_key TEXT NOT NULL DEFAULT '',
  sync_status TEXT NOT NULL DEFAULT 'synced',
  search_text TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
`)
	require.NoError(t, err)
	return db
}

func newEntry(id, folio, first, last string, createdAt time.Time) *models.LocalEntry {
	return &models.LocalEntry{
		Entry: models.Entry{
			EntryData: models.EntryData{Folio: folio, FirstName: first, LastNames: last},
			ID:        id,
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		},
		SyncStatus: models.SyncStatusSynced,
	}
}

func TestPut_InsertAndReplace(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	e := newEntry("id1", "000005", "Ana", "Ruiz", now)
	require.NoError(t, r.Put(ctx, e))

	got, err := r.GetByID(ctx, "id1")
	require.NoError(t, err)
	assert.Equal(t, "000005", got.Folio)
	assert.Equal(t, "Ana", got.FirstName)
	assert.Equal(t, models.SyncStatusSynced, got.SyncStatus)
	assert.True(t, now.Equal(got.CreatedAt))

	// replace by same id
	e.Phone = "5551234"
	e.SyncStatus = models.SyncStatusPending
	require.NoError(t, r.Put(ctx, e))

	got, err = r.GetByID(ctx, "id1")
	require.NoError(t, err)
	assert.Equal(t, "5551234", got.Phone)
	assert.Equal(t, models.SyncStatusPending, got.SyncStatus)
}

func TestGetByID_NotFound(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	_, err := r.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetAll_SortsUnsyncedFirstThenFolioDescending(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, r.Put(ctx, newEntry("a", "000005", "A", "A", base)))
	require.NoError(t, r.Put(ctx, newEntry("b", "000012", "B", "B", base)))
	require.NoError(t, r.Put(ctx, newEntry("c", "000001", "C", "C", base)))

	// two offline-created entries without folio, newer one first
	older := newEntry("TEMP-1", "", "Old", "Temp", base.Add(1*time.Hour))
	newer := newEntry("TEMP-2", "", "New", "Temp", base.Add(2*time.Hour))
	older.SyncStatus = models.SyncStatusPending
	newer.SyncStatus = models.SyncStatusPending
	require.NoError(t, r.Put(ctx, older))
	require.NoError(t, r.Put(ctx, newer))

	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 5)

	ids := make([]string, 0, len(got))
	for _, e := range got {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"TEMP-2", "TEMP-1", "b", "a", "c"}, ids)
}

func TestSearch_AccentAndCaseInsensitive(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, r.Put(ctx, newEntry("id1", "000010", "José", "Martínez", now)))
	require.NoError(t, r.Put(ctx, newEntry("id2", "000011", "Pedro", "López", now)))

	for _, q := range []string{"jose martinez", "José", "MARTINEZ", "000010"} {
		got, err := r.Search(ctx, q)
		require.NoError(t, err)
		require.Len(t, got, 1, "query %q", q)
		assert.Equal(t, "id1", got[0].ID)
	}

	got, err := r.Search(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDeleteByID_MissingIsNoError(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, newEntry("id1", "000001", "A", "B", time.Now().UTC())))
	require.NoError(t, r.DeleteByID(ctx, "id1"))
	require.NoError(t, r.DeleteByID(ctx, "id1"))

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestCountAndClear(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, r.Put(ctx, newEntry("id1", "000001", "A", "B", now)))
	require.NoError(t, r.Put(ctx, newEntry("id2", "000002", "C", "D", now)))

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, r.Clear(ctx))
	n, err = r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
