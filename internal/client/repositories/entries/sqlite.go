package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/emezab/registro/internal/client/models"
	"github.com/emezab/registro/internal/common"
	"github.com/emezab/registro/internal/dbx"
	"github.com/emezab/registro/internal/textx"
)

const entryColumns = `id, folio, first_name, middle_name, last_names, phone,
	contact_method, birth_date, electoral_section, polling_place, zone, role,
	support_notes, locality, portrait_url, portrait_key, front_id_url,
	front_id_key, back_id_url, back_id_key, sync_status, created_at, updated_at`

// Folio-less entries first (newest created first among themselves), then by
// folio descending, treated as an integer.
const entryOrder = `ORDER BY CASE WHEN folio = '' THEN 0 ELSE 1 END,
	CASE WHEN folio = '' THEN created_at END DESC,
	CAST(folio AS INTEGER) DESC`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Put(ctx context.Context, e *models.LocalEntry) error {
	query := `INSERT INTO entries (` + entryColumns + `, search_text)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			folio = excluded.folio,
			first_name = excluded.first_name,
			middle_name = excluded.middle_name,
			last_names = excluded.last_names,
			phone = excluded.phone,
			contact_method = excluded.contact_method,
			birth_date = excluded.birth_date,
			electoral_section = excluded.electoral_section,
			polling_place = excluded.polling_place,
			zone = excluded.zone,
			role = excluded.role,
			support_notes = excluded.support_notes,
			locality = excluded.locality,
			portrait_url = excluded.portrait_url,
			portrait_key = excluded.portrait_key,
			front_id_url = excluded.front_id_url,
			front_id_key = excluded.front_id_key,
			back_id_url = excluded.back_id_url,
			back_id_key = excluded.back_id_key,
			sync_status = excluded.sync_status,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			search_text = excluded.search_text`

	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.Folio, e.FirstName, e.MiddleName, e.LastNames, e.Phone,
		e.ContactMethod, e.BirthDate, e.ElectoralSection, e.PollingPlace,
		e.Zone, e.Role, e.SupportNotes, e.Locality,
		e.PortraitURL, e.PortraitKey, e.FrontIDURL, e.FrontIDKey,
		e.BackIDURL, e.BackIDKey, string(e.SyncStatus),
		e.CreatedAt.UTC().Format(time.RFC3339), e.UpdatedAt.UTC().Format(time.RFC3339),
		e.SearchText(),
	)
	return dbx.WrapWrite("upsert entry", err)
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.LocalEntry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)
	e, err := scanEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("entry %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]*models.LocalEntry, error) {
	return r.selectEntries(ctx, `SELECT `+entryColumns+` FROM entries `+entryOrder)
}

func (r *SQLiteRepository) Search(ctx context.Context, query string) ([]*models.LocalEntry, error) {
	q := textx.Normalize(query)
	return r.selectEntries(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE instr(search_text, ?) > 0 `+entryOrder, q)
}

func (r *SQLiteRepository) selectEntries(ctx context.Context, query string, args ...any) ([]*models.LocalEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []*models.LocalEntry
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	return dbx.WrapWrite("delete entry", err)
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM entries`)
	return dbx.WrapWrite("clear entries", err)
}

func scanEntry(scan func(dest ...any) error) (*models.LocalEntry, error) {
	e := &models.LocalEntry{}
	var status, createdAt, updatedAt string
	err := scan(
		&e.ID, &e.Folio, &e.FirstName, &e.MiddleName, &e.LastNames, &e.Phone,
		&e.ContactMethod, &e.BirthDate, &e.ElectoralSection, &e.PollingPlace,
		&e.Zone, &e.Role, &e.SupportNotes, &e.Locality,
		&e.PortraitURL, &e.PortraitKey, &e.FrontIDURL, &e.FrontIDKey,
		&e.BackIDURL, &e.BackIDKey, &status, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.SyncStatus = models.SyncStatus(status)
	if e.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at %q: %w", createdAt, err)
	}
	if e.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("bad updated_at %q: %w", updatedAt, err)
	}
	return e, nil
}
