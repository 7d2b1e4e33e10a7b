package attachments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/emezab/registro/internal/client/models"
	"github.com/emezab/registro/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Put upserts by owner. COALESCE keeps existing slots when the incoming value
// is nil, giving the partial-update merge the capture flow relies on.
func (r *SQLiteRepository) Put(ctx context.Context, att *models.Attachments) error {
	if att.OwnerID == "" {
		return fmt.Errorf("attachments without owner id")
	}
	query := `INSERT INTO attachments (owner_id, front_id, back_id, portrait)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(owner_id) DO UPDATE SET
			front_id = COALESCE(excluded.front_id, front_id),
			back_id = COALESCE(excluded.back_id, back_id),
			portrait = COALESCE(excluded.portrait, portrait)`
	_, err := r.db.ExecContext(ctx, query, att.OwnerID, att.FrontID, att.BackID, att.Portrait)
	return dbx.WrapWrite("upsert attachments", err)
}

func (r *SQLiteRepository) GetByOwner(ctx context.Context, ownerID string) (*models.Attachments, error) {
	att := &models.Attachments{OwnerID: ownerID}
	err := r.db.QueryRowContext(ctx,
		`SELECT front_id, back_id, portrait FROM attachments WHERE owner_id = ?`, ownerID).
		Scan(&att.FrontID, &att.BackID, &att.Portrait)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attachments for %s: %w", ownerID, err)
	}
	return att, nil
}

func (r *SQLiteRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM attachments WHERE owner_id = ?`, ownerID)
	return dbx.WrapWrite("delete attachments", err)
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attachments`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count attachments: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM attachments`)
	return dbx.WrapWrite("clear attachments", err)
}
