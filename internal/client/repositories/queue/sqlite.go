package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/emezab/registro/internal/client/models"
	"github.com/emezab/registro/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
// Replay order is the sqlite rowid, i.e. insertion order.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, item *models.QueuedAction) error {
	payload, err := models.EncodeAction(item.Action)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO queue (id, kind, payload, status, retry_count, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		item.ID, string(item.Action.Kind), payload, string(item.Status), item.RetryCount,
		item.CreatedAt.UTC().Format(time.RFC3339),
	)
	return dbx.WrapWrite("insert queue item", err)
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]*models.QueuedAction, error) {
	return r.selectItems(ctx,
		`SELECT id, payload, status, retry_count, created_at FROM queue ORDER BY rowid`)
}

func (r *SQLiteRepository) GetByStatus(ctx context.Context, status models.QueueStatus) ([]*models.QueuedAction, error) {
	return r.selectItems(ctx,
		`SELECT id, payload, status, retry_count, created_at FROM queue WHERE status = ? ORDER BY rowid`,
		string(status))
}

func (r *SQLiteRepository) selectItems(ctx context.Context, query string, args ...any) ([]*models.QueuedAction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select queue items: %w", err)
	}
	defer rows.Close()

	var result []*models.QueuedAction
	for rows.Next() {
		item := &models.QueuedAction{}
		var payload []byte
		var status, createdAt string
		if err := rows.Scan(&item.ID, &payload, &status, &item.RetryCount, &createdAt); err != nil {
			return nil, err
		}
		if item.Action, err = models.DecodeAction(payload); err != nil {
			return nil, fmt.Errorf("queue item %s: %w", item.ID, err)
		}
		item.Status = models.QueueStatus(status)
		if item.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("queue item %s: bad created_at: %w", item.ID, err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, item *models.QueuedAction) error {
	payload, err := models.EncodeAction(item.Action)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE queue SET payload = ?, status = ?, retry_count = ? WHERE id = ?`,
		payload, string(item.Status), item.RetryCount, item.ID)
	if err != nil {
		return dbx.WrapWrite("update queue item", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("queue item %s: wrong rows affected count: %d", item.ID, ra)
	}
	return nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM queue WHERE id = ?`, id)
	return dbx.WrapWrite("delete queue item", err)
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM queue`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count queue items: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) CountByStatus(ctx context.Context, status models.QueueStatus) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM queue WHERE status = ?`, string(status)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count queue items: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM queue`)
	return dbx.WrapWrite("clear queue", err)
}
