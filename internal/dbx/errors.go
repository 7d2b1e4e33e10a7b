package dbx

import (
	"errors"
	"fmt"

	"github.com/emezab/registro/internal/common"
	sqlite "modernc.org/sqlite"
)

// SQLITE_FULL: database or disk is full.
const sqliteFull = 13

// QuotaExceeded reports whether err is the sqlite "database or disk is full"
// condition, which callers surface to the user as a cache-cleanup prompt.
func QuotaExceeded(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqliteFull
	}
	return false
}

// WrapWrite wraps a write error with op context, translating a full-disk
// condition into common.ErrStorageQuotaExceeded.
func WrapWrite(op string, err error) error {
	if err == nil {
		return nil
	}
	if QuotaExceeded(err) {
		return fmt.Errorf("%s: %w", op, common.ErrStorageQuotaExceeded)
	}
	return fmt.Errorf("%s: %w", op, err)
}
