package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/emezab/registro/internal/client/client"
	"github.com/emezab/registro/internal/client/models"
	"github.com/emezab/registro/internal/logging"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *client.Store {
	t.Helper()
	store, err := client.OpenStore(context.Background(), filepath.Join(t.TempDir(), "registro.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testLogger() logging.Logger {
	return logging.NewTextLogger(io.Discard, slog.LevelDebug)
}

var errUnexpectedCall = errors.New("unexpected remote call")

// fakeRemote implements client.Client with per-method hooks. Methods without
// a hook fail the call so tests notice unplanned traffic.
type fakeRemote struct {
	pingFn       func(ctx context.Context) error
	nextFolioFn  func(ctx context.Context) (string, error)
	createFn     func(ctx context.Context, data *models.EntryData, idempotencyKey string) (*models.Entry, error)
	updateFn     func(ctx context.Context, id string, data *models.EntryData) (*models.Entry, error)
	deleteFn     func(ctx context.Context, id string) error
	getFn        func(ctx context.Context, id string) (*models.Entry, error)
	listFn       func(ctx context.Context, limit int, cursor string) ([]*models.Entry, string, error)
	searchFn     func(ctx context.Context, query string) ([]*models.Entry, error)
	localitiesFn func(ctx context.Context) ([]string, error)
	sectionsFn   func(ctx context.Context) ([]string, error)
}

func (f *fakeRemote) Ping(ctx context.Context) error {
	if f.pingFn == nil {
		return nil
	}
	return f.pingFn(ctx)
}

func (f *fakeRemote) NextFolio(ctx context.Context) (string, error) {
	if f.nextFolioFn == nil {
		return "", errUnexpectedCall
	}
	return f.nextFolioFn(ctx)
}

func (f *fakeRemote) CreateEntry(ctx context.Context, data *models.EntryData, idempotencyKey string) (*models.Entry, error) {
	if f.createFn == nil {
		return nil, errUnexpectedCall
	}
	return f.createFn(ctx, data, idempotencyKey)
}

func (f *fakeRemote) UpdateEntry(ctx context.Context, id string, data *models.EntryData) (*models.Entry, error) {
	if f.updateFn == nil {
		return nil, errUnexpectedCall
	}
	return f.updateFn(ctx, id, data)
}

func (f *fakeRemote) DeleteEntry(ctx context.Context, id string) error {
	if f.deleteFn == nil {
		return errUnexpectedCall
	}
	return f.deleteFn(ctx, id)
}

func (f *fakeRemote) GetEntry(ctx context.Context, id string) (*models.Entry, error) {
	if f.getFn == nil {
		return nil, errUnexpectedCall
	}
	return f.getFn(ctx, id)
}

func (f *fakeRemote) ListEntries(ctx context.Context, limit int, cursor string) ([]*models.Entry, string, error) {
	if f.listFn == nil {
		return nil, "", errUnexpectedCall
	}
	return f.listFn(ctx, limit, cursor)
}

func (f *fakeRemote) SearchEntries(ctx context.Context, query string) ([]*models.Entry, error) {
	if f.searchFn == nil {
		return nil, errUnexpectedCall
	}
	return f.searchFn(ctx, query)
}

func (f *fakeRemote) Localities(ctx context.Context) ([]string, error) {
	if f.localitiesFn == nil {
		return nil, errUnexpectedCall
	}
	return f.localitiesFn(ctx)
}

func (f *fakeRemote) ElectoralSections(ctx context.Context) ([]string, error) {
	if f.sectionsFn == nil {
		return nil, errUnexpectedCall
	}
	return f.sectionsFn(ctx)
}

type fakeUploader struct {
	fn func(ctx context.Context, blob []byte, filename string, category client.Category) (*client.UploadResult, error)
}

func (f *fakeUploader) Upload(ctx context.Context, blob []byte, filename string, category client.Category) (*client.UploadResult, error) {
	if f.fn == nil {
		return nil, errors.New("unexpected upload")
	}
	return f.fn(ctx, blob, filename, category)
}
