// Package cli implements the interactive shell of the registry client. It
// works fully offline: captured mutations queue up locally and replay
// automatically once the connection comes back.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/emezab/registro/internal/client/client"
	"github.com/emezab/registro/internal/client/config"
	"github.com/emezab/registro/internal/client/offline"
	"github.com/emezab/registro/internal/client/services"
	"github.com/emezab/registro/internal/logging"
)

// App wires the whole client together and drives the interactive shell.
type App struct {
	config  *config.Config
	store   *client.Store
	entries services.EntryService
	refs    services.ReferenceService
	coord   *offline.Coordinator
	log     logging.Logger

	reader *bufio.Reader
	out    io.Writer
}

// NewApp builds the client from configuration: local store, remote API
// client, uploader, sync engine and connectivity monitor.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logging.NewTextLogger(os.Stderr, slog.LevelInfo)

	store, err := client.OpenStore(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	remote := client.NewHTTPClient(cfg.ServerBaseURL)

	var uploader client.Uploader
	if cfg.UploadMode == config.UploadModeS3 {
		uploader, err = client.NewS3Uploader(ctx, client.S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicBaseURL,
		})
		if err != nil {
			_ = store.Close()
			return nil, err
		}
	} else {
		uploader = client.NewAPIUploader(cfg.ServerBaseURL)
	}

	queue := services.NewQueueService(store.Queue)
	engine := services.NewSyncEngine(store, remote, uploader, queue,
		services.RetryPolicy{MaxAttempts: cfg.MaxItemRetries}, log)
	monitor := offline.NewMonitor(remote, cfg.OnlineCheckInterval, cfg.ReconnectDebounce, log)
	coord := offline.NewCoordinator(store, queue, engine, monitor, log)

	return &App{
		config:  cfg,
		store:   store,
		entries: services.NewEntryService(store, remote, log),
		refs:    services.NewReferenceService(store, remote, log),
		coord:   coord,
		log:     log,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}, nil
}

// Run starts connectivity watching and enters the shell. It returns when the
// user exits or stdin closes.
func (a *App) Run(ctx context.Context) error {
	defer a.store.Close()

	if err := a.coord.Start(ctx); err != nil {
		return err
	}
	a.Root(ctx)
	return nil
}

// statusLine renders the prompt suffix, e.g. "(online, 2 pending)".
func (a *App) statusLine(ctx context.Context) string {
	mode := "offline"
	if a.coord.Online() {
		mode = "online"
	}

	st, err := a.coord.Status(ctx)
	if err != nil || st.Pending == 0 {
		return fmt.Sprintf("(%s)", mode)
	}
	return fmt.Sprintf("(%s, %d pending)", mode, st.Pending)
}
