package offline

import (
	"context"
	"sync"
	"time"

	"github.com/emezab/registro/internal/client/client"
	"github.com/emezab/registro/internal/client/models"
	"github.com/emezab/registro/internal/client/repositories/metadata"
	"github.com/emezab/registro/internal/client/services"
	"github.com/emezab/registro/internal/common"
	"github.com/emezab/registro/internal/logging"
)

// Status is a point-in-time view of the client's sync machinery, shown by
// the status command and after every drain.
type Status struct {
	Online   bool
	Syncing  bool
	Pending  int
	Failed   int
	LastSync time.Time
	Stats    *models.StorageStats
	Progress *services.SyncProgress
}

// Coordinator wires the connectivity monitor to the sync engine: it resets
// interrupted work at startup, drains the queue when the connection comes
// back, and exposes manual sync and retry.
type Coordinator struct {
	store   *client.Store
	queue   services.QueueService
	engine  *services.SyncEngine
	monitor *Monitor
	log     logging.Logger

	mu       sync.Mutex
	progress *services.SyncProgress
}

func NewCoordinator(store *client.Store, queue services.QueueService, engine *services.SyncEngine,
	monitor *Monitor, log logging.Logger) *Coordinator {
	return &Coordinator{
		store:   store,
		queue:   queue,
		engine:  engine,
		monitor: monitor,
		log:     log.With("component", "coordinator"),
	}
}

// Start recovers queue items stranded in the syncing state by a previous
// session, then begins watching connectivity. Drains are triggered
// automatically on (debounced) reconnect.
func (c *Coordinator) Start(ctx context.Context) error {
	stuck, err := c.queue.ResetStuck(ctx)
	if err != nil {
		return err
	}
	if stuck > 0 {
		c.log.Info(ctx, "recovered interrupted queue items", "count", stuck)
	}

	c.monitor.OnReconnect(func() {
		if _, err := c.SyncNow(ctx); err != nil {
			c.log.Warn(ctx, "automatic sync failed", "error", err)
		}
	})

	go c.monitor.Start(ctx)
	return nil
}

// Online reports the last observed connectivity state.
func (c *Coordinator) Online() bool {
	return c.monitor.Online()
}

// SyncNow drains the mutation queue once. It refuses while offline with
// common.ErrNetworkUnreachable.
func (c *Coordinator) SyncNow(ctx context.Context) (*services.Result, error) {
	if !c.monitor.Online() {
		return nil, common.ErrNetworkUnreachable
	}

	res, err := c.engine.Sync(ctx, func(p services.SyncProgress) {
		c.mu.Lock()
		c.progress = &p
		c.mu.Unlock()
	})

	c.mu.Lock()
	c.progress = nil
	c.mu.Unlock()
	return res, err
}

// RetryFailed gives every failed queue item a fresh retry budget and, when
// online, drains immediately. Returns how many items were reset.
func (c *Coordinator) RetryFailed(ctx context.Context) (int, error) {
	n, err := c.queue.ResetFailed(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 && c.monitor.Online() {
		if _, err := c.SyncNow(ctx); err != nil {
			return n, err
		}
	}
	return n, nil
}

// Status assembles the current sync state.
func (c *Coordinator) Status(ctx context.Context) (*Status, error) {
	pending, err := c.queue.PendingCount(ctx)
	if err != nil {
		return nil, err
	}
	failed, err := c.queue.FailedCount(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := c.store.Stats(ctx)
	if err != nil {
		return nil, err
	}

	st := &Status{
		Online:  c.monitor.Online(),
		Syncing: c.engine.Running(),
		Pending: pending,
		Failed:  failed,
		Stats:   stats,
	}

	if raw, err := c.store.Metadata.Get(ctx, metadata.KeyLastSync); err == nil && raw != nil {
		if ts, perr := time.Parse(time.RFC3339, string(raw)); perr == nil {
			st.LastSync = ts
		}
	}

	c.mu.Lock()
	if c.progress != nil {
		p := *c.progress
		st.Progress = &p
	}
	c.mu.Unlock()

	return st, nil
}
