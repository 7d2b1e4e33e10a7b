// Package offline tracks connectivity to the registry and coordinates the
// local store, the mutation queue and the sync engine around it.
package offline

import (
	"context"
	"sync"
	"time"

	"github.com/emezab/registro/internal/logging"
)

// probeTimeout bounds a single reachability probe.
const probeTimeout = 3 * time.Second

// Pinger is the probe the monitor uses to decide whether the registry is
// reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor polls the registry and reports connectivity edges. The reconnect
// callback fires only after connectivity has held for the debounce window,
// so a flapping link does not trigger a drain per blip.
type Monitor struct {
	pinger   Pinger
	interval time.Duration
	debounce time.Duration
	log      logging.Logger

	mu        sync.Mutex
	online    bool
	reconnect *time.Timer

	onReconnect  func()
	onDisconnect func()
}

func NewMonitor(pinger Pinger, interval, debounce time.Duration, log logging.Logger) *Monitor {
	return &Monitor{
		pinger:   pinger,
		interval: interval,
		debounce: debounce,
		log:      log.With("component", "monitor"),
	}
}

// OnReconnect registers the callback fired once connectivity has held for
// the debounce window. Must be set before Start.
func (m *Monitor) OnReconnect(fn func()) { m.onReconnect = fn }

// OnDisconnect registers the callback fired when connectivity is lost. Must
// be set before Start.
func (m *Monitor) OnDisconnect(fn func()) { m.onDisconnect = fn }

// Online reports the last observed connectivity state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Check performs one probe immediately and returns the resulting state.
func (m *Monitor) Check(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	err := m.pinger.Ping(probeCtx)
	cancel()

	m.observe(ctx, err == nil)
	return err == nil
}

// Start probes once right away and then on every tick until ctx is
// cancelled. It blocks; run it on its own goroutine.
func (m *Monitor) Start(ctx context.Context) {
	m.Check(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Check(ctx)
		case <-ctx.Done():
			m.cancelReconnect()
			return
		}
	}
}

func (m *Monitor) observe(ctx context.Context, online bool) {
	m.mu.Lock()
	changed := online != m.online
	m.online = online
	if changed && !online && m.reconnect != nil {
		// the link flapped before the debounce elapsed
		m.reconnect.Stop()
		m.reconnect = nil
	}
	if changed && online && m.onReconnect != nil {
		m.reconnect = time.AfterFunc(m.debounce, m.fireReconnect)
	}
	m.mu.Unlock()

	if !changed {
		return
	}
	if online {
		m.log.Info(ctx, "connection restored")
	} else {
		m.log.Warn(ctx, "connection lost")
		if m.onDisconnect != nil {
			m.onDisconnect()
		}
	}
}

func (m *Monitor) fireReconnect() {
	m.mu.Lock()
	m.reconnect = nil
	stillOnline := m.online
	m.mu.Unlock()

	if stillOnline {
		m.onReconnect()
	}
}

func (m *Monitor) cancelReconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reconnect != nil {
		m.reconnect.Stop()
		m.reconnect = nil
	}
}
