// Package shutdown coordinates graceful teardown: an ordered registry of
// cleanup handlers, signal handling with force-exit on a repeated signal,
// and a deadline on the whole sequence.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"artgen_backend/core"
	"artgen_backend/logging"

	"go.uber.org/zap"
)

// DefaultTimeout bounds the whole shutdown sequence.
const DefaultTimeout = 30 * time.Second

type entry struct {
	name     string
	fn       core.ShutdownFunc
	priority int
}

// Manager owns the shutdown lifecycle. Register handlers in any order;
// they run sorted by priority, lower first. The first interrupt starts a
// graceful shutdown, a second one exits immediately.
type Manager struct {
	logger  *logging.Logger
	timeout time.Duration

	mu       sync.Mutex
	entries  []entry
	started  bool
	shutdown bool

	ctx     context.Context
	cancel  context.CancelFunc
	sigChan chan os.Signal
}

// NewManager creates a manager with the default timeout.
func NewManager(logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		logger:  logger.Named("shutdown"),
		timeout: DefaultTimeout,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// WithTimeout overrides the shutdown deadline.
func (m *Manager) WithTimeout(timeout time.Duration) *Manager {
	m.timeout = timeout
	return m
}

// Register adds a cleanup handler. Lower priority runs earlier.
// Registrations after shutdown has begun are ignored.
func (m *Manager) Register(name string, priority int, fn core.ShutdownFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shutdown {
		return
	}
	m.entries = append(m.entries, entry{name: name, fn: fn, priority: priority})
}

// Start installs the signal handler. The returned context is cancelled
// when shutdown begins.
func (m *Manager) Start() context.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return m.ctx
	}
	m.started = true

	m.sigChan = make(chan os.Signal, 2)
	signal.Notify(m.sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		signals := 0
		for sig := range m.sigChan {
			signals++
			if signals == 1 {
				m.logger.Info("shutdown signal received",
					zap.String("signal", sig.String()))
				m.cancel()
				continue
			}
			m.logger.Warn("second signal, forcing exit")
			os.Exit(core.ExitCodeSIGINT)
		}
	}()

	return m.ctx
}

// Context returns the lifecycle context.
func (m *Manager) Context() context.Context {
	return m.ctx
}

// Trigger starts shutdown programmatically.
func (m *Manager) Trigger() {
	m.cancel()
}

// Shutdown runs all registered handlers in priority order under the
// configured deadline. Handler errors are logged, not fatal; every handler
// runs regardless of earlier failures. Safe to call once.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		return
	}
	m.shutdown = true
	entries := make([]entry, len(m.entries))
	copy(entries, m.entries)
	m.mu.Unlock()

	m.cancel()
	if m.sigChan != nil {
		signal.Stop(m.sigChan)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].priority < entries[j].priority
	})

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	for _, e := range entries {
		select {
		case <-ctx.Done():
			m.logger.Warn("shutdown deadline reached, skipping remaining handlers",
				zap.String("next", e.name))
			return
		default:
		}

		start := time.Now()
		if err := e.fn(ctx); err != nil {
			m.logger.Error("shutdown handler failed",
				zap.String("handler", e.name),
				zap.Error(err))
			continue
		}
		m.logger.Info("shutdown handler complete",
			zap.String("handler", e.name),
			zap.Duration("duration", time.Since(start)))
	}
}
