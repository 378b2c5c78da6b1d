package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/cado"
	"github.com/aretw0/cado/internal/logging"
	"github.com/aretw0/cado/pkg/domain"
	"github.com/aretw0/cado/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed owner can hold a distributed lock.
const DefaultLockTTL = 30 * time.Second

// Observer is notified after a command changed a notebook.
type Observer func(ctx context.Context, diff *domain.NotebookDiff)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager is the owning session of every notebook it serves: it serializes
// commands per notebook, builds an engine for each command and persists
// whatever the command changed.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.NotebookStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker     ports.DistributedLocker // Optional distributed locker
	lockTTL    time.Duration
	logger     *slog.Logger
	engineOpts []cado.Option
	observers  []Observer
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the lease of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithEngineOptions sets the options every engine is built with
// (evaluator, hooks, timeout...).
func WithEngineOptions(opts ...cado.Option) Option {
	return func(m *Manager) {
		m.engineOpts = append(m.engineOpts, opts...)
	}
}

// WithObserver registers a callback for notebook changes.
func WithObserver(o Observer) Option {
	return func(m *Manager) {
		m.observers = append(m.observers, o)
	}
}

// NewManager creates a new Manager backed by the given store.
func NewManager(store ports.NotebookStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// WithLock executes fn while holding the lock for the notebook.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"notebook", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Create stores a new notebook holding one empty cell.
func (m *Manager) Create(ctx context.Context, name string) (*domain.Notebook, error) {
	nb := domain.NewNotebook(name)
	nb.Cells = append(nb.Cells, domain.NewCell())

	err := m.WithLock(ctx, nb.ID, func(ctx context.Context) error {
		return m.store.Save(ctx, nb)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create notebook: %w", err)
	}
	m.logger.Info("notebook created", "notebook", nb.ID, "name", name)
	m.notify(ctx, domain.Diff(nil, nb))
	return nb, nil
}

// Import stores an existing document, e.g. one read from a file.
// It replaces any notebook with the same ID.
func (m *Manager) Import(ctx context.Context, nb *domain.Notebook) error {
	return m.WithLock(ctx, nb.ID, func(ctx context.Context) error {
		return m.store.Save(ctx, nb)
	})
}

// Load retrieves a notebook.
func (m *Manager) Load(ctx context.Context, id string) (*domain.Notebook, error) {
	var nb *domain.Notebook
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		nb, err = m.store.Load(ctx, id)
		return err
	})
	return nb, err
}

// Do runs fn against an engine owning the notebook. Whatever fn changed is
// saved, including state left by commands that failed, and observers are
// notified. The returned notebook reflects the state after fn; the error is
// fn's error unless persisting failed.
func (m *Manager) Do(ctx context.Context, id string, fn func(*cado.Engine) error) (*domain.Notebook, error) {
	var after *domain.Notebook
	var diff *domain.NotebookDiff
	var fnErr error

	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		nb, err := m.store.Load(ctx, id)
		if err != nil {
			return err
		}
		before := nb.Snapshot()

		eng := cado.New(nb, m.engineOpts...)
		fnErr = fn(eng)
		after = eng.Notebook()

		diff = domain.Diff(before, after)
		if diff == nil {
			return nil
		}
		// A cancelled command still persists what it changed.
		if err := m.store.Save(context.WithoutCancel(ctx), after); err != nil {
			return fmt.Errorf("failed to save notebook: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if diff != nil {
		m.notify(ctx, diff)
	}
	if fnErr != nil {
		m.logger.Debug("command failed", "notebook", id, "kind", domain.ErrorKind(fnErr), "err", fnErr)
	}
	return after, fnErr
}

// Delete removes the notebook from the store.
func (m *Manager) Delete(ctx context.Context, id string) error {
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		if _, err := m.store.Load(ctx, id); err != nil {
			return err
		}
		return m.store.Delete(ctx, id)
	})
	if err == nil {
		m.logger.Info("notebook deleted", "notebook", id)
	}
	return err
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Details returns listing summaries, most recently updated first.
// Notebooks that disappear or fail to load while listing are skipped.
func (m *Manager) Details(ctx context.Context) ([]domain.NotebookDetails, error) {
	ids, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.NotebookDetails, 0, len(ids))
	for _, id := range ids {
		nb, err := m.store.Load(ctx, id)
		if err != nil {
			if !errors.Is(err, domain.ErrNotebookNotFound) {
				m.logger.Warn("skipping unreadable notebook", "notebook", id, "err", err)
			}
			continue
		}
		out = append(out, nb.Details())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Updated.After(out[j].Updated)
	})
	return out, nil
}

// Store returns the underlying notebook store.
func (m *Manager) Store() ports.NotebookStore {
	return m.store
}

func (m *Manager) notify(ctx context.Context, diff *domain.NotebookDiff) {
	if diff == nil {
		return
	}
	for _, o := range m.observers {
		o(ctx, diff)
	}
}
