package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"partyroom-backend/internal/game"
	"partyroom-backend/internal/store"
)

// DayEndNotifier is told about every finished day.
type DayEndNotifier interface {
	NotifyDayEnd(userID string, stats game.DailyStats)
}

type entry struct {
	state game.State
	dirty bool
}

// Manager holds the current snapshot of every active player and decides
// when snapshots are loaded, seeded and persisted.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry

	engine   *game.Engine
	store    store.StateStore
	notifier DayEndNotifier
	log      *logrus.Logger
}

// NewManager creates a session manager. notifier may be nil.
func NewManager(engine *game.Engine, st store.StateStore, notifier DayEndNotifier, log *logrus.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*entry),
		engine:   engine,
		store:    st,
		notifier: notifier,
		log:      log,
	}
}

// Engine returns the engine sessions are driven with.
func (m *Manager) Engine() *game.Engine {
	return m.engine
}

// Open returns the current snapshot of a player, loading it from the store or
// seeding and saving a new game on first login.
func (m *Manager) Open(ctx context.Context, userID string) (game.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.open(ctx, userID)
	if err != nil {
		return game.State{}, err
	}
	return e.state, nil
}

func (m *Manager) open(ctx context.Context, userID string) (*entry, error) {
	if e, ok := m.sessions[userID]; ok {
		return e, nil
	}

	saved, err := m.store.LoadState(ctx, userID)
	switch {
	case err == nil:
		e := &entry{state: *saved}
		m.sessions[userID] = e
		m.log.WithFields(logrus.Fields{"user_id": userID, "day": saved.CurrentDay}).Debug("game loaded")
		return e, nil
	case errors.Is(err, store.ErrNotFound):
		state := m.engine.NewGame(userID)
		if err := m.store.SaveState(ctx, userID, state); err != nil {
			return nil, err
		}
		e := &entry{state: state}
		m.sessions[userID] = e
		m.log.WithField("user_id", userID).Info("new game created")
		return e, nil
	default:
		return nil, err
	}
}

// Apply runs a transition against the player's snapshot and swaps in the
// result. A failing transition leaves the snapshot untouched.
func (m *Manager) Apply(ctx context.Context, userID string, fn func(game.State) (game.State, error)) (game.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.open(ctx, userID)
	if err != nil {
		return game.State{}, err
	}
	next, err := fn(e.state)
	if err != nil {
		return game.State{}, err
	}
	e.state = next
	e.dirty = true
	return next, nil
}

// Save persists the player's snapshot if it is open.
func (m *Manager) Save(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[userID]
	if !ok {
		return nil
	}
	return m.save(ctx, userID, e)
}

func (m *Manager) save(ctx context.Context, userID string, e *entry) error {
	if err := m.store.SaveState(ctx, userID, e.state); err != nil {
		return err
	}
	e.dirty = false
	return nil
}

// DayResult is the outcome of closing a day. Saved is false when the new day
// is only held in memory until the next autosave.
type DayResult struct {
	State game.State
	Stats game.DailyStats
	Saved bool
}

// EndDay closes the player's day, persists the new day and notifies.
func (m *Manager) EndDay(ctx context.Context, userID string) (DayResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.open(ctx, userID)
	if err != nil {
		return DayResult{}, err
	}

	next, stats := m.engine.EndDay(e.state)
	e.state = next
	e.dirty = true
	res := DayResult{State: next, Stats: stats, Saved: true}

	fields := logrus.Fields{"user_id": userID, "day": stats.Day, "profit": stats.Profit}
	if err := m.save(ctx, userID, e); err != nil {
		res.Saved = false
		m.log.WithFields(fields).WithError(err).Warn("day ended but save failed; autosave will retry")
	} else {
		m.log.WithFields(fields).Info("day ended")
	}

	if m.notifier != nil {
		m.notifier.NotifyDayEnd(userID, stats)
	}
	return res, nil
}

// FlushDirty saves every modified snapshot and reports how many were saved.
func (m *Manager) FlushDirty(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	saved := 0
	var errs []error
	for userID, e := range m.sessions {
		if !e.dirty {
			continue
		}
		if err := m.save(ctx, userID, e); err != nil {
			errs = append(errs, fmt.Errorf("user %s: %w", userID, err))
			continue
		}
		saved++
	}
	return saved, errors.Join(errs...)
}

// Close saves and forgets the snapshot of a player.
func (m *Manager) Close(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[userID]
	if !ok {
		return nil
	}
	if e.dirty {
		if err := m.save(ctx, userID, e); err != nil {
			return err
		}
	}
	delete(m.sessions, userID)
	return nil
}

// Active returns the number of open sessions.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
