package session

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partyroom-backend/internal/game"
	"partyroom-backend/internal/store"
)

type memStates struct {
	mu      sync.Mutex
	states  map[string]game.State
	saves   int
	saveErr error
	loadErr error
}

func newMemStates() *memStates {
	return &memStates{states: make(map[string]game.State)}
}

func (m *memStates) LoadState(_ context.Context, userID string) (*game.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	s, ok := m.states[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &s, nil
}

func (m *memStates) SaveState(_ context.Context, userID string, s game.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.states[userID] = s
	m.saves++
	return nil
}

type recordingNotifier struct {
	userIDs []string
	stats   []game.DailyStats
}

func (r *recordingNotifier) NotifyDayEnd(userID string, stats game.DailyStats) {
	r.userIDs = append(r.userIDs, userID)
	r.stats = append(r.stats, stats)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestManager(st store.StateStore, n DayEndNotifier) *Manager {
	return NewManager(game.NewEngine(game.NewSeededGenerator(5)), st, n, quietLogger())
}

func TestOpen_SeedsAndSavesNewGame(t *testing.T) {
	ctx := context.Background()
	st := newMemStates()
	m := newTestManager(st, nil)

	s, err := m.Open(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, s.CurrentDay)
	assert.Equal(t, game.StartingMoney, s.Money)
	assert.NotEmpty(t, s.Bookings)
	assert.Equal(t, 1, st.saves)

	again, err := m.Open(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, s, again)
	assert.Equal(t, 1, st.saves, "second open is served from memory")
}

func TestOpen_LoadsExisting(t *testing.T) {
	st := newMemStates()
	saved := game.NewState("u1")
	saved.CurrentDay = 7
	st.states["u1"] = saved

	s, err := newTestManager(st, nil).Open(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 7, s.CurrentDay)
	assert.Zero(t, st.saves)
}

func TestOpen_StoreFailure(t *testing.T) {
	st := newMemStates()
	st.loadErr = errors.New("db down")
	m := newTestManager(st, nil)

	_, err := m.Open(context.Background(), "u1")
	assert.Error(t, err)
	assert.Zero(t, m.Active())
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	st := newMemStates()
	m := newTestManager(st, nil)
	e := m.Engine()

	s, err := m.Apply(ctx, "u1", func(s game.State) (game.State, error) {
		return e.RentRoom(s, game.RoomMedium)
	})
	require.NoError(t, err)
	assert.Len(t, s.Rooms, 2)

	_, err = m.Apply(ctx, "u1", func(s game.State) (game.State, error) {
		next, err := e.RentRoom(s, game.RoomXLarge)
		if err != nil {
			return next, err
		}
		return e.SpendMoney(next, 5000)
	})
	require.NoError(t, err)

	_, err = m.Apply(ctx, "u1", func(s game.State) (game.State, error) {
		return e.RentRoom(s, game.RoomXLarge)
	})
	assert.ErrorIs(t, err, game.ErrInsufficientFunds)

	cur, err := m.Open(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, cur.Rooms, 3, "failed transition leaves the snapshot untouched")
	assert.Equal(t, game.StartingMoney-1000-3500-5000, cur.Money)

	assert.Equal(t, game.StartingMoney, st.states["u1"].Money, "not persisted until saved")
	require.NoError(t, m.Save(ctx, "u1"))
	assert.Equal(t, cur.Money, st.states["u1"].Money)
}

func TestEndDay_PersistsAndNotifies(t *testing.T) {
	ctx := context.Background()
	st := newMemStates()
	n := &recordingNotifier{}
	m := newTestManager(st, n)

	res, err := m.EndDay(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, res.Saved)
	next, stats := res.State, res.Stats
	assert.Equal(t, 2, next.CurrentDay)
	assert.Equal(t, 1, stats.Day)
	assert.Equal(t, -500, stats.Profit)

	assert.Equal(t, 2, st.states["u1"].CurrentDay)
	assert.Equal(t, []string{"u1"}, n.userIDs)
	assert.Equal(t, []game.DailyStats{stats}, n.stats)
}

func TestEndDay_SaveFailureKeepsDirty(t *testing.T) {
	ctx := context.Background()
	st := newMemStates()
	m := newTestManager(st, nil)
	_, err := m.Open(ctx, "u1")
	require.NoError(t, err)

	st.saveErr = errors.New("db down")
	res, err := m.EndDay(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, res.Saved)
	assert.Equal(t, 2, res.State.CurrentDay)

	_, err = m.FlushDirty(ctx)
	assert.Error(t, err)

	st.saveErr = nil
	n, err := m.FlushDirty(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, st.states["u1"].CurrentDay)

	n, err = m.FlushDirty(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "nothing left to flush")
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	st := newMemStates()
	m := newTestManager(st, nil)

	_, err := m.Apply(ctx, "u1", func(s game.State) (game.State, error) {
		return m.Engine().SpendMoney(s, 100)
	})
	require.NoError(t, err)
	require.Equal(t, 1, m.Active())

	require.NoError(t, m.Close(ctx, "u1"))
	assert.Zero(t, m.Active())
	assert.Equal(t, game.StartingMoney-100, st.states["u1"].Money)

	assert.NoError(t, m.Close(ctx, "nobody"))
}

func TestConcurrentApply(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(newMemStates(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.Apply(ctx, "u1", func(s game.State) (game.State, error) {
				return m.Engine().EarnMoney(s, 10)
			})
		}()
	}
	wg.Wait()

	s, err := m.Open(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, game.StartingMoney+500, s.Money)
}
