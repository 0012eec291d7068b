package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"partyroom-backend/config"
	"partyroom-backend/internal/auth"
	"partyroom-backend/internal/db"
	"partyroom-backend/internal/game"
	"partyroom-backend/internal/mw"
	"partyroom-backend/internal/session"
	"partyroom-backend/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	store  store.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)

	st := store.NewGormStore(gormDB)
	tokens := auth.NewTokenService("test-secret", time.Hour)
	authSvc := auth.NewService(st, tokens, bcrypt.MinCost)
	engine := game.NewEngine(game.NewSeededGenerator(1))
	sessions := session.NewManager(engine, st, nil, log)
	h := NewHandler(sessions, authSvc, st, &webpush.Options{VAPIDPublicKey: "public-key"}, log)

	cfg := config.ServerConfig{CacheTTLSeconds: 60, AllowedOrigins: []string{"*"}}
	router := NewRouter(h, tokens, cfg, mw.NewIPRateLimiter(rate.Inf, 1), log)
	return &testServer{router: router, store: st}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) register(t *testing.T, username string) auth.Session {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"username": username, "password": "secret123"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sess auth.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
	return sess
}

type stateResponse struct {
	State game.State `json:"state"`
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) game.State {
	t.Helper()
	var resp stateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp.State
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestGetCatalog(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/catalog", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

	var body struct {
		RoomSizes []struct {
			Size     string `json:"size"`
			Capacity int    `json:"capacity"`
		} `json:"room_sizes"`
		Items     []game.CatalogItem `json:"items"`
		TimeSlots []string           `json:"time_slots"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.RoomSizes, 4)
	assert.Len(t, body.Items, len(game.Catalog))
	assert.Equal(t, game.TimeSlots, body.TimeSlots)

	w = s.do(t, http.MethodGet, "/api/catalog", "", nil)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
}

func TestGetVAPIDPublicKey(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/vapid_public_key", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"public_key":"public-key"}`, w.Body.String())
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	sess := s.register(t, "alice")
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "alice", sess.Username)

	w := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"username": "alice", "password": "secret123"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"username": "al", "password": "secret123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code)
	var login auth.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	assert.Equal(t, sess.UserID, login.UserID)

	w = s.do(t, http.MethodGet, "/api/game/state", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/logout", login.Token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/api/game/state", login.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/game/state", sess.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGameFlow(t *testing.T) {
	s := newTestServer(t)
	sess := s.register(t, "bob")
	token := sess.Token

	w := s.do(t, http.MethodGet, "/api/game/state", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	state := decodeState(t, w)
	assert.Equal(t, sess.UserID, state.UserID)
	assert.Equal(t, 1, state.CurrentDay)
	assert.Equal(t, game.StartingMoney, state.Money)
	require.NotEmpty(t, state.Bookings)

	saved, err := s.store.LoadState(t.Context(), sess.UserID)
	require.NoError(t, err)
	assert.Equal(t, state.Bookings, saved.Bookings)

	w = s.do(t, http.MethodPost, "/api/game/bookings/generate", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"generated":false`)

	w = s.do(t, http.MethodPost, "/api/game/rooms", token, gin.H{"size": "xlarge"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	state = decodeState(t, w)
	require.Len(t, state.Rooms, 2)
	assert.Equal(t, 6500, state.Money)
	roomID := state.Rooms[1].ID

	w = s.do(t, http.MethodPost, "/api/game/shop/purchase", token, gin.H{"catalog_id": "ps5"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var purchase struct {
		State game.State         `json:"state"`
		Item  game.InventoryItem `json:"item"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &purchase))
	assert.Equal(t, 1500, purchase.State.Money)
	assert.Equal(t, "ps5", purchase.Item.CatalogID)

	w = s.do(t, http.MethodPost, "/api/game/shop/purchase", token, gin.H{"catalog_id": "ktv-pro"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/game/inventory/"+purchase.Item.ID+"/install", token,
		gin.H{"room_id": roomID, "time_slot": "09:00-13:00"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/game/schedule", token,
		gin.H{"time": "09:00-13:00", "activity": "cleaning", "room_id": "room-1"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodGet, "/api/game/schedule", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sched struct {
		Schedule game.Schedule `json:"schedule"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sched))
	require.Len(t, sched.Schedule.Slots, 1)
	assert.Equal(t, game.ActivityInstallItem, sched.Schedule.Slots[0].Activity)

	booking := state.Bookings[0]
	w = s.do(t, http.MethodGet, "/api/game/bookings/"+booking.ID+"/recommendation", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/game/bookings/"+booking.ID+"/assign", token, gin.H{"room_id": roomID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var assigned struct {
		Booking game.Booking `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &assigned))
	assert.Equal(t, game.BookingConfirmed, assigned.Booking.Status)
	require.NotNil(t, assigned.Booking.RoomID)
	assert.Equal(t, roomID, *assigned.Booking.RoomID)

	w = s.do(t, http.MethodPost, "/api/game/bookings/"+booking.ID+"/assign", token, gin.H{"room_id": roomID})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodGet, "/api/game/settlement", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"bookingsCompleted":0`)

	w = s.do(t, http.MethodPost, "/api/game/day/end", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ended struct {
		State game.State      `json:"state"`
		Stats game.DailyStats `json:"stats"`
		Saved bool            `json:"saved"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ended))
	assert.True(t, ended.Saved)
	assert.Equal(t, 2, ended.State.CurrentDay)
	assert.Equal(t, 1, ended.Stats.BookingsCompleted)
	assert.Equal(t, assigned.Booking.Revenue, ended.Stats.Revenue)
	assert.Equal(t, 4000, ended.Stats.Expenses)
	require.Len(t, ended.State.Items, 1)
	assert.Equal(t, []string{purchase.Item.ID}, ended.State.Rooms[1].Items)
	assert.Empty(t, ended.State.Inventory)

	w = s.do(t, http.MethodGet, "/api/game/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history struct {
		Stats []game.DailyStats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	assert.Equal(t, []game.DailyStats{ended.Stats}, history.Stats)

	w = s.do(t, http.MethodGet, "/api/game/stats/export", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.NotEmpty(t, w.Body.Bytes())

	saved, err = s.store.LoadState(t.Context(), sess.UserID)
	require.NoError(t, err)
	assert.Equal(t, 2, saved.CurrentDay)
}

func TestGameErrors(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "carol").Token

	testCases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"Unknown room size", http.MethodPost, "/api/game/rooms", gin.H{"size": "huge"}, http.StatusBadRequest},
		{"Missing room size", http.MethodPost, "/api/game/rooms", gin.H{}, http.StatusBadRequest},
		{"Unknown catalog item", http.MethodPost, "/api/game/shop/purchase", gin.H{"catalog_id": "nope"}, http.StatusNotFound},
		{"Unknown inventory item", http.MethodDelete, "/api/game/inventory/nope", nil, http.StatusNotFound},
		{"Unknown item to move", http.MethodPost, "/api/game/items/nope/move", gin.H{"room_id": "room-1"}, http.StatusNotFound},
		{"Unknown booking", http.MethodPost, "/api/game/bookings/nope/assign", gin.H{"room_id": "room-1"}, http.StatusNotFound},
		{"Unknown booking recommendation", http.MethodGet, "/api/game/bookings/nope/recommendation", nil, http.StatusNotFound},
		{"Invalid time slot", http.MethodPost, "/api/game/schedule", gin.H{"time": "08:00-09:00", "activity": "free"}, http.StatusBadRequest},
		{"Unknown activity", http.MethodPost, "/api/game/schedule", gin.H{"time": "09:00-13:00", "activity": "party"}, http.StatusBadRequest},
		{"Free slot not scheduled", http.MethodDelete, "/api/game/schedule/09:00-13:00", nil, http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := s.do(t, tc.method, tc.path, token, tc.body)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestSchedule(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "dave").Token

	w := s.do(t, http.MethodPost, "/api/game/schedule", token,
		gin.H{"time": "13:30-17:30", "activity": "cleaning", "room_id": "room-1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	state := decodeState(t, w)
	require.Len(t, state.Schedule.Slots, 1)
	assert.Equal(t, "清潔 房間 1", state.Schedule.Slots[0].Description)

	w = s.do(t, http.MethodDelete, "/api/game/schedule/13:30-17:30", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeState(t, w).Schedule.Slots)
}

func TestSubscriptions(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice").Token
	bob := s.register(t, "bob").Token

	put := func(token, endpoint string) int {
		return s.do(t, http.MethodPut, "/api/game/subscriptions", token,
			gin.H{"endpoint": endpoint, "p256dh": "key", "auth": "secret"}).Code
	}
	list := func(token string) []string {
		w := s.do(t, http.MethodGet, "/api/game/subscriptions", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Subscriptions []struct {
				Endpoint string `json:"endpoint"`
			} `json:"subscriptions"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		var out []string
		for _, sub := range body.Subscriptions {
			out = append(out, sub.Endpoint)
		}
		return out
	}

	assert.Equal(t, http.StatusCreated, put(alice, "https://push.example/a1"))
	assert.Equal(t, http.StatusCreated, put(alice, "https://push.example/a2"))
	assert.Equal(t, http.StatusCreated, put(bob, "https://push.example/b1"))
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPut, "/api/game/subscriptions", alice, gin.H{"endpoint": "x"}).Code)

	assert.ElementsMatch(t, []string{"https://push.example/a1", "https://push.example/a2"}, list(alice))

	w := s.do(t, http.MethodDelete, "/api/game/subscriptions?endpoint=https://push.example/b1", alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, []string{"https://push.example/b1"}, list(bob))

	w = s.do(t, http.MethodDelete, "/api/game/subscriptions?endpoint=https://push.example/a1", alice, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"https://push.example/a2"}, list(alice))

	assert.Equal(t, http.StatusCreated, put(alice, "https://push.example/a3?x=1"))
	w = s.do(t, http.MethodDelete, "/api/game/subscriptions?endpoint="+url.QueryEscape("https://push.example/a3?x=1"), alice, nil)
	assert.Equal(t, http.StatusNoContent, w.Code, "percent-encoded endpoints are decoded")
	assert.Equal(t, []string{"https://push.example/a2"}, list(alice))

	w = s.do(t, http.MethodDelete, "/api/game/subscriptions", alice, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, list(alice))
	assert.Equal(t, []string{"https://push.example/b1"}, list(bob))
}
