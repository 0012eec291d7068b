package api

import (
	"errors"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"partyroom-backend/internal/auth"
	"partyroom-backend/internal/game"
	"partyroom-backend/internal/mw"
	"partyroom-backend/internal/session"
	"partyroom-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	sessions *session.Manager
	auth     *auth.Service
	subs     store.SubscriptionStore
	webpush  *webpush.Options
	log      *logrus.Logger
}

// NewHandler creates a new API handler.
func NewHandler(sessions *session.Manager, authSvc *auth.Service, subs store.SubscriptionStore, webpushOptions *webpush.Options, log *logrus.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		auth:     authSvc,
		subs:     subs,
		webpush:  webpushOptions,
		log:      log,
	}
}

// apply runs a transition for the calling user and answers with the new state.
func (h *Handler) apply(c *gin.Context, status int, fn func(game.State) (game.State, error)) {
	state, err := h.sessions.Apply(c.Request.Context(), mw.UserID(c), fn)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(status, gin.H{"state": state})
}

// writeError maps domain errors to HTTP statuses. Anything unknown is logged
// and answered with a generic 500.
func (h *Handler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, game.ErrNotFound), errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, game.ErrInsufficientFunds),
		errors.Is(err, game.ErrRoomFull),
		errors.Is(err, game.ErrSlotOccupied),
		errors.Is(err, game.ErrAlreadyScheduled),
		errors.Is(err, game.ErrInvalidStatus),
		errors.Is(err, auth.ErrUsernameTaken):
		status = http.StatusConflict
	case errors.Is(err, game.ErrInvalidSlot),
		errors.Is(err, game.ErrInstallTooLong),
		errors.Is(err, game.ErrBookingExpired),
		errors.Is(err, game.ErrUnknownKind),
		errors.Is(err, game.ErrInvalidAmount),
		errors.Is(err, auth.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	}

	if status == http.StatusInternalServerError {
		h.log.WithFields(logrus.Fields{
			"user_id": mw.UserID(c),
			"path":    c.FullPath(),
		}).WithError(err).Error("request failed")
		c.Error(err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
