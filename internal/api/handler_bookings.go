package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"partyroom-backend/internal/game"
	"partyroom-backend/internal/mw"
)

// GenerateBookings creates today's bookings if none exist yet.
func (h *Handler) GenerateBookings(c *gin.Context) {
	generated := false
	engine := h.sessions.Engine()
	state, err := h.sessions.Apply(c.Request.Context(), mw.UserID(c), func(s game.State) (game.State, error) {
		next, ok := engine.GenerateBookings(s)
		generated = ok
		return next, nil
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state, "generated": generated})
}

// RecommendRoom suggests the best fitting room for a booking.
func (h *Handler) RecommendRoom(c *gin.Context) {
	state, err := h.sessions.Open(c.Request.Context(), mw.UserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	id := c.Param("id")
	b, ok := state.Booking(id)
	if !ok {
		h.writeError(c, fmt.Errorf("booking %s: %w", id, game.ErrNotFound))
		return
	}
	room, ok := game.RecommendRoom(state, b)
	if !ok {
		h.writeError(c, fmt.Errorf("no room fits %d people: %w", b.PeopleCount, game.ErrNotFound))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"room":                  room,
		"expected_satisfaction": game.CalculateSatisfaction(b, room, state.Items),
	})
}

// AssignRoom confirms a booking into a room.
func (h *Handler) AssignRoom(c *gin.Context) {
	var req roomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	id := c.Param("id")
	engine := h.sessions.Engine()
	state, err := h.sessions.Apply(c.Request.Context(), mw.UserID(c), func(s game.State) (game.State, error) {
		return engine.AssignRoom(s, id, req.RoomID)
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	booking, _ := state.Booking(id)
	c.JSON(http.StatusOK, gin.H{"state": state, "booking": booking})
}
