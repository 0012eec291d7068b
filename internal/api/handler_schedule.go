package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"partyroom-backend/internal/game"
	"partyroom-backend/internal/mw"
)

// GetSchedule returns today's schedule.
func (h *Handler) GetSchedule(c *gin.Context) {
	state, err := h.sessions.Open(c.Request.Context(), mw.UserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedule": state.Schedule})
}

type scheduleRequest struct {
	Time        string        `json:"time" binding:"required"`
	Activity    game.Activity `json:"activity" binding:"required"`
	RoomID      string        `json:"room_id"`
	ItemID      string        `json:"item_id"`
	Description string        `json:"description"`
}

// AddScheduleSlot books an activity into a free time slot.
func (h *Handler) AddScheduleSlot(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	slot := game.ScheduleSlot{
		Time:        req.Time,
		Activity:    req.Activity,
		RoomID:      req.RoomID,
		ItemID:      req.ItemID,
		Description: req.Description,
	}
	engine := h.sessions.Engine()
	h.apply(c, http.StatusCreated, func(s game.State) (game.State, error) {
		return engine.AddToSchedule(s, slot)
	})
}

// RemoveScheduleSlot frees a time slot.
func (h *Handler) RemoveScheduleSlot(c *gin.Context) {
	timeSlot := c.Param("time")
	engine := h.sessions.Engine()
	h.apply(c, http.StatusOK, func(s game.State) (game.State, error) {
		return engine.RemoveFromSchedule(s, timeSlot)
	})
}
