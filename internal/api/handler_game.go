package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"partyroom-backend/internal/game"
	"partyroom-backend/internal/mw"
)

// GetState opens the caller's game, creating it on first visit.
func (h *Handler) GetState(c *gin.Context) {
	state, err := h.sessions.Open(c.Request.Context(), mw.UserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

// SaveState persists the caller's current snapshot.
func (h *Handler) SaveState(c *gin.Context) {
	if err := h.sessions.Save(c.Request.Context(), mw.UserID(c)); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type rentRoomRequest struct {
	Size game.RoomSize `json:"size" binding:"required"`
}

// RentRoom rents a room of the requested size.
func (h *Handler) RentRoom(c *gin.Context) {
	var req rentRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	engine := h.sessions.Engine()
	h.apply(c, http.StatusCreated, func(s game.State) (game.State, error) {
		return engine.RentRoom(s, req.Size)
	})
}

type purchaseRequest struct {
	CatalogID string `json:"catalog_id" binding:"required"`
}

// PurchaseItem buys a catalog item into the inventory.
func (h *Handler) PurchaseItem(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var bought game.InventoryItem
	engine := h.sessions.Engine()
	state, err := h.sessions.Apply(c.Request.Context(), mw.UserID(c), func(s game.State) (game.State, error) {
		next, item, err := engine.PurchaseItem(s, req.CatalogID)
		bought = item
		return next, err
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"state": state, "item": bought})
}

// RemoveInventoryItem discards an item that was never installed.
func (h *Handler) RemoveInventoryItem(c *gin.Context) {
	id := c.Param("id")
	engine := h.sessions.Engine()
	h.apply(c, http.StatusOK, func(s game.State) (game.State, error) {
		return engine.RemoveFromInventory(s, id)
	})
}

type installRequest struct {
	RoomID   string `json:"room_id" binding:"required"`
	TimeSlot string `json:"time_slot" binding:"required"`
}

// ScheduleInstallation books an inventory item's installation.
func (h *Handler) ScheduleInstallation(c *gin.Context) {
	var req installRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	id := c.Param("id")
	engine := h.sessions.Engine()
	h.apply(c, http.StatusCreated, func(s game.State) (game.State, error) {
		return engine.ScheduleInstallation(s, id, req.RoomID, req.TimeSlot)
	})
}

type roomRequest struct {
	RoomID string `json:"room_id" binding:"required"`
}

// MoveItem moves an installed item to another room.
func (h *Handler) MoveItem(c *gin.Context) {
	var req roomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	id := c.Param("id")
	engine := h.sessions.Engine()
	h.apply(c, http.StatusOK, func(s game.State) (game.State, error) {
		return engine.AssignItemToRoom(s, id, req.RoomID)
	})
}
