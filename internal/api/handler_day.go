package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"partyroom-backend/internal/export"
	"partyroom-backend/internal/game"
	"partyroom-backend/internal/mw"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GetSettlement previews the settlement of the current day.
func (h *Handler) GetSettlement(c *gin.Context) {
	state, err := h.sessions.Open(c.Request.Context(), mw.UserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settlement": game.CalculateDailySettlement(state)})
}

// EndDay closes the current day.
func (h *Handler) EndDay(c *gin.Context) {
	res, err := h.sessions.EndDay(c.Request.Context(), mw.UserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	// saved=false means the new day is not persisted yet; autosave retries.
	c.JSON(http.StatusOK, gin.H{"state": res.State, "stats": res.Stats, "saved": res.Saved})
}

// GetStats returns the settlement history.
func (h *Handler) GetStats(c *gin.Context) {
	state, err := h.sessions.Open(c.Request.Context(), mw.UserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": state.DailyStats})
}

// ExportStats returns the settlement history as a spreadsheet.
func (h *Handler) ExportStats(c *gin.Context) {
	state, err := h.sessions.Open(c.Request.Context(), mw.UserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	data, err := export.StatsWorkbook(state.DailyStats)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="partyroom-stats-day%d.xlsx"`, state.CurrentDay))
	c.Data(http.StatusOK, xlsxContentType, data)
}
