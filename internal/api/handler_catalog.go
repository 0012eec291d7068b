package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"partyroom-backend/internal/game"
)

type roomSizeView struct {
	Size  game.RoomSize `json:"size"`
	Label string        `json:"label"`
	game.RoomSpec
}

type itemTypeView struct {
	Type  game.ItemType `json:"type"`
	Icon  string        `json:"icon"`
	Label string        `json:"label"`
}

type customerTypeView struct {
	Type  game.CustomerType `json:"type"`
	Icon  string            `json:"icon"`
	Label string            `json:"label"`
	game.Requirements
}

type activityView struct {
	Activity game.Activity `json:"activity"`
	Label    string        `json:"label"`
}

// GetCatalog returns the fixed vocabulary tables of the game.
func (h *Handler) GetCatalog(c *gin.Context) {
	sizes := make([]roomSizeView, 0, len(game.RoomSizes))
	for _, s := range game.RoomSizes {
		spec, err := s.Spec()
		if err != nil {
			h.writeError(c, err)
			return
		}
		sizes = append(sizes, roomSizeView{Size: s, Label: s.Label(), RoomSpec: spec})
	}

	types := make([]itemTypeView, 0, len(game.ItemTypes))
	for _, t := range game.ItemTypes {
		types = append(types, itemTypeView{Type: t, Icon: t.Icon(), Label: t.Label()})
	}

	customers := make([]customerTypeView, 0, len(game.CustomerTypes))
	for _, ct := range game.CustomerTypes {
		customers = append(customers, customerTypeView{Type: ct, Icon: ct.Icon(), Label: ct.Label(), Requirements: ct.Requirements()})
	}

	requirementLabels := make(map[string]string)
	for _, ct := range game.CustomerTypes {
		for _, tag := range ct.Requirements().All() {
			requirementLabels[tag] = game.RequirementLabel(tag)
		}
	}

	activities := make([]activityView, 0, 4)
	for _, a := range []game.Activity{game.ActivityCleaning, game.ActivityInstallItem, game.ActivityBooking, game.ActivityFree} {
		activities = append(activities, activityView{Activity: a, Label: a.Label()})
	}

	c.JSON(http.StatusOK, gin.H{
		"room_sizes":         sizes,
		"item_types":         types,
		"items":              game.Catalog,
		"customer_types":     customers,
		"requirement_labels": requirementLabels,
		"time_slots":         game.TimeSlots,
		"activities":         activities,
	})
}
