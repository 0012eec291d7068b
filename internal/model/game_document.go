package model

import (
	"time"

	"partyroom-backend/internal/game"
)

// GameDocument stores the whole game of one user as a JSON document.
type GameDocument struct {
	UserID    string     `gorm:"primaryKey;size:36"`
	State     game.State `gorm:"serializer:json;not null"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`
}
