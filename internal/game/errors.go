package game

import "errors"

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrRoomFull          = errors.New("room is full")
	ErrSlotOccupied      = errors.New("time slot is occupied")
	ErrNotFound          = errors.New("not found")
	ErrInvalidStatus     = errors.New("invalid booking status")
	ErrInvalidSlot       = errors.New("invalid time slot")
	ErrAlreadyScheduled  = errors.New("item is already scheduled for installation")
	ErrInstallTooLong    = errors.New("installation does not fit in the time slot")
	ErrBookingExpired    = errors.New("booking is not for the current day")
	ErrUnknownKind       = errors.New("unknown kind")
	ErrInvalidAmount     = errors.New("amount must be positive")
)
