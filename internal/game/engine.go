package game

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"partyroom-backend/internal/parse"
)

const cleanlinessPerBooking = 10

// Engine applies player actions to game snapshots. Every method takes a state
// by value and returns a new state; on error the input is left untouched and
// the returned state is the zero value.
type Engine struct {
	gen   *Generator
	newID func() string
	now   func() time.Time
}

// NewEngine builds an engine around a booking generator.
func NewEngine(gen *Generator) *Engine {
	return &Engine{
		gen:   gen,
		newID: uuid.NewString,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the id source and clock, for tests.
func (e *Engine) WithClock(newID func() string, now func() time.Time) *Engine {
	e.newID = newID
	e.now = now
	return e
}

// NewGame seeds a state for a first login, including the first day's bookings.
func (e *Engine) NewGame(userID string) State {
	s := NewState(userID)
	s.Bookings = append(s.Bookings, e.gen.GenerateDailyBookings(s.CurrentDay, s.Reputation, 0)...)
	return s
}

// RentRoom adds a room of the given size and charges its rent.
func (e *Engine) RentRoom(s State, size RoomSize) (State, error) {
	spec, err := size.Spec()
	if err != nil {
		return State{}, err
	}
	if s.Money < spec.Rent {
		return State{}, fmt.Errorf("rent %s room: %w", size, ErrInsufficientFunds)
	}

	next := s.Clone()
	n := len(next.Rooms) + 1
	next.Rooms = append(next.Rooms, Room{
		ID:          fmt.Sprintf("room-%d", n),
		Name:        fmt.Sprintf("房間 %d", n),
		Size:        size,
		Capacity:    spec.Capacity,
		MaxItems:    spec.MaxItems,
		Rent:        spec.Rent,
		Items:       []string{},
		Cleanliness: FullCleanliness,
	})
	next.Money -= spec.Rent
	return next, nil
}

// AddRoom appends a room as given.
func (e *Engine) AddRoom(s State, room Room) State {
	next := s.Clone()
	if room.Items == nil {
		room.Items = []string{}
	}
	next.Rooms = append(next.Rooms, room)
	return next
}

// AddItem appends an installed item, registering it with its room.
func (e *Engine) AddItem(s State, item Item) (State, error) {
	next := s.Clone()
	if item.RoomID != nil {
		ri := next.roomIndex(*item.RoomID)
		if ri < 0 {
			return State{}, fmt.Errorf("room %s: %w", *item.RoomID, ErrNotFound)
		}
		if len(next.Rooms[ri].Items) >= next.Rooms[ri].MaxItems {
			return State{}, fmt.Errorf("room %s: %w", *item.RoomID, ErrRoomFull)
		}
		next.Rooms[ri].Items = append(next.Rooms[ri].Items, item.ID)
	}
	next.Items = append(next.Items, item)
	return next, nil
}

// AssignItemToRoom moves an installed item into another room.
func (e *Engine) AssignItemToRoom(s State, itemID, roomID string) (State, error) {
	next := s.Clone()
	ii := next.itemIndex(itemID)
	if ii < 0 {
		return State{}, fmt.Errorf("item %s: %w", itemID, ErrNotFound)
	}
	ri := next.roomIndex(roomID)
	if ri < 0 {
		return State{}, fmt.Errorf("room %s: %w", roomID, ErrNotFound)
	}

	item := &next.Items[ii]
	if item.RoomID != nil && *item.RoomID == roomID {
		return next, nil
	}
	if len(next.Rooms[ri].Items) >= next.Rooms[ri].MaxItems {
		return State{}, fmt.Errorf("room %s: %w", roomID, ErrRoomFull)
	}

	if item.RoomID != nil {
		if old := next.roomIndex(*item.RoomID); old >= 0 {
			next.Rooms[old].Items = removeString(next.Rooms[old].Items, itemID)
		}
	}
	next.Rooms[ri].Items = append(next.Rooms[ri].Items, itemID)
	id := roomID
	item.RoomID = &id
	item.InstallStatus = InstallInstalled
	return next, nil
}

// SpendMoney deducts amount, refusing to go below zero.
func (e *Engine) SpendMoney(s State, amount int) (State, error) {
	if amount <= 0 {
		return State{}, ErrInvalidAmount
	}
	if s.Money < amount {
		return State{}, ErrInsufficientFunds
	}
	next := s.Clone()
	next.Money -= amount
	return next, nil
}

// EarnMoney adds amount.
func (e *Engine) EarnMoney(s State, amount int) (State, error) {
	if amount <= 0 {
		return State{}, ErrInvalidAmount
	}
	next := s.Clone()
	next.Money += amount
	return next, nil
}

// PurchaseItem buys a catalog item into the inventory.
func (e *Engine) PurchaseItem(s State, catalogID string) (State, InventoryItem, error) {
	ci, ok := LookupCatalogItem(catalogID)
	if !ok {
		return State{}, InventoryItem{}, fmt.Errorf("catalog item %s: %w", catalogID, ErrNotFound)
	}
	if s.Money < ci.Price {
		return State{}, InventoryItem{}, fmt.Errorf("buy %s: %w", ci.Name, ErrInsufficientFunds)
	}

	inv := InventoryItem{
		ID:           ci.ID + "-" + e.newID(),
		CatalogID:    ci.ID,
		Name:         ci.Name,
		Type:         ci.Type,
		Attraction:   ci.Attraction,
		Price:        ci.Price,
		InstallTime:  ci.InstallTime,
		PurchaseDate: e.now(),
	}
	next := e.AddToInventory(s, inv)
	next.Money -= ci.Price
	return next, inv, nil
}

// AddToInventory appends an inventory item.
func (e *Engine) AddToInventory(s State, item InventoryItem) State {
	next := s.Clone()
	next.Inventory = append(next.Inventory, item)
	return next
}

// RemoveFromInventory drops an inventory item and any installation scheduled for it.
func (e *Engine) RemoveFromInventory(s State, id string) (State, error) {
	next := s.Clone()
	i := next.inventoryIndex(id)
	if i < 0 {
		return State{}, fmt.Errorf("inventory item %s: %w", id, ErrNotFound)
	}
	next.Inventory = append(next.Inventory[:i], next.Inventory[i+1:]...)

	slots := next.Schedule.Slots[:0]
	for _, sl := range next.Schedule.Slots {
		if sl.Activity == ActivityInstallItem && sl.ItemID == id {
			continue
		}
		slots = append(slots, sl)
	}
	next.Schedule.Slots = slots
	return next, nil
}

// ScheduleInstallation books an inventory item's installation into a room at a time slot.
func (e *Engine) ScheduleInstallation(s State, inventoryID, roomID, timeSlot string) (State, error) {
	i := s.inventoryIndex(inventoryID)
	if i < 0 {
		return State{}, fmt.Errorf("inventory item %s: %w", inventoryID, ErrNotFound)
	}
	inv := s.Inventory[i]

	for _, sl := range s.Schedule.Slots {
		if sl.Activity == ActivityInstallItem && sl.ItemID == inventoryID {
			return State{}, fmt.Errorf("inventory item %s: %w", inventoryID, ErrAlreadyScheduled)
		}
	}

	room, ok := s.Room(roomID)
	if !ok {
		return State{}, fmt.Errorf("room %s: %w", roomID, ErrNotFound)
	}
	if len(room.Items)+pendingInstalls(s.Schedule, roomID) >= room.MaxItems {
		return State{}, fmt.Errorf("room %s: %w", roomID, ErrRoomFull)
	}

	slot, err := e.freeSlot(s.Schedule, timeSlot)
	if err != nil {
		return State{}, err
	}
	if !slot.Fits(inv.InstallTime) {
		return State{}, fmt.Errorf("%s needs %dh in %s: %w", inv.Name, inv.InstallTime, timeSlot, ErrInstallTooLong)
	}

	next := s.Clone()
	next.Schedule.Slots = append(next.Schedule.Slots, ScheduleSlot{
		Time:        timeSlot,
		Activity:    ActivityInstallItem,
		RoomID:      roomID,
		ItemID:      inventoryID,
		Description: fmt.Sprintf("安裝 %s 到 %s", inv.Name, room.Name),
	})
	return next, nil
}

// AddToSchedule books an activity into a free time label.
func (e *Engine) AddToSchedule(s State, slot ScheduleSlot) (State, error) {
	if !slot.Activity.Valid() {
		return State{}, fmt.Errorf("activity %q: %w", slot.Activity, ErrUnknownKind)
	}

	switch slot.Activity {
	case ActivityInstallItem:
		return e.ScheduleInstallation(s, slot.ItemID, slot.RoomID, slot.Time)
	case ActivityCleaning:
		room, ok := s.Room(slot.RoomID)
		if !ok {
			return State{}, fmt.Errorf("room %q: %w", slot.RoomID, ErrNotFound)
		}
		if slot.Description == "" {
			slot.Description = fmt.Sprintf("清潔 %s", room.Name)
		}
	}

	if _, err := e.freeSlot(s.Schedule, slot.Time); err != nil {
		return State{}, err
	}

	next := s.Clone()
	next.Schedule.Slots = append(next.Schedule.Slots, slot)
	return next, nil
}

// RemoveFromSchedule frees a time label.
func (e *Engine) RemoveFromSchedule(s State, timeSlot string) (State, error) {
	next := s.Clone()
	for i, sl := range next.Schedule.Slots {
		if sl.Time == timeSlot {
			next.Schedule.Slots = append(next.Schedule.Slots[:i], next.Schedule.Slots[i+1:]...)
			return next, nil
		}
	}
	return State{}, fmt.Errorf("schedule slot %s: %w", timeSlot, ErrNotFound)
}

func (e *Engine) freeSlot(sched Schedule, timeSlot string) (parse.Slot, error) {
	if !IsTimeSlot(timeSlot) {
		return parse.Slot{}, fmt.Errorf("%q: %w", timeSlot, ErrInvalidSlot)
	}
	slot, err := parse.ParseSlot(timeSlot)
	if err != nil {
		return parse.Slot{}, fmt.Errorf("%v: %w", err, ErrInvalidSlot)
	}
	if _, taken := sched.Slot(timeSlot); taken {
		return parse.Slot{}, fmt.Errorf("%s: %w", timeSlot, ErrSlotOccupied)
	}
	return slot, nil
}

func pendingInstalls(sched Schedule, roomID string) int {
	n := 0
	for _, sl := range sched.Slots {
		if sl.Activity == ActivityInstallItem && sl.RoomID == roomID {
			n++
		}
	}
	return n
}

// AddBooking appends a booking as given.
func (e *Engine) AddBooking(s State, b Booking) State {
	next := s.Clone()
	next.Bookings = append(next.Bookings, b.clone())
	return next
}

// BookingPatch carries the booking fields to overwrite; nil fields are kept.
type BookingPatch struct {
	RoomID       *string
	Satisfaction *float64
	Revenue      *int
	Status       *BookingStatus
}

// UpdateBooking applies a patch to one booking.
func (e *Engine) UpdateBooking(s State, id string, patch BookingPatch) (State, error) {
	next := s.Clone()
	i := next.bookingIndex(id)
	if i < 0 {
		return State{}, fmt.Errorf("booking %s: %w", id, ErrNotFound)
	}
	b := &next.Bookings[i]
	if patch.RoomID != nil {
		b.RoomID = cloneString(patch.RoomID)
	}
	if patch.Satisfaction != nil {
		b.Satisfaction = *patch.Satisfaction
	}
	if patch.Revenue != nil {
		b.Revenue = *patch.Revenue
	}
	if patch.Status != nil {
		b.Status = *patch.Status
	}
	return next, nil
}

// AssignRoom confirms a pending booking of the current day into a room.
func (e *Engine) AssignRoom(s State, bookingID, roomID string) (State, error) {
	b, ok := s.Booking(bookingID)
	if !ok {
		return State{}, fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
	}
	if b.Status != BookingPending {
		return State{}, fmt.Errorf("booking %s is %s: %w", bookingID, b.Status, ErrInvalidStatus)
	}
	if b.Date != DayLabel(s.CurrentDay) {
		return State{}, fmt.Errorf("booking %s dated %s: %w", bookingID, b.Date, ErrBookingExpired)
	}
	room, ok := s.Room(roomID)
	if !ok {
		return State{}, fmt.Errorf("room %s: %w", roomID, ErrNotFound)
	}
	for _, other := range s.Bookings {
		if other.Status == BookingConfirmed && other.RoomID != nil && *other.RoomID == roomID &&
			other.Date == b.Date && other.TimeSlot == b.TimeSlot {
			return State{}, fmt.Errorf("room %s at %s: %w", room.Name, b.TimeSlot, ErrSlotOccupied)
		}
	}

	satisfaction := CalculateSatisfaction(b, room, s.Items)
	revenue := CalculateRevenue(b, satisfaction)
	status := BookingConfirmed
	return e.UpdateBooking(s, bookingID, BookingPatch{
		RoomID:       &roomID,
		Satisfaction: &satisfaction,
		Revenue:      &revenue,
		Status:       &status,
	})
}

// RecommendRoom picks the room whose capacity is closest to the party size
// among those that fit the party and still have a free item slot.
func RecommendRoom(s State, b Booking) (Room, bool) {
	var best Room
	bestGap := math.MaxInt
	for _, r := range s.Rooms {
		if r.Capacity < b.PeopleCount || len(r.Items) >= r.MaxItems {
			continue
		}
		if gap := r.Capacity - b.PeopleCount; gap < bestGap {
			best, bestGap = r, gap
		}
	}
	return best, bestGap != math.MaxInt
}

// GenerateBookings adds today's batch unless bookings for today already exist.
func (e *Engine) GenerateBookings(s State) (State, bool) {
	label := DayLabel(s.CurrentDay)
	for _, b := range s.Bookings {
		if b.Date == label {
			return s, false
		}
	}
	next := s.Clone()
	next.Bookings = append(next.Bookings, e.gen.GenerateDailyBookings(s.CurrentDay, s.Reputation, s.TotalAttraction())...)
	return next, true
}

// EndDay completes the day's confirmed bookings, settles the day, runs the
// schedule and opens the next day with fresh bookings.
func (e *Engine) EndDay(s State) (State, DailyStats) {
	next := s.Clone()
	label := DayLabel(next.CurrentDay)

	for i := range next.Bookings {
		b := &next.Bookings[i]
		if b.Status == BookingConfirmed && b.Date == label {
			b.Status = BookingCompleted
			if b.RoomID != nil {
				if ri := next.roomIndex(*b.RoomID); ri >= 0 {
					next.Rooms[ri].Cleanliness = max(0, next.Rooms[ri].Cleanliness-cleanlinessPerBooking)
				}
			}
		}
	}

	stats := CalculateDailySettlement(next)
	next.Money += stats.Profit
	next.Reputation = ReputationAfter(next.Reputation, stats.AvgSatisfaction)
	next.DailyStats = append(next.DailyStats, stats)

	e.runSchedule(&next)

	next.CurrentDay++
	next.Schedule = Schedule{Day: next.CurrentDay, Slots: []ScheduleSlot{}}
	next.Bookings = append(next.Bookings, e.gen.GenerateDailyBookings(next.CurrentDay, next.Reputation, next.TotalAttraction())...)
	return next, stats
}

func (e *Engine) runSchedule(s *State) {
	for _, sl := range s.Schedule.Slots {
		ri := s.roomIndex(sl.RoomID)
		if ri < 0 {
			continue
		}
		switch sl.Activity {
		case ActivityCleaning:
			s.Rooms[ri].Cleanliness = FullCleanliness
		case ActivityInstallItem:
			ii := s.inventoryIndex(sl.ItemID)
			if ii < 0 || len(s.Rooms[ri].Items) >= s.Rooms[ri].MaxItems {
				continue
			}
			inv := s.Inventory[ii]
			roomID := s.Rooms[ri].ID
			s.Items = append(s.Items, Item{
				ID:            inv.ID,
				CatalogID:     inv.CatalogID,
				Name:          inv.Name,
				Type:          inv.Type,
				Attraction:    inv.Attraction,
				Price:         inv.Price,
				RoomID:        &roomID,
				InstallStatus: InstallInstalled,
				InstallTime:   inv.InstallTime,
			})
			s.Rooms[ri].Items = append(s.Rooms[ri].Items, inv.ID)
			s.Inventory = append(s.Inventory[:ii], s.Inventory[ii+1:]...)
		}
	}
}

func removeString(list []string, v string) []string {
	out := list[:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
