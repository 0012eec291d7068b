package game

import (
	"fmt"
	"time"
)

// BookingStatus is the lifecycle position of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
)

// InstallStatus of an item that has left the inventory.
type InstallStatus string

const InstallInstalled InstallStatus = "installed"

const (
	StartingMoney      = 10000
	StartingReputation = 50.0
	FullCleanliness    = 100
)

// Room is a rented party room.
type Room struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Size        RoomSize `json:"size"`
	Capacity    int      `json:"capacity"`
	MaxItems    int      `json:"maxItems"`
	Rent        int      `json:"rent"`
	Items       []string `json:"items"`
	Cleanliness int      `json:"cleanliness"`
}

// Item is an installed piece of equipment.
type Item struct {
	ID            string        `json:"id"`
	CatalogID     string        `json:"catalogId"`
	Name          string        `json:"name"`
	Type          ItemType      `json:"type"`
	Attraction    int           `json:"attraction"`
	Price         int           `json:"price"`
	RoomID        *string       `json:"roomId"`
	InstallStatus InstallStatus `json:"installStatus"`
	InstallTime   int           `json:"installTime"`
}

// InventoryItem is a purchased item waiting to be installed.
type InventoryItem struct {
	ID           string    `json:"id"`
	CatalogID    string    `json:"catalogId"`
	Name         string    `json:"name"`
	Type         ItemType  `json:"type"`
	Attraction   int       `json:"attraction"`
	Price        int       `json:"price"`
	InstallTime  int       `json:"installTime"`
	PurchaseDate time.Time `json:"purchaseDate"`
}

// Booking is a customer request for a room in a time slot.
type Booking struct {
	ID            string        `json:"id"`
	CustomerName  string        `json:"customerName"`
	CustomerType  CustomerType  `json:"customerType"`
	PeopleCount   int           `json:"peopleCount"`
	Requirements  []string      `json:"requirements"`
	RequiredItems []string      `json:"requiredItems"`
	WantedItems   []string      `json:"wantedItems"`
	RoomID        *string       `json:"roomId"`
	TimeSlot      string        `json:"timeSlot"`
	Date          string        `json:"date"`
	Satisfaction  float64       `json:"satisfaction"`
	Revenue       int           `json:"revenue"`
	Status        BookingStatus `json:"status"`
}

// ScheduleSlot is one activity booked into a time label.
type ScheduleSlot struct {
	Time        string   `json:"time"`
	Activity    Activity `json:"activity"`
	RoomID      string   `json:"roomId,omitempty"`
	ItemID      string   `json:"itemId,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Schedule holds the activities of one day.
type Schedule struct {
	Day   int            `json:"day"`
	Slots []ScheduleSlot `json:"slots"`
}

// Slot returns the slot occupying the time label, if any.
func (s Schedule) Slot(time string) (ScheduleSlot, bool) {
	for _, sl := range s.Slots {
		if sl.Time == time {
			return sl, true
		}
	}
	return ScheduleSlot{}, false
}

// DailyStats is the settlement result of one day.
type DailyStats struct {
	Day               int     `json:"day"`
	Revenue           int     `json:"revenue"`
	Expenses          int     `json:"expenses"`
	Profit            int     `json:"profit"`
	AvgSatisfaction   float64 `json:"avgSatisfaction"`
	BookingsCompleted int     `json:"bookingsCompleted"`
}

// State is the whole game of one player. Values are treated as immutable
// snapshots: transitions return a fresh copy.
type State struct {
	UserID     string          `json:"userId"`
	CurrentDay int             `json:"currentDay"`
	Money      int             `json:"money"`
	Reputation float64         `json:"reputation"`
	Rooms      []Room          `json:"rooms"`
	Items      []Item          `json:"items"`
	Bookings   []Booking       `json:"bookings"`
	DailyStats []DailyStats    `json:"dailyStats"`
	Inventory  []InventoryItem `json:"inventory"`
	Schedule   Schedule        `json:"schedule"`
}

// DayLabel formats the date label bookings carry for a day.
func DayLabel(day int) string {
	return fmt.Sprintf("Day %d", day)
}

// NewState returns the seeded state of a first login.
func NewState(userID string) State {
	spec, _ := RoomSmall.Spec()
	return State{
		UserID:     userID,
		CurrentDay: 1,
		Money:      StartingMoney,
		Reputation: StartingReputation,
		Rooms: []Room{{
			ID:          "room-1",
			Name:        "房間 1",
			Size:        RoomSmall,
			Capacity:    spec.Capacity,
			MaxItems:    spec.MaxItems,
			Rent:        spec.Rent,
			Items:       []string{},
			Cleanliness: FullCleanliness,
		}},
		Items:      []Item{},
		Bookings:   []Booking{},
		DailyStats: []DailyStats{},
		Inventory:  []InventoryItem{},
		Schedule:   Schedule{Day: 1, Slots: []ScheduleSlot{}},
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.Rooms = make([]Room, len(s.Rooms))
	for i, r := range s.Rooms {
		r.Items = append([]string{}, r.Items...)
		out.Rooms[i] = r
	}
	out.Items = make([]Item, len(s.Items))
	for i, it := range s.Items {
		it.RoomID = cloneString(it.RoomID)
		out.Items[i] = it
	}
	out.Bookings = make([]Booking, len(s.Bookings))
	for i, b := range s.Bookings {
		out.Bookings[i] = b.clone()
	}
	out.DailyStats = append([]DailyStats{}, s.DailyStats...)
	out.Inventory = append([]InventoryItem{}, s.Inventory...)
	out.Schedule.Slots = append([]ScheduleSlot{}, s.Schedule.Slots...)
	return out
}

func (b Booking) clone() Booking {
	b.Requirements = append([]string{}, b.Requirements...)
	b.RequiredItems = append([]string{}, b.RequiredItems...)
	b.WantedItems = append([]string{}, b.WantedItems...)
	b.RoomID = cloneString(b.RoomID)
	return b
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (s *State) roomIndex(id string) int {
	for i := range s.Rooms {
		if s.Rooms[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *State) itemIndex(id string) int {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *State) bookingIndex(id string) int {
	for i := range s.Bookings {
		if s.Bookings[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *State) inventoryIndex(id string) int {
	for i := range s.Inventory {
		if s.Inventory[i].ID == id {
			return i
		}
	}
	return -1
}

// Room returns the room with the given id.
func (s State) Room(id string) (Room, bool) {
	if i := s.roomIndex(id); i >= 0 {
		return s.Rooms[i], true
	}
	return Room{}, false
}

// Booking returns the booking with the given id.
func (s State) Booking(id string) (Booking, bool) {
	if i := s.bookingIndex(id); i >= 0 {
		return s.Bookings[i], true
	}
	return Booking{}, false
}

// TotalAttraction sums the attraction of every item placed in a room.
func (s State) TotalAttraction() int {
	total := 0
	for _, it := range s.Items {
		if it.RoomID != nil {
			total += it.Attraction
		}
	}
	return total
}
