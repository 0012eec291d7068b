package game

import (
	"fmt"
	"math/rand/v2"
)

const (
	baseBookings  = 3
	maxBookings   = 8
	minPartySize  = 2
	maxPartySize  = 16
	repPerBooking = 20
)

// BookingCount is the number of bookings generated for a day at the given
// reputation: min(3 + floor(reputation/20), 8).
func BookingCount(reputation float64) int {
	n := baseBookings + int(clamp(reputation, 0, 100))/repPerBooking
	if n > maxBookings {
		return maxBookings
	}
	return n
}

// Generator produces customer bookings from an injected random source.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a generator drawing from rng.
func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// NewSeededGenerator returns a generator with a deterministic PCG source.
func NewSeededGenerator(seed uint64) *Generator {
	return NewGenerator(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// GenerateDailyBookings returns the pending bookings of a day. The total
// attraction is accepted for callers that track it; the count depends on
// reputation only.
func (g *Generator) GenerateDailyBookings(day int, reputation float64, totalAttraction int) []Booking {
	_ = totalAttraction

	count := BookingCount(reputation)
	bookings := make([]Booking, 0, count)
	for i := 0; i < count; i++ {
		ct := CustomerTypes[g.rng.IntN(len(CustomerTypes))]
		req := ct.Requirements()
		bookings = append(bookings, Booking{
			ID:            fmt.Sprintf("booking-%d-%d", day, i),
			CustomerName:  fmt.Sprintf("客戶 %d", i+1),
			CustomerType:  ct,
			PeopleCount:   minPartySize + g.rng.IntN(maxPartySize-minPartySize+1),
			Requirements:  req.All(),
			RequiredItems: append([]string{}, req.Required...),
			WantedItems:   append([]string{}, req.Wanted...),
			TimeSlot:      TimeSlots[g.rng.IntN(len(TimeSlots))],
			Date:          DayLabel(day),
			Status:        BookingPending,
		})
	}
	return bookings
}
