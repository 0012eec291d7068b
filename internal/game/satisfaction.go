package game

import (
	"math"
	"strings"
)

const (
	baseSatisfaction  = 50.0
	capacityBonus     = 20.0
	requirementWeight = 30.0
	attractionCap     = 20.0
	revenuePerPerson  = 50
)

// CalculateSatisfaction scores how well room and its installed items suit the
// booking. The result is clamped to [0,100].
func CalculateSatisfaction(booking Booking, room Room, items []Item) float64 {
	score := baseSatisfaction

	if room.Capacity >= booking.PeopleCount {
		score += capacityBonus
	} else {
		score -= capacityBonus
	}

	roomItems := itemsInRoom(room, items)

	if len(booking.Requirements) > 0 {
		matched := 0
		for _, req := range booking.Requirements {
			if anyItemMatches(roomItems, req) {
				matched++
			}
		}
		score += float64(matched) / float64(len(booking.Requirements)) * requirementWeight
	}

	attraction := 0
	for _, it := range roomItems {
		attraction += it.Attraction
	}
	score += math.Min(float64(attraction)/10, attractionCap)

	return clamp(score, 0, 100)
}

// CalculateRevenue is floor(peopleCount * 50 * satisfaction / 100).
func CalculateRevenue(booking Booking, satisfaction float64) int {
	base := float64(booking.PeopleCount * revenuePerPerson)
	return int(math.Floor(base * satisfaction / 100))
}

func itemsInRoom(room Room, items []Item) []Item {
	ids := make(map[string]struct{}, len(room.Items))
	for _, id := range room.Items {
		ids[id] = struct{}{}
	}
	var out []Item
	for _, it := range items {
		if _, ok := ids[it.ID]; ok {
			out = append(out, it)
		}
	}
	return out
}

// Tags match case-sensitively on item type or name.
func anyItemMatches(items []Item, tag string) bool {
	for _, it := range items {
		if strings.Contains(string(it.Type), tag) || strings.Contains(it.Name, tag) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
