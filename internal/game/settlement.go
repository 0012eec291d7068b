package game

// CalculateDailySettlement aggregates the current day's completed bookings
// and the rent of every room.
func CalculateDailySettlement(s State) DailyStats {
	label := DayLabel(s.CurrentDay)

	revenue, completed := 0, 0
	satisfaction := 0.0
	for _, b := range s.Bookings {
		if b.Status != BookingCompleted || b.Date != label {
			continue
		}
		revenue += b.Revenue
		satisfaction += b.Satisfaction
		completed++
	}

	expenses := 0
	for _, r := range s.Rooms {
		expenses += r.Rent
	}

	avg := 0.0
	if completed > 0 {
		avg = satisfaction / float64(completed)
	}

	return DailyStats{
		Day:               s.CurrentDay,
		Revenue:           revenue,
		Expenses:          expenses,
		Profit:            revenue - expenses,
		AvgSatisfaction:   avg,
		BookingsCompleted: completed,
	}
}

// ReputationAfter applies a day's average satisfaction to reputation.
func ReputationAfter(reputation, avgSatisfaction float64) float64 {
	return clamp(reputation+(avgSatisfaction-50)/10, 0, 100)
}
