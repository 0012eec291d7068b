package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseSlot(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expected  Slot
		duration  time.Duration
		expectErr bool
	}{
		{
			name:     "Morning block",
			raw:      "09:00-13:00",
			expected: Slot{Label: "09:00-13:00", Start: 9 * time.Hour, End: 13 * time.Hour},
			duration: 4 * time.Hour,
		},
		{
			name:     "Half hour start",
			raw:      "13:30-17:30",
			expected: Slot{Label: "13:30-17:30", Start: 13*time.Hour + 30*time.Minute, End: 17*time.Hour + 30*time.Minute},
			duration: 4 * time.Hour,
		},
		{
			name:     "Past midnight",
			raw:      "22:30-02:30",
			expected: Slot{Label: "22:30-02:30", Start: 22*time.Hour + 30*time.Minute, End: 2*time.Hour + 30*time.Minute},
			duration: 4 * time.Hour,
		},
		{
			name:     "Spaces around dash",
			raw:      " 9:00 - 10:00 ",
			expected: Slot{Label: "9:00 - 10:00", Start: 9 * time.Hour, End: 10 * time.Hour},
			duration: time.Hour,
		},
		{
			name:      "Garbage",
			raw:       "morning",
			expectErr: true,
		},
		{
			name:      "Hour out of range",
			raw:       "25:00-26:00",
			expectErr: true,
		},
		{
			name:      "Zero length",
			raw:       "10:00-10:00",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := ParseSlot(tc.raw)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, parsed)
			assert.Equal(t, tc.duration, parsed.Duration())
		})
	}
}

func TestSlotFits(t *testing.T) {
	slot, err := ParseSlot("18:00-22:00")
	assert.NoError(t, err)

	assert.True(t, slot.Fits(1))
	assert.True(t, slot.Fits(4))
	assert.False(t, slot.Fits(5))
}
