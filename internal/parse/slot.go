package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var slotRe = regexp.MustCompile(`^\s*(\d{1,2}):(\d{2})\s*-\s*(\d{1,2}):(\d{2})\s*$`)

// Slot is a parsed time-slot label such as "22:30-02:30".
type Slot struct {
	Label string
	Start time.Duration // offset from midnight
	End   time.Duration // offset from midnight, may be smaller than Start
}

// Duration returns the length of the slot. A slot whose end is not after its
// start runs past midnight.
func (s Slot) Duration() time.Duration {
	if s.End > s.Start {
		return s.End - s.Start
	}
	return 24*time.Hour - s.Start + s.End
}

// Fits reports whether a job of the given number of hours fits in the slot.
func (s Slot) Fits(hours int) bool {
	return time.Duration(hours)*time.Hour <= s.Duration()
}

// ParseSlot parses an "HH:MM-HH:MM" label.
func ParseSlot(raw string) (Slot, error) {
	m := slotRe.FindStringSubmatch(raw)
	if m == nil {
		return Slot{}, fmt.Errorf("unable to parse time slot: %q", raw)
	}

	start, err := clock(m[1], m[2])
	if err != nil {
		return Slot{}, fmt.Errorf("time slot %q start: %w", raw, err)
	}
	end, err := clock(m[3], m[4])
	if err != nil {
		return Slot{}, fmt.Errorf("time slot %q end: %w", raw, err)
	}
	if start == end {
		return Slot{}, fmt.Errorf("time slot %q has zero length", raw)
	}

	return Slot{Label: strings.TrimSpace(raw), Start: start, End: end}, nil
}

func clock(hh, mm string) (time.Duration, error) {
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, err
	}
	if h > 23 || m > 59 {
		return 0, fmt.Errorf("clock %s:%s out of range", hh, mm)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, nil
}
