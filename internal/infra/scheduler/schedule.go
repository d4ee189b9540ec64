package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const anyValue = -1

var weekdays = map[string]time.Weekday{
	"SUN": time.Sunday,
	"MON": time.Monday,
	"TUE": time.Tuesday,
	"WED": time.Wednesday,
	"THU": time.Thursday,
	"FRI": time.Friday,
	"SAT": time.Saturday,
}

// Slot is one wall-clock match in UTC. Weekday and Hour may be anyValue.
type Slot struct {
	Weekday int
	Hour    int
	Minute  int
}

// String returns the slot in the format it was parsed from.
func (s Slot) String() string {
	hour := "*"
	if s.Hour != anyValue {
		hour = fmt.Sprintf("%02d", s.Hour)
	}
	out := fmt.Sprintf("%s:%02d", hour, s.Minute)
	if s.Weekday != anyValue {
		out = strings.ToUpper(time.Weekday(s.Weekday).String()[:3]) + " " + out
	}
	return out
}

func (s Slot) matches(t time.Time) bool {
	if s.Weekday != anyValue && int(t.Weekday()) != s.Weekday {
		return false
	}
	if s.Hour != anyValue && t.Hour() != s.Hour {
		return false
	}
	return t.Minute() == s.Minute
}

// Schedule is a set of slots.
type Schedule []Slot

// ParseSchedule parses a comma-separated list of "[DAY ]HH:MM" entries where
// DAY is a three-letter weekday and HH may be "*" for every hour. Examples:
// "SUN 06:00", "06:00,18:00", "*:15".
func ParseSchedule(spec string) (Schedule, error) {
	var out Schedule
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		slot, err := parseSlot(part)
		if err != nil {
			return nil, fmt.Errorf("invalid schedule %q: %w", part, err)
		}
		out = append(out, slot)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty schedule")
	}
	return out, nil
}

func parseSlot(s string) (Slot, error) {
	slot := Slot{Weekday: anyValue, Hour: anyValue}

	fields := strings.Fields(s)
	switch len(fields) {
	case 1:
	case 2:
		day, ok := weekdays[strings.ToUpper(fields[0])]
		if !ok {
			return Slot{}, fmt.Errorf("unknown weekday %q", fields[0])
		}
		slot.Weekday = int(day)
	default:
		return Slot{}, fmt.Errorf("expected [DAY ]HH:MM")
	}

	hh, mm, ok := strings.Cut(fields[len(fields)-1], ":")
	if !ok {
		return Slot{}, fmt.Errorf("expected HH:MM")
	}
	if hh != "*" {
		hour, err := strconv.Atoi(hh)
		if err != nil || hour < 0 || hour > 23 {
			return Slot{}, fmt.Errorf("invalid hour %q (must be 0-23 or *)", hh)
		}
		slot.Hour = hour
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return Slot{}, fmt.Errorf("invalid minute %q (must be 0-59)", mm)
	}
	slot.Minute = minute
	return slot, nil
}

// Due reports whether t falls in one of the schedule's minutes.
func (s Schedule) Due(t time.Time) bool {
	t = t.UTC()
	for _, slot := range s {
		if slot.matches(t) {
			return true
		}
	}
	return false
}

// Next returns the first due minute strictly after t.
func (s Schedule) Next(t time.Time) time.Time {
	candidate := t.UTC().Truncate(time.Minute).Add(time.Minute)
	for i := 0; i < 7*24*60; i++ {
		if s.Due(candidate) {
			return candidate
		}
		candidate = candidate.Add(time.Minute)
	}
	return time.Time{}
}

func (s Schedule) String() string {
	parts := make([]string, len(s))
	for i, slot := range s {
		parts[i] = slot.String()
	}
	return strings.Join(parts, ",")
}
