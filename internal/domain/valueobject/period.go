package valueobject

import "time"

// Period is an inclusive date window. Start is the first instant of the
// first day and End is the last instant of the last day, both in UTC.
type Period struct {
	Start time.Time
	End   time.Time
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the Sunday that starts the week containing t.
func WeekStart(t time.Time) time.Time {
	day := StartOfDay(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// PreviousWeek returns the last full Sunday to Saturday week before now.
func PreviousWeek(now time.Time) Period {
	thisSunday := WeekStart(now)
	start := thisSunday.AddDate(0, 0, -7)
	return Period{
		Start: start,
		End:   thisSunday.Add(-time.Nanosecond),
	}
}

// CurrentWeek returns the window from this week's Sunday through now.
func CurrentWeek(now time.Time) Period {
	return Period{
		Start: WeekStart(now),
		End:   now.UTC(),
	}
}

// MonthStart returns the first instant of the calendar month containing t.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// Previous returns the week immediately before p.
func (p Period) Previous() Period {
	return Period{
		Start: p.Start.AddDate(0, 0, -7),
		End:   p.Start.Add(-time.Nanosecond),
	}
}

// DateRange returns the first and last calendar day of the period, as used by
// date-typed storage columns.
func (p Period) DateRange() (time.Time, time.Time) {
	return StartOfDay(p.Start), StartOfDay(p.End)
}
