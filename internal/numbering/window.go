package numbering

import "time"

// Window is a half-open [Start, End) interval in UTC. A global window is
// unbounded and has zero Start and End.
type Window struct {
	Start     time.Time
	End       time.Time
	Unbounded bool
}

// GlobalWindow covers all time.
func GlobalWindow() Window {
	return Window{Unbounded: true}
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if w.Unbounded {
		return true
	}
	return !t.Before(w.Start) && t.Before(w.End)
}

// Key identifies the epoch for allocation locking.
func (w Window) Key() string {
	if w.Unbounded {
		return "global"
	}
	return w.Start.Format(time.RFC3339) + "/" + w.End.Format(time.RFC3339)
}

// DayWindow returns the 24-hour business day starting at startHour that
// contains now. Before today's boundary the epoch is yesterday's. Boundaries
// are wall-clock times in loc, so a day spanning a DST change is 23 or 25
// hours long.
func DayWindow(now time.Time, startHour int, loc *time.Location) Window {
	local := now.In(loc)
	start := at(local, 0, startHour, loc)
	if local.Before(start) {
		start = at(local, -1, startHour, loc)
	}
	end := at(start, 1, startHour, loc)
	return utcWindow(start, end)
}

// DaypartWindow returns the daypart containing now. The boundaries are
// checked from the latest (dinner) to the earliest (breakfast); before
// breakfast the window is the overnight stretch from yesterday's dinner.
func DaypartWindow(now time.Time, d Dayparts, loc *time.Location) Window {
	local := now.In(loc)
	breakfast := at(local, 0, d.Breakfast, loc)
	lunch := at(local, 0, d.Lunch, loc)
	dinner := at(local, 0, d.Dinner, loc)

	switch {
	case !local.Before(dinner):
		return utcWindow(dinner, at(local, 1, d.Breakfast, loc))
	case !local.Before(lunch):
		return utcWindow(lunch, dinner)
	case !local.Before(breakfast):
		return utcWindow(breakfast, lunch)
	default:
		return utcWindow(at(local, -1, d.Dinner, loc), breakfast)
	}
}

// at returns hour:00 on the calendar day of ref shifted by dayOffset, as wall
// time in loc. time.Date resolves the offset for that instant itself.
func at(ref time.Time, dayOffset, hour int, loc *time.Location) time.Time {
	y, m, d := ref.In(loc).Date()
	return time.Date(y, m, d+dayOffset, hour, 0, 0, 0, loc)
}

func utcWindow(start, end time.Time) Window {
	return Window{Start: start.UTC(), End: end.UTC()}
}
