package numbering

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Mode selects how the numbering epoch is scoped.
type Mode string

const (
	ModeGlobal      Mode = "Global"
	ModeDaily       Mode = "Daily"
	ModeBusinessDay Mode = "BusinessDay"
	ModeDaypart     Mode = "Daypart"
)

// Modes lists every supported mode.
var Modes = []Mode{ModeGlobal, ModeDaily, ModeBusinessDay, ModeDaypart}

var (
	ErrInvalidMode     = errors.New("invalid numbering mode")
	ErrInvalidHour     = errors.New("hour must be between 0 and 23")
	ErrInvalidDayparts = errors.New("daypart hours must satisfy breakfast < lunch < dinner")
)

// ParseMode accepts a mode name case-insensitively.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if strings.EqualFold(string(m), strings.TrimSpace(s)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// ValidateHour checks an hour-of-day value.
func ValidateHour(h int) error {
	if h < 0 || h > 23 {
		return fmt.Errorf("%w: %d", ErrInvalidHour, h)
	}
	return nil
}

// Dayparts holds the three daypart start hours.
type Dayparts struct {
	Breakfast int
	Lunch     int
	Dinner    int
}

// DefaultDayparts returns 06:00 / 11:00 / 16:00.
func DefaultDayparts() Dayparts {
	return Dayparts{Breakfast: 6, Lunch: 11, Dinner: 16}
}

// Validate checks ranges and ordering
func (d Dayparts) Validate() error {
	for _, h := range []int{d.Breakfast, d.Lunch, d.Dinner} {
		if err := ValidateHour(h); err != nil {
			return err
		}
	}
	if !(d.Breakfast < d.Lunch && d.Lunch < d.Dinner) {
		return fmt.Errorf("%w: got %d/%d/%d", ErrInvalidDayparts, d.Breakfast, d.Lunch, d.Dinner)
	}
	return nil
}

// Policy is the resolved numbering configuration.
type Policy struct {
	Mode                 Mode
	DailyStartHour       int
	BusinessDayStartHour int
	Dayparts             Dayparts

	// Location is the wall clock epoch boundaries are computed in; nil means time.Local.
	Location *time.Location
}

// DefaultPolicy is daily numbering from local midnight.
func DefaultPolicy() Policy {
	return Policy{
		Mode:     ModeDaily,
		Dayparts: DefaultDayparts(),
		Location: time.Local,
	}
}

// Validate checks the hours used by the selected mode
func (p Policy) Validate() error {
	switch p.Mode {
	case ModeGlobal:
		return nil
	case ModeDaily:
		return ValidateHour(p.DailyStartHour)
	case ModeBusinessDay:
		return ValidateHour(p.BusinessDayStartHour)
	case ModeDaypart:
		return p.Dayparts.Validate()
	}
	return fmt.Errorf("%w: %q", ErrInvalidMode, p.Mode)
}

// Window returns the epoch containing now.
func (p Policy) Window(now time.Time) (Window, error) {
	if err := p.Validate(); err != nil {
		return Window{}, err
	}
	loc := p.Location
	if loc == nil {
		loc = time.Local
	}
	switch p.Mode {
	case ModeDaily:
		return DayWindow(now, p.DailyStartHour, loc), nil
	case ModeBusinessDay:
		return DayWindow(now, p.BusinessDayStartHour, loc), nil
	case ModeDaypart:
		return DaypartWindow(now, p.Dayparts, loc), nil
	}
	return GlobalWindow(), nil
}

// Next returns the number following the highest one seen in the epoch.
func Next(maxInEpoch int) int {
	if maxInEpoch < 0 {
		maxInEpoch = 0
	}
	return maxInEpoch + 1
}
