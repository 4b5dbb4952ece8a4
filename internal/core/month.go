package core

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Month identifies a calendar month. It is the partition key for bills,
// fund allocations and income attribution, serialized as "MM/YYYY" with a
// zero-padded month. Months are never stored as dates.
type Month struct {
	Year int
	Mon  time.Month
}

var ErrInvalidMonthFormat = errors.New("invalid month format, expected MM/YYYY")

// NewMonth creates a Month from a year and month number.
func NewMonth(year int, mon time.Month) Month {
	return Month{Year: year, Mon: mon}
}

// MonthOf returns the calendar month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Mon: t.Month()}
}

// ParseMonth parses the canonical "MM/YYYY" form. The month must be
// zero-padded and in 01-12, the year exactly four digits.
func ParseMonth(s string) (Month, error) {
	if len(s) != 7 || s[2] != '/' {
		return Month{}, ErrInvalidMonthFormat
	}
	for i, r := range s {
		if i == 2 {
			continue
		}
		if r < '0' || r > '9' {
			return Month{}, ErrInvalidMonthFormat
		}
	}
	mm, err := strconv.Atoi(s[:2])
	if err != nil || mm < 1 || mm > 12 {
		return Month{}, ErrInvalidMonthFormat
	}
	yyyy, err := strconv.Atoi(s[3:])
	if err != nil || yyyy < 1 {
		return Month{}, ErrInvalidMonthFormat
	}
	return Month{Year: yyyy, Mon: time.Month(mm)}, nil
}

// String returns the canonical "MM/YYYY" projection.
func (m Month) String() string {
	return fmt.Sprintf("%02d/%04d", int(m.Mon), m.Year)
}

// IsZero reports whether m is the zero value (no month assigned).
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Mon == 0
}

func (m Month) Validate() error {
	if m.Mon < time.January || m.Mon > time.December || m.Year < 1 {
		return ErrInvalidMonthFormat
	}
	return nil
}

// Prev returns the previous calendar month, rolling the year at January.
func (m Month) Prev() Month {
	if m.Mon == time.January {
		return Month{Year: m.Year - 1, Mon: time.December}
	}
	return Month{Year: m.Year, Mon: m.Mon - 1}
}

// Next returns the following calendar month, rolling the year at December.
func (m Month) Next() Month {
	if m.Mon == time.December {
		return Month{Year: m.Year + 1, Mon: time.January}
	}
	return Month{Year: m.Year, Mon: m.Mon + 1}
}

// Start returns the first day of the month at midnight UTC.
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Mon, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the first day of the following month. Together with Start it
// forms the half-open interval [Start, End) used by every date-range query.
func (m Month) End() time.Time {
	return m.Next().Start()
}

// Contains reports whether t falls inside the month's half-open interval.
func (m Month) Contains(t time.Time) bool {
	return !t.Before(m.Start()) && t.Before(m.End())
}

// HasEnded reports whether the month is fully in the past relative to now.
// A month still in progress cannot be sealed.
func (m Month) HasEnded(now time.Time) bool {
	return !m.End().After(now)
}
