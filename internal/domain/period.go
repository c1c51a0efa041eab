package domain

import (
	"fmt"
	"time"
)

// Period identifies one payroll month. It is always an explicit parameter;
// the engine holds no "current period" state.
type Period struct {
	Month int `json:"month" validate:"required,gte=1,lte=12"`
	Year  int `json:"year" validate:"required,gte=2000"`
}

func NewPeriod(month, year int) Period {
	return Period{Month: month, Year: year}
}

func (p Period) Valid() bool {
	return p.Month >= 1 && p.Month <= 12 && p.Year >= 2000
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Contains reports whether t falls inside the period's calendar month.
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && int(t.Month()) == p.Month
}

// Start returns midnight on the first day of the period in UTC.
func (p Period) Start() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

// End returns midnight on the first day of the following period.
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

// Next returns the following payroll month, rolling over at year end.
func (p Period) Next() Period {
	if p.Month == 12 {
		return Period{Month: 1, Year: p.Year + 1}
	}
	return Period{Month: p.Month + 1, Year: p.Year}
}
