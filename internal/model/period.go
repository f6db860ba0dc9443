package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidPeriod is returned when a period expression cannot be parsed.
var ErrInvalidPeriod = errors.New("invalid budgeting period")

// Period is an inclusive date range used to filter imported transactions.
// Comparison happens at day granularity.
type Period interface {
	Start() time.Time
	End() time.Time
	Contains(date time.Time) bool
	String() string
}

// CustomPeriod is an arbitrary inclusive range of days.
type CustomPeriod struct {
	From time.Time
	To   time.Time
}

// Start returns the first day of the period.
func (p CustomPeriod) Start() time.Time { return dateOnly(p.From) }

// End returns the last day of the period.
func (p CustomPeriod) End() time.Time { return dateOnly(p.To) }

// Contains reports whether date falls within the period.
func (p CustomPeriod) Contains(date time.Time) bool { return within(p, date) }

func (p CustomPeriod) String() string { return describe(p) }

// LiteralMonth is a calendar month.
type LiteralMonth struct {
	Year  int
	Month time.Month
}

// Start returns the first day of the month.
func (p LiteralMonth) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last day of the month.
func (p LiteralMonth) End() time.Time {
	return p.Start().AddDate(0, 1, -1)
}

// Contains reports whether date falls within the month.
func (p LiteralMonth) Contains(date time.Time) bool { return within(p, date) }

func (p LiteralMonth) String() string { return describe(p) }

// PaydateMonth runs from the first Friday of the month through the Thursday
// before the first Friday of the following month.
type PaydateMonth struct {
	Year  int
	Month time.Month
}

// Start returns the first Friday of the month.
func (p PaydateMonth) Start() time.Time {
	return firstFriday(p.Year, p.Month)
}

// End returns the day before the next month's first Friday.
func (p PaydateMonth) End() time.Time {
	next := time.Date(p.Year, p.Month+1, 1, 0, 0, 0, 0, time.UTC)
	return firstFriday(next.Year(), next.Month()).AddDate(0, 0, -1)
}

// Contains reports whether date falls within the pay period.
func (p PaydateMonth) Contains(date time.Time) bool { return within(p, date) }

func (p PaydateMonth) String() string { return describe(p) }

// YearlyPeriod is a calendar year.
type YearlyPeriod struct {
	Year int
}

// Start returns January 1st.
func (p YearlyPeriod) Start() time.Time {
	return time.Date(p.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// End returns December 31st.
func (p YearlyPeriod) End() time.Time {
	return time.Date(p.Year, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// Contains reports whether date falls within the year.
func (p YearlyPeriod) Contains(date time.Time) bool { return within(p, date) }

func (p YearlyPeriod) String() string { return describe(p) }

// ParsePeriod parses a period expression:
//
//	2024                   calendar year
//	2024-03                calendar month
//	paydate:2024-03        pay-date month
//	2024-01-05..2024-02-10 custom range
func ParsePeriod(expr string) (Period, error) {
	expr = strings.TrimSpace(expr)

	if from, to, ok := strings.Cut(expr, ".."); ok {
		start, err := time.Parse(DateLayout, strings.TrimSpace(from))
		if err != nil {
			return nil, fmt.Errorf("%w: start date %q", ErrInvalidPeriod, from)
		}
		end, err := time.Parse(DateLayout, strings.TrimSpace(to))
		if err != nil {
			return nil, fmt.Errorf("%w: end date %q", ErrInvalidPeriod, to)
		}
		if end.Before(start) {
			return nil, fmt.Errorf("%w: end %s is before start %s", ErrInvalidPeriod, to, from)
		}
		return CustomPeriod{From: start, To: end}, nil
	}

	if month, ok := strings.CutPrefix(expr, "paydate:"); ok {
		m, err := time.Parse("2006-01", month)
		if err != nil {
			return nil, fmt.Errorf("%w: month %q", ErrInvalidPeriod, month)
		}
		return PaydateMonth{Year: m.Year(), Month: m.Month()}, nil
	}

	if m, err := time.Parse("2006-01", expr); err == nil {
		return LiteralMonth{Year: m.Year(), Month: m.Month()}, nil
	}

	if len(expr) == 4 {
		if year, err := strconv.Atoi(expr); err == nil {
			return YearlyPeriod{Year: year}, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, expr)
}

func firstFriday(year int, month time.Month) time.Time {
	day := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(time.Friday) - int(day.Weekday()) + 7) % 7
	return day.AddDate(0, 0, offset)
}

func within(p Period, date time.Time) bool {
	d := dateOnly(date)
	return !d.Before(p.Start()) && !d.After(p.End())
}

func describe(p Period) string {
	return p.Start().Format(DateLayout) + " - " + p.End().Format(DateLayout)
}

// dateOnly drops the clock and zone, keeping the calendar day as written.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
