package calendar

import (
	"fmt"
	"time"

	"github.com/allenshen-svg/fund-assistant/internal/model"
)

// searchLimit bounds the next/previous trading day search.
const searchLimit = 10

// DefaultHolidays are the exchange closures on weekdays for 2025 and 2026.
var DefaultHolidays = []string{
	"2025-01-01",
	"2025-01-28", "2025-01-29", "2025-01-30", "2025-01-31", "2025-02-03", "2025-02-04",
	"2025-04-04",
	"2025-05-01", "2025-05-02", "2025-05-05",
	"2025-06-02",
	"2025-10-01", "2025-10-02", "2025-10-03", "2025-10-06", "2025-10-07", "2025-10-08",
	"2026-01-01", "2026-01-02",
	"2026-02-16", "2026-02-17", "2026-02-18", "2026-02-19", "2026-02-20", "2026-02-23",
	"2026-04-06",
	"2026-05-01", "2026-05-04", "2026-05-05",
	"2026-06-19",
	"2026-09-25",
	"2026-10-01", "2026-10-02", "2026-10-05", "2026-10-06", "2026-10-07",
}

// Calendar decides which dates are trading days.
type Calendar struct {
	loc      *time.Location
	holidays map[string]struct{}
	workdays map[string]struct{}
}

// New builds a Calendar. Holidays close a weekday, workdays open a weekend day.
// Dates use the YYYY-MM-DD layout.
func New(holidays, workdays []string, loc *time.Location) (*Calendar, error) {
	if loc == nil {
		loc = ShanghaiLocation()
	}
	c := &Calendar{
		loc:      loc,
		holidays: make(map[string]struct{}, len(holidays)),
		workdays: make(map[string]struct{}, len(workdays)),
	}
	for _, d := range holidays {
		if _, err := time.Parse(model.DateLayout, d); err != nil {
			return nil, fmt.Errorf("invalid holiday %q: %w", d, err)
		}
		c.holidays[d] = struct{}{}
	}
	for _, d := range workdays {
		if _, err := time.Parse(model.DateLayout, d); err != nil {
			return nil, fmt.Errorf("invalid workday %q: %w", d, err)
		}
		c.workdays[d] = struct{}{}
	}
	return c, nil
}

// Default returns a Calendar with DefaultHolidays in Asia/Shanghai.
func Default() *Calendar {
	c, _ := New(DefaultHolidays, nil, nil)
	return c
}

// ShanghaiLocation loads Asia/Shanghai, falling back to a fixed UTC+8 zone.
func ShanghaiLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		return time.FixedZone("CST", 8*3600)
	}
	return loc
}

// Location returns the calendar's time zone.
func (c *Calendar) Location() *time.Location { return c.loc }

// Key formats t as a YYYY-MM-DD date in the calendar's zone.
func (c *Calendar) Key(t time.Time) string {
	return t.In(c.loc).Format(model.DateLayout)
}

// Parse reads a YYYY-MM-DD date as midnight in the calendar's zone.
func (c *Calendar) Parse(date string) (time.Time, error) {
	t, err := time.ParseInLocation(model.DateLayout, date, c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	return t, nil
}

// IsTradingDay reports whether the date of t is a trading day.
func (c *Calendar) IsTradingDay(t time.Time) bool {
	key := c.Key(t)
	if _, ok := c.holidays[key]; ok {
		return false
	}
	if _, ok := c.workdays[key]; ok {
		return true
	}
	wd := t.In(c.loc).Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// IsTradingDate is IsTradingDay for a date key.
func (c *Calendar) IsTradingDate(date string) (bool, error) {
	t, err := c.Parse(date)
	if err != nil {
		return false, err
	}
	return c.IsTradingDay(t), nil
}

// NextTradingDay returns the first trading day after t, searching up to 10 days.
func (c *Calendar) NextTradingDay(t time.Time) (time.Time, bool) {
	return c.step(t, 1)
}

// PrevTradingDay returns the last trading day before t, searching up to 10 days.
func (c *Calendar) PrevTradingDay(t time.Time) (time.Time, bool) {
	return c.step(t, -1)
}

func (c *Calendar) step(t time.Time, dir int) (time.Time, bool) {
	y, m, d := t.In(c.loc).Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, c.loc)
	for i := 0; i < searchLimit; i++ {
		day = day.AddDate(0, 0, dir)
		if c.IsTradingDay(day) {
			return day, true
		}
	}
	return time.Time{}, false
}

// NextTradingDate is NextTradingDay for a date key.
func (c *Calendar) NextTradingDate(date string) (string, bool, error) {
	t, err := c.Parse(date)
	if err != nil {
		return "", false, err
	}
	next, ok := c.NextTradingDay(t)
	if !ok {
		return "", false, nil
	}
	return c.Key(next), true, nil
}
