package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Day truncates t to its calendar day at UTC midnight. The wall-clock date
// is kept, whatever the location of t.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// DateRange is an inclusive span of calendar days.
type DateRange struct {
	From time.Time
	To   time.Time
}

func NewDateRange(from, to time.Time) DateRange {
	return DateRange{From: Day(from), To: Day(to)}
}

func MonthRange(year int, month time.Month) DateRange {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return DateRange{From: first, To: first.AddDate(0, 1, -1)}
}

// ParseMonth accepts YYYY-MM.
func ParseMonth(s string) (DateRange, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return DateRange{}, fmt.Errorf("parse month %q: %w", s, err)
	}
	return MonthRange(t.Year(), t.Month()), nil
}

func (r DateRange) Valid() bool {
	return !r.From.IsZero() && !r.To.IsZero() && !r.From.After(r.To)
}

func (r DateRange) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(r.From) && !d.After(r.To)
}

// Days is the number of calendar days in the range, zero when invalid.
func (r DateRange) Days() int {
	if !r.Valid() {
		return 0
	}
	return int(r.To.Sub(r.From).Hours()/24) + 1
}

// Date is a calendar day. It is stored as a DATE column and travels as
// YYYY-MM-DD on the wire.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	return Date{Time: Day(t)}
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*d = Date{}
		return nil
	}
	t, err := ParseDay(strings.Trim(s, `"`))
	if err != nil {
		return err
	}
	*d = Date{Time: t}
	return nil
}

func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = NewDate(v)
		return nil
	case []byte:
		return d.scanString(string(v))
	case string:
		return d.scanString(v)
	case nil:
		*d = Date{}
		return nil
	}
	return fmt.Errorf("cannot scan %T into Date", src)
}

func (d *Date) scanString(s string) error {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	t, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = Date{Time: t}
	return nil
}

func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}
