package core

import (
	"errors"
	"fmt"
	"time"
)

// Date is a calendar date with no time component. All comparisons in the
// projection engine happen at day granularity.
type Date struct {
	time.Time
}

// NewDate builds a Date from year, month and day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today truncates a wall-clock time to its calendar date.
func Today(now time.Time) Date {
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate accepts "2006-01-02" and the Brazilian "02/01/2006". Unparseable
// strings return an error so callers can drop the row instead of guessing.
func ParseDate(s string) (Date, error) {
	for _, layout := range []string{"2006-01-02", "02/01/2006", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return Today(t), nil
		}
	}
	return Date{}, fmt.Errorf("unparseable date: %q", s)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// MonthOf returns the month the date falls in.
func (d Date) MonthOf() Month {
	return Month{Year: d.Time.Year(), Month: int(d.Time.Month())}
}

// AddDays returns the date shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// Before reports whether d falls on an earlier day than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// After reports whether d falls on a later day than other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// MarshalJSON writes the date as "YYYY-MM-DD" instead of RFC3339.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("unparseable date: %s", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Month identifies a calendar month ("YYYY-MM" on the wire).
type Month struct {
	Year  int
	Month int // 1-12
}

// ParseMonth parses a "YYYY-MM" key.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("unparseable month: %q", s)
	}
	return Month{Year: t.Year(), Month: int(t.Month())}, nil
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, m.Month)
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	return time.Date(m.Year, time.Month(m.Month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Next returns the following calendar month.
func (m Month) Next() Month {
	if m.Month == 12 {
		return Month{Year: m.Year + 1, Month: 1}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

// Contains reports whether the date falls inside the month.
func (m Month) Contains(d Date) bool {
	return d.MonthOf() == m
}

// MarshalJSON writes the month as its "YYYY-MM" key.
func (m Month) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

func (m *Month) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("unparseable month: %s", s)
	}
	parsed, err := ParseMonth(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
