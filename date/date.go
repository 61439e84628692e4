// Package date provides a day-granularity Date, used for option expiries and
// reporting ranges where a time of day is meaningless.
package date

import (
	"encoding/json"
	"fmt"
	"time"
)

const readDateFormat = "2006-1-2" // Permissive read date format (allows single-digit month/day).

// DateFormat is the format used to represent dates as strings in ISO-8601 format.
const DateFormat = "2006-01-02" // write date format

const Day = 24 * time.Hour

// Date represents a date with day-level granularity.
type Date struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Date for the given year, month, and day.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.Time().Date()
	return d
}

// FromTime returns the day of t, in t's location.
func FromTime(t time.Time) Date { return New(t.Date()) }

// Today returns the current date.
func Today() Date { return FromTime(time.Now()) }

// Time returns a canonical representation of that day (at midnight UTC).
func (d Date) Time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

func (d Date) Year() int                 { return d.y }
func (d Date) Month() time.Month         { return d.m }
func (d Date) Day() int                  { return d.d }
func (d Date) Weekday() time.Weekday     { return d.Time().Weekday() }
func (d Date) ISOWeek() (year, week int) { return d.Time().ISOWeek() }
func (d Date) IsZero() bool              { return d == Date{} }

// Before reports whether the day d is before x.
func (d Date) Before(x Date) bool { return d.Time().Before(x.Time()) }

// After reports whether the day d is after x.
func (d Date) After(x Date) bool { return d.Time().After(x.Time()) }

// Add returns a new Date with the given number of days added.
func (d Date) Add(days int) Date { return New(d.y, d.m, d.d+days) }

// Format formats the day using a time layout.
func (d Date) Format(layout string) string { return d.Time().Format(layout) }

// String format the date in its standard format.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateFormat)
}

// StartOf returns the first day of the period containing d. Weeks start on Monday.
func (d Date) StartOf(p Period) Date {
	switch p {
	case Weekly:
		offset := (int(d.Weekday()) + 6) % 7
		return d.Add(-offset)
	case Monthly:
		return New(d.y, d.m, 1)
	case Quarterly:
		return New(d.y, d.m-(d.m-1)%3, 1)
	case Yearly:
		return New(d.y, time.January, 1)
	default:
		return d
	}
}

// EndOf returns the last day of the period containing d.
func (d Date) EndOf(p Period) Date {
	switch p {
	case Weekly:
		return d.StartOf(Weekly).Add(6)
	case Monthly:
		return New(d.y, d.m+1, 0)
	case Quarterly:
		start := d.StartOf(Quarterly)
		return New(start.y, start.m+3, 0)
	case Yearly:
		return New(d.y, time.December, 31)
	default:
		return d
	}
}

// Parse parses a Date from a string. It is lenient and accepts formats like "2025-7-1".
func Parse(str string) (Date, error) {
	on, err := time.Parse(readDateFormat, str)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q: %w", str, readDateFormat, err)
	}
	return FromTime(on), nil
}

// MustParse is like Parse but panics on error.
func MustParse(str string) Date {
	d, err := Parse(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// UnmarshalJSON implements the json specific way to unmarshall a date from a json string.
func (d *Date) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	if str == "" {
		*d = Date{}
		return nil
	}
	parsed, err := Parse(str)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// check that a Date pointer is a valid json marshall/unmarshaller type.
var _ json.Marshaler = (*Date)(nil)
var _ json.Unmarshaler = (*Date)(nil)
