package date

import (
	"fmt"
	"time"
)

// Range represents a range of dates, boundaries included.
//
// A zero From or To leaves that side of the range open.
type Range struct{ From, To Date }

// NewRange return the well known period containing d.
func NewRange(d Date, period Period) Range {
	return Range{From: d.StartOf(period), To: d.EndOf(period)}
}

// Contains return true if date is included in the range.
func (r Range) Contains(date Date) bool {
	if !r.From.IsZero() && date.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && date.After(r.To) {
		return false
	}
	return true
}

// ContainsTime is like Contains for the day of t.
func (r Range) ContainsTime(t time.Time) bool { return r.Contains(FromTime(t)) }

// IsZero reports whether the range is unbounded on both sides.
func (r Range) IsZero() bool { return r.From.IsZero() && r.To.IsZero() }

// Period returns the period of this range if it's a standard one.
func (r Range) Period() (p Period, ok bool) {
	switch {
	case r.From.IsZero() || r.To.IsZero():
		return Daily, false
	case r.From == r.To:
		return Daily, true
	case r.From.Weekday() == time.Monday && r.From.EndOf(Weekly) == r.To:
		return Weekly, true
	case r.From.Day() == 1 && r.From.EndOf(Monthly) == r.To:
		return Monthly, true
	case r.From.StartOf(Quarterly) == r.From && r.From.EndOf(Quarterly) == r.To:
		return Quarterly, true
	case r.From.StartOf(Yearly) == r.From && r.From.EndOf(Yearly) == r.To:
		return Yearly, true
	default:
		return Daily, false
	}
}

// Name the period range
func (r Range) Name() string {
	if p, ok := r.Period(); ok {
		return p.String()
	}
	return "special"
}

// Identifier computes a unique identifier for the Range, a short name when the
// period is a standard one.
func (r Range) Identifier() string {
	p, ok := r.Period()
	if !ok {
		return fmt.Sprintf("%s_%s", r.From, r.To)
	}

	switch p {
	case Daily:
		return r.From.String()
	case Weekly:
		_, week := r.From.ISOWeek()
		return fmt.Sprintf("%d-W%02d", r.From.Year(), week)
	case Monthly:
		return r.From.Format("2006-01")
	case Quarterly:
		return fmt.Sprintf("%d-Q%d", r.From.Year(), (r.From.Month()-1)/3+1)
	default:
		return r.From.Format("2006")
	}
}
