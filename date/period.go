package date

import (
	"fmt"
	"strings"
)

// Period is a calendar period used to select the trades and the realized P/L
// of a day, a week (Monday to Sunday), a month, a quarter or a year.
type Period int

const (
	Daily Period = iota
	Weekly
	Monthly
	Quarterly
	Yearly
)

// periodNames holds, per period, the adjective then the noun and the one
// letter forms accepted on the command line.
var periodNames = [...][3]string{
	Daily:     {"daily", "day", "d"},
	Weekly:    {"weekly", "week", "w"},
	Monthly:   {"monthly", "month", "m"},
	Quarterly: {"quarterly", "quarter", "q"},
	Yearly:    {"yearly", "year", "y"},
}

func (p Period) valid() bool { return p >= Daily && p <= Yearly }

func (p Period) String() string {
	if !p.valid() {
		return fmt.Sprintf("Period(%d)", int(p))
	}
	return periodNames[p][0]
}

// Noun returns the period as a noun: "day", "week"...
func (p Period) Noun() string {
	if !p.valid() {
		return p.String()
	}
	return periodNames[p][1]
}

// PeriodNames returns the nouns of all periods, shortest period first.
func PeriodNames() []string {
	names := make([]string, len(periodNames))
	for i, n := range periodNames {
		names[i] = n[1]
	}
	return names
}

// ParsePeriod accepts the adjective, the noun or the first letter of a period
// ("monthly", "month", "m"), in any case.
func ParsePeriod(s string) (Period, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for p, n := range periodNames {
		if name == n[0] || name == n[1] || name == n[2] {
			return Period(p), nil
		}
	}
	return Daily, fmt.Errorf("unknown period %q, want one of %s", s, strings.Join(PeriodNames(), ", "))
}
