package ledger

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money represents a monetary value (a price, a premium, a cost basis).
//
// The ledger is single currency: amounts carry no currency, it is chosen when
// formatting.
type Money struct {
	value decimal.Decimal // as major unit value
}

// M creates a Money from an integer or a decimal.
func M[T int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Money {
	return Money{value: newDecimal(value)}
}

// ParseMoney parses an exact decimal text like "1.17".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{value: d}, nil
}

// MustM is like ParseMoney but panics on error.
func MustM(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Decimal() decimal.Decimal        { return m.value }
func (m Money) Equal(n Money) bool              { return m.value.Equal(n.value) }
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool           { return m.value.LessThan(n.value) }
func (m Money) GreaterThan(n Money) bool        { return m.value.GreaterThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool { return m.value.GreaterThanOrEqual(n.value) }
func (m Money) Neg() Money                      { return Money{value: m.value.Neg()} }
func (m Money) Abs() Money                      { return Money{value: m.value.Abs()} }
func (m Money) Add(n Money) Money               { return Money{value: m.value.Add(n.value)} }
func (m Money) Sub(n Money) Money               { return Money{value: m.value.Sub(n.value)} }
func (m Money) Mul(q Quantity) Money            { return Money{value: m.value.Mul(q.value)} }
func (m Money) Div(q Quantity) Money            { return Money{value: m.value.Div(q.value)} }
func (m Money) DivPrice(n Money) Quantity       { return Quantity{value: m.value.Div(n.value)} }
func (m Money) String() string                  { return m.value.String() }

// Format returns the amount formatted in the given ISO currency, e.g. "$1,234.50".
func (m Money) Format(currency string) string {
	// to get a never nil currency I need to call the Money constructor
	cur := *money.New(0, currency).Currency()
	minor := m.value.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(minor.IntPart())
}

// SignedFormat is like Format with an explicit sign. 0 is represented as "-".
func (m Money) SignedFormat(currency string) string {
	switch {
	case m.value.IsZero():
		return "-"
	case m.value.IsPositive():
		return "+" + m.Format(currency)
	default:
		return m.Format(currency)
	}
}

func (m Money) MarshalJSON() ([]byte, error)     { return m.value.MarshalJSON() }
func (m *Money) UnmarshalJSON(data []byte) error { return m.value.UnmarshalJSON(data) }
func (m Money) MarshalText() ([]byte, error)     { return m.value.MarshalText() }
func (m *Money) UnmarshalText(text []byte) error { return m.value.UnmarshalText(text) }

// sum adds up amounts.
func sum[T any](items []T, amount func(T) Money) Money {
	var total Money
	for _, item := range items {
		total = total.Add(amount(item))
	}
	return total
}
