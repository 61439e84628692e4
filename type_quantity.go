package ledger

import "github.com/shopspring/decimal"

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case uint:
		return decimal.NewFromUint64(uint64(v))
	case uint32:
		return decimal.NewFromUint64(uint64(v))
	case uint64:
		return decimal.NewFromUint64(v)
	default:
		panic("unsupported type")
	}
}

// Quantity is a number of shares or contracts.
type Quantity struct {
	value decimal.Decimal
}

// Q creates a Quantity. Floats are deliberately not accepted, use ParseQuantity for
// fractional values.
func Q[T int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Quantity {
	return Quantity{value: newDecimal(value)}
}

// ParseQuantity parses an exact decimal text like "12.5".
func ParseQuantity(s string) (Quantity, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{value: d}, nil
}

// MustQ is like ParseQuantity but panics on error.
func MustQ(s string) Quantity {
	q, err := ParseQuantity(s)
	if err != nil {
		panic(err)
	}
	return q
}

func (q Quantity) Decimal() decimal.Decimal         { return q.value }
func (q Quantity) Equal(p Quantity) bool            { return q.value.Equal(p.value) }
func (q Quantity) LessThan(p Quantity) bool         { return q.value.LessThan(p.value) }
func (q Quantity) GreaterThan(p Quantity) bool      { return q.value.GreaterThan(p.value) }
func (q Quantity) Div(p Quantity) Quantity          { return Quantity{value: q.value.Div(p.value)} }
func (q Quantity) Mul(p Quantity) Quantity          { return Quantity{value: q.value.Mul(p.value)} }
func (q Quantity) Add(p Quantity) Quantity          { return Quantity{value: q.value.Add(p.value)} }
func (q Quantity) Sub(p Quantity) Quantity          { return Quantity{value: q.value.Sub(p.value)} }
func (q Quantity) Neg() Quantity                    { return Quantity{value: q.value.Neg()} }
func (q Quantity) Abs() Quantity                    { return Quantity{value: q.value.Abs()} }
func (q Quantity) IsNegative() bool                 { return q.value.IsNegative() }
func (q Quantity) IsPositive() bool                 { return q.value.IsPositive() }
func (q Quantity) IsZero() bool                     { return q.value.IsZero() }
func (q Quantity) String() string                   { return q.value.String() }
func (q Quantity) MarshalJSON() ([]byte, error)     { return q.value.MarshalJSON() }
func (q *Quantity) UnmarshalJSON(data []byte) error { return q.value.UnmarshalJSON(data) }
func (q Quantity) MarshalText() ([]byte, error)     { return q.value.MarshalText() }
func (q *Quantity) UnmarshalText(text []byte) error { return q.value.UnmarshalText(text) }

// MinQ returns the smallest of a and b.
func MinQ(a, b Quantity) Quantity {
	if a.LessThan(b) {
		return a
	}
	return b
}
