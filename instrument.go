package ledger

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"

	"github.com/etnz/ledger/date"
)

// DefaultMultiplier is the number of shares delivered by a standard option contract.
const DefaultMultiplier = 100

// Kind is the type of an instrument.
type Kind string

const (
	KindEquity Kind = "equity"
	KindOption Kind = "option"
)

// ParseKind parses an instrument kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(s)); k {
	case KindEquity, KindOption:
		return k, nil
	default:
		return "", fmt.Errorf("unknown instrument type %q", s)
	}
}

// CallPut tells whether an option is a call or a put.
type CallPut string

const (
	Call CallPut = "call"
	Put  CallPut = "put"
)

// ParseCallPut parses "call"/"put", also accepting "c"/"p".
func ParseCallPut(s string) (CallPut, error) {
	switch strings.ToLower(s) {
	case "call", "c":
		return Call, nil
	case "put", "p":
		return Put, nil
	default:
		return "", fmt.Errorf("unknown option type %q, want call or put", s)
	}
}

// Instrument is a tradeable financial instrument. It is either an Equity or an
// Option, no other implementation exists.
type Instrument interface {
	ID() ID
	Kind() Kind
	// Underlying returns the ticker grouping this instrument: the equity symbol
	// or the option's underlying symbol.
	Underlying() string
	String() string

	instrument()
}

// Equity is a share of a company, identified by its ticker symbol.
type Equity struct {
	id     ID
	symbol string
}

// NormalizeSymbol returns the canonical form of a ticker symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// NewEquity creates an equity instrument. The symbol is normalized.
func NewEquity(id ID, symbol string) Equity {
	return Equity{id: id, symbol: NormalizeSymbol(symbol)}
}

func (e Equity) ID() ID             { return e.id }
func (e Equity) Kind() Kind         { return KindEquity }
func (e Equity) Symbol() string     { return e.symbol }
func (e Equity) Underlying() string { return e.symbol }
func (e Equity) String() string     { return e.symbol }
func (Equity) instrument()          {}

// Option is a listed option contract on an equity.
type Option struct {
	id         ID
	underlying string
	expiry     date.Date
	strike     Money
	callPut    CallPut
	multiplier int
}

// NewOption creates an option instrument. The underlying symbol is normalized
// and a non positive multiplier is replaced by DefaultMultiplier.
func NewOption(id ID, underlying string, expiry date.Date, strike Money, callPut CallPut, multiplier int) Option {
	if multiplier <= 0 {
		multiplier = DefaultMultiplier
	}
	return Option{
		id:         id,
		underlying: NormalizeSymbol(underlying),
		expiry:     expiry,
		strike:     strike,
		callPut:    callPut,
		multiplier: multiplier,
	}
}

func (o Option) ID() ID             { return o.id }
func (o Option) Kind() Kind         { return KindOption }
func (o Option) Underlying() string { return o.underlying }
func (o Option) Expiry() date.Date  { return o.expiry }
func (o Option) Strike() Money      { return o.strike }
func (o Option) CallPut() CallPut   { return o.callPut }
func (Option) instrument()          {}

// Multiplier returns the contract size, DefaultMultiplier when unset.
func (o Option) Multiplier() int {
	if o.multiplier <= 0 {
		return DefaultMultiplier
	}
	return o.multiplier
}

// String returns the usual display name, e.g. "AAPL 02/20/26 200P".
func (o Option) String() string {
	cp := "C"
	if o.callPut == Put {
		cp = "P"
	}
	return fmt.Sprintf("%s %s %s%s", o.underlying, o.expiry.Format("01/02/06"), o.strike, cp)
}

// complete reports whether the option carries everything an assignment needs.
func (o Option) complete() bool {
	return o.strike.IsPositive() && (o.callPut == Call || o.callPut == Put) && o.multiplier > 0
}

// Catalog indexes instruments by id.
type Catalog map[ID]Instrument

// NewCatalog creates a catalog holding instruments.
func NewCatalog(instruments ...Instrument) Catalog {
	c := make(Catalog, len(instruments))
	for _, inst := range instruments {
		c.Add(inst)
	}
	return c
}

// Add inserts or replaces an instrument.
func (c Catalog) Add(inst Instrument) { c[inst.ID()] = inst }

// Clone returns a shallow copy, instruments are immutable values.
func (c Catalog) Clone() Catalog { return maps.Clone(c) }

// All iterates over instruments sorted by kind, then display name.
func (c Catalog) All() iter.Seq[Instrument] {
	return func(yield func(Instrument) bool) {
		all := slices.Collect(maps.Values(c))
		slices.SortFunc(all, func(a, b Instrument) int {
			if a.Kind() != b.Kind() {
				return strings.Compare(string(a.Kind()), string(b.Kind()))
			}
			if n := strings.Compare(a.String(), b.String()); n != 0 {
				return n
			}
			return strings.Compare(a.ID().String(), b.ID().String())
		})
		for _, inst := range all {
			if !yield(inst) {
				return
			}
		}
	}
}

// Equity finds the equity with this symbol.
func (c Catalog) Equity(symbol string) (Equity, bool) {
	symbol = NormalizeSymbol(symbol)
	for inst := range c.All() {
		if e, ok := inst.(Equity); ok && e.symbol == symbol {
			return e, true
		}
	}
	return Equity{}, false
}

// OptionContract finds the option with these terms.
func (c Catalog) OptionContract(underlying string, expiry date.Date, strike Money, callPut CallPut) (Option, bool) {
	underlying = NormalizeSymbol(underlying)
	for inst := range c.All() {
		if o, ok := inst.(Option); ok &&
			o.underlying == underlying &&
			o.expiry == expiry &&
			o.strike.Equal(strike) &&
			o.callPut == callPut {
			return o, true
		}
	}
	return Option{}, false
}
