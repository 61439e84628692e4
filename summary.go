package ledger

import (
	"maps"
	"slices"
	"time"
)

// RealizedPL records a realized gain or loss.
//
// Equity records are emitted for each lot consumed by a sell. Option records
// are emitted for each open, and for each lot consumed by a close.
type RealizedPL struct {
	InstrumentID      ID        `json:"instrument"`
	OpenDate          time.Time `json:"openDate"`
	CloseDate         time.Time `json:"closeDate"`
	Quantity          Quantity  `json:"quantity"`
	Proceeds          Money     `json:"proceeds"`    // what was received
	CostBasis         Money     `json:"costBasis"`   // what was paid
	PL                Money     `json:"pl"`          // Proceeds - CostBasis
	TransactionID     ID        `json:"transaction"` // the closing transaction
	OpenTransactionID ID        `json:"openTransaction"`
}

// HoldingPeriod is the time elapsed between open and close.
func (r RealizedPL) HoldingPeriod() time.Duration { return r.CloseDate.Sub(r.OpenDate) }

// HoldingDays is the number of whole days the lot was held.
func (r RealizedPL) HoldingDays() int { return int(r.HoldingPeriod() / (24 * time.Hour)) }

// UnderlierSummary gathers the positions sharing an underlying ticker.
type UnderlierSummary struct {
	Symbol   string     `json:"symbol"`
	Equity   *Position  `json:"equity"` // nil when the ticker is only traded through options
	Options  []Position `json:"options"`
	Realized Money      `json:"realized"` // realized P/L of every instrument on this ticker
}

// TotalEquityShares is the number of shares held, 0 without an equity position.
func (u UnderlierSummary) TotalEquityShares() Quantity {
	if u.Equity == nil {
		return Quantity{}
	}
	return u.Equity.Quantity
}

func (u UnderlierSummary) AverageEquityCost() Money {
	if u.Equity == nil {
		return Money{}
	}
	return u.Equity.AveragePrice
}

func (u UnderlierSummary) TotalEquityCostBasis() Money {
	if u.Equity == nil {
		return Money{}
	}
	return u.Equity.CostBasis
}

// OpenOptionContracts counts the option positions with a non zero net quantity.
func (u UnderlierSummary) OpenOptionContracts() int {
	n := 0
	for _, p := range u.Options {
		if p.IsOpen() {
			n++
		}
	}
	return n
}

// UnrealizedEquityPL values the equity position at price.
func (u UnderlierSummary) UnrealizedEquityPL(price Money) (Money, bool) {
	if u.Equity == nil {
		return Money{}, false
	}
	return u.Equity.UnrealizedPL(price)
}

// groupByUnderlier builds one summary per ticker holding a position.
func groupByUnderlier(positions []Position, realized []RealizedPL, instruments Catalog) map[string]UnderlierSummary {
	summaries := make(map[string]UnderlierSummary)
	for _, p := range positions {
		inst, ok := instruments[p.InstrumentID]
		if !ok {
			continue
		}
		symbol := inst.Underlying()
		s, exists := summaries[symbol]
		if !exists {
			s = UnderlierSummary{Symbol: symbol}
		}
		if p.Kind == KindEquity {
			s.Equity = &p
		} else {
			s.Options = append(s.Options, p)
		}
		summaries[symbol] = s
	}

	for _, r := range realized {
		inst, ok := instruments[r.InstrumentID]
		if !ok {
			continue
		}
		if s, exists := summaries[inst.Underlying()]; exists {
			s.Realized = s.Realized.Add(r.PL)
			summaries[inst.Underlying()] = s
		}
	}
	return summaries
}

// Symbols returns the tickers of the underlier summaries, sorted.
func (o *Output) Symbols() []string {
	return slices.Sorted(maps.Keys(o.Underliers))
}

// Position returns the position of an instrument, if any.
func (o *Output) Position(id ID) (Position, bool) {
	for _, p := range o.Positions {
		if p.InstrumentID == id {
			return p, true
		}
	}
	return Position{}, false
}

// RealizedFor returns the realized records of the instruments on a ticker.
func (o *Output) RealizedFor(symbol string, instruments Catalog) []RealizedPL {
	var records []RealizedPL
	for _, r := range o.RealizedPLs {
		if inst, ok := instruments[r.InstrumentID]; ok && inst.Underlying() == symbol {
			records = append(records, r)
		}
	}
	return records
}

// PLSummary aggregates realized P/L by instrument kind.
type PLSummary struct {
	TotalRealized  Money `json:"totalRealized"`
	EquityRealized Money `json:"equityRealized"`
	OptionRealized Money `json:"optionRealized"`
	// TotalUnrealized is always zero: no market price is known to the ledger.
	TotalUnrealized Money `json:"totalUnrealized"`
}

// TotalPL is realized plus unrealized P/L.
func (s PLSummary) TotalPL() Money { return s.TotalRealized.Add(s.TotalUnrealized) }

func summarize(realized []RealizedPL, instruments Catalog) PLSummary {
	var s PLSummary
	s.TotalRealized = sum(realized, func(r RealizedPL) Money { return r.PL })
	for _, r := range realized {
		inst, ok := instruments[r.InstrumentID]
		if !ok {
			continue
		}
		switch inst.Kind() {
		case KindEquity:
			s.EquityRealized = s.EquityRealized.Add(r.PL)
		case KindOption:
			s.OptionRealized = s.OptionRealized.Add(r.PL)
		}
	}
	return s
}
