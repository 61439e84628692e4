package ledger

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotAssignable is returned when an option transaction cannot be assigned.
var ErrNotAssignable = errors.New("not assignable")

// Assignment is the pair of linked transactions recording an option assignment.
type Assignment struct {
	OptionClose Transaction // buy to close the contracts at no cost
	EquityTrade Transaction // shares delivered at the strike, adjusted by the premium
}

// Transactions returns the two transactions, in the order they are recorded.
func (a Assignment) Transactions() []Transaction {
	return []Transaction{a.OptionClose, a.EquityTrade}
}

// CheckAssignable reports whether GenerateAssignment can be called with these
// arguments.
func CheckAssignable(opening Transaction, instrument Instrument, equity Equity) error {
	option, ok := instrument.(Option)
	if !ok {
		return fmt.Errorf("%w: %s is not an option", ErrNotAssignable, instrument)
	}
	if !option.complete() {
		return fmt.Errorf("%w: option %s misses its strike, type or multiplier", ErrNotAssignable, option)
	}
	if opening.InstrumentID != option.ID() {
		return fmt.Errorf("%w: transaction %s is not on %s", ErrNotAssignable, opening.ID, option)
	}
	if opening.Action != SellToOpen {
		return fmt.Errorf("%w: transaction %s is a %s, only sold options get assigned", ErrNotAssignable, opening.ID, opening.Action)
	}
	if equity.Symbol() != option.Underlying() {
		return fmt.Errorf("%w: %s is not the underlying of %s", ErrNotAssignable, equity, option)
	}
	return nil
}

// GenerateAssignment creates the transactions recording the assignment of the
// contracts opened by opening.
//
// The option is closed at a zero price and the underlying changes hands at
// the strike, adjusted by the opening price divided by the multiplier: a put
// buys the shares at strike - price/multiplier, a call sells them at
// strike + price/multiplier. Both transactions share a new link group.
//
// GenerateAssignment panics if instrument is not a complete option. Use
// CheckAssignable to validate the arguments first.
func GenerateAssignment(opening Transaction, instrument Instrument, on time.Time, equity Equity) Assignment {
	option, ok := instrument.(Option)
	if !ok || !option.complete() {
		panic(fmt.Sprintf("invalid option instrument for assignment: %v", instrument))
	}

	group := NewID()
	multiplier := Q(option.Multiplier())
	contracts := opening.Quantity
	premiumPerShare := opening.Price.Div(multiplier)

	optionClose := Transaction{
		ID:                   NewID(),
		InstrumentID:         opening.InstrumentID,
		Timestamp:            on,
		Action:               BuyToClose,
		Quantity:             contracts,
		Notes:                "Assigned",
		Tags:                 []string{AssignmentTag},
		LinkGroupID:          group,
		ConsumedByAssignment: true,
	}

	trade := Transaction{
		ID:           NewID(),
		InstrumentID: equity.ID(),
		Timestamp:    on,
		Quantity:     contracts.Mul(multiplier),
		Notes:        "Option assignment",
		Tags:         []string{AssignmentTag},
		LinkGroupID:  group,
	}
	if option.CallPut() == Put {
		trade.Action = Buy
		trade.Price = option.Strike().Sub(premiumPerShare)
	} else {
		trade.Action = Sell
		trade.Price = option.Strike().Add(premiumPerShare)
	}

	return Assignment{OptionClose: optionClose, EquityTrade: trade}
}
