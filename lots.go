package ledger

import "time"

// EquityLot is the quantity of shares opened by a single buy, used for FIFO matching.
type EquityLot struct {
	ID                ID        `json:"id"`
	TransactionID     ID        `json:"transaction"` // the buy that opened the lot
	InstrumentID      ID        `json:"instrument"`
	OpenDate          time.Time `json:"openDate"`
	OriginalQuantity  Quantity  `json:"originalQuantity"`
	RemainingQuantity Quantity  `json:"remainingQuantity"`
	CostBasis         Money     `json:"costBasis"` // total cost of the original quantity, fees included
	PricePerShare     Money     `json:"pricePerShare"`
}

// IsOpen reports whether some quantity is left in the lot.
func (l EquityLot) IsOpen() bool { return l.RemainingQuantity.IsPositive() }

// AverageCostPerShare is the fee inclusive cost of one share.
func (l EquityLot) AverageCostPerShare() Money {
	if !l.OriginalQuantity.IsPositive() {
		return Money{}
	}
	return l.CostBasis.Div(l.OriginalQuantity)
}

// RemainingCost is the share of the cost basis still held.
func (l EquityLot) RemainingCost() Money {
	return proportion(l.CostBasis, l.RemainingQuantity, l.OriginalQuantity)
}

// OptionLot is the quantity of contracts opened by a single buy to open or sell
// to open. The opening action fixes the side of the lot for its whole life.
type OptionLot struct {
	ID                ID        `json:"id"`
	TransactionID     ID        `json:"transaction"`
	InstrumentID      ID        `json:"instrument"`
	OpenDate          time.Time `json:"openDate"`
	Action            Action    `json:"action"` // BuyToOpen or SellToOpen
	OriginalQuantity  Quantity  `json:"originalQuantity"`
	RemainingQuantity Quantity  `json:"remainingQuantity"`
	Premium           Money     `json:"premium"` // total premium paid or received, scaled by the multiplier, fees included
	PricePerContract  Money     `json:"pricePerContract"`
}

func (l OptionLot) IsOpen() bool  { return l.RemainingQuantity.IsPositive() }
func (l OptionLot) IsShort() bool { return l.Action == SellToOpen }
func (l OptionLot) IsLong() bool  { return l.Action == BuyToOpen }

// AveragePremiumPerContract is the scaled premium of one contract.
func (l OptionLot) AveragePremiumPerContract() Money {
	if !l.OriginalQuantity.IsPositive() {
		return Money{}
	}
	return l.Premium.Div(l.OriginalQuantity)
}

// RemainingPremium is the share of the premium still attached to open contracts.
func (l OptionLot) RemainingPremium() Money {
	return proportion(l.Premium, l.RemainingQuantity, l.OriginalQuantity)
}

// proportion returns amount * part / whole. Multiplying first keeps the result
// exact whenever amount*part is a multiple of whole.
func proportion(amount Money, part, whole Quantity) Money {
	if whole.IsZero() {
		return Money{}
	}
	return amount.Mul(part).Div(whole)
}
