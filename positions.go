package ledger

// Position is the net holding of an instrument, collapsed from its open lots.
type Position struct {
	InstrumentID ID   `json:"instrument"`
	Kind         Kind `json:"kind"`
	// Quantity is the number of shares, or the net number of contracts: long
	// contracts count positive, short ones negative.
	Quantity Quantity `json:"quantity"`
	// CostBasis is the remaining cost of the lots. For options, short premiums
	// are credits and reduce it.
	CostBasis    Money `json:"costBasis"`
	AveragePrice Money `json:"averagePrice"`
}

// IsOpen reports whether the net quantity is not zero. A position made of
// offsetting long and short contracts exists but is not open.
func (p Position) IsOpen() bool { return !p.Quantity.IsZero() }

// UnrealizedPL returns the gain of a long position valued at price. It is not
// available for flat or short positions.
func (p Position) UnrealizedPL(price Money) (Money, bool) {
	if !p.Quantity.IsPositive() {
		return Money{}, false
	}
	return price.Mul(p.Quantity).Sub(p.CostBasis), true
}

// positions aggregates the open lots of each instrument. Instruments without
// open lots have no position.
func (m *matcher) positions() []Position {
	var positions []Position
	for _, id := range m.equityOrder {
		var quantity Quantity
		var cost Money
		open := false
		for _, i := range m.equityQueues[id] {
			lot := m.equityLots[i]
			if !lot.IsOpen() {
				continue
			}
			open = true
			quantity = quantity.Add(lot.RemainingQuantity)
			cost = cost.Add(lot.RemainingCost())
		}
		if !open {
			continue
		}
		var average Money
		if quantity.IsPositive() {
			average = cost.Div(quantity)
		}
		positions = append(positions, Position{
			InstrumentID: id,
			Kind:         KindEquity,
			Quantity:     quantity,
			CostBasis:    cost,
			AveragePrice: average,
		})
	}

	for _, id := range m.optionOrder {
		var long, short Quantity
		var longCost, shortCost Money
		open := false
		for _, i := range m.optionQueues[id] {
			lot := m.optionLots[i]
			if !lot.IsOpen() {
				continue
			}
			open = true
			if lot.IsShort() {
				short = short.Add(lot.RemainingQuantity)
				shortCost = shortCost.Add(lot.RemainingPremium())
			} else {
				long = long.Add(lot.RemainingQuantity)
				longCost = longCost.Add(lot.RemainingPremium())
			}
		}
		if !open {
			continue
		}
		net := long.Sub(short)
		cost := longCost.Sub(shortCost)
		var average Money
		if !net.IsZero() {
			average = cost.Div(net).Abs()
		}
		positions = append(positions, Position{
			InstrumentID: id,
			Kind:         KindOption,
			Quantity:     net,
			CostBasis:    cost,
			AveragePrice: average,
		})
	}
	return positions
}
