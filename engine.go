package ledger

import (
	"sort"
	"time"
)

// Output is everything derived from a transaction log.
type Output struct {
	EquityLots  []EquityLot                 `json:"equityLots"` // in creation order
	OptionLots  []OptionLot                 `json:"optionLots"` // in creation order
	Positions   []Position                  `json:"positions"`  // equities first, then options, each in order of first trade
	RealizedPLs []RealizedPL                `json:"realized"`   // in emission order
	Underliers  map[string]UnderlierSummary `json:"underliers"`
	Summary     PLSummary                   `json:"summary"`
	// Shortfalls lists sell and close quantities that found no open lot.
	// They take no part in the figures above.
	Shortfalls []Shortfall `json:"shortfalls"`
}

// Shortfall is the part of a sell or a close that could not be matched with
// an open lot.
type Shortfall struct {
	TransactionID ID        `json:"transaction"`
	InstrumentID  ID        `json:"instrument"`
	Timestamp     time.Time `json:"timestamp"`
	Action        Action    `json:"action"`
	Quantity      Quantity  `json:"quantity"` // unmatched quantity
}

// Process derives lots, positions, realized P/L and summaries from scratch.
//
// Transactions are replayed in timestamp order, ties keeping their relative
// order in the input. Transactions referencing an instrument missing from
// instruments are ignored. Process neither modifies its inputs nor keeps any
// state: the same inputs always give the same output.
func Process(transactions []Transaction, instruments Catalog) *Output {
	m := newMatcher()
	for _, tx := range sortByTime(transactions) {
		inst, ok := instruments[tx.InstrumentID]
		if !ok {
			continue
		}
		switch inst := inst.(type) {
		case Equity:
			m.equity(tx)
		case Option:
			m.option(tx, inst.Multiplier())
		}
	}

	out := &Output{
		EquityLots:  m.equityLots,
		OptionLots:  m.optionLots,
		RealizedPLs: m.realized,
		Shortfalls:  m.shortfalls,
	}
	out.Positions = m.positions()
	out.Underliers = groupByUnderlier(out.Positions, out.RealizedPLs, instruments)
	out.Summary = summarize(out.RealizedPLs, instruments)
	return out
}

// sortByTime returns a copy of transactions sorted chronologically, keeping
// the input order for equal timestamps.
func sortByTime(transactions []Transaction) []Transaction {
	sorted := make([]Transaction, len(transactions))
	copy(sorted, transactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}

// matcher replays transactions into lots. Lots live in two arenas, in creation
// order, and each instrument keeps a FIFO queue of indexes into its arena.
// A matcher is used for a single Process call.
type matcher struct {
	equityLots []EquityLot
	optionLots []OptionLot

	equityQueues map[ID][]int
	optionQueues map[ID][]int
	// instruments in order of their first lot
	equityOrder, optionOrder []ID

	realized   []RealizedPL
	shortfalls []Shortfall
}

func newMatcher() *matcher {
	return &matcher{
		equityQueues: make(map[ID][]int),
		optionQueues: make(map[ID][]int),
	}
}

// equity applies a buy or a sell. Other actions are ignored.
func (m *matcher) equity(tx Transaction) {
	switch tx.Action {
	case Buy:
		if _, exists := m.equityQueues[tx.InstrumentID]; !exists {
			m.equityOrder = append(m.equityOrder, tx.InstrumentID)
		}
		m.equityQueues[tx.InstrumentID] = append(m.equityQueues[tx.InstrumentID], len(m.equityLots))
		m.equityLots = append(m.equityLots, EquityLot{
			ID:                lotID(tx.ID),
			TransactionID:     tx.ID,
			InstrumentID:      tx.InstrumentID,
			OpenDate:          tx.Timestamp,
			OriginalQuantity:  tx.Quantity,
			RemainingQuantity: tx.Quantity,
			CostBasis:         tx.NetAmount(),
			PricePerShare:     tx.Price,
		})
	case Sell:
		m.sell(tx)
	}
}

// sell consumes the oldest open lots first.
func (m *matcher) sell(tx Transaction) {
	toSell := tx.Quantity
	for _, i := range m.equityQueues[tx.InstrumentID] {
		if !toSell.IsPositive() {
			break
		}
		lot := &m.equityLots[i]
		if !lot.IsOpen() {
			continue
		}
		consumed := MinQ(lot.RemainingQuantity, toSell)
		cost := proportion(lot.CostBasis, consumed, lot.OriginalQuantity)
		// fees are spread over the whole sell, pro rata of the quantity
		proceeds := tx.Price.Mul(consumed).Sub(proportion(tx.Fees, consumed, tx.Quantity))

		m.realized = append(m.realized, RealizedPL{
			InstrumentID:      tx.InstrumentID,
			OpenDate:          lot.OpenDate,
			CloseDate:         tx.Timestamp,
			Quantity:          consumed,
			Proceeds:          proceeds,
			CostBasis:         cost,
			PL:                proceeds.Sub(cost),
			TransactionID:     tx.ID,
			OpenTransactionID: lot.TransactionID,
		})
		lot.RemainingQuantity = lot.RemainingQuantity.Sub(consumed)
		toSell = toSell.Sub(consumed)
	}
	m.shortfall(tx, toSell)
}

// option applies an option trade using cash basis accounting: the premium of
// every open and every close is realized when it is traded.
func (m *matcher) option(tx Transaction, multiplier int) {
	scaled := tx.NetAmount().Mul(Q(multiplier))
	switch tx.Action {
	case BuyToOpen, SellToOpen:
		if _, exists := m.optionQueues[tx.InstrumentID]; !exists {
			m.optionOrder = append(m.optionOrder, tx.InstrumentID)
		}
		m.optionQueues[tx.InstrumentID] = append(m.optionQueues[tx.InstrumentID], len(m.optionLots))
		m.optionLots = append(m.optionLots, OptionLot{
			ID:                lotID(tx.ID),
			TransactionID:     tx.ID,
			InstrumentID:      tx.InstrumentID,
			OpenDate:          tx.Timestamp,
			Action:            tx.Action,
			OriginalQuantity:  tx.Quantity,
			RemainingQuantity: tx.Quantity,
			Premium:           scaled,
			PricePerContract:  tx.Price,
		})

		r := RealizedPL{
			InstrumentID:      tx.InstrumentID,
			OpenDate:          tx.Timestamp,
			CloseDate:         tx.Timestamp,
			Quantity:          tx.Quantity,
			TransactionID:     tx.ID,
			OpenTransactionID: tx.ID,
		}
		if tx.Action == SellToOpen {
			r.Proceeds, r.PL = scaled, scaled
		} else {
			r.CostBasis, r.PL = scaled, scaled.Neg()
		}
		m.realized = append(m.realized, r)

	case BuyToClose, SellToClose:
		m.close(tx, scaled)
	}
}

// close consumes the oldest open lots of the opposite side. Lots of the same
// side are left untouched.
func (m *matcher) close(tx Transaction, scaled Money) {
	toClose := tx.Quantity
	for _, i := range m.optionQueues[tx.InstrumentID] {
		if !toClose.IsPositive() {
			break
		}
		lot := &m.optionLots[i]
		if !lot.IsOpen() || !tx.Action.closes(lot.Action) {
			continue
		}
		consumed := MinQ(lot.RemainingQuantity, toClose)
		cash := proportion(scaled, consumed, tx.Quantity)

		r := RealizedPL{
			InstrumentID:      tx.InstrumentID,
			OpenDate:          lot.OpenDate,
			CloseDate:         tx.Timestamp,
			Quantity:          consumed,
			TransactionID:     tx.ID,
			OpenTransactionID: lot.TransactionID,
		}
		if tx.Action == SellToClose {
			r.Proceeds, r.PL = cash, cash
		} else {
			r.CostBasis, r.PL = cash, cash.Neg()
		}
		m.realized = append(m.realized, r)

		lot.RemainingQuantity = lot.RemainingQuantity.Sub(consumed)
		toClose = toClose.Sub(consumed)
	}
	m.shortfall(tx, toClose)
}

func (m *matcher) shortfall(tx Transaction, left Quantity) {
	if !left.IsPositive() {
		return
	}
	m.shortfalls = append(m.shortfalls, Shortfall{
		TransactionID: tx.ID,
		InstrumentID:  tx.InstrumentID,
		Timestamp:     tx.Timestamp,
		Action:        tx.Action,
		Quantity:      left,
	})
}
