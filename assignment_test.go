package ledger

import (
	"testing"
	"time"

	"github.com/etnz/ledger/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAssignment_Put(t *testing.T) {
	aapl := NewEquity(NewID(), "AAPL")
	put := NewOption(NewID(), "AAPL", date.New(2026, time.February, 20), M(200), Put, 100)
	opening := trade(put, 0, SellToOpen, "1", "1.50", "0.65")
	on := day0.Add(72 * time.Hour)

	a := GenerateAssignment(opening, put, on, aapl)

	c := a.OptionClose
	assert.NotEqual(t, NilID, c.ID)
	assert.Equal(t, put.ID(), c.InstrumentID)
	assert.Equal(t, BuyToClose, c.Action)
	assert.Equal(t, on, c.Timestamp)
	assert.Equal(t, "1", c.Quantity.String())
	assert.True(t, c.Price.IsZero())
	assert.True(t, c.Fees.IsZero())
	assert.Equal(t, "Assigned", c.Notes)
	assert.True(t, c.HasTag(AssignmentTag))
	assert.True(t, c.ConsumedByAssignment)

	e := a.EquityTrade
	assert.Equal(t, aapl.ID(), e.InstrumentID)
	assert.Equal(t, Buy, e.Action)
	assert.Equal(t, "100", e.Quantity.String())
	assert.Equal(t, "199.985", e.Price.String())
	assert.True(t, e.Fees.IsZero())
	assert.Equal(t, "Option assignment", e.Notes)
	assert.True(t, e.HasTag(AssignmentTag))
	assert.False(t, e.ConsumedByAssignment)

	assert.True(t, c.IsLinked())
	assert.Equal(t, c.LinkGroupID, e.LinkGroupID)
	assert.NotEqual(t, c.ID, e.ID)
}

func TestGenerateAssignment_Call(t *testing.T) {
	meta := NewEquity(NewID(), "META")
	call := NewOption(NewID(), "META", date.New(2026, time.February, 20), M(405), Call, 0)
	opening := trade(call, 0, SellToOpen, "3", "1.17", "0")

	a := GenerateAssignment(opening, call, at(10), meta)

	assert.Equal(t, "3", a.OptionClose.Quantity.String())
	assert.Equal(t, Sell, a.EquityTrade.Action)
	assert.Equal(t, "300", a.EquityTrade.Quantity.String())
	assert.Equal(t, "405.0117", a.EquityTrade.Price.String())
}

func TestGenerateAssignment_LinkGroupsAreFresh(t *testing.T) {
	aapl := NewEquity(NewID(), "AAPL")
	put := NewOption(NewID(), "AAPL", date.New(2026, time.February, 20), M(200), Put, 100)
	opening := trade(put, 0, SellToOpen, "1", "1", "0")

	a := GenerateAssignment(opening, put, at(1), aapl)
	b := GenerateAssignment(opening, put, at(1), aapl)

	assert.NotEqual(t, a.OptionClose.LinkGroupID, b.OptionClose.LinkGroupID)
}

func TestGenerateAssignment_Panics(t *testing.T) {
	aapl := NewEquity(NewID(), "AAPL")
	opening := trade(aapl, 0, Buy, "1", "1", "0")
	noStrike := NewOption(NewID(), "AAPL", date.New(2026, time.February, 20), Money{}, Put, 100)
	noType := NewOption(NewID(), "AAPL", date.New(2026, time.February, 20), M(200), "", 100)

	assert.Panics(t, func() { GenerateAssignment(opening, aapl, at(1), aapl) })
	assert.Panics(t, func() { GenerateAssignment(opening, noStrike, at(1), aapl) })
	assert.Panics(t, func() { GenerateAssignment(opening, noType, at(1), aapl) })
	assert.Panics(t, func() { GenerateAssignment(opening, Option{}, at(1), aapl) })
}

func TestCheckAssignable(t *testing.T) {
	aapl := NewEquity(NewID(), "AAPL")
	msft := NewEquity(NewID(), "MSFT")
	put := NewOption(NewID(), "AAPL", date.New(2026, time.February, 20), M(200), Put, 100)
	other := NewOption(NewID(), "AAPL", date.New(2026, time.March, 20), M(200), Put, 100)
	sto := trade(put, 0, SellToOpen, "1", "1.5", "0")

	tests := []struct {
		name       string
		opening    Transaction
		instrument Instrument
		equity     Equity
		ok         bool
	}{
		{"short put", sto, put, aapl, true},
		{"equity", sto, aapl, aapl, false},
		{"incomplete option", sto, NewOption(put.ID(), "AAPL", put.Expiry(), Money{}, Put, 100), aapl, false},
		{"long option", trade(put, 0, BuyToOpen, "1", "1.5", "0"), put, aapl, false},
		{"other instrument", sto, other, aapl, false},
		{"wrong underlying", sto, put, msft, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckAssignable(tt.opening, tt.instrument, tt.equity)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrNotAssignable)
			}
		})
	}
}

func TestAssignment_FeedsBackIntoProcess(t *testing.T) {
	aapl := NewEquity(NewID(), "AAPL")
	put := NewOption(NewID(), "AAPL", date.New(2026, time.February, 20), M(200), Put, 100)
	sto := trade(put, 0, SellToOpen, "1", "1.50", "0")

	a := GenerateAssignment(sto, put, at(1), aapl)
	out := Process(append([]Transaction{sto}, a.Transactions()...), NewCatalog(aapl, put))

	require.Len(t, out.Positions, 1)
	p := out.Positions[0]
	assert.Equal(t, aapl.ID(), p.InstrumentID)
	assert.Equal(t, "100", p.Quantity.String())
	assert.Equal(t, "19998.5", p.CostBasis.String())
	// premium received, then the close at zero
	assert.Equal(t, "150", out.Summary.OptionRealized.String())
}
