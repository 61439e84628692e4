package ledger

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/etnz/ledger/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2026, time.February, 17, 15, 30, 0, 0, time.UTC)

// at returns a timestamp n minutes after day0.
func at(n int) time.Time { return day0.Add(time.Duration(n) * time.Minute) }

func trade(inst Instrument, n int, action Action, quantity, price, fees string) Transaction {
	return NewTransaction(inst.ID(), at(n), action, MustQ(quantity), MustM(price), MustM(fees))
}

func testInstruments() (Equity, Option, Catalog) {
	msft := NewEquity(NewID(), "MSFT")
	call := NewOption(NewID(), "MSFT", date.New(2026, time.February, 20), M(405), Call, 0)
	return msft, call, NewCatalog(msft, call)
}

func TestProcess_EquityFIFO(t *testing.T) {
	msft, _, instruments := testInstruments()
	buy := trade(msft, 0, Buy, "100", "10", "0")
	sell := trade(msft, 1, Sell, "40", "15", "0")

	out := Process([]Transaction{buy, sell}, instruments)

	require.Len(t, out.RealizedPLs, 1)
	r := out.RealizedPLs[0]
	assert.Equal(t, "40", r.Quantity.String())
	assert.Equal(t, "400", r.CostBasis.String())
	assert.Equal(t, "600", r.Proceeds.String())
	assert.Equal(t, "200", r.PL.String())
	assert.Equal(t, sell.ID, r.TransactionID)
	assert.Equal(t, buy.ID, r.OpenTransactionID)

	require.Len(t, out.EquityLots, 1)
	assert.Equal(t, "60", out.EquityLots[0].RemainingQuantity.String())
	assert.Empty(t, out.Shortfalls)
}

func TestProcess_EquitySellAcrossLots(t *testing.T) {
	msft, _, instruments := testInstruments()
	txs := []Transaction{
		trade(msft, 0, Buy, "10", "100", "10"),  // cost 1010
		trade(msft, 1, Buy, "10", "120", "0"),   // cost 1200
		trade(msft, 2, Sell, "15", "130", "30"), // fees split 20/10
	}

	out := Process(txs, instruments)

	require.Len(t, out.RealizedPLs, 2)
	first, second := out.RealizedPLs[0], out.RealizedPLs[1]
	assert.Equal(t, "10", first.Quantity.String())
	assert.Equal(t, "1010", first.CostBasis.String())
	assert.Equal(t, "1280", first.Proceeds.String())
	assert.Equal(t, "270", first.PL.String())
	assert.Equal(t, "5", second.Quantity.String())
	assert.Equal(t, "600", second.CostBasis.String())
	assert.Equal(t, "640", second.Proceeds.String())
	assert.Equal(t, "40", second.PL.String())

	require.Len(t, out.Positions, 1)
	p := out.Positions[0]
	assert.Equal(t, KindEquity, p.Kind)
	assert.Equal(t, "5", p.Quantity.String())
	assert.Equal(t, "600", p.CostBasis.String())
	assert.Equal(t, "120", p.AveragePrice.String())
	assert.Equal(t, "310", out.Summary.EquityRealized.String())
}

func TestProcess_OversellIsReported(t *testing.T) {
	msft, _, instruments := testInstruments()
	sell := trade(msft, 1, Sell, "15", "10", "0")
	txs := []Transaction{trade(msft, 0, Buy, "10", "10", "0"), sell}

	out := Process(txs, instruments)

	require.Len(t, out.RealizedPLs, 1)
	assert.Equal(t, "10", out.RealizedPLs[0].Quantity.String())
	require.Len(t, out.Shortfalls, 1)
	assert.Equal(t, sell.ID, out.Shortfalls[0].TransactionID)
	assert.Equal(t, "5", out.Shortfalls[0].Quantity.String())
	assert.Empty(t, out.Positions)
}

func TestProcess_OptionOpenIsRealized(t *testing.T) {
	_, call, instruments := testInstruments()
	sto := trade(call, 0, SellToOpen, "3", "1.17", "0")

	out := Process([]Transaction{sto}, instruments)

	require.Len(t, out.RealizedPLs, 1)
	r := out.RealizedPLs[0]
	assert.Equal(t, "3", r.Quantity.String())
	assert.True(t, r.CostBasis.IsZero())
	assert.Equal(t, "351", r.Proceeds.String())
	assert.Equal(t, "351", r.PL.String())
	assert.Equal(t, sto.ID, r.OpenTransactionID)

	require.Len(t, out.OptionLots, 1)
	lot := out.OptionLots[0]
	assert.True(t, lot.IsShort())
	assert.Equal(t, "351", lot.Premium.String())
	assert.Equal(t, "3", lot.RemainingQuantity.String())

	require.Len(t, out.Positions, 1)
	assert.Equal(t, "-3", out.Positions[0].Quantity.String())
	assert.Equal(t, "-351", out.Positions[0].CostBasis.String())
	assert.Equal(t, "117", out.Positions[0].AveragePrice.String())
}

func TestProcess_BuyToOpenIsARealizedLoss(t *testing.T) {
	_, call, instruments := testInstruments()
	out := Process([]Transaction{trade(call, 0, BuyToOpen, "2", "0.5", "1")}, instruments)

	require.Len(t, out.RealizedPLs, 1)
	r := out.RealizedPLs[0]
	assert.Equal(t, "200", r.CostBasis.String())
	assert.True(t, r.Proceeds.IsZero())
	assert.Equal(t, "-200", r.PL.String())
	assert.True(t, out.OptionLots[0].IsLong())
}

func TestProcess_OptionRoundTrip(t *testing.T) {
	_, call, instruments := testInstruments()
	txs := []Transaction{
		trade(call, 0, SellToOpen, "2", "1.50", "0"),
		trade(call, 1, BuyToClose, "2", "0.25", "0"),
	}

	out := Process(txs, instruments)

	require.Len(t, out.RealizedPLs, 2)
	assert.Equal(t, "300", out.RealizedPLs[0].PL.String())
	assert.Equal(t, "-50", out.RealizedPLs[1].PL.String())
	assert.Equal(t, "250", out.Summary.TotalRealized.String())
	assert.Equal(t, "250", out.Summary.OptionRealized.String())
	assert.True(t, out.Summary.EquityRealized.IsZero())
	assert.True(t, out.Summary.TotalUnrealized.IsZero())
	assert.Equal(t, "250", out.Summary.TotalPL().String())

	require.Len(t, out.OptionLots, 1)
	assert.True(t, out.OptionLots[0].RemainingQuantity.IsZero())
	assert.False(t, out.OptionLots[0].IsOpen())
	assert.Empty(t, out.Positions)
	assert.Empty(t, out.Underliers)
}

func TestProcess_PartialCloseSplitsTheClosingPremium(t *testing.T) {
	_, call, instruments := testInstruments()
	first := trade(call, 0, SellToOpen, "1", "2", "0")
	second := trade(call, 1, SellToOpen, "2", "3", "0")
	closing := trade(call, 2, BuyToClose, "2", "1", "1") // scaled net 300

	out := Process([]Transaction{first, second, closing}, instruments)

	require.Len(t, out.RealizedPLs, 4)
	assert.Equal(t, "-150", out.RealizedPLs[2].PL.String())
	assert.Equal(t, first.ID, out.RealizedPLs[2].OpenTransactionID)
	assert.Equal(t, "-150", out.RealizedPLs[3].PL.String())
	assert.Equal(t, second.ID, out.RealizedPLs[3].OpenTransactionID)

	require.Len(t, out.Positions, 1)
	assert.Equal(t, "-1", out.Positions[0].Quantity.String())
	assert.Equal(t, "-300", out.Positions[0].CostBasis.String())
}

func TestProcess_MismatchedCloseIsSkipped(t *testing.T) {
	_, call, instruments := testInstruments()
	bto := trade(call, 0, BuyToOpen, "1", "2", "0")
	btc := trade(call, 1, BuyToClose, "1", "1", "0")

	out := Process([]Transaction{bto, btc}, instruments)

	require.Len(t, out.RealizedPLs, 1, "only the opening is realized")
	assert.Equal(t, bto.ID, out.RealizedPLs[0].TransactionID)
	assert.Equal(t, "1", out.OptionLots[0].RemainingQuantity.String())
	require.Len(t, out.Shortfalls, 1)
	assert.Equal(t, btc.ID, out.Shortfalls[0].TransactionID)
}

func TestProcess_CloseSkipsLotsOfTheSameSide(t *testing.T) {
	_, call, instruments := testInstruments()
	long := trade(call, 0, BuyToOpen, "1", "2", "0")
	short := trade(call, 1, SellToOpen, "1", "3", "0")
	stc := trade(call, 2, SellToClose, "1", "4", "0")
	btc := trade(call, 3, BuyToClose, "1", "1", "0")

	out := Process([]Transaction{long, short, stc, btc}, instruments)

	require.Len(t, out.RealizedPLs, 4)
	assert.Equal(t, long.ID, out.RealizedPLs[2].OpenTransactionID)
	assert.Equal(t, "400", out.RealizedPLs[2].Proceeds.String())
	assert.Equal(t, short.ID, out.RealizedPLs[3].OpenTransactionID)
	assert.Equal(t, "100", out.RealizedPLs[3].CostBasis.String())
	assert.Empty(t, out.Positions)
}

func TestProcess_NettedLongAndShort(t *testing.T) {
	_, call, instruments := testInstruments()
	txs := []Transaction{
		trade(call, 0, BuyToOpen, "3", "2", "0"),
		trade(call, 1, SellToOpen, "1", "5", "0"),
	}

	out := Process(txs, instruments)

	require.Len(t, out.Positions, 1)
	p := out.Positions[0]
	assert.Equal(t, "2", p.Quantity.String())
	assert.Equal(t, "100", p.CostBasis.String())
	assert.Equal(t, "50", p.AveragePrice.String())
	assert.True(t, p.IsOpen())
}

func TestProcess_UnknownInstrumentIsIgnored(t *testing.T) {
	msft, _, instruments := testInstruments()
	ghost := NewEquity(NewID(), "GHOST")
	txs := []Transaction{
		trade(ghost, 0, Buy, "10", "1", "0"),
		trade(msft, 1, Buy, "10", "1", "0"),
	}

	out := Process(txs, instruments)

	require.Len(t, out.EquityLots, 1)
	assert.Equal(t, msft.ID(), out.EquityLots[0].InstrumentID)
}

func TestProcess_WrongFamilyActionIsIgnored(t *testing.T) {
	msft, call, instruments := testInstruments()
	txs := []Transaction{
		trade(msft, 0, SellToOpen, "1", "1", "0"),
		trade(call, 1, Buy, "1", "1", "0"),
	}

	out := Process(txs, instruments)

	assert.Empty(t, out.EquityLots)
	assert.Empty(t, out.OptionLots)
	assert.Empty(t, out.RealizedPLs)
}

func TestProcess_CustomMultiplier(t *testing.T) {
	mini := NewOption(NewID(), "SPY", date.New(2026, time.March, 20), M(600), Put, 10)
	out := Process([]Transaction{trade(mini, 0, SellToOpen, "1", "4", "0")}, NewCatalog(mini))

	require.Len(t, out.RealizedPLs, 1)
	assert.Equal(t, "40", out.RealizedPLs[0].PL.String())
}

func TestProcess_Underliers(t *testing.T) {
	msft, call, instruments := testInstruments()
	aapl := NewEquity(NewID(), "AAPL")
	instruments.Add(aapl)
	txs := []Transaction{
		trade(msft, 0, Buy, "100", "400", "0"),
		trade(call, 1, SellToOpen, "1", "2", "0"),
		trade(aapl, 2, Buy, "10", "200", "0"),
		trade(aapl, 3, Sell, "10", "210", "0"),
	}

	out := Process(txs, instruments)

	assert.Equal(t, []string{"MSFT"}, out.Symbols(), "AAPL is fully closed")
	s := out.Underliers["MSFT"]
	require.NotNil(t, s.Equity)
	assert.Equal(t, "100", s.TotalEquityShares().String())
	assert.Equal(t, "400", s.AverageEquityCost().String())
	assert.Equal(t, "40000", s.TotalEquityCostBasis().String())
	require.Len(t, s.Options, 1)
	assert.Equal(t, 1, s.OpenOptionContracts())
	assert.Equal(t, "200", s.Realized.String())

	pl, ok := s.UnrealizedEquityPL(M(410))
	require.True(t, ok)
	assert.Equal(t, "1000", pl.String())

	assert.Len(t, out.RealizedFor("AAPL", instruments), 1)
	assert.Equal(t, "100", out.Summary.EquityRealized.String())
	assert.Equal(t, "300", out.Summary.TotalRealized.String())
}

func TestProcess_PositionsOrder(t *testing.T) {
	msft, call, instruments := testInstruments()
	aapl := NewEquity(NewID(), "AAPL")
	instruments.Add(aapl)
	txs := []Transaction{
		trade(call, 0, BuyToOpen, "1", "1", "0"),
		trade(msft, 1, Buy, "1", "1", "0"),
		trade(aapl, 2, Buy, "1", "1", "0"),
	}

	out := Process(txs, instruments)

	require.Len(t, out.Positions, 3)
	assert.Equal(t, msft.ID(), out.Positions[0].InstrumentID)
	assert.Equal(t, aapl.ID(), out.Positions[1].InstrumentID)
	assert.Equal(t, call.ID(), out.Positions[2].InstrumentID)
}

func TestProcess_Idempotent(t *testing.T) {
	txs, instruments := history()
	assert.Equal(t, Process(txs, instruments), Process(txs, instruments))
}

func TestProcess_InputOrderDoesNotMatter(t *testing.T) {
	txs, instruments := history()
	want := Process(txs, instruments)

	rng := rand.New(rand.NewPCG(1, 2))
	for range 10 {
		shuffled := append([]Transaction(nil), txs...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		assert.Equal(t, want, Process(shuffled, instruments))
	}
}

func TestProcess_EqualTimestampsKeepInputOrder(t *testing.T) {
	msft, _, instruments := testInstruments()
	buy := trade(msft, 0, Buy, "10", "1", "0")
	sell := trade(msft, 0, Sell, "10", "2", "0")

	assert.Len(t, Process([]Transaction{buy, sell}, instruments).RealizedPLs, 1)
	assert.Empty(t, Process([]Transaction{sell, buy}, instruments).RealizedPLs)
}

func TestProcess_DoesNotModifyInput(t *testing.T) {
	txs, instruments := history()
	reversed := make([]Transaction, len(txs))
	for i, tx := range txs {
		reversed[len(txs)-1-i] = tx
	}
	before := append([]Transaction(nil), reversed...)

	Process(reversed, instruments)

	assert.Equal(t, before, reversed)
}

func TestRealizedPL_HoldingDays(t *testing.T) {
	r := RealizedPL{OpenDate: day0, CloseDate: day0.Add(50 * time.Hour)}
	assert.Equal(t, 50*time.Hour, r.HoldingPeriod())
	assert.Equal(t, 2, r.HoldingDays())
}

func TestPosition_UnrealizedPL(t *testing.T) {
	short := Position{Quantity: Q(-1), CostBasis: M(-100)}
	_, ok := short.UnrealizedPL(M(1))
	assert.False(t, ok)

	long := Position{Quantity: Q(10), CostBasis: M(100)}
	pl, ok := long.UnrealizedPL(M(12))
	assert.True(t, ok)
	assert.Equal(t, "20", pl.String())
}

// history is a mixed log with distinct timestamps.
func history() ([]Transaction, Catalog) {
	msft, call, instruments := testInstruments()
	put := NewOption(NewID(), "MSFT", date.New(2026, time.March, 20), M(380), Put, 100)
	instruments.Add(put)
	return []Transaction{
		trade(msft, 0, Buy, "100", "410.5", "1"),
		trade(call, 1, SellToOpen, "1", "2.35", "0.65"),
		trade(put, 2, SellToOpen, "2", "3.1", "1.3"),
		trade(msft, 3, Buy, "50", "402", "1"),
		trade(msft, 4, Sell, "120", "415", "3"),
		trade(put, 5, BuyToClose, "1", "0.8", "0.65"),
		trade(call, 6, BuyToClose, "1", "4.2", "0.65"),
		trade(msft, 7, Sell, "40", "420", "1"),
	}, instruments
}
