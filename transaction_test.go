package ledger

import (
	"testing"
	"time"

	"github.com/etnz/ledger/date"
	"github.com/stretchr/testify/assert"
)

func TestTransaction_NetAmount(t *testing.T) {
	msft := NewEquity(NewID(), "MSFT")
	tests := []struct {
		action Action
		want   string
	}{
		{Buy, "1001.5"},
		{BuyToOpen, "1001.5"},
		{BuyToClose, "1001.5"},
		{Sell, "998.5"},
		{SellToOpen, "998.5"},
		{SellToClose, "998.5"},
	}
	for _, tt := range tests {
		t.Run(tt.action.String(), func(t *testing.T) {
			tx := trade(msft, 0, tt.action, "10", "100", "1.5")
			assert.Equal(t, "1000", tx.TotalAmount().String())
			assert.Equal(t, tt.want, tx.NetAmount().String())
		})
	}
}

func TestTransaction_Validate(t *testing.T) {
	msft := NewEquity(NewID(), "MSFT")
	call := NewOption(NewID(), "MSFT", date.New(2026, time.February, 20), M(405), Call, 0)
	instruments := NewCatalog(msft, call)
	valid := trade(msft, 0, Buy, "10", "100", "1")

	modify := func(f func(*Transaction)) Transaction {
		tx := valid
		f(&tx)
		return tx
	}

	tests := []struct {
		name string
		tx   Transaction
		want error
	}{
		{"valid", valid, nil},
		{"valid option", trade(call, 0, SellToOpen, "1", "1", "0"), nil},
		{"free trade", trade(msft, 0, Buy, "1", "0", "0"), nil},
		{"no id", modify(func(tx *Transaction) { tx.ID = NilID }), ErrInvalidTransaction},
		{"no timestamp", modify(func(tx *Transaction) { tx.Timestamp = time.Time{} }), ErrInvalidTransaction},
		{"unknown action", modify(func(tx *Transaction) { tx.Action = "short" }), ErrInvalidTransaction},
		{"zero quantity", modify(func(tx *Transaction) { tx.Quantity = Q(0) }), ErrInvalidTransaction},
		{"negative quantity", modify(func(tx *Transaction) { tx.Quantity = Q(-1) }), ErrInvalidTransaction},
		{"negative price", modify(func(tx *Transaction) { tx.Price = M(-1) }), ErrInvalidTransaction},
		{"negative fees", modify(func(tx *Transaction) { tx.Fees = M(-1) }), ErrInvalidTransaction},
		{"tag with separator", modify(func(tx *Transaction) { tx.Tags = []string{"wheel;income"} }), ErrInvalidTransaction},
		{"empty tag", modify(func(tx *Transaction) { tx.Tags = []string{""} }), ErrInvalidTransaction},
		{"unknown instrument", modify(func(tx *Transaction) { tx.InstrumentID = NewID() }), ErrUnknownInstrument},
		{"option action on equity", modify(func(tx *Transaction) { tx.Action = BuyToOpen }), ErrInvalidTransaction},
		{"equity action on option", trade(call, 0, Sell, "1", "1", "0"), ErrInvalidTransaction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tx.Validate(instruments)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestTransaction_ValidateWithoutCatalog(t *testing.T) {
	tx := NewTransaction(NewID(), day0, Sell, Q(1), M(1), M(0))
	assert.NoError(t, tx.Validate(nil))
}

func TestTransaction_CloneAndEqual(t *testing.T) {
	tx := NewTransaction(NewID(), day0, Buy, Q(1), M(1), M(0))
	tx.Tags = []string{"income"}

	c := tx.Clone()
	assert.True(t, c.Equal(tx))

	c.Tags[0] = "other"
	assert.Equal(t, "income", tx.Tags[0])
	assert.False(t, c.Equal(tx))
}

func TestAction_Families(t *testing.T) {
	for _, a := range Actions {
		assert.NotEqual(t, a.IsEquity(), a.IsOption(), a)
		assert.NotEqual(t, a.IsBuy(), a.IsSell(), a)
		assert.NotEqual(t, a.IsOpening(), a.IsClosing(), a)
	}
	assert.Equal(t, KindEquity, Sell.Kind())
	assert.Equal(t, KindOption, SellToClose.Kind())
	assert.True(t, BuyToClose.closes(SellToOpen))
	assert.True(t, SellToClose.closes(BuyToOpen))
	assert.False(t, BuyToClose.closes(BuyToOpen))
	assert.False(t, SellToClose.closes(SellToOpen))
}

func TestParseAction(t *testing.T) {
	for _, a := range Actions {
		got, err := ParseAction(a.String())
		assert.NoError(t, err)
		assert.Equal(t, a, got)
	}
	for in, want := range map[string]Action{"buyToOpen": BuyToOpen, "sellToClose": SellToClose, "sto": SellToOpen} {
		got, err := ParseAction(in)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseAction("hold")
	assert.Error(t, err)

	_, err = Action("hold").MarshalText()
	assert.Error(t, err)
}
