package ledger

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

var (
	// ErrInvalidTransaction is returned when a transaction breaks a field constraint.
	ErrInvalidTransaction = errors.New("invalid transaction")
	// ErrUnknownInstrument is returned when an instrument id is not in the catalog.
	ErrUnknownInstrument = errors.New("unknown instrument")
	// ErrUnknownTransaction is returned when a transaction id is not in the log.
	ErrUnknownTransaction = errors.New("unknown transaction")
)

// AssignmentTag marks the transactions generated by an option assignment.
const AssignmentTag = "assignment"

// Transaction is an immutable record of a trade.
type Transaction struct {
	ID           ID
	InstrumentID ID
	Timestamp    time.Time
	Action       Action
	Quantity     Quantity // shares or contracts
	Price        Money    // per share or per contract
	Fees         Money
	Notes        string
	Tags         []string
	// LinkGroupID ties together transactions generated together, NilID otherwise.
	LinkGroupID ID
	// ConsumedByAssignment marks the option close generated by an assignment.
	ConsumedByAssignment bool
}

// NewTransaction creates a transaction with a fresh id.
func NewTransaction(instrument ID, on time.Time, action Action, quantity Quantity, price, fees Money) Transaction {
	return Transaction{
		ID:           NewID(),
		InstrumentID: instrument,
		Timestamp:    on,
		Action:       action,
		Quantity:     quantity,
		Price:        price,
		Fees:         fees,
	}
}

// TotalAmount is quantity times price, fees excluded.
func (t Transaction) TotalAmount() Money { return t.Price.Mul(t.Quantity) }

// NetAmount is the total amount with fees added on buys and deducted on sells.
func (t Transaction) NetAmount() Money {
	if t.Action.IsBuy() {
		return t.TotalAmount().Add(t.Fees)
	}
	return t.TotalAmount().Sub(t.Fees)
}

// IsLinked reports whether the transaction belongs to a link group.
func (t Transaction) IsLinked() bool { return t.LinkGroupID != NilID }

// HasTag reports whether the transaction carries this tag.
func (t Transaction) HasTag(tag string) bool { return slices.Contains(t.Tags, tag) }

// Clone returns a copy that shares nothing with t.
func (t Transaction) Clone() Transaction {
	t.Tags = slices.Clone(t.Tags)
	return t
}

// Equal reports whether both transactions hold the same values.
func (t Transaction) Equal(o Transaction) bool {
	return t.ID == o.ID &&
		t.InstrumentID == o.InstrumentID &&
		t.Timestamp.Equal(o.Timestamp) &&
		t.Action == o.Action &&
		t.Quantity.Equal(o.Quantity) &&
		t.Price.Equal(o.Price) &&
		t.Fees.Equal(o.Fees) &&
		t.Notes == o.Notes &&
		slices.Equal(t.Tags, o.Tags) &&
		t.LinkGroupID == o.LinkGroupID &&
		t.ConsumedByAssignment == o.ConsumedByAssignment
}

// Validate checks the transaction fields. When instruments is not nil, it also
// checks that the instrument exists and that the action applies to its kind.
func (t Transaction) Validate(instruments Catalog) error {
	if t.ID == NilID {
		return fmt.Errorf("%w: missing id", ErrInvalidTransaction)
	}
	if _, err := ParseAction(string(t.Action)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}
	if t.Timestamp.IsZero() {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidTransaction)
	}
	if !t.Quantity.IsPositive() {
		return fmt.Errorf("%w: quantity must be positive, got %s", ErrInvalidTransaction, t.Quantity)
	}
	if t.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative, got %s", ErrInvalidTransaction, t.Price)
	}
	if t.Fees.IsNegative() {
		return fmt.Errorf("%w: fees must not be negative, got %s", ErrInvalidTransaction, t.Fees)
	}
	for _, tag := range t.Tags {
		if tag == "" || strings.Contains(tag, tagSeparator) {
			return fmt.Errorf("%w: invalid tag %q", ErrInvalidTransaction, tag)
		}
	}
	if instruments == nil {
		return nil
	}
	inst, ok := instruments[t.InstrumentID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownInstrument, t.InstrumentID)
	}
	if inst.Kind() != t.Action.Kind() {
		return fmt.Errorf("%w: cannot %s %s instrument %s", ErrInvalidTransaction, t.Action, inst.Kind(), inst)
	}
	return nil
}
