package ledger

import (
	"fmt"

	"github.com/google/uuid"
)

// ID identifies instruments, transactions, lots and link groups.
type ID = uuid.UUID

// NilID is the zero ID, used for "no link group".
var NilID = uuid.Nil

// NewID returns a fresh random ID.
func NewID() ID { return uuid.New() }

// ParseID parses the canonical text form of an ID.
func ParseID(s string) (ID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return NilID, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return id, nil
}

// MustParseID is like ParseID but panics on error.
func MustParseID(s string) ID {
	id, err := ParseID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// lotNamespace seeds lot ids, a lot id only depends on the transaction that opened it.
var lotNamespace = uuid.MustParse("6f1d2a8e-44c1-4a57-9d0b-8f3e5c2b7a10")

func lotID(source ID) ID { return uuid.NewSHA1(lotNamespace, source[:]) }
