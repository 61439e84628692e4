package ledger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/etnz/ledger/date"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// recordType identifies the kind of record held by a line of a ledger file.
type recordType string

const (
	recordEquity      recordType = "equity"
	recordOption      recordType = "option"
	recordTransaction recordType = "transaction"
)

func (e Equity) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("type", recordEquity)
	w.Append("id", e.id)
	w.Append("symbol", e.symbol)
	return w.MarshalJSON()
}

func (o Option) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("type", recordOption)
	w.Append("id", o.id)
	w.Append("underlying", o.underlying)
	w.Append("expiry", o.expiry)
	w.Append("strike", o.strike)
	w.Append("callPut", o.callPut)
	w.Append("multiplier", o.Multiplier())
	return w.MarshalJSON()
}

func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("type", recordTransaction)
	w.Append("id", t.ID)
	w.Append("instrument", t.InstrumentID)
	w.Append("timestamp", t.Timestamp.UTC().Format(time.RFC3339Nano))
	w.Append("action", t.Action)
	w.Append("quantity", t.Quantity)
	w.Append("price", t.Price)
	w.Append("fees", t.Fees)
	w.Optional("notes", t.Notes)
	w.Optional("tags", t.Tags)
	w.Optional("linkGroup", t.LinkGroupID)
	w.Optional("consumedByAssignment", t.ConsumedByAssignment)
	return w.MarshalJSON()
}

// transactionRecord is the decoding form of a transaction line.
type transactionRecord struct {
	ID                   ID        `json:"id"`
	InstrumentID         ID        `json:"instrument"`
	Timestamp            time.Time `json:"timestamp"`
	Action               Action    `json:"action"`
	Quantity             Quantity  `json:"quantity"`
	Price                Money     `json:"price"`
	Fees                 Money     `json:"fees"`
	Notes                string    `json:"notes"`
	Tags                 []string  `json:"tags"`
	LinkGroupID          ID        `json:"linkGroup"`
	ConsumedByAssignment bool      `json:"consumedByAssignment"`
}

func (t *Transaction) UnmarshalJSON(data []byte) error {
	var r transactionRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*t = Transaction(r)
	return nil
}

// decodeInstrument decodes an equity or an option record.
func decodeInstrument(typ recordType, data []byte) (Instrument, error) {
	switch typ {
	case recordEquity:
		var r struct {
			ID     ID     `json:"id"`
			Symbol string `json:"symbol"`
		}
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, err
		}
		if r.Symbol == "" {
			return nil, fmt.Errorf("equity %s has no symbol", r.ID)
		}
		return NewEquity(r.ID, r.Symbol), nil
	case recordOption:
		var r struct {
			ID         ID        `json:"id"`
			Underlying string    `json:"underlying"`
			Expiry     date.Date `json:"expiry"`
			Strike     Money     `json:"strike"`
			CallPut    CallPut   `json:"callPut"`
			Multiplier int       `json:"multiplier"`
		}
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, err
		}
		if r.Underlying == "" {
			return nil, fmt.Errorf("option %s has no underlying", r.ID)
		}
		return NewOption(r.ID, r.Underlying, r.Expiry, r.Strike, r.CallPut, r.Multiplier), nil
	default:
		return nil, fmt.Errorf("unknown instrument type %q", typ)
	}
}

// DecodeLedger decodes instruments and transactions from a stream of JSONL
// data. Each line holds one record, identified by its "type" field.
// Transactions are returned in file order.
func DecodeLedger(r io.Reader) (Catalog, []Transaction, error) {
	instruments := NewCatalog()
	var transactions []Transaction
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}

		var identifier struct {
			Type recordType `json:"type"`
		}
		if err := json.Unmarshal(lineBytes, &identifier); err != nil {
			return nil, nil, fmt.Errorf("line %d: could not identify record %q: %w", line, string(lineBytes), err)
		}

		switch identifier.Type {
		case recordEquity, recordOption:
			inst, err := decodeInstrument(identifier.Type, lineBytes)
			if err != nil {
				return nil, nil, fmt.Errorf("line %d: %w", line, err)
			}
			if _, exists := instruments[inst.ID()]; exists {
				return nil, nil, fmt.Errorf("line %d: duplicate instrument id %s", line, inst.ID())
			}
			instruments.Add(inst)
		case recordTransaction:
			var tx Transaction
			if err := json.Unmarshal(lineBytes, &tx); err != nil {
				return nil, nil, fmt.Errorf("line %d: %w", line, err)
			}
			transactions = append(transactions, tx)
		default:
			return nil, nil, fmt.Errorf("line %d: unknown record type %q", line, identifier.Type)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("error reading from input: %w", err)
	}
	return instruments, transactions, nil
}

// EncodeRecord marshals a single instrument or transaction to JSON and writes
// it to the writer, followed by a newline, in JSONL format.
func EncodeRecord(w io.Writer, record json.Marshaler) error {
	data, err := record.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

// EncodeLedger writes the instruments, then the transactions in chronological
// order, in JSONL format. The sort is stable: transactions with the same
// timestamp keep their relative order.
func EncodeLedger(w io.Writer, instruments Catalog, transactions []Transaction) error {
	for inst := range instruments.All() {
		m, ok := inst.(json.Marshaler)
		if !ok {
			return fmt.Errorf("instrument %s cannot be encoded", inst)
		}
		if err := EncodeRecord(w, m); err != nil {
			return err
		}
	}
	for _, tx := range sortByTime(transactions) {
		if err := EncodeRecord(w, tx); err != nil {
			return err
		}
	}
	return nil
}
