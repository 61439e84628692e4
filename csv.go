package ledger

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/ledger/date"
	"github.com/gocarina/gocsv"
)

// instrumentRow is a line of the instruments CSV file.
type instrumentRow struct {
	ID               string `csv:"id"`
	Type             string `csv:"type"`
	Symbol           string `csv:"symbol"`
	UnderlyingSymbol string `csv:"underlyingSymbol"`
	Expiry           string `csv:"expiry"`
	Strike           string `csv:"strike"`
	CallPut          string `csv:"callPut"`
	Multiplier       string `csv:"multiplier"`
}

// transactionRow is a line of the transactions CSV file.
type transactionRow struct {
	ID                   string `csv:"id"`
	InstrumentID         string `csv:"instrumentId"`
	Timestamp            string `csv:"timestamp"`
	Action               string `csv:"action"`
	Quantity             string `csv:"quantity"`
	Price                string `csv:"price"`
	Fees                 string `csv:"fees"`
	Notes                string `csv:"notes"`
	Tags                 string `csv:"tags"` // joined with ';'
	LinkGroupID          string `csv:"linkGroupId"`
	ConsumedByAssignment string `csv:"consumedByAssignment"`
}

const tagSeparator = ";"

// ExportCSV writes the catalog and the transactions as two CSV files.
// Decimals are written in their exact text form.
func ExportCSV(instrumentsW, transactionsW io.Writer, instruments Catalog, transactions []Transaction) error {
	irows := make([]*instrumentRow, 0, len(instruments))
	for inst := range instruments.All() {
		row := &instrumentRow{ID: inst.ID().String(), Type: string(inst.Kind())}
		switch inst := inst.(type) {
		case Equity:
			row.Symbol = inst.Symbol()
		case Option:
			row.UnderlyingSymbol = inst.Underlying()
			row.Expiry = inst.Expiry().String()
			row.Strike = inst.Strike().String()
			row.CallPut = string(inst.CallPut())
			row.Multiplier = strconv.Itoa(inst.Multiplier())
		}
		irows = append(irows, row)
	}
	if err := gocsv.Marshal(irows, instrumentsW); err != nil {
		return fmt.Errorf("cannot export instruments: %w", err)
	}

	trows := make([]*transactionRow, 0, len(transactions))
	for _, tx := range sortByTime(transactions) {
		row := &transactionRow{
			ID:                   tx.ID.String(),
			InstrumentID:         tx.InstrumentID.String(),
			Timestamp:            tx.Timestamp.UTC().Format(time.RFC3339Nano),
			Action:               tx.Action.String(),
			Quantity:             tx.Quantity.String(),
			Price:                tx.Price.String(),
			Fees:                 tx.Fees.String(),
			Notes:                tx.Notes,
			Tags:                 strings.Join(tx.Tags, tagSeparator),
			ConsumedByAssignment: strconv.FormatBool(tx.ConsumedByAssignment),
		}
		if tx.IsLinked() {
			row.LinkGroupID = tx.LinkGroupID.String()
		}
		trows = append(trows, row)
	}
	if err := gocsv.Marshal(trows, transactionsW); err != nil {
		return fmt.Errorf("cannot export transactions: %w", err)
	}
	return nil
}

// ExportCSVFiles is ExportCSV to files. Both files are fully written to
// temporary files before either one is replaced, so a failed export leaves
// the previous files untouched.
func ExportCSVFiles(instrumentsPath, transactionsPath string, instruments Catalog, transactions []Transaction) error {
	var ibuf, tbuf bytes.Buffer
	if err := ExportCSV(&ibuf, &tbuf, instruments, transactions); err != nil {
		return err
	}
	itmp, err := writeTemp(instrumentsPath, func(w io.Writer) error {
		_, err := ibuf.WriteTo(w)
		return err
	})
	if err != nil {
		return err
	}
	ttmp, err := writeTemp(transactionsPath, func(w io.Writer) error {
		_, err := tbuf.WriteTo(w)
		return err
	})
	if err != nil {
		os.Remove(itmp)
		return err
	}
	if err := replace(itmp, instrumentsPath); err != nil {
		os.Remove(ttmp)
		return err
	}
	return replace(ttmp, transactionsPath)
}

// Import is the result of a CSV import.
type Import struct {
	Instruments  Catalog
	Transactions []Transaction
	// Skipped lists the rows that could not be parsed.
	Skipped []SkippedRow
}

// SkippedRow is a CSV row ignored by an import.
type SkippedRow struct {
	File string // "instruments" or "transactions"
	Row  int    // 1 based, the header excluded
	Err  error
}

func (s SkippedRow) String() string {
	return fmt.Sprintf("%s row %d: %v", s.File, s.Row, s.Err)
}

// ImportCSV reads files produced by ExportCSV. Rows that cannot be parsed
// are skipped and reported, so are the transactions on a skipped instrument;
// only unreadable files are an error.
func ImportCSV(instrumentsR, transactionsR io.Reader) (*Import, error) {
	var irows []*instrumentRow
	if err := gocsv.Unmarshal(instrumentsR, &irows); err != nil {
		return nil, fmt.Errorf("cannot read instruments: %w", err)
	}
	var trows []*transactionRow
	if err := gocsv.Unmarshal(transactionsR, &trows); err != nil {
		return nil, fmt.Errorf("cannot read transactions: %w", err)
	}

	imp := &Import{Instruments: NewCatalog()}
	dropped := make(map[ID]int) // instrument id -> skipped row
	for i, row := range irows {
		inst, err := row.instrument()
		if err != nil {
			imp.Skipped = append(imp.Skipped, SkippedRow{File: "instruments", Row: i + 1, Err: err})
			if id, err := ParseID(row.ID); err == nil {
				dropped[id] = i + 1
			}
			continue
		}
		imp.Instruments.Add(inst)
	}
	for i, row := range trows {
		tx, err := row.transaction()
		if err == nil {
			if r, ok := dropped[tx.InstrumentID]; ok {
				if _, ok := imp.Instruments[tx.InstrumentID]; !ok {
					err = fmt.Errorf("%w: %s, its row %d was skipped", ErrUnknownInstrument, tx.InstrumentID, r)
				}
			}
		}
		if err != nil {
			imp.Skipped = append(imp.Skipped, SkippedRow{File: "transactions", Row: i + 1, Err: err})
			continue
		}
		imp.Transactions = append(imp.Transactions, tx)
	}
	return imp, nil
}

func (row *instrumentRow) instrument() (Instrument, error) {
	id, err := ParseID(row.ID)
	if err != nil {
		return nil, err
	}
	kind, err := ParseKind(row.Type)
	if err != nil {
		return nil, err
	}
	if kind == KindEquity {
		if row.Symbol == "" {
			return nil, errors.New("missing symbol")
		}
		return NewEquity(id, row.Symbol), nil
	}

	if row.UnderlyingSymbol == "" {
		return nil, errors.New("missing underlying symbol")
	}
	expiry, err := parseExpiry(row.Expiry)
	if err != nil {
		return nil, err
	}
	strike, err := ParseMoney(row.Strike)
	if err != nil {
		return nil, fmt.Errorf("invalid strike %q: %w", row.Strike, err)
	}
	callPut, err := ParseCallPut(row.CallPut)
	if err != nil {
		return nil, err
	}
	multiplier, err := strconv.Atoi(row.Multiplier)
	if err != nil {
		return nil, fmt.Errorf("invalid multiplier %q: %w", row.Multiplier, err)
	}
	return NewOption(id, row.UnderlyingSymbol, expiry, strike, callPut, multiplier), nil
}

// parseExpiry accepts a plain date or a full ISO-8601 timestamp.
func parseExpiry(s string) (date.Date, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return date.FromTime(t.UTC()), nil
	}
	return date.Parse(s)
}

func (row *transactionRow) transaction() (Transaction, error) {
	var tx Transaction
	var err error
	if tx.ID, err = ParseID(row.ID); err != nil {
		return tx, err
	}
	if tx.InstrumentID, err = ParseID(row.InstrumentID); err != nil {
		return tx, err
	}
	if tx.Timestamp, err = time.Parse(time.RFC3339, row.Timestamp); err != nil {
		return tx, fmt.Errorf("invalid timestamp %q: %w", row.Timestamp, err)
	}
	if tx.Action, err = ParseAction(row.Action); err != nil {
		return tx, err
	}
	if tx.Quantity, err = ParseQuantity(row.Quantity); err != nil {
		return tx, fmt.Errorf("invalid quantity %q: %w", row.Quantity, err)
	}
	if tx.Price, err = ParseMoney(row.Price); err != nil {
		return tx, fmt.Errorf("invalid price %q: %w", row.Price, err)
	}
	if tx.Fees, err = ParseMoney(row.Fees); err != nil {
		return tx, fmt.Errorf("invalid fees %q: %w", row.Fees, err)
	}
	tx.Notes = row.Notes
	for _, tag := range strings.Split(row.Tags, tagSeparator) {
		if tag != "" {
			tx.Tags = append(tx.Tags, tag)
		}
	}
	if row.LinkGroupID != "" {
		if tx.LinkGroupID, err = ParseID(row.LinkGroupID); err != nil {
			return tx, err
		}
	}
	tx.ConsumedByAssignment = strings.EqualFold(row.ConsumedByAssignment, "true")
	return tx, nil
}
