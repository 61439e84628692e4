package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/ledger"
)

// Transaction renders a transaction to a string.
func Transaction(tx ledger.Transaction, instruments ledger.Catalog, currency string) string {
	currency = currencyOr(currency)
	what := name(instruments, tx.InstrumentID)
	price := tx.Price.Format(currency)
	switch tx.Action {
	case ledger.Buy:
		return fmt.Sprintf("Bought %s %s at %s", tx.Quantity, what, price)
	case ledger.Sell:
		return fmt.Sprintf("Sold %s %s at %s", tx.Quantity, what, price)
	case ledger.BuyToOpen:
		return fmt.Sprintf("Bought to open %s %s at %s", tx.Quantity, what, price)
	case ledger.SellToOpen:
		return fmt.Sprintf("Sold to open %s %s at %s", tx.Quantity, what, price)
	case ledger.BuyToClose:
		if tx.ConsumedByAssignment {
			return fmt.Sprintf("Assigned %s %s", tx.Quantity, what)
		}
		return fmt.Sprintf("Bought to close %s %s at %s", tx.Quantity, what, price)
	case ledger.SellToClose:
		return fmt.Sprintf("Sold to close %s %s at %s", tx.Quantity, what, price)
	default:
		return fmt.Sprintf("%s %s %s", tx.Action, tx.Quantity, what)
	}
}

// TransactionsMarkdown renders the transaction log, oldest first.
func TransactionsMarkdown(txs []ledger.Transaction, instruments ledger.Catalog, currency string) string {
	currency = currencyOr(currency)
	var b strings.Builder

	fmt.Fprint(&b, "# Transactions\n\n")
	if len(txs) == 0 {
		fmt.Fprintln(&b, "No transactions.")
		return b.String()
	}
	fmt.Fprintln(&b, "| ID | Date | Action | Instrument | Quantity | Price | Fees | Net | Notes |")
	fmt.Fprintln(&b, "|:---|:---|:---|:---|---:|---:|---:|---:|:---|")
	for _, tx := range txs {
		notes := tx.Notes
		if len(tx.Tags) > 0 {
			notes = strings.TrimSpace(notes + " #" + strings.Join(tx.Tags, " #"))
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			shortID(tx.ID),
			day(tx.Timestamp),
			tx.Action,
			name(instruments, tx.InstrumentID),
			tx.Quantity,
			tx.Price.Format(currency),
			tx.Fees.Format(currency),
			tx.NetAmount().Format(currency),
			cell(notes),
		)
	}
	return b.String()
}
