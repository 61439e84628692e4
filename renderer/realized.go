package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/ledger"
)

// RealizedMarkdown renders realized P/L records with their total. title
// describes the selection, e.g. the period.
func RealizedMarkdown(title string, realized []ledger.RealizedPL, instruments ledger.Catalog, currency string) string {
	currency = currencyOr(currency)
	var b strings.Builder

	fmt.Fprint(&b, "# Realized P/L")
	if title != "" {
		fmt.Fprintf(&b, " %s", title)
	}
	fmt.Fprint(&b, "\n\n")
	if len(realized) == 0 {
		fmt.Fprintln(&b, "Nothing realized.")
		return b.String()
	}
	writeRealized(&b, realized, instruments, currency)
	return b.String()
}

func writeRealized(w io.Writer, realized []ledger.RealizedPL, instruments ledger.Catalog, currency string) {
	fmt.Fprintln(w, "| Instrument | Opened | Closed | Days | Quantity | Proceeds | Cost Basis | P/L |")
	fmt.Fprintln(w, "|:---|:---|:---|---:|---:|---:|---:|---:|")
	var total ledger.Money
	for _, r := range realized {
		fmt.Fprintf(w, "| %s | %s | %s | %d | %s | %s | %s | %s |\n",
			name(instruments, r.InstrumentID),
			day(r.OpenDate),
			day(r.CloseDate),
			r.HoldingDays(),
			r.Quantity,
			r.Proceeds.Format(currency),
			r.CostBasis.Format(currency),
			r.PL.SignedFormat(currency),
		)
		total = total.Add(r.PL)
	}
	fmt.Fprintf(w, "| **%s** | | | | | | | **%s** |\n\n", "Total", total.SignedFormat(currency))
}
