package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/ledger"
)

// SummaryMarkdown renders the P/L summary, and the quantities that could not
// be matched if any.
func SummaryMarkdown(out *ledger.Output, instruments ledger.Catalog, currency string) string {
	currency = currencyOr(currency)
	var b strings.Builder
	s := out.Summary

	fmt.Fprint(&b, "# P/L Summary\n\n")
	fmt.Fprintln(&b, "| | |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Equity Realized | %s |\n", s.EquityRealized.SignedFormat(currency))
	fmt.Fprintf(&b, "| Option Realized | %s |\n", s.OptionRealized.SignedFormat(currency))
	fmt.Fprintf(&b, "| Total Realized | %s |\n", s.TotalRealized.SignedFormat(currency))
	fmt.Fprintf(&b, "| Unrealized | %s |\n", s.TotalUnrealized.SignedFormat(currency))
	fmt.Fprintf(&b, "| **Total P/L** | **%s** |\n\n", s.TotalPL().SignedFormat(currency))

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "## Unmatched\n\n")
		fmt.Fprintln(w, "| Transaction | Date | Instrument | Action | Quantity |")
		fmt.Fprintln(w, "|:---|:---|:---|:---|---:|")
		for _, sf := range out.Shortfalls {
			fmt.Fprintf(w, "| %s | %s | %s | %s | %s |\n",
				shortID(sf.TransactionID),
				day(sf.Timestamp),
				name(instruments, sf.InstrumentID),
				sf.Action,
				sf.Quantity,
			)
		}
		fmt.Fprintln(w)
		return len(out.Shortfalls) > 0
	})
	return b.String()
}

// Report renders the whole output: summary, positions, one section per
// ticker, and the realized records.
func Report(out *ledger.Output, instruments ledger.Catalog, currency string) string {
	var b strings.Builder
	b.WriteString(SummaryMarkdown(out, instruments, currency))
	b.WriteString("\n")
	b.WriteString(PositionsMarkdown(out, instruments, currency))
	for _, symbol := range out.Symbols() {
		b.WriteString("\n")
		b.WriteString(UnderlierMarkdown(out.Underliers[symbol], out.RealizedFor(symbol, instruments), instruments, currency))
	}
	b.WriteString("\n")
	b.WriteString(RealizedMarkdown("", out.RealizedPLs, instruments, currency))
	return b.String()
}
