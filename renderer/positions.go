package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/ledger"
)

// PositionsMarkdown renders the positions: equities first, then options.
func PositionsMarkdown(out *ledger.Output, instruments ledger.Catalog, currency string) string {
	currency = currencyOr(currency)
	var b strings.Builder

	fmt.Fprint(&b, "# Positions\n\n")
	if len(out.Positions) == 0 {
		fmt.Fprintln(&b, "No open positions.")
		return b.String()
	}
	writePositions(&b, out.Positions, instruments, currency)
	return b.String()
}

func writePositions(w io.Writer, positions []ledger.Position, instruments ledger.Catalog, currency string) {
	fmt.Fprintln(w, "| Instrument | Kind | Quantity | Average Price | Cost Basis |")
	fmt.Fprintln(w, "|:---|:---|---:|---:|---:|")
	for _, p := range positions {
		quantity := p.Quantity.String()
		if p.Kind == ledger.KindOption && p.Quantity.IsNegative() {
			quantity += " (short)"
		}
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s |\n",
			name(instruments, p.InstrumentID),
			p.Kind,
			quantity,
			p.AveragePrice.Format(currency),
			p.CostBasis.Format(currency),
		)
	}
	fmt.Fprintln(w)
}

// UnderlierMarkdown renders everything held and realized on a ticker.
func UnderlierMarkdown(u ledger.UnderlierSummary, realized []ledger.RealizedPL, instruments ledger.Catalog, currency string) string {
	currency = currencyOr(currency)
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", u.Symbol)
	fmt.Fprintln(&b, "| | |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Shares | %s |\n", u.TotalEquityShares())
	fmt.Fprintf(&b, "| Average Cost | %s |\n", u.AverageEquityCost().Format(currency))
	fmt.Fprintf(&b, "| Cost Basis | %s |\n", u.TotalEquityCostBasis().Format(currency))
	fmt.Fprintf(&b, "| Open Option Contracts | %d |\n", u.OpenOptionContracts())
	fmt.Fprintf(&b, "| Realized P/L | %s |\n\n", u.Realized.SignedFormat(currency))

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "## Options\n\n")
		writePositions(w, u.Options, instruments, currency)
		return len(u.Options) > 0
	})
	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "## Realized\n\n")
		writeRealized(w, realized, instruments, currency)
		return len(realized) > 0
	})
	return b.String()
}
