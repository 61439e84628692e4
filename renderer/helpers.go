// Package renderer formats ledger data as markdown.
package renderer

import (
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/etnz/ledger"
)

// DefaultCurrency is used when no currency is configured.
const DefaultCurrency = "USD"

// ConditionalBlock let you fully write a block and decide at the end to print it or not.
// If the block function returns true, the content is printed to w, otherwise it is discarded.
func ConditionalBlock(w io.Writer, block func(io.Writer) bool) {
	bw := &bytes.Buffer{}
	if block(bw) {
		io.Copy(w, bw)
	}
}

func currencyOr(currency string) string {
	if currency == "" {
		return DefaultCurrency
	}
	return currency
}

// name returns the display name of the instrument with this id.
func name(instruments ledger.Catalog, id ledger.ID) string {
	if inst, ok := instruments[id]; ok {
		return inst.String()
	}
	return "unknown " + shortID(id)
}

// shortID is the prefix of an id used in tables.
func shortID(id ledger.ID) string { return id.String()[:8] }

func day(t time.Time) string { return t.Format("2006-01-02") }

// cell escapes the pipes of free text put in a table.
func cell(s string) string { return strings.ReplaceAll(s, "|", `\|`) }
