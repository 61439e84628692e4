package cmd

import (
	"encoding/json"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/etnz/ledger"
	"github.com/etnz/ledger/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queryFixture() (queryDocument, ledger.Catalog) {
	msft := ledger.NewEquity(ledger.NewID(), "MSFT")
	instruments := ledger.NewCatalog(msft)
	on := time.Date(2026, time.February, 17, 15, 30, 0, 0, time.UTC)
	txs := []ledger.Transaction{
		ledger.NewTransaction(msft.ID(), on, ledger.Buy, ledger.Q(100), ledger.M(10), ledger.M(0)),
		ledger.NewTransaction(msft.ID(), on.Add(time.Hour), ledger.Sell, ledger.Q(40), ledger.M(15), ledger.M(0)),
		ledger.NewTransaction(msft.ID(), on.Add(2*time.Hour), ledger.Buy, ledger.Q(10), ledger.MustM("10.123456789012345678"), ledger.M(0)),
	}
	return queryDocument{
		Instruments:  slices.Collect(instruments.All()),
		Transactions: txs,
		Output:       ledger.Process(txs, instruments),
	}, instruments
}

func TestQuery(t *testing.T) {
	doc, _ := queryFixture()

	val, err := query(doc, "$.output.summary.totalRealized")
	require.NoError(t, err)
	assert.Equal(t, json.Number("200"), val)

	val, err = query(doc, "$.transactions[2].price")
	require.NoError(t, err)
	assert.Equal(t, json.Number("10.123456789012345678"), val, "decimals keep their exact text")

	val, err = query(doc, "$.instruments[0].symbol")
	require.NoError(t, err)
	assert.Equal(t, "MSFT", val)

	_, err = query(doc, "$.output[")
	assert.Error(t, err)
}

func TestHTMLPage(t *testing.T) {
	doc, instruments := queryFixture()
	page, err := htmlPage("P&L", renderer.Report(doc.Output, instruments, "USD"))
	require.NoError(t, err)

	html := string(page)
	assert.Contains(t, html, "<title>P&amp;L</title>")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, ">MSFT</td>")
	assert.True(t, strings.HasSuffix(html, "</html>\n"))
}
