package cmd

import (
	"strings"
	"testing"
	"time"

	"github.com/etnz/ledger"
	"github.com/etnz/ledger/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWhen(t *testing.T) {
	now := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)

	got, err := parseWhen("", now)
	require.NoError(t, err)
	assert.Equal(t, now, got)

	got, err = parseWhen("2026-2-17", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.February, 17, 0, 0, 0, 0, time.UTC), got)

	got, err = parseWhen("2026-02-17T15:30:00-05:00", now)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, time.February, 17, 20, 30, 0, 0, time.UTC)))

	_, err = parseWhen("yesterday", now)
	assert.Error(t, err)
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"income", "wheel"}, parseTags(" income, ,wheel "))
	assert.Nil(t, parseTags(""))
}

func TestParseRange(t *testing.T) {
	today := date.New(2026, time.February, 18)

	r, err := parseRange("", "", "", today)
	require.NoError(t, err)
	assert.True(t, r.IsZero())

	r, err = parseRange("month", "", "", today)
	require.NoError(t, err)
	assert.Equal(t, date.Range{From: date.New(2026, time.February, 1), To: date.New(2026, time.February, 28)}, r)

	r, err = parseRange("month", "2026-01-15", "2026-01-31", today)
	require.NoError(t, err)
	assert.Equal(t, date.Range{From: date.New(2026, time.January, 15), To: date.New(2026, time.January, 31)}, r, "start overrides the period")

	r, err = parseRange("", "", "2026-01-31", today)
	require.NoError(t, err)
	assert.Equal(t, date.Range{To: date.New(2026, time.January, 31)}, r)

	_, err = parseRange("decade", "", "", today)
	assert.Error(t, err)
}

func TestFindTransaction(t *testing.T) {
	a := ledger.Transaction{ID: ledger.MustParseID("0b1a5f3c-6a4e-4f59-9a43-1d6f3c2e8a01")}
	b := ledger.Transaction{ID: ledger.MustParseID("0b1a5f3c-6a4e-4f59-9a43-1d6f3c2e8a02")}
	c := ledger.Transaction{ID: ledger.MustParseID("7c000000-6a4e-4f59-9a43-1d6f3c2e8a02")}
	txs := []ledger.Transaction{a, b, c}

	got, err := findTransaction(txs, "7C")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	got, err = findTransaction(txs, strings.ToUpper(b.ID.String()))
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = findTransaction(txs, "0b1a")
	assert.ErrorContains(t, err, "ambiguous")
	_, err = findTransaction(txs, "ff")
	assert.ErrorIs(t, err, ledger.ErrUnknownTransaction)
	_, err = findTransaction(txs, " ")
	assert.ErrorIs(t, err, ledger.ErrUnknownTransaction)
}

func TestRealizedIn(t *testing.T) {
	jan := ledger.RealizedPL{CloseDate: time.Date(2026, time.January, 31, 23, 0, 0, 0, time.UTC)}
	feb := ledger.RealizedPL{CloseDate: time.Date(2026, time.February, 1, 9, 0, 0, 0, time.UTC)}
	r := date.Range{From: date.New(2026, time.February, 1), To: date.New(2026, time.February, 28)}

	assert.Equal(t, []ledger.RealizedPL{feb}, realizedIn([]ledger.RealizedPL{jan, feb}, r))
	assert.Len(t, realizedIn([]ledger.RealizedPL{jan, feb}, date.Range{}), 2)
	assert.Equal(t, "for the month 2026-02", rangeTitle(r))
	assert.Equal(t, "", rangeTitle(date.Range{}))
	assert.Equal(t, "from 2026-02-03 to 2026-02-10", rangeTitle(date.Range{From: date.New(2026, time.February, 3), To: date.New(2026, time.February, 10)}))
	assert.Equal(t, "on 2026-02-03", rangeTitle(date.NewRange(date.New(2026, time.February, 3), date.Daily)))
	assert.Equal(t, "for the quarter 2026-Q1", rangeTitle(date.NewRange(date.New(2026, time.February, 3), date.Quarterly)))
	assert.Equal(t, "until 2026-02-10", rangeTitle(date.Range{To: date.New(2026, time.February, 10)}))
}
