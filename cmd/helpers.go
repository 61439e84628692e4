package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/etnz/ledger"
	"github.com/etnz/ledger/date"
)

// parseWhen parses a transaction time: an RFC 3339 timestamp, or a day
// (the transaction is then at midnight UTC). Empty means now.
func parseWhen(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := date.Parse(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, want a date (YYYY-MM-DD) or an RFC 3339 timestamp", s)
	}
	return d.Time(), nil
}

// parseTags splits a comma separated list of tags.
func parseTags(s string) []string {
	var tags []string
	for _, tag := range strings.Split(s, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// parseRange builds the date range selected by the period, start and end
// flags. Without any of them, the range is unbounded.
func parseRange(period, start, end string, today date.Date) (date.Range, error) {
	if period == "" && start == "" && end == "" {
		return date.Range{}, nil
	}
	to := today
	if end != "" {
		d, err := date.Parse(end)
		if err != nil {
			return date.Range{}, err
		}
		to = d
	}
	if start != "" {
		from, err := date.Parse(start)
		if err != nil {
			return date.Range{}, err
		}
		return date.Range{From: from, To: to}, nil
	}
	if period == "" {
		return date.Range{To: to}, nil
	}
	p, err := date.ParsePeriod(period)
	if err != nil {
		return date.Range{}, err
	}
	return date.NewRange(to, p), nil
}

// findTransaction returns the only transaction whose id starts with prefix.
func findTransaction(txs []ledger.Transaction, prefix string) (ledger.Transaction, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return ledger.Transaction{}, fmt.Errorf("%w: empty id", ledger.ErrUnknownTransaction)
	}
	var found []ledger.Transaction
	for _, tx := range txs {
		if strings.HasPrefix(tx.ID.String(), prefix) {
			found = append(found, tx)
		}
	}
	switch len(found) {
	case 0:
		return ledger.Transaction{}, fmt.Errorf("%w: %s", ledger.ErrUnknownTransaction, prefix)
	case 1:
		return found[0], nil
	default:
		return ledger.Transaction{}, fmt.Errorf("id %q is ambiguous, it matches %d transactions", prefix, len(found))
	}
}
