// Package ledger keeps a profit and loss ledger of equity and option trades.
//
// The durable state is small: a catalog of instruments (equities and option
// contracts) and an append-only log of transactions. Everything else is
// derived by Process, from scratch, every time:
//   - Lots: each buy opens an equity lot, each buy or sell to open opens an
//     option lot. Sells and closes consume the oldest open lots first (FIFO).
//   - Positions: the open lots of an instrument collapsed into a quantity, a
//     cost basis and an average price. Long and short option contracts net.
//   - Realized P/L: one record per equity lot consumed by a sell. Options use
//     a cash basis: the premium is realized when the contract is opened, and
//     again when it is closed.
//   - Summaries per underlying ticker, and for the whole ledger.
//
// Process is a pure function of its inputs. Store wraps the catalog and the
// log, serializes mutations and persists them through a Repository: a JSONL
// file (JSONLFile) or a SQLite database (package sqlstore).
//
// This package serves as the foundational logic for the plg command-line tool.
package ledger
