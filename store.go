package ledger

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"sync"
	"time"

	"github.com/etnz/ledger/date"
	"github.com/rs/zerolog"
)

// Store holds the durable state of a ledger and serializes its mutations.
//
// Every mutation is persisted through the Repository before it becomes
// visible; if persisting fails, the in-memory state is left unchanged.
// Derived state is never kept: call Recompute after mutations to get a fresh
// Output.
type Store struct {
	repo Repository
	log  zerolog.Logger

	mu           sync.Mutex
	instruments  Catalog
	transactions []Transaction
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used by the store. Defaults to a disabled logger.
func WithLogger(log zerolog.Logger) StoreOption {
	return func(s *Store) { s.log = log }
}

// OpenStore loads the ledger from repo. If it cannot be loaded, the store
// starts from a sample catalog with no transactions; the failure is logged,
// not returned.
func OpenStore(ctx context.Context, repo Repository, opts ...StoreOption) *Store {
	s := &Store{repo: repo, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}

	instruments, transactions, err := repo.Load(ctx)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.log.Info().Msg("no ledger yet, starting from the sample catalog")
		instruments, transactions = sampleCatalog(), nil
	case err != nil:
		s.log.Error().Err(err).Msg("cannot load ledger, starting from the sample catalog")
		instruments, transactions = sampleCatalog(), nil
	default:
		s.log.Debug().Int("instruments", len(instruments)).Int("transactions", len(transactions)).Msg("ledger loaded")
	}
	s.instruments = instruments
	s.transactions = transactions
	return s
}

// sampleCatalog is the state of a fresh ledger.
func sampleCatalog() Catalog {
	return NewCatalog(NewEquity(NewID(), "AAPL"))
}

// Instruments returns a copy of the catalog.
func (s *Store) Instruments() Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.instruments.Clone()
}

// Instrument returns the instrument with this id.
func (s *Store) Instrument(id ID) (Instrument, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.instruments[id]
	return inst, ok
}

// Transactions returns a copy of the transaction log, in insertion order.
func (s *Store) Transactions() []Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	txs := make([]Transaction, len(s.transactions))
	for i, tx := range s.transactions {
		txs[i] = tx.Clone()
	}
	return txs
}

// Transaction returns the transaction with this id.
func (s *Store) Transaction(id ID) (Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return Transaction{}, false
	}
	return s.transactions[i].Clone(), true
}

func (s *Store) indexOf(id ID) int {
	return slices.IndexFunc(s.transactions, func(tx Transaction) bool { return tx.ID == id })
}

// commit persists a new state, then makes it the current one. Callers hold s.mu.
func (s *Store) commit(ctx context.Context, instruments Catalog, transactions []Transaction) error {
	if err := s.repo.Save(ctx, instruments, transactions); err != nil {
		return fmt.Errorf("cannot save ledger: %w", err)
	}
	s.instruments = instruments
	s.transactions = transactions
	return nil
}

// AddInstrument adds or replaces an instrument in the catalog.
func (s *Store) AddInstrument(ctx context.Context, inst Instrument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addInstrument(ctx, inst)
}

func (s *Store) addInstrument(ctx context.Context, inst Instrument) error {
	instruments := s.instruments.Clone()
	instruments.Add(inst)
	if err := s.commit(ctx, instruments, s.transactions); err != nil {
		return err
	}
	s.log.Info().Stringer("instrument", inst).Str("kind", string(inst.Kind())).Msg("instrument added")
	return nil
}

// Equity returns the equity with this symbol, creating it if needed.
func (s *Store) Equity(ctx context.Context, symbol string) (Equity, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return Equity{}, errors.New("empty symbol")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.instruments.Equity(symbol); ok {
		return e, nil
	}
	e := NewEquity(NewID(), symbol)
	if err := s.addInstrument(ctx, e); err != nil {
		return Equity{}, err
	}
	return e, nil
}

// Option returns the option with these terms, creating it with multiplier if
// needed.
func (s *Store) Option(ctx context.Context, underlying string, expiry date.Date, strike Money, callPut CallPut, multiplier int) (Option, error) {
	underlying = NormalizeSymbol(underlying)
	switch {
	case underlying == "":
		return Option{}, errors.New("empty underlying symbol")
	case expiry.IsZero():
		return Option{}, errors.New("missing expiry")
	case !strike.IsPositive():
		return Option{}, fmt.Errorf("strike must be positive, got %s", strike)
	case callPut != Call && callPut != Put:
		return Option{}, fmt.Errorf("unknown option type %q", callPut)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.instruments.OptionContract(underlying, expiry, strike, callPut); ok {
		return o, nil
	}
	o := NewOption(NewID(), underlying, expiry, strike, callPut, multiplier)
	if err := s.addInstrument(ctx, o); err != nil {
		return Option{}, err
	}
	return o, nil
}

// AddTransactions validates and appends transactions to the log. Either all
// of them are added or none.
func (s *Store) AddTransactions(ctx context.Context, txs ...Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addTransactions(ctx, s.instruments, txs)
}

// addTransactions commits instruments along with the log extended by txs.
// Callers hold s.mu.
func (s *Store) addTransactions(ctx context.Context, instruments Catalog, txs []Transaction) error {
	seen := make(map[ID]bool, len(txs))
	for _, tx := range txs {
		if err := tx.Validate(instruments); err != nil {
			return err
		}
		if seen[tx.ID] || s.indexOf(tx.ID) >= 0 {
			return fmt.Errorf("%w: duplicate id %s", ErrInvalidTransaction, tx.ID)
		}
		seen[tx.ID] = true
	}

	transactions := slices.Clip(s.transactions)
	for _, tx := range txs {
		transactions = append(transactions, tx.Clone())
	}
	if err := s.commit(ctx, instruments, transactions); err != nil {
		return err
	}
	for _, tx := range txs {
		s.log.Info().Stringer("id", tx.ID).Str("action", tx.Action.String()).Stringer("quantity", tx.Quantity).Stringer("price", tx.Price).Msg("transaction added")
	}
	return nil
}

// Import merges instruments into the catalog and appends the transactions not
// already in the log, in a single save. It returns the number of transactions
// added. Nothing is imported if one of the new transactions is invalid.
func (s *Store) Import(ctx context.Context, instruments Catalog, txs []Transaction) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	catalog := s.instruments.Clone()
	for inst := range instruments.All() {
		if _, ok := catalog[inst.ID()]; !ok {
			catalog.Add(inst)
		}
	}
	transactions := slices.Clip(s.transactions)
	seen := make(map[ID]bool, len(s.transactions)+len(txs))
	for _, tx := range s.transactions {
		seen[tx.ID] = true
	}
	for _, tx := range txs {
		if seen[tx.ID] {
			continue
		}
		if err := tx.Validate(catalog); err != nil {
			return 0, err
		}
		seen[tx.ID] = true
		transactions = append(transactions, tx.Clone())
	}
	added := len(transactions) - len(s.transactions)
	if err := s.commit(ctx, catalog, transactions); err != nil {
		return 0, err
	}
	s.log.Info().Int("instruments", len(catalog)).Int("added", added).Msg("ledger imported")
	return added, nil
}

// DeleteTransaction removes a transaction from the log.
func (s *Store) DeleteTransaction(ctx context.Context, id ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownTransaction, id)
	}
	transactions := slices.Delete(slices.Clone(s.transactions), i, i+1)
	if err := s.commit(ctx, s.instruments, transactions); err != nil {
		return err
	}
	s.log.Info().Stringer("id", id).Msg("transaction deleted")
	return nil
}

// Assign records the assignment of the contracts opened by the transaction
// openingID: the option is closed and the underlying equity, created if
// needed, is traded at the effective price. The new equity and both
// transactions are saved together; nothing changes when the assignment is
// rejected.
func (s *Store) Assign(ctx context.Context, openingID ID, on time.Time) (Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(openingID)
	if i < 0 {
		return Assignment{}, fmt.Errorf("%w: %s", ErrUnknownTransaction, openingID)
	}
	opening := s.transactions[i].Clone()
	inst, ok := s.instruments[opening.InstrumentID]
	if !ok {
		return Assignment{}, fmt.Errorf("%w: %s", ErrUnknownInstrument, opening.InstrumentID)
	}
	if inst.Kind() != KindOption {
		return Assignment{}, fmt.Errorf("%w: %s is not an option", ErrNotAssignable, inst)
	}

	instruments := s.instruments
	equity, known := instruments.Equity(inst.Underlying())
	if !known {
		equity = NewEquity(NewID(), inst.Underlying())
	}
	if err := CheckAssignable(opening, inst, equity); err != nil {
		return Assignment{}, err
	}
	if !known {
		instruments = instruments.Clone()
		instruments.Add(equity)
	}

	a := GenerateAssignment(opening, inst, on, equity)
	if err := s.addTransactions(ctx, instruments, a.Transactions()); err != nil {
		return Assignment{}, err
	}
	if !known {
		s.log.Info().Stringer("instrument", equity).Str("kind", string(KindEquity)).Msg("instrument added")
	}
	s.log.Info().Stringer("option", inst).Stringer("group", a.OptionClose.LinkGroupID).Msg("option assigned")
	return a, nil
}

// Recompute derives the ledger output from the current state.
func (s *Store) Recompute() *Output {
	s.mu.Lock()
	instruments := s.instruments.Clone()
	transactions := slices.Clone(s.transactions)
	s.mu.Unlock()

	out := Process(transactions, instruments)
	for _, sf := range out.Shortfalls {
		s.log.Warn().
			Stringer("transaction", sf.TransactionID).
			Str("action", sf.Action.String()).
			Stringer("quantity", sf.Quantity).
			Msg("quantity left without matching open lots")
	}
	return out
}
