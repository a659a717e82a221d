// Package ledger owns the ordered transaction sequence of one user: id
// assignment, filtering, aggregation and synchronous persistence after every
// mutation.
package ledger

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/storage"

	"github.com/shopspring/decimal"
)

// Event actions published after mutations.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// Publisher receives a best-effort event after each successful mutation.
// Failures are logged and never fail the mutation.
type Publisher interface {
	PublishTransactionEvent(ctx context.Context, username string, id int64, action string) error
}

// Ledger is the in-memory working copy of one user's transactions. All
// methods are safe for concurrent use; the mutex serializes the whole
// read-modify-write-persist cycle so concurrent mutations for the same user
// cannot lose updates.
type Ledger struct {
	mu       sync.Mutex
	username string
	store    storage.Store
	events   Publisher
	logger   *slog.Logger

	nextID int64
	txs    []core.Transaction
}

func newLedger(username string, store storage.Store, events Publisher, snap core.Snapshot) *Ledger {
	return &Ledger{
		username: username,
		store:    store,
		events:   events,
		logger:   applog.ForComponent(applog.ComponentLedger).With(applog.FieldUsername, username),
		nextID:   snap.NextID,
		txs:      snap.Transactions,
	}
}

// Add assigns the next id, appends and persists. The returned transaction
// carries the assigned id.
func (l *Ledger) Add(ctx context.Context, tx core.Transaction) core.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx = tx.WithID(l.nextID)
	l.nextID++
	l.txs = append(l.txs, tx)
	l.persist(ctx)
	l.publish(ctx, tx.ID, EventCreated)
	return tx
}

// Delete removes the transaction with the given id. Returns false, leaving
// the ledger untouched, when no transaction has that id. Deleted ids are
// never reassigned.
func (l *Ledger) Delete(ctx context.Context, id int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, tx := range l.txs {
		if tx.ID == id {
			l.txs = append(l.txs[:i], l.txs[i+1:]...)
			l.persist(ctx)
			l.publish(ctx, id, EventDeleted)
			return true
		}
	}
	return false
}

// Get returns the transaction with the given id, if any.
func (l *Ledger) Get(id int64) (core.Transaction, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, tx := range l.txs {
		if tx.ID == id {
			return tx, true
		}
	}
	return core.Transaction{}, false
}

// Update replaces the transaction with the given id in place, preserving the
// id. Returns false when no transaction has that id.
func (l *Ledger) Update(ctx context.Context, id int64, tx core.Transaction) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, existing := range l.txs {
		if existing.ID == id {
			l.txs[i] = tx.WithID(id)
			l.persist(ctx)
			l.publish(ctx, id, EventUpdated)
			return true
		}
	}
	return false
}

// Reset clears all transactions and persists the empty ledger. The id
// counter keeps running so ids from before the reset are never reused.
func (l *Ledger) Reset(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.txs = nil
	l.persist(ctx)
}

// List returns a copy of all transactions, optionally filtered to one room.
// The room filter applies the same title-case normalization used at
// construction, so "travel" matches "Travel".
func (l *Ledger) List(room string) []core.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.listLocked(room)
}

func (l *Ledger) listLocked(room string) []core.Transaction {
	if room == "" {
		out := make([]core.Transaction, len(l.txs))
		copy(out, l.txs)
		return out
	}
	room = core.NormalizeLabel(room)
	var out []core.Transaction
	for _, tx := range l.txs {
		if tx.Room == room {
			out = append(out, tx)
		}
	}
	return out
}

// Len returns the number of transactions.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.txs)
}

// Rooms returns the sorted distinct room values, or the default room when
// the ledger is empty.
func (l *Ledger) Rooms() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	seen := make(map[string]struct{})
	for _, tx := range l.txs {
		seen[tx.Room] = struct{}{}
	}
	if len(seen) == 0 {
		return []string{core.DefaultRoom}
	}
	rooms := make([]string, 0, len(seen))
	for r := range seen {
		rooms = append(rooms, r)
	}
	sort.Strings(rooms)
	return rooms
}

// TotalIncome sums income amounts per currency, optionally filtered by room
// and/or currency. With a currency filter the result holds only that
// currency; otherwise every supported currency is present, zero included.
func (l *Ledger) TotalIncome(room string, currency core.Currency) core.Totals {
	return l.sum(room, currency, func(tx core.Transaction) bool { return tx.IsIncome })
}

// TotalExpenses is TotalIncome's counterpart for expenses.
func (l *Ledger) TotalExpenses(room string, currency core.Currency) core.Totals {
	return l.sum(room, currency, func(tx core.Transaction) bool { return !tx.IsIncome })
}

// Balance returns income minus expenses per currency. Currencies are never
// mixed or converted.
func (l *Ledger) Balance(room string, currency core.Currency) core.Totals {
	l.mu.Lock()
	defer l.mu.Unlock()

	totals := core.NewTotals()
	for _, tx := range l.listLocked(room) {
		if currency != "" && tx.Currency != currency {
			continue
		}
		if tx.IsIncome {
			totals[tx.Currency] = totals[tx.Currency].Add(tx.Amount)
		} else {
			totals[tx.Currency] = totals[tx.Currency].Sub(tx.Amount)
		}
	}
	return restrict(totals, currency)
}

func (l *Ledger) sum(room string, currency core.Currency, match func(core.Transaction) bool) core.Totals {
	l.mu.Lock()
	defer l.mu.Unlock()

	totals := core.NewTotals()
	for _, tx := range l.listLocked(room) {
		if !match(tx) {
			continue
		}
		if currency != "" && tx.Currency != currency {
			continue
		}
		totals[tx.Currency] = totals[tx.Currency].Add(tx.Amount)
	}
	return restrict(totals, currency)
}

func restrict(totals core.Totals, currency core.Currency) core.Totals {
	if currency == "" {
		return totals
	}
	return core.Totals{currency: totals.Get(currency)}
}

// CategorySummary returns income, expense and net totals for every distinct
// category across all rooms. Amounts from different currencies are added
// together; that mixing is a known limitation kept for compatibility.
func (l *Ledger) CategorySummary() map[string]core.CategoryTotals {
	l.mu.Lock()
	defer l.mu.Unlock()

	summary := make(map[string]core.CategoryTotals)
	for _, tx := range l.txs {
		ct := summary[tx.Category]
		if tx.IsIncome {
			ct.Income = ct.Income.Add(tx.Amount)
		} else {
			ct.Expenses = ct.Expenses.Add(tx.Amount)
		}
		ct.Net = ct.Income.Sub(ct.Expenses)
		summary[tx.Category] = ct
	}
	return summary
}

// ByCategory groups all transactions by category.
func (l *Ledger) ByCategory() map[string][]core.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	groups := make(map[string][]core.Transaction)
	for _, tx := range l.txs {
		groups[tx.Category] = append(groups[tx.Category], tx)
	}
	return groups
}

// ExpenseTotalsByCategory returns expense sums grouped by category, split by
// currency and sorted by category name. This feeds the chart endpoint.
func (l *Ledger) ExpenseTotalsByCategory(room string) map[core.Currency][]core.CategoryAmount {
	l.mu.Lock()
	defer l.mu.Unlock()

	sums := make(map[core.Currency]map[string]decimal.Decimal)
	for _, c := range core.Currencies() {
		sums[c] = make(map[string]decimal.Decimal)
	}
	for _, tx := range l.listLocked(room) {
		if tx.IsIncome {
			continue
		}
		sums[tx.Currency][tx.Category] = sums[tx.Currency][tx.Category].Add(tx.Amount)
	}

	out := make(map[core.Currency][]core.CategoryAmount, len(sums))
	for c, byCat := range sums {
		rows := make([]core.CategoryAmount, 0, len(byCat))
		for cat, amt := range byCat {
			rows = append(rows, core.CategoryAmount{Category: cat, Amount: amt})
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].Category < rows[j].Category })
		out[c] = rows
	}
	return out
}

// TopExpenseCategories ranks categories by total expenses, descending, with
// each category's share of total expenses. Like CategorySummary it adds
// currencies together.
func (l *Ledger) TopExpenseCategories(n int) []core.CategoryShare {
	summary := l.CategorySummary()

	var total decimal.Decimal
	var rows []core.CategoryShare
	for cat, ct := range summary {
		if ct.Expenses.IsPositive() {
			rows = append(rows, core.CategoryShare{Category: cat, Amount: ct.Expenses})
			total = total.Add(ct.Expenses)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Amount.Equal(rows[j].Amount) {
			return rows[i].Amount.GreaterThan(rows[j].Amount)
		}
		return rows[i].Category < rows[j].Category
	})
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	for i := range rows {
		if total.IsPositive() {
			pct, _ := rows[i].Amount.Div(total).Mul(decimal.NewFromInt(100)).Float64()
			rows[i].Percent = pct
		}
	}
	return rows
}

// persist writes the full snapshot. Storage failures are logged and not
// propagated: the in-memory state stays authoritative until the next
// successful save.
func (l *Ledger) persist(ctx context.Context) {
	snap := core.Snapshot{NextID: l.nextID, Transactions: l.txs}
	if err := l.store.Save(ctx, l.username, snap); err != nil {
		l.logger.ErrorContext(ctx, "Failed persisting ledger", applog.FieldError, err)
	}
}

func (l *Ledger) publish(ctx context.Context, id int64, action string) {
	if l.events == nil {
		return
	}
	if err := l.events.PublishTransactionEvent(ctx, l.username, id, action); err != nil {
		l.logger.ErrorContext(ctx, "Failed publishing transaction event",
			applog.FieldTxID, id, applog.FieldAction, action, applog.FieldError, err)
	}
}
