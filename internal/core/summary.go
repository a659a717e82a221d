package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// SortByDateDesc orders transactions newest first, in place. Ties keep their
// insertion order.
func SortByDateDesc(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Time().After(txs[j].Time())
	})
}

// Totals holds per-currency sums. Currencies are independent; there is no
// conversion between them.
type Totals map[Currency]decimal.Decimal

// NewTotals returns a Totals with every supported currency zeroed.
func NewTotals() Totals {
	t := make(Totals, len(Currencies()))
	for _, c := range Currencies() {
		t[c] = decimal.Zero
	}
	return t
}

// Get returns the total for a currency, zero when absent.
func (t Totals) Get(c Currency) decimal.Decimal {
	if v, ok := t[c]; ok {
		return v
	}
	return decimal.Zero
}

// CategoryTotals is the income/expense/net breakdown for one category.
// Amounts from different currencies are added together here; that mixing is
// a documented limitation of the category summary.
type CategoryTotals struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Net      decimal.Decimal
}

// CategoryAmount is an amount aggregated under a category name.
type CategoryAmount struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// CategoryShare is one row of the top-spending report.
type CategoryShare struct {
	Category string
	Amount   decimal.Decimal
	Percent  float64
}
