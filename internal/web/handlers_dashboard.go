package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

// currencyLine is one per-currency row of the totals table.
type currencyLine struct {
	Currency core.Currency
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Balance  decimal.Decimal
}

func totalsLines(l *ledger.Ledger, room string) []currencyLine {
	income := l.TotalIncome(room, "")
	expenses := l.TotalExpenses(room, "")
	balance := l.Balance(room, "")

	lines := make([]currencyLine, 0, len(core.Currencies()))
	for _, cur := range core.Currencies() {
		lines = append(lines, currencyLine{
			Currency: cur,
			Income:   income.Get(cur),
			Expenses: expenses.Get(cur),
			Balance:  balance.Get(cur),
		})
	}
	return lines
}

// dashboardRooms lists the user's rooms, or the first few defaults when the
// ledger has no transactions yet.
func dashboardRooms(l *ledger.Ledger) []string {
	if l.Len() == 0 {
		return DefaultRooms[:3]
	}
	return l.Rooms()
}

// formRooms merges the user's rooms with the remaining defaults, keeping the
// user's rooms first.
func formRooms(l *ledger.Ledger) []string {
	var rooms []string
	seen := make(map[string]struct{})
	if l.Len() > 0 {
		for _, r := range l.Rooms() {
			rooms = append(rooms, r)
			seen[r] = struct{}{}
		}
	}
	for _, r := range DefaultRooms {
		if _, ok := seen[r]; !ok {
			rooms = append(rooms, r)
		}
	}
	return rooms
}

func (s *Server) dashboard(c *gin.Context) {
	l, ok := s.openLedger(c)
	if !ok {
		return
	}
	current, filter := roomFilter(c)

	recent := l.List(filter)
	core.SortByDateDesc(recent)
	if len(recent) > 5 {
		recent = recent[:5]
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Flash":       takeFlash(c),
		"Username":    currentUser(c),
		"Recent":      recent,
		"Totals":      totalsLines(l, filter),
		"Rooms":       dashboardRooms(l),
		"CurrentRoom": current,
	})
}
