// Package console implements the interactive menu front-end over a single
// user's ledger.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

var minAmount = decimal.NewFromFloat(0.01)

// App drives the menu loop. Input and output are injected so the loop can be
// scripted in tests.
type App struct {
	ledger *ledger.Ledger
	in     *bufio.Scanner
	out    io.Writer
}

func New(l *ledger.Ledger, in io.Reader, out io.Writer) *App {
	return &App{
		ledger: l,
		in:     bufio.NewScanner(in),
		out:    out,
	}
}

// Run shows the menu until the user exits or input runs out.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to Personal Finance Tracker!")

	for {
		a.printMenu()
		choice, ok := a.readLine("Enter your choice (1-5): ")
		if !ok {
			return
		}

		switch strings.TrimSpace(choice) {
		case "1":
			a.addTransaction(ctx)
		case "2":
			a.viewTransactions()
		case "3":
			a.viewSummary()
		case "4":
			a.generateReport()
		case "5":
			fmt.Fprintln(a.out, "\nThank you for using Personal Finance Tracker!")
			fmt.Fprintln(a.out, "Your data has been saved.")
			return
		default:
			fmt.Fprintln(a.out, "\nInvalid choice. Please enter 1-5.")
		}
	}
}

func (a *App) printMenu() {
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, strings.Repeat("=", 40))
	fmt.Fprintln(a.out, "    Personal Finance Tracker")
	fmt.Fprintln(a.out, strings.Repeat("=", 40))
	fmt.Fprintln(a.out, "1. Add Transaction")
	fmt.Fprintln(a.out, "2. View Transactions")
	fmt.Fprintln(a.out, "3. View Summary")
	fmt.Fprintln(a.out, "4. Generate Report")
	fmt.Fprintln(a.out, "5. Exit")
	fmt.Fprintln(a.out, strings.Repeat("-", 40))
}

func (a *App) addTransaction(ctx context.Context) {
	fmt.Fprintln(a.out, "\n--- Add New Transaction ---")

	amount, ok := a.promptAmount("Enter amount: ")
	if !ok {
		return
	}
	description, ok := a.promptString("Enter description: ")
	if !ok {
		return
	}
	category, ok := a.promptString("Enter category: ")
	if !ok {
		return
	}
	isIncome, ok := a.promptYesNo("Is this income? (y/n): ")
	if !ok {
		return
	}
	currency, ok := a.promptCurrency()
	if !ok {
		return
	}
	room, ok := a.readLine(fmt.Sprintf("Room [%s]: ", core.DefaultRoom))
	if !ok {
		return
	}

	tx, err := core.NewTransaction(core.TransactionParams{
		Amount:      amount,
		Description: description,
		Category:    category,
		IsIncome:    isIncome,
		Currency:    currency,
		Room:        strings.TrimSpace(room),
	})
	if err != nil {
		fmt.Fprintf(a.out, "\nError: %v\n", err)
		return
	}

	tx = a.ledger.Add(ctx, tx)
	fmt.Fprintf(a.out, "\n%s of %s%s added successfully!\n",
		tx.Type(), tx.Currency.Symbol(), tx.Amount.StringFixed(2))
}

func (a *App) viewTransactions() {
	txs := a.ledger.List("")
	if len(txs) == 0 {
		fmt.Fprintln(a.out, "\nNo transactions found.")
		return
	}

	fmt.Fprintf(a.out, "\n--- Transaction History (%d transactions) ---\n", len(txs))
	fmt.Fprintln(a.out, strings.Repeat("-", 80))

	core.SortByDateDesc(txs)
	for _, tx := range txs {
		fmt.Fprintf(a.out, "[%d] %s | %-7s | %s%s | %s (%s, %s)\n",
			tx.ID, tx.Time().Format("2006-01-02"), tx.Type(),
			tx.Currency.Symbol(), tx.Amount.StringFixed(2),
			tx.Description, tx.Category, tx.Room)
	}
}

func (a *App) viewSummary() {
	fmt.Fprintln(a.out, "\n--- Financial Summary ---")

	income := a.ledger.TotalIncome("", "")
	expenses := a.ledger.TotalExpenses("", "")
	balance := a.ledger.Balance("", "")

	for _, cur := range core.Currencies() {
		fmt.Fprintf(a.out, "%s  Income: %s%s  Expenses: %s%s  Balance: %s%s\n",
			cur,
			cur.Symbol(), income.Get(cur).StringFixed(2),
			cur.Symbol(), expenses.Get(cur).StringFixed(2),
			cur.Symbol(), balance.Get(cur).StringFixed(2))
	}

	for _, cur := range core.Currencies() {
		if balance.Get(cur).IsNegative() {
			fmt.Fprintf(a.out, "Warning: you're spending more %s than you earn!\n", cur)
		}
	}

	summary := a.ledger.CategorySummary()
	if len(summary) == 0 {
		return
	}

	fmt.Fprintln(a.out, "\n--- Spending by Category ---")
	for _, cat := range sortedKeys(summary) {
		totals := summary[cat]
		fmt.Fprintf(a.out, "%s:\n", cat)
		if totals.Income.IsPositive() {
			fmt.Fprintf(a.out, "  Income:   %s\n", totals.Income.StringFixed(2))
		}
		if totals.Expenses.IsPositive() {
			fmt.Fprintf(a.out, "  Expenses: %s\n", totals.Expenses.StringFixed(2))
		}
		fmt.Fprintf(a.out, "  Net:      %s\n", totals.Net.StringFixed(2))
	}
}

func (a *App) generateReport() {
	txs := a.ledger.List("")
	if len(txs) == 0 {
		fmt.Fprintln(a.out, "\nNo data available for report.")
		return
	}

	fmt.Fprintln(a.out, "\n--- Detailed Financial Report ---")

	incomeCount := 0
	for _, tx := range txs {
		if tx.IsIncome {
			incomeCount++
		}
	}
	fmt.Fprintf(a.out, "Total Transactions: %d\n", len(txs))
	fmt.Fprintf(a.out, "Income Transactions: %d\n", incomeCount)
	fmt.Fprintf(a.out, "Expense Transactions: %d\n", len(txs)-incomeCount)

	income := a.ledger.TotalIncome("", "")
	expenses := a.ledger.TotalExpenses("", "")

	fmt.Fprintln(a.out)
	for _, cur := range core.Currencies() {
		in, out := income.Get(cur), expenses.Get(cur)
		fmt.Fprintf(a.out, "%s  Income: %s%s  Expenses: %s%s  Net: %s%s\n",
			cur, cur.Symbol(), in.StringFixed(2),
			cur.Symbol(), out.StringFixed(2),
			cur.Symbol(), in.Sub(out).StringFixed(2))
		if in.IsPositive() {
			rate, _ := in.Sub(out).Div(in).Mul(decimal.NewFromInt(100)).Float64()
			fmt.Fprintf(a.out, "%s  Savings Rate: %.1f%%\n", cur, rate)
		}
	}

	top := a.ledger.TopExpenseCategories(5)
	if len(top) == 0 {
		return
	}
	fmt.Fprintln(a.out, "\n--- Top Spending Categories ---")
	for i, row := range top {
		fmt.Fprintf(a.out, "%d. %s: %s (%.1f%%)\n",
			i+1, row.Category, row.Amount.StringFixed(2), row.Percent)
	}
}

// readLine prints the prompt and reads one line. ok is false once input is
// exhausted.
func (a *App) readLine(prompt string) (string, bool) {
	fmt.Fprint(a.out, prompt)
	if !a.in.Scan() {
		return "", false
	}
	return a.in.Text(), true
}

func (a *App) promptAmount(prompt string) (decimal.Decimal, bool) {
	for {
		line, ok := a.readLine(prompt)
		if !ok {
			return decimal.Decimal{}, false
		}
		value, err := decimal.NewFromString(strings.TrimSpace(line))
		if err != nil {
			fmt.Fprintln(a.out, "Please enter a valid number.")
			continue
		}
		if value.LessThan(minAmount) {
			fmt.Fprintf(a.out, "Please enter a value >= %s\n", minAmount)
			continue
		}
		return value, true
	}
}

func (a *App) promptString(prompt string) (string, bool) {
	for {
		line, ok := a.readLine(prompt)
		if !ok {
			return "", false
		}
		if value := strings.TrimSpace(line); value != "" {
			return value, true
		}
		fmt.Fprintln(a.out, "Please enter at least 1 character(s).")
	}
}

func (a *App) promptYesNo(prompt string) (bool, bool) {
	for {
		line, ok := a.readLine(prompt)
		if !ok {
			return false, false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, true
		case "n", "no":
			return false, true
		default:
			fmt.Fprintln(a.out, "Please enter 'y' for yes or 'n' for no.")
		}
	}
}

// promptCurrency accepts USD, INR or an empty line for the default.
func (a *App) promptCurrency() (string, bool) {
	for {
		line, ok := a.readLine("Currency (USD/INR) [USD]: ")
		if !ok {
			return "", false
		}
		value := strings.TrimSpace(line)
		if value == "" {
			return "", true
		}
		if _, err := core.ParseCurrency(value); err == nil {
			return value, true
		}
		fmt.Fprintln(a.out, "Please enter USD or INR.")
	}
}

func sortedKeys(m map[string]core.CategoryTotals) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
