package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

// transactionForm carries the raw form fields of the add and edit pages.
type transactionForm struct {
	Amount      string
	Description string
	Category    string
	Currency    string
	Room        string
	IsIncome    bool
}

func readTransactionForm(c *gin.Context) transactionForm {
	return transactionForm{
		Amount:      strings.TrimSpace(c.PostForm("amount")),
		Description: strings.TrimSpace(c.PostForm("description")),
		Category:    strings.TrimSpace(c.PostForm("category")),
		Currency:    c.PostForm("currency"),
		Room:        strings.TrimSpace(c.PostForm("room")),
		IsIncome:    c.PostForm("is_income") == "on",
	}
}

// toParams converts the form into constructor params. The date is left to
// the caller: empty for new transactions, the original date for edits.
func (f transactionForm) toParams() (core.TransactionParams, error) {
	amount, err := decimal.NewFromString(f.Amount)
	if err != nil {
		return core.TransactionParams{}, core.ErrInvalidAmount
	}
	return core.TransactionParams{
		Amount:      amount,
		Description: f.Description,
		Category:    f.Category,
		IsIncome:    f.IsIncome,
		Currency:    f.Currency,
		Room:        f.Room,
	}, nil
}

func (s *Server) showAddTransaction(c *gin.Context) {
	l, ok := s.openLedger(c)
	if !ok {
		return
	}

	current := c.Param("room")
	if current == "" {
		if remembered, err := c.Cookie(roomCookie); err == nil && remembered != "" && remembered != "All" {
			current = remembered
		} else {
			current = core.DefaultRoom
		}
	}

	c.HTML(http.StatusOK, "add_transaction.html", gin.H{
		"Flash":       takeFlash(c),
		"Rooms":       formRooms(l),
		"Currencies":  core.Currencies(),
		"CurrentRoom": current,
	})
}

func (s *Server) handleAddTransaction(c *gin.Context) {
	l, ok := s.openLedger(c)
	if !ok {
		return
	}
	form := readTransactionForm(c)

	fail := func(message string) {
		c.HTML(http.StatusOK, "add_transaction.html", gin.H{
			"Flash":       &Flash{Level: "error", Message: message},
			"Rooms":       formRooms(l),
			"Currencies":  core.Currencies(),
			"CurrentRoom": form.Room,
			"Form":        form,
		})
	}

	params, err := form.toParams()
	if err != nil {
		fail("Amount must be a positive number.")
		return
	}
	tx, err := core.NewTransaction(params)
	if err != nil {
		fail(err.Error())
		return
	}

	tx = l.Add(c.Request.Context(), tx)
	s.logger.InfoContext(c.Request.Context(), "Added transaction",
		applog.FieldUsername, currentUser(c),
		applog.FieldTxID, tx.ID,
		applog.FieldRoom, tx.Room)

	setFlash(c, "success", fmt.Sprintf("%s of %s%s added to %s!",
		tx.Type(), tx.Currency.Symbol(), tx.Amount.StringFixed(2), tx.Room))

	// "All" is the no-filter sentinel in room URLs, so a room actually named
	// All goes to the unfiltered dashboard instead.
	if tx.Room == "All" {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.Redirect(http.StatusSeeOther, "/room/"+url.PathEscape(tx.Room))
}

func (s *Server) listTransactions(c *gin.Context) {
	l, ok := s.openLedger(c)
	if !ok {
		return
	}
	current, filter := roomFilter(c)

	txs := l.List(filter)
	core.SortByDateDesc(txs)

	c.HTML(http.StatusOK, "transactions.html", gin.H{
		"Flash":        takeFlash(c),
		"Transactions": txs,
		"Rooms":        l.Rooms(),
		"CurrentRoom":  current,
	})
}

func (s *Server) showEditTransaction(c *gin.Context) {
	l, ok := s.openLedger(c)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		setFlash(c, "error", "Transaction not found.")
		c.Redirect(http.StatusSeeOther, "/transactions")
		return
	}
	tx, found := l.Get(id)
	if !found {
		setFlash(c, "error", "Transaction not found.")
		c.Redirect(http.StatusSeeOther, "/transactions")
		return
	}

	c.HTML(http.StatusOK, "edit_transaction.html", gin.H{
		"Flash":       takeFlash(c),
		"Transaction": tx,
		"Rooms":       formRooms(l),
		"Currencies":  core.Currencies(),
	})
}

func (s *Server) handleEditTransaction(c *gin.Context) {
	l, ok := s.openLedger(c)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		setFlash(c, "error", "Transaction not found.")
		c.Redirect(http.StatusSeeOther, "/transactions")
		return
	}
	existing, found := l.Get(id)
	if !found {
		setFlash(c, "error", "Transaction not found.")
		c.Redirect(http.StatusSeeOther, "/transactions")
		return
	}

	form := readTransactionForm(c)
	fail := func(message string) {
		c.HTML(http.StatusOK, "edit_transaction.html", gin.H{
			"Flash":       &Flash{Level: "error", Message: message},
			"Transaction": existing,
			"Rooms":       formRooms(l),
			"Currencies":  core.Currencies(),
		})
	}

	params, err := form.toParams()
	if err != nil {
		fail("Amount must be a positive number.")
		return
	}
	// Edits replace the entry but keep its original date.
	params.Date = existing.Date
	updated, err := core.NewTransaction(params)
	if err != nil {
		fail(err.Error())
		return
	}

	if !l.Update(c.Request.Context(), id, updated) {
		fail("Error updating transaction.")
		return
	}
	s.logger.InfoContext(c.Request.Context(), "Updated transaction",
		applog.FieldUsername, currentUser(c),
		applog.FieldTxID, id)

	setFlash(c, "success", fmt.Sprintf("%s updated successfully!", updated.Type()))
	c.Redirect(http.StatusSeeOther, "/transactions")
}

func (s *Server) handleDeleteTransaction(c *gin.Context) {
	l, ok := s.openLedger(c)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err == nil && l.Delete(c.Request.Context(), id) {
		s.logger.InfoContext(c.Request.Context(), "Deleted transaction",
			applog.FieldUsername, currentUser(c),
			applog.FieldTxID, id)
		setFlash(c, "success", "Transaction deleted successfully!")
	} else {
		setFlash(c, "error", "Transaction not found.")
	}
	c.Redirect(http.StatusSeeOther, "/transactions")
}
