package web

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

// categoryRow is one category of the summary page, sorted by name.
type categoryRow struct {
	Category string
	Totals   core.CategoryTotals
}

func (s *Server) showSummary(c *gin.Context) {
	l, ok := s.openLedger(c)
	if !ok {
		return
	}
	current, filter := roomFilter(c)

	summary := l.CategorySummary()
	rows := make([]categoryRow, 0, len(summary))
	for cat, totals := range summary {
		rows = append(rows, categoryRow{Category: cat, Totals: totals})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Category < rows[j].Category })

	c.HTML(http.StatusOK, "summary.html", gin.H{
		"Flash":       takeFlash(c),
		"Totals":      totalsLines(l, filter),
		"Categories":  rows,
		"Rooms":       l.Rooms(),
		"CurrentRoom": current,
	})
}

func (s *Server) showReset(c *gin.Context) {
	c.HTML(http.StatusOK, "reset_data.html", gin.H{"Flash": takeFlash(c)})
}

func (s *Server) handleReset(c *gin.Context) {
	if c.PostForm("confirm") != "DELETE_ALL_DATA" {
		c.HTML(http.StatusOK, "reset_data.html", gin.H{
			"Flash": &Flash{Level: "error", Message: "Confirmation text did not match. Data not deleted."},
		})
		return
	}

	l, ok := s.openLedger(c)
	if !ok {
		return
	}
	l.Reset(c.Request.Context())
	s.logger.InfoContext(c.Request.Context(), "Reset all transactions",
		applog.FieldUsername, currentUser(c))

	setFlash(c, "success", "All transaction data has been reset!")
	c.Redirect(http.StatusSeeOther, "/")
}

// chartData returns expense totals per category, split by currency, for the
// dashboard chart.
func (s *Server) chartData(c *gin.Context) {
	l, ok := s.openLedger(c)
	if !ok {
		return
	}

	room := c.Param("room")
	if room == "All" {
		room = ""
	}

	byCurrency := l.ExpenseTotalsByCategory(room)
	usd := byCurrency[core.USD]
	inr := byCurrency[core.INR]
	if usd == nil {
		usd = []core.CategoryAmount{}
	}
	if inr == nil {
		inr = []core.CategoryAmount{}
	}

	c.JSON(http.StatusOK, gin.H{"usd": usd, "inr": inr})
}
