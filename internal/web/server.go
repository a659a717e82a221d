// Package web serves the HTML front-end: authentication, the dashboard,
// transaction management and the chart JSON API.
package web

import (
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	applog "fintrack/internal/log"
	"fintrack/internal/user"
	appweb "fintrack/web"
)

// DefaultRooms are offered in forms alongside the rooms the user already
// uses. The first three are shown on the dashboard of an empty ledger.
var DefaultRooms = []string{
	"Personal", "Business", "Travel", "Family", "Investment",
	"Education", "Health", "Entertainment", "Emergency", "Savings",
}

type Server struct {
	engine  *gin.Engine
	users   *user.Manager
	ledgers *ledger.Service
	secret  string
	ttl     time.Duration
	logger  *slog.Logger
}

// New builds the gin engine with embedded templates, middleware and routes.
func New(users *user.Manager, ledgers *ledger.Service, secret string, ttl time.Duration) (*Server, error) {
	s := &Server{
		users:   users,
		ledgers: ledgers,
		secret:  secret,
		ttl:     ttl,
		logger:  applog.ForComponent(applog.ComponentWeb),
	}

	tmpl, err := template.New("").Funcs(template.FuncMap{
		"money":  func(d decimal.Decimal) string { return d.StringFixed(2) },
		"symbol": func(c core.Currency) string { return c.Symbol() },
	}).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	staticFS, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger(), securityHeaders())
	engine.SetHTMLTemplate(tmpl)
	engine.StaticFS("/static", http.FS(staticFS))

	engine.GET("/login", s.showLogin)
	engine.POST("/login", s.handleLogin)
	engine.GET("/signup", s.showSignup)
	engine.POST("/signup", s.handleSignup)
	engine.GET("/logout", s.handleLogout)

	auth := engine.Group("/", s.requireLogin())
	auth.GET("", s.dashboard)
	auth.GET("room/:room", s.dashboard)
	auth.GET("transactions/new", s.showAddTransaction)
	auth.POST("transactions/new", s.handleAddTransaction)
	auth.GET("transactions/new/:room", s.showAddTransaction)
	auth.POST("transactions/new/:room", s.handleAddTransaction)
	auth.GET("transactions", s.listTransactions)
	auth.GET("transactions/room/:room", s.listTransactions)
	auth.GET("transactions/:id/edit", s.showEditTransaction)
	auth.POST("transactions/:id/edit", s.handleEditTransaction)
	auth.POST("transactions/:id/delete", s.handleDeleteTransaction)
	auth.GET("summary", s.showSummary)
	auth.GET("summary/:room", s.showSummary)
	auth.GET("reset", s.showReset)
	auth.POST("reset", s.handleReset)
	auth.GET("api/chart-data", s.chartData)
	auth.GET("api/chart-data/:room", s.chartData)

	s.engine = engine
	return s, nil
}

// Handler exposes the engine for an http.Server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// openLedger loads the ledger for the authenticated user. On failure the
// session is treated as invalid and the user is sent back to login.
func (s *Server) openLedger(c *gin.Context) (*ledger.Ledger, bool) {
	username := currentUser(c)
	l, err := s.ledgers.Open(c.Request.Context(), username)
	if err != nil {
		s.logger.ErrorContext(c.Request.Context(), "Failed opening ledger",
			applog.FieldUsername, username,
			applog.FieldError, err)
		setFlash(c, "error", "Could not load your data. Please log in again.")
		c.Redirect(http.StatusSeeOther, "/login")
		c.Abort()
		return nil, false
	}
	return l, true
}

// roomFilter resolves the active room from the URL, falling back to the
// remembered room cookie. "All" and "" mean no filter.
func roomFilter(c *gin.Context) (current string, filter string) {
	current = c.Param("room")
	if current == "" {
		if remembered, err := c.Cookie(roomCookie); err == nil && remembered != "" {
			current = remembered
		} else {
			current = "All"
		}
	}
	c.SetCookie(roomCookie, current, int((30 * 24 * time.Hour).Seconds()), "/", "", false, true)
	if current == "All" {
		return current, ""
	}
	return current, current
}
