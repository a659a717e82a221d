package web

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	applog "fintrack/internal/log"
)

const ctxUsername = "username"

// newRequestID generates a short random id for request correlation.
func newRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(b)
}

// requestLogger logs one line per request with a correlation id.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := newRequestID()
		c.Set(applog.FieldRequestID, requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()

		s.logger.InfoContext(c.Request.Context(), "Handled request",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, c.Request.Method,
			applog.FieldPath, c.Request.URL.Path,
			applog.FieldStatus, c.Writer.Status(),
			applog.FieldClientIP, c.ClientIP(),
			applog.FieldDuration, time.Since(start).Milliseconds())
	}
}

// securityHeaders sets conservative defaults on every response.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "same-origin")
		c.Next()
	}
}

// requireLogin validates the session cookie and stores the username in the
// request context. Anonymous users are redirected to the login page.
func (s *Server) requireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(sessionCookie)
		if err != nil || tokenStr == "" {
			setFlash(c, "error", "Please log in to access this page.")
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}

		claims, err := parseToken(s.secret, tokenStr)
		if err != nil {
			setFlash(c, "error", "Your session has expired. Please log in again.")
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}

		c.Set(ctxUsername, claims.Username)
		c.Next()
	}
}

// currentUser returns the authenticated username set by requireLogin.
func currentUser(c *gin.Context) string {
	return c.GetString(ctxUsername)
}
