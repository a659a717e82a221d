package web

import (
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

const flashCookie = "ft_flash"

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Level   string
	Message string
}

// setFlash stores a flash message in a short-lived cookie. Level is
// "success" or "error".
func setFlash(c *gin.Context, level, message string) {
	value := url.QueryEscape(level + "|" + message)
	c.SetCookie(flashCookie, value, 60, "/", "", false, true)
}

// takeFlash reads and clears the pending flash message, if any.
func takeFlash(c *gin.Context) *Flash {
	raw, err := c.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)

	value, err := url.QueryUnescape(raw)
	if err != nil {
		return nil
	}
	level, message, ok := strings.Cut(value, "|")
	if !ok {
		return nil
	}
	return &Flash{Level: level, Message: message}
}
