package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/user"
)

func (s *Server) showLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{"Flash": takeFlash(c), "Username": ""})
}

func (s *Server) handleLogin(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	if !s.users.Authenticate(c.Request.Context(), username, password) {
		c.HTML(http.StatusOK, "login.html", gin.H{
			"Flash":    &Flash{Level: "error", Message: "Invalid username or password."},
			"Username": username,
		})
		return
	}

	s.startSession(c, username)
	setFlash(c, "success", fmt.Sprintf("Welcome back, %s!", username))
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) showSignup(c *gin.Context) {
	c.HTML(http.StatusOK, "signup.html", gin.H{"Flash": takeFlash(c), "Username": "", "Email": ""})
}

func (s *Server) handleSignup(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	confirm := c.PostForm("confirm_password")
	email := strings.TrimSpace(c.PostForm("email"))

	fail := func(message string) {
		c.HTML(http.StatusOK, "signup.html", gin.H{
			"Flash":    &Flash{Level: "error", Message: message},
			"Username": username,
			"Email":    email,
		})
	}

	switch {
	case len(username) < 3:
		fail("Username must be at least 3 characters long.")
		return
	case core.ValidateUsername(username) != nil:
		fail("Username may only contain letters, digits, '-' and '_'.")
		return
	case len(password) < 6:
		fail("Password must be at least 6 characters long.")
		return
	case password != confirm:
		fail("Passwords do not match.")
		return
	case !strings.Contains(email, "@"):
		fail("Please enter a valid email address.")
		return
	}

	err := s.users.Create(c.Request.Context(), username, password, email)
	if errors.Is(err, user.ErrUserExists) {
		fail("Username already exists. Please choose another.")
		return
	}
	if err != nil {
		s.logger.ErrorContext(c.Request.Context(), "Failed creating user",
			applog.FieldUsername, username,
			applog.FieldError, err)
		fail("Error creating account. Please try again.")
		return
	}

	s.startSession(c, username)
	setFlash(c, "success", fmt.Sprintf("Account created successfully! Welcome, %s!", username))
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleLogout(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.SetCookie(roomCookie, "", -1, "/", "", false, true)
	setFlash(c, "success", "You have been logged out.")
	c.Redirect(http.StatusSeeOther, "/login")
}

func (s *Server) startSession(c *gin.Context, username string) {
	token, err := generateToken(s.secret, username, s.ttl)
	if err != nil {
		s.logger.ErrorContext(c.Request.Context(), "Failed signing session token",
			applog.FieldUsername, username,
			applog.FieldError, err)
		return
	}
	c.SetCookie(sessionCookie, token, int(s.ttl.Seconds()), "/", "", false, true)
}
