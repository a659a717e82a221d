package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Port:          "8080",
		DataDir:       "./data",
		DataBackend:   BackendJSON,
		SQLiteDBPath:  "./data/fintrack.db",
		SessionSecret: "secret",
		SessionTTL:    24 * time.Hour,
	}
}

func TestValidateDefaults(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidateErrors(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		mention string
	}{
		{"non-numeric port", func(c *Config) { c.Port = "abc" }, "port"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "port"},
		{"unknown backend", func(c *Config) { c.DataBackend = "redis" }, "backend"},
		{"sqlite without path", func(c *Config) { c.DataBackend = BackendSQLite; c.SQLiteDBPath = "" }, "SQLite"},
		{"json without dir", func(c *Config) { c.DataDir = "" }, "data directory"},
		{"empty secret", func(c *Config) { c.SessionSecret = "" }, "secret"},
		{"tiny ttl", func(c *Config) { c.SessionTTL = time.Second }, "ttl"},
		{"bad amqp scheme", func(c *Config) { c.AMQPURL = "http://x"; c.AMQPExchange = "e"; c.AMQPQueue = "q" }, "AMQP"},
		{"amqp without queue", func(c *Config) { c.AMQPURL = "amqp://guest@localhost/"; c.AMQPExchange = "e" }, "queue"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := validConfig()
			tc.mutate(c)
			err := c.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.mention) {
				t.Errorf("error %q does not mention %q", err, tc.mention)
			}
		})
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	c := validConfig()
	c.Port = "abc"
	c.SessionSecret = ""
	err := c.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "port") || !strings.Contains(err.Error(), "secret") {
		t.Errorf("expected combined errors, got %q", err)
	}
}
