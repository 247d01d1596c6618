package models

import (
	"errors"
	"strings"
	"time"
)

// DefaultRatelimitKey is the config row consulted by the ingestion limiter
const DefaultRatelimitKey = "ingest"

// ErrEmptyRate is returned when a rate limit config carries no rate
var ErrEmptyRate = errors.New("rate cannot be empty")

// RatelimitConfig is a stored limiter rate in ulule format, e.g. "5-S" or "100-M"
type RatelimitConfig struct {
	ConfigKey string    `json:"config_key"`
	Rate      string    `json:"rate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Normalized returns a copy with whitespace trimmed and an empty key replaced by DefaultRatelimitKey.
// The rate itself is checked by the limiter when it is loaded.
func (c RatelimitConfig) Normalized() (RatelimitConfig, error) {
	c.ConfigKey = strings.TrimSpace(c.ConfigKey)
	if c.ConfigKey == "" {
		c.ConfigKey = DefaultRatelimitKey
	}
	c.Rate = strings.ToUpper(strings.TrimSpace(c.Rate))
	if c.Rate == "" {
		return c, ErrEmptyRate
	}
	return c, nil
}
