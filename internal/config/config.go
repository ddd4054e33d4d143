// Package config provides configuration loading, validation, and management
// for the DarkJarvis bot. It reads defaults, an optional YAML file, a .env
// file and environment variables, then validates the merged result.
package config

import (
	"fmt"
	"time"
)

// IsAdmin reports whether userID is the configured administrator.
// A zero admin id never matches, which disables admin features.
func (c *Config) IsAdmin(userID int64) bool {
	return c.Telegram.AdminID != 0 && userID == c.Telegram.AdminID
}

// Location resolves the scheduler timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler timezone %q: %w", c.Scheduler.Timezone, err)
	}
	return loc, nil
}

// ParseClock parses an "HH:MM" time of day.
func ParseClock(s string) (hour, minute uint, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return uint(t.Hour()), uint(t.Minute()), nil
}
