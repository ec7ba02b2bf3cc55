package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ScheduleConfig configures the weekly review run.
type ScheduleConfig struct {
	Enabled       bool         `json:"enabled" yaml:"enabled"`
	DayOfWeek     time.Weekday `json:"dayOfWeek" yaml:"dayOfWeek"`
	Hour          int          `json:"hour" yaml:"hour"`
	Minute        int          `json:"minute" yaml:"minute"`
	Scope         string       `json:"scope,omitempty" yaml:"scope,omitempty"`
	NotifyEnabled bool         `json:"notifyEnabled" yaml:"notifyEnabled"`
	NotifyAddress string       `json:"notifyAddress,omitempty" yaml:"notifyAddress,omitempty"`
	LastRun       *time.Time   `json:"lastRun,omitempty" yaml:"lastRun,omitempty"`
	NextRun       *time.Time   `json:"nextRun,omitempty" yaml:"nextRun,omitempty"`
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *ScheduleConfig) Validate() error {
	var errs []error
	if c.DayOfWeek < time.Sunday || c.DayOfWeek > time.Saturday {
		errs = append(errs, fmt.Errorf("dayOfWeek must be within 0..6, got %d", c.DayOfWeek))
	}
	if c.Hour < 0 || c.Hour > 23 {
		errs = append(errs, fmt.Errorf("hour must be within 0..23, got %d", c.Hour))
	}
	if c.Minute < 0 || c.Minute > 59 {
		errs = append(errs, fmt.Errorf("minute must be within 0..59, got %d", c.Minute))
	}
	if c.NotifyEnabled && strings.TrimSpace(c.NotifyAddress) == "" {
		errs = append(errs, errors.New("notifyAddress is required when notifications are enabled"))
	}
	return errors.Join(errs...)
}

// Recipient returns the notification address when notifications are on.
func (c *ScheduleConfig) Recipient() (string, bool) {
	if c == nil || !c.NotifyEnabled || c.NotifyAddress == "" {
		return "", false
	}
	return c.NotifyAddress, true
}
