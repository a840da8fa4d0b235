package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validatePlayer(); err != nil {
		return err
	}
	if err := c.validateFeed(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSource() error {
	if !validBaseURL(c.Source.BaseURL) {
		return fmt.Errorf("source.base_url must be an absolute http(s) URL, got %q", c.Source.BaseURL)
	}
	if err := ensurePositiveMap(map[string]int{
		"source.window_days":             c.Source.WindowDays,
		"source.probe_limit":             c.Source.ProbeLimit,
		"source.probe_concurrency":       c.Source.ProbeConcurrency,
		"source.request_timeout_seconds": c.Source.RequestTimeoutSeconds,
	}); err != nil {
		return err
	}
	if c.Source.ProbeLimit > c.Source.WindowDays {
		return errors.New("source.probe_limit must not exceed source.window_days")
	}
	return nil
}

func (c *Config) validatePlayer() error {
	if c.Player.PositionIntervalMillis <= 0 {
		return errors.New("player.position_interval_ms must be positive")
	}
	return nil
}

func (c *Config) validateFeed() error {
	if c.Feed.ScanDays <= 0 {
		return errors.New("feed.scan_days must be positive")
	}
	if c.Feed.ScanDays > c.Source.WindowDays {
		return errors.New("feed.scan_days must not exceed source.window_days")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
