package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSource()
	c.normalizePlayer()
	c.normalizeFeed()
	c.normalizeLogging()
	c.API.Bind = strings.TrimSpace(c.API.Bind)
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSource() {
	if value, ok := os.LookupEnv("NEWZYX_BASE_URL"); ok && strings.TrimSpace(value) != "" {
		c.Source.BaseURL = value
	}
	c.Source.BaseURL = strings.TrimRight(strings.TrimSpace(c.Source.BaseURL), "/")
	if c.Source.BaseURL == "" {
		c.Source.BaseURL = defaultBaseURL
	}
	if c.Source.WindowDays == 0 {
		c.Source.WindowDays = defaultWindowDays
	}
	if c.Source.ProbeLimit == 0 {
		c.Source.ProbeLimit = defaultProbeLimit
	}
	if c.Source.ProbeConcurrency == 0 {
		c.Source.ProbeConcurrency = defaultProbeConcurrency
	}
	if c.Source.RequestTimeoutSeconds == 0 {
		c.Source.RequestTimeoutSeconds = defaultRequestTimeoutSeconds
	}
	c.Source.UserAgent = strings.TrimSpace(c.Source.UserAgent)
	if c.Source.UserAgent == "" {
		c.Source.UserAgent = defaultUserAgent
	}
}

func (c *Config) normalizePlayer() {
	c.Player.FFplayBinary = strings.TrimSpace(c.Player.FFplayBinary)
	if c.Player.FFplayBinary == "" {
		c.Player.FFplayBinary = defaultFFplayBinary
	}
	c.Player.FFprobeBinary = strings.TrimSpace(c.Player.FFprobeBinary)
	if c.Player.FFprobeBinary == "" {
		c.Player.FFprobeBinary = defaultFFprobeBinary
	}
	if c.Player.PositionIntervalMillis == 0 {
		c.Player.PositionIntervalMillis = defaultPositionIntervalMillis
	}
}

func (c *Config) normalizeFeed() {
	c.Feed.Title = strings.TrimSpace(c.Feed.Title)
	if c.Feed.Title == "" {
		c.Feed.Title = defaultFeedTitle
	}
	c.Feed.Description = strings.TrimSpace(c.Feed.Description)
	if c.Feed.Description == "" {
		c.Feed.Description = defaultFeedDescription
	}
	c.Feed.Link = strings.TrimSpace(c.Feed.Link)
	if c.Feed.ScanDays == 0 {
		c.Feed.ScanDays = defaultFeedScanDays
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = defaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups < 0 {
		c.Logging.MaxBackups = 0
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
