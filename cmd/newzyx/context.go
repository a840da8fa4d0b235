package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"newzyx/internal/api"
	"newzyx/internal/catalog"
	"newzyx/internal/config"
	"newzyx/internal/content"
	"newzyx/internal/logging"
	"newzyx/internal/playback"
	"newzyx/internal/player"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	servicesOnce sync.Once
	resolver     *content.Resolver
	catalog      *catalog.Service
	episodes     *api.EpisodeService
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

// log returns the configured logger, falling back to a no-op logger when the
// log file cannot be opened so one-shot commands still work.
func (c *commandContext) log() *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(c.config)
		if err != nil {
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) services() (*content.Resolver, *catalog.Service, *api.EpisodeService) {
	c.servicesOnce.Do(func() {
		cfg := c.config
		logger := c.log()
		c.resolver = content.NewResolver(content.Options{
			Timeout:   cfg.RequestTimeout(),
			UserAgent: cfg.Source.UserAgent,
			Logger:    logger,
		})
		c.catalog = catalog.NewService(catalog.Options{
			BaseURL:     cfg.Source.BaseURL,
			WindowDays:  cfg.Source.WindowDays,
			ProbeLimit:  cfg.Source.ProbeLimit,
			Concurrency: cfg.Source.ProbeConcurrency,
			Logger:      logger,
		}, c.resolver)
		c.episodes = api.NewEpisodeService(c.catalog, c.resolver, api.ServiceOptions{
			BaseURL: cfg.Source.BaseURL,
		})
	})
	return c.resolver, c.catalog, c.episodes
}

// newController builds a playback controller backed by ffprobe and ffplay.
// Callers own the controller and must Close it.
func (c *commandContext) newController(cfg *config.Config) *playback.Controller {
	logger := c.log()
	return playback.NewController(playback.Options{
		Opener: player.New(player.Options{
			FFplayBinary:  cfg.Player.FFplayBinary,
			FFprobeBinary: cfg.Player.FFprobeBinary,
			Logger:        logger,
		}),
		PositionInterval: cfg.PositionInterval(),
		Logger:           logger,
	})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
