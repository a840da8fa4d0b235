package config

const (
	defaultBaseURL                = "https://kidsnewsfeed.s3.us-east-2.amazonaws.com"
	defaultWindowDays             = 60
	defaultProbeLimit             = 10
	defaultProbeConcurrency       = 1
	defaultRequestTimeoutSeconds  = 30
	defaultUserAgent              = "newzyx/0.1.0"
	defaultFFplayBinary           = "ffplay"
	defaultFFprobeBinary          = "ffprobe"
	defaultPositionIntervalMillis = 500
	defaultAPIBind                = "127.0.0.1:7590"
	defaultStateDir               = "~/.local/share/newzyx"
	defaultLogDir                 = "~/.local/share/newzyx/logs"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultLogMaxSizeMB           = 10
	defaultLogMaxBackups          = 5
	defaultLogRetentionDays       = 30
	defaultFeedTitle              = "Kids News Feed"
	defaultFeedDescription        = "Daily news summaries and podcasts"
	defaultFeedScanDays           = 14
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Source: Source{
			BaseURL:               defaultBaseURL,
			WindowDays:            defaultWindowDays,
			ProbeLimit:            defaultProbeLimit,
			ProbeConcurrency:      defaultProbeConcurrency,
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
			UserAgent:             defaultUserAgent,
		},
		Player: Player{
			FFplayBinary:           defaultFFplayBinary,
			FFprobeBinary:          defaultFFprobeBinary,
			PositionIntervalMillis: defaultPositionIntervalMillis,
		},
		API: API{
			Bind: defaultAPIBind,
		},
		Feed: Feed{
			Title:       defaultFeedTitle,
			Description: defaultFeedDescription,
			ScanDays:    defaultFeedScanDays,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			MaxSizeMB:     defaultLogMaxSizeMB,
			MaxBackups:    defaultLogMaxBackups,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
