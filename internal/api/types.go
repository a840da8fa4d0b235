package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// EpisodeItem describes one episode in a transport-friendly format.
type EpisodeItem struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	DisplayDate string `json:"displayDate"`
	LongDate    string `json:"longDate"`
	MonthBadge  string `json:"monthBadge"`
	DayBadge    string `json:"dayBadge"`
	SummaryURL  string `json:"summaryUrl"`
	PodcastURL  string `json:"podcastUrl"`
}

// CatalogResponse wraps the current episode window.
type CatalogResponse struct {
	Episodes     []EpisodeItem `json:"episodes"`
	IsLoading    bool          `json:"isLoading"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
	GeneratedAt  string        `json:"generatedAt,omitempty"`
}

// LatestResponse carries the newest available episode. Confirmed is false
// when no candidate was found and the newest entry is a best guess.
type LatestResponse struct {
	Episode   EpisodeItem `json:"episode"`
	Confirmed bool        `json:"confirmed"`
}

// SummaryResponse carries an episode's summary text.
type SummaryResponse struct {
	Episode      EpisodeItem `json:"episode"`
	Text         string      `json:"text"`
	Updated      string      `json:"updated,omitempty"`
	LastModified string      `json:"lastModified,omitempty"`
	Error        string      `json:"error,omitempty"`
}

// ExistsResponse reports which of an episode's resources are reachable.
type ExistsResponse struct {
	Episode EpisodeItem `json:"episode"`
	Summary bool        `json:"summary"`
	Podcast bool        `json:"podcast"`
}

// DiagnosticResponse reports the backing store connection check.
type DiagnosticResponse struct {
	URL        string `json:"url"`
	OK         bool   `json:"ok"`
	StatusCode int    `json:"statusCode,omitempty"`
	Message    string `json:"message"`
}

// PlaybackState mirrors the controller snapshot with rendered clock labels.
type PlaybackState struct {
	Episode         *EpisodeItem `json:"episode,omitempty"`
	Status          string       `json:"status"`
	IsPlaying       bool         `json:"isPlaying"`
	IsLoading       bool         `json:"isLoading"`
	PositionSeconds float64      `json:"positionSeconds"`
	DurationSeconds float64      `json:"durationSeconds"`
	Progress        string       `json:"progress"`
	LastError       string       `json:"lastError,omitempty"`
	Generation      uint64       `json:"generation"`
}

// PlaybackEvent is one published playback snapshot.
type PlaybackEvent struct {
	Sequence  uint64        `json:"seq"`
	Timestamp string        `json:"ts"`
	State     PlaybackState `json:"state"`
}

// PlaybackEventsResponse wraps a page of playback events. Next is the cursor
// to pass as "since" on the following request. First is the oldest sequence
// still buffered; Missed is set when events after "since" were already
// evicted, in which case the client should resync from GET /api/playback.
type PlaybackEventsResponse struct {
	Events []PlaybackEvent `json:"events"`
	Next   uint64          `json:"next"`
	First  uint64          `json:"first"`
	Missed bool            `json:"missed"`
}

// LoadRequest selects the episode to load. "latest" resolves the newest
// available episode.
type LoadRequest struct {
	ID string `json:"id"`
}

// SeekRequest moves the playhead.
type SeekRequest struct {
	Position float64 `json:"position"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// DaemonStatus aggregates `serve` runtime information.
type DaemonStatus struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	StartedAt    string             `json:"startedAt,omitempty"`
	BaseURL      string             `json:"baseUrl"`
	LockFilePath string             `json:"lockFilePath"`
	LogPath      string             `json:"logPath"`
	Dependencies []DependencyStatus `json:"dependencies"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}
