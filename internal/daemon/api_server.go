package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"newzyx/internal/api"
	"newzyx/internal/catalog"
	"newzyx/internal/config"
	"newzyx/internal/content"
	"newzyx/internal/datekey"
	"newzyx/internal/feed"
	"newzyx/internal/logging"
	"newzyx/internal/preflight"
)

const (
	defaultEventLimit      = 100
	maxEventLimit          = 256
	longPollTimeout        = 25 * time.Second
	maxRequestBody         = 1 << 16
	playbackSequenceHeader = "X-Playback-Sequence"
)

type apiServer struct {
	cfg      *config.Config
	logger   *slog.Logger
	daemon   *Daemon
	episodes *api.EpisodeService

	// pollTimeout bounds a waiting events request.
	pollTimeout time.Duration

	router   *mux.Router
	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		cfg:    cfg,
		logger: logger,
		daemon: d,
		episodes: api.NewEpisodeService(d.catalog, d.content, api.ServiceOptions{
			BaseURL: cfg.Source.BaseURL,
			Clock:   d.now,
		}),
		pollTimeout: longPollTimeout,
	}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	r.Use(requestIDMiddleware, accessLogMiddleware(srv.log()))

	a := r.PathPrefix("/api").Subrouter()
	a.HandleFunc("/status", srv.handleStatus).Methods(http.MethodGet)
	a.HandleFunc("/preflight", srv.handlePreflight).Methods(http.MethodGet)
	a.HandleFunc("/diagnostics", srv.handleDiagnostics).Methods(http.MethodGet)
	a.HandleFunc("/episodes", srv.handleEpisodes).Methods(http.MethodGet)
	a.HandleFunc("/episodes/latest", srv.handleLatest).Methods(http.MethodGet)
	a.HandleFunc("/episodes/{id}/summary", srv.handleSummary).Methods(http.MethodGet)
	a.HandleFunc("/episodes/{id}/exists", srv.handleExists).Methods(http.MethodGet)
	a.HandleFunc("/playback", srv.handlePlayback).Methods(http.MethodGet)
	a.HandleFunc("/playback/events", srv.handlePlaybackEvents).Methods(http.MethodGet)
	a.HandleFunc("/playback/load", srv.handleLoad).Methods(http.MethodPost)
	a.HandleFunc("/playback/play", srv.handleTransport(func(p Playback) { p.Play() })).Methods(http.MethodPost)
	a.HandleFunc("/playback/pause", srv.handleTransport(func(p Playback) { p.Pause() })).Methods(http.MethodPost)
	a.HandleFunc("/playback/toggle", srv.handleTransport(func(p Playback) { p.TogglePlayPause() })).Methods(http.MethodPost)
	a.HandleFunc("/playback/seek", srv.handleSeek).Methods(http.MethodPost)
	r.HandleFunc("/feed.xml", srv.handleFeed).Methods(http.MethodGet)
	srv.router = r
	return srv
}

func (s *apiServer) start(ctx context.Context, bind string) error {
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener
	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      s.pollTimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	server := s.server

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorWithContext(s.log(), "api server error", "api_serve_failed", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
		s.server = nil
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.daemon.Status(r.Context())
	payload := api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		BaseURL:      s.cfg.Source.BaseURL,
		LockFilePath: status.LockFilePath,
		LogPath:      status.LogPath,
		Dependencies: api.FromDependencyStatuses(status.Dependencies),
	}
	if !status.StartedAt.IsZero() {
		payload.StartedAt = status.StartedAt.UTC().Format(time.RFC3339)
	}
	s.respond(w, http.StatusOK, payload)
}

func (s *apiServer) handlePreflight(w http.ResponseWriter, r *http.Request) {
	results := preflight.RunAll(r.Context(), s.cfg, s.daemon.content, s.daemon.now())
	s.respond(w, http.StatusOK, results)
}

func (s *apiServer) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	resp, err := s.episodes.Diagnose(r.Context())
	if err != nil {
		s.respond(w, http.StatusInternalServerError, resp)
		return
	}
	s.respond(w, http.StatusOK, resp)
}

func (s *apiServer) handleEpisodes(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refresh") == "1" {
		if err := s.daemon.Refresh(); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	resp, err := s.episodes.List()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, resp)
}

func (s *apiServer) handleLatest(w http.ResponseWriter, r *http.Request) {
	resp, err := s.episodes.Latest(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, resp)
}

func (s *apiServer) handleSummary(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	resp, err := s.episodes.Summary(r.Context(), id)
	if err != nil {
		if resp.Episode.ID == "" {
			s.fail(w, r, err)
			return
		}
		s.respond(w, statusForError(err), resp)
		return
	}
	s.respond(w, http.StatusOK, resp)
}

func (s *apiServer) handleExists(w http.ResponseWriter, r *http.Request) {
	resp, err := s.episodes.Exists(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, resp)
}

// handlePlayback returns the current state. The X-Playback-Sequence header
// carries the newest event sequence so clients can long-poll from there.
func (s *apiServer) handlePlayback(w http.ResponseWriter, _ *http.Request) {
	var seq uint64
	if evt, ok := s.daemon.playback.Hub().Latest(); ok {
		seq = evt.Sequence
	}
	w.Header().Set(playbackSequenceHeader, strconv.FormatUint(seq, 10))
	s.respond(w, http.StatusOK, api.FromPlaybackState(s.daemon.playback.Snapshot()))
}

func (s *apiServer) handlePlaybackEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	since, _ := strconv.ParseUint(query.Get("since"), 10, 64)
	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit <= 0 {
		limit = defaultEventLimit
	}
	limit = min(limit, maxEventLimit)
	wait := query.Get("wait") == "1" || strings.EqualFold(query.Get("wait"), "true")

	ctx := r.Context()
	if wait {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.pollTimeout)
		defer cancel()
	}
	hub := s.daemon.playback.Hub()
	events, next, err := hub.Fetch(ctx, since, limit, wait)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		s.fail(w, r, err)
		return
	}
	if errors.Is(r.Context().Err(), context.Canceled) {
		return
	}
	first := hub.FirstSequence()
	s.respond(w, http.StatusOK, api.PlaybackEventsResponse{
		Events: api.FromPlaybackEvents(events),
		Next:   next,
		First:  first,
		Missed: since+1 < first,
	})
}

func (s *apiServer) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req api.LoadRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	ep, err := s.episodes.Resolve(r.Context(), req.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.daemon.playback.Load(ep)
	s.respond(w, http.StatusAccepted, api.FromPlaybackState(s.daemon.playback.Snapshot()))
}

func (s *apiServer) handleTransport(action func(Playback)) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		action(s.daemon.playback)
		s.respond(w, http.StatusOK, api.FromPlaybackState(s.daemon.playback.Snapshot()))
	}
}

func (s *apiServer) handleSeek(w http.ResponseWriter, r *http.Request) {
	var req api.SeekRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.daemon.playback.Seek(req.Position)
	s.respond(w, http.StatusOK, api.FromPlaybackState(s.daemon.playback.Snapshot()))
}

func (s *apiServer) handleFeed(w http.ResponseWriter, r *http.Request) {
	episodes, err := s.daemon.catalog.Episodes()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if len(episodes) > s.cfg.Feed.ScanDays {
		episodes = episodes[:s.cfg.Feed.ScanDays]
	}
	entries := feed.Collect(r.Context(), s.daemon.content, episodes, s.cfg.Source.ProbeConcurrency, s.logger)

	var buf bytes.Buffer
	err = feed.Write(&buf, feed.Options{
		Title:       s.cfg.Feed.Title,
		Link:        s.cfg.FeedLink(),
		Description: s.cfg.Feed.Description,
		Now:         s.daemon.now,
	}, entries)
	if errors.Is(err, feed.ErrNoEntries) {
		writeError(w, http.StatusNotFound, "no episodes available")
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *apiServer) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		logging.WarnWithContext(logging.WithContext(r.Context(), s.log()), "api request failed", "api_request_failed",
			logging.String("path", r.URL.Path),
			logging.Error(err),
			logging.Impact("request returned an error"),
		)
	}
	writeError(w, status, err.Error())
}

func (s *apiServer) respond(w http.ResponseWriter, status int, payload any) {
	if err := writeJSON(w, status, payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) log() *slog.Logger {
	return logging.NewComponentLogger(s.logger, "api-server")
}

// statusForError maps domain errors to HTTP status codes.
func statusForError(err error) int {
	var (
		httpErr      *content.HTTPError
		transportErr *content.TransportError
		decodeErr    *content.DecodingError
	)
	switch {
	case errors.Is(err, datekey.ErrMalformedKey):
		return http.StatusBadRequest
	case content.IsNotFound(err):
		return http.StatusNotFound
	case errors.As(err, &transportErr):
		if transportErr.Timeout() {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	case errors.As(err, &httpErr), errors.As(err, &decodeErr), errors.Is(err, content.ErrInvalidResponse):
		return http.StatusBadGateway
	case errors.Is(err, catalog.ErrEmptyCatalog):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	_ = writeJSON(w, status, api.ErrorResponse{Error: message})
}
