package content

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"

	"newzyx/internal/logging"
	"newzyx/internal/services"
)

// Transport performs HTTP requests. *http.Client satisfies it.
type Transport interface {
	Do(req *http.Request) (*http.Response, error)
}

// Policy selects how a fetch treats caches.
type Policy string

// BypassCache forces every cache layer to be skipped. It is the only policy.
const BypassCache Policy = "bypass-cache"

// CacheBustParam is the query parameter carrying the uniqueness token.
const CacheBustParam = "t"

// FetchedContent is the result of one successful text fetch.
type FetchedContent struct {
	Text         string     `json:"text"`
	LastModified *time.Time `json:"last_modified,omitempty"`
}

// Options configures a Resolver.
type Options struct {
	Transport Transport
	// Timeout applies to the default transport only.
	Timeout   time.Duration
	UserAgent string
	Clock     func() time.Time
	Logger    *slog.Logger
}

// Resolver fetches and probes episode resources.
type Resolver struct {
	transport Transport
	userAgent string
	now       func() time.Time
	seq       atomic.Uint64
	logger    *slog.Logger
}

// NewResolver builds a Resolver. Without an explicit transport it uses an
// http.Client with the configured timeout and its own caching disabled.
func NewResolver(opts Options) *Resolver {
	transport := opts.Transport
	if transport == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		base := http.DefaultTransport.(*http.Transport).Clone()
		base.DisableKeepAlives = true
		transport = &http.Client{Timeout: timeout, Transport: base}
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Resolver{
		transport: transport,
		userAgent: strings.TrimSpace(opts.UserAgent),
		now:       clock,
		logger:    logging.NewComponentLogger(opts.Logger, "content"),
	}
}

// FetchText downloads locator as UTF-8 text in a single attempt.
func (r *Resolver) FetchText(ctx context.Context, locator string, policy Policy) (FetchedContent, error) {
	if policy != BypassCache {
		return FetchedContent{}, fmt.Errorf("%w: %q", ErrUnsupportedPolicy, policy)
	}
	logger := logging.WithContext(ctx, r.logger)

	req, err := r.newRequest(ctx, http.MethodGet, locator)
	if err != nil {
		return FetchedContent{}, err
	}
	resp, err := r.transport.Do(req)
	if err != nil {
		logging.WarnWithContext(logger, "summary fetch failed", "content_fetch_failed",
			logging.String("url", locator),
			logging.Error(err),
			logging.Hint("check network connectivity and source.base_url"),
			logging.Impact("summary text unavailable"),
		)
		return FetchedContent{}, &TransportError{URL: locator, Err: err}
	}
	if resp == nil || resp.Body == nil {
		logging.WarnWithContext(logger, "summary fetch returned no body", "content_invalid_response",
			logging.String("url", locator),
			logging.Impact("summary text unavailable"),
		)
		return FetchedContent{}, ErrInvalidResponse
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		logger.Info("summary fetch returned non-200 status",
			logging.String("url", locator),
			logging.Int("status", resp.StatusCode),
		)
		return FetchedContent{}, &HTTPError{URL: locator, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FetchedContent{}, &TransportError{URL: locator, Err: fmt.Errorf("read body: %w", err)}
	}
	if !utf8.Valid(body) {
		detected := mimetype.Detect(body).String()
		logging.WarnWithContext(logger, "summary payload is not utf-8", "content_decode_failed",
			logging.String("url", locator),
			logging.String("mime", detected),
			logging.Int("bytes", len(body)),
			logging.Hint("the stored summary must be UTF-8 text"),
			logging.Impact("summary text unavailable"),
		)
		return FetchedContent{}, &DecodingError{URL: locator, MIME: detected, Size: len(body)}
	}

	fetched := FetchedContent{
		Text:         string(body),
		LastModified: ParseLastModified(resp.Header.Get("Last-Modified")),
	}
	logger.Debug("fetched summary",
		logging.String("url", locator),
		logging.Int("bytes", len(body)),
	)
	return fetched, nil
}

// ProbeExists reports whether locator answers a HEAD request with 200.
func (r *Resolver) ProbeExists(ctx context.Context, locator string) bool {
	req, err := r.newRequest(ctx, http.MethodHead, locator)
	if err != nil {
		return false
	}
	resp, err := r.transport.Do(req)
	if err != nil {
		logging.WithContext(ctx, r.logger).Debug("probe failed",
			logging.String("url", locator),
			logging.Error(err),
		)
		return false
	}
	if resp == nil {
		return false
	}
	if resp.Body != nil {
		_ = resp.Body.Close()
	}
	return resp.StatusCode == http.StatusOK
}

// BustURL appends a fresh uniqueness token to locator.
func (r *Resolver) BustURL(locator string) (string, error) {
	parsed, err := url.Parse(locator)
	if err != nil {
		return "", fmt.Errorf("parse locator %q: %w", locator, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("locator %q is not an absolute url", locator)
	}
	query := parsed.Query()
	query.Set(CacheBustParam, r.token())
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func (r *Resolver) token() string {
	n := r.seq.Add(1)
	return strconv.FormatInt(r.now().UnixNano(), 10) + "." + strconv.FormatUint(n, 10)
}

func (r *Resolver) newRequest(ctx context.Context, method, locator string) (*http.Request, error) {
	busted, err := r.BustURL(locator)
	if err != nil {
		return nil, &TransportError{URL: locator, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, method, busted, nil)
	if err != nil {
		return nil, &TransportError{URL: locator, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Cache-Control", "no-cache, no-store")
	req.Header.Set("Pragma", "no-cache")
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		req.Header.Set("X-Request-ID", rid)
	}
	return req, nil
}

var lastModifiedLayouts = []string{
	http.TimeFormat,
	time.RFC1123,
	time.RFC1123Z,
}

// ParseLastModified parses an RFC 1123 header value. Missing or unparsable
// values yield nil.
func ParseLastModified(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range lastModifiedLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			utc := ts.UTC()
			return &utc
		}
	}
	return nil
}
