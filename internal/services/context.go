package services

import "context"

type contextKey string

const (
	episodeKeyKey contextKey = "episode_key"
	requestIDKey  contextKey = "request_id"
)

// WithEpisodeKey annotates context with the episode date key (e.g. 3.9.25).
func WithEpisodeKey(ctx context.Context, key string) context.Context {
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, episodeKeyKey, key)
}

// EpisodeKeyFromContext returns the episode date key if present.
func EpisodeKeyFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(episodeKeyKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
