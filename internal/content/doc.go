// Package content resolves an episode's remote resources.
//
// Resolver.FetchText downloads a text resource once, bypassing every cache
// between the client and the backing store, and returns the decoded text with
// its Last-Modified time. Failures are typed: *TransportError for network
// problems (timeouts included), *HTTPError for any status other than 200 and
// *DecodingError for payloads that are not UTF-8. Their messages are meant to
// be shown to users verbatim.
//
// Resolver.ProbeExists is a HEAD-based existence oracle. It never fails; any
// problem reads as "does not exist".
//
// Every request carries a unique t= query token plus no-cache headers so
// intermediate caches cannot serve a stale copy.
package content
