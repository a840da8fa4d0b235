// Package services defines shared context helpers consumed by the content
// resolver, the playback controller, and the presentation API.
//
// Key responsibilities:
//   - Stamp request correlation identifiers on contexts so log lines emitted
//     while serving one API call can be grouped.
//   - Carry the episode date key being resolved or played so lower layers can
//     tag their logs without threading extra parameters.
package services
