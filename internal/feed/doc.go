// Package feed exports confirmed episodes as a podcast RSS document.
//
// Collect fetches the summaries of the newest episodes with bounded
// concurrency and keeps only those that exist; Build turns them into items
// whose enclosure is the episode's MP3.
package feed
