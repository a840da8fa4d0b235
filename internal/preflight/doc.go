// Package preflight provides readiness checks for the directories, binaries
// and backing store that newzyx depends on.
//
// The serve runtime calls RunAll before starting the API and refuses to start
// when a required check fails. The CLI "check" command renders the same
// results as a table.
package preflight
