// Package deps reports whether the external binaries newzyx shells out to
// are installed.
package deps
