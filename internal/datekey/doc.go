// Package datekey converts calendar dates to and from the compact M.D.YY keys
// that name episodes in the backing store.
//
// Month and day are written without padding and the year is reduced modulo 100
// and zero-padded, so 9 March 2005 becomes "3.9.05". Parsing reconstructs the
// year as 2000+YY. Keys before 2000 or after 2099 cannot be represented; this
// century assumption is part of the identifier format and is kept as is.
//
// Conversions use whatever calendar the caller supplies (the location of the
// time.Time passed to FromTime, or the location passed to Key.Time). Callers
// near midnight in a different zone than the publisher can land on the
// neighbouring day.
package datekey
