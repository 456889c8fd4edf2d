// Package indicator computes RSI and Bollinger Bands over close windows and
// retains the snapshot pairs that crossing detection needs.
package indicator

import "errors"

// ErrInsufficientHistory is returned when a price window is shorter than the
// period an indicator needs. Callers skip the symbol for the cycle; it is
// never fatal.
var ErrInsufficientHistory = errors.New("insufficient price history for indicator")
