package catalog

import (
	"errors"
	"fmt"
)

// ErrNotLoaded is returned by Manager before the first successful refresh.
var ErrNotLoaded = errors.New("catalog not loaded")

// DataError reports malformed catalog input. Row is the 1-based line of the
// source table (0 when the problem is not tied to a row).
type DataError struct {
	Row    int
	Column string
	Reason string
}

func (e *DataError) Error() string {
	switch {
	case e.Row > 0 && e.Column != "":
		return fmt.Sprintf("catalog data error at row %d, column %q: %s", e.Row, e.Column, e.Reason)
	case e.Row > 0:
		return fmt.Sprintf("catalog data error at row %d: %s", e.Row, e.Reason)
	}
	return "catalog data error: " + e.Reason
}

func dataErrorf(row int, column, format string, args ...any) *DataError {
	return &DataError{Row: row, Column: column, Reason: fmt.Sprintf(format, args...)}
}

// IsDataError reports whether err wraps a *DataError.
func IsDataError(err error) bool {
	var de *DataError
	return errors.As(err, &de)
}
