package core

import (
	"errors"
	"fmt"

	"github.com/JonMunkholm/movieloader/internal/tabular"
)

var (
	// ErrUnsupportedFormat is returned for file names without a .csv or
	// .xlsx suffix. It is raised before any row is read.
	ErrUnsupportedFormat = tabular.ErrUnsupportedFormat

	// ErrUnknownProfile is returned when a load names a profile that is not registered.
	ErrUnknownProfile = errors.New("unknown ingestion profile")
)

// MissingFieldError reports a required logical field that a row does not carry.
type MissingFieldError struct {
	Field Field
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", string(e.Field))
}

// RowError wraps the failure that stopped a load. Line is the 1-based
// line (CSV) or row number (XLSX) of the failing record.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
