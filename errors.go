package editrans

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrParse                = errors.New("parse error")
	ErrUnsupportedFormat    = errors.New("unsupported document format")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidFieldValue    = errors.New("invalid field value")
	ErrControlTotalMismatch = errors.New("control total mismatch")
	ErrAmbiguousMapping     = errors.New("ambiguous field mapping")
	ErrInvalidSeparators    = errors.New("invalid X12 separators")
	ErrEmptyDocument        = errors.New("document contains no rows")
)

// FormatError reports malformed raw document bytes. It is always fatal to
// the parse call that produced it.
type FormatError struct {
	// Format is the codec that rejected the input.
	Format Format
	// Row is the 1-based data row index the error refers to, or zero when
	// the error is not tied to a specific row.
	Row int
	Err error
}

func (e *FormatError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("%s: row %d: %s", e.Format, e.Row, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Format, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func newFormatError(format Format, row int, err error) error {
	if !errors.Is(err, ErrParse) {
		err = fmt.Errorf("%w: %w", ErrParse, err)
	}
	return &FormatError{Format: format, Row: row, Err: err}
}

// UnsupportedFormatError indicates the caller requested a format or
// format/transaction combination the engine does not implement. It is
// raised by the dispatcher before any parsing is attempted.
type UnsupportedFormatError struct {
	Requested string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnsupportedFormat, e.Requested)
}

func (e *UnsupportedFormatError) Unwrap() error {
	return ErrUnsupportedFormat
}

// TransactionError reports a structural problem encountered while
// interpreting a transaction set. Header-level instances are fatal to the
// document; line-level instances carry the offending 1-based row index and
// are recorded on the InterpretReport instead of aborting the call.
type TransactionError struct {
	Set   TransactionSet
	Field string
	// Row is the 1-based input row index, or zero for header-level errors.
	Row   int
	Value string
	Err   error
}

func (e *TransactionError) Error() string {
	var b []byte
	b = fmt.Appendf(b, "%s", e.Set)
	if e.Row > 0 {
		b = fmt.Appendf(b, ": row %d", e.Row)
	}
	if e.Field != "" {
		b = fmt.Appendf(b, ": field %q", e.Field)
	}
	if e.Value != "" {
		b = fmt.Appendf(b, ": value %q", e.Value)
	}
	b = fmt.Appendf(b, ": %s", e.Err)
	return string(b)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

func missingField(set TransactionSet, field string, row int) error {
	return &TransactionError{Set: set, Field: field, Row: row, Err: ErrMissingRequiredField}
}

func invalidValue(set TransactionSet, field, value string, row int, cause error) error {
	err := ErrInvalidFieldValue
	if cause != nil {
		err = fmt.Errorf("%w: %w", ErrInvalidFieldValue, cause)
	}
	return &TransactionError{Set: set, Field: field, Row: row, Value: value, Err: err}
}

// ControlTotalError records a trailer control total that disagrees with the
// detail rows actually assembled. It is recoverable: the entity is still
// returned and the error is attached to the InterpretReport as a warning,
// since detail data is usually more trustworthy than a stale trailer.
type ControlTotalError struct {
	Field    string
	Expected decimal.Decimal
	Actual   decimal.Decimal
}

func (e *ControlTotalError) Error() string {
	return fmt.Sprintf(
		"%s: %s: declared %s, assembled %s",
		ErrControlTotalMismatch, e.Field, e.Expected, e.Actual,
	)
}

func (e *ControlTotalError) Unwrap() error {
	return ErrControlTotalMismatch
}

// LineError flags one defective detail row. The row is excluded from the
// assembled entity and reported here rather than silently dropped.
type LineError struct {
	// Row is the 1-based index of the offending input row.
	Row   int
	Field string
	Value string
	Err   error
}

func (e *LineError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("row %d: field %q: value %q: %s", e.Row, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("row %d: field %q: %s", e.Row, e.Field, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}
