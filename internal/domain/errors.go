package domain

import (
	"errors"
	"fmt"
)

// ErrHeaderMismatch is returned when a table's header row lacks a canonical column.
var ErrHeaderMismatch = errors.New("header row does not match canonical columns")

// StoreError reports a failure talking to the backing tabular store.
type StoreError struct {
	Backend string // sheets, postgres, sqlite, memory
	Op      string // append, read_all, ensure_header
	Err     error
}

func (e *StoreError) Error() string {
	if e == nil {
		return "store error"
	}
	if e.Err == nil {
		return fmt.Sprintf("store error [backend=%s op=%s]", e.Backend, e.Op)
	}
	return fmt.Sprintf("%s store %s failed: %v", e.Backend, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewStoreError wraps err for the given backend and operation. A nil err yields nil.
func NewStoreError(backend, op string, err error) error {
	if err == nil {
		return nil
	}
	var existing *StoreError
	if errors.As(err, &existing) {
		return err
	}
	return &StoreError{Backend: backend, Op: op, Err: err}
}

// ParseError reports a stored row that cannot be converted back into a Record.
type ParseError struct {
	Row    int // 1-based data row, header excluded
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d: cannot parse %s %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
