package protocol

import (
	"errors"
	"fmt"
)

// ErrLookupMiss is matched by every LookupMissError through errors.Is.
var ErrLookupMiss = errors.New("protocol: lookup miss")

// MalformedParameterError reports a protocol line that cannot be decoded into
// the shape its query promises. It is fatal to the query that produced it.
type MalformedParameterError struct {
	Query  string // command whose response carried the line, if known
	Line   string
	Field  int // zero-based field position, -1 when the whole line is at fault
	Reason string
	Err    error
}

func (e *MalformedParameterError) Error() string {
	where := "line"
	if e.Field >= 0 {
		where = fmt.Sprintf("field %d", e.Field)
	}
	msg := fmt.Sprintf("protocol: malformed %s in %q: %s", where, e.Line, e.Reason)
	if e.Query != "" {
		msg = fmt.Sprintf("protocol: %s: malformed %s in %q: %s", e.Query, where, e.Line, e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedParameterError) Unwrap() error { return e.Err }

// EmptyResponseError is returned when a query whose answer is required came
// back with no records.
type EmptyResponseError struct {
	Query string
}

func (e *EmptyResponseError) Error() string {
	return fmt.Sprintf("protocol: empty response to %q", e.Query)
}

// LookupMissError reports a key missing from a table or catalog. Callers
// treat it as recoverable and skip the element or curve that needed the key.
type LookupMissError struct {
	Table string
	Key   string
}

func (e *LookupMissError) Error() string {
	return fmt.Sprintf("%s: no entry for %q", e.Table, e.Key)
}

// Is makes errors.Is(err, ErrLookupMiss) hold for any LookupMissError.
func (e *LookupMissError) Is(target error) bool { return target == ErrLookupMiss }

func malformed(query, line string, field int, reason string, err error) *MalformedParameterError {
	return &MalformedParameterError{Query: query, Line: line, Field: field, Reason: reason, Err: err}
}
