package searchindex

import (
	"errors"
	"fmt"
)

// ErrMalformedData is returned when a serialized table cannot be loaded
var ErrMalformedData = errors.New("malformed search data")

// MalformedDataError describes which record broke the load
type MalformedDataError struct {
	Record int    // Zero-based record position, -1 when not tied to a record
	Key    string // Record key if known
	Reason string
	Err    error // Underlying parse or schema error, may be nil
}

func (e *MalformedDataError) Error() string {
	msg := ErrMalformedData.Error()
	switch {
	case e.Record >= 0 && e.Key != "":
		msg = fmt.Sprintf("%s: record %d (%q): %s", msg, e.Record, e.Key, e.Reason)
	case e.Record >= 0:
		msg = fmt.Sprintf("%s: record %d: %s", msg, e.Record, e.Reason)
	default:
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedDataError) Is(target error) bool {
	return target == ErrMalformedData
}

func (e *MalformedDataError) Unwrap() error {
	return e.Err
}

func malformed(record int, key, reason string) error {
	return &MalformedDataError{Record: record, Key: key, Reason: reason}
}
