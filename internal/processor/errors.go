package processor

import (
	"errors"
	"fmt"
)

// Kind classifies the pipeline step a message failed at.
type Kind string

const (
	KindDecode      Kind = "decode"
	KindValidation  Kind = "validation"
	KindTimestamp   Kind = "timestamp"
	KindComputation Kind = "computation"
	KindStorage     Kind = "storage"
	KindAck         Kind = "ack"
)

// Error wraps a pipeline failure with the step it occurred at.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind of err, or "" if err is not a
// pipeline error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// Permanent reports whether err is a bad-message failure that no
// redelivery can fix. Storage and acknowledgment failures are
// transient: the same message may succeed on retry.
func Permanent(err error) bool {
	switch KindOf(err) {
	case KindDecode, KindValidation, KindTimestamp, KindComputation:
		return true
	}
	return false
}
