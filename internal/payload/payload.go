// Package payload parses and validates incoming telemetry payloads.
package payload

import (
	"encoding/json"
	"errors"
	"fmt"

	"telemetry-pipeline/internal/domain"
)

// ErrMalformed indicates the raw bytes are not well-formed JSON at all,
// as opposed to well-formed JSON with missing or mistyped fields.
var ErrMalformed = errors.New("malformed JSON")

// ValidationError reports a missing or mistyped payload field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// Parse decodes a raw JSON payload into a RawPayload. It is a pure
// function: no coercion beyond standard JSON number parsing, no side
// effects. Element-count requirements are not enforced here; they
// belong to the statistics engine.
func Parse(raw []byte) (*domain.RawPayload, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return ParseObject(fields)
}

// ParseObject validates an already-decoded JSON object.
func ParseObject(fields map[string]json.RawMessage) (*domain.RawPayload, error) {
	tsRaw, ok := fields["time_stamp"]
	if !ok {
		return nil, &ValidationError{Field: "time_stamp", Msg: "field required"}
	}
	var ts string
	if err := json.Unmarshal(tsRaw, &ts); err != nil {
		return nil, &ValidationError{Field: "time_stamp", Msg: "must be a string"}
	}

	dataRaw, ok := fields["data"]
	if !ok {
		return nil, &ValidationError{Field: "data", Msg: "field required"}
	}
	var data []float64
	if err := json.Unmarshal(dataRaw, &data); err != nil {
		return nil, &ValidationError{Field: "data", Msg: "must be a list of numbers"}
	}
	if data == nil {
		return nil, &ValidationError{Field: "data", Msg: "must be a list of numbers"}
	}

	return &domain.RawPayload{TimeStamp: ts, Data: data}, nil
}
