package payload

import (
	"errors"
	"testing"
)

func TestParse_Valid(t *testing.T) {
	raw := []byte(`{"time_stamp": "2019-05-01T06:00:00-04:00", "data": [0.379, 1.589, 2.188]}`)

	got, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.TimeStamp != "2019-05-01T06:00:00-04:00" {
		t.Errorf("unexpected time_stamp %q", got.TimeStamp)
	}
	if len(got.Data) != 3 || got.Data[0] != 0.379 {
		t.Errorf("unexpected data %v", got.Data)
	}
}

func TestParse_EmptyDataList(t *testing.T) {
	// An empty list passes parsing; the count precondition belongs to
	// the statistics engine.
	got, err := Parse([]byte(`{"time_stamp": "2019-05-01T06:00:00-04:00", "data": []}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Data) != 0 {
		t.Errorf("expected empty data, got %v", got.Data)
	}
}

func TestParse_MalformedJSON(t *testing.T) {
	_, err := Parse([]byte(`{"time_stamp": "2019-05-01T06:00`))
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestParse_FieldErrors(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		field string
	}{
		{"missing time_stamp", `{"data": [1.0, 2.0]}`, "time_stamp"},
		{"missing data", `{"time_stamp": "2019-05-01T06:00:00-04:00"}`, "data"},
		{"time_stamp not a string", `{"time_stamp": 42, "data": [1.0, 2.0]}`, "time_stamp"},
		{"data not a list", `{"time_stamp": "2019-05-01T06:00:00-04:00", "data": "nope"}`, "data"},
		{"data is null", `{"time_stamp": "2019-05-01T06:00:00-04:00", "data": null}`, "data"},
		{"non-numeric element", `{"time_stamp": "2019-05-01T06:00:00-04:00", "data": [1.0, "x"]}`, "data"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.raw))

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tc.field {
				t.Errorf("expected field %q, got %q", tc.field, verr.Field)
			}
		})
	}
}
