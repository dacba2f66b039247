package payload

import (
	"errors"
	"testing"
	"time"
)

func TestNormalizeTimestamp_ConvertsToUTC(t *testing.T) {
	got, err := NormalizeTimestamp("2019-05-01T06:00:00-04:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2019, 5, 1, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if got.Location() != time.UTC {
		t.Errorf("expected UTC location, got %v", got.Location())
	}
}

func TestNormalizeTimestamp_CompactOffset(t *testing.T) {
	got, err := NormalizeTimestamp("2019-05-01T06:00:00-0400")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2019, 5, 1, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNormalizeTimestamp_PositiveOffset(t *testing.T) {
	got, err := NormalizeTimestamp("2019-05-01T06:00:00+02:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2019, 5, 1, 4, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNormalizeTimestamp_Idempotent(t *testing.T) {
	first, err := NormalizeTimestamp("2019-05-01T06:00:00-04:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := NormalizeTimestamp("2019-05-01T06:00:00-04:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !first.Equal(second) {
		t.Errorf("expected identical results, got %v and %v", first, second)
	}
}

func TestNormalizeTimestamp_Rejects(t *testing.T) {
	// The offset-only contract: 'Z' and fractional seconds do not
	// parse, nor does a missing offset.
	cases := []string{
		"2019-05-01T06:00:00Z",
		"2019-05-01T06:00:00.123-04:00",
		"2019-05-01T06:00:00.5-0400",
		"2019-05-01T06:00:00,123-04:00",
		"2019-05-01T06:00:00",
		"2019-05-01 06:00:00-04:00",
		"not-a-timestamp",
		"",
	}

	for _, s := range cases {
		_, err := NormalizeTimestamp(s)
		if err == nil {
			t.Errorf("NormalizeTimestamp(%q): expected error, got nil", s)
			continue
		}
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("NormalizeTimestamp(%q): expected ValidationError, got %v", s, err)
		}
	}
}
