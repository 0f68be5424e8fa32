package models

import (
	"testing"
	"time"

	"pgregory.net/rapid"
)

func TestTimestampRoundTrip_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sec := rapid.Int64Range(0, 4102444800).Draw(t, "unix")
		original := time.Unix(sec, 0).UTC()

		parsed, err := ParseTimestamp(FormatTimestamp(original))
		if err != nil {
			t.Fatalf("ParseTimestamp failed: %v", err)
		}
		if !parsed.Equal(original) {
			t.Fatalf("expected %v, got %v", original, parsed)
		}
	})
}

func TestParseTimestamp_AcceptsRFC3339(t *testing.T) {
	got, err := ParseTimestamp("2024-03-01T12:30:00+02:00")
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestTimestampKeepsWallClock(t *testing.T) {
	got, err := ParseTimestamp("2024-03-10T23:30:00.123+02:00")
	if err != nil {
		t.Fatal(err)
	}
	if s := FormatTimestamp(got); s != "2024-03-10 23:30:00" {
		t.Errorf("expected 2024-03-10 23:30:00, got %s", s)
	}
	if got.Hour() != 23 {
		t.Errorf("expected hour 23, got %d", got.Hour())
	}
}

func TestParseTimestamp_Malformed(t *testing.T) {
	for _, value := range []string{"", "yesterday", "2024-13-01 00:00:00"} {
		if _, err := ParseTimestamp(value); err == nil {
			t.Errorf("expected error for %q", value)
		}
	}
}

func TestSubmissionIsPerfect(t *testing.T) {
	cases := map[int]bool{0: false, 99: false, 100: true, 120: true}
	for score, want := range cases {
		s := &Submission{Score: score}
		if s.IsPerfect() != want {
			t.Errorf("score %d: expected %v", score, want)
		}
	}
}
