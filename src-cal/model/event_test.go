package model_test

import (
	"testing"
	"time"

	"skej/src-cal/model"
)

func TestNewEvent(t *testing.T) {
	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	ev, err := model.NewEvent(model.NewEventID(), "Sync", start, end, "weekly", "room 1", model.StatusPublic)
	if err != nil {
		t.Fatal(err)
	}
	if ev.Subject() != "Sync" {
		t.Errorf("subject = %q, want Sync", ev.Subject())
	}
	if ev.Duration() != time.Hour {
		t.Errorf("duration = %s, want 1h", ev.Duration())
	}
	if !ev.Covers(start) {
		t.Error("start should be covered")
	}
	if ev.Covers(end) {
		t.Error("end should not be covered")
	}
}

func TestNewEventRejectsBadInput(t *testing.T) {
	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	cases := []struct {
		name    string
		subject string
		start   time.Time
		end     time.Time
	}{
		{"blank subject", "   ", start, end},
		{"zero start", "A", time.Time{}, end},
		{"end equals start", "A", start, start},
		{"end before start", "A", end, start},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := model.NewEvent(model.NewEventID(), c.subject, c.start, c.end, "", "", model.StatusPublic)
			if err == nil {
				t.Fatal("expected an error")
			}
			if model.KindOf(err) != model.KindValidation {
				t.Errorf("kind = %s, want validation", model.KindOf(err))
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	for raw, want := range map[string]model.Status{
		"public":  model.StatusPublic,
		"Private": model.StatusPrivate,
		" PUBLIC": model.StatusPublic,
	} {
		got, err := model.ParseStatus(raw)
		if err != nil {
			t.Fatalf("ParseStatus(%q): %v", raw, err)
		}
		if got != want {
			t.Errorf("ParseStatus(%q) = %q, want %q", raw, got, want)
		}
	}
	if _, err := model.ParseStatus("secret"); err == nil {
		t.Error("expected an error for unknown status")
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tod, err := model.ParseTimeOfDay("09:30")
	if err != nil {
		t.Fatal(err)
	}
	if tod.Hour != 9 || tod.Minute != 30 {
		t.Errorf("got %s, want 09:30", tod)
	}
	for _, bad := range []string{"25:00", "10:72", "half past nine"} {
		if _, err := model.ParseTimeOfDay(bad); err == nil {
			t.Errorf("ParseTimeOfDay(%q) should fail", bad)
		}
	}
}
