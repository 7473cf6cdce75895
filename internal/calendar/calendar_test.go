package calendar

import (
	"math/rand"
	"testing"
	"time"
)

func TestParseSlot(t *testing.T) {
	s, err := ParseSlot("09:00-10:30")
	if err != nil {
		t.Fatalf("ParseSlot: %v", err)
	}
	if s.Start != "09:00" || s.End != "10:30" {
		t.Errorf("got %+v", s)
	}
	if s.String() != "09:00-10:30" {
		t.Errorf("String() = %q", s.String())
	}
	if s.Hour() != 9 {
		t.Errorf("Hour() = %d", s.Hour())
	}

	for _, bad := range []string{"", "09:00", "10:00-09:00", "9am-10am", "25:00-26:00"} {
		if _, err := ParseSlot(bad); err == nil {
			t.Errorf("ParseSlot(%q): expected error", bad)
		}
	}
}

func TestSlotTextRoundTrip(t *testing.T) {
	var s Slot
	if err := s.UnmarshalText([]byte("14:00-15:00")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	b, _ := s.MarshalText()
	if string(b) != "14:00-15:00" {
		t.Errorf("MarshalText = %q", b)
	}
}

func TestComputeAvailableSlots(t *testing.T) {
	loc := time.UTC
	busy := Event{
		Start: time.Date(2024, 1, 2, 10, 30, 0, 0, loc),
		End:   time.Date(2024, 1, 2, 11, 30, 0, 0, loc),
	}
	slots, err := ComputeAvailableSlots("2024-01-02", "09:00-13:00", 60, 0, loc, []Event{busy})
	if err != nil {
		t.Fatalf("ComputeAvailableSlots: %v", err)
	}
	want := []string{"09:00-10:00", "12:00-13:00"}
	got := Strings(slots)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slot %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestComputeAvailableSlotsTouchingEventsDoNotOverlap(t *testing.T) {
	loc := time.UTC
	busy := Event{
		Start: time.Date(2024, 1, 2, 10, 0, 0, 0, loc),
		End:   time.Date(2024, 1, 2, 11, 0, 0, 0, loc),
	}
	slots, err := ComputeAvailableSlots("2024-01-02", "09:00-12:00", 60, 0, loc, []Event{busy})
	if err != nil {
		t.Fatal(err)
	}
	got := Strings(slots)
	if len(got) != 2 || got[0] != "09:00-10:00" || got[1] != "11:00-12:00" {
		t.Errorf("got %v", got)
	}
}

func TestComputeAvailableSlotsBufferAndPartialTail(t *testing.T) {
	slots, err := ComputeAvailableSlots("2024-01-02", "09:00-11:45", 45, 15, time.UTC, nil)
	if err != nil {
		t.Fatal(err)
	}
	got := Strings(slots)
	want := []string{"09:00-09:45", "10:00-10:45", "11:00-11:45"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slot %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestComputeAvailableSlotsClosed(t *testing.T) {
	slots, err := ComputeAvailableSlots("2024-01-06", "", 60, 0, time.UTC, nil)
	if err != nil || len(slots) != 0 {
		t.Errorf("closed day: got %v, %v", slots, err)
	}
	if _, err := ComputeAvailableSlots("2024-01-02", "09:00-17:00", 0, 0, time.UTC, nil); err == nil {
		t.Error("expected error for zero duration")
	}
}

func TestAvailableSlotsNeverOverlapEvents(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewSource(42))
	day := time.Date(2024, 3, 12, 0, 0, 0, 0, loc)

	for trial := 0; trial < 500; trial++ {
		var events []Event
		for i := rng.Intn(6); i > 0; i-- {
			start := day.Add(time.Duration(6*60+rng.Intn(14*60)) * time.Minute)
			events = append(events, Event{Start: start, End: start.Add(time.Duration(5+rng.Intn(120)) * time.Minute)})
		}
		duration := []int{15, 30, 45, 60, 90}[rng.Intn(5)]
		buffer := rng.Intn(3) * 5

		slots, err := ComputeAvailableSlots("2024-03-12", "08:00-18:00", duration, buffer, loc, events)
		if err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}
		prevEnd := ""
		for _, s := range slots {
			start, end, err := s.Bounds("2024-03-12", loc)
			if err != nil {
				t.Fatalf("trial %d: %v", trial, err)
			}
			if end.Sub(start) != time.Duration(duration)*time.Minute {
				t.Errorf("trial %d: slot %s has wrong length", trial, s)
			}
			if s.Start < "08:00" || s.End > "18:00" {
				t.Errorf("trial %d: slot %s outside working hours", trial, s)
			}
			if prevEnd != "" && s.Start < prevEnd {
				t.Errorf("trial %d: slot %s overlaps previous slot", trial, s)
			}
			prevEnd = s.End
			for _, ev := range events {
				if ev.Overlaps(start, end) {
					t.Errorf("trial %d: slot %s overlaps event %s-%s", trial, s,
						ev.Start.Format(clockLayout), ev.End.Format(clockLayout))
				}
			}
		}
	}
}

func TestDescribe(t *testing.T) {
	got := Describe(map[string]string{
		"name":          "John Smith",
		"phone":         "555-123-4567",
		"date_of_birth": "01/15/1990",
		"notes":         " ",
	})
	want := "Date Of Birth: 01/15/1990\nPhone: 555-123-4567"
	if got != want {
		t.Errorf("Describe = %q, want %q", got, want)
	}
	if DefaultSummary(nil) != "Appointment - Unknown" {
		t.Errorf("DefaultSummary(nil) = %q", DefaultSummary(nil))
	}
}
