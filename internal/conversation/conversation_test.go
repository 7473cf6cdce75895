package conversation

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ziadkadry99/apptagent/internal/business"
	"github.com/ziadkadry99/apptagent/internal/calendar"
	"github.com/ziadkadry99/apptagent/internal/intent"
)

func fixedClock() func() time.Time {
	t := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func newTestContext(required ...string) *Context {
	return NewStore(fixedClock()).GetOrCreate("s1", business.TypeGeneric, required)
}

func TestUpdateCustomerInfo(t *testing.T) {
	c := newTestContext("name", "phone")
	c.UpdateCustomerInfo("name", "  John Smith  ")
	c.UpdateCustomerInfo("phone", "   ")
	c.UpdateCustomerInfo("name", "John Smith")

	if c.CustomerInfo["name"] != "John Smith" {
		t.Errorf("name: got %q", c.CustomerInfo["name"])
	}
	if _, ok := c.CustomerInfo["phone"]; ok {
		t.Error("blank phone must not be stored")
	}
	if len(c.CollectedFields) != 1 || c.CollectedFields[0] != "name" {
		t.Errorf("collected: %v", c.CollectedFields)
	}
	missing := c.MissingFields()
	if len(missing) != 1 || missing[0] != "phone" {
		t.Errorf("missing: %v", missing)
	}
}

func TestMissingFieldsAgreesWithIsInfoComplete(t *testing.T) {
	fields := []string{"name", "phone", "date_of_birth"}
	values := map[string]string{"name": "Ann", "phone": "555-123-4567", "date_of_birth": "01/01/1990"}
	// Every population order of every subset.
	var orders [][]string
	var permute func(prefix, rest []string)
	permute = func(prefix, rest []string) {
		orders = append(orders, append([]string(nil), prefix...))
		for i := range rest {
			next := append(append([]string(nil), rest[:i]...), rest[i+1:]...)
			permute(append(prefix, rest[i]), next)
		}
	}
	permute(nil, fields)

	for _, order := range orders {
		c := newTestContext(fields...)
		for _, f := range order {
			c.UpdateCustomerInfo(f, values[f])
			if (len(c.MissingFields()) == 0) != c.IsInfoComplete() {
				t.Fatalf("order %v: MissingFields and IsInfoComplete disagree", order)
			}
		}
		if c.IsInfoComplete() != (len(order) == len(fields)) {
			t.Errorf("order %v: IsInfoComplete = %v", order, c.IsInfoComplete())
		}
	}
}

func TestCollectedFieldsMirrorCustomerInfo(t *testing.T) {
	c := newTestContext("name", "phone")
	c.UpdateCustomerInfo("email", "a@b.co")
	c.UpdateCustomerInfo("name", "Ann")
	for _, f := range c.CollectedFields {
		if c.CustomerInfo[f] == "" {
			t.Errorf("%s collected without a value", f)
		}
	}
	for f, v := range c.CustomerInfo {
		if v != "" && !contains(c.CollectedFields, f) {
			t.Errorf("%s has a value but is not collected", f)
		}
	}
}

func TestSummary(t *testing.T) {
	c := newTestContext("name", "phone")
	if got := c.Summary(); got != "Stage: greeting" {
		t.Errorf("empty summary: %q", got)
	}
	c.CurrentIntent = intent.BookAppointment
	c.RequestedDate = "2024-01-02"
	c.RequestedTime = "15:00"
	c.SelectedSlot = &calendar.Slot{Start: "15:00", End: "16:00"}
	c.UpdateCustomerInfo("name", "John Smith")
	c.UpdateCustomerInfo("phone", "555-123-4567")
	c.Stage = StageConfirmation

	want := "Intent: book_appointment | Date: 2024-01-02 | Time: 15:00 | Selected: 15:00-16:00 | " +
		"Customer: name: John Smith, phone: 555-123-4567 | Stage: confirmation"
	if got := c.Summary(); got != want {
		t.Errorf("Summary:\n got %q\nwant %q", got, want)
	}
}

func TestSetAvailabilityClearsStaleSelection(t *testing.T) {
	c := newTestContext()
	morning := calendar.Slot{Start: "09:00", End: "10:00"}
	c.SetAvailability("2024-01-02", []calendar.Slot{morning})
	c.RequestedTime = "09:00"
	if !c.SelectRequestedSlot() || *c.SelectedSlot != morning {
		t.Fatalf("expected 09:00 selected, got %v", c.SelectedSlot)
	}

	c.SetAvailability("2024-01-03", []calendar.Slot{morning})
	if c.SelectedSlot == nil {
		t.Error("selection still valid, should be kept")
	}
	c.SetAvailability("2024-01-04", []calendar.Slot{{Start: "11:00", End: "12:00"}})
	if c.SelectedSlot != nil {
		t.Error("stale selection should be cleared")
	}
	if c.SlotsDate != "2024-01-04" {
		t.Errorf("SlotsDate = %q", c.SlotsDate)
	}
}

func TestSelectRequestedSlotNoMatch(t *testing.T) {
	c := newTestContext()
	c.SetAvailability("2024-01-02", []calendar.Slot{{Start: "09:00", End: "10:00"}})
	c.RequestedTime = "15:00"
	if c.SelectRequestedSlot() {
		t.Error("no slot starts at 15:00")
	}
}

func TestMarkBookedIsOneWay(t *testing.T) {
	c := newTestContext()
	if err := c.MarkBooked("evt-1"); err == nil {
		t.Fatal("booking without a selected slot must fail")
	}
	c.SelectedSlot = &calendar.Slot{Start: "09:00", End: "10:00"}
	if err := c.MarkBooked("evt-1"); err != nil {
		t.Fatalf("MarkBooked: %v", err)
	}
	if err := c.MarkBooked("evt-2"); err == nil {
		t.Error("second booking must fail")
	}
	if c.EventID != "evt-1" || !c.AppointmentBooked || c.Stage != StageCompleted {
		t.Errorf("state after booking: %+v", c)
	}
}

func TestLastUserMessages(t *testing.T) {
	c := newTestContext()
	c.AddMessage(RoleUser, "one")
	c.AddMessage(RoleAssistant, "reply")
	c.AddMessage(RoleUser, "two")
	c.AddMessage(RoleUser, "three")
	got := c.LastUserMessages(2)
	if len(got) != 2 || got[0] != "three" || got[1] != "two" {
		t.Errorf("got %v", got)
	}
	if len(c.RecentMessages(4)) != 4 || len(c.RecentMessages(10)) != 4 {
		t.Error("RecentMessages window wrong")
	}
}

func TestComputeStagePriority(t *testing.T) {
	slot := &calendar.Slot{Start: "09:00", End: "10:00"}
	tests := []struct {
		name  string
		setup func(c *Context)
		want  Stage
	}{
		{"fresh", func(c *Context) {}, StageGreeting},
		{"chatting", func(c *Context) { c.AddMessage(RoleUser, "hi") }, StageActive},
		{"booking intent", func(c *Context) {
			c.AddMessage(RoleUser, "book")
			c.CurrentIntent = intent.BookAppointment
		}, StageInfoCollection},
		{"date requested", func(c *Context) {
			c.CurrentIntent = intent.BookAppointment
			c.RequestedDate = "2024-01-02"
		}, StageScheduling},
		{"slots listed", func(c *Context) { c.AvailableSlots = []calendar.Slot{*slot} }, StageScheduling},
		{"slot but info missing", func(c *Context) {
			c.RequestedDate = "2024-01-02"
			c.SelectedSlot = slot
		}, StageScheduling},
		{"slot and info", func(c *Context) {
			c.SelectedSlot = slot
			c.UpdateCustomerInfo("name", "Ann")
		}, StageConfirmation},
		{"booked", func(c *Context) {
			c.SelectedSlot = slot
			c.AppointmentBooked = true
		}, StageCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestContext("name")
			tt.setup(c)
			if got := ComputeStage(c); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestComputeStageIgnoresHistory(t *testing.T) {
	// Same fields reached by different paths give the same stage.
	a := newTestContext("name")
	a.AddMessage(RoleUser, "hello")
	a.CurrentIntent = intent.Greeting
	a.Stage = StageConfirmation
	a.RequestedDate = "2024-01-02"

	b := newTestContext("name")
	b.AddMessage(RoleUser, "tomorrow please")
	b.CurrentIntent = intent.BookAppointment
	b.RequestedDate = "2024-01-09"
	b.CurrentIntent = intent.Greeting
	b.RequestedDate = "2024-01-02"

	if ComputeStage(a) != ComputeStage(b) {
		t.Errorf("stage differs: %s vs %s", ComputeStage(a), ComputeStage(b))
	}
	if ComputeStage(a) != StageScheduling {
		t.Errorf("got %s", ComputeStage(a))
	}
}

func TestStoreGetOrCreateIsIdempotent(t *testing.T) {
	s := NewStore(fixedClock())
	first := s.GetOrCreate("abc", business.TypeDentist, []string{"name", "phone", "date_of_birth"})
	first.UpdateCustomerInfo("name", "Ann")
	second := s.GetOrCreate("abc", business.TypeSalon, []string{"name"})

	if first != second {
		t.Fatal("expected the same context")
	}
	if second.BusinessType != business.TypeDentist || len(second.RequiredFields) != 3 {
		t.Errorf("repeat call must not change the context: %+v", second)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d", s.Len())
	}
}

func TestStoreResetAndUpdateStage(t *testing.T) {
	s := NewStore(fixedClock())
	s.UpdateStage("missing", StageActive)
	if s.Len() != 0 {
		t.Error("UpdateStage must not create sessions")
	}

	c := s.GetOrCreate("abc", business.TypeGeneric, nil)
	s.UpdateStage("abc", StageScheduling)
	if c.Stage != StageScheduling {
		t.Errorf("stage: %s", c.Stage)
	}
	if !s.Reset("abc") || s.Reset("abc") {
		t.Error("Reset should report whether the session existed")
	}
	if _, ok := s.Get("abc"); ok {
		t.Error("context survived reset")
	}
	fresh := s.GetOrCreate("abc", business.TypeGeneric, nil)
	if fresh == c {
		t.Error("reset should produce a new context")
	}
}

func TestStoreConcurrentFirstMessage(t *testing.T) {
	s := NewStore(nil)
	const n = 50
	got := make([]*Context, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = s.GetOrCreate("shared", business.TypeGeneric, nil)
			s.GetOrCreate(fmt.Sprintf("own-%d", i), business.TypeGeneric, nil)
		}(i)
	}
	wg.Wait()
	for i := 1; i < n; i++ {
		if got[i] != got[0] {
			t.Fatal("concurrent first messages created duplicate contexts")
		}
	}
	if s.Len() != n+1 {
		t.Errorf("Len = %d, want %d", s.Len(), n+1)
	}
}

func TestStoreLockSerializesSession(t *testing.T) {
	s := NewStore(nil)
	c := s.GetOrCreate("shared", business.TypeGeneric, nil)
	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			unlock := s.Lock("shared")
			defer unlock()
			c.AddMessage(RoleUser, fmt.Sprintf("m%d", i))
			c.UpdateCustomerInfo(fmt.Sprintf("f%d", i), "v")
		}(i)
	}
	wg.Wait()
	if len(c.Messages) != n || len(c.CustomerInfo) != n {
		t.Errorf("messages=%d fields=%d, want %d", len(c.Messages), len(c.CustomerInfo), n)
	}
}

func TestStoreLockIsPerSession(t *testing.T) {
	s := NewStore(nil)
	unlock := s.Lock("a")
	defer unlock()

	done := make(chan struct{})
	go func() {
		release := s.Lock("b")
		release()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on one session blocked another")
	}
}

func TestStoreResetWaitsForSessionLock(t *testing.T) {
	s := NewStore(nil)
	s.GetOrCreate("abc", business.TypeGeneric, nil)
	unlock := s.Lock("abc")

	reset := make(chan bool)
	go func() { reset <- s.Reset("abc") }()
	select {
	case <-reset:
		t.Fatal("Reset ran while the session was locked")
	case <-time.After(20 * time.Millisecond):
	}
	unlock()
	if !<-reset {
		t.Error("Reset should report the session existed")
	}
}

func TestSnapshotIsDeep(t *testing.T) {
	c := newTestContext("name")
	c.UpdateCustomerInfo("name", "Ann")
	c.SelectedSlot = &calendar.Slot{Start: "09:00", End: "10:00"}
	snap := c.Snapshot()
	snap.CustomerInfo["name"] = "Bob"
	snap.SelectedSlot.Start = "11:00"
	if c.CustomerInfo["name"] != "Ann" || c.SelectedSlot.Start != "09:00" {
		t.Error("snapshot shares state with the context")
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
