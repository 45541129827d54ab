package bot

import "testing"

func TestStateStoreLifecycle(t *testing.T) {
	s := NewStateStore()

	if got := s.State(1); got != StateIdle {
		t.Fatalf("fresh chat state = %v, want idle", got)
	}

	s.SetState(1, StateAwaitSourceTitle)
	s.SetTitle(1, "Матфак")
	if got := s.State(1); got != StateAwaitSourceTitle {
		t.Errorf("state = %v", got)
	}
	if got := s.Title(1); got != "Матфак" {
		t.Errorf("title = %q", got)
	}

	// Other chats are independent.
	if got := s.State(2); got != StateIdle {
		t.Errorf("unrelated chat state = %v", got)
	}

	s.Clear(1)
	if s.State(1) != StateIdle || s.Title(1) != "" {
		t.Error("clear must reset state and title")
	}
}

func TestPrefStore(t *testing.T) {
	p := NewPrefStore()

	if _, ok := p.Get(7); ok {
		t.Fatal("fresh store must have no prefs")
	}

	want := Prefs{SourceID: "edu_1", StreamID: "f_0", GroupNum: 2}
	p.Set(7, want)
	got, ok := p.Get(7)
	if !ok || got != want {
		t.Errorf("prefs = %+v, ok = %v", got, ok)
	}

	// Overwrites replace the previous choice.
	want.GroupNum = 1
	p.Set(7, want)
	if got, _ := p.Get(7); got.GroupNum != 1 {
		t.Errorf("overwritten prefs = %+v", got)
	}
}
