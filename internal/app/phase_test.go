package app

import "testing"

func TestPhase_String(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseIdle, "Idle"},
		{PhaseLogAppended, "LogAppended"},
		{PhaseApplying, "Applying"},
		{PhaseApplied, "Applied"},
		{PhaseCommitted, "Committed"},
		{Phase(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %s, want %s", tt.phase, got, tt.want)
		}
	}
}

func TestTxRun_OnlyForwardOneStep(t *testing.T) {
	r := newTxRun("tx", mockLogger{}, nil)

	if err := r.transitionTo(PhaseApplying); err == nil {
		t.Fatal("expected error skipping LogAppended")
	}
	for _, p := range []Phase{PhaseLogAppended, PhaseApplying, PhaseApplied, PhaseCommitted} {
		if err := r.transitionTo(p); err != nil {
			t.Fatalf("transitionTo(%s): %v", p, err)
		}
	}
	if err := r.transitionTo(PhaseIdle); err == nil {
		t.Fatal("expected error moving backwards")
	}
	if r.phase != PhaseCommitted {
		t.Errorf("phase = %s, want Committed", r.phase)
	}
}
