package result

import (
	"errors"
	"testing"
)

func TestState_ZeroIsNotStarted(t *testing.T) {
	var s State
	if s.Kind() != NotStarted {
		t.Errorf("kind = %v, want not_started", s.Kind())
	}
	if _, ok := s.Record(); ok {
		t.Error("zero state returned a record")
	}
}

func TestState_Compute(t *testing.T) {
	rec := FromMap(map[string]float64{"ipc_speedup": 1.05})
	s := Compute(rec)
	if s.Kind() != Computed {
		t.Fatalf("kind = %v, want computed", s.Kind())
	}
	got, ok := s.Record()
	if !ok || got.Len() != 1 {
		t.Errorf("record = %v, %v", got, ok)
	}
	if s.Cause() != "" || s.Err() != nil {
		t.Errorf("computed state carries cause %q / err %v", s.Cause(), s.Err())
	}
}

func TestState_Fail(t *testing.T) {
	cause := errors.New("exit status 1")
	s := Fail("Figure 18 statistics generation failed", cause)
	if s.Kind() != Failed {
		t.Fatalf("kind = %v, want failed", s.Kind())
	}
	if _, ok := s.Record(); ok {
		t.Error("failed state returned a record")
	}
	if s.Cause() != "Figure 18 statistics generation failed" {
		t.Errorf("cause = %q", s.Cause())
	}
	if !errors.Is(s.Err(), cause) {
		t.Errorf("err = %v", s.Err())
	}
	if Failed.String() != "failed" {
		t.Errorf("String() = %q", Failed.String())
	}
}
