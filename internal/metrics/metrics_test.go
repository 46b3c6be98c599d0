package metrics

import (
	"strings"
	"testing"
)

func TestCountersAndRender(t *testing.T) {
	m := New()
	m.DispatchSuccess()
	m.DispatchAttempt()
	m.DispatchAttempt()
	m.QuotaRejected()

	s := m.Snapshot()
	if s.DispatchSuccess != 1 || s.DispatchAttempts != 2 || s.QuotaRejected != 1 {
		t.Fatalf("unexpected snapshot: %+v", s)
	}
	out := m.Render()
	if !strings.Contains(out, "herald_dispatch_attempts_total 2") {
		t.Fatalf("render missing attempts counter:\n%s", out)
	}
	if !strings.Contains(out, "# TYPE herald_dispatch_success_total counter") {
		t.Fatalf("render missing type line:\n%s", out)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.DispatchSuccess()
	m.DispatchFailure()
	m.DispatchAttempt()
	m.QuotaRejected()
	m.InvalidRecipient()
	m.RoleAutoGranted()

	if s := m.Snapshot(); s != (Snapshot{}) {
		t.Fatalf("nil snapshot = %+v", s)
	}
	if out := m.Render(); !strings.Contains(out, "herald_dispatch_success_total 0") {
		t.Fatalf("nil render:\n%s", out)
	}
}
