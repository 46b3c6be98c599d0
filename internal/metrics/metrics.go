// Package metrics keeps cheap in-process counters for the dispatch and
// reconciliation paths and renders them in Prometheus text exposition
// format.
package metrics

import (
	"fmt"
	"strings"
	"sync/atomic"
)

type Metrics struct {
	dispatchSuccess  atomic.Uint64
	dispatchFailure  atomic.Uint64
	dispatchAttempts atomic.Uint64
	quotaRejected    atomic.Uint64
	invalidRecipient atomic.Uint64
	roleAutoGranted  atomic.Uint64
}

func New() *Metrics { return &Metrics{} }

// The receiver is checked in every method, not in a shared helper:
// taking a field's address already dereferences a nil receiver, so the
// check must run first. A nil *Metrics discards everything.

func (m *Metrics) DispatchSuccess() {
	if m == nil {
		return
	}
	m.dispatchSuccess.Add(1)
}

func (m *Metrics) DispatchFailure() {
	if m == nil {
		return
	}
	m.dispatchFailure.Add(1)
}

func (m *Metrics) DispatchAttempt() {
	if m == nil {
		return
	}
	m.dispatchAttempts.Add(1)
}

func (m *Metrics) QuotaRejected() {
	if m == nil {
		return
	}
	m.quotaRejected.Add(1)
}

func (m *Metrics) InvalidRecipient() {
	if m == nil {
		return
	}
	m.invalidRecipient.Add(1)
}

func (m *Metrics) RoleAutoGranted() {
	if m == nil {
		return
	}
	m.roleAutoGranted.Add(1)
}

type Snapshot struct {
	DispatchSuccess  uint64
	DispatchFailure  uint64
	DispatchAttempts uint64
	QuotaRejected    uint64
	InvalidRecipient uint64
	RoleAutoGranted  uint64
}

func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		DispatchSuccess:  m.dispatchSuccess.Load(),
		DispatchFailure:  m.dispatchFailure.Load(),
		DispatchAttempts: m.dispatchAttempts.Load(),
		QuotaRejected:    m.quotaRejected.Load(),
		InvalidRecipient: m.invalidRecipient.Load(),
		RoleAutoGranted:  m.roleAutoGranted.Load(),
	}
}

// Render produces Prometheus text exposition format.
func (m *Metrics) Render() string {
	s := m.Snapshot()

	var b strings.Builder
	b.Grow(1024)
	write := func(name, help string, value uint64) {
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s counter\n%s %d\n", name, help, name, name, value)
	}
	write("herald_dispatch_success_total", "Notifications delivered.", s.DispatchSuccess)
	write("herald_dispatch_failure_total", "Notifications that failed after all attempts.", s.DispatchFailure)
	write("herald_dispatch_attempts_total", "Individual provider send attempts.", s.DispatchAttempts)
	write("herald_quota_rejected_total", "Dispatches rejected by a sending quota.", s.QuotaRejected)
	write("herald_invalid_recipient_total", "Dispatches rejected by recipient validation.", s.InvalidRecipient)
	write("herald_role_auto_granted_total", "Admin roles granted by allow-list reconciliation.", s.RoleAutoGranted)
	return b.String()
}
