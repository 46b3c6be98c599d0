package domain

import "testing"

func TestParseRoleSetDedupesAndTrims(t *testing.T) {
	s := ParseRoleSet(" admin, user ,admin,, viewer")
	if len(s) != 3 {
		t.Fatalf("expected 3 tags, got %d (%q)", len(s), s.String())
	}
	for _, tag := range []string{"admin", "user", "viewer"} {
		if !s.Has(tag) {
			t.Fatalf("missing tag %q", tag)
		}
	}
}

func TestRoleSetStringSortedRoundTrip(t *testing.T) {
	s := NewRoleSet("viewer", "admin", "user")
	if got := s.String(); got != "admin,user,viewer" {
		t.Fatalf("String() = %q", got)
	}
	if got := ParseRoleSet(s.String()).String(); got != s.String() {
		t.Fatalf("round trip mismatch: %q", got)
	}
	if got := ParseRoleSet("").String(); got != "" {
		t.Fatalf("empty parse should stay empty, got %q", got)
	}
}

func TestRoleSetAddRemoveReportChanges(t *testing.T) {
	s := NewRoleSet("user")
	if !s.Add(RoleAdmin) {
		t.Fatal("first add should report a change")
	}
	if s.Add(RoleAdmin) {
		t.Fatal("second add should be a no-op")
	}
	if s.Add("  ") {
		t.Fatal("blank tag should be ignored")
	}
	if !s.Remove(RoleAdmin) {
		t.Fatal("remove of present tag should report a change")
	}
	if s.Remove(RoleAdmin) {
		t.Fatal("remove of absent tag should be a no-op")
	}
}
