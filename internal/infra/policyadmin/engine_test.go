package policyadmin

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const testPolicy = `package herald.admin

default allow = false

allow {
	input.identity == "root@acme.example"
}

allow {
	endswith(input.identity, "@ops.acme.example")
}
`

func writeTestBundle(t *testing.T, policy string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "admin.rego"), []byte(policy), 0o644); err != nil {
		t.Fatalf("write rego: %v", err)
	}
	return dir
}

func TestEngineAllow(t *testing.T) {
	engine, err := NewEngineFromPath(context.Background(), writeTestBundle(t, testPolicy))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	cases := []struct {
		identity string
		want     bool
	}{
		{"root@acme.example", true},
		{"oncall@ops.acme.example", true},
		{"someone@acme.example", false},
		{"", false},
	}
	for _, tc := range cases {
		got, err := engine.Allow(context.Background(), tc.identity)
		if err != nil {
			t.Fatalf("allow(%q): %v", tc.identity, err)
		}
		if got != tc.want {
			t.Fatalf("allow(%q) = %v, want %v", tc.identity, got, tc.want)
		}
	}
}

func TestEngineRejectsBrokenBundle(t *testing.T) {
	dir := writeTestBundle(t, `package herald.admin

allow {
	undefined_function(input.identity)
}
`)
	if _, err := NewEngineFromPath(context.Background(), dir); err == nil {
		t.Fatal("expected compile error for unknown function")
	}
}
