package template

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"herald/internal/domain"
)

var testBranding = domain.Branding{
	Title:   "Confirm your sign-in",
	AppName: "Acme ID",
	Contact: "support@acme.example",
}

func TestRenderCodeContainsPayload(t *testing.T) {
	engine := NewEngine(nil)

	msg, err := engine.RenderCode(domain.CodePayload{Code: "932641", ExpireMinutes: 10}, testBranding)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, field := range []string{"932641", "10", "Acme ID", "Confirm your sign-in"} {
		if !strings.Contains(msg.HTML, field) {
			t.Errorf("html missing %q", field)
		}
		if !strings.Contains(msg.Text, field) {
			t.Errorf("text missing %q", field)
		}
	}
	if msg.Subject == "" {
		t.Fatal("empty subject")
	}
}

func TestRenderActionContainsLinkInBothForms(t *testing.T) {
	engine := NewEngine(nil)

	msg, err := engine.RenderAction(domain.ActionPayload{
		URL:         "https://id.acme.example/confirm?t=abc123",
		ButtonLabel: "Confirm",
		Reminder:    "The link is valid for 24 hours.",
	}, testBranding)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(msg.HTML, "https://id.acme.example/confirm?t=abc123") {
		t.Error("html missing action url")
	}
	if !strings.Contains(msg.Text, "https://id.acme.example/confirm?t=abc123") {
		t.Error("text missing action url")
	}
	if !strings.Contains(msg.Text, "valid for 24 hours") {
		t.Error("text missing reminder")
	}
}

func TestRenderedTextHasNoMarkup(t *testing.T) {
	engine := NewEngine(nil)

	messages := []func() (domain.Message, error){
		func() (domain.Message, error) {
			return engine.RenderCode(domain.CodePayload{Code: "000111", ExpireMinutes: 5}, testBranding)
		},
		func() (domain.Message, error) {
			return engine.RenderAction(domain.ActionPayload{URL: "https://x.example/a", ButtonLabel: "Go"}, testBranding)
		},
		func() (domain.Message, error) {
			return engine.RenderPlain(domain.PlainPayload{Message: "Your password was changed.", SecurityTip: "Not you? Contact support."}, testBranding)
		},
	}
	for i, render := range messages {
		msg, err := render()
		if err != nil {
			t.Fatalf("render %d: %v", i, err)
		}
		if strings.ContainsAny(msg.Text, "<>") {
			t.Errorf("render %d: text contains markup: %q", i, msg.Text)
		}
	}
}

func TestRenderDispatchesByArchetype(t *testing.T) {
	engine := NewEngine(nil)

	req := domain.NotificationRequest{
		Archetype: domain.ArchetypePlain,
		Branding:  testBranding,
		Plain:     &domain.PlainPayload{Message: "hello"},
	}
	if _, err := engine.Render(req); err != nil {
		t.Fatalf("render plain: %v", err)
	}

	req.Plain = nil
	if _, err := engine.Render(req); !errors.Is(err, domain.ErrUnknownArchetype) {
		t.Fatalf("missing payload should fail, got %v", err)
	}

	req.Archetype = "carrier-pigeon"
	if _, err := engine.Render(req); !errors.Is(err, domain.ErrUnknownArchetype) {
		t.Fatalf("unknown archetype should fail, got %v", err)
	}
}

type stubLoader struct {
	assets map[string]string
	err    error
}

func (l *stubLoader) Load(name string) ([]byte, error) {
	if l.err != nil {
		return nil, l.err
	}
	raw, ok := l.assets[name]
	if !ok {
		return nil, ErrAssetNotFound
	}
	return []byte(raw), nil
}

func TestExternalAssetOverridesDefault(t *testing.T) {
	loader := &stubLoader{assets: map[string]string{
		"code": `<p>Custom code template: {{.Code}}</p>`,
	}}
	engine := NewEngine(loader)

	msg, err := engine.RenderCode(domain.CodePayload{Code: "424242", ExpireMinutes: 5}, testBranding)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(msg.HTML, "Custom code template: 424242") {
		t.Fatalf("external template not used: %q", msg.HTML)
	}
}

func TestLoaderFailuresFallBackToDefaults(t *testing.T) {
	tests := []struct {
		name   string
		loader AssetLoader
	}{
		{"asset missing", &stubLoader{}},
		{"loader error", &stubLoader{err: errors.New("storage unreachable")}},
		{"unparsable asset", &stubLoader{assets: map[string]string{"code": "{{.Broken"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(tt.loader)
			msg, err := engine.RenderCode(domain.CodePayload{Code: "555000", ExpireMinutes: 3}, testBranding)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if !strings.Contains(msg.HTML, "555000") {
				t.Fatal("default template did not render")
			}
		})
	}
}

func TestFSLoader(t *testing.T) {
	dir := t.TempDir()
	asset := filepath.Join(dir, "plain.html")
	if err := os.WriteFile(asset, []byte(`<p>{{.Message}}</p>`), 0o600); err != nil {
		t.Fatalf("write asset: %v", err)
	}

	loader := NewFSLoader(dir)
	if _, err := loader.Load("plain"); err != nil {
		t.Fatalf("load existing: %v", err)
	}
	if _, err := loader.Load("code"); !errors.Is(err, ErrAssetNotFound) {
		t.Fatalf("missing asset should be ErrAssetNotFound, got %v", err)
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<p>one</p><p>two</p>", "one\ntwo"},
		{"a &amp; b", "a & b"},
		{`<a href="https://x.example">label</a>`, "label"},
		{"  spaced   out  ", "spaced out"},
	}
	for _, tt := range tests {
		if got := StripHTML(tt.in); got != tt.want {
			t.Errorf("StripHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
