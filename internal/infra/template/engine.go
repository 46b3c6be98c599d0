// Package template renders notification content for the three message
// archetypes. External assets override the compiled-in defaults; the
// plaintext form is always derived from the HTML form so both carry the
// same literal values.
package template

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	htmltemplate "html/template"
	"strings"

	"herald/internal/domain"
)

var ErrAssetNotFound = errors.New("template asset not found")

// AssetLoader fetches an external template asset by archetype name.
// Loaders return ErrAssetNotFound (or any other error) to make the
// engine fall back to its default template.
type AssetLoader interface {
	Load(name string) ([]byte, error)
}

type Engine struct {
	loader   AssetLoader
	defaults map[domain.Archetype]*htmltemplate.Template
}

// NewEngine builds an engine with the given optional asset loader.
// A nil loader means defaults only.
func NewEngine(loader AssetLoader) *Engine {
	return &Engine{
		loader: loader,
		defaults: map[domain.Archetype]*htmltemplate.Template{
			domain.ArchetypeCode:   htmltemplate.Must(htmltemplate.New(string(domain.ArchetypeCode)).Parse(defaultCodeHTML)),
			domain.ArchetypeAction: htmltemplate.Must(htmltemplate.New(string(domain.ArchetypeAction)).Parse(defaultActionHTML)),
			domain.ArchetypePlain:  htmltemplate.Must(htmltemplate.New(string(domain.ArchetypePlain)).Parse(defaultPlainHTML)),
		},
	}
}

type codeData struct {
	Branding      domain.Branding
	Code          string
	ExpireMinutes int
}

type actionData struct {
	Branding    domain.Branding
	URL         string
	ButtonLabel string
	Reminder    string
}

type plainData struct {
	Branding    domain.Branding
	Message     string
	SecurityTip string
}

// Render produces content for the request's archetype. The matching
// payload field must be set.
func (e *Engine) Render(req domain.NotificationRequest) (domain.Message, error) {
	switch req.Archetype {
	case domain.ArchetypeCode:
		if req.Code == nil {
			return domain.Message{}, fmt.Errorf("code payload is required: %w", domain.ErrUnknownArchetype)
		}
		return e.RenderCode(*req.Code, req.Branding)
	case domain.ArchetypeAction:
		if req.Action == nil {
			return domain.Message{}, fmt.Errorf("action payload is required: %w", domain.ErrUnknownArchetype)
		}
		return e.RenderAction(*req.Action, req.Branding)
	case domain.ArchetypePlain:
		if req.Plain == nil {
			return domain.Message{}, fmt.Errorf("plain payload is required: %w", domain.ErrUnknownArchetype)
		}
		return e.RenderPlain(*req.Plain, req.Branding)
	default:
		return domain.Message{}, fmt.Errorf("%w: %q", domain.ErrUnknownArchetype, req.Archetype)
	}
}

func (e *Engine) RenderCode(p domain.CodePayload, b domain.Branding) (domain.Message, error) {
	subject := b.Title
	if subject == "" {
		subject = fmt.Sprintf("Your %s verification code", orAppName(b))
	}
	return e.render(domain.ArchetypeCode, subject, codeData{Branding: withTitle(b, subject), Code: p.Code, ExpireMinutes: p.ExpireMinutes})
}

func (e *Engine) RenderAction(p domain.ActionPayload, b domain.Branding) (domain.Message, error) {
	subject := b.Title
	if subject == "" {
		subject = fmt.Sprintf("Action required for your %s account", orAppName(b))
	}
	return e.render(domain.ArchetypeAction, subject, actionData{Branding: withTitle(b, subject), URL: p.URL, ButtonLabel: p.ButtonLabel, Reminder: p.Reminder})
}

func (e *Engine) RenderPlain(p domain.PlainPayload, b domain.Branding) (domain.Message, error) {
	subject := b.Title
	if subject == "" {
		subject = fmt.Sprintf("A message from %s", orAppName(b))
	}
	return e.render(domain.ArchetypePlain, subject, plainData{Branding: withTitle(b, subject), Message: p.Message, SecurityTip: p.SecurityTip})
}

func (e *Engine) render(archetype domain.Archetype, subject string, data any) (domain.Message, error) {
	tmpl := e.lookup(archetype)

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return domain.Message{}, fmt.Errorf("render %s template: %w", archetype, err)
	}
	htmlBody := buf.String()

	return domain.Message{
		Subject: subject,
		HTML:    htmlBody,
		Text:    StripHTML(htmlBody),
	}, nil
}

// lookup tries the external asset first. Any loader or parse failure
// falls back to the default template, so rendering never fails for
// asset reasons.
func (e *Engine) lookup(archetype domain.Archetype) *htmltemplate.Template {
	if e.loader != nil {
		raw, err := e.loader.Load(string(archetype))
		if err == nil {
			tmpl, parseErr := htmltemplate.New(string(archetype)).Parse(string(raw))
			if parseErr == nil {
				return tmpl
			}
		}
	}
	return e.defaults[archetype]
}

func orAppName(b domain.Branding) string {
	if b.AppName != "" {
		return b.AppName
	}
	return "your"
}

func withTitle(b domain.Branding, title string) domain.Branding {
	if b.Title == "" {
		b.Title = title
	}
	return b
}

// StripHTML derives the plaintext form: tags removed, entities
// unescaped, whitespace collapsed. Block-ish boundaries become line
// breaks so the result stays readable.
func StripHTML(in string) string {
	var b strings.Builder
	b.Grow(len(in))

	inTag := false
	var tag strings.Builder
	for _, r := range in {
		switch {
		case r == '<':
			inTag = true
			tag.Reset()
		case r == '>' && inTag:
			inTag = false
			if isBlockBoundary(tag.String()) {
				b.WriteByte('\n')
			}
		case inTag:
			tag.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}

	text := html.UnescapeString(b.String())

	lines := make([]string, 0, 16)
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func isBlockBoundary(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	tag = strings.TrimPrefix(tag, "/")
	if i := strings.IndexAny(tag, " \t\n/"); i >= 0 {
		tag = tag[:i]
	}
	switch tag {
	case "p", "br", "div", "h1", "h2", "h3", "h4", "li", "tr":
		return true
	}
	return false
}

var _ domain.TemplateEngine = (*Engine)(nil)
