package generate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRenderPrompt(t *testing.T) {
	score := 720
	prompt := RenderPrompt(defaultTemplate, PromptFields{
		EmailContent:     "My card was charged twice.",
		KnowledgeResults: "--- Information 1 ---",
		CustomerName:     "Jane Doe",
		CreditScore:      &score,
		SpendingProfile:  "High",
		ServiceLevel:     "Premium",
	})

	for _, want := range []string{
		"Email content: My card was charged twice.",
		"Knowledge results: --- Information 1 ---",
		"Customer name: Jane Doe",
		"- Credit score: 720",
		"- Spending profile: High",
		"- Service Level: Premium",
		"- Additional Information: not provided",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "{email_content}") {
		t.Error("prompt still contains an unsubstituted placeholder")
	}
}

func TestRenderPrompt_AbsentOptionals(t *testing.T) {
	prompt := RenderPrompt(defaultTemplate, PromptFields{
		EmailContent:     "Hello",
		KnowledgeResults: "none",
		CustomerName:     "Valued Customer",
	})

	if !strings.Contains(prompt, "- Credit score: not provided") {
		t.Error("absent credit score should render as not provided")
	}
	if !strings.Contains(prompt, "- Spending profile: not provided") {
		t.Error("absent spending profile should render as not provided")
	}
}

type mockParams struct {
	getFunc func(ctx context.Context, name string) (string, error)
	calls   int
}

func (m *mockParams) GetParameter(ctx context.Context, name string) (string, error) {
	m.calls++
	return m.getFunc(ctx, name)
}

func TestTemplateSource_Default(t *testing.T) {
	ts := NewTemplateSource(nil, "", discardLogger())
	if got := ts.Template(context.Background()); got != defaultTemplate {
		t.Error("Template() should return the built-in template when no override is configured")
	}
}

func TestTemplateSource_OverrideFetchedOnce(t *testing.T) {
	params := &mockParams{
		getFunc: func(ctx context.Context, name string) (string, error) {
			if name != "/triage/prompt" {
				t.Errorf("parameter name = %q, want /triage/prompt", name)
			}
			return "custom template {email_content}", nil
		},
	}

	ts := NewTemplateSource(params, "/triage/prompt", discardLogger())
	for range 3 {
		if got := ts.Template(context.Background()); got != "custom template {email_content}" {
			t.Errorf("Template() = %q, want override", got)
		}
	}
	if params.calls != 1 {
		t.Errorf("GetParameter calls = %d, want 1 (cached)", params.calls)
	}
}

func TestTemplateSource_FetchErrorFallsBack(t *testing.T) {
	params := &mockParams{
		getFunc: func(ctx context.Context, name string) (string, error) {
			return "", errors.New("parameter not found")
		},
	}

	ts := NewTemplateSource(params, "/triage/prompt", discardLogger())
	if got := ts.Template(context.Background()); got != defaultTemplate {
		t.Error("fetch failure should fall back to the built-in template")
	}
}
