package textnorm

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "windows line endings",
			input: "Hello\r\nWorld",
			want:  "Hello\nWorld",
		},
		{
			name:  "bare carriage returns",
			input: "Hello\rWorld",
			want:  "Hello\nWorld",
		},
		{
			name:  "strips BOM",
			input: "\uFEFFHello",
			want:  "Hello",
		},
		{
			name:  "strips control bytes keeps tabs and newlines",
			input: "a\x00b\x07c\td\ne",
			want:  "abc\td\ne",
		},
		{
			name:  "strips non-ASCII",
			input: "café menu  here",
			want:  "caf menu here",
		},
		{
			name:  "plain text unchanged",
			input: "Refund status for order 123?",
			want:  "Refund status for order 123?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		htmlBreaks bool
		want       string
	}{
		{
			name:  "collapses line breaks to spaces",
			input: "line one\nline two\n\nline three",
			want:  "line one line two line three",
		},
		{
			name:       "html breaks",
			input:      "line one\nline two",
			htmlBreaks: true,
			want:       "line one<br/>line two",
		},
		{
			name:  "bullets become hyphens",
			input: "• first\n• second",
			want:  "- first - second",
		},
		{
			name:  "literal escape sequences",
			input: `Dear Jane,\n\nThanks`,
			want:  "Dear Jane, Thanks",
		},
		{
			name:       "literal escapes as html breaks",
			input:      `a\nb`,
			htmlBreaks: true,
			want:       "a<br/>b",
		},
		{
			name:  "tabs and runs collapse",
			input: "  a \t b   c  ",
			want:  "a b c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.input, tt.htmlBreaks); got != tt.want {
				t.Errorf("Format(%q, %v) = %q, want %q", tt.input, tt.htmlBreaks, got, tt.want)
			}
		})
	}
}
