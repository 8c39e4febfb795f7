// Package textnorm normalizes text for prompt construction and for the two
// presentation modes of the stored record (plain and HTML-break).
package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// lineBreaks rewrites Windows and bare-CR line endings to \n and drops the
// UTF-8 BOM that some mail clients prepend.
var lineBreaks = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",
	"\uFEFF", "",
)

// printableASCII keeps \n, \t and printable ASCII; everything else is
// removed. Email bodies arrive from arbitrary clients and regularly carry
// control bytes that break downstream JSON templating.
var printableASCII = runes.Remove(runes.Predicate(func(r rune) bool {
	if r == '\n' || r == '\t' {
		return false
	}
	return r < 0x20 || r >= 0x7f
}))

var whitespaceRun = regexp.MustCompile(`\s+`)

// Clean normalizes line breaks and strips non-printable characters.
func Clean(text string) string {
	text = lineBreaks.Replace(text)
	cleaned, _, err := transform.String(printableASCII, text)
	if err != nil {
		// runes.Remove never errors on valid input; keep the replaced text.
		return text
	}
	return cleaned
}

// Format flattens text for presentation. With htmlBreaks, line breaks become
// <br/> tags; otherwise they collapse into spaces. Bullets are rewritten to
// hyphens and literal \n escape sequences the model may emit are treated as
// line breaks too. Whitespace runs collapse to a single space.
func Format(text string, htmlBreaks bool) string {
	breakChar := " "
	if htmlBreaks {
		breakChar = "<br/>"
	}

	r := strings.NewReplacer(
		"\n", breakChar,
		"\r", " ",
		"\t", " ",
		"•", "-",
		`\n`, breakChar,
		`\r`, " ",
	)
	text = r.Replace(text)

	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}
