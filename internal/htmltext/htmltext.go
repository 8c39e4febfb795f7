// Package htmltext reduces HTML email bodies to plain text so they can be
// used for retrieval queries and prompt construction.
package htmltext

import (
	"strings"

	"golang.org/x/net/html"
)

// skipElements are elements whose text content is discarded entirely.
var skipElements = map[string]bool{
	"script": true,
	"style":  true,
	"head":   true,
	"title":  true,
}

// breakElements are elements that terminate a line of output text.
var breakElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "table": true,
}

// LooksLikeHTML reports whether s appears to be an HTML document or fragment
// rather than plain text.
func LooksLikeHTML(s string) bool {
	s = strings.ToLower(s)
	if strings.Contains(s, "<html") || strings.Contains(s, "<!doctype html") || strings.Contains(s, "<body") {
		return true
	}
	return strings.Contains(s, "<div") || strings.Contains(s, "<p>") || strings.Contains(s, "<br")
}

// Strip tokenizes HTML and returns the visible text, with block boundaries
// rendered as line breaks. Malformed markup never fails: the tokenizer's
// error token ends the walk and whatever was collected is returned.
func Strip(s string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(s))

	var b strings.Builder
	skipDepth := 0

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return collapse(b.String())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)
			if skipElements[tag] {
				skipDepth++
			}
			if breakElements[tag] {
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)
			if skipElements[tag] && skipDepth > 0 {
				skipDepth--
			}
			if breakElements[tag] {
				b.WriteByte('\n')
			}
		case html.TextToken:
			if skipDepth == 0 {
				b.Write(tokenizer.Text())
			}
		}
	}
}

// collapse trims each line and drops runs of blank lines.
func collapse(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
