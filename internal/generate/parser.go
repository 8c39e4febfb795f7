package generate

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Defaults applied when a field cannot be recovered from model output.
const (
	DefaultIntent            = "General Inquiry"
	DefaultCategory          = "General_Inquiry"
	DefaultExplanation       = "Analysis unavailable"
	DefaultSuggestedResponse = "Thank you for contacting us. An agent will assist you."
)

// BooleanFactors are the 0/1 risk factors in the output contract.
var BooleanFactors = []string{
	"no_knowledge",
	"unclear_info",
	"premium_complaints",
	"angry_frustrated_tone",
	"urgency",
}

// categories is the closed set of business categories a draft may carry.
var categories = map[string]bool{
	"Credit_Cards":    true,
	"Insurance":       true,
	"Loan_Mortgage":   true,
	"Online_Banking":  true,
	"Investment":      true,
	"Payment":         true,
	"General_Inquiry": true,
}

// Draft is the structured output recovered from a model response.
type Draft struct {
	Factors               map[string]int `json:"factors"`
	ConfidenceExplanation string         `json:"confidence_explanation"`
	Intent                string         `json:"intent"`
	Category              string         `json:"category"`
	SuggestedResponse     string         `json:"suggested_response"`
}

var (
	topicsPattern      = regexp.MustCompile(`"multiple_topics"\s*:\s*(\d+)`)
	intentPattern      = regexp.MustCompile(`"intent"\s*:\s*"([^"]+)"`)
	categoryPattern    = regexp.MustCompile(`"category"\s*:\s*"([^"]+)"`)
	explanationPattern = regexp.MustCompile(`(?s)"confidence_explanation"\s*:\s*"(.*?)"\s*,\s*"`)
	suggestedPattern   = regexp.MustCompile(`(?s)"suggested_response"\s*:\s*"(.*?)"\s*\n*"?\s*}`)
	suggestedOpenEnded = regexp.MustCompile(`(?s)"suggested_response"\s*:\s*"(.*)`)
	trailingJunk       = regexp.MustCompile(`["\s}]*$`)

	factorPatterns = buildFactorPatterns()
)

func buildFactorPatterns() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(BooleanFactors))
	for _, factor := range BooleanFactors {
		patterns[factor] = regexp.MustCompile(`"` + factor + `"\s*:\s*1`)
	}
	return patterns
}

// ParseDraft recovers a Draft from raw model output. It tries a strict JSON
// parse (after repairing literal newlines inside string values) and falls
// back to pattern extraction; the fallback never fails, every missing field
// gets its documented default. The category is always normalized into the
// closed category set.
func ParseDraft(raw string) Draft {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	text = escapeNewlinesInStrings(text)

	draft, err := parseStrict(text)
	if err != nil {
		draft = parseLenient(text)
	}

	draft.Category = NormalizeCategory(draft.Category)
	return draft
}

// parseStrict decodes text as JSON and un-escapes the two multi-line fields
// back to literal newlines.
func parseStrict(text string) (Draft, error) {
	var draft Draft
	if err := json.Unmarshal([]byte(text), &draft); err != nil {
		return Draft{}, err
	}
	draft.ConfidenceExplanation = strings.ReplaceAll(draft.ConfidenceExplanation, `\n`, "\n")
	draft.SuggestedResponse = strings.ReplaceAll(draft.SuggestedResponse, `\n`, "\n")
	return draft, nil
}

// parseLenient extracts fields by pattern from malformed output. Absence of a
// match yields the documented default, never an error.
func parseLenient(text string) Draft {
	factors := make(map[string]int, len(BooleanFactors)+1)
	for factor, pattern := range factorPatterns {
		if pattern.MatchString(text) {
			factors[factor] = 1
		} else {
			factors[factor] = 0
		}
	}
	factors["multiple_topics"] = 0
	if m := topicsPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			factors["multiple_topics"] = n
		}
	}

	draft := Draft{
		Factors:               factors,
		ConfidenceExplanation: DefaultExplanation,
		Intent:                DefaultIntent,
		Category:              DefaultCategory,
		SuggestedResponse:     DefaultSuggestedResponse,
	}

	if m := intentPattern.FindStringSubmatch(text); m != nil {
		draft.Intent = m[1]
	}
	if m := categoryPattern.FindStringSubmatch(text); m != nil {
		draft.Category = m[1]
	}
	if m := explanationPattern.FindStringSubmatch(text); m != nil {
		draft.ConfidenceExplanation = m[1]
	}
	if m := suggestedPattern.FindStringSubmatch(text); m != nil {
		draft.SuggestedResponse = m[1]
	} else if m := suggestedOpenEnded.FindStringSubmatch(text); m != nil {
		draft.SuggestedResponse = trailingJunk.ReplaceAllString(m[1], "")
	}

	return draft
}

// escapeNewlinesInStrings rewrites literal newline and carriage-return bytes
// inside JSON string values to their escaped forms. Models regularly emit
// multi-line suggested responses with real newlines inside the string value,
// which strict JSON parsing rejects.
func escapeNewlinesInStrings(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	inString := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '"' && (i == 0 || text[i-1] != '\\'):
			inString = !inString
			b.WriteByte(c)
		case inString && c == '\n':
			b.WriteString(`\n`)
		case inString && c == '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// NormalizeCategory maps a category into the closed category set; anything
// unrecognized becomes the default.
func NormalizeCategory(category string) string {
	if categories[strings.TrimSpace(category)] {
		return strings.TrimSpace(category)
	}
	return DefaultCategory
}
