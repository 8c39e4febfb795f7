// Package record defines the triage response record returned to the contact
// flow and persisted for polling.
package record

import (
	"strings"

	"github.com/anycompany/connect-email-triage/internal/textnorm"
)

// PlaceholderName is the customer name used when no profile was matched; the
// generic salutation is kept only for this name.
const PlaceholderName = "Valued Customer"

// Defaults applied by Build for fields the caller leaves empty.
const (
	DefaultSuggestedResponse = "Thank you for contacting us. An agent will assist you."
	DefaultIntent            = "General Inquiry"
	DefaultCategory          = "General_Inquiry"
	// DefaultModelUsed marks a record produced without a model draft.
	DefaultModelUsed = "none"
)

// Record is the persisted and returned triage result. Field names match the
// contact flow's expectations; the *_sbs_formatting fields are the HTML-break
// presentation variants consumed by the agent workspace step-by-step guide.
type Record struct {
	ContactID                      string `json:"contactId" dynamodbav:"contactId"`
	CustomerName                   string `json:"customer_name_text" dynamodbav:"customer_name_text"`
	ConfidenceScore                int    `json:"confidence_score" dynamodbav:"confidence_score"`
	ConfidenceExplanation          string `json:"confidence_explanation" dynamodbav:"confidence_explanation"`
	SuggestedResponse              string `json:"suggested_response" dynamodbav:"suggested_response"`
	Intent                         string `json:"intent" dynamodbav:"intent"`
	Category                       string `json:"category" dynamodbav:"category"`
	CreditAvailable                bool   `json:"credit_available" dynamodbav:"credit_available"`
	CreditValue                    *int   `json:"credit_value" dynamodbav:"credit_value"`
	SpendingProfile                string `json:"spending_profile" dynamodbav:"spending_profile"`
	ServiceLevel                   string `json:"service_level" dynamodbav:"service_level"`
	AddInfo                        string `json:"add_info" dynamodbav:"add_info"`
	ModelUsed                      string `json:"model_used" dynamodbav:"model_used"`
	ConfidenceExplanationFormatted string `json:"confidence_explanation_sbs_formatting" dynamodbav:"confidence_explanation_sbs_formatting"`
	SuggestedResponseFormatted     string `json:"suggested_response_sbs_formatting" dynamodbav:"suggested_response_sbs_formatting"`
	SuggestedResponseAgent         string `json:"suggested_response_agent" dynamodbav:"suggested_response_agent"`
	TTL                            int64  `json:"ttl,omitempty" dynamodbav:"ttl"`
}

// Params are the builder inputs; zero values take the documented defaults.
type Params struct {
	ContactID             string
	CustomerName          string
	ConfidenceScore       int
	ConfidenceExplanation string
	SuggestedResponse     string
	Intent                string
	Category              string
	CreditValue           *int
	SpendingProfile       string
	ServiceLevel          string
	AddInfo               string
	ModelUsed             string
}

// Build constructs a Record, applying defaults and the presentation
// post-processing: the generic salutation is rewritten to the known customer
// name, escaped line breaks the model emitted as text are restored, and the
// HTML-break variants are derived. Pure function of its inputs.
func Build(p Params) *Record {
	customerName := p.CustomerName
	if customerName == "" {
		customerName = PlaceholderName
	}

	suggested := p.SuggestedResponse
	if suggested == "" {
		suggested = DefaultSuggestedResponse
	}
	suggested = fixSalutation(suggested, customerName)
	suggested = strings.ReplaceAll(suggested, `\n`, "\n")

	intent := p.Intent
	if intent == "" {
		intent = DefaultIntent
	}
	category := p.Category
	if category == "" {
		category = DefaultCategory
	}
	modelUsed := p.ModelUsed
	if modelUsed == "" {
		modelUsed = DefaultModelUsed
	}

	return &Record{
		ContactID:                      p.ContactID,
		CustomerName:                   customerName,
		ConfidenceScore:                p.ConfidenceScore,
		ConfidenceExplanation:          p.ConfidenceExplanation,
		SuggestedResponse:              suggested,
		Intent:                         intent,
		Category:                       category,
		CreditAvailable:                p.CreditValue != nil,
		CreditValue:                    p.CreditValue,
		SpendingProfile:                p.SpendingProfile,
		ServiceLevel:                   p.ServiceLevel,
		AddInfo:                        p.AddInfo,
		ModelUsed:                      modelUsed,
		ConfidenceExplanationFormatted: textnorm.Format(p.ConfidenceExplanation, true),
		SuggestedResponseFormatted:     textnorm.Format(suggested, true),
		SuggestedResponseAgent:         suggested,
	}
}

// fixSalutation rewrites the generic salutation to the customer's name when a
// real name is known. The placeholder name leaves it untouched.
func fixSalutation(text, customerName string) string {
	if customerName == "" || customerName == PlaceholderName {
		return text
	}
	text = strings.ReplaceAll(text, "Dear "+PlaceholderName+",", "Dear "+customerName+",")
	return strings.ReplaceAll(text, "Dear "+PlaceholderName, "Dear "+customerName)
}
