package generate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// defaultTemplate is the instruction template sent as the system message. It
// fully specifies the JSON output contract the parser expects, including the
// salutation rule for unmatched customer profiles.
const defaultTemplate = `Analyze the email's content and identify risk factors to determine a confidence score for sending a suggested response, then output the information in JSON format:

Email content: {email_content}
Knowledge results: {knowledge_results}
Customer name: {customer_name_text}
Supplemental information:
- Credit score: {credit_score}
- Spending profile: {spending_profile}
- Service Level: {service_level}
- Additional Information: {add_info}

Identify these factors (return 1 if present, 0 if not):
- no_knowledge: No relevant knowledge base information available
- unclear_info: Incomplete or ambiguous information
- premium_complaints: Premium service level issues, consider if customer's Service Level {service_level} is "Premium" and they have any complaint or concern.
- angry_frustrated_tone: Negative sentiment detected
- urgency: Time-sensitive requests requiring quick response
- multiple_topics: Count additional unrelated topics beyond the first

Provide reasoning for detected factors only (no math calculations).

IMPORTANT: In the suggested_response greeting:
- If the customer name is a specific name, use that exact name.
- Only use "Dear Valued Customer," if the customer name field shows "Valued Customer" (indicating no customer profile was found)

Output ONLY valid JSON:
{
    "factors": {
        "no_knowledge": [0 or 1],
        "unclear_info": [0 or 1],
        "premium_complaints": [0 or 1],
        "angry_frustrated_tone": [0 or 1],
        "urgency": [0 or 1],
        "multiple_topics": [number of additional topics]
    },
    "confidence_explanation": "[Reasoning for detected factors only]",
    "intent": "[Summary of customer intent with key points]",
    "category": "[Credit_Cards|Insurance|Loan_Mortgage|Online_Banking|Investment|Payment|General_Inquiry]",
    "suggested_response": "Dear [USE THE ACTUAL CUSTOMER NAME PROVIDED ABOVE. Only use 'Valued Customer' if the customer name is 'Valued Customer', otherwise use the specific name],\n\n[Generate a personalized reply for the email content based on knowledge results and supplemental information (e.g. credit score, spending profile, service level and additional information) if there is any]\n\nKind regards,\nCustomer Service Team\nAnyCompany Bank"
}`

// notProvided renders absent supplemental fields in the prompt.
const notProvided = "not provided"

// PromptFields are the values substituted into the instruction template.
type PromptFields struct {
	EmailContent     string
	KnowledgeResults string
	CustomerName     string
	CreditScore      *int
	SpendingProfile  string
	ServiceLevel     string
	AddInfo          string
}

// RenderPrompt substitutes fields into the instruction template.
func RenderPrompt(template string, f PromptFields) string {
	creditScore := notProvided
	if f.CreditScore != nil {
		creditScore = fmt.Sprintf("%d", *f.CreditScore)
	}

	return strings.NewReplacer(
		"{email_content}", f.EmailContent,
		"{knowledge_results}", f.KnowledgeResults,
		"{customer_name_text}", f.CustomerName,
		"{credit_score}", creditScore,
		"{spending_profile}", orNotProvided(f.SpendingProfile),
		"{service_level}", orNotProvided(f.ServiceLevel),
		"{add_info}", orNotProvided(f.AddInfo),
	).Replace(template)
}

func orNotProvided(s string) string {
	if s == "" {
		return notProvided
	}
	return s
}

// ParamGetter fetches a named configuration parameter.
type ParamGetter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// TemplateSource provides the instruction template. When a parameter name is
// configured, the template is fetched from Parameter Store once per process
// and cached; it is read-only after that, so it is safe to share across
// invocations. Otherwise the built-in template is used.
type TemplateSource struct {
	params    ParamGetter
	paramName string
	logger    *slog.Logger

	once sync.Once
	tmpl string
}

// NewTemplateSource creates a TemplateSource. params and paramName may be
// zero-valued to always use the built-in template.
func NewTemplateSource(params ParamGetter, paramName string, logger *slog.Logger) *TemplateSource {
	return &TemplateSource{params: params, paramName: paramName, logger: logger}
}

// Template returns the instruction template.
func (t *TemplateSource) Template(ctx context.Context) string {
	t.once.Do(func() {
		t.tmpl = defaultTemplate
		if t.params == nil || t.paramName == "" {
			return
		}
		override, err := t.params.GetParameter(ctx, t.paramName)
		if err != nil {
			t.logger.WarnContext(ctx, "template override fetch failed, using built-in",
				"parameter", t.paramName, "error", err)
			return
		}
		if strings.TrimSpace(override) != "" {
			t.tmpl = override
		}
	})
	return t.tmpl
}
