// Package triage orchestrates the email triage pipeline: extract the email,
// retrieve knowledge, draft a reply with a confidence score, persist the
// result. The pipeline has exactly one externally visible failure mode, a
// zero-confidence agent-routing record; it never surfaces an error to the
// contact flow.
package triage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/anycompany/connect-email-triage/internal/connectevent"
	"github.com/anycompany/connect-email-triage/internal/generate"
	"github.com/anycompany/connect-email-triage/internal/record"
	"github.com/anycompany/connect-email-triage/internal/score"
)

// tracerName identifies this instrumentation scope.
const tracerName = "connect-email-triage"

// degradedExplanation routes the contact to an agent when generation fails.
const degradedExplanation = "Processing error detected - unable to analyze email content.\nRoute to agent for manual review."

// BodyExtractor locates the customer's email text.
type BodyExtractor interface {
	EmailBody(ctx context.Context, cd *connectevent.ContactData) string
}

// KnowledgeSearcher retrieves knowledge passages for an email.
type KnowledgeSearcher interface {
	Search(ctx context.Context, query string, creditScore *int) string
}

// DraftGenerator produces a structured draft via model fallback.
type DraftGenerator interface {
	Generate(ctx context.Context, instruction, emailContent string) (generate.Result, error)
}

// TemplateProvider supplies the instruction template.
type TemplateProvider interface {
	Template(ctx context.Context) string
}

// RecordSaver persists the final record.
type RecordSaver interface {
	Save(ctx context.Context, rec *record.Record) error
}

// Pipeline wires the triage stages together. A nil saver disables
// persistence.
type Pipeline struct {
	extractor BodyExtractor
	retriever KnowledgeSearcher
	generator DraftGenerator
	templates TemplateProvider
	saver     RecordSaver
	logger    *slog.Logger
	tracer    trace.Tracer
}

// New creates a Pipeline.
func New(extractor BodyExtractor, retriever KnowledgeSearcher, generator DraftGenerator, templates TemplateProvider, saver RecordSaver, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		retriever: retriever,
		generator: generator,
		templates: templates,
		saver:     saver,
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
	}
}

// Handle runs the pipeline for one contact event and always returns a
// complete record. A panic in any stage is converted into the terminal
// degraded record naming the stage, so the contact flow never sees a raw
// failure.
func (p *Pipeline) Handle(ctx context.Context, event connectevent.Event) (rec *record.Record) {
	ctx, span := p.tracer.Start(ctx, "TriagePipeline")
	defer span.End()

	cd := &event.Details.ContactData
	contactID := cd.ContactID
	if contactID == "" {
		// Degraded records still need a key to persist and be pollable.
		contactID = uuid.NewString()
		p.logger.WarnContext(ctx, "event carried no ContactId, synthesized one", "contactId", contactID)
	}
	span.SetAttributes(attribute.String("contact.id", contactID))

	defer func() {
		if r := recover(); r != nil {
			p.logger.ErrorContext(ctx, "pipeline panic", "contactId", contactID, "panic", r)
			rec = record.Build(record.Params{
				ContactID:             contactID,
				ConfidenceExplanation: fmt.Sprintf("System error encountered: %v\nImmediate agent review required for technical issue resolution.", r),
			})
		}
		if p.saver != nil {
			if err := p.saver.Save(ctx, rec); err != nil {
				// Persistence is best-effort; the flow still gets its record.
				p.logger.ErrorContext(ctx, "record save failed", "contactId", contactID, "error", err)
			}
		}
		p.logger.InfoContext(ctx, "triage complete",
			"contactId", contactID,
			"confidenceScore", rec.ConfidenceScore,
			"category", rec.Category,
			"modelUsed", rec.ModelUsed)
	}()

	emailContent := p.extractBody(ctx, cd)

	creditScore, creditOK := cd.IntAttribute("CreditScore")
	var creditValue *int
	if creditOK {
		creditValue = &creditScore
	}
	customerName, ok := cd.Attribute("CustomerName")
	if !ok {
		customerName = record.PlaceholderName
	}
	spendingProfile, _ := cd.Attribute("SpendingProfile")
	serviceLevel, _ := cd.Attribute("ServiceLevel")
	addInfo, _ := cd.Attribute("AddInfo")

	knowledgeResults := p.retrieveKnowledge(ctx, emailContent, creditValue)

	instruction := generate.RenderPrompt(p.templates.Template(ctx), generate.PromptFields{
		EmailContent:     emailContent,
		KnowledgeResults: knowledgeResults,
		CustomerName:     customerName,
		CreditScore:      creditValue,
		SpendingProfile:  spendingProfile,
		ServiceLevel:     serviceLevel,
		AddInfo:          addInfo,
	})

	result, err := p.generateDraft(ctx, instruction, emailContent)
	if err != nil {
		p.logger.ErrorContext(ctx, "all model candidates failed", "contactId", contactID, "error", err)
		return record.Build(record.Params{
			ContactID:             contactID,
			CustomerName:          customerName,
			ConfidenceExplanation: degradedExplanation,
			CreditValue:           creditValue,
			SpendingProfile:       spendingProfile,
			ServiceLevel:          serviceLevel,
			AddInfo:               addInfo,
		})
	}

	confidence := score.Confidence(result.Draft.Factors)
	p.logger.DebugContext(ctx, "confidence computed",
		"contactId", contactID,
		"totalDeduction", confidence.TotalDeduction,
		"finalScore", confidence.FinalScore)

	explanation := result.Draft.ConfidenceExplanation
	if explanation == "" {
		explanation = "Score analysis unavailable"
	}

	return record.Build(record.Params{
		ContactID:             contactID,
		CustomerName:          customerName,
		ConfidenceScore:       confidence.FinalScore,
		ConfidenceExplanation: explanation + " " + formatBreakdown(confidence),
		SuggestedResponse:     result.Draft.SuggestedResponse,
		Intent:                result.Draft.Intent,
		Category:              result.Draft.Category,
		CreditValue:           creditValue,
		SpendingProfile:       spendingProfile,
		ServiceLevel:          serviceLevel,
		AddInfo:               addInfo,
		ModelUsed:             result.ModelID,
	})
}

func (p *Pipeline) extractBody(ctx context.Context, cd *connectevent.ContactData) string {
	ctx, span := p.tracer.Start(ctx, "ExtractEmailBody")
	defer span.End()
	return p.extractor.EmailBody(ctx, cd)
}

func (p *Pipeline) retrieveKnowledge(ctx context.Context, query string, creditScore *int) string {
	ctx, span := p.tracer.Start(ctx, "RetrieveKnowledge")
	defer span.End()
	return p.retriever.Search(ctx, query, creditScore)
}

func (p *Pipeline) generateDraft(ctx context.Context, instruction, emailContent string) (generate.Result, error) {
	ctx, span := p.tracer.Start(ctx, "GenerateDraft")
	defer span.End()
	return p.generator.Generate(ctx, instruction, emailContent)
}

// formatBreakdown renders the score calculation appended to the stored
// explanation, in fixed factor order so output is deterministic.
func formatBreakdown(c score.Result) string {
	var parts []string
	for _, factor := range score.FactorOrder {
		if deduction, ok := c.PerFactor[factor]; ok && deduction != 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", factor, deduction))
		}
	}
	parts = append(parts,
		fmt.Sprintf("total_deduction: %d", c.TotalDeduction),
		fmt.Sprintf("final_score: %d", c.FinalScore),
	)
	return "(" + strings.Join(parts, ", ") + ")"
}
