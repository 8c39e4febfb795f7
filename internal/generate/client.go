package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

const (
	// anthropicVersion is the required API version for Claude on Bedrock.
	anthropicVersion = "bedrock-2023-05-31"
	// maxTokens caps the generated draft length.
	maxTokens = 1500

	primaryModel  = "anthropic.claude-3-5-haiku-20241022-v1:0"
	fallbackModel = "anthropic.claude-3-haiku-20240307-v1:0"
)

// ErrAllModelsFailed indicates every candidate model failed; the joined
// per-candidate errors are attached for inspection.
var ErrAllModelsFailed = errors.New("all model attempts failed")

// regionPrefixes maps AWS region prefixes to cross-region inference profile
// prefixes. Regions without an entry use US inference profiles.
var regionPrefixes = []struct {
	region  string
	profile string
}{
	{"us-", "us"},
	{"eu-", "eu"},
	{"ap-", "us"},
	{"ca-", "us"},
	{"sa-", "us"},
}

// ModelCandidates returns the ordered model identifiers to attempt for a
// region: the region-qualified primary model, its bare form, then the same
// pair for the older fallback model.
func ModelCandidates(region string) []string {
	profile := "us"
	for _, rp := range regionPrefixes {
		if strings.HasPrefix(region, rp.region) {
			profile = rp.profile
			break
		}
	}
	return []string{
		profile + "." + primaryModel,
		primaryModel,
		profile + "." + fallbackModel,
		fallbackModel,
	}
}

// Invoker abstracts Bedrock model invocation for dependency inversion.
type Invoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// claudeRequest is the Claude Messages API request format for Bedrock.
type claudeRequest struct {
	AnthropicVersion string    `json:"anthropic_version"`
	MaxTokens        int       `json:"max_tokens"`
	System           string    `json:"system"`
	Messages         []message `json:"messages"`
	Temperature      float64   `json:"temperature"`
}

// message represents a message in the Claude Messages API.
type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the Claude Messages API response format.
type claudeResponse struct {
	Content []contentBlock `json:"content"`
}

// contentBlock represents a content block in the response.
type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Result is a successful generation: the parsed draft and the model that
// produced it.
type Result struct {
	Draft   Draft
	ModelID string
}

// Generator produces a structured draft reply by invoking candidate models in
// order until one succeeds.
type Generator struct {
	client   Invoker
	modelIDs []string
	logger   *slog.Logger
}

// NewGenerator creates a Generator attempting modelIDs in order.
func NewGenerator(client Invoker, modelIDs []string, logger *slog.Logger) *Generator {
	return &Generator{client: client, modelIDs: modelIDs, logger: logger}
}

// Generate invokes each candidate model with the instruction as the system
// message and the email content as the user message, at temperature zero.
// The first candidate that returns is parsed and wins; a failing candidate is
// logged and the next is tried. When every candidate fails the joined attempt
// errors are returned wrapped in ErrAllModelsFailed. No candidate is retried.
func (g *Generator) Generate(ctx context.Context, instruction, emailContent string) (Result, error) {
	reqBody, err := json.Marshal(claudeRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        maxTokens,
		System:           instruction,
		Messages: []message{
			{Role: "user", Content: emailContent},
		},
		Temperature: 0,
	})
	if err != nil {
		return Result{}, fmt.Errorf("marshal request: %w", err)
	}

	var attemptErrs []error
	for _, modelID := range g.modelIDs {
		g.logger.DebugContext(ctx, "invoking model", "modelId", modelID)

		output, err := g.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
			ModelId:     aws.String(modelID),
			Body:        reqBody,
			Accept:      aws.String("application/json"),
			ContentType: aws.String("application/json"),
		})
		if err != nil {
			g.logger.WarnContext(ctx, "model attempt failed", "modelId", modelID, "error", err)
			attemptErrs = append(attemptErrs, fmt.Errorf("%s: %w", modelID, err))
			continue
		}

		var resp claudeResponse
		if err := json.Unmarshal(output.Body, &resp); err != nil {
			g.logger.WarnContext(ctx, "model response unmarshal failed", "modelId", modelID, "error", err)
			attemptErrs = append(attemptErrs, fmt.Errorf("%s: unmarshal response: %w", modelID, err))
			continue
		}
		if len(resp.Content) == 0 {
			attemptErrs = append(attemptErrs, fmt.Errorf("%s: empty response content", modelID))
			continue
		}

		g.logger.DebugContext(ctx, "model succeeded", "modelId", modelID)
		return Result{
			Draft:   ParseDraft(resp.Content[0].Text),
			ModelID: modelID,
		}, nil
	}

	return Result{}, fmt.Errorf("%w: %w", ErrAllModelsFailed, errors.Join(attemptErrs...))
}
