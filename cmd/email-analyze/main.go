// Package main implements the email triage Lambda invoked by the Amazon
// Connect contact flow. It drafts a reply with a confidence score for each
// inbound email and stores the result for polling.
package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/connect"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/anycompany/connect-email-triage/internal/connectevent"
	"github.com/anycompany/connect-email-triage/internal/extract"
	"github.com/anycompany/connect-email-triage/internal/generate"
	"github.com/anycompany/connect-email-triage/internal/knowledge"
	"github.com/anycompany/connect-email-triage/internal/objectstore"
	"github.com/anycompany/connect-email-triage/internal/paramstore"
	"github.com/anycompany/connect-email-triage/internal/record"
	"github.com/anycompany/connect-email-triage/internal/store"
	"github.com/anycompany/connect-email-triage/internal/triage"
)

const defaultRegion = "us-east-1"

func main() {
	ctx := context.Background()

	logger := newLogger(envBool("ENABLE_LOGGING", true))

	knowledgeBaseID := os.Getenv("KNOWLEDGE_BASE_ID")
	tableName := os.Getenv("DYNAMODB_TABLE_NAME")
	promptParam := os.Getenv("PROMPT_TEMPLATE_PARAM")
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = defaultRegion
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	extractor := extract.New(
		connect.NewFromConfig(cfg),
		objectstore.NewFetcher(s3.NewFromConfig(cfg), logger),
		logger,
	)
	retriever := knowledge.New(bedrockagentruntime.NewFromConfig(cfg), knowledgeBaseID, logger)
	generator := generate.NewGenerator(bedrockruntime.NewFromConfig(cfg), generate.ModelCandidates(region), logger)
	templates := generate.NewTemplateSource(paramstore.New(ssm.NewFromConfig(cfg)), promptParam, logger)

	// An unset table name disables persistence; the flow still gets its
	// record back synchronously.
	var saver triage.RecordSaver
	if tableName != "" {
		saver = store.New(dynamodb.NewFromConfig(cfg), tableName)
	}

	pipeline := triage.New(extractor, retriever, generator, templates, saver, logger)

	lambda.Start(func(ctx context.Context, event connectevent.Event) (*record.Record, error) {
		logger.InfoContext(ctx, "contact event received",
			"contactId", event.Details.ContactData.ContactID,
			"references", len(event.Details.ContactData.References))
		return pipeline.Handle(ctx, event), nil
	})
}

// newLogger builds the process logger. With verbose off only errors emit.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelDebug
	if !verbose {
		level = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return strings.EqualFold(v, "true")
}
