// Package main implements the result-query Lambda handler. Contact flows
// poll it with a contact ID to pick up the analysis record once the triage
// Lambda has stored it.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/anycompany/connect-email-triage/internal/connectevent"
	"github.com/anycompany/connect-email-triage/internal/record"
	"github.com/anycompany/connect-email-triage/internal/store"
)

// RecordFinder defines the interface for looking up analysis records.
type RecordFinder interface {
	Lookup(ctx context.Context, contactID string) (*record.Record, error)
}

// response is the flat shape returned to the contact flow. The record fields
// are inlined next to statusCode so flow attributes can reference them
// directly.
type response struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error,omitempty"`
	*record.Record
}

// handler implements the result lookup logic.
type handler struct {
	finder RecordFinder
	logger *slog.Logger
}

func newHandler(finder RecordFinder, logger *slog.Logger) *handler {
	return &handler{finder: finder, logger: logger}
}

// handle looks up the analysis record for the event's contact ID.
func (h *handler) handle(ctx context.Context, event connectevent.Event) (response, error) {
	contactID := event.Details.ContactData.ContactID
	if contactID == "" {
		h.logger.WarnContext(ctx, "lookup request missing contact ID")
		return response{StatusCode: 400, Error: "contactId is required"}, nil
	}

	rec, err := h.finder.Lookup(ctx, contactID)
	if errors.Is(err, store.ErrNotFound) {
		h.logger.InfoContext(ctx, "no analysis record yet", "contactId", contactID)
		return response{StatusCode: 404, Error: "Item not found"}, nil
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "record lookup failed", "contactId", contactID, "error", err)
		return response{}, err
	}

	h.logger.InfoContext(ctx, "analysis record found",
		"contactId", contactID, "confidenceScore", rec.ConfidenceScore)
	return response{StatusCode: 200, Record: rec}, nil
}

func main() {
	ctx := context.Background()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	tableName := os.Getenv("DYNAMODB_TABLE_NAME")
	if tableName == "" {
		tableName = store.DefaultTableName
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	h := newHandler(store.New(dynamodb.NewFromConfig(cfg), tableName), logger)
	lambda.Start(h.handle)
}
