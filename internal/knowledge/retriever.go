// Package knowledge queries an Amazon Bedrock knowledge base and flattens the
// ranked passages into a prompt-ready text block.
package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
)

const (
	// maxQueryLength bounds the outbound retrieval query.
	maxQueryLength = 1000
	// topK is the number of passages requested per query.
	topK = 5

	// NoResults is returned when the knowledge base has nothing relevant.
	NoResults = "No relevant information found in the knowledge base."
	// RetrievalFailed is returned when the retrieval call errors; the
	// pipeline continues with it in place of knowledge content.
	RetrievalFailed = "Error retrieving information from knowledge base."
)

// RetrieveAPI is the minimal Bedrock agent runtime interface required by
// Retriever.
type RetrieveAPI interface {
	Retrieve(ctx context.Context, params *bedrockagentruntime.RetrieveInput, optFns ...func(*bedrockagentruntime.Options)) (*bedrockagentruntime.RetrieveOutput, error)
}

// Retriever queries a knowledge base for passages relevant to an email.
type Retriever struct {
	client          RetrieveAPI
	knowledgeBaseID string
	logger          *slog.Logger
}

// New creates a Retriever.
func New(client RetrieveAPI, knowledgeBaseID string, logger *slog.Logger) *Retriever {
	return &Retriever{client: client, knowledgeBaseID: knowledgeBaseID, logger: logger}
}

// Search retrieves passages for query. A known credit score is appended as a
// bracketed annotation so score-dependent articles rank higher. The combined
// query is truncated to maxQueryLength before submission. Search never fails:
// downstream errors yield the RetrievalFailed literal.
func (r *Retriever) Search(ctx context.Context, query string, creditScore *int) string {
	if creditScore != nil {
		query = fmt.Sprintf("%s [Customer Credit Score: %d]", query, *creditScore)
	}
	if len(query) > maxQueryLength {
		query = query[:maxQueryLength]
	}

	out, err := r.client.Retrieve(ctx, &bedrockagentruntime.RetrieveInput{
		KnowledgeBaseId: aws.String(r.knowledgeBaseID),
		RetrievalQuery:  &types.KnowledgeBaseQuery{Text: aws.String(query)},
		RetrievalConfiguration: &types.KnowledgeBaseRetrievalConfiguration{
			VectorSearchConfiguration: &types.KnowledgeBaseVectorSearchConfiguration{
				NumberOfResults: aws.Int32(topK),
			},
		},
	})
	if err != nil {
		r.logger.WarnContext(ctx, "knowledge base query failed", "error", err)
		return RetrievalFailed
	}

	if len(out.RetrievalResults) == 0 {
		return NoResults
	}

	// Results arrive relevance-descending; no client-side re-ranking.
	blocks := make([]string, 0, len(out.RetrievalResults))
	for i, result := range out.RetrievalResults {
		var content string
		if result.Content != nil && result.Content.Text != nil {
			content = *result.Content.Text
		}
		var score float64
		if result.Score != nil {
			score = *result.Score
		}
		blocks = append(blocks, fmt.Sprintf("--- Information %d (Relevance: %.2f) ---\n%s", i+1, score, content))
	}

	return strings.Join(blocks, "\n\n")
}
