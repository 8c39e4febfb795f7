// Package extract locates the customer's email body inside an Amazon Connect
// contact event, resolving attached message files when the body is not inline.
package extract

import (
	"context"
	"log/slog"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/connect"

	"github.com/anycompany/connect-email-triage/internal/connectevent"
	"github.com/anycompany/connect-email-triage/internal/htmltext"
	"github.com/anycompany/connect-email-triage/internal/textnorm"
)

// Sentinel is returned when no email content can be located; the pipeline
// still produces a response for the contact.
const Sentinel = "Customer inquiry"

// subjectPrefix labels the subject-line fallback.
const subjectPrefix = "Email Subject: "

// contentFields are the attachment JSON fields probed for the message body,
// in priority order.
var contentFields = []string{"messageContent", "content", "body", "text", "message"}

// ConnectAPI is the minimal Amazon Connect interface required by Extractor.
type ConnectAPI interface {
	GetAttachedFile(ctx context.Context, params *connect.GetAttachedFileInput, optFns ...func(*connect.Options)) (*connect.GetAttachedFileOutput, error)
}

// JSONFetcher downloads a JSON document from a validated URL.
type JSONFetcher interface {
	FetchJSON(ctx context.Context, url string) (map[string]any, error)
}

// Extractor resolves email body content for a contact.
type Extractor struct {
	connect ConnectAPI
	fetcher JSONFetcher
	logger  *slog.Logger
}

// New creates an Extractor.
func New(connectClient ConnectAPI, fetcher JSONFetcher, logger *slog.Logger) *Extractor {
	return &Extractor{connect: connectClient, fetcher: fetcher, logger: logger}
}

// EmailBody returns the customer's email text for a contact. It tries, in
// order: a literal body attribute, each EMAIL_MESSAGE reference's attached
// file, and the email subject segment attribute. It never fails; when nothing
// matches it returns the Sentinel. Errors on individual references are logged
// and the next reference is tried.
func (e *Extractor) EmailBody(ctx context.Context, cd *connectevent.ContactData) string {
	if body, ok := cd.Attribute("body"); ok {
		return normalize(body)
	}

	// Map iteration order is random; walk references in a stable order.
	keys := make([]string, 0, len(cd.References))
	for key := range cd.References {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		ref := cd.References[key]
		if ref.Type != connectevent.ReferenceTypeEmail {
			continue
		}
		fileID := ref.FileID(key)
		if fileID == "" {
			continue
		}

		content, err := e.fetchReferencedBody(ctx, cd, fileID)
		if err != nil {
			e.logger.WarnContext(ctx, "attached file processing failed",
				"fileId", fileID, "error", err)
			continue
		}
		if content != "" {
			return content
		}
	}

	if subject, ok := cd.Attribute(connectevent.SubjectSegmentAttribute); ok {
		return subjectPrefix + subject
	}

	return Sentinel
}

// fetchReferencedBody downloads one attached message file and probes its
// content fields.
func (e *Extractor) fetchReferencedBody(ctx context.Context, cd *connectevent.ContactData, fileID string) (string, error) {
	out, err := e.connect.GetAttachedFile(ctx, &connect.GetAttachedFileInput{
		InstanceId:            aws.String(cd.InstanceID()),
		FileId:                aws.String(fileID),
		AssociatedResourceArn: aws.String(cd.ContactARN()),
	})
	if err != nil {
		return "", err
	}

	if out.DownloadUrlMetadata == nil || out.DownloadUrlMetadata.Url == nil || *out.DownloadUrlMetadata.Url == "" {
		return "", nil
	}

	doc, err := e.fetcher.FetchJSON(ctx, *out.DownloadUrlMetadata.Url)
	if err != nil {
		return "", err
	}

	for _, field := range contentFields {
		if v, ok := doc[field].(string); ok && v != "" {
			return normalize(v), nil
		}
	}
	return "", nil
}

// normalize reduces HTML bodies to text and strips control characters.
func normalize(body string) string {
	if htmltext.LooksLikeHTML(body) {
		body = htmltext.Strip(body)
	}
	return textnorm.Clean(body)
}
