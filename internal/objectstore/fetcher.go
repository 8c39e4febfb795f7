// Package objectstore downloads attachment JSON documents addressed by
// pre-signed S3 URLs.
package objectstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/anycompany/connect-email-triage/internal/safeurl"
)

// ErrUnsafeURL indicates a URL that failed validation and was never fetched.
var ErrUnsafeURL = errors.New("unsafe download URL")

// maxBodyBytes caps the attachment document size read into memory.
const maxBodyBytes = 5 * 1024 * 1024

// S3API is the minimal S3 interface required by Fetcher.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Fetcher retrieves JSON documents referenced by pre-signed S3 URLs. It
// prefers a direct GetObject on the parsed bucket and key; if that is denied
// (the URL may be pre-signed precisely because the role lacks object access)
// it falls back to fetching the pre-signed URL itself over HTTPS.
type Fetcher struct {
	s3     S3API
	http   *http.Client
	logger *slog.Logger
}

// NewFetcher creates a Fetcher. The fallback HTTP client is instrumented with
// otelhttp so pre-signed fetches appear in traces.
func NewFetcher(s3Client S3API, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		s3: s3Client,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   10 * time.Second,
		},
		logger: logger,
	}
}

// FetchJSON validates url, downloads the object it addresses and decodes it
// as a JSON object. The validation gate runs before any network activity.
func (f *Fetcher) FetchJSON(ctx context.Context, url string) (map[string]any, error) {
	if !safeurl.IsSafeS3URL(url) {
		return nil, fmt.Errorf("%w: %s", ErrUnsafeURL, url)
	}

	body, err := f.download(ctx, url)
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode attachment JSON: %w", err)
	}
	return doc, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	bucket, key, err := safeurl.ParseBucketKey(url)
	if err != nil {
		return nil, err
	}

	out, err := f.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		defer out.Body.Close()
		return io.ReadAll(io.LimitReader(out.Body, maxBodyBytes))
	}

	f.logger.DebugContext(ctx, "direct GetObject failed, fetching pre-signed URL",
		"bucket", bucket, "error", err)

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if reqErr != nil {
		return nil, reqErr
	}
	resp, respErr := f.http.Do(req)
	if respErr != nil {
		return nil, fmt.Errorf("fetch pre-signed URL: %w", respErr)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch pre-signed URL: status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}
