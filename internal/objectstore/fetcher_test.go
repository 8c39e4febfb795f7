package objectstore

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type mockS3 struct {
	getObjectFunc func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

func (m *mockS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return m.getObjectFunc(ctx, params, optFns...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFetchJSON_RejectsUnsafeURL(t *testing.T) {
	called := false
	f := NewFetcher(&mockS3{
		getObjectFunc: func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
			called = true
			return nil, errors.New("should not be reached")
		},
	}, discardLogger())

	_, err := f.FetchJSON(context.Background(), "https://attacker.example.com/steal")
	if !errors.Is(err, ErrUnsafeURL) {
		t.Fatalf("error = %v, want ErrUnsafeURL", err)
	}
	if called {
		t.Error("GetObject was called for an unsafe URL")
	}
}

func TestFetchJSON_DirectGetObject(t *testing.T) {
	f := NewFetcher(&mockS3{
		getObjectFunc: func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
			if *params.Bucket != "attachments" {
				t.Errorf("bucket = %q, want attachments", *params.Bucket)
			}
			if *params.Key != "contact/mail.json" {
				t.Errorf("key = %q, want contact/mail.json", *params.Key)
			}
			return &s3.GetObjectOutput{
				Body: io.NopCloser(strings.NewReader(`{"messageContent":"Hello"}`)),
			}, nil
		},
	}, discardLogger())

	doc, err := f.FetchJSON(context.Background(), "https://attachments.s3.eu-west-2.amazonaws.com/contact/mail.json?X-Amz-Signature=x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc["messageContent"] != "Hello" {
		t.Errorf("messageContent = %v, want Hello", doc["messageContent"])
	}
}

func TestFetchJSON_FallsBackToPresignedURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"body":"from presigned"}`))
	}))
	defer server.Close()

	f := NewFetcher(&mockS3{
		getObjectFunc: func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
			return nil, errors.New("AccessDenied")
		},
	}, discardLogger())

	// Route the validated S3 URL at the local test server.
	f.http = server.Client()
	f.http.Transport = rewriteTransport{base: server.Client().Transport, target: server.URL}

	doc, err := f.FetchJSON(context.Background(), "https://attachments.s3.eu-west-2.amazonaws.com/contact/mail.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc["body"] != "from presigned" {
		t.Errorf("body = %v, want from presigned", doc["body"])
	}
}

func TestFetchJSON_BadJSON(t *testing.T) {
	f := NewFetcher(&mockS3{
		getObjectFunc: func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
			return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("not json"))}, nil
		},
	}, discardLogger())

	_, err := f.FetchJSON(context.Background(), "https://b.s3.us-east-1.amazonaws.com/k.json")
	if err == nil {
		t.Fatal("expected error for non-JSON content")
	}
}

// rewriteTransport redirects every request to the test server.
type rewriteTransport struct {
	base   http.RoundTripper
	target string
}

func (rt rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rewritten := req.Clone(req.Context())
	rewritten.URL.Scheme = "http"
	rewritten.URL.Host = strings.TrimPrefix(rt.target, "http://")
	return rt.base.RoundTrip(rewritten)
}
