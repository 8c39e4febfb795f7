// Package safeurl validates caller-supplied download URLs before any fetch
// is attempted. Only HTTPS URLs addressing Amazon S3 are accepted.
package safeurl

import (
	"errors"
	"net/url"
	"strings"
)

// ErrNotS3URL indicates a URL that did not match a known S3 addressing shape.
var ErrNotS3URL = errors.New("not an S3 URL")

// s3HostMarkers are the substrings that identify S3 hostnames, covering both
// virtual-hosted-style (bucket.s3.region.amazonaws.com) and path-style
// (s3.region.amazonaws.com/bucket) addressing.
var s3HostMarkers = []string{
	".s3.amazonaws.com",
	".s3-",
	".s3.",
	"s3.amazonaws.com",
	"s3-",
}

// IsSafeS3URL reports whether raw is an HTTPS URL addressing Amazon S3.
// Any parse failure yields false; this is the sole SSRF gate in front of
// attachment downloads, so it fails closed.
func IsSafeS3URL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}

	if parsed.Scheme != "https" {
		return false
	}

	hostname := parsed.Hostname()
	if hostname == "" {
		return false
	}

	if !strings.HasSuffix(hostname, ".amazonaws.com") && hostname != "amazonaws.com" {
		return false
	}

	for _, marker := range s3HostMarkers {
		if strings.Contains(hostname, marker) {
			return true
		}
	}
	return false
}

// ParseBucketKey extracts the bucket name and object key from an S3 URL,
// handling both virtual-hosted-style and path-style addressing. The
// pre-signed query string is not part of the key and is discarded.
func ParseBucketKey(raw string) (bucket, key string, err error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}

	hostname := parsed.Hostname()
	path := strings.TrimPrefix(parsed.Path, "/")

	switch {
	case strings.Contains(hostname, ".s3.") && strings.HasSuffix(hostname, ".amazonaws.com"):
		// Virtual-hosted-style: https://bucket.s3.region.amazonaws.com/key
		bucket = hostname[:strings.Index(hostname, ".s3.")]
		key = path
	case strings.HasPrefix(hostname, "s3.") || strings.HasPrefix(hostname, "s3-"):
		// Path-style: https://s3.region.amazonaws.com/bucket/key
		parts := strings.SplitN(path, "/", 2)
		if len(parts) < 2 {
			return "", "", ErrNotS3URL
		}
		bucket, key = parts[0], parts[1]
	default:
		return "", "", ErrNotS3URL
	}

	if bucket == "" || key == "" {
		return "", "", ErrNotS3URL
	}
	return bucket, key, nil
}
