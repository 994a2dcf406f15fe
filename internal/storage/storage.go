// Package storage stores uploaded files under a logical bucket and object name.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Logical buckets.
const (
	BucketResumes         = "resumes"
	BucketCoverLetters    = "cover-letters"
	BucketApplicantImages = "applicant-images"
	BucketCompanyLogos    = "company-logos"
)

// DefaultCacheControl is applied to every upload that does not set its own.
const DefaultCacheControl = "max-age=3600"

var (
	// ErrObjectExists is returned by Upload without Upsert when the object is already stored.
	ErrObjectExists = errors.New("object already exists")
	// ErrObjectNotFound is returned by Download and Delete for unknown objects.
	ErrObjectNotFound = errors.New("object not found")
)

// UploadOptions tune a single upload.
type UploadOptions struct {
	ContentType  string
	CacheControl string
	// Upsert replaces an existing object instead of failing with ErrObjectExists.
	Upsert bool
}

// Client is implemented by every storage backend.
type Client interface {
	Upload(ctx context.Context, bucket, object string, data io.Reader, opts UploadOptions) error
	Download(ctx context.Context, bucket, object string) (io.ReadCloser, int64, error)
	Delete(ctx context.Context, bucket, object string) error
	List(ctx context.Context, bucket, prefix string) ([]string, error)
	PublicURL(bucket, object string) string
}

// BucketForDocument maps a document type to the bucket it is stored in.
func BucketForDocument(fileType string) (string, error) {
	switch fileType {
	case "resume":
		return BucketResumes, nil
	case "cover-letter":
		return BucketCoverLetters, nil
	default:
		return "", fmt.Errorf("unknown document type %q", fileType)
	}
}

// NewFromEnv returns a cloud storage client when GCS_BUCKET is set and fallback otherwise.
func NewFromEnv(ctx context.Context, fallback Client) (Client, error) {
	bucket := strings.TrimSpace(os.Getenv("GCS_BUCKET"))
	if bucket == "" {
		return fallback, nil
	}
	return NewCloudStorageClient(ctx, bucket)
}

// ReadAll downloads an object fully into memory.
func ReadAll(ctx context.Context, c Client, bucket, object string) ([]byte, error) {
	r, _, err := c.Download(ctx, bucket, object)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s/%s", bucket, object)
	}
	return b, nil
}

func escapeObject(object string) string {
	parts := strings.Split(object, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func withDefaults(opts UploadOptions) UploadOptions {
	if opts.CacheControl == "" {
		opts.CacheControl = DefaultCacheControl
	}
	if opts.ContentType == "" {
		opts.ContentType = "application/octet-stream"
	}
	return opts
}
