package storage

import (
	"context"
	"io"
	"net/http"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
)

// CloudStorageClient keeps every logical bucket as a top-level prefix inside one GCS bucket.
type CloudStorageClient struct {
	BucketName string
	Client     *storage.Client
}

// NewCloudStorageClient uses application default credentials.
func NewCloudStorageClient(ctx context.Context, bucketName string) (*CloudStorageClient, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cloud storage client")
	}
	return &CloudStorageClient{
		BucketName: bucketName,
		Client:     client,
	}, nil
}

func (c *CloudStorageClient) object(bucket, object string) *storage.ObjectHandle {
	return c.Client.Bucket(c.BucketName).Object(bucket + "/" + object)
}

// Upload writes data to bucket/object. Without Upsert the write is conditioned on the object not existing.
func (c *CloudStorageClient) Upload(ctx context.Context, bucket, object string, data io.Reader, opts UploadOptions) error {
	opts = withDefaults(opts)
	obj := c.object(bucket, object)
	if !opts.Upsert {
		obj = obj.If(storage.Conditions{DoesNotExist: true})
	}

	wc := obj.NewWriter(ctx)
	wc.ContentType = opts.ContentType
	wc.CacheControl = opts.CacheControl
	if _, err := io.Copy(wc, data); err != nil {
		_ = wc.Close()
		return errors.Wrap(err, "failed to write data to object")
	}
	if err := wc.Close(); err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusPreconditionFailed {
			return ErrObjectExists
		}
		return errors.Wrap(err, "failed to close object writer")
	}
	return nil
}

// Download opens a reader for bucket/object together with its size.
func (c *CloudStorageClient) Download(ctx context.Context, bucket, object string) (io.ReadCloser, int64, error) {
	r, err := c.object(bucket, object).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, 0, ErrObjectNotFound
	}
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to open object reader")
	}
	return r, r.Attrs.Size, nil
}

// Delete removes bucket/object.
func (c *CloudStorageClient) Delete(ctx context.Context, bucket, object string) error {
	err := c.object(bucket, object).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return ErrObjectNotFound
	}
	return errors.Wrap(err, "failed to delete object")
}

// List returns the object names in bucket that start with prefix.
func (c *CloudStorageClient) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	root := bucket + "/"
	it := c.Client.Bucket(c.BucketName).Objects(ctx, &storage.Query{Prefix: root + prefix})

	var names []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to list objects")
		}
		names = append(names, strings.TrimPrefix(attrs.Name, root))
	}
	return names, nil
}

// PublicURL points at the public GCS endpoint for the object.
func (c *CloudStorageClient) PublicURL(bucket, object string) string {
	return "https://storage.googleapis.com/" + c.BucketName + "/" + bucket + "/" + escapeObject(object)
}

// Close releases the underlying client.
func (c *CloudStorageClient) Close() error {
	return c.Client.Close()
}
