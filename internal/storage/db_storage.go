package storage

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Sseankzs/openprofile/internal/database"
	"github.com/Sseankzs/openprofile/internal/model"
)

// DBStorageClient keeps objects in the stored_objects table and serves them through the API.
type DBStorageClient struct {
	DB *database.DBinstanceStruct
	// BaseURL is the public origin of this API, e.g. https://api.example.com.
	BaseURL string
}

// NewDBStorageClient creates a database backed storage client.
func NewDBStorageClient(db *database.DBinstanceStruct, baseURL string) *DBStorageClient {
	return &DBStorageClient{DB: db, BaseURL: strings.TrimRight(baseURL, "/")}
}

// Upload stores data under bucket/object.
func (d *DBStorageClient) Upload(ctx context.Context, bucket, object string, data io.Reader, opts UploadOptions) error {
	opts = withDefaults(opts)
	content, err := io.ReadAll(data)
	if err != nil {
		return errors.Wrap(err, "read upload")
	}

	obj := model.StoredObject{
		Bucket:       bucket,
		ObjectName:   object,
		Content:      content,
		ContentType:  opts.ContentType,
		CacheControl: opts.CacheControl,
	}

	tx := d.DB.WithContext(ctx)
	if opts.Upsert {
		tx = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "bucket"}, {Name: "object_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"content", "content_type", "cache_control", "updated_at"}),
		})
	}

	if err := tx.Create(&obj).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrObjectExists
		}
		return errors.Wrap(err, "store object")
	}
	return nil
}

// Download returns the stored bytes of bucket/object.
func (d *DBStorageClient) Download(ctx context.Context, bucket, object string) (io.ReadCloser, int64, error) {
	obj, err := d.Get(ctx, bucket, object)
	if err != nil {
		return nil, 0, err
	}
	return io.NopCloser(bytes.NewReader(obj.Content)), int64(len(obj.Content)), nil
}

// Get returns the stored object row, including its content type.
func (d *DBStorageClient) Get(ctx context.Context, bucket, object string) (*model.StoredObject, error) {
	var obj model.StoredObject
	err := d.DB.WithContext(ctx).Where("bucket = ? AND object_name = ?", bucket, object).First(&obj).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "load object")
	}
	return &obj, nil
}

// Delete removes bucket/object.
func (d *DBStorageClient) Delete(ctx context.Context, bucket, object string) error {
	res := d.DB.WithContext(ctx).Where("bucket = ? AND object_name = ?", bucket, object).Delete(&model.StoredObject{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete object")
	}
	if res.RowsAffected == 0 {
		return ErrObjectNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List returns the object names in bucket that start with prefix.
func (d *DBStorageClient) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	var names []string
	err := d.DB.WithContext(ctx).Model(&model.StoredObject{}).
		Where("bucket = ? AND object_name LIKE ?", bucket, likeEscaper.Replace(prefix)+"%").
		Order("object_name").
		Pluck("object_name", &names).Error
	if err != nil {
		return nil, errors.Wrap(err, "list objects")
	}
	return names, nil
}

// PublicURL points at the API's file route.
func (d *DBStorageClient) PublicURL(bucket, object string) string {
	return d.BaseURL + "/api/v1/file/" + bucket + "/" + escapeObject(object)
}
