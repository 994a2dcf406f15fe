// Package file provides HTTP handlers for file-related operations.
package file

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Sseankzs/openprofile/internal/model"
	"github.com/Sseankzs/openprofile/internal/storage"
	"github.com/Sseankzs/openprofile/internal/utilities"
)

var servedBuckets = []string{
	storage.BucketResumes,
	storage.BucketCoverLetters,
	storage.BucketApplicantImages,
	storage.BucketCompanyLogos,
}

// inlineTypes are rendered by the browser; anything else is downloaded in a sandbox.
var inlineTypes = []string{"application/pdf", "image/jpeg", "image/png"}

// objectGetter is implemented by backends that keep object metadata next to the bytes.
type objectGetter interface {
	Get(ctx context.Context, bucket, object string) (*model.StoredObject, error)
}

// FileController handles file related endpoints
type FileController struct {
	Storage storage.Client
}

// NewFileController creates a new instance of FileController
func NewFileController(store storage.Client) *FileController {
	return &FileController{
		Storage: store,
	}
}

// GetFile serves a stored object. Public URLs of the database storage backend point here.
// @Summary Retrieve a stored file
// @Tags File
// @Produce octet-stream
// @Param bucket path string true "resumes, cover-letters, applicant-images or company-logos"
// @Param object path string true "Object name, may contain slashes"
// @Success 200 {string} binary "File content"
// @Failure 404 {object} utilities.ErrorResponse "File not found"
// @Failure 500 {object} utilities.ErrorResponse "Fail to send file content"
// @Router /file/{bucket}/{object} [get]
func (fc *FileController) GetFile(c *gin.Context) {
	bucket := c.Param("bucket")
	object := strings.TrimPrefix(c.Param("object"), "/")
	if !utilities.Contains(servedBuckets, bucket) || object == "" {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "File not found"})
		return
	}

	if getter, ok := fc.Storage.(objectGetter); ok {
		obj, err := getter.Get(c.Request.Context(), bucket, object)
		if err != nil {
			fc.handleStorageError(c, err)
			return
		}
		setFileHeaders(c, object, obj.ContentType, obj.CacheControl)
		c.Header("Content-Length", strconv.Itoa(len(obj.Content)))
		c.Data(http.StatusOK, c.Writer.Header().Get("Content-Type"), obj.Content)
		return
	}

	reader, size, err := fc.Storage.Download(c.Request.Context(), bucket, object)
	if err != nil {
		fc.handleStorageError(c, err)
		return
	}
	defer func() {
		if err := reader.Close(); err != nil {
			zap.L().Warn("failed to close storage reader", zap.Error(err))
		}
	}()

	setFileHeaders(c, object, "", storage.DefaultCacheControl)
	c.DataFromReader(http.StatusOK, size, c.Writer.Header().Get("Content-Type"), reader, nil)
}

func setFileHeaders(c *gin.Context, object, contentType, cacheControl string) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	if cacheControl != "" {
		c.Header("Cache-Control", cacheControl)
	}

	disposition := "inline"
	if !utilities.Contains(inlineTypes, contentType) {
		disposition = "attachment"
		c.Header("Content-Security-Policy", "sandbox")
	}
	c.Header("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": path.Base(object)}))
}

func (fc *FileController) handleStorageError(c *gin.Context, err error) {
	if errors.Is(err, storage.ErrObjectNotFound) {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "File not found"})
		return
	}
	zap.L().Error("failed to read stored file", zap.Error(err))
	c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
		Error: fmt.Sprintf("Failed to download file from storage: %s", err.Error()),
	})
}
