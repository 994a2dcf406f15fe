package utilities

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	// DocumentExtensions are accepted for resumes and cover letters.
	DocumentExtensions = []string{".pdf", ".doc", ".docx"}
	// ImageExtensions are accepted for profile pictures and logos.
	ImageExtensions = []string{".jpg", ".jpeg", ".png"}

	contentTypes = map[string]string{
		".pdf":  "application/pdf",
		".doc":  "application/msword",
		".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
	}
)

// ContentTypeFor returns the stored content type of an accepted extension.
// The part header sent by the client is never trusted.
func ContentTypeFor(extension string) string {
	if ct, ok := contentTypes[strings.ToLower(extension)]; ok {
		return ct
	}
	return "application/octet-stream"
}

// ErrNoFile is returned by ReadFormFile when the form has no file under the field.
var ErrNoFile = errors.New("no file uploaded")

// UploadedFile is a multipart file read fully into memory.
type UploadedFile struct {
	Filename    string
	Extension   string
	ContentType string
	Content     []byte
}

// ReadFormFile reads field from a multipart form. It returns the HTTP status matching the failure:
// 400 when the field is missing, 413 when the body or the file is over maxSize,
// 415 when the extension is not allowed and 500 otherwise.
func ReadFormFile(c *gin.Context, field string, allowed []string, maxSize int64) (*UploadedFile, int, error) {
	rawFile, err := c.FormFile(field)
	var maxBytesError *http.MaxBytesError
	if errors.As(err, &maxBytesError) {
		return nil, http.StatusRequestEntityTooLarge, err
	}
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, http.StatusBadRequest, ErrNoFile
	}
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("Failed to retrieve file: %w", err)
	}

	if maxSize > 0 && rawFile.Size > maxSize {
		return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("File size must be at most %d bytes", maxSize)
	}

	extension := strings.ToLower(filepath.Ext(rawFile.Filename))
	if !Contains(allowed, extension) {
		return nil, http.StatusUnsupportedMediaType, fmt.Errorf("Unsupported file extension: %s", extension)
	}

	f, err := rawFile.Open()
	if err != nil {
		return nil, http.StatusInternalServerError, errors.New("Cannot open file")
	}
	defer func() {
		if err := f.Close(); err != nil {
			zap.L().Warn("failed to close uploaded file", zap.Error(err))
		}
	}()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, http.StatusInternalServerError, errors.New("Cannot read file")
	}

	return &UploadedFile{
		Filename:    filepath.Base(rawFile.Filename),
		Extension:   extension,
		ContentType: ContentTypeFor(extension),
		Content:     content,
	}, http.StatusOK, nil
}
