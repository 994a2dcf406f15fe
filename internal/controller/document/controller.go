// Package document provides HTTP handlers for the resumes and cover letters a user keeps for reuse.
package document

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Sseankzs/openprofile/internal/database"
	"github.com/Sseankzs/openprofile/internal/model"
	"github.com/Sseankzs/openprofile/internal/storage"
	"github.com/Sseankzs/openprofile/internal/utilities"
)

// MaxDocumentSize is the largest accepted resume or cover letter.
const MaxDocumentSize = 10 << 20

// DocumentController handles document related endpoints
type DocumentController struct {
	DB      *database.DBinstanceStruct
	Storage storage.Client
}

// NewDocumentController creates a new instance of DocumentController
func NewDocumentController(db *database.DBinstanceStruct, store storage.Client) *DocumentController {
	return &DocumentController{
		DB:      db,
		Storage: store,
	}
}

// ObjectName builds <user_id>/<bucket>/<unique>-<filename>. Buckets are already plural
// ("resumes", "cover-letters") so the folder matches the bucket name.
func ObjectName(userID uuid.UUID, bucket, filename string) string {
	name := strings.ReplaceAll(filename, "/", "_")
	return fmt.Sprintf("%s/%s/%s-%s", userID, bucket, shortuuid.New(), name)
}

// SaveDocument uploads file without overwrite and records it as a document of fileType.
// The returned document carries its public URL.
func SaveDocument(
	ctx context.Context,
	db *database.DBinstanceStruct,
	store storage.Client,
	userID uuid.UUID,
	fileType string,
	file *utilities.UploadedFile,
) (*model.UserDocument, error) {
	bucket, err := storage.BucketForDocument(fileType)
	if err != nil {
		return nil, err
	}

	object := ObjectName(userID, bucket, file.Filename)
	if err := store.Upload(ctx, bucket, object, bytes.NewReader(file.Content), storage.UploadOptions{
		ContentType:  file.ContentType,
		CacheControl: storage.DefaultCacheControl,
	}); err != nil {
		return nil, errors.Wrapf(err, "upload %s", fileType)
	}

	doc := model.UserDocument{
		UserID:   userID,
		FileType: fileType,
		FilePath: object,
	}
	if err := db.WithContext(ctx).Create(&doc).Error; err != nil {
		if delErr := store.Delete(ctx, bucket, object); delErr != nil {
			zap.L().Warn("failed to remove orphaned upload", zap.String("object", object), zap.Error(delErr))
		}
		return nil, errors.Wrap(err, "record document")
	}
	doc.URL = store.PublicURL(bucket, object)
	return &doc, nil
}

// FindDocument loads one document of fileType owned by userID. An empty id picks the most recent one.
// It returns gorm.ErrRecordNotFound when nothing matches.
func FindDocument(ctx context.Context, db *database.DBinstanceStruct, userID uuid.UUID, fileType, id string) (*model.UserDocument, error) {
	q := db.WithContext(ctx).Where("user_id = ? AND file_type = ?", userID, fileType)
	if id != "" {
		q = q.Where("id = ?", id)
	}
	var doc model.UserDocument
	if err := q.Order("uploaded_at DESC").First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListDocuments returns the user's documents of one type, newest first.
// @Summary List my uploaded documents of a type
// @Tags Document
// @Produce json
// @Security BearerAuth
// @Param type query string true "resume or cover-letter"
// @Success 200 {array} model.UserDocument
// @Failure 400 {object} utilities.ErrorResponse "Invalid document type"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /documents [get]
func (dc *DocumentController) ListDocuments(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	fileType := c.Query("type")
	bucket, err := storage.BucketForDocument(fileType)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Query 'type' must be 'resume' or 'cover-letter'",
		})
		return
	}

	docs := []model.UserDocument{}
	if err := dc.DB.Where("user_id = ? AND file_type = ?", user.ID, fileType).
		Order("uploaded_at DESC").
		Find(&docs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve documents: %s", err.Error()),
		})
		return
	}

	for i := range docs {
		docs[i].URL = dc.Storage.PublicURL(bucket, docs[i].FilePath)
	}
	c.JSON(http.StatusOK, docs)
}

// UploadDocument stores a new resume or cover letter for later reuse.
// @Summary Upload a resume or cover letter
// @Description Only .pdf, .doc and .docx files up to 10 MB are accepted. Existing files are never overwritten.
// @Tags Document
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param type formData string true "resume or cover-letter"
// @Param file formData file true "Document to upload"
// @Success 201 {object} model.UserDocument
// @Failure 400 {object} utilities.ErrorResponse "Invalid document type or missing file"
// @Failure 409 {object} utilities.ErrorResponse "Object already exists"
// @Failure 413 {object} utilities.ErrorResponse "File too large"
// @Failure 415 {object} utilities.ErrorResponse "File extension is not allowed"
// @Failure 500 {object} utilities.ErrorResponse "Storage or database error"
// @Router /documents [post]
func (dc *DocumentController) UploadDocument(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	file, status, err := utilities.ReadFormFile(c, "file", utilities.DocumentExtensions, MaxDocumentSize)
	if err != nil {
		c.JSON(status, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	fileType := c.PostForm("type")
	if !model.IsValidDocumentType(fileType) {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Form field 'type' must be 'resume' or 'cover-letter'",
		})
		return
	}

	doc, err := SaveDocument(c.Request.Context(), dc.DB, dc.Storage, user.ID, fileType, file)
	if errors.Is(err, storage.ErrObjectExists) {
		c.JSON(http.StatusConflict, utilities.ErrorResponse{Error: "A file with this name already exists"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to upload document: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusCreated, doc)
}
