package application

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/Sseankzs/openprofile/internal/controller/document"
	"github.com/Sseankzs/openprofile/internal/database"
	"github.com/Sseankzs/openprofile/internal/model"
	"github.com/Sseankzs/openprofile/internal/storage"
	"github.com/Sseankzs/openprofile/internal/utilities"
)

// documentField names the form inputs of one document kind.
type documentField struct {
	kind  string
	label string
	field string
}

var (
	resumeField      = documentField{kind: model.DocumentResume, label: "resume", field: "resume"}
	coverLetterField = documentField{kind: model.DocumentCoverLetter, label: "cover letter", field: "cover_letter"}
)

func (f documentField) useExistingKey() string { return "use_existing_" + f.field }
func (f documentField) documentIDKey() string  { return f.field + "_document_id" }

// attachment is a document chosen for an application: either a stored one or a fresh upload.
type attachment struct {
	documentField
	existing *model.UserDocument
	upload   *utilities.UploadedFile
}

// resolveAttachment reads the form inputs of f. When "use existing" is on, any uploaded file is ignored.
func resolveAttachment(c *gin.Context, db *database.DBinstanceStruct, userID uuid.UUID, f documentField) (*attachment, int, error) {
	useExisting, _ := strconv.ParseBool(c.PostForm(f.useExistingKey()))
	if useExisting {
		id := c.PostForm(f.documentIDKey())
		if id != "" {
			if _, err := uuid.Parse(id); err != nil {
				return nil, http.StatusBadRequest, fmt.Errorf("Invalid %s document id", f.label)
			}
		}
		doc, err := document.FindDocument(c.Request.Context(), db, userID, f.kind, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, http.StatusBadRequest, fmt.Errorf("No uploaded %s found", f.label)
		}
		if err != nil {
			return nil, http.StatusInternalServerError, errors.Wrapf(err, "find %s", f.label)
		}
		return &attachment{documentField: f, existing: doc}, http.StatusOK, nil
	}

	file, status, err := utilities.ReadFormFile(c, f.field, utilities.DocumentExtensions, document.MaxDocumentSize)
	if errors.Is(err, utilities.ErrNoFile) {
		return nil, http.StatusBadRequest, fmt.Errorf("Please upload a %s or select an existing one.", f.label)
	}
	if err != nil {
		return nil, status, err
	}
	return &attachment{documentField: f, upload: file}, http.StatusOK, nil
}

// content returns the document bytes, downloading stored documents.
func (a *attachment) content(ctx context.Context, store storage.Client) ([]byte, error) {
	if a.upload != nil {
		return a.upload.Content, nil
	}
	bucket, err := storage.BucketForDocument(a.kind)
	if err != nil {
		return nil, err
	}
	return storage.ReadAll(ctx, store, bucket, a.existing.FilePath)
}

// persist stores a fresh upload as a user document and returns the public URL of the attachment.
func (a *attachment) persist(ctx context.Context, db *database.DBinstanceStruct, store storage.Client, userID uuid.UUID) (string, error) {
	if a.existing == nil {
		doc, err := document.SaveDocument(ctx, db, store, userID, a.kind, a.upload)
		if err != nil {
			return "", err
		}
		a.existing = doc
	}
	bucket, err := storage.BucketForDocument(a.kind)
	if err != nil {
		return "", err
	}
	return store.PublicURL(bucket, a.existing.FilePath), nil
}
