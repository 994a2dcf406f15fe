package applicant

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"

	"github.com/Sseankzs/openprofile/internal/auth"
	"github.com/Sseankzs/openprofile/internal/database"
	"github.com/Sseankzs/openprofile/internal/middleware"
	"github.com/Sseankzs/openprofile/internal/model"
	"github.com/Sseankzs/openprofile/internal/storage"
	"github.com/Sseankzs/openprofile/internal/testutil"
)

const baseURL = "http://api.test"

var testDB *database.DBinstanceStruct

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	var err error
	var teardown func(context.Context, ...testcontainers.TerminateOption) error
	teardown, testDB, err = database.GetTestDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start test db: %v\n", err)
		os.Exit(1)
	}
	code := m.Run()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if teardown != nil {
		_ = teardown(ctx)
	}
	os.Exit(code)
}

func router() (*gin.Engine, *storage.DBStorageClient) {
	store := storage.NewDBStorageClient(testDB, baseURL)
	ac := NewApplicantController(testDB, store)

	r := gin.New()
	g := r.Group("/applicant", middleware.RequireAuth(testDB), middleware.CheckRole(model.RoleApplicant))
	g.GET("/profile", ac.GetProfile)
	g.PUT("/profile", ac.UpsertProfile)
	g.POST("/profile/image", middleware.SizeLimit(MaxImageSize), ac.UploadImage)
	return r, store
}

func token(t *testing.T, u model.User) string {
	t.Helper()
	tok, err := auth.GenerateStandardToken(u.ID)
	require.NoError(t, err)
	return tok
}

func newApplicant(t *testing.T) model.User {
	t.Helper()
	u := model.User{ID: uuid.New(), Email: uuid.NewString() + "@example.com", SelectedRole: model.RoleApplicant}
	require.NoError(t, testDB.Create(&u).Error)
	return u
}

func TestGetProfile(t *testing.T) {
	r, _ := router()

	rec, resp := testutil.MakeJSONRequest(nil, token(t, database.TestUserApplicant1), r, "/applicant/profile", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Alice", resp["first_name"])
	assert.Equal(t, database.TestUserApplicant1.ID.String(), resp["user_id"])

	rec, resp = testutil.MakeJSONRequest(nil, token(t, newApplicant(t)), r, "/applicant/profile", http.MethodGet)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Applicant profile not found", resp["error"])
}

func TestGetProfile_CompanyRoleForbidden(t *testing.T) {
	r, _ := router()

	rec, _ := testutil.MakeJSONRequest(nil, token(t, database.TestUserCompany1), r, "/applicant/profile", http.MethodGet)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpsertProfile(t *testing.T) {
	r, _ := router()
	u := newApplicant(t)
	tok := token(t, u)

	rec, resp := testutil.MakeJSONRequest(gin.H{"first_name": "Chai", "last_name": "Wong", "phone": "0811111111"}, tok, r, "/applicant/profile", http.MethodPut)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Chai", resp["first_name"])
	firstID := resp["id"]

	rec, resp = testutil.MakeJSONRequest(gin.H{"first_name": "Chaiya", "linkedin": "https://linkedin.com/in/chaiya"}, tok, r, "/applicant/profile", http.MethodPut)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, firstID, resp["id"])
	assert.Equal(t, "Chaiya", resp["first_name"])
	assert.Equal(t, "", resp["last_name"])
	assert.Equal(t, "https://linkedin.com/in/chaiya", resp["linkedin"])

	var count int64
	require.NoError(t, testDB.Model(&model.ApplicantProfile{}).Where("user_id = ?", u.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpsertProfile_UnknownField(t *testing.T) {
	r, _ := router()

	rec, resp := testutil.MakeJSONRequest(gin.H{"first_name": "X", "img_url": "http://evil"}, token(t, newApplicant(t)), r, "/applicant/profile", http.MethodPut)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp["error"], "Invalid request body")
}

func TestUploadImage(t *testing.T) {
	r, store := router()
	tok := token(t, database.TestUserApplicant2)
	object := ImageObject(database.TestUserApplicant2)

	img := []testutil.FormFile{{Field: "image", Filename: "me.png", Content: []byte("first")}}
	rec, resp := testutil.MakeMultipartRequest(nil, img, tok, r, "/applicant/profile/image", http.MethodPost)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, store.PublicURL(storage.BucketApplicantImages, object), resp["img_url"])

	// a second upload replaces the same object
	img[0].Content = []byte("second")
	rec, _ = testutil.MakeMultipartRequest(nil, img, tok, r, "/applicant/profile/image", http.MethodPost)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored, err := storage.ReadAll(context.Background(), store, storage.BucketApplicantImages, object)
	require.NoError(t, err)
	assert.Equal(t, "second", string(stored))

	var profile model.ApplicantProfile
	require.NoError(t, testDB.First(&profile, "user_id = ?", database.TestUserApplicant2.ID).Error)
	assert.Equal(t, resp["img_url"], profile.ImgURL)
}

func TestUploadImage_Rejections(t *testing.T) {
	r, _ := router()
	tok := token(t, database.TestUserApplicant2)

	cases := []struct {
		name   string
		files  []testutil.FormFile
		status int
	}{
		{"missing", nil, http.StatusBadRequest},
		{"pdf", []testutil.FormFile{{Field: "image", Filename: "me.pdf", Content: []byte("x")}}, http.StatusUnsupportedMediaType},
		{"too large", []testutil.FormFile{{Field: "image", Filename: "me.jpg", Content: bytes.Repeat([]byte{1}, MaxImageSize+1)}}, http.StatusRequestEntityTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, _ := testutil.MakeMultipartRequest(nil, tc.files, tok, r, "/applicant/profile/image", http.MethodPost)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}

	rec, _ := testutil.MakeMultipartRequest(nil, []testutil.FormFile{{Field: "image", Filename: "me.png", Content: []byte("x")}},
		token(t, newApplicant(t)), r, "/applicant/profile/image", http.MethodPost)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
