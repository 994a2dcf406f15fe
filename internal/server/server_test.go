package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
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
	"github.com/Sseankzs/openprofile/internal/storage"
	"github.com/Sseankzs/openprofile/internal/testutil"
)

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

func newTestServer() *Server {
	return &Server{
		DB:        testDB,
		Storage:   storage.NewDBStorageClient(testDB, ""),
		Blacklist: auth.NewInMemoryBlacklistStore(),
		Registry:  NewRegistry(),
	}
}

func engine(t *testing.T, s *Server) *gin.Engine {
	t.Helper()
	r, ok := s.RegisterRoutes().(*gin.Engine)
	require.True(t, ok)
	return r
}

func register(t *testing.T, r *gin.Engine, role string) string {
	t.Helper()
	rec, resp := testutil.MakeJSONRequest(gin.H{
		"email":    uuid.NewString() + "@example.com",
		"password": "password123",
		"role":     role,
	}, "", r, "/api/v1/auth/register", http.MethodPost)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	token, ok := resp["access_token"].(string)
	require.True(t, ok)
	return token
}

func TestHealthAndMetrics(t *testing.T) {
	r := engine(t, newTestServer())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"up"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "openprofile_http_requests_total")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	r := engine(t, newTestServer())

	for _, target := range []string{"/api/v1/me", "/api/v1/jobs", "/api/v1/documents"} {
		rec, _ := testutil.MakeJSONRequest(nil, "", r, target, http.MethodGet)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}

	rec, _ := testutil.MakeJSONRequest(nil, "not-a-jwt", r, "/api/v1/me", http.MethodGet)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHiringFlow(t *testing.T) {
	r := engine(t, newTestServer())

	companyToken := register(t, r, "company")
	rec, resp := testutil.MakeJSONRequest(nil, companyToken, r, "/api/v1/me", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, resp["company_profile_complete"])

	rec, _ = testutil.MakeMultipartRequest(map[string]string{"company_name": "Flow Labs"}, nil, companyToken, r, "/api/v1/company/profile", http.MethodPost)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, resp = testutil.MakeJSONRequest(gin.H{
		"title":       "Flow Engineer",
		"location":    "Hat Yai",
		"description": "Keeps the hiring flow running",
	}, companyToken, r, "/api/v1/jobs", http.MethodPost)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	jobID, _ := resp["id"].(string)
	require.NotEmpty(t, jobID)

	applicantToken := register(t, r, "applicant")

	rec, _ = testutil.MakeJSONRequest(gin.H{"title": "x", "location": "y"}, applicantToken, r, "/api/v1/jobs", http.MethodPost)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp = testutil.MakeJSONRequest(nil, applicantToken, r, "/api/v1/jobs/"+jobID, http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, resp["user_applied"])

	rec, resp = testutil.MakeMultipartRequest(map[string]string{"first_name": "Flow", "last_name": "Tester"}, []testutil.FormFile{
		{Field: "resume", Filename: "cv.pdf", Content: []byte("flow resume")},
		{Field: "cover_letter", Filename: "letter.pdf", Content: []byte("flow letter")},
	}, applicantToken, r, "/api/v1/jobs/"+jobID+"/apply", http.MethodPost)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resumeURL, _ := resp["resume_url"].(string)
	require.NotEmpty(t, resumeURL)

	fileRec := httptest.NewRecorder()
	r.ServeHTTP(fileRec, httptest.NewRequest(http.MethodGet, resumeURL, nil))
	require.Equal(t, http.StatusOK, fileRec.Code)
	assert.Equal(t, "flow resume", fileRec.Body.String())

	rec, resp = testutil.MakeJSONRequest(nil, applicantToken, r, "/api/v1/jobs/"+jobID, http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, resp["user_applied"])

	rec, _ = testutil.MakeJSONRequest(nil, applicantToken, r, "/api/v1/jobs/"+jobID+"/applicants", http.MethodGet)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = testutil.MakeJSONRequest(nil, companyToken, r, "/api/v1/jobs/"+jobID+"/applicants", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"first_name":"Flow"`)

	rec, _ = testutil.MakeJSONRequest(nil, applicantToken, r, "/api/v1/documents", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cv.pdf")
}

func TestLogoutRevokesToken(t *testing.T) {
	r := engine(t, newTestServer())
	token := register(t, r, "applicant")

	rec, _ := testutil.MakeJSONRequest(nil, token, r, "/api/v1/auth/logout", http.MethodPost)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, resp := testutil.MakeJSONRequest(nil, token, r, "/api/v1/me", http.MethodGet)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token has been revoked", resp["error"])
}

func TestAllowOrigins(t *testing.T) {
	t.Setenv("ALLOW_ORIGIN", "https://a.example, https://b.example,")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, allowOrigins())

	t.Setenv("ALLOW_ORIGIN", "")
	assert.Equal(t, []string{"http://localhost:3000"}, allowOrigins())
}
