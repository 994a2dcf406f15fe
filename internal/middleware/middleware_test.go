package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Sseankzs/openprofile/internal/auth"
	"github.com/Sseankzs/openprofile/internal/database"
	"github.com/Sseankzs/openprofile/internal/model"
	"github.com/Sseankzs/openprofile/internal/testutil"
	"github.com/Sseankzs/openprofile/internal/utilities"
)

var testDB *database.DBinstanceStruct

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	var err error
	var midTeardown func(context.Context, ...testcontainers.TerminateOption) error
	midTeardown, testDB, err = database.GetTestDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start test db: %v\n", err)
		os.Exit(1)
	}
	code := m.Run()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if midTeardown != nil {
		_ = midTeardown(ctx)
	}
	os.Exit(code)
}

func protectedEngine() *gin.Engine {
	r := gin.New()
	r.GET("/protected", RequireAuth(testDB), checkUserHandler)
	return r
}

func checkUserHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Hello, " + user.SelectedRole})
}

func readFileHandler(c *gin.Context) {
	file, status, err := utilities.ReadFormFile(c, "file", utilities.DocumentExtensions, 0)
	if err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			c.JSON(status, gin.H{"error": "Entity too large"})
			return
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "size": len(file.Content)})
}

func get(t *testing.T, engine *gin.Engine, path, token string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	body := map[string]interface{}{}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

// streamFile sends a multipart body through a pipe so the request has no Content-Length.
func streamFile(t *testing.T, engine *gin.Engine, endpoint string, size int) *httptest.ResponseRecorder {
	t.Helper()
	bodyReader, bodyWriter := io.Pipe()
	multipartWriter := multipart.NewWriter(bodyWriter)

	go func() {
		part, err := multipartWriter.CreateFormFile("file", "upload.pdf")
		if err == nil {
			_, _ = part.Write(bytes.Repeat([]byte{'a'}, size))
		}
		_ = multipartWriter.Close()
		_ = bodyWriter.Close()
	}()

	req, _ := http.NewRequest(http.MethodPost, endpoint, bodyReader)
	req.Header.Set("Content-Type", multipartWriter.FormDataContentType())
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	_ = bodyReader.Close()
	return rec
}

func TestRequireAuth_Success(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestUserApplicant1.Email, database.TestSeedPassword)
	require.NoError(t, err)

	rec, body := get(t, protectedEngine(), "/protected", token)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "Hello, applicant", body["message"])
}

func TestRequireAuth_Failures(t *testing.T) {
	expired, err := auth.GenerateTokenWithDuration(database.TestUserApplicant1.ID, -time.Minute, auth.JwtIssuer)
	require.NoError(t, err)
	valid, err := auth.GenerateTokenWithDuration(database.TestUserApplicant1.ID, time.Hour, auth.JwtIssuer)
	require.NoError(t, err)
	unknown, err := auth.GenerateTokenWithDuration(uuid.New(), time.Hour, auth.JwtIssuer)
	require.NoError(t, err)
	otherIssuer, err := auth.GenerateTokenWithDuration(database.TestUserApplicant1.ID, time.Hour, "invalid-issuer")
	require.NoError(t, err)

	cases := []struct {
		name    string
		token   string
		status  int
		wantErr string
	}{
		{"no header", "", http.StatusBadRequest, "Invalid authorization header"},
		{"expired", expired, http.StatusUnauthorized, "Access token expired"},
		{"bad signature", valid + "x", http.StatusUnauthorized, "Failed to validate token"},
		{"unknown user", unknown, http.StatusUnauthorized, "User not exist"},
		{"other issuer", otherIssuer, http.StatusUnauthorized, "Invalid token issuer"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, body := get(t, protectedEngine(), "/protected", tc.token)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.Contains(t, body["error"], tc.wantErr)
		})
	}
}

func TestCheckRole_NoRequireAuthBefore(t *testing.T) {
	engine := gin.New()
	engine.GET("/need-role", CheckRole(model.RoleApplicant), checkUserHandler)

	rec, body := get(t, engine, "/need-role", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "User information not provided", body["error"])
}

func TestCheckRole(t *testing.T) {
	engine := gin.New()
	engine.GET("/company-only", RequireAuth(testDB), CheckRole(model.RoleCompany), checkUserHandler)
	engine.GET("/anyone", RequireAuth(testDB), CheckRole(model.RoleApplicant, model.RoleCompany), checkUserHandler)

	applicantToken, err := auth.GetAccessToken(t, testDB, database.TestUserApplicant1.Email, database.TestSeedPassword)
	require.NoError(t, err)
	companyToken, err := auth.GetAccessToken(t, testDB, database.TestUserCompany1.Email, database.TestSeedPassword)
	require.NoError(t, err)

	rec, body := get(t, engine, "/company-only", applicantToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "User doesn't have permission to access", body["error"])

	rec, body = get(t, engine, "/company-only", companyToken)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello, company", body["message"])

	for _, token := range []string{applicantToken, companyToken} {
		rec, _ = get(t, engine, "/anyone", token)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestJwtBlacklistCheck(t *testing.T) {
	store := auth.NewInMemoryBlacklistStore()
	engine := gin.New()
	engine.GET("/protected", JwtBlacklistCheck(store), RequireAuth(testDB), checkUserHandler)

	token, err := auth.GetAccessToken(t, testDB, database.TestUserCompany2.Email, database.TestSeedPassword)
	require.NoError(t, err)

	rec, _ := get(t, engine, "/protected", token)
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, store.AddToBlacklist(token, time.Now().Add(time.Hour)))

	rec, body := get(t, engine, "/protected", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token has been revoked", body["error"])

	rec, _ = get(t, engine, "/protected", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type failingBlacklist struct{}

func (failingBlacklist) IsBlacklisted(string) (bool, error) { return false, errors.New("store down") }
func (failingBlacklist) AddToBlacklist(string, time.Time) error {
	return errors.New("store down")
}

func TestJwtBlacklistCheck_StoreError(t *testing.T) {
	engine := gin.New()
	engine.GET("/protected", JwtBlacklistCheck(failingBlacklist{}), checkUserHandler)

	rec, body := get(t, engine, "/protected", "some-token")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, body["error"], "store down")
}

func TestSizeLimit(t *testing.T) {
	engine := gin.New()
	engine.POST("/upload", SizeLimit(1<<20), readFileHandler)

	file := func(size int) []testutil.FormFile {
		return []testutil.FormFile{{Field: "file", Filename: "cv.pdf", Content: bytes.Repeat([]byte{'a'}, size)}}
	}

	rec, body := testutil.MakeMultipartRequest(nil, file(512<<10), "", engine, "/upload", http.MethodPost)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(512<<10), body["size"])

	rec, _ = testutil.MakeMultipartRequest(nil, file(1<<20), "", engine, "/upload", http.MethodPost)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, body = testutil.MakeMultipartRequest(nil, file(2<<20), "", engine, "/upload", http.MethodPost)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "Entity too large", body["error"])
}

func TestSizeLimit_StreamedBodyWithoutLength(t *testing.T) {
	engine := gin.New()
	engine.POST("/upload", SizeLimit(1<<20), readFileHandler)

	rec := streamFile(t, engine, "/upload", 512<<10)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = streamFile(t, engine, "/upload", 3<<20)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
}

func TestRateLimiter(t *testing.T) {
	engine := gin.New()
	engine.GET("/limited", RateLimiterMiddleware(2), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec, _ := get(t, engine, "/limited", "")
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	rec, body := get(t, engine, "/limited", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many requests. Please try again later.", body["error"])
}

func TestKeyFunc(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request, _ = http.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "ip: 10.0.0.1", keyFunc(c))

	c.Set("user", database.TestUserApplicant2)
	assert.Equal(t, "user: "+database.TestUserApplicant2.ID.String(), keyFunc(c))
}

func TestSafeHeader(t *testing.T) {
	engine := gin.New()
	engine.GET("/", SafeHeader(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec, _ := get(t, engine, "/", "")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-referrer", rec.Header().Get("Referrer-Policy"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestMetricsBuilder(t *testing.T) {
	reg := prometheus.NewRegistry()
	mb := NewMetricsBuilder(reg)

	engine := gin.New()
	engine.Use(mb.Build())
	engine.GET("/jobs/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	get(t, engine, "/jobs/1", "")
	get(t, engine, "/jobs/2", "")
	get(t, engine, "/nowhere", "")

	assert.Equal(t, 2.0, promtest.ToFloat64(mb.counterVec.WithLabelValues(http.MethodGet, "/jobs/:id", "200")))
	assert.Equal(t, 1.0, promtest.ToFloat64(mb.counterVec.WithLabelValues(http.MethodGet, "unmatched", "404")))

	// a second builder on the same registry must fail loudly
	assert.Panics(t, func() { NewMetricsBuilder(reg) })
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	engine := gin.New()
	engine.Use(RequestLogger(zap.New(core)))
	engine.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	get(t, engine, "/ok", "")
	get(t, engine, "/boom", "")
	get(t, engine, "/missing", "")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "/ok", entries[0].ContextMap()["path"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, "/missing", entries[2].ContextMap()["path"])
}
