package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sseankzs/openprofile/internal/database"
)

// logoutContext builds a gin context carrying header as Authorization and, when set, claims.
func logoutContext(t *testing.T, header string, claims any) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	req, err := http.NewRequest(http.MethodPost, "/logout", nil)
	require.NoError(t, err)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	c.Request = req
	if claims != nil {
		c.Set("claims", claims)
	}
	return c, rec
}

func claimsOf(t *testing.T, token string) *jwt.RegisteredClaims {
	t.Helper()
	parsed, err := ValidatedToken(token)
	require.NoError(t, err)
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	require.True(t, ok)
	return claims
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestLogoutSuccess(t *testing.T) {
	accessToken, err := GetAccessToken(t, testDB, database.TestUserApplicant1.Email, database.TestSeedPassword)
	require.NoError(t, err)

	store := NewInMemoryBlacklistStore()
	c, rec := logoutContext(t, "Bearer "+accessToken, claimsOf(t, accessToken))

	NewLogoutController(store).LogoutHandler(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Successfully logged out", decode(t, rec)["message"])

	isBlacklisted, err := store.IsBlacklisted(accessToken)
	assert.NoError(t, err)
	assert.True(t, isBlacklisted, "Token should be blacklisted after logout")
}

func TestLogoutRejectsBadRequests(t *testing.T) {
	accessToken, err := GetAccessToken(t, testDB, database.TestUserCompany1.Email, database.TestSeedPassword)
	require.NoError(t, err)

	cases := []struct {
		name    string
		header  string
		claims  any
		wantErr string
	}{
		{"missing header", "", nil, "Invalid authorization header"},
		{"wrong scheme", "Basic " + accessToken, nil, "Invalid authorization header"},
		{"missing claims", "Bearer " + accessToken, nil, "invalid token claims"},
		{"wrong claims type", "Bearer " + accessToken, "not-claims", "invalid token claims type"},
		{"claims without expiry", "Bearer " + accessToken, &jwt.RegisteredClaims{Subject: "x"}, "invalid token claims type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := NewInMemoryBlacklistStore()
			c, rec := logoutContext(t, tc.header, tc.claims)

			NewLogoutController(store).LogoutHandler(c)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tc.wantErr, decode(t, rec)["error"])
			blacklisted, _ := store.IsBlacklisted(accessToken)
			assert.False(t, blacklisted)
		})
	}
}

func TestLogoutBlacklistStoreError(t *testing.T) {
	accessToken, err := GetAccessToken(t, testDB, database.TestUserApplicant1.Email, database.TestSeedPassword)
	require.NoError(t, err)

	mockStore := &MockBlacklistStore{addError: fmt.Errorf("database connection failed")}
	c, rec := logoutContext(t, "Bearer "+accessToken, claimsOf(t, accessToken))

	NewLogoutController(mockStore).LogoutHandler(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to logout", decode(t, rec)["error"])
}

func TestLogoutKeepsOtherTokensValid(t *testing.T) {
	token1, err := GetAccessToken(t, testDB, database.TestUserApplicant1.Email, database.TestSeedPassword)
	require.NoError(t, err)
	token2, err := GetAccessToken(t, testDB, database.TestUserCompany1.Email, database.TestSeedPassword)
	require.NoError(t, err)

	store := NewInMemoryBlacklistStore()
	c, rec := logoutContext(t, "Bearer "+token1, claimsOf(t, token1))
	NewLogoutController(store).LogoutHandler(c)
	require.Equal(t, http.StatusOK, rec.Code)

	revoked, err := store.IsBlacklisted(token1)
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsBlacklisted(token2)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestExtractClaims(t *testing.T) {
	expected := &jwt.RegisteredClaims{
		Subject:   "test-user-id",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	c, _ := logoutContext(t, "", expected)

	claims, err := extractClaims(c)
	require.NoError(t, err)
	assert.Equal(t, expected.Subject, claims.Subject)
}

// MockBlacklistStore is a mock implementation of JwtBlacklistStore for testing error scenarios
type MockBlacklistStore struct {
	blacklisted map[string]time.Time
	addError    error
	checkError  error
}

func (m *MockBlacklistStore) IsBlacklisted(jti string) (bool, error) {
	if m.checkError != nil {
		return false, m.checkError
	}
	_, exists := m.blacklisted[jti]
	return exists, nil
}

func (m *MockBlacklistStore) AddToBlacklist(jti string, exp time.Time) error {
	if m.addError != nil {
		return m.addError
	}
	if m.blacklisted == nil {
		m.blacklisted = make(map[string]time.Time)
	}
	m.blacklisted[jti] = exp
	return nil
}
