package auth

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	// Load env file into environments.
	_ "github.com/joho/godotenv/autoload"
)

// JwtIssuer is the issuer claim put into every access token and checked by RequireAuth.
const JwtIssuer = "openprofile"

// AccessTokenDuration is how long a standard access token stays valid.
const AccessTokenDuration = 24 * time.Hour

var secretKey = os.Getenv("SECRET_KEY")

// GenerateStandardToken issues an access token for the user that expires after AccessTokenDuration.
func GenerateStandardToken(id uuid.UUID) (string, error) {
	return GenerateTokenWithDuration(id, AccessTokenDuration, JwtIssuer)
}

// GenerateTokenWithDuration issues a signed HS256 token.
func GenerateTokenWithDuration(id uuid.UUID, d time.Duration, issuer string) (string, error) {
	now := time.Now()
	generatedAccessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   id.String(),
		ID:        uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(now.Add(d)),
		IssuedAt:  jwt.NewNumericDate(now),
	})

	signedToken, err := generatedAccessToken.SignedString([]byte(secretKey))
	if err != nil {
		return "", fmt.Errorf("Failed to sign token: %s", err)
	}

	return signedToken, nil
}

// ValidatedToken parses encodeToken into RegisteredClaims and verifies its HMAC signature.
func ValidatedToken(encodeToken string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(encodeToken, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, isvalid := token.Method.(*jwt.SigningMethodHMAC); !isvalid {
			return nil, fmt.Errorf("Invalid token")
		}
		return []byte(secretKey), nil
	})
}
