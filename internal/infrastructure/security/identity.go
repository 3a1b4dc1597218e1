// Package security provides identity generation and sysop token utilities.
package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"
)

// NewVisitorID generates a visitor identifier. ULIDs sort by creation time,
// which keeps store scans and log lines readable.
func NewVisitorID() string {
	return ulid.Make().String()
}

// NewSessionID generates a per-visit session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// HashPassword produces a bcrypt hash for the sysop password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword verifies a password against its bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateSysopToken issues an HS256 token for the sysop dashboard.
func GenerateSysopToken(jwtSecret string, ttl time.Duration) (string, error) {
	if jwtSecret == "" {
		return "", errors.New("JWT secret not configured")
	}

	claims := jwt.MapClaims{
		"role": "sysop",
		"iat":  time.Now().UTC().Unix(),
		"exp":  time.Now().UTC().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

// ValidateSysopToken parses and validates a sysop token.
func ValidateSysopToken(tokenString, jwtSecret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if role, _ := claims["role"].(string); role != "sysop" {
		return nil, errors.New("invalid token role")
	}
	return claims, nil
}
