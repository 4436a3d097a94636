package utils

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	adminAudience   = "procure-admin"
	sessionAudience = "procure-session"
	adminTokenTTL   = 24 * time.Hour
)

var (
	jwtMu     sync.RWMutex
	jwtSecret []byte
)

// SetJWTSecret configures the signing key for admin and session tokens.
func SetJWTSecret(secret string) {
	jwtMu.Lock()
	defer jwtMu.Unlock()
	jwtSecret = []byte(secret)
}

func secret() ([]byte, error) {
	jwtMu.RLock()
	defer jwtMu.RUnlock()
	if len(jwtSecret) == 0 {
		return nil, errors.New("jwt secret not configured")
	}
	return jwtSecret, nil
}

// AdminClaims identifies an authenticated admin user.
type AdminClaims struct {
	UserID int    `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// SessionClaims identifies a procurement session held by a buyer.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// GenerateJWT issues an admin token valid for 24 hours.
func GenerateJWT(userID int, email string) (string, error) {
	now := time.Now()
	claims := AdminClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userID),
			Audience:  jwt.ClaimStrings{adminAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(adminTokenTTL)),
		},
	}
	return sign(claims)
}

// ValidateJWT parses and validates an admin token.
func ValidateJWT(token string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	if err := parse(token, claims, adminAudience); err != nil {
		return nil, err
	}
	return claims, nil
}

// GenerateSessionToken issues a token bound to a procurement session.
func GenerateSessionToken(sessionID string, expiresAt time.Time) (string, error) {
	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			Audience:  jwt.ClaimStrings{sessionAudience},
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	return sign(claims)
}

// ValidateSessionToken returns the session id carried by a session token.
func ValidateSessionToken(token string) (string, error) {
	claims := &SessionClaims{}
	if err := parse(token, claims, sessionAudience); err != nil {
		return "", err
	}
	if claims.SessionID == "" {
		return "", ErrInvalidToken
	}
	return claims.SessionID, nil
}

func sign(claims jwt.Claims) (string, error) {
	key, err := secret()
	if err != nil {
		return "", err
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

func parse(token string, claims jwt.Claims, audience string) error {
	key, err := secret()
	if err != nil {
		return err
	}
	_, err = jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return nil
}
