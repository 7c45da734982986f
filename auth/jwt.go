package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shoplane/shoplane-api/models"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the resolved identity carried by a verified token.
type Claims struct {
	UserID uint
	Role   models.Role
}

// TokenManager signs and verifies the HS256 access tokens. The secret and
// lifetime come from configuration at construction time.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Generate creates a signed token for the given user.
func (tm *TokenManager) Generate(userID uint, role models.Role) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  float64(userID),
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  now.Add(tm.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}

// Validate parses a token string and returns the identity it asserts.
func (tm *TokenManager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	// JSON numbers decode as float64.
	sub, ok := claims["sub"].(float64)
	if !ok || sub <= 0 {
		return nil, ErrInvalidToken
	}
	roleStr, ok := claims["role"].(string)
	if !ok || !models.ValidRole(roleStr) {
		return nil, ErrInvalidToken
	}

	return &Claims{UserID: uint(sub), Role: models.Role(roleStr)}, nil
}
