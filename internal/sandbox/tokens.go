package sandbox

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/example/dayof/internal/clock"
)

// Claims is the data carried in a sandbox bearer token.
type Claims struct {
	VendorID string `json:"vendor_id"`
	jwt.RegisteredClaims
}

// TokenManager signs and validates HS256 bearer tokens.
type TokenManager struct {
	secretKey []byte
	ttl       time.Duration
	clock     clock.Clock
}

// NewTokenManager creates a manager issuing tokens valid for ttl.
func NewTokenManager(secret string, ttl time.Duration, clk clock.Clock) *TokenManager {
	return &TokenManager{secretKey: []byte(secret), ttl: ttl, clock: clk}
}

// GenerateToken creates a token for vendorID.
func (tm *TokenManager) GenerateToken(vendorID string) (string, error) {
	now := tm.clock.Now()
	claims := &Claims{
		VendorID: vendorID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   vendorID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secretKey)
}

// ValidateToken parses and validates the token string.
func (tm *TokenManager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secretKey, nil
	}, jwt.WithTimeFunc(tm.clock.Now))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
