package auth

import (
	"errors"
	"fmt"
	"time"

	"restaurant-catalog/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of an access token.
type Claims struct {
	Role         string `json:"role"`
	AdminID      *uint  `json:"admin_id,omitempty"`
	RestaurantID *uint  `json:"restaurant_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 access tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is how long issued tokens stay valid.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token for p.
func (m *TokenManager) Issue(p Principal) (string, error) {
	now := m.now()
	claims := Claims{
		Role: p.Role(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.LoginSubject(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	switch v := p.(type) {
	case AdminPrincipal:
		id := v.AdminID
		claims.AdminID = &id
	case RestaurantPrincipal:
		id := v.RestaurantID
		claims.RestaurantID = &id
	default:
		return "", errors.New("unsupported principal")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies tokenString and rebuilds the principal it was issued for.
// Every failure is reported as ErrInvalidToken without the cause.
func (m *TokenManager) Decode(tokenString string) (Principal, error) {
	if tokenString == "" {
		return nil, apperror.ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, apperror.ErrInvalidToken
	}

	switch claims.Role {
	case RoleAdmin:
		if claims.AdminID == nil {
			return nil, apperror.ErrInvalidToken
		}
		return AdminPrincipal{AdminID: *claims.AdminID, Subject: claims.Subject}, nil
	case RoleRestaurant:
		if claims.RestaurantID == nil {
			return nil, apperror.ErrInvalidToken
		}
		return RestaurantPrincipal{RestaurantID: *claims.RestaurantID, Subject: claims.Subject}, nil
	default:
		return nil, apperror.ErrInvalidToken
	}
}
