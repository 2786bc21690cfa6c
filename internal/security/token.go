package security

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
)

// Claims identifies either a customer (CustomerID) or a staff member (Username).
type Claims struct {
	CustomerID int32  `json:"customer_id,omitempty"`
	Username   string `json:"username,omitempty"`
	Role       Role   `json:"role"`
	jwt.RegisteredClaims
}

type TokenManager interface {
	GenerateCustomerToken(customerID int32, phone string) (string, error)
	GenerateStaffToken(username string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type tokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) TokenManager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &tokenManager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (m *tokenManager) GenerateCustomerToken(customerID int32, phone string) (string, error) {
	return m.sign(Claims{
		CustomerID:       customerID,
		Username:         phone,
		Role:             RoleCustomer,
		RegisteredClaims: m.registered(strconv.Itoa(int(customerID))),
	})
}

func (m *tokenManager) GenerateStaffToken(username string) (string, error) {
	return m.sign(Claims{
		Username:         username,
		Role:             RoleStaff,
		RegisteredClaims: m.registered("staff:" + username),
	})
}

func (m *tokenManager) registered(subject string) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    "rental-backend",
		Audience:  jwt.ClaimStrings{"api-access"},
		ID:        uuid.New().String(),
	}
}

func (m *tokenManager) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *tokenManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		if claims.Role != RoleCustomer && claims.Role != RoleStaff {
			return nil, ErrInvalidToken
		}
		return claims, nil
	}

	return nil, ErrInvalidToken
}
