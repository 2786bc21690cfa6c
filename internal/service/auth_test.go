package service

import (
	"context"
	"testing"
	"time"

	"rental-backend/internal/domain"
	"rental-backend/internal/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuth(t *testing.T, store *memStore) (AuthService, security.TokenManager) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("staffpass"), bcrypt.MinCost)
	require.NoError(t, err)
	tokens := security.NewTokenManager("test-secret", time.Hour)
	return NewAuthService(store.Repos().Customers, tokens, map[string]string{"admin": string(hash)}), tokens
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	store := newMemStore()
	svc, tokens := newTestAuth(t, store)
	ctx := context.Background()

	customer, token, err := svc.Register(ctx, "Budi", "0812-3456-789", "rahasia123", "rahasia123")
	require.NoError(t, err)
	assert.Equal(t, "08123456789", customer.Phone)
	assert.NotEqual(t, "rahasia123", customer.PasswordHash)

	claims, err := tokens.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, claims.CustomerID)
	assert.Equal(t, security.RoleCustomer, claims.Role)

	t.Run("duplicate phone", func(t *testing.T) {
		_, _, err := svc.Register(ctx, "Budi 2", "08123456789", "rahasia123", "rahasia123")
		assert.ErrorIs(t, err, domain.ErrPhoneTaken)
	})

	t.Run("login", func(t *testing.T) {
		got, token, err := svc.Login(ctx, "08123456789", "rahasia123")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		require.NotNil(t, got.LastLoginOn)
		assert.NotNil(t, store.customers[customer.ID].LastLoginOn)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "08123456789", "salah")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("unknown phone", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "0899999999", "rahasia123")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}

func TestAuthService_RegisterValidation(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestAuth(t, store)
	ctx := context.Background()

	tests := []struct {
		name, fullName, phone, password, confirm, field string
	}{
		{"no name", "", "08123456789", "rahasia123", "rahasia123", "name"},
		{"short phone", "Budi", "0812", "rahasia123", "rahasia123", "phone"},
		{"short password", "Budi", "08123456789", "pendek", "pendek", "password"},
		{"mismatch", "Budi", "08123456789", "rahasia123", "rahasia124", "password_confirm"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(ctx, tt.fullName, tt.phone, tt.password, tt.confirm)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
	assert.Empty(t, store.customers)
}

func TestAuthService_StaffLogin(t *testing.T) {
	svc, tokens := newTestAuth(t, newMemStore())
	ctx := context.Background()

	token, err := svc.StaffLogin(ctx, "admin", "staffpass")
	require.NoError(t, err)
	claims, err := tokens.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, security.RoleStaff, claims.Role)
	assert.Equal(t, "admin", claims.Username)

	_, err = svc.StaffLogin(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.StaffLogin(ctx, "ghost", "staffpass")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}
