package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"rental-backend/internal/domain"
	"rental-backend/internal/logger"
	"rental-backend/internal/repository"
	"rental-backend/internal/security"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type authService struct {
	customerRepo repository.CustomerRepository
	tokens       security.TokenManager
	staff        map[string]string // username -> bcrypt hash
	now          func() time.Time
}

func NewAuthService(customerRepo repository.CustomerRepository, tokens security.TokenManager, staff map[string]string) AuthService {
	return &authService{
		customerRepo: customerRepo,
		tokens:       tokens,
		staff:        staff,
		now:          time.Now,
	}
}

func (s *authService) Register(ctx context.Context, name, phone, password, confirm string) (*domain.Customer, string, error) {
	name = strings.TrimSpace(name)
	phone = normalizePhone(phone)

	if name == "" {
		return nil, "", domain.NewValidationError("name", "is required")
	}
	if len(phone) < 8 || len(phone) > 15 {
		return nil, "", domain.NewValidationError("phone", "must be 8 to 15 digits")
	}
	if len(password) < minPasswordLength {
		return nil, "", domain.NewValidationError("password", "must be at least 8 characters")
	}
	if password != confirm {
		return nil, "", domain.NewValidationError("password_confirm", "does not match password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	customer := &domain.Customer{
		Name:         name,
		Phone:        phone,
		PasswordHash: string(hash),
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.GenerateCustomerToken(customer.ID, customer.Phone)
	if err != nil {
		return nil, "", err
	}
	logger.Info("Customer registered", "customer_id", customer.ID)
	return customer, token, nil
}

func (s *authService) Login(ctx context.Context, phone, password string) (*domain.Customer, string, error) {
	customer, err := s.customerRepo.GetByPhone(ctx, normalizePhone(phone))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, "", domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(password)); err != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	now := s.now()
	if err := s.customerRepo.TouchLastLogin(ctx, customer.ID, now); err != nil {
		logger.Warn("Failed to record last login", "customer_id", customer.ID, "error", err)
	} else {
		customer.LastLoginOn = &now
	}

	token, err := s.tokens.GenerateCustomerToken(customer.ID, customer.Phone)
	if err != nil {
		return nil, "", err
	}
	return customer, token, nil
}

func (s *authService) StaffLogin(ctx context.Context, username, password string) (string, error) {
	hash, ok := s.staff[username]
	if !ok {
		return "", domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return "", domain.ErrInvalidCredentials
	}
	logger.Info("Staff logged in", "username", username)
	return s.tokens.GenerateStaffToken(username)
}

// normalizePhone keeps digits only, so "0812-345 678" and "0812345678" match.
func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
