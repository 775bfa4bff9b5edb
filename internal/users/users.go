// Package users manages register operators and PIN login.
package users

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/dshills/posengine/internal/storage"
	"github.com/dshills/posengine/pkg/types"
)

const (
	minPINLength = 4
	maxPINLength = 8
)

// HashPIN returns the bcrypt hash stored for a PIN.
func HashPIN(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash PIN: %w", err)
	}
	return string(hash), nil
}

// ValidatePIN accepts 4 to 8 digits.
func ValidatePIN(pin string) error {
	if len(pin) < minPINLength || len(pin) > maxPINLength {
		return fmt.Errorf("%w: PIN must be %d to %d digits", types.ErrValidation, minPINLength, maxPINLength)
	}
	for _, r := range pin {
		if !unicode.IsDigit(r) {
			return fmt.Errorf("%w: PIN must contain digits only", types.ErrValidation)
		}
	}
	return nil
}

// Service creates users and checks PINs.
type Service struct {
	storage storage.Storage
	log     logrus.FieldLogger
	now     func() time.Time
}

// NewService creates a user service
func NewService(store storage.Storage, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{storage: store, log: log.WithField("component", "users"), now: time.Now}
}

// CreateUser adds an operator with a hashed PIN.
func (s *Service) CreateUser(ctx context.Context, displayName, pin string, role types.UserRole, active bool) (*types.User, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, fmt.Errorf("%w: display name is required", types.ErrValidation)
	}
	role, err := types.ParseUserRole(string(role))
	if err != nil {
		return nil, err
	}
	if err := ValidatePIN(pin); err != nil {
		return nil, err
	}
	hash, err := HashPIN(pin)
	if err != nil {
		return nil, err
	}

	user := &types.User{
		ID:          uuid.NewString(),
		DisplayName: displayName,
		PinHash:     hash,
		Role:        role,
		IsActive:    active,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.storage.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "role": role}).Info("user created")
	return user, nil
}

// ListUsers returns operators ordered by display name.
func (s *Service) ListUsers(ctx context.Context, activeOnly bool) ([]*types.User, error) {
	return s.storage.ListUsers(ctx, activeOnly)
}

// Authenticate returns the active user whose PIN matches, or types.ErrInvalidPIN.
func (s *Service) Authenticate(ctx context.Context, pin string) (*types.User, error) {
	if ValidatePIN(pin) != nil {
		return nil, types.ErrInvalidPIN
	}
	users, err := s.storage.ListUsers(ctx, true)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if bcrypt.CompareHashAndPassword([]byte(u.PinHash), []byte(pin)) == nil {
			s.log.WithField("user_id", u.ID).Info("user signed in")
			return u, nil
		}
	}
	s.log.Debug("PIN did not match any active user")
	return nil, types.ErrInvalidPIN
}
