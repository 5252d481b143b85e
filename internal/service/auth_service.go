package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"restaurant-pos/internal/core/ports"
	"restaurant-pos/pkg/apperror"
)

// AuthServiceImpl implements ports.AuthService for POS staff.
type AuthServiceImpl struct {
	staffRepo ports.StaffRepository
	hashSvc   ports.HashService
	tokenSvc  ports.TokenService
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	staffRepo ports.StaffRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		staffRepo: staffRepo,
		hashSvc:   hashSvc,
		tokenSvc:  tokenSvc,
	}
}

// Login checks a staff PIN and returns a store-scoped JWT.
func (s *AuthServiceImpl) Login(ctx context.Context, username, pin string) (string, time.Time, error) {
	staff, err := s.staffRepo.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("find staff: %w", err))
	}
	if staff == nil {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	valid, err := s.hashSvc.Verify(pin, staff.PINHash)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("verify pin: %w", err))
	}
	if !valid {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	// Checked after the PIN so inactive accounts are not revealed to guessers.
	if !staff.Active {
		return "", time.Time{}, apperror.ErrStaffInactive()
	}

	token, expiry, err := s.tokenSvc.Generate(staff)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	return token, expiry, nil
}
