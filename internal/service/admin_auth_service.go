package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/GTDGit/procure_api/internal/models"
	"github.com/GTDGit/procure_api/internal/utils"
)

// AdminAuthService authenticates back-office operators.
type AdminAuthService struct {
	adminRepo AdminUserStore
	cost      int
}

func NewAdminAuthService(adminRepo AdminUserStore) *AdminAuthService {
	return &AdminAuthService{adminRepo: adminRepo, cost: bcrypt.DefaultCost}
}

// Login checks credentials and returns a signed admin token. Unknown users,
// inactive accounts and wrong passwords all yield ErrInvalidCredentials.
func (s *AdminAuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)

	user, err := s.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		log.Warn().Err(err).Str("email", email).Msg("Login failed: user lookup")
		return "", utils.ErrInvalidCredentials
	}

	if !user.IsActive {
		log.Warn().Str("email", email).Msg("Login failed: account is inactive")
		return "", utils.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Warn().Str("email", email).Msg("Login failed: password mismatch")
		return "", utils.ErrInvalidCredentials
	}

	token, err := utils.GenerateJWT(user.ID, user.Email)
	if err != nil {
		return "", fmt.Errorf("sign admin token: %w", err)
	}

	if err := s.adminRepo.TouchLastLogin(ctx, user.ID); err != nil {
		log.Warn().Err(err).Int("user_id", user.ID).Msg("Failed to record last login")
	}

	log.Info().Str("email", user.Email).Int("user_id", user.ID).Msg("Login successful")
	return token, nil
}

// CreateAdmin hashes the password and stores a new active account.
func (s *AdminAuthService) CreateAdmin(ctx context.Context, email, password, name string) (*models.AdminUser, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}

	user := &models.AdminUser{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hashedPassword),
		Name:         name,
		IsActive:     true,
	}

	if err := s.adminRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// EnsureAdmin creates the bootstrap account on first start. An existing
// account is left untouched, including its password.
func (s *AdminAuthService) EnsureAdmin(ctx context.Context, email, password, name string) (bool, error) {
	_, err := s.adminRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("lookup bootstrap admin: %w", err)
	}

	if _, err := s.CreateAdmin(ctx, email, password, name); err != nil {
		return false, fmt.Errorf("create bootstrap admin: %w", err)
	}
	log.Info().Str("email", email).Msg("Bootstrap admin created")
	return true, nil
}
