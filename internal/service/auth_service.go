package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"washhub/internal/models"
	"washhub/internal/password"
	"washhub/internal/repository"
)

var (
	// ErrEmailInUse is returned when registering a duplicate email.
	ErrEmailInUse = errors.New("auth: email already registered")
	// ErrInvalidCredentials represents login failure.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
)

// RoleAdmin is assigned to the first user of a freshly registered organization.
const RoleAdmin = "admin"

// UserStore defines the user storage contract used by AuthService.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// OrganizationStore defines the org storage contract used by AuthService.
type OrganizationStore interface {
	Create(ctx context.Context, org *models.Organization) error
}

// AuthService contains registration/login logic.
type AuthService struct {
	users     UserStore
	orgs      OrganizationStore
	hasher    password.Hasher
	tokenizer *TokenService
	logger    *zap.Logger
}

// NewAuthService builds AuthService.
func NewAuthService(users UserStore, orgs OrganizationStore, hasher password.Hasher, tokenizer *TokenService, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:     users,
		orgs:      orgs,
		hasher:    hasher,
		tokenizer: tokenizer,
		logger:    logger,
	}
}

// RegisterInput carries the registration payload: a new organization plus
// its first (admin) user.
type RegisterInput struct {
	OrgName  string
	OrgPhone string
	Email    string
	FullName string
	Password string
}

// Register creates an organization together with its admin user.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.Organization, *models.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.OrgName == "" {
		return nil, nil, errors.New("auth: organization name required")
	}
	if input.Email == "" {
		return nil, nil, errors.New("auth: email required")
	}
	if input.Password == "" {
		return nil, nil, errors.New("auth: password required")
	}

	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, nil, ErrEmailInUse
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, nil, err
	}

	org := &models.Organization{
		Name:     strings.TrimSpace(input.OrgName),
		Phone:    strings.TrimSpace(input.OrgPhone),
		IsActive: true,
	}
	if err := s.orgs.Create(ctx, org); err != nil {
		return nil, nil, err
	}

	user := &models.User{
		OrgID:        org.ID,
		Email:        input.Email,
		FullName:     strings.TrimSpace(input.FullName),
		PasswordHash: hash,
		Role:         RoleAdmin,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	s.logger.Info("organization registered",
		zap.Int64("org_id", org.ID),
		zap.Int64("user_id", user.ID),
	)
	return org, user, nil
}

// Login authenticates a user and issues a JWT carrying its tenant scope.
func (s *AuthService) Login(ctx context.Context, email, pass string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || pass == "" {
		return "", nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !user.IsActive {
		return "", nil, ErrInvalidCredentials
	}

	if err := s.hasher.Compare(user.PasswordHash, pass); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokenizer.GenerateToken(user.ID, user.OrgID, user.BranchID, user.Role)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}
