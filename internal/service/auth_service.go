package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kali/internal/auth"
	apperrors "kali/internal/errors"
	"kali/internal/logger"
	"kali/internal/model"
	"kali/internal/repository"
)

// RegisterInput carries the validated fields of a registration request.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
}

// AuthOptions configures registration and login.
type AuthOptions struct {
	TokenTTL time.Duration
	// BootstrapAdminEmail is granted admin at registration. Empty disables it.
	BootstrapAdminEmail string
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (token string, user *model.User, err error)
}

type authService struct {
	userRepo   repository.UserRepository
	hasher     auth.PasswordHasher
	jwtService *auth.JWTService
	opts       AuthOptions
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, hasher auth.PasswordHasher, jwtService *auth.JWTService, opts AuthOptions) AuthService {
	opts.BootstrapAdminEmail = normalizeEmail(opts.BootstrapAdminEmail)
	return &authService{
		userRepo:   userRepo,
		hasher:     hasher,
		jwtService: jwtService,
		opts:       opts,
	}
}

// Register creates a new user with a hashed password.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if in.Password == "" || len(in.Password) > auth.MaxPasswordBytes {
		return nil, apperrors.ErrInvalidPassword
	}

	email := normalizeEmail(in.Email)

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrDuplicateEmail
	}
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     strings.TrimSpace(in.Username),
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		IsAdmin:      s.opts.BootstrapAdminEmail != "" && email == s.opts.BootstrapAdminEmail,
		Bookings:     []string{},
		Reviews:      []string{},
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	logger.InfoContext(ctx, "user registered", "id", user.ID, "admin", user.IsAdmin)
	return user, nil
}

// Login verifies credentials and issues a session token. Unknown emails and
// wrong passwords both yield ErrInvalidCredentials.
func (s *authService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.hasher.BurnVerify(password)
			return "", nil, apperrors.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.jwtService.Issue(auth.Principal{UserID: user.ID, Role: auth.RoleFor(user.IsAdmin)}, s.opts.TokenTTL)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	return token, user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
