package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/solarcare/inverter-service/internal/auth"
	"github.com/solarcare/inverter-service/internal/config"
	"github.com/solarcare/inverter-service/internal/domain"
	"github.com/solarcare/inverter-service/internal/events"
	"github.com/solarcare/inverter-service/internal/repository"
	"github.com/solarcare/inverter-service/internal/validation"
	apperrors "github.com/solarcare/inverter-service/pkg/util"
)

// RegisterInput describes a new account.
type RegisterInput struct {
	FirstName   string
	LastName    string
	EmailID     string
	Address     string
	Role        string
	Password    string
	PhoneNo     string
	DateOfBirth string
	State       string
	City        string
}

// AuthService coordinates registration, login and password reset flows.
type AuthService struct {
	users      repository.UserRepository
	resets     repository.PasswordResetRepository
	dispatcher events.Dispatcher
	tokenMgr   *auth.TokenManager
	logger     *zap.Logger
	bcryptCost int
	resetTTL   time.Duration
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo          repository.UserRepository
	PasswordResetRepo repository.PasswordResetRepository
	Dispatcher        events.Dispatcher
	Logger            *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		resets:     deps.PasswordResetRepo,
		dispatcher: deps.Dispatcher,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL()),
		logger:     logger,
		bcryptCost: cfg.Auth.BcryptCost,
		resetTTL:   cfg.Auth.ResetTTL(),
	}
}

// Register creates an account. The password is optional; when given it must meet the policy.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	role := domain.RoleCustomer
	if strings.TrimSpace(input.Role) != "" {
		parsed, ok := domain.ParseRole(input.Role)
		if !ok {
			return nil, apperrors.NewValidationError("validation failed", []string{"role must be one of [CUSTOMER ADMIN TECHNICIAN SUPER_ADMIN]"})
		}
		role = parsed
	}

	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	var blank []string
	if firstName == "" {
		blank = append(blank, "firstName must not be blank")
	}
	if lastName == "" {
		blank = append(blank, "lastName must not be blank")
	}
	if len(blank) > 0 {
		return nil, apperrors.NewValidationError("validation failed", blank)
	}

	var hash string
	if input.Password != "" {
		if err := validation.Password(input.Password); err != nil {
			return nil, err
		}
		hashed, err := auth.HashPassword(input.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		hash = hashed
	}

	// Rows written before email reservations existed have no marker.
	existing, err := s.users.FindByEmail(ctx, input.EmailID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if existing != nil {
		return nil, apperrors.NewConflict("email already exists", nil)
	}

	user := &domain.User{
		EmailID:      input.EmailID,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         role,
		Address:      strings.TrimSpace(input.Address),
		PhoneNo:      input.PhoneNo,
		DateOfBirth:  input.DateOfBirth,
		State:        input.State,
		City:         input.City,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, apperrors.NewConflict("email already exists", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}

	s.logger.Info("user registered", zap.String("userId", user.UserID), zap.String("role", string(user.Role)))
	return user, nil
}

// Login verifies credentials and issues a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *domain.Session, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}
	if user == nil {
		return nil, nil, apperrors.NewUnauthorized("invalid email or password")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, nil, apperrors.NewUnauthorized("invalid email or password")
		}
		return nil, nil, apperrors.NewInternalError(err)
	}

	session, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}
	return user, session, nil
}

// RequestPasswordReset stores a single-use token and announces it for delivery.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*domain.PasswordResetToken, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if user == nil {
		return nil, apperrors.NewNotFoundMessage("no account registered for this email")
	}

	token := &domain.PasswordResetToken{
		Token:     uuid.NewString(),
		UserID:    user.UserID,
		ExpiresAt: time.Now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.NewEvent(events.EventPasswordResetRequested, user.UserID,
			events.PasswordResetRequestedPayload{
				UserID:    user.UserID,
				EmailID:   user.EmailID,
				Name:      user.FullName(),
				Token:     token.Token,
				ExpiresAt: token.ExpiresAt,
			}))
	}
	return token, nil
}

// ConfirmPasswordReset validates the reset token and updates the password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	if err := validation.Password(newPassword); err != nil {
		return err
	}

	token, err := s.resets.Get(ctx, tokenStr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewUnauthorized("invalid or expired reset token")
		}
		return apperrors.NewInternalError(err)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.users.UpdatePassword(ctx, token.UserID, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("user", map[string]any{"userId": token.UserID})
		}
		return apperrors.NewInternalError(err)
	}

	if err := s.resets.Delete(ctx, tokenStr); err != nil {
		s.logger.Warn("reset token not consumed", zap.String("userId", token.UserID), zap.Error(err))
	}
	return nil
}

// EnsureAdmin creates a SUPER_ADMIN account for email unless the email is already registered.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if existing != nil {
		return nil
	}
	_, err = s.Register(ctx, RegisterInput{
		FirstName: "Super",
		LastName:  "Admin",
		EmailID:   email,
		Role:      string(domain.RoleSuperAdmin),
		Password:  password,
	})
	return err
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
