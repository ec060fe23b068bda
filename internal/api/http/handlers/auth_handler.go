package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/solarcare/inverter-service/internal/api/dto"
	"github.com/solarcare/inverter-service/internal/config"
	"github.com/solarcare/inverter-service/internal/domain"
	"github.com/solarcare/inverter-service/internal/service"
)

// AuthHandler exposes registration, session and password reset endpoints.
type AuthHandler struct {
	auth   *service.AuthService
	cookie config.AuthConfig
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cfg config.AuthConfig) *AuthHandler {
	return &AuthHandler{auth: authService, cookie: cfg}
}

// Register handles POST /api/auth/register. The route runs behind AuthMiddleware.Optional.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	// Self-service sign-up creates customers; staff roles are granted by an admin session.
	if req.Role != "" && domain.UserRole(req.Role) != domain.RoleCustomer {
		if err := requireRoleGrant(c); err != nil {
			return err
		}
	}

	user, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		EmailID:     req.EmailID,
		Address:     req.Address,
		Role:        req.Role,
		Password:    req.Password,
		PhoneNo:     req.PhoneNo,
		DateOfBirth: req.DateOfBirth,
		State:       req.State,
		City:        req.City,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, dto.RegisterResponse{
		Success: true,
		UserID:  user.UserID,
		Message: "User registered successfully",
	})
}

// Login handles POST /api/auth/login. Only the body is read; an existing cookie is ignored.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, session, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.CookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.cookie.CookieSecure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	return respond(c, http.StatusOK, dto.LoginResponse{
		Success: true,
		Data:    dto.LoginData{User: *user, Token: session.Token},
		Message: "Login successful",
	})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.cookie.CookieSecure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	return respond(c, http.StatusOK, dto.MessageResponse{Success: true, Message: "Logged out successfully"})
}

// ForgotPassword handles POST /api/auth/forgot-password.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if _, err := h.auth.RequestPasswordReset(c.UserContext(), req.EmailID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.MessageResponse{Success: true, Message: "Password reset email sent"})
}

// ResetPassword handles PUT /api/auth/forgot-password.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.auth.ConfirmPasswordReset(c.UserContext(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.MessageResponse{Success: true, Message: "Password updated successfully"})
}
