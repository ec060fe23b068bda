package dto

import "github.com/solarcare/inverter-service/internal/domain"

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	FirstName   string `json:"firstName" validate:"required,notblank,max=50"`
	LastName    string `json:"lastName" validate:"required,notblank,max=50"`
	EmailID     string `json:"emailId" validate:"required,email"`
	Address     string `json:"address" validate:"omitempty,max=200"`
	Role        string `json:"role" validate:"omitempty,oneof=CUSTOMER ADMIN TECHNICIAN SUPER_ADMIN"`
	Password    string `json:"password"`
	PhoneNo     string `json:"phoneNo" validate:"omitempty,max=20"`
	DateOfBirth string `json:"dateOfBirth" validate:"omitempty,max=30"`
	State       string `json:"state" validate:"omitempty,max=50"`
	City        string `json:"city" validate:"omitempty,max=50"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordRequest payload for initiating reset.
type ForgotPasswordRequest struct {
	EmailID string `json:"emailId" validate:"required,email"`
}

// ResetPasswordRequest payload for confirming reset.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// RegisterResponse is returned after account creation.
type RegisterResponse struct {
	Success bool   `json:"success" validate:"eq=true"`
	UserID  string `json:"userId" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// LoginData carries the authenticated user and session token.
type LoginData struct {
	User  domain.User `json:"user"`
	Token string      `json:"token" validate:"required"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Success bool      `json:"success" validate:"eq=true"`
	Data    LoginData `json:"data"`
	Message string    `json:"message" validate:"required"`
}
