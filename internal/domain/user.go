package domain

import "strings"

// UserRole enumerates account roles.
type UserRole string

const (
	RoleCustomer   UserRole = "CUSTOMER"
	RoleAdmin      UserRole = "ADMIN"
	RoleTechnician UserRole = "TECHNICIAN"
	RoleSuperAdmin UserRole = "SUPER_ADMIN"
)

// Roles lists every valid role.
var Roles = []UserRole{RoleCustomer, RoleAdmin, RoleTechnician, RoleSuperAdmin}

// ParseRole returns the role matching s, ignoring case and surrounding space.
func ParseRole(s string) (UserRole, bool) {
	candidate := UserRole(strings.ToUpper(strings.TrimSpace(s)))
	for _, role := range Roles {
		if role == candidate {
			return role, true
		}
	}
	return "", false
}

// IsAdmin reports whether the role may manage other accounts and assign roles.
func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// User is the stored profile for customers and staff alike.
type User struct {
	UserID       string   `json:"userId" dynamodbav:"userId" validate:"required"`
	EmailID      string   `json:"emailId" dynamodbav:"emailId" validate:"required,email"`
	PasswordHash string   `json:"-" dynamodbav:"passwordHash,omitempty"`
	FirstName    string   `json:"firstName" dynamodbav:"firstName" validate:"required"`
	LastName     string   `json:"lastName" dynamodbav:"lastName" validate:"required"`
	Role         UserRole `json:"role" dynamodbav:"role" validate:"required,oneof=CUSTOMER ADMIN TECHNICIAN SUPER_ADMIN"`
	Address      string   `json:"address" dynamodbav:"address"`
	PhoneNo      string   `json:"phoneNo,omitempty" dynamodbav:"phoneNo,omitempty"`
	DateOfBirth  string   `json:"dateOfBirth,omitempty" dynamodbav:"dateOfBirth,omitempty"`
	State        string   `json:"state,omitempty" dynamodbav:"state,omitempty"`
	City         string   `json:"city,omitempty" dynamodbav:"city,omitempty"`
	CreatedAt    string   `json:"createdAt" dynamodbav:"createdAt" validate:"required,numeric"`
	UpdatedAt    string   `json:"updatedAt" dynamodbav:"updatedAt" validate:"required,numeric"`
}

// FullName joins first and last names.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
