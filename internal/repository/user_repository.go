package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/solarcare/inverter-service/internal/domain"
	"github.com/solarcare/inverter-service/internal/persistence"
	"github.com/solarcare/inverter-service/internal/validation"
)

// UserUpdate lists the mutable profile attributes. Nil fields are left untouched.
type UserUpdate struct {
	FirstName   *string
	LastName    *string
	Role        *domain.UserRole
	Address     *string
	PhoneNo     *string
	DateOfBirth *string
	State       *string
	City        *string
}

// Empty reports whether no attribute would be written.
func (u UserUpdate) Empty() bool {
	return len(u.attributes()) == 0
}

func (u UserUpdate) attributes() map[string]any {
	set := map[string]any{}
	setIf(set, "firstName", u.FirstName)
	setIf(set, "lastName", u.LastName)
	setIf(set, "role", u.Role)
	setIf(set, "address", u.Address)
	setIf(set, "phoneNo", u.PhoneNo)
	setIf(set, "dateOfBirth", u.DateOfBirth)
	setIf(set, "state", u.State)
	setIf(set, "city", u.City)
	return set
}

// UserRepository defines persistence access for customers and staff.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	ListByRole(ctx context.Context, role domain.UserRole) ([]domain.User, error)
	UpdateByID(ctx context.Context, id string, update UserUpdate) (*domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	DeleteByID(ctx context.Context, id string) (*domain.User, error)
}

type userRepository struct {
	store  persistence.Store
	logger *zap.Logger
}

// NewUserRepository returns a store-backed implementation.
func NewUserRepository(store persistence.Store, logger *zap.Logger) UserRepository {
	return &userRepository{store: store, logger: logger}
}

// Create assigns a fresh userId and timestamps, reserves the email and writes the profile.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	user.UserID = uuid.NewString()
	user.EmailID = normalizeEmail(user.EmailID)
	if user.Role == "" {
		user.Role = domain.RoleCustomer
	}
	ts := timestamp()
	user.CreatedAt = ts
	user.UpdatedAt = ts

	marker := markerItem(emailKey(user.EmailID), map[string]string{"userId": user.UserID})
	if err := r.store.PutIfAbsent(ctx, marker); err != nil {
		if errors.Is(err, persistence.ErrConditionFailed) {
			return ErrEmailExists
		}
		return fmt.Errorf("reserve email: %w", err)
	}

	item, err := toItem(userKey(user.UserID), user)
	if err == nil {
		err = r.store.PutIfAbsent(ctx, item)
	}
	if err != nil {
		r.releaseEmail(ctx, user.EmailID, user.UserID)
		if errors.Is(err, persistence.ErrConditionFailed) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// FindByEmail returns the first valid profile with the email, or nil when there is none.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	items, err := r.store.Scan(ctx, persistence.ScanFilter{
		PKPrefix: userPrefix,
		SK:       userSort,
		Equals:   map[string]string{"emailId": normalizeEmail(email)},
	})
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	for _, item := range items {
		if user, ok := r.decode(item); ok {
			return user, nil
		}
	}
	return nil, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	item, err := r.store.Get(ctx, userKey(id))
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	user, ok := r.decode(item)
	if !ok {
		return nil, ErrNotFound
	}
	return user, nil
}

// ListByRole returns every valid profile with the role. Invalid records are logged and skipped.
func (r *userRepository) ListByRole(ctx context.Context, role domain.UserRole) ([]domain.User, error) {
	items, err := r.store.Scan(ctx, persistence.ScanFilter{
		PKPrefix: userPrefix,
		SK:       userSort,
		Equals:   map[string]string{"role": string(role)},
	})
	if err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	users := make([]domain.User, 0, len(items))
	for _, item := range items {
		if user, ok := r.decode(item); ok {
			users = append(users, *user)
		}
	}
	return users, nil
}

func (r *userRepository) UpdateByID(ctx context.Context, id string, update UserUpdate) (*domain.User, error) {
	set := update.attributes()
	set["updatedAt"] = timestamp()
	item, err := r.store.Update(ctx, userKey(id), set, persistence.Guard{MustExist: true})
	if err != nil {
		if errors.Is(err, persistence.ErrConditionFailed) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update user %s: %w", id, err)
	}
	var user domain.User
	if err := fromItem(item, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	set := map[string]any{
		"passwordHash": passwordHash,
		"updatedAt":    timestamp(),
	}
	if _, err := r.store.Update(ctx, userKey(id), set, persistence.Guard{MustExist: true}); err != nil {
		if errors.Is(err, persistence.ErrConditionFailed) {
			return ErrNotFound
		}
		return fmt.Errorf("update password for %s: %w", id, err)
	}
	return nil
}

// DeleteByID removes the profile and its email reservation, returning the removed profile.
func (r *userRepository) DeleteByID(ctx context.Context, id string) (*domain.User, error) {
	item, err := r.store.Delete(ctx, userKey(id), persistence.Guard{
		Equals: map[string]string{"userId": id},
	})
	if err != nil {
		if errors.Is(err, persistence.ErrConditionFailed) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("delete user %s: %w", id, err)
	}
	if item == nil {
		return nil, ErrNotFound
	}

	var user domain.User
	if err := fromItem(item, &user); err != nil {
		return nil, err
	}
	r.releaseEmail(ctx, user.EmailID, id)
	return &user, nil
}

func (r *userRepository) releaseEmail(ctx context.Context, email, userID string) {
	if email == "" {
		return
	}
	_, err := r.store.Delete(ctx, emailKey(email), persistence.Guard{
		Equals: map[string]string{"userId": userID},
	})
	if err != nil && !errors.Is(err, persistence.ErrConditionFailed) {
		r.logger.Warn("release email reservation failed",
			zap.String("userId", userID),
			zap.Error(err))
	}
}

func (r *userRepository) decode(item persistence.Item) (*domain.User, bool) {
	var user domain.User
	if err := fromItem(item, &user); err != nil {
		r.logger.Warn("skipping unreadable user record", zap.Error(err))
		return nil, false
	}
	if violations := validation.Check(user); len(violations) > 0 {
		pk, _ := persistence.StringAttr(item, persistence.AttrPK)
		r.logger.Warn("skipping invalid user record",
			zap.String("pk", pk),
			zap.String("violations", strings.Join(violations, "; ")))
		return nil, false
	}
	return &user, true
}
