package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/solarcare/inverter-service/internal/domain"
)

const resetKeyPrefix = "password-reset:"

// PasswordResetRepository manages password reset token persistence.
type PasswordResetRepository interface {
	Create(ctx context.Context, token *domain.PasswordResetToken) error
	Get(ctx context.Context, token string) (*domain.PasswordResetToken, error)
	Delete(ctx context.Context, token string) error
}

type passwordResetRepository struct {
	client redis.Cmdable
}

// NewPasswordResetRepository stores tokens in Redis; expiry is enforced by key TTL.
func NewPasswordResetRepository(client redis.Cmdable) PasswordResetRepository {
	return &passwordResetRepository{client: client}
}

func (r *passwordResetRepository) Create(ctx context.Context, token *domain.PasswordResetToken) error {
	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		return errors.New("reset token already expired")
	}
	if err := r.client.Set(ctx, resetKeyPrefix+token.Token, token.UserID, ttl).Err(); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}
	return nil
}

func (r *passwordResetRepository) Get(ctx context.Context, tokenStr string) (*domain.PasswordResetToken, error) {
	key := resetKeyPrefix + tokenStr
	userID, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read reset token: %w", err)
	}
	ttl, err := r.client.PTTL(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("read reset token ttl: %w", err)
	}
	if ttl <= 0 {
		return nil, ErrNotFound
	}
	return &domain.PasswordResetToken{
		Token:     tokenStr,
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

func (r *passwordResetRepository) Delete(ctx context.Context, tokenStr string) error {
	if err := r.client.Del(ctx, resetKeyPrefix+tokenStr).Err(); err != nil {
		return fmt.Errorf("delete reset token: %w", err)
	}
	return nil
}
