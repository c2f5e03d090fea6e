package domain

//go:generate mockgen -destination=../../mocks/mock_user_repository.go -package=mocks github.com/ivasibi/ascent/internal/auth/domain UserRepository

import (
	"context"
	"time"
)

type UserRepository interface {
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user *User) error
	UpdateLastLogin(ctx context.Context, id int64, lastLogin time.Time) error
}
