package dao

import (
	"context"
	"errors"

	"account-service/pkg/core/user/model"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrDuplicateEntry   = errors.New("duplicate user entry")
	ErrDatabaseInternal = errors.New("database internal error")
)

// UserRepository is the CRUD surface over the users table. Lookups that match
// nothing return ErrUserNotFound; mutations that match nothing report 0
// affected rows instead.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
	FindByUsername(ctx context.Context, username string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByUsernameOrEmail(ctx context.Context, keyword string) (model.User, error)
	Create(ctx context.Context, username, hashedPassword, email string) (model.User, error)
	Update(ctx context.Context, id int64, username, hashedPassword, email string) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
	FindPage(ctx context.Context, limit, offset int) ([]model.User, int64, error)
	Ping(ctx context.Context) error
}
