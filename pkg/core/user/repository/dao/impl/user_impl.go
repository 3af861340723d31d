package dao

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"account-service/pkg/core/user/model"
	"account-service/pkg/core/user/repository/dao"
)

type GormUserRepository struct {
	db *gorm.DB
}

var _ dao.UserRepository = (*GormUserRepository)(nil)

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) table(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.User{})
}

func (r *GormUserRepository) first(ctx context.Context, query string, args ...interface{}) (model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where(query, args...).
		First(&user).
		Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return model.User{}, dao.ErrUserNotFound
	case err != nil:
		return model.User{}, fmt.Errorf("user query failed: %w", wrapGormError(err))
	default:
		return user, nil
	}
}

func (r *GormUserRepository) FindByID(ctx context.Context, id int64) (model.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (model.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *GormUserRepository) FindByUsernameOrEmail(ctx context.Context, keyword string) (model.User, error) {
	return r.first(ctx, "username = ? OR email = ?", keyword, keyword)
}

// Create inserts a user. hashedPassword must already be hashed.
func (r *GormUserRepository) Create(ctx context.Context, username, hashedPassword, email string) (model.User, error) {
	user := model.User{
		Username: username,
		Email:    email,
		Password: hashedPassword,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			if isDuplicateError(err) {
				return dao.ErrDuplicateEntry
			}
			return fmt.Errorf("user creation failed: %w", wrapGormError(err))
		}
		return nil
	})
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}

// Update overwrites every mutable column of row id and reports how many rows
// changed.
func (r *GormUserRepository) Update(ctx context.Context, id int64, username, hashedPassword, email string) (int64, error) {
	result := r.table(ctx).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"username": username,
			"email":    email,
			"password": hashedPassword,
		})
	if result.Error != nil {
		if isDuplicateError(result.Error) {
			return 0, dao.ErrDuplicateEntry
		}
		return 0, fmt.Errorf("user update failed: %w", wrapGormError(result.Error))
	}
	return result.RowsAffected, nil
}

func (r *GormUserRepository) Delete(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.User{})
	if result.Error != nil {
		return 0, fmt.Errorf("user deletion failed: %w", wrapGormError(result.Error))
	}
	return result.RowsAffected, nil
}

// FindPage returns up to limit rows starting at offset, ordered by id, plus
// the row count of the whole table.
func (r *GormUserRepository) FindPage(ctx context.Context, limit, offset int) ([]model.User, int64, error) {
	var total int64
	if err := r.table(ctx).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("user count failed: %w", wrapGormError(err))
	}

	var users []model.User
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&users).
		Error
	if err != nil {
		return nil, 0, fmt.Errorf("user page query failed: %w", wrapGormError(err))
	}
	return users, total, nil
}

func (r *GormUserRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", dao.ErrDatabaseInternal, err)
	}
	return sqlDB.PingContext(ctx)
}

// Error handling utils
func isDuplicateError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func wrapGormError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dao.ErrUserNotFound
	}
	if isDuplicateError(err) {
		return dao.ErrDuplicateEntry
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case 1048, 1044, 1045, 1049, 1146: // Common MySQL operation errors
			return fmt.Errorf("%w: %s", dao.ErrDatabaseInternal, mysqlErr.Message)
		}
	}

	return fmt.Errorf("%w: %v", dao.ErrDatabaseInternal, err)
}
