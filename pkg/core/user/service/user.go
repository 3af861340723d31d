package service

import (
	"context"
	"errors"
	"math"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	apperrors "account-service/pkg/common/errors"
	"account-service/pkg/core/user/model"
	"account-service/pkg/core/user/repository/dao"
	"account-service/pkg/core/user/validation"
)

type UserService interface {
	Register(ctx context.Context, username, password, email string) (model.User, error)
	Login(ctx context.Context, keyword, password string) (string, error)
	Get(ctx context.Context, id int64) (model.User, error)
	List(ctx context.Context, page, limit int) (Page, error)
	Update(ctx context.Context, id int64, username, password, email string) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type Hasher interface {
	Hash(plain string) (string, error)
	Compare(plain, hashed string) bool
}

type TokenIssuer interface {
	Issue(username, email string) (string, error)
}

// Page is one slice of the users table. Total counts the whole table.
type Page struct {
	Users []model.User
	Total int64
	Page  int
	Limit int
}

type Service struct {
	repo   dao.UserRepository
	hasher Hasher
	tokens TokenIssuer
}

var _ UserService = (*Service)(nil)

func NewUserService(repo dao.UserRepository, hasher Hasher, tokens TokenIssuer) *Service {
	return &Service{repo: repo, hasher: hasher, tokens: tokens}
}

// Register validates the account, rejects taken usernames and emails and
// stores the user with a hashed password. Two concurrent registrations of the
// same name both pass the pre-check; the loser fails on the unique index with
// a persistence error.
func (s *Service) Register(ctx context.Context, username, password, email string) (model.User, error) {
	if err := validation.VerifyAccount(username, email, password); err != nil {
		return model.User{}, err
	}

	if err := s.ensureFree(ctx, s.repo.FindByUsername, username, apperrors.ErrUsernameUsed); err != nil {
		return model.User{}, err
	}
	if err := s.ensureFree(ctx, s.repo.FindByEmail, email, apperrors.ErrEmailUsed); err != nil {
		return model.User{}, err
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return model.User{}, apperrors.Wrap(apperrors.KindUnknown, err)
	}

	user, err := s.repo.Create(ctx, username, hashed, email)
	if err != nil {
		return model.User{}, apperrors.Wrap(apperrors.KindPersistence, err)
	}

	hlog.CtxInfof(ctx, "user registered id=%d username=%s", user.ID, user.Username)
	return user, nil
}

func (s *Service) ensureFree(ctx context.Context, find func(context.Context, string) (model.User, error), value string, taken error) error {
	_, err := find(ctx, value)
	switch {
	case err == nil:
		return taken
	case errors.Is(err, dao.ErrUserNotFound):
		return nil
	default:
		return apperrors.Wrap(apperrors.KindPersistence, err)
	}
}

// Login accepts either username or email as keyword and returns a signed
// token. Unknown users and bad passwords fail identically.
func (s *Service) Login(ctx context.Context, keyword, password string) (string, error) {
	user, err := s.repo.FindByUsernameOrEmail(ctx, keyword)
	if errors.Is(err, dao.ErrUserNotFound) {
		return "", apperrors.ErrWrongCredentials
	}
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindPersistence, err)
	}

	if !s.hasher.Compare(password, user.Password) {
		hlog.CtxDebugf(ctx, "password mismatch for user id=%d", user.ID)
		return "", apperrors.ErrWrongCredentials
	}

	token, err := s.tokens.Issue(user.Username, user.Email)
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindUnknown, err)
	}
	return token, nil
}

func (s *Service) Get(ctx context.Context, id int64) (model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, dao.ErrUserNotFound) {
		return model.User{}, apperrors.New(apperrors.KindNotFound, apperrors.MsgUserNotFound)
	}
	if err != nil {
		return model.User{}, apperrors.Wrap(apperrors.KindPersistence, err)
	}
	return user, nil
}

// List expects page and limit to be positive. A page beyond the addressable
// range reads from the largest offset and so comes back empty.
func (s *Service) List(ctx context.Context, page, limit int) (Page, error) {
	offset := math.MaxInt
	if page-1 <= math.MaxInt/limit {
		offset = (page - 1) * limit
	}
	users, total, err := s.repo.FindPage(ctx, limit, offset)
	if err != nil {
		return Page{}, apperrors.Wrap(apperrors.KindPersistence, err)
	}
	return Page{Users: users, Total: total, Page: page, Limit: limit}, nil
}

// Update replaces all fields of user id and returns the affected row count.
// Unlike Register it does not pre-check for taken names.
func (s *Service) Update(ctx context.Context, id int64, username, password, email string) (int64, error) {
	if err := validation.VerifyAccount(username, email, password); err != nil {
		return 0, err
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.KindUnknown, err)
	}

	affected, err := s.repo.Update(ctx, id, username, hashed, email)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.KindPersistence, err)
	}
	if affected == 0 {
		return 0, apperrors.New(apperrors.KindNotFound, apperrors.MsgUpdateTargetMissing)
	}
	return affected, nil
}

func (s *Service) Delete(ctx context.Context, id int64) (int64, error) {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.KindPersistence, err)
	}
	if affected == 0 {
		return 0, apperrors.New(apperrors.KindNotFound, apperrors.MsgDeleteNotPerformed)
	}
	hlog.CtxInfof(ctx, "user deleted id=%d", id)
	return affected, nil
}
