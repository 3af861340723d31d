package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "account-service/pkg/common/errors"
	"account-service/pkg/core/auth"
	"account-service/pkg/core/user/model"
	"account-service/pkg/core/user/repository/dao"
)

// memRepo is an in-memory dao.UserRepository.
type memRepo struct {
	nextID int64
	users  map[int64]model.User
	err    error
}

func newMemRepo() *memRepo {
	return &memRepo{users: map[int64]model.User{}}
}

func (r *memRepo) find(match func(model.User) bool) (model.User, error) {
	if r.err != nil {
		return model.User{}, r.err
	}
	for _, u := range r.users {
		if match(u) {
			return u, nil
		}
	}
	return model.User{}, dao.ErrUserNotFound
}

func (r *memRepo) FindByID(_ context.Context, id int64) (model.User, error) {
	return r.find(func(u model.User) bool { return u.ID == id })
}

func (r *memRepo) FindByUsername(_ context.Context, username string) (model.User, error) {
	return r.find(func(u model.User) bool { return u.Username == username })
}

func (r *memRepo) FindByEmail(_ context.Context, email string) (model.User, error) {
	return r.find(func(u model.User) bool { return u.Email == email })
}

func (r *memRepo) FindByUsernameOrEmail(_ context.Context, keyword string) (model.User, error) {
	return r.find(func(u model.User) bool { return u.Username == keyword || u.Email == keyword })
}

func (r *memRepo) Create(_ context.Context, username, hashedPassword, email string) (model.User, error) {
	if r.err != nil {
		return model.User{}, r.err
	}
	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			return model.User{}, dao.ErrDuplicateEntry
		}
	}
	r.nextID++
	u := model.User{ID: r.nextID, Username: username, Email: email, Password: hashedPassword, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	r.users[u.ID] = u
	return u, nil
}

func (r *memRepo) Update(_ context.Context, id int64, username, hashedPassword, email string) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return 0, nil
	}
	u.Username, u.Password, u.Email = username, hashedPassword, email
	r.users[id] = u
	return 1, nil
}

func (r *memRepo) Delete(_ context.Context, id int64) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	if _, ok := r.users[id]; !ok {
		return 0, nil
	}
	delete(r.users, id)
	return 1, nil
}

func (r *memRepo) FindPage(_ context.Context, limit, offset int) ([]model.User, int64, error) {
	if r.err != nil {
		return nil, 0, r.err
	}
	all := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if offset > len(all) {
		offset = len(all)
	}
	end := len(all)
	if limit < end-offset {
		end = offset + limit
	}
	return all[offset:end], int64(len(all)), nil
}

func (r *memRepo) Ping(context.Context) error { return r.err }

func newService(t *testing.T) (*Service, *memRepo, *auth.TokenService) {
	t.Helper()
	repo := newMemRepo()
	tokens, err := auth.NewTokenService("secret", "HS256", time.Hour)
	require.NoError(t, err)
	return NewUserService(repo, auth.NewPasswordHasher(bcrypt.MinCost), tokens), repo, tokens
}

func assertKind(t *testing.T, err error, kind apperrors.Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperrors.KindOf(err))
	assert.Equal(t, msg, apperrors.PublicMessage(err))
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, repo, tokens := newService(t)

	user, err := svc.Register(ctx, "alice", "Abcdef12", "alice@example.com")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "Abcdef12", repo.users[user.ID].Password)

	for _, keyword := range []string{"alice", "alice@example.com"} {
		token, err := svc.Login(ctx, keyword, "Abcdef12")
		require.NoError(t, err, keyword)

		claims, err := tokens.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Username)
		assert.Equal(t, "alice@example.com", claims.Email)
	}
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newService(t)

	_, err := svc.Register(ctx, "alice", "Abcdef12", "alice@example.com")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice", "Wrong123")
	assertKind(t, err, apperrors.KindInvalidCredentials, "Wrong credentials")

	_, err = svc.Login(ctx, "nobody", "Abcdef12")
	assertKind(t, err, apperrors.KindInvalidCredentials, "Wrong credentials")

	repo.err = errors.New("connection reset")
	_, err = svc.Login(ctx, "alice", "Abcdef12")
	assertKind(t, err, apperrors.KindPersistence, apperrors.MsgServerError)
}

func TestRegisterDuplicates(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	_, err := svc.Register(ctx, "alice", "Abcdef12", "alice@example.com")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "Abcdef12", "other@example.com")
	assertKind(t, err, apperrors.KindDuplicateValue, "Username is already used!")

	_, err = svc.Register(ctx, "bob", "Abcdef12", "alice@example.com")
	assertKind(t, err, apperrors.KindDuplicateValue, "Email is already used!")
}

func TestRegisterValidation(t *testing.T) {
	svc, repo, _ := newService(t)

	_, err := svc.Register(context.Background(), "alice", "abc", "alice@example.com")
	assertKind(t, err, apperrors.KindInvalidInput, "Your password must be at least 8 characters")
	assert.Empty(t, repo.users)
}

func TestRegisterStoreFailure(t *testing.T) {
	svc, repo, _ := newService(t)
	repo.err = errors.New("disk full")

	_, err := svc.Register(context.Background(), "alice", "Abcdef12", "alice@example.com")
	assertKind(t, err, apperrors.KindPersistence, apperrors.MsgServerError)
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	created, err := svc.Register(ctx, "alice", "Abcdef12", "alice@example.com")
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = svc.Get(ctx, created.ID+1)
	assertKind(t, err, apperrors.KindNotFound, "User does not exist")
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newService(t)

	created, err := svc.Register(ctx, "alice", "Abcdef12", "alice@example.com")
	require.NoError(t, err)

	affected, err := svc.Update(ctx, created.ID, "alice2", "Newpass99", "alice2@example.com")
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)
	assert.NotEqual(t, "Newpass99", repo.users[created.ID].Password)

	_, err = svc.Login(ctx, "alice2", "Newpass99")
	assert.NoError(t, err)

	_, err = svc.Update(ctx, 999, "carol", "Abcdef12", "carol@example.com")
	assertKind(t, err, apperrors.KindNotFound, "User does not exist.")

	_, err = svc.Update(ctx, created.ID, "bad name", "Abcdef12", "carol@example.com")
	assertKind(t, err, apperrors.KindInvalidInput, "Username must contain only letters, numbers, dots and underscore")
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	created, err := svc.Register(ctx, "alice", "Abcdef12", "alice@example.com")
	require.NoError(t, err)

	affected, err := svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	_, err = svc.Delete(ctx, created.ID)
	assertKind(t, err, apperrors.KindNotFound, "Registry deletion was not performed")
}

func TestList(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newService(t)

	for _, name := range []string{"a1", "b2", "c3", "d4", "e5", "f6", "g7"} {
		_, err := svc.Register(ctx, name, "Abcdef12", name+"@example.com")
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, 2, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 7, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.Limit)
	require.Len(t, page.Users, 3)
	assert.Equal(t, "d4", page.Users[0].Username)

	page, err = svc.List(ctx, math.MaxInt, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 7, page.Total)
	assert.Equal(t, math.MaxInt, page.Page)
	assert.Empty(t, page.Users)

	page, err = svc.List(ctx, 3, math.MaxInt)
	require.NoError(t, err)
	assert.Empty(t, page.Users)

	page, err = svc.List(ctx, 1, math.MaxInt)
	require.NoError(t, err)
	assert.Len(t, page.Users, 7)

	repo.err = errors.New("timeout")
	_, err = svc.List(ctx, 1, 5)
	assertKind(t, err, apperrors.KindPersistence, apperrors.MsgServerError)
}
