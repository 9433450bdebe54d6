package user_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/DELTAJoSch/Horus/internal/application/user"
	"github.com/DELTAJoSch/Horus/internal/domain"
	domerrors "github.com/DELTAJoSch/Horus/internal/domain/errors"
)

type MockRepo struct{ mock.Mock }

func (m *MockRepo) List(ctx context.Context, batchSize, pageOffset int) ([]domain.User, error) {
	args := m.Called(ctx, batchSize, pageOffset)
	var users []domain.User
	if v := args.Get(0); v != nil {
		users = v.([]domain.User)
	}
	return users, args.Error(1)
}

func (m *MockRepo) Search(ctx context.Context, batchSize, pageOffset int, c domain.Criteria) ([]domain.User, error) {
	args := m.Called(ctx, batchSize, pageOffset, c)
	var users []domain.User
	if v := args.Get(0); v != nil {
		users = v.([]domain.User)
	}
	return users, args.Error(1)
}

func (m *MockRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockRepo) GetOne(ctx context.Context, c domain.Criteria) (domain.User, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockRepo) Create(ctx context.Context, u domain.User) (string, error) {
	args := m.Called(ctx, u)
	return args.String(0), args.Error(1)
}

func (m *MockRepo) Update(ctx context.Context, id string, u domain.User) error {
	return m.Called(ctx, id, u).Error(0)
}

func (m *MockRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepo) CountMatching(ctx context.Context, c domain.Criteria) (int64, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(int64), args.Error(1)
}

// fakeHasher derives digests as plaintext|salt and hands out numbered
// salts, so tests can predict stored credentials.
type fakeHasher struct{ saltSeq int }

func (f *fakeHasher) GenerateSalt() (string, error) {
	f.saltSeq++
	return fmt.Sprintf("salt-%d", f.saltSeq), nil
}

func (f *fakeHasher) Hash(password, salt string) (string, error) {
	if salt == "" {
		return "", fmt.Errorf("malformed salt")
	}
	return password + "|" + salt, nil
}

func newService(repo *MockRepo) (*user.Service, *fakeHasher) {
	hasher := &fakeHasher{}
	return user.NewService(repo, hasher, zerolog.Nop()), hasher
}

func admin(name string) domain.User {
	u := domain.NewUser(name, name+"@x.com", domain.RoleAdmin, "pw|s", "s")
	u.ID = primitive.NewObjectID()
	return u
}

func TestLoginMissingFields(t *testing.T) {
	repo := new(MockRepo)
	svc, _ := newService(repo)

	_, err := svc.Login(context.Background(), domain.LoginRequest{Name: "alice"})
	assert.ErrorIs(t, err, domerrors.ErrInvalidArgument)

	_, err = svc.Login(context.Background(), domain.LoginRequest{Password: "pw"})
	assert.ErrorIs(t, err, domerrors.ErrInvalidArgument)
	repo.AssertNotCalled(t, "GetOne", mock.Anything, mock.Anything)
}

func TestLoginUnknownUser(t *testing.T) {
	repo := new(MockRepo)
	svc, _ := newService(repo)
	repo.On("GetOne", mock.Anything, domain.ByName("ghost")).
		Return(domain.User{}, domerrors.NotFound("user"))

	_, err := svc.Login(context.Background(), domain.LoginRequest{Name: "ghost", Password: "pw"})
	assert.ErrorIs(t, err, domerrors.ErrNotFound)
}

func TestLoginVerifiesAgainstStoredSalt(t *testing.T) {
	repo := new(MockRepo)
	svc, _ := newService(repo)
	stored := domain.NewUser("alice", "a@x.com", domain.RoleUser, "s3cr3t|old-salt", "old-salt")
	repo.On("GetOne", mock.Anything, domain.ByName("alice")).Return(stored, nil)

	ok, err := svc.Login(context.Background(), domain.LoginRequest{Name: "alice", Password: "s3cr3t"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Login(context.Background(), domain.LoginRequest{Name: "alice", Password: "wrong"})
	require.NoError(t, err)
	assert.False(t, ok, "wrong password is a false result, not an error")
}

func TestLoginWithoutStoredCredentialsIsFalse(t *testing.T) {
	repo := new(MockRepo)
	svc, _ := newService(repo)
	stored := domain.User{Name: "alice", Email: "a@x.com", Role: domain.RoleUser}
	repo.On("GetOne", mock.Anything, domain.ByName("alice")).Return(stored, nil)

	ok, err := svc.Login(context.Background(), domain.LoginRequest{Name: "alice", Password: "pw"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateMissingFields(t *testing.T) {
	repo := new(MockRepo)
	svc, _ := newService(repo)

	_, err := svc.Create(context.Background(), domain.UserData{Name: "bob", Email: "b@x.com"}, "root")
	assert.ErrorIs(t, err, domerrors.ErrInvalidArgument)
	repo.AssertNotCalled(t, "GetOne", mock.Anything, mock.Anything)
}

func TestCreateRequiresAdminIssuer(t *testing.T) {
	repo := new(MockRepo)
	svc, _ := newService(repo)
	dev := domain.NewUser("dev", "d@x.com", domain.RoleDeveloper, "pw|s", "s")
	repo.On("GetOne", mock.Anything, domain.ByName("dev")).Return(dev, nil)

	_, err := svc.Create(context.Background(),
		domain.UserData{Name: "bob", Email: "b@x.com", Password: "pw", Role: domain.RoleUser}, "dev")
	assert.ErrorIs(t, err, domerrors.ErrPermissionDenied)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateUnknownIssuer(t *testing.T) {
	repo := new(MockRepo)
	svc, _ := newService(repo)
	repo.On("GetOne", mock.Anything, domain.ByName("ghost")).
		Return(domain.User{}, domerrors.NotFound("user"))

	_, err := svc.Create(context.Background(),
		domain.UserData{Name: "bob", Email: "b@x.com", Password: "pw"}, "ghost")
	assert.ErrorIs(t, err, domerrors.ErrNotFound)
}

func TestCreatePersistsSaltedHash(t *testing.T) {
	repo := new(MockRepo)
	svc, _ := newService(repo)
	repo.On("GetOne", mock.Anything, domain.ByName("root")).Return(admin("root"), nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.Name == "bob" && u.Email == "b@x.com" && u.Role == domain.RoleUser &&
			u.Salt == "salt-1" && u.PasswordHash == "pw|salt-1"
	})).Return(primitive.NewObjectID().Hex(), nil)

	name, err := svc.Create(context.Background(),
		domain.UserData{Name: "bob", Email: "b@x.com", Password: "pw", Role: domain.RoleUser}, "root")
	require.NoError(t, err)
	assert.Equal(t, "bob", name, "create confirms with the name, not the id")
	repo.AssertExpectations(t)
}

func TestUpdateRequiresPassword(t *testing.T) {
	repo := new(MockRepo)
	svc, _ := newService(repo)
	repo.On("GetOne", mock.Anything, domain.ByName("root")).Return(admin("root"), nil)

	err := svc.Update(context.Background(), domain.UserData{Name: "bob", Email: "b@x.com"}, "bob", "root")
	assert.ErrorIs(t, err, domerrors.ErrInvalidArgument)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateRotatesCredentials(t *testing.T) {
	repo := new(MockRepo)
	svc, _ := newService(repo)
	target := domain.NewUser("bob", "b@x.com", domain.RoleUser, "old|stale", "stale")
	target.ID = primitive.NewObjectID()
	repo.On("GetOne", mock.Anything, domain.ByName("root")).Return(admin("root"), nil)
	repo.On("GetOne", mock.Anything, domain.ByName("bob")).Return(target, nil)
	repo.On("Update", mock.Anything, target.ID.Hex(), mock.MatchedBy(func(u domain.User) bool {
		return u.Salt == "salt-1" && u.PasswordHash == "new|salt-1" && u.Role == domain.RoleDeveloper
	})).Return(nil)

	err := svc.Update(context.Background(),
		domain.UserData{Name: "bob", Email: "b@x.com", Password: "new", Role: domain.RoleDeveloper}, "bob", "root")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestUpdateTargetNotFound(t *testing.T) {
	repo := new(MockRepo)
	svc, _ := newService(repo)
	repo.On("GetOne", mock.Anything, domain.ByName("root")).Return(admin("root"), nil)
	repo.On("GetOne", mock.Anything, domain.ByName("ghost")).
		Return(domain.User{}, domerrors.NotFound("user"))

	err := svc.Update(context.Background(),
		domain.UserData{Name: "ghost", Email: "g@x.com", Password: "pw"}, "ghost", "root")
	assert.ErrorIs(t, err, domerrors.ErrNotFound)
}

func TestDeleteIsIdempotent(t *testing.T) {
	repo := new(MockRepo)
	svc, _ := newService(repo)
	repo.On("GetOne", mock.Anything, domain.ByName("root")).Return(admin("root"), nil)
	repo.On("GetOne", mock.Anything, domain.ByName("gone")).
		Return(domain.User{}, domerrors.NotFound("user"))

	assert.NoError(t, svc.Delete(context.Background(), "gone", "root"))
	assert.NoError(t, svc.Delete(context.Background(), "gone", "root"))
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteRemovesTarget(t *testing.T) {
	repo := new(MockRepo)
	svc, _ := newService(repo)
	target := admin("bob")
	repo.On("GetOne", mock.Anything, domain.ByName("root")).Return(admin("root"), nil)
	repo.On("GetOne", mock.Anything, domain.ByName("bob")).Return(target, nil)
	repo.On("Delete", mock.Anything, target.ID.Hex()).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), "bob", "root"))
	repo.AssertExpectations(t)
}

func TestDeleteUnknownIssuer(t *testing.T) {
	repo := new(MockRepo)
	svc, _ := newService(repo)
	repo.On("GetOne", mock.Anything, domain.ByName("ghost")).
		Return(domain.User{}, domerrors.NotFound("user"))

	err := svc.Delete(context.Background(), "bob", "ghost")
	assert.ErrorIs(t, err, domerrors.ErrNotFound, "absent issuer is not absorbed")
}

func TestDeleteRequiresAdminIssuer(t *testing.T) {
	repo := new(MockRepo)
	svc, _ := newService(repo)
	dev := domain.NewUser("dev", "d@x.com", domain.RoleDeveloper, "pw|s", "s")
	repo.On("GetOne", mock.Anything, domain.ByName("dev")).Return(dev, nil)

	err := svc.Delete(context.Background(), "bob", "dev")
	assert.ErrorIs(t, err, domerrors.ErrPermissionDenied)
}

func TestGetMapsToView(t *testing.T) {
	repo := new(MockRepo)
	svc, _ := newService(repo)
	stored := domain.NewUser("bob", "b@x.com", domain.RoleUser, "digest", "salt")
	repo.On("GetOne", mock.Anything, domain.ByName("bob")).Return(stored, nil)

	view, err := svc.Get(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, domain.UserView{Name: "bob", Email: "b@x.com", Role: domain.RoleUser}, view)
}

func TestListMapsToViews(t *testing.T) {
	repo := new(MockRepo)
	svc, _ := newService(repo)
	criteria := domain.Criteria{Name: "b"}
	repo.On("Search", mock.Anything, 25, 0, criteria).Return([]domain.User{
		domain.NewUser("bob", "b@x.com", domain.RoleUser, "d1", "s1"),
		domain.NewUser("bea", "bea@x.com", domain.RoleAdmin, "d2", "s2"),
	}, nil)

	views, err := svc.List(context.Background(), 0, 25, criteria)
	require.NoError(t, err)
	assert.Equal(t, []domain.UserView{
		{Name: "bob", Email: "b@x.com", Role: domain.RoleUser},
		{Name: "bea", Email: "bea@x.com", Role: domain.RoleAdmin},
	}, views)
}

func TestCountDelegates(t *testing.T) {
	repo := new(MockRepo)
	svc, _ := newService(repo)
	criteria := domain.Criteria{Role: domain.RoleDeveloper}
	repo.On("CountMatching", mock.Anything, criteria).Return(int64(7), nil)

	n, err := svc.Count(context.Background(), criteria)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}
