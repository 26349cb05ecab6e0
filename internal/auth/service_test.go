package auth_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/bmariscotes-strat/stride/internal/auth"
)

const testBcryptCost = 4 // low cost for fast tests

// memoryUserRepo implements UserRepository in memory.
type memoryUserRepo struct {
	users map[uuid.UUID]*auth.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: map[uuid.UUID]*auth.User{}}
}

func (r *memoryUserRepo) Create(_ context.Context, u *auth.User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return auth.ErrDuplicateEmail
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return nil
}

func (r *memoryUserRepo) GetByID(_ context.Context, id uuid.UUID) (*auth.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return u, nil
}

func (r *memoryUserRepo) FindByPrefix(_ context.Context, prefix string) ([]auth.User, error) {
	var out []auth.User
	for _, u := range r.users {
		if u.ApiKeyPrefix == prefix && u.RevokedAt == nil {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *memoryUserRepo) List(_ context.Context) ([]auth.User, error) {
	var out []auth.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *memoryUserRepo) Revoke(_ context.Context, id uuid.UUID) error {
	u, ok := r.users[id]
	if !ok {
		return auth.ErrUserNotFound
	}
	now := u.CreatedAt
	u.RevokedAt = &now
	return nil
}

func (r *memoryUserRepo) CountAll(_ context.Context) (int, error) {
	return len(r.users), nil
}

func createUser(t *testing.T, svc *auth.Service, repo *memoryUserRepo, name string) (string, *auth.User) {
	t.Helper()

	rawKey, prefix, hash, err := svc.GenerateKey()
	require.NoError(t, err)

	u := &auth.User{
		Name:         name,
		Email:        name + "@example.com",
		ApiKeyPrefix: prefix,
		ApiKeyHash:   hash,
	}
	require.NoError(t, repo.Create(context.Background(), u))

	return rawKey, u
}

func TestGenerateKey_Format(t *testing.T) {
	svc := auth.NewService(newMemoryUserRepo(), testBcryptCost)

	rawKey, prefix, hash, err := svc.GenerateKey()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(rawKey, "strd_"), "raw key should start with strd_")
	assert.Len(t, prefix, 8, "prefix should be 8 characters")
	assert.Equal(t, rawKey[:8], prefix, "prefix should be first 8 chars of raw key")
	assert.NotEmpty(t, hash, "hash should not be empty")

	err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(rawKey))
	assert.NoError(t, err, "hash should verify against raw key")
}

func TestGenerateKey_Uniqueness(t *testing.T) {
	svc := auth.NewService(newMemoryUserRepo(), testBcryptCost)

	key1, _, _, err := svc.GenerateKey()
	require.NoError(t, err)

	key2, _, _, err := svc.GenerateKey()
	require.NoError(t, err)

	assert.NotEqual(t, key1, key2, "generated keys should be unique")
}

func TestAuthenticate_ValidKey(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := auth.NewService(repo, testBcryptCost)

	rawKey, u := createUser(t, svc, repo, "alice")

	identity, err := svc.Authenticate(context.Background(), rawKey)
	require.NoError(t, err)

	assert.Equal(t, u.ID, identity.UserID)
	assert.Equal(t, "alice", identity.UserName)
}

func TestAuthenticate_InvalidKey(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := auth.NewService(repo, testBcryptCost)

	createUser(t, svc, repo, "alice")

	_, err := svc.Authenticate(context.Background(), "strd_definitely-not-a-key")
	assert.ErrorIs(t, err, auth.ErrInvalidKey)
}

func TestAuthenticate_ShortKey(t *testing.T) {
	svc := auth.NewService(newMemoryUserRepo(), testBcryptCost)

	_, err := svc.Authenticate(context.Background(), "short")
	assert.ErrorIs(t, err, auth.ErrInvalidKey)
}

func TestAuthenticate_RevokedKey(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := auth.NewService(repo, testBcryptCost)

	rawKey, u := createUser(t, svc, repo, "alice")
	require.NoError(t, repo.Revoke(context.Background(), u.ID))

	_, err := svc.Authenticate(context.Background(), rawKey)
	assert.ErrorIs(t, err, auth.ErrInvalidKey)
}

func TestCreateUser_ReturnsUsableKey(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := auth.NewService(repo, testBcryptCost)

	u, rawKey, err := svc.CreateUser(context.Background(), "alice", "alice@example.com")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.True(t, strings.HasPrefix(rawKey, "strd_"))

	identity, err := svc.Authenticate(context.Background(), rawKey)
	require.NoError(t, err)
	assert.Equal(t, u.ID, identity.UserID)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := auth.NewService(repo, testBcryptCost)

	_, _, err := svc.CreateUser(context.Background(), "alice", "alice@example.com")
	require.NoError(t, err)

	_, _, err = svc.CreateUser(context.Background(), "also alice", "alice@example.com")
	assert.ErrorIs(t, err, auth.ErrDuplicateEmail)
}

func TestBootstrapUser_CreatesFirstUser(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := auth.NewService(repo, testBcryptCost)

	rawKey, err := svc.BootstrapUser(context.Background(), "founder", "founder@localhost")
	require.NoError(t, err)
	require.NotEmpty(t, rawKey)

	identity, err := svc.Authenticate(context.Background(), rawKey)
	require.NoError(t, err)
	assert.Equal(t, "founder", identity.UserName)
}

func TestBootstrapUser_NoopWhenUsersExist(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := auth.NewService(repo, testBcryptCost)

	createUser(t, svc, repo, "alice")

	rawKey, err := svc.BootstrapUser(context.Background(), "founder", "founder@localhost")
	require.NoError(t, err)
	assert.Empty(t, rawKey)
}
