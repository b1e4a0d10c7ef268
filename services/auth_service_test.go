package services

import (
	"context"
	"errors"
	"testing"

	"inkwell/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		wantErr  func(error) bool
	}{
		{name: "creates account", username: "alice", password: "secret"},
		{name: "duplicate username", username: "alice", password: "other", wantErr: func(err error) bool { return errors.Is(err, ErrConflict) }},
		{name: "empty username", username: "   ", password: "secret", wantErr: IsValidation},
		{name: "empty password", username: "bob", password: "", wantErr: IsValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account, err := env.auth.Register(ctx, tt.username, tt.password)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tt.wantErr(err), "unexpected error: %v", err)
				assert.Nil(t, account)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, account.ID)
			assert.Equal(t, tt.username, account.Username)
			assert.False(t, account.IsAdmin)
			assert.NotEqual(t, tt.password, account.PasswordHash)
		})
	}

	assert.Equal(t, int64(1), env.count(t, &models.Account{}, "username = ?", "alice"))
	assert.Equal(t, int64(1), env.count(t, &models.Account{}, ""))
}

func TestRegisterTrimsInput(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	account, err := env.auth.Register(ctx, "  carol ", " pw ")
	require.NoError(t, err)
	assert.Equal(t, "carol", account.Username)

	_, err = env.auth.Authenticate(ctx, "carol", "pw")
	assert.NoError(t, err)
	_, err = env.auth.Authenticate(ctx, "carol", "  pw\t")
	assert.NoError(t, err)
	_, err = env.auth.Authenticate(ctx, "carol", "p w")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	created := env.createAccount(t, "dave")

	account, err := env.auth.Authenticate(ctx, "dave", "password123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, account.ID)

	_, err = env.auth.Authenticate(ctx, "dave", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.auth.Authenticate(ctx, "nobody", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Lookup is exact.
	_, err = env.auth.Authenticate(ctx, "DAVE", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetAccountByIDNotFound(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.auth.GetAccountByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnsureAdmin(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.createAccount(t, "regular")

	admin, err := env.auth.EnsureAdmin(ctx, "system", "system")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)
	assert.Equal(t, "system", admin.Username)

	again, err := env.auth.EnsureAdmin(ctx, "system", "system")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)
	assert.Equal(t, int64(1), env.count(t, &models.Account{}, "is_admin = ?", true))

	_, err = env.auth.Authenticate(ctx, "system", "system")
	assert.NoError(t, err)
}

func TestEnsureAdminReusesExistingAdmin(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	existing := env.createAccount(t, "root")
	require.NoError(t, env.db.Model(existing).Update("is_admin", true).Error)

	admin, err := env.auth.EnsureAdmin(ctx, "system", "system")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, admin.ID)
	assert.Equal(t, int64(0), env.count(t, &models.Account{}, "username = ?", "system"))
}

func TestGetProfile(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	author := env.createAccount(t, "author")
	fan := env.createAccount(t, "fan")
	env.createArticle(t, author.ID, "first")
	env.createArticle(t, author.ID, "second")

	_, err := env.social.ToggleFollow(ctx, fan.ID, author.ID)
	require.NoError(t, err)

	profile, err := env.auth.GetProfile(ctx, author.ID, &fan.ID)
	require.NoError(t, err)
	assert.Equal(t, "author", profile.Account.Username)
	require.Len(t, profile.Articles, 2)
	assert.Equal(t, "second", profile.Articles[0].Title)
	for _, article := range profile.Articles {
		assert.Equal(t, "author", article.Author.Username)
	}
	assert.Equal(t, int64(1), profile.Followers)
	assert.Equal(t, int64(0), profile.Following)
	assert.True(t, profile.IsFollowing)

	anonymous, err := env.auth.GetProfile(ctx, author.ID, nil)
	require.NoError(t, err)
	assert.False(t, anonymous.IsFollowing)

	_, err = env.auth.GetProfile(ctx, 999, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}
