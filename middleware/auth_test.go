package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"inkwell/config"
	"inkwell/database"
	"inkwell/models"
	"inkwell/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func setupAuth(t *testing.T) (*AuthMiddleware, *services.AuthService, *database.DB) {
	t.Helper()

	db, err := database.NewDatabase(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "auth.db"),
	}, database.Options{LogLevel: logger.Silent})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	auth := services.NewAuthService(db)
	am := NewAuthMiddleware(auth, services.NewNotificationService(db), config.SessionConfig{
		Secret: "test-secret",
		MaxAge: 3600,
	})
	return am, auth, db
}

// loginCookies performs Login against a recorder and returns the cookies set.
func loginCookies(t *testing.T, am *AuthMiddleware, account *models.Account) []*http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	require.NoError(t, am.Login(rec, req, account))
	return rec.Result().Cookies()
}

func requestWith(cookies []*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func TestLoginLogoutIdentity(t *testing.T) {
	am, auth, _ := setupAuth(t)
	account, err := auth.Register(context.Background(), "alice", "pw")
	require.NoError(t, err)

	assert.Nil(t, am.CurrentIdentity(requestWith(nil)))

	cookies := loginCookies(t, am, account)
	current := am.CurrentIdentity(requestWith(cookies))
	require.NotNil(t, current)
	assert.Equal(t, account.ID, current.ID)

	rec := httptest.NewRecorder()
	require.NoError(t, am.Logout(rec, requestWith(cookies)))
	assert.Nil(t, am.CurrentIdentity(requestWith(rec.Result().Cookies())))
}

func TestCurrentIdentityStaleAccount(t *testing.T) {
	am, auth, db := setupAuth(t)
	account, err := auth.Register(context.Background(), "ghost", "pw")
	require.NoError(t, err)
	cookies := loginCookies(t, am, account)

	require.NoError(t, db.Delete(&models.Account{}, account.ID).Error)
	assert.Nil(t, am.CurrentIdentity(requestWith(cookies)))
}

func TestCurrentIdentityRejectsForeignCookie(t *testing.T) {
	am, auth, _ := setupAuth(t)
	account, err := auth.Register(context.Background(), "alice", "pw")
	require.NoError(t, err)

	other := NewAuthMiddleware(auth, nil, config.SessionConfig{Secret: "another-secret", MaxAge: 3600})
	cookies := loginCookies(t, other, account)
	assert.Nil(t, am.CurrentIdentity(requestWith(cookies)))
}

func TestGuards(t *testing.T) {
	am, auth, db := setupAuth(t)
	ctx := context.Background()
	user, err := auth.Register(ctx, "user", "pw")
	require.NoError(t, err)
	admin, err := auth.Register(ctx, "admin", "pw")
	require.NoError(t, err)
	require.NoError(t, db.Model(admin).Update("is_admin", true).Error)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	authed := am.LoadIdentity(am.RequireAuth(ok))
	adminOnly := am.LoadIdentity(am.RequireAdmin(ok))

	tests := []struct {
		name    string
		handler http.Handler
		cookies []*http.Cookie
		status  int
	}{
		{"anonymous redirected to login", authed, nil, http.StatusFound},
		{"user passes auth", authed, loginCookies(t, am, user), http.StatusNoContent},
		{"anonymous forbidden from admin", adminOnly, nil, http.StatusForbidden},
		{"user forbidden from admin", adminOnly, loginCookies(t, am, user), http.StatusForbidden},
		{"admin passes admin", adminOnly, loginCookies(t, am, admin), http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler.ServeHTTP(rec, requestWith(tt.cookies))
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusFound {
				assert.Equal(t, "/login", rec.Header().Get("Location"))
			}
		})
	}
}

func TestLoadIdentityCountsUnread(t *testing.T) {
	am, auth, db := setupAuth(t)
	ctx := context.Background()
	author, err := auth.Register(ctx, "author", "pw")
	require.NoError(t, err)
	fan, err := auth.Register(ctx, "fan", "pw")
	require.NoError(t, err)

	social := services.NewSocialService(db)
	articles := services.NewArticleService(db, services.NewNotificationService(db))
	_, err = social.ToggleFollow(ctx, fan.ID, author.ID)
	require.NoError(t, err)
	_, err = articles.CreateArticle(ctx, author.ID, "hi", "there", "")
	require.NoError(t, err)

	var seen *Identity
	h := am.LoadIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = IdentityFromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), requestWith(loginCookies(t, am, fan)))

	require.NotNil(t, seen)
	require.NotNil(t, seen.Account)
	assert.Equal(t, fan.ID, seen.Account.ID)
	assert.Equal(t, int64(1), seen.UnreadCount)

	h.ServeHTTP(httptest.NewRecorder(), requestWith(nil))
	assert.Nil(t, seen.Account)
	assert.Nil(t, AccountID(context.Background()))
}
