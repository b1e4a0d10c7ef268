package middleware

import (
	"context"
	"net/http"

	"inkwell/config"
	"inkwell/models"
	"inkwell/services"

	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	identityContextKey contextKey = "identity"

	sessionName       = "inkwell-session"
	sessionAccountKey = "account_id"
)

// Identity is the request-scoped view of who is calling.
type Identity struct {
	Account     *models.Account
	UnreadCount int64
}

type AuthMiddleware struct {
	authService         *services.AuthService
	notificationService *services.NotificationService
	store               *sessions.CookieStore
}

func NewAuthMiddleware(authService *services.AuthService, notificationService *services.NotificationService, cfg config.SessionConfig) *AuthMiddleware {
	if cfg.Secret == config.DefaultSessionSecret {
		logrus.Warn("Using default session secret. Set SESSION_SECRET!")
	}

	store := sessions.NewCookieStore([]byte(cfg.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &AuthMiddleware{
		authService:         authService,
		notificationService: notificationService,
		store:               store,
	}
}

// LoadIdentity resolves the session for every request and stores the result
// in the request context. Anonymous requests get an empty Identity.
func (am *AuthMiddleware) LoadIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := &Identity{Account: am.CurrentIdentity(r)}
		if identity.Account != nil {
			count, err := am.notificationService.UnreadCount(r.Context(), identity.Account.ID)
			if err != nil {
				logrus.WithError(err).Warn("Failed to count unread notifications")
			}
			identity.UnreadCount = count
		}
		ctx := context.WithValue(r.Context(), identityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth redirects anonymous visitors to the login page.
func (am *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if AccountFromContext(r.Context()) == nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects anyone who is not an administrator with 403.
func (am *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account := AccountFromContext(r.Context())
		if account == nil || !account.IsAdmin {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CurrentIdentity returns the account bound to the session cookie, or nil when
// the cookie is missing, invalid, or names an account that no longer exists.
func (am *AuthMiddleware) CurrentIdentity(r *http.Request) *models.Account {
	session, err := am.store.Get(r, sessionName)
	if err != nil {
		return nil
	}

	id, ok := session.Values[sessionAccountKey].(uint)
	if !ok || id == 0 {
		return nil
	}

	account, err := am.authService.GetAccountByID(r.Context(), id)
	if err != nil {
		if !services.IsNotFound(err) {
			logrus.WithError(err).Warn("Failed to resolve session account")
		}
		return nil
	}
	return account
}

// Login binds the session to account.
func (am *AuthMiddleware) Login(w http.ResponseWriter, r *http.Request, account *models.Account) error {
	session, _ := am.store.Get(r, sessionName)
	session.Values[sessionAccountKey] = account.ID
	session.Options.MaxAge = am.store.Options.MaxAge
	return session.Save(r, w)
}

// Logout clears the session identity.
func (am *AuthMiddleware) Logout(w http.ResponseWriter, r *http.Request) error {
	session, _ := am.store.Get(r, sessionName)
	delete(session.Values, sessionAccountKey)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

func IdentityFromContext(ctx context.Context) *Identity {
	identity, ok := ctx.Value(identityContextKey).(*Identity)
	if !ok {
		return &Identity{}
	}
	return identity
}

func AccountFromContext(ctx context.Context) *models.Account {
	return IdentityFromContext(ctx).Account
}

// AccountID returns a pointer to the caller's account ID, or nil when
// anonymous.
func AccountID(ctx context.Context) *uint {
	account := AccountFromContext(ctx)
	if account == nil {
		return nil
	}
	id := account.ID
	return &id
}
