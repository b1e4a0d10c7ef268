package handlers

import (
	"net/http"

	"inkwell/middleware"
	"inkwell/services"

	"github.com/sirupsen/logrus"
)

type AuthHandlers struct {
	authService *services.AuthService
	sessions    *middleware.AuthMiddleware
	renderer    *Renderer
}

func NewAuthHandlers(authService *services.AuthService, sessions *middleware.AuthMiddleware, renderer *Renderer) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		sessions:    sessions,
		renderer:    renderer,
	}
}

func (ah *AuthHandlers) RegisterPage(w http.ResponseWriter, r *http.Request) {
	ah.renderer.Render(w, r, "register", nil)
}

func (ah *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	account, err := ah.authService.Register(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := ah.sessions.Login(w, r, account); err != nil {
		writeError(w, r, err)
		return
	}

	logrus.WithField("account_id", account.ID).Info("Account registered")
	http.Redirect(w, r, "/", http.StatusFound)
}

func (ah *AuthHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	ah.renderer.Render(w, r, "login", nil)
}

func (ah *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	account, err := ah.authService.Authenticate(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := ah.sessions.Login(w, r, account); err != nil {
		writeError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (ah *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := ah.sessions.Logout(w, r); err != nil {
		writeError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}
