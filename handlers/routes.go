package handlers

import (
	"net/http"

	"inkwell/middleware"
	"inkwell/services"

	"github.com/gorilla/mux"
)

// Services bundles what the HTTP layer depends on.
type Services struct {
	Auth          *services.AuthService
	Articles      *services.ArticleService
	Social        *services.SocialService
	Notifications *services.NotificationService
}

func NewRouter(svc Services, am *middleware.AuthMiddleware, renderer *Renderer) *mux.Router {
	authHandlers := NewAuthHandlers(svc.Auth, am, renderer)
	articleHandlers := NewArticleHandlers(svc.Articles, renderer)
	socialHandlers := NewSocialHandlers(svc.Auth, svc.Social, svc.Notifications, renderer)
	adminHandlers := NewAdminHandlers(svc.Articles, renderer)

	authed := func(h http.HandlerFunc) http.Handler { return am.RequireAuth(h) }
	admin := func(h http.HandlerFunc) http.Handler { return am.RequireAdmin(h) }

	// Topics are free text, so route variables stay percent-encoded until the
	// handler decodes them.
	r := mux.NewRouter().UseEncodedPath()
	r.Use(middleware.RequestLogger, am.LoadIdentity)

	// API routes
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", Health).Methods("GET")
	api.Handle("/stats", admin(adminHandlers.GetStats)).Methods("GET")

	// Identity
	r.HandleFunc("/register", authHandlers.RegisterPage).Methods("GET")
	r.HandleFunc("/register", authHandlers.Register).Methods("POST")
	r.HandleFunc("/login", authHandlers.LoginPage).Methods("GET")
	r.HandleFunc("/login", authHandlers.Login).Methods("POST")
	r.HandleFunc("/logout", authHandlers.Logout).Methods("GET")

	// Articles
	r.HandleFunc("/", articleHandlers.Index).Methods("GET")
	r.HandleFunc("/topic/{name}", articleHandlers.Topic).Methods("GET")
	r.Handle("/create_article", authed(articleHandlers.CreatePage)).Methods("GET")
	r.Handle("/create_article", authed(articleHandlers.Create)).Methods("POST")
	r.HandleFunc("/article/{id:[0-9]+}", articleHandlers.View).Methods("GET")
	r.Handle("/article/{id:[0-9]+}/comment", authed(articleHandlers.Comment)).Methods("POST")

	// Social
	r.Handle("/like/{id:[0-9]+}", authed(socialHandlers.Like)).Methods("POST")
	r.Handle("/follow/{user_id:[0-9]+}", authed(socialHandlers.Follow)).Methods("POST")
	r.HandleFunc("/profile/{user_id:[0-9]+}", socialHandlers.Profile).Methods("GET")
	r.Handle("/notifications", authed(socialHandlers.Notifications)).Methods("GET")

	// Administration
	r.Handle("/admin", admin(adminHandlers.Dashboard)).Methods("GET")
	r.Handle("/admin/delete_article/{id:[0-9]+}", admin(adminHandlers.DeleteArticle)).Methods("POST")

	return r
}
