package handlers

import (
	"fmt"
	"net/http"

	"inkwell/middleware"
	"inkwell/services"
)

type SocialHandlers struct {
	authService         *services.AuthService
	socialService       *services.SocialService
	notificationService *services.NotificationService
	renderer            *Renderer
}

func NewSocialHandlers(authService *services.AuthService, socialService *services.SocialService, notificationService *services.NotificationService, renderer *Renderer) *SocialHandlers {
	return &SocialHandlers{
		authService:         authService,
		socialService:       socialService,
		notificationService: notificationService,
		renderer:            renderer,
	}
}

func (sh *SocialHandlers) Like(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	account := middleware.AccountFromContext(r.Context())
	if _, err := sh.socialService.ToggleLike(r.Context(), account.ID, id); err != nil {
		writeError(w, r, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/article/%d", id), http.StatusFound)
}

func (sh *SocialHandlers) Follow(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user_id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	account := middleware.AccountFromContext(r.Context())
	if _, err := sh.socialService.ToggleFollow(r.Context(), account.ID, id); err != nil {
		writeError(w, r, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/profile/%d", id), http.StatusFound)
}

func (sh *SocialHandlers) Profile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user_id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	profile, err := sh.authService.GetProfile(r.Context(), id, middleware.AccountID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	sh.renderer.Render(w, r, "profile", page{"Profile": profile})
}

// Notifications lists the caller's unread articles without marking them read.
func (sh *SocialHandlers) Notifications(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())
	articles, err := sh.notificationService.UnreadArticles(r.Context(), account.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sh.renderer.Render(w, r, "notifications", page{"Articles": articles})
}
