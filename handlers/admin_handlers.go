package handlers

import (
	"net/http"
	"time"

	"inkwell/services"

	"github.com/sirupsen/logrus"
)

type AdminHandlers struct {
	articleService *services.ArticleService
	renderer       *Renderer
}

func NewAdminHandlers(articleService *services.ArticleService, renderer *Renderer) *AdminHandlers {
	return &AdminHandlers{
		articleService: articleService,
		renderer:       renderer,
	}
}

func (ah *AdminHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	articles, err := ah.articleService.ListAllArticles(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	stats, err := ah.articleService.GetStats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	ah.renderer.Render(w, r, "admin", page{
		"Articles": articles,
		"Stats":    stats,
	})
}

func (ah *AdminHandlers) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := ah.articleService.DeleteArticle(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	http.Redirect(w, r, "/admin", http.StatusFound)
}

func (ah *AdminHandlers) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := ah.articleService.GetStats(r.Context())
	if err != nil {
		logrus.WithError(err).Error("Failed to load stats")
		writeJSON(w, http.StatusInternalServerError, APIResponse{Error: "failed to load stats"})
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: stats})
}

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]string{
			"status":    "ok",
			"message":   "Inkwell is running",
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}
