package handlers

import (
	"fmt"
	"net/http"
	"net/url"

	"inkwell/middleware"
	"inkwell/models"
	"inkwell/services"

	"github.com/gorilla/mux"
)

type ArticleHandlers struct {
	articleService *services.ArticleService
	renderer       *Renderer
}

func NewArticleHandlers(articleService *services.ArticleService, renderer *Renderer) *ArticleHandlers {
	return &ArticleHandlers{
		articleService: articleService,
		renderer:       renderer,
	}
}

func (ah *ArticleHandlers) Index(w http.ResponseWriter, r *http.Request) {
	articles, err := ah.articleService.ListArticles(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	topics, err := ah.articleService.Topics(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	ah.renderer.Render(w, r, "index", page{
		"Articles": articles,
		"Topics":   topics,
	})
}

func (ah *ArticleHandlers) Topic(w http.ResponseWriter, r *http.Request) {
	topic, err := url.PathUnescape(mux.Vars(r)["name"])
	if err != nil {
		writeError(w, r, fmt.Errorf("topic %q: %w", mux.Vars(r)["name"], services.ErrNotFound))
		return
	}
	articles, err := ah.articleService.ArticlesByTopic(r.Context(), topic)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ah.renderer.Render(w, r, "topic", page{
		"Topic":    topic,
		"Articles": articles,
	})
}

func (ah *ArticleHandlers) CreatePage(w http.ResponseWriter, r *http.Request) {
	ah.renderer.Render(w, r, "create_article", page{"DefaultTopic": models.DefaultTopic})
}

func (ah *ArticleHandlers) Create(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())
	_, err := ah.articleService.CreateArticle(r.Context(), account.ID,
		r.FormValue("title"), r.FormValue("content"), r.FormValue("topic"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (ah *ArticleHandlers) View(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := ah.articleService.ViewArticle(r.Context(), id, middleware.AccountID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	ah.renderer.Render(w, r, "article", page{"View": view})
}

func (ah *ArticleHandlers) Comment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	account := middleware.AccountFromContext(r.Context())
	if _, err := ah.articleService.AddComment(r.Context(), account.ID, id, r.FormValue("content")); err != nil {
		writeError(w, r, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/article/%d", id), http.StatusFound)
}
