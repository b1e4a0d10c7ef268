package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"inkwell/middleware"
	"inkwell/services"
	"inkwell/templates"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const layoutTemplate = "layout.html"

type page map[string]interface{}

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Renderer executes the embedded page templates inside the shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"date":       func(t time.Time) string { return t.UTC().Format("02.01.2006 15:04") },
		"pathEscape": url.PathEscape,
	}

	names, err := fs.Glob(templates.FS, "*.html")
	if err != nil {
		return nil, err
	}

	rd := &Renderer{pages: make(map[string]*template.Template)}
	for _, name := range names {
		if name == layoutTemplate {
			continue
		}
		t, err := template.New(name).Funcs(funcs).ParseFS(templates.FS, layoutTemplate, name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		rd.pages[strings.TrimSuffix(name, ".html")] = t
	}
	return rd, nil
}

// Render writes the named page. The caller's identity is always available to
// templates as .Identity.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, name string, data page) {
	t, ok := rd.pages[name]
	if !ok {
		logrus.WithField("template", name).Error("Unknown template")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if data == nil {
		data = page{}
	}
	data["Identity"] = middleware.IdentityFromContext(r.Context())

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		logrus.WithError(err).WithField("template", name).Error("Failed to render page")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logrus.WithError(err).Warn("Failed to encode response")
	}
}

// writeError maps service errors onto plain-text HTTP responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		http.Error(w, ve.Message, http.StatusBadRequest)
	case errors.Is(err, services.ErrConflict):
		http.Error(w, "A user with that name already exists.", http.StatusBadRequest)
	case errors.Is(err, services.ErrInvalidCredentials):
		http.Error(w, "Invalid username or password.", http.StatusBadRequest)
	case errors.Is(err, services.ErrSelfFollow):
		http.Error(w, "You cannot follow yourself.", http.StatusBadRequest)
	case errors.Is(err, services.ErrNotFound):
		http.Error(w, "Not Found", http.StatusNotFound)
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("Request failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// pathID reads a numeric route variable. Routes constrain the pattern to
// digits, so a parse failure means the value overflowed and cannot exist.
func pathID(r *http.Request, key string) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)[key], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", key, mux.Vars(r)[key], services.ErrNotFound)
	}
	return uint(id), nil
}
