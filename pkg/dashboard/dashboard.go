// Package dashboard serves the management UI: a link list with create and
// delete actions, and a per-link stats page. Presentation only; every
// mutation goes through the JSON API.
package dashboard

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tinylink/pkg/logging"
	"tinylink/pkg/service"
	"tinylink/pkg/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

type Handler struct {
	linkService *service.LinkService
	logger      *logging.Logger
	baseURL     string
	templates   *template.Template
}

func NewHandler(linkService *service.LinkService, logger *logging.Logger, baseURL string) (*Handler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Handler{
		linkService: linkService,
		logger:      logger,
		baseURL:     baseURL,
		templates:   tmpl,
	}, nil
}

// Register mounts the dashboard pages. The static /code segment keeps the
// stats page out of the /{code} redirect namespace.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.Index)
	r.Get("/code/{code}", h.Stats)
}

type indexData struct {
	BaseURL     string
	Links       []storage.Link
	TotalClicks int
	LoadError   bool
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	data := indexData{BaseURL: h.baseURL}

	links, err := h.linkService.ListLinks(r.Context())
	if err != nil {
		h.logger.Error(r.Context(), "dashboard list failed", "error", err.Error())
		data.LoadError = true
	} else {
		data.Links = links
		for _, link := range links {
			data.TotalClicks += link.Clicks
		}
	}

	h.render(w, r, http.StatusOK, "index.html", data)
}

type statsData struct {
	BaseURL string
	Link    *storage.Link
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	link, err := h.linkService.GetLink(r.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.render(w, r, http.StatusNotFound, "notfound.html", nil)
			return
		}
		h.logger.Error(r.Context(), "dashboard stats failed", "code", code, "error", err.Error())
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.render(w, r, http.StatusOK, "stats.html", statsData{BaseURL: h.baseURL, Link: link})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error(r.Context(), "template render failed", "template", name, "error", err.Error())
	}
}
