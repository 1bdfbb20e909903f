package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tinylink/pkg/logging"
	"tinylink/pkg/service"
	"tinylink/pkg/storage"
)

const internalErrorMessage = "Internal server error"

type Handler struct {
	linkService *service.LinkService
	logger      *logging.Logger
}

func NewHandler(linkService *service.LinkService, logger *logging.Logger) *Handler {
	return &Handler{
		linkService: linkService,
		logger:      logger,
	}
}

type createLinkRequest struct {
	URL        string `json:"url"`
	CustomCode string `json:"customCode"`
}

// CreateLink handles POST /api/links.
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req createLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	link, err := h.linkService.CreateLink(r.Context(), req.URL, req.CustomCode)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			writeAPIError(w, http.StatusBadRequest, verr.Reason)
		case errors.Is(err, service.ErrCodeInUse):
			writeAPIError(w, http.StatusConflict, "This custom code is already in use")
		default:
			h.logger.Error(r.Context(), "create link failed", "error", err.Error())
			writeAPIError(w, http.StatusInternalServerError, internalErrorMessage)
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"link":    link,
	})
}

// ListLinks handles GET /api/links. No server-side filtering or sorting; the
// dashboard does that client-side.
func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request) {
	links, err := h.linkService.ListLinks(r.Context())
	if err != nil {
		h.logger.Error(r.Context(), "list links failed", "error", err.Error())
		writeAPIError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}
	if links == nil {
		links = []storage.Link{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"links":   links,
	})
}

// GetLink handles GET /api/links/{code}.
func (h *Handler) GetLink(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	link, err := h.linkService.GetLink(r.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeAPIError(w, http.StatusNotFound, "Link not found")
			return
		}
		h.logger.Error(r.Context(), "get link failed", "code", code, "error", err.Error())
		writeAPIError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"link":    link,
	})
}

// DeleteLink handles DELETE /api/links/{code}.
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	err := h.linkService.DeleteLink(r.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeAPIError(w, http.StatusNotFound, "Link not found")
			return
		}
		h.logger.Error(r.Context(), "delete link failed", "code", code, "error", err.Error())
		writeAPIError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Redirect handles GET /{code}: reserved-code check, lookup, best-effort
// click record, then 302 to the target.
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	if service.IsReservedCode(code) {
		writeRedirectError(w, http.StatusNotFound, "Not found")
		return
	}

	link, err := h.linkService.GetLink(r.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeRedirectError(w, http.StatusNotFound, "Link not found")
			return
		}
		h.logger.Error(r.Context(), "redirect lookup failed", "code", code, "error", err.Error())
		writeRedirectError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	// Click accounting is secondary; the redirect goes out even if it fails.
	h.linkService.RecordClick(r.Context(), code)

	// Every request must hit the datastore, so the response is uncacheable.
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, link.TargetURL, http.StatusFound)
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
