package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	pkgErrors "github.com/vogiaan1904/repairhub-display/internal/errors"
	"github.com/vogiaan1904/repairhub-display/internal/models"
	"github.com/vogiaan1904/repairhub-display/internal/service"
	"github.com/vogiaan1904/repairhub-display/pkg/logger"
)

// HTTPHandler serves the content read contract the displays poll, plus
// the slide/branding write endpoints used by the shop backend.
type HTTPHandler struct {
	contentService service.ContentService
	l              logger.Logger
	validator      *validator.Validate
}

func NewHTTPHandler(contentService service.ContentService, l logger.Logger) *HTTPHandler {
	return &HTTPHandler{
		contentService: contentService,
		l:              l,
		validator:      validator.New(),
	}
}

func (h *HTTPHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", h.HealthCheck)

	r.Route("/api/v1/locations/{locationID}", func(r chi.Router) {
		r.Get("/content", h.GetContent)
		r.Post("/slides", h.UpsertSlide)
		r.Delete("/slides/{slideID}", h.RemoveSlide)
		r.Put("/branding", h.SetBranding)
	})

	return r
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":  "healthy",
		"service": "display-content-service",
	}
	h.respondJSON(w, http.StatusOK, response)
}

// GetContent returns the full content bundle for a location. This is the
// endpoint the kiosk's polling fallback hits; it must stay cheap and must
// never require authentication.
func (h *HTTPHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationID")
	if locationID == "" {
		h.respondError(w, r, http.StatusBadRequest, "Location ID is required", nil)
		return
	}

	bundle, err := h.contentService.GetContent(r.Context(), locationID)
	if err != nil {
		h.respondError(w, r, http.StatusInternalServerError, "Failed to load content", err)
		return
	}

	h.respondJSON(w, http.StatusOK, bundle)
}

type upsertSlideRequest struct {
	ID          string `json:"id"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	VisualStyle string `json:"visual_style" validate:"required,oneof=gradient image"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
	DurationMs  int64  `json:"duration_ms" validate:"gte=0"`
}

func (h *HTTPHandler) UpsertSlide(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationID")

	var req upsertSlideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Validation failed", err)
		return
	}

	slide, err := h.contentService.UpsertSlide(r.Context(), locationID, models.Slide{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
		VisualStyle: req.VisualStyle,
		ImageURL:    req.ImageURL,
		DurationMs:  req.DurationMs,
	})
	if err != nil {
		h.respondError(w, r, http.StatusInternalServerError, "Failed to save slide", err)
		return
	}

	h.respondJSON(w, http.StatusCreated, slide)
}

func (h *HTTPHandler) RemoveSlide(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationID")
	slideID := chi.URLParam(r, "slideID")
	if slideID == "" {
		h.respondError(w, r, http.StatusBadRequest, "Slide ID is required", nil)
		return
	}

	if err := h.contentService.RemoveSlide(r.Context(), locationID, slideID); err != nil {
		h.respondError(w, r, http.StatusInternalServerError, "Failed to remove slide", err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{"removed": slideID})
}

type setBrandingRequest struct {
	ShopName    string `json:"shop_name" validate:"required"`
	AccentColor string `json:"accent_color" validate:"omitempty,hexcolor"`
	LogoURL     string `json:"logo_url" validate:"omitempty,url"`
}

func (h *HTTPHandler) SetBranding(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationID")

	var req setBrandingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Validation failed", err)
		return
	}

	branding := models.Branding{
		ShopName:    req.ShopName,
		AccentColor: req.AccentColor,
		LogoURL:     req.LogoURL,
	}

	if err := h.contentService.SetBranding(r.Context(), locationID, branding); err != nil {
		switch err {
		case pkgErrors.ErrLocationNotFound:
			h.respondError(w, r, http.StatusNotFound, "Location not found", err)
		default:
			h.respondError(w, r, http.StatusInternalServerError, "Failed to save branding", err)
		}
		return
	}

	h.respondJSON(w, http.StatusOK, branding)
}

// Helper functions

func (h *HTTPHandler) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.l.Errorf(context.Background(), "Failed to encode JSON response: %v", err)
	}
}

func (h *HTTPHandler) respondError(w http.ResponseWriter, r *http.Request, statusCode int, message string, err error) {
	if err != nil {
		h.l.Debugf(r.Context(), "Error response - message: %s, error: %v", message, err)
	}

	h.respondJSON(w, statusCode, map[string]any{
		"error": message,
		"code":  statusCode,
	})
}
