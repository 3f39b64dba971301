package http

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "unistats/internal/errors"
	"unistats/internal/middleware"
	"unistats/internal/services"
	api "unistats/pkg/contracts/api/v1"
	"unistats/pkg/contracts/domain"
)

// DashboardService is the interactive dashboard used by the handler.
type DashboardService interface {
	Focus() string
	Dimensions() []domain.Dimension
	Hierarchy(ctx context.Context, key string) (domain.CategoryHierarchy, error)
	Sources(ctx context.Context, key string) ([]string, error)
	MacroView(ctx context.Context, q services.MacroQuery) (domain.MacroView, error)
	MicroView(ctx context.Context, q services.MicroQuery) (domain.MicroView, error)
	RenderMacro(ctx context.Context, q services.MacroQuery, w io.Writer) error
	RenderMicro(ctx context.Context, q services.MicroQuery, w io.Writer) error
}

// DashboardHandler serves the dashboard API with RFC 7807 errors.
type DashboardHandler struct {
	service      DashboardService
	validator    *middleware.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardService, validator *middleware.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes, mounted under /api/v1.
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/dimensions", h.ListDimensions)
	r.Route("/dimensions/{dim}", func(r chi.Router) {
		r.Get("/hierarchy", h.GetHierarchy)
		r.Get("/sources", h.GetSources)
		r.Get("/macro", h.GetMacro)
		r.Get("/micro", h.GetMicro)
		r.Get("/macro.png", h.GetMacroPNG)
		r.Get("/micro.png", h.GetMicroPNG)
	})

	return r
}

// ListDimensions handles GET /api/v1/dimensions
func (h *DashboardHandler) ListDimensions(w http.ResponseWriter, r *http.Request) {
	dims := h.service.Dimensions()
	resp := api.DimensionsResponse{
		Focus:      h.service.Focus(),
		Dimensions: make([]api.DimensionInfo, 0, len(dims)),
	}
	for _, d := range dims {
		resp.Dimensions = append(resp.Dimensions, api.DimensionInfo{
			Key:    d.Key,
			Title:  d.Title,
			Sheet:  d.Sheet,
			YLabel: d.YLabel,
		})
	}
	render.JSON(w, r, resp)
}

// GetHierarchy handles GET /api/v1/dimensions/{dim}/hierarchy
func (h *DashboardHandler) GetHierarchy(w http.ResponseWriter, r *http.Request) {
	key, err := h.dimension(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	hierarchy, err := h.service.Hierarchy(r.Context(), key)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, hierarchy)
}

// GetSources handles GET /api/v1/dimensions/{dim}/sources
func (h *DashboardHandler) GetSources(w http.ResponseWriter, r *http.Request) {
	key, err := h.dimension(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	sources, err := h.service.Sources(r.Context(), key)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.SourcesResponse{
		Dimension: key,
		Focus:     h.service.Focus(),
		Sources:   sources,
	})
}

// GetMacro handles GET /api/v1/dimensions/{dim}/macro
func (h *DashboardHandler) GetMacro(w http.ResponseWriter, r *http.Request) {
	q, err := h.bindMacro(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.MacroView(r.Context(), q)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// GetMicro handles GET /api/v1/dimensions/{dim}/micro
func (h *DashboardHandler) GetMicro(w http.ResponseWriter, r *http.Request) {
	q, err := h.bindMicro(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.MicroView(r.Context(), q)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// GetMacroPNG handles GET /api/v1/dimensions/{dim}/macro.png
func (h *DashboardHandler) GetMacroPNG(w http.ResponseWriter, r *http.Request) {
	q, err := h.bindMacro(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writePNG(w, r, func(buf io.Writer) error {
		return h.service.RenderMacro(r.Context(), q, buf)
	})
}

// GetMicroPNG handles GET /api/v1/dimensions/{dim}/micro.png
func (h *DashboardHandler) GetMicroPNG(w http.ResponseWriter, r *http.Request) {
	q, err := h.bindMicro(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writePNG(w, r, func(buf io.Writer) error {
		return h.service.RenderMicro(r.Context(), q, buf)
	})
}

// writePNG renders into memory first so a failure still yields a problem
// response instead of a truncated image.
func (h *DashboardHandler) writePNG(w http.ResponseWriter, r *http.Request, draw func(io.Writer) error) {
	var buf bytes.Buffer
	if err := draw(&buf); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write chart image",
			slog.String("error", err.Error()))
	}
}

func (h *DashboardHandler) dimension(r *http.Request) (string, error) {
	params := api.DimensionRequest{Dimension: chi.URLParam(r, "dim")}
	if err := h.validator.Struct(params); err != nil {
		return "", err
	}
	return params.Dimension, nil
}

func (h *DashboardHandler) bindMacro(r *http.Request) (services.MacroQuery, error) {
	values := r.URL.Query()
	params := api.MacroRequest{
		Dimension: chi.URLParam(r, "dim"),
		Category:  strings.TrimSpace(values.Get("category")),
		Sources:   listParam(values, "source"),
	}
	if raw := values.Get("all"); raw != "" {
		all, err := strconv.ParseBool(raw)
		if err != nil {
			return services.MacroQuery{}, apierrors.ErrValidation("all", "must be a boolean")
		}
		params.ShowAll = all
	}
	if err := h.validator.Struct(params); err != nil {
		return services.MacroQuery{}, err
	}

	return services.MacroQuery{
		Dimension: params.Dimension,
		Category:  params.Category,
		Sources:   params.Sources,
		ShowAll:   params.ShowAll,
	}, nil
}

func (h *DashboardHandler) bindMicro(r *http.Request) (services.MicroQuery, error) {
	values := r.URL.Query()
	params := api.MicroRequest{
		Dimension:     chi.URLParam(r, "dim"),
		Macro:         strings.TrimSpace(values.Get("macro")),
		Subcategories: listParam(values, "subcategory"),
		Compare:       strings.TrimSpace(values.Get("compare")),
	}
	if err := h.validator.Struct(params); err != nil {
		return services.MicroQuery{}, err
	}

	return services.MicroQuery{
		Dimension:     params.Dimension,
		Macro:         params.Macro,
		Subcategories: params.Subcategories,
		Compare:       params.Compare,
	}, nil
}

// listParam collects a repeated query parameter. An absent parameter yields
// nil; a parameter given only with empty values yields an empty selection.
func listParam(values url.Values, key string) []string {
	raw, ok := values[key]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
