package http

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"unistats/internal/charts"
	apierrors "unistats/internal/errors"
	ws "unistats/internal/websocket"
	api "unistats/pkg/contracts/api/v1"
)

//go:embed templates/index.html.tmpl
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html.tmpl"))

// PageTitle heads the dashboard page.
const PageTitle = "University Statistics Dashboard"

type pageData struct {
	Title      string
	Focus      string
	FocusLabel string
	UpdateType string
	Dimensions []api.DimensionInfo
}

// PageHandler serves the interactive dashboard page.
type PageHandler struct {
	service      DashboardService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewPageHandler creates a new page handler
func NewPageHandler(service DashboardService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *PageHandler {
	return &PageHandler{
		service:      service,
		logger:       logger.With(slog.String("handler", "page")),
		errorHandler: errorHandler,
	}
}

// ServeHTTP handles GET /
func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	focus := h.service.Focus()
	data := pageData{
		Title:      PageTitle,
		Focus:      focus,
		FocusLabel: charts.DisplayName(focus),
		UpdateType: ws.TypeDataUpdate,
	}
	for _, d := range h.service.Dimensions() {
		data.Dimensions = append(data.Dimensions, api.DimensionInfo{
			Key:    d.Key,
			Title:  d.Title,
			Sheet:  d.Sheet,
			YLabel: d.YLabel,
		})
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, data); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to render page",
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = buf.WriteTo(w)
}
