package http

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "salesdash/internal/errors"
	"salesdash/internal/services"
	api "salesdash/pkg/contracts/api/v1"
	"salesdash/pkg/contracts/domain"
)

// Page copy
const (
	PageTitle    = "Dashboard de Ventas - tres60 Kiosco"
	UploadPrompt = "Sube tu archivo Excel o CSV (Listado_Caja)"
)

const (
	formFileField = "archivo"
	metricQuery   = "metrica"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboardTemplate = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

// pageData feeds templates/dashboard.html
type pageData struct {
	Title        string
	UploadPrompt string
	Accept       string
	Notice       string
	Error        string
	View         *services.DashboardView
	ChartURL     string
}

// DashboardHandler serves the dashboard page, the upload form target, chart
// images and the JSON API over the same session.
type DashboardHandler struct {
	service      DashboardServiceInterface
	cookie       SessionCookie
	accept       string
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewDashboardHandler creates a new dashboard handler. allowedExtensions
// feeds the accept attribute of the file input.
func NewDashboardHandler(service DashboardServiceInterface, cookie SessionCookie, allowedExtensions []string, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		cookie:       cookie,
		accept:       strings.Join(allowedExtensions, ","),
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
	}
}

// PageRoutes mounts the browser-facing routes
func (h *DashboardHandler) PageRoutes(r chi.Router) {
	r.Get("/", h.Page)
	r.Post("/upload", h.UploadForm)
	r.Get("/chart/{metric}.png", h.Chart)
}

// APIRoutes mounts the JSON routes on r, which is expected to be the /api
// subrouter
func (h *DashboardHandler) APIRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Post("/upload", h.UploadAPI)
		r.Get("/metrics", h.Metrics)
		r.Get("/series/{metric}", h.Series)
	})
}

// Page handles GET /
func (h *DashboardHandler) Page(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := h.cookie.ID(r)
	metric := domain.MetricID(r.URL.Query().Get(metricQuery))

	view, err := h.service.View(ctx, sessionID, metric)
	if err != nil {
		// Unknown selection: show the default chart with the error above it.
		apiErr := toAPIError(err, string(metric))
		view, err = h.service.View(ctx, sessionID, "")
		if err != nil {
			h.renderPage(w, r, http.StatusInternalServerError, nil, toAPIError(err, ""))
			return
		}
		h.renderPage(w, r, statusOf(apiErr), view, apiErr)
		return
	}

	h.renderPage(w, r, http.StatusOK, view, nil)
}

// UploadForm handles POST /upload from the page form. Success redirects to
// the page; failures re-render it with the reason and the previous state.
func (h *DashboardHandler) UploadForm(w http.ResponseWriter, r *http.Request) {
	_, sessionID, err := h.upload(w, r)
	if err != nil {
		apiErr := toAPIError(err, "")
		view, viewErr := h.service.View(r.Context(), sessionID, "")
		if viewErr != nil {
			view = &services.DashboardView{}
		}
		h.renderPage(w, r, statusOf(apiErr), view, apiErr)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// UploadAPI handles POST /api/upload
func (h *DashboardHandler) UploadAPI(w http.ResponseWriter, r *http.Request) {
	summary, _, err := h.upload(w, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, toAPIError(err, ""))
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, summary)
}

// upload reads the multipart file and stores it. The returned session ID is
// the one in effect afterwards.
func (h *DashboardHandler) upload(w http.ResponseWriter, r *http.Request) (*services.UploadSummary, string, error) {
	sessionID := h.cookie.ID(r)

	file, header, err := r.FormFile(formFileField)
	if err != nil {
		return nil, sessionID, err
	}
	defer file.Close()

	summary, err := h.service.Upload(r.Context(), sessionID, header.Filename, header.Size, file)
	if err != nil {
		return nil, sessionID, err
	}
	h.cookie.Set(w, summary.SessionID)
	return summary, summary.SessionID, nil
}

// Chart handles GET /chart/{metric}.png
func (h *DashboardHandler) Chart(w http.ResponseWriter, r *http.Request) {
	metric := chi.URLParam(r, "metric")

	var buf bytes.Buffer
	if err := h.service.RenderChart(r.Context(), h.cookie.ID(r), domain.MetricID(metric), &buf); err != nil {
		h.errorHandler.HandleError(w, r, toAPIError(err, metric))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "chart write failed",
			slog.String("metric", metric),
			slog.String("error", err.Error()))
	}
}

// Metrics handles GET /api/metrics
func (h *DashboardHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.service.Catalog(r.Context(), h.cookie.ID(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, toAPIError(err, ""))
		return
	}
	render.JSON(w, r, api.NewCatalogResponse(metrics))
}

// Series handles GET /api/series/{metric}
func (h *DashboardHandler) Series(w http.ResponseWriter, r *http.Request) {
	metric := chi.URLParam(r, "metric")

	series, err := h.service.Series(r.Context(), h.cookie.ID(r), domain.MetricID(metric))
	if err != nil {
		h.errorHandler.HandleError(w, r, toAPIError(err, metric))
		return
	}
	render.JSON(w, r, series)
}

func (h *DashboardHandler) renderPage(w http.ResponseWriter, r *http.Request, status int, view *services.DashboardView, pageErr error) {
	if view == nil {
		view = &services.DashboardView{}
	}
	data := pageData{
		Title:        PageTitle,
		UploadPrompt: UploadPrompt,
		Accept:       h.accept,
		Notice:       apierrors.ErrNoFileLoaded.Message,
		View:         view,
	}
	if view.Loaded {
		data.ChartURL = "/chart/" + url.PathEscape(string(view.Selected.ID)) + ".png"
	}
	if pageErr != nil {
		data.Error = userMessage(pageErr)
		h.logger.WarnContext(r.Context(), "dashboard page error",
			slog.Int("status", status),
			slog.String("error", pageErr.Error()))
	}

	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, data); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func statusOf(err error) int {
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return http.StatusInternalServerError
}

// userMessage hides internal error text from the page.
func userMessage(err error) string {
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "Ocurrió un error inesperado."
}
