package http

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"salesdash/internal/analytics"
	"salesdash/internal/config"
	"salesdash/internal/dataprocessing"
	apierrors "salesdash/internal/errors"
	"salesdash/internal/exporter"
	"salesdash/internal/services"
	"salesdash/internal/shared/testutil"
	"salesdash/internal/validation"
	api "salesdash/pkg/contracts/api/v1"
	"salesdash/pkg/contracts/domain"
)

const ventasCSV = "Fecha,Hora,Importe,Usuario,Forma de Pago\n" +
	"15/01/2024,09:15,100,Ana,Efectivo\n" +
	"15/01/2024,10:40,200,Bea,Mercado Pago\n" +
	"15/01/2024,11:05,300,Ana,Efectivo\n"

// MockDashboardService is a mock implementation of DashboardServiceInterface
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Upload(ctx context.Context, sessionID, filename string, size int64, r io.Reader) (*services.UploadSummary, error) {
	args := m.Called(sessionID, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.UploadSummary), args.Error(1)
}

func (m *MockDashboardService) View(ctx context.Context, sessionID string, metric domain.MetricID) (*services.DashboardView, error) {
	args := m.Called(sessionID, metric)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.DashboardView), args.Error(1)
}

func (m *MockDashboardService) Catalog(ctx context.Context, sessionID string) ([]domain.Metric, error) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Metric), args.Error(1)
}

func (m *MockDashboardService) Series(ctx context.Context, sessionID string, metric domain.MetricID) (*domain.Series, error) {
	args := m.Called(sessionID, metric)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Series), args.Error(1)
}

func (m *MockDashboardService) RenderChart(ctx context.Context, sessionID string, metric domain.MetricID, w io.Writer) error {
	args := m.Called(sessionID, metric)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCookie() SessionCookie {
	return SessionCookie{Name: "salesdash_session", TTL: time.Hour}
}

func newTestRouter(svc DashboardServiceInterface) http.Handler {
	errorHandler := apierrors.NewErrorHandler(testLogger(), false)
	h := NewDashboardHandler(svc, testCookie(), []string{".xlsx", ".xls", ".csv"}, testLogger(), errorHandler)

	r := chi.NewRouter()
	h.PageRoutes(r)
	r.Route("/api", h.APIRoutes)
	return r
}

func newRealService(t *testing.T, maxBytes int64) *services.DashboardService {
	t.Helper()
	cfg := config.Default()
	cfg.Upload.MaxBytes = maxBytes

	svc, err := services.NewDashboardService(services.DashboardDeps{
		Loader:    dataprocessing.NewLoader(dataprocessing.DefaultLoadOptions(), testLogger()),
		Validator: validation.NewUploadValidator(cfg.Upload, testLogger()),
		Sessions:  services.NewSessionStore(cfg.Session, testLogger()),
		Chart:     exporter.ChartOptions{Width: 480, Height: 320},
		Logger:    testLogger(),
	})
	require.NoError(t, err)
	return svc
}

func multipartRequest(t *testing.T, target, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		part, err := mw.CreateFormFile(formFileField, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func sessionCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == testCookie().Name {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", testCookie().Name)
	return nil
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestPageNoFileLoaded(t *testing.T) {
	router := newTestRouter(newRealService(t, 1<<20))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, "<title>Dashboard de Ventas - tres60 Kiosco</title>")
	assert.Contains(t, body, "Sube tu archivo Excel o CSV (Listado_Caja)")
	assert.Contains(t, body, "Por favor, sube un archivo para comenzar el análisis.")
	assert.NotContains(t, body, "Elige una métrica")
	assert.NotContains(t, body, "<img")
}

func TestUploadAndSelectRoundTrip(t *testing.T) {
	router := newTestRouter(newRealService(t, 1<<20))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartRequest(t, "/upload", "Listado_Caja.csv", ventasCSV))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	cookie := sessionCookieFrom(t, rec)
	assert.True(t, cookie.HttpOnly)

	page := httptest.NewRequest(http.MethodGet, "/?metrica=hora", nil)
	page.AddCookie(cookie)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, page)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Elige una métrica")
	assert.Contains(t, body, `<option value="hora" selected>Ventas por hora</option>`)
	assert.Contains(t, body, `src="/chart/hora.png"`)
	assert.NotContains(t, body, "Ventas por producto")

	chartReq := httptest.NewRequest(http.MethodGet, "/chart/hora.png", nil)
	chartReq.AddCookie(cookie)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, chartReq)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 480, img.Bounds().Dx())

	seriesReq := httptest.NewRequest(http.MethodGet, "/api/series/hora", nil)
	seriesReq.AddCookie(cookie)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, seriesReq)
	require.Equal(t, http.StatusOK, rec.Code)

	var series struct {
		Points []struct {
			Label string `json:"label"`
			Value string `json:"value"`
		} `json:"points"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &series))
	require.Len(t, series.Points, 3)
	assert.Equal(t, "9", series.Points[0].Label)
	assert.Equal(t, "100", series.Points[0].Value)
	assert.Equal(t, "300", series.Points[2].Value)
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(newRealService(t, 1<<20))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartRequest(t, "/api/upload", "ventas.csv", ventasCSV))
	require.Equal(t, http.StatusCreated, rec.Code)
	cookie := sessionCookieFrom(t, rec)

	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.EqualValues(t, 3, summary["rows"])
	assert.Equal(t, false, summary["has_product"])

	req := httptest.NewRequest(http.MethodGet, "/api/metrics", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var catalog api.CatalogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &catalog))
	assert.Len(t, catalog.Metrics, 5)
	assert.Equal(t, domain.MetricByDay, catalog.Default.ID)
}

func TestAPIWithoutSession(t *testing.T) {
	router := newTestRouter(newRealService(t, 1<<20))

	for _, target := range []string{"/api/metrics", "/api/series/dia", "/chart/dia.png"} {
		t.Run(target, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

			assert.Equal(t, http.StatusConflict, rec.Code)
			problem := decodeProblem(t, rec)
			assert.Equal(t, apierrors.CodeNoFileLoaded, problem["error_code"])
			assert.Equal(t, apierrors.TypeNoFileLoaded, problem["type"])
		})
	}
}

func TestUploadFormErrorsRenderPage(t *testing.T) {
	tests := []struct {
		name       string
		filename   string
		content    string
		wantStatus int
		wantText   string
	}{
		{
			name:       "missing columns",
			filename:   "ventas.csv",
			content:    "Fecha,Hora,importe,Usuario,Forma de Pago\n15/01/2024,09:00,10,Ana,Efectivo\n",
			wantStatus: http.StatusUnprocessableEntity,
			wantText:   "Faltan columnas requeridas: Total",
		},
		{
			name:       "bad date",
			filename:   "ventas.csv",
			content:    "Fecha,Hora,Total,Empleado,Forma de Pago\nayer,09:00,10,Ana,Efectivo\n",
			wantStatus: http.StatusUnprocessableEntity,
			wantText:   "(fila 2)",
		},
		{
			name:       "unsupported extension",
			filename:   "ventas.txt",
			content:    "x",
			wantStatus: http.StatusUnprocessableEntity,
			wantText:   "Formato de archivo no soportado",
		},
		{
			name:       "no file",
			wantStatus: http.StatusBadRequest,
			wantText:   "Selecciona un archivo para subir.",
		},
	}

	router := newTestRouter(newRealService(t, 1<<20))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, multipartRequest(t, "/upload", tt.filename, tt.content))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
			assert.Contains(t, rec.Body.String(), tt.wantText)
			assert.Contains(t, rec.Body.String(), "Por favor, sube un archivo para comenzar el análisis.")
		})
	}
}

func TestUploadTooLarge(t *testing.T) {
	router := newTestRouter(newRealService(t, 16))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartRequest(t, "/api/upload", "ventas.csv", ventasCSV))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	problem := decodeProblem(t, rec)
	assert.Equal(t, apierrors.CodePayloadTooLarge, problem["error_code"])
}

func TestFailedUploadKeepsLoadedTable(t *testing.T) {
	router := newTestRouter(newRealService(t, 1<<20))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartRequest(t, "/upload", "ventas.csv", ventasCSV))
	cookie := sessionCookieFrom(t, rec)

	bad := multipartRequest(t, "/upload", "mala.csv", "Fecha\n")
	bad.AddCookie(cookie)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, bad)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Elige una métrica")
	assert.Contains(t, body, "ventas.csv")
}

func TestPageUnknownMetric(t *testing.T) {
	svc := new(MockDashboardService)
	loaded := &services.DashboardView{
		Loaded:   true,
		Filename: "ventas.csv",
		Rows:     3,
		Metrics:  analytics.Catalog(&domain.TransactionTable{}),
		Selected: analytics.Default(&domain.TransactionTable{}),
	}
	svc.On("View", "", domain.MetricID("producto")).Return(nil, analytics.ErrMetricUnavailable)
	svc.On("View", "", domain.MetricID("")).Return(loaded, nil)

	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?metrica=producto", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `&#34;producto&#34; is not available`)
	assert.Contains(t, rec.Body.String(), `src="/chart/dia.png"`)
	svc.AssertExpectations(t)
}

func TestChartErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"empty series", exporter.ErrEmptySeries, http.StatusUnprocessableEntity, apierrors.CodeEmptySeries},
		{"unavailable", analytics.ErrMetricUnavailable, http.StatusNotFound, apierrors.CodeMetricUnavailable},
		{"internal", assert.AnError, http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDashboardService)
			svc.On("RenderChart", "", domain.MetricID("hora")).Return(tt.err)

			rec := httptest.NewRecorder()
			newTestRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chart/hora.png", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.NotEqual(t, "image/png", rec.Header().Get("Content-Type"))
			problem := decodeProblem(t, rec)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, problem["error_code"])
			}
			assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
			svc.AssertExpectations(t)
		})
	}
}

func TestUploadAPIUsesCookieSession(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Upload", "existing", "ventas.csv").Return(&services.UploadSummary{SessionID: "existing", Rows: 1}, nil)

	req := multipartRequest(t, "/api/upload", "ventas.csv", ventasCSV)
	req.AddCookie(&http.Cookie{Name: testCookie().Name, Value: "existing"})
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "existing", sessionCookieFrom(t, rec).Value)
	assert.False(t, strings.Contains(rec.Body.String(), "existing"), "session id stays out of the body")
	svc.AssertExpectations(t)
}

func TestUploadIgnoresPlantedSessionCookie(t *testing.T) {
	router := newTestRouter(newRealService(t, 1<<20))
	planted := &http.Cookie{Name: testCookie().Name, Value: "planted-session"}

	req := multipartRequest(t, "/api/upload", "ventas.csv", ventasCSV)
	req.AddCookie(planted)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	issued := sessionCookieFrom(t, rec)
	assert.NotEqual(t, planted.Value, issued.Value)

	series := httptest.NewRequest(http.MethodGet, "/api/series/dia", nil)
	series.AddCookie(planted)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, series)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, apierrors.CodeNoFileLoaded, decodeProblem(t, rec)["error_code"])

	series = httptest.NewRequest(http.MethodGet, "/api/series/dia", nil)
	series.AddCookie(issued)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, series)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUploadWorkbookRoundTrip(t *testing.T) {
	router := newTestRouter(newRealService(t, 1<<20))
	header := append(append([]string{}, testutil.ExportHeader...), "Producto")
	data := testutil.Workbook(t, header, [][]interface{}{
		{"15/01/2024", "09:30", 1500, "Ana", "Efectivo", "Café"},
		{"16/01/2024", "11:00", 500, "Bea", "Mercado Pago", "Agua"},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartRequest(t, "/api/upload", "Listado_Caja.xlsx", string(data)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, "xlsx", summary["format"])
	assert.Equal(t, true, summary["has_product"])

	req := httptest.NewRequest(http.MethodGet, "/api/metrics", nil)
	req.AddCookie(sessionCookieFrom(t, rec))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var catalog api.CatalogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &catalog))
	assert.Len(t, catalog.Metrics, 6)
	assert.Equal(t, domain.MetricByProduct, catalog.Default.ID)
}
