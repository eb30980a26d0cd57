package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/singleflight"

	"salesdash/internal/analytics"
	"salesdash/internal/dataprocessing"
	apperrors "salesdash/internal/errors"
	"salesdash/internal/exporter"
	"salesdash/internal/infrastructure"
	"salesdash/internal/validation"
	"salesdash/pkg/contracts/domain"
)

// DashboardDeps carries the collaborators of a DashboardService. Tracer and
// Metrics may be nil.
type DashboardDeps struct {
	Loader    *dataprocessing.Loader
	Validator *validation.UploadValidator
	Sessions  *SessionStore
	Chart     exporter.ChartOptions
	Tracer    trace.Tracer
	Metrics   *infrastructure.BusinessMetrics
	Logger    *slog.Logger
}

// DashboardService drives the two dashboard states: uploading a file into a
// session and rendering a selected metric of that session's table.
type DashboardService struct {
	loader    *dataprocessing.Loader
	validator *validation.UploadValidator
	sessions  *SessionStore
	chart     exporter.ChartOptions
	tracer    trace.Tracer
	metrics   *infrastructure.BusinessMetrics
	renders   singleflight.Group
	logger    *slog.Logger
}

// UploadSummary describes a table accepted into a session.
type UploadSummary struct {
	SessionID    string              `json:"-"`
	Filename     string              `json:"filename"`
	Format       domain.SourceFormat `json:"format"`
	Rows         int                 `json:"rows"`
	UnknownHours int                 `json:"unknown_hours"`
	HasProduct   bool                `json:"has_product"`
	Total        string              `json:"total"`
}

// DashboardView is everything the page needs for one render.
type DashboardView struct {
	Loaded   bool            `json:"loaded"`
	Filename string          `json:"filename,omitempty"`
	Rows     int             `json:"rows,omitempty"`
	Metrics  []domain.Metric `json:"metrics,omitempty"`
	Selected domain.Metric   `json:"selected"`
}

// NewDashboardService creates the service. Loader, Validator and Sessions
// are required.
func NewDashboardService(deps DashboardDeps) (*DashboardService, error) {
	if deps.Loader == nil || deps.Validator == nil || deps.Sessions == nil {
		return nil, fmt.Errorf("%w: dashboard service requires loader, validator and sessions", ErrInvalidInput)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Tracer == nil {
		deps.Tracer = tracenoop.NewTracerProvider().Tracer(infrastructure.MeterName)
	}
	return &DashboardService{
		loader:    deps.Loader,
		validator: deps.Validator,
		sessions:  deps.Sessions,
		chart:     deps.Chart,
		tracer:    deps.Tracer,
		metrics:   deps.Metrics,
		logger:    deps.Logger.With(slog.String("component", "dashboard_service")),
	}, nil
}

// Upload validates and loads an export, then stores it in the session,
// replacing any previous table. A failed upload leaves the session as it
// was. The returned summary carries the session ID in effect, which differs
// from sessionID when a new session had to be created.
func (s *DashboardService) Upload(ctx context.Context, sessionID, filename string, size int64, r io.Reader) (*UploadSummary, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.upload",
		trace.WithAttributes(
			attribute.String("upload.filename", filename),
			attribute.Int64("upload.size", size),
		))
	defer span.End()

	start := time.Now()
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")

	table, err := s.load(ctx, filename, size, r)
	err = classify(err)
	infrastructure.RecordUpload(ctx, s.metrics, format, tableLen(table), tableUnknownHours(table), time.Since(start), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	_, existed := s.sessions.Get(sessionID)
	id := s.sessions.Put(sessionID, table)
	if !existed && s.metrics != nil {
		s.metrics.SessionsTotal.Add(ctx, 1)
	}

	summary := &UploadSummary{
		SessionID:    id,
		Filename:     table.SourceName,
		Format:       table.Format,
		Rows:         table.Len(),
		UnknownHours: table.UnknownHours,
		HasProduct:   table.HasProductColumn(),
		Total:        table.Total().StringFixed(2),
	}
	span.SetAttributes(
		attribute.Int("upload.rows", summary.Rows),
		attribute.Int("upload.unknown_hours", summary.UnknownHours),
	)

	s.logger.InfoContext(ctx, "upload stored",
		slog.String("session_id", id),
		slog.String("filename", summary.Filename),
		slog.Int("rows", summary.Rows),
		slog.Bool("has_product", summary.HasProduct))

	return summary, nil
}

func (s *DashboardService) load(ctx context.Context, filename string, size int64, r io.Reader) (*domain.TransactionTable, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: upload body is required", ErrInvalidInput)
	}
	if err := s.validator.Validate(validation.Upload{Filename: filename, Size: size}); err != nil {
		return nil, err
	}
	return s.loader.Load(ctx, r, filename)
}

// View returns the dashboard state of a session. An empty metric selects
// the catalog default. A session without a table yields a view with Loaded
// false and no error.
func (s *DashboardService) View(ctx context.Context, sessionID string, metric domain.MetricID) (*DashboardView, error) {
	table, err := s.sessions.Table(sessionID)
	if errors.Is(err, ErrNoFile) {
		return &DashboardView{}, nil
	}

	selected := analytics.Default(table)
	if metric != "" {
		if selected, err = analytics.Lookup(table, metric); err != nil {
			return nil, classify(err)
		}
	}

	return &DashboardView{
		Loaded:   true,
		Filename: table.SourceName,
		Rows:     table.Len(),
		Metrics:  analytics.Catalog(table),
		Selected: selected,
	}, nil
}

// Catalog returns the metrics available for the session's table.
func (s *DashboardService) Catalog(ctx context.Context, sessionID string) ([]domain.Metric, error) {
	table, err := s.sessions.Table(sessionID)
	if err != nil {
		return nil, classify(err)
	}
	return analytics.Catalog(table), nil
}

// Series aggregates the session's table for metric.
func (s *DashboardService) Series(ctx context.Context, sessionID string, metric domain.MetricID) (*domain.Series, error) {
	table, err := s.sessions.Table(sessionID)
	if err != nil {
		return nil, classify(err)
	}
	series, err := analytics.Aggregate(table, metric)
	return series, classify(err)
}

// RenderChart writes the PNG chart of metric for the session's table.
// Concurrent identical requests against the same table share one render.
func (s *DashboardService) RenderChart(ctx context.Context, sessionID string, metric domain.MetricID, w io.Writer) error {
	ctx, span := s.tracer.Start(ctx, "dashboard.render",
		trace.WithAttributes(attribute.String("chart.metric", string(metric))))
	defer span.End()

	start := time.Now()
	png, err := s.renderPNG(ctx, sessionID, metric)
	err = classify(err)
	infrastructure.RecordRender(ctx, s.metrics, string(metric), time.Since(start), err)
	if err != nil {
		if !errors.Is(err, ErrNoFile) {
			infrastructure.RecordError(ctx, err)
		}
		return err
	}

	span.SetAttributes(attribute.Int("chart.bytes", len(png)))
	_, err = w.Write(png)
	return err
}

func (s *DashboardService) renderPNG(ctx context.Context, sessionID string, metric domain.MetricID) ([]byte, error) {
	table, err := s.sessions.Table(sessionID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s|%s|%d", sessionID, metric, table.LoadedAt.UnixNano())
	v, err, shared := s.renders.Do(key, func() (interface{}, error) {
		series, err := analytics.Aggregate(table, metric)
		if err != nil {
			return nil, err
		}
		infrastructure.AddSpanEvent(ctx, "series.aggregated", attribute.Int("points", len(series.Points)))

		var buf bytes.Buffer
		if err := exporter.RenderPNG(&buf, series, s.chart); err != nil {
			return nil, apperrors.NewRenderError("failed to render chart", err).
				WithContext("metric", string(metric))
		}
		return buf.Bytes(), nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.DebugContext(ctx, "chart render shared", slog.String("metric", string(metric)))
	}
	return v.([]byte), nil
}

func tableLen(t *domain.TransactionTable) int {
	if t == nil {
		return 0
	}
	return t.Len()
}

func tableUnknownHours(t *domain.TransactionTable) int {
	if t == nil {
		return 0
	}
	return t.UnknownHours
}
