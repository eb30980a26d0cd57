package http

import (
	"context"
	"io"

	"salesdash/internal/services"
	"salesdash/pkg/contracts/domain"
)

// DashboardServiceInterface defines the dashboard operations used by handlers
type DashboardServiceInterface interface {
	Upload(ctx context.Context, sessionID, filename string, size int64, r io.Reader) (*services.UploadSummary, error)
	View(ctx context.Context, sessionID string, metric domain.MetricID) (*services.DashboardView, error)
	Catalog(ctx context.Context, sessionID string) ([]domain.Metric, error)
	Series(ctx context.Context, sessionID string, metric domain.MetricID) (*domain.Series, error)
	RenderChart(ctx context.Context, sessionID string, metric domain.MetricID, w io.Writer) error
}
