// Package api contains the JSON contracts of the dashboard API.
// Version v1 represents the current stable API version.
package api

import (
	"salesdash/pkg/contracts/domain"
)

// CatalogResponse is the body of GET /api/metrics. Default is the metric
// the page shows when nothing is selected.
type CatalogResponse struct {
	Metrics []domain.Metric `json:"metrics"`
	Default domain.Metric   `json:"default"`
}

// NewCatalogResponse wraps a non-empty catalog; its first entry is the default.
func NewCatalogResponse(metrics []domain.Metric) CatalogResponse {
	resp := CatalogResponse{Metrics: metrics}
	if len(metrics) > 0 {
		resp.Default = metrics[0]
	}
	return resp
}
