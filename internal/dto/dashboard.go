package dto

import "github.com/adm-pessoal/escalas-api/internal/models"

// DashboardResponse is the aggregated operator dashboard payload.
type DashboardResponse struct {
	Summary models.DashboardSummary      `json:"summary"`
	Recent  []models.ScheduleFileSummary `json:"recentDocuments"`
}
