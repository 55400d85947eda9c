package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adm-pessoal/escalas-api/internal/dto"
	"github.com/adm-pessoal/escalas-api/internal/models"
)

type dashboardServiceMock struct {
	resp     *dto.DashboardResponse
	cacheHit bool
	err      error
}

func (m *dashboardServiceMock) Summary(ctx context.Context) (*dto.DashboardResponse, bool, error) {
	return m.resp, m.cacheHit, m.err
}

func TestDashboardHandlerSummary(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &dashboardServiceMock{
		resp: &dto.DashboardResponse{
			Summary: models.DashboardSummary{Documents: 3, Escalas: 120, Jornadas: 54, Rules: 12},
		},
		cacheHit: true,
	}
	handler := NewDashboardHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/dashboard", nil)

	handler.Summary(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.DashboardResponse  `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 3, envelope.Data.Summary.Documents)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
}

func TestDashboardHandlerSummaryNilService(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(nil)

	c, w := newGinContext(http.MethodGet, "/dashboard", nil)

	handler.Summary(c)
	require.Equal(t, http.StatusInternalServerError, w.Code)
}
