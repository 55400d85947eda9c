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
	"github.com/adm-pessoal/escalas-api/internal/middleware"
	"github.com/adm-pessoal/escalas-api/internal/models"
)

type processorServiceMock struct {
	processResp   *dto.ProcessScheduleResponse
	processErr    error
	translateResp *dto.TranslateResponse
	translateErr  error
	previewResp   *dto.PreviewResponse
	previewErr    error
	lastActorID   string
}

func (m *processorServiceMock) Process(ctx context.Context, req dto.ProcessScheduleRequest, actorID string) (*dto.ProcessScheduleResponse, error) {
	m.lastActorID = actorID
	return m.processResp, m.processErr
}

func (m *processorServiceMock) Translate(ctx context.Context, req dto.TranslateRequest) (*dto.TranslateResponse, error) {
	return m.translateResp, m.translateErr
}

func (m *processorServiceMock) Preview(ctx context.Context, req dto.PreviewRequest) (*dto.PreviewResponse, error) {
	return m.previewResp, m.previewErr
}

func TestProcessorHandlerProcessSchedules(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &processorServiceMock{
		processResp: &dto.ProcessScheduleResponse{DocumentID: "doc-1", EscalaCount: 2},
	}
	handler := NewProcessorHandler(mockSvc)

	payload, _ := json.Marshal(dto.ProcessScheduleRequest{
		Name: "Escalas Matriz",
		Rows: []dto.ScheduleRow{{Code: "1", Name: "ADMINISTRATIVO", Description: "SEG A SEX 08:00 AS 18:00"}},
	})
	c, w := newGinContext(http.MethodPost, "/processor/schedules", payload)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleOperador})

	handler.ProcessSchedules(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "user-1", mockSvc.lastActorID)
}

func TestProcessorHandlerProcessSchedulesDryRun(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &processorServiceMock{processResp: &dto.ProcessScheduleResponse{EscalaCount: 1}}
	handler := NewProcessorHandler(mockSvc)

	payload, _ := json.Marshal(dto.ProcessScheduleRequest{
		Name:   "Rascunho",
		DryRun: true,
		Rows:   []dto.ScheduleRow{{Code: "1", Name: "A", Description: "SEG A SEX 08:00 AS 18:00"}},
	})
	c, w := newGinContext(http.MethodPost, "/processor/schedules", payload)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleOperador})

	handler.ProcessSchedules(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestProcessorHandlerProcessSchedulesUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewProcessorHandler(&processorServiceMock{})

	c, w := newGinContext(http.MethodPost, "/processor/schedules", []byte(`{}`))

	handler.ProcessSchedules(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProcessorHandlerTranslate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &processorServiceMock{
		translateResp: &dto.TranslateResponse{
			Lines: []dto.TranslatedLineOutput{{ID: "1", Text: "SEG A SEX 08:00 AS 17:00"}},
			Audit: []string{"linha 1: traduzida pela heurística genérica"},
		},
	}
	handler := NewProcessorHandler(mockSvc)

	payload, _ := json.Marshal(dto.TranslateRequest{Lines: []dto.TranslateLineInput{{ID: "1", Text: "08:00 as 17:00"}}})
	c, w := newGinContext(http.MethodPost, "/processor/translate", payload)

	handler.Translate(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestProcessorHandlerPreview(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &processorServiceMock{
		previewResp: &dto.PreviewResponse{Tipo: "SEMANAL", Carga: "45"},
	}
	handler := NewProcessorHandler(mockSvc)

	payload, _ := json.Marshal(dto.PreviewRequest{Description: "SEG A SEX 08:00 AS 18:00"})
	c, w := newGinContext(http.MethodPost, "/processor/preview", payload)

	handler.Preview(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.PreviewResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "45", envelope.Data.Carga)
}
