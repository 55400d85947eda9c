package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adm-pessoal/escalas-api/internal/dto"
	appErrors "github.com/adm-pessoal/escalas-api/pkg/errors"
	"github.com/adm-pessoal/escalas-api/pkg/response"
)

type processorService interface {
	Process(ctx context.Context, req dto.ProcessScheduleRequest, actorID string) (*dto.ProcessScheduleResponse, error)
	Translate(ctx context.Context, req dto.TranslateRequest) (*dto.TranslateResponse, error)
	Preview(ctx context.Context, req dto.PreviewRequest) (*dto.PreviewResponse, error)
}

// ProcessorHandler exposes the schedule engine over HTTP.
type ProcessorHandler struct {
	service processorService
}

// NewProcessorHandler constructs the handler.
func NewProcessorHandler(service processorService) *ProcessorHandler {
	return &ProcessorHandler{service: service}
}

// ProcessSchedules godoc
// @Summary Process imported schedule rows
// @Description Runs the schedule engine over imported rows and stores the resulting document
// @Tags Processor
// @Accept json
// @Produce json
// @Param payload body dto.ProcessScheduleRequest true "Rows to process"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /processor/schedules [post]
func (h *ProcessorHandler) ProcessSchedules(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ProcessScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid processing payload"))
		return
	}

	res, err := h.service.Process(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	status := http.StatusCreated
	if req.DryRun {
		status = http.StatusOK
	}
	response.JSON(c, status, res, nil)
}

// Translate godoc
// @Summary Translate free-form shift descriptions
// @Description Converts raw additional-hours lines into the structured syntax using stored rules
// @Tags Processor
// @Accept json
// @Produce json
// @Param payload body dto.TranslateRequest true "Lines to translate"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /processor/translate [post]
func (h *ProcessorHandler) Translate(c *gin.Context) {
	var req dto.TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid translate payload"))
		return
	}

	res, err := h.service.Translate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Preview godoc
// @Summary Preview a single description
// @Description Resolves one structured description into its week layout without persisting anything
// @Tags Processor
// @Accept json
// @Produce json
// @Param payload body dto.PreviewRequest true "Description to preview"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /processor/preview [post]
func (h *ProcessorHandler) Preview(c *gin.Context) {
	var req dto.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid preview payload"))
		return
	}

	res, err := h.service.Preview(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}
