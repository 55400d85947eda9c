package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/adm-pessoal/escalas-api/internal/dto"
	"github.com/adm-pessoal/escalas-api/internal/models"
	appErrors "github.com/adm-pessoal/escalas-api/pkg/errors"
	"github.com/adm-pessoal/escalas-api/pkg/response"
)

type documentService interface {
	Create(ctx context.Context, req dto.CreateDocumentRequest) (*models.ScheduleFile, error)
	Get(ctx context.Context, id string) (*models.ScheduleFile, error)
	List(ctx context.Context, filter models.ScheduleFileFilter) ([]models.ScheduleFileSummary, *models.Pagination, error)
	Update(ctx context.Context, id string, req dto.UpdateDocumentRequest) (*models.ScheduleFile, error)
	Delete(ctx context.Context, id string) error
	Duplicate(ctx context.Context, id string, req dto.DuplicateDocumentRequest) (*models.ScheduleFile, error)
	ExportSubset(ctx context.Context, id string, codes []string) (json.RawMessage, error)
	ExportListingCSV(ctx context.Context) ([]byte, error)
}

// DocumentHandler exposes stored document management endpoints.
type DocumentHandler struct {
	service documentService
}

// NewDocumentHandler constructs the handler.
func NewDocumentHandler(service documentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// Create godoc
// @Summary Store a document bundle
// @Tags Documents
// @Accept json
// @Produce json
// @Param payload body dto.CreateDocumentRequest true "Document payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /documents [post]
func (h *DocumentHandler) Create(c *gin.Context) {
	var req dto.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid document payload"))
		return
	}

	doc, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, doc)
}

// List godoc
// @Summary List stored documents
// @Tags Documents
// @Produce json
// @Param search query string false "Filter by name"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	filter := models.ScheduleFileFilter{
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     page,
		PageSize: pageSize,
	}

	summaries, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, summaries, pagination)
}

// Get godoc
// @Summary Get a document
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /documents/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, doc, nil)
}

// Update godoc
// @Summary Rename a document or replace its content
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param payload body dto.UpdateDocumentRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /documents/{id} [put]
func (h *DocumentHandler) Update(c *gin.Context) {
	var req dto.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid update payload"))
		return
	}

	doc, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, doc, nil)
}

// Delete godoc
// @Summary Delete a document
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Duplicate godoc
// @Summary Duplicate a document under a new name
// @Description Clones the document, issuing fresh keys for every escala and jornada
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param payload body dto.DuplicateDocumentRequest true "Duplicate payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /documents/{id}/duplicate [post]
func (h *DocumentHandler) Duplicate(c *gin.Context) {
	var req dto.DuplicateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid duplicate payload"))
		return
	}

	doc, err := h.service.Duplicate(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, doc)
}

// Export godoc
// @Summary Export a document bundle
// @Description Downloads the bundle restricted to the requested escala codes; an empty list exports everything
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param payload body dto.ExportDocumentRequest true "Codes to export"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /documents/{id}/export [post]
func (h *DocumentHandler) Export(c *gin.Context) {
	var req dto.ExportDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
		return
	}

	payload, err := h.service.ExportSubset(c.Request.Context(), c.Param("id"), req.Codes)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="documento.json"`)
	c.Data(http.StatusOK, "application/json", payload)
}

// ExportListing godoc
// @Summary Export the document listing as CSV
// @Tags Documents
// @Produce text/csv
// @Success 200 {string} string "CSV content"
// @Router /documents/listing.csv [get]
func (h *DocumentHandler) ExportListing(c *gin.Context) {
	payload, err := h.service.ExportListingCSV(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="documentos.csv"`)
	c.Data(http.StatusOK, "text/csv", payload)
}
