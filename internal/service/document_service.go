package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	sqlxtypes "github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/adm-pessoal/escalas-api/internal/dto"
	"github.com/adm-pessoal/escalas-api/internal/escala"
	"github.com/adm-pessoal/escalas-api/internal/models"
	appErrors "github.com/adm-pessoal/escalas-api/pkg/errors"
	"github.com/adm-pessoal/escalas-api/pkg/export"
)

type documentRepository interface {
	Create(ctx context.Context, doc *models.ScheduleFile) error
	GetByID(ctx context.Context, id string) (*models.ScheduleFile, error)
	GetByName(ctx context.Context, name string) (*models.ScheduleFile, error)
	List(ctx context.Context, filter models.ScheduleFileFilter) ([]models.ScheduleFileSummary, int, error)
	Update(ctx context.Context, doc *models.ScheduleFile) error
	Delete(ctx context.Context, id string) error
}

// DocumentService manages stored schedule documents.
type DocumentService struct {
	repo   documentRepository
	cache  *CacheService
	csv    csvRenderer
	logger *zap.Logger
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(repo documentRepository, cache *CacheService, csv csvRenderer, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	return &DocumentService{repo: repo, cache: cache, csv: csv, logger: logger}
}

// Create stores an externally produced document bundle after validating its
// shape.
func (s *DocumentService) Create(ctx context.Context, req dto.CreateDocumentRequest) (*models.ScheduleFile, error) {
	if _, err := decodeBundle(req.Data); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "documento inválido: "+err.Error())
	}
	if err := s.ensureNameFree(ctx, req.Name, ""); err != nil {
		return nil, err
	}
	doc := &models.ScheduleFile{Name: req.Name, Data: sqlxtypes.JSONText(req.Data)}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store document")
	}
	s.invalidateDashboard(ctx)
	return doc, nil
}

// Get returns a document by identifier.
func (s *DocumentService) Get(ctx context.Context, id string) (*models.ScheduleFile, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrDocumentNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	return doc, nil
}

// List returns document summaries plus pagination metadata.
func (s *DocumentService) List(ctx context.Context, filter models.ScheduleFileFilter) ([]models.ScheduleFileSummary, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	summaries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return summaries, pagination, nil
}

// Update renames a document or replaces its content.
func (s *DocumentService) Update(ctx context.Context, id string, req dto.UpdateDocumentRequest) (*models.ScheduleFile, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil && *req.Name != doc.Name {
		if err := s.ensureNameFree(ctx, *req.Name, id); err != nil {
			return nil, err
		}
		doc.Name = *req.Name
	}
	if len(req.Data) > 0 {
		if _, err := decodeBundle(req.Data); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "documento inválido: "+err.Error())
		}
		doc.Data = sqlxtypes.JSONText(req.Data)
	}
	if err := s.repo.Update(ctx, doc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update document")
	}
	s.invalidateDashboard(ctx)
	return doc, nil
}

// Delete removes a document permanently.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete document")
	}
	s.invalidateDashboard(ctx)
	return nil
}

// ExportSubset returns the document bundle restricted to the requested escala
// codes, with the shift dictionary pruned to the shifts those escalas still
// reference. An empty code list exports the full bundle.
func (s *DocumentService) ExportSubset(ctx context.Context, id string, codes []string) (json.RawMessage, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	bundle, err := decodeBundle(doc.Data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stored document is corrupt")
	}
	if len(codes) > 0 {
		wanted := make(map[string]bool, len(codes))
		for _, code := range codes {
			wanted[code] = true
		}
		kept := make([]escala.Escala, 0, len(codes))
		for _, esc := range bundle.Escalas {
			if wanted[esc.Codigo] {
				kept = append(kept, esc)
			}
		}
		if len(kept) == 0 {
			return nil, appErrors.ErrEscalaNotFound
		}
		bundle.Escalas = kept
	}
	pruneJornadas(bundle)

	payload, err := json.Marshal(bundle)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode export")
	}
	return payload, nil
}

// ExportListingCSV renders the document listing (name plus content counts) as
// a CSV download.
func (s *DocumentService) ExportListingCSV(ctx context.Context) ([]byte, error) {
	summaries, _, err := s.repo.List(ctx, models.ScheduleFileFilter{Page: 1, PageSize: 100})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}
	rows := make([]map[string]string, 0, len(summaries))
	for _, summary := range summaries {
		rows = append(rows, map[string]string{
			"Documento":     summary.Name,
			"Escalas":       strconv.Itoa(summary.EscalaCount),
			"Atualizado em": summary.UpdatedAt.UTC().Format("2006-01-02 15:04"),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Documento", "Escalas", "Atualizado em"},
		Rows:    rows,
	}
	return s.csv.Render(dataset)
}

// Duplicate clones a document for a sister company. Every escala and every
// non-sentinel jornada in the copy receives a fresh key. The copy can be
// restricted to selected escala codes and its escala names prefixed.
func (s *DocumentService) Duplicate(ctx context.Context, id string, req dto.DuplicateDocumentRequest) (*models.ScheduleFile, error) {
	source, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, req.Name, ""); err != nil {
		return nil, err
	}
	bundle, err := decodeBundle(source.Data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stored document is corrupt")
	}

	if len(req.Codes) > 0 {
		wanted := make(map[string]bool, len(req.Codes))
		for _, code := range req.Codes {
			wanted[code] = true
		}
		kept := make([]escala.Escala, 0, len(req.Codes))
		for _, esc := range bundle.Escalas {
			if wanted[esc.Codigo] {
				kept = append(kept, esc)
			}
		}
		if len(kept) == 0 {
			return nil, appErrors.ErrEscalaNotFound
		}
		bundle.Escalas = kept
		pruneJornadas(bundle)
	}

	rekey := make(map[string]string, len(bundle.Jornadas))
	rekey[escala.KeyFolga] = escala.KeyFolga
	rekey[escala.KeyDSR] = escala.KeyDSR
	jornadas := make(map[string]escala.Jornada, len(bundle.Jornadas))
	for key, jornada := range bundle.Jornadas {
		fresh, ok := rekey[key]
		if !ok {
			fresh = escala.NewKey()
			rekey[key] = fresh
		}
		jornada.Key = fresh
		jornadas[fresh] = jornada
	}
	bundle.Jornadas = jornadas

	for i := range bundle.Escalas {
		bundle.Escalas[i].Key = escala.NewKey()
		if req.Prefix != "" {
			bundle.Escalas[i].Nome = req.Prefix + bundle.Escalas[i].Nome
		}
		for j, slot := range bundle.Escalas[i].Jornadas {
			if fresh, ok := rekey[slot]; ok {
				bundle.Escalas[i].Jornadas[j] = fresh
			}
		}
	}

	payload, err := json.Marshal(bundle)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode duplicate")
	}
	copyDoc := &models.ScheduleFile{Name: req.Name, Data: sqlxtypes.JSONText(payload), Meta: source.Meta}
	if err := s.repo.Create(ctx, copyDoc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store duplicate")
	}
	s.invalidateDashboard(ctx)
	s.logger.Info("documento duplicado",
		zap.String("source_id", source.ID),
		zap.String("copy_id", copyDoc.ID))
	return copyDoc, nil
}

func (s *DocumentService) ensureNameFree(ctx context.Context, name, selfID string) error {
	existing, err := s.repo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check document name")
	}
	if existing.ID == selfID {
		return nil
	}
	return appErrors.ErrDocumentNameTaken
}

func (s *DocumentService) invalidateDashboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "dash:*"); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

// decodeBundle parses a stored document payload and checks its basic shape.
func decodeBundle(data []byte) (*escala.Document, error) {
	var bundle escala.Document
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("decode document bundle: %w", err)
	}
	if bundle.Jornadas == nil {
		return nil, fmt.Errorf("documento sem dicionário de jornadas")
	}
	return &bundle, nil
}

// pruneJornadas drops shift entries no retained escala references, keeping
// the two sentinels.
func pruneJornadas(bundle *escala.Document) {
	used := map[string]bool{escala.KeyFolga: true, escala.KeyDSR: true}
	for _, esc := range bundle.Escalas {
		for _, key := range esc.Jornadas {
			used[key] = true
		}
	}
	for key := range bundle.Jornadas {
		if !used[key] {
			delete(bundle.Jornadas, key)
		}
	}
}
