package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/adm-pessoal/escalas-api/internal/dto"
	"github.com/adm-pessoal/escalas-api/internal/escala"
	"github.com/adm-pessoal/escalas-api/internal/models"
	appErrors "github.com/adm-pessoal/escalas-api/pkg/errors"
)

type processorDocumentStore interface {
	Create(ctx context.Context, doc *models.ScheduleFile) error
	GetByName(ctx context.Context, name string) (*models.ScheduleFile, error)
}

type translationRuleLister interface {
	ListAll(ctx context.Context) ([]models.TranslationRule, error)
}

// ProcessorServiceConfig tunes batch processing limits.
type ProcessorServiceConfig struct {
	MaxRows int
}

// ProcessorService runs the schedule engine over imported rows and persists
// the resulting documents.
type ProcessorService struct {
	documents processorDocumentStore
	rules     translationRuleLister
	cache     *CacheService
	logger    *zap.Logger
	cfg       ProcessorServiceConfig
}

// NewProcessorService constructs a ProcessorService.
func NewProcessorService(documents processorDocumentStore, rules translationRuleLister, cache *CacheService, logger *zap.Logger, cfg ProcessorServiceConfig) *ProcessorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = 5000
	}
	return &ProcessorService{
		documents: documents,
		rules:     rules,
		cache:     cache,
		logger:    logger,
		cfg:       cfg,
	}
}

// Process converts the imported rows into an exportable document and, unless
// the request is a dry run, persists it under the requested name.
func (s *ProcessorService) Process(ctx context.Context, req dto.ProcessScheduleRequest, actorID string) (*dto.ProcessScheduleResponse, error) {
	if len(req.Rows) > s.cfg.MaxRows {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("o arquivo excede o limite de %d linhas", s.cfg.MaxRows))
	}

	rows := make([]escala.Row, 0, len(req.Rows))
	for _, row := range req.Rows {
		rows = append(rows, escala.Row{
			Code:        strings.TrimSpace(row.Code),
			Name:        strings.TrimSpace(row.Name),
			Description: row.Description,
		})
	}

	result := escala.BuildSchedules(rows)
	for _, rowErr := range result.RowErrors {
		s.logger.Warn("linha descartada durante o processamento",
			zap.String("actor_id", actorID),
			zap.String("detalhe", rowErr))
	}

	payload, err := json.Marshal(result.Document)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode document")
	}

	resp := &dto.ProcessScheduleResponse{
		Document:       payload,
		EscalaCount:    len(result.Document.Escalas),
		JornadaCount:   len(result.Document.Jornadas),
		UnificationLog: result.UnificationLog,
		RowErrors:      result.RowErrors,
	}
	if req.DryRun {
		return resp, nil
	}

	if _, err := s.documents.GetByName(ctx, req.Name); err == nil {
		return nil, appErrors.ErrDocumentNameTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check document name")
	}

	doc := &models.ScheduleFile{
		Name: req.Name,
		Data: payload,
		Meta: models.ScheduleMeta{
			UnificationLog: result.UnificationLog,
			RowErrors:      result.RowErrors,
		},
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store document")
	}
	resp.DocumentID = doc.ID

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, "dash:*")
	}

	s.logger.Info("documento processado",
		zap.String("document_id", doc.ID),
		zap.String("actor_id", actorID),
		zap.Int("escalas", resp.EscalaCount),
		zap.Int("unificacoes", len(result.UnificationLog)),
		zap.Int("falhas", len(result.RowErrors)))
	return resp, nil
}

// Translate runs the rule-driven pre-pass over free-form additional-hours
// lines using the operator-authored rules currently stored.
func (s *ProcessorService) Translate(ctx context.Context, req dto.TranslateRequest) (*dto.TranslateResponse, error) {
	var engineRules []escala.Rule
	if s.rules != nil {
		stored, err := s.rules.ListAll(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load translation rules")
		}
		engineRules = make([]escala.Rule, 0, len(stored))
		for _, rule := range stored {
			engineRules = append(engineRules, engineRule(rule))
		}
	}

	lines := make([]escala.RawLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, escala.RawLine{ID: line.ID, Text: line.Text})
	}

	translated, audit := escala.Translate(lines, engineRules)
	resp := &dto.TranslateResponse{
		Lines: make([]dto.TranslatedLineOutput, 0, len(translated)),
		Audit: audit,
	}
	for _, line := range translated {
		resp.Lines = append(resp.Lines, dto.TranslatedLineOutput{ID: line.ID, Text: line.Text})
	}
	return resp, nil
}

// Preview resolves a single structured description without persisting
// anything, returning the week layout and every shift it references.
func (s *ProcessorService) Preview(ctx context.Context, req dto.PreviewRequest) (*dto.PreviewResponse, error) {
	if strings.TrimSpace(req.Description) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "descrição é obrigatória")
	}
	parseCtx := escala.NewParsingContext()
	slots, tipo := parseCtx.ParseDescription(req.Description)
	return &dto.PreviewResponse{
		Tipo:     tipo,
		Slots:    slots,
		Jornadas: parseCtx.Jornadas(),
		Carga:    escala.CalculateCargaHoraria(slots, parseCtx.Jornadas()),
	}, nil
}

// engineRule converts a stored rule into its engine representation.
func engineRule(rule models.TranslationRule) escala.Rule {
	return escala.Rule{
		Name:            rule.Name,
		Kind:            string(rule.Kind),
		Match:           rule.MatchText,
		Keywords:        []string(rule.Keywords),
		DurationMinutes: rule.DurationMinutes,
		TokenCount:      rule.TokenCount,
		NoWeekday:       rule.NoWeekday,
		Output:          rule.Output,
		Priority:        rule.Priority,
	}
}
