package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/adm-pessoal/escalas-api/internal/dto"
	"github.com/adm-pessoal/escalas-api/internal/models"
	appErrors "github.com/adm-pessoal/escalas-api/pkg/errors"
)

type ruleRepository interface {
	ListAll(ctx context.Context) ([]models.TranslationRule, error)
	GetByID(ctx context.Context, id string) (*models.TranslationRule, error)
	Create(ctx context.Context, rule *models.TranslationRule) error
	Update(ctx context.Context, rule *models.TranslationRule) error
	Delete(ctx context.Context, id string) error
}

// RuleService manages operator-authored translation rules.
type RuleService struct {
	repo   ruleRepository
	logger *zap.Logger
}

// NewRuleService constructs a RuleService.
func NewRuleService(repo ruleRepository, logger *zap.Logger) *RuleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RuleService{repo: repo, logger: logger}
}

// List returns every rule ordered by priority.
func (s *RuleService) List(ctx context.Context) ([]models.TranslationRule, error) {
	rules, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rules")
	}
	return rules, nil
}

// Get returns a single rule.
func (s *RuleService) Get(ctx context.Context, id string) (*models.TranslationRule, error) {
	rule, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrRuleNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rule")
	}
	return rule, nil
}

// Create validates and stores a new rule.
func (s *RuleService) Create(ctx context.Context, req dto.CreateRuleRequest) (*models.TranslationRule, error) {
	rule := &models.TranslationRule{
		Name:            strings.TrimSpace(req.Name),
		Kind:            req.Kind,
		MatchText:       strings.TrimSpace(req.MatchText),
		Keywords:        pq.StringArray(req.Keywords),
		DurationMinutes: req.DurationMinutes,
		TokenCount:      req.TokenCount,
		NoWeekday:       req.NoWeekday,
		Output:          req.Output,
		Priority:        req.Priority,
	}
	if err := validateRule(rule); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, rule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create rule")
	}
	s.logger.Info("regra criada", zap.String("rule_id", rule.ID), zap.String("kind", string(rule.Kind)))
	return rule, nil
}

// Update applies partial changes to an existing rule.
func (s *RuleService) Update(ctx context.Context, id string, req dto.UpdateRuleRequest) (*models.TranslationRule, error) {
	rule, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		rule.Name = strings.TrimSpace(*req.Name)
	}
	if req.Kind != nil {
		rule.Kind = *req.Kind
	}
	if req.MatchText != nil {
		rule.MatchText = strings.TrimSpace(*req.MatchText)
	}
	if req.Keywords != nil {
		rule.Keywords = pq.StringArray(req.Keywords)
	}
	if req.DurationMinutes != nil {
		rule.DurationMinutes = *req.DurationMinutes
	}
	if req.TokenCount != nil {
		rule.TokenCount = *req.TokenCount
	}
	if req.NoWeekday != nil {
		rule.NoWeekday = *req.NoWeekday
	}
	if req.Output != nil {
		rule.Output = *req.Output
	}
	if req.Priority != nil {
		rule.Priority = *req.Priority
	}
	if err := validateRule(rule); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, rule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update rule")
	}
	return rule, nil
}

// Delete removes a rule permanently.
func (s *RuleService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete rule")
	}
	return nil
}

func validateRule(rule *models.TranslationRule) error {
	if rule.Name == "" {
		return appErrors.Clone(appErrors.ErrValidation, "nome é obrigatório")
	}
	if strings.TrimSpace(rule.Output) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "saída é obrigatória")
	}
	switch rule.Kind {
	case models.RuleKindExact:
		if rule.MatchText == "" {
			return appErrors.Clone(appErrors.ErrValidation, "regra EXACT exige texto de comparação")
		}
	case models.RuleKindDuration:
		if len(rule.Keywords) == 0 && rule.DurationMinutes <= 0 {
			return appErrors.Clone(appErrors.ErrValidation, "regra DURATION exige palavras-chave ou duração")
		}
	case models.RuleKindCount:
		if rule.TokenCount <= 0 {
			return appErrors.Clone(appErrors.ErrValidation, "regra COUNT exige quantidade de horários")
		}
	default:
		return appErrors.Clone(appErrors.ErrValidation, "tipo de regra desconhecido")
	}
	return nil
}
