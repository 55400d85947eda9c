package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/adm-pessoal/escalas-api/internal/dto"
	"github.com/adm-pessoal/escalas-api/internal/models"
	appErrors "github.com/adm-pessoal/escalas-api/pkg/errors"
)

type contentTotalsProvider interface {
	ContentTotals(ctx context.Context) (documents, escalas, jornadas int, err error)
	List(ctx context.Context, filter models.ScheduleFileFilter) ([]models.ScheduleFileSummary, int, error)
}

type ruleCounter interface {
	Count(ctx context.Context) (int, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL    time.Duration
	RecentLimit int
}

// DashboardService composes the operator dashboard payload.
type DashboardService struct {
	documents contentTotalsProvider
	rules     ruleCounter
	cache     *CacheService
	logger    *zap.Logger
	now       func() time.Time
	cfg       DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(documents contentTotalsProvider, rules ruleCounter, cache *CacheService, logger *zap.Logger, cfg DashboardServiceConfig) *DashboardService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		documents: documents,
		rules:     rules,
		cache:     cache,
		logger:    logger,
		now:       time.Now,
		cfg:       cfg,
	}
}

// Summary returns the aggregated dashboard and indicates cache utilisation.
func (s *DashboardService) Summary(ctx context.Context) (*dto.DashboardResponse, bool, error) {
	const cacheKey = "dash:summary"
	if s.cache != nil {
		var cached dto.DashboardResponse
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			return nil, false, err
		}
		if hit {
			return &cached, true, nil
		}
	}

	summary, err := s.compose(ctx)
	if err != nil {
		return nil, false, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, summary, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return summary, false, nil
}

func (s *DashboardService) compose(ctx context.Context) (*dto.DashboardResponse, error) {
	documents, escalas, jornadas, err := s.documents.ContentTotals(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate content totals")
	}

	ruleTotal := 0
	if s.rules != nil {
		ruleTotal, err = s.rules.Count(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count rules")
		}
	}

	recent, _, err := s.documents.List(ctx, models.ScheduleFileFilter{Page: 1, PageSize: s.cfg.RecentLimit})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list recent documents")
	}

	return &dto.DashboardResponse{
		Summary: models.DashboardSummary{
			Documents:   documents,
			Escalas:     escalas,
			Jornadas:    jornadas,
			Rules:       ruleTotal,
			GeneratedAt: s.now().UTC(),
		},
		Recent: recent,
	}, nil
}
