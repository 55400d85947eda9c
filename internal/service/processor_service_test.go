package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adm-pessoal/escalas-api/internal/dto"
	"github.com/adm-pessoal/escalas-api/internal/escala"
	"github.com/adm-pessoal/escalas-api/internal/models"
	appErrors "github.com/adm-pessoal/escalas-api/pkg/errors"
)

type mockProcessorStore struct {
	existing map[string]*models.ScheduleFile
	created  []*models.ScheduleFile
}

func (m *mockProcessorStore) Create(ctx context.Context, doc *models.ScheduleFile) error {
	if doc.ID == "" {
		doc.ID = "doc-1"
	}
	m.created = append(m.created, doc)
	return nil
}

func (m *mockProcessorStore) GetByName(ctx context.Context, name string) (*models.ScheduleFile, error) {
	doc, ok := m.existing[name]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return doc, nil
}

type mockRuleLister struct {
	rules []models.TranslationRule
	err   error
}

func (m *mockRuleLister) ListAll(ctx context.Context) ([]models.TranslationRule, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.rules, nil
}

func TestProcessorServiceProcessPersists(t *testing.T) {
	store := &mockProcessorStore{}
	svc := NewProcessorService(store, &mockRuleLister{}, nil, zap.NewNop(), ProcessorServiceConfig{})

	resp, err := svc.Process(context.Background(), dto.ProcessScheduleRequest{
		Name: "Escalas Matriz",
		Rows: []dto.ScheduleRow{
			{Code: "1", Name: "ADMINISTRATIVO", Description: "SEG A SEX 08:00 AS 18:00"},
			{Code: "2", Name: "PORTARIA DIA", Description: "12X36 DIURNO 07:00 AS 19:00"},
		},
	}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", resp.DocumentID)
	assert.Equal(t, 2, resp.EscalaCount)
	assert.NotEmpty(t, resp.Document)
	require.Len(t, store.created, 1)
	assert.Equal(t, "Escalas Matriz", store.created[0].Name)
	assert.Equal(t, resp.UnificationLog, store.created[0].Meta.UnificationLog)
}

func TestProcessorServiceProcessDryRun(t *testing.T) {
	store := &mockProcessorStore{}
	svc := NewProcessorService(store, &mockRuleLister{}, nil, zap.NewNop(), ProcessorServiceConfig{})

	resp, err := svc.Process(context.Background(), dto.ProcessScheduleRequest{
		Name:   "Rascunho",
		DryRun: true,
		Rows: []dto.ScheduleRow{
			{Code: "1", Name: "ADMINISTRATIVO", Description: "SEG A SEX 08:00 AS 18:00"},
		},
	}, "user-1")
	require.NoError(t, err)
	assert.Empty(t, resp.DocumentID)
	assert.Equal(t, 1, resp.EscalaCount)
	assert.Empty(t, store.created)
}

func TestProcessorServiceProcessNameTaken(t *testing.T) {
	store := &mockProcessorStore{existing: map[string]*models.ScheduleFile{
		"Escalas Matriz": {ID: "doc-0", Name: "Escalas Matriz"},
	}}
	svc := NewProcessorService(store, &mockRuleLister{}, nil, zap.NewNop(), ProcessorServiceConfig{})

	_, err := svc.Process(context.Background(), dto.ProcessScheduleRequest{
		Name: "Escalas Matriz",
		Rows: []dto.ScheduleRow{
			{Code: "1", Name: "ADMINISTRATIVO", Description: "SEG A SEX 08:00 AS 18:00"},
		},
	}, "user-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDocumentNameTaken.Code, appErrors.FromError(err).Code)
}

func TestProcessorServiceProcessRowLimit(t *testing.T) {
	svc := NewProcessorService(&mockProcessorStore{}, &mockRuleLister{}, nil, zap.NewNop(), ProcessorServiceConfig{MaxRows: 1})

	_, err := svc.Process(context.Background(), dto.ProcessScheduleRequest{
		Name: "Grande Demais",
		Rows: []dto.ScheduleRow{
			{Code: "1", Name: "A", Description: "SEG A SEX 08:00 AS 17:00"},
			{Code: "2", Name: "B", Description: "SEG A SEX 09:00 AS 18:00"},
		},
	}, "user-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestProcessorServiceTranslateAppliesStoredRules(t *testing.T) {
	rules := &mockRuleLister{rules: []models.TranslationRule{
		{
			Name:      "Feriado",
			Kind:      models.RuleKindExact,
			MatchText: "FERIADO",
			Output:    "FOLGA",
			Priority:  1,
		},
		{
			Name:     "Intervalo padrao",
			Kind:     models.RuleKindDuration,
			Keywords: pq.StringArray{"INTERVALO"},
			Output:   "SEG A SEX {h1} AS {h2}",
			Priority: 2,
		},
	}}
	svc := NewProcessorService(&mockProcessorStore{}, rules, nil, zap.NewNop(), ProcessorServiceConfig{})

	resp, err := svc.Translate(context.Background(), dto.TranslateRequest{Lines: []dto.TranslateLineInput{
		{ID: "1", Text: "feriado"},
		{ID: "2", Text: "intervalo 12:00 13:00"},
		{ID: "3", Text: "sem horario nenhum"},
	}})
	require.NoError(t, err)
	require.Len(t, resp.Lines, 3)
	assert.Equal(t, "FOLGA", resp.Lines[0].Text)
	assert.Equal(t, "SEG A SEX 12:00 AS 13:00", resp.Lines[1].Text)
	assert.Equal(t, escala.SemInterpretacao, resp.Lines[2].Text)
	require.Len(t, resp.Audit, 3)
	assert.Contains(t, resp.Audit[0], "Feriado")
	assert.Contains(t, resp.Audit[2], escala.SemInterpretacao)
}

func TestProcessorServiceTranslateFallback(t *testing.T) {
	svc := NewProcessorService(&mockProcessorStore{}, &mockRuleLister{}, nil, zap.NewNop(), ProcessorServiceConfig{})

	resp, err := svc.Translate(context.Background(), dto.TranslateRequest{Lines: []dto.TranslateLineInput{
		{ID: "1", Text: "08:00 as 17:00"},
	}})
	require.NoError(t, err)
	require.Len(t, resp.Lines, 1)
	assert.Contains(t, resp.Lines[0].Text, "08:00 AS 17:00")
	assert.Contains(t, resp.Audit[0], "heurística genérica")
}

func TestProcessorServicePreview(t *testing.T) {
	svc := NewProcessorService(&mockProcessorStore{}, &mockRuleLister{}, nil, zap.NewNop(), ProcessorServiceConfig{})

	resp, err := svc.Preview(context.Background(), dto.PreviewRequest{Description: "SEG A SEX 08:00 AS 18:00"})
	require.NoError(t, err)
	assert.Equal(t, escala.TipoSemanal, resp.Tipo)
	assert.Len(t, resp.Slots, 7)
	assert.Equal(t, "45", resp.Carga)
	assert.NotEmpty(t, resp.Jornadas)
}

func TestProcessorServicePreviewEmptyDescription(t *testing.T) {
	svc := NewProcessorService(&mockProcessorStore{}, &mockRuleLister{}, nil, zap.NewNop(), ProcessorServiceConfig{})

	_, err := svc.Preview(context.Background(), dto.PreviewRequest{Description: "   "})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
