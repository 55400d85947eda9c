package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adm-pessoal/escalas-api/internal/dto"
	"github.com/adm-pessoal/escalas-api/internal/escala"
	"github.com/adm-pessoal/escalas-api/internal/models"
	appErrors "github.com/adm-pessoal/escalas-api/pkg/errors"
)

type mockDocumentRepo struct {
	docs      map[string]*models.ScheduleFile
	updateErr error
	deleted   []string
}

func newMockDocumentRepo() *mockDocumentRepo {
	return &mockDocumentRepo{docs: make(map[string]*models.ScheduleFile)}
}

func (m *mockDocumentRepo) Create(ctx context.Context, doc *models.ScheduleFile) error {
	if doc.ID == "" {
		doc.ID = fmt.Sprintf("doc-%d", len(m.docs)+1)
	}
	m.docs[doc.ID] = doc
	return nil
}

func (m *mockDocumentRepo) GetByID(ctx context.Context, id string) (*models.ScheduleFile, error) {
	doc, ok := m.docs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return doc, nil
}

func (m *mockDocumentRepo) GetByName(ctx context.Context, name string) (*models.ScheduleFile, error) {
	for _, doc := range m.docs {
		if doc.Name == name {
			return doc, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockDocumentRepo) List(ctx context.Context, filter models.ScheduleFileFilter) ([]models.ScheduleFileSummary, int, error) {
	summaries := make([]models.ScheduleFileSummary, 0, len(m.docs))
	for _, doc := range m.docs {
		summaries = append(summaries, models.ScheduleFileSummary{ID: doc.ID, Name: doc.Name, UpdatedAt: time.Now()})
	}
	return summaries, len(summaries), nil
}

func (m *mockDocumentRepo) Update(ctx context.Context, doc *models.ScheduleFile) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.docs[doc.ID] = doc
	return nil
}

func (m *mockDocumentRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.docs, id)
	return nil
}

// sampleBundle builds a real engine document with two escalas so service
// tests exercise genuine keys and the pruned shift dictionary.
func sampleBundle(t *testing.T) []byte {
	t.Helper()
	result := escala.BuildSchedules([]escala.Row{
		{Code: "100", Name: "ADMINISTRATIVO", Description: "SEG A SEX 08:00 AS 18:00"},
		{Code: "200", Name: "PORTARIA DIA", Description: "12X36 DIURNO 07:00 AS 19:00"},
	})
	payload, err := json.Marshal(result.Document)
	require.NoError(t, err)
	return payload
}

func TestDocumentServiceCreateValidatesBundle(t *testing.T) {
	repo := newMockDocumentRepo()
	svc := NewDocumentService(repo, nil, nil, zap.NewNop())

	doc, err := svc.Create(context.Background(), dto.CreateDocumentRequest{Name: "Escalas Matriz", Data: sampleBundle(t)})
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)

	_, err = svc.Create(context.Background(), dto.CreateDocumentRequest{Name: "Quebrado", Data: json.RawMessage(`{"escalas":[]}`)})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDocumentServiceCreateNameTaken(t *testing.T) {
	repo := newMockDocumentRepo()
	svc := NewDocumentService(repo, nil, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), dto.CreateDocumentRequest{Name: "Escalas Matriz", Data: sampleBundle(t)})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), dto.CreateDocumentRequest{Name: "Escalas Matriz", Data: sampleBundle(t)})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDocumentNameTaken.Code, appErrors.FromError(err).Code)
}

func TestDocumentServiceGetNotFound(t *testing.T) {
	svc := NewDocumentService(newMockDocumentRepo(), nil, nil, zap.NewNop())

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDocumentNotFound.Code, appErrors.FromError(err).Code)
}

func TestDocumentServiceListClampsPagination(t *testing.T) {
	repo := newMockDocumentRepo()
	repo.docs["d1"] = &models.ScheduleFile{ID: "d1", Name: "Um"}
	svc := NewDocumentService(repo, nil, nil, zap.NewNop())

	_, pagination, err := svc.List(context.Background(), models.ScheduleFileFilter{Page: 0, PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 1, pagination.TotalCount)
}

func TestDocumentServiceUpdateRename(t *testing.T) {
	repo := newMockDocumentRepo()
	repo.docs["d1"] = &models.ScheduleFile{ID: "d1", Name: "Antigo", Data: types.JSONText(sampleBundle(t))}
	svc := NewDocumentService(repo, nil, nil, zap.NewNop())

	name := "Novo Nome"
	doc, err := svc.Update(context.Background(), "d1", dto.UpdateDocumentRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Novo Nome", doc.Name)
}

func TestDocumentServiceDelete(t *testing.T) {
	repo := newMockDocumentRepo()
	repo.docs["d1"] = &models.ScheduleFile{ID: "d1", Name: "Um"}
	svc := NewDocumentService(repo, nil, nil, zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "d1"))
	assert.Equal(t, []string{"d1"}, repo.deleted)

	err := svc.Delete(context.Background(), "d1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDocumentNotFound.Code, appErrors.FromError(err).Code)
}

func TestDocumentServiceExportSubsetPrunesShifts(t *testing.T) {
	repo := newMockDocumentRepo()
	repo.docs["d1"] = &models.ScheduleFile{ID: "d1", Name: "Matriz", Data: types.JSONText(sampleBundle(t))}
	svc := NewDocumentService(repo, nil, nil, zap.NewNop())

	payload, err := svc.ExportSubset(context.Background(), "d1", []string{"100"})
	require.NoError(t, err)

	var bundle escala.Document
	require.NoError(t, json.Unmarshal(payload, &bundle))
	require.Len(t, bundle.Escalas, 1)
	assert.Equal(t, "100", bundle.Escalas[0].Codigo)

	used := map[string]bool{escala.KeyFolga: true, escala.KeyDSR: true}
	for _, key := range bundle.Escalas[0].Jornadas {
		used[key] = true
	}
	for key := range bundle.Jornadas {
		assert.True(t, used[key], "unused shift %s should have been pruned", key)
	}
	assert.Contains(t, bundle.Jornadas, escala.KeyFolga)
	assert.Contains(t, bundle.Jornadas, escala.KeyDSR)
}

func TestDocumentServiceExportSubsetUnknownCode(t *testing.T) {
	repo := newMockDocumentRepo()
	repo.docs["d1"] = &models.ScheduleFile{ID: "d1", Name: "Matriz", Data: types.JSONText(sampleBundle(t))}
	svc := NewDocumentService(repo, nil, nil, zap.NewNop())

	_, err := svc.ExportSubset(context.Background(), "d1", []string{"999"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrEscalaNotFound.Code, appErrors.FromError(err).Code)
}

func TestDocumentServiceExportListingCSV(t *testing.T) {
	repo := newMockDocumentRepo()
	repo.docs["d1"] = &models.ScheduleFile{ID: "d1", Name: "Matriz"}
	svc := NewDocumentService(repo, nil, nil, zap.NewNop())

	payload, err := svc.ExportListingCSV(context.Background())
	require.NoError(t, err)
	content := string(payload)
	assert.True(t, strings.HasPrefix(content, "Documento,Escalas,Atualizado em"))
	assert.Contains(t, content, "Matriz")
}

func TestDocumentServiceDuplicateRekeys(t *testing.T) {
	repo := newMockDocumentRepo()
	source := sampleBundle(t)
	repo.docs["d1"] = &models.ScheduleFile{
		ID:   "d1",
		Name: "Matriz",
		Data: types.JSONText(source),
		Meta: models.ScheduleMeta{UnificationLog: []string{"registro"}},
	}
	svc := NewDocumentService(repo, nil, nil, zap.NewNop())

	copyDoc, err := svc.Duplicate(context.Background(), "d1", dto.DuplicateDocumentRequest{Name: "Filial"})
	require.NoError(t, err)
	assert.Equal(t, "Filial", copyDoc.Name)
	assert.Equal(t, []string{"registro"}, copyDoc.Meta.UnificationLog)

	var original, duplicate escala.Document
	require.NoError(t, json.Unmarshal(source, &original))
	require.NoError(t, json.Unmarshal(copyDoc.Data, &duplicate))

	originalKeys := make(map[string]bool)
	for key := range original.Jornadas {
		originalKeys[key] = true
	}
	for key := range duplicate.Jornadas {
		if key == escala.KeyFolga || key == escala.KeyDSR {
			continue
		}
		assert.False(t, originalKeys[key], "duplicated shift kept the source key %s", key)
	}

	require.Len(t, duplicate.Escalas, len(original.Escalas))
	for i := range duplicate.Escalas {
		assert.NotEqual(t, original.Escalas[i].Key, duplicate.Escalas[i].Key)
		for _, slot := range duplicate.Escalas[i].Jornadas {
			if slot == escala.KeyFolga || slot == escala.KeyDSR {
				continue
			}
			assert.Contains(t, duplicate.Jornadas, slot, "escala slot must reference the rekeyed dictionary")
		}
	}
}

func TestDocumentServiceDuplicateSubsetWithPrefix(t *testing.T) {
	repo := newMockDocumentRepo()
	repo.docs["d1"] = &models.ScheduleFile{ID: "d1", Name: "Matriz", Data: types.JSONText(sampleBundle(t))}
	svc := NewDocumentService(repo, nil, nil, zap.NewNop())

	copyDoc, err := svc.Duplicate(context.Background(), "d1", dto.DuplicateDocumentRequest{
		Name:   "Coligada Norte",
		Codes:  []string{"200"},
		Prefix: "NORTE - ",
	})
	require.NoError(t, err)

	var duplicate escala.Document
	require.NoError(t, json.Unmarshal(copyDoc.Data, &duplicate))
	require.Len(t, duplicate.Escalas, 1)
	assert.Equal(t, "200", duplicate.Escalas[0].Codigo)
	assert.Equal(t, "NORTE - PORTARIA DIA", duplicate.Escalas[0].Nome)

	for _, slot := range duplicate.Escalas[0].Jornadas {
		if slot == escala.KeyFolga || slot == escala.KeyDSR {
			continue
		}
		assert.Contains(t, duplicate.Jornadas, slot)
	}

	_, err = svc.Duplicate(context.Background(), "d1", dto.DuplicateDocumentRequest{
		Name:  "Coligada Sul",
		Codes: []string{"999"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrEscalaNotFound.Code, appErrors.FromError(err).Code)
}

func TestDocumentServiceDuplicateNameTaken(t *testing.T) {
	repo := newMockDocumentRepo()
	repo.docs["d1"] = &models.ScheduleFile{ID: "d1", Name: "Matriz", Data: types.JSONText(sampleBundle(t))}
	svc := NewDocumentService(repo, nil, nil, zap.NewNop())

	_, err := svc.Duplicate(context.Background(), "d1", dto.DuplicateDocumentRequest{Name: "Matriz"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDocumentNameTaken.Code, appErrors.FromError(err).Code)
}
