package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adm-pessoal/escalas-api/internal/dto"
	"github.com/adm-pessoal/escalas-api/internal/models"
	"github.com/adm-pessoal/escalas-api/internal/repository"
	appErrors "github.com/adm-pessoal/escalas-api/pkg/errors"
	"github.com/adm-pessoal/escalas-api/pkg/jobs"
)

type mockReportStore struct {
	jobs      map[string]*models.ReportJob
	createErr error
	updates   []repository.UpdateReportJobParams
	updateErr error
	queued    []models.ReportJob
}

func (m *mockReportStore) Create(ctx context.Context, job *models.ReportJob) error {
	if m.createErr != nil {
		return m.createErr
	}
	if job.ID == "" {
		job.ID = "job-1"
	}
	if m.jobs == nil {
		m.jobs = make(map[string]*models.ReportJob)
	}
	m.jobs[job.ID] = job
	return nil
}

func (m *mockReportStore) GetByID(ctx context.Context, id string) (*models.ReportJob, error) {
	job, ok := m.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return job, nil
}

func (m *mockReportStore) Update(ctx context.Context, id string, params repository.UpdateReportJobParams) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updates = append(m.updates, params)
	job, ok := m.jobs[id]
	if !ok {
		return sql.ErrNoRows
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	return nil
}

func (m *mockReportStore) ListQueued(ctx context.Context, limit int) ([]models.ReportJob, error) {
	return m.queued, nil
}

func (m *mockReportStore) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportJob, error) {
	return nil, nil
}

type mockDispatcher struct {
	enqueued []jobs.Job
	err      error
}

func (m *mockDispatcher) Enqueue(job jobs.Job) error {
	if m.err != nil {
		return m.err
	}
	m.enqueued = append(m.enqueued, job)
	return nil
}

type mockExportGenerator struct {
	result *ExportResult
	err    error
	calls  int
}

func (m *mockExportGenerator) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func TestReportServiceCreateJob(t *testing.T) {
	store := &mockReportStore{}
	queue := &mockDispatcher{}
	svc := NewReportService(store, queue, nil, zap.NewNop(), ReportServiceConfig{})

	resp, err := svc.CreateJob(context.Background(), dto.ReportRequest{
		Type:       models.ReportTypeListagem,
		DocumentID: "doc-1",
		Format:     models.ReportFormatCSV,
	}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusQueued, resp.Status)
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, resp.ID, queue.enqueued[0].ID)
	assert.Equal(t, "user-1", store.jobs[resp.ID].CreatedBy)
}

func TestReportServiceCreateJobValidation(t *testing.T) {
	svc := NewReportService(&mockReportStore{}, &mockDispatcher{}, nil, zap.NewNop(), ReportServiceConfig{})

	cases := []dto.ReportRequest{
		{Type: models.ReportTypeListagem, Format: models.ReportFormatCSV},
		{Type: "desconhecido", DocumentID: "doc-1", Format: models.ReportFormatCSV},
		{Type: models.ReportTypeUnificacao, DocumentID: "doc-1", Format: "xml"},
	}
	for _, req := range cases {
		_, err := svc.CreateJob(context.Background(), req, "user-1")
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
}

func TestReportServiceCreateJobEnqueueFailure(t *testing.T) {
	store := &mockReportStore{}
	queue := &mockDispatcher{err: errors.New("queue full")}
	svc := NewReportService(store, queue, nil, zap.NewNop(), ReportServiceConfig{})

	_, err := svc.CreateJob(context.Background(), dto.ReportRequest{
		Type:       models.ReportTypeListagem,
		DocumentID: "doc-1",
		Format:     models.ReportFormatCSV,
	}, "user-1")
	require.Error(t, err)
	assert.Equal(t, models.ReportStatusFailed, store.jobs["job-1"].Status)
}

func TestReportServiceGetStatusOwnership(t *testing.T) {
	url := "/api/v1/export/token"
	store := &mockReportStore{jobs: map[string]*models.ReportJob{
		"job-1": {ID: "job-1", Status: models.ReportStatusFinished, CreatedBy: "owner", ResultURL: &url},
	}}
	svc := NewReportService(store, &mockDispatcher{}, nil, zap.NewNop(), ReportServiceConfig{})

	resp, err := svc.GetStatus(context.Background(), "job-1", "owner", models.RoleOperador)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFinished, resp.Status)
	require.NotNil(t, resp.ResultURL)
	assert.Equal(t, url, *resp.ResultURL)

	_, err = svc.GetStatus(context.Background(), "job-1", "intruso", models.RoleOperador)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	resp, err = svc.GetStatus(context.Background(), "job-1", "intruso", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "job-1", resp.ID)
}

func TestReportServiceGetStatusNotFound(t *testing.T) {
	svc := NewReportService(&mockReportStore{}, &mockDispatcher{}, nil, zap.NewNop(), ReportServiceConfig{})

	_, err := svc.GetStatus(context.Background(), "missing", "user", models.RoleAdmin)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrReportNotFound.Code, appErrors.FromError(err).Code)
}

func TestReportServiceRecoverPendingJobs(t *testing.T) {
	store := &mockReportStore{queued: []models.ReportJob{
		{ID: "job-1", Type: models.ReportTypeListagem},
		{ID: "job-2", Type: models.ReportTypeUnificacao},
	}}
	queue := &mockDispatcher{}
	svc := NewReportService(store, queue, nil, zap.NewNop(), ReportServiceConfig{})

	svc.RecoverPendingJobs(context.Background())
	assert.Len(t, queue.enqueued, 2)
}

func TestReportWorkerHandleSuccess(t *testing.T) {
	store := &mockReportStore{jobs: map[string]*models.ReportJob{
		"job-1": {ID: "job-1", Type: models.ReportTypeListagem, Status: models.ReportStatusQueued},
	}}
	gen := &mockExportGenerator{result: &ExportResult{URL: "/api/v1/export/tok"}}
	worker := NewReportWorker(store, gen, 3, zap.NewNop())

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, models.ReportStatusFinished, store.jobs["job-1"].Status)
	require.NotNil(t, store.jobs["job-1"].ResultURL)
	assert.Equal(t, "/api/v1/export/tok", *store.jobs["job-1"].ResultURL)
}

func TestReportWorkerHandleRetriesThenFails(t *testing.T) {
	store := &mockReportStore{jobs: map[string]*models.ReportJob{
		"job-1": {ID: "job-1", Type: models.ReportTypeListagem, Status: models.ReportStatusQueued},
	}}
	gen := &mockExportGenerator{err: errors.New("render failed")}
	worker := NewReportWorker(store, gen, 2, zap.NewNop())

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 1})
	require.Error(t, err)
	assert.Equal(t, models.ReportStatusQueued, store.jobs["job-1"].Status)

	err = worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 2})
	require.Error(t, err)
	assert.Equal(t, models.ReportStatusFailed, store.jobs["job-1"].Status)
	require.NotNil(t, store.jobs["job-1"].ErrorMessage)
	assert.Equal(t, "render failed", *store.jobs["job-1"].ErrorMessage)
}
