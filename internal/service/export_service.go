package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/adm-pessoal/escalas-api/internal/escala"
	"github.com/adm-pessoal/escalas-api/internal/models"
	"github.com/adm-pessoal/escalas-api/pkg/export"
	"github.com/adm-pessoal/escalas-api/pkg/storage"
)

type exportDocumentLoader interface {
	GetByID(ctx context.Context, id string) (*models.ScheduleFile, error)
	List(ctx context.Context, filter models.ScheduleFileFilter) ([]models.ScheduleFileSummary, int, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportService builds report datasets and persists rendered files.
type ExportService struct {
	documents exportDocumentLoader
	storage   fileStorage
	csv       csvRenderer
	pdf       pdfRenderer
	signer    *storage.SignedURLSigner
	logger    *zap.Logger
	cfg       ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(documents exportDocumentLoader, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		documents: documents,
		storage:   store,
		csv:       csv,
		pdf:       pdf,
		signer:    signer,
		logger:    logger,
		cfg:       cfg,
	}
}

// Generate builds the dataset according to the job definition and stores the rendered export.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	signedURL := strings.TrimRight(s.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api/v1"
	}
	signedURL = fmt.Sprintf("%s/export/%s", signedURL, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ReportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	docPart := sanitizeFilename(job.Params.DocumentID)
	return fmt.Sprintf("%s_%s_%s.%s", strings.ToLower(string(job.Type)), docPart, timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, string, error) {
	switch job.Type {
	case models.ReportTypeUnificacao:
		return s.buildUnificationDataset(ctx, job.Params)
	case models.ReportTypeListagem:
		return s.buildListingDataset(ctx, job.Params)
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported report type %s", job.Type)
	}
}

// buildUnificationDataset renders the processing-run log of one document:
// which schedules were discarded as structural duplicates, plus any rows the
// engine could not process.
func (s *ExportService) buildUnificationDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, error) {
	doc, err := s.documents.GetByID(ctx, params.DocumentID)
	if err != nil {
		return export.Dataset{}, "", err
	}
	rows := make([]map[string]string, 0, len(doc.Meta.UnificationLog)+len(doc.Meta.RowErrors))
	for i, entry := range doc.Meta.UnificationLog {
		rows = append(rows, map[string]string{
			"#":        strconv.Itoa(i + 1),
			"Tipo":     "Unificação",
			"Registro": entry,
		})
	}
	for i, entry := range doc.Meta.RowErrors {
		rows = append(rows, map[string]string{
			"#":        strconv.Itoa(len(doc.Meta.UnificationLog) + i + 1),
			"Tipo":     "Falha",
			"Registro": entry,
		})
	}
	dataset := export.Dataset{
		Headers: []string{"#", "Tipo", "Registro"},
		Rows:    rows,
	}
	title := fmt.Sprintf("Relatório de Unificação - %s", doc.Name)
	return dataset, title, nil
}

// buildListingDataset renders every escala of one document with its type,
// weekly hours and shift usage.
func (s *ExportService) buildListingDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, error) {
	doc, err := s.documents.GetByID(ctx, params.DocumentID)
	if err != nil {
		return export.Dataset{}, "", err
	}
	var bundle escala.Document
	if err := json.Unmarshal(doc.Data, &bundle); err != nil {
		return export.Dataset{}, "", fmt.Errorf("decode document bundle: %w", err)
	}
	rows := make([]map[string]string, 0, len(bundle.Escalas))
	for _, esc := range bundle.Escalas {
		rows = append(rows, map[string]string{
			"COD":           esc.Codigo,
			"Nome":          esc.Nome,
			"Tipo":          esc.Tipo,
			"Carga Horária": esc.CargaHoraria,
			"Jornadas":      strconv.Itoa(len(esc.Jornadas)),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"COD", "Nome", "Tipo", "Carga Horária", "Jornadas"},
		Rows:    rows,
	}
	title := fmt.Sprintf("Listagem de Escalas - %s", doc.Name)
	return dataset, title, nil
}
