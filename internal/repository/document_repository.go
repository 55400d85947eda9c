package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/adm-pessoal/escalas-api/internal/models"
)

// DocumentRepository provides database access for stored schedule documents.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository creates a new instance of DocumentRepository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create inserts a new schedule document.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.ScheduleFile) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	const query = `INSERT INTO schedule_files (id, name, data, meta, created_at, updated_at) VALUES (:id, :name, :data, :meta, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("create schedule file: %w", err)
	}
	return nil
}

// GetByID returns a document by identifier.
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*models.ScheduleFile, error) {
	const query = `SELECT id, name, data, meta, created_at, updated_at FROM schedule_files WHERE id = $1 LIMIT 1`
	var doc models.ScheduleFile
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get schedule file: %w", err)
	}
	return &doc, nil
}

// GetByName returns a document by its unique name.
func (r *DocumentRepository) GetByName(ctx context.Context, name string) (*models.ScheduleFile, error) {
	const query = `SELECT id, name, data, meta, created_at, updated_at FROM schedule_files WHERE name = $1 LIMIT 1`
	var doc models.ScheduleFile
	if err := r.db.GetContext(ctx, &doc, query, name); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get schedule file by name: %w", err)
	}
	return &doc, nil
}

// List returns document summaries with escala counts and the total count.
func (r *DocumentRepository) List(ctx context.Context, filter models.ScheduleFileFilter) ([]models.ScheduleFileSummary, int, error) {
	baseQuery := `FROM schedule_files WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf(`SELECT id, name, COALESCE(jsonb_array_length(data->'escalas'), 0) AS escala_count, updated_at %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`, baseQuery, pageSize, offset)

	type summaryRow struct {
		ID          string    `db:"id"`
		Name        string    `db:"name"`
		EscalaCount int       `db:"escala_count"`
		UpdatedAt   time.Time `db:"updated_at"`
	}
	var rows []summaryRow
	if err := r.db.SelectContext(ctx, &rows, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedule files: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count schedule files: %w", err)
	}

	summaries := make([]models.ScheduleFileSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, models.ScheduleFileSummary{
			ID:          row.ID,
			Name:        row.Name,
			EscalaCount: row.EscalaCount,
			UpdatedAt:   row.UpdatedAt,
		})
	}
	return summaries, total, nil
}

// Update persists a renamed or replaced document.
func (r *DocumentRepository) Update(ctx context.Context, doc *models.ScheduleFile) error {
	doc.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schedule_files SET name = :name, data = :data, meta = :meta, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("update schedule file: %w", err)
	}
	return nil
}

// Delete removes a document permanently.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM schedule_files WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete schedule file: %w", err)
	}
	return nil
}

// ContentTotals aggregates document, escala and jornada counts across all
// stored documents.
func (r *DocumentRepository) ContentTotals(ctx context.Context) (documents, escalas, jornadas int, err error) {
	const query = `SELECT COUNT(*) AS documents,
COALESCE(SUM(jsonb_array_length(data->'escalas')), 0) AS escalas,
COALESCE(SUM((SELECT COUNT(*) FROM jsonb_object_keys(data->'jornadas'))), 0) AS jornadas
FROM schedule_files`
	row := struct {
		Documents int `db:"documents"`
		Escalas   int `db:"escalas"`
		Jornadas  int `db:"jornadas"`
	}{}
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return 0, 0, 0, fmt.Errorf("aggregate schedule file totals: %w", err)
	}
	return row.Documents, row.Escalas, row.Jornadas, nil
}
