package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/adm-pessoal/escalas-api/internal/models"
)

// RuleRepository persists operator-authored translation rules.
type RuleRepository struct {
	db *sqlx.DB
}

// NewRuleRepository constructs the repository.
func NewRuleRepository(db *sqlx.DB) *RuleRepository {
	return &RuleRepository{db: db}
}

// ListAll returns every rule ordered by ascending priority.
func (r *RuleRepository) ListAll(ctx context.Context) ([]models.TranslationRule, error) {
	const query = `SELECT id, name, kind, match_text, keywords, duration_minutes, token_count, no_weekday, output, priority, created_at, updated_at
FROM translation_rules ORDER BY priority ASC, created_at ASC`
	var rules []models.TranslationRule
	if err := r.db.SelectContext(ctx, &rules, query); err != nil {
		return nil, fmt.Errorf("list translation rules: %w", err)
	}
	return rules, nil
}

// GetByID returns a rule by identifier.
func (r *RuleRepository) GetByID(ctx context.Context, id string) (*models.TranslationRule, error) {
	const query = `SELECT id, name, kind, match_text, keywords, duration_minutes, token_count, no_weekday, output, priority, created_at, updated_at
FROM translation_rules WHERE id = $1 LIMIT 1`
	var rule models.TranslationRule
	if err := r.db.GetContext(ctx, &rule, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get translation rule: %w", err)
	}
	return &rule, nil
}

// Create inserts a new rule.
func (r *RuleRepository) Create(ctx context.Context, rule *models.TranslationRule) error {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}
	rule.UpdatedAt = now
	const query = `INSERT INTO translation_rules (id, name, kind, match_text, keywords, duration_minutes, token_count, no_weekday, output, priority, created_at, updated_at)
VALUES (:id, :name, :kind, :match_text, :keywords, :duration_minutes, :token_count, :no_weekday, :output, :priority, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rule); err != nil {
		return fmt.Errorf("create translation rule: %w", err)
	}
	return nil
}

// Update persists mutable fields of a rule.
func (r *RuleRepository) Update(ctx context.Context, rule *models.TranslationRule) error {
	rule.UpdatedAt = time.Now().UTC()
	const query = `UPDATE translation_rules SET name = :name, kind = :kind, match_text = :match_text, keywords = :keywords,
duration_minutes = :duration_minutes, token_count = :token_count, no_weekday = :no_weekday, output = :output,
priority = :priority, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, rule); err != nil {
		return fmt.Errorf("update translation rule: %w", err)
	}
	return nil
}

// Delete removes a rule permanently.
func (r *RuleRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM translation_rules WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete translation rule: %w", err)
	}
	return nil
}

// Count returns the number of stored rules.
func (r *RuleRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM translation_rules`
	var total int
	if err := r.db.GetContext(ctx, &total, query); err != nil {
		return 0, fmt.Errorf("count translation rules: %w", err)
	}
	return total, nil
}
