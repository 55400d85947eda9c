package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adm-pessoal/escalas-api/internal/models"
)

func newRuleRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestRuleRepositoryListAll(t *testing.T) {
	db, mock, cleanup := newRuleRepoMock(t)
	defer cleanup()

	repo := NewRuleRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "kind", "match_text", "keywords", "duration_minutes", "token_count", "no_weekday", "output", "priority", "created_at", "updated_at"}).
		AddRow("rule-1", "Intervalo padrao", "DURATION", "", pq.StringArray{"INTERVALO"}, 60, 0, false, "{h1} AS {h2}", 10, now, now).
		AddRow("rule-2", "Plantao exato", "EXACT", "PLANTAO 12H", pq.StringArray{}, 0, 0, false, "07:00 AS 19:00", 20, now, now)
	mock.ExpectQuery("SELECT id, name, kind").
		WillReturnRows(rows)

	rules, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, models.RuleKindDuration, rules[0].Kind)
	assert.Equal(t, []string{"INTERVALO"}, []string(rules[0].Keywords))
}

func TestRuleRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRuleRepoMock(t)
	defer cleanup()

	repo := NewRuleRepository(db)
	mock.ExpectExec("INSERT INTO translation_rules").
		WillReturnResult(sqlmock.NewResult(1, 1))

	rule := &models.TranslationRule{
		Name:     "Plantao exato",
		Kind:     models.RuleKindExact,
		MatchText: "PLANTAO 12H",
		Output:   "07:00 AS 19:00",
		Priority: 20,
	}
	require.NoError(t, repo.Create(context.Background(), rule))
	assert.NotEmpty(t, rule.ID)
}

func TestRuleRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRuleRepoMock(t)
	defer cleanup()

	repo := NewRuleRepository(db)
	mock.ExpectExec("DELETE FROM translation_rules").
		WithArgs("rule-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "rule-1"))
}

func TestRuleRepositoryCount(t *testing.T) {
	db, mock, cleanup := newRuleRepoMock(t)
	defer cleanup()

	repo := NewRuleRepository(db)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM translation_rules`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	total, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, total)
}
