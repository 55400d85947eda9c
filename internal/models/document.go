package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// ScheduleFile is one named schedule document stored in the schedule_files
// table. Data holds the exported JSON bundle (escalas, jornadas,
// horas_adicionais) exactly as produced by the processing engine.
type ScheduleFile struct {
	ID        string         `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	Data      types.JSONText `db:"data" json:"data"`
	Meta      ScheduleMeta   `db:"meta" json:"meta"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// ScheduleMeta records processing-run byproducts persisted as JSONB: the
// unification log and per-row failures reported by the engine.
type ScheduleMeta struct {
	UnificationLog []string `json:"unificationLog"`
	RowErrors      []string `json:"rowErrors"`
}

// Value marshals meta to JSON for persistence.
func (m ScheduleMeta) Value() (driver.Value, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal schedule meta: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the meta struct.
func (m *ScheduleMeta) Scan(value interface{}) error {
	if value == nil {
		*m = ScheduleMeta{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for ScheduleMeta", value)
	}
	if len(data) == 0 {
		*m = ScheduleMeta{}
		return nil
	}
	return json.Unmarshal(data, m)
}

// ScheduleFileSummary is the listing projection: name plus content counts.
type ScheduleFileSummary struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	EscalaCount int       `json:"escala_count"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ScheduleFileFilter captures listing criteria for stored documents.
type ScheduleFileFilter struct {
	Search   string
	Page     int
	PageSize int
}
