package dto

import (
	"encoding/json"

	"github.com/adm-pessoal/escalas-api/internal/escala"
)

// ScheduleRow is one spreadsheet row submitted for processing.
type ScheduleRow struct {
	Code        string `json:"cod" validate:"required"`
	Name        string `json:"nome" validate:"required"`
	Description string `json:"descricao"`
}

// ProcessScheduleRequest captures POST /processor/schedules payload.
type ProcessScheduleRequest struct {
	Name string        `json:"name" validate:"required,min=3,max=120"`
	Rows []ScheduleRow `json:"rows" validate:"required,min=1,dive"`
	// DryRun skips persistence and only returns the generated document.
	DryRun bool `json:"dryRun"`
}

// ProcessScheduleResponse returns the generated document plus run metadata.
type ProcessScheduleResponse struct {
	DocumentID     string          `json:"documentId,omitempty"`
	Document       json.RawMessage `json:"document"`
	EscalaCount    int             `json:"escalaCount"`
	JornadaCount   int             `json:"jornadaCount"`
	UnificationLog []string        `json:"unificationLog"`
	RowErrors      []string        `json:"rowErrors"`
}

// TranslateLineInput is one raw additional-hours line.
type TranslateLineInput struct {
	ID   string `json:"id" validate:"required"`
	Text string `json:"text"`
}

// TranslateRequest captures POST /processor/translate payload.
type TranslateRequest struct {
	Lines []TranslateLineInput `json:"lines" validate:"required,min=1,dive"`
}

// TranslatedLineOutput is one translated additional-hours line.
type TranslatedLineOutput struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// TranslateResponse returns translated lines plus the per-line audit trail.
type TranslateResponse struct {
	Lines []TranslatedLineOutput `json:"lines"`
	Audit []string               `json:"audit"`
}

// PreviewRequest captures POST /processor/preview payload: a single
// description to resolve without persisting anything.
type PreviewRequest struct {
	Description string `json:"description" validate:"required"`
}

// PreviewResponse exposes the resolved week plus every jornada it references.
type PreviewResponse struct {
	Tipo     string                     `json:"tipo"`
	Slots    []string                   `json:"slots"`
	Jornadas map[string]*escala.Jornada `json:"jornadas"`
	Carga    string                     `json:"cargaHoraria"`
}
