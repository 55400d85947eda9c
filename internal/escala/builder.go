package escala

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Row is one input record from an imported spreadsheet.
type Row struct {
	Code        string
	Name        string
	Description string
}

// BuildResult bundles everything one processing run produced. RowErrors
// lists rows whose processing failed internally; the run itself always
// completes.
type BuildResult struct {
	Document       Document
	UnificationLog []string
	RowErrors      []string
}

// BuildSchedules processes a batch of schedule rows into the exported
// document. Rows with an empty description are skipped. Schedules whose
// resolved type and shift-key sequence match an earlier row are discarded
// in favor of the first occurrence, with a unification entry naming both.
// The shift dictionary is pruned to the keys the retained schedules
// reference, plus the two sentinels. A failure inside one row is recorded
// and never aborts the batch.
func BuildSchedules(rows []Row) BuildResult {
	ctx := NewParsingContext()
	escalas := make([]Escala, 0, len(rows))
	retained := make(map[string]Escala)
	unifications := []string{}
	rowErrors := []string{}

	for _, row := range rows {
		if strings.TrimSpace(row.Description) == "" {
			continue
		}
		esc, err := buildRow(ctx, row)
		if err != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("linha COD %s (%s): %v", row.Code, row.Name, err))
			continue
		}
		sig := structuralSignature(esc)
		if first, ok := retained[sig]; ok {
			unifications = append(unifications, fmt.Sprintf(
				"Escala %q (COD %s) unificada com %q (COD %s)", esc.Nome, esc.Codigo, first.Nome, first.Codigo))
			continue
		}
		escalas = append(escalas, *esc)
		retained[sig] = *esc
	}

	used := map[string]struct{}{KeyFolga: {}, KeyDSR: {}}
	for _, esc := range escalas {
		for _, key := range esc.Jornadas {
			used[key] = struct{}{}
		}
	}
	jornadas := make(map[string]Jornada, len(used))
	for key := range used {
		if j, ok := ctx.jornadas[key]; ok {
			jornadas[key] = *j
		}
	}

	return BuildResult{
		Document: Document{
			Escalas:         escalas,
			Jornadas:        jornadas,
			HorasAdicionais: []json.RawMessage{},
		},
		UnificationLog: unifications,
		RowErrors:      rowErrors,
	}
}

// buildRow resolves a single row, converting any panic during parsing into
// a per-row error.
func buildRow(ctx *ParsingContext, row Row) (esc *Escala, err error) {
	defer func() {
		if r := recover(); r != nil {
			esc, err = nil, fmt.Errorf("falha inesperada: %v", r)
		}
	}()

	slots, tipo := ctx.ParseDescription(row.Description)
	return &Escala{
		Nome:         row.Name,
		Descricao:    row.Description,
		Codigo:       row.Code,
		CargaHoraria: CalculateCargaHoraria(slots, ctx.jornadas),
		Tipo:         tipo,
		Jornadas:     slots,
		Key:          generateKey(),
	}, nil
}

func structuralSignature(esc *Escala) string {
	return esc.Tipo + "|" + strings.Join(esc.Jornadas, ",")
}
