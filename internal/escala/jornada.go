package escala

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Fixed sentinel shift keys, always present in the shift dictionary.
const (
	KeyFolga = "ID_FOLGA"
	KeyDSR   = "ID_DSR"
)

// Schedule types.
const (
	TipoSemanal = "SEMANAL"
	Tipo12X36   = "12X36"
	TipoDiaria  = "DIARIA"
)

// Period categories as exported in DESC_TIPO_HORA.
const (
	HoraExpediente = "Expediente"
	HoraExtra50    = "Hora Extra 50%"
	HoraExtra100   = "Hora extra 100%"
)

// Shifts longer than this get a one hour break inferred at the midpoint.
const breakInferenceThreshold = 6 * 60

// Periodo is one tagged slice of the day inside a shift. Boundaries use the
// compact HHMM form; a shift's periods are contiguous from 0000 to 2400.
type Periodo struct {
	Inicio   string `json:"TM_HORA_INICIO"`
	Fim      string `json:"TM_HORA_FIM"`
	TipoHora string `json:"DESC_TIPO_HORA"`
}

// Jornada is one canonical daily work pattern. HorasContratuais holds the
// contractual boundaries in HH:MM form: two entries for a simple shift, four
// for a shift with one break (start, break start, break end, end), or a
// longer even-length punch list. BatidaAutomatica carries inferred break
// boundaries in HHMM form.
type Jornada struct {
	Nome             string    `json:"NOME_JORNADA"`
	Descricao        string    `json:"DESC_JORNADA"`
	HorasContratuais []string  `json:"HORAS_CONTRATUAIS"`
	Periodos         []Periodo `json:"PERIODOS"`
	BatidaAutomatica []string  `json:"batida_automatica"`
	SemExpediente    string    `json:"sem_expediente,omitempty"`
	Key              string    `json:"key"`
}

// Escala is one named schedule: a weekly or cyclic assignment of shift keys.
type Escala struct {
	Nome         string   `json:"NOME"`
	Descricao    string   `json:"DESC_ESCALA"`
	Codigo       string   `json:"COD"`
	CargaHoraria string   `json:"carga_horaria"`
	Tipo         string   `json:"TIPO"`
	Jornadas     []string `json:"JORNADAS"`
	Key          string   `json:"key"`
}

// Document is the exported schedule bundle.
type Document struct {
	Escalas         []Escala           `json:"escalas"`
	Jornadas        map[string]Jornada `json:"jornadas"`
	HorasAdicionais []json.RawMessage  `json:"horas_adicionais"`
}

// generateKey returns a fresh 24-hex-char identifier.
func generateKey() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])[:24]
}

// NewKey returns a fresh schedule or shift identifier. Callers that clone a
// document must re-key every escala and non-sentinel jornada so both copies
// can coexist in the payroll system.
func NewKey() string {
	return generateKey()
}

// generatePeriods expands an even-length list of contractual boundaries
// (HH:MM) into the full-day period sequence: overtime before the first
// punch, regular time between each pair, overtime in the gaps and after the
// last punch up to end of day.
func generatePeriods(points []string) []Periodo {
	if len(points) < 2 || len(points)%2 != 0 {
		return nil
	}

	periods := []Periodo{{Inicio: "0000", Fim: toHHMM(points[0]), TipoHora: HoraExtra50}}
	for i := 0; i < len(points); i += 2 {
		start := toHHMM(points[i])
		end := toHHMM(points[i+1])
		periods = append(periods, Periodo{Inicio: start, Fim: end, TipoHora: HoraExpediente})
		if i+2 < len(points) {
			periods = append(periods, Periodo{Inicio: end, Fim: toHHMM(points[i+2]), TipoHora: HoraExtra50})
		}
	}
	periods = append(periods, Periodo{Inicio: toHHMM(points[len(points)-1]), Fim: "2400", TipoHora: HoraExtra50})
	return periods
}

// synthesizeShift builds the canonical shift for a start/end pair and an
// optional explicit break (two raw tokens). When no break is given and the
// span exceeds six hours, a one hour break is inferred, centered at the
// shift midpoint; an overnight span counts past midnight. An end boundary
// landing exactly on 00:00 is displayed as 23:59 so the trailing period
// keeps a nonzero length.
func synthesizeShift(start, end string, brk []string) Jornada {
	j := Jornada{Key: generateKey(), BatidaAutomatica: []string{}}

	startFmt, okStart := NormalizeToken(start)
	endFmt, okEnd := NormalizeToken(end)
	if !okStart || !okEnd {
		j.Nome = start + " AS " + end
		return j
	}
	j.Nome = startFmt + " AS " + endFmt

	switch {
	case len(brk) == 2:
		breakStart, _ := NormalizeToken(brk[0])
		breakEnd, _ := NormalizeToken(brk[1])
		j.HorasContratuais = []string{startFmt, breakStart, breakEnd, endFmt}
		j.BatidaAutomatica = []string{toHHMM(breakStart), toHHMM(breakEnd)}
	default:
		startMin := clockMinutes(startFmt)
		endMin := clockMinutes(endFmt)
		if endMin <= startMin {
			endMin += minutesPerDay
		}
		if endMin-startMin > breakInferenceThreshold {
			mid := startMin + (endMin-startMin)/2
			finalEnd := minutesClock(endMin)
			if finalEnd == "00:00" {
				finalEnd = "23:59"
			}
			j.HorasContratuais = []string{startFmt, minutesClock(mid - 30), minutesClock(mid + 30), finalEnd}
			j.BatidaAutomatica = []string{toHHMM(j.HorasContratuais[1]), toHHMM(j.HorasContratuais[2])}
		} else {
			j.HorasContratuais = []string{startFmt, endFmt}
		}
	}

	j.Periodos = generatePeriods(j.HorasContratuais)
	return j
}

// synthesizeCycleShift builds the 12h work shift of a 12X36 rotation. Cycle
// shifts never receive an inferred break.
func synthesizeCycleShift(start, end string) Jornada {
	startFmt, _ := NormalizeToken(start)
	endFmt, _ := NormalizeToken(end)
	points := []string{startFmt, endFmt}
	return Jornada{
		Nome:             startFmt + " AS " + endFmt,
		HorasContratuais: points,
		Periodos:         generatePeriods(points),
		BatidaAutomatica: []string{},
		Key:              generateKey(),
	}
}

// SynthesizeFromPunches builds a shift from an explicit even-length punch
// list (multiple clock in/out pairs in one day). Used when an operator edits
// a shift's boundaries directly.
func SynthesizeFromPunches(punches []string) (Jornada, error) {
	if len(punches) < 2 || len(punches)%2 != 0 {
		return Jornada{}, fmt.Errorf("lista de batidas deve ter um número par de entradas, recebeu %d", len(punches))
	}
	points := make([]string, 0, len(punches))
	for _, p := range punches {
		norm, ok := NormalizeToken(p)
		if !ok {
			return Jornada{}, fmt.Errorf("batida inválida %q", p)
		}
		points = append(points, norm)
	}
	return Jornada{
		Nome:             points[0] + " AS " + points[len(points)-1],
		HorasContratuais: points,
		Periodos:         generatePeriods(points),
		BatidaAutomatica: []string{},
		Key:              generateKey(),
	}, nil
}

func folgaJornada() *Jornada {
	return &Jornada{
		Nome:             "FOLGA",
		Descricao:        "Dia de Folga",
		HorasContratuais: []string{},
		Periodos:         []Periodo{},
		BatidaAutomatica: []string{},
		Key:              KeyFolga,
	}
}

func dsrJornada() *Jornada {
	return &Jornada{
		Nome:             "DSR",
		HorasContratuais: []string{},
		Periodos:         []Periodo{{Inicio: "0000", Fim: "2400", TipoHora: HoraExtra100}},
		BatidaAutomatica: []string{},
		SemExpediente:    "1",
		Key:              KeyDSR,
	}
}
