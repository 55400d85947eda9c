// Package escala implements the shift-description parsing and schedule
// synthesis engine: it turns free-form Portuguese shift descriptions
// ("SEG A QUI 08:00 AS 18:00 / SEX 08:00 AS 17:00", "12X36 NOTURNO") into
// canonical shift objects, weekly or cyclic assignments, contractual hour
// totals and a deduplicated schedule document.
package escala

import (
	"regexp"
	"strings"
)

// timeTok matches one loosely written time token.
const timeTok = `(?:\d{1,2}:\d{2}(?::\d{2})?|\d{3,4}|\d{1,2}H?)`

var (
	spaceRe     = regexp.MustCompile(`\s+`)
	timeTokenRe = regexp.MustCompile(timeTok)
	rangeOnlyRe = regexp.MustCompile(`(` + timeTok + `)\s*AS\s*(` + timeTok + `)`)
	// timeExprRe matches one full time expression: a main range optionally
	// followed by an explicit break ("E 12:00-13:00" or "E 12:00 AS 13:00").
	timeExprRe = regexp.MustCompile(`(` + timeTok + `)\s*AS\s*(` + timeTok + `)` +
		`(?:\s*E\s*(` + timeTok + `)\s*(?:-|AS)\s*(` + timeTok + `))?`)
	cycleRe   = regexp.MustCompile(`12X3[56]`)
	fullDayRe = regexp.MustCompile(`24:?00|23:?59`)
)

// canonicalSignature reduces a time expression to its content-addressed
// cache key: whitespace stripped, "-" and "ÀS" folded to "AS", every time
// token normalized, so that "08H AS 17H" and "08:00 ÀS 17:00" collide.
func canonicalSignature(expr string) string {
	s := strings.ToUpper(spaceRe.ReplaceAllString(expr, ""))
	s = strings.ReplaceAll(s, "ÀS", "AS")
	s = strings.ReplaceAll(s, "-", "AS")
	return timeTokenRe.ReplaceAllStringFunc(s, func(tok string) string {
		norm, ok := NormalizeToken(tok)
		if !ok {
			return tok
		}
		return norm
	})
}

// ParsingContext carries the run-scoped shift caches: the signature lookup
// that keeps equivalent time expressions pointing at one shift object, and
// the accumulated key-to-shift dictionary. Each processing run over one
// input batch gets its own context; a context is not safe for concurrent
// use and must not be shared across batches.
type ParsingContext struct {
	signatures map[string]string
	jornadas   map[string]*Jornada
}

// NewParsingContext returns an empty context preloaded with the FOLGA and
// DSR sentinel shifts.
func NewParsingContext() *ParsingContext {
	ctx := &ParsingContext{
		signatures: make(map[string]string),
		jornadas:   make(map[string]*Jornada),
	}
	ctx.jornadas[KeyFolga] = folgaJornada()
	ctx.jornadas[KeyDSR] = dsrJornada()
	return ctx
}

// Jornadas exposes the accumulated shift dictionary.
func (ctx *ParsingContext) Jornadas() map[string]*Jornada { return ctx.jornadas }

// shiftKeyFor returns the key of the shift registered for the expression's
// canonical signature, synthesizing and registering it on first sight.
func (ctx *ParsingContext) shiftKeyFor(expr string, synth func() Jornada) string {
	sig := canonicalSignature(expr)
	if key, ok := ctx.signatures[sig]; ok {
		return key
	}
	j := synth()
	ctx.signatures[sig] = j.Key
	ctx.jornadas[j.Key] = &j
	return j.Key
}

// ParseDescription resolves one structured schedule description into a
// weekday assignment and a schedule type. 12X36 (and the common 12X35
// misspelling) yields a two-slot work/rest cycle; a description carrying an
// explicit end-of-day boundary with no weekday segmentation yields a
// single-slot full-day schedule; everything else is weekly.
func (ctx *ParsingContext) ParseDescription(desc string) ([]string, string) {
	text := strings.ToUpper(strings.TrimSpace(desc))
	text = spaceRe.ReplaceAllString(strings.ReplaceAll(text, "\n", " "), " ")
	text = strings.ReplaceAll(text, "ÀS", "AS")

	switch {
	case cycleRe.MatchString(text):
		return ctx.parseCycle(text), Tipo12X36
	case fullDayRe.MatchString(text) && len(ResolveWeekdays(text)) == 0:
		return ctx.parseFullDay(text), TipoDiaria
	default:
		return ctx.parseWeekly(text), TipoSemanal
	}
}

func (ctx *ParsingContext) parseCycle(text string) []string {
	var start, end string
	if m := rangeOnlyRe.FindStringSubmatch(text); m != nil {
		start, end = m[1], m[2]
	} else if strings.Contains(text, "NOTURNO") {
		start, end = "19:00", "07:00"
	} else {
		start, end = "07:00", "19:00"
	}
	key := ctx.shiftKeyFor(start+" AS "+end, func() Jornada {
		return synthesizeCycleShift(start, end)
	})
	return []string{key, KeyFolga}
}

func (ctx *ParsingContext) parseFullDay(text string) []string {
	m := rangeOnlyRe.FindStringSubmatch(text)
	if m == nil {
		return []string{KeyFolga}
	}
	start, end := m[1], m[2]
	key := ctx.shiftKeyFor(start+" AS "+end, func() Jornada {
		return synthesizeShift(start, end, nil)
	})
	return []string{key}
}

func (ctx *ParsingContext) parseWeekly(text string) []string {
	slots := make([]string, 7)
	for i := range slots {
		slots[i] = KeyFolga
	}

	prev := 0
	for _, m := range timeExprRe.FindAllStringSubmatchIndex(text, -1) {
		daysPart := strings.TrimSpace(text[prev:m[0]])
		expr := text[m[0]:m[1]]
		start := text[m[2]:m[3]]
		end := text[m[4]:m[5]]
		var brk []string
		if m[6] >= 0 {
			brk = []string{text[m[6]:m[7]], text[m[8]:m[9]]}
		}
		prev = m[1]

		days := ResolveWeekdays(daysPart)
		if len(days) == 0 {
			continue
		}
		key := ctx.shiftKeyFor(expr, func() Jornada {
			return synthesizeShift(start, end, brk)
		})
		for _, d := range days {
			if d >= 0 && d < 7 {
				slots[d] = key
			}
		}
	}

	// Every weekly schedule gets exactly one weekly-rest slot: Sunday when
	// free, otherwise the first remaining rest day.
	if slots[6] == KeyFolga {
		slots[6] = KeyDSR
	} else {
		for i, key := range slots {
			if key == KeyFolga {
				slots[i] = KeyDSR
				break
			}
		}
	}
	return slots
}
