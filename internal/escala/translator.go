package escala

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Rule kinds understood by the translator.
const (
	RuleExact    = "EXACT"
	RuleDuration = "DURATION"
	RuleCount    = "COUNT"
)

// SemInterpretacao marks lines the translator could not classify. It is a
// first-class outcome, not an error.
const SemInterpretacao = "SEM INTERPRETAÇÃO"

// Rule is one user-authored translation rule. Rules are evaluated in
// ascending priority order; the first match wins.
type Rule struct {
	Name string
	Kind string

	// EXACT: the full comparison text.
	Match string

	// DURATION: substrings that must all be present, and the required span
	// in minutes between the first and last time token (0 disables the
	// span check). A one minute tolerance absorbs rounding.
	Keywords        []string
	DurationMinutes int

	// COUNT: required number of time tokens, optionally requiring that no
	// weekday token is present.
	TokenCount int
	NoWeekday  bool

	// Output template; {h1}..{hN} expand to the normalized time tokens.
	Output string

	Priority int
}

// RawLine is one untranslated input cell.
type RawLine struct {
	ID   string
	Text string
}

// TranslatedLine is the structured description produced for one input cell.
type TranslatedLine struct {
	ID   string
	Text string
}

// parityMarkerRe guards the payroll parity placeholders, which must survive
// the parentheses-stripping pre-pass unaltered.
var parityMarkerRe = regexp.MustCompile(`\((?:IMPAR|ÍMPAR|PAR)\)`)

// Translate converts raw free-form shift descriptions into the structured
// syntax the schedule parser consumes, trying the prioritized rule list
// first and a generic weekday/time heuristic as fallback. It returns the
// translated lines in input order plus one audit entry per line recording
// which rule (or the fallback, or the no-interpretation marker) applied.
func Translate(lines []RawLine, rules []Rule) ([]TranslatedLine, []string) {
	ordered := make([]Rule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Priority < ordered[j].Priority })

	out := make([]TranslatedLine, 0, len(lines))
	audit := make([]string, 0, len(lines))
	for _, line := range lines {
		text, entry := translateLine(line, ordered)
		out = append(out, TranslatedLine{ID: line.ID, Text: text})
		audit = append(audit, entry)
	}
	return out, audit
}

func translateLine(line RawLine, ordered []Rule) (string, string) {
	text := cleanRawLine(line.Text)
	tokens := extractTimeTokens(text)

	for _, rule := range ordered {
		if out, ok := applyRule(rule, text, tokens); ok {
			return out, fmt.Sprintf("linha %s: regra %q (%s) aplicada", line.ID, rule.Name, rule.Kind)
		}
	}
	if out, ok := fallbackTranslate(text, tokens); ok {
		return out, fmt.Sprintf("linha %s: traduzida pela heurística genérica", line.ID)
	}
	return SemInterpretacao, fmt.Sprintf("linha %s: %s", line.ID, SemInterpretacao)
}

func cleanRawLine(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = spaceRe.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "ÀS", "AS")
	if !parityMarkerRe.MatchString(s) {
		s = strings.NewReplacer("(", "", ")", "").Replace(s)
	}
	return strings.TrimSpace(s)
}

// extractTimeTokens pulls the normalized time tokens out of a cleaned line.
// Weekday tokens (including ordinals like "2ª") are removed first so their
// digits are not read as times.
func extractTimeTokens(text string) []string {
	folded := accentFolder.Replace(text)
	kept := make([]string, 0)
	for _, part := range daySplitRe.Split(folded, -1) {
		if part == "" {
			continue
		}
		if _, ok := weekdayIndex[part]; ok {
			continue
		}
		kept = append(kept, part)
	}

	var tokens []string
	for _, tok := range timeTokenRe.FindAllString(strings.Join(kept, " "), -1) {
		if norm, ok := NormalizeToken(tok); ok {
			tokens = append(tokens, norm)
		}
	}
	return tokens
}

func applyRule(rule Rule, text string, tokens []string) (string, bool) {
	switch rule.Kind {
	case RuleExact:
		if strings.EqualFold(strings.TrimSpace(rule.Match), text) {
			return rule.Output, true
		}
	case RuleDuration:
		for _, kw := range rule.Keywords {
			if !strings.Contains(text, strings.ToUpper(strings.TrimSpace(kw))) {
				return "", false
			}
		}
		if rule.DurationMinutes > 0 {
			if len(tokens) < 2 {
				return "", false
			}
			span := spanMinutes(tokens[0], tokens[len(tokens)-1])
			if span < rule.DurationMinutes-1 || span > rule.DurationMinutes+1 {
				return "", false
			}
		}
		return expandTemplate(rule.Output, tokens), true
	case RuleCount:
		if len(tokens) != rule.TokenCount {
			return "", false
		}
		if rule.NoWeekday && len(ResolveWeekdays(text)) > 0 {
			return "", false
		}
		return expandTemplate(rule.Output, tokens), true
	}
	return "", false
}

func expandTemplate(tpl string, tokens []string) string {
	out := tpl
	for i, tok := range tokens {
		out = strings.ReplaceAll(out, fmt.Sprintf("{h%d}", i+1), tok)
	}
	return out
}

// fallbackTranslate is the generic heuristic for lines no rule claimed:
// lines with times but no weekday default to Monday-Friday; days and times
// are then rendered in the structured syntax.
func fallbackTranslate(text string, tokens []string) (string, bool) {
	if len(tokens) == 0 {
		return "", false
	}
	days := ResolveWeekdays(text)
	if len(days) == 0 {
		days = []int{0, 1, 2, 3, 4}
	}

	var timesPart string
	if len(tokens) == 2 {
		timesPart = tokens[0] + " AS " + tokens[1]
	} else {
		timesPart = strings.Join(tokens, " / ")
	}
	return formatWeekdayRuns(days) + " " + timesPart, true
}

// formatWeekdayRuns renders sorted weekday indices, collapsing contiguous
// runs longer than two into "FIRST A LAST" and joining parts with " E ".
func formatWeekdayRuns(days []int) string {
	var parts []string
	for i := 0; i < len(days); {
		j := i
		for j+1 < len(days) && days[j+1] == days[j]+1 {
			j++
		}
		if j-i+1 > 2 {
			parts = append(parts, weekdayNames[days[i]]+" A "+weekdayNames[days[j]])
			i = j + 1
			continue
		}
		for ; i <= j; i++ {
			parts = append(parts, weekdayNames[days[i]])
		}
	}
	return strings.Join(parts, " E ")
}
