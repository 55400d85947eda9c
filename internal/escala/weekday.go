package escala

import (
	"regexp"
	"sort"
	"strings"
)

// weekdayIndex maps accent-folded Portuguese weekday tokens to indices,
// 0=Monday .. 6=Sunday. Ordinal forms ("2ª") fold to their plain variants.
var weekdayIndex = map[string]int{
	"SEG": 0, "SEGUNDA": 0, "2A": 0,
	"TER": 1, "TERCA": 1, "3A": 1,
	"QUA": 2, "QUARTA": 2, "4A": 2,
	"QUI": 3, "QUINTA": 3, "5A": 3,
	"SEX": 4, "SEXTA": 4, "6A": 4,
	"SAB": 5, "SABADO": 5,
	"DOM": 6, "DOMINGO": 6,
}

// weekdayNames renders indices back to the canonical abbreviations.
var weekdayNames = [7]string{"SEG", "TER", "QUA", "QUI", "SEX", "SAB", "DOM"}

var accentFolder = strings.NewReplacer(
	"Á", "A", "À", "A", "Â", "A", "Ã", "A",
	"É", "E", "Ê", "E",
	"Í", "I",
	"Ó", "O", "Ô", "O", "Õ", "O",
	"Ú", "U",
	"Ç", "C",
	"ª", "A", "º", "O",
)

var (
	weekdayRangeRe = regexp.MustCompile(`([A-Z0-9]+)\s+(?:ATE|A)\s+([A-Z0-9]+)`)
	daySplitRe     = regexp.MustCompile(`[,/\s]+`)
)

// ResolveWeekdays extracts the set of weekday indices named by a free-text
// day expression. "X A Y" and "X ATÉ Y" resolve to the inclusive range
// (empty when the range is inverted); otherwise tokens split on whitespace,
// comma or slash are looked up individually and unknown tokens are dropped.
// The result is sorted and duplicate-free.
func ResolveWeekdays(expr string) []int {
	s := accentFolder.Replace(strings.ToUpper(strings.TrimSpace(expr)))
	s = strings.TrimSpace(strings.ReplaceAll(s, "DAS", ""))

	if m := weekdayRangeRe.FindStringSubmatch(s); m != nil {
		start, okStart := weekdayIndex[m[1]]
		end, okEnd := weekdayIndex[m[2]]
		if okStart && okEnd {
			days := []int{}
			for d := start; d <= end; d++ {
				days = append(days, d)
			}
			return days
		}
	}

	set := make(map[int]struct{})
	for _, part := range daySplitRe.Split(s, -1) {
		if part == "" {
			continue
		}
		if idx, ok := weekdayIndex[part]; ok {
			set[idx] = struct{}{}
		}
	}
	days := make([]int, 0, len(set))
	for idx := range set {
		days = append(days, idx)
	}
	sort.Ints(days)
	return days
}
