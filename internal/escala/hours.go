package escala

import (
	"math"
	"strconv"
)

// CalculateCargaHoraria sums the contractual work time of every non-rest
// slot in an assignment and returns the total as whole hours. Contractual
// boundaries are consumed pairwise (each pair is one work interval, with
// overnight wraparound), so the break of a four-point shift is excluded.
// Half hours round away from zero.
func CalculateCargaHoraria(slots []string, jornadas map[string]*Jornada) string {
	total := 0
	for _, key := range slots {
		if key == KeyFolga || key == KeyDSR {
			continue
		}
		j, ok := jornadas[key]
		if !ok {
			continue
		}
		points := j.HorasContratuais
		for i := 0; i+1 < len(points); i += 2 {
			total += spanMinutes(points[i], points[i+1])
		}
	}
	return strconv.Itoa(int(math.Round(float64(total) / 60)))
}
