package escala

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireFullDayCoverage checks the period list is contiguous and spans the
// whole day.
func requireFullDayCoverage(t *testing.T, periods []Periodo) {
	t.Helper()
	require.NotEmpty(t, periods)
	require.Equal(t, "0000", periods[0].Inicio)
	require.Equal(t, "2400", periods[len(periods)-1].Fim)
	for i := 0; i < len(periods)-1; i++ {
		require.Equal(t, periods[i].Fim, periods[i+1].Inicio, "periods must be contiguous at index %d", i)
	}
}

func TestSynthesizeShiftAutoBreak(t *testing.T) {
	j := synthesizeShift("08:00", "18:00", nil)

	assert.Equal(t, "08:00 AS 18:00", j.Nome)
	assert.Equal(t, []string{"08:00", "12:30", "13:30", "18:00"}, j.HorasContratuais)
	assert.Equal(t, []string{"1230", "1330"}, j.BatidaAutomatica)
	requireFullDayCoverage(t, j.Periodos)
	assert.Equal(t, []Periodo{
		{Inicio: "0000", Fim: "0800", TipoHora: HoraExtra50},
		{Inicio: "0800", Fim: "1230", TipoHora: HoraExpediente},
		{Inicio: "1230", Fim: "1330", TipoHora: HoraExtra50},
		{Inicio: "1330", Fim: "1800", TipoHora: HoraExpediente},
		{Inicio: "1800", Fim: "2400", TipoHora: HoraExtra50},
	}, j.Periodos)
}

func TestSynthesizeShiftExplicitBreak(t *testing.T) {
	j := synthesizeShift("07:00", "17:00", []string{"12:00", "13:00"})

	assert.Equal(t, "07:00 AS 17:00", j.Nome)
	assert.Equal(t, []string{"07:00", "12:00", "13:00", "17:00"}, j.HorasContratuais)
	assert.Equal(t, []string{"1200", "1300"}, j.BatidaAutomatica)
	requireFullDayCoverage(t, j.Periodos)
}

func TestSynthesizeShiftShortShiftHasNoBreak(t *testing.T) {
	j := synthesizeShift("09:00", "15:00", nil)

	assert.Equal(t, []string{"09:00", "15:00"}, j.HorasContratuais)
	assert.Empty(t, j.BatidaAutomatica)
	requireFullDayCoverage(t, j.Periodos)
}

func TestSynthesizeShiftOvernight(t *testing.T) {
	j := synthesizeShift("22:00", "06:00", nil)

	assert.Equal(t, []string{"22:00", "01:30", "02:30", "06:00"}, j.HorasContratuais,
		"break centers on the midpoint past midnight")
}

func TestSynthesizeShiftMidnightEndDisplaysAs2359(t *testing.T) {
	j := synthesizeShift("16:00", "00:00", nil)

	assert.Equal(t, []string{"16:00", "19:30", "20:30", "23:59"}, j.HorasContratuais)
	requireFullDayCoverage(t, j.Periodos)
}

func TestSynthesizeShiftLooseTokens(t *testing.T) {
	j := synthesizeShift("8H", "1700", nil)

	assert.Equal(t, "08:00 AS 17:00", j.Nome)
	assert.Equal(t, []string{"08:00", "12:00", "13:00", "17:00"}, j.HorasContratuais)
}

func TestSynthesizeCycleShiftSkipsBreakInference(t *testing.T) {
	j := synthesizeCycleShift("07:00", "19:00")

	assert.Equal(t, "07:00 AS 19:00", j.Nome)
	assert.Equal(t, []string{"07:00", "19:00"}, j.HorasContratuais)
	assert.Empty(t, j.BatidaAutomatica)
	requireFullDayCoverage(t, j.Periodos)
}

func TestSynthesizeFromPunches(t *testing.T) {
	j, err := SynthesizeFromPunches([]string{"06:00", "10:00", "11:00", "15:00", "16:00", "18:00"})
	require.NoError(t, err)

	assert.Equal(t, "06:00 AS 18:00", j.Nome)
	assert.Len(t, j.HorasContratuais, 6)
	requireFullDayCoverage(t, j.Periodos)
	assert.Equal(t, HoraExpediente, j.Periodos[1].TipoHora)
	assert.Equal(t, HoraExtra50, j.Periodos[2].TipoHora)
}

func TestSynthesizeFromPunchesRejectsOddList(t *testing.T) {
	_, err := SynthesizeFromPunches([]string{"06:00", "10:00", "11:00"})
	assert.Error(t, err)

	_, err = SynthesizeFromPunches([]string{"06:00", "XX"})
	assert.Error(t, err)
}

func TestGenerateKeyShape(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		key := generateKey()
		require.Len(t, key, 24)
		_, dup := seen[key]
		require.False(t, dup)
		seen[key] = struct{}{}
	}
}
