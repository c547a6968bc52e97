package source

import (
	"math"
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestGenerate_Wave(t *testing.T) {
	s, err := Generate(ScenarioWave, 1000, nil)
	require.NoError(t, err)

	assert.Equal(t, 1000, s.Len())
	assert.Equal(t, "wave", s.Name)
	assert.Nil(t, s.Alerts)
	for i, v := range s.Values {
		assert.Equal(t, float64(i), s.Time[i])
		require.False(t, math.IsNaN(v), "wave has no gaps")
		require.InDelta(t, 50, v, 40.0001)
	}
}

func TestGenerate_Seeded(t *testing.T) {
	a, err := Generate(ScenarioAlerts, 5000, rand.New(rand.NewPCG(3, 3)))
	require.NoError(t, err)
	b, err := Generate(ScenarioAlerts, 5000, rand.New(rand.NewPCG(3, 3)))
	require.NoError(t, err)

	assert.Equal(t, a.Values, b.Values)
	require.Len(t, a.Alerts, 5000)
	for i := range a.Alerts {
		if math.IsNaN(a.Alerts[i]) {
			require.True(t, math.IsNaN(b.Alerts[i]))
			continue
		}
		require.Equal(t, a.Alerts[i], b.Alerts[i])
	}
}

func TestGenerate_AlertRuns(t *testing.T) {
	s, err := Generate(ScenarioAlerts, 20000, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)

	active, quiet := 0, 0
	for _, a := range s.Alerts {
		if math.IsNaN(a) {
			quiet++
			continue
		}
		active++
		assert.Contains(t, AlertCodes, a)
	}
	assert.Positive(t, active)
	assert.Greater(t, quiet, active, "alerts are sparse")
	assert.True(t, math.IsNaN(s.Alerts[0]), "series starts quiet")
}

func TestGenerate_Gappy(t *testing.T) {
	s, err := Generate(ScenarioGappy, 3000, rand.New(rand.NewPCG(1, 1)))
	require.NoError(t, err)

	assert.False(t, math.IsNaN(s.Values[gapEvery-1]))
	for i := gapEvery; i < gapEvery+gapLength; i++ {
		require.True(t, math.IsNaN(s.Values[i]), "index %d", i)
	}
	assert.False(t, math.IsNaN(s.Values[gapEvery+gapLength]))
}

func TestGenerate_Errors(t *testing.T) {
	_, err := Generate(ScenarioWave, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidCount)

	_, err = Generate(Scenario("square"), 10, nil)
	assert.ErrorIs(t, err, ErrUnknownScenario)
}

func TestParseScenario(t *testing.T) {
	for _, s := range Scenarios() {
		got, err := ParseScenario(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseScenario("triangle")
	assert.ErrorIs(t, err, ErrUnknownScenario)
}

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			name, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", name, v))
		}
	}
	path := filepath.Join(t.TempDir(), "series.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadXLSX(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"t", "pressure", "alert"},
		{0, 1.5, nil},
		{1, nil, 7},
		{2, "n/a", 7},
		{3, 4.25, nil},
	})

	s, err := LoadXLSX(path, Columns{Time: "A", Value: "B", Alert: "C"})
	require.NoError(t, err)

	assert.Equal(t, "pressure", s.Name)
	assert.Equal(t, []float64{0, 1, 2, 3}, s.Time)
	assert.Equal(t, 1.5, s.Values[0])
	assert.True(t, math.IsNaN(s.Values[1]), "empty cell is a gap")
	assert.True(t, math.IsNaN(s.Values[2]), "text cell is a gap")
	assert.Equal(t, 4.25, s.Values[3])

	require.Len(t, s.Alerts, 4)
	assert.True(t, math.IsNaN(s.Alerts[0]))
	assert.Equal(t, 7.0, s.Alerts[1])
}

func TestLoadXLSX_NoHeaderNoAlerts(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{10, 1},
		{nil, 2},
		{20, 3},
	})

	s, err := LoadXLSX(path, Columns{Sheet: "Sheet1", Time: "A", Value: "B"})
	require.NoError(t, err)
	assert.Empty(t, s.Name)
	assert.Equal(t, []float64{10, 20}, s.Time, "rows without time are skipped")
	assert.Equal(t, []float64{1, 3}, s.Values)
	assert.Nil(t, s.Alerts)
}

func TestLoadXLSX_Errors(t *testing.T) {
	unordered := writeWorkbook(t, [][]any{{5, 1}, {4, 1}})
	_, err := LoadXLSX(unordered, Columns{Time: "A", Value: "B"})
	assert.ErrorIs(t, err, ErrUnordered)

	headerOnly := writeWorkbook(t, [][]any{{"t", "v"}})
	_, err = LoadXLSX(headerOnly, Columns{Time: "A", Value: "B"})
	assert.ErrorIs(t, err, ErrNoRows)

	badTime := writeWorkbook(t, [][]any{{1, 1}, {"later", 2}})
	_, err = LoadXLSX(badTime, Columns{Time: "A", Value: "B"})
	assert.ErrorContains(t, err, "row 2")

	_, err = LoadXLSX(unordered, Columns{Time: "1", Value: "B"})
	assert.Error(t, err, "invalid column name")

	_, err = LoadXLSX(filepath.Join(t.TempDir(), "missing.xlsx"), Columns{Time: "A", Value: "B"})
	assert.Error(t, err)
}
