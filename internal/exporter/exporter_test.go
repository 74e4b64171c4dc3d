package exporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"MiningPulse/internal/analysis"
	"MiningPulse/internal/model"

	"github.com/guregu/null/v5"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *analysis.InstrumentResult {
	d1 := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	dates := []time.Time{d1, d2}
	return &analysis.InstrumentResult{
		Symbol: "PTBA",
		Bars: []model.PriceBar{
			{Date: d1, Open: 2700, High: 2750, Low: 2690, Close: 2720, Volume: 1000},
			{Date: d2, Open: 2720, High: 2800, Low: 2710, Close: 2790, Volume: 1500},
		},
		MovingAverages: []model.DerivedSeries{
			model.NewSeries("MA2", dates, []null.Float{{}, null.FloatFrom(2755)}),
		},
		Change: model.NewSeries("Change daily", dates, []null.Float{{}, null.FloatFrom(2.5735)}),
		RSI:    model.NewSeries("RSI", dates, []null.Float{{}, {}}),
	}
}

func TestFlatten(t *testing.T) {
	rows := Flatten(sampleResult())
	// 2 bars × 5 columns + 3 series × 2 points
	require.Len(t, rows, 16)
	assert.Equal(t, Row{Symbol: "PTBA", Date: "2024-03-04", Series: "Open", Value: rows[0].Value}, rows[0])
	assert.Equal(t, 2700.0, *rows[0].Value)
	assert.Equal(t, "Volume", rows[4].Series)
	assert.Equal(t, 1000.0, *rows[4].Value)

	ma := rows[10]
	assert.Equal(t, "MA2", ma.Series)
	assert.Nil(t, ma.Value)
	assert.Equal(t, 2755.0, *rows[11].Value)
	assert.Nil(t, rows[15].Value)
}

func TestNewSaver(t *testing.T) {
	for format, ext := range map[string]string{"csv": "csv", "JSON": "json", " parquet ": "parquet", "": "csv"} {
		s, err := NewSaver(format)
		require.NoError(t, err, format)
		assert.Equal(t, ext, s.Extension())
	}
	_, err := NewSaver("xlsx")
	assert.Error(t, err)
}

func TestCSVSaver_AbsentIsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSVSaver{}.Save(&buf, Flatten(sampleResult())))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 17)
	assert.Equal(t, []string{"symbol", "date", "series", "value"}, records[0])
	assert.Equal(t, []string{"PTBA", "2024-03-04", "Close", "2720"}, records[4])
	assert.Equal(t, []string{"PTBA", "2024-03-04", "MA2", ""}, records[11])
}

func TestJSONSaver_AbsentIsNull(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSONSaver{}.Save(&buf, Flatten(sampleResult())))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 16)
	assert.Nil(t, decoded[10]["value"])
	assert.Equal(t, 2755.0, decoded[11]["value"])

	buf.Reset()
	require.NoError(t, JSONSaver{}.Save(&buf, nil))
	assert.JSONEq(t, "[]", buf.String())
}

func TestParquetSaver_RoundTrip(t *testing.T) {
	rows := Flatten(sampleResult())
	path, err := SaveFile(filepath.Join(t.TempDir(), "out"), "ptba", ParquetSaver{}, rows)
	require.NoError(t, err)
	assert.Equal(t, "ptba.parquet", filepath.Base(path))

	got, err := parquet.ReadFile[Row](path)
	require.NoError(t, err)
	require.Len(t, got, len(rows))
	assert.Equal(t, "MA2", got[10].Series)
	assert.Nil(t, got[10].Value)
	require.NotNil(t, got[11].Value)
	assert.Equal(t, 2755.0, *got[11].Value)
}

func TestSaveFile_CSV(t *testing.T) {
	dir := t.TempDir()
	path, err := SaveFile(dir, "adro", CSVSaver{}, nil)
	require.NoError(t, err)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "symbol,date,series,value\n", string(b))
}
