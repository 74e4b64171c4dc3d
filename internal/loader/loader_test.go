package loader

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"MiningPulse/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const pricesCSV = "\ufeffDate,Open,High,Low,Close,Volume,Dividends,Stock Splits\n" +
	"2024-01-03 00:00:00+07:00,2400,2450,2380,2430,1200000,0,0\n" +
	"2024-01-02 00:00:00+07:00,2380,2410,2370,2400,1000000,0,0\n" +
	"2024-01-04 00:00:00+07:00,bad,2450,2380,2430,1200000,0,0\n" +
	"2024-01-03 00:00:00+07:00,2400,2460,2380,2440,1300000,0,0\n" +
	"2024-01-05,2440,2500,2420,2490,900000.0,0,0\n"

func TestLoadPrices_CSV(t *testing.T) {
	path := writeFile(t, t.TempDir(), "adro_fix.csv", pricesCSV)

	bars, rep, err := LoadPrices(path)
	require.NoError(t, err)
	require.Len(t, bars, 3)

	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), bars[0].Date)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), bars[1].Date)
	assert.Equal(t, 2440.0, bars[1].Close, "later duplicate wins")
	assert.Equal(t, int64(900000), bars[2].Volume)

	assert.Equal(t, 5, rep.Rows)
	assert.Equal(t, 1, rep.Skipped)
	assert.Equal(t, 1, rep.Duplicates)
}

func TestLoadPrices_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ptba.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Date", "Open", "High", "Low", "Close", "Volume"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"2024-02-01", 2600.0, 2650.0, 2590.0, 2620.0, 500000}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"2024-02-02", 2620.0, 2700.0, 2610.0, 2690.0, 750000}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	bars, rep, err := LoadPrices(path)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 2690.0, bars[1].Close)
	assert.Equal(t, int64(750000), bars[1].Volume)
	assert.Zero(t, rep.Skipped)
}

func TestLoadPrices_MissingFile(t *testing.T) {
	_, _, err := LoadPrices(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestLoadPrices_MissingColumn(t *testing.T) {
	path := writeFile(t, t.TempDir(), "x.csv", "Date,Close\n2024-01-02,100\n")
	_, _, err := LoadPrices(path)
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestLoadPrices_UnsupportedFormat(t *testing.T) {
	path := writeFile(t, t.TempDir(), "x.json", "[]")
	_, _, err := LoadPrices(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadDividends(t *testing.T) {
	path := writeFile(t, t.TempDir(), "Deviden Yield Percentage ADRO.csv",
		"Tahun,Jumlah Dividen,Yield Percentage,Rata-rata Close\n"+
			"2022,\"1,234.50\",14.2,2950\n"+
			"2021,120.75,9.8%,1500\n"+
			"2023,300,11,-\n"+
			"n/a,1,1,1\n")

	recs, rep, err := LoadDividends(path)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, 2021, recs[0].Year)
	assert.True(t, decimal.RequireFromString("120.75").Equal(recs[0].Amount))
	assert.Equal(t, 9.8, recs[0].YieldPercentage)
	assert.Equal(t, 1500.0, recs[0].AverageClose.Float64)
	assert.True(t, decimal.RequireFromString("1234.5").Equal(recs[1].Amount))
	assert.Equal(t, 2023, recs[2].Year)
	assert.False(t, recs[2].AverageClose.Valid)
	assert.Equal(t, 1, rep.Skipped)
}

func TestNormalizeNumber(t *testing.T) {
	for in, want := range map[string]string{
		"1,234.50":  "1234.50",
		"1.234,50":  "1234.50",
		"12,5":      "12.5",
		"Rp 2,500":  "2500",
		"14.2%":     "14.2",
		"1,234,567": "1234567",
	} {
		assert.Equal(t, want, normalizeNumber(in), in)
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2024-03-05", "2024-03-05 00:00:00+07:00", "2024-03-05T23:00:00-05:00", "45356"} {
		got, err := parseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parseDate("yesterday")
	assert.Error(t, err)
}

func TestStore(t *testing.T) {
	dir := t.TempDir()
	prices := writeFile(t, dir, "adro_fix.csv", pricesCSV)
	divs := writeFile(t, dir, "div/adro.csv", "Tahun,Jumlah Dividen,Yield Percentage,Rata-rata Close\n2023,300,10,3000\n")

	store := NewStore([]model.Instrument{
		{Code: "ADRO", PriceFile: prices, DividendFile: divs},
		{Code: "PTBA", PriceFile: filepath.Join(dir, "missing.csv")},
	}, zerolog.Nop())

	adro, err := store.Series("adro")
	require.NoError(t, err)
	assert.Len(t, adro.Bars, 3)
	assert.Len(t, adro.Dividends, 1)
	assert.Contains(t, adro.Warnings[0], "skipped")

	_, err = store.Series("PTBA")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Series("ANTM")
	assert.ErrorIs(t, err, ErrUnknownInstrument)

	assert.Equal(t, []string{"ADRO"}, store.Codes())
	assert.Len(t, store.Instruments(), 2)
}
