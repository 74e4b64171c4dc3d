package exporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"MiningPulse/internal/analysis"
	"MiningPulse/internal/model"

	"github.com/guregu/null/v5"
)

// Row is one value of one derived table in long format. Value is nil where the series is absent.
type Row struct {
	Symbol string   `json:"symbol" parquet:"symbol"`
	Date   string   `json:"date" parquet:"date"`
	Series string   `json:"series" parquet:"series"`
	Value  *float64 `json:"value" parquet:"value,optional"`
}

// Saver writes rows in one file format.
type Saver interface {
	Save(w io.Writer, rows []Row) error
	Extension() string
	ContentType() string
}

// NewSaver returns the saver for format (csv, json, parquet).
func NewSaver(format string) (Saver, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv", "":
		return CSVSaver{}, nil
	case "json":
		return JSONSaver{}, nil
	case "parquet":
		return ParquetSaver{}, nil
	}
	return nil, fmt.Errorf("unsupported export format %q (use csv, json or parquet)", format)
}

// SaveFile writes rows to dir/name.ext and returns the path.
func SaveFile(dir, name string, s Saver, rows []Row) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	path := filepath.Join(dir, name+"."+s.Extension())
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := s.Save(f, rows); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, f.Close()
}

// Flatten turns an instrument result into long-format rows: the OHLCV
// columns first, then every derived series.
func Flatten(res *analysis.InstrumentResult) []Row {
	var rows []Row
	for _, b := range res.Bars {
		d := b.Date.Format("2006-01-02")
		for _, c := range []struct {
			name string
			v    float64
		}{
			{"Open", b.Open}, {"High", b.High}, {"Low", b.Low}, {"Close", b.Close}, {"Volume", float64(b.Volume)},
		} {
			v := c.v
			rows = append(rows, Row{Symbol: res.Symbol, Date: d, Series: c.name, Value: &v})
		}
	}

	series := append([]model.DerivedSeries{}, res.MovingAverages...)
	series = append(series, res.Change, res.RSI)
	for _, s := range series {
		for _, p := range s.Points {
			rows = append(rows, Row{
				Symbol: res.Symbol,
				Date:   p.Date.Format("2006-01-02"),
				Series: s.Name,
				Value:  ptr(p.Value),
			})
		}
	}
	return rows
}

func ptr(v null.Float) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
