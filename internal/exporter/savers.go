package exporter

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/parquet-go/parquet-go"
)

// CSVSaver writes a header row and leaves absent values empty.
type CSVSaver struct{}

func (CSVSaver) Extension() string   { return "csv" }
func (CSVSaver) ContentType() string { return "text/csv" }

func (CSVSaver) Save(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"symbol", "date", "series", "value"}); err != nil {
		return err
	}
	for _, r := range rows {
		value := ""
		if r.Value != nil {
			value = strconv.FormatFloat(*r.Value, 'f', -1, 64)
		}
		if err := cw.Write([]string{r.Symbol, r.Date, r.Series, value}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// JSONSaver writes an array; absent values are null.
type JSONSaver struct{}

func (JSONSaver) Extension() string   { return "json" }
func (JSONSaver) ContentType() string { return "application/json" }

func (JSONSaver) Save(w io.Writer, rows []Row) error {
	if rows == nil {
		rows = []Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

type ParquetSaver struct{}

func (ParquetSaver) Extension() string   { return "parquet" }
func (ParquetSaver) ContentType() string { return "application/vnd.apache.parquet" }

func (ParquetSaver) Save(w io.Writer, rows []Row) error {
	return parquet.Write(w, rows)
}
