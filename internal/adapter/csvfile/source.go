// Package csvfile loads the incident export from a CSV file on disk.
package csvfile

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/couchcryptid/incident-dashboard/internal/domain"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// missingValues are the cell values read as missing. Matches the markers
// pandas treats as NA when reading CSV, so an empty cell never counts as a
// present value.
var missingValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None", "n/a", "nan", "null",
}

// Source reads the whole dataset from a single CSV file on every Load.
// It implements pipeline.Source.
type Source struct {
	path   string
	logger *slog.Logger
}

// NewSource creates a Source for the file at path.
func NewSource(path string, logger *slog.Logger) *Source {
	return &Source{path: path, logger: logger}
}

// Load reads and decodes the file.
func (s *Source) Load(ctx context.Context) ([]domain.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	records, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	s.logger.Debug("dataset loaded", "path", s.path, "rows", len(records), "bytes", len(data))
	return records, nil
}

// CheckReadiness reports whether the dataset file exists and is a regular file.
func (s *Source) CheckReadiness(_ context.Context) error {
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("dataset unavailable: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("dataset %s is not a regular file", s.path)
	}
	return nil
}

var utf8BOM = []byte("\xef\xbb\xbf")

// Decode reads a CSV stream with a header row into raw records. Every column
// is kept as text. A leading byte-order mark is ignored and rows shorter than
// the header are padded with missing cells. A header without rows decodes to
// an empty slice; a stream without a header or a row longer than the header
// is an error.
func Decode(r io.Reader) ([]domain.RawRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	records, err := readRecords(bytes.TrimPrefix(data, utf8BOM))
	if err != nil {
		return nil, err
	}
	// gota refuses header-only input, which is a valid empty dataset here.
	if len(records) < 2 {
		return []domain.RawRecord{}, nil
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(missingValues),
	)
	if df.Err != nil {
		return nil, df.Err
	}

	return fromDataFrame(df), nil
}

// readRecords parses the header and rows, squaring short rows off to the
// header width.
func readRecords(data []byte) ([][]string, error) {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("empty file: no header row")
	}

	records[0] = uniqueColumnNames(records[0])
	width := len(records[0])
	for i := 1; i < len(records); i++ {
		rec := records[i]
		switch {
		case len(rec) > width:
			return nil, fmt.Errorf("row %d: expected %d fields, saw %d", i+1, width, len(rec))
		case len(rec) < width:
			padded := make([]string, width)
			copy(padded, rec)
			records[i] = padded
		}
	}
	return records, nil
}

// uniqueColumnNames suffixes repeated header names with ".1", ".2", ... in
// order of appearance, skipping any suffix that is already taken. The first
// occurrence keeps its name.
func uniqueColumnNames(header []string) []string {
	out := make([]string, len(header))
	counts := make(map[string]int, len(header))
	for i, name := range header {
		n := counts[name]
		for n > 0 {
			counts[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n)
			n = counts[name]
		}
		out[i] = name
		counts[name] = n + 1
	}
	return out
}

type column struct {
	values []string
	nan    []bool
}

func (c column) field(i int) domain.Field {
	if c.values == nil || c.nan[i] {
		return domain.Field{}
	}
	return domain.Text(c.values[i])
}

func fromDataFrame(df dataframe.DataFrame) []domain.RawRecord {
	names := df.Names()
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}

	lookup := func(name string) column {
		if !present[name] {
			return column{}
		}
		s := df.Col(name)
		return column{values: s.Records(), nan: s.IsNaN()}
	}

	var (
		date   = lookup(domain.ColumnIncidentDate)
		lat    = lookup(domain.ColumnLatitude)
		lon    = lookup(domain.ColumnLongitude)
		state  = lookup(domain.ColumnState)
		entity = lookup(domain.ColumnReportingEntity)
	)

	var areaNames []string
	var areas []column
	for _, n := range names {
		if domain.IsContactAreaColumn(n) {
			areaNames = append(areaNames, n)
			areas = append(areas, lookup(n))
		}
	}

	rows := df.Nrow()
	out := make([]domain.RawRecord, rows)
	for i := 0; i < rows; i++ {
		rec := domain.RawRecord{
			IncidentDate:    date.field(i),
			Latitude:        lat.field(i),
			Longitude:       lon.field(i),
			State:           state.field(i),
			ReportingEntity: entity.field(i),
		}
		if len(areas) > 0 {
			rec.ContactAreas = make([]domain.ContactArea, len(areas))
			for j, a := range areas {
				rec.ContactAreas[j] = domain.ContactArea{Column: areaNames[j], Flag: a.field(i)}
			}
		}
		out[i] = rec
	}
	return out
}
