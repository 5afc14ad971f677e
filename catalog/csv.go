package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrMissingNameColumn is returned when the header carries no pl_name column.
var ErrMissingNameColumn = errors.New("csv header has no " + ColName + " column")

// ParseIssue describes a cell that could not be parsed and was treated as missing.
type ParseIssue struct {
	Line   int    `json:"line"`
	Column string `json:"column"`
	Value  string `json:"value"`
}

func (p ParseIssue) String() string {
	return fmt.Sprintf("line %d: %s=%q is not a number", p.Line, p.Column, p.Value)
}

// ReadCSV parses an archive CSV. Columns are matched by header name so extra
// columns and any ordering are accepted. Empty and NaN cells become missing values.
func ReadCSV(r io.Reader) ([]Record, []ParseIssue, error) {
	utf8Reader := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(utf8Reader)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	nameIdx, ok := index[ColName]
	if !ok {
		return nil, nil, ErrMissingNameColumn
	}

	var records []Record
	var issues []ParseIssue
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		record := Record{Name: strings.TrimSpace(cell(row, nameIdx))}
		for _, column := range Columns()[1:] {
			idx, ok := index[column]
			if !ok {
				continue
			}
			raw := cell(row, idx)
			value, ok := parseCell(raw)
			if !ok {
				issues = append(issues, ParseIssue{Line: line, Column: column, Value: raw})
			}
			record.set(column, value)
		}
		records = append(records, record)
	}
	return records, issues, nil
}

// WriteCSV writes records with the standard header.
func WriteCSV(w io.Writer, records []Record) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Columns()); err != nil {
		return err
	}
	for _, record := range records {
		row := make([]string, 0, len(Columns()))
		row = append(row, record.Name)
		for _, column := range Columns()[1:] {
			row = append(row, formatCell(record.Value(column)))
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// parseCell returns (nil, true) for an empty cell and (nil, false) for garbage.
func parseCell(raw string) (*float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "nan") {
		return nil, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return nil, false
	}
	return &v, true
}

func formatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}
