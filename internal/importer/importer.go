// Package importer reads SKU catalogs from CSV, Excel and DXF files. It
// supports automatic delimiter detection, flexible column mapping, and
// case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/StuffGen/internal/model"
)

// ErrInvalidCatalog is returned when a catalog file has rows that cannot be
// read.
var ErrInvalidCatalog = errors.New("invalid catalog")

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Templates []model.ItemTemplate
	Errors    []string
	Warnings  []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Label    int
	Length   int
	Width    int
	Height   int
	Mass     int
	Quantity int
}

type columnRole struct {
	name    string
	aliases []string
}

// columnRoles lists the canonical columns and their accepted aliases (all
// lowercase).
var columnRoles = []columnRole{
	{"label", []string{"label", "name", "sku", "item", "description", "desc", "article"}},
	{"length", []string{"length", "len", "l", "x", "depth"}},
	{"width", []string{"width", "w", "y", "breadth"}},
	{"height", []string{"height", "h", "z", "tall"}},
	{"mass", []string{"mass", "weight", "kg", "m"}},
	{"quantity", []string{"quantity", "qty", "count", "num", "amount", "pcs", "pieces"}},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		records, err := newCSVReader(bytes.NewReader(data), delim).ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		// Consistency first, then more columns.
		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

func newCSVReader(r io.Reader, delim rune) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = delim
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Returns the mapping and true if a header was detected, or the positional
// mapping (label, length, width, height, quantity, mass) and false.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Label: -1, Length: -1, Width: -1, Height: -1, Mass: -1, Quantity: -1}
	slots := map[string]*int{
		"label":    &mapping.Label,
		"length":   &mapping.Length,
		"width":    &mapping.Width,
		"height":   &mapping.Height,
		"mass":     &mapping.Mass,
		"quantity": &mapping.Quantity,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for _, role := range columnRoles {
			for _, alias := range role.aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				if slot := slots[role.name]; *slot == -1 {
					*slot = i
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{Label: 0, Length: 1, Width: 2, Height: 3, Quantity: 4, Mass: 5}, false
	}
	return mapping, true
}

func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseDimension(row []string, idx int, name, rowLabel string) (float64, string) {
	s := getCell(row, idx)
	if s == "" {
		return 0, fmt.Sprintf("%s: Missing %s value", rowLabel, name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, name, s)
	}
	if v <= 0 {
		return 0, fmt.Sprintf("%s: %s must be positive", rowLabel, name)
	}
	return v, ""
}

// parseRow extracts a template from a row using the given column mapping.
// Returns the template, any error message, and any warning message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, count int) (model.ItemTemplate, string, string) {
	label := getCell(row, mapping.Label)
	if label == "" {
		label = fmt.Sprintf("SKU %d", count+1)
	}

	t := model.ItemTemplate{Label: label, Quantity: 1}
	var errMsg string
	if t.Length, errMsg = parseDimension(row, mapping.Length, "length", rowLabel); errMsg != "" {
		return model.ItemTemplate{}, errMsg, ""
	}
	if t.Width, errMsg = parseDimension(row, mapping.Width, "width", rowLabel); errMsg != "" {
		return model.ItemTemplate{}, errMsg, ""
	}
	if t.Height, errMsg = parseDimension(row, mapping.Height, "height", rowLabel); errMsg != "" {
		return model.ItemTemplate{}, errMsg, ""
	}

	if qtyStr := getCell(row, mapping.Quantity); qtyStr != "" {
		qty, err := strconv.Atoi(qtyStr)
		if err != nil || qty <= 0 {
			return model.ItemTemplate{}, fmt.Sprintf("%s: Invalid quantity '%s'", rowLabel, qtyStr), ""
		}
		t.Quantity = qty
	}

	var warning string
	if massStr := getCell(row, mapping.Mass); massStr != "" {
		mass, err := strconv.ParseFloat(massStr, 64)
		if err != nil || mass <= 0 {
			warning = fmt.Sprintf("%s: Ignoring invalid mass '%s'", rowLabel, massStr)
		} else {
			t.Mass = mass
		}
	}

	return t, "", warning
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports templates from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	var warnings []string
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	records, err := newCSVReader(bytes.NewReader(data), delimiter).ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	return importFromRows(records, "Line", warnings)
}

// ImportCSVFromReader imports templates from a CSV reader with a known
// delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	records, err := newCSVReader(reader, delimiter).ReadAll()
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot read CSV: %v", err)}}
	}
	return importFromRows(records, "Line", nil)
}

// ImportExcel imports templates from the first sheet of an Excel file.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared import logic for CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{Warnings: initialWarnings}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		var missing []string
		if mapping.Length == -1 {
			missing = append(missing, "Length")
		}
		if mapping.Width == -1 {
			missing = append(missing, "Width")
		}
		if mapping.Height == -1 {
			missing = append(missing, "Height")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 4 {
		// An unrecognized header still has a non-numeric length cell.
		if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][1]), 64); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "Skipping unrecognized header row")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		t, errMsg, warning := parseRow(row, mapping, rowLabel, len(result.Templates))
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
		result.Templates = append(result.Templates, t)
	}

	return result
}

// ImportCatalog loads a catalog, choosing the reader by file extension.
// DXF drawings need the item height for their footprints; defaultHeight is
// ignored for tabular files. Any row error fails the import.
func ImportCatalog(path string, defaultHeight float64) ([]model.ItemTemplate, []string, error) {
	var result ImportResult
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt", ".tsv":
		result = ImportCSV(path)
	case ".xlsx", ".xlsm":
		result = ImportExcel(path)
	case ".dxf":
		result = ImportDXF(path, defaultHeight)
	default:
		return nil, nil, fmt.Errorf("%w: unsupported file type %q", ErrInvalidCatalog, filepath.Ext(path))
	}

	if len(result.Errors) > 0 {
		return nil, result.Warnings, fmt.Errorf("%w: %s", ErrInvalidCatalog, strings.Join(result.Errors, "; "))
	}
	if len(result.Templates) == 0 {
		return nil, result.Warnings, fmt.Errorf("%w: %s has no items", ErrInvalidCatalog, path)
	}
	return result.Templates, result.Warnings, nil
}
