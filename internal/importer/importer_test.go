package importer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"github.com/yofu/dxf"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter(t *testing.T) {
	tests := []struct {
		name string
		data string
		want rune
	}{
		{"comma", "SKU,Length,Width,Height\ncrate,0.4,0.3,0.2\ndrum,0.6,0.6,0.9\n", ','},
		{"semicolon", "SKU;Length;Width;Height\ncrate;0.4;0.3;0.2\ndrum;0.6;0.6;0.9\n", ';'},
		{"tab", "SKU\tLength\tWidth\tHeight\ncrate\t0.4\t0.3\t0.2\n", '\t'},
		{"pipe", "SKU|Length|Width|Height\ncrate|0.4|0.3|0.2\n", '|'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectCSVDelimiter([]byte(tt.data)); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_StandardHeaders(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Label", "Length", "Width", "Height", "Mass", "Quantity"})

	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	want := ColumnMapping{Label: 0, Length: 1, Width: 2, Height: 3, Mass: 4, Quantity: 5}
	if mapping != want {
		t.Errorf("expected %+v, got %+v", want, mapping)
	}
}

func TestDetectColumns_AliasesAndOrder(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"QTY", "h", "Weight", "SKU", "W", "L"})

	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	want := ColumnMapping{Label: 3, Length: 5, Width: 4, Height: 1, Mass: 2, Quantity: 0}
	if mapping != want {
		t.Errorf("expected %+v, got %+v", want, mapping)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"crate", "0.4", "0.3", "0.2"})
	if isHeader {
		t.Error("expected no header")
	}
	if mapping.Length != 1 || mapping.Quantity != 4 {
		t.Errorf("unexpected positional mapping %+v", mapping)
	}
}

// ─── CSV Import Tests ──────────────────────────────────────

func TestImportCSVFromReader_WithHeaders(t *testing.T) {
	data := "SKU,Length,Width,Height,Qty,Mass\ncrate,0.4,0.3,0.2,5,12.5\ndrum,0.6,0.6,0.9,2,\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Templates) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(result.Templates))
	}

	crate := result.Templates[0]
	if crate.Label != "crate" || crate.Length != 0.4 || crate.Width != 0.3 || crate.Height != 0.2 {
		t.Errorf("unexpected crate %+v", crate)
	}
	if crate.Quantity != 5 {
		t.Errorf("expected quantity 5, got %d", crate.Quantity)
	}
	if crate.Mass != 12.5 {
		t.Errorf("expected mass 12.5, got %f", crate.Mass)
	}
	if result.Templates[1].Mass != 0 {
		t.Errorf("expected no mass for drum, got %f", result.Templates[1].Mass)
	}
}

func TestImportCSVFromReader_WithoutHeaders(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("crate,0.4,0.3,0.2\ndrum,0.6,0.6,0.9,3\n"), ',')

	if len(result.Templates) != 2 {
		t.Fatalf("expected 2 templates, got %d (errors: %v)", len(result.Templates), result.Errors)
	}
	if result.Templates[0].Quantity != 1 {
		t.Errorf("expected default quantity 1, got %d", result.Templates[0].Quantity)
	}
	if result.Templates[1].Quantity != 3 {
		t.Errorf("expected quantity 3, got %d", result.Templates[1].Quantity)
	}
}

func TestImportCSVFromReader_UnrecognizedHeaderSkipped(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Artikel,Laenge,Breite,Hoehe\ncrate,0.4,0.3,0.2\n"), ',')

	if len(result.Templates) != 1 {
		t.Fatalf("expected 1 template, got %d (errors: %v)", len(result.Templates), result.Errors)
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a warning about the skipped header")
	}
}

func TestImportCSVFromReader_InvalidRows(t *testing.T) {
	data := "SKU,Length,Width,Height,Qty\nok,0.4,0.3,0.2,1\nbad,abc,0.3,0.2,1\nneg,0.4,-1,0.2,1\nzero,0.4,0.3,0.2,0\nmissing,0.4,0.3,,1\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Templates) != 1 {
		t.Errorf("expected 1 valid template, got %d", len(result.Templates))
	}
	if len(result.Errors) != 4 {
		t.Errorf("expected 4 errors, got %d: %v", len(result.Errors), result.Errors)
	}
}

func TestImportCSVFromReader_InvalidMassIsAWarning(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("SKU,L,W,H,Mass\ncrate,0.4,0.3,0.2,heavy\n"), ',')

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Templates) != 1 || result.Templates[0].Mass != 0 {
		t.Fatalf("expected one template without mass, got %+v", result.Templates)
	}
	if len(result.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %v", result.Warnings)
	}
}

func TestImportCSVFromReader_MissingRequiredColumn(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("SKU,Length,Width\ncrate,0.4,0.3\n"), ',')

	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Height") {
		t.Errorf("expected missing Height error, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_EmptyLabelAndRows(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("SKU,L,W,H\n,0.4,0.3,0.2\n,,,\n"), ',')

	if len(result.Templates) != 1 {
		t.Fatalf("expected 1 template, got %d", len(result.Templates))
	}
	if result.Templates[0].Label != "SKU 1" {
		t.Errorf("expected generated label, got %q", result.Templates[0].Label)
	}
}

func TestImportCSV_SemicolonFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.csv")
	if err := os.WriteFile(path, []byte("SKU;L;W;H\ncrate;0.4;0.3;0.2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	result := ImportCSV(path)
	if len(result.Templates) != 1 {
		t.Fatalf("expected 1 template, got %d (errors: %v)", len(result.Templates), result.Errors)
	}
	if len(result.Warnings) == 0 || !strings.Contains(result.Warnings[0], "semicolon") {
		t.Errorf("expected semicolon warning, got %v", result.Warnings)
	}
}

func TestImportCSV_EmptyAndMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatal(err)
	}
	if result := ImportCSV(path); len(result.Errors) == 0 {
		t.Error("expected error for empty file")
	}
	if result := ImportCSV(filepath.Join(t.TempDir(), "nope.csv")); len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}

// ─── Excel Import Tests ────────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("failed to create cell reference: %v", err)
			}
			if err := f.SetCellValue(sheet, cellRef, cell); err != nil {
				t.Fatalf("failed to set cell value: %v", err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportExcel_WithHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"SKU", "Length", "Width", "Height", "Quantity"},
		{"crate", 0.4, 0.3, 0.2, 4},
		{"drum", 0.6, 0.6, 0.9, 1},
	})

	result := ImportExcel(path)
	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Templates) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(result.Templates))
	}
	if result.Templates[0].Quantity != 4 {
		t.Errorf("expected quantity 4, got %d", result.Templates[0].Quantity)
	}
	if result.Templates[1].Height != 0.9 {
		t.Errorf("expected height 0.9, got %f", result.Templates[1].Height)
	}
}

func TestImportExcel_FileNotFound(t *testing.T) {
	if result := ImportExcel(filepath.Join(t.TempDir(), "nope.xlsx")); len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}

// ─── DXF Import Tests ──────────────────────────────────────

func TestImportDXF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "floor.dxf")
	d := dxf.NewDrawing()
	rect := func(x, y, l, w float64) {
		corners := [][2]float64{{x, y}, {x + l, y}, {x + l, y + w}, {x, y + w}}
		for i := range corners {
			a, b := corners[i], corners[(i+1)%4]
			if _, err := d.Line(a[0], a[1], 0, b[0], b[1], 0); err != nil {
				t.Fatal(err)
			}
		}
	}
	rect(0, 0, 0.4, 0.3)
	rect(1, 1, 0.4, 0.3)
	rect(2, 0, 0.5, 0.5)
	if _, err := d.Circle(5, 5, 0, 0.25); err != nil {
		t.Fatal(err)
	}
	if err := d.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	result := ImportDXF(path, 0.2)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Templates) != 2 {
		t.Fatalf("expected 2 distinct footprints, got %+v", result.Templates)
	}

	var box, square int
	for _, tpl := range result.Templates {
		if tpl.Height != 0.2 {
			t.Errorf("expected height 0.2, got %f", tpl.Height)
		}
		switch {
		case tpl.Length == 0.4 && tpl.Width == 0.3:
			box = tpl.Quantity
		case tpl.Length == 0.5 && tpl.Width == 0.5:
			square = tpl.Quantity
		}
	}
	if box != 2 {
		t.Errorf("expected two 0.4x0.3 footprints, got %d", box)
	}
	if square != 2 {
		t.Errorf("expected the square and the circle to merge, got %d", square)
	}
}

func TestImportDXF_NeedsHeight(t *testing.T) {
	if result := ImportDXF("unused.dxf", 0); len(result.Errors) == 0 {
		t.Error("expected error for zero height")
	}
}

// ─── ImportCatalog Tests ───────────────────────────────────

func TestImportCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.csv")
	if err := os.WriteFile(path, []byte("SKU,L,W,H\ncrate,0.4,0.3,0.2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	templates, _, err := ImportCatalog(path, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(templates) != 1 {
		t.Errorf("expected 1 template, got %d", len(templates))
	}

	bad := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(bad, []byte("SKU,L,W,H\ncrate,x,0.3,0.2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := ImportCatalog(bad, 0); !errors.Is(err, ErrInvalidCatalog) {
		t.Errorf("expected ErrInvalidCatalog, got %v", err)
	}

	if _, _, err := ImportCatalog("catalog.pdf", 0); !errors.Is(err, ErrInvalidCatalog) {
		t.Errorf("expected ErrInvalidCatalog for unsupported type, got %v", err)
	}
}
