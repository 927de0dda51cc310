package decode

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestDecodeCSV(t *testing.T) {
	src := "first_name,store_name,name_ar\nAri,Ari's Grill,مشواة آري\nLana,Lana's Cafe,\n"

	headers, rows, err := New().Decode(strings.NewReader(src), "stores.csv")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if want := []string{"first_name", "store_name", "name_ar"}; !equal(headers, want) {
		t.Fatalf("headers = %v, want %v", headers, want)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Line != 2 || rows[1].Line != 3 {
		t.Errorf("lines = %d, %d, want 2, 3", rows[0].Line, rows[1].Line)
	}
	if rows[0].Cells["name_ar"] != "مشواة آري" {
		t.Errorf("name_ar = %q", rows[0].Cells["name_ar"])
	}
}

func TestDecodeCSVStripsBOM(t *testing.T) {
	src := append([]byte{0xEF, 0xBB, 0xBF}, []byte("first_name,store_name\nAri,Grill\n")...)

	headers, _, err := New().Decode(bytes.NewReader(src), "stores.csv")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if headers[0] != "first_name" {
		t.Errorf("first header = %q, BOM not stripped", headers[0])
	}
}

func TestDecodeCSVSniffsDelimiter(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "semicolon", src: "first_name;store_name\nAri;Grill\n"},
		{name: "tab", src: "first_name\tstore_name\nAri\tGrill\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers, rows, err := New().Decode(strings.NewReader(tt.src), "stores.csv")
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if len(headers) != 2 || headers[1] != "store_name" {
				t.Fatalf("headers = %v", headers)
			}
			if rows[0].Cells["store_name"] != "Grill" {
				t.Errorf("store_name = %q", rows[0].Cells["store_name"])
			}
		})
	}
}

func TestDecodeCSVSkipsEmptyLinesKeepingNumbers(t *testing.T) {
	src := "first_name,store_name\nAri,Grill\n,\nLana,Cafe\n"

	_, rows, err := New().Decode(strings.NewReader(src), "stores.csv")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[1].Line != 4 {
		t.Errorf("second row line = %d, want 4 (blank line keeps its number)", rows[1].Line)
	}
}

func TestDecodeCSVInvalidUTF8(t *testing.T) {
	src := []byte("first_name,store_name\nAri,Gr\xffill\n")

	_, rows, err := New().Decode(bytes.NewReader(src), "stores.csv")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got := rows[0].Cells["store_name"]
	if !strings.Contains(got, "�") {
		t.Errorf("store_name = %q, want invalid byte replaced", got)
	}
}

func TestDecodeXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	cells := [][]string{
		{"first_name", "store_name", "name_sorani"},
		{"Ari", "Ari's Grill", "گرێلی ئاری"},
	}
	for i, line := range cells {
		for j, v := range line {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+1)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				t.Fatalf("SetCellValue: %v", err)
			}
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	// Content sniffing must win over the misleading extension.
	headers, rows, err := New().Decode(&buf, "stores.csv")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(headers) != 3 || headers[2] != "name_sorani" {
		t.Fatalf("headers = %v", headers)
	}
	if len(rows) != 1 || rows[0].Cells["name_sorani"] != "گرێلی ئاری" {
		t.Fatalf("rows = %v", rows)
	}
}

func TestDecodeDeclaredXLSXWithoutSignature(t *testing.T) {
	_, _, err := New().Decode(strings.NewReader("not a workbook"), "stores.xlsx")
	if err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Fatalf("err = %v, want unsupported format", err)
	}
}

func TestDecodeEmptyFile(t *testing.T) {
	_, _, err := New().Decode(strings.NewReader(""), "stores.csv")
	if err == nil {
		t.Fatal("want error for empty file")
	}
}

func equal(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
