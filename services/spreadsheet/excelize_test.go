package sheetsvc

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/logopedika/kabinet/core"
)

func TestRows(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetList()[0]
	cells := map[string]string{
		"A1": "1", "B1": "r sound",
		"A2": "2", "B2": "l sound",
		"A3": "3",
	}
	for cell, val := range cells {
		if err := f.SetCellValue(sheet, cell, val); err != nil {
			t.Fatalf("SetCellValue(%s) failed: %v", cell, err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer() failed: %v", err)
	}

	rows, err := Rows(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Rows() failed: %v", err)
	}
	want := [][]string{
		{"1", "r sound"},
		{"2", "l sound"},
		{"3"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("Rows() = %v, want %v", rows, want)
	}
}

func TestRows_notASpreadsheet(t *testing.T) {
	_, err := Rows(strings.NewReader("definitely not a workbook"))
	if err == nil {
		t.Fatal("Rows() error = nil, want ParseError")
	}
	if _, ok := err.(*core.ParseError); !ok {
		t.Errorf("Rows() error = %T, want *core.ParseError", err)
	}
}
