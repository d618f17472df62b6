package sheet

import (
	"bytes"
	"testing"
)

func TestWriteAndReadGrid(t *testing.T) {
	headers := []string{"id", "name"}
	rows := [][]string{
		{"1", "Dana"},
		{"2", "Noa"},
	}

	buf, err := WriteGrid("report", headers, rows)
	if err != nil {
		t.Fatalf("WriteGrid: %v", err)
	}

	gotHeaders, gotRows, err := ReadGrid(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadGrid: %v", err)
	}

	if len(gotHeaders) != 2 || gotHeaders[0] != "id" || gotHeaders[1] != "name" {
		t.Errorf("headers = %v", gotHeaders)
	}
	if len(gotRows) != 2 {
		t.Fatalf("rows = %d, want 2", len(gotRows))
	}
	if gotRows[0][1] != "Dana" || gotRows[1][0] != "2" {
		t.Errorf("rows = %v", gotRows)
	}
}

func TestReadGrid_NotAWorkbook(t *testing.T) {
	if _, _, err := ReadGrid(bytes.NewReader([]byte("not an xlsx"))); err == nil {
		t.Fatal("expected an error for a non-xlsx payload")
	}
}

func TestReadGrid_RowLimit(t *testing.T) {
	old := MaxRows
	MaxRows = 1
	defer func() { MaxRows = old }()

	buf, err := WriteGrid("big", []string{"id"}, [][]string{{"1"}, {"2"}})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := ReadGrid(bytes.NewReader(buf.Bytes())); err == nil {
		t.Fatal("expected row-limit error")
	}
}
