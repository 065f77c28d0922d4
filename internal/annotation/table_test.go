package annotation_test

import (
	"strings"
	"testing"

	"swextract/internal/annotation"
)

func TestReadTableStripsByteOrderMark(t *testing.T) {
	table, err := annotation.ReadTable(strings.NewReader("\ufeffa,b\n1,2\n3,4\n"))
	if err != nil {
		t.Fatalf("ReadTable returned error: %v", err)
	}
	if table.Header[0] != "a" {
		t.Fatalf("expected BOM to be stripped, got %q", table.Header[0])
	}
	if table.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", table.Len())
	}
	if table.Lines[1] != 3 {
		t.Fatalf("expected second row on line 3, got %d", table.Lines[1])
	}
}

func TestReadTableEmpty(t *testing.T) {
	if _, err := annotation.ReadTable(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestReadTableRejectsBrokenQuotes(t *testing.T) {
	if _, err := annotation.ReadTable(strings.NewReader("a,b\n\"1,2\n")); err == nil {
		t.Fatal("expected error for unterminated quote")
	}
}

func TestColumnShortRow(t *testing.T) {
	table, err := annotation.ReadTable(strings.NewReader("a,b,c\n1,2,3\n4\n"))
	if err != nil {
		t.Fatalf("ReadTable returned error: %v", err)
	}
	if _, err := table.Column(2); err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Fatalf("expected short row error naming line 3, got %v", err)
	}
	values, err := table.Column(0)
	if err != nil || len(values) != 2 {
		t.Fatalf("unexpected column 0: %v %v", values, err)
	}
	if table.ColumnName(1) != "b" || table.ColumnName(9) != "" {
		t.Fatal("unexpected column names")
	}
}
