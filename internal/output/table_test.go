package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"bcl-go/internal/bcl"
)

func TestSummaryTable(t *testing.T) {
	s := &bcl.Summary{
		Stores:        2,
		Total:         12,
		Skipped:       2,
		Counts:        map[bcl.Code]int64{bcl.CodeOK: 7, bcl.CodeNotFound: 2, bcl.CodeError: 1},
		StoresElapsed: 1500 * time.Microsecond,
		ScanElapsed:   2*time.Second + 345678*time.Microsecond,
	}

	rows := SummaryTable(s).Rows()

	if len(rows) != len(bcl.Codes)+6 {
		t.Fatalf("len(rows) = %d, want %d", len(rows), len(bcl.Codes)+6)
	}
	for i, code := range bcl.Codes {
		if rows[i][0] != code.String() {
			t.Errorf("rows[%d] = %v, want code %s", i, rows[i], code)
		}
	}
	want := map[string]string{
		"OK":             "7",
		"NOTFOUND":       "2",
		"BADSIZE":        "0",
		"ERROR":          "1",
		"read":           "12",
		"skipped":        "2",
		"checked":        "10",
		"stores":         "2",
		"stores elapsed": "1ms",
		"scan elapsed":   "2.345s",
	}
	for _, row := range rows {
		if v, ok := want[row[0]]; ok && row[1] != v {
			t.Errorf("%s = %q, want %q", row[0], row[1], v)
		}
	}
}

func TestStoresTable(t *testing.T) {
	a, _ := bcl.NewStore("2800162a80000100", "filestore_01", "/data/docbase/content_storage_01", false)
	b, _ := bcl.NewStore("2800162a80000200", "thumbnail_store_01", "/data/docbase/thumbnail_storage_01", true)
	stores, err := bcl.NewStores(a, b)
	if err != nil {
		t.Fatalf("NewStores() error = %v", err)
	}

	var buf bytes.Buffer
	PrintTable(&buf, StoresTable(stores))
	out := buf.String()

	for _, want := range []string{"ID", "NAME", "filestore_01", "/data/docbase/thumbnail_storage_01/0000162a", "true"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if lines := strings.Count(strings.TrimRight(out, "\n"), "\n") + 1; lines != 3 {
		t.Errorf("output has %d lines, want 3:\n%s", lines, out)
	}
}

func TestListTable(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, ListTable("Report", []string{"a.csv", "b.csv.age"}))

	out := buf.String()
	if !strings.Contains(out, "REPORT") || !strings.Contains(out, "b.csv.age") {
		t.Errorf("PrintTable() = %q", out)
	}
}
