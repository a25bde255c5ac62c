// Package output renders audit results for the terminal.
package output

import (
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"bcl-go/internal/bcl"
)

// TableData holds the headers and rows of a table.
type TableData struct {
	headers []string
	rows    [][]string
}

func NewTableData(headers ...string) *TableData {
	return &TableData{headers: headers}
}

func (t *TableData) AddRow(row ...string) {
	t.rows = append(t.rows, row)
}

func (t *TableData) Rows() [][]string {
	return t.rows
}

// PrintTable writes data as a borderless left aligned table.
func PrintTable(w io.Writer, data *TableData) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(data.headers)

	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	table.AppendBulk(data.rows)
	table.Render()
}

// SummaryTable lists the count of every result code in reporting order,
// followed by the run totals and timings.
func SummaryTable(s *bcl.Summary) *TableData {
	t := NewTableData("Result", "Count")
	for _, code := range bcl.Codes {
		t.AddRow(code.String(), strconv.FormatInt(s.Counts[code], 10))
	}
	t.AddRow("read", strconv.FormatInt(s.Total, 10))
	t.AddRow("skipped", strconv.FormatInt(s.Skipped, 10))
	t.AddRow("checked", strconv.FormatInt(s.Checked(), 10))
	t.AddRow("stores", strconv.Itoa(s.Stores))
	t.AddRow("stores elapsed", s.StoresElapsed.Truncate(time.Millisecond).String())
	t.AddRow("scan elapsed", s.ScanElapsed.Truncate(time.Millisecond).String())
	return t
}

// StoresTable lists the stores of the registry.
func StoresTable(stores *bcl.Stores) *TableData {
	t := NewTableData("ID", "Name", "Path", "Extension")
	for _, s := range stores.All() {
		t.AddRow(s.ID, s.Name, s.Path, strconv.FormatBool(s.Extension))
	}
	return t
}

// ListTable has one column and one row per item.
func ListTable(header string, items []string) *TableData {
	t := NewTableData(header)
	for _, item := range items {
		t.AddRow(item)
	}
	return t
}
