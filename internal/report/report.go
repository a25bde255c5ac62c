// Package report writes the contents that failed verification to a
// delimited file, one line per content.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"bcl-go/internal/bcl"
)

// TimestampLayout names report files; it is the compact ISO 8601 form.
const TimestampLayout = "20060102T150405Z"

// FileName returns the report file name for a run started at now by user.
func FileName(user string, now time.Time) string {
	return fmt.Sprintf("%s-%s.csv", user, now.UTC().Format(TimestampLayout))
}

// CSVReporter implements bcl.Reporter. Every record is flushed as soon as it
// is written so an interrupted run keeps what it found.
type CSVReporter struct {
	mu     sync.Mutex
	w      *csv.Writer
	closer io.Closer
	path   string
	count  int64
}

var _ bcl.Reporter = (*CSVReporter)(nil)

// NewCSVReporter writes records to w with the given separator.
func NewCSVReporter(w io.Writer, separator rune) *CSVReporter {
	cw := csv.NewWriter(w)
	cw.Comma = separator
	r := &CSVReporter{w: cw}
	if c, ok := w.(io.Closer); ok {
		r.closer = c
	}
	return r
}

// Create creates the report file of a run in dir.
func Create(dir, user string, now time.Time, separator rune) (*CSVReporter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating report directory: %w", err)
	}
	path := filepath.Join(dir, FileName(user, now))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, fmt.Errorf("creating report: %w", err)
	}
	r := NewCSVReporter(f, separator)
	r.path = path
	return r, nil
}

// Report writes one failed content. OK results are ignored.
func (r *CSVReporter) Report(dc bcl.DecoratedContent, result bcl.Result) error {
	if result.Code() == bcl.CodeOK {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.w.Write(Record(dc, result)); err != nil {
		return fmt.Errorf("writing report record: %w", err)
	}
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		return fmt.Errorf("flushing report: %w", err)
	}
	r.count++
	return nil
}

// Record returns the fields written for a failed content.
func Record(dc bcl.DecoratedContent, result bcl.Result) []string {
	c, p := dc.Content, dc.Parent
	return []string{
		p.ID,
		p.Name,
		p.Type,
		strconv.FormatBool(p.Current),
		c.Format,
		strconv.FormatBool(c.Rendition),
		strconv.Itoa(c.Page),
		c.Modified.UTC().Format(time.RFC3339),
		c.Extension,
		strconv.FormatInt(c.Size, 10),
		// the docbase stores tickets as signed integers
		strconv.FormatInt(int64(int32(c.Ticket)), 10),
		result.Code().String(),
		result.ResolvedPath(),
		result.Describe(),
	}
}

// Path returns the report file, empty when not created by Create.
func (r *CSVReporter) Path() string {
	return r.path
}

// Count returns the number of records written.
func (r *CSVReporter) Count() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Close flushes pending output and closes the underlying writer.
func (r *CSVReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.w.Flush()
	err := r.w.Error()
	if r.closer != nil {
		if cerr := r.closer.Close(); err == nil {
			err = cerr
		}
		r.closer = nil
	}
	if err != nil {
		return fmt.Errorf("closing report: %w", err)
	}
	return nil
}
