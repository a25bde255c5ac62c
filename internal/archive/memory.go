package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"sync"

	"bcl-go/internal/bcl"
)

// MemoryArchive keeps reports in memory. It is safe for concurrent use and
// meant for tests.
type MemoryArchive struct {
	name    string
	mu      sync.RWMutex
	reports map[string][]byte
}

var _ bcl.Archive = (*MemoryArchive)(nil)

func NewMemoryArchive(name string) *MemoryArchive {
	return &MemoryArchive{name: name, reports: make(map[string][]byte)}
}

func (m *MemoryArchive) Name() string { return m.name }

func (m *MemoryArchive) Put(ctx context.Context, name string, r io.Reader, size int64) error {
	if err := checkName(name); err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[name] = data
	return nil
}

func (m *MemoryArchive) Get(ctx context.Context, name string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.reports[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func (m *MemoryArchive) List(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.reports))
	for name := range m.reports {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

func (m *MemoryArchive) ValidateSetup(ctx context.Context) error { return nil }
