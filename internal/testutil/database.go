package testutil

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"bcl-go/internal/database"
	"bcl-go/internal/database/migrations"
)

// TestDocbase is an in-memory SQLite snapshot with helpers to seed the
// Documentum tables.
type TestDocbase struct {
	*database.DocbaseDatabase
	raw *sql.DB
	t   *testing.T
	seq int
}

// TestContent describes one content row to seed.
type TestContent struct {
	Store     string
	Ticket    int32
	Parent    string
	Format    string
	Page      int
	Rendition int
	Size      int64
	Modified  time.Time
}

// NewTestDatabase creates a new in-memory docbase with the schema applied.
// The database is automatically closed when the test completes.
func NewTestDatabase(t *testing.T) *TestDocbase {
	t.Helper()
	return newTestDocbase(t, ":memory:")
}

// NewTestSnapshot creates a snapshot file at path with the schema applied,
// for tests that open the docbase through its configuration.
func NewTestSnapshot(t *testing.T, path string) *TestDocbase {
	t.Helper()
	return newTestDocbase(t, path)
}

func newTestDocbase(t *testing.T, path string) *TestDocbase {
	t.Helper()

	sqlDB, err := database.OpenConnection(path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := migrations.MigrateUp(sqlDB); err != nil {
		sqlDB.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	db := &TestDocbase{
		DocbaseDatabase: database.NewDocbaseDatabase(sqlDB, "sqlite3", ""),
		raw:             sqlDB,
		t:               t,
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

// DB returns the underlying connection.
func (d *TestDocbase) DB() *sql.DB {
	return d.raw
}

func (d *TestDocbase) exec(query string, args ...any) {
	d.t.Helper()
	if _, err := d.raw.Exec(query, args...); err != nil {
		d.t.Fatalf("seeding docbase: %v", err)
	}
}

func (d *TestDocbase) nextID(tag string) string {
	d.seq++
	return fmt.Sprintf("%s%014x", tag, d.seq)
}

// AddStore adds a filestore named name whose location points at path.
func (d *TestDocbase) AddStore(id, name, path string, useExtensions bool) {
	d.t.Helper()
	d.exec(`INSERT INTO dm_location_s (r_object_id, object_name, file_system_path) VALUES (?, ?, ?)`,
		d.nextID("3a"), name, path)
	d.exec(`INSERT INTO dm_filestore_s (r_object_id, root, use_extensions) VALUES (?, ?, ?)`,
		id, name, useExtensions)
}

// AddFormat adds a format. An empty extension is stored as NULL.
func (d *TestDocbase) AddFormat(name, extension string) {
	d.t.Helper()
	ext := sql.NullString{String: extension, Valid: extension != ""}
	d.exec(`INSERT INTO dm_format_s (r_object_id, name, dos_extension) VALUES (?, ?, ?)`,
		d.nextID("27"), name, ext)
}

// AddObject adds a sysobject. An empty name is stored as NULL.
func (d *TestDocbase) AddObject(id, name, objectType string, current bool) {
	d.t.Helper()
	n := sql.NullString{String: name, Valid: name != ""}
	d.exec(`INSERT INTO dm_sysobject_s (r_object_id, object_name, r_object_type, i_has_folder) VALUES (?, ?, ?, ?)`,
		id, n, objectType, current)
}

// AddContent adds a content and its link to the parent object.
func (d *TestDocbase) AddContent(c TestContent) {
	d.t.Helper()
	if c.Modified.IsZero() {
		c.Modified = time.Date(2015, 6, 1, 8, 0, 0, 0, time.UTC)
	}
	id := d.nextID("06")
	d.exec(`INSERT INTO dmr_content_s (r_object_id, storage_id, data_ticket, full_format, rendition, content_size, set_time)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, c.Store, c.Ticket, c.Format, c.Rendition, c.Size, c.Modified)
	d.exec(`INSERT INTO dmr_content_r (r_object_id, i_position, parent_id, page) VALUES (?, -1, ?, ?)`,
		id, c.Parent, c.Page)
}
