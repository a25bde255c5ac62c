package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bcl-go/internal/bcl"
)

// DocbaseDatabase reads the Documentum tables describing filestores,
// formats and contents. It works on any database/sql driver since every
// query is plain SQL without parameters.
type DocbaseDatabase struct {
	db     *sql.DB
	driver string
	schema string
	path   string
}

var _ bcl.Database = (*DocbaseDatabase)(nil)

// NewDocbaseDatabase wraps an open connection. schema, when not empty,
// qualifies every table name.
func NewDocbaseDatabase(db *sql.DB, driver, schema string) *DocbaseDatabase {
	return &DocbaseDatabase{db: db, driver: driver, schema: schema}
}

// table returns the qualified name of a docbase table.
func (d *DocbaseDatabase) table(name string) string {
	if d.schema == "" {
		return name
	}
	return d.schema + "." + name
}

func (d *DocbaseDatabase) storesQuery() string {
	return fmt.Sprintf(`SELECT f.r_object_id, f.root, f.use_extensions, l.file_system_path
FROM %s f INNER JOIN %s l ON (l.object_name = f.root)`,
		d.table("dm_filestore_s"), d.table("dm_location_sv"))
}

func (d *DocbaseDatabase) formatsQuery() string {
	return fmt.Sprintf(`SELECT name, dos_extension FROM %s
WHERE (dos_extension IS NOT NULL AND dos_extension <> ' ')`,
		d.table("dm_format_s"))
}

func (d *DocbaseDatabase) contentStoresQuery() string {
	return fmt.Sprintf(`SELECT DISTINCT storage_id FROM %s WHERE storage_id != '0000000000000000'`,
		d.table("dmr_content_s"))
}

func (d *DocbaseDatabase) contentsQuery() string {
	return fmt.Sprintf(`SELECT s.storage_id, s.data_ticket, r.parent_id, s.full_format, r.page,
	s.rendition, s.content_size, s.set_time, d.object_name, d.r_object_type, d.i_has_folder
FROM %s s
	INNER JOIN %s r ON (r.r_object_id = s.r_object_id)
	INNER JOIN %s d ON (r.parent_id = d.r_object_id)
WHERE s.storage_id != '0000000000000000'
ORDER BY s.storage_id, s.data_ticket`,
		d.table("dmr_content_s"), d.table("dmr_content_r"), d.table("dm_sysobject_s"))
}

// LoadStores returns every filestore with the path of its location.
func (d *DocbaseDatabase) LoadStores(ctx context.Context) ([]bcl.Store, error) {
	rows, err := d.db.QueryContext(ctx, d.storesQuery())
	if err != nil {
		return nil, fmt.Errorf("querying stores: %w: %w", bcl.ErrDatabase, err)
	}
	defer rows.Close()

	var stores []bcl.Store
	for rows.Next() {
		var (
			id, root, path string
			useExtensions  flag
		)
		if err := rows.Scan(&id, &root, &useExtensions, &path); err != nil {
			return nil, fmt.Errorf("scanning store: %w: %w", bcl.ErrDatabase, err)
		}
		store, err := bcl.NewStore(id, root, path, bool(useExtensions))
		if err != nil {
			return nil, err
		}
		stores = append(stores, store)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stores: %w: %w", bcl.ErrDatabase, err)
	}
	return stores, nil
}

// ContentStoreIDs returns the stores referenced by stored contents.
func (d *DocbaseDatabase) ContentStoreIDs(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, d.contentStoresQuery())
	if err != nil {
		return nil, fmt.Errorf("querying content stores: %w: %w", bcl.ErrDatabase, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning content store: %w: %w", bcl.ErrDatabase, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating content stores: %w: %w", bcl.ErrDatabase, err)
	}
	return ids, nil
}

// FormatExtensions maps each format to its extension with a leading dot.
func (d *DocbaseDatabase) FormatExtensions(ctx context.Context) (map[string]string, error) {
	rows, err := d.db.QueryContext(ctx, d.formatsQuery())
	if err != nil {
		return nil, fmt.Errorf("querying formats: %w: %w", bcl.ErrDatabase, err)
	}
	defer rows.Close()

	extensions := make(map[string]string)
	for rows.Next() {
		var name, ext string
		if err := rows.Scan(&name, &ext); err != nil {
			return nil, fmt.Errorf("scanning format: %w: %w", bcl.ErrDatabase, err)
		}
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		extensions[name] = "." + ext
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating formats: %w: %w", bcl.ErrDatabase, err)
	}
	return extensions, nil
}

// ScanContents streams the contents ordered by store and ticket. The error
// returned by fn stops the scan and is returned unwrapped.
func (d *DocbaseDatabase) ScanContents(ctx context.Context, ext *bcl.ExtensionResolver, fn func(bcl.DecoratedContent) error) error {
	rows, err := d.db.QueryContext(ctx, d.contentsQuery())
	if err != nil {
		return fmt.Errorf("querying contents: %w: %w", bcl.ErrDatabase, err)
	}
	defer rows.Close()

	for rows.Next() {
		dc, err := decodeContent(rows, ext)
		if err != nil {
			return err
		}
		if err := fn(dc); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating contents: %w: %w", bcl.ErrDatabase, err)
	}
	return nil
}

func decodeContent(rows *sql.Rows, ext *bcl.ExtensionResolver) (bcl.DecoratedContent, error) {
	var (
		storeID, parentID, format, objectType string
		ticket, size                          int64
		page                                  int
		rendition, current                    flag
		modified                              time.Time
		name                                  sql.NullString
	)
	err := rows.Scan(&storeID, &ticket, &parentID, &format, &page,
		&rendition, &size, &modified, &name, &objectType, &current)
	if err != nil {
		return bcl.DecoratedContent{}, fmt.Errorf("scanning content: %w: %w", bcl.ErrDatabase, err)
	}

	// data_ticket is a signed 32 bit integer; the path uses its bits.
	t := uint32(int32(ticket))
	extension, _ := ext.Resolve(storeID, format)

	content, err := bcl.NewContent(storeID, t, parentID, bool(rendition), format, page, extension, size, modified)
	if err != nil {
		return bcl.DecoratedContent{}, fmt.Errorf("decoding content: %w", err)
	}
	parent, err := bcl.NewParent(parentID, name.String, objectType, bool(current))
	if err != nil {
		return bcl.DecoratedContent{}, fmt.Errorf("decoding parent of %s: %w", content.Key(), err)
	}
	return bcl.DecoratedContent{Content: content, Parent: parent}, nil
}

// Driver returns the database/sql driver name.
func (d *DocbaseDatabase) Driver() string {
	return d.driver
}

// Path returns the snapshot file for SQLite databases, empty otherwise.
func (d *DocbaseDatabase) Path() string {
	return d.path
}

// Ping verifies the connection.
func (d *DocbaseDatabase) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DocbaseDatabase) Close() error {
	return d.db.Close()
}

// flag reads the boolean and small integer columns Documentum uses for
// flags. Any strictly positive number is true.
type flag bool

func (f *flag) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*f = false
	case bool:
		*f = flag(v)
	case int64:
		*f = v > 0
	case float64:
		*f = v > 0
	case []byte:
		return f.parse(string(v))
	case string:
		return f.parse(v)
	default:
		return fmt.Errorf("unsupported flag value %T", src)
	}
	return nil
}

func (f *flag) parse(s string) error {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*f = n > 0
		return nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("invalid flag value %q", s)
	}
	*f = flag(b)
	return nil
}
