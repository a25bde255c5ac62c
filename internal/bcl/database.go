package bcl

import (
	"context"
	"errors"
)

// ErrDatabase marks failures to reach or read the docbase.
var ErrDatabase = errors.New("docbase error")

// Database reads the docbase metadata the audit runs against.
// Implementations only read; the docbase is never modified.
type Database interface {
	// LoadStores returns every filestore with its local root path.
	LoadStores(ctx context.Context) ([]Store, error)

	// ContentStoreIDs returns the distinct store ids referenced by stored
	// contents.
	ContentStoreIDs(ctx context.Context) ([]string, error)

	// FormatExtensions maps format names to their file extension, leading
	// dot included. Formats without an extension are absent.
	FormatExtensions(ctx context.Context) (map[string]string, error)

	// ScanContents streams every stored content with its parent, ordered by
	// store and ticket. The extension of each content is resolved with ext
	// while the row is decoded. Scanning stops at the first error returned
	// by fn, which is then returned.
	ScanContents(ctx context.Context, ext *ExtensionResolver, fn func(DecoratedContent) error) error

	// Close closes the database connection.
	Close() error
}

// Reporter records the contents that failed verification.
type Reporter interface {
	Report(dc DecoratedContent, result Result) error
}

// ProgressObserver is notified of every check so the user can see the
// audit is alive.
type ProgressObserver interface {
	Observe(result Result)
	Finish()
}
