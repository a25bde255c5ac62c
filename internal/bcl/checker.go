package bcl

import (
	"fmt"
	"path/filepath"
)

// Checker verifies that the file of a content exists with the expected size.
// It holds no mutable state and may be used from several goroutines.
type Checker struct {
	stores  *Stores
	fsmgr   FilesystemManager
	locator *Locator
	logger  Logger
}

// NewChecker creates a Checker resolving contents against stores.
func NewChecker(stores *Stores, fsmgr FilesystemManager, logger Logger) *Checker {
	return &Checker{
		stores:  stores,
		fsmgr:   fsmgr,
		locator: NewLocator(fsmgr),
		logger:  logger,
	}
}

// CanonicalPath returns the expected location of the content file.
func (c *Checker) CanonicalPath(content Content) (string, error) {
	store, ok := c.stores.ByID(content.Store)
	if !ok {
		return "", fmt.Errorf("%w: %s for content %s", ErrUnknownStore, content.Store, content.Key())
	}
	return filepath.Join(store.Path, RelativePath(content.Ticket, content.Extension)), nil
}

// Check verifies one content. The returned error is only set when the
// content refers to a store missing from the registry; every filesystem
// outcome is reported through the Result.
func (c *Checker) Check(dc DecoratedContent) (Result, error) {
	content := dc.Content
	canonical, err := c.CanonicalPath(content)
	if err != nil {
		return nil, err
	}

	path, found, err := c.locator.Locate(canonical)
	if err != nil {
		c.logger.Warn("fallback search failed, reporting content as not found",
			"content", content.Key(), "path", canonical, "error", err)
	}
	if found && path != canonical {
		c.logger.Debug("content found under another name",
			"content", content.Key(), "expected", canonical, "found", path)
	}

	if !found {
		if content.Size == 0 {
			return EmptyNotFound{Path: path}, nil
		}
		return NotFound{Path: path}, nil
	}

	info, err := c.fsmgr.Stat(path)
	if err != nil {
		return AccessError{Path: path, Err: err}, nil
	}
	actual := info.Size()
	switch {
	case actual == content.Size:
		return OK{}, nil
	case actual == 0:
		return Empty{Path: path, Expected: content.Size}, nil
	default:
		return SizeMismatch{Path: path, Expected: content.Size, Actual: actual}, nil
	}
}
