package bcl

import (
	"cmp"
	"fmt"
	"strings"
	"time"
)

// Content is a single content object of the docbase: one stored file,
// identified by its ticket within a store.
//
// Contents are ordered by Compare: primary content comes before renditions,
// then by format, page, store and ticket. Size, modification time and
// extension only break ties so that two distinct contents never compare equal.
type Content struct {
	Store     string
	Ticket    uint32
	Parent    string
	Rendition bool
	Format    string
	Page      int
	Extension string // empty when the store does not record extensions
	Size      int64
	Modified  time.Time
}

// NewContent validates and builds a Content. Modified is normalized to UTC.
func NewContent(store string, ticket uint32, parent string, rendition bool, format string, page int, extension string, size int64, modified time.Time) (Content, error) {
	if store == "" {
		return Content{}, fmt.Errorf("content %d: empty store id", ticket)
	}
	if parent == "" {
		return Content{}, fmt.Errorf("content %s/%d: empty parent id", store, ticket)
	}
	if format == "" {
		return Content{}, fmt.Errorf("content %s/%d: empty format", store, ticket)
	}
	if page < 0 {
		return Content{}, fmt.Errorf("content %s/%d: negative page %d", store, ticket, page)
	}
	if size < 0 {
		return Content{}, fmt.Errorf("content %s/%d: negative size %d", store, ticket, size)
	}
	return Content{
		Store:     store,
		Ticket:    ticket,
		Parent:    parent,
		Rendition: rendition,
		Format:    format,
		Page:      page,
		Extension: extension,
		Size:      size,
		Modified:  modified.UTC(),
	}, nil
}

// HasExtension reports whether the content carries a file extension.
func (c Content) HasExtension() bool {
	return c.Extension != ""
}

// Key returns the "store/ticket" identity of the content.
func (c Content) Key() string {
	return fmt.Sprintf("%s/%d", c.Store, c.Ticket)
}

// Equal reports whether both contents describe the same stored file.
// Page is not part of the identity.
func (c Content) Equal(o Content) bool {
	return c.Ticket == o.Ticket &&
		c.Rendition == o.Rendition &&
		c.Size == o.Size &&
		c.Store == o.Store &&
		c.Parent == o.Parent &&
		c.Format == o.Format &&
		c.Extension == o.Extension &&
		c.Modified.Equal(o.Modified)
}

// Compare returns -1, 0 or +1 depending on whether a sorts before, equal to
// or after b. It is suitable for slices.SortFunc.
func Compare(a, b Content) int {
	if a.Rendition != b.Rendition {
		// primary content first
		if !a.Rendition {
			return -1
		}
		return 1
	}
	if c := strings.Compare(a.Format, b.Format); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Page, b.Page); c != 0 {
		return c
	}
	if c := strings.Compare(a.Store, b.Store); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Ticket, b.Ticket); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Size, b.Size); c != 0 {
		return c
	}
	if c := a.Modified.Compare(b.Modified); c != 0 {
		return c
	}
	return compareExtension(a.Extension, b.Extension)
}

// compareExtension orders present extensions before absent ones.
func compareExtension(a, b string) int {
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	}
	return strings.Compare(a, b)
}

func (c Content) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "{parent: %s, store: %s, ticket: %d, rendition: %t, format: %s, page: %d, modified: %s, size: %d",
		c.Parent, c.Store, c.Ticket, c.Rendition, c.Format, c.Page, c.Modified.Format(time.RFC3339), c.Size)
	if c.HasExtension() {
		fmt.Fprintf(&sb, ", extension: %s", c.Extension)
	}
	sb.WriteString("}")
	return sb.String()
}

// Parent is the sysobject owning one or more contents.
type Parent struct {
	ID      string
	Name    string
	Type    string
	Current bool // current version of the object
}

// NewParent builds a Parent. A missing object name is stored as "".
func NewParent(id, name, typ string, current bool) (Parent, error) {
	if id == "" {
		return Parent{}, fmt.Errorf("parent: empty id")
	}
	if typ == "" {
		return Parent{}, fmt.Errorf("parent %s: empty type", id)
	}
	return Parent{ID: id, Name: name, Type: typ, Current: current}, nil
}

// Key returns the identity used to index parents. All contents of one object
// share the same name, type and current flag, so the id alone is enough.
func (p Parent) Key() string {
	return p.ID
}

// Equal reports whether both parents carry the same fields.
func (p Parent) Equal(o Parent) bool {
	return p == o
}

// DecoratedContent pairs a content with its owning parent.
type DecoratedContent struct {
	Content Content
	Parent  Parent
}

// Equal reports whether both content and parent match.
func (dc DecoratedContent) Equal(o DecoratedContent) bool {
	return dc.Content.Equal(o.Content) && dc.Parent.Equal(o.Parent)
}
