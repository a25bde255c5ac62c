package bcl

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateStoreID is returned when two stores share an id.
	ErrDuplicateStoreID = errors.New("duplicate store id")
	// ErrDuplicateStoreName is returned when two stores share a name.
	ErrDuplicateStoreName = errors.New("duplicate store name")
	// ErrUnknownStore is returned when a content refers to a store missing
	// from the registry.
	ErrUnknownStore = errors.New("unknown store")
)

// Store is a filestore of the docbase.
type Store struct {
	ID        string
	Name      string
	Path      string // local root, including the docbase directory
	Extension bool   // files are written with their format extension
}

// NewStore builds a Store. The docbase identifier is taken from characters
// 2 to 7 of id, left padded with zeros to 8 characters and appended to base:
// store 2800162a80000100 under /data lives in /data/0000162a.
func NewStore(id, name, base string, extension bool) (Store, error) {
	if len(id) < 8 {
		return Store{}, fmt.Errorf("store %q: id too short to carry a docbase id", id)
	}
	if name == "" {
		return Store{}, fmt.Errorf("store %s: empty name", id)
	}
	if base == "" {
		return Store{}, fmt.Errorf("store %s: empty path", id)
	}
	docbase := leftPad(id[2:8], 8, '0')
	return Store{
		ID:        id,
		Name:      name,
		Path:      base + "/" + docbase,
		Extension: extension,
	}, nil
}

func (s Store) String() string {
	return fmt.Sprintf("{id: %s, name: %s, path: %s, extension: %t}", s.ID, s.Name, s.Path, s.Extension)
}

// Stores is the immutable registry of stores, indexed by id and by name.
type Stores struct {
	all    []Store
	byID   map[string]Store
	byName map[string]Store
}

// NewStores builds the registry. It fails if two stores share an id or a name.
func NewStores(stores ...Store) (*Stores, error) {
	r := &Stores{
		all:    make([]Store, 0, len(stores)),
		byID:   make(map[string]Store, len(stores)),
		byName: make(map[string]Store, len(stores)),
	}
	for _, s := range stores {
		if _, ok := r.byID[s.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStoreID, s)
		}
		if _, ok := r.byName[s.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStoreName, s)
		}
		r.byID[s.ID] = s
		r.byName[s.Name] = s
		r.all = append(r.all, s)
	}
	return r, nil
}

// All returns the stores in registration order.
func (r *Stores) All() []Store {
	out := make([]Store, len(r.all))
	copy(out, r.all)
	return out
}

// Len returns the number of stores.
func (r *Stores) Len() int {
	return len(r.all)
}

// ByID returns the store with the given id.
func (r *Stores) ByID(id string) (Store, bool) {
	s, ok := r.byID[id]
	return s, ok
}

// ByName returns the store with the given name.
func (r *Stores) ByName(name string) (Store, bool) {
	s, ok := r.byName[name]
	return s, ok
}

// NameOf returns the name of the store with the given id.
func (r *Stores) NameOf(id string) (string, error) {
	s, ok := r.byID[id]
	if !ok {
		return "", fmt.Errorf("%w: id %s", ErrUnknownStore, id)
	}
	return s.Name, nil
}

// IDOf returns the id of the store with the given name.
func (r *Stores) IDOf(name string) (string, error) {
	s, ok := r.byName[name]
	if !ok {
		return "", fmt.Errorf("%w: name %s", ErrUnknownStore, name)
	}
	return s.ID, nil
}

// ExtensionStoreIDs returns the ids of the stores whose files carry their
// format extension.
func (r *Stores) ExtensionStoreIDs() []string {
	var ids []string
	for _, s := range r.all {
		if s.Extension {
			ids = append(ids, s.ID)
		}
	}
	return ids
}
