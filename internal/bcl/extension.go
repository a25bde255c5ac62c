package bcl

// ExtensionResolver tells which file extension, if any, a content of a
// given store and format carries on disk.
type ExtensionResolver struct {
	stores     map[string]struct{}
	extensions map[string]string
}

// NewExtensionResolver builds a resolver from the ids of the stores that
// record extensions and the format to extension table. Extensions carry
// their leading dot.
func NewExtensionResolver(storeIDs []string, extensions map[string]string) *ExtensionResolver {
	r := &ExtensionResolver{
		stores:     make(map[string]struct{}, len(storeIDs)),
		extensions: make(map[string]string, len(extensions)),
	}
	for _, id := range storeIDs {
		r.stores[id] = struct{}{}
	}
	for format, ext := range extensions {
		r.extensions[format] = ext
	}
	return r
}

// Resolve returns the extension for the store and format. It returns false
// when the store does not use extensions or the format has none.
func (r *ExtensionResolver) Resolve(storeID, format string) (string, bool) {
	if _, ok := r.stores[storeID]; !ok {
		return "", false
	}
	ext := r.extensions[format]
	if ext == "" {
		return "", false
	}
	return ext, true
}
