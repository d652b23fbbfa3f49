package metadata

// Filter is a conjunction of attribute equality conditions. A document
// matches when every key is present and its value equals the filter value.
// An empty (or nil) filter matches every document.
type Filter map[string]Value

// Matches reports whether the document satisfies the filter.
//
// Missing keys never match: a record without the attribute is excluded even
// if the filter value is Null.
func (f Filter) Matches(doc Document) bool {
	for key, want := range f {
		got, ok := doc[key]
		if !ok {
			return false
		}
		if !got.Equal(want) {
			return false
		}
	}
	return true
}

// Clone creates a deep copy of the filter.
func (f Filter) Clone() Filter {
	if f == nil {
		return nil
	}

	clone := make(Filter, len(f))
	for k, v := range f {
		clone[k] = v.clone()
	}
	return clone
}
