package protocol

import "strings"

// Field is a single header field. Names are always stored lower-case.
type Field struct {
	Name  string
	Value string
}

// Headers is an ordered multimap of header fields.
//
// Duplicate names are preserved in insertion order. All lookups are
// case-insensitive. A nil *Headers behaves as an empty set for read
// operations.
type Headers struct {
	fields []Field
}

// NewHeaders creates a header set from the given fields.
func NewHeaders(fields ...Field) *Headers {
	h := &Headers{fields: make([]Field, 0, len(fields))}
	for _, f := range fields {
		h.Add(f.Name, f.Value)
	}
	return h
}

// Add appends a field, keeping any existing fields with the same name.
func (h *Headers) Add(name, value string) {
	h.fields = append(h.fields, Field{Name: strings.ToLower(name), Value: value})
}

// Set replaces all fields named name with a single field.
func (h *Headers) Set(name, value string) {
	h.Delete(name)
	h.Add(name, value)
}

// Get returns the first value for name, or "" if absent.
func (h *Headers) Get(name string) string {
	if h == nil {
		return ""
	}
	name = strings.ToLower(name)
	for _, f := range h.fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// Values returns every value for name in insertion order.
func (h *Headers) Values(name string) []string {
	if h == nil {
		return nil
	}
	name = strings.ToLower(name)
	var values []string
	for _, f := range h.fields {
		if f.Name == name {
			values = append(values, f.Value)
		}
	}
	return values
}

// Has reports whether at least one field named name exists.
func (h *Headers) Has(name string) bool {
	if h == nil {
		return false
	}
	name = strings.ToLower(name)
	for _, f := range h.fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Delete removes every field named name and returns the removed values.
func (h *Headers) Delete(name string) []string {
	if h == nil {
		return nil
	}
	name = strings.ToLower(name)
	var removed []string
	kept := h.fields[:0]
	for _, f := range h.fields {
		if f.Name == name {
			removed = append(removed, f.Value)
			continue
		}
		kept = append(kept, f)
	}
	h.fields = kept
	return removed
}

// Extract removes every field whose name is in names and returns them in
// their original order.
func (h *Headers) Extract(names ...string) []Field {
	if h == nil || len(names) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[strings.ToLower(n)] = struct{}{}
	}

	var extracted []Field
	kept := h.fields[:0]
	for _, f := range h.fields {
		if _, ok := set[f.Name]; ok {
			extracted = append(extracted, f)
			continue
		}
		kept = append(kept, f)
	}
	h.fields = kept
	return extracted
}

// Fields returns a copy of all fields in order.
func (h *Headers) Fields() []Field {
	if h == nil {
		return nil
	}
	out := make([]Field, len(h.fields))
	copy(out, h.fields)
	return out
}

// Len returns the number of fields.
func (h *Headers) Len() int {
	if h == nil {
		return 0
	}
	return len(h.fields)
}

// Each calls fn for every field in order.
func (h *Headers) Each(fn func(name, value string)) {
	if h == nil {
		return
	}
	for _, f := range h.fields {
		fn(f.Name, f.Value)
	}
}

// Clone returns a deep copy of h.
func (h *Headers) Clone() *Headers {
	if h == nil {
		return NewHeaders()
	}
	return &Headers{fields: h.Fields()}
}
