package orlok

// Record is the backend-neutral representation of one entity: an
// insertion-ordered mapping from field name to Value. Field order matters
// for SQL generation and for reproducible diagnostics, so a plain map is
// not enough.
type Record struct {
	fields []string
	values map[string]Value
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]Value)}
}

// Set stores a value under a field name. A new field keeps its insertion
// position; setting an existing field overwrites the value in place.
func (r *Record) Set(field string, v Value) *Record {
	if _, ok := r.values[field]; !ok {
		r.fields = append(r.fields, field)
	}
	r.values[field] = v
	return r
}

// Get returns the value for a field and whether the field is present.
func (r *Record) Get(field string) (Value, bool) {
	v, ok := r.values[field]
	return v, ok
}

// Fields returns field names in insertion order.
func (r *Record) Fields() []string {
	out := make([]string, len(r.fields))
	copy(out, r.fields)
	return out
}

// Len returns the number of fields.
func (r *Record) Len() int { return len(r.fields) }

// Clone returns an independent copy of the record.
func (r *Record) Clone() *Record {
	c := &Record{
		fields: make([]string, len(r.fields)),
		values: make(map[string]Value, len(r.values)),
	}
	copy(c.fields, r.fields)
	for k, v := range r.values {
		c.values[k] = v
	}
	return c
}

// Equal reports whether two records hold the same fields with equal
// values, ignoring field order.
func (r *Record) Equal(other *Record) bool {
	if len(r.values) != len(other.values) {
		return false
	}
	for k, v := range r.values {
		ov, ok := other.values[k]
		if !ok {
			return false
		}
		eq, err := v.Equal(ov)
		if err != nil || !eq {
			return false
		}
	}
	return true
}
