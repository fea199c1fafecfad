package orlok

// Order defines ordering on a field.
type Order struct {
	Field string
	Desc  bool
}

// Asc orders a field ascending.
func Asc(field string) Order { return Order{Field: field} }

// Desc orders a field descending.
func Desc(field string) Order { return Order{Field: field, Desc: true} }

// Query combines a filter with ordering and pagination. Backends apply
// the parts in a fixed pipeline: filter, then order, then offset, then
// limit. Ordering is a stable multi-key sort; ties remaining after all
// keys keep the backend's natural row order.
type Query struct {
	Filter  Filter
	OrderBy []Order
	Limit   *int
	Offset  *int
}

// NewQuery creates an empty query matching all records.
func NewQuery() Query { return Query{} }

// Where sets the query filter.
func (q Query) Where(f Filter) Query {
	q.Filter = f
	return q
}

// OrderByAsc appends an ascending order key.
func (q Query) OrderByAsc(field string) Query {
	q.OrderBy = append(q.OrderBy, Asc(field))
	return q
}

// OrderByDesc appends a descending order key.
func (q Query) OrderByDesc(field string) Query {
	q.OrderBy = append(q.OrderBy, Desc(field))
	return q
}

// WithLimit caps the number of returned records. Zero yields an empty
// result.
func (q Query) WithLimit(n int) Query {
	q.Limit = &n
	return q
}

// WithOffset skips the first n records after ordering. An offset past the
// end yields an empty result, not an error.
func (q Query) WithOffset(n int) Query {
	q.Offset = &n
	return q
}
