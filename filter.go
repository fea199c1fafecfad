package orlok

// Operator represents a comparison operation in filters.
type Operator string

const (
	OpEq       Operator = "eq"
	OpNe       Operator = "ne"
	OpGt       Operator = "gt"
	OpGe       Operator = "ge"
	OpLt       Operator = "lt"
	OpLe       Operator = "le"
	OpIn       Operator = "in"
	OpBetween  Operator = "between"
	OpPrefix   Operator = "prefix"   // string starts with
	OpSuffix   Operator = "suffix"   // string ends with
	OpContains Operator = "contains" // string contains
	OpIsNull   Operator = "isnull"
)

// Filter is a node in a filter expression tree. Building a filter never
// touches storage; it is pure data interpreted either by the SQL compiler
// or by the in-memory evaluator. The set of node types is closed: Cond,
// And, Or and Not.
type Filter interface{ isFilter() }

// Cond is a leaf comparison of one field against an operand.
// Value holds the operand for single-value operators; Values holds the
// operands for OpIn and OpBetween.
type Cond struct {
	Field  string
	Op     Operator
	Value  Value
	Values []Value
}

// And matches records that satisfy every child. An empty And matches
// every record.
type And struct {
	Children []Filter
}

// Or matches records that satisfy any child. An empty Or matches no
// record.
type Or struct {
	Children []Filter
}

// Not inverts its child. The negation is plain boolean, including over
// null comparisons: both interpreters collapse SQL-style unknown to false
// before negating.
type Not struct {
	Child Filter
}

func (Cond) isFilter() {}
func (And) isFilter()  {}
func (Or) isFilter()   {}
func (Not) isFilter()  {}

// Constructors. Eq with Null() matches records where the field is null;
// Ne with Null() matches records where it is not.

func Eq(field string, v Value) Filter { return Cond{Field: field, Op: OpEq, Value: v} }
func Ne(field string, v Value) Filter { return Cond{Field: field, Op: OpNe, Value: v} }
func Gt(field string, v Value) Filter { return Cond{Field: field, Op: OpGt, Value: v} }
func Ge(field string, v Value) Filter { return Cond{Field: field, Op: OpGe, Value: v} }
func Lt(field string, v Value) Filter { return Cond{Field: field, Op: OpLt, Value: v} }
func Le(field string, v Value) Filter { return Cond{Field: field, Op: OpLe, Value: v} }

// Contains matches text fields containing the given substring,
// case-sensitively.
func Contains(field, s string) Filter {
	return Cond{Field: field, Op: OpContains, Value: Text(s)}
}

// Prefix matches text fields starting with the given string.
func Prefix(field, s string) Filter {
	return Cond{Field: field, Op: OpPrefix, Value: Text(s)}
}

// Suffix matches text fields ending with the given string.
func Suffix(field, s string) Filter {
	return Cond{Field: field, Op: OpSuffix, Value: Text(s)}
}

// In matches records whose field equals any of the given values.
// With no values it matches nothing.
func In(field string, values ...Value) Filter {
	return Cond{Field: field, Op: OpIn, Values: values}
}

// Between matches records whose field lies in [from, to], inclusive on
// both ends.
func Between(field string, from, to Value) Filter {
	return Cond{Field: field, Op: OpBetween, Values: []Value{from, to}}
}

// IsNull matches records where the field is null.
func IsNull(field string) Filter {
	return Cond{Field: field, Op: OpIsNull, Value: Null()}
}

// AndOf combines filters so that all must match. With no children it
// matches everything.
func AndOf(filters ...Filter) Filter { return And{Children: filters} }

// OrOf combines filters so that at least one must match. With no children
// it matches nothing.
func OrOf(filters ...Filter) Filter { return Or{Children: filters} }

// NotOf negates a filter.
func NotOf(f Filter) Filter { return Not{Child: f} }
