package orlok

// SchemaField declares one field of a record shape.
type SchemaField struct {
	Name string
	Kind Kind
}

// Schema declares the record shape a repository works with: the field
// set produced by its dump mapping, with the kind of each field. Every
// filter and query is validated against it before any backend call, so a
// typo in a field name surfaces as a FilterFieldError instead of a
// backend failure.
type Schema struct {
	fields []SchemaField
	kinds  map[string]Kind
}

// NewSchema builds a schema from field declarations in column order.
func NewSchema(fields ...SchemaField) Schema {
	kinds := make(map[string]Kind, len(fields))
	for _, f := range fields {
		kinds[f.Name] = f.Kind
	}
	return Schema{fields: fields, kinds: kinds}
}

// Field declares a schema field.
func Field(name string, kind Kind) SchemaField {
	return SchemaField{Name: name, Kind: kind}
}

// Kind returns the declared kind of a field.
func (s Schema) Kind(field string) (Kind, bool) {
	k, ok := s.kinds[field]
	return k, ok
}

// Fields returns the declared fields in column order.
func (s Schema) Fields() []SchemaField {
	out := make([]SchemaField, len(s.fields))
	copy(out, s.fields)
	return out
}

// ValidateFilter checks every field reference and operand kind in a
// filter tree. The table name only decorates errors.
func (s Schema) ValidateFilter(table string, f Filter) error {
	if f == nil {
		return nil
	}
	switch node := f.(type) {
	case And:
		for _, child := range node.Children {
			if err := s.ValidateFilter(table, child); err != nil {
				return err
			}
		}
		return nil
	case Or:
		for _, child := range node.Children {
			if err := s.ValidateFilter(table, child); err != nil {
				return err
			}
		}
		return nil
	case Not:
		return s.ValidateFilter(table, node.Child)
	case Cond:
		return s.validateCond(table, node)
	}
	return NewUsageError("unknown filter node")
}

// ValidateQuery validates a query's filter and order fields.
func (s Schema) ValidateQuery(table string, q Query) error {
	if err := s.ValidateFilter(table, q.Filter); err != nil {
		return err
	}
	for _, o := range q.OrderBy {
		if _, ok := s.kinds[o.Field]; !ok {
			return NewFilterFieldError(o.Field, table)
		}
	}
	if q.Limit != nil && *q.Limit < 0 {
		return NewUsageError("limit must not be negative")
	}
	if q.Offset != nil && *q.Offset < 0 {
		return NewUsageError("offset must not be negative")
	}
	return nil
}

func (s Schema) validateCond(table string, c Cond) error {
	kind, ok := s.kinds[c.Field]
	if !ok {
		return NewFilterFieldError(c.Field, table)
	}

	switch c.Op {
	case OpIsNull:
		return nil
	case OpEq, OpNe:
		// Null operands mean "is (not) null" and are always legal.
		if c.Value.IsNull() {
			return nil
		}
		return s.checkOperand(c, kind, c.Value)
	case OpGt, OpGe, OpLt, OpLe:
		if !kindOrders(kind) {
			return NewFilterTypeError(c.Field, c.Op, kind, c.Value.Kind())
		}
		return s.checkOperand(c, kind, c.Value)
	case OpContains, OpPrefix, OpSuffix:
		if kind != KindText {
			return NewFilterTypeError(c.Field, c.Op, KindText, kind)
		}
		return s.checkOperand(c, kind, c.Value)
	case OpIn:
		for _, v := range c.Values {
			if err := s.checkOperand(c, kind, v); err != nil {
				return err
			}
		}
		return nil
	case OpBetween:
		if len(c.Values) != 2 {
			return NewUsageError("between requires exactly two operands")
		}
		if !kindOrders(kind) {
			return NewFilterTypeError(c.Field, c.Op, kind, kind)
		}
		for _, v := range c.Values {
			if err := s.checkOperand(c, kind, v); err != nil {
				return err
			}
		}
		return nil
	}
	return NewUsageError("unknown filter operator " + string(c.Op))
}

func (s Schema) checkOperand(c Cond, want Kind, v Value) error {
	if v.Kind() != want {
		return NewFilterTypeError(c.Field, c.Op, want, v.Kind())
	}
	return nil
}

// kindOrders reports whether a kind supports ordering comparisons.
func kindOrders(k Kind) bool {
	switch k {
	case KindText, KindInt, KindDecimal, KindTime:
		return true
	}
	return false
}
