package sqlrepo

import (
	"fmt"
	"strings"

	"github.com/meowmeowcode/orlok"
	"github.com/meowmeowcode/orlok/sql/adapter"
)

// Compiled is a parameterized SQL statement ready for execution. Every
// leaf value of the source filter becomes one bound argument; nothing
// from a filter is ever interpolated into the SQL text.
type Compiled struct {
	SQL  string
	Args []any
}

// Compiler translates the filter/query algebra into dialect-specific
// SQL. It is the relational counterpart of the in-memory evaluator: both
// must agree on the semantics of every operator.
type Compiler struct {
	adapter adapter.Adapter
}

// NewCompiler creates a compiler for the given dialect.
func NewCompiler(adpt adapter.Adapter) *Compiler {
	return &Compiler{adapter: adpt}
}

// Select compiles a read statement from a base query and a filter.
func (c *Compiler) Select(base string, filter orlok.Filter) (*Compiled, error) {
	out := &Compiled{SQL: base}
	if err := c.appendWhere(out, filter); err != nil {
		return nil, err
	}
	return out, nil
}

// SelectFirst compiles a read statement returning at most one row: the
// first row in the base statement's natural order.
func (c *Compiler) SelectFirst(base string, filter orlok.Filter) (*Compiled, error) {
	out, err := c.Select(base, filter)
	if err != nil {
		return nil, err
	}
	out.SQL += " LIMIT 1"
	return out, nil
}

// SelectForUpdate compiles a read statement that locks every matched row
// until the enclosing transaction ends.
func (c *Compiler) SelectForUpdate(base string, filter orlok.Filter) (*Compiled, error) {
	out, err := c.Select(base, filter)
	if err != nil {
		return nil, err
	}
	out.SQL += c.adapter.LockingClause()
	return out, nil
}

// SelectQuery compiles a full query: filter, ordering and pagination.
func (c *Compiler) SelectQuery(base string, query orlok.Query) (*Compiled, error) {
	out, err := c.Select(base, query.Filter)
	if err != nil {
		return nil, err
	}

	if len(query.OrderBy) > 0 {
		parts := make([]string, 0, len(query.OrderBy))
		for _, o := range query.OrderBy {
			if o.Desc {
				parts = append(parts, o.Field+" DESC")
			} else {
				parts = append(parts, o.Field+" ASC")
			}
		}
		out.SQL += " ORDER BY " + strings.Join(parts, ", ")
	}

	switch {
	case query.Limit != nil:
		out.SQL += " LIMIT " + c.placeholder(out)
		out.Args = append(out.Args, *query.Limit)
	case query.Offset != nil:
		if all := c.adapter.AllRowsLimit(); all != "" {
			out.SQL += " LIMIT " + all
		}
	}
	if query.Offset != nil {
		out.SQL += " OFFSET " + c.placeholder(out)
		out.Args = append(out.Args, *query.Offset)
	}
	return out, nil
}

// Exists compiles an existence check that avoids fetching rows.
func (c *Compiler) Exists(base string, filter orlok.Filter) (*Compiled, error) {
	inner, err := c.Select(base, filter)
	if err != nil {
		return nil, err
	}
	return &Compiled{
		SQL:  "SELECT EXISTS (" + inner.SQL + ")",
		Args: inner.Args,
	}, nil
}

// Count compiles a row count over the filtered base statement.
func (c *Compiler) Count(base string, filter orlok.Filter) (*Compiled, error) {
	inner, err := c.Select(base, filter)
	if err != nil {
		return nil, err
	}
	return &Compiled{
		SQL:  "SELECT COUNT(*) FROM (" + inner.SQL + ") AS q",
		Args: inner.Args,
	}, nil
}

// Insert compiles an insert of one record.
func (c *Compiler) Insert(table string, rec *orlok.Record) (*Compiled, error) {
	fields := rec.Fields()
	if len(fields) == 0 {
		return nil, orlok.NewUsageError("cannot insert an empty record")
	}

	out := &Compiled{}
	placeholders := make([]string, 0, len(fields))
	for _, field := range fields {
		v, _ := rec.Get(field)
		placeholders = append(placeholders, c.placeholder(out))
		out.Args = append(out.Args, v.Arg())
	}
	out.SQL = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(fields, ", "),
		strings.Join(placeholders, ", "))
	return out, nil
}

// Update compiles an update overwriting every matched row with the
// record's fields.
func (c *Compiler) Update(table string, rec *orlok.Record, filter orlok.Filter) (*Compiled, error) {
	fields := rec.Fields()
	if len(fields) == 0 {
		return nil, orlok.NewUsageError("cannot update with an empty record")
	}

	out := &Compiled{}
	sets := make([]string, 0, len(fields))
	for _, field := range fields {
		v, _ := rec.Get(field)
		sets = append(sets, field+" = "+c.placeholder(out))
		out.Args = append(out.Args, v.Arg())
	}
	out.SQL = fmt.Sprintf("UPDATE %s SET %s", table, strings.Join(sets, ", "))
	if err := c.appendWhere(out, filter); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete compiles a delete of every matched row.
func (c *Compiler) Delete(table string, filter orlok.Filter) (*Compiled, error) {
	out := &Compiled{SQL: "DELETE FROM " + table}
	if err := c.appendWhere(out, filter); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Compiler) appendWhere(out *Compiled, filter orlok.Filter) error {
	if filter == nil {
		return nil
	}
	predicate, err := c.compileNode(out, filter)
	if err != nil {
		return err
	}
	out.SQL += " WHERE " + predicate
	return nil
}

func (c *Compiler) compileNode(out *Compiled, f orlok.Filter) (string, error) {
	switch node := f.(type) {
	case orlok.And:
		// An empty conjunction is vacuously true.
		if len(node.Children) == 0 {
			return "1=1", nil
		}
		return c.compileChildren(out, node.Children, " AND ")
	case orlok.Or:
		// An empty disjunction matches nothing.
		if len(node.Children) == 0 {
			return "1=0", nil
		}
		return c.compileChildren(out, node.Children, " OR ")
	case orlok.Not:
		inner, err := c.compileNode(out, node.Child)
		if err != nil {
			return "", err
		}
		// COALESCE collapses SQL's unknown to false so that negation
		// over null comparisons stays plain boolean, matching the
		// in-memory evaluator.
		return "NOT COALESCE((" + inner + "), FALSE)", nil
	case orlok.Cond:
		return c.compileCond(out, node)
	}
	return "", orlok.NewUsageError("unknown filter node")
}

func (c *Compiler) compileChildren(out *Compiled, children []orlok.Filter, sep string) (string, error) {
	parts := make([]string, 0, len(children))
	for _, child := range children {
		s, err := c.compileNode(out, child)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

func (c *Compiler) compileCond(out *Compiled, cond orlok.Cond) (string, error) {
	field := cond.Field
	switch cond.Op {
	case orlok.OpIsNull:
		return field + " IS NULL", nil
	case orlok.OpEq:
		if cond.Value.IsNull() {
			return field + " IS NULL", nil
		}
		return c.comparison(out, field, "=", cond.Value), nil
	case orlok.OpNe:
		if cond.Value.IsNull() {
			return field + " IS NOT NULL", nil
		}
		return c.comparison(out, field, "<>", cond.Value), nil
	case orlok.OpGt:
		return c.comparison(out, field, ">", cond.Value), nil
	case orlok.OpGe:
		return c.comparison(out, field, ">=", cond.Value), nil
	case orlok.OpLt:
		return c.comparison(out, field, "<", cond.Value), nil
	case orlok.OpLe:
		return c.comparison(out, field, "<=", cond.Value), nil
	case orlok.OpContains:
		return c.like(out, field, cond.Value, true, true), nil
	case orlok.OpPrefix:
		return c.like(out, field, cond.Value, false, true), nil
	case orlok.OpSuffix:
		return c.like(out, field, cond.Value, true, false), nil
	case orlok.OpIn:
		if len(cond.Values) == 0 {
			return "1=0", nil
		}
		placeholders := make([]string, 0, len(cond.Values))
		for _, v := range cond.Values {
			placeholders = append(placeholders, c.placeholder(out))
			out.Args = append(out.Args, v.Arg())
		}
		return field + " IN (" + strings.Join(placeholders, ", ") + ")", nil
	case orlok.OpBetween:
		if len(cond.Values) != 2 {
			return "", orlok.NewUsageError("between requires exactly two operands")
		}
		from := c.placeholder(out)
		out.Args = append(out.Args, cond.Values[0].Arg())
		to := c.placeholder(out)
		out.Args = append(out.Args, cond.Values[1].Arg())
		return field + " BETWEEN " + from + " AND " + to, nil
	}
	return "", orlok.NewUsageError("unknown filter operator " + string(cond.Op))
}

func (c *Compiler) comparison(out *Compiled, field, op string, v orlok.Value) string {
	s := field + " " + op + " " + c.placeholder(out)
	out.Args = append(out.Args, v.Arg())
	return s
}

func (c *Compiler) like(out *Compiled, field string, v orlok.Value, before, after bool) string {
	needle, _ := v.Text()
	pattern := escapeLike(needle)
	if before {
		pattern = "%" + pattern
	}
	if after {
		pattern += "%"
	}
	s := field + " " + c.adapter.LikeOperator() + " " + c.placeholder(out) + c.adapter.LikeEscapeClause()
	out.Args = append(out.Args, pattern)
	return s
}

func (c *Compiler) placeholder(out *Compiled) string {
	return c.adapter.Placeholder(len(out.Args) + 1)
}

// escapeLike escapes LIKE wildcards in a literal needle so that filter
// operands match text, not patterns.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
