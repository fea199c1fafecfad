package memrepo

import (
	"sort"
	"strings"

	"github.com/meowmeowcode/orlok"
)

// matches evaluates a filter tree directly against one record. It is
// the in-memory counterpart of the SQL compiler and must agree with it
// on every operator: null fields fail value comparisons, Eq/Ne against
// Null test for (non-)nullness, empty And is true, empty Or is false,
// and Not is plain boolean negation. A nil filter matches everything,
// like a statement without a WHERE clause.
func matches(rec *orlok.Record, f orlok.Filter) (bool, error) {
	if f == nil {
		return true, nil
	}
	switch node := f.(type) {
	case orlok.And:
		for _, child := range node.Children {
			ok, err := matches(rec, child)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case orlok.Or:
		for _, child := range node.Children {
			ok, err := matches(rec, child)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	case orlok.Not:
		ok, err := matches(rec, node.Child)
		if err != nil {
			return false, err
		}
		return !ok, nil
	case orlok.Cond:
		return matchesCond(rec, node)
	}
	return false, orlok.NewUsageError("unknown filter node")
}

func matchesCond(rec *orlok.Record, c orlok.Cond) (bool, error) {
	stored, ok := rec.Get(c.Field)
	if !ok {
		return false, orlok.NewFilterFieldError(c.Field, "")
	}

	switch c.Op {
	case orlok.OpIsNull:
		return stored.IsNull(), nil
	case orlok.OpEq:
		if c.Value.IsNull() {
			return stored.IsNull(), nil
		}
		if stored.IsNull() {
			return false, nil
		}
		return stored.Equal(c.Value)
	case orlok.OpNe:
		if c.Value.IsNull() {
			return !stored.IsNull(), nil
		}
		if stored.IsNull() {
			return false, nil
		}
		eq, err := stored.Equal(c.Value)
		return !eq, err
	case orlok.OpGt, orlok.OpGe, orlok.OpLt, orlok.OpLe:
		if stored.IsNull() {
			return false, nil
		}
		cmp, err := stored.Compare(c.Value)
		if err != nil {
			return false, err
		}
		switch c.Op {
		case orlok.OpGt:
			return cmp > 0, nil
		case orlok.OpGe:
			return cmp >= 0, nil
		case orlok.OpLt:
			return cmp < 0, nil
		default:
			return cmp <= 0, nil
		}
	case orlok.OpContains, orlok.OpPrefix, orlok.OpSuffix:
		if stored.IsNull() {
			return false, nil
		}
		text, ok := stored.Text()
		if !ok {
			return false, orlok.NewFilterTypeError(c.Field, c.Op, orlok.KindText, stored.Kind())
		}
		needle, _ := c.Value.Text()
		switch c.Op {
		case orlok.OpContains:
			return strings.Contains(text, needle), nil
		case orlok.OpPrefix:
			return strings.HasPrefix(text, needle), nil
		default:
			return strings.HasSuffix(text, needle), nil
		}
	case orlok.OpIn:
		if stored.IsNull() {
			return false, nil
		}
		for _, v := range c.Values {
			eq, err := stored.Equal(v)
			if err != nil {
				return false, err
			}
			if eq {
				return true, nil
			}
		}
		return false, nil
	case orlok.OpBetween:
		if len(c.Values) != 2 {
			return false, orlok.NewUsageError("between requires exactly two operands")
		}
		if stored.IsNull() {
			return false, nil
		}
		low, err := stored.Compare(c.Values[0])
		if err != nil {
			return false, err
		}
		high, err := stored.Compare(c.Values[1])
		if err != nil {
			return false, err
		}
		return low >= 0 && high <= 0, nil
	}
	return false, orlok.NewUsageError("unknown filter operator " + string(c.Op))
}

// sortRecords orders records by the given keys with a stable sort, so
// ties keep insertion order.
func sortRecords(records []*orlok.Record, orderBy []orlok.Order) {
	sort.SliceStable(records, func(i, j int) bool {
		for _, o := range orderBy {
			a, _ := records[i].Get(o.Field)
			b, _ := records[j].Get(o.Field)
			cmp := compareForSort(a, b)
			if o.Desc {
				cmp = -cmp
			}
			if cmp != 0 {
				return cmp < 0
			}
		}
		return false
	})
}

// compareForSort orders values for sorting. Null sorts before every
// non-null value; booleans order false before true; values whose kinds
// cannot be compared rank equal.
func compareForSort(a, b orlok.Value) int {
	switch {
	case a.IsNull() && b.IsNull():
		return 0
	case a.IsNull():
		return -1
	case b.IsNull():
		return 1
	}
	if af, aok := a.Bool(); aok {
		if bf, bok := b.Bool(); bok {
			switch {
			case af == bf:
				return 0
			case bf:
				return -1
			default:
				return 1
			}
		}
		return 0
	}
	cmp, err := a.Compare(b)
	if err != nil {
		return 0
	}
	return cmp
}
