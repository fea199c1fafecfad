package orlok_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meowmeowcode/orlok"
)

func TestQueryBuilder(t *testing.T) {
	q := orlok.NewQuery().
		Where(orlok.Eq("name", orlok.Text("Alice"))).
		OrderByDesc("age").
		OrderByAsc("name").
		WithLimit(2).
		WithOffset(1)

	assert.Equal(t, orlok.Eq("name", orlok.Text("Alice")), q.Filter)
	require.Len(t, q.OrderBy, 2)
	assert.Equal(t, orlok.Desc("age"), q.OrderBy[0])
	assert.Equal(t, orlok.Asc("name"), q.OrderBy[1])
	require.NotNil(t, q.Limit)
	assert.Equal(t, 2, *q.Limit)
	require.NotNil(t, q.Offset)
	assert.Equal(t, 1, *q.Offset)
}

func TestQueryBuilderDoesNotMutate(t *testing.T) {
	base := orlok.NewQuery().Where(orlok.IsNull("nickname"))
	limited := base.WithLimit(1)

	assert.Nil(t, base.Limit)
	require.NotNil(t, limited.Limit)
	assert.Equal(t, base.Filter, limited.Filter)
}

func TestFilterConstructors(t *testing.T) {
	assert.Equal(t,
		orlok.Cond{Field: "age", Op: orlok.OpGe, Value: orlok.Int(18)},
		orlok.Ge("age", orlok.Int(18)))

	assert.Equal(t,
		orlok.Cond{Field: "name", Op: orlok.OpPrefix, Value: orlok.Text("Al")},
		orlok.Prefix("name", "Al"))

	assert.Equal(t,
		orlok.Cond{Field: "age", Op: orlok.OpIn, Values: []orlok.Value{orlok.Int(1), orlok.Int(2)}},
		orlok.In("age", orlok.Int(1), orlok.Int(2)))

	assert.Equal(t,
		orlok.Cond{Field: "nickname", Op: orlok.OpIsNull, Value: orlok.Null()},
		orlok.IsNull("nickname"))

	and, ok := orlok.AndOf(orlok.Eq("a", orlok.Int(1))).(orlok.And)
	require.True(t, ok)
	assert.Len(t, and.Children, 1)

	not, ok := orlok.NotOf(orlok.OrOf()).(orlok.Not)
	require.True(t, ok)
	assert.IsType(t, orlok.Or{}, not.Child)
}
