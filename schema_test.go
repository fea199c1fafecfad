package orlok_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meowmeowcode/orlok"
)

func userSchema() orlok.Schema {
	return orlok.NewSchema(
		orlok.Field("id", orlok.KindID),
		orlok.Field("name", orlok.KindText),
		orlok.Field("age", orlok.KindInt),
		orlok.Field("nickname", orlok.KindText),
		orlok.Field("active", orlok.KindBool),
	)
}

func TestSchemaFields(t *testing.T) {
	s := userSchema()

	fields := s.Fields()
	require.Len(t, fields, 5)
	assert.Equal(t, "id", fields[0].Name)
	assert.Equal(t, "active", fields[4].Name)

	kind, ok := s.Kind("age")
	require.True(t, ok)
	assert.Equal(t, orlok.KindInt, kind)

	_, ok = s.Kind("missing")
	assert.False(t, ok)
}

func TestValidateFilter(t *testing.T) {
	s := userSchema()

	valid := []orlok.Filter{
		nil,
		orlok.Eq("name", orlok.Text("Alice")),
		orlok.Eq("nickname", orlok.Null()),
		orlok.Ne("nickname", orlok.Null()),
		orlok.IsNull("nickname"),
		orlok.Gt("age", orlok.Int(18)),
		orlok.Contains("name", "li"),
		orlok.In("age", orlok.Int(1), orlok.Int(2)),
		orlok.Between("age", orlok.Int(20), orlok.Int(30)),
		orlok.AndOf(orlok.Eq("active", orlok.Bool(true)), orlok.NotOf(orlok.IsNull("nickname"))),
		orlok.OrOf(),
	}
	for _, f := range valid {
		assert.NoError(t, s.ValidateFilter("users", f))
	}
}

func TestValidateFilterUnknownField(t *testing.T) {
	err := userSchema().ValidateFilter("users", orlok.Eq("namme", orlok.Text("Alice")))
	require.Error(t, err)
	assert.True(t, orlok.IsFilterFieldError(err))
	assert.Contains(t, err.Error(), "namme")

	// Nested nodes are walked too.
	err = userSchema().ValidateFilter("users", orlok.AndOf(
		orlok.Eq("name", orlok.Text("Alice")),
		orlok.NotOf(orlok.Gt("agee", orlok.Int(1))),
	))
	assert.True(t, orlok.IsFilterFieldError(err))
}

func TestValidateFilterKindMismatch(t *testing.T) {
	s := userSchema()

	cases := []orlok.Filter{
		orlok.Eq("age", orlok.Text("18")),
		orlok.Gt("active", orlok.Bool(false)),
		orlok.Contains("age", "1"),
		orlok.In("name", orlok.Text("a"), orlok.Int(1)),
		orlok.Between("name", orlok.Text("a"), orlok.Int(1)),
	}
	for _, f := range cases {
		err := s.ValidateFilter("users", f)
		require.Error(t, err)
		assert.True(t, orlok.IsFilterTypeError(err), "filter %#v", f)
	}
}

func TestValidateQuery(t *testing.T) {
	s := userSchema()

	q := orlok.NewQuery().
		Where(orlok.Gt("age", orlok.Int(18))).
		OrderByDesc("age").
		OrderByAsc("name").
		WithLimit(10).
		WithOffset(5)
	assert.NoError(t, s.ValidateQuery("users", q))

	err := s.ValidateQuery("users", orlok.NewQuery().OrderByAsc("missing"))
	assert.True(t, orlok.IsFilterFieldError(err))

	err = s.ValidateQuery("users", orlok.NewQuery().WithLimit(-1))
	assert.True(t, orlok.IsUsageError(err))

	err = s.ValidateQuery("users", orlok.NewQuery().WithOffset(-1))
	assert.True(t, orlok.IsUsageError(err))
}
