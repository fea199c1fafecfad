package orlok_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meowmeowcode/orlok"
)

func TestRecordInsertionOrder(t *testing.T) {
	rec := orlok.NewRecord().
		Set("id", orlok.Int(1)).
		Set("name", orlok.Text("Alice")).
		Set("age", orlok.Int(30))

	assert.Equal(t, []string{"id", "name", "age"}, rec.Fields())
	assert.Equal(t, 3, rec.Len())

	// Overwriting keeps the original position.
	rec.Set("name", orlok.Text("Bob"))
	assert.Equal(t, []string{"id", "name", "age"}, rec.Fields())

	v, ok := rec.Get("name")
	require.True(t, ok)
	assert.Equal(t, orlok.Text("Bob"), v)

	_, ok = rec.Get("missing")
	assert.False(t, ok)
}

func TestRecordClone(t *testing.T) {
	rec := orlok.NewRecord().Set("name", orlok.Text("Alice"))
	clone := rec.Clone()

	clone.Set("name", orlok.Text("Bob")).Set("age", orlok.Int(30))

	v, _ := rec.Get("name")
	assert.Equal(t, orlok.Text("Alice"), v)
	assert.Equal(t, 1, rec.Len())
	assert.Equal(t, 2, clone.Len())
}

func TestRecordEqual(t *testing.T) {
	a := orlok.NewRecord().Set("id", orlok.Int(1)).Set("name", orlok.Text("Alice"))
	b := orlok.NewRecord().Set("name", orlok.Text("Alice")).Set("id", orlok.Int(1))
	c := orlok.NewRecord().Set("id", orlok.Int(2)).Set("name", orlok.Text("Alice"))

	// Field order does not matter for equality.
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(orlok.NewRecord()))
}
