package db

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumnsForStruct(t *testing.T) {
	type CustomInt int
	type S struct {
		I   int        `db:"i"`
		PI  *int       `db:"pi"`
		CI  CustomInt  `db:"ci"`
		PCI *CustomInt `db:"pci"`
		B   bool       `db:"b"`

		NoTag int
	}
	type Nested struct {
		S  S  `db:"s"`
		PS *S `db:"ps"`

		NoTag S
	}

	names, paths := columnsForStruct(reflect.TypeOf(Nested{}), nil, nil)
	assert.Equal(t, [][]string{
		{"s", "i"}, {"s", "pi"}, {"s", "ci"}, {"s", "pci"}, {"s", "b"},
		{"ps", "i"}, {"ps", "pi"}, {"ps", "ci"}, {"ps", "pci"}, {"ps", "b"},
	}, names)
	assert.Equal(t, []fieldPath{
		{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4},
		{1, 0}, {1, 1}, {1, 2}, {1, 3}, {1, 4},
	}, paths)

	testStruct := Nested{}
	for _, path := range paths {
		val := followFieldPath(reflect.ValueOf(&testStruct), path)
		assert.True(t, val.IsValid())
	}
}

func TestCompileQuery(t *testing.T) {
	type row struct {
		ID    int    `db:"id"`
		Title string `db:"title"`
	}

	t.Run("expands $columns", func(t *testing.T) {
		compiled := compileQuery("SELECT $columns FROM threads", reflect.TypeOf(row{}))
		assert.Equal(t, "SELECT id, title FROM threads", compiled.query)
		assert.Len(t, compiled.fieldPaths, 2)
	})
	t.Run("leaves plain queries alone", func(t *testing.T) {
		compiled := compileQuery("SELECT COUNT(*) FROM threads", reflect.TypeOf(0))
		assert.Equal(t, "SELECT COUNT(*) FROM threads", compiled.query)
	})
	t.Run("prefixed columns for nested structs", func(t *testing.T) {
		type nested struct {
			Thread row `db:"thread"`
		}
		compiled := compileQuery("SELECT $columns FROM threads AS thread", reflect.TypeOf(nested{}))
		assert.Equal(t, "SELECT thread.id, thread.title FROM threads AS thread", compiled.query)
	})
}

func TestQueryBuilder(t *testing.T) {
	var qb QueryBuilder
	qb.Add("SELECT stuff FROM thing WHERE foo = $?", 3)
	qb.Add("AND bar = $?", "hello")

	assert.Equal(t, "SELECT stuff FROM thing WHERE foo = $1\nAND bar = $2\n", qb.String())
	assert.Equal(t, []any{3, "hello"}, qb.Args())

	assert.Panics(t, func() {
		qb.Add("oops $? no arguments")
	})
}
