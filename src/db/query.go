package db

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"git.mbbs.network/mbbs/mbbs/src/oops"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

/*
A general error to be used when no results are found. This is the error
returned by QueryOne and QueryOneScalar, and can be used by other helpers
that fetch a single result but find nothing.
*/
var NotFound = errors.New("not found")

/*
Performs a SQL query and returns a slice of all the result rows, mapped onto
the type argument's fields via `db` tags. See the package documentation for
the $columns placeholder.

Always returns pointers to the values. Convenient for structs; for primitive
types use QueryScalar.
*/
func Query[T any](
	ctx context.Context,
	conn ConnOrTx,
	query string,
	args ...any,
) ([]*T, error) {
	it, err := QueryIterator[T](ctx, conn, query, args...)
	if err != nil {
		return nil, err
	}
	return it.ToSlice(), nil
}

/*
Identical to Query, but returns only the first result row. If there are no
rows in the result set, returns NotFound.
*/
func QueryOne[T any](
	ctx context.Context,
	conn ConnOrTx,
	query string,
	args ...any,
) (*T, error) {
	rows, err := QueryIterator[T](ctx, conn, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result, hasRow := rows.Next()
	if !hasRow {
		return nil, NotFound
	}

	return result, nil
}

/*
Identical to Query, but returns concrete values instead of pointers. More
convenient for primitive types.
*/
func QueryScalar[T any](
	ctx context.Context,
	conn ConnOrTx,
	query string,
	args ...any,
) ([]T, error) {
	rows, err := QueryIterator[T](ctx, conn, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []T
	for {
		val, hasRow := rows.Next()
		if !hasRow {
			break
		}
		result = append(result, *val)
	}

	return result, nil
}

/*
Identical to QueryScalar, but returns only the first result value. If there
are no rows in the result set, returns NotFound.
*/
func QueryOneScalar[T any](
	ctx context.Context,
	conn ConnOrTx,
	query string,
	args ...any,
) (T, error) {
	rows, err := QueryIterator[T](ctx, conn, query, args...)
	if err != nil {
		var zero T
		return zero, err
	}
	defer rows.Close()

	result, hasRow := rows.Next()
	if !hasRow {
		var zero T
		return zero, NotFound
	}

	return *result, nil
}

/*
Identical to Query, but returns the iterator instead of converting the
results to a slice. The iterator must be closed after use.
*/
func QueryIterator[T any](
	ctx context.Context,
	conn ConnOrTx,
	query string,
	args ...any,
) (*Iterator[T], error) {
	var destExample T
	destType := reflect.TypeOf(destExample)

	compiled := compileQuery(query, destType)

	rows, err := conn.Query(ctx, compiled.query, args...)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			panic("query exceeded its deadline")
		}
		return nil, err
	}

	it := &Iterator[T]{
		fieldPaths:       compiled.fieldPaths,
		rows:             rows,
		destType:         compiled.destType,
		destTypeIsScalar: typeIsScalar(compiled.destType),
		closed:           make(chan struct{}, 1),
	}

	// Close iterators when the context is cancelled, so they cannot hold
	// connections open after a request has already gone away.
	go func() {
		done := ctx.Done()
		if done == nil {
			return
		}
		select {
		case <-done:
			it.Close()
		case <-it.closed:
		}
	}()

	return it, nil
}

type Iterator[T any] struct {
	fieldPaths       []fieldPath
	rows             pgx.Rows
	destType         reflect.Type
	destTypeIsScalar bool
	closed           chan struct{}
}

func (it *Iterator[T]) Next() (*T, bool) {
	hasNext := it.rows.Next()
	if !hasNext {
		it.Close()
		return nil, false
	}

	result := reflect.New(it.destType)

	vals, err := it.rows.Values()
	if err != nil {
		panic(err)
	}

	if it.destTypeIsScalar {
		if len(vals) != 1 {
			panic(fmt.Errorf("tried to query a scalar value, but got %v values in the row", len(vals)))
		}
		setValueFromDB(result.Elem(), reflect.ValueOf(vals[0]))
		return result.Interface().(*T), true
	}

	for i, val := range vals {
		if val == nil {
			continue
		}

		field := followFieldPath(result, it.fieldPaths[i])
		if field.Kind() == reflect.Ptr {
			field.Set(reflect.New(field.Type().Elem()))
			field = field.Elem()
		}

		valReflected := reflect.ValueOf(val)
		if valReflected.Kind() == reflect.Ptr {
			valReflected = valReflected.Elem()
		}

		setValueFromDB(field, valReflected)
	}

	return result.Interface().(*T), true
}

func (it *Iterator[T]) Close() {
	it.rows.Close()
	select {
	case it.closed <- struct{}{}:
	default:
	}
}

/*
Pulls all the remaining values into a slice, and closes the iterator.
*/
func (it *Iterator[T]) ToSlice() []*T {
	defer it.Close()
	var result []*T
	for {
		row, ok := it.Next()
		if !ok {
			if err := it.rows.Err(); err != nil {
				panic(oops.New(err, "error while iterating through db results"))
			}
			break
		}
		result = append(result, row)
	}
	return result
}

func setValueFromDB(dest reflect.Value, value reflect.Value) {
	switch dest.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		dest.SetInt(value.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		dest.SetUint(value.Uint())
	default:
		dest.Set(value)
	}
}

type compiledQuery struct {
	query      string
	destType   reflect.Type
	fieldPaths []fieldPath
}

// A path to a particular field in the query's destination type, as field
// indices for reflect.Value.Field.
type fieldPath []int

var reColumnsPlaceholder = regexp.MustCompile(`\$columns`)

func compileQuery(query string, destType reflect.Type) compiledQuery {
	if !reColumnsPlaceholder.MatchString(query) {
		return compiledQuery{
			query:    query,
			destType: destType,
		}
	}

	// The $columns placeholder requires a struct destination whose fields
	// get plonked into the query.
	if destType.Kind() != reflect.Struct {
		panic("$columns can only be used when querying into a struct")
	}

	columnNames, fieldPaths := columnsForStruct(destType, nil, nil)

	columns := make([]string, len(columnNames))
	for i, parts := range columnNames {
		table := strings.Join(parts[:len(parts)-1], "_")
		if table == "" {
			columns[i] = parts[len(parts)-1]
		} else {
			columns[i] = table + "." + parts[len(parts)-1]
		}
	}

	return compiledQuery{
		query:      reColumnsPlaceholder.ReplaceAllString(query, strings.Join(columns, ", ")),
		destType:   destType,
		fieldPaths: fieldPaths,
	}
}

func columnsForStruct(destType reflect.Type, pathSoFar []int, prefix []string) (names [][]string, paths []fieldPath) {
	if destType.Kind() == reflect.Ptr {
		destType = destType.Elem()
	}
	if destType.Kind() != reflect.Struct {
		panic(fmt.Errorf("can only get column names from a struct, got type '%v' (at prefix '%v')", destType.Name(), prefix))
	}

	for _, field := range reflect.VisibleFields(destType) {
		columnName := field.Tag.Get("db")
		if columnName == "" {
			continue
		}

		path := make([]int, 0, len(pathSoFar)+len(field.Index))
		path = append(path, pathSoFar...)
		path = append(path, field.Index...)

		fieldColumns := make([]string, 0, len(prefix)+1)
		fieldColumns = append(fieldColumns, prefix...)
		fieldColumns = append(fieldColumns, columnName)

		fieldType := field.Type
		if fieldType.Kind() == reflect.Ptr {
			fieldType = fieldType.Elem()
		}

		if typeIsScalar(fieldType) {
			names = append(names, fieldColumns)
			paths = append(paths, path)
		} else if fieldType.Kind() == reflect.Struct {
			subNames, subPaths := columnsForStruct(fieldType, path, fieldColumns)
			names = append(names, subNames...)
			paths = append(paths, subPaths...)
		} else {
			panic(fmt.Errorf("field '%s' in type %s has invalid type '%s'", field.Name, destType, field.Type))
		}
	}

	return names, paths
}

/*
Reports whether a type maps to a single database column. Structs (other than
time.Time and uuid.UUID) do not; they get flattened into prefixed columns.
*/
func typeIsScalar(t reflect.Type) bool {
	if t == reflect.TypeOf(time.Time{}) || t == reflect.TypeOf(uuid.UUID{}) {
		return true
	}
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return true
	case reflect.Slice:
		return t.Elem().Kind() == reflect.Uint8
	}
	return false
}

func followFieldPath(structPtrVal reflect.Value, path fieldPath) reflect.Value {
	if len(path) < 1 {
		panic(oops.New(nil, "can't follow an empty field path"))
	}

	val := structPtrVal
	for _, i := range path {
		if val.Kind() == reflect.Ptr && val.Type().Elem().Kind() == reflect.Struct {
			if val.IsNil() {
				val.Set(reflect.New(val.Type().Elem()))
			}
			val = val.Elem()
		}
		val = val.Field(i)
	}
	return val
}
