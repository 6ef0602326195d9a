package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/courtsec/courtsec/internal/commit"
	"github.com/courtsec/courtsec/internal/entity"
)

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func table(d *entity.Descriptor) string {
	return ident(string(d.Kind))
}

// columnList renders every column of d in table order.
func columnList(d *entity.Descriptor) string {
	cols := d.Columns()
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = ident(c)
	}

	return strings.Join(quoted, ", ")
}

// keyValue returns the primary key column and its value on e.
func keyValue(d *entity.Descriptor, e entity.Entity) (string, any, error) {
	f, ok := d.KeyField()
	if !ok {
		return "", nil, fmt.Errorf("%s has no primary key", d.Kind)
	}

	if f.Pending(e) {
		return "", nil, fmt.Errorf("%s primary key is not assigned", d.Kind)
	}

	return f.Name, f.Value(e), nil
}

// insertSQL builds an INSERT of e. Pending generated columns are left to
// their column defaults and come back through RETURNING.
func insertSQL(d *entity.Descriptor, e entity.Entity) (string, []any) {
	cols := make([]string, 0, len(d.Fields))
	marks := make([]string, 0, len(d.Fields))
	args := make([]any, 0, len(d.Fields))

	for _, f := range d.Fields {
		if f.Pending(e) {
			continue
		}

		args = append(args, f.Value(e))
		cols = append(cols, ident(f.Name))
		marks = append(marks, "$"+strconv.Itoa(len(args)))
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		table(d), strings.Join(cols, ", "), strings.Join(marks, ", "), columnList(d)), args
}

// updateSQL builds an UPDATE writing cols of e. Rows that are already
// soft-deleted never match, so they cannot be edited or deleted twice.
func updateSQL(d *entity.Descriptor, e entity.Entity, cols []string) (string, []any, error) {
	keyCol, keyVal, err := keyValue(d, e)
	if err != nil {
		return "", nil, err
	}

	if len(cols) == 0 {
		return "", nil, fmt.Errorf("%s update sets no columns", d.Kind)
	}

	sets := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols)+1)

	for _, name := range cols {
		f, ok := d.FieldNamed(name)
		if !ok {
			return "", nil, fmt.Errorf("%s has no column %q", d.Kind, name)
		}

		if f.IsKey() {
			return "", nil, fmt.Errorf("%s primary key cannot be updated", d.Kind)
		}

		args = append(args, f.Value(e))
		sets = append(sets, ident(f.Name)+" = $"+strconv.Itoa(len(args)))
	}

	args = append(args, keyVal)

	return fmt.Sprintf("UPDATE %s SET %s WHERE %s RETURNING %s",
		table(d), strings.Join(sets, ", "), liveWhere(d, keyCol, len(args)), columnList(d)), args, nil
}

// lockSQL builds a SELECT of the live row with e's key under a row lock.
func lockSQL(d *entity.Descriptor, e entity.Entity, mode commit.LockMode) (string, []any, error) {
	keyCol, keyVal, err := keyValue(d, e)
	if err != nil {
		return "", nil, err
	}

	return fmt.Sprintf("SELECT %s FROM %s WHERE %s %s",
		columnList(d), table(d), liveWhere(d, keyCol, 1), lockClause(mode)), []any{keyVal}, nil
}

// childrenSQL builds a SELECT FOR UPDATE of the live rows of d whose column
// equals the single argument, in key order so concurrent cascades lock alike.
func childrenSQL(d *entity.Descriptor, column string) (string, error) {
	if _, ok := d.FieldNamed(column); !ok {
		return "", fmt.Errorf("%s has no column %q", d.Kind, column)
	}

	key, ok := d.KeyField()
	if !ok {
		return "", fmt.Errorf("%s has no primary key", d.Kind)
	}

	return fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY %s FOR UPDATE",
		columnList(d), table(d), liveWhere(d, column, 1), ident(key.Name)), nil
}

// liveWhere matches column against placeholder n, excluding soft-deleted rows.
func liveWhere(d *entity.Descriptor, column string, n int) string {
	where := ident(column) + " = $" + strconv.Itoa(n)

	if col := d.DeletedColumn(); col != "" {
		where += " AND " + ident(col) + " = false"
	}

	return where
}

func lockClause(mode commit.LockMode) string {
	if mode == commit.LockShare {
		return "FOR SHARE"
	}

	return "FOR UPDATE"
}

// deleteSQL builds a physical DELETE of e by primary key.
func deleteSQL(d *entity.Descriptor, e entity.Entity) (string, []any, error) {
	keyCol, keyVal, err := keyValue(d, e)
	if err != nil {
		return "", nil, err
	}

	return fmt.Sprintf("DELETE FROM %s WHERE %s = $1", table(d), ident(keyCol)), []any{keyVal}, nil
}
