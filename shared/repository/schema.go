package repository

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// joiner is implemented by models that read columns from other tables.
type joiner interface {
	GetJoinQuery() string
}

type column struct {
	name  string
	table string
	alias string
}

func (c column) String() string {
	switch {
	case c.table == "":
		return c.name
	case c.alias != "":
		return fmt.Sprintf("%s.%s AS %s", c.table, c.name, c.alias)
	default:
		return c.table + "." + c.name
	}
}

type schema struct {
	table   string
	join    string
	columns []column
	insert  []string
}

// schemaOf reads the column layout of T from its struct tags:
//
//	db:"col"        column name, also the scan target
//	table:"other"   column lives in a joined table and is never inserted
//	column:"src"    select src from the joined table AS col
//	insert:"-"      column is filled by the database
//
// Embedded structs contribute their columns to the owning table.
func schemaOf[T any](table string) schema {
	var zero T

	s := schema{table: table}
	s.collect(reflect.TypeOf(zero))

	if j, ok := any(zero).(joiner); ok {
		s.join = " " + strings.TrimSpace(j.GetJoinQuery())
	}

	return s
}

func (s *schema) collect(typ reflect.Type) {
	for i := range typ.NumField() {
		field := typ.Field(i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			s.collect(field.Type)

			continue
		}

		name := field.Tag.Get("db")
		if name == "" || name == "-" {
			continue
		}

		owner := field.Tag.Get("table")
		if owner == "" {
			owner = s.table
		}

		if owner == s.table && field.Tag.Get("insert") != "-" {
			s.insert = append(s.insert, name)
		}

		if source := field.Tag.Get("column"); source != "" {
			s.columns = append(s.columns, column{name: source, table: owner, alias: name})
		} else {
			s.columns = append(s.columns, column{name: name, table: owner})
		}
	}
}

// selectQuery lists every column, or only those whose scan name is in only.
func (s *schema) selectQuery(only []string) string {
	selected := make([]string, 0, len(s.columns))

	for _, col := range s.columns {
		scanName := col.name
		if col.alias != "" {
			scanName = col.alias
		}

		if len(only) > 0 && !slices.Contains(only, scanName) {
			continue
		}

		selected = append(selected, col.String())
	}

	return fmt.Sprintf("SELECT %s FROM %s%s", strings.Join(selected, ", "), s.table, s.join)
}

// insertQuery renders a named INSERT. A non-empty returning column is appended as RETURNING.
func (s *schema) insertQuery(returning string) string {
	placeholders := make([]string, len(s.insert))
	for i, col := range s.insert {
		placeholders[i] = ":" + col
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.table, strings.Join(s.insert, ", "), strings.Join(placeholders, ", "))

	if returning != "" {
		query += " RETURNING " + returning
	}

	return query
}
