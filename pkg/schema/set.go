package schema

import "sort"

// Set is an immutable snapshot of the schemas fetched for one session. It is
// safe for concurrent readers; construct a new Set rather than mutating one.
type Set struct {
	tables map[string]TableSchema
}

// NewSet builds a snapshot from the supplied tables. Later duplicates of the
// same table name win, matching refetch semantics.
func NewSet(tables ...TableSchema) *Set {
	set := &Set{tables: make(map[string]TableSchema, len(tables))}
	for _, table := range tables {
		if table.TableName == "" {
			continue
		}
		set.tables[table.TableName] = table
	}
	return set
}

// Table looks up a table schema by name.
func (s *Set) Table(name string) (TableSchema, bool) {
	if s == nil || s.tables == nil {
		return TableSchema{}, false
	}
	table, ok := s.tables[name]
	return table, ok
}

// Column resolves a (table, column) pair.
func (s *Set) Column(tableName, columnName string) (ColumnDefinition, bool) {
	table, ok := s.Table(tableName)
	if !ok {
		return ColumnDefinition{}, false
	}
	return table.Column(columnName)
}

// FindColumn locates a column by name across every table, scanning tables in
// name order so lookups stay deterministic. Used by the document-to-field
// mapper, where extracted keys carry no table qualifier.
func (s *Set) FindColumn(columnName string) (tableName string, col ColumnDefinition, ok bool) {
	if s == nil || columnName == "" {
		return "", ColumnDefinition{}, false
	}
	for _, name := range s.TableNames() {
		if col, found := s.tables[name].Column(columnName); found {
			return name, col, true
		}
	}
	return "", ColumnDefinition{}, false
}

// TableNames returns the snapshot's table names sorted.
func (s *Set) TableNames() []string {
	if s == nil || len(s.tables) == 0 {
		return nil
	}
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tables returns the snapshot's schemas ordered by table name.
func (s *Set) Tables() []TableSchema {
	names := s.TableNames()
	if len(names) == 0 {
		return nil
	}
	out := make([]TableSchema, 0, len(names))
	for _, name := range names {
		out = append(out, s.tables[name])
	}
	return out
}

// Len reports the number of tables in the snapshot.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.tables)
}
