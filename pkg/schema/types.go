package schema

import "strings"

// DefaultDocumentsTable is the conventional name of the table whose columns
// hold uploaded file paths.
const DefaultDocumentsTable = "documents"

// TableRelationship describes a foreign-key link between two tables as
// reported by the introspection endpoint.
type TableRelationship struct {
	Column           string `json:"column"`
	ReferencedTable  string `json:"referencedTable"`
	ReferencedColumn string `json:"referencedColumn"`
}

// ColumnDefinition is one column of an introspected table together with the
// declarative constraints the validator evaluates. The backend owns the
// canonical definition; this is a read-only snapshot.
type ColumnDefinition struct {
	Name            string   `json:"name"`
	Type            string   `json:"type"`
	Nullable        bool     `json:"nullable"`
	PrimaryKey      bool     `json:"primaryKey"`
	ForeignKey      string   `json:"foreignKey,omitempty"`
	Constraints     []string `json:"constraints,omitempty"`
	Required        bool     `json:"required"`
	IsEmail         bool     `json:"isEmail"`
	MinLength       *int     `json:"minLength,omitempty"`
	MaxLength       *int     `json:"maxLength,omitempty"`
	ExactLength     *int     `json:"exactLength,omitempty"`
	HasDropdown     bool     `json:"hasDropdown"`
	DropdownOptions []string `json:"dropdownOptions,omitempty"`
	MinValue        *int     `json:"minValue,omitempty"`
	MaxValue        *int     `json:"maxValue,omitempty"`
	ExactValue      *int     `json:"exactValue,omitempty"`
}

// TableSchema is one table's introspected shape. Identity is TableName,
// unique within a fetched Set.
type TableSchema struct {
	TableName     string              `json:"tableName"`
	DisplayName   string              `json:"displayName,omitempty"`
	Columns       []ColumnDefinition  `json:"columns"`
	IsRequired    bool                `json:"isRequired"`
	Relationships []TableRelationship `json:"relationships,omitempty"`
}

// Column returns the named column definition if present.
func (t TableSchema) Column(name string) (ColumnDefinition, bool) {
	for _, col := range t.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return ColumnDefinition{}, false
}

// systemColumns are audit columns always exempt from validation.
var systemColumns = map[string]struct{}{
	"client_id":  {},
	"created_at": {},
	"updated_at": {},
}

// IsSystemColumn reports whether name is an audit column exempt from
// validation across every table.
func IsSystemColumn(name string) bool {
	_, ok := systemColumns[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// documentSystemFields are documents-table columns that are metadata rather
// than file slots and therefore keep their natural classification.
var documentSystemFields = map[string]struct{}{
	"id":                  {},
	"client_id":           {},
	"created_at":          {},
	"updated_at":          {},
	"verified":            {},
	"verified_by":         {},
	"verification_date":   {},
	"verification_status": {},
	"notes":               {},
}

// IsDocumentSystemField reports whether a documents-table column is part of
// the fixed system-field set rather than a file slot.
func IsDocumentSystemField(name string) bool {
	_, ok := documentSystemFields[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Label derives a human readable label from a column name when the backend
// provides none: snake_case to spaced Title Case.
func Label(columnName string) string {
	trimmed := strings.TrimSpace(columnName)
	if trimmed == "" {
		return ""
	}
	parts := strings.FieldsFunc(trimmed, func(r rune) bool {
		return r == '_' || r == '-'
	})
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}
