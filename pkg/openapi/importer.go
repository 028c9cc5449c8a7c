// Package openapi imports table schemas from an OpenAPI 3 document. Each
// object-typed component schema becomes a TableSchema, which lets the
// classifier, validator, and form editor run against an API contract without
// a live backend.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/formmaster/go-formmaster/pkg/schema"
)

// ImportFile loads an OpenAPI document from disk and converts its component
// schemas. JSON and YAML documents are both accepted.
func ImportFile(ctx context.Context, path string) ([]schema.TableSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("openapi: read %s: %w", path, err)
	}
	return Import(ctx, data)
}

// Import converts the component schemas of an OpenAPI document into table
// schemas, sorted by table name. Non-object components are skipped.
func Import(ctx context.Context, data []byte) ([]schema.TableSchema, error) {
	if len(data) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if doc.Components == nil || len(doc.Components.Schemas) == 0 {
		return nil, errors.New("openapi: document has no component schemas")
	}

	var tables []schema.TableSchema
	for name, ref := range doc.Components.Schemas {
		table, ok := convertComponent(name, ref)
		if !ok {
			continue
		}
		tables = append(tables, table)
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].TableName < tables[j].TableName })

	if len(tables) == 0 {
		return nil, errors.New("openapi: no object components to import")
	}
	return tables, nil
}

func convertComponent(name string, ref *openapi3.SchemaRef) (schema.TableSchema, bool) {
	if ref == nil || ref.Value == nil {
		return schema.TableSchema{}, false
	}
	src := ref.Value
	if !isObject(src.Type) || len(src.Properties) == 0 {
		return schema.TableSchema{}, false
	}

	required := make(map[string]bool, len(src.Required))
	for _, field := range src.Required {
		required[field] = true
	}

	table := schema.TableSchema{
		TableName:   toSnake(name),
		DisplayName: schema.Label(toSnake(name)),
	}

	propNames := make([]string, 0, len(src.Properties))
	for propName := range src.Properties {
		propNames = append(propNames, propName)
	}
	sort.Strings(propNames)

	for _, propName := range propNames {
		col, ok := convertProperty(propName, src.Properties[propName], required[propName])
		if !ok {
			continue
		}
		table.Columns = append(table.Columns, col)
	}
	return table, len(table.Columns) > 0
}

func convertProperty(name string, ref *openapi3.SchemaRef, required bool) (schema.ColumnDefinition, bool) {
	if ref == nil || ref.Value == nil {
		return schema.ColumnDefinition{}, false
	}
	src := ref.Value
	if isObject(src.Type) || hasType(src.Type, "array") {
		// Nested structures have no column equivalent.
		return schema.ColumnDefinition{}, false
	}

	col := schema.ColumnDefinition{
		Name:     toSnake(name),
		Type:     columnType(src.Type, src.Format),
		Nullable: !required,
		Required: required,
		IsEmail:  src.Format == "email",
	}

	if src.MinLength != 0 {
		v := int(src.MinLength)
		col.MinLength = &v
	}
	if src.MaxLength != nil {
		v := int(*src.MaxLength)
		col.MaxLength = &v
	}
	if src.Min != nil {
		v := int(*src.Min)
		col.MinValue = &v
	}
	if src.Max != nil {
		v := int(*src.Max)
		col.MaxValue = &v
	}

	if len(src.Enum) > 0 {
		for _, raw := range src.Enum {
			if s, ok := raw.(string); ok {
				col.DropdownOptions = append(col.DropdownOptions, s)
			}
		}
		col.HasDropdown = len(col.DropdownOptions) > 0
	}

	return col, true
}

func isObject(types *openapi3.Types) bool {
	return types == nil || hasType(types, "object")
}

func hasType(types *openapi3.Types, want string) bool {
	if types == nil {
		return false
	}
	for _, t := range types.Slice() {
		if t == want {
			return true
		}
	}
	return false
}

func columnType(types *openapi3.Types, format string) string {
	switch {
	case hasType(types, "integer"):
		return "INTEGER"
	case hasType(types, "number"):
		return "REAL"
	case hasType(types, "boolean"):
		return "BOOLEAN"
	case format == "date" || format == "date-time":
		return "DATE"
	default:
		return "TEXT"
	}
}

// toSnake converts CamelCase component and property names to the snake_case
// the rest of the engine expects. Names already in snake_case pass through.
func toSnake(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
