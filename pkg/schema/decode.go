package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeTables validates and decodes the introspection payload for a list of
// tables. The backend response is loosely shaped; decoding normalizes the
// constraint flags so downstream consumers can rely on the documented
// invariants: dropdown columns always carry options, and exact constraints
// supersede their min/max counterparts.
func DecodeTables(raw []byte) ([]TableSchema, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("schema: empty tables payload")
	}

	var tables []TableSchema
	if err := json.Unmarshal(raw, &tables); err != nil {
		// Some deployments wrap the list in a data envelope.
		var envelope struct {
			Data []TableSchema `json:"data"`
		}
		if envErr := json.Unmarshal(raw, &envelope); envErr != nil || envelope.Data == nil {
			return nil, fmt.Errorf("schema: decode tables: %w", err)
		}
		tables = envelope.Data
	}

	for i := range tables {
		if err := normalizeTable(&tables[i]); err != nil {
			return nil, err
		}
	}
	return tables, nil
}

// DecodeTable decodes a single table schema payload.
func DecodeTable(raw []byte) (TableSchema, error) {
	if len(raw) == 0 {
		return TableSchema{}, fmt.Errorf("schema: empty table payload")
	}
	var table TableSchema
	err := json.Unmarshal(raw, &table)
	// An enveloped payload still decodes into the bare struct because unknown
	// keys are ignored, leaving an empty table. Treat a missing name the same
	// as a decode failure and look for the data wrapper.
	if err != nil || strings.TrimSpace(table.TableName) == "" {
		var envelope struct {
			Data *TableSchema `json:"data"`
		}
		if envErr := json.Unmarshal(raw, &envelope); envErr == nil && envelope.Data != nil {
			table = *envelope.Data
		} else if err != nil {
			return TableSchema{}, fmt.Errorf("schema: decode table: %w", err)
		}
	}
	if err := normalizeTable(&table); err != nil {
		return TableSchema{}, err
	}
	return table, nil
}

func normalizeTable(table *TableSchema) error {
	table.TableName = strings.TrimSpace(table.TableName)
	if table.TableName == "" {
		return fmt.Errorf("schema: table missing name")
	}
	if table.DisplayName == "" {
		table.DisplayName = Label(table.TableName)
	}

	seen := make(map[string]struct{}, len(table.Columns))
	for i := range table.Columns {
		col := &table.Columns[i]
		col.Name = strings.TrimSpace(col.Name)
		if col.Name == "" {
			return fmt.Errorf("schema: table %q has unnamed column", table.TableName)
		}
		if _, dup := seen[col.Name]; dup {
			return fmt.Errorf("schema: table %q has duplicate column %q", table.TableName, col.Name)
		}
		seen[col.Name] = struct{}{}
		normalizeColumn(col)
	}
	return nil
}

func normalizeColumn(col *ColumnDefinition) {
	col.Type = strings.ToUpper(strings.TrimSpace(col.Type))

	// Backends rarely send the isEmail flag; name-indicated email columns
	// get the shape check regardless.
	if !col.IsEmail {
		lower := strings.ToLower(col.Name)
		if strings.Contains(lower, "email") || strings.Contains(lower, "e_mail") ||
			strings.Contains(lower, "mail_id") {
			col.IsEmail = true
		}
	}

	// A dropdown without options is meaningless; clear the flag so length
	// checks apply instead.
	if col.HasDropdown && len(col.DropdownOptions) == 0 {
		col.HasDropdown = false
	}
	// Dropdown membership supersedes length constraints.
	if col.HasDropdown {
		col.MinLength = nil
		col.MaxLength = nil
		col.ExactLength = nil
	}
	// Exact constraints take precedence over min/max pairs.
	if col.ExactLength != nil {
		col.MinLength = nil
		col.MaxLength = nil
	}
	if col.ExactValue != nil {
		col.MinValue = nil
		col.MaxValue = nil
	}
	if !col.Nullable && !col.PrimaryKey {
		col.Required = true
	}
}
