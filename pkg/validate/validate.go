// Package validate evaluates submitted values against the declarative
// constraints carried on column definitions. Messages are user-facing and
// keyed by "{table}.{field}" so the renderer can route them inline.
package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/formmaster/go-formmaster/pkg/classify"
	"github.com/formmaster/go-formmaster/pkg/schema"
)

// GeneralKey collects messages that cannot be attributed to a single field.
const GeneralKey = "_general"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[a-zA-Z]{2,}$`)

// Errors maps "{table}.{field}" keys to the messages raised for that field.
type Errors map[string][]string

// Empty reports whether no messages were collected.
func (e Errors) Empty() bool { return len(e) == 0 }

// Add appends a message under the given key.
func (e Errors) Add(key, message string) {
	e[key] = append(e[key], message)
}

// FieldKey builds the display-routing key for a table/field pair.
func FieldKey(tableName, fieldName string) string {
	return tableName + "." + fieldName
}

// Field evaluates one raw value against a column's constraints and returns
// every violated rule's message. A missing required value is blocking: no
// further checks run for the field. Within the email checks the shape rule is
// suppressed once the "@" rule fails, so a field never reports both.
func Field(col schema.ColumnDefinition, rawValue string) []string {
	label := schema.Label(col.Name)
	value := strings.TrimSpace(rawValue)

	if value == "" {
		if col.Required {
			return []string{label + " is required"}
		}
		return nil
	}

	var messages []string

	switch {
	case col.HasDropdown && len(col.DropdownOptions) > 0:
		// Membership supersedes length checks.
		if !containsExact(col.DropdownOptions, value) {
			messages = append(messages, fmt.Sprintf("%s must be one of: %s",
				label, strings.Join(col.DropdownOptions, ", ")))
		}
	case isIntegerType(col.Type):
		number, err := strconv.Atoi(value)
		if err != nil {
			// Parse failure suppresses range checks.
			messages = append(messages, label+" must be a valid number")
			break
		}
		if col.ExactValue != nil {
			if number != *col.ExactValue {
				messages = append(messages, fmt.Sprintf("%s must be exactly %d", label, *col.ExactValue))
			}
			break
		}
		if col.MinValue != nil && number < *col.MinValue {
			messages = append(messages, fmt.Sprintf("%s must be at least %d", label, *col.MinValue))
		}
		if col.MaxValue != nil && number > *col.MaxValue {
			messages = append(messages, fmt.Sprintf("%s must be at most %d", label, *col.MaxValue))
		}
	default:
		if col.ExactLength != nil {
			if len(value) != *col.ExactLength {
				messages = append(messages, fmt.Sprintf("%s must be exactly %d characters", label, *col.ExactLength))
			}
		} else {
			if col.MinLength != nil && len(value) < *col.MinLength {
				messages = append(messages, fmt.Sprintf("%s must be at least %d characters", label, *col.MinLength))
			}
			if col.MaxLength != nil && len(value) > *col.MaxLength {
				messages = append(messages, fmt.Sprintf("%s must be at most %d characters", label, *col.MaxLength))
			}
		}
	}

	if col.IsEmail {
		if !strings.Contains(value, "@") {
			messages = append(messages, label+" must contain @")
		} else if !emailPattern.MatchString(value) {
			messages = append(messages, label+" must be a valid email address")
		}
	}

	return messages
}

// Record validates a whole record for one table, collecting messages across
// fields rather than stopping at the first failing one. System audit columns
// are always exempt. Required file columns on a required table must carry a
// stored path.
func Record(set *schema.Set, tableName string, values map[string]string, classifier *classify.Classifier) Errors {
	errs := make(Errors)
	table, ok := set.Table(tableName)
	if !ok {
		errs.Add(GeneralKey, "unknown table "+tableName)
		return errs
	}
	if classifier == nil {
		classifier = classify.New()
	}

	for _, col := range table.Columns {
		if schema.IsSystemColumn(col.Name) || col.PrimaryKey {
			continue
		}
		value := values[col.Name]

		switch classifier.ClassifyColumn(tableName, col) {
		case classify.KindFile:
			if !col.Nullable && table.IsRequired && strings.TrimSpace(value) == "" {
				errs.Add(FieldKey(tableName, col.Name), schema.Label(col.Name)+" is required")
			}
			continue
		case classify.KindEmail:
			// Columns that classify as email by name get the shape check even
			// when the snapshot never carried the isEmail flag.
			col.IsEmail = true
		}

		for _, message := range Field(col, value) {
			errs.Add(FieldKey(tableName, col.Name), message)
		}
	}
	return errs
}

func containsExact(options []string, value string) bool {
	for _, option := range options {
		if option == value {
			return true
		}
	}
	return false
}

func isIntegerType(columnType string) bool {
	upper := strings.ToUpper(columnType)
	return strings.Contains(upper, "INT")
}
