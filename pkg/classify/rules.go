package classify

import (
	"strings"

	"github.com/formmaster/go-formmaster/pkg/schema"
)

func containsAny(value string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(value, needle) {
			return true
		}
	}
	return false
}

var numericTypes = []string{
	"int", "integer", "bigint", "smallint", "tinyint",
	"decimal", "numeric", "float", "double", "real", "money",
}

func isNumericType(columnType string) bool {
	for _, t := range numericTypes {
		if strings.Contains(columnType, t) {
			return true
		}
	}
	return false
}

// builtinRules is the fixed precedence table. Do not reorder entries: later
// rules only see columns the earlier rules declined.
func builtinRules() []Rule {
	return []Rule{
		{
			Name: "email",
			Kind: KindEmail,
			Match: func(in Input) bool {
				return containsAny(in.ColumnName, "email", "e_mail", "mail_id")
			},
		},
		{
			Name: "tel",
			Kind: KindTel,
			Match: func(in Input) bool {
				if containsAny(in.ColumnName, "phone", "mobile", "contact", "tel") {
					return true
				}
				return strings.Contains(in.ColumnName, "number") &&
					containsAny(in.ColumnName, "phone", "mobile")
			},
		},
		{
			Name: "date",
			Kind: KindDate,
			Match: func(in Input) bool {
				if containsAny(in.ColumnName, "date", "birth", "dob", "created", "updated",
					"issued", "expiry", "valid", "year") {
					return true
				}
				return containsAny(in.ColumnType, "date", "datetime", "timestamp")
			},
		},
		{
			Name: "url",
			Kind: KindURL,
			Match: func(in Input) bool {
				return containsAny(in.ColumnName, "url", "website", "link")
			},
		},
		{
			Name: "password",
			Kind: KindPassword,
			Match: func(in Input) bool {
				return containsAny(in.ColumnName, "password", "pwd", "pin")
			},
		},
		{
			Name: "number",
			Kind: KindNumber,
			Match: func(in Input) bool {
				if isNumericType(in.ColumnType) {
					return true
				}
				if containsAny(in.ColumnName, "amount", "price", "cost", "fee", "salary",
					"income", "quantity", "weight", "height") {
					return true
				}
				// Plain substrings on purpose: "account_number" is a number
				// field via "count". Image columns live in the documents
				// table, where the file override wins before any rule runs.
				return containsAny(in.ColumnName, "age", "count")
			},
		},
		{
			Name: "textarea",
			Kind: KindTextarea,
			Match: func(in Input) bool {
				return containsAny(in.ColumnName, "address", "description", "details", "notes",
					"comment", "remark", "message", "content", "bio", "summary", "reason",
					"qualification")
			},
		},
		{
			Name: "checkbox",
			Kind: KindCheckbox,
			Match: func(in Input) bool {
				if containsAny(in.ColumnType, "bool", "bit") {
					return true
				}
				if containsAny(in.ColumnName, "is_", "has_", "can_", "should_") {
					return true
				}
				return containsAny(in.ColumnName, "enabled", "active", "verified", "approved",
					"completed")
			},
		},
		{
			Name: "file",
			Kind: KindFile,
			Match: func(in Input) bool {
				if containsAny(in.ColumnName, "file", "document", "image", "photo", "picture",
					"attachment", "upload") {
					return true
				}
				return strings.Contains(in.ColumnName, "path") &&
					containsAny(in.ColumnName, "file", "doc")
			},
		},
	}
}

// ClassifyColumn resolves the presentation kind for a column definition,
// applying the isEmail override after rule evaluation. The override sits here
// rather than in the rule table so custom rules never shadow it.
func (c *Classifier) ClassifyColumn(tableName string, col schema.ColumnDefinition) Kind {
	kind := c.Classify(Input{
		ColumnName: col.Name,
		ColumnType: col.Type,
		TableName:  tableName,
	})
	if col.IsEmail {
		return KindEmail
	}
	return kind
}

// AcceptTypes resolves the file-input accept attribute for a file column.
// Image-named columns accept images only; everything else accepts the common
// document formats.
func AcceptTypes(columnName string) string {
	lowered := strings.ToLower(columnName)
	if containsAny(lowered, "photo", "image", "picture") {
		return "image/*"
	}
	return "image/*,.pdf,.doc,.docx"
}
