// Package classify maps introspected columns onto presentation kinds using an
// ordered rule table. Rule order is load-bearing: a column named
// contact_number must hit the phone rule before the generic numeric rule, so
// rules are evaluated strictly in registration order and the first match wins.
package classify

import (
	"strings"

	"github.com/formmaster/go-formmaster/pkg/schema"
)

// Kind is the presentation kind a column renders as.
type Kind string

const (
	KindEmail    Kind = "email"
	KindTel      Kind = "tel"
	KindDate     Kind = "date"
	KindURL      Kind = "url"
	KindPassword Kind = "password"
	KindNumber   Kind = "number"
	KindTextarea Kind = "textarea"
	KindCheckbox Kind = "checkbox"
	KindFile     Kind = "file"
	KindText     Kind = "text"
)

// Input carries the column facts the rule table inspects. ColumnName and
// ColumnType are matched lowercased; TableName selects the documents-table
// override.
type Input struct {
	ColumnName string
	ColumnType string
	TableName  string
}

// Rule pairs a predicate with the kind it yields.
type Rule struct {
	Name  string
	Match func(in Input) bool
	Kind  Kind
}

// Classifier evaluates an ordered rule list. The zero value is not usable;
// construct one with New.
type Classifier struct {
	documentsTable string
	rules          []Rule
}

// Option customises classifier construction.
type Option func(*Classifier)

// WithDocumentsTable overrides the table whose columns classify as files.
func WithDocumentsTable(name string) Option {
	return func(c *Classifier) {
		trimmed := strings.TrimSpace(name)
		if trimmed != "" {
			c.documentsTable = trimmed
		}
	}
}

// WithRule appends a custom rule evaluated after the built-in table but
// before the text fallback.
func WithRule(rule Rule) Option {
	return func(c *Classifier) {
		if rule.Match != nil && rule.Kind != "" {
			c.rules = append(c.rules, rule)
		}
	}
}

// New constructs a classifier with the built-in rule table.
func New(options ...Option) *Classifier {
	c := &Classifier{documentsTable: schema.DefaultDocumentsTable}
	c.rules = builtinRules()
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// Classify resolves the presentation kind for a column. It is pure and
// deterministic: identical inputs always produce the same kind.
func (c *Classifier) Classify(in Input) Kind {
	in.ColumnName = strings.ToLower(strings.TrimSpace(in.ColumnName))
	in.ColumnType = strings.ToLower(strings.TrimSpace(in.ColumnType))
	in.TableName = strings.TrimSpace(in.TableName)

	// Documents-table columns are files by convention, ahead of every other
	// rule, unless they belong to the fixed system-field set.
	if c.documentsTable != "" && strings.EqualFold(in.TableName, c.documentsTable) {
		if !schema.IsDocumentSystemField(in.ColumnName) {
			return KindFile
		}
	}

	for _, rule := range c.rules {
		if rule.Match(in) {
			return rule.Kind
		}
	}
	return KindText
}
