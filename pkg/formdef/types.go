// Package formdef holds the data model for form templates: ordered cards,
// each with an ordered list of field instances bound to a (table, column)
// pair, plus the structural edit operations the designer performs on them.
package formdef

import (
	"time"

	"github.com/google/uuid"
)

// CardType distinguishes ordinary field groups from document-upload cards.
type CardType string

const (
	CardNormal   CardType = "normal"
	CardDocument CardType = "document"
)

// ValidationRule is one designer-authored custom rule attached to a field.
type ValidationRule struct {
	Kind    string            `json:"kind"`
	Params  map[string]string `json:"params,omitempty"`
	Message string            `json:"message,omitempty"`
}

// FieldValidation is the designer-configurable constraint overlay, potentially
// narrower than the column's own constraints.
type FieldValidation struct {
	Required    bool             `json:"required"`
	MinLength   *int             `json:"minLength,omitempty"`
	MaxLength   *int             `json:"maxLength,omitempty"`
	Pattern     string           `json:"pattern,omitempty"`
	CustomRules []ValidationRule `json:"customRules,omitempty"`
}

// FieldStyling carries presentation overrides for a single field.
type FieldStyling struct {
	Width     string `json:"width,omitempty"`
	CSSClass  string `json:"cssClass,omitempty"`
	LabelSize string `json:"labelSize,omitempty"`
}

// CardStyling carries presentation overrides for a card.
type CardStyling struct {
	Background string `json:"background,omitempty"`
	CSSClass   string `json:"cssClass,omitempty"`
	Columns    int    `json:"columns,omitempty"`
}

// FieldInstance is a presentation/validation overlay bound to exactly one
// (TableName, ColumnName) pair. It never owns the column's canonical
// definition.
type FieldInstance struct {
	ID          string          `json:"id"`
	FieldID     string          `json:"fieldId"`
	TableName   string          `json:"tableName"`
	ColumnName  string          `json:"columnName"`
	DisplayName string          `json:"displayName"`
	Placeholder string          `json:"placeholder,omitempty"`
	HelpText    string          `json:"helpText,omitempty"`
	IsRequired  bool            `json:"isRequired"`
	IsReadonly  bool            `json:"isReadonly"`
	EnableCopy  bool            `json:"enableCopy"`
	Order       int             `json:"order"`
	Validation  FieldValidation `json:"validation"`
	Styling     FieldStyling    `json:"styling"`
}

// CardTemplate is a titled, ordered group of field instances.
type CardTemplate struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	Order         int             `json:"order"`
	CardType      CardType        `json:"cardType"`
	IsCollapsible bool            `json:"isCollapsible"`
	IsRequired    bool            `json:"isRequired"`
	Fields        []FieldInstance `json:"fields"`
	Styling       CardStyling     `json:"styling"`
}

// FormTemplate is a named, versioned, ordered collection of cards. The
// designer session owns it until saved; the backend is the system of record
// thereafter.
type FormTemplate struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Version     int               `json:"version"`
	Cards       []CardTemplate    `json:"cards"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
	CreatedBy   string            `json:"createdBy,omitempty"`
}

// NewTemplate constructs an empty versioned template.
func NewTemplate(name, createdBy string) FormTemplate {
	now := time.Now().UTC()
	return FormTemplate{
		ID:        uuid.NewString(),
		Name:      name,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: createdBy,
	}
}

// Card returns the card with the given id and its index.
func (t FormTemplate) Card(cardID string) (CardTemplate, int, bool) {
	for i, card := range t.Cards {
		if card.ID == cardID {
			return card, i, true
		}
	}
	return CardTemplate{}, -1, false
}

// clone deep-copies the template so mutations never leak partial state into
// the caller's value.
func (t FormTemplate) clone() FormTemplate {
	out := t
	if t.Metadata != nil {
		out.Metadata = make(map[string]string, len(t.Metadata))
		for k, v := range t.Metadata {
			out.Metadata[k] = v
		}
	}
	out.Cards = make([]CardTemplate, len(t.Cards))
	for i, card := range t.Cards {
		cloned := card
		cloned.Fields = append([]FieldInstance(nil), card.Fields...)
		out.Cards[i] = cloned
	}
	return out
}

// reRank assigns dense 0-based orders to cards and their fields.
func (t *FormTemplate) reRank() {
	for i := range t.Cards {
		t.Cards[i].Order = i
		for j := range t.Cards[i].Fields {
			t.Cards[i].Fields[j].Order = j
		}
	}
}
