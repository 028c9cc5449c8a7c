package formdef

import (
	"strings"

	"github.com/google/uuid"

	"github.com/formmaster/go-formmaster/pkg/schema"
)

// Direction selects which sibling a move swaps with.
type Direction int

const (
	MoveUp   Direction = -1
	MoveDown Direction = 1
)

// defaultProtectedTables are system tables whose columns can never be placed
// on a form.
var defaultProtectedTables = map[string]struct{}{
	"users":          {},
	"sessions":       {},
	"migrations":     {},
	"form_templates": {},
}

// Editor applies structural edits to form templates. Every mutation is total:
// it returns the resulting template plus an accepted flag, never an error,
// because rejected edits are UI-level constraint violations rather than
// system failures. Rejections leave the input untouched and are reported to
// the optional logger.
type Editor struct {
	schemas        *schema.Set
	documentsTable string
	protected      map[string]struct{}
	logf           func(format string, args ...any)
}

// EditorOption customises editor construction.
type EditorOption func(*Editor)

// WithSchemas supplies the session's schema snapshot, used to auto-populate
// document cards and to verify field ownership.
func WithSchemas(set *schema.Set) EditorOption {
	return func(e *Editor) { e.schemas = set }
}

// WithDocumentsTable overrides the documents table name.
func WithDocumentsTable(name string) EditorOption {
	return func(e *Editor) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			e.documentsTable = trimmed
		}
	}
}

// WithProtectedTables replaces the protected system-table set.
func WithProtectedTables(tables ...string) EditorOption {
	return func(e *Editor) {
		e.protected = make(map[string]struct{}, len(tables))
		for _, table := range tables {
			e.protected[strings.ToLower(strings.TrimSpace(table))] = struct{}{}
		}
	}
}

// WithLogger wires a logging func for rejected edits. Rejections stay
// silent without it.
func WithLogger(logf func(format string, args ...any)) EditorOption {
	return func(e *Editor) { e.logf = logf }
}

// NewEditor constructs an editor for one designer session.
func NewEditor(options ...EditorOption) *Editor {
	e := &Editor{
		documentsTable: schema.DefaultDocumentsTable,
		protected:      defaultProtectedTables,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

func (e *Editor) reject(format string, args ...any) {
	if e.logf != nil {
		e.logf(format, args...)
	}
}

// AddCard adds a new card. Document cards start populated with one field per
// documents-table file column and append at the end; normal cards slot in
// before the first document card so document cards always stay last.
func (e *Editor) AddCard(t FormTemplate, title string, cardType CardType) (FormTemplate, bool) {
	if cardType != CardNormal && cardType != CardDocument {
		e.reject("formdef: add card: unknown card type %q", cardType)
		return t, false
	}

	out := t.clone()
	card := CardTemplate{
		ID:            uuid.NewString(),
		Title:         strings.TrimSpace(title),
		CardType:      cardType,
		IsCollapsible: true,
	}
	if cardType == CardDocument {
		card.Fields = e.documentFields()
		out.Cards = append(out.Cards, card)
	} else {
		insert := len(out.Cards)
		for i, existing := range out.Cards {
			if existing.CardType == CardDocument {
				insert = i
				break
			}
		}
		out.Cards = append(out.Cards[:insert], append([]CardTemplate{card}, out.Cards[insert:]...)...)
	}
	out.reRank()
	return out, true
}

// documentFields builds the auto-populated field list for a document card
// from the cached documents-table schema.
func (e *Editor) documentFields() []FieldInstance {
	table, ok := e.schemas.Table(e.documentsTable)
	if !ok {
		return nil
	}
	var fields []FieldInstance
	for _, col := range table.Columns {
		if schema.IsDocumentSystemField(col.Name) {
			continue
		}
		fields = append(fields, FieldInstance{
			ID:          uuid.NewString(),
			FieldID:     e.documentsTable + "." + col.Name,
			TableName:   e.documentsTable,
			ColumnName:  col.Name,
			DisplayName: schema.Label(col.Name),
			IsRequired:  col.Required,
			Validation:  FieldValidation{Required: col.Required},
		})
	}
	return fields
}

// RemoveCard drops a card and re-ranks the remaining siblings densely.
func (e *Editor) RemoveCard(t FormTemplate, cardID string) (FormTemplate, bool) {
	_, idx, ok := t.Card(cardID)
	if !ok {
		e.reject("formdef: remove card: %q not found", cardID)
		return t, false
	}
	out := t.clone()
	out.Cards = append(out.Cards[:idx], out.Cards[idx+1:]...)
	out.reRank()
	return out, true
}

// MoveCard swaps a card with its adjacent sibling. Boundary moves are no-ops,
// and any move that would place a normal card after a document card is
// rejected.
func (e *Editor) MoveCard(t FormTemplate, cardID string, dir Direction) (FormTemplate, bool) {
	_, idx, ok := t.Card(cardID)
	if !ok {
		e.reject("formdef: move card: %q not found", cardID)
		return t, false
	}
	target := idx + int(dir)
	if target < 0 || target >= len(t.Cards) {
		return t, false
	}

	out := t.clone()
	out.Cards[idx], out.Cards[target] = out.Cards[target], out.Cards[idx]
	if !documentCardsLast(out.Cards) {
		e.reject("formdef: move card: %q would put a normal card after a document card", cardID)
		return t, false
	}
	out.reRank()
	return out, true
}

func documentCardsLast(cards []CardTemplate) bool {
	seenDocument := false
	for _, card := range cards {
		if card.CardType == CardDocument {
			seenDocument = true
			continue
		}
		if seenDocument {
			return false
		}
	}
	return true
}

// AddFieldToCard appends a field to a card. Fields from protected tables are
// rejected, document cards accept only documents-table fields, and normal
// cards accept everything else.
func (e *Editor) AddFieldToCard(t FormTemplate, cardID string, field FieldInstance) (FormTemplate, bool) {
	card, idx, ok := t.Card(cardID)
	if !ok {
		e.reject("formdef: add field: card %q not found", cardID)
		return t, false
	}

	table := strings.ToLower(strings.TrimSpace(field.TableName))
	if _, protected := e.protected[table]; protected {
		e.reject("formdef: add field: table %q is protected", field.TableName)
		return t, false
	}
	isDocumentField := strings.EqualFold(field.TableName, e.documentsTable)
	if card.CardType == CardDocument && !isDocumentField {
		e.reject("formdef: add field: document card %q only accepts %s fields", cardID, e.documentsTable)
		return t, false
	}
	if card.CardType == CardNormal && isDocumentField {
		e.reject("formdef: add field: normal card %q cannot hold %s fields", cardID, e.documentsTable)
		return t, false
	}

	if field.ID == "" {
		field.ID = uuid.NewString()
	}
	if field.FieldID == "" {
		field.FieldID = field.TableName + "." + field.ColumnName
	}
	if field.DisplayName == "" {
		field.DisplayName = schema.Label(field.ColumnName)
	}

	out := t.clone()
	out.Cards[idx].Fields = append(out.Cards[idx].Fields, field)
	out.reRank()
	return out, true
}

// RemoveField drops a field from a card, re-ranking the card's remaining
// fields densely.
func (e *Editor) RemoveField(t FormTemplate, cardID, fieldID string) (FormTemplate, bool) {
	_, cardIdx, ok := t.Card(cardID)
	if !ok {
		e.reject("formdef: remove field: card %q not found", cardID)
		return t, false
	}
	fieldIdx := fieldIndex(t.Cards[cardIdx].Fields, fieldID)
	if fieldIdx < 0 {
		e.reject("formdef: remove field: %q not found in card %q", fieldID, cardID)
		return t, false
	}
	out := t.clone()
	fields := out.Cards[cardIdx].Fields
	out.Cards[cardIdx].Fields = append(fields[:fieldIdx], fields[fieldIdx+1:]...)
	out.reRank()
	return out, true
}

// MoveField swaps a field with its adjacent sibling inside the same card.
// Boundary moves are no-ops.
func (e *Editor) MoveField(t FormTemplate, cardID, fieldID string, dir Direction) (FormTemplate, bool) {
	_, cardIdx, ok := t.Card(cardID)
	if !ok {
		e.reject("formdef: move field: card %q not found", cardID)
		return t, false
	}
	fields := t.Cards[cardIdx].Fields
	fieldIdx := fieldIndex(fields, fieldID)
	if fieldIdx < 0 {
		e.reject("formdef: move field: %q not found in card %q", fieldID, cardID)
		return t, false
	}
	target := fieldIdx + int(dir)
	if target < 0 || target >= len(fields) {
		return t, false
	}
	out := t.clone()
	moved := out.Cards[cardIdx].Fields
	moved[fieldIdx], moved[target] = moved[target], moved[fieldIdx]
	out.reRank()
	return out, true
}

func fieldIndex(fields []FieldInstance, fieldID string) int {
	for i, field := range fields {
		if field.ID == fieldID {
			return i
		}
	}
	return -1
}
