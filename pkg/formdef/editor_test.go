package formdef

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/formmaster/go-formmaster/pkg/schema"
)

func testSchemas() *schema.Set {
	return schema.NewSet(
		schema.TableSchema{
			TableName: "personal_details",
			Columns: []schema.ColumnDefinition{
				{Name: "full_name", Type: "TEXT", Required: true},
				{Name: "email", Type: "TEXT", IsEmail: true},
			},
		},
		schema.TableSchema{
			TableName: "documents",
			Columns: []schema.ColumnDefinition{
				{Name: "id", Type: "INTEGER", PrimaryKey: true},
				{Name: "aadhaar_card", Type: "TEXT", Required: true},
				{Name: "pan_card", Type: "TEXT"},
				{Name: "notes", Type: "TEXT"},
			},
		},
	)
}

func newCardID(t *testing.T, before, after FormTemplate) string {
	t.Helper()
	seen := make(map[string]struct{}, len(before.Cards))
	for _, card := range before.Cards {
		seen[card.ID] = struct{}{}
	}
	for _, card := range after.Cards {
		if _, ok := seen[card.ID]; !ok {
			return card.ID
		}
	}
	t.Fatalf("no new card found")
	return ""
}

func TestAddCard_DocumentCardAutoPopulates(t *testing.T) {
	e := NewEditor(WithSchemas(testSchemas()))
	tpl, ok := e.AddCard(NewTemplate("Onboarding", "tester"), "Documents", CardDocument)
	if !ok {
		t.Fatalf("add document card rejected")
	}
	card := tpl.Cards[0]
	if len(card.Fields) != 2 {
		t.Fatalf("expected the two file columns, got %d fields", len(card.Fields))
	}
	for _, field := range card.Fields {
		if field.TableName != "documents" {
			t.Fatalf("auto-populated field bound to %q", field.TableName)
		}
	}
	if card.Fields[0].ColumnName != "aadhaar_card" || card.Fields[1].ColumnName != "pan_card" {
		t.Fatalf("unexpected field order: %+v", card.Fields)
	}
}

func TestAddThenRemoveCard_RestoresStructure(t *testing.T) {
	e := NewEditor(WithSchemas(testSchemas()))
	base, _ := e.AddCard(NewTemplate("Onboarding", "tester"), "Personal", CardNormal)

	grown, ok := e.AddCard(base, "Extra", CardNormal)
	if !ok {
		t.Fatalf("add card rejected")
	}
	restored, ok := e.RemoveCard(grown, newCardID(t, base, grown))
	if !ok {
		t.Fatalf("remove card rejected")
	}

	if diff := cmp.Diff(base.Cards, restored.Cards); diff != "" {
		t.Fatalf("structure not restored (-want +got):\n%s", diff)
	}
}

func TestAddCard_NormalSlotsBeforeDocumentCard(t *testing.T) {
	e := NewEditor(WithSchemas(testSchemas()))
	tpl, _ := e.AddCard(NewTemplate("Onboarding", "tester"), "Documents", CardDocument)
	tpl, ok := e.AddCard(tpl, "Personal", CardNormal)
	if !ok {
		t.Fatalf("add normal card rejected")
	}
	if tpl.Cards[0].CardType != CardNormal || tpl.Cards[1].CardType != CardDocument {
		t.Fatalf("normal card must precede document card: %v, %v", tpl.Cards[0].CardType, tpl.Cards[1].CardType)
	}
	if tpl.Cards[0].Order != 0 || tpl.Cards[1].Order != 1 {
		t.Fatalf("orders not dense: %d, %d", tpl.Cards[0].Order, tpl.Cards[1].Order)
	}
}

func TestMoveCard_DocumentCardStaysLast(t *testing.T) {
	e := NewEditor(WithSchemas(testSchemas()))
	tpl := NewTemplate("Onboarding", "tester")
	tpl, _ = e.AddCard(tpl, "Personal", CardNormal)
	tpl, _ = e.AddCard(tpl, "Employment", CardNormal)
	tpl, _ = e.AddCard(tpl, "Documents", CardDocument)

	docID := tpl.Cards[2].ID
	normalID := tpl.Cards[1].ID

	if _, ok := e.MoveCard(tpl, docID, MoveUp); ok {
		t.Fatalf("document card moved above a normal card")
	}
	if _, ok := e.MoveCard(tpl, normalID, MoveDown); ok {
		t.Fatalf("normal card moved below the document card")
	}

	moved, ok := e.MoveCard(tpl, normalID, MoveUp)
	if !ok {
		t.Fatalf("legal move rejected")
	}
	for _, card := range moved.Cards {
		if card.CardType == CardNormal && card.Order > 2 {
			t.Fatalf("dense ranking broken: %+v", moved.Cards)
		}
	}
	if moved.Cards[2].CardType != CardDocument {
		t.Fatalf("document card no longer last")
	}
}

func TestMoveCard_BoundaryIsNoOp(t *testing.T) {
	e := NewEditor(WithSchemas(testSchemas()))
	tpl, _ := e.AddCard(NewTemplate("Onboarding", "tester"), "Only", CardNormal)
	if _, ok := e.MoveCard(tpl, tpl.Cards[0].ID, MoveUp); ok {
		t.Fatalf("boundary move accepted")
	}
}

func TestAddFieldToCard_TableCompatibility(t *testing.T) {
	var logged []string
	e := NewEditor(
		WithSchemas(testSchemas()),
		WithLogger(func(format string, args ...any) {
			logged = append(logged, format)
		}),
	)

	tpl := NewTemplate("Onboarding", "tester")
	tpl, _ = e.AddCard(tpl, "Personal", CardNormal)
	tpl, _ = e.AddCard(tpl, "Documents", CardDocument)
	normalID := tpl.Cards[0].ID
	docID := tpl.Cards[1].ID

	if _, ok := e.AddFieldToCard(tpl, normalID, FieldInstance{TableName: "documents", ColumnName: "pan_card"}); ok {
		t.Fatalf("normal card accepted a documents field")
	}
	if _, ok := e.AddFieldToCard(tpl, docID, FieldInstance{TableName: "personal_details", ColumnName: "email"}); ok {
		t.Fatalf("document card accepted a non-documents field")
	}
	if _, ok := e.AddFieldToCard(tpl, normalID, FieldInstance{TableName: "users", ColumnName: "login"}); ok {
		t.Fatalf("protected table accepted")
	}
	if len(logged) != 3 {
		t.Fatalf("expected 3 rejection logs, got %d", len(logged))
	}

	accepted, ok := e.AddFieldToCard(tpl, normalID, FieldInstance{TableName: "personal_details", ColumnName: "full_name"})
	if !ok {
		t.Fatalf("valid field rejected")
	}
	field := accepted.Cards[0].Fields[0]
	if field.ID == "" || field.FieldID != "personal_details.full_name" {
		t.Fatalf("field identity not defaulted: %+v", field)
	}
	if field.DisplayName != "Full Name" {
		t.Fatalf("display name not derived: %q", field.DisplayName)
	}
}

func TestMoveAndRemoveField_DenseOrders(t *testing.T) {
	e := NewEditor(WithSchemas(testSchemas()))
	tpl := NewTemplate("Onboarding", "tester")
	tpl, _ = e.AddCard(tpl, "Personal", CardNormal)
	cardID := tpl.Cards[0].ID
	tpl, _ = e.AddFieldToCard(tpl, cardID, FieldInstance{TableName: "personal_details", ColumnName: "full_name"})
	tpl, _ = e.AddFieldToCard(tpl, cardID, FieldInstance{TableName: "personal_details", ColumnName: "email"})

	first := tpl.Cards[0].Fields[0].ID
	moved, ok := e.MoveField(tpl, cardID, first, MoveDown)
	if !ok {
		t.Fatalf("move field rejected")
	}
	if moved.Cards[0].Fields[1].ID != first {
		t.Fatalf("field did not move")
	}
	if moved.Cards[0].Fields[0].Order != 0 || moved.Cards[0].Fields[1].Order != 1 {
		t.Fatalf("field orders not dense after move")
	}

	removed, ok := e.RemoveField(moved, cardID, first)
	if !ok {
		t.Fatalf("remove field rejected")
	}
	if len(removed.Cards[0].Fields) != 1 || removed.Cards[0].Fields[0].Order != 0 {
		t.Fatalf("field orders not dense after removal: %+v", removed.Cards[0].Fields)
	}
}

func TestMutations_DoNotAliasInput(t *testing.T) {
	e := NewEditor(WithSchemas(testSchemas()))
	tpl, _ := e.AddCard(NewTemplate("Onboarding", "tester"), "Personal", CardNormal)
	before := tpl.Cards[0].Title

	out, _ := e.AddFieldToCard(tpl, tpl.Cards[0].ID, FieldInstance{TableName: "personal_details", ColumnName: "email"})
	out.Cards[0].Title = "changed"

	if tpl.Cards[0].Title != before {
		t.Fatalf("mutation aliased the input template")
	}
	if len(tpl.Cards[0].Fields) != 0 {
		t.Fatalf("input template grew a field")
	}
}

func TestSanitize_StripsScriptsKeepsInlineMarkup(t *testing.T) {
	tpl := NewTemplate("Onboarding", "tester")
	tpl.Cards = []CardTemplate{{
		ID:    "c1",
		Title: `Personal<script>alert(1)</script>`,
		Fields: []FieldInstance{{
			ID:       "f1",
			HelpText: `Use <strong>block letters</strong><img src=x onerror=alert(1)>`,
		}},
	}}

	clean := Sanitize(tpl)
	if clean.Cards[0].Title != "Personal" {
		t.Fatalf("script not stripped: %q", clean.Cards[0].Title)
	}
	if clean.Cards[0].Fields[0].HelpText != "Use <strong>block letters</strong>" {
		t.Fatalf("inline markup mangled: %q", clean.Cards[0].Fields[0].HelpText)
	}
}
