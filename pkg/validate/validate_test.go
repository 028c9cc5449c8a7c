package validate

import (
	"strings"
	"testing"

	"github.com/formmaster/go-formmaster/pkg/classify"
	"github.com/formmaster/go-formmaster/pkg/schema"
)

func intptr(v int) *int { return &v }

func TestField_RequiredBlocksFurtherChecks(t *testing.T) {
	col := schema.ColumnDefinition{Name: "first_name", Type: "TEXT", Required: true, MinLength: intptr(3)}

	msgs := Field(col, "  ")
	if len(msgs) != 1 {
		t.Fatalf("expected single blocking message, got %v", msgs)
	}
	if msgs[0] != "First Name is required" {
		t.Fatalf("unexpected message: %q", msgs[0])
	}
}

func TestField_DropdownMembership(t *testing.T) {
	col := schema.ColumnDefinition{
		Name: "gender", Type: "TEXT",
		HasDropdown:     true,
		DropdownOptions: []string{"A", "B"},
	}

	if msgs := Field(col, "A"); len(msgs) != 0 {
		t.Fatalf("member value rejected: %v", msgs)
	}

	msgs := Field(col, "C")
	if len(msgs) != 1 {
		t.Fatalf("expected one membership error, got %v", msgs)
	}
	if !strings.Contains(msgs[0], "A, B") {
		t.Fatalf("message must list allowed values exactly, got %q", msgs[0])
	}
}

func TestField_DropdownIsCaseSensitive(t *testing.T) {
	col := schema.ColumnDefinition{
		Name: "category", Type: "TEXT",
		HasDropdown:     true,
		DropdownOptions: []string{"General", "Reserved"},
	}
	if msgs := Field(col, "general"); len(msgs) == 0 {
		t.Fatalf("lowercase variant should not match")
	}
}

func TestField_IntegerRange(t *testing.T) {
	col := schema.ColumnDefinition{
		Name: "age", Type: "INTEGER",
		MinValue: intptr(1), MaxValue: intptr(120),
	}

	if msgs := Field(col, "45"); len(msgs) != 0 {
		t.Fatalf("45 should pass, got %v", msgs)
	}
	if msgs := Field(col, "0"); len(msgs) != 1 {
		t.Fatalf("0 should fail range, got %v", msgs)
	}
	if msgs := Field(col, "121"); len(msgs) != 1 {
		t.Fatalf("121 should fail range, got %v", msgs)
	}

	msgs := Field(col, "abc")
	if len(msgs) != 1 {
		t.Fatalf("parse failure must suppress range checks, got %v", msgs)
	}
	if !strings.Contains(msgs[0], "valid number") {
		t.Fatalf("unexpected parse message: %q", msgs[0])
	}
}

func TestField_ExactValueOverridesRange(t *testing.T) {
	col := schema.ColumnDefinition{Name: "pincode_digits", Type: "INTEGER", ExactValue: intptr(6)}
	if msgs := Field(col, "6"); len(msgs) != 0 {
		t.Fatalf("exact match rejected: %v", msgs)
	}
	if msgs := Field(col, "5"); len(msgs) != 1 {
		t.Fatalf("expected exact-value error, got %v", msgs)
	}
}

func TestField_LengthBoundsBothFire(t *testing.T) {
	col := schema.ColumnDefinition{Name: "code", Type: "TEXT", MinLength: intptr(4), MaxLength: intptr(2)}
	// Contradictory bounds are the backend's problem; both still evaluate.
	if msgs := Field(col, "abc"); len(msgs) != 2 {
		t.Fatalf("expected both length errors, got %v", msgs)
	}
}

func TestField_ExactLength(t *testing.T) {
	col := schema.ColumnDefinition{Name: "aadhaar_number", Type: "TEXT", ExactLength: intptr(12)}
	if msgs := Field(col, "123456789012"); len(msgs) != 0 {
		t.Fatalf("exact length rejected: %v", msgs)
	}
	if msgs := Field(col, "1234"); len(msgs) != 1 {
		t.Fatalf("expected exact-length error, got %v", msgs)
	}
}

func TestField_EmailChecksDoNotDoubleReport(t *testing.T) {
	col := schema.ColumnDefinition{Name: "email", Type: "TEXT", IsEmail: true}

	msgs := Field(col, "nodomain")
	if len(msgs) != 1 || !strings.Contains(msgs[0], "@") {
		t.Fatalf("missing @ must report once, got %v", msgs)
	}

	msgs = Field(col, "user@host")
	if len(msgs) != 1 || !strings.Contains(msgs[0], "valid email") {
		t.Fatalf("shape failure must report once, got %v", msgs)
	}

	if msgs := Field(col, "user@example.com"); len(msgs) != 0 {
		t.Fatalf("valid address rejected: %v", msgs)
	}
}

func TestRecord_EmailByNameWithoutFlag(t *testing.T) {
	set := schema.NewSet(schema.TableSchema{
		TableName: "personal_details",
		Columns: []schema.ColumnDefinition{
			{Name: "email_address", Type: "TEXT"},
		},
	})

	errs := Record(set, "personal_details", map[string]string{"email_address": "not-an-email"}, classify.New())
	if len(errs["personal_details.email_address"]) == 0 {
		t.Fatalf("invalid email accepted: %v", errs)
	}

	errs = Record(set, "personal_details", map[string]string{"email_address": "user@example.com"}, classify.New())
	if !errs.Empty() {
		t.Fatalf("valid email rejected: %v", errs)
	}
}

func TestRecord_KeysAndSystemColumnExemption(t *testing.T) {
	set := schema.NewSet(schema.TableSchema{
		TableName:  "personal_details",
		IsRequired: true,
		Columns: []schema.ColumnDefinition{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "full_name", Type: "TEXT", Required: true},
			{Name: "created_at", Type: "TIMESTAMP", Required: true},
		},
	})

	errs := Record(set, "personal_details", map[string]string{}, classify.New())
	if len(errs) != 1 {
		t.Fatalf("expected only full_name to fail, got %v", errs)
	}
	if _, ok := errs["personal_details.full_name"]; !ok {
		t.Fatalf("missing field-scoped key, got %v", errs)
	}
}

func TestRecord_RequiredFilePath(t *testing.T) {
	set := schema.NewSet(schema.TableSchema{
		TableName:  "documents",
		IsRequired: true,
		Columns: []schema.ColumnDefinition{
			{Name: "aadhaar_card", Type: "TEXT", Nullable: false, Required: true},
			{Name: "pan_card", Type: "TEXT", Nullable: true},
		},
	})

	errs := Record(set, "documents", map[string]string{"pan_card": ""}, classify.New())
	if len(errs) != 1 {
		t.Fatalf("only the non-nullable file column should fail, got %v", errs)
	}
	if _, ok := errs["documents.aadhaar_card"]; !ok {
		t.Fatalf("expected documents.aadhaar_card key, got %v", errs)
	}

	errs = Record(set, "documents", map[string]string{"aadhaar_card": "/uploads/7/aadhaar.pdf"}, classify.New())
	if !errs.Empty() {
		t.Fatalf("stored path should satisfy the file check, got %v", errs)
	}
}

func TestRecord_UnknownTable(t *testing.T) {
	errs := Record(schema.NewSet(), "ghost", nil, nil)
	if _, ok := errs[GeneralKey]; !ok {
		t.Fatalf("unknown table must land on the general key, got %v", errs)
	}
}
