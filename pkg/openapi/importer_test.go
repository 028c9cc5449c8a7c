package openapi

import (
	"context"
	"testing"

	"github.com/formmaster/go-formmaster/pkg/classify"
	"github.com/formmaster/go-formmaster/pkg/schema"
)

const petDoc = `
openapi: 3.0.0
info:
  title: Client Intake
  version: "1.0"
paths: {}
components:
  schemas:
    PersonalDetails:
      type: object
      required: [fullName, emailAddress]
      properties:
        fullName:
          type: string
          minLength: 2
          maxLength: 100
        emailAddress:
          type: string
          format: email
        age:
          type: integer
          minimum: 18
          maximum: 120
        gender:
          type: string
          enum: [Female, Male, Other]
        subscribed:
          type: boolean
    StatusList:
      type: array
      items:
        type: string
`

func TestImport_ConvertsObjectComponents(t *testing.T) {
	tables, err := Import(context.Background(), []byte(petDoc))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(tables) != 1 {
		t.Fatalf("expected the array component skipped, got %d tables", len(tables))
	}

	table := tables[0]
	if table.TableName != "personal_details" {
		t.Fatalf("table name = %q", table.TableName)
	}
	if table.DisplayName != "Personal Details" {
		t.Fatalf("display name = %q", table.DisplayName)
	}

	set := schema.NewSet(table)

	email, ok := set.Column("personal_details", "email_address")
	if !ok || !email.IsEmail || !email.Required {
		t.Fatalf("email column = %+v, ok=%v", email, ok)
	}

	name, _ := set.Column("personal_details", "full_name")
	if name.MinLength == nil || *name.MinLength != 2 || name.MaxLength == nil || *name.MaxLength != 100 {
		t.Fatalf("full_name bounds = %+v", name)
	}
	if name.Nullable {
		t.Fatal("required property must not be nullable")
	}

	age, _ := set.Column("personal_details", "age")
	if age.Type != "INTEGER" || age.MinValue == nil || *age.MinValue != 18 {
		t.Fatalf("age column = %+v", age)
	}
	if !age.Nullable {
		t.Fatal("optional property must be nullable")
	}

	gender, _ := set.Column("personal_details", "gender")
	if !gender.HasDropdown || len(gender.DropdownOptions) != 3 {
		t.Fatalf("gender dropdown = %+v", gender)
	}

	subscribed, _ := set.Column("personal_details", "subscribed")
	if subscribed.Type != "BOOLEAN" {
		t.Fatalf("subscribed type = %q", subscribed.Type)
	}
}

func TestImport_FlowsIntoClassifier(t *testing.T) {
	tables, err := Import(context.Background(), []byte(petDoc))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	c := classify.New()
	col, _ := schema.NewSet(tables...).Column("personal_details", "email_address")
	if got := c.ClassifyColumn("personal_details", col); got != classify.KindEmail {
		t.Fatalf("imported email column classified as %q", got)
	}
}

func TestImport_RejectsEmptyAndSchemaless(t *testing.T) {
	if _, err := Import(context.Background(), nil); err == nil {
		t.Fatal("empty payload accepted")
	}
	doc := []byte("openapi: 3.0.0\ninfo: {title: T, version: \"1\"}\npaths: {}\n")
	if _, err := Import(context.Background(), doc); err == nil {
		t.Fatal("document without components accepted")
	}
}
