// Package errormap reconnects storage-layer failures to renderable fields.
// The backend reports constraint violations without any notion of UI field
// identity; this translator is the single place that maps its error classes
// back onto "{table}.{field}" keys, falling back to a table-wide "_general"
// entry when no column can be recovered.
package errormap

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/formmaster/go-formmaster/pkg/schema"
)

// GeneralKey collects messages that could not be attributed to one field.
const GeneralKey = "_general"

// Backend error class discriminants.
const (
	TypeValidation = "VALIDATION_ERROR"
	TypeUnique     = "UNIQUE_CONSTRAINT"
	TypeCheck      = "CHECK_CONSTRAINT"
	TypeForeignKey = "FOREIGN_KEY_CONSTRAINT"
)

// Payload is the loosely shaped error body the backend returns on a failed
// row insert. Type may be empty, in which case Message/Error text is pattern
// matched instead.
type Payload struct {
	Type    string   `json:"type,omitempty"`
	Message string   `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
	Details []string `json:"details,omitempty"`
}

func (p Payload) text() string {
	if strings.TrimSpace(p.Message) != "" {
		return p.Message
	}
	return p.Error
}

// Raw-text constraint patterns, matched when no discriminant is present.
var (
	checkFailedPattern   = regexp.MustCompile(`CHECK constraint failed:\s*([A-Za-z0-9_]+)`)
	uniqueFailedPattern  = regexp.MustCompile(`UNIQUE constraint failed:\s*([A-Za-z0-9_]+)\.([A-Za-z0-9_]+)`)
	notNullFailedPattern = regexp.MustCompile(`NOT NULL constraint failed:\s*([A-Za-z0-9_]+)\.([A-Za-z0-9_]+)`)
)

// Prioritized field-name extraction patterns for itemized validation text.
// Earlier patterns win; all capture the field name in group 1.
var fieldPatterns = []*regexp.Regexp{
	regexp.MustCompile(`•\s*([A-Za-z0-9_]+)\s+must\b`),
	regexp.MustCompile(`field\s+'([A-Za-z0-9_]+)'`),
	regexp.MustCompile(`"([A-Za-z0-9_]+)"\s+(?:is|must|should)\b`),
	regexp.MustCompile(`\b([a-z][a-z0-9]*(?:_[a-z0-9]+)+)\b`),
}

// TranslateRaw decodes a JSON error body and translates it. A body that is
// not JSON is treated as bare message text.
func TranslateRaw(tableName string, raw []byte) map[string][]string {
	var payload Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		payload = Payload{Message: string(raw)}
	}
	return Translate(tableName, payload)
}

// Translate maps a backend error payload onto field-scoped messages. Every
// input yields at least one message; nothing is swallowed.
func Translate(tableName string, payload Payload) map[string][]string {
	out := make(map[string][]string)
	general := func(message string) {
		out[GeneralKey] = append(out[GeneralKey], message)
	}
	field := func(column, message string) {
		key := tableName + "." + column
		out[key] = append(out[key], message)
	}

	switch strings.ToUpper(strings.TrimSpace(payload.Type)) {
	case TypeValidation:
		items := payload.Details
		if len(items) == 0 {
			items = splitItemized(payload.text())
		}
		matched := false
		for _, item := range items {
			if column, ok := extractField(item); ok {
				field(column, strings.TrimSpace(item))
				matched = true
			}
		}
		if !matched {
			general("Validation failed for " + tableName + ": " + strings.TrimSpace(payload.text()))
		}
		return out
	case TypeUnique:
		general("A record with these details already exists in " + tableName)
		return out
	case TypeCheck:
		general("One of the values for " + tableName + " does not match its allowed format")
		return out
	case TypeForeignKey:
		general("A referenced record for " + tableName + " does not exist")
		return out
	}

	text := payload.text()
	if match := notNullFailedPattern.FindStringSubmatch(text); match != nil {
		field(match[2], schema.Label(match[2])+" is required")
		return out
	}
	if match := uniqueFailedPattern.FindStringSubmatch(text); match != nil {
		field(match[2], schema.Label(match[2])+" must be unique")
		return out
	}
	if match := checkFailedPattern.FindStringSubmatch(text); match != nil {
		field(match[1], schema.Label(match[1])+" has an invalid value")
		return out
	}

	message := strings.TrimSpace(text)
	if message == "" {
		message = "Unexpected error saving " + tableName
	}
	general(message)
	return out
}

// splitItemized breaks "Error in X: • a must be ... • b must be ..." style
// text into per-field items.
func splitItemized(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if !strings.Contains(text, "•") {
		return []string{text}
	}
	parts := strings.Split(text, "•")
	out := make([]string, 0, len(parts))
	for _, part := range parts[1:] {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, "• "+trimmed)
		}
	}
	return out
}

func extractField(item string) (string, bool) {
	for _, pattern := range fieldPatterns {
		if match := pattern.FindStringSubmatch(item); match != nil {
			return match[1], true
		}
	}
	return "", false
}
