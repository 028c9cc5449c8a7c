package formdef

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	helpPolicyOnce sync.Once
	helpPolicy     *bluemonday.Policy
)

func helpSanitizer() *bluemonday.Policy {
	helpPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("b", "i", "em", "strong", "br", "code")
		helpPolicy = policy
	})
	return helpPolicy
}

func sanitizeText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(helpSanitizer().Sanitize(trimmed))
}

// Sanitize strips unsafe markup from every designer-supplied text on the
// template. Help text keeps basic inline formatting; everything else is
// reduced to plain text. Call it before persisting or rendering a template.
func Sanitize(t FormTemplate) FormTemplate {
	out := t.clone()
	out.Name = sanitizeText(out.Name)
	out.Description = sanitizeText(out.Description)
	for i := range out.Cards {
		card := &out.Cards[i]
		card.Title = sanitizeText(card.Title)
		card.Description = sanitizeText(card.Description)
		for j := range card.Fields {
			field := &card.Fields[j]
			field.DisplayName = sanitizeText(field.DisplayName)
			field.Placeholder = sanitizeText(field.Placeholder)
			field.HelpText = sanitizeText(field.HelpText)
		}
	}
	return out
}
