// Package render turns a form template plus its schema snapshot into a
// static HTML preview. Field inputs follow the classifier's presentation
// kinds; theme tokens, when a theme is selected, surface as CSS custom
// properties on the document root.
package render

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/formmaster/go-formmaster/pkg/classify"
	"github.com/formmaster/go-formmaster/pkg/formdef"
	"github.com/formmaster/go-formmaster/pkg/schema"
)

const previewTemplate = "templates/preview"

// Option configures the preview renderer.
type Option func(*Renderer)

// WithTemplatesFS supplies an alternate template bundle.
func WithTemplatesFS(files fs.FS) Option {
	return func(r *Renderer) { r.templateFS = files }
}

// WithClassifier swaps the classifier used to resolve input types.
func WithClassifier(c *classify.Classifier) Option {
	return func(r *Renderer) {
		if c != nil {
			r.classifier = c
		}
	}
}

// WithThemeSelector resolves a theme selection before rendering; tokens from
// the selected manifest become CSS custom properties.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) Option {
	return func(r *Renderer) {
		r.selector = selector
		r.themeName = name
		r.themeVariant = variant
	}
}

// Renderer produces HTML previews of form templates.
type Renderer struct {
	engine     *Engine
	templateFS fs.FS
	classifier *classify.Classifier

	selector     theme.ThemeSelector
	themeName    string
	themeVariant string
}

// New constructs a preview renderer backed by the embedded template bundle.
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		templateFS: TemplatesFS(),
		classifier: classify.New(),
	}
	for _, option := range options {
		if option != nil {
			option(r)
		}
	}
	engine, err := NewEngine(WithFS(r.templateFS))
	if err != nil {
		return nil, fmt.Errorf("render: configure engine: %w", err)
	}
	r.engine = engine
	return r, nil
}

// Preview renders the template against its schema snapshot. Fields whose
// column is missing from the snapshot fall back to plain text inputs.
func (r *Renderer) Preview(t formdef.FormTemplate, set *schema.Set) (string, error) {
	cards := make([]map[string]any, 0, len(t.Cards))
	for _, card := range t.Cards {
		fields := make([]map[string]any, 0, len(card.Fields))
		for _, field := range card.Fields {
			fields = append(fields, r.fieldContext(field, set))
		}
		cards = append(cards, map[string]any{
			"title":       card.Title,
			"description": card.Description,
			"type":        string(card.CardType),
			"fields":      fields,
		})
	}

	css, err := r.themeCSS()
	if err != nil {
		return "", err
	}

	return r.engine.RenderTemplate(previewTemplate, map[string]any{
		"form": map[string]any{
			"id":          t.ID,
			"name":        t.Name,
			"description": t.Description,
			"version":     t.Version,
		},
		"cards":     cards,
		"theme_css": css,
	})
}

func (r *Renderer) fieldContext(field formdef.FieldInstance, set *schema.Set) map[string]any {
	kind := classify.KindText
	dropdown := false
	var options []string
	accept := ""

	if set != nil {
		if col, ok := set.Column(field.TableName, field.ColumnName); ok {
			kind = r.classifier.ClassifyColumn(field.TableName, col)
			if col.HasDropdown {
				dropdown = true
				options = col.DropdownOptions
			}
			if kind == classify.KindFile {
				accept = classify.AcceptTypes(field.ColumnName)
			}
		}
	}

	label := field.DisplayName
	if label == "" {
		label = schema.Label(field.ColumnName)
	}

	return map[string]any{
		"id":          field.ID,
		"name":        field.TableName + "." + field.ColumnName,
		"label":       label,
		"kind":        string(kind),
		"dropdown":    dropdown,
		"options":     options,
		"accept":      accept,
		"placeholder": field.Placeholder,
		"help":        field.HelpText,
		"required":    field.IsRequired,
		"readonly":    field.IsReadonly,
	}
}

// themeCSS resolves the configured theme and flattens its manifest tokens
// into custom-property declarations, sorted for stable output.
func (r *Renderer) themeCSS() (string, error) {
	if r.selector == nil {
		return "", nil
	}
	selection, err := r.selector.Select(r.themeName, r.themeVariant)
	if err != nil {
		return "", fmt.Errorf("render: select theme %q: %w", r.themeName, err)
	}
	if selection == nil || selection.Manifest == nil || len(selection.Manifest.Tokens) == 0 {
		return "", nil
	}

	names := make([]string, 0, len(selection.Manifest.Tokens))
	for name := range selection.Manifest.Tokens {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "--fm-%s: %s; ", name, selection.Manifest.Tokens[name])
	}
	return strings.TrimSpace(b.String()), nil
}
