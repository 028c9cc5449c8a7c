// Package formmaster ties the form engine together: a backend client, a
// scoped session built from the fetched schema snapshot, and the classifier,
// validator, and upload machinery that run against it. The subpackages stay
// usable on their own; this package is the convenience surface.
package formmaster

import (
	"context"
	"errors"
	"fmt"

	"github.com/formmaster/go-formmaster/pkg/classify"
	"github.com/formmaster/go-formmaster/pkg/client"
	"github.com/formmaster/go-formmaster/pkg/config"
	"github.com/formmaster/go-formmaster/pkg/extract"
	"github.com/formmaster/go-formmaster/pkg/formdef"
	"github.com/formmaster/go-formmaster/pkg/session"
	"github.com/formmaster/go-formmaster/pkg/upload"
	"github.com/formmaster/go-formmaster/pkg/validate"
)

// Convenience aliases so common callers only import the root package.
type (
	// FormTemplate is a versioned, ordered collection of cards.
	FormTemplate = formdef.FormTemplate
	// CardTemplate is a titled group of field instances.
	CardTemplate = formdef.CardTemplate
	// FieldInstance is a presentation overlay bound to one (table, column).
	FieldInstance = formdef.FieldInstance
	// Editor applies structural edits to form templates.
	Editor = formdef.Editor
	// Session carries one form-filling episode's scoped state.
	Session = session.Session
	// Errors maps "table.field" keys to messages.
	Errors = validate.Errors
)

// NewTemplate creates an empty named template.
func NewTemplate(name, createdBy string) FormTemplate {
	return formdef.NewTemplate(name, createdBy)
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig supplies a loaded configuration; config.Default() is used
// otherwise.
func WithConfig(cfg config.Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithClient injects a pre-built backend client.
func WithClient(c *client.Client) Option {
	return func(e *Engine) { e.client = c }
}

// WithExtractionConfig sets the document-type field mapping used by the
// upload pipeline.
func WithExtractionConfig(cfg extract.Config) Option {
	return func(e *Engine) { e.extraction = cfg }
}

// Engine owns a backend client and, once Connect has run, an active session
// and upload manager built from the fetched schema snapshot.
type Engine struct {
	cfg        config.Config
	client     *client.Client
	extraction extract.Config

	session *session.Session
	editor  *formdef.Editor
	uploads *upload.Manager
}

// New constructs an Engine. The backend is not contacted until Connect.
func New(options ...Option) (*Engine, error) {
	e := &Engine{cfg: config.Default()}
	for _, option := range options {
		if option != nil {
			option(e)
		}
	}
	if e.client == nil {
		c, err := client.New(e.cfg.Backend, client.WithTimeout(e.cfg.RequestTimeout.Std()))
		if err != nil {
			return nil, fmt.Errorf("formmaster: build client: %w", err)
		}
		e.client = c
	}
	return e, nil
}

// Connect fetches the schema snapshot and opens a session around it. Calling
// Connect again tears down the previous session and starts fresh.
func (e *Engine) Connect(ctx context.Context) error {
	set, err := e.client.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("formmaster: fetch schemas: %w", err)
	}

	if e.session != nil {
		e.session.Close()
	}
	e.session = session.New(set,
		session.WithDocumentsTable(e.cfg.DocumentsTable),
		session.WithExtractionConfig(e.extraction),
	)
	e.editor = formdef.NewEditor(
		formdef.WithSchemas(set),
		formdef.WithDocumentsTable(e.cfg.DocumentsTable),
		formdef.WithProtectedTables(e.cfg.ProtectedTables...),
	)
	e.uploads = upload.NewManager(e.client, e.extraction, extract.NewMapper(set),
		upload.WithInterval(e.cfg.PollInterval.Std()),
		upload.WithCap(e.cfg.PollCap.Std()),
	)
	return nil
}

// Session returns the active session, or nil before Connect.
func (e *Engine) Session() *session.Session { return e.session }

// Editor returns a template editor bound to the active snapshot.
func (e *Engine) Editor() *formdef.Editor { return e.editor }

// Uploads returns the upload manager for the active session.
func (e *Engine) Uploads() *upload.Manager { return e.uploads }

// Client exposes the underlying backend client.
func (e *Engine) Client() *client.Client { return e.client }

// ClassifyColumn resolves a column's presentation kind in the active session.
func (e *Engine) ClassifyColumn(tableName, columnName string) (classify.Kind, bool) {
	if e.session == nil {
		return "", false
	}
	return e.session.ClassifyColumn(tableName, columnName)
}

// ValidateRecord runs the local constraint validator over one table's values.
func (e *Engine) ValidateRecord(tableName string, values map[string]string) (validate.Errors, error) {
	if e.session == nil {
		return nil, errors.New("formmaster: no active session, call Connect first")
	}
	return e.session.ValidateRecord(tableName, values), nil
}

// Close tears down the active session. The engine can be reused by calling
// Connect again.
func (e *Engine) Close() {
	if e.session != nil {
		e.session.Close()
	}
	e.editor = nil
	e.uploads = nil
}
