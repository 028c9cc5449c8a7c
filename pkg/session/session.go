// Package session scopes per-designer state that the original application
// kept in module-level caches: the schema snapshot, the documents-table name,
// the extraction configuration, and the temporary client id issued before a
// profile exists. A Session is built when schemas are fetched and torn down
// on submit or cancel; nothing in this package outlives it.
package session

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/formmaster/go-formmaster/pkg/classify"
	"github.com/formmaster/go-formmaster/pkg/extract"
	"github.com/formmaster/go-formmaster/pkg/schema"
	"github.com/formmaster/go-formmaster/pkg/validate"
)

// Session carries the immutable schema snapshot and the mutable bits of a
// single form-filling episode. Safe for concurrent use.
type Session struct {
	mu sync.RWMutex

	schemas        *schema.Set
	documentsTable string
	extraction     extract.Config
	classifier     *classify.Classifier
	mapper         *extract.Mapper

	tempClientID string
	clientID     string
	createdAt    time.Time
	closed       bool
}

// Option configures a Session at construction time.
type Option func(*Session)

// WithDocumentsTable overrides the table treated as the documents table.
func WithDocumentsTable(name string) Option {
	return func(s *Session) {
		if name != "" {
			s.documentsTable = name
		}
	}
}

// WithExtractionConfig attaches the document-type to field mapping used when
// parsed document data is folded into the form.
func WithExtractionConfig(config extract.Config) Option {
	return func(s *Session) { s.extraction = config }
}

// WithClassifier swaps in a custom rule set; the default ordered rules are
// used otherwise.
func WithClassifier(c *classify.Classifier) Option {
	return func(s *Session) {
		if c != nil {
			s.classifier = c
		}
	}
}

// New builds a session around a fetched schema snapshot and issues a fresh
// temporary client id for uploads made before the profile row exists.
func New(schemas *schema.Set, options ...Option) *Session {
	s := &Session{
		schemas:        schemas,
		documentsTable: schema.DefaultDocumentsTable,
		tempClientID:   "temp_" + uuid.NewString(),
		createdAt:      time.Now(),
	}
	for _, option := range options {
		option(s)
	}
	if s.classifier == nil {
		s.classifier = classify.New(classify.WithDocumentsTable(s.documentsTable))
	}
	s.mapper = extract.NewMapper(schemas)
	return s
}

// Schemas returns the snapshot the session was built from. Nil after Close.
func (s *Session) Schemas() *schema.Set {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schemas
}

// DocumentsTable reports the cached documents-table name.
func (s *Session) DocumentsTable() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.documentsTable
}

// ExtractionConfig returns the active document-type mapping.
func (s *Session) ExtractionConfig() extract.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.extraction
}

// TempClientID returns the placeholder id used in upload paths until a real
// client id is adopted.
func (s *Session) TempClientID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tempClientID
}

// ClientID returns the adopted permanent client id, or empty before adoption.
func (s *Session) ClientID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clientID
}

// CreatedAt reports when the schema snapshot was taken.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// ClassifyColumn resolves the presentation kind for a column in this
// session's snapshot.
func (s *Session) ClassifyColumn(tableName, columnName string) (classify.Kind, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.schemas == nil {
		return "", false
	}
	col, ok := s.schemas.Column(tableName, columnName)
	if !ok {
		return "", false
	}
	return s.classifier.ClassifyColumn(tableName, col), true
}

// ValidateRecord runs the constraint validator over one table's values.
func (s *Session) ValidateRecord(tableName string, values map[string]string) validate.Errors {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.schemas == nil {
		return validate.Errors{}
	}
	return validate.Record(s.schemas, tableName, values, s.classifier)
}

// MapExtracted routes extracted key/value pairs onto (table, column)
// destinations using the snapshot.
func (s *Session) MapExtracted(values map[string]string) (map[string]map[string]string, []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.mapper == nil {
		return nil, nil
	}
	return s.mapper.Map(values)
}

// AdoptClientID records the permanent client id created on submit. Paths
// captured under the temporary id can then be fixed with RewritePath.
func (s *Session) AdoptClientID(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clientID = clientID
}

// RewritePath substitutes the session's temporary client id with the adopted
// permanent id inside a stored file path. Both POSIX and Windows separators
// are handled; paths that do not mention the temporary id pass through
// unchanged. Returns the input untouched before AdoptClientID.
func (s *Session) RewritePath(path string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.clientID == "" {
		return path
	}
	return RewriteTempPath(path, s.tempClientID, s.clientID)
}

// Close tears the session down. Further schema lookups return zero values;
// the temp client id stays readable so late poll results can still be
// attributed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.schemas = nil
	s.mapper = nil
	s.extraction = extract.Config{}
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// RewriteTempPath replaces tempID with realID wherever it appears as a path
// segment, for both "/" and "\" separated paths. The surrounding path text is
// preserved exactly.
func RewriteTempPath(path, tempID, realID string) string {
	if path == "" || tempID == "" || tempID == realID {
		return path
	}
	for _, sep := range []string{"/", "\\"} {
		path = strings.ReplaceAll(path, sep+tempID+sep, sep+realID+sep)
		if strings.HasSuffix(path, sep+tempID) {
			path = strings.TrimSuffix(path, tempID) + realID
		}
		if strings.HasPrefix(path, tempID+sep) {
			path = realID + strings.TrimPrefix(path, tempID)
		}
	}
	return path
}
