// Package extract maps AI-extracted key/value pairs from parsed documents
// onto the (table, column) destinations a form can render. Extracted keys are
// bare column names; the active schema snapshot decides which table owns each
// one.
package extract

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/formmaster/go-formmaster/pkg/schema"
)

// Config describes which document types have an extraction schema and the
// field names each one is expected to yield. Types absent from the config
// skip AI processing entirely.
type Config struct {
	Types map[string]TypeConfig `json:"types"`
}

// TypeConfig is the extraction schema for one document type.
type TypeConfig struct {
	DisplayName string   `json:"displayName,omitempty"`
	Fields      []string `json:"fields"`
}

// DecodeConfig validates the parsing-config payload.
func DecodeConfig(raw []byte) (Config, error) {
	if len(raw) == 0 {
		return Config{}, fmt.Errorf("extract: empty config payload")
	}
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("extract: decode config: %w", err)
	}
	return cfg, nil
}

// HasSchema reports whether a document type has a configured extraction
// schema.
func (c Config) HasSchema(documentType string) bool {
	if c.Types == nil {
		return false
	}
	_, ok := c.Types[documentType]
	return ok
}

// Mapper places extracted values under their owning (table, column) pair.
type Mapper struct {
	schemas *schema.Set
}

// NewMapper builds a mapper over the session's schema snapshot.
func NewMapper(set *schema.Set) *Mapper {
	return &Mapper{schemas: set}
}

// Map resolves every extracted key to its owning table. Keys with no schema
// match are dropped and reported as warnings, not errors: extraction output
// routinely contains labels the schema never models.
func (m *Mapper) Map(values map[string]string) (map[string]map[string]string, []string) {
	if len(values) == 0 {
		return nil, nil
	}

	out := make(map[string]map[string]string)
	var warnings []string

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		columnName := strings.TrimSpace(key)
		if columnName == "" {
			continue
		}
		tableName, _, ok := m.schemas.FindColumn(columnName)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("extract: no schema column matches %q, value dropped", key))
			continue
		}
		if out[tableName] == nil {
			out[tableName] = make(map[string]string)
		}
		out[tableName][columnName] = values[key]
	}
	return out, warnings
}

// Result accumulates extraction output per document type. Polling loops for
// different types run on their own goroutines, so access is serialized even
// though each loop writes only its own key.
type Result struct {
	mu     sync.Mutex
	byType map[string]map[string]string
}

// NewResult constructs an empty accumulator.
func NewResult() *Result {
	return &Result{byType: make(map[string]map[string]string)}
}

// Merge records a document type's extracted values, replacing any previous
// extraction for that type.
func (r *Result) Merge(documentType string, values map[string]string) {
	copied := make(map[string]string, len(values))
	for key, value := range values {
		copied[key] = value
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byType == nil {
		r.byType = make(map[string]map[string]string)
	}
	r.byType[documentType] = copied
}

// ForType returns a copy of the extraction recorded for one document type.
func (r *Result) ForType(documentType string) map[string]string {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	values, ok := r.byType[documentType]
	if !ok {
		return nil
	}
	copied := make(map[string]string, len(values))
	for key, value := range values {
		copied[key] = value
	}
	return copied
}

// Flatten merges every type's extraction into one key/value map, suitable for
// a single Mapper pass. Types merge in name order; later types win on
// duplicate keys.
func (r *Result) Flatten() map[string]string {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.byType) == 0 {
		return nil
	}
	types := make([]string, 0, len(r.byType))
	for documentType := range r.byType {
		types = append(types, documentType)
	}
	sort.Strings(types)

	out := make(map[string]string)
	for _, documentType := range types {
		for key, value := range r.byType[documentType] {
			out[key] = value
		}
	}
	return out
}
