package fieldpalette

import (
	"sort"
	"strings"

	"github.com/formmaster/go-formmaster/pkg/classify"
	"github.com/formmaster/go-formmaster/pkg/schema"
)

// Entry is one draggable palette item bound to a (table, column) pair.
type Entry struct {
	Table  string `json:"table"`
	Column string `json:"column"`
	Label  string `json:"label"`
	Kind   string `json:"kind"`
}

// Entries flattens a schema set into palette entries, tables in name order,
// columns in schema order. System columns are skipped unless included.
func Entries(set *schema.Set, includeSystem bool) []Entry {
	if set == nil {
		return nil
	}
	classifier := classify.New()

	var out []Entry
	for _, tableName := range set.TableNames() {
		table, _ := set.Table(tableName)
		for _, col := range table.Columns {
			if !includeSystem && schema.IsSystemColumn(col.Name) {
				continue
			}
			if col.PrimaryKey {
				continue
			}
			out = append(out, Entry{
				Table:  tableName,
				Column: col.Name,
				Label:  schema.Label(col.Name),
				Kind:   string(classifier.ClassifyColumn(tableName, col)),
			})
		}
	}
	return out
}

// Search filters entries by a case-insensitive substring over table, column,
// and label, preferring prefix matches on the column name.
func Search(entries []Entry, query string, limit int, opts Options) []Entry {
	limit = clampLimit(limit, opts)
	if limit == 0 {
		return nil
	}

	query = strings.TrimSpace(query)
	if query == "" {
		if opts.EmptySearchMode == EmptySearchTop {
			if len(entries) <= limit {
				return append([]Entry{}, entries...)
			}
			return append([]Entry{}, entries[:limit]...)
		}
		return nil
	}

	q := strings.ToLower(query)
	type match struct {
		entry    Entry
		isPrefix bool
	}
	matches := make([]match, 0, 32)
	for _, entry := range entries {
		column := strings.ToLower(entry.Column)
		if !strings.Contains(column, q) &&
			!strings.Contains(strings.ToLower(entry.Table), q) &&
			!strings.Contains(strings.ToLower(entry.Label), q) {
			continue
		}
		matches = append(matches, match{entry: entry, isPrefix: strings.HasPrefix(column, q)})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].isPrefix != matches[j].isPrefix {
			return matches[i].isPrefix
		}
		if matches[i].entry.Table != matches[j].entry.Table {
			return matches[i].entry.Table < matches[j].entry.Table
		}
		return matches[i].entry.Column < matches[j].entry.Column
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]Entry, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.entry)
	}
	return out
}

// GroupByTable arranges entries into the grouped response shape, preserving
// entry order within each table.
func GroupByTable(entries []Entry) map[string][]Entry {
	if len(entries) == 0 {
		return map[string][]Entry{}
	}
	grouped := make(map[string][]Entry)
	for _, entry := range entries {
		grouped[entry.Table] = append(grouped[entry.Table], entry)
	}
	return grouped
}
