// Package fieldpalette provides the designer's field palette: a deterministic
// list of (table, column) entries derived from a schema snapshot, search
// helpers, and a small net/http handler that returns the entries grouped by
// table.
//
// The default handler responds to GET and HEAD requests and supports query and
// limit parameters to filter results, matching the backend's grouped-fields
// endpoint shape.
package fieldpalette
