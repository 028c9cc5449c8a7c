package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/formmaster/go-formmaster/pkg/errormap"
	"github.com/formmaster/go-formmaster/pkg/schema"
)

// fetchConcurrency bounds parallel per-table schema fetches.
const fetchConcurrency = 4

// ConstraintError is a typed backend rejection of a row insert. Callers feed
// it through errormap.Translate to obtain field-scoped messages.
type ConstraintError struct {
	Table   string
	Payload errormap.Payload
}

func (e *ConstraintError) Error() string {
	if e.Payload.Type != "" {
		return fmt.Sprintf("client: insert into %s rejected: %s", e.Table, e.Payload.Type)
	}
	return fmt.Sprintf("client: insert into %s rejected", e.Table)
}

// Fields translates the constraint payload into field-scoped messages.
func (e *ConstraintError) Fields() map[string][]string {
	return errormap.Translate(e.Table, e.Payload)
}

// CompatibleTables fetches every table schema suitable for form generation.
func (c *Client) CompatibleTables(ctx context.Context) ([]schema.TableSchema, error) {
	data, err := c.get(ctx, "/api/database/tables/compatible")
	if err != nil {
		return nil, err
	}
	return schema.DecodeTables(data)
}

// TableSchema fetches one table's column schema.
func (c *Client) TableSchema(ctx context.Context, table string) (schema.TableSchema, error) {
	if table == "" {
		return schema.TableSchema{}, errors.New("client: table name is required")
	}
	data, err := c.get(ctx, "/api/database/tables/"+url.PathEscape(table)+"/schema")
	if err != nil {
		return schema.TableSchema{}, err
	}
	return schema.DecodeTable(data)
}

// FetchAll builds a session schema snapshot: the compatible-table list first,
// then each table's full schema fetched concurrently. Any single failure
// fails the whole snapshot so sessions never start from a partial view.
func (c *Client) FetchAll(ctx context.Context) (*schema.Set, error) {
	tables, err := c.CompatibleTables(ctx)
	if err != nil {
		return nil, err
	}

	detailed := make([]schema.TableSchema, len(tables))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(fetchConcurrency)
	for i, table := range tables {
		group.Go(func() error {
			full, err := c.TableSchema(groupCtx, table.TableName)
			if err != nil {
				return err
			}
			detailed[i] = full
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return schema.NewSet(detailed...), nil
}

// InsertRow inserts a record. Constraint rejections come back as a
// *ConstraintError; transport failures and other statuses surface unchanged.
func (c *Client) InsertRow(ctx context.Context, table string, values map[string]string) error {
	if table == "" {
		return errors.New("client: table name is required")
	}
	_, err := c.postJSON(ctx, "/api/database/tables/"+url.PathEscape(table)+"/rows", values)
	if err == nil {
		return nil
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Code >= 400 && statusErr.Code < 500 {
		return &ConstraintError{
			Table:   table,
			Payload: decodeConstraintPayload(statusErr.Body),
		}
	}
	return err
}

func decodeConstraintPayload(body []byte) errormap.Payload {
	var payload errormap.Payload
	if err := decodeJSON(body, &payload); err != nil || (payload.Type == "" && payload.Message == "" && payload.Error == "") {
		return errormap.Payload{Message: string(body)}
	}
	return payload
}

// Validate runs optional server-side pre-submit validation for one table and
// returns field-keyed messages. An empty map means the record passed.
func (c *Client) Validate(ctx context.Context, table string, values map[string]string) (map[string][]string, error) {
	if table == "" {
		return nil, errors.New("client: table name is required")
	}
	data, err := c.postJSON(ctx, "/api/validate/"+url.PathEscape(table), values)
	if err != nil {
		return nil, err
	}
	var result struct {
		Errors map[string][]string `json:"errors"`
	}
	if err := decodeJSON(data, &result); err != nil {
		return nil, err
	}
	return result.Errors, nil
}

// GroupedFields fetches the designer's field palette: column names grouped by
// table.
func (c *Client) GroupedFields(ctx context.Context) (map[string][]string, error) {
	data, err := c.get(ctx, "/api/fields/grouped/table")
	if err != nil {
		return nil, err
	}
	var result struct {
		Data map[string][]string `json:"data"`
	}
	if err := decodeJSON(data, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}
