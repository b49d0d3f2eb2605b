package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/onlyhub/internal/shared"
)

const (
	restPath         = "/rest/v1/"
	singleObjectMIME = "application/vnd.pgrst.object+json"
)

// Filter is one PostgREST horizontal filter, e.g. id=eq.abc.
type Filter struct {
	Column   string
	Operator string
	Value    string
}

// Eq matches rows where column equals value.
func Eq(column, value string) Filter {
	return Filter{Column: column, Operator: "eq", Value: value}
}

// In matches rows where column is one of values.
func In(column string, values ...string) Filter {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = strconv.Quote(v)
	}
	return Filter{Column: column, Operator: "in", Value: "(" + strings.Join(quoted, ",") + ")"}
}

func (f Filter) encode() string { return f.Operator + "." + f.Value }

// Query describes a table read.
type Query struct {
	Columns string   // Columns is the select list, "*" when empty
	Filters []Filter // Filters are ANDed together
	Order   string   // Order is a PostgREST order clause, e.g. "sort_order.asc"
	Limit   int
	Single  bool // Single requests exactly one row as an object
}

func (q Query) values() url.Values {
	v := url.Values{}
	columns := q.Columns
	if columns == "" {
		columns = "*"
	}
	v.Set("select", columns)
	for _, f := range q.Filters {
		v.Add(f.Column, f.encode())
	}
	if q.Order != "" {
		v.Set("order", q.Order)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// Select reads rows from table into dst, a pointer to a slice, or to a struct when q.Single is set.
//
// A single-row read matching no row returns [shared.ErrNotFound].
func (c *Client) Select(ctx context.Context, table string, q Query, dst any) error {
	req := request{
		service: "postgrest",
		method:  http.MethodGet,
		path:    restPath + table,
		query:   q.values(),
		header:  http.Header{},
	}
	if q.Single {
		req.header.Set("Accept", singleObjectMIME)
	}

	err := c.doRequest(ctx, req, dst)
	if q.Single && StatusCode(err) == http.StatusNotAcceptable {
		return fmt.Errorf("%w: %s row", shared.ErrNotFound, table)
	}
	return err
}

// Upsert inserts rows, merging with existing rows that collide on onConflict.
func (c *Client) Upsert(ctx context.Context, table string, rows any, onConflict string) error {
	req, err := jsonRequest("postgrest", http.MethodPost, restPath+table, rows)
	if err != nil {
		return err
	}
	if onConflict != "" {
		req.query = url.Values{"on_conflict": {onConflict}}
	}
	req.header.Set("Prefer", "resolution=merge-duplicates,return=minimal")
	return c.doRequest(ctx, req, nil)
}

// Delete removes the rows of table matching every filter.
//
// PostgREST refuses unfiltered deletes, so at least one filter is required.
func (c *Client) Delete(ctx context.Context, table string, filters ...Filter) error {
	if len(filters) == 0 {
		return fmt.Errorf("%w: delete from %s requires a filter", shared.ErrInvalidArgument, table)
	}

	q := url.Values{}
	for _, f := range filters {
		q.Add(f.Column, f.encode())
	}

	req := request{
		service: "postgrest",
		method:  http.MethodDelete,
		path:    restPath + table,
		query:   q,
		header:  http.Header{"Prefer": {"return=minimal"}},
	}
	return c.doRequest(ctx, req, nil)
}

// AdminRecord is a row of the admins authorization table.
type AdminRecord struct {
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

// ActiveAdmin returns the active admin row for userID, or [shared.ErrNotFound] when the user is not an active admin.
func (c *Client) ActiveAdmin(ctx context.Context, userID string) (*AdminRecord, error) {
	var rec AdminRecord
	q := Query{
		Filters: []Filter{Eq("user_id", userID), Eq("is_active", "true")},
		Single:  true,
	}
	if err := c.Select(ctx, "admins", q, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
