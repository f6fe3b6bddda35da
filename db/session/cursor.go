package session

import (
	"context"
	"sync/atomic"

	"github.com/jmoiron/sqlx"
)

// Cursor is a short-lived connection scoped to a single tool call.
type Cursor struct {
	conn       *sqlx.Conn
	structured bool
	closes     int32
}

// Structured reports whether rows are returned as column mappings.
func (c *Cursor) Structured() bool {
	return c.structured
}

// Fetch returns []map[string]interface{} for structured cursors and
// [][]interface{} otherwise.
func (c *Cursor) Fetch(ctx context.Context, statement string, args ...interface{}) (interface{}, error) {
	if c.structured {
		return c.FetchMaps(ctx, statement, args...)
	}
	return c.FetchRows(ctx, statement, args...)
}

// FetchMaps returns every row keyed by column name.
func (c *Cursor) FetchMaps(ctx context.Context, statement string, args ...interface{}) ([]map[string]interface{}, error) {
	rows, err := c.conn.QueryxContext(ctx, statement, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ret = make([]map[string]interface{}, 0)
	for rows.Next() {
		row := map[string]interface{}{}
		if err = rows.MapScan(row); err != nil {
			return nil, err
		}
		for k, v := range row {
			row[k] = normalize(v)
		}
		ret = append(ret, row)
	}
	return ret, rows.Err()
}

// FetchRows returns every row as a positional tuple.
func (c *Cursor) FetchRows(ctx context.Context, statement string, args ...interface{}) ([][]interface{}, error) {
	rows, err := c.conn.QueryxContext(ctx, statement, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ret = make([][]interface{}, 0)
	for rows.Next() {
		row, err := rows.SliceScan()
		if err != nil {
			return nil, err
		}
		for i, v := range row {
			row[i] = normalize(v)
		}
		ret = append(ret, row)
	}
	return ret, rows.Err()
}

// Close returns the connection to the pool; later calls are no-ops.
func (c *Cursor) Close() error {
	if atomic.AddInt32(&c.closes, 1) != 1 {
		return nil
	}
	return c.conn.Close()
}

// Closed reports whether Close was called.
func (c *Cursor) Closed() bool {
	return atomic.LoadInt32(&c.closes) > 0
}

func normalize(value interface{}) interface{} {
	if data, ok := value.([]byte); ok {
		return string(data)
	}
	return value
}
