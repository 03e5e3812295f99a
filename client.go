package sheetdesk

import (
	"context"
	"fmt"
	"log/slog"
)

// Client issues raw row operations against a Backend. Every backend failure
// is logged and returned as *BackendError; nothing is retried.
type Client struct {
	backend    Backend
	dateFormat DateFormat
	cache      *Cache
	metrics    *Metrics
	logger     *slog.Logger
}

// New creates a new Client with the given backend and configuration
func New(backend Backend, config *Config) *Client {
	if config == nil {
		config = &Config{}
	}

	// Set defaults for zero values
	df := config.DateFormat
	if df.Read == "" {
		df.Read = DefaultDateLayout
	}
	if df.Write == "" {
		df.Write = DefaultDateLayout
	}
	ttl := config.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	size := config.CacheSize
	if size <= 0 {
		size = 64
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics := NewMetrics(config.Registerer)

	return &Client{
		backend:    backend,
		dateFormat: df,
		cache:      NewCache(size, ttl, metrics),
		metrics:    metrics,
		logger:     logger,
	}
}

// DateFormat returns the layouts used for date cells.
func (c *Client) DateFormat() DateFormat {
	return c.dateFormat
}

// Cache returns the list cache shared by the tables of this client.
func (c *Client) Cache() *Cache {
	return c.cache
}

// Metrics returns the client's collectors.
func (c *Client) Metrics() *Metrics {
	return c.metrics
}

// ReadRange returns the raw rows of rangeSpec. A range without data yields an
// empty slice and no error.
func (c *Client) ReadRange(ctx context.Context, spreadsheetID, rangeSpec string) ([][]string, error) {
	rows, err := c.backend.GetValues(ctx, spreadsheetID, rangeSpec)
	c.metrics.backendCall("get", err)
	if err != nil {
		return nil, c.fail("read range", rangeSpec, err)
	}
	if rows == nil {
		rows = [][]string{}
	}
	c.logger.Debug("read range", "range", rangeSpec, "rows", len(rows))
	return rows, nil
}

// AppendRow appends row at the first free row of rangeSpec's table.
func (c *Client) AppendRow(ctx context.Context, spreadsheetID, rangeSpec string, row []string) error {
	err := c.backend.AppendValues(ctx, spreadsheetID, rangeSpec, [][]string{row})
	c.metrics.backendCall("append", err)
	if err != nil {
		return c.fail("append row", rangeSpec, err)
	}
	c.logger.Debug("appended row", "range", rangeSpec)
	return nil
}

// UpdateRow overwrites the cells of rangeSpec with row. The target row is not
// checked for existence; writing past the data extends the sheet.
func (c *Client) UpdateRow(ctx context.Context, spreadsheetID, rangeSpec string, row []string) error {
	err := c.backend.UpdateValues(ctx, spreadsheetID, rangeSpec, [][]string{row})
	c.metrics.backendCall("update", err)
	if err != nil {
		return c.fail("update row", rangeSpec, err)
	}
	c.logger.Debug("updated row", "range", rangeSpec)
	return nil
}

// DeleteRow removes the 1-based rowIndex from the tab tabID. Every row below
// moves up by one, so any row index previously read from that tab is stale.
func (c *Client) DeleteRow(ctx context.Context, spreadsheetID string, rowIndex int, tabID int64) error {
	if rowIndex < 1 {
		return &ValidationError{Field: "row", Reason: fmt.Sprintf("row index %d is out of range", rowIndex)}
	}
	target := fmt.Sprintf("tab %d row %d", tabID, rowIndex)
	err := c.backend.DeleteRows(ctx, spreadsheetID, tabID, int64(rowIndex-1), int64(rowIndex))
	c.metrics.backendCall("delete", err)
	if err != nil {
		return c.fail("delete row", target, err)
	}
	c.logger.Debug("deleted row", "target", target)
	return nil
}

func (c *Client) fail(op, target string, err error) error {
	c.logger.Error("spreadsheet backend call failed", "op", op, "range", target, "error", err)
	return &BackendError{Op: op, Range: target, Err: err}
}
