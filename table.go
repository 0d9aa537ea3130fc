package mochow

import (
	"context"
	"slices"
)

// CreateTableRequest describes a new table.
type CreateTableRequest struct {
	Database           string           `json:"database"`
	Table              string           `json:"table"`
	Description        string           `json:"description,omitempty"`
	Replication        int              `json:"replication,omitempty"`
	Partition          *PartitionParams `json:"partition,omitempty"`
	EnableDynamicField *bool            `json:"enableDynamicField,omitempty"`
	Schema             *Schema          `json:"schema,omitempty"`
}

// AddFieldRequest adds scalar fields to an existing table.
type AddFieldRequest struct {
	Database string  `json:"database"`
	Table    string  `json:"table"`
	Schema   *Schema `json:"schema"`
}

// AliasTableRequest adds or removes a table alias.
type AliasTableRequest struct {
	Database string `json:"database"`
	Table    string `json:"table"`
	Alias    string `json:"alias"`
}

// UnaliasTableRequest removes a table alias.
type UnaliasTableRequest = AliasTableRequest

type tableRequest struct {
	Database string `json:"database"`
	Table    string `json:"table,omitempty"`
}

// ListTableResponse lists the tables of a database.
type ListTableResponse struct {
	BaseResponse
	Tables []string `json:"tables"`
}

// DescribeTableResponse holds a table description.
type DescribeTableResponse struct {
	BaseResponse
	Table *Table `json:"table"`
}

// ShowTableStatsResponse holds table statistics.
type ShowTableStatsResponse struct {
	BaseResponse
	RowCount         int64 `json:"rowCount"`
	MemorySizeInByte int64 `json:"memorySizeInByte"`
	DiskSizeInByte   int64 `json:"diskSizeInByte"`
}

// CreateTable creates a table. Creation is asynchronous; use
// WaitForTableState to wait for TableStateNormal.
func (c *Client) CreateTable(ctx context.Context, req *CreateTableRequest) error {
	return c.post(ctx, resourceTable, actionCreate, req, nil)
}

// HasTable reports whether table exists in database. A missing database
// yields false.
func (c *Client) HasTable(ctx context.Context, database, table string) (bool, error) {
	ok, err := c.HasDatabase(ctx, database)
	if err != nil || !ok {
		return false, err
	}
	resp, err := c.ListTable(ctx, database)
	if err != nil {
		return false, err
	}
	return slices.Contains(resp.Tables, table), nil
}

// DropTable drops a table. Deletion is asynchronous; use
// WaitForTableDropped to wait for it to finish.
func (c *Client) DropTable(ctx context.Context, database, table string) error {
	return c.drop(ctx, resourceTable, map[string]string{
		"database": database,
		"table":    table,
	})
}

// ListTable returns the table names of database.
func (c *Client) ListTable(ctx context.Context, database string) (*ListTableResponse, error) {
	resp := &ListTableResponse{}
	if err := c.post(ctx, resourceTable, actionList, tableRequest{Database: database}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// DescribeTable returns the description of a table.
func (c *Client) DescribeTable(ctx context.Context, database, table string) (*DescribeTableResponse, error) {
	resp := &DescribeTableResponse{}
	if err := c.post(ctx, resourceTable, actionDesc, tableRequest{Database: database, Table: table}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// AddField adds the fields in req.Schema to a table.
func (c *Client) AddField(ctx context.Context, req *AddFieldRequest) error {
	return c.post(ctx, resourceTable, actionAddField, req, nil)
}

// AliasTable adds an alias to a table.
func (c *Client) AliasTable(ctx context.Context, req *AliasTableRequest) error {
	return c.post(ctx, resourceTable, actionAlias, req, nil)
}

// UnaliasTable removes an alias from a table.
func (c *Client) UnaliasTable(ctx context.Context, req *UnaliasTableRequest) error {
	return c.post(ctx, resourceTable, actionUnalias, req, nil)
}

// ShowTableStats returns row count and storage usage of a table.
func (c *Client) ShowTableStats(ctx context.Context, database, table string) (*ShowTableStatsResponse, error) {
	resp := &ShowTableStatsResponse{}
	if err := c.post(ctx, resourceTable, actionStats, tableRequest{Database: database, Table: table}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}
