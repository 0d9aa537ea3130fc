package mochow

import "context"

// CreateIndexRequest adds indexes to a table.
type CreateIndexRequest struct {
	Database string       `json:"database"`
	Table    string       `json:"table"`
	Indexes  []IndexField `json:"indexes"`
}

// ModifyIndexRequest changes the auto build settings of an index.
type ModifyIndexRequest struct {
	Database string     `json:"database"`
	Table    string     `json:"table"`
	Index    IndexField `json:"index"`
}

type indexRequest struct {
	Database  string `json:"database"`
	Table     string `json:"table"`
	IndexName string `json:"indexName"`
}

// DescribeIndexResponse holds an index description.
type DescribeIndexResponse struct {
	BaseResponse
	Index *IndexField `json:"index"`
}

// CreateIndex creates the indexes in req.
func (c *Client) CreateIndex(ctx context.Context, req *CreateIndexRequest) error {
	return c.post(ctx, resourceIndex, actionCreate, req, nil)
}

// DescribeIndex returns the description of an index.
func (c *Client) DescribeIndex(ctx context.Context, database, table, indexName string) (*DescribeIndexResponse, error) {
	resp := &DescribeIndexResponse{}
	body := indexRequest{Database: database, Table: table, IndexName: indexName}
	if err := c.post(ctx, resourceIndex, actionDesc, body, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ModifyIndex updates an index definition.
func (c *Client) ModifyIndex(ctx context.Context, req *ModifyIndexRequest) error {
	return c.post(ctx, resourceIndex, actionModify, req, nil)
}

// DropIndex drops an index.
func (c *Client) DropIndex(ctx context.Context, database, table, indexName string) error {
	return c.drop(ctx, resourceIndex, map[string]string{
		"database":  database,
		"table":     table,
		"indexName": indexName,
	})
}

// RebuildIndex starts rebuilding a vector index. Use WaitForIndexState to
// wait for IndexStateNormal.
func (c *Client) RebuildIndex(ctx context.Context, database, table, indexName string) error {
	body := indexRequest{Database: database, Table: table, IndexName: indexName}
	return c.post(ctx, resourceIndex, actionRebuild, body, nil)
}
