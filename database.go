package mochow

import (
	"context"
	"slices"
)

type databaseRequest struct {
	Database string `json:"database"`
}

// ListDatabaseResponse lists database names.
type ListDatabaseResponse struct {
	BaseResponse
	Databases []string `json:"databases"`
}

// CreateDatabase creates a database.
func (c *Client) CreateDatabase(ctx context.Context, database string) error {
	return c.post(ctx, resourceDatabase, actionCreate, databaseRequest{Database: database}, nil)
}

// DropDatabase drops an empty database.
func (c *Client) DropDatabase(ctx context.Context, database string) error {
	return c.drop(ctx, resourceDatabase, map[string]string{"database": database})
}

// ListDatabase returns every database visible to the account.
func (c *Client) ListDatabase(ctx context.Context) (*ListDatabaseResponse, error) {
	resp := &ListDatabaseResponse{}
	if err := c.post(ctx, resourceDatabase, actionList, nil, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// HasDatabase reports whether database exists by listing all databases.
func (c *Client) HasDatabase(ctx context.Context, database string) (bool, error) {
	resp, err := c.ListDatabase(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(resp.Databases, database), nil
}
