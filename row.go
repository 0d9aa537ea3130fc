package mochow

import (
	"context"
	"errors"
)

// InsertRequest inserts rows. Existing primary keys fail with
// ErrPrimaryKeyDuplicated.
type InsertRequest struct {
	Database string `json:"database"`
	Table    string `json:"table"`
	Rows     []Row  `json:"rows"`
}

// UpsertRequest inserts rows, replacing rows with the same primary key.
type UpsertRequest = InsertRequest

// InsertResponse reports how many rows were written.
type InsertResponse struct {
	BaseResponse
	AffectedCount int64 `json:"affectedCount"`
}

// UpsertResponse reports how many rows were written.
type UpsertResponse = InsertResponse

// DeleteRequest deletes rows by primary key or filter.
type DeleteRequest struct {
	Database     string        `json:"database"`
	Table        string        `json:"table"`
	PrimaryKey   GeneralParams `json:"primaryKey,omitempty"`
	PartitionKey GeneralParams `json:"partitionKey,omitempty"`
	Filter       string        `json:"filter,omitempty"`
}

// QueryRequest fetches one row by primary key.
type QueryRequest struct {
	Database        string          `json:"database"`
	Table           string          `json:"table"`
	PrimaryKey      GeneralParams   `json:"primaryKey,omitempty"`
	PartitionKey    GeneralParams   `json:"partitionKey,omitempty"`
	Projections     []string        `json:"projections,omitempty"`
	RetrieveVector  bool            `json:"retrieveVector"`
	ReadConsistency ReadConsistency `json:"readConsistency"`
}

// QueryResponse holds the queried row.
type QueryResponse struct {
	BaseResponse
	Row Row `json:"row"`
}

// SearchRequest runs an approximate nearest neighbour search.
type SearchRequest struct {
	Database        string           `json:"database"`
	Table           string           `json:"table"`
	ANNS            *ANNSearchParams `json:"anns"`
	PartitionKey    GeneralParams    `json:"partitionKey,omitempty"`
	RetrieveVector  bool             `json:"retrieveVector"`
	Projections     []string         `json:"projections,omitempty"`
	ReadConsistency ReadConsistency  `json:"readConsistency,omitempty"`
}

// RowResult is one search hit.
type RowResult struct {
	Row      Row     `json:"row"`
	Distance float64 `json:"distance"`
	Score    float64 `json:"score"`
}

// SearchResponse holds the hits of a search.
type SearchResponse struct {
	BaseResponse
	SearchVectorFloats []float32   `json:"searchVectorFloats,omitempty"`
	Rows               []RowResult `json:"rows"`
}

// BatchSearchRequest searches several vectors in one call.
type BatchSearchRequest struct {
	Database        string                `json:"database"`
	Table           string                `json:"table"`
	ANNS            *BatchANNSearchParams `json:"anns"`
	PartitionKey    GeneralParams         `json:"partitionKey,omitempty"`
	RetrieveVector  bool                  `json:"retrieveVector"`
	Projections     []string              `json:"projections,omitempty"`
	ReadConsistency ReadConsistency       `json:"readConsistency,omitempty"`
}

// BatchSearchResult holds the hits for one query vector.
type BatchSearchResult struct {
	SearchVectorFloats []float32   `json:"searchVectorFloats,omitempty"`
	Rows               []RowResult `json:"rows"`
}

// BatchSearchResponse holds one result per query vector, in order.
type BatchSearchResponse struct {
	BaseResponse
	Results []BatchSearchResult `json:"results"`
}

// UpdateRequest updates fields of one row.
type UpdateRequest struct {
	Database     string        `json:"database"`
	Table        string        `json:"table"`
	PrimaryKey   GeneralParams `json:"primaryKey,omitempty"`
	PartitionKey GeneralParams `json:"partitionKey,omitempty"`
	Update       GeneralParams `json:"update,omitempty"`
}

// SelectRequest reads a page of rows matching a filter. Set Marker to the
// previous response's NextMarker to read the next page.
type SelectRequest struct {
	Database        string          `json:"database"`
	Table           string          `json:"table"`
	Filter          string          `json:"filter,omitempty"`
	Marker          GeneralParams   `json:"marker,omitempty"`
	Limit           int             `json:"limit"`
	Projections     []string        `json:"projections,omitempty"`
	ReadConsistency ReadConsistency `json:"readConsistency,omitempty"`
}

// SelectResponse holds one page of rows.
type SelectResponse struct {
	BaseResponse
	IsTruncated bool          `json:"isTruncated"`
	NextMarker  GeneralParams `json:"nextMarker,omitempty"`
	Rows        []Row         `json:"rows"`
}

// ErrStopSelect can be returned from a SelectAll callback to stop paging
// without an error.
var ErrStopSelect = errors.New("stop select")

// Insert inserts rows.
func (c *Client) Insert(ctx context.Context, req *InsertRequest) (*InsertResponse, error) {
	resp := &InsertResponse{}
	if err := c.post(ctx, resourceRow, actionInsert, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Upsert inserts or replaces rows.
func (c *Client) Upsert(ctx context.Context, req *UpsertRequest) (*UpsertResponse, error) {
	resp := &UpsertResponse{}
	if err := c.post(ctx, resourceRow, actionUpsert, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Delete deletes rows.
func (c *Client) Delete(ctx context.Context, req *DeleteRequest) error {
	return c.post(ctx, resourceRow, actionDelete, req, nil)
}

// Query fetches a row by primary key. An empty ReadConsistency is sent as
// ReadConsistencyEventual.
func (c *Client) Query(ctx context.Context, req *QueryRequest) (*QueryResponse, error) {
	body := *req
	if body.ReadConsistency == "" {
		body.ReadConsistency = ReadConsistencyEventual
	}
	resp := &QueryResponse{}
	if err := c.post(ctx, resourceRow, actionQuery, &body, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Search runs a vector search.
func (c *Client) Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error) {
	resp := &SearchResponse{}
	if err := c.post(ctx, resourceRow, actionSearch, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// BatchSearch runs several vector searches in one request. An empty
// ReadConsistency is sent as EVENTUAL.
func (c *Client) BatchSearch(ctx context.Context, req *BatchSearchRequest) (*BatchSearchResponse, error) {
	body := *req
	if body.ReadConsistency == "" {
		body.ReadConsistency = ReadConsistencyEventual
	}
	resp := &BatchSearchResponse{}
	if err := c.post(ctx, resourceRow, actionBatchSearch, &body, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Update updates one row.
func (c *Client) Update(ctx context.Context, req *UpdateRequest) error {
	return c.post(ctx, resourceRow, actionUpdate, req, nil)
}

// Select reads one page of rows.
func (c *Client) Select(ctx context.Context, req *SelectRequest) (*SelectResponse, error) {
	resp := &SelectResponse{}
	if err := c.post(ctx, resourceRow, actionSelect, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// SelectAll pages through every row matching req, calling fn once per
// page. Paging starts at req.Marker and follows NextMarker until the server
// reports the result is not truncated. req is not modified. If fn returns
// ErrStopSelect, SelectAll stops and returns nil; any other error is
// returned as is.
func (c *Client) SelectAll(ctx context.Context, req *SelectRequest, fn func(*SelectResponse) error) error {
	page := *req
	for {
		resp, err := c.Select(ctx, &page)
		if err != nil {
			return err
		}
		if err := fn(resp); err != nil {
			if errors.Is(err, ErrStopSelect) {
				return nil
			}
			return err
		}
		if !resp.IsTruncated {
			return nil
		}
		if len(resp.NextMarker) == 0 {
			return &ClientError{Message: "select response is truncated but has no next marker"}
		}
		page.Marker = resp.NextMarker
	}
}
