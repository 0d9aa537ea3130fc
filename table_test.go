package mochow

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bookSchema() *Schema {
	return &Schema{
		Fields: []Field{
			{FieldName: "id", FieldType: FieldTypeString, PrimaryKey: true, PartitionKey: true, NotNull: true},
			{FieldName: "bookName", FieldType: FieldTypeString, NotNull: true},
			{FieldName: "page", FieldType: FieldTypeUint32},
			{FieldName: "vector", FieldType: FieldTypeFloatVector, NotNull: true, Dimension: 4},
		},
		Indexes: []IndexField{
			NewSecondaryIndex("book_name_idx", "bookName"),
			NewVectorIndex("vector_idx", "vector", IndexTypeHNSW, MetricTypeL2, NewHNSWParams(32, 200)),
		},
	}
}

func TestCreateTable(t *testing.T) {
	s := newMockServer(t, respondWith(map[string]any{}))
	c := newTestClient(t, s)

	err := c.CreateTable(context.Background(), &CreateTableRequest{
		Database:    "book",
		Table:       "book_segments",
		Description: "basic test",
		Replication: 3,
		Partition:   &PartitionParams{PartitionType: PartitionTypeHash, PartitionNum: 3},
		Schema:      bookSchema(),
	})
	require.NoError(t, err)

	req := s.Last(t)
	assert.Equal(t, "/v1/table", req.Path)
	assert.Contains(t, req.Query, "create")
	assert.Equal(t, "book_segments", req.Body["table"])
	assert.Equal(t, 3.0, req.Body["replication"])
	assert.Equal(t, map[string]any{"partitionType": "HASH", "partitionNum": 3.0}, req.Body["partition"])
	assert.NotContains(t, req.Body, "enableDynamicField")

	schema := req.Body["schema"].(map[string]any)
	fields := schema["fields"].([]any)
	require.Len(t, fields, 4)
	assert.Equal(t, map[string]any{
		"fieldName":    "id",
		"fieldType":    "STRING",
		"primaryKey":   true,
		"partitionKey": true,
		"notNull":      true,
	}, fields[0])
	assert.Equal(t, map[string]any{"fieldName": "page", "fieldType": "UINT32"}, fields[2])

	indexes := schema["indexes"].([]any)
	require.Len(t, indexes, 2)
	assert.Equal(t, map[string]any{
		"indexName": "book_name_idx",
		"field":     "bookName",
		"indexType": "SECONDARY",
		"autoBuild": false,
	}, indexes[0])
	assert.Equal(t, map[string]any{
		"indexName":  "vector_idx",
		"field":      "vector",
		"indexType":  "HNSW",
		"metricType": "L2",
		"params":     map[string]any{"M": 32.0, "efConstruction": 200.0},
		"autoBuild":  false,
	}, indexes[1])
}

func TestCreateTable_AlreadyExists(t *testing.T) {
	s := newMockServer(t, respondError(http.StatusBadRequest, 70, "Table already exists"))
	c := newTestClient(t, s)

	err := c.CreateTable(context.Background(), &CreateTableRequest{Database: "book", Table: "book_segments"})
	assert.ErrorIs(t, err, ErrTableAlreadyExists)
}

func TestHasTable(t *testing.T) {
	s := newMockServer(t, func(w http.ResponseWriter, req capturedRequest) {
		switch req.Path {
		case "/v1/database":
			writeJSON(w, http.StatusOK, map[string]any{"databases": []string{"book"}})
		case "/v1/table":
			writeJSON(w, http.StatusOK, map[string]any{"tables": []string{"book_segments"}})
		}
	})
	c := newTestClient(t, s)

	ok, err := c.HasTable(context.Background(), "book", "book_segments")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.HasTable(context.Background(), "book", "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	last := s.Last(t)
	assert.Equal(t, "/v1/table", last.Path)
	assert.Contains(t, last.Query, "list")
	assert.Equal(t, map[string]any{"database": "book"}, last.Body)
}

func TestHasTable_MissingDatabase(t *testing.T) {
	s := newMockServer(t, respondWith(map[string]any{"databases": []string{"movie"}}))
	c := newTestClient(t, s)

	ok, err := c.HasTable(context.Background(), "book", "book_segments")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, s.Requests(), 1, "tables must not be listed for a missing database")
}

func TestDropTable(t *testing.T) {
	s := newMockServer(t, respondWith(map[string]any{}))
	c := newTestClient(t, s)

	require.NoError(t, c.DropTable(context.Background(), "book", "book_segments"))

	req := s.Last(t)
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "/v1/table", req.Path)
	assert.Equal(t, "book", req.Query.Get("database"))
	assert.Equal(t, "book_segments", req.Query.Get("table"))
}

func TestDescribeTable(t *testing.T) {
	s := newMockServer(t, respondWith(map[string]any{
		"table": map[string]any{
			"database":    "book",
			"table":       "book_segments",
			"createTime":  "2024-02-26 08:30:10",
			"description": "basic test",
			"replication": 3,
			"partition":   map[string]any{"partitionType": "HASH", "partitionNum": 3},
			"state":       "NORMAL",
			"aliases":     []string{"book_segments_alias"},
			"schema": map[string]any{
				"fields": []any{
					map[string]any{"fieldName": "id", "fieldType": "STRING", "primaryKey": true},
				},
				"indexes": []any{
					map[string]any{
						"indexName":  "vector_idx",
						"field":      "vector",
						"indexType":  "HNSW",
						"metricType": "L2",
						"params":     map[string]any{"M": 32, "efConstruction": 200},
						"state":      "BUILDING",
						"autoBuild":  true,
					},
				},
			},
		},
	}))
	c := newTestClient(t, s)

	resp, err := c.DescribeTable(context.Background(), "book", "book_segments")
	require.NoError(t, err)
	require.NotNil(t, resp.Table)

	tbl := resp.Table
	assert.Equal(t, TableStateNormal, tbl.State)
	assert.Equal(t, 3, tbl.Replication)
	assert.Equal(t, &PartitionParams{PartitionType: PartitionTypeHash, PartitionNum: 3}, tbl.Partition)
	assert.Equal(t, []string{"book_segments_alias"}, tbl.Aliases)
	require.NotNil(t, tbl.Schema)
	require.Len(t, tbl.Schema.Indexes, 1)

	idx := tbl.Schema.Indexes[0]
	assert.Equal(t, IndexStateBuilding, idx.State)
	assert.True(t, idx.AutoBuild)
	assert.Equal(t, &HNSWParams{M: 32, EfConstruction: 200}, idx.Params)

	req := s.Last(t)
	assert.Contains(t, req.Query, "desc")
	assert.Equal(t, map[string]any{"database": "book", "table": "book_segments"}, req.Body)
}

func TestDescribeTable_NotFound(t *testing.T) {
	s := newMockServer(t, respondError(http.StatusNotFound, 69, "Table not exist"))
	c := newTestClient(t, s)

	_, err := c.DescribeTable(context.Background(), "book", "missing")
	assert.ErrorIs(t, err, ErrTableNotFound)
	assert.Len(t, s.Requests(), 1)
}

func TestAddField(t *testing.T) {
	s := newMockServer(t, respondWith(map[string]any{}))
	c := newTestClient(t, s)

	err := c.AddField(context.Background(), &AddFieldRequest{
		Database: "book",
		Table:    "book_segments",
		Schema: &Schema{Fields: []Field{
			{FieldName: "bookAlias", FieldType: FieldTypeString},
		}},
	})
	require.NoError(t, err)

	req := s.Last(t)
	assert.Contains(t, req.Query, "addField")
	assert.Equal(t, map[string]any{
		"fields": []any{map[string]any{"fieldName": "bookAlias", "fieldType": "STRING"}},
	}, req.Body["schema"])
}

func TestAliasTable(t *testing.T) {
	s := newMockServer(t, respondWith(map[string]any{}))
	c := newTestClient(t, s)
	ctx := context.Background()
	req := &AliasTableRequest{Database: "book", Table: "book_segments", Alias: "book_segments_alias"}

	require.NoError(t, c.AliasTable(ctx, req))
	require.NoError(t, c.UnaliasTable(ctx, req))

	reqs := s.Requests()
	require.Len(t, reqs, 2)
	assert.Contains(t, reqs[0].Query, "alias")
	assert.Contains(t, reqs[1].Query, "unalias")
	for _, r := range reqs {
		assert.Equal(t, map[string]any{
			"database": "book",
			"table":    "book_segments",
			"alias":    "book_segments_alias",
		}, r.Body)
	}
}

func TestShowTableStats(t *testing.T) {
	s := newMockServer(t, respondWith(map[string]any{
		"rowCount":         5,
		"memorySizeInByte": 1024,
		"diskSizeInByte":   4096,
	}))
	c := newTestClient(t, s)

	resp, err := c.ShowTableStats(context.Background(), "book", "book_segments")
	require.NoError(t, err)
	assert.Equal(t, int64(5), resp.RowCount)
	assert.Equal(t, int64(1024), resp.MemorySizeInByte)
	assert.Equal(t, int64(4096), resp.DiskSizeInByte)
	assert.Contains(t, s.Last(t).Query, "stats")
}
