package mochow

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FieldType is the data type of a table column.
type FieldType string

// Field types.
const (
	FieldTypeBool        FieldType = "BOOL"
	FieldTypeInt8        FieldType = "INT8"
	FieldTypeUint8       FieldType = "UINT8"
	FieldTypeInt16       FieldType = "INT16"
	FieldTypeUint16      FieldType = "UINT16"
	FieldTypeInt32       FieldType = "INT32"
	FieldTypeUint32      FieldType = "UINT32"
	FieldTypeInt64       FieldType = "INT64"
	FieldTypeUint64      FieldType = "UINT64"
	FieldTypeFloat       FieldType = "FLOAT"
	FieldTypeDouble      FieldType = "DOUBLE"
	FieldTypeDate        FieldType = "DATE"
	FieldTypeDatetime    FieldType = "DATETIME"
	FieldTypeTimestamp   FieldType = "TIMESTAMP"
	FieldTypeString      FieldType = "STRING"
	FieldTypeBinary      FieldType = "BINARY"
	FieldTypeUUID        FieldType = "UUID"
	FieldTypeText        FieldType = "TEXT"
	FieldTypeTextGBK     FieldType = "TEXT_GBK"
	FieldTypeTextGB18030 FieldType = "TEXT_GB18030"
	FieldTypeFloatVector FieldType = "FLOAT_VECTOR"
)

// IndexType is the kind of an index.
type IndexType string

// Index types.
const (
	IndexTypeHNSW      IndexType = "HNSW"
	IndexTypeHNSWPQ    IndexType = "HNSWPQ"
	IndexTypePUCK      IndexType = "PUCK"
	IndexTypeFLAT      IndexType = "FLAT"
	IndexTypeSecondary IndexType = "SECONDARY"
)

// IsVector reports whether t indexes a vector field.
func (t IndexType) IsVector() bool {
	switch t {
	case IndexTypeHNSW, IndexTypeHNSWPQ, IndexTypePUCK, IndexTypeFLAT:
		return true
	}
	return false
}

// MetricType is the distance function of a vector index.
type MetricType string

// Metric types.
const (
	MetricTypeL2     MetricType = "L2"
	MetricTypeIP     MetricType = "IP"
	MetricTypeCosine MetricType = "COSINE"
)

// TableState is the lifecycle state of a table.
type TableState string

// Table states.
const (
	TableStateCreating TableState = "CREATING"
	TableStateNormal   TableState = "NORMAL"
	TableStateDeleting TableState = "DELETING"
)

// IndexState is the build state of an index.
type IndexState string

// Index states.
const (
	IndexStateBuilding IndexState = "BUILDING"
	IndexStateNormal   IndexState = "NORMAL"
	IndexStateInvalid  IndexState = "INVALID"
)

// PartitionType is the row partitioning strategy.
type PartitionType string

// PartitionTypeHash distributes rows by hash of the partition key.
const PartitionTypeHash PartitionType = "HASH"

// ReadConsistency is forwarded to the server on reads.
type ReadConsistency string

// Read consistency levels.
const (
	ReadConsistencyEventual ReadConsistency = "EVENTUAL"
	ReadConsistencyStrong   ReadConsistency = "STRONG"
)

// AutoBuildPolicyType selects when an index is rebuilt automatically.
type AutoBuildPolicyType string

// Auto build policy types.
const (
	AutoBuildTiming            AutoBuildPolicyType = "timing"
	AutoBuildPeriodical        AutoBuildPolicyType = "periodical"
	AutoBuildRowCountIncrement AutoBuildPolicyType = "row_count_increment"
)

// Row is a table row keyed by field name.
type Row map[string]any

// GeneralParams is a free-form set of named values, used for primary keys,
// partition keys, select markers and update payloads.
type GeneralParams map[string]any

// Field describes one column of a table schema.
type Field struct {
	FieldName     string    `json:"fieldName"`
	FieldType     FieldType `json:"fieldType"`
	PrimaryKey    bool      `json:"primaryKey,omitempty"`
	PartitionKey  bool      `json:"partitionKey,omitempty"`
	AutoIncrement bool      `json:"autoIncrement,omitempty"`
	NotNull       bool      `json:"notNull,omitempty"`
	Dimension     int       `json:"dimension,omitempty"`
}

// IndexParams holds index-type specific build parameters.
type IndexParams interface {
	indexParams()
}

// HNSWParams are build parameters for HNSW and HNSWPQ indexes.
type HNSWParams struct {
	M              int `json:"M"`
	EfConstruction int `json:"efConstruction"`
}

func (*HNSWParams) indexParams() {}

// NewHNSWParams returns HNSW build parameters.
func NewHNSWParams(m, efConstruction int) *HNSWParams {
	return &HNSWParams{M: m, EfConstruction: efConstruction}
}

// PUCKParams are build parameters for PUCK indexes.
type PUCKParams struct {
	CoarseClusterCount int `json:"coarseClusterCount"`
	FineClusterCount   int `json:"fineClusterCount"`
}

func (*PUCKParams) indexParams() {}

// NewPUCKParams returns PUCK build parameters.
func NewPUCKParams(coarseClusterCount, fineClusterCount int) *PUCKParams {
	return &PUCKParams{CoarseClusterCount: coarseClusterCount, FineClusterCount: fineClusterCount}
}

// RawIndexParams carries parameters of index types this package does not
// model.
type RawIndexParams map[string]any

func (RawIndexParams) indexParams() {}

// AutoBuildPolicy controls automatic index rebuilds.
type AutoBuildPolicy struct {
	PolicyType             AutoBuildPolicyType `json:"policyType"`
	Timing                 string              `json:"timing,omitempty"`
	PeriodInSecond         int64               `json:"periodInSecond,omitempty"`
	RowCountIncrement      int64               `json:"rowCountIncrement,omitempty"`
	RowCountIncrementRatio float64             `json:"rowCountIncrementRatio,omitempty"`
}

// IndexField describes a vector or secondary index.
type IndexField struct {
	IndexName       string           `json:"indexName"`
	Field           string           `json:"field,omitempty"`
	IndexType       IndexType        `json:"indexType,omitempty"`
	State           IndexState       `json:"state,omitempty"`
	MetricType      MetricType       `json:"metricType,omitempty"`
	Params          IndexParams      `json:"params,omitempty"`
	AutoBuild       bool             `json:"autoBuild"`
	AutoBuildPolicy *AutoBuildPolicy `json:"autoBuildPolicy,omitempty"`
}

// NewVectorIndex returns a vector index definition.
func NewVectorIndex(name, field string, indexType IndexType, metric MetricType, params IndexParams) IndexField {
	return IndexField{
		IndexName:  name,
		Field:      field,
		IndexType:  indexType,
		MetricType: metric,
		Params:     params,
	}
}

// NewSecondaryIndex returns a secondary index on field.
func NewSecondaryIndex(name, field string) IndexField {
	return IndexField{IndexName: name, Field: field, IndexType: IndexTypeSecondary}
}

// IsVectorIndex reports whether the index is a vector index.
func (f IndexField) IsVectorIndex() bool {
	return f.IndexType.IsVector()
}

// UnmarshalJSON decodes params into the concrete type for the index type.
func (f *IndexField) UnmarshalJSON(data []byte) error {
	type plain IndexField
	var raw struct {
		plain
		Params json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = IndexField(raw.plain)
	f.Params = nil

	if len(raw.Params) == 0 || string(raw.Params) == "null" {
		return nil
	}

	var params IndexParams
	switch f.IndexType {
	case IndexTypeHNSW, IndexTypeHNSWPQ:
		params = &HNSWParams{}
	case IndexTypePUCK:
		params = &PUCKParams{}
	default:
		generic := RawIndexParams{}
		dec := json.NewDecoder(bytes.NewReader(raw.Params))
		dec.UseNumber()
		if err := dec.Decode(&generic); err != nil {
			return fmt.Errorf("decode %s index params: %w", f.IndexType, err)
		}
		f.Params = generic
		return nil
	}
	if err := json.Unmarshal(raw.Params, params); err != nil {
		return fmt.Errorf("decode %s index params: %w", f.IndexType, err)
	}
	f.Params = params
	return nil
}

// Schema is the column and index layout of a table.
type Schema struct {
	Fields  []Field      `json:"fields,omitempty"`
	Indexes []IndexField `json:"indexes,omitempty"`
}

// PartitionParams controls how rows are partitioned.
type PartitionParams struct {
	PartitionType PartitionType `json:"partitionType"`
	PartitionNum  int           `json:"partitionNum"`
}

// Table is a table description returned by the server.
type Table struct {
	Database           string           `json:"database"`
	Table              string           `json:"table"`
	CreateTime         string           `json:"createTime,omitempty"`
	Description        string           `json:"description,omitempty"`
	Replication        int              `json:"replication,omitempty"`
	Partition          *PartitionParams `json:"partition,omitempty"`
	EnableDynamicField *bool            `json:"enableDynamicField,omitempty"`
	State              TableState       `json:"state,omitempty"`
	Aliases            []string         `json:"aliases,omitempty"`
	Schema             *Schema          `json:"schema,omitempty"`
}

// Bool returns a pointer to v, for optional boolean fields.
func Bool(v bool) *bool {
	return &v
}
