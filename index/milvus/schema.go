package milvus

import (
	"strconv"
	"strings"
)

// Field names in the chunk collection. These are part of the stored
// schema; renaming them requires a new collection.
const (
	fieldID          = "id"
	fieldText        = "text"
	fieldFilename    = "file_name"
	fieldDocType     = "doc_type"
	fieldPageNumber  = "page_number"
	fieldChunkIndex  = "chunk_index"
	fieldTotalChunks = "total_chunks"
	fieldDense       = "dense"
	fieldSparse      = "sparse"
)

type hasCollectionRequest struct {
	CollectionName string `json:"collectionName"`
}

type hasCollectionResponse struct {
	Has bool `json:"has"`
}

type createCollectionRequest struct {
	CollectionName string       `json:"collectionName"`
	Schema         schema       `json:"schema"`
	IndexParams    []indexParam `json:"indexParams"`
}

type schema struct {
	AutoID             bool    `json:"autoId"`
	EnableDynamicField bool    `json:"enableDynamicField"`
	Fields             []field `json:"fields"`
}

type field struct {
	FieldName         string            `json:"fieldName"`
	DataType          string            `json:"dataType"`
	IsPrimary         bool              `json:"isPrimary,omitempty"`
	ElementTypeParams map[string]string `json:"elementTypeParams,omitempty"`
}

type indexParam struct {
	FieldName  string            `json:"fieldName"`
	IndexName  string            `json:"indexName"`
	MetricType string            `json:"metricType"`
	Params     map[string]string `json:"params,omitempty"`
}

type insertRequest struct {
	CollectionName string           `json:"collectionName"`
	Data           []map[string]any `json:"data"`
}

type searchRequest struct {
	CollectionName string      `json:"collectionName"`
	Search         []subSearch `json:"search"`
	Rerank         rerank      `json:"rerank"`
	Limit          int         `json:"limit"`
	OutputFields   []string    `json:"outputFields"`
}

type subSearch struct {
	Data      []any  `json:"data"`
	AnnsField string `json:"annsField"`
	Limit     int    `json:"limit"`
	Filter    string `json:"filter,omitempty"`
}

type rerank struct {
	Strategy string         `json:"strategy"`
	Params   map[string]any `json:"params"`
}

type searchRow struct {
	Distance   float64 `json:"distance"`
	Text       string  `json:"text"`
	Filename   string  `json:"file_name"`
	DocType    string  `json:"doc_type"`
	PageNumber int     `json:"page_number"`
}

type queryRequest struct {
	CollectionName string   `json:"collectionName"`
	Filter         string   `json:"filter"`
	OutputFields   []string `json:"outputFields"`
}

type countRow struct {
	Count int64 `json:"count(*)"`
}

// chunkSchema describes the audit chunk collection: scalar metadata plus
// one dense and one sparse vector field.
func chunkSchema(denseDim int) schema {
	dim := map[string]string{"dim": strconv.Itoa(denseDim)}
	return schema{
		AutoID:             false,
		EnableDynamicField: false,
		Fields: []field{
			{FieldName: fieldID, DataType: "Int64", IsPrimary: true},
			{FieldName: fieldText, DataType: "VarChar", ElementTypeParams: map[string]string{"max_length": "65535"}},
			{FieldName: fieldFilename, DataType: "VarChar", ElementTypeParams: map[string]string{"max_length": "512"}},
			{FieldName: fieldDocType, DataType: "VarChar", ElementTypeParams: map[string]string{"max_length": "64"}},
			{FieldName: fieldPageNumber, DataType: "Int64"},
			{FieldName: fieldChunkIndex, DataType: "Int64"},
			{FieldName: fieldTotalChunks, DataType: "Int64"},
			{FieldName: fieldDense, DataType: "FloatVector", ElementTypeParams: dim},
			{FieldName: fieldSparse, DataType: "SparseFloatVector"},
		},
	}
}

// chunkIndexParams requests a cosine dense index and an inverted sparse
// index, which also loads the collection after creation.
func chunkIndexParams() []indexParam {
	return []indexParam{
		{FieldName: fieldDense, IndexName: "dense_idx", MetricType: "COSINE"},
		{FieldName: fieldSparse, IndexName: "sparse_idx", MetricType: "IP",
			Params: map[string]string{"index_type": "SPARSE_INVERTED_INDEX"}},
	}
}

// documentFilter builds the boolean expression restricting operations to
// one document.
func documentFilter(filename, docType string) string {
	return `file_name == "` + escapeString(filename) + `" && doc_type == "` + escapeString(docType) + `"`
}

// escapeString escapes backslashes and double quotes for use inside a
// Milvus filter string literal.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
