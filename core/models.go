package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for indexed chunks.
// It is generated using content-based hashing so that re-indexing the same
// passage produces the same ID.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// CriterionStatus is the verdict assigned to a criterion after evaluation.
type CriterionStatus string

const (
	// StatusPresent means the document satisfies the criterion.
	StatusPresent CriterionStatus = "PRESENT"
	// StatusAbsent means the document does not satisfy the criterion.
	StatusAbsent CriterionStatus = "ABSENT"
	// StatusError means the evaluation itself failed (malformed model output).
	StatusError CriterionStatus = "ERROR"
)

// SparseVector is a lexical embedding: term id to weight.
// It must never be submitted to an index empty; callers substitute a
// minimal placeholder weight when encoding yields no terms.
type SparseVector map[uint32]float32

// Criterion is a single compliance question with its acceptance threshold.
// Criteria are resolved once at configuration load; downstream code never
// re-interprets raw criterion specs.
type Criterion struct {
	Query         string
	MinConfidence float64
}

// CriterionResult is the verdict for one criterion. It is immutable once
// returned by an agent.
type CriterionResult struct {
	Criterion  string          `json:"criterion"`
	Status     CriterionStatus `json:"status"`
	Evidence   string          `json:"evidence"`
	Confidence float64         `json:"confidence"`
	Pages      []int           `json:"pages"`
}

// PossibleAnswer is a model-generated best-guess answer for a criterion,
// produced from the raw document before retrieval. It biases retrieval and
// provides an advisory cross-check during evaluation; it is never mutated
// after creation.
type PossibleAnswer struct {
	Criterion string
	Found     bool
	Answer    string
	Pages     []int
}

// Page is one page of a raw document.
type Page struct {
	Number int
	Text   string
}

// RawDocument is the full unchunked text of a document, page by page.
type RawDocument struct {
	Filename   string
	Pages      []Page
	TotalPages int
	TotalChars int
}

// Chunk is one indexed passage of a document, carrying both its dense and
// sparse embeddings.
type Chunk struct {
	Id          ID
	Text        string
	Filename    string
	DocType     string
	PageNumber  int
	ChunkIndex  int    // Position of this chunk within its document
	TotalChunks int    // Total chunks produced for the document
	Dense       []float32
	Sparse      SparseVector
}

// DocumentManifest records what one ingestion run wrote for a single
// source document. Embedded backends use it to answer chunk counts without
// scanning the whole keyspace.
type DocumentManifest struct {
	Filename   string
	DocType    string
	ChunkCount int
	IndexedAt  time.Time
}

// AuditReport aggregates the results of one audit run over a document.
type AuditReport struct {
	RunId           string            `json:"run_id"`
	Document        string            `json:"document"`
	TotalCriteria   int               `json:"total_criteria"`
	CriteriaPresent int               `json:"criteria_present"`
	CriteriaAbsent  int               `json:"criteria_absent"`
	ComplianceRate  float64           `json:"compliance_rate"`
	Results         []CriterionResult `json:"results"`
}
