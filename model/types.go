package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/vecsearch/metadata"
)

// NewID returns a new globally unique identifier.
func NewID() string {
	return uuid.NewString()
}

// VectorRecord is the unit of indexing: a stable identifier, a fixed-length
// embedding, and optional filterable attributes.
type VectorRecord struct {
	ID         string            `json:"id"`
	Vector     []float32         `json:"vector"`
	Attributes metadata.Document `json:"attributes,omitempty"`
}

// NewVectorRecord creates a record with a fresh UUID.
func NewVectorRecord(vector []float32, attrs metadata.Document) VectorRecord {
	return VectorRecord{
		ID:         NewID(),
		Vector:     vector,
		Attributes: attrs,
	}
}

// Clone creates a deep copy of the record. Stores and index snapshots hand
// out clones so callers cannot mutate shared state.
func (r VectorRecord) Clone() VectorRecord {
	out := r
	if r.Vector != nil {
		out.Vector = make([]float32, len(r.Vector))
		copy(out.Vector, r.Vector)
	}
	out.Attributes = r.Attributes.Clone()
	return out
}

// Library groups vector records under one searchable collection. Libraries
// are owned by the record source; the engine only references them by ID.
type Library struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Attributes metadata.Document `json:"attributes,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// NewLibrary creates a library with a fresh UUID and creation timestamps.
func NewLibrary(name string, attrs metadata.Document) Library {
	now := time.Now().UTC()
	return Library{
		ID:         NewID(),
		Name:       name,
		Attributes: attrs,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
