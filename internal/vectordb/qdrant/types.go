package qdrant

import "sort"

// SparseVector is the wire form of a sparse term-weight vector. Indices are
// sorted ascending so the same weight map always serializes identically.
type SparseVector struct {
	Indices []uint32  `json:"indices"`
	Values  []float32 `json:"values"`
}

// NewSparseVector converts a term-weight map to wire form.
func NewSparseVector(weights map[uint32]float32) *SparseVector {
	indices := make([]uint32, 0, len(weights))
	for id := range weights {
		indices = append(indices, id)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	values := make([]float32, len(indices))
	for i, id := range indices {
		values[i] = weights[id]
	}

	return &SparseVector{Indices: indices, Values: values}
}

// PointVectors holds the named vectors of a point. Field names must match
// the collection's vector configuration.
type PointVectors struct {
	Dense  []float32     `json:"dense"`
	Sparse *SparseVector `json:"sparse,omitempty"`
}

// Point is a stored vector point.
type Point struct {
	ID      string                 `json:"id"`
	Vector  PointVectors           `json:"vector"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// ScoredPoint is a hybrid query result with its fused score.
type ScoredPoint struct {
	ID      string                 `json:"id"`
	Version int                    `json:"version"`
	Score   float32                `json:"score"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}
