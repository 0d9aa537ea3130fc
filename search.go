package mochow

// DefaultFLATSearchLimit is the limit of FLATSearchParams built by
// NewFLATSearchParams.
const DefaultFLATSearchLimit = 50

// SearchParams are index-type specific search settings.
type SearchParams interface {
	searchParams()
}

// HNSWSearchParams tune a search against an HNSW index.
type HNSWSearchParams struct {
	Ef           int     `json:"ef"`
	Limit        int     `json:"limit,omitempty"`
	DistanceFar  float32 `json:"distanceFar,omitempty"`
	DistanceNear float32 `json:"distanceNear,omitempty"`
	Pruning      *bool   `json:"pruning,omitempty"`
}

func (*HNSWSearchParams) searchParams() {}

// NewHNSWSearchParams returns HNSW search settings.
func NewHNSWSearchParams(ef, limit int) *HNSWSearchParams {
	return &HNSWSearchParams{Ef: ef, Limit: limit}
}

// PUCKSearchParams tune a search against a PUCK index.
type PUCKSearchParams struct {
	SearchCoarseCount int `json:"searchCoarseCount"`
	Limit             int `json:"limit,omitempty"`
}

func (*PUCKSearchParams) searchParams() {}

// NewPUCKSearchParams returns PUCK search settings.
func NewPUCKSearchParams(searchCoarseCount, limit int) *PUCKSearchParams {
	return &PUCKSearchParams{SearchCoarseCount: searchCoarseCount, Limit: limit}
}

// FLATSearchParams tune a brute force search. Zero distances are omitted.
type FLATSearchParams struct {
	Limit        int     `json:"limit"`
	DistanceNear float32 `json:"distanceNear,omitempty"`
	DistanceFar  float32 `json:"distanceFar,omitempty"`
}

func (*FLATSearchParams) searchParams() {}

// NewFLATSearchParams returns FLAT search settings with the default limit.
func NewFLATSearchParams() *FLATSearchParams {
	return &FLATSearchParams{Limit: DefaultFLATSearchLimit}
}

// ANNSearchParams describe a single-vector approximate nearest neighbour
// search.
type ANNSearchParams struct {
	VectorField  string       `json:"vectorField"`
	VectorFloats []float32    `json:"vectorFloats"`
	Params       SearchParams `json:"params,omitempty"`
	Filter       string       `json:"filter,omitempty"`
}

// BatchANNSearchParams describe a search for several vectors at once.
type BatchANNSearchParams struct {
	VectorField  string       `json:"vectorField"`
	VectorFloats [][]float32  `json:"vectorFloats"`
	Params       SearchParams `json:"params,omitempty"`
	Filter       string       `json:"filter,omitempty"`
}
