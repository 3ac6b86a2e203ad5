package model

// EvidenceItem is one indexed unit of trusted source text with its
// embedding. Items are immutable once indexed; the index owns them until
// it is cleared or rebuilt.
type EvidenceItem struct {
	ID        string    `json:"id"`               // Stable identifier, unique within one corpus
	Text      string    `json:"text"`             // Raw chunk text
	Embedding []float32 `json:"embedding"`        // Fixed-length vector, length = index dimension
	Source    SourceRef `json:"source,omitempty"` // Where the chunk came from
}

// SourceRef records the origin of an evidence item
type SourceRef struct {
	Origin string `json:"origin,omitempty"` // File path, URL, or logical document name
	Chunk  int    `json:"chunk,omitempty"`  // Chunk offset within the origin (0-based)
}

// Hit pairs an evidence item with its similarity to a query
type Hit struct {
	Item       EvidenceItem `json:"item"`
	Similarity float64      `json:"similarity"` // Cosine similarity in [-1,1]
}

// RetrievalResult holds the evidence retrieved for one claim. Ephemeral:
// created per verification call, never persisted.
type RetrievalResult struct {
	Claim string `json:"claim"` // Claim text the retrieval was run for
	Hits  []Hit  `json:"hits"`  // Descending by similarity, length <= K
}

// EvidenceScore records how one evidence item scored against a claim
type EvidenceScore struct {
	ID       string  `json:"id"`       // Evidence item ID
	Semantic float64 `json:"semantic"` // Cosine similarity from retrieval
	Lexical  float64 `json:"lexical"`  // Token overlap between claim and evidence text
	Combined float64 `json:"combined"` // alpha*semantic + (1-alpha)*lexical
}
