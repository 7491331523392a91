package models

// Fragment is one window of text cut from an item's raw text, identified by
// its character offsets. Fragments carry no identity; the ingestion pipeline
// turns them into chunks by assigning ids.
type Fragment struct {
	Text        string `json:"text"`
	StartOffset int    `json:"start_offset"`
	EndOffset   int    `json:"end_offset"`
}

// Chunk is the unit of retrieval: a fragment of an item's raw text together
// with its owning item's identity. The embedding vector for a chunk lives in
// the vector index for the lifetime of the process and is never persisted.
type Chunk struct {
	ChunkID     string `json:"chunk_id"` // chunk_{uuid}, unique within the index
	ItemID      string `json:"item_id"`
	Text        string `json:"text"`
	StartOffset int    `json:"start_offset"`
	EndOffset   int    `json:"end_offset"`
}
