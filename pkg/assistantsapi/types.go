package assistantsapi

// AssistantFile is a file attached to an assistant
type AssistantFile struct {
	ID          string `json:"id"`
	Object      string `json:"object,omitempty"`
	CreatedAt   int64  `json:"created_at,omitempty"`
	AssistantID string `json:"assistant_id,omitempty"`
}

// VectorStore is a retrieval store attached to an assistant
type VectorStore struct {
	ID         string            `json:"id"`
	Object     string            `json:"object,omitempty"`
	Name       string            `json:"name"`
	Status     string            `json:"status,omitempty"`
	CreatedAt  int64             `json:"created_at,omitempty"`
	UsageBytes int64             `json:"usage_bytes,omitempty"`
	FileCounts *FileCounts       `json:"file_counts,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// IsPlaceholder returns true for the cache entry of an assistant without
// a vector store
func (v *VectorStore) IsPlaceholder() bool {
	return v == nil || v.ID == ""
}

// FileCounts provides the vector store files by status
type FileCounts struct {
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
	Failed     int64 `json:"failed"`
	Cancelled  int64 `json:"cancelled"`
	Total      int64 `json:"total"`
}

// VectorStoreFile is a file of a vector store
type VectorStoreFile struct {
	ID            string `json:"id"`
	Object        string `json:"object,omitempty"`
	CreatedAt     int64  `json:"created_at,omitempty"`
	VectorStoreID string `json:"vector_store_id,omitempty"`
	Status        string `json:"status,omitempty"`
	UsageBytes    int64  `json:"usage_bytes,omitempty"`
}

// Deleted is the response of a delete call
type Deleted struct {
	ID      string `json:"id"`
	Object  string `json:"object,omitempty"`
	Deleted bool   `json:"deleted"`
}
