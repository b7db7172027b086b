package domain

import "time"

// Chunk is the unit indexed for similarity search. A chunk is immutable once
// it has been assigned an ordinal in the vector index.
type Chunk struct {
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
}

// ChunkMetadata carries provenance for an indexed chunk. OwnerID scopes
// visibility; the index itself holds all owners' chunks together.
type ChunkMetadata struct {
	Source    string    `json:"source"`
	OwnerID   string    `json:"owner_id"`
	URL       string    `json:"url,omitempty"`
	Query     string    `json:"query,omitempty"`
	AddedVia  string    `json:"added_via,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewChunk creates a Chunk with the given content and metadata.
func NewChunk(content string, meta ChunkMetadata) Chunk {
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now().UTC()
	}
	return Chunk{Content: content, Metadata: meta}
}

// ValidateChunk validates a Chunk instance.
func ValidateChunk(c *Chunk) error {
	if c == nil {
		return NewDomainError(ErrCodeValidation, "chunk cannot be nil")
	}
	if c.Content == "" {
		return NewDomainError(ErrCodeValidation, "chunk content is required")
	}
	if c.Metadata.Source == "" {
		return NewDomainError(ErrCodeValidation, "chunk source is required")
	}
	return nil
}
