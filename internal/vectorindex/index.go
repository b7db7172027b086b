// Package vectorindex implements a durable in-memory similarity index.
// Vectors live in a flat matrix scanned with cosine similarity; every
// mutation snapshots the whole index to disk.
package vectorindex

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/orbia-ai/orbia/internal/domain"
)

const (
	indexKind      = "in_memory_cosine"
	embeddingModel = "text-embedding-ada-002"

	// placeholderContent seeds a fresh index so the matrix is never empty.
	placeholderContent = "Document initial de l'assistant IA."
	placeholderOwner   = "system"
)

// Embedder turns text into fixed-dimension vectors.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// Backup receives snapshot files after a successful save. Implementations
// must tolerate being called concurrently with reads.
type Backup interface {
	UploadSnapshot(ctx context.Context, vectorsPath, metadataPath string) error
}

// Stats summarizes the index.
type Stats struct {
	TotalChunks    int    `json:"total_chunks"`
	IndexKind      string `json:"index_kind"`
	EmbeddingModel string `json:"embedding_model"`
}

// Config tunes the index.
type Config struct {
	Split SplitConfig
	// StrictOwnerFilter limits Search results to the requesting owner.
	// Off by default: results are owner-first but padded with the best
	// non-owner matches so callers always see up to k chunks.
	StrictOwnerFilter bool
}

// Index is the durable in-memory vector index. The ordinal position of a
// chunk never changes once inserted; rebuilds are explicit.
type Index struct {
	mu       sync.RWMutex
	vectors  [][]float32
	norms    []float64
	chunks   []domain.Chunk
	embedder Embedder
	store    *Store
	backup   Backup
	cfg      Config
}

// New loads the snapshot from the store, or starts a fresh index seeded
// with a placeholder document when the snapshot is absent or corrupt.
// Corruption is logged, never fatal.
func New(ctx context.Context, embedder Embedder, store *Store, cfg Config) (*Index, error) {
	if cfg.Split.MaxChars <= 0 {
		cfg.Split = DefaultSplitConfig()
	}

	idx := &Index{
		embedder: embedder,
		store:    store,
		cfg:      cfg,
	}

	vectors, chunks, err := store.Load()
	if err == nil {
		idx.vectors = vectors
		idx.chunks = chunks
		idx.norms = computeNorms(vectors)
		log.Printf("vectorindex: loaded snapshot with %d chunks", len(chunks))
		return idx, nil
	}

	log.Printf("vectorindex: no usable snapshot (%v), starting fresh", err)
	if seedErr := idx.seed(ctx); seedErr != nil {
		return nil, seedErr
	}
	return idx, nil
}

// WithBackup attaches an off-host snapshot backup, invoked best-effort
// after each successful save.
func (idx *Index) WithBackup(b Backup) *Index {
	idx.backup = b
	return idx
}

func (idx *Index) seed(ctx context.Context) error {
	vector, err := idx.embedder.GenerateEmbedding(ctx, placeholderContent)
	if err != nil {
		return fmt.Errorf("failed to seed index: %w", err)
	}

	idx.vectors = [][]float32{vector}
	idx.norms = computeNorms(idx.vectors)
	idx.chunks = []domain.Chunk{{
		Content: placeholderContent,
		Metadata: domain.ChunkMetadata{
			Source:    "system",
			OwnerID:   placeholderOwner,
			AddedVia:  "initial",
			CreatedAt: time.Now().UTC(),
		},
	}}

	idx.save(ctx)
	return nil
}

// Add splits, embeds and inserts chunks, then snapshots. The exclusive lock
// covers the whole sequence so concurrent adds cannot interleave ordinals.
// Returns the number of pieces actually indexed.
func (idx *Index) Add(ctx context.Context, chunks []domain.Chunk) (int, error) {
	var pieces []domain.Chunk
	for _, chunk := range chunks {
		if err := domain.ValidateChunk(&chunk); err != nil {
			return 0, err
		}
		pieces = append(pieces, splitChunk(chunk, idx.cfg.Split)...)
	}
	if len(pieces) == 0 {
		return 0, nil
	}

	texts := make([]string, len(pieces))
	for i, p := range pieces {
		texts[i] = p.Content
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	vectors, err := idx.embedder.GenerateEmbeddings(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to embed chunks: %w", err)
	}

	idx.vectors = append(idx.vectors, vectors...)
	idx.chunks = append(idx.chunks, pieces...)
	idx.norms = append(idx.norms, computeNorms(vectors)...)

	idx.save(ctx)
	return len(pieces), nil
}

// Search returns up to k chunks ranked by cosine similarity. With the soft
// owner filter (default), the owner's chunks rank first and the remainder
// is padded with the best global matches. Failures yield an empty slice.
func (idx *Index) Search(ctx context.Context, query string, k int, ownerID string) []domain.Chunk {
	if query == "" || k <= 0 {
		return nil
	}

	queryVector, err := idx.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		log.Printf("vectorindex: query embedding failed: %v", err)
		return nil
	}
	queryNorm := vectorNorm(queryVector)
	if queryNorm == 0 {
		return nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	ranked := make([]scoredOrdinal, 0, len(idx.vectors))
	for i, v := range idx.vectors {
		if idx.norms[i] == 0 {
			continue
		}
		ranked = append(ranked, scoredOrdinal{ordinal: i, score: dot(queryVector, v) / (queryNorm * idx.norms[i])})
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].score > ranked[b].score })

	top := k * 4
	if top > len(ranked) {
		top = len(ranked)
	}
	ranked = ranked[:top]

	if ownerID == "" {
		return idx.collect(ranked, k, func(int) bool { return true })
	}

	results := idx.collect(ranked, k, func(ordinal int) bool {
		return idx.chunks[ordinal].Metadata.OwnerID == ownerID
	})
	if idx.cfg.StrictOwnerFilter || len(results) == k {
		return results
	}

	// Pad with the best non-owner matches.
	for _, r := range ranked {
		if len(results) == k {
			break
		}
		if idx.chunks[r.ordinal].Metadata.OwnerID != ownerID {
			results = append(results, idx.chunks[r.ordinal])
		}
	}
	return results
}

type scoredOrdinal struct {
	ordinal int
	score   float64
}

func (idx *Index) collect(ranked []scoredOrdinal, k int, keep func(int) bool) []domain.Chunk {
	var out []domain.Chunk
	for _, r := range ranked {
		if len(out) == k {
			break
		}
		if keep(r.ordinal) {
			out = append(out, idx.chunks[r.ordinal])
		}
	}
	return out
}

// Stats reports index size and configuration.
func (idx *Index) Stats() Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return Stats{
		TotalChunks:    len(idx.chunks),
		IndexKind:      indexKind,
		EmbeddingModel: embeddingModel,
	}
}

// Rebuild replaces the index content from knowledge entries whose embeddings
// were persisted elsewhere, skipping re-embedding entirely. Entries without
// a stored embedding are skipped.
func (idx *Index) Rebuild(ctx context.Context, entries []*domain.KnowledgeEntry) (int, error) {
	vectors := make([][]float32, 0, len(entries)+1)
	chunks := make([]domain.Chunk, 0, len(entries)+1)

	for _, entry := range entries {
		if len(entry.Embedding) == 0 {
			continue
		}
		vectors = append(vectors, entry.Embedding)
		chunks = append(chunks, domain.Chunk{
			Content: fmt.Sprintf("Q: %s\nR: %s", entry.Question, entry.Response),
			Metadata: domain.ChunkMetadata{
				Source:    "knowledge_base",
				OwnerID:   entry.OwnerID,
				AddedVia:  string(entry.InteractionType),
				CreatedAt: entry.CreatedAt,
			},
		})
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.vectors = vectors
	idx.chunks = chunks
	idx.norms = computeNorms(vectors)

	if len(idx.vectors) == 0 {
		if err := idx.seed(ctx); err != nil {
			return 0, err
		}
		return 0, nil
	}

	idx.save(ctx)
	return len(chunks), nil
}

// save snapshots under the held write lock. Errors are logged and swallowed:
// the in-memory index stays authoritative.
func (idx *Index) save(ctx context.Context) {
	if err := idx.store.Save(idx.vectors, idx.chunks); err != nil {
		log.Printf("vectorindex: snapshot failed: %v", err)
		return
	}

	if idx.backup != nil {
		if err := idx.backup.UploadSnapshot(ctx, idx.store.VectorsPath(), idx.store.MetadataPath()); err != nil {
			log.Printf("vectorindex: snapshot backup failed: %v", err)
		}
	}
}

func computeNorms(vectors [][]float32) []float64 {
	norms := make([]float64, len(vectors))
	for i, v := range vectors {
		norms[i] = vectorNorm(v)
	}
	return norms
}

func vectorNorm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
