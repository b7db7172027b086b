package knowledge

import (
	"sync"
	"time"

	"github.com/orbia-ai/orbia/internal/domain"
)

// maxEntriesPerKeyword bounds graph growth; the oldest references are
// pruned first.
const maxEntriesPerKeyword = 10

// GraphRef points from a keyword to a learned entry.
type GraphRef struct {
	EntryID    string
	ValueScore float64
	Timestamp  time.Time
}

// Graph is the in-memory per-owner keyword graph. It is rebuilt organically
// as entries are learned; it is not persisted.
type Graph struct {
	mu     sync.RWMutex
	owners map[string]map[string][]GraphRef
}

func NewGraph() *Graph {
	return &Graph{owners: make(map[string]map[string][]GraphRef)}
}

// Record links every keyword of the entry's question to the entry, keeping
// at most ten references per keyword.
func (g *Graph) Record(ownerID string, entry *domain.KnowledgeEntry) {
	keywords := ExtractKeywords(entry.Question)
	if len(keywords) == 0 {
		return
	}

	ref := GraphRef{
		EntryID:    entry.ID,
		ValueScore: entry.ValueScore,
		Timestamp:  time.Now().UTC(),
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	byKeyword, ok := g.owners[ownerID]
	if !ok {
		byKeyword = make(map[string][]GraphRef)
		g.owners[ownerID] = byKeyword
	}

	for _, keyword := range keywords {
		refs := append(byKeyword[keyword], ref)
		if len(refs) > maxEntriesPerKeyword {
			refs = refs[len(refs)-maxEntriesPerKeyword:]
		}
		byKeyword[keyword] = refs
	}
}

// Size returns the number of keywords tracked for an owner.
func (g *Graph) Size(ownerID string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.owners[ownerID])
}

// Refs returns the references recorded under one keyword for an owner.
func (g *Graph) Refs(ownerID, keyword string) []GraphRef {
	g.mu.RLock()
	defer g.mu.RUnlock()

	refs := g.owners[ownerID][keyword]
	out := make([]GraphRef, len(refs))
	copy(out, refs)
	return out
}
