package vectorindex

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/orbia-ai/orbia/internal/domain"
)

const (
	vectorsFile  = "vectors.gob"
	metadataFile = "metadata.json"
)

// Store persists index snapshots as a gob vector file plus a JSON metadata
// file. Each file is written to a temp path and atomically renamed, vectors
// first, so a crash mid-save never leaves a torn snapshot.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) VectorsPath() string  { return filepath.Join(s.dir, vectorsFile) }
func (s *Store) MetadataPath() string { return filepath.Join(s.dir, metadataFile) }

// Save writes a full snapshot. Vectors land before metadata so a partial
// save degrades to a cardinality mismatch, which Load treats as corruption.
func (s *Store) Save(vectors [][]float32, chunks []domain.Chunk) error {
	if len(vectors) != len(chunks) {
		return fmt.Errorf("vector/chunk cardinality mismatch: %d vs %d", len(vectors), len(chunks))
	}

	if err := s.writeVectors(vectors); err != nil {
		return fmt.Errorf("failed to save vectors: %w", err)
	}
	if err := s.writeMetadata(chunks); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}
	return nil
}

func (s *Store) writeVectors(vectors [][]float32) error {
	tmp := s.VectorsPath() + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	if err := gob.NewEncoder(f).Encode(vectors); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, s.VectorsPath())
}

func (s *Store) writeMetadata(chunks []domain.Chunk) error {
	tmp := s.MetadataPath() + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(f).Encode(chunks); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, s.MetadataPath())
}

// Load reads the snapshot back. A missing snapshot returns os.ErrNotExist;
// decode failures and cardinality mismatches return ErrIndexCorrupted so
// the caller can fall back to a fresh index.
func (s *Store) Load() ([][]float32, []domain.Chunk, error) {
	vf, err := os.Open(s.VectorsPath())
	if err != nil {
		return nil, nil, err
	}
	defer vf.Close()

	var vectors [][]float32
	if err := gob.NewDecoder(vf).Decode(&vectors); err != nil {
		return nil, nil, domain.NewDomainErrorWithCause(domain.ErrCodeCorruption, "failed to decode vectors", err)
	}

	mf, err := os.Open(s.MetadataPath())
	if err != nil {
		return nil, nil, err
	}
	defer mf.Close()

	var chunks []domain.Chunk
	if err := json.NewDecoder(mf).Decode(&chunks); err != nil {
		return nil, nil, domain.NewDomainErrorWithCause(domain.ErrCodeCorruption, "failed to decode metadata", err)
	}

	if len(vectors) != len(chunks) {
		return nil, nil, domain.NewDomainErrorWithCause(domain.ErrCodeCorruption,
			fmt.Sprintf("snapshot cardinality mismatch: %d vectors, %d chunks", len(vectors), len(chunks)),
			domain.ErrIndexCorrupted)
	}

	return vectors, chunks, nil
}
