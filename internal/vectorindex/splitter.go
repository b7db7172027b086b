package vectorindex

import (
	"strings"
	"unicode"

	"github.com/orbia-ai/orbia/internal/domain"
)

// SplitConfig controls how oversized chunks are split before embedding.
type SplitConfig struct {
	MaxChars  int
	MinChars  int
	Overlap   int
	MaxPieces int
}

// DefaultSplitConfig provides sane defaults for splitting.
func DefaultSplitConfig() SplitConfig {
	return SplitConfig{
		MaxChars:  1000,
		MinChars:  200,
		Overlap:   200,
		MaxPieces: 40,
	}
}

// splitChunk breaks one chunk into embedding-sized pieces, carrying the
// source metadata onto every piece. Within-limit chunks pass through whole.
func splitChunk(chunk domain.Chunk, cfg SplitConfig) []domain.Chunk {
	pieces := splitText(chunk.Content, cfg)
	out := make([]domain.Chunk, 0, len(pieces))
	for _, piece := range pieces {
		out = append(out, domain.Chunk{Content: piece, Metadata: chunk.Metadata})
	}
	return out
}

func splitText(text string, cfg SplitConfig) []string {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return nil
	}
	if cfg.MaxChars <= 0 {
		cfg = DefaultSplitConfig()
	}
	runes := []rune(clean)
	if len(runes) <= cfg.MaxChars {
		return []string{clean}
	}

	pieces := make([]string, 0, 8)
	start := 0
	for start < len(runes) {
		if cfg.MaxPieces > 0 && len(pieces) >= cfg.MaxPieces {
			break
		}

		end := start + cfg.MaxChars
		if end > len(runes) {
			end = len(runes)
		}

		// Back up to the nearest whitespace so words stay whole.
		if end < len(runes) {
			cut := end
			minCut := start + cfg.MinChars
			if minCut > end {
				minCut = start
			}
			for i := end; i > minCut; i-- {
				if unicode.IsSpace(runes[i-1]) {
					cut = i
					break
				}
			}
			end = cut
		}

		if end <= start {
			break
		}

		piece := strings.TrimSpace(string(runes[start:end]))
		if piece != "" {
			pieces = append(pieces, piece)
		}

		if end >= len(runes) {
			break
		}

		nextStart := end
		if cfg.Overlap > 0 {
			if end-start > cfg.Overlap {
				nextStart = end - cfg.Overlap
			}
		}
		if nextStart <= start {
			nextStart = end
		}
		start = nextStart
	}

	return pieces
}
