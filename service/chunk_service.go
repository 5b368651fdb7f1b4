package service

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kbtools/pdf-ingest/types"
	"github.com/kbtools/pdf-ingest/utils"
)

// DefaultSeparators are the split boundaries tried from coarsest to finest:
// paragraph break, line break, space, raw character.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200
)

// ChunkService splits page-level text into bounded, overlapping segments and
// stamps each one with its provenance metadata.
type ChunkService struct {
	chunkSize  int
	overlap    int
	separators []string
	now        func() time.Time
}

func NewChunkService(cfg types.ChunkingConfig) *ChunkService {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.Overlap < 0 {
		cfg.Overlap = DefaultOverlap
	}
	// The overlap must stay below the chunk size or splitting cannot make
	// progress.
	if cfg.Overlap >= cfg.ChunkSize {
		cfg.Overlap = cfg.ChunkSize / 5
	}
	if len(cfg.Separators) == 0 {
		cfg.Separators = DefaultSeparators
	}
	return &ChunkService{
		chunkSize:  cfg.ChunkSize,
		overlap:    cfg.Overlap,
		separators: cfg.Separators,
		now:        time.Now,
	}
}

// ChunkPages converts the ordered page records of one file into segments.
// Page numbers are converted from the extractor's 0-indexed form to the
// 1-indexed metadata value here, exactly once. The source field is always the
// normalized original filename, overriding anything the extractor recorded.
// Empty pages produce zero segments.
func (s *ChunkService) ChunkPages(records []types.PageRecord, originalName string) []types.Segment {
	source := utils.NormalizeFilename(originalName)
	timestamp := s.now().UTC().Format(time.RFC3339)

	var segments []types.Segment
	seq := 0
	for _, rec := range records {
		page := rec.Page + 1
		if page < 1 {
			page = 1
		}
		for _, piece := range s.splitText(rec.Text, s.separators) {
			segments = append(segments, types.Segment{
				Seq:  seq,
				Text: piece,
				Metadata: types.SegmentMetadata{
					Source:          source,
					Page:            page,
					Type:            types.ResourceType,
					UploadTimestamp: timestamp,
				},
			})
			seq++
		}
	}
	return segments
}

// splitText recursively splits text at the first separator in the priority
// list that yields pieces within the chunk size, descending to finer
// separators for oversized pieces and finally to a raw character split.
// Consecutive pieces carry the trailing overlap of the previous piece.
func (s *ChunkService) splitText(text string, seps []string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if runeLen(text) <= s.chunkSize {
		return []string{text}
	}
	if len(seps) == 0 || seps[0] == "" {
		return s.forceSplit(text)
	}

	sep := seps[0]
	parts := strings.Split(text, sep)
	if len(parts) == 1 {
		return s.splitText(text, seps[1:])
	}
	sepLen := runeLen(sep)

	var (
		out    []string
		cur    []string
		curLen int
		carry  string
	)
	flush := func() {
		if len(cur) == 0 {
			return
		}
		piece := strings.Join(cur, sep)
		cur = cur[:0]
		curLen = 0
		if strings.TrimSpace(piece) == "" {
			return
		}
		out = append(out, piece)
		carry = tailRunes(piece, s.overlap)
	}

	for _, part := range parts {
		partLen := runeLen(part)

		if partLen > s.chunkSize {
			// The part alone exceeds the bound: finish the current piece
			// and descend to the next finer separator for this part.
			flush()
			carry = ""
			sub := s.splitText(part, seps[1:])
			out = append(out, sub...)
			if n := len(sub); n > 0 {
				carry = tailRunes(sub[n-1], s.overlap)
			}
			continue
		}

		if curLen > 0 && curLen+sepLen+partLen > s.chunkSize {
			flush()
		}
		if curLen == 0 && len(cur) == 0 {
			if carry != "" {
				// Seed the new piece with the previous piece's tail,
				// shrunk if needed so the bound still holds.
				if room := s.chunkSize - partLen - sepLen; room > 0 {
					seed := tailRunes(carry, room)
					cur = append(cur, seed)
					curLen = runeLen(seed)
				}
				carry = ""
			} else if part == "" {
				// Drop separator runs at a piece boundary.
				continue
			}
		}
		if curLen > 0 {
			curLen += sepLen
		}
		curLen += partLen
		cur = append(cur, part)
	}
	flush()
	return out
}

// forceSplit cuts text at raw character boundaries with exact overlap. Used
// when no finer separator is available.
func (s *ChunkService) forceSplit(text string) []string {
	runes := []rune(text)
	var out []string
	start := 0
	for start < len(runes) {
		end := start + s.chunkSize
		if end >= len(runes) {
			out = append(out, string(runes[start:]))
			break
		}
		out = append(out, string(runes[start:end]))
		start = end - s.overlap
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// tailRunes returns the last n characters of s.
func tailRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
