package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbtools/pdf-ingest/types"
)

// letterText builds n characters with no separator characters at all, so the
// splitter has to fall through to the raw character split.
func letterText(n int) string {
	const pattern = "abcdefghijklmnopqrstuvwxyz"
	var b strings.Builder
	for b.Len() < n {
		b.WriteString(pattern)
	}
	return b.String()[:n]
}

func TestChunkPagesShortTextSingleSegment(t *testing.T) {
	svc := NewChunkService(types.ChunkingConfig{ChunkSize: 1000, Overlap: 200})

	segments := svc.ChunkPages([]types.PageRecord{
		{Filename: "a.pdf", Page: 0, Text: "hello world"},
	}, "a.pdf")

	require.Len(t, segments, 1)
	assert.Equal(t, "hello world", segments[0].Text)
	assert.Equal(t, 0, segments[0].Seq)
	assert.Equal(t, 1, segments[0].Metadata.Page)
}

func TestChunkPagesSegmentBound(t *testing.T) {
	svc := NewChunkService(types.ChunkingConfig{ChunkSize: 100, Overlap: 20})

	text := strings.Repeat("the quick brown fox jumps over the lazy dog.\n", 30) +
		"\n\n" + letterText(450) + "\n" +
		strings.Repeat("word ", 120)
	segments := svc.ChunkPages([]types.PageRecord{{Page: 0, Text: text}}, "bound.pdf")

	require.NotEmpty(t, segments)
	for _, seg := range segments {
		assert.LessOrEqual(t, len([]rune(seg.Text)), 100, "segment %d too long", seg.Seq)
	}
}

func TestChunkPagesForceSplitOverlap(t *testing.T) {
	svc := NewChunkService(types.ChunkingConfig{ChunkSize: 1000, Overlap: 200})

	segments := svc.ChunkPages([]types.PageRecord{{Page: 0, Text: letterText(2500)}}, "dense.pdf")

	// 2500 characters with no separators: [0,1000) [800,1800) [1600,2500).
	require.Len(t, segments, 3)
	for i := 0; i < len(segments)-1; i++ {
		prev := []rune(segments[i].Text)
		next := []rune(segments[i+1].Text)
		tail := string(prev[len(prev)-200:])
		head := string(next[:200])
		assert.Equal(t, tail, head, "segments %d and %d do not overlap", i, i+1)
	}
	for i, seg := range segments {
		assert.Equal(t, i, seg.Seq)
	}
}

func TestChunkPagesParagraphPriority(t *testing.T) {
	svc := NewChunkService(types.ChunkingConfig{ChunkSize: 1000, Overlap: 50})

	para1 := strings.Repeat("first paragraph sentence. ", 24)  // ~624 chars
	para2 := strings.Repeat("second paragraph sentence. ", 24) // ~648 chars
	text := para1 + "\n\n" + para2

	segments := svc.ChunkPages([]types.PageRecord{{Page: 0, Text: text}}, "paras.pdf")

	require.Len(t, segments, 2)
	assert.Equal(t, para1, segments[0].Text)

	// The second segment is seeded with the first one's trailing overlap.
	prev := []rune(segments[0].Text)
	seed := string(prev[len(prev)-50:])
	assert.True(t, strings.HasPrefix(segments[1].Text, seed+"\n\n"),
		"second segment not seeded with previous tail")
	assert.True(t, strings.HasSuffix(segments[1].Text, para2))
}

func TestChunkPagesPageNumbering(t *testing.T) {
	svc := NewChunkService(types.ChunkingConfig{ChunkSize: 1000, Overlap: 200})

	segments := svc.ChunkPages([]types.PageRecord{
		{Page: 0, Text: "page one"},
		{Page: 1, Text: "page two"},
		{Page: 2, Text: "page three"},
	}, "multi.pdf")

	require.Len(t, segments, 3)
	assert.Equal(t, 1, segments[0].Metadata.Page)
	assert.Equal(t, 2, segments[1].Metadata.Page)
	assert.Equal(t, 3, segments[2].Metadata.Page)
}

func TestChunkPagesPageDefaultsToOne(t *testing.T) {
	svc := NewChunkService(types.ChunkingConfig{ChunkSize: 1000, Overlap: 200})

	segments := svc.ChunkPages([]types.PageRecord{{Page: -3, Text: "orphan"}}, "x.pdf")

	require.Len(t, segments, 1)
	assert.Equal(t, 1, segments[0].Metadata.Page)
}

func TestChunkPagesSourceNormalized(t *testing.T) {
	svc := NewChunkService(types.ChunkingConfig{ChunkSize: 1000, Overlap: 200})

	segments := svc.ChunkPages([]types.PageRecord{
		{Filename: "/tmp/ingest-123.pdf", Page: 0, Text: "content"},
	}, `cleaned_pdfs\Report Final.pdf`)

	require.Len(t, segments, 1)
	assert.Equal(t, "Report Final.pdf", segments[0].Metadata.Source)
}

func TestChunkPagesEmptyPages(t *testing.T) {
	svc := NewChunkService(types.ChunkingConfig{ChunkSize: 1000, Overlap: 200})

	segments := svc.ChunkPages([]types.PageRecord{
		{Page: 0, Text: ""},
		{Page: 1, Text: "   \n\t  "},
	}, "empty.pdf")

	assert.Empty(t, segments)
}

func TestChunkPagesMetadata(t *testing.T) {
	svc := NewChunkService(types.ChunkingConfig{ChunkSize: 1000, Overlap: 200})

	pages := make([]types.PageRecord, 3)
	for i := range pages {
		pages[i] = types.PageRecord{Page: i, Text: letterText(2500)}
	}
	segments := svc.ChunkPages(pages, "report.pdf")

	// Three raw-split segments per 2500-character page.
	require.Len(t, segments, 9)
	for i, seg := range segments {
		assert.Equal(t, i, seg.Seq)
		assert.Equal(t, i/3+1, seg.Metadata.Page)
		assert.Equal(t, "report.pdf", seg.Metadata.Source)
		assert.Equal(t, types.ResourceType, seg.Metadata.Type)
		_, err := time.Parse(time.RFC3339, seg.Metadata.UploadTimestamp)
		assert.NoError(t, err)
	}
}

func TestNewChunkServiceClampsOverlap(t *testing.T) {
	// An overlap at or above the chunk size would stall the raw split.
	svc := NewChunkService(types.ChunkingConfig{ChunkSize: 100, Overlap: 100})

	segments := svc.ChunkPages([]types.PageRecord{{Page: 0, Text: letterText(500)}}, "clamp.pdf")

	require.NotEmpty(t, segments)
	for _, seg := range segments {
		assert.LessOrEqual(t, len([]rune(seg.Text)), 100)
	}
}
