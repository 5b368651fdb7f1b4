package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbtools/pdf-ingest/types"
)

func TestSegmentIDDeterministic(t *testing.T) {
	seg := types.Segment{
		Seq:  3,
		Text: "ignored for identity",
		Metadata: types.SegmentMetadata{
			Source: "report.pdf",
			Page:   2,
		},
	}

	assert.Equal(t, segmentID(seg), segmentID(seg))

	// The text does not participate; re-chunking the same position overwrites.
	other := seg
	other.Text = "different text, same position"
	assert.Equal(t, segmentID(seg), segmentID(other))
}

func TestSegmentIDDistinct(t *testing.T) {
	base := types.Segment{
		Seq:      0,
		Metadata: types.SegmentMetadata{Source: "report.pdf", Page: 1},
	}

	otherSeq := base
	otherSeq.Seq = 1
	otherPage := base
	otherPage.Metadata.Page = 2
	otherSource := base
	otherSource.Metadata.Source = "other.pdf"

	ids := map[string]bool{}
	for _, seg := range []types.Segment{base, otherSeq, otherPage, otherSource} {
		ids[string(segmentID(seg))] = true
	}
	assert.Len(t, ids, 4)
}

func TestClassObject(t *testing.T) {
	obj := classObject("PdfResource", false)

	assert.Equal(t, "PdfResource", obj.Class)
	assert.Equal(t, "none", obj.Vectorizer)
	assert.Nil(t, obj.MultiTenancyConfig)

	names := make([]string, 0, len(obj.Properties))
	for _, p := range obj.Properties {
		names = append(names, p.Name)
	}
	assert.ElementsMatch(t,
		[]string{"text", "source", "page", "type", "upload_timestamp"}, names)
}

func TestClassObjectMultiTenancy(t *testing.T) {
	obj := classObject("PdfResource", true)

	require.NotNil(t, obj.MultiTenancyConfig)
	assert.True(t, obj.MultiTenancyConfig.Enabled)
}
