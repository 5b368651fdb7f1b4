package types

import "time"

// ResourceType is the fixed `type` tag stored with every segment. The
// downstream retrieval consumer filters on it; do not change.
const ResourceType = "pdf_resource"

// RawUpload is a named byte payload handed to the pipeline. It only lives
// until extraction: the payload is written to a scoped temporary file which
// is released on every exit path.
type RawUpload struct {
	Filename string
	Data     []byte
}

// PageRecord is one page of extracted text. Page is 0-indexed as produced by
// the extractor; the chunker converts it to the 1-indexed metadata value,
// exactly once.
type PageRecord struct {
	Filename string
	Page     int
	Text     string
}

// SegmentMetadata is the per-segment wire contract with the retrieval
// consumer. Field names map 1:1 onto vector index properties and must stay
// stable.
type SegmentMetadata struct {
	Source          string `json:"source"`
	Page            int    `json:"page"`
	Type            string `json:"type"`
	UploadTimestamp string `json:"upload_timestamp"`
}

// Segment is the atomic unit stored in the vector index. Seq is the segment's
// ordinal within its file and is used to derive a stable upsert identifier;
// it is not part of the persisted metadata.
type Segment struct {
	Seq      int
	Text     string
	Metadata SegmentMetadata
}

// FileStatus is the terminal state of one file's processing.
type FileStatus string

const (
	StatusSuccess         FileStatus = "success"
	StatusSkippedNoText   FileStatus = "skipped_no_text"
	StatusSkippedNoChunks FileStatus = "skipped_no_chunks"
	StatusError           FileStatus = "error"
)

// FileResult records the outcome for a single uploaded file.
type FileResult struct {
	Filename string     `json:"filename"`
	Status   FileStatus `json:"status"`
	Message  string     `json:"message,omitempty"`
	Pages    int        `json:"pages"`
	Chunks   int        `json:"chunks"`
}

// RunSummary aggregates results across all files of one run. It is the sole
// return value of the pipeline; run-level failures produce no summary.
type RunSummary struct {
	FilesProcessed int          `json:"files_processed"`
	TotalPages     int          `json:"total_pages"`
	TotalChunks    int          `json:"total_chunks"`
	Results        []FileResult `json:"results"`
}

// RunOptions are consumed once at run start.
type RunOptions struct {
	// ClearIndex deletes every vector in the index before the first file is
	// processed. Destructive; must be requested explicitly per run.
	ClearIndex bool
}

// ProgressEvent is emitted by the pipeline as a monotonically increasing
// fraction from 0.0 to 1.0 across the whole multi-file job.
type ProgressEvent struct {
	Fraction  float64 `json:"fraction"`
	FileIndex int     `json:"file_index"`
	Filename  string  `json:"filename,omitempty"`
	Phase     string  `json:"phase"`
	Message   string  `json:"message,omitempty"`
}

// Progress phases carried on ProgressEvent.
const (
	PhaseClear   = "clear"
	PhaseExtract = "extract"
	PhaseUpsert  = "upsert"
	PhaseDone    = "done"
)

// ProgressFunc receives progress events. Implementations must not block; the
// pipeline calls it synchronously between stages.
type ProgressFunc func(ProgressEvent)

// ChunkingConfig bounds segment size and overlap.
type ChunkingConfig struct {
	ChunkSize  int      // max characters per segment
	Overlap    int      // trailing characters carried into the next segment
	Separators []string // split boundaries, coarsest first; "" means raw characters
}

// BatchConfig controls the upsert batcher and run-level policy knobs.
type BatchConfig struct {
	BatchSize       int           // segments per upsert call
	BatchDelay      time.Duration // throttling pause between batches, 0 disables
	ProgressSplit   float64       // fraction of per-file progress assigned to extract/chunk
	ClearSettleWait time.Duration // settling delay after an index clear
}
