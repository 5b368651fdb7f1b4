package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kbtools/pdf-ingest/database"
	"github.com/kbtools/pdf-ingest/types"
	"github.com/kbtools/pdf-ingest/utils"
)

const (
	DefaultBatchSize     = 50
	DefaultProgressSplit = 0.5
)

// IngestService runs the document-to-vector pipeline: extract, chunk, embed
// and upsert, one file at a time, and reports per-file outcomes plus a
// monotonic progress fraction across the whole run.
type IngestService struct {
	extractor Extractor
	chunker   *ChunkService
	embedder  Embedder
	index     database.VectorIndex
	cfg       types.BatchConfig
	logger    *slog.Logger
}

func NewIngestService(
	extractor Extractor,
	chunker *ChunkService,
	embedder Embedder,
	index database.VectorIndex,
	cfg types.BatchConfig,
) *IngestService {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.ProgressSplit <= 0 || cfg.ProgressSplit >= 1 {
		cfg.ProgressSplit = DefaultProgressSplit
	}
	if cfg.BatchDelay < 0 {
		cfg.BatchDelay = 0
	}
	return &IngestService{
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		index:     index,
		cfg:       cfg,
		logger:    slog.Default().With("component", "ingest"),
	}
}

// Run processes the uploads sequentially and returns a complete RunSummary.
// Run-level failures (a rejected clear, a cancelled context during the
// settling wait) abort before any file is processed and return no summary.
// Per-file failures are recorded in the summary and never abort sibling
// files.
func (s *IngestService) Run(ctx context.Context, uploads []types.RawUpload, opts types.RunOptions, progress types.ProgressFunc) (*types.RunSummary, error) {
	reporter := newProgressReporter(len(uploads), s.cfg.ProgressSplit, progress)

	if opts.ClearIndex {
		if err := s.index.Clear(ctx); err != nil {
			return nil, err
		}
		reporter.emit(0, 0, "", types.PhaseClear, "index cleared")
		s.logger.Info("waiting for index deletion to settle", "wait", s.cfg.ClearSettleWait)
		if err := sleepCtx(ctx, s.cfg.ClearSettleWait); err != nil {
			return nil, err
		}
	}

	summary := &types.RunSummary{Results: make([]types.FileResult, 0, len(uploads))}
	for i, upload := range uploads {
		result := s.processFile(ctx, i, upload, reporter)
		summary.Results = append(summary.Results, result)
		summary.FilesProcessed++
		summary.TotalPages += result.Pages
		summary.TotalChunks += result.Chunks
	}

	reporter.emit(1, len(uploads), "", types.PhaseDone, "processing complete")
	return summary, nil
}

// processFile walks one file through the state machine:
// Pending → Extracting → (Skipped-NoText | Chunking) →
// (Skipped-NoChunks | Upserting) → (Success | Error).
func (s *IngestService) processFile(ctx context.Context, fileIndex int, upload types.RawUpload, reporter *progressReporter) types.FileResult {
	name := utils.NormalizeFilename(upload.Filename)
	result := types.FileResult{Filename: name}

	reporter.extract(fileIndex, name, 0)
	records, err := s.extractor.Extract(ctx, upload)
	if err != nil {
		s.logger.Error("extraction failed", "file", name, "err", err)
		result.Status = types.StatusError
		result.Message = err.Error()
		return result
	}
	if len(records) == 0 {
		s.logger.Info("no text extracted, skipping", "file", name)
		result.Status = types.StatusSkippedNoText
		reporter.extract(fileIndex, name, 1)
		return result
	}
	result.Pages = len(records)

	segments := s.chunker.ChunkPages(records, upload.Filename)
	reporter.extract(fileIndex, name, 1)
	if len(segments) == 0 {
		s.logger.Info("no chunks generated, skipping", "file", name)
		result.Status = types.StatusSkippedNoChunks
		return result
	}
	result.Chunks = len(segments)

	if err := s.upsertSegments(ctx, fileIndex, name, segments, reporter); err != nil {
		s.logger.Error("upsert failed", "file", name, "err", err)
		result.Status = types.StatusError
		result.Message = err.Error()
		return result
	}

	result.Status = types.StatusSuccess
	return result
}

// upsertSegments sends the file's segments in fixed-size groups. A rejected
// group aborts the remaining groups for this file; groups already sent stay
// in the index.
func (s *IngestService) upsertSegments(ctx context.Context, fileIndex int, name string, segments []types.Segment, reporter *progressReporter) error {
	total := len(segments)
	batches := (total + s.cfg.BatchSize - 1) / s.cfg.BatchSize

	for b := 0; b < batches; b++ {
		lo := b * s.cfg.BatchSize
		hi := lo + s.cfg.BatchSize
		if hi > total {
			hi = total
		}
		batch := segments[lo:hi]

		texts := make([]string, len(batch))
		for j, seg := range batch {
			texts[j] = seg.Text
		}
		vectors, err := s.embedder.EmbedTexts(ctx, texts)
		if err == nil {
			err = s.index.UpsertBatch(ctx, batch, vectors)
		}
		if err != nil {
			return &types.UpsertError{Batch: b, Err: err}
		}

		reporter.upsert(fileIndex, name, float64(hi)/float64(total),
			fmt.Sprintf("upserted %d/%d segments", hi, total))

		// Throttle between groups to respect remote rate limits. Policy
		// only; 0 disables.
		if b < batches-1 && s.cfg.BatchDelay > 0 {
			if err := sleepCtx(ctx, s.cfg.BatchDelay); err != nil {
				return &types.UpsertError{Batch: b + 1, Err: err}
			}
		}
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// progressReporter maps per-file phase progress onto the run-wide fraction.
// Each file owns the slice [i/F, (i+1)/F]; the split point divides the slice
// between the extract/chunk phase and the upsert phase. The emitted fraction
// is clamped so it never decreases.
type progressReporter struct {
	totalFiles int
	split      float64
	fn         types.ProgressFunc
	last       float64
}

func newProgressReporter(totalFiles int, split float64, fn types.ProgressFunc) *progressReporter {
	if fn == nil {
		fn = func(types.ProgressEvent) {}
	}
	return &progressReporter{totalFiles: totalFiles, split: split, fn: fn}
}

func (r *progressReporter) extract(fileIndex int, name string, done float64) {
	if r.totalFiles == 0 {
		return
	}
	frac := (float64(fileIndex) + r.split*done) / float64(r.totalFiles)
	r.emit(frac, fileIndex, name, types.PhaseExtract, fmt.Sprintf("processing file %d/%d: %s", fileIndex+1, r.totalFiles, name))
}

func (r *progressReporter) upsert(fileIndex int, name string, done float64, message string) {
	if r.totalFiles == 0 {
		return
	}
	frac := (float64(fileIndex) + r.split + (1-r.split)*done) / float64(r.totalFiles)
	r.emit(frac, fileIndex, name, types.PhaseUpsert, message)
}

func (r *progressReporter) emit(frac float64, fileIndex int, name, phase, message string) {
	if frac < r.last {
		frac = r.last
	}
	if frac > 1 {
		frac = 1
	}
	r.last = frac
	r.fn(types.ProgressEvent{
		Fraction:  frac,
		FileIndex: fileIndex,
		Filename:  name,
		Phase:     phase,
		Message:   message,
	})
}
