package service

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/kbtools/pdf-ingest/types"
	"github.com/kbtools/pdf-ingest/utils"
)

// Extractor turns one uploaded payload into ordered page records.
type Extractor interface {
	Extract(ctx context.Context, upload types.RawUpload) ([]types.PageRecord, error)
}

// ExtractService extracts page-level text from PDF payloads using the
// poppler utilities (pdfinfo for the page count, pdftotext per page).
type ExtractService struct {
	logger *slog.Logger
}

func NewExtractService() *ExtractService {
	return &ExtractService{
		logger: slog.Default().With("component", "extractor"),
	}
}

// Extract writes the payload to a scoped temporary file, reads every physical
// page and returns 0-indexed PageRecords in page order. A payload that yields
// no extractable text at all returns zero records and no error; callers treat
// that as a skip, not a failure. An unparseable payload returns a
// types.ExtractionError.
func (s *ExtractService) Extract(ctx context.Context, upload types.RawUpload) ([]types.PageRecord, error) {
	path, err := utils.WriteTempFile("upload-*.pdf", upload.Data)
	if err != nil {
		return nil, &types.ExtractionError{Filename: upload.Filename, Err: err}
	}
	defer func() {
		// Cleanup failure is a warning, never a run-level error.
		if err := os.Remove(path); err != nil {
			s.logger.Warn("failed to remove temp file", "path", path, "err", err)
		}
	}()

	totalPages, err := pageCount(ctx, path)
	if err != nil {
		return nil, &types.ExtractionError{Filename: upload.Filename, Err: err}
	}
	if totalPages == 0 {
		return nil, nil
	}

	records := make([]types.PageRecord, 0, totalPages)
	anyText := false
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		text, err := extractPageText(ctx, path, pageNum)
		if err != nil {
			// Skip failed pages instead of failing the file; the record
			// stays so page numbering remains physical.
			s.logger.Warn("failed to extract text from page", "file", upload.Filename, "page", pageNum, "err", err)
			text = ""
		}
		if text != "" {
			anyText = true
		}
		records = append(records, types.PageRecord{
			Filename: upload.Filename,
			Page:     pageNum - 1,
			Text:     text,
		})
	}
	if !anyText {
		return nil, nil
	}
	return records, nil
}

var pagesRe = regexp.MustCompile(`Pages:\s+(\d+)`)

// pageCount uses pdfinfo to get the total number of pages in a PDF file.
func pageCount(ctx context.Context, pdfPath string) (int, error) {
	cmd := exec.CommandContext(ctx, "pdfinfo", pdfPath)
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("error running pdfinfo: %w", err)
	}
	return parsePageCount(out.Bytes())
}

func parsePageCount(pdfinfoOut []byte) (int, error) {
	scanner := bufio.NewScanner(bytes.NewReader(pdfinfoOut))
	for scanner.Scan() {
		if matches := pagesRe.FindStringSubmatch(scanner.Text()); len(matches) == 2 {
			return strconv.Atoi(matches[1])
		}
	}
	return 0, fmt.Errorf("unable to determine page count from pdfinfo")
}

// extractPageText extracts the text of a single page using pdftotext.
func extractPageText(ctx context.Context, pdfPath string, pageNum int) (string, error) {
	cmd := exec.CommandContext(ctx, "pdftotext",
		"-f", strconv.Itoa(pageNum),
		"-l", strconv.Itoa(pageNum),
		"-enc", "UTF-8", "-nopgbrk",
		pdfPath, "-")
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftotext failed at page %d: %w", pageNum, err)
	}
	return strings.TrimSpace(out.String()), nil
}
