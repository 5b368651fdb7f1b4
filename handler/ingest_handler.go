package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/kbtools/pdf-ingest/service"
	"github.com/kbtools/pdf-ingest/types"
)

const maxUploadSize = 50 << 20

// IngestHandler is a thin HTTP caller of the ingestion pipeline: it collects
// the uploaded payloads, runs the pipeline and returns the RunSummary.
type IngestHandler struct {
	ingest *service.IngestService
	hub    *service.ProgressHub
}

func NewIngestHandler(ingest *service.IngestService, hub *service.ProgressHub) *IngestHandler {
	return &IngestHandler{
		ingest: ingest,
		hub:    hub,
	}
}

// HandleIngest accepts a multipart form with one or more "files" parts and an
// optional "clear" field ("true" requests the destructive index clear).
func (h *IngestHandler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.sendError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		h.sendError(w, "no files uploaded", http.StatusBadRequest)
		return
	}

	uploads := make([]types.RawUpload, 0, len(files))
	for _, header := range files {
		if header.Size > maxUploadSize {
			h.sendError(w, "file too large: "+header.Filename, http.StatusBadRequest)
			return
		}
		src, err := header.Open()
		if err != nil {
			h.sendError(w, "failed to open upload: "+header.Filename, http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			h.sendError(w, "failed to read upload: "+header.Filename, http.StatusBadRequest)
			return
		}
		uploads = append(uploads, types.RawUpload{Filename: header.Filename, Data: data})
	}

	opts := types.RunOptions{ClearIndex: r.FormValue("clear") == "true"}
	summary, err := h.ingest.Run(r.Context(), uploads, opts, h.hub.Publish)
	if err != nil {
		// Run-level failure: no summary, the abort reason is the sole output.
		h.sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(types.DataResponse{
		Status: true,
		Data:   summary,
	})
}

func (h *IngestHandler) sendError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(types.DataResponse{
		Status:  false,
		Message: message,
	})
}
