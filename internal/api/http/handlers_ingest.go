package apihttp

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"mediaarchive/internal/usecase"
)

const (
	maxIngestBody  = 1 << 20
	maxIngestItems = 500
)

type ingestRequest struct {
	Items []usecase.IngestInput `json:"items"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if s.ingest == nil {
		writeError(w, http.StatusServiceUnavailable, "ingest_disabled", "ingestion is not configured")
		return
	}

	var req ingestRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxIngestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid json body")
		return
	}

	items := make([]usecase.IngestInput, 0, len(req.Items))
	for _, item := range req.Items {
		item.Link = strings.TrimSpace(item.Link)
		if item.Link == "" {
			continue
		}
		items = append(items, item)
	}
	switch {
	case len(items) == 0:
		writeError(w, http.StatusBadRequest, "invalid_request", "items must contain at least one link")
		return
	case len(items) > maxIngestItems:
		writeError(w, http.StatusRequestEntityTooLarge, "too_many_items", "too many items in one request")
		return
	}

	report, err := s.ingest.Execute(r.Context(), items)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	s.logger.Info("ingest batch finished",
		slog.Int("total", report.Total),
		slog.Int("succeeded", report.Succeeded),
		slog.Int("failed", report.Failed),
		slog.String("requestId", RequestID(r.Context())),
	)
	writeJSON(w, http.StatusOK, report)
}
