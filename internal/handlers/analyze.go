package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/BerylCAtieno/document-compliance-api/internal/completion"
	"github.com/BerylCAtieno/document-compliance-api/internal/models"
	"github.com/BerylCAtieno/document-compliance-api/internal/review"
	"github.com/BerylCAtieno/document-compliance-api/internal/utils"
	"github.com/gorilla/mux"
)

type streamEvent struct {
	Index    int      `json:"index"`
	Criteria []string `json:"criteria"`
	Text     string   `json:"text,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// AnalyzeDocument runs the review and streams progress as Server-Sent Events.
// Input errors are reported as a plain JSON error before the stream starts.
func (h *SessionHandler) AnalyzeDocument(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	logger := h.logger.With("session_id", sessionID)

	var body models.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		h.respondError(w, utils.NewBadRequestError("Invalid JSON body"))
		return
	}

	req, err := h.service.PrepareAnalysis(r.Context(), sessionID, &body)
	if err != nil {
		h.respondError(w, err)
		return
	}

	rc := http.NewResponseController(w)
	// The stream outlives the server's write timeout.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		logger.Warn("Failed to clear write deadline", "error", err)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	send := func(event string, payload any) {
		data, err := json.Marshal(payload)
		if err != nil {
			logger.Error("Failed to encode stream event", "error", err, "event", event)
			return
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
		if err := rc.Flush(); err != nil {
			logger.Debug("Flush failed", "error", err)
		}
	}

	report, err := h.service.Analyze(r.Context(), req, func(e review.Event) {
		ev := streamEvent{Index: e.Index, Criteria: e.Criteria}
		switch e.Kind {
		case review.EventFragment:
			ev.Text = e.Text
		case review.EventFailed:
			ev.Error = failureMessage(e.Err)
		}
		send(string(e.Kind), ev)
	})
	if err != nil {
		logger.Warn("Analysis stopped", "error", err)
		send("error", map[string]string{"error": "analysis aborted"})
		return
	}

	summary := models.AnalysisSummary{
		SessionID:   sessionID,
		Mode:        string(report.Mode),
		Invocations: len(report.Results),
	}
	for _, failed := range report.Failed() {
		summary.Failed = append(summary.Failed, failed.Criteria...)
	}
	send("complete", summary)
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, completion.ErrQuotaExceeded):
		return "model quota exceeded"
	case errors.Is(err, completion.ErrEmptyStream):
		return "model returned no output"
	case errors.Is(err, completion.ErrIncompleteStream):
		return "model output was cut off"
	default:
		return "model request failed"
	}
}
