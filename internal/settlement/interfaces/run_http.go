package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"

	"rental-cloud/internal/audit"
	settlementapp "rental-cloud/internal/settlement/application"
)

// RunHandler handles the scheduler's settlement trigger. Authentication
// is the trigger middleware's job; this handler only runs the batch.
type RunHandler struct {
	runner      settlementapp.Runner
	auditLogger audit.Logger
}

// NewRunHandler constructs a handler.
func NewRunHandler(runner settlementapp.Runner, auditLogger audit.Logger) (*RunHandler, error) {
	if runner == nil {
		return nil, errors.New("run handler: nil runner")
	}
	return &RunHandler{runner: runner, auditLogger: auditLogger}, nil
}

// ServeHTTP handles POST /api/v1/settlements/run.
func (h *RunHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summary, err := h.runner.Run(r.Context())
	if err != nil {
		http.Error(w, "settlement run failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(summary)

	if h.auditLogger != nil {
		meta, _ := json.Marshal(map[string]any{
			"month":   summary.SettlementMonth.Format("2006-01"),
			"created": summary.SettlementsCreated,
			"skipped": summary.SettlementsSkipped,
			"failed":  summary.PartnersFailed,
		})
		_ = h.auditLogger.Log(r.Context(), audit.Entry{
			Actor:        "scheduler",
			Action:       "settlement.run",
			ResourceType: "settlement_run",
			ResourceID:   summary.RunID,
			Metadata:     meta,
			IP:           audit.ClientIP(r),
			UserAgent:    r.UserAgent(),
		})
	}
}
