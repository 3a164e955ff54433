package interfaces

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"rental-cloud/internal/audit"
	"rental-cloud/internal/auth"
)

// ExportHandler streams the ledger as CSV for finance reconciliation.
type ExportHandler struct {
	store       SettlementStore
	auditLogger audit.Logger
}

// NewExportHandler constructs a handler.
func NewExportHandler(store SettlementStore, auditLogger audit.Logger) (*ExportHandler, error) {
	if store == nil {
		return nil, errors.New("export handler: nil store")
	}
	return &ExportHandler{store: store, auditLogger: auditLogger}, nil
}

// ServeHTTP handles GET /api/v1/exports/settlements.csv.
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	from, err := parseMonth(query.Get("from"))
	if err != nil {
		http.Error(w, "invalid from month", http.StatusBadRequest)
		return
	}
	to, err := parseMonth(query.Get("to"))
	if err != nil {
		http.Error(w, "invalid to month", http.StatusBadRequest)
		return
	}
	if !to.IsZero() {
		to = to.AddDate(0, 1, 0)
	}

	list, err := h.store.List(r.Context(), query.Get("partner_id"), from, to)
	if err != nil {
		http.Error(w, "list settlements failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="settlements.csv"`)

	writer := csv.NewWriter(w)
	_ = writer.Write([]string{
		"id", "partner_id", "settlement_month", "bookings_count",
		"gross_revenue", "commission_rate", "commission_amount", "net_payout",
		"status", "created_at", "paid_at",
	})
	for _, aggregate := range list {
		figures := aggregate.Figures()
		paidAt := ""
		if !aggregate.PaidAt().IsZero() {
			paidAt = aggregate.PaidAt().Format(time.RFC3339)
		}
		_ = writer.Write([]string{
			aggregate.ID(),
			aggregate.PartnerID(),
			aggregate.MonthStart().Format("2006-01"),
			strconv.Itoa(figures.BookingsCount),
			figures.GrossRevenue.String(),
			figures.CommissionRate.String(),
			figures.CommissionAmount.String(),
			figures.NetPayout.String(),
			string(aggregate.Status()),
			aggregate.CreatedAt().Format(time.RFC3339),
			paidAt,
		})
	}
	writer.Flush()

	if h.auditLogger != nil {
		meta, _ := json.Marshal(map[string]any{
			"rows":       len(list),
			"partner_id": query.Get("partner_id"),
		})
		_ = h.auditLogger.Log(r.Context(), audit.Entry{
			Actor:        auth.SubjectFromContext(r.Context()),
			Role:         string(auth.RoleFromContext(r.Context())),
			Action:       "settlement.export",
			ResourceType: "settlement_export",
			ResourceID:   "settlements.csv",
			Metadata:     meta,
			IP:           audit.ClientIP(r),
			UserAgent:    r.UserAgent(),
		})
	}
}
