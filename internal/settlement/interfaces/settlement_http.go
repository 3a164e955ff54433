package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"rental-cloud/internal/audit"
	"rental-cloud/internal/auth"
	"rental-cloud/internal/observability/metrics"
	partner "rental-cloud/internal/partner/domain"
	settlement "rental-cloud/internal/settlement/domain"
)

// SettlementStore is the read and transition surface the handler needs.
type SettlementStore interface {
	GetByID(ctx context.Context, id string) (*settlement.SettlementAggregate, error)
	List(ctx context.Context, partnerID string, from, to time.Time) ([]*settlement.SettlementAggregate, error)
	UpdateStatus(ctx context.Context, id string, to settlement.Status, at time.Time) (*settlement.SettlementAggregate, error)
}

// SettlementHandler handles settlement read, transition and export APIs.
type SettlementHandler struct {
	store       SettlementStore
	partners    partner.Lookup
	metrics     *metrics.Metrics
	auditLogger audit.Logger
}

// NewSettlementHandler constructs a handler.
func NewSettlementHandler(store SettlementStore, partners partner.Lookup, m *metrics.Metrics, auditLogger audit.Logger) (*SettlementHandler, error) {
	if store == nil {
		return nil, errors.New("settlement handler: nil store")
	}
	return &SettlementHandler{store: store, partners: partners, metrics: m, auditLogger: auditLogger}, nil
}

// settlementView is the JSON shape of one ledger row.
type settlementView struct {
	ID               string `json:"id"`
	PartnerID        string `json:"partner_id"`
	SettlementMonth  string `json:"settlement_month"`
	BookingsCount    int    `json:"bookings_count"`
	GrossRevenue     string `json:"gross_revenue"`
	CommissionRate   string `json:"commission_rate"`
	CommissionAmount string `json:"commission_amount"`
	NetPayout        string `json:"net_payout"`
	Status           string `json:"status"`
	CreatedAt        string `json:"created_at"`
	PaidAt           string `json:"paid_at,omitempty"`
}

func viewOf(aggregate *settlement.SettlementAggregate) settlementView {
	figures := aggregate.Figures()
	view := settlementView{
		ID:               aggregate.ID(),
		PartnerID:        aggregate.PartnerID(),
		SettlementMonth:  aggregate.MonthStart().Format("2006-01"),
		BookingsCount:    figures.BookingsCount,
		GrossRevenue:     figures.GrossRevenue.String(),
		CommissionRate:   figures.CommissionRate.String(),
		CommissionAmount: figures.CommissionAmount.String(),
		NetPayout:        figures.NetPayout.String(),
		Status:           string(aggregate.Status()),
		CreatedAt:        aggregate.CreatedAt().Format(time.RFC3339),
	}
	if !aggregate.PaidAt().IsZero() {
		view.PaidAt = aggregate.PaidAt().Format(time.RFC3339)
	}
	return view
}

// ServeHTTP handles routes under /api/v1/settlements.
func (h *SettlementHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/api/v1/settlements" && r.Method == http.MethodGet {
		h.handleList(w, r)
		return
	}
	if strings.HasPrefix(path, "/api/v1/settlements/") {
		rest := strings.TrimPrefix(path, "/api/v1/settlements/")
		h.handleByID(w, r, rest)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *SettlementHandler) handleList(w http.ResponseWriter, r *http.Request) {
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
	// "to" is inclusive; the store's upper bound is exclusive
	if !to.IsZero() {
		to = to.AddDate(0, 1, 0)
	}

	list, err := h.store.List(r.Context(), query.Get("partner_id"), from, to)
	if err != nil {
		http.Error(w, "list settlements failed", http.StatusInternalServerError)
		return
	}
	views := make([]settlementView, 0, len(list))
	for _, aggregate := range list {
		views = append(views, viewOf(aggregate))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(views)
}

func (h *SettlementHandler) handleByID(w http.ResponseWriter, r *http.Request, rest string) {
	if rest == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	parts := strings.Split(rest, "/")
	id := parts[0]
	if len(parts) == 1 && r.Method == http.MethodGet {
		h.handleGet(w, r, id)
		return
	}
	if len(parts) == 2 {
		switch parts[1] {
		case "status":
			if r.Method == http.MethodPost {
				h.handleStatus(w, r, id)
				return
			}
		case "export.pdf":
			if r.Method == http.MethodGet {
				h.handleExport(w, r, id, "pdf")
				return
			}
		case "export.xlsx":
			if r.Method == http.MethodGet {
				h.handleExport(w, r, id, "xlsx")
				return
			}
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *SettlementHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	aggregate, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		http.Error(w, "load settlement failed", http.StatusInternalServerError)
		return
	}
	if aggregate == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(viewOf(aggregate))
}

func (h *SettlementHandler) handleStatus(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	status, ok := settlement.NormalizeStatus(req.Status)
	if !ok {
		http.Error(w, "unknown status", http.StatusBadRequest)
		return
	}

	aggregate, err := h.store.UpdateStatus(r.Context(), id, status, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, settlement.ErrSettlementNotFound):
			http.Error(w, "not found", http.StatusNotFound)
		case errors.Is(err, settlement.ErrBackwardTransition):
			http.Error(w, "status may only move forward", http.StatusConflict)
		default:
			http.Error(w, "update status failed", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(viewOf(aggregate))
	h.logAudit(r, aggregate.ID(), "settlement.status", map[string]any{
		"status": string(aggregate.Status()),
	})
}

func (h *SettlementHandler) handleExport(w http.ResponseWriter, r *http.Request, id, format string) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		h.metrics.ObserveExport(format, result, time.Since(start).Seconds())
	}()

	aggregate, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "load settlement failed", http.StatusInternalServerError)
		return
	}
	if aggregate == nil {
		result = metrics.ResultError
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	partnerName := aggregate.PartnerID()
	if h.partners != nil {
		if p, err := h.partners.FindByID(r.Context(), aggregate.PartnerID()); err == nil && p != nil {
			partnerName = p.DisplayName()
		}
	}

	var data []byte
	var contentType string
	switch format {
	case "pdf":
		data, err = BuildSettlementPDF(aggregate, partnerName)
		contentType = "application/pdf"
	case "xlsx":
		data, err = BuildSettlementXLSX(aggregate, partnerName)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	h.logAudit(r, aggregate.ID(), "settlement.export", map[string]any{"format": format})
}

func (h *SettlementHandler) logAudit(r *http.Request, settlementID, action string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	payload, _ := json.Marshal(meta)
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "settlement",
		ResourceID:   settlementID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

// parseMonth parses a "2006-01" month filter; empty means unbounded.
func parseMonth(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01", value)
}
