package interfaces

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	partner "rental-cloud/internal/partner/domain"
	"rental-cloud/internal/partner/infrastructure/memory"
)

func TestPartnersList(t *testing.T) {
	directory := memory.NewPartnerDirectory(
		partner.Partner{ID: "p-1", Email: "one@example.com", CompanyName: "Fleet One ApS", Tier: partner.TierPremium},
		partner.Partner{ID: "p-2", Email: "two@example.com", Tier: partner.TierPrivate},
	)
	h, err := NewHandler(directory)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/partners", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var views []partnerView
	if err := json.NewDecoder(rec.Body).Decode(&views); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("rows = %d", len(views))
	}
	if views[0].DisplayName != "Fleet One ApS" || views[0].Tier != "premium" {
		t.Fatalf("view = %+v", views[0])
	}
	if views[1].DisplayName != "Partner" {
		t.Fatalf("fallback display name = %q", views[1].DisplayName)
	}
}

func TestPartnersListRejectsPost(t *testing.T) {
	h, err := NewHandler(memory.NewPartnerDirectory())
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/partners", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}
