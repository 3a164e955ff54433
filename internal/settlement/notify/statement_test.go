package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestRenderStatement(t *testing.T) {
	stmt := Statement{
		PartnerName:      "Nordic Vans ApS",
		RecipientEmail:   "fleet@nordicvans.example",
		Month:            time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
		BookingsCount:    7,
		GrossRevenue:     decimal.NewFromInt(12345),
		CommissionRate:   decimal.NewFromFloat(0.35),
		CommissionAmount: decimal.NewFromInt(4321),
		NetPayout:        decimal.NewFromInt(8024),
		Currency:         "DKK",
	}

	subject, body, err := RenderStatement(stmt)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(subject, "February 2026") {
		t.Fatalf("subject missing month: %q", subject)
	}
	for _, want := range []string{"Nordic Vans ApS", "12345 DKK", "-4321 DKK", "8024 DKK", "35%"} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q:\n%s", want, body)
		}
	}
}

func TestRenderStatement_RateMatchesStoredFigure(t *testing.T) {
	stmt := Statement{
		PartnerName:    "Partner",
		Month:          time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
		CommissionRate: decimal.NewFromFloat(0.20),
		GrossRevenue:   decimal.NewFromInt(100),
		Currency:       "DKK",
	}
	_, body, err := RenderStatement(stmt)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(body, "20%") {
		t.Fatalf("body must show the stored rate, got:\n%s", body)
	}
}

func TestRenderStatement_EscapesPartnerName(t *testing.T) {
	stmt := Statement{
		PartnerName:  "<script>alert(1)</script>",
		Month:        time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
		GrossRevenue: decimal.Zero,
		Currency:     "DKK",
	}
	_, body, err := RenderStatement(stmt)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(body, "<script>") {
		t.Fatalf("partner name must be escaped")
	}
}
