package settlement

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestComputeCommission_BasicTier(t *testing.T) {
	gross := decimal.NewFromInt(10000)
	rate := decimal.NewFromFloat(0.20)

	commission, net, err := ComputeCommission(gross, rate)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !commission.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("commission = %s, want 2000", commission)
	}
	if !net.Equal(decimal.NewFromInt(8000)) {
		t.Fatalf("net = %s, want 8000", net)
	}
}

func TestComputeCommission_PremiumTierRoundsHalfAwayFromZero(t *testing.T) {
	gross := decimal.NewFromInt(12345)
	rate := decimal.NewFromFloat(0.35)

	// 12345 * 0.35 = 4320.75 -> 4321
	commission, net, err := ComputeCommission(gross, rate)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !commission.Equal(decimal.NewFromInt(4321)) {
		t.Fatalf("commission = %s, want 4321", commission)
	}
	if !net.Equal(decimal.NewFromInt(8024)) {
		t.Fatalf("net = %s, want 8024", net)
	}
}

func TestComputeCommission_TieRoundsAwayFromZero(t *testing.T) {
	// 1 * 0.5 = 0.5 -> 1
	commission, net, err := ComputeCommission(decimal.NewFromInt(1), decimal.NewFromFloat(0.5))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !commission.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("commission = %s, want 1", commission)
	}
	if !net.Equal(decimal.Zero) {
		t.Fatalf("net = %s, want 0", net)
	}
}

func TestComputeCommission_ZeroRevenue(t *testing.T) {
	commission, net, err := ComputeCommission(decimal.Zero, decimal.NewFromFloat(0.30))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !commission.Equal(decimal.Zero) || !net.Equal(decimal.Zero) {
		t.Fatalf("expected zero figures, got commission=%s net=%s", commission, net)
	}
}

func TestComputeCommission_SumsToGross(t *testing.T) {
	cases := []struct {
		gross int64
		rate  float64
	}{
		{10000, 0.20},
		{12345, 0.35},
		{9999, 0.30},
		{1, 0.35},
		{777, 0.20},
	}
	for _, tc := range cases {
		gross := decimal.NewFromInt(tc.gross)
		commission, net, err := ComputeCommission(gross, decimal.NewFromFloat(tc.rate))
		if err != nil {
			t.Fatalf("compute(%d, %v): %v", tc.gross, tc.rate, err)
		}
		if !commission.Add(net).Equal(gross) {
			t.Fatalf("commission %s + net %s != gross %s", commission, net, gross)
		}
	}
}

func TestComputeCommission_RejectsNegativeGross(t *testing.T) {
	_, _, err := ComputeCommission(decimal.NewFromInt(-1), decimal.NewFromFloat(0.2))
	if !errors.Is(err, ErrNegativeValue) {
		t.Fatalf("expected ErrNegativeValue, got %v", err)
	}
}

func TestComputeCommission_RejectsRateAboveOne(t *testing.T) {
	_, _, err := ComputeCommission(decimal.NewFromInt(100), decimal.NewFromFloat(1.5))
	if !errors.Is(err, ErrInvalidRate) {
		t.Fatalf("expected ErrInvalidRate, got %v", err)
	}
}
