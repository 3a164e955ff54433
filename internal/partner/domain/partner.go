package partner

import "context"

// Tier classifies a fleet partner's commission plan.
type Tier string

const (
	TierPrivate Tier = "private"
	TierBasic   Tier = "basic"
	TierPremium Tier = "premium"
)

// NormalizeTier validates and normalizes a tier string.
func NormalizeTier(value string) (Tier, bool) {
	switch Tier(value) {
	case TierPrivate, TierBasic, TierPremium:
		return Tier(value), true
	default:
		return "", false
	}
}

// Partner is a rental account enrolled in a fleet commission plan.
// A deactivated partner has no tier and is excluded from settlement
// runs; its past settlements are untouched.
type Partner struct {
	ID          string
	Email       string
	FullName    string
	CompanyName string
	Tier        Tier
}

// DisplayName resolves the name used on statements.
func (p Partner) DisplayName() string {
	if p.CompanyName != "" {
		return p.CompanyName
	}
	if p.FullName != "" {
		return p.FullName
	}
	return "Partner"
}

// Directory resolves the partners eligible for settlement.
type Directory interface {
	ListActive(ctx context.Context) ([]Partner, error)
}

// Lookup resolves a single partner, nil when absent.
type Lookup interface {
	FindByID(ctx context.Context, id string) (*Partner, error)
}
