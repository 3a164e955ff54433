package rates

import (
	"errors"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	partner "rental-cloud/internal/partner/domain"
)

// Provider resolves the commission rate for a partner tier. The rate
// table is configuration, the single source for every component that
// needs a rate (settlement math and statement rendering alike).
type Provider interface {
	RateFor(tier partner.Tier) (decimal.Decimal, error)
}

// ErrNoRateForTier is returned when a tier has no configured rate.
var ErrNoRateForTier = errors.New("rates: no rate configured for tier")

// TierRateProvider resolves rates from a fixed tier table.
type TierRateProvider struct {
	rates map[partner.Tier]decimal.Decimal
}

// NewTierRateProvider constructs a provider from a tier rate table.
func NewTierRateProvider(rates map[partner.Tier]decimal.Decimal) (*TierRateProvider, error) {
	if len(rates) == 0 {
		return nil, errors.New("rates: empty rate table")
	}
	for tier, rate := range rates {
		if _, ok := partner.NormalizeTier(string(tier)); !ok {
			return nil, partner.ErrUnknownTier
		}
		if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
			return nil, errors.New("rates: rate out of range for tier " + string(tier))
		}
	}
	return &TierRateProvider{rates: rates}, nil
}

// RateFor returns the configured rate for a tier.
func (p *TierRateProvider) RateFor(tier partner.Tier) (decimal.Decimal, error) {
	if p == nil {
		return decimal.Zero, errors.New("rates: nil provider")
	}
	rate, ok := p.rates[tier]
	if !ok {
		return decimal.Zero, ErrNoRateForTier
	}
	return rate, nil
}

// Config is the yaml commission rate table.
type Config struct {
	Rates map[string]float64 `yaml:"rates"`
}

// DefaultRates returns the shipped tier rate table.
func DefaultRates() map[partner.Tier]decimal.Decimal {
	return map[partner.Tier]decimal.Decimal{
		partner.TierPrivate: decimal.NewFromFloat(0.30),
		partner.TierBasic:   decimal.NewFromFloat(0.20),
		partner.TierPremium: decimal.NewFromFloat(0.35),
	}
}

// LoadProvider builds a provider from the yaml file named by the
// COMMISSION_RATES_CONFIG env var, falling back to the default table
// when unset. Configured tiers replace defaults; unmentioned tiers keep
// theirs.
func LoadProvider() (*TierRateProvider, error) {
	table := DefaultRates()

	if path := os.Getenv("COMMISSION_RATES_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var cfg Config
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
		for name, value := range cfg.Rates {
			tier, ok := partner.NormalizeTier(name)
			if !ok {
				return nil, partner.ErrUnknownTier
			}
			table[tier] = decimal.NewFromFloat(value)
		}
	}

	return NewTierRateProvider(table)
}
