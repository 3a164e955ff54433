package settlement

import "github.com/shopspring/decimal"

// ComputeCommission derives the commission amount and net payout from
// gross revenue and a commission rate. The commission is rounded to the
// nearest whole currency unit with ties rounding half away from zero;
// the payout is the exact remainder so the two always sum to gross.
func ComputeCommission(gross, rate decimal.Decimal) (commission, net decimal.Decimal, err error) {
	if gross.IsNegative() {
		return decimal.Zero, decimal.Zero, ErrNegativeValue
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, decimal.Zero, ErrInvalidRate
	}
	commission = gross.Mul(rate).Round(0)
	net = gross.Sub(commission)
	return commission, net, nil
}
