package settlement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Figures holds the computed financial fields of a settlement.
type Figures struct {
	GrossRevenue     decimal.Decimal
	CommissionRate   decimal.Decimal
	CommissionAmount decimal.Decimal
	NetPayout        decimal.Decimal
	BookingsCount    int
}

// SettlementAggregate is the immutable monthly financial record for one
// partner. Identity: partner id + month time key; the pair is the
// idempotency key enforced by the persistence layer.
type SettlementAggregate struct {
	id         string
	partnerID  string
	monthStart time.Time
	timeKey    TimeKey

	figures Figures

	status    Status
	createdAt time.Time
	paidAt    time.Time

	isNew bool
}

// NewMonthlySettlement creates a pending settlement for a partner month.
func NewMonthlySettlement(partnerID string, monthStart time.Time, figures Figures, createdAt time.Time) (*SettlementAggregate, error) {
	if partnerID == "" {
		return nil, ErrEmptyPartnerID
	}
	key, err := NewMonthTimeKey(monthStart)
	if err != nil {
		return nil, err
	}
	if figures.GrossRevenue.IsNegative() || figures.CommissionAmount.IsNegative() || figures.BookingsCount < 0 {
		return nil, ErrNegativeValue
	}
	if figures.CommissionRate.IsNegative() || figures.CommissionRate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, ErrInvalidRate
	}

	return &SettlementAggregate{
		id:         uuid.NewString(),
		partnerID:  partnerID,
		monthStart: monthStart.UTC(),
		timeKey:    key,
		figures:    figures,
		status:     StatusPending,
		createdAt:  createdAt.UTC(),
		isNew:      true,
	}, nil
}

// Rehydrate rebuilds a persisted settlement from stored fields.
func Rehydrate(id, partnerID string, monthStart time.Time, figures Figures, status Status, createdAt, paidAt time.Time) (*SettlementAggregate, error) {
	if partnerID == "" {
		return nil, ErrEmptyPartnerID
	}
	key, err := NewMonthTimeKey(monthStart)
	if err != nil {
		return nil, err
	}
	if _, ok := NormalizeStatus(string(status)); !ok {
		return nil, ErrUnknownStatus
	}

	return &SettlementAggregate{
		id:         id,
		partnerID:  partnerID,
		monthStart: monthStart.UTC(),
		timeKey:    key,
		figures:    figures,
		status:     status,
		createdAt:  createdAt,
		paidAt:     paidAt,
	}, nil
}

// TransitionTo moves the status forward. Backward moves are rejected.
func (a *SettlementAggregate) TransitionTo(status Status, at time.Time) error {
	if _, ok := NormalizeStatus(string(status)); !ok {
		return ErrUnknownStatus
	}
	if !CanTransition(a.status, status) {
		return ErrBackwardTransition
	}
	a.status = status
	if status == StatusPaid {
		a.paidAt = at.UTC()
	}
	return nil
}

// ID returns the aggregate identity.
func (a *SettlementAggregate) ID() string { return a.id }

// PartnerID returns the partner id.
func (a *SettlementAggregate) PartnerID() string { return a.partnerID }

// MonthStart returns the first day of the settled month.
func (a *SettlementAggregate) MonthStart() time.Time { return a.monthStart }

// TimeKey returns the month time key.
func (a *SettlementAggregate) TimeKey() string { return a.timeKey.String() }

// Figures returns the financial fields.
func (a *SettlementAggregate) Figures() Figures { return a.figures }

// Status returns the current lifecycle state.
func (a *SettlementAggregate) Status() Status { return a.status }

// CreatedAt returns the creation timestamp.
func (a *SettlementAggregate) CreatedAt() time.Time { return a.createdAt }

// PaidAt returns the payout confirmation timestamp, zero until paid.
func (a *SettlementAggregate) PaidAt() time.Time { return a.paidAt }

// IsNew reports whether the aggregate was freshly created.
func (a *SettlementAggregate) IsNew() bool { return a.isNew }

// MarkPersisted marks the aggregate as persisted.
func (a *SettlementAggregate) MarkPersisted() {
	if a != nil {
		a.isNew = false
	}
}

// Clone returns a detached copy marked as persisted.
func (a *SettlementAggregate) Clone() *SettlementAggregate {
	if a == nil {
		return nil
	}
	copy := *a
	copy.isNew = false
	return &copy
}
