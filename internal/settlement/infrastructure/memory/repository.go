package memory

import (
	"context"
	"sync"
	"time"

	settlement "rental-cloud/internal/settlement/domain"
)

// SettlementRepository is an in-memory ledger enforcing the same
// (partner, month) uniqueness as the Postgres constraint.
type SettlementRepository struct {
	mu   sync.Mutex
	data map[string]*settlement.SettlementAggregate
	errs map[string]error
}

// NewSettlementRepository constructs a repository.
func NewSettlementRepository() *SettlementRepository {
	return &SettlementRepository{
		data: make(map[string]*settlement.SettlementAggregate),
		errs: make(map[string]error),
	}
}

// FailCreateFor makes Create for the given partner return err,
// simulating a transient write failure.
func (r *SettlementRepository) FailCreateFor(partnerID string, err error) {
	r.mu.Lock()
	r.errs[partnerID] = err
	r.mu.Unlock()
}

func key(partnerID string, monthStart time.Time) (string, error) {
	timeKey, err := settlement.NewMonthTimeKey(monthStart)
	if err != nil {
		return "", err
	}
	return partnerID + "|" + timeKey.String(), nil
}

// Create inserts a settlement or returns ErrAlreadySettled. The check
// and insert happen under one lock, mirroring the atomicity of the
// constrained insert.
func (r *SettlementRepository) Create(ctx context.Context, aggregate *settlement.SettlementAggregate) error {
	_ = ctx
	if aggregate == nil {
		return settlement.ErrNilAggregate
	}
	id, err := key(aggregate.PartnerID(), aggregate.MonthStart())
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.errs[aggregate.PartnerID()]; err != nil {
		return err
	}
	if _, exists := r.data[id]; exists {
		return settlement.ErrAlreadySettled
	}
	r.data[id] = aggregate.Clone()
	aggregate.MarkPersisted()
	return nil
}

// FindByPartnerAndMonth loads a settlement, nil when absent.
func (r *SettlementRepository) FindByPartnerAndMonth(ctx context.Context, partnerID string, monthStart time.Time) (*settlement.SettlementAggregate, error) {
	_ = ctx
	if partnerID == "" {
		return nil, settlement.ErrEmptyPartnerID
	}
	id, err := key(partnerID, monthStart)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	agg := r.data[id]
	r.mu.Unlock()
	if agg == nil {
		return nil, nil
	}
	return agg.Clone(), nil
}

// Count returns the number of stored settlements.
func (r *SettlementRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.data)
}
