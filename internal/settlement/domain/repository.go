package settlement

import (
	"context"
	"time"
)

// Repository persists settlement aggregates. Create is the only write
// the engine performs for new settlements; it must return
// ErrAlreadySettled when a settlement for the same (partner, month)
// pair exists, enforced by the persistence layer, not by a preceding
// read.
type Repository interface {
	Create(ctx context.Context, aggregate *SettlementAggregate) error
	FindByPartnerAndMonth(ctx context.Context, partnerID string, monthStart time.Time) (*SettlementAggregate, error)
}
