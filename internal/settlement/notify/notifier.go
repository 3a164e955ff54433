package notify

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Statement is the notification payload for one created settlement.
type Statement struct {
	PartnerName      string
	RecipientEmail   string
	Month            time.Time
	BookingsCount    int
	GrossRevenue     decimal.Decimal
	CommissionRate   decimal.Decimal
	CommissionAmount decimal.Decimal
	NetPayout        decimal.Decimal
	Currency         string
}

// Notifier delivers settlement statements. Delivery is best-effort:
// callers log failures and never roll back the settlement.
type Notifier interface {
	Send(ctx context.Context, stmt Statement) error
}
