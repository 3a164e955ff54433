package bookings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	settlement "rental-cloud/internal/settlement/domain"
)

const defaultBookingsTable = "bookings"

// Revenue is the aggregated billable activity of one partner for a
// settlement window.
type Revenue struct {
	Gross decimal.Decimal
	Count int
}

// RevenueReader sums completed-booking revenue for a partner window.
type RevenueReader struct {
	db    *sql.DB
	table string
}

// NewRevenueReader constructs a reader.
func NewRevenueReader(db *sql.DB, opts ...ReaderOption) *RevenueReader {
	reader := &RevenueReader{db: db, table: defaultBookingsTable}
	for _, opt := range opts {
		opt(reader)
	}
	return reader
}

// ReaderOption configures the reader.
type ReaderOption func(*RevenueReader)

// WithTable overrides the bookings table name.
func WithTable(table string) ReaderOption {
	return func(reader *RevenueReader) {
		if reader != nil && table != "" {
			reader.table = table
		}
	}
}

// SumCompleted returns total gross revenue and booking count for the
// partner's completed bookings ending inside the window. Zero bookings
// is a valid outcome: Gross 0, Count 0, no error.
func (r *RevenueReader) SumCompleted(ctx context.Context, partnerID string, window settlement.Window) (Revenue, error) {
	if r == nil || r.db == nil {
		return Revenue{}, errors.New("booking revenue reader: nil db")
	}
	if partnerID == "" {
		return Revenue{}, settlement.ErrEmptyPartnerID
	}
	if window.From.IsZero() || window.To.IsZero() || !window.To.After(window.From) {
		return Revenue{}, settlement.ErrInvalidMonthStart
	}

	query := fmt.Sprintf(`
SELECT COALESCE(SUM(total_price), 0), COUNT(*)
FROM %s
WHERE lessor_id = $1 AND status = 'completed' AND end_date >= $2 AND end_date < $3`, r.table)

	var gross decimal.Decimal
	var count int
	row := r.db.QueryRowContext(ctx, query, partnerID, window.From.UTC(), window.To.UTC())
	if err := row.Scan(&gross, &count); err != nil {
		return Revenue{}, err
	}
	return Revenue{Gross: gross, Count: count}, nil
}
