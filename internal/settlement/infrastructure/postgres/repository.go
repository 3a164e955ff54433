package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	settlement "rental-cloud/internal/settlement/domain"
)

const defaultSettlementsTable = "fleet_settlements"

// SettlementRepository is a Postgres implementation of the settlement
// ledger. Creation relies on the table's uniqueness constraint on
// (lessor_id, settlement_month); that constraint is the only
// concurrency control between overlapping runs.
type SettlementRepository struct {
	db    *sql.DB
	table string
}

// NewSettlementRepository constructs a repository with defaults.
func NewSettlementRepository(db *sql.DB, opts ...RepositoryOption) *SettlementRepository {
	repo := &SettlementRepository{db: db, table: defaultSettlementsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// RepositoryOption configures the repository.
type RepositoryOption func(*SettlementRepository)

// WithTable overrides the default table.
func WithTable(table string) RepositoryOption {
	return func(repo *SettlementRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// Create inserts a settlement, returning ErrAlreadySettled when a row
// for the same (partner, month) already exists. ON CONFLICT DO NOTHING
// makes the insert race-safe: of two concurrent runs exactly one
// insert lands, the other observes zero rows affected.
func (r *SettlementRepository) Create(ctx context.Context, aggregate *settlement.SettlementAggregate) error {
	if r == nil || r.db == nil {
		return errors.New("settlement repo: nil db")
	}
	if aggregate == nil {
		return settlement.ErrNilAggregate
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	lessor_id,
	settlement_month,
	total_revenue,
	commission_rate,
	commission_amount,
	net_payout,
	bookings_count,
	status,
	created_at,
	updated_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10
)
ON CONFLICT (lessor_id, settlement_month) DO NOTHING`, r.table)

	figures := aggregate.Figures()
	result, err := r.db.ExecContext(
		ctx,
		query,
		aggregate.ID(),
		aggregate.PartnerID(),
		aggregate.MonthStart().UTC(),
		figures.GrossRevenue,
		figures.CommissionRate,
		figures.CommissionAmount,
		figures.NetPayout,
		figures.BookingsCount,
		string(aggregate.Status()),
		aggregate.CreatedAt().UTC(),
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return settlement.ErrAlreadySettled
	}

	aggregate.MarkPersisted()
	return nil
}

// FindByPartnerAndMonth loads a settlement, nil when absent.
func (r *SettlementRepository) FindByPartnerAndMonth(ctx context.Context, partnerID string, monthStart time.Time) (*settlement.SettlementAggregate, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("settlement repo: nil db")
	}
	if partnerID == "" {
		return nil, settlement.ErrEmptyPartnerID
	}

	query := fmt.Sprintf(`
SELECT id, lessor_id, settlement_month, total_revenue, commission_rate,
	commission_amount, net_payout, bookings_count, status, created_at, paid_at
FROM %s
WHERE lessor_id = $1 AND settlement_month = $2
LIMIT 1`, r.table)

	row := r.db.QueryRowContext(ctx, query, partnerID, monthStart.UTC())
	agg, err := scanSettlement(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return agg, nil
}

// GetByID loads a settlement by id, nil when absent.
func (r *SettlementRepository) GetByID(ctx context.Context, id string) (*settlement.SettlementAggregate, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("settlement repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT id, lessor_id, settlement_month, total_revenue, commission_rate,
	commission_amount, net_payout, bookings_count, status, created_at, paid_at
FROM %s
WHERE id = $1
LIMIT 1`, r.table)

	row := r.db.QueryRowContext(ctx, query, id)
	agg, err := scanSettlement(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return agg, nil
}

// List returns settlements for a month range, optionally filtered by
// partner, newest month first. Zero bounds mean unbounded.
func (r *SettlementRepository) List(ctx context.Context, partnerID string, from, to time.Time) ([]*settlement.SettlementAggregate, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("settlement repo: nil db")
	}
	if to.IsZero() {
		to = time.Date(9999, time.January, 1, 0, 0, 0, 0, time.UTC)
	}

	query := fmt.Sprintf(`
SELECT id, lessor_id, settlement_month, total_revenue, commission_rate,
	commission_amount, net_payout, bookings_count, status, created_at, paid_at
FROM %s
WHERE settlement_month >= $1 AND settlement_month < $2
	AND ($3 = '' OR lessor_id = $3)
ORDER BY settlement_month DESC, lessor_id ASC`, r.table)

	rows, err := r.db.QueryContext(ctx, query, from.UTC(), to.UTC(), partnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*settlement.SettlementAggregate, 0)
	for rows.Next() {
		agg, err := scanSettlement(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateStatus moves a settlement's status forward. The update is
// guarded by the current status so concurrent transitions cannot step
// on each other; financial fields are never touched.
func (r *SettlementRepository) UpdateStatus(ctx context.Context, id string, to settlement.Status, at time.Time) (*settlement.SettlementAggregate, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("settlement repo: nil db")
	}

	agg, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if agg == nil {
		return nil, settlement.ErrSettlementNotFound
	}
	from := agg.Status()
	if err := agg.TransitionTo(to, at); err != nil {
		return nil, err
	}

	var paidAt sql.NullTime
	if !agg.PaidAt().IsZero() {
		paidAt = sql.NullTime{Time: agg.PaidAt(), Valid: true}
	}

	query := fmt.Sprintf(`
UPDATE %s
SET status = $1, paid_at = $2, updated_at = $3
WHERE id = $4 AND status = $5`, r.table)

	result, err := r.db.ExecContext(ctx, query, string(to), paidAt, at.UTC(), id, string(from))
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, settlement.ErrBackwardTransition
	}
	return agg, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSettlement(row rowScanner) (*settlement.SettlementAggregate, error) {
	var (
		id         string
		partnerID  string
		monthStart time.Time
		gross      decimal.Decimal
		rate       decimal.Decimal
		commission decimal.Decimal
		payout     decimal.Decimal
		count      int
		status     string
		createdAt  time.Time
		paidAt     sql.NullTime
	)
	if err := row.Scan(&id, &partnerID, &monthStart, &gross, &rate, &commission, &payout, &count, &status, &createdAt, &paidAt); err != nil {
		return nil, err
	}

	figures := settlement.Figures{
		GrossRevenue:     gross,
		CommissionRate:   rate,
		CommissionAmount: commission,
		NetPayout:        payout,
		BookingsCount:    count,
	}
	var paid time.Time
	if paidAt.Valid {
		paid = paidAt.Time
	}
	return settlement.Rehydrate(id, partnerID, monthStart, figures, settlement.Status(status), createdAt, paid)
}
