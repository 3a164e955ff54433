package postgres

import (
	"context"
	"database/sql"
	"errors"

	partner "rental-cloud/internal/partner/domain"
)

const defaultProfilesTable = "profiles"

// PartnerDirectory reads fleet partners from the profiles table.
type PartnerDirectory struct {
	db    *sql.DB
	table string
}

// NewPartnerDirectory constructs a directory with defaults.
func NewPartnerDirectory(db *sql.DB, opts ...DirectoryOption) *PartnerDirectory {
	dir := &PartnerDirectory{db: db, table: defaultProfilesTable}
	for _, opt := range opts {
		opt(dir)
	}
	return dir
}

// DirectoryOption configures the directory.
type DirectoryOption func(*PartnerDirectory)

// WithTable overrides the default table.
func WithTable(table string) DirectoryOption {
	return func(dir *PartnerDirectory) {
		if table != "" {
			dir.table = table
		}
	}
}

// ListActive returns all partners currently enrolled in a fleet plan.
// The result is empty, never nil, when no partner is active.
func (d *PartnerDirectory) ListActive(ctx context.Context) ([]partner.Partner, error) {
	if d == nil || d.db == nil {
		return nil, errors.New("partner directory: nil db")
	}

	rows, err := d.db.QueryContext(ctx, `
SELECT id, email, COALESCE(full_name, ''), COALESCE(company_name, ''), fleet_plan
FROM `+d.table+`
WHERE fleet_plan IN ('private', 'basic', 'premium')
ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	partners := make([]partner.Partner, 0)
	for rows.Next() {
		var p partner.Partner
		var plan string
		if err := rows.Scan(&p.ID, &p.Email, &p.FullName, &p.CompanyName, &plan); err != nil {
			return nil, err
		}
		tier, ok := partner.NormalizeTier(plan)
		if !ok {
			return nil, partner.ErrUnknownTier
		}
		p.Tier = tier
		partners = append(partners, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return partners, nil
}

// FindByID loads a single partner, nil when absent or not enrolled.
func (d *PartnerDirectory) FindByID(ctx context.Context, id string) (*partner.Partner, error) {
	if d == nil || d.db == nil {
		return nil, errors.New("partner directory: nil db")
	}

	row := d.db.QueryRowContext(ctx, `
SELECT id, email, COALESCE(full_name, ''), COALESCE(company_name, ''), fleet_plan
FROM `+d.table+`
WHERE id = $1 AND fleet_plan IN ('private', 'basic', 'premium')`, id)

	var p partner.Partner
	var plan string
	if err := row.Scan(&p.ID, &p.Email, &p.FullName, &p.CompanyName, &plan); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	tier, ok := partner.NormalizeTier(plan)
	if !ok {
		return nil, partner.ErrUnknownTier
	}
	p.Tier = tier
	return &p, nil
}
