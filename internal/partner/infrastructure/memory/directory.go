package memory

import (
	"context"
	"sync"

	partner "rental-cloud/internal/partner/domain"
)

// PartnerDirectory is an in-memory directory for tests.
type PartnerDirectory struct {
	mu       sync.RWMutex
	partners []partner.Partner
	err      error
}

// NewPartnerDirectory constructs a directory seeded with partners.
func NewPartnerDirectory(partners ...partner.Partner) *PartnerDirectory {
	return &PartnerDirectory{partners: partners}
}

// FailWith makes subsequent ListActive calls return err.
func (d *PartnerDirectory) FailWith(err error) {
	d.mu.Lock()
	d.err = err
	d.mu.Unlock()
}

// FindByID returns the seeded partner with the given id, nil when absent.
func (d *PartnerDirectory) FindByID(ctx context.Context, id string) (*partner.Partner, error) {
	_ = ctx
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.err != nil {
		return nil, d.err
	}
	for _, p := range d.partners {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, nil
}

// ListActive returns the seeded partners.
func (d *PartnerDirectory) ListActive(ctx context.Context) ([]partner.Partner, error) {
	_ = ctx
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.err != nil {
		return nil, d.err
	}
	out := make([]partner.Partner, len(d.partners))
	copy(out, d.partners)
	return out, nil
}
