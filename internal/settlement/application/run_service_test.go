package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	partner "rental-cloud/internal/partner/domain"
	partnermem "rental-cloud/internal/partner/infrastructure/memory"
	"rental-cloud/internal/settlement/adapters/bookings"
	settlement "rental-cloud/internal/settlement/domain"
	settlementmem "rental-cloud/internal/settlement/infrastructure/memory"
	"rental-cloud/internal/settlement/infrastructure/rates"
	"rental-cloud/internal/settlement/notify"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type stubRevenueReader struct {
	revenues map[string]bookings.Revenue
	errs     map[string]error
}

func (r *stubRevenueReader) SumCompleted(ctx context.Context, partnerID string, window settlement.Window) (bookings.Revenue, error) {
	_ = ctx
	_ = window
	if err, ok := r.errs[partnerID]; ok {
		return bookings.Revenue{}, err
	}
	rev, ok := r.revenues[partnerID]
	if !ok {
		return bookings.Revenue{Gross: decimal.Zero}, nil
	}
	return rev, nil
}

type recordingNotifier struct {
	sent []notify.Statement
	err  error
}

func (n *recordingNotifier) Send(ctx context.Context, stmt notify.Statement) error {
	_ = ctx
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, stmt)
	return nil
}

func rateProvider(t *testing.T) rates.Provider {
	t.Helper()
	p, err := rates.NewTierRateProvider(rates.DefaultRates())
	if err != nil {
		t.Fatalf("rate provider: %v", err)
	}
	return p
}

func newService(t *testing.T, directory partner.Directory, revenue RevenueReader, ledger settlement.Repository, opts ...RunOption) *RunService {
	t.Helper()
	clock := fixedClock{now: time.Date(2026, time.March, 5, 9, 0, 0, 0, time.UTC)}
	svc, err := NewRunService(directory, revenue, rateProvider(t), ledger, clock, nil, opts...)
	if err != nil {
		t.Fatalf("new run service: %v", err)
	}
	return svc
}

func detailFor(t *testing.T, summary *RunSummary, partnerID string) PartnerResult {
	t.Helper()
	for _, d := range summary.Details {
		if d.PartnerID == partnerID {
			return d
		}
	}
	t.Fatalf("no detail for partner %s", partnerID)
	return PartnerResult{}
}

func TestRunSettlesAllActivePartners(t *testing.T) {
	directory := partnermem.NewPartnerDirectory(
		partner.Partner{ID: "p-basic", Email: "basic@example.com", CompanyName: "Basic Fleet ApS", Tier: partner.TierBasic},
		partner.Partner{ID: "p-premium", Email: "premium@example.com", FullName: "Pia Premium", Tier: partner.TierPremium},
		partner.Partner{ID: "p-private", Email: "private@example.com", Tier: partner.TierPrivate},
	)
	revenue := &stubRevenueReader{revenues: map[string]bookings.Revenue{
		"p-basic":   {Gross: decimal.NewFromInt(10000), Count: 7},
		"p-premium": {Gross: decimal.NewFromInt(12345), Count: 3},
	}}
	ledger := settlementmem.NewSettlementRepository()
	notifier := &recordingNotifier{}

	svc := newService(t, directory, revenue, ledger, WithNotifier(notifier))
	summary, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.SettlementsCreated != 3 || summary.SettlementsSkipped != 0 || summary.PartnersFailed != 0 {
		t.Fatalf("summary = %+v, want 3 created", summary)
	}
	wantMonth := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	if !summary.SettlementMonth.Equal(wantMonth) {
		t.Fatalf("settlement month = %s, want %s", summary.SettlementMonth, wantMonth)
	}

	basic, err := ledger.FindByPartnerAndMonth(context.Background(), "p-basic", wantMonth)
	if err != nil || basic == nil {
		t.Fatalf("find basic: %v %v", basic, err)
	}
	figures := basic.Figures()
	if figures.CommissionAmount.String() != "2000" || figures.NetPayout.String() != "8000" {
		t.Fatalf("basic figures = commission %s net %s", figures.CommissionAmount, figures.NetPayout)
	}
	if figures.BookingsCount != 7 {
		t.Fatalf("basic bookings count = %d", figures.BookingsCount)
	}

	premium, err := ledger.FindByPartnerAndMonth(context.Background(), "p-premium", wantMonth)
	if err != nil || premium == nil {
		t.Fatalf("find premium: %v %v", premium, err)
	}
	if got := premium.Figures().CommissionAmount.String(); got != "4321" {
		t.Fatalf("premium commission = %s, want 4321", got)
	}

	if len(notifier.sent) != 3 {
		t.Fatalf("notifications sent = %d, want 3", len(notifier.sent))
	}
	for _, d := range summary.Details {
		if !d.NotifySent {
			t.Fatalf("detail %s missing notify_sent", d.PartnerID)
		}
	}
}

func TestRunSettlesZeroActivityPartner(t *testing.T) {
	directory := partnermem.NewPartnerDirectory(
		partner.Partner{ID: "p-idle", Email: "idle@example.com", Tier: partner.TierPrivate},
	)
	ledger := settlementmem.NewSettlementRepository()

	svc := newService(t, directory, &stubRevenueReader{}, ledger)
	summary, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.SettlementsCreated != 1 {
		t.Fatalf("created = %d, want 1", summary.SettlementsCreated)
	}
	month := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	agg, err := ledger.FindByPartnerAndMonth(context.Background(), "p-idle", month)
	if err != nil || agg == nil {
		t.Fatalf("find: %v %v", agg, err)
	}
	figures := agg.Figures()
	if !figures.GrossRevenue.IsZero() || !figures.CommissionAmount.IsZero() || !figures.NetPayout.IsZero() {
		t.Fatalf("zero-activity figures = %+v", figures)
	}
	if figures.BookingsCount != 0 {
		t.Fatalf("bookings count = %d, want 0", figures.BookingsCount)
	}
}

func TestRunIsIdempotentAcrossInvocations(t *testing.T) {
	directory := partnermem.NewPartnerDirectory(
		partner.Partner{ID: "p-1", Email: "one@example.com", Tier: partner.TierBasic},
		partner.Partner{ID: "p-2", Email: "two@example.com", Tier: partner.TierPremium},
	)
	revenue := &stubRevenueReader{revenues: map[string]bookings.Revenue{
		"p-1": {Gross: decimal.NewFromInt(500), Count: 1},
	}}
	ledger := settlementmem.NewSettlementRepository()
	notifier := &recordingNotifier{}

	svc := newService(t, directory, revenue, ledger, WithNotifier(notifier))
	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.SettlementsCreated != 0 || second.SettlementsSkipped != 2 || second.PartnersFailed != 0 {
		t.Fatalf("second summary = %+v, want all skipped", second)
	}
	if ledger.Count() != 2 {
		t.Fatalf("ledger rows = %d, want 2", ledger.Count())
	}
	// skipped partners must not be re-notified
	if len(notifier.sent) != 2 {
		t.Fatalf("notifications sent = %d, want 2", len(notifier.sent))
	}
}

func TestRunIsolatesPartnerFailures(t *testing.T) {
	directory := partnermem.NewPartnerDirectory(
		partner.Partner{ID: "p-ok", Email: "ok@example.com", Tier: partner.TierBasic},
		partner.Partner{ID: "p-broken", Email: "broken@example.com", Tier: partner.TierBasic},
		partner.Partner{ID: "p-write-fail", Email: "wf@example.com", Tier: partner.TierBasic},
	)
	revenue := &stubRevenueReader{
		revenues: map[string]bookings.Revenue{"p-ok": {Gross: decimal.NewFromInt(100), Count: 1}},
		errs:     map[string]error{"p-broken": errors.New("bookings store unavailable")},
	}
	ledger := settlementmem.NewSettlementRepository()
	ledger.FailCreateFor("p-write-fail", errors.New("connection reset"))

	svc := newService(t, directory, revenue, ledger)
	summary, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.SettlementsCreated != 1 || summary.PartnersFailed != 2 {
		t.Fatalf("summary = %+v, want 1 created 2 failed", summary)
	}
	broken := detailFor(t, summary, "p-broken")
	if broken.Outcome != OutcomeFailed || broken.Error == "" {
		t.Fatalf("broken detail = %+v", broken)
	}
	if d := detailFor(t, summary, "p-ok"); d.Outcome != OutcomeCreated {
		t.Fatalf("ok detail = %+v", d)
	}
}

func TestRunNotificationFailureDoesNotRollBack(t *testing.T) {
	directory := partnermem.NewPartnerDirectory(
		partner.Partner{ID: "p-1", Email: "one@example.com", Tier: partner.TierPremium},
	)
	revenue := &stubRevenueReader{revenues: map[string]bookings.Revenue{
		"p-1": {Gross: decimal.NewFromInt(1000), Count: 2},
	}}
	ledger := settlementmem.NewSettlementRepository()
	notifier := &recordingNotifier{err: errors.New("smtp: connection refused")}

	svc := newService(t, directory, revenue, ledger, WithNotifier(notifier))
	summary, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.SettlementsCreated != 1 || summary.PartnersFailed != 0 {
		t.Fatalf("summary = %+v, want created despite notify failure", summary)
	}
	detail := detailFor(t, summary, "p-1")
	if detail.NotifySent {
		t.Fatal("notify_sent should be false")
	}
	if detail.NotifyError == "" {
		t.Fatal("notify_error should be recorded")
	}
	if ledger.Count() != 1 {
		t.Fatalf("ledger rows = %d, want 1", ledger.Count())
	}
}

func TestRunAbortsWhenRegistryUnavailable(t *testing.T) {
	directory := partnermem.NewPartnerDirectory()
	directory.FailWith(errors.New("registry timeout"))
	ledger := settlementmem.NewSettlementRepository()

	svc := newService(t, directory, &stubRevenueReader{}, ledger)
	if _, err := svc.Run(context.Background()); err == nil {
		t.Fatal("expected run to fail when registry is unavailable")
	}
	if ledger.Count() != 0 {
		t.Fatalf("ledger rows = %d, want 0", ledger.Count())
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	var partners []partner.Partner
	for i := 0; i < 20; i++ {
		partners = append(partners, partner.Partner{
			ID:    "p-" + string(rune('a'+i)),
			Email: "p@example.com",
			Tier:  partner.TierBasic,
		})
	}
	directory := partnermem.NewPartnerDirectory(partners...)
	revenue := &countingRevenueReader{limit: 2, t: t}
	ledger := settlementmem.NewSettlementRepository()

	svc := newService(t, directory, revenue, ledger, WithConcurrency(2))
	summary, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.SettlementsCreated != 20 {
		t.Fatalf("created = %d, want 20", summary.SettlementsCreated)
	}
}

type countingRevenueReader struct {
	mu      sync.Mutex
	active  int
	limit   int
	t       *testing.T
	tripped bool
}

func (r *countingRevenueReader) SumCompleted(ctx context.Context, partnerID string, window settlement.Window) (bookings.Revenue, error) {
	_ = ctx
	_ = partnerID
	_ = window
	r.mu.Lock()
	r.active++
	if r.active > r.limit && !r.tripped {
		r.tripped = true
		r.t.Errorf("concurrency exceeded limit %d", r.limit)
	}
	r.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	r.mu.Lock()
	r.active--
	r.mu.Unlock()
	return bookings.Revenue{Gross: decimal.NewFromInt(10), Count: 1}, nil
}
