package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"rental-cloud/internal/observability/metrics"
	partner "rental-cloud/internal/partner/domain"
	"rental-cloud/internal/settlement/adapters/bookings"
	settlement "rental-cloud/internal/settlement/domain"
	"rental-cloud/internal/settlement/infrastructure/rates"
	"rental-cloud/internal/settlement/notify"
)

// Outcome classifies a partner's result within one run.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// PartnerResult is the per-partner entry of a run summary.
type PartnerResult struct {
	PartnerID    string  `json:"partner_id"`
	Outcome      Outcome `json:"outcome"`
	SettlementID string  `json:"settlement_id,omitempty"`
	Error        string  `json:"error,omitempty"`
	NotifySent   bool    `json:"notify_sent"`
	NotifyError  string  `json:"notify_error,omitempty"`
}

// RunSummary is the result of one settlement batch invocation.
type RunSummary struct {
	RunID              string          `json:"run_id"`
	SettlementMonth    time.Time       `json:"settlement_month"`
	SettlementsCreated int             `json:"settlements_created"`
	SettlementsSkipped int             `json:"settlements_skipped"`
	PartnersFailed     int             `json:"partners_failed"`
	Details            []PartnerResult `json:"details"`
}

// RevenueReader sums completed-booking revenue for a partner window.
type RevenueReader interface {
	SumCompleted(ctx context.Context, partnerID string, window settlement.Window) (bookings.Revenue, error)
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

const (
	defaultConcurrency    = 4
	defaultPartnerTimeout = 30 * time.Second
)

// RunService drives one settlement batch: for every active partner it
// aggregates the previous month's completed bookings, computes the
// commission, attempts the idempotent ledger insert and sends the
// statement best-effort. Partner-level failures never abort the batch.
type RunService struct {
	partners       partner.Directory
	revenue        RevenueReader
	rates          rates.Provider
	ledger         settlement.Repository
	notifier       notify.Notifier
	clock          Clock
	logger         *log.Logger
	metrics        *metrics.Metrics
	currency       string
	concurrency    int
	partnerTimeout time.Duration
}

// RunOption configures the service.
type RunOption func(*RunService)

// WithConcurrency bounds the partner fan-out.
func WithConcurrency(n int) RunOption {
	return func(s *RunService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithPartnerTimeout bounds the time spent on one partner.
func WithPartnerTimeout(d time.Duration) RunOption {
	return func(s *RunService) {
		if d > 0 {
			s.partnerTimeout = d
		}
	}
}

// WithMetrics attaches run metrics.
func WithMetrics(m *metrics.Metrics) RunOption {
	return func(s *RunService) { s.metrics = m }
}

// WithNotifier attaches the statement notifier.
func WithNotifier(n notify.Notifier) RunOption {
	return func(s *RunService) { s.notifier = n }
}

// WithCurrency sets the statement currency code.
func WithCurrency(currency string) RunOption {
	return func(s *RunService) {
		if currency != "" {
			s.currency = currency
		}
	}
}

// NewRunService constructs the service.
func NewRunService(
	partners partner.Directory,
	revenue RevenueReader,
	rateProvider rates.Provider,
	ledger settlement.Repository,
	clock Clock,
	logger *log.Logger,
	opts ...RunOption,
) (*RunService, error) {
	if partners == nil {
		return nil, errors.New("run service: nil partner directory")
	}
	if revenue == nil {
		return nil, errors.New("run service: nil revenue reader")
	}
	if rateProvider == nil {
		return nil, errors.New("run service: nil rate provider")
	}
	if ledger == nil {
		return nil, errors.New("run service: nil ledger")
	}
	if clock == nil {
		clock = SystemClock{}
	}

	s := &RunService{
		partners:       partners,
		revenue:        revenue,
		rates:          rateProvider,
		ledger:         ledger,
		clock:          clock,
		logger:         logger,
		currency:       "DKK",
		concurrency:    defaultConcurrency,
		partnerTimeout: defaultPartnerTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run executes one settlement batch for the previous calendar month.
// It returns an error only when the partner registry cannot be read;
// everything else lands in the summary.
func (s *RunService) Run(ctx context.Context) (*RunSummary, error) {
	started := s.clock.Now()
	runID := uuid.NewString()

	partners, err := s.partners.ListActive(ctx)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RunsTotal.WithLabelValues(metrics.ResultError).Inc()
		}
		return nil, fmt.Errorf("run service: list partners: %w", err)
	}

	window := settlement.PreviousMonthWindow(started)
	s.logf("settlement_run_start run=%s month=%s partners=%d", runID, window.MonthStart.Format("2006-01"), len(partners))

	results := make([]PartnerResult, len(partners))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)
	for i, p := range partners {
		i, p := i, p
		group.Go(func() error {
			results[i] = s.settlePartner(groupCtx, p, window)
			return nil
		})
	}
	// tasks never return errors; Wait only joins them
	_ = group.Wait()

	summary := &RunSummary{
		RunID:           runID,
		SettlementMonth: window.MonthStart,
		Details:         results,
	}
	for _, result := range results {
		switch result.Outcome {
		case OutcomeCreated:
			summary.SettlementsCreated++
		case OutcomeSkipped:
			summary.SettlementsSkipped++
		case OutcomeFailed:
			summary.PartnersFailed++
		}
	}

	if s.metrics != nil {
		s.metrics.RunsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
		s.metrics.RunDuration.Observe(time.Since(started).Seconds())
	}
	s.logf("settlement_run_done run=%s created=%d skipped=%d failed=%d",
		runID, summary.SettlementsCreated, summary.SettlementsSkipped, summary.PartnersFailed)
	return summary, nil
}

func (s *RunService) settlePartner(ctx context.Context, p partner.Partner, window settlement.Window) PartnerResult {
	started := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.PartnerDuration.Observe(time.Since(started).Seconds())
		}
	}()

	pctx, cancel := context.WithTimeout(ctx, s.partnerTimeout)
	defer cancel()

	result := PartnerResult{PartnerID: p.ID}

	rate, err := s.rates.RateFor(p.Tier)
	if err != nil {
		return s.fail(result, p, err)
	}

	// Fast-path existence check; the insert's uniqueness constraint is
	// the enforcement, this only saves the aggregation query on re-runs.
	existing, err := s.ledger.FindByPartnerAndMonth(pctx, p.ID, window.MonthStart)
	if err != nil {
		return s.fail(result, p, err)
	}
	if existing != nil {
		result.Outcome = OutcomeSkipped
		result.SettlementID = existing.ID()
		if s.metrics != nil {
			s.metrics.SettlementsSkipped.Inc()
		}
		return result
	}

	revenue, err := s.revenue.SumCompleted(pctx, p.ID, window)
	if err != nil {
		return s.fail(result, p, err)
	}

	commission, net, err := settlement.ComputeCommission(revenue.Gross, rate)
	if err != nil {
		return s.fail(result, p, err)
	}

	figures := settlement.Figures{
		GrossRevenue:     revenue.Gross,
		CommissionRate:   rate,
		CommissionAmount: commission,
		NetPayout:        net,
		BookingsCount:    revenue.Count,
	}
	aggregate, err := settlement.NewMonthlySettlement(p.ID, window.MonthStart, figures, s.clock.Now())
	if err != nil {
		return s.fail(result, p, err)
	}

	if err := s.ledger.Create(pctx, aggregate); err != nil {
		if errors.Is(err, settlement.ErrAlreadySettled) {
			// another invocation won the race; a normal outcome
			result.Outcome = OutcomeSkipped
			if s.metrics != nil {
				s.metrics.SettlementsSkipped.Inc()
			}
			return result
		}
		return s.fail(result, p, err)
	}

	result.Outcome = OutcomeCreated
	result.SettlementID = aggregate.ID()
	if s.metrics != nil {
		s.metrics.SettlementsCreated.Inc()
	}

	s.sendStatement(pctx, p, aggregate, &result)
	return result
}

// sendStatement delivers the statement best-effort: a failure is
// flagged on the result and logged, never propagated.
func (s *RunService) sendStatement(ctx context.Context, p partner.Partner, aggregate *settlement.SettlementAggregate, result *PartnerResult) {
	if s.notifier == nil {
		return
	}
	figures := aggregate.Figures()
	stmt := notify.Statement{
		PartnerName:      p.DisplayName(),
		RecipientEmail:   p.Email,
		Month:            aggregate.MonthStart(),
		BookingsCount:    figures.BookingsCount,
		GrossRevenue:     figures.GrossRevenue,
		CommissionRate:   figures.CommissionRate,
		CommissionAmount: figures.CommissionAmount,
		NetPayout:        figures.NetPayout,
		Currency:         s.currency,
	}
	if err := s.notifier.Send(ctx, stmt); err != nil {
		result.NotifyError = err.Error()
		if s.metrics != nil {
			s.metrics.NotifyFailures.Inc()
		}
		s.logf("settlement_notify_failed partner=%s err=%v", p.ID, err)
		return
	}
	result.NotifySent = true
}

func (s *RunService) fail(result PartnerResult, p partner.Partner, err error) PartnerResult {
	result.Outcome = OutcomeFailed
	result.Error = err.Error()
	if s.metrics != nil {
		s.metrics.PartnerFailures.Inc()
	}
	s.logf("settlement_partner_failed partner=%s err=%v", p.ID, err)
	return result
}

func (s *RunService) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
