package scheduler

import (
	"time"

	"github.com/lending-office/backoffice/internal/models"
	"github.com/lending-office/backoffice/internal/service"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// PriceSource supplies current instrument prices for revaluation.
type PriceSource interface {
	FetchPrices() (map[string]decimal.Decimal, error)
}

// CollateralStore is the slice of the repository the revaluation job writes
// through.
type CollateralStore interface {
	LoadCollateral() (map[int64][]models.Collateral, error)
	UpdateCollateralValue(id int64, value decimal.Decimal, valuedAt time.Time) error
}

// Scheduler wires the daily jobs: collateral revaluation from the price feed,
// followed by the portfolio classification and rebalancing runs.
type Scheduler struct {
	cron   *cron.Cron
	svc    *service.Service
	store  CollateralStore
	prices PriceSource
	log    *logrus.Logger
}

// NewScheduler initializes the scheduler
func NewScheduler(svc *service.Service, store CollateralStore, prices PriceSource, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		svc:    svc,
		store:  store,
		prices: prices,
		log:    log,
	}
}

// Start registers the daily jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	// Revalue collateral before the morning reports read it.
	if _, err := s.cron.AddFunc("0 6 * * *", s.RevalueCollateral); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("30 6 * * *", s.RunDailyReports); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("Scheduler started")
	return nil
}

// Stop halts the cron loop.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// RevalueCollateral refreshes every active pledge's current value from the
// latest instrument prices. Instruments missing from the feed keep their last
// valuation and are logged, never zeroed.
func (s *Scheduler) RevalueCollateral() {
	prices, err := s.prices.FetchPrices()
	if err != nil {
		s.log.Errorf("Collateral revaluation skipped, price feed unavailable: %v", err)
		return
	}

	byLoan, err := s.store.LoadCollateral()
	if err != nil {
		s.log.Errorf("Collateral revaluation failed to load records: %v", err)
		return
	}

	now := time.Now()
	updated := 0
	for _, pledges := range byLoan {
		for _, c := range pledges {
			if c.PledgeStatus != models.PledgeActive {
				continue
			}
			price, ok := prices[c.Instrument]
			if !ok {
				s.log.Warnf("No price for instrument %s (collateral %d), keeping last valuation", c.Instrument, c.ID)
				continue
			}
			value := price.Mul(c.Units).Round(2)
			if err := s.store.UpdateCollateralValue(c.ID, value, now); err != nil {
				s.log.Errorf("Failed to revalue collateral %d: %v", c.ID, err)
				continue
			}
			updated++
		}
	}
	s.log.Infof("Collateral revaluation complete: %d records updated", updated)
}

// RunDailyReports executes the classification and rebalancing runs; the
// rebalancing run sends breach notices as a side effect.
func (s *Scheduler) RunDailyReports() {
	now := time.Now()
	if _, err := s.svc.NPAReport(now); err != nil {
		s.log.Errorf("Daily NPA run failed: %v", err)
	}
	if _, err := s.svc.RebalancingReport(now); err != nil {
		s.log.Errorf("Daily rebalancing run failed: %v", err)
	}
	if err := s.svc.NotifyOverdueLoans(now); err != nil {
		s.log.Errorf("Overdue notice run failed: %v", err)
	}
}
