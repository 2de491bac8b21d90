package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lending-office/backoffice/internal/config"
	"github.com/lending-office/backoffice/internal/engine"
	"github.com/lending-office/backoffice/internal/models"
	"github.com/lending-office/backoffice/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// trailingWindowDays is the lookback used to observe collection efficiency.
const trailingWindowDays = 90

// Notifier delivers one-way notices to the risk desk. Implementations must be
// safe to call from report runs; a nil Notifier disables notices.
type Notifier interface {
	SendLTVBreachNotice(to string, need engine.RebalancingNeed) error
	SendOverdueNotice(to string, loanID int64, dueDate time.Time, dpd int, bucket engine.Bucket) error
}

// Service runs the financial engine over repository snapshots and shapes the
// results into the uniform report contract.
type Service struct {
	repo     repository.Snapshot
	notifier Notifier
	log      *logrus.Logger
	config   *config.Config
}

// NewService initializes a new service
func NewService(repo repository.Snapshot, notifier Notifier, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{repo: repo, notifier: notifier, log: log, config: cfg}
}

// NPAReport classifies every active loan and reports per-bucket totals and
// the gross NPA percentage.
func (s *Service) NPAReport(asOf time.Time) (*engine.Report, error) {
	loans, err := s.repo.LoadLoans()
	if err != nil {
		return nil, err
	}
	schedules, err := s.repo.LoadSchedules()
	if err != nil {
		return nil, err
	}

	summary := engine.ClassifyPortfolio(asOf, loans, schedules)

	report := engine.NewReport(asOf, "Bucket", "Loans", "Outstanding Principal")
	for _, t := range summary.Totals {
		report.AddRow(string(t.Bucket), strconv.Itoa(t.Count), t.Outstanding.StringFixed(2))
	}
	report.Summary["active_loans"] = strconv.Itoa(summary.ActiveLoans)
	report.Summary["gross_npa_pct"] = summary.GrossNPAPct.String()
	report.Summary["as_of"] = asOf.Format("2006-01-02")

	s.log.Infof("NPA report generated: %d active loans, gross NPA %s%%",
		summary.ActiveLoans, summary.GrossNPAPct)
	return report, nil
}

// ExposureReport breaks outstanding principal down by product and flags
// concentration risk against the configured thresholds.
func (s *Service) ExposureReport(asOf time.Time) (*engine.Report, error) {
	loans, err := s.repo.LoadLoans()
	if err != nil {
		return nil, err
	}
	products, err := s.repo.LoadProducts()
	if err != nil {
		return nil, err
	}

	active := make([]models.Loan, 0, len(loans))
	for _, l := range loans {
		if l.Status == models.LoanActive {
			active = append(active, l)
		}
	}

	policy := engine.ConcentrationPolicy{
		HighPct:   s.config.ConcentrationHigh,
		MediumPct: s.config.ConcentrationMedium,
	}
	summary := engine.SectorExposure(active, products, policy)

	report := engine.NewReport(asOf, "Product", "Loans", "Outstanding Principal", "Share %")
	for _, row := range summary.Rows {
		report.AddRow(row.Product, strconv.Itoa(row.Loans),
			row.Outstanding.StringFixed(2), row.SharePct.String())
	}
	report.Summary["total_outstanding"] = summary.TotalOutstanding.StringFixed(2)
	report.Summary["concentration_risk"] = string(summary.Risk)

	s.log.Infof("Exposure report generated: %d products, concentration %s",
		len(summary.Rows), summary.Risk)
	return report, nil
}

// LiquidityReport builds the structural liquidity gap statement. The outflow
// side is a modeling assumption (configured ratio of inflow), surfaced in the
// report summary so consumers see it.
func (s *Service) LiquidityReport(asOf time.Time) (*engine.Report, error) {
	entries, err := s.repo.LoadPendingEntries()
	if err != nil {
		return nil, err
	}

	outflow := engine.ProportionalOutflow(s.config.ALMOutflowRatio)
	stmt := engine.BuildGapStatement(asOf, entries, outflow)

	report := engine.NewReport(asOf, "Bucket", "Inflow", "Outflow", "Gap", "Cumulative Gap")
	for _, row := range stmt.Rows {
		report.AddRow(row.Window.Label, row.Inflow.StringFixed(2), row.Outflow.StringFixed(2),
			row.Gap.StringFixed(2), row.CumulativeGap.StringFixed(2))
	}
	report.Summary["liquidity_status"] = string(stmt.Status)
	report.Summary["outflow_model"] = fmt.Sprintf("proportional, %s of inflow per bucket", s.config.ALMOutflowRatio)

	s.log.Infof("Liquidity gap statement generated: status %s", stmt.Status)
	return report, nil
}

// RebalancingReport detects LTV breaches against the target ceiling, proposes
// corrective actions, and notifies the risk desk about CRITICAL breaches.
func (s *Service) RebalancingReport(asOf time.Time) (*engine.Report, error) {
	loans, err := s.repo.LoadLoans()
	if err != nil {
		return nil, err
	}
	collateral, err := s.repo.LoadCollateral()
	if err != nil {
		return nil, err
	}

	needs := engine.DetectRebalancingNeeds(loans, collateral, s.config.TargetLTV)

	report := engine.NewReport(asOf, "Loan", "Outstanding", "Collateral Value",
		"Current LTV %", "Target LTV %", "Shortfall", "Urgency", "Suggested Actions")
	critical := 0
	for _, need := range needs {
		report.AddRow(
			strconv.FormatInt(need.LoanID, 10),
			need.Outstanding.StringFixed(2),
			need.CollateralValue.StringFixed(2),
			need.CurrentLTV.String(),
			need.TargetLTV.String(),
			need.Shortfall.StringFixed(2),
			string(need.Urgency),
			actionCell(need.Actions),
		)
		if need.Urgency == engine.UrgencyCritical {
			critical++
			s.notifyBreach(need)
		}
	}
	report.Summary["breaches"] = strconv.Itoa(len(needs))
	report.Summary["critical"] = strconv.Itoa(critical)
	report.Summary["target_ltv"] = s.config.TargetLTV.String()

	s.log.Infof("Rebalancing report generated: %d breaches, %d critical", len(needs), critical)
	return report, nil
}

// ForecastReport projects monthly collections from pending EMI demand scaled
// by the configured historical collection efficiency.
func (s *Service) ForecastReport(asOf time.Time) (*engine.Report, error) {
	entries, err := s.repo.LoadPendingEntries()
	if err != nil {
		return nil, err
	}

	projections, summary, err := engine.Forecast(asOf, s.config.ForecastMonths, entries, s.config.CollectionEfficiency)
	if err != nil {
		return nil, err
	}

	report := engine.NewReport(asOf, "Month", "Expected Collection", "Projected Collection")
	for _, p := range projections {
		report.AddRow(p.Month, p.Expected.StringFixed(2), p.Projected.StringFixed(2))
	}
	report.Summary["efficiency"] = summary.Efficiency.String()
	report.Summary["total_expected"] = summary.TotalExpected.StringFixed(2)
	report.Summary["total_projected"] = summary.TotalProjected.StringFixed(2)
	report.Summary["shortfall"] = summary.Shortfall.StringFixed(2)

	// Observed trailing performance, for comparison against the configured
	// efficiency. The projection above never uses it.
	since := asOf.AddDate(0, 0, -trailingWindowDays)
	payments, err := s.repo.LoadPayments(since)
	if err != nil {
		return nil, err
	}
	schedules, err := s.repo.LoadSchedules()
	if err != nil {
		return nil, err
	}
	var all []models.ScheduleEntry
	for _, se := range schedules {
		all = append(all, se...)
	}
	observed := engine.TrailingEfficiency(since, asOf, all, payments)
	report.Summary["trailing_efficiency_observed"] = observed.String()

	s.log.Infof("Collections forecast generated: %d months, shortfall %s",
		s.config.ForecastMonths, summary.Shortfall.StringFixed(2))
	return report, nil
}

// LoanScheduleReport returns the amortization schedule for one loan. Loans
// whose schedule is not yet stored get it derived from their terms on the fly.
func (s *Service) LoanScheduleReport(asOf time.Time, loanID int64) (*engine.Report, error) {
	entries, err := s.repo.LoadSchedule(loanID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		loan, err := s.repo.LoadLoan(loanID)
		if err != nil {
			return nil, err
		}
		entries, err = engine.BuildSchedule(loan.Principal, loan.AnnualRate, loan.TenureMonths, loan.DisbursedAt)
		if err != nil {
			return nil, fmt.Errorf("loan %d: %w", loanID, err)
		}
	}

	report := engine.NewReport(asOf, "Month", "Due Date", "EMI", "Principal", "Interest", "Closing Balance", "Status")
	totalInterest := decimal.Zero
	for _, e := range entries {
		report.AddRow(
			strconv.Itoa(e.Month),
			e.DueDate.Format("2006-01-02"),
			e.EMIAmount.StringFixed(2),
			e.PrincipalComponent.StringFixed(2),
			e.InterestComponent.StringFixed(2),
			e.ClosingBalance.StringFixed(2),
			string(e.Status),
		)
		totalInterest = totalInterest.Add(e.InterestComponent)
	}
	report.Summary["installments"] = strconv.Itoa(len(entries))
	report.Summary["total_interest"] = totalInterest.StringFixed(2)

	s.log.Infof("Schedule report generated for loan %d: %d installments", loanID, len(entries))
	return report, nil
}

// NotifyOverdueLoans sends an overdue notice for every active loan currently
// classified into an NPA bucket.
func (s *Service) NotifyOverdueLoans(asOf time.Time) error {
	if s.notifier == nil {
		return nil
	}
	loans, err := s.repo.LoadLoans()
	if err != nil {
		return err
	}
	schedules, err := s.repo.LoadSchedules()
	if err != nil {
		return err
	}

	summary := engine.ClassifyPortfolio(asOf, loans, schedules)
	sent := 0
	for _, lc := range summary.PerLoan {
		if !lc.Bucket.IsNPA() {
			continue
		}
		dueDate := asOf.AddDate(0, 0, -lc.DPD)
		if err := s.notifier.SendOverdueNotice(s.config.RiskDeskEmail, lc.LoanID, dueDate, lc.DPD, lc.Bucket); err != nil {
			s.log.Errorf("Failed to send overdue notice for loan %d: %v", lc.LoanID, err)
			continue
		}
		sent++
	}
	s.log.Infof("Overdue notices sent: %d", sent)
	return nil
}

func (s *Service) notifyBreach(need engine.RebalancingNeed) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendLTVBreachNotice(s.config.RiskDeskEmail, need); err != nil {
		s.log.Errorf("Failed to send LTV breach notice for loan %d: %v", need.LoanID, err)
	}
}

func actionCell(actions []engine.Action) string {
	parts := make([]string, 0, len(actions))
	for _, a := range actions {
		if a.Amount.IsZero() {
			parts = append(parts, string(a.Type))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s", a.Type, a.Amount.StringFixed(2)))
	}
	return strings.Join(parts, "; ")
}
