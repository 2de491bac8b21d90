package engine

import (
	"sort"
	"time"

	"github.com/lending-office/backoffice/internal/models"
	"github.com/shopspring/decimal"
)

// ConcentrationRisk flags how concentrated portfolio exposure is in a single
// product.
type ConcentrationRisk string

const (
	ConcentrationLow    ConcentrationRisk = "LOW"
	ConcentrationMedium ConcentrationRisk = "MEDIUM"
	ConcentrationHigh   ConcentrationRisk = "HIGH"
)

// ConcentrationPolicy holds the share-of-exposure thresholds (percent) above
// which concentration is flagged. Policy, not code: loaded from configuration.
type ConcentrationPolicy struct {
	HighPct   decimal.Decimal
	MediumPct decimal.Decimal
}

// DefaultConcentrationPolicy mirrors the standard 50/30 policy.
func DefaultConcentrationPolicy() ConcentrationPolicy {
	return ConcentrationPolicy{
		HighPct:   decimal.NewFromInt(50),
		MediumPct: decimal.NewFromInt(30),
	}
}

// LoanClassification pairs a loan with its classification result.
type LoanClassification struct {
	LoanID      int64           `json:"loan_id"`
	DPD         int             `json:"dpd"`
	Bucket      Bucket          `json:"bucket"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// BucketTotals accumulates count and outstanding principal per bucket.
type BucketTotals struct {
	Bucket      Bucket          `json:"bucket"`
	Count       int             `json:"count"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// NPASummary is the portfolio-wide classification result.
type NPASummary struct {
	AsOf        time.Time            `json:"as_of"`
	ActiveLoans int                  `json:"active_loans"`
	Totals      []BucketTotals       `json:"totals"`
	GrossNPAPct decimal.Decimal      `json:"gross_npa_pct"`
	PerLoan     []LoanClassification `json:"per_loan"`
}

// ClassifyPortfolio runs the asset classifier over every active loan and
// accumulates per-bucket totals. Gross NPA % is the share of active loans in a
// non-standard bucket; an empty portfolio yields 0, never a division by zero.
// A loan whose schedule is missing from the snapshot is classified from an
// empty schedule (STANDARD) rather than dropped.
func ClassifyPortfolio(asOf time.Time, loans []models.Loan, schedules map[int64][]models.ScheduleEntry) NPASummary {
	order := []Bucket{BucketStandard, BucketSubStandard, BucketDoubtful, BucketLoss}
	totals := make(map[Bucket]*BucketTotals, len(order))
	for _, b := range order {
		totals[b] = &BucketTotals{Bucket: b, Outstanding: decimal.Zero}
	}

	summary := NPASummary{AsOf: asOf, GrossNPAPct: decimal.Zero}
	npaCount := 0

	for _, loan := range loans {
		if loan.Status != models.LoanActive {
			continue
		}
		summary.ActiveLoans++

		c := Classify(asOf, schedules[loan.ID])
		t := totals[c.Bucket]
		t.Count++
		t.Outstanding = t.Outstanding.Add(loan.OutstandingPrincipal)
		if c.Bucket.IsNPA() {
			npaCount++
		}

		summary.PerLoan = append(summary.PerLoan, LoanClassification{
			LoanID:      loan.ID,
			DPD:         c.DPD,
			Bucket:      c.Bucket,
			Outstanding: loan.OutstandingPrincipal,
		})
	}

	for _, b := range order {
		summary.Totals = append(summary.Totals, *totals[b])
	}
	if summary.ActiveLoans > 0 {
		summary.GrossNPAPct = decimal.NewFromInt(int64(npaCount)).
			Mul(hundred).
			DivRound(decimal.NewFromInt(int64(summary.ActiveLoans)), 2)
	}
	return summary
}

// ExposureRow is one product's slice of portfolio exposure.
type ExposureRow struct {
	Product     string          `json:"product"`
	Loans       int             `json:"loans"`
	Outstanding decimal.Decimal `json:"outstanding"`
	SharePct    decimal.Decimal `json:"share_pct"`
}

// ExposureSummary is the product-wise exposure breakdown.
type ExposureSummary struct {
	Rows             []ExposureRow     `json:"rows"`
	TotalOutstanding decimal.Decimal   `json:"total_outstanding"`
	Risk             ConcentrationRisk `json:"risk"`
}

// SectorExposure groups outstanding principal by product and flags
// concentration against the policy thresholds. A loan whose product is not in
// the reference map lands in an explicit "Unknown" row; every loan appears in
// exactly one row. A portfolio with zero total outstanding reports 0% shares.
func SectorExposure(loans []models.Loan, products map[int64]models.Product, policy ConcentrationPolicy) ExposureSummary {
	byProduct := make(map[string]*ExposureRow)
	total := decimal.Zero

	for _, loan := range loans {
		name := "Unknown"
		if p, ok := products[loan.ProductID]; ok {
			name = p.Name
		}
		row, ok := byProduct[name]
		if !ok {
			row = &ExposureRow{Product: name, Outstanding: decimal.Zero}
			byProduct[name] = row
		}
		row.Loans++
		row.Outstanding = row.Outstanding.Add(loan.OutstandingPrincipal)
		total = total.Add(loan.OutstandingPrincipal)
	}

	summary := ExposureSummary{TotalOutstanding: total, Risk: ConcentrationLow}
	maxShare := decimal.Zero
	for _, row := range byProduct {
		if total.IsPositive() {
			row.SharePct = row.Outstanding.Mul(hundred).DivRound(total, 2)
		} else {
			row.SharePct = decimal.Zero
		}
		if row.SharePct.GreaterThan(maxShare) {
			maxShare = row.SharePct
		}
		summary.Rows = append(summary.Rows, *row)
	}

	sort.Slice(summary.Rows, func(i, j int) bool {
		if !summary.Rows[i].Outstanding.Equal(summary.Rows[j].Outstanding) {
			return summary.Rows[i].Outstanding.GreaterThan(summary.Rows[j].Outstanding)
		}
		return summary.Rows[i].Product < summary.Rows[j].Product
	})

	switch {
	case maxShare.GreaterThan(policy.HighPct):
		summary.Risk = ConcentrationHigh
	case maxShare.GreaterThan(policy.MediumPct):
		summary.Risk = ConcentrationMedium
	}
	return summary
}
