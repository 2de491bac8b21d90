package engine

import (
	"time"

	"github.com/lending-office/backoffice/internal/models"
	"github.com/shopspring/decimal"
)

// BucketWindow is a liquidity time bucket, bounded by inclusive day offsets
// from the statement date. Consecutive windows share no days.
type BucketWindow struct {
	Label    string `json:"label"`
	FromDays int    `json:"from_days"`
	ToDays   int    `json:"to_days"`
}

// GapWindows are the standard ALM maturity buckets.
var GapWindows = []BucketWindow{
	{Label: "0-30 Days", FromDays: 0, ToDays: 30},
	{Label: "31-90 Days", FromDays: 31, ToDays: 90},
	{Label: "91-180 Days", FromDays: 91, ToDays: 180},
	{Label: "181-365 Days", FromDays: 181, ToDays: 365},
	{Label: "366-1095 Days", FromDays: 366, ToDays: 1095},
}

// OutflowModel supplies the modeled outflow for a bucket given its inflow.
// Outflows are a liability-side modeling assumption injected by the caller,
// not something derivable from the loan book itself.
type OutflowModel func(window BucketWindow, inflow decimal.Decimal) decimal.Decimal

// ProportionalOutflow models each bucket's outflow as a fixed ratio of its
// inflow.
func ProportionalOutflow(ratio decimal.Decimal) OutflowModel {
	return func(_ BucketWindow, inflow decimal.Decimal) decimal.Decimal {
		return inflow.Mul(ratio).Round(2)
	}
}

// LiquidityStatus summarises the final cumulative gap.
type LiquidityStatus string

const (
	LiquidityAdequate        LiquidityStatus = "ADEQUATE"
	LiquidityAttentionNeeded LiquidityStatus = "ATTENTION_NEEDED"
)

// GapRow is one bucket of the liquidity gap statement.
type GapRow struct {
	Window        BucketWindow    `json:"window"`
	Inflow        decimal.Decimal `json:"inflow"`
	Outflow       decimal.Decimal `json:"outflow"`
	Gap           decimal.Decimal `json:"gap"`
	CumulativeGap decimal.Decimal `json:"cumulative_gap"`
}

// GapStatement is the structural liquidity statement over the standard
// windows.
type GapStatement struct {
	AsOf   time.Time       `json:"as_of"`
	Rows   []GapRow        `json:"rows"`
	Status LiquidityStatus `json:"status"`
}

// BuildGapStatement buckets pending installment inflows into the standard
// windows and nets them against the modeled outflow. The cumulative gap
// carries forward chronologically; a negative final cumulative gap flags the
// statement ATTENTION_NEEDED. Entries due beyond the last window, already
// overdue, or not PENDING are excluded. A nil outflow model means zero
// outflows.
func BuildGapStatement(asOf time.Time, entries []models.ScheduleEntry, outflow OutflowModel) GapStatement {
	inflows := make([]decimal.Decimal, len(GapWindows))
	for i := range inflows {
		inflows[i] = decimal.Zero
	}

	for _, e := range entries {
		if e.Status != models.EMIPending {
			continue
		}
		offset := wholeDays(asOf, e.DueDate)
		for i, w := range GapWindows {
			if offset >= w.FromDays && offset <= w.ToDays {
				inflows[i] = inflows[i].Add(e.EMIAmount)
				break
			}
		}
	}

	stmt := GapStatement{AsOf: asOf, Status: LiquidityAdequate}
	cumulative := decimal.Zero
	for i, w := range GapWindows {
		out := decimal.Zero
		if outflow != nil {
			out = outflow(w, inflows[i])
		}
		gap := inflows[i].Sub(out)
		cumulative = cumulative.Add(gap)
		stmt.Rows = append(stmt.Rows, GapRow{
			Window:        w,
			Inflow:        inflows[i],
			Outflow:       out,
			Gap:           gap,
			CumulativeGap: cumulative,
		})
	}
	if cumulative.IsNegative() {
		stmt.Status = LiquidityAttentionNeeded
	}
	return stmt
}
