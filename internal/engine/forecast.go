package engine

import (
	"fmt"
	"time"

	"github.com/lending-office/backoffice/internal/models"
	"github.com/shopspring/decimal"
)

// MonthProjection is the expected versus projected collection for one
// calendar month.
type MonthProjection struct {
	Month     string          `json:"month"` // YYYY-MM
	Expected  decimal.Decimal `json:"expected"`
	Projected decimal.Decimal `json:"projected"`
}

// ForecastSummary aggregates a collections forecast run.
type ForecastSummary struct {
	Efficiency     decimal.Decimal `json:"efficiency"`
	TotalExpected  decimal.Decimal `json:"total_expected"`
	TotalProjected decimal.Decimal `json:"total_projected"`
	Shortfall      decimal.Decimal `json:"shortfall"`
}

// Forecast projects collections for the next months calendar months starting
// at from. Expected collection per month sums the pending EMI demand due that
// month; the projection scales it by the historical collection efficiency, a
// scalar in (0,1] derived externally from trailing performance.
func Forecast(from time.Time, months int, entries []models.ScheduleEntry, efficiency decimal.Decimal) ([]MonthProjection, ForecastSummary, error) {
	if months <= 0 {
		return nil, ForecastSummary{}, fmt.Errorf("forecast horizon must be positive, got %d months", months)
	}
	if !efficiency.IsPositive() || efficiency.GreaterThan(decimal.NewFromInt(1)) {
		return nil, ForecastSummary{}, fmt.Errorf("collection efficiency must be in (0,1], got %s", efficiency)
	}

	demand := make(map[string]decimal.Decimal)
	for _, e := range entries {
		if e.Status != models.EMIPending {
			continue
		}
		key := e.DueDate.Format("2006-01")
		demand[key] = demand[key].Add(e.EMIAmount)
	}

	anchor := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	projections := make([]MonthProjection, 0, months)
	summary := ForecastSummary{
		Efficiency:     efficiency,
		TotalExpected:  decimal.Zero,
		TotalProjected: decimal.Zero,
	}

	for i := 0; i < months; i++ {
		key := anchor.AddDate(0, i, 0).Format("2006-01")
		expected := demand[key]
		projected := expected.Mul(efficiency).Round(2)
		projections = append(projections, MonthProjection{
			Month:     key,
			Expected:  expected,
			Projected: projected,
		})
		summary.TotalExpected = summary.TotalExpected.Add(expected)
		summary.TotalProjected = summary.TotalProjected.Add(projected)
	}

	summary.Shortfall = summary.TotalExpected.Sub(summary.TotalProjected)
	return projections, summary, nil
}

// TrailingEfficiency observes collection performance over the window (from,
// to]: collections received divided by EMI demand that fell due. It backs the
// efficiency figure configured for Forecast; the projection itself always uses
// the injected scalar. Zero demand yields 1 (nothing was due, nothing was
// missed) and the ratio is capped at 1.
func TrailingEfficiency(from, to time.Time, entries []models.ScheduleEntry, payments []models.Payment) decimal.Decimal {
	one := decimal.NewFromInt(1)

	demand := decimal.Zero
	for _, e := range entries {
		if e.DueDate.After(from) && !e.DueDate.After(to) {
			demand = demand.Add(e.EMIAmount)
		}
	}
	if !demand.IsPositive() {
		return one
	}

	collected := decimal.Zero
	for _, p := range payments {
		if p.PaidAt.After(from) && !p.PaidAt.After(to) {
			collected = collected.Add(p.Amount)
		}
	}

	ratio := collected.DivRound(demand, 4)
	if ratio.GreaterThan(one) {
		return one
	}
	return ratio
}
