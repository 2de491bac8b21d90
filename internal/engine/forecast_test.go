package engine

import (
	"testing"
	"time"

	"github.com/lending-office/backoffice/internal/models"
	"github.com/shopspring/decimal"
)

func TestForecast(t *testing.T) {
	t.Parallel()

	from := time.Date(2026, 4, 18, 0, 0, 0, 0, time.UTC)
	entries := []models.ScheduleEntry{
		{EMIAmount: decimal.NewFromInt(10000), DueDate: time.Date(2026, 4, 25, 0, 0, 0, 0, time.UTC), Status: models.EMIPending},
		{EMIAmount: decimal.NewFromInt(15000), DueDate: time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC), Status: models.EMIPending},
		{EMIAmount: decimal.NewFromInt(15000), DueDate: time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC), Status: models.EMIPending},
		{EMIAmount: decimal.NewFromInt(99999), DueDate: time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC), Status: models.EMIPaid},
	}
	efficiency := decimal.RequireFromString("0.90")

	projections, summary, err := Forecast(from, 3, entries, efficiency)
	if err != nil {
		t.Fatalf("Forecast error: %v", err)
	}
	if len(projections) != 3 {
		t.Fatalf("Expected 3 months, got %d", len(projections))
	}

	if projections[0].Month != "2026-04" {
		t.Errorf("Expected first month 2026-04, got %s", projections[0].Month)
	}
	if !projections[0].Expected.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("Expected April demand 10000, got %s", projections[0].Expected)
	}
	if !projections[0].Projected.Equal(decimal.NewFromInt(9000)) {
		t.Errorf("Expected April projection 9000, got %s", projections[0].Projected)
	}
	if !projections[1].Expected.Equal(decimal.NewFromInt(30000)) {
		t.Errorf("Paid installments must not count: expected May demand 30000, got %s", projections[1].Expected)
	}
	if !projections[2].Expected.IsZero() {
		t.Errorf("Expected June demand 0, got %s", projections[2].Expected)
	}

	if !summary.Efficiency.Equal(efficiency) {
		t.Errorf("Summary must echo the input efficiency, got %s", summary.Efficiency)
	}
	if !summary.TotalExpected.Equal(decimal.NewFromInt(40000)) {
		t.Errorf("Expected total 40000, got %s", summary.TotalExpected)
	}
	if !summary.TotalProjected.Equal(decimal.NewFromInt(36000)) {
		t.Errorf("Expected projected total 36000, got %s", summary.TotalProjected)
	}
	if !summary.Shortfall.Equal(decimal.NewFromInt(4000)) {
		t.Errorf("Expected shortfall 4000, got %s", summary.Shortfall)
	}
}

func TestForecast_InvalidInputs(t *testing.T) {
	t.Parallel()

	if _, _, err := Forecast(time.Now(), 0, nil, decimal.RequireFromString("0.9")); err == nil {
		t.Error("Expected error for zero horizon")
	}
	if _, _, err := Forecast(time.Now(), 6, nil, decimal.Zero); err == nil {
		t.Error("Expected error for zero efficiency")
	}
	if _, _, err := Forecast(time.Now(), 6, nil, decimal.RequireFromString("1.2")); err == nil {
		t.Error("Expected error for efficiency above 1")
	}
}

func TestTrailingEfficiency(t *testing.T) {
	t.Parallel()

	to := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	from := to.AddDate(0, 0, -90)
	entries := []models.ScheduleEntry{
		{EMIAmount: decimal.NewFromInt(10000), DueDate: to.AddDate(0, 0, -30), Status: models.EMIPaid},
		{EMIAmount: decimal.NewFromInt(10000), DueDate: to.AddDate(0, 0, -60), Status: models.EMIOverdue},
		{EMIAmount: decimal.NewFromInt(10000), DueDate: to.AddDate(0, 0, 30), Status: models.EMIPending}, // outside window
	}
	payments := []models.Payment{
		{Amount: decimal.NewFromInt(10000), PaidAt: to.AddDate(0, 0, -29)},
		{Amount: decimal.NewFromInt(5000), PaidAt: to.AddDate(0, 1, 0)}, // outside window
	}

	// 10000 collected against 20000 due.
	eff := TrailingEfficiency(from, to, entries, payments)
	if !eff.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("Expected observed efficiency 0.5, got %s", eff)
	}
}

func TestTrailingEfficiency_Guards(t *testing.T) {
	t.Parallel()

	to := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	from := to.AddDate(0, 0, -90)
	one := decimal.NewFromInt(1)

	// No demand in the window resolves to 1, never a division by zero.
	if eff := TrailingEfficiency(from, to, nil, nil); !eff.Equal(one) {
		t.Errorf("Expected 1 with no demand, got %s", eff)
	}

	// Prepayments beyond the demand are capped at 1.
	entries := []models.ScheduleEntry{{EMIAmount: decimal.NewFromInt(10000), DueDate: to.AddDate(0, 0, -30)}}
	payments := []models.Payment{{Amount: decimal.NewFromInt(25000), PaidAt: to.AddDate(0, 0, -29)}}
	if eff := TrailingEfficiency(from, to, entries, payments); !eff.Equal(one) {
		t.Errorf("Expected cap at 1, got %s", eff)
	}
}

func TestForecast_FullEfficiency(t *testing.T) {
	t.Parallel()

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := []models.ScheduleEntry{
		{EMIAmount: decimal.NewFromInt(5000), DueDate: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), Status: models.EMIPending},
	}
	_, summary, err := Forecast(from, 1, entries, decimal.NewFromInt(1))
	if err != nil {
		t.Fatalf("Forecast error: %v", err)
	}
	if !summary.Shortfall.IsZero() {
		t.Errorf("Full efficiency must project no shortfall, got %s", summary.Shortfall)
	}
}
