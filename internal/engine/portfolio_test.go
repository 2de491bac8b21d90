package engine

import (
	"testing"
	"time"

	"github.com/lending-office/backoffice/internal/models"
	"github.com/shopspring/decimal"
)

func activeLoan(id, productID int64, outstanding int64) models.Loan {
	return models.Loan{
		ID:                   id,
		ProductID:            productID,
		Status:               models.LoanActive,
		OutstandingPrincipal: decimal.NewFromInt(outstanding),
	}
}

func TestClassifyPortfolio(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	loans := []models.Loan{
		activeLoan(1, 10, 100000),
		activeLoan(2, 10, 200000),
		activeLoan(3, 20, 300000),
		activeLoan(4, 20, 400000),
		{ID: 5, Status: models.LoanClosed, OutstandingPrincipal: decimal.Zero},
	}
	schedules := map[int64][]models.ScheduleEntry{
		1: {{DueDate: now.AddDate(0, 0, -10), Status: models.EMIPending}},  // STANDARD
		2: {{DueDate: now.AddDate(0, 0, -100), Status: models.EMIPending}}, // SUB_STANDARD
		3: {{DueDate: now.AddDate(0, 0, -400), Status: models.EMIPending}}, // DOUBTFUL
		// loan 4 has no schedule in the snapshot: STANDARD, still counted
	}

	summary := ClassifyPortfolio(now, loans, schedules)

	if summary.ActiveLoans != 4 {
		t.Errorf("Expected 4 active loans, got %d", summary.ActiveLoans)
	}
	// 2 of 4 active loans are non-standard.
	if !summary.GrossNPAPct.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Expected gross NPA 50%%, got %s", summary.GrossNPAPct)
	}
	if len(summary.Totals) != 4 {
		t.Fatalf("Expected 4 bucket rows, got %d", len(summary.Totals))
	}
	if summary.Totals[0].Bucket != BucketStandard || summary.Totals[0].Count != 2 {
		t.Errorf("Expected 2 STANDARD loans, got %d %s", summary.Totals[0].Count, summary.Totals[0].Bucket)
	}
	if !summary.Totals[0].Outstanding.Equal(decimal.NewFromInt(500000)) {
		t.Errorf("Expected STANDARD outstanding 500000, got %s", summary.Totals[0].Outstanding)
	}
	if summary.Totals[1].Count != 1 || summary.Totals[2].Count != 1 || summary.Totals[3].Count != 0 {
		t.Errorf("Unexpected bucket counts: %+v", summary.Totals)
	}
	if len(summary.PerLoan) != 4 {
		t.Errorf("Expected 4 per-loan rows, got %d", len(summary.PerLoan))
	}
}

func TestClassifyPortfolio_EmptyPortfolio(t *testing.T) {
	t.Parallel()

	summary := ClassifyPortfolio(time.Now(), nil, nil)
	if summary.ActiveLoans != 0 {
		t.Errorf("Expected 0 active loans, got %d", summary.ActiveLoans)
	}
	if !summary.GrossNPAPct.IsZero() {
		t.Errorf("Expected gross NPA 0%% on empty portfolio, got %s", summary.GrossNPAPct)
	}
}

func TestSectorExposure(t *testing.T) {
	t.Parallel()

	loans := []models.Loan{
		activeLoan(1, 10, 600000),
		activeLoan(2, 20, 300000),
		activeLoan(3, 99, 100000), // product missing from reference data
	}
	products := map[int64]models.Product{
		10: {ID: 10, Name: "Home Loan", Sector: "Housing"},
		20: {ID: 20, Name: "Gold Loan", Sector: "Retail"},
	}

	summary := SectorExposure(loans, products, DefaultConcentrationPolicy())

	if len(summary.Rows) != 3 {
		t.Fatalf("Expected 3 exposure rows, got %d", len(summary.Rows))
	}
	if summary.Rows[0].Product != "Home Loan" {
		t.Errorf("Expected largest exposure first, got %s", summary.Rows[0].Product)
	}
	if !summary.Rows[0].SharePct.Equal(decimal.NewFromInt(60)) {
		t.Errorf("Expected Home Loan share 60%%, got %s", summary.Rows[0].SharePct)
	}

	foundUnknown := false
	for _, row := range summary.Rows {
		if row.Product == "Unknown" {
			foundUnknown = true
			if !row.Outstanding.Equal(decimal.NewFromInt(100000)) {
				t.Errorf("Unknown row outstanding %s, expected 100000", row.Outstanding)
			}
		}
	}
	if !foundUnknown {
		t.Error("Loan with missing product must appear in the Unknown row, not be dropped")
	}

	if summary.Risk != ConcentrationHigh {
		t.Errorf("60%% in one product: expected HIGH, got %s", summary.Risk)
	}
}

func TestSectorExposure_ZeroOutstanding(t *testing.T) {
	t.Parallel()

	loans := []models.Loan{
		activeLoan(1, 10, 0),
		activeLoan(2, 20, 0),
	}
	products := map[int64]models.Product{
		10: {ID: 10, Name: "Home Loan"},
		20: {ID: 20, Name: "Gold Loan"},
	}
	summary := SectorExposure(loans, products, DefaultConcentrationPolicy())
	for _, row := range summary.Rows {
		if !row.SharePct.IsZero() {
			t.Errorf("Zero-outstanding portfolio: expected 0%% share for %s, got %s", row.Product, row.SharePct)
		}
	}
	if summary.Risk != ConcentrationLow {
		t.Errorf("Expected LOW risk, got %s", summary.Risk)
	}
}

func TestSectorExposure_Thresholds(t *testing.T) {
	t.Parallel()

	products := map[int64]models.Product{10: {ID: 10, Name: "A"}, 20: {ID: 20, Name: "B"}, 30: {ID: 30, Name: "C"}}
	policy := DefaultConcentrationPolicy()

	// 40/35/25: no product above 50, one above 30.
	loans := []models.Loan{activeLoan(1, 10, 40), activeLoan(2, 20, 35), activeLoan(3, 30, 25)}
	if risk := SectorExposure(loans, products, policy).Risk; risk != ConcentrationMedium {
		t.Errorf("Expected MEDIUM, got %s", risk)
	}

	// Exactly 50% is not "exceeds 50%".
	loans = []models.Loan{activeLoan(1, 10, 50), activeLoan(2, 20, 30), activeLoan(3, 30, 20)}
	if risk := SectorExposure(loans, products, policy).Risk; risk != ConcentrationMedium {
		t.Errorf("Expected MEDIUM at exactly 50%%, got %s", risk)
	}

	loans = []models.Loan{activeLoan(1, 10, 51), activeLoan(2, 20, 29), activeLoan(3, 30, 20)}
	if risk := SectorExposure(loans, products, policy).Risk; risk != ConcentrationHigh {
		t.Errorf("Expected HIGH above 50%%, got %s", risk)
	}
}
