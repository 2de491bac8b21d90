package engine

import (
	"fmt"
	"time"

	"github.com/lending-office/backoffice/internal/models"
	"github.com/shopspring/decimal"
)

var (
	monthsPerYear = decimal.NewFromInt(12)
	hundred       = decimal.NewFromInt(100)
)

// ComputeEMI returns the equated monthly installment for the given terms,
// rounded to the currency minor unit (half-up).
//
// EMI = P * r * (1+r)^n / ((1+r)^n - 1) with r the monthly rate. A zero rate
// degenerates to straight-line principal/tenure to avoid dividing by zero.
func ComputeEMI(principal, annualRatePercent decimal.Decimal, tenureMonths int) (decimal.Decimal, error) {
	if err := validateTerms(principal, annualRatePercent, tenureMonths); err != nil {
		return decimal.Zero, err
	}

	tenure := decimal.NewFromInt(int64(tenureMonths))
	if annualRatePercent.IsZero() {
		return principal.DivRound(tenure, 2), nil
	}

	r := annualRatePercent.Div(monthsPerYear).Div(hundred)
	compound := decimal.NewFromInt(1).Add(r).Pow(tenure)
	emi := principal.Mul(r).Mul(compound).Div(compound.Sub(decimal.NewFromInt(1)))
	return emi.Round(2), nil
}

// BuildSchedule walks months 1..tenure and produces the full amortization
// schedule. Each period's interest and principal components are rounded
// independently; the final period absorbs the accumulated rounding drift, so
// its installment may differ from the nominal EMI by a few minor units. The
// closing balance of the last entry is always exactly zero.
func BuildSchedule(principal, annualRatePercent decimal.Decimal, tenureMonths int, disbursedAt time.Time) ([]models.ScheduleEntry, error) {
	emi, err := ComputeEMI(principal, annualRatePercent, tenureMonths)
	if err != nil {
		return nil, err
	}

	r := annualRatePercent.Div(monthsPerYear).Div(hundred)
	balance := principal
	entries := make([]models.ScheduleEntry, 0, tenureMonths)

	for month := 1; month <= tenureMonths; month++ {
		interest := balance.Mul(r).Round(2)
		principalComp := emi.Sub(interest)
		installment := emi

		// Last period (or an overshooting one) clears whatever balance
		// remains instead of going negative.
		if month == tenureMonths || principalComp.GreaterThan(balance) {
			principalComp = balance
			installment = principalComp.Add(interest)
		}
		balance = balance.Sub(principalComp)
		if balance.IsNegative() {
			balance = decimal.Zero
		}

		entries = append(entries, models.ScheduleEntry{
			Month:              month,
			EMIAmount:          installment,
			PrincipalComponent: principalComp,
			InterestComponent:  interest,
			ClosingBalance:     balance,
			DueDate:            disbursedAt.AddDate(0, month, 0),
			Status:             models.EMIPending,
		})
	}

	return entries, nil
}

func validateTerms(principal, annualRatePercent decimal.Decimal, tenureMonths int) error {
	if !principal.IsPositive() {
		return fmt.Errorf("%w: principal must be positive, got %s", ErrInvalidLoanTerms, principal)
	}
	if tenureMonths <= 0 {
		return fmt.Errorf("%w: tenure must be positive, got %d months", ErrInvalidLoanTerms, tenureMonths)
	}
	if annualRatePercent.IsNegative() {
		return fmt.Errorf("%w: rate must not be negative, got %s", ErrInvalidLoanTerms, annualRatePercent)
	}
	return nil
}
