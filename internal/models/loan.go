package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus is the lifecycle state of a loan.
type LoanStatus string

const (
	LoanActive     LoanStatus = "ACTIVE"
	LoanClosed     LoanStatus = "CLOSED"
	LoanDefaulted  LoanStatus = "DEFAULTED"
	LoanWrittenOff LoanStatus = "WRITTEN_OFF"
)

// Loan represents a disbursed loan in the system
type Loan struct {
	ID                   int64           `json:"id"`
	CustomerID           int64           `json:"customer_id"`
	ProductID            int64           `json:"product_id"`
	Principal            decimal.Decimal `json:"principal"`
	AnnualRate           decimal.Decimal `json:"annual_rate"` // percent, e.g. 12.5
	TenureMonths         int             `json:"tenure_months"`
	DisbursedAt          time.Time       `json:"disbursed_at"`
	Status               LoanStatus      `json:"status"`
	OutstandingPrincipal decimal.Decimal `json:"outstanding_principal"`
	OutstandingInterest  decimal.Decimal `json:"outstanding_interest"`
	CurrentLTV           decimal.Decimal `json:"current_ltv"` // cached, percent
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// OutstandingAmount is the total exposure on the loan.
func (l *Loan) OutstandingAmount() decimal.Decimal {
	return l.OutstandingPrincipal.Add(l.OutstandingInterest)
}
