package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EMIStatus is the payment state of a single installment.
type EMIStatus string

const (
	EMIPending EMIStatus = "PENDING"
	EMIPaid    EMIStatus = "PAID"
	EMIOverdue EMIStatus = "OVERDUE"
)

// ScheduleEntry represents one installment of a loan's amortization schedule
type ScheduleEntry struct {
	ID                 int64           `json:"id"`
	LoanID             int64           `json:"loan_id"`
	Month              int             `json:"month"` // 1..tenure
	EMIAmount          decimal.Decimal `json:"emi_amount"`
	PrincipalComponent decimal.Decimal `json:"principal_component"`
	InterestComponent  decimal.Decimal `json:"interest_component"`
	ClosingBalance     decimal.Decimal `json:"closing_balance"`
	DueDate            time.Time       `json:"due_date"`
	Status             EMIStatus       `json:"status"`
}
