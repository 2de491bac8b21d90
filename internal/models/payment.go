package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment represents a received repayment. The payment ledger is append-only;
// rows are reconciled against schedule entries by an external collaborator.
type Payment struct {
	ID     int64           `json:"id"`
	LoanID int64           `json:"loan_id"`
	Amount decimal.Decimal `json:"amount"`
	PaidAt time.Time       `json:"paid_at"`
	Mode   string          `json:"mode"`
	Status string          `json:"status"`
}
