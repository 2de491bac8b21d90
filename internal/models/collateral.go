package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PledgeStatus is the state of a collateral pledge.
type PledgeStatus string

const (
	PledgeActive   PledgeStatus = "ACTIVE"
	PledgeReleased PledgeStatus = "RELEASED"
)

// Collateral represents an instrument pledged against a loan. CurrentValue is
// refreshed by the market-data revaluation job; everything else is fixed at
// pledge time.
type Collateral struct {
	ID            int64           `json:"id"`
	LoanID        int64           `json:"loan_id"`
	CustomerID    int64           `json:"customer_id"`
	Instrument    string          `json:"instrument"`
	Units         decimal.Decimal `json:"units"`
	PurchaseValue decimal.Decimal `json:"purchase_value"`
	CurrentValue  decimal.Decimal `json:"current_value"`
	PledgeStatus  PledgeStatus    `json:"pledge_status"`
	LastValuedAt  time.Time       `json:"last_valued_at"`
}
