package engine

import (
	"sort"

	"github.com/lending-office/backoffice/internal/models"
	"github.com/shopspring/decimal"
)

// Urgency ranks how badly a loan's collateral cover has deteriorated.
type Urgency string

const (
	UrgencyLow      Urgency = "LOW"
	UrgencyMedium   Urgency = "MEDIUM"
	UrgencyHigh     Urgency = "HIGH"
	UrgencyCritical Urgency = "CRITICAL"
)

func (u Urgency) rank() int {
	switch u {
	case UrgencyCritical:
		return 3
	case UrgencyHigh:
		return 2
	case UrgencyMedium:
		return 1
	default:
		return 0
	}
}

// ActionType identifies a suggested corrective action.
type ActionType string

const (
	ActionTopUp        ActionType = "TOP_UP"
	ActionSwitch       ActionType = "SWITCH"
	ActionPartialRepay ActionType = "PARTIAL_REPAY"
)

// Action is one suggested step to restore the target LTV. SWITCH is advisory
// and carries no amount.
type Action struct {
	Type   ActionType      `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note"`
}

// RebalancingNeed is the per-loan result of a rebalancing analysis run.
// Recomputed on every run, never persisted.
type RebalancingNeed struct {
	LoanID          int64           `json:"loan_id"`
	CustomerID      int64           `json:"customer_id"`
	Outstanding     decimal.Decimal `json:"outstanding"`
	CollateralValue decimal.Decimal `json:"collateral_value"`
	CurrentLTV      decimal.Decimal `json:"current_ltv"`
	TargetLTV       decimal.Decimal `json:"target_ltv"`
	Shortfall       decimal.Decimal `json:"shortfall"`
	Urgency         Urgency         `json:"urgency"`
	Actions         []Action        `json:"actions"`
}

// Urgency tier widths in LTV percentage points above target.
var (
	mediumExcess   = decimal.NewFromInt(5)
	highExcess     = decimal.NewFromInt(15)
	criticalExcess = decimal.NewFromInt(25)
)

// DetectRebalancingNeeds computes current LTV per active loan from the live
// collateral valuation and reports every loan whose collateral cover falls
// short of the target ceiling. Collateral value sums the ACTIVE pledges for
// the loan; an absent collateral record counts as zero value, so the loan is
// reported with the full uncovered exposure rather than skipped. Output is
// sorted by descending urgency, then descending shortfall.
func DetectRebalancingNeeds(loans []models.Loan, collateralByLoan map[int64][]models.Collateral, targetLTV decimal.Decimal) []RebalancingNeed {
	var needs []RebalancingNeed

	for _, loan := range loans {
		if loan.Status != models.LoanActive {
			continue
		}
		outstanding := loan.OutstandingAmount()

		value := decimal.Zero
		for _, c := range collateralByLoan[loan.ID] {
			if c.PledgeStatus == models.PledgeActive {
				value = value.Add(c.CurrentValue)
			}
		}

		ltv := decimal.Zero
		if value.IsPositive() {
			ltv = outstanding.Mul(hundred).DivRound(value, 2)
		}

		shortfall := outstanding.Sub(value.Mul(targetLTV).Div(hundred)).Round(2)
		if !shortfall.IsPositive() {
			continue
		}

		need := RebalancingNeed{
			LoanID:          loan.ID,
			CustomerID:      loan.CustomerID,
			Outstanding:     outstanding,
			CollateralValue: value,
			CurrentLTV:      ltv,
			TargetLTV:       targetLTV,
			Shortfall:       shortfall,
			Urgency:         urgencyFor(ltv, targetLTV),
			Actions:         suggestActions(shortfall),
		}
		needs = append(needs, need)
	}

	sort.Slice(needs, func(i, j int) bool {
		if needs[i].Urgency != needs[j].Urgency {
			return needs[i].Urgency.rank() > needs[j].Urgency.rank()
		}
		return needs[i].Shortfall.GreaterThan(needs[j].Shortfall)
	})
	return needs
}

// urgencyFor tiers the breach by how far current LTV exceeds the target.
// Boundaries are inclusive-low/exclusive-high, so every LTV falls in exactly
// one tier.
func urgencyFor(currentLTV, targetLTV decimal.Decimal) Urgency {
	excess := currentLTV.Sub(targetLTV)
	switch {
	case excess.LessThan(mediumExcess):
		return UrgencyLow
	case excess.LessThan(highExcess):
		return UrgencyMedium
	case excess.LessThan(criticalExcess):
		return UrgencyHigh
	default:
		return UrgencyCritical
	}
}

func suggestActions(shortfall decimal.Decimal) []Action {
	return []Action{
		{
			Type:   ActionTopUp,
			Amount: shortfall,
			Note:   "Pledge additional collateral to close the shortfall",
		},
		{
			Type: ActionSwitch,
			Note: "Replace volatile collateral with a more stable instrument",
		},
		{
			Type:   ActionPartialRepay,
			Amount: shortfall,
			Note:   "Reduce principal to bring LTV back to target",
		},
	}
}
