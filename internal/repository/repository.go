package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lending-office/backoffice/internal/models"
	"github.com/shopspring/decimal"
)

// Snapshot is the read-only view of loan, schedule, payment and collateral
// records the engine works from. The engine never writes through it; the only
// write on the repository is the collateral revaluation performed by the
// market-data job.
type Snapshot interface {
	LoadLoan(id int64) (*models.Loan, error)
	LoadLoans() ([]models.Loan, error)
	LoadSchedule(loanID int64) ([]models.ScheduleEntry, error)
	LoadSchedules() (map[int64][]models.ScheduleEntry, error)
	LoadPendingEntries() ([]models.ScheduleEntry, error)
	LoadCollateral() (map[int64][]models.Collateral, error)
	LoadProducts() (map[int64]models.Product, error)
	LoadPayments(since time.Time) ([]models.Payment, error)
}

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// LoadLoan retrieves a single loan by id
func (r *Repository) LoadLoan(id int64) (*models.Loan, error) {
	l := &models.Loan{}
	query := `
		SELECT id, customer_id, product_id, principal, annual_rate, tenure_months,
		       disbursed_at, status, outstanding_principal, outstanding_interest,
		       current_ltv, created_at, updated_at
		FROM lending.loans
		WHERE id = $1`
	err := r.db.QueryRow(query, id).
		Scan(&l.ID, &l.CustomerID, &l.ProductID, &l.Principal, &l.AnnualRate,
			&l.TenureMonths, &l.DisbursedAt, &l.Status, &l.OutstandingPrincipal,
			&l.OutstandingInterest, &l.CurrentLTV, &l.CreatedAt, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("loan %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load loan %d: %w", id, err)
	}
	return l, nil
}

// LoadLoans retrieves all loans
func (r *Repository) LoadLoans() ([]models.Loan, error) {
	query := `
		SELECT id, customer_id, product_id, principal, annual_rate, tenure_months,
		       disbursed_at, status, outstanding_principal, outstanding_interest,
		       current_ltv, created_at, updated_at
		FROM lending.loans`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to load loans: %w", err)
	}
	defer rows.Close()

	var loans []models.Loan
	for rows.Next() {
		var l models.Loan
		if err := rows.Scan(&l.ID, &l.CustomerID, &l.ProductID, &l.Principal, &l.AnnualRate,
			&l.TenureMonths, &l.DisbursedAt, &l.Status, &l.OutstandingPrincipal,
			&l.OutstandingInterest, &l.CurrentLTV, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

// LoadSchedule retrieves the amortization schedule for one loan, ordered by month
func (r *Repository) LoadSchedule(loanID int64) ([]models.ScheduleEntry, error) {
	query := `
		SELECT id, loan_id, month, emi_amount, principal_component,
		       interest_component, closing_balance, due_date, status
		FROM lending.schedule_entries
		WHERE loan_id = $1
		ORDER BY month`
	rows, err := r.db.Query(query, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule for loan %d: %w", loanID, err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// LoadSchedules retrieves every loan's schedule keyed by loan id
func (r *Repository) LoadSchedules() (map[int64][]models.ScheduleEntry, error) {
	query := `
		SELECT id, loan_id, month, emi_amount, principal_component,
		       interest_component, closing_balance, due_date, status
		FROM lending.schedule_entries
		ORDER BY loan_id, month`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedules: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}
	byLoan := make(map[int64][]models.ScheduleEntry)
	for _, e := range entries {
		byLoan[e.LoanID] = append(byLoan[e.LoanID], e)
	}
	return byLoan, nil
}

// LoadPendingEntries retrieves all pending installments of active loans
func (r *Repository) LoadPendingEntries() ([]models.ScheduleEntry, error) {
	query := `
		SELECT e.id, e.loan_id, e.month, e.emi_amount, e.principal_component,
		       e.interest_component, e.closing_balance, e.due_date, e.status
		FROM lending.schedule_entries e
		JOIN lending.loans l ON l.id = e.loan_id
		WHERE e.status = 'PENDING' AND l.status = 'ACTIVE'
		ORDER BY e.due_date`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// LoadCollateral retrieves all collateral records keyed by loan id
func (r *Repository) LoadCollateral() (map[int64][]models.Collateral, error) {
	query := `
		SELECT id, loan_id, customer_id, instrument, units, purchase_value,
		       current_value, pledge_status, last_valued_at
		FROM lending.collateral`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to load collateral: %w", err)
	}
	defer rows.Close()

	byLoan := make(map[int64][]models.Collateral)
	for rows.Next() {
		var c models.Collateral
		if err := rows.Scan(&c.ID, &c.LoanID, &c.CustomerID, &c.Instrument, &c.Units,
			&c.PurchaseValue, &c.CurrentValue, &c.PledgeStatus, &c.LastValuedAt); err != nil {
			return nil, fmt.Errorf("failed to scan collateral: %w", err)
		}
		byLoan[c.LoanID] = append(byLoan[c.LoanID], c)
	}
	return byLoan, rows.Err()
}

// LoadProducts retrieves the product reference data keyed by product id
func (r *Repository) LoadProducts() (map[int64]models.Product, error) {
	query := `SELECT id, name, sector FROM lending.products`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	defer rows.Close()

	products := make(map[int64]models.Product)
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Sector); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products[p.ID] = p
	}
	return products, rows.Err()
}

// LoadPayments retrieves the payment ledger from the given instant onward
func (r *Repository) LoadPayments(since time.Time) ([]models.Payment, error) {
	query := `
		SELECT id, loan_id, amount, paid_at, mode, status
		FROM lending.payments
		WHERE paid_at >= $1
		ORDER BY paid_at`
	rows, err := r.db.Query(query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.LoanID, &p.Amount, &p.PaidAt, &p.Mode, &p.Status); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// UpdateCollateralValue refreshes a collateral record after revaluation
func (r *Repository) UpdateCollateralValue(id int64, value decimal.Decimal, valuedAt time.Time) error {
	query := `
		UPDATE lending.collateral
		SET current_value = $1, last_valued_at = $2
		WHERE id = $3`
	res, err := r.db.Exec(query, value, valuedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update collateral %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update collateral %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("collateral %d not found", id)
	}
	return nil
}

func scanEntries(rows *sql.Rows) ([]models.ScheduleEntry, error) {
	var entries []models.ScheduleEntry
	for rows.Next() {
		var e models.ScheduleEntry
		if err := rows.Scan(&e.ID, &e.LoanID, &e.Month, &e.EMIAmount, &e.PrincipalComponent,
			&e.InterestComponent, &e.ClosingBalance, &e.DueDate, &e.Status); err != nil {
			return nil, fmt.Errorf("failed to scan schedule entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
