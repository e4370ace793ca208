package ytd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rpgo/statutory-calculator/internal/domain"
	"github.com/shopspring/decimal"
)

// Querier is the subset of *pgxpool.Pool and *pgx.Conn the store needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

const (
	selectPostedLines = `SELECT run_id, tax_year, period_start, COALESCE(code, ''), COALESCE(relief_code, ''),
       employee_amount, employer_amount, taxable_income
  FROM payroll_posted_lines
 WHERE employee_id = $1 AND tax_year = $2 AND period_start < $3
 ORDER BY period_start, run_id`

	selectOpeningBalances = `SELECT as_of, taxable_income, tax_paid
  FROM payroll_opening_balances
 WHERE employee_id = $1 AND tax_year = $2`

	insertPostedLine = `INSERT INTO payroll_posted_lines
       (employee_id, run_id, tax_year, period_start, code, relief_code, employee_amount, employer_amount, taxable_income)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9)`
)

// PostgresProvider reads posted payroll lines and opening balances from
// PostgreSQL. It expects two tables:
//
//	payroll_posted_lines(employee_id text, run_id text, tax_year int, period_start date,
//	    code text NULL, relief_code text NULL, employee_amount numeric,
//	    employer_amount numeric, taxable_income numeric)
//	payroll_opening_balances(employee_id text, tax_year int, as_of date,
//	    taxable_income numeric, tax_paid numeric, PRIMARY KEY (employee_id, tax_year))
type PostgresProvider struct {
	db        Querier
	incomeTax domain.StatutoryCode
}

// NewPostgresProvider constructs the provider. incomeTax is the code whose
// lines carry taxable income.
func NewPostgresProvider(db Querier, incomeTax domain.StatutoryCode) *PostgresProvider {
	return &PostgresProvider{db: db, incomeTax: incomeTax}
}

// Snapshot loads the employee's lines for the tax year up to the end of the
// key's period start day and aggregates them.
func (p *PostgresProvider) Snapshot(ctx context.Context, key Key) (Snapshot, error) {
	if p == nil || p.db == nil {
		return Snapshot{}, errors.New("postgres history provider not initialised")
	}
	before := key.PeriodStart.AddDate(0, 0, 1)
	rows, err := p.db.Query(ctx, selectPostedLines, key.EmployeeID, key.TaxYear, before)
	if err != nil {
		return Snapshot{}, fmt.Errorf("query posted lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.PostedLine
	for rows.Next() {
		var (
			l          domain.PostedLine
			code       string
			reliefCode string
		)
		if err := rows.Scan(&l.RunID, &l.TaxYear, &l.PeriodStart, &code, &reliefCode,
			&l.EmployeeAmount, &l.EmployerAmount, &l.TaxableIncome); err != nil {
			return Snapshot{}, fmt.Errorf("scan posted line: %w", err)
		}
		l.Code, l.ReliefCode = domain.StatutoryCode(code), domain.ReliefCode(reliefCode)
		if (l.Code == "") == (l.ReliefCode == "") {
			return Snapshot{}, fmt.Errorf("posted line %s for %s: %w", l.RunID, key.EmployeeID, ErrInvalidLine)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("read posted lines: %w", err)
	}

	snap := aggregate(lines, key, p.incomeTax)

	var (
		asOf          time.Time
		taxableIncome decimal.Decimal
		taxPaid       decimal.Decimal
	)
	err = p.db.QueryRow(ctx, selectOpeningBalances, key.EmployeeID, key.TaxYear).Scan(&asOf, &taxableIncome, &taxPaid)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return Snapshot{}, fmt.Errorf("query opening balances: %w", err)
	default:
		snap.OpeningBalances = &domain.OpeningBalances{
			EmployeeID:    key.EmployeeID,
			TaxYear:       key.TaxYear,
			AsOf:          asOf,
			TaxableIncome: taxableIncome,
			TaxPaid:       taxPaid,
		}
	}
	return snap, nil
}

// Post records lines from a completed run in one batch, which PostgreSQL
// applies as a single implicit transaction.
func (p *PostgresProvider) Post(ctx context.Context, employeeID string, lines ...domain.PostedLine) error {
	if len(lines) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, l := range lines {
		if (l.Code == "") == (l.ReliefCode == "") {
			return fmt.Errorf("line %d for %s: exactly one of code and relief_code must be set: %w", i, employeeID, ErrInvalidLine)
		}
		batch.Queue(insertPostedLine, employeeID, l.RunID, l.TaxYear, l.PeriodStart,
			string(l.Code), string(l.ReliefCode), l.EmployeeAmount, l.EmployerAmount, l.TaxableIncome)
	}

	br := p.db.SendBatch(ctx, batch)
	for _, l := range lines {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("insert posted line %s/%s%s: %w", l.RunID, l.Code, l.ReliefCode, err)
		}
	}
	return br.Close()
}
