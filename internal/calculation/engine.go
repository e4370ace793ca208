package calculation

import (
	"github.com/rpgo/statutory-calculator/internal/domain"
	money "github.com/rpgo/statutory-calculator/pkg/decimal"
	"github.com/shopspring/decimal"
)

// Engine computes one employee's statutory deductions and income tax for one
// pay period. It holds no per-call state and is safe for concurrent use once
// configured.
type Engine struct {
	Logger         Logger
	formulas       *FormulaRegistry
	autoApply      map[domain.SchemeCode]bool
	defaultMondays int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(l Logger) Option {
	return func(e *Engine) { e.SetLogger(l) }
}

// WithFormulaRegistry replaces the tiered relief formulas.
func WithFormulaRegistry(r *FormulaRegistry) Option {
	return func(e *Engine) {
		if r != nil {
			e.formulas = r
		}
	}
}

// WithAutoApplyCodes replaces the default auto-apply allow-list.
func WithAutoApplyCodes(codes ...domain.SchemeCode) Option {
	return func(e *Engine) { e.autoApply = codeSet(codes) }
}

// WithDefaultMondays sets the qualifying-Monday count used when an input
// carries neither a count nor pay-period dates.
func WithDefaultMondays(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.defaultMondays = n
		}
	}
}

// NewEngine creates an engine with the built-in formulas and allow-list.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		Logger:         NopLogger{},
		formulas:       DefaultFormulaRegistry(),
		autoApply:      codeSet(DefaultAutoApplyCodes),
		defaultMondays: domain.DefaultQualifyingMondays,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetLogger sets the logger for the engine. If nil is provided, a no-op logger is used.
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		e.Logger = NopLogger{}
		return
	}
	e.Logger = l
}

// Calculate runs contributions, reliefs and income tax in that order. Any
// error aborts the whole calculation; there are no partial results.
func (e *Engine) Calculate(input *domain.CalculationInput) (*domain.CalculationResult, error) {
	in, err := e.prepare(input)
	if err != nil {
		return nil, err
	}
	cs, err := e.runContributions(in)
	if err != nil {
		return nil, err
	}
	ts, err := e.runTax(e.runReliefs(cs))
	if err != nil {
		return nil, err
	}
	return ts.result(), nil
}

// Validate reports whether input would be accepted by Calculate.
func (e *Engine) Validate(input *domain.CalculationInput) error {
	_, err := e.prepare(input)
	return err
}

// The stage types below fix the calculation order: each stage can only be
// built from the one before it.

type contributionStage struct {
	in            *preparedInput
	contributions []contribution
}

type reliefStage struct {
	contributionStage
	reliefs reliefTotals
}

type taxStage struct {
	reliefStage
	adjusted decimal.Decimal
	outcome  *domain.IncomeTaxOutcome
	taxLine  *domain.CalculatedStatutory
}

func (e *Engine) runContributions(in *preparedInput) (contributionStage, error) {
	cs, err := e.computeContributions(in)
	if err != nil {
		return contributionStage{}, err
	}
	return contributionStage{in: in, contributions: cs}, nil
}

func (e *Engine) runReliefs(s contributionStage) reliefStage {
	return reliefStage{contributionStage: s, reliefs: e.computeReliefs(s.in, s.contributions)}
}

func (e *Engine) runTax(s reliefStage) (taxStage, error) {
	in := s.in
	ts := taxStage{
		reliefStage: s,
		adjusted:    money.NonNegative(in.GrossPay.Sub(s.reliefs.IncomeReduction)),
	}
	dt, ok := in.incomeTax()
	if !ok {
		return ts, nil
	}
	brackets, err := TaxBrackets(dt, in.age, in.EffectiveDate)
	if err != nil {
		return taxStage{}, err
	}
	p := PAYEInput{
		Code:                  dt.Code,
		Brackets:              brackets,
		Method:                in.TaxMethod,
		AdjustedTaxableIncome: ts.adjusted,
		TaxCredits:            s.reliefs.TaxCredits,
		YTDTaxableIncome:      in.YTDTaxableIncome,
		PeriodTaxableIncome:   in.PeriodTaxableIncome,
		YTDTaxPaid:            in.YTD.Get(dt.Code).Employee,
		PeriodTaxPaid:         in.Period.Get(dt.Code).Employee,
		AllowMidYearRefunds:   in.AllowMidYearRefunds,
	}
	if ob := in.OpeningBalances; ob != nil {
		p.OpeningTaxableIncome = ob.TaxableIncome
		p.OpeningTaxPaid = ob.TaxPaid
	}
	outcome := ComputeIncomeTax(p)
	switch {
	case outcome.Refund:
		e.Logger.Infof("%s: refunding %s for employee %s", dt.Code, outcome.PeriodTax.Neg().StringFixed(2), in.EmployeeID)
	case outcome.Clamped:
		e.Logger.Debugf("%s: negative period tax clamped to zero for employee %s", dt.Code, in.EmployeeID)
	}
	ts.outcome = &outcome
	if line, ok := incomeTaxLine(dt, outcome); ok {
		ts.taxLine = &line
	}
	return ts, nil
}

func (s taxStage) result() *domain.CalculationResult {
	res := &domain.CalculationResult{
		EmployeeID:                  s.in.EmployeeID,
		Deductions:                  make([]domain.CalculatedStatutory, 0, len(s.contributions)+1),
		Reliefs:                     s.reliefs.Lines,
		TotalTaxableIncomeReduction: s.reliefs.IncomeReduction,
		TotalTaxCredits:             s.reliefs.TaxCredits,
		AdjustedTaxableIncome:       money.RoundCents(s.adjusted),
		IncomeTax:                   s.outcome,
	}
	employee, employer := decimal.Zero, decimal.Zero
	for _, c := range s.contributions {
		res.Deductions = append(res.Deductions, c.Line())
		employee = employee.Add(c.Employee)
		employer = employer.Add(c.Employer)
	}
	if s.taxLine != nil {
		res.Deductions = append(res.Deductions, *s.taxLine)
		employee = employee.Add(s.taxLine.EmployeeAmount)
	}
	res.TotalEmployeeDeductions = money.RoundCents(employee)
	res.TotalEmployerContributions = money.RoundCents(employer)
	return res
}
