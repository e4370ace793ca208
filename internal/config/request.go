package config

import (
	"context"
	"fmt"
	"time"

	"github.com/rpgo/statutory-calculator/internal/domain"
	"github.com/rpgo/statutory-calculator/internal/ytd"
)

// BuildInput assembles an engine input from a country configuration and one
// pay-period request. The request's history is aggregated through provider;
// a nil provider gets an in-memory one seeded from the request. A zero
// effective date defaults to the end of the pay period.
func BuildInput(ctx context.Context, country *domain.CountryConfig, req *domain.PayPeriodRequest, provider ytd.Provider, effective time.Time) (*domain.CalculationInput, error) {
	if effective.IsZero() {
		effective = req.PeriodEnd
	}
	if provider == nil {
		var incomeTax domain.StatutoryCode
		if dt, ok := country.IncomeTaxType(); ok {
			incomeTax = dt.Code
		}
		h := ytd.NewHistoryProvider(incomeTax)
		if err := h.Record(req.EmployeeID, req.History...); err != nil {
			return nil, err
		}
		if req.OpeningBalances != nil {
			h.SetOpeningBalances(req.EmployeeID, *req.OpeningBalances)
		}
		provider = h
	}

	start, end := req.PeriodStart, req.PeriodEnd
	in := &domain.CalculationInput{
		EmployeeID:          req.EmployeeID,
		GrossPay:            req.GrossPay,
		Age:                 req.Age,
		BirthDate:           req.BirthDate,
		QualifyingMondays:   req.QualifyingMondays,
		EffectiveDate:       effective,
		PeriodStart:         &start,
		PeriodEnd:           &end,
		DeductionTypes:      country.ActiveDeductionTypes(effective),
		TaxMethod:           country.TaxMethod,
		AllowMidYearRefunds: country.AllowMidYearRefunds,
	}
	if len(country.ReliefRules) > 0 || len(country.ReliefSchemes) > 0 || len(req.Enrollments) > 0 {
		in.Relief = &domain.TaxReliefContext{
			Rules:          country.ReliefRules,
			Schemes:        country.ReliefSchemes,
			Enrollments:    req.Enrollments,
			AutoApplyCodes: country.AutoApplyCodes,
		}
	}

	snap, err := provider.Snapshot(ctx, ytd.Key{EmployeeID: req.EmployeeID, TaxYear: req.TaxYear, PeriodStart: req.PeriodStart})
	if err != nil {
		return nil, fmt.Errorf("failed to load history for %s: %w", req.EmployeeID, err)
	}
	snap.ApplyTo(in)
	return in, nil
}
