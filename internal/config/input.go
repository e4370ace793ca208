package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/rpgo/statutory-calculator/internal/calculation"
	"github.com/rpgo/statutory-calculator/internal/domain"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing of country configuration and pay-period files
type InputParser struct {
	validate *validator.Validate
}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{validate: validator.New()}
}

// LoadCountry loads a country's statutory configuration from a YAML file
func (ip *InputParser) LoadCountry(filename string) (*domain.CountryConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.ParseCountry(data)
}

// ParseCountry parses and validates country configuration YAML
func (ip *InputParser) ParseCountry(data []byte) (*domain.CountryConfig, error) {
	var cfg domain.CountryConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := ip.ValidateCountry(&cfg); err != nil {
		return nil, fmt.Errorf("country configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// ValidateCountry checks struct constraints first and then the rules the
// engine enforces, so bad configuration is rejected before any calculation.
func (ip *InputParser) ValidateCountry(cfg *domain.CountryConfig) error {
	if err := ip.validate.Struct(cfg); err != nil {
		return err
	}
	for _, dt := range cfg.DeductionTypes {
		if dt.EffectiveTo != nil && dt.EffectiveTo.Before(dt.EffectiveFrom) {
			return fmt.Errorf("deduction type %s ends before it starts", dt.Code)
		}
		for _, b := range dt.Bands {
			if b.EffectiveTo != nil && b.EffectiveTo.Before(b.EffectiveFrom) {
				return fmt.Errorf("deduction type %s band %q ends before it starts", dt.Code, b.ID)
			}
		}
	}
	if err := calculation.ValidateDeductionTypes(cfg.DeductionTypes); err != nil {
		return err
	}
	rc := &domain.TaxReliefContext{Rules: cfg.ReliefRules, Schemes: cfg.ReliefSchemes}
	return calculation.ValidateRelief(rc, cfg.DeductionTypes)
}

// LoadRequest loads one employee's pay period from a YAML file
func (ip *InputParser) LoadRequest(filename string) (*domain.PayPeriodRequest, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.ParseRequest(data)
}

// ParseRequest parses and validates pay-period YAML
func (ip *InputParser) ParseRequest(data []byte) (*domain.PayPeriodRequest, error) {
	var req domain.PayPeriodRequest
	if err := yaml.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := ip.ValidateRequest(&req); err != nil {
		return nil, fmt.Errorf("pay period validation failed: %w", err)
	}
	return &req, nil
}

// ValidateRequest validates a pay-period request
func (ip *InputParser) ValidateRequest(req *domain.PayPeriodRequest) error {
	if err := ip.validate.Struct(req); err != nil {
		return err
	}
	if req.GrossPay.IsNegative() {
		return fmt.Errorf("gross pay cannot be negative")
	}
	if req.PeriodEnd.Before(req.PeriodStart) {
		return fmt.Errorf("period end %s is before period start %s",
			req.PeriodEnd.Format("2006-01-02"), req.PeriodStart.Format("2006-01-02"))
	}
	if req.BirthDate != nil && req.BirthDate.After(req.PeriodEnd) {
		return fmt.Errorf("birth date cannot be after the pay period")
	}
	if ob := req.OpeningBalances; ob != nil {
		if ob.TaxYear != req.TaxYear {
			return fmt.Errorf("opening balances are for tax year %d, request is for %d", ob.TaxYear, req.TaxYear)
		}
		if ob.TaxableIncome.IsNegative() || ob.TaxPaid.IsNegative() {
			return fmt.Errorf("opening balances cannot be negative")
		}
	}
	for i, l := range req.History {
		if (l.Code == "") == (l.ReliefCode == "") {
			return fmt.Errorf("history line %d: exactly one of code and relief_code must be set", i)
		}
	}
	return nil
}
