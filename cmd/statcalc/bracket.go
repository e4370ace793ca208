package main

import (
	"fmt"
	"time"

	"github.com/rpgo/statutory-calculator/internal/calculation"
	"github.com/rpgo/statutory-calculator/internal/output"
	"github.com/rpgo/statutory-calculator/pkg/dateutil"
	money "github.com/rpgo/statutory-calculator/pkg/decimal"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newBracketCmd(a *app) *cobra.Command {
	var (
		income string
		date   string
		age    int
	)
	cmd := &cobra.Command{
		Use:   "bracket",
		Short: "Show progressive income tax on an amount",
		RunE: func(cmd *cobra.Command, _ []string) error {
			country, err := a.parser.LoadCountry(a.countryFile)
			if err != nil {
				return err
			}
			dt, ok := country.IncomeTaxType()
			if !ok {
				return fmt.Errorf("%s has no income tax configured", country.Country)
			}
			amount, err := money.NewMoneyFromString(income)
			if err != nil {
				return fmt.Errorf("invalid income %q: %w", income, err)
			}
			at, err := parseDate(date)
			if err != nil {
				return err
			}
			if at.IsZero() {
				at = dateutil.Truncate(time.Now())
			}
			var agePtr *int
			if cmd.Flags().Changed("age") {
				agePtr = &age
			}
			brackets, err := calculation.TaxBrackets(dt, agePtr, at)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			cur := country.Currency
			for _, b := range brackets {
				upper := "and above"
				if b.UpperBound != nil {
					upper = "to " + output.FormatCurrency(*b.UpperBound, cur)
				}
				fmt.Fprintf(out, "%s %s @ %s%%\n", output.FormatCurrency(b.LowerBound, cur), upper,
					b.EmployeeRate.Mul(decimal.NewFromInt(100)).String())
			}
			fmt.Fprintf(out, "Tax on %s: %s\n", amount.Format(cur),
				output.FormatCurrency(calculation.BracketTax(brackets, amount.Decimal), cur))
			return nil
		},
	}
	cmd.Flags().StringVar(&income, "income", "", "cumulative taxable income")
	cmd.Flags().StringVar(&date, "date", "", "effective date YYYY-MM-DD; defaults to today")
	cmd.Flags().IntVar(&age, "age", 0, "employee age, for age-restricted brackets")
	_ = cmd.MarkFlagRequired("income")
	return cmd
}
