package main

import (
	"fmt"
	"time"

	"github.com/rpgo/statutory-calculator/internal/calculation"
	"github.com/rpgo/statutory-calculator/internal/config"
	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	var employeeFile string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a country configuration and, optionally, a pay period file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			country, err := a.parser.LoadCountry(a.countryFile)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d deduction types, %d relief rules, %d relief schemes: OK\n",
				country.Country, len(country.DeductionTypes), len(country.ReliefRules), len(country.ReliefSchemes))
			if employeeFile == "" {
				return nil
			}
			req, err := a.parser.LoadRequest(employeeFile)
			if err != nil {
				return err
			}
			in, err := config.BuildInput(cmd.Context(), country, req, nil, time.Time{})
			if err != nil {
				return err
			}
			engine := calculation.NewEngine(
				calculation.WithLogger(calculation.NewSlogLogger(a.logger)),
				calculation.WithDefaultMondays(a.settings.DefaultMondays),
			)
			if err := engine.Validate(in); err != nil {
				return err
			}
			fmt.Fprintf(out, "%s: %d history lines, %d enrollments: OK\n", req.EmployeeID, len(req.History), len(req.Enrollments))
			return nil
		},
	}
	cmd.Flags().StringVarP(&employeeFile, "employee", "e", "", "pay period YAML file")
	return cmd
}
