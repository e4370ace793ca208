package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rpgo/statutory-calculator/internal/calculation"
	"github.com/rpgo/statutory-calculator/internal/config"
	"github.com/rpgo/statutory-calculator/internal/domain"
	"github.com/rpgo/statutory-calculator/internal/output"
	"github.com/rpgo/statutory-calculator/internal/ytd"
	"github.com/spf13/cobra"
)

func newCalculateCmd(a *app) *cobra.Command {
	var (
		employeeFile string
		format       string
		date         string
		saveDir      string
		post         bool
	)
	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Calculate one employee's deductions for a pay period",
		RunE: func(cmd *cobra.Command, _ []string) error {
			country, err := a.parser.LoadCountry(a.countryFile)
			if err != nil {
				return err
			}
			req, err := a.parser.LoadRequest(employeeFile)
			if err != nil {
				return err
			}
			effective, err := parseDate(date)
			if err != nil {
				return err
			}
			if format == "" {
				format = a.settings.Output
			}
			formatter := output.GetFormatterByName(format)
			if formatter == nil {
				return fmt.Errorf("%w: %q. Try one of: %s", output.ErrUnsupportedFormat, format,
					strings.Join(output.AvailableFormatterNames(), ", "))
			}

			runID := uuid.NewString()
			logger := a.logger.With("run_id", runID, "employee_id", req.EmployeeID)
			ctx := cmd.Context()
			var store *ytd.PostgresProvider
			if a.settings.HistoryDSN != "" {
				pool, err := pgxpool.New(ctx, a.settings.HistoryDSN)
				if err != nil {
					return fmt.Errorf("failed to connect to history database: %w", err)
				}
				defer pool.Close()
				var incomeTax domain.StatutoryCode
				if dt, ok := country.IncomeTaxType(); ok {
					incomeTax = dt.Code
				}
				store = ytd.NewPostgresProvider(pool, incomeTax)
			} else if post {
				return errors.New("--post needs STATCALC_HISTORY_DSN")
			}

			var provider ytd.Provider
			if store != nil {
				provider = store
			}
			in, err := config.BuildInput(ctx, country, req, provider, effective)
			if err != nil {
				return err
			}
			engine := calculation.NewEngine(
				calculation.WithLogger(calculation.NewSlogLogger(logger)),
				calculation.WithDefaultMondays(a.settings.DefaultMondays),
			)
			res, err := engine.Calculate(in)
			if err != nil {
				logger.Error("calculation failed", "error", err)
				return err
			}
			logger.Info("calculation complete",
				"deductions", len(res.Deductions),
				"total_employee", res.TotalEmployeeDeductions.StringFixed(2),
				"total_employer", res.TotalEmployerContributions.StringFixed(2))

			if post {
				lines := ytd.LinesFromResult(runID, req.TaxYear, req.PeriodStart, res)
				if err := store.Post(ctx, req.EmployeeID, lines...); err != nil {
					return err
				}
				logger.Info("run posted", "lines", len(lines))
			}

			report := &output.Report{
				RunID:       runID,
				Country:     country.Country,
				Currency:    country.Currency,
				PeriodStart: in.PeriodStart,
				PeriodEnd:   in.PeriodEnd,
				GeneratedAt: time.Now().UTC(),
				Result:      res,
			}
			if saveDir != "" {
				path, err := output.WriteFormatted(formatter, report, saveDir)
				if err != nil {
					return err
				}
				logger.Info("report saved", "path", path)
				return nil
			}
			return output.GenerateReport(cmd.OutOrStdout(), report, format)
		},
	}
	cmd.Flags().StringVarP(&employeeFile, "employee", "e", "", "pay period YAML file")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format (console, csv, detailed-csv, json); defaults to STATCALC_OUTPUT")
	cmd.Flags().StringVar(&date, "date", "", "effective date YYYY-MM-DD; defaults to the end of the pay period")
	cmd.Flags().StringVar(&saveDir, "save-dir", "", "write the report to a timestamped file in this directory instead of stdout")
	cmd.Flags().BoolVar(&post, "post", false, "record the run's lines in the history database")
	_ = cmd.MarkFlagRequired("employee")
	return cmd
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}
