package main

import (
	"log/slog"

	"github.com/rpgo/statutory-calculator/internal/config"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs once the root has run.
type app struct {
	settings    *config.Settings
	logger      *slog.Logger
	parser      *config.InputParser
	countryFile string
	envFile     string
}

func newRootCmd() *cobra.Command {
	a := &app{parser: config.NewInputParser()}
	root := &cobra.Command{
		Use:           "statcalc",
		Short:         "Statutory deduction and income tax calculator",
		Long:          "statcalc computes one employee's statutory contributions, tax reliefs and income tax for a pay period from a country configuration file.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			s, err := config.LoadSettings(a.envFile)
			if err != nil {
				return err
			}
			logger, err := s.NewLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			a.settings, a.logger = s, logger
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.countryFile, "country", "c", "", "country configuration YAML file")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", "", "load STATCALC_* settings from this file (default ./.env when present)")
	_ = root.MarkPersistentFlagRequired("country")

	root.AddCommand(newCalculateCmd(a), newValidateCmd(a), newBracketCmd(a))
	return root
}
