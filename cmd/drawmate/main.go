package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/drawmate/withdrawal-engine/internal/calculation"
	"github.com/drawmate/withdrawal-engine/internal/config"
	"github.com/drawmate/withdrawal-engine/internal/domain"
	"github.com/drawmate/withdrawal-engine/internal/output"
	"github.com/drawmate/withdrawal-engine/pkg/money"
)

var (
	configFile  string
	formatName  string
	outputFile  string
	saveReport  bool
	verbose     bool
	numSims     int
	seed        int64
	scenarioArg string
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "drawmate",
		Short: "Multi-year retirement withdrawal simulator",
		Long: "drawmate projects retirement cash flow year by year: guardrail-adjusted\n" +
			"withdrawals, tax-optimized allocation across account types, and a\n" +
			"three-bucket asset structure.",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	simulate := &cobra.Command{
		Use:   "simulate",
		Short: "Run every configured scenario and print the projection",
		RunE:  runSimulate,
	}
	simulate.Flags().StringVarP(&configFile, "config", "c", "", "input YAML file (required)")
	simulate.Flags().StringVarP(&formatName, "format", "f", "console", "output format: console, json, csv")
	simulate.Flags().StringVarP(&outputFile, "output", "o", "", "write output to file instead of stdout")
	simulate.Flags().BoolVar(&saveReport, "save", false, "write output to a timestamped report file")
	_ = simulate.MarkFlagRequired("config")

	montecarlo := &cobra.Command{
		Use:   "montecarlo",
		Short: "Sample randomized return paths around one scenario",
		RunE:  runMonteCarlo,
	}
	montecarlo.Flags().StringVarP(&configFile, "config", "c", "", "input YAML file (required)")
	montecarlo.Flags().StringVar(&scenarioArg, "scenario", "base", "scenario label to sample around")
	montecarlo.Flags().IntVarP(&numSims, "simulations", "n", 1000, "number of sampled paths")
	montecarlo.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time-based)")
	_ = montecarlo.MarkFlagRequired("config")

	example := &cobra.Command{
		Use:   "example [file]",
		Short: "Write an example input file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "plan.yaml"
			if len(args) == 1 {
				target = args[0]
			}
			if err := config.WriteExample(target); err != nil {
				return err
			}
			cmd.Printf("Wrote example input to %s\n", target)
			return nil
		},
	}

	root.AddCommand(simulate, montecarlo, example)
	return root
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}
	return logger
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	logger := newLogger()

	input, err := config.NewInputParser().LoadFromFile(configFile)
	if err != nil {
		return err
	}

	engine := calculation.NewEngine(logger)
	comparison, err := engine.RunScenarios(context.Background(), input)
	if err != nil {
		return err
	}

	formatter := output.GetFormatterByName(formatName)
	if formatter == nil {
		return fmt.Errorf("unknown format %q, available: %s",
			formatName, strings.Join(output.AvailableFormatterNames(), ", "))
	}

	if outputFile != "" || saveReport {
		written, err := output.WriteFormatted(formatter, comparison, outputFile)
		if err != nil {
			return err
		}
		cmd.Printf("Wrote %s output to %s\n", formatter.Name(), written)
		return nil
	}
	data, err := formatter.Format(comparison)
	if err != nil {
		return err
	}
	cmd.Print(string(data))
	return nil
}

func runMonteCarlo(cmd *cobra.Command, _ []string) error {
	logger := newLogger()

	input, err := config.NewInputParser().LoadFromFile(configFile)
	if err != nil {
		return err
	}
	scenario, err := findScenario(input, scenarioArg)
	if err != nil {
		return err
	}

	mcs := calculation.NewMonteCarloSimulator(input, logger)
	result, err := mcs.Run(calculation.MonteCarloConfig{
		NumSimulations: numSims,
		Seed:           seed,
		Scenario:       scenario,
	})
	if err != nil {
		return err
	}

	cmd.Printf("Monte Carlo: %d paths around scenario %q (seed %d)\n\n",
		result.NumSimulations, scenario.Label, result.Seed)
	cmd.Printf("Success rate:           %s\n", money.FormatPercent(result.SuccessRate))
	cmd.Printf("Median ending balance:  %s\n", money.Format(result.MedianEndingBalance))
	cmd.Printf("P10 / P25 / P75 / P90:  %s / %s / %s / %s\n",
		money.Format(result.PercentileRanges.P10),
		money.Format(result.PercentileRanges.P25),
		money.Format(result.PercentileRanges.P75),
		money.Format(result.PercentileRanges.P90))
	return nil
}

func findScenario(input *domain.SimulationInput, label string) (domain.ScenarioParameters, error) {
	for i := range input.Scenarios {
		if input.Scenarios[i].Label == label {
			return input.Scenarios[i], nil
		}
	}
	labels := make([]string, 0, len(input.Scenarios))
	for i := range input.Scenarios {
		labels = append(labels, input.Scenarios[i].Label)
	}
	return domain.ScenarioParameters{}, fmt.Errorf("unknown scenario %q, configured: %s", label, strings.Join(labels, ", "))
}
