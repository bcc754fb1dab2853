package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"levsim/cmd"
	"levsim/internal/app"
	"levsim/internal/domain"
	"levsim/internal/util"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type scenarioFile struct {
	MarketKey         string               `yaml:"marketKey"`
	InitialInvestment float64              `yaml:"initialInvestment"`
	MaxLtv            float64              `yaml:"maxLtv"`
	Leverage          float64              `yaml:"leverage"`
	FromDate          string               `yaml:"fromDate"` // 2006-01-02
	RiskFreeRate      float64              `yaml:"riskFreeRate"`
	SwapFee           float64              `yaml:"swapFee"`
	Allocations       domain.AllocationMap `yaml:"allocations"`
}

func loadScenario(path string) (app.SimulationRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return app.SimulationRequest{}, fmt.Errorf("failed to read scenario: %w", err)
	}

	scenario := scenarioFile{}
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return app.SimulationRequest{}, fmt.Errorf("failed to parse scenario: %w", err)
	}

	fromDate, err := time.Parse(time.DateOnly, scenario.FromDate)
	if err != nil {
		return app.SimulationRequest{}, fmt.Errorf("invalid fromDate %q: %w", scenario.FromDate, err)
	}

	return app.SimulationRequest{
		MarketKey:         scenario.MarketKey,
		InitialInvestment: scenario.InitialInvestment,
		MaxLTV:            scenario.MaxLtv,
		Leverage:          scenario.Leverage,
		Allocations:       scenario.Allocations,
		FromDate:          fromDate,
		RiskFreeRate:      scenario.RiskFreeRate,
		SwapFee:           scenario.SwapFee,
	}, nil
}

func runSimulate(configPath, scenarioPath, csvPath string) error {
	cfg, err := util.LoadConfig(configPath)
	if err != nil {
		return err
	}
	// no reason to pool for a single run
	cfg.Server.PoolSize = 0

	handler, err := cmd.InitializeDependencies(cfg)
	if err != nil {
		return err
	}
	defer cmd.CloseDependencies(handler)

	request, err := loadScenario(scenarioPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	key, data, err := handler.RequestService.Assemble(ctx, request)
	if err != nil {
		return err
	}

	result, err := handler.DispatchService.RunOrDedupe(ctx, key, data)
	if err != nil {
		return err
	}

	fmt.Printf("key:        %s\n", key.Hash())
	fmt.Printf("days:       %d\n", len(result.Snapshots))
	fmt.Printf("liquidated: %v\n", result.Liquidated)
	if result.Liquidated {
		fmt.Printf("liquidated at %s\n", time.Unix(result.FinalTimestamp, 0).UTC().Format(time.DateOnly))
	}
	if result.SharpeRatio != nil {
		fmt.Printf("sharpe:     %.4f\n", *result.SharpeRatio)
	}
	if len(result.Snapshots) > 0 {
		final := result.Snapshots[len(result.Snapshots)-1]
		fmt.Printf("final long:  %.2f USD\n", final.LongTotalUSD)
		fmt.Printf("final short: %.2f USD\n", final.ShortTotalUSD)
		fmt.Printf("final nav:   %.2f USD\n", final.LongTotalUSD-final.ShortTotalUSD)
	}

	if csvPath != "" {
		file, err := os.Create(csvPath)
		if err != nil {
			return fmt.Errorf("failed to create csv: %w", err)
		}
		defer file.Close()
		snapshots := result.Snapshots
		if err := gocsv.Marshal(&snapshots, file); err != nil {
			return fmt.Errorf("failed to write csv: %w", err)
		}
		fmt.Printf("snapshots written to %s\n", csvPath)
	}

	return nil
}

func main() {
	var configPath string
	var scenarioPath string
	var csvPath string

	rootCmd := &cobra.Command{
		Use:   "levsim",
		Short: "Backtest leveraged lending positions against historical prices and rates",
	}

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run one simulation from a scenario file",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runSimulate(configPath, scenarioPath, csvPath)
		},
	}
	simulateCmd.Flags().StringVar(&configPath, "config", "config.yml", "path to config file")
	simulateCmd.Flags().StringVar(&scenarioPath, "scenario", "scenario.yml", "path to scenario file")
	simulateCmd.Flags().StringVar(&csvPath, "csv", "", "write daily snapshots to this csv file")

	rootCmd.AddCommand(simulateCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
