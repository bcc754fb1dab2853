package main

import (
	"log"
	"os"

	"levsim/cmd"
	"levsim/internal/domain"
	"levsim/internal/scheduler"
	"levsim/internal/util"
)

func main() {
	configPath := os.Getenv("LEVSIM_CONFIG")
	if configPath == "" {
		configPath = "config.yml"
	}
	cfg, err := util.LoadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}

	apiHandler, err := cmd.InitializeDependencies(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer cmd.CloseDependencies(apiHandler)

	marketKeys := []string{}
	for _, market := range domain.ListMarkets() {
		marketKeys = append(marketKeys, market.Key)
	}
	reserveScheduler := scheduler.New(apiHandler.ReserveRepository, apiHandler.Logger)
	if err := reserveScheduler.Start(cfg.ReserveRefreshCron, marketKeys); err != nil {
		log.Fatal(err)
	}
	defer reserveScheduler.Stop()

	if err := apiHandler.StartApi(cfg.Server.Port); err != nil {
		log.Fatal(err)
	}
}
