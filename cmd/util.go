package cmd

import (
	"fmt"

	"levsim/api"
	"levsim/internal/app"
	"levsim/internal/logger"
	"levsim/internal/recorder"
	"levsim/internal/repository"
	"levsim/internal/service"
	"levsim/internal/util"
	aavegateway_client "levsim/pkg/aavegateway"
	coingecko_client "levsim/pkg/coingecko"
)

func InitializeDependencies(cfg *util.Config) (*api.ApiHandler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log := logger.New()

	aaveClient := aavegateway_client.NewClient(cfg.RateSource.AaveURL)
	reserveRepository := repository.NewReserveRepository(aaveClient)
	rateHistoryRepository := repository.NewRateHistoryRepository(aaveClient)

	var priceHistoryRepository repository.PriceHistoryRepository
	switch cfg.PriceSource.Provider {
	case "binance":
		priceHistoryRepository = repository.NewBinancePriceRepository(cfg.PriceSource.BinanceQuote)
	case "yahoo":
		priceHistoryRepository = repository.NewYahooPriceRepository(cfg.PriceSource.YahooPairSuffix)
	default:
		coingeckoClient := coingecko_client.NewClient(
			cfg.PriceSource.CoinGeckoURL,
			cfg.PriceSource.RequestsPerSec,
			cfg.PriceSource.RequestBurst,
		)
		priceHistoryRepository = repository.NewCoinGeckoPriceRepository(coingeckoClient, cfg.PriceSource.QuoteCurrency)
	}

	var runRecorder recorder.Recorder = recorder.NoopRecorder{}
	if cfg.Recorder.SQLitePath != "" {
		sqliteRecorder, err := recorder.NewSQLiteRecorder(cfg.Recorder.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open run recorder: %w", err)
		}
		runRecorder = sqliteRecorder
	}

	simulationService := app.NewSimulationService()
	dispatchService := service.NewDispatchService(
		simulationService,
		service.NewMemoryResultCache(),
		cfg.Server.PoolSize,
	)

	return &api.ApiHandler{
		DispatchService: dispatchService,
		RequestService: app.RequestService{
			ReserveRepository:      reserveRepository,
			PriceHistoryRepository: priceHistoryRepository,
			RateHistoryRepository:  rateHistoryRepository,
		},
		ReserveRepository: reserveRepository,
		Recorder:          runRecorder,
		Logger:            log,
	}, nil
}

func CloseDependencies(handler *api.ApiHandler) {
	if err := handler.Recorder.Close(); err != nil {
		handler.Logger.Warnw("failed to close run recorder", "error", err)
	}
}
