package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/tdnguyen/tripledger/internal/config"
	gateway "github.com/tdnguyen/tripledger/internal/gateways"
	"github.com/tdnguyen/tripledger/internal/handlers"
	"github.com/tdnguyen/tripledger/internal/queue"
	"github.com/tdnguyen/tripledger/internal/repository"
	"github.com/tdnguyen/tripledger/internal/services"
	xhttp "github.com/tdnguyen/tripledger/pkg/http"
	"github.com/tdnguyen/tripledger/pkg/logger"
	"github.com/tdnguyen/tripledger/pkg/pg"
	"github.com/tdnguyen/tripledger/pkg/prom"
	"github.com/tdnguyen/tripledger/pkg/redis"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(time.Second * 5))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	pgDebug := config.Get().AppEnv == "dev"
	db, err := pg.CreateReadWrite(readConf, writeConf, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	redisAdap, err := redis.NewRedisAdapter("default", config.Get().RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{config.Get().RedisAddr},
		ClientName: "default",
		DB:         config.Get().RedisDatabase,
		Username:   config.Get().RedisUsername,
		Password:   config.Get().RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	notifyQueue, err := queue.New(redisAdap, queue.Config{
		Name:              config.Get().QueueName,
		ConsumerGroup:     config.Get().QueueConsumerGroup,
		ConsumerName:      config.Get().QueueConsumerName,
		MaxRetries:        config.Get().QueueMaxRetries,
		VisibilityTimeout: config.Get().QueueVisibilityTimeout,
		PollInterval:      config.Get().QueuePollInterval,
		BatchSize:         config.Get().QueueBatchSize,
		MaxLen:            config.Get().QueueMaxLen,
		EnableDLQ:         config.Get().QueueEnableDLQ,
	})
	if err != nil {
		logger.Error("failed creating queue", "error", err)
		return
	}

	rateClient, err := gateway.NewRateClient(gateway.RateClientConfig{
		PrimaryURL:  config.Get().RateProviderUrl,
		FallbackURL: config.Get().RateProviderFallbackUrl,
		Timeout:     config.Get().RateProviderTimeout,
	})
	if err != nil {
		logger.Error("failed creating rate client", "error", err)
		return
	}

	var hostname string
	hostname, err = os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	if err := prom.Create(hostname, config.Get().AppEnv, config.Get().PromNamespace); err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}
	if config.Get().AppDebugMetricsAddr != "" {
		go prom.ListenAndServer(config.Get().AppDebugMetricsAddr, config.Get().AppDebugMetricsURI)
	}

	userRepo := repository.NewUserRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	tripRepo := repository.NewTripRepository(db)
	groupExpenseRepo := repository.NewGroupExpenseRepository(db)
	debtRepo := repository.NewDebtRepository(db)
	deductionRepo := repository.NewDeductionRepository(db)
	rateRepo := repository.NewRateRepository(db)
	bankRepo := repository.NewBankRepository(db)

	currencyService := services.NewCurrencyService(rateRepo, rateClient, redisAdap)
	userService := services.NewUserService(userRepo)
	walletService := services.NewWalletService(walletRepo)
	expenseService := services.NewExpenseService(expenseRepo, walletRepo, currencyService)
	tripService := services.NewTripService(tripRepo)
	deductionService := services.NewDeductionService(deductionRepo, walletRepo, userService, currencyService)
	groupExpenseService := services.NewGroupExpenseService(groupExpenseRepo, debtRepo, tripService, currencyService, deductionService)
	settlementService := services.NewSettlementService(debtRepo, bankRepo, tripService, currencyService, notifyQueue)
	bankService := services.NewBankService(bankRepo, currencyService)

	g := s.Router.Group("/api/v1")
	handlers.RegisterHealthRoutes(g, handlers.NewHealthHandler(nil))
	handlers.RegisterUserRoutes(g, handlers.NewUserHandler(userService))
	handlers.RegisterWalletRoutes(g, handlers.NewWalletHandler(walletService))
	handlers.RegisterExpenseRoutes(g, handlers.NewExpenseHandler(expenseService))
	handlers.RegisterTripRoutes(g, handlers.NewTripHandler(tripService))
	handlers.RegisterGroupExpenseRoutes(g, handlers.NewGroupExpenseHandler(groupExpenseService))
	handlers.RegisterSettlementRoutes(g, handlers.NewSettlementHandler(settlementService))
	handlers.RegisterDeductionRoutes(g, handlers.NewDeductionHandler(deductionService))
	handlers.RegisterRateRoutes(g, handlers.NewRateHandler(currencyService))
	handlers.RegisterBankRoutes(g, handlers.NewBankHandler(bankService))

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.ListenAndServe(config.Get().HttpListenAddr); err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	<-c
	s.Shutdown()
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
