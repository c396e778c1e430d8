package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/tdnguyen/tripledger/internal/config"
	gateway "github.com/tdnguyen/tripledger/internal/gateways"
	"github.com/tdnguyen/tripledger/internal/notifier"
	"github.com/tdnguyen/tripledger/pkg/logger"
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

	webhookClient, err := gateway.NewWebhookClient(gateway.WebhookClientConfig{
		URL:     config.Get().NotifyWebhookUrl,
		Timeout: config.Get().NotifyWebhookTimeout,
	})
	if err != nil {
		logger.Error("failed creating webhook client", "error", err)
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
	go prom.ListenAndServer(":9100", "/metrics")

	dedupe := notifier.NewDedupeService(redisAdap, notifier.DefaultDedupeConfig())
	service := notifier.New(redisAdap)
	service.RegisterProcessor(notifier.NewWebhookProcessor(webhookClient, dedupe))

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := service.Start(); err != nil {
			logger.Error("failed to start notifier", "error", err)
		}
	}()

	<-c
	service.Stop()
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
