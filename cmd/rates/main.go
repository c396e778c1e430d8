package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RateResponse mirrors the wire shape the converter expects from a provider.
type RateResponse struct {
	From string  `json:"from"`
	To   string  `json:"to"`
	Rate float64 `json:"rate"`
	Date string  `json:"date"`
}

// usdPerUnit anchors every currency to USD so any pair can be crossed.
var usdPerUnit = map[string]float64{
	"USD": 1.0,
	"EUR": 1.09,
	"GBP": 1.27,
	"JPY": 0.0067,
	"TWD": 0.0312,
	"VND": 0.000039,
	"KRW": 0.00072,
	"IDR": 0.000061,
	"THB": 0.0288,
	"SGD": 0.74,
}

// MockProvider simulates an exchange-rate API with jittered rates, random
// latency, and a configurable failure rate.
type MockProvider struct {
	failureRate float64
	minDelay    time.Duration
	maxDelay    time.Duration
	jitter      float64
	providerID  string
	rng         *rand.Rand
}

func NewMockProvider(failureRate, jitter float64, minDelay, maxDelay time.Duration) *MockProvider {
	return &MockProvider{
		failureRate: failureRate,
		minDelay:    minDelay,
		maxDelay:    maxDelay,
		jitter:      jitter,
		providerID:  "MOCK_RATES_" + uuid.New().String()[:8],
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (m *MockProvider) lookup(from, to string) (float64, bool) {
	fromUSD, okFrom := usdPerUnit[from]
	toUSD, okTo := usdPerUnit[to]
	if !okFrom || !okTo || toUSD == 0 {
		return 0, false
	}

	rate := fromUSD / toUSD
	// wobble the quote so repeated fetches look like a live market
	wobble := 1 + (m.rng.Float64()*2-1)*m.jitter
	return rate * wobble, true
}

func (m *MockProvider) randomDelay() time.Duration {
	delta := m.maxDelay - m.minDelay
	if delta <= 0 {
		return m.minDelay
	}
	return m.minDelay + time.Duration(m.rng.Int63n(int64(delta)))
}

func (m *MockProvider) shouldFail() bool {
	return m.rng.Float64() < m.failureRate
}

type Handler struct {
	provider *MockProvider
}

func NewHandler(provider *MockProvider) *Handler {
	return &Handler{provider: provider}
}

// GetRate quotes one currency pair.
func (h *Handler) GetRate(c *gin.Context) {
	from := strings.ToUpper(c.Query("from"))
	to := strings.ToUpper(c.Query("to"))

	if len(from) != 3 || len(to) != 3 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "from and to must be 3-letter currency codes",
		})
		return
	}

	time.Sleep(h.provider.randomDelay())

	if h.provider.shouldFail() {
		log.Warn().Str("from", from).Str("to", to).Msg("Simulated provider outage")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "rate service temporarily unavailable",
		})
		return
	}

	rate, ok := h.provider.lookup(from, to)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("no rate for pair %s/%s", from, to),
		})
		return
	}

	log.Info().Str("from", from).Str("to", to).Float64("rate", rate).Msg("Rate quoted")
	c.JSON(http.StatusOK, RateResponse{
		From: from,
		To:   to,
		Rate: rate,
		Date: time.Now().UTC().Format("2006-01-02"),
	})
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"provider_id":  h.provider.providerID,
		"timestamp":    time.Now(),
		"failure_rate": h.provider.failureRate,
	})
}

// UpdateConfig allows changing the failure rate at runtime, which makes
// fallback behavior easy to exercise in integration setups.
func (h *Handler) UpdateConfig(c *gin.Context) {
	var config struct {
		FailureRate *float64 `json:"failure_rate"`
	}

	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	if config.FailureRate != nil && *config.FailureRate >= 0 && *config.FailureRate <= 1.0 {
		h.provider.failureRate = *config.FailureRate
		log.Info().Float64("failure_rate", *config.FailureRate).Msg("Updated failure rate")
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Configuration updated",
		"failure_rate": h.provider.failureRate,
	})
}

func SetupRouter(handler *Handler) *gin.Engine {
	router := gin.Default()

	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request processed")
	})

	router.GET("/rates", handler.GetRate)
	router.GET("/health", handler.HealthCheck)
	router.PUT("/config", handler.UpdateConfig)

	return router
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	port := getEnv("PORT", "8082")
	failureRate := getEnvFloat("FAILURE_RATE", 0)
	jitter := getEnvFloat("RATE_JITTER", 0.005)
	minDelay := getEnvDuration("MIN_DELAY", 50*time.Millisecond)
	maxDelay := getEnvDuration("MAX_DELAY", 300*time.Millisecond)

	log.Info().
		Str("port", port).
		Float64("failure_rate", failureRate).
		Float64("jitter", jitter).
		Msg("Starting Mock Rate Provider")

	provider := NewMockProvider(failureRate, jitter, minDelay, maxDelay)
	router := SetupRouter(NewHandler(provider))

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var f float64
		if _, err := fmt.Sscanf(value, "%f", &f); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
