package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/celine-platform/policies/internal/handlers"
	"github.com/celine-platform/policies/internal/infrastructure/config"
	"github.com/celine-platform/policies/internal/infrastructure/metrics"
	"github.com/celine-platform/policies/internal/services"
	"github.com/celine-platform/policies/internal/services/audit"
	"github.com/celine-platform/policies/internal/services/auth"
	"github.com/celine-platform/policies/internal/services/policy"
	"github.com/celine-platform/policies/pkg/cache"
	"github.com/celine-platform/policies/pkg/cache/memorycache"
)

const defaultEnv = "dev"

func main() {
	env := os.Getenv("ENV")
	if env == "" {
		env = defaultEnv
	}

	if err := config.InitConfig(env); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize config: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	// Token validation
	validatorCfg := auth.ValidatorConfig{
		Issuer:           cfg.Auth.Issuer,
		Audience:         cfg.Auth.Audience,
		HMACSecret:       cfg.Auth.HMACSecret,
		SkipVerification: cfg.Auth.SkipVerification,
	}
	if cfg.Auth.PublicKeyFile != "" {
		pem, err := os.ReadFile(cfg.Auth.PublicKeyFile)
		if err != nil {
			logger.Error("failed to read public key file", "path", cfg.Auth.PublicKeyFile, "error", err)
			os.Exit(1)
		}
		validatorCfg.PublicKeyPEM = string(pem)
	}
	validator, err := auth.NewValidator(validatorCfg)
	if err != nil {
		logger.Error("failed to create token validator", "error", err)
		os.Exit(1)
	}

	// ACL rules (rules strategy only)
	var ruleStore *policy.RuleStore
	strategy := policy.MqttStrategy(cfg.Mqtt.Strategy)
	if strategy == policy.StrategyRuleList {
		ruleStore = policy.NewRuleStore()
		if err := ruleStore.LoadFile(cfg.Mqtt.RulesPath); err != nil {
			logger.Error("failed to load acl rules", "path", cfg.Mqtt.RulesPath, "error", err)
			os.Exit(1)
		}
		logger.Info("acl rules loaded", "path", cfg.Mqtt.RulesPath, "count", ruleStore.Snapshot().Len())
	}

	// Policy engine with decision cache
	router := policy.NewDefaultRouter(strategy, ruleProvider(ruleStore))
	var decisionCache cache.Cache
	engine := policy.NewEngine(router)
	if cfg.Cache.Enabled {
		decisionCache = memorycache.New(&memorycache.Config{
			MaxEntries: cfg.Cache.MaxEntries,
			DefaultTTL: time.Duration(cfg.Cache.TTLMinutes) * time.Minute,
		})
		engine = policy.NewEngineWithCache(router, decisionCache, time.Duration(cfg.Cache.TTLMinutes)*time.Minute)
	}

	// Metrics
	collector := metrics.NewCollector()
	if decisionCache != nil {
		collector.SetCache(decisionCache)
	}
	exporter := metrics.NewPrometheusExporter(collector)

	// Services
	auditLogger := audit.NewLogger(audit.Config{
		Enabled:   cfg.Audit.Enabled,
		LogInputs: cfg.Audit.LogInputs,
	}, logger)
	decisionService := services.NewDecisionService(engine, auditLogger, collector, exporter)
	subjects := handlers.NewSubjectResolver(validator)

	// HTTP routes
	r := mux.NewRouter()
	r.Use(metrics.Middleware(collector, exporter))
	handlers.NewAuthorizeHandler(decisionService, subjects).Register(r)
	handlers.NewDatasetHandler(decisionService, subjects).Register(r)
	handlers.NewPipelineHandler(decisionService, subjects).Register(r)
	handlers.NewMqttHandler(decisionService, subjects).Register(r)
	handlers.NewHealthHandler(decisionService, ruleStore).Register(r)
	if ruleStore != nil {
		handlers.NewRulesHandler(ruleStore, cfg.Mqtt.RulesPath, decisionService).Register(r)
	}

	apiServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           cors.Default().Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.MetricsPort),
		Handler:           metricsMux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Keep gauge metrics fresh
	gaugeDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				exporter.Update()
			case <-gaugeDone:
				return
			}
		}
	}()

	serverErrors := make(chan error, 2)
	go func() {
		logger.Info("http server listening", "addr", apiServer.Addr)
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("http server error: %w", err)
		}
	}()
	go func() {
		logger.Info("metrics server listening", "addr", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("metrics server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	select {
	case err := <-serverErrors:
		logger.Error("server error", "error", err)
		os.Exit(1)
	case sig := <-sigChan:
		logger.Info("received signal, initiating graceful shutdown", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		close(gaugeDone)
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http server shutdown", "error", err)
		}
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown", "error", err)
		}
		if decisionCache != nil {
			_ = decisionCache.Close()
		}
		logger.Info("shutdown complete")
	}
}

// ruleProvider avoids handing a typed-nil RuleStore to the router.
func ruleProvider(s *policy.RuleStore) policy.RuleProvider {
	if s == nil {
		return nil
	}
	return s
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: l}))
}
