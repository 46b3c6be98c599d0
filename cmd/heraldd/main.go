package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"herald/internal/config"
	"herald/internal/domain"
	"herald/internal/infra/counter"
	"herald/internal/infra/db"
	httpinfra "herald/internal/infra/http"
	"herald/internal/infra/policyadmin"
	"herald/internal/infra/provider"
	"herald/internal/infra/ratelimit"
	"herald/internal/infra/template"
	"herald/internal/logging"
	"herald/internal/metrics"
	"herald/internal/usecase"
)

func main() {
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := newLogger(cfg)

	store := newCounterStore(cfg, logger)
	registry, err := buildProviders(cfg)
	if err != nil {
		log.Fatalf("failed to build providers: %v", err)
	}

	var loader template.AssetLoader
	if cfg.TemplateDir != "" {
		loader = template.NewFSLoader(cfg.TemplateDir)
	}

	m := metrics.New()
	dispatcher := &usecase.Dispatcher{
		Limiter:   ratelimit.NewFixedWindow(store),
		Templates: template.NewEngine(loader),
		Providers: registry,
		Quotas:    cfg.QuotaPolicies(),
		Metrics:   m,
		Logger:    logger,
		RetryBase: cfg.RetryBase(),
	}

	roles := &usecase.RoleSynchronizer{
		Allowlist: usecase.NewAllowlist(cfg.AdminIdentities()),
		Metrics:   m,
		Logger:    logger,
	}
	if cfg.AdminPolicyPath != "" {
		engine, err := policyadmin.NewEngineFromPath(context.Background(), cfg.AdminPolicyPath)
		if err != nil {
			log.Fatalf("failed to load admin policy: %v", err)
		}
		roles.Policy = engine
	}

	// Role reconciliation needs the user store; without Postgres the
	// admin surface stays disabled.
	var deliveries domain.DeliveryLogRepository
	var rolesDep *usecase.RoleSynchronizer
	if cfg.PostgresDSN != "" {
		conn, err := db.Open(cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		roles.Users = db.NewUserRepository(conn)
		rolesDep = roles
		deliveries = db.NewDeliveryLogRepository(conn)
		dispatcher.DeliveryLog = deliveries
	}

	srv := httpinfra.NewServer(cfg, httpinfra.ServerDeps{
		Dispatcher:  dispatcher,
		Roles:       rolesDep,
		Deliveries:  deliveries,
		Idempotency: store,
		Metrics:     m,
		Logger:      logger,
	})
	logger.Info(context.Background(), "heraldd listening", "addr", cfg.HTTPAddr)
	if err := srv.Run(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

func newLogger(cfg config.Config) logging.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return logging.NewSlogLogger(slog.New(handler))
}

func newCounterStore(cfg config.Config, logger logging.Logger) counter.Store {
	if cfg.RedisAddr != "" {
		store, err := counter.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		logger.Info(context.Background(), "using redis counter store", "addr", cfg.RedisAddr)
		return store
	}
	logger.Info(context.Background(), "using in-memory counter store", "max_keys", cfg.CounterMaxKeys)
	return counter.NewMemory(counter.MemoryConfig{MaxKeys: cfg.CounterMaxKeys})
}

func buildProviders(cfg config.Config) (*provider.Registry, error) {
	registry := provider.NewRegistry()

	smtpProvider, err := provider.NewSMTP(provider.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
	if err != nil {
		return nil, err
	}
	registry.Register(domain.MediumEmail, smtpProvider)

	// Both SMS gateways are registered when configured; the default
	// follows SMS_PROVIDER and requests may name the other explicitly.
	if cfg.SMSRegionalBaseURL != "" {
		regional, err := provider.NewRegionalSMS(provider.RegionalSMSConfig{
			BaseURL:    cfg.SMSRegionalBaseURL,
			AccessKey:  cfg.SMSRegionalAccessKey,
			SignName:   cfg.SMSRegionalSignName,
			TemplateID: cfg.SMSRegionalTemplateID,
		})
		if err != nil {
			return nil, err
		}
		registry.Register(domain.MediumSMS, regional)
	}
	if cfg.SMSGlobalAccountSID != "" {
		global, err := provider.NewGlobalSMS(provider.GlobalSMSConfig{
			BaseURL:    cfg.SMSGlobalBaseURL,
			AccountSID: cfg.SMSGlobalAccountSID,
			AuthToken:  cfg.SMSGlobalAuthToken,
			From:       cfg.SMSGlobalFrom,
		})
		if err != nil {
			return nil, err
		}
		registry.Register(domain.MediumSMS, global)
	}
	registry.SetDefault(domain.MediumSMS, cfg.SMSProvider)
	return registry, nil
}
