package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	attestationhandler "zkvault/internal/attestation/handler"
	attestationservice "zkvault/internal/attestation/service"
	attestationstore "zkvault/internal/attestation/store"
	"zkvault/internal/audit"
	audithandler "zkvault/internal/audit/handler"
	brokerhandler "zkvault/internal/broker/handler"
	brokermetrics "zkvault/internal/broker/metrics"
	brokerservice "zkvault/internal/broker/service"
	"zkvault/internal/broker/surface"
	"zkvault/internal/evidence/dkim"
	permissionhandler "zkvault/internal/permission/handler"
	permissionservice "zkvault/internal/permission/service"
	permissionstore "zkvault/internal/permission/store"
	"zkvault/internal/platform/config"
	"zkvault/internal/platform/httpserver"
	"zkvault/internal/platform/kafka"
	"zkvault/internal/platform/logger"
	"zkvault/internal/platform/metrics"
	"zkvault/internal/platform/postgres"
	"zkvault/internal/platform/redis"
	"zkvault/internal/policy"
	"zkvault/internal/proofengine"
	"zkvault/internal/proofengine/mock"
	"zkvault/internal/proofengine/wasm"
	"zkvault/internal/registration"
	registrationmetrics "zkvault/internal/registration/metrics"
	settingshandler "zkvault/internal/settings/handler"
	settingsservice "zkvault/internal/settings/service"
	settingsstore "zkvault/internal/settings/store"
	httptransport "zkvault/internal/transport/http"
	vaultcrypto "zkvault/internal/vault/crypto"
	vaulthandler "zkvault/internal/vault/handler"
	vaultmetrics "zkvault/internal/vault/metrics"
	vaultservice "zkvault/internal/vault/service"
	vaultstore "zkvault/internal/vault/store"
)

// main wires dependencies and runs the server until SIGINT or SIGTERM.
// Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

type stores struct {
	attestations attestationservice.Store
	permissions  permissionservice.Store
	settings     settingsservice.Store
	vault        vaultservice.Store
	close        func()
}

// openStores picks durable backends. The postgres backend only covers
// permissions; everything else uses Redis when configured, memory otherwise.
func openStores(ctx context.Context, cfg config.Config, log *slog.Logger) (*stores, error) {
	s := &stores{
		attestations: attestationstore.NewInMemoryStore(),
		permissions:  permissionstore.NewInMemoryStore(),
		settings:     settingsstore.NewInMemoryStore(),
		vault:        vaultstore.NewInMemoryStore(),
		close:        func() {},
	}
	if cfg.Store == config.BackendMemory {
		log.Warn("using in-memory stores; state is lost on restart")
		return s, nil
	}

	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	var closers []func()
	if rdb != nil {
		s.attestations = attestationstore.NewRedisStore(rdb.Client)
		s.permissions = permissionstore.NewRedisStore(rdb.Client)
		s.settings = settingsstore.NewRedisStore(rdb.Client)
		s.vault = vaultstore.NewRedisStore(rdb.Client)
		closers = append(closers, func() { _ = rdb.Close() })
	} else {
		log.Warn("REDIS_URL not set; attestations, settings and the vault stay in memory")
	}

	switch cfg.Store {
	case config.BackendRedis:
		if rdb == nil {
			return nil, errors.New("redis backend selected but REDIS_URL is empty")
		}
	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			for _, c := range closers {
				c()
			}
			return nil, err
		}
		closers = append(closers, func() { _ = db.Close() })
		grants := permissionstore.NewPostgres(db)
		if err := grants.Migrate(ctx); err != nil {
			for _, c := range closers {
				c()
			}
			return nil, err
		}
		s.permissions = grants
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store)
	}
	s.close = func() {
		for _, c := range closers {
			c()
		}
	}
	return s, nil
}

func newEngine(ctx context.Context, cfg config.Config, log *slog.Logger) (proofengine.Engine, func(), error) {
	if cfg.ProverWasm == "" {
		log.Warn("ZKVAULT_PROVER_WASM not set; using the mock proof engine")
		return mock.New(), func() {}, nil
	}
	module, err := os.ReadFile(cfg.ProverWasm)
	if err != nil {
		return nil, nil, fmt.Errorf("read prover module: %w", err)
	}
	engine, err := wasm.New(ctx, module)
	if err != nil {
		return nil, nil, err
	}
	return engine, func() { _ = engine.Close(context.Background()) }, nil
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	auditPublisherOpts := []audit.Option{audit.WithLogger(log)}
	producer, err := kafka.NewProducer(ctx, cfg.Kafka)
	if err != nil {
		return err
	}
	if producer != nil {
		defer producer.Close()
		auditPublisherOpts = append(auditPublisherOpts, audit.WithSink(audit.NewKafkaSink(producer, cfg.Kafka.AuditTopic)))
	}
	auditStore := audit.NewInMemoryStore(cfg.Audit.Retain)
	auditQueue := audit.NewQueue(256, log)
	auditWorker := audit.NewWorker(audit.NewPublisher(auditStore, auditPublisherOpts...), auditQueue)

	fingerprint := vaultcrypto.HostFingerprint(cfg.Vault.UserAgent, cfg.Vault.Locale, cfg.Vault.Screen)
	cipher, err := vaultcrypto.NewCipher(vaultcrypto.DeriveKey(fingerprint.String()))
	if err != nil {
		return err
	}
	vault := vaultservice.New(st.vault, cipher,
		vaultservice.WithLogger(log),
		vaultservice.WithAuditPublisher(auditQueue),
		vaultservice.WithMetrics(vaultmetrics.New()),
	)

	settings := settingsservice.New(st.settings, settingsservice.WithLogger(log))
	consent, err := policy.NewConsentPolicy(ctx)
	if err != nil {
		return err
	}

	engine, closeEngine, err := newEngine(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeEngine()

	attestations := attestationservice.New(st.attestations, engine, settings,
		attestationservice.WithLogger(log),
		attestationservice.WithAuditPublisher(auditQueue),
		attestationservice.WithParser(dkim.NewParser(dkim.WithLogger(log))),
	)
	permissions := permissionservice.New(st.permissions,
		permissionservice.WithLogger(log),
		permissionservice.WithAuditPublisher(auditQueue),
	)
	registrar := registration.New(vault,
		registration.WithHTTPClient(&http.Client{Timeout: cfg.Registration.Timeout}),
		registration.WithAllowHTTPHosts(cfg.Registration.AllowHTTPHosts...),
		registration.WithMaxRetries(cfg.Registration.MaxRetries),
		registration.WithLogger(log),
		registration.WithMetrics(registrationmetrics.New()),
	)

	hub := surface.NewHub(log)
	broker, err := brokerservice.New(attestations, permissions, settings, consent, registrar, hub,
		brokerservice.WithLogger(log),
		brokerservice.WithAuditPublisher(auditQueue),
		brokerservice.WithMetrics(brokermetrics.New()),
		brokerservice.WithSurfaceTimeout(cfg.Broker.SurfaceTimeout),
		brokerservice.WithReapInterval(cfg.Broker.ReapInterval),
	)
	if err != nil {
		return err
	}
	brokerHTTP, err := brokerhandler.New(broker, hub, log)
	if err != nil {
		return err
	}

	router := httptransport.NewRouter(log, metrics.New(),
		brokerHTTP,
		attestationhandler.New(attestations, log),
		permissionhandler.New(permissions, log),
		settingshandler.New(settings, log),
		vaulthandler.New(vault, log),
		audithandler.New(auditStore, log),
	)
	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ignoreCanceled(auditWorker.Run(gctx)) })
	g.Go(func() error { return broker.Run(gctx) })
	if cfg.SettingsFile != "" {
		watcher := settingsservice.NewFileWatcher(cfg.SettingsFile, settings, log)
		g.Go(func() error { return ignoreCanceled(watcher.Run(gctx)) })
	}
	g.Go(func() error {
		log.Info("starting zkvault", "addr", cfg.Server.Addr, "store", cfg.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
