package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/goodnews/internal/backup"
	"github.com/MrSnakeDoc/goodnews/internal/config"
	"github.com/MrSnakeDoc/goodnews/internal/events"
	"github.com/MrSnakeDoc/goodnews/internal/httpserver"
	"github.com/MrSnakeDoc/goodnews/internal/httpserver/deps"
	"github.com/MrSnakeDoc/goodnews/internal/identity"
	"github.com/MrSnakeDoc/goodnews/internal/links"
	"github.com/MrSnakeDoc/goodnews/internal/logger"
	"github.com/MrSnakeDoc/goodnews/internal/reconcile"
	"github.com/MrSnakeDoc/goodnews/internal/scheduler"
	"github.com/MrSnakeDoc/goodnews/internal/version"
)

type App struct {
	cfg          *config.Config
	logger       logger.Logger
	server       *httpserver.Server
	stores       *Stores
	bus          *events.Bus
	seedReloader *scheduler.SeedReloader
	backups      *scheduler.BackupScheduler
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize stores early - fail fast if unavailable
	initCtx, cancel := context.WithTimeout(context.Background(), cfg.RedisConnectTimeout+30*time.Second)
	defer cancel()
	stores, err := OpenStores(initCtx, cfg, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to open stores: %v", err)
		os.Exit(1)
	}

	bus := events.NewBus(events.DefaultBuffer)

	var linkOpts []links.Option
	if stores.Remote != nil {
		linkOpts = append(linkOpts, links.WithCollection(stores.Remote))
	}
	linkService := links.NewService(stores.Links, bus, loggerClient.Named("links"), linkOpts...)

	d := deps.Deps{
		Logger:         loggerClient,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		TimeNow:        time.Now,
		AllowedHosts:   cfg.AllowedHosts,
		AllowedCIDRS:   cfg.AllowedCIDRS,
		TrustProxy:     cfg.TrustProxy,
		CORSOrigins:    cfg.CORSOrigins,
		SecureCookies:  cfg.SecureCookies,
		RequestTimeout: cfg.RequestTimeout,
		SignInBurst:    cfg.SignInBurst,
		SignInPerMin:   cfg.SignInPerMin,
		StoreMode:      cfg.StoreMode,
		Redis:          stores.RedisPinger(),
		Postgres:       stores.PostgresPinger(),
		Links:          linkService,
		Bus:            bus,
	}

	if cfg.SyncEnabled() {
		d.Identity = identity.New(identity.Config{
			BaseURL:    cfg.BaseURL,
			Secret:     []byte(cfg.JWTSecret),
			LinkTTL:    cfg.LinkTTL,
			SessionTTL: cfg.SessionTTL,
		}, stores.Tokens, stores.Users, newMailer(cfg, loggerClient), bus, loggerClient.Named("identity"))
		d.Reconciler = reconcile.New(stores.Links, stores.Remote, loggerClient.Named("sync"))
		loggerClient.Info("cloud sync enabled", logger.String("base_url", cfg.BaseURL))
	}

	// Initialize seed reloader (if a seed file is configured)
	var seedReloader *scheduler.SeedReloader
	if cfg.SeedFile != "" {
		d.ReloadTrigger = make(chan struct{}, 1)
		seedReloader = scheduler.NewSeedReloader(
			cfg.SeedFile,
			linkService,
			loggerClient.Named("seed"),
			cfg.ReloadInterval,
			d.ReloadTrigger,
		)
	} else {
		loggerClient.Info("seed file not configured, seed reload disabled")
	}

	// Initialize backups (if a bucket is configured)
	var backups *scheduler.BackupScheduler
	if cfg.BackupEnabled() {
		bcfg := backup.Config{
			Bucket:    cfg.BackupBucket,
			Prefix:    cfg.BackupPrefix,
			Region:    cfg.BackupRegion,
			Endpoint:  cfg.BackupEndpoint,
			AccessKey: cfg.BackupAccessKey,
			SecretKey: cfg.BackupSecretKey,
		}
		client, err := backup.NewS3Client(initCtx, bcfg)
		if err != nil {
			loggerClient.Errorf("Failed to configure backups: %v", err)
			os.Exit(1)
		}
		d.BackupTrigger = make(chan struct{}, 1)
		backups = scheduler.NewBackupScheduler(
			backup.New(bcfg, linkService, client, loggerClient.Named("backup")),
			loggerClient.Named("backup"),
			cfg.BackupInterval,
			d.BackupTrigger,
		)
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:          cfg,
		logger:       loggerClient,
		server:       server,
		stores:       stores,
		bus:          bus,
		seedReloader: seedReloader,
		backups:      backups,
	}
}

func newMailer(cfg *config.Config, log logger.Logger) identity.Mailer {
	if cfg.SMTPAddr == "" {
		log.Warn("smtp not configured, sign-in links are written to the log")
		return identity.LogMailer{Log: log}
	}
	return identity.SMTPMailer{
		Addr:     cfg.SMTPAddr,
		From:     cfg.SMTPFrom,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Thai Good News v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info(version.String("goodnews"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start seed reloader (imports the seed and starts periodic refresh)
	if a.seedReloader != nil {
		if err := a.seedReloader.Start(ctx); err != nil {
			return fmt.Errorf("failed to start seed reloader: %w", err)
		}
		a.logger.Info("seed reloader started",
			logger.Duration("interval", a.cfg.ReloadInterval))
	}

	if a.backups != nil {
		a.backups.Start(ctx)
		a.logger.Info("backup scheduler started",
			logger.String("bucket", a.cfg.BackupBucket),
			logger.Duration("interval", a.cfg.BackupInterval))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	if a.seedReloader != nil {
		a.seedReloader.Stop()
	}
	if a.backups != nil {
		a.backups.Stop()
	}

	// Tell open clients a new version may follow, then end their streams.
	a.bus.Publish(events.Event{Kind: events.KindUpdate, Message: "server restarting"})
	a.bus.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.stores.Close(a.logger)

	a.logger.Info("✅ goodnews stopped cleanly")
	return nil
}
