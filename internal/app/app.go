package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/startpage/internal/config"
	"github.com/MrSnakeDoc/startpage/internal/favicon"
	"github.com/MrSnakeDoc/startpage/internal/httpserver"
	"github.com/MrSnakeDoc/startpage/internal/httpserver/deps"
	"github.com/MrSnakeDoc/startpage/internal/logger"
	"github.com/MrSnakeDoc/startpage/internal/redis"
	"github.com/MrSnakeDoc/startpage/internal/scheduler"
	"github.com/MrSnakeDoc/startpage/internal/sources/homepage"
	"github.com/MrSnakeDoc/startpage/internal/storage"
	"github.com/MrSnakeDoc/startpage/internal/utils"
	redisstore "github.com/MrSnakeDoc/startpage/internal/store/redis"
	"github.com/MrSnakeDoc/startpage/internal/version"
)

type App struct {
	cfg          *config.Config
	logger       logger.Logger
	server       *httpserver.Server
	storage      *storage.Storage
	redisClient  *goredis.Client
	saver        *scheduler.Saver
	sweeper      *scheduler.SessionSweeper
	homepageSync *scheduler.HomepageSync
}

// OpenStorage loads the data directory described by cfg.
func OpenStorage(cfg *config.Config, log logger.Logger) (*storage.Storage, error) {
	return storage.Open(storage.Options{
		Dir:             cfg.DataDir,
		AssetsDir:       cfg.AssetsDir,
		DefaultUsername: cfg.DefaultUsername,
		DefaultPassword: cfg.DefaultPassword,
		Logger:          log.Named("storage"),
	})
}

// New wires every component. Storage is loaded and Redis, when configured,
// is dialed before New returns, so a broken setup fails at startup.
func New(cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	store, err := OpenStorage(cfg, loggerClient)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	stats := store.Stats()
	loggerClient.Info("storage loaded",
		logger.String("dir", cfg.DataDir),
		logger.Int("profiles", stats.Profiles),
		logger.Int("sessions", stats.Sessions),
		logger.Bool("auth_enabled", stats.AuthEnabled))

	var (
		redisClient  *goredis.Client
		faviconCache favicon.Cache
		cachePinger  deps.Pinger
	)
	if cfg.RedisEnabled() {
		loggerClient.Info("connecting to redis", logger.String("addr", cfg.RedisAddr))
		redisClient, err = redis.New(context.Background(), redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient.Named("redis"))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		cache := redisstore.NewStore(redisClient)
		faviconCache, cachePinger = cache, cache
	} else {
		loggerClient.Info("redis not configured, favicon cache disabled")
	}

	favicons := favicon.New(favicon.Options{
		Timeout:  cfg.FaviconTimeout,
		Cache:    faviconCache,
		CacheTTL: cfg.FaviconCacheTTL,
		Logger:   loggerClient.Named("favicon"),
	})

	var (
		homepageSync *scheduler.HomepageSync
		syncDep      deps.HomepageSync
	)
	if cfg.HomepageFile != "" {
		kind, err := homepage.ParseKind(cfg.HomepageKind)
		if err != nil {
			return nil, fmt.Errorf("invalid STARTPAGE_HOMEPAGE_KIND: %w", err)
		}
		homepageSync = scheduler.NewHomepageSync(
			cfg.HomepageFile,
			kind,
			cfg.HomepageProfile,
			store,
			loggerClient.Named("homepage"),
			cfg.HomepageInterval,
		)
		syncDep = homepageSync
	}

	build := version.Get()
	d := deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Version:      build.Version,
		Commit:       build.Commit,
		BuildDate:    build.BuildDate,
		GoVersion:    build.GoVersion,
		TimeNow:      time.Now,
		AllowedHosts: cfg.AllowedHosts,
		AllowedCIDRS: cfg.AllowedCIDRS,
		TrustProxy:   cfg.TrustProxy,
		Storage:      store,
		Favicons:     favicons,
		FaviconCache: cachePinger,
		HomepageSync: syncDep,
		DistDir:      cfg.DistDir,
		LoginBurst:   cfg.LoginBurst,
		LoginPerMin:  cfg.LoginPerMin,
	}

	return &App{
		cfg:          cfg,
		logger:       loggerClient,
		server:       httpserver.New(cfg, loggerClient, d),
		storage:      store,
		redisClient:  redisClient,
		saver:        scheduler.NewSaver(store, loggerClient.Named("saver"), cfg.SaveInterval),
		sweeper:      scheduler.NewSessionSweeper(store, loggerClient.Named("sessions"), cfg.SweepInterval),
		homepageSync: homepageSync,
	}, nil
}

func (a *App) Run() error {
	build := version.Get()
	a.logger.Info("🚀 Starting startpage",
		logger.String("version", build.Version),
		logger.String("commit", build.Commit),
		logger.String("built", build.BuildDate),
		logger.String("go", build.GoVersion),
		logger.String("addr", a.cfg.ListenPort))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.startJobs(ctx); err != nil {
		return a.shutdown(err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	return a.shutdown(runErr)
}

// shutdown stops intake first, then flushes state once more so nothing
// accepted before the signal is lost.
// startJobs starts the background jobs. On failure the ones already running
// are left for shutdown to stop.
func (a *App) startJobs(ctx context.Context) error {
	if err := a.saver.Start(ctx); err != nil {
		return fmt.Errorf("failed to start saver: %w", err)
	}
	a.logger.Info("periodic save started",
		logger.Duration("interval", a.cfg.SaveInterval))

	if err := a.sweeper.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session sweeper: %w", err)
	}

	if a.homepageSync != nil {
		if err := a.homepageSync.Start(ctx); err != nil {
			return fmt.Errorf("failed to start homepage sync: %w", err)
		}
		a.logger.Info("homepage sync started",
			logger.String("file", a.cfg.HomepageFile),
			logger.String("profile", a.cfg.HomepageProfile),
			logger.Duration("interval", a.cfg.HomepageInterval))
	}
	return nil
}

func (a *App) shutdown(runErr error) error {
	if a.homepageSync != nil {
		a.homepageSync.Stop()
	}
	a.sweeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	a.saver.Stop()
	if err := a.storage.SaveAll(); err != nil {
		a.logger.Error("final save failed", logger.Error(err))
		if runErr == nil {
			runErr = fmt.Errorf("failed to save state: %w", err)
		}
	} else {
		a.logger.Info("✅ State saved")
	}

	if a.redisClient != nil {
		utils.MustClose(a.redisClient, "redis", a.logger)
	}

	a.logger.Info("✅ startpage stopped")
	_ = a.logger.Sync()
	return runErr
}
