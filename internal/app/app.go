package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/storefront-apps/contentsets/internal/cache"
	"github.com/storefront-apps/contentsets/internal/config"
	"github.com/storefront-apps/contentsets/internal/db"
	"github.com/storefront-apps/contentsets/internal/http/api/admin"
	"github.com/storefront-apps/contentsets/internal/http/api/storefront"
	"github.com/storefront-apps/contentsets/internal/logging"
	"github.com/storefront-apps/contentsets/internal/security"
	"github.com/storefront-apps/contentsets/internal/settings"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	shutdownTimeout      = 10 * time.Second
	readHeaderTimeout    = 10 * time.Second
	memoryCacheSweepTick = time.Minute
)

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	conf, err := config.Load(config.ResolveConfigPath(cfg.ConfigPath))
	if err != nil {
		return err
	}
	conn, err := openDatabase(conf)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(conn) }()
	if errMigrate := db.Migrate(conn.WithContext(ctx)); errMigrate != nil {
		return errMigrate
	}
	log.Infof("migrated %s database", db.DialectName(conn))
	return nil
}

// PutSetting stores one application setting as JSON.
func PutSetting(ctx context.Context, cfg config.AppConfig, key string, value any) error {
	conf, err := config.Load(config.ResolveConfigPath(cfg.ConfigPath))
	if err != nil {
		return err
	}
	conn, err := openDatabase(conf)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(conn) }()
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	return settings.Put(ctx, conn, key, value)
}

// IssueSessionToken signs a development session token for shop with the
// configured Shopify credentials.
func IssueSessionToken(cfg config.AppConfig, shop string, ttl time.Duration) (string, error) {
	conf, err := config.Load(config.ResolveConfigPath(cfg.ConfigPath))
	if err != nil {
		return "", err
	}
	if !conf.Shopify.SessionTokensEnabled() {
		return "", errors.New("shopify api secret is not configured")
	}
	return security.GenerateSessionToken(conf.Shopify.APISecret, conf.Shopify.APIKey, shop, ttl)
}

// RunServer boots the HTTP server and blocks until ctx is cancelled.
func RunServer(ctx context.Context, cfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	conf, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logCloser, err := logging.Setup(conf.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logCloser.Close() }()

	conn, err := openDatabase(conf)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(conn) }()
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	if errRefresh := settings.RefreshDBConfigSnapshot(ctx, conn); errRefresh != nil {
		log.WithError(errRefresh).Warn("initial settings load failed; using defaults")
	}
	settings.NewRefresher(conn, settings.DefaultRefreshInterval).Start(ctx)

	store, err := openCache(ctx, conf.Redis)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if conf.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              conf.ListenAddr,
		Handler:           NewEngine(conn, conf, store),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("starting server on %s with config=%s (db=%s)", conf.ListenAddr, configPath, db.DialectName(conn))
		if errServe := srv.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", errServe)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// NewEngine builds the router serving the admin and storefront APIs.
func NewEngine(conn *gorm.DB, conf *config.Config, store cache.Cache) *gin.Engine {
	engine := gin.New()
	engine.Use(logging.GinLogger(), logging.GinRecovery())
	admin.RegisterAdminRoutes(engine, conn, conf.Shopify, store)
	storefront.RegisterStorefrontRoutes(engine, conn, store)
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return engine
}

func openDatabase(conf *config.Config) (*gorm.DB, error) {
	opts := db.DefaultOptions()
	opts.MaxOpenConns = conf.Database.MaxOpenConns
	return db.OpenWithOptions(conf.Database.DSN, opts)
}

// openCache connects to Redis when configured and falls back to an
// in-process cache otherwise.
func openCache(ctx context.Context, redisCfg config.RedisConfig) (cache.Cache, error) {
	if redisCfg.Addr == "" {
		memory := cache.NewMemoryCache()
		memory.StartSweeper(ctx, memoryCacheSweepTick)
		log.Info("storefront cache: in-process")
		return memory, nil
	}
	redisCache, err := cache.NewRedisCache(ctx, cache.RedisOptions{
		Addr:      redisCfg.Addr,
		Password:  redisCfg.Password,
		DB:        redisCfg.DB,
		KeyPrefix: redisCfg.KeyPrefix,
	})
	if err != nil {
		return nil, err
	}
	log.Infof("storefront cache: redis at %s", redisCfg.Addr)
	return redisCache, nil
}
