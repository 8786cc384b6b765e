package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"job-portal/internal/core/auth"
	"job-portal/internal/core/cache"
	"job-portal/internal/core/config"
	"job-portal/internal/core/database"
	"job-portal/internal/core/logger"
	"job-portal/internal/core/server"
	"job-portal/internal/core/session"
	"job-portal/internal/repo"
	"job-portal/internal/service"
	"job-portal/internal/transport/http/router"
	"job-portal/internal/transport/http/view"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, cleanup := logger.New(cfg.Log)
	defer cleanup()
	defer logger.RedirectStdLog(log)()

	db := mustOpenDB(cfg, log)
	defer func() { _ = database.Close(db) }()
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer func() { _ = rdb.Close() }()
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis not reachable", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		cancel()
	}

	var backend session.Backend = session.NewMemoryBackend()
	if cfg.Session.Store == "redis" {
		backend = session.NewRedisBackend(rdb)
	}
	store := session.NewStore(backend, []byte(cfg.Session.Secret))
	store.MaxAge(cfg.Session.MaxAgeSec)
	store.Options.Secure = cfg.Session.Secure

	facets := &cache.Cache{}
	if rdb != nil {
		facets = cache.NewWithClient(rdb)
	}

	views, err := view.New()
	if err != nil {
		log.Fatal("templates", zap.Error(err))
	}

	users := repo.NewUserRepo(db)
	companies := repo.NewCompanyRepo(db)
	offers := repo.NewOfferRepo(db)
	apps := repo.NewApplicationRepo(db)

	mode := gin.DebugMode
	if cfg.App.Production() {
		mode = gin.ReleaseMode
	}
	r := router.New(router.Deps{
		Log:            log,
		Mode:           mode,
		AllowedOrigins: cfg.App.HTTP.AllowedOrigins,
		Limits: router.Limits{
			GlobalRPS:      cfg.Security.GlobalRPS,
			GlobalBurst:    cfg.Security.GlobalBurst,
			LoginRPS:       cfg.Security.LoginRPS,
			LoginBurst:     cfg.Security.LoginBurst,
			MaxInFlight:    cfg.App.HTTP.MaxInFlight,
			MaxBodyBytes:   cfg.App.HTTP.MaxBodyBytes,
			RequestTimeout: time.Duration(cfg.App.HTTP.RequestTimeout) * time.Second,
		},
		Sessions:    store,
		SessionName: cfg.Session.Name,
		Views:       views,
		Auth:        service.NewAuthService(users, auth.Hasher{Cost: cfg.Security.BcryptCost}, log),
		Catalog: service.NewCatalogService(companies, offers, users, facets,
			time.Duration(cfg.Cache.FacetsTTLSec)*time.Second, log),
		Apps: service.NewApplicationService(apps, offers, users, cfg.Workflow.StrictTransitions, log),
	})

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)
	srv.ErrorLog = logger.ToStdLogger(log, zapcore.WarnLevel)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("portal starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("session_store", cfg.Session.Store),
		zap.Bool("strict_transitions", cfg.Workflow.StrictTransitions),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("portal start FAILED", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
	log.Info("portal stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		PrepareStmt:        cfg.DB.PrepareStmt,
	}, l)
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
