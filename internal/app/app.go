package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/labstack/echo/v4"
	nats "github.com/nats-io/nats.go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/minjun0702/nodeskillproject/config"
	httpadapter "github.com/minjun0702/nodeskillproject/internal/adapters/http"
	apiv1 "github.com/minjun0702/nodeskillproject/internal/adapters/http/api/v1"
	"github.com/minjun0702/nodeskillproject/internal/adapters/http/api/v1/handlers"
	authmw "github.com/minjun0702/nodeskillproject/internal/adapters/http/middleware"
	natsadapter "github.com/minjun0702/nodeskillproject/internal/adapters/nats"
	repo "github.com/minjun0702/nodeskillproject/internal/adapters/postgres"
	"github.com/minjun0702/nodeskillproject/internal/domain"
	"github.com/minjun0702/nodeskillproject/internal/usecase"
	pkglog "github.com/minjun0702/nodeskillproject/pkg/log"
)

type App struct {
	cfg      *config.Config
	logger   pkglog.Logger
	db       *gorm.DB
	natsConn *nats.Conn
	echo     *echo.Echo
}

func New(ctx context.Context) (*App, error) {
	cfg := config.MustLoad()
	logger := pkglog.New(cfg.AppName, cfg.AppEnv)

	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.RefreshToken{}, &domain.Resume{}, &domain.ResumeLog{}); err != nil {
		return nil, err
	}

	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		log.Printf("nats connect failed: %v", err)
	}

	userRepo := repo.NewUserRepository(db)
	refreshRepo := repo.NewRefreshTokenRepository(db)
	resumeRepo := repo.NewResumeRepository(db)

	var events natsadapter.EventPublisher
	if nc != nil {
		events = natsadapter.NewEventPublisher(nc, cfg.NATSUserCreatedSubject, cfg.NATSResumeStatusSubject)
	}

	codec, err := usecase.NewTokenCodec(cfg)
	if err != nil {
		return nil, err
	}

	authSvc := usecase.NewAuthService(logger, userRepo, refreshRepo, codec, events)
	resumeSvc := usecase.NewResumeService(logger, resumeRepo, events)

	accessGuard := authmw.NewAccessGuard(codec, userRepo)
	refreshGuard := authmw.NewRefreshGuard(codec, userRepo, refreshRepo)

	authHandler := handlers.NewAuthHandler(authSvc)
	resumeHandler := handlers.NewResumeHandler(resumeSvc)
	router := httpadapter.NewRouter(cfg, apiv1.NewRouter(authHandler, resumeHandler, accessGuard.Handler, refreshGuard.Handler))

	e := echo.New()
	router.Setup(e)

	return &App{cfg: cfg, logger: logger, db: db, natsConn: nc, echo: e}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.echo.Shutdown(shutdownCtx)
	}()
	go func() {
		errCh <- a.echo.Start(fmt.Sprintf("%s:%s", a.cfg.HTTPHost, a.cfg.HTTPPort))
	}()
	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) Close() {
	if a.natsConn != nil {
		_ = a.natsConn.Drain()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// openDB retries the initial connection; the database container often comes
// up a few seconds after the service in compose setups.
func openDB(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	var db *gorm.DB
	connect := func() error {
		var err error
		db, err = gorm.Open(postgres.Open(buildDSN(cfg)), &gorm.Config{
			Logger: loggerForGorm(cfg),
		})
		return err
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)
	if err := backoff.Retry(connect, policy); err != nil {
		return nil, err
	}
	return db, nil
}

func buildDSN(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)
}

func loggerForGorm(cfg *config.Config) gormlogger.Interface {
	level := gormlogger.Warn
	if cfg.AppEnv == "local" {
		level = gormlogger.Info
	}
	return gormlogger.Default.LogMode(level)
}
