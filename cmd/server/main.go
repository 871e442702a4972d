package main // Entry point package

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/iliyamo/tour-booking/internal/apperr"
	"github.com/iliyamo/tour-booking/internal/config"
	"github.com/iliyamo/tour-booking/internal/database"
	"github.com/iliyamo/tour-booking/internal/handler"
	"github.com/iliyamo/tour-booking/internal/logger"
	"github.com/iliyamo/tour-booking/internal/middleware"
	"github.com/iliyamo/tour-booking/internal/queue"
	"github.com/iliyamo/tour-booking/internal/repository"
	"github.com/iliyamo/tour-booking/internal/router"
	"github.com/iliyamo/tour-booking/internal/service"
	"github.com/iliyamo/tour-booking/internal/utils"
)

func main() {
	_ = godotenv.Load("config.env") // optional; variables already set win
	cfg := config.Load()

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		stdlog.Fatalf("build logger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Stores ----
	client, db, err := database.Open(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal("connect mongodb", zap.Error(err))
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(dctx)
	}()
	if err := database.EnsureIndexes(ctx, db); err != nil {
		log.Fatal("ensure indexes", zap.Error(err))
	}
	log.Info("mongodb connected", zap.String("db", cfg.MongoDB))

	rdb := config.NewRedisClient(ctx)
	if rdb == nil {
		log.Warn("redis unavailable; rate limiting and response cache disabled")
	} else {
		defer func() { _ = rdb.Close() }()
	}

	users := repository.NewUserRepo(db)
	tours := repository.NewTourRepo(db)
	reviews := repository.NewReviewRepo(db)

	// ---- Mail ----
	var mailer service.Mailer = queue.NewSMTPSender(cfg.Mail)
	if cfg.RabbitURL != "" {
		mailer = service.NewQueuePublisher(cfg.RabbitURL, log)
		go func() {
			err := queue.StartEmailConsumer(ctx, cfg.RabbitURL, queue.NewSMTPSender(cfg.Mail), log)
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Error("email consumer stopped", zap.Error(err))
			}
		}()
	}

	// ---- Services ----
	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiresIn)
	auth := service.NewAuthService(users, tokens, mailer, cfg.BcryptCost, log)
	ratings := service.NewReviewService(reviews, tours, log)
	metrics := middleware.NewMetrics("tour_booking")

	// ---- HTTP ----
	e := echo.New()
	e.HideBanner = true
	e.Validator = utils.NewRequestValidator()
	e.HTTPErrorHandler = apperr.Handler(cfg.IsDevelopment(), log)

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.Recover())
	e.Use(echomw.Secure())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowCredentials: true,
	}))
	e.Use(echomw.BodyLimit("10K"))
	e.Use(metrics.Middleware())
	if cfg.IsDevelopment() {
		e.Use(middleware.RequestLogger(log))
	}

	router.Register(e, router.Handlers{
		Auth:    handler.NewAuthHandler(cfg, auth),
		Tours:   handler.NewTourHandler(tours, reviews, users),
		Reviews: handler.NewReviewHandler(reviews, users, ratings),
		Users:   handler.NewUserHandler(users, auth),
		Views:   handler.NewViewHandler(tours, reviews, users),
	}, router.Deps{
		Auth:      auth,
		Redis:     rdb,
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
		Metrics:   metrics,
		DB:        handler.PingFunc(func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) }),
		Log:       log,
	})

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		log.Error("graceful shutdown", zap.Error(err))
	}
}
