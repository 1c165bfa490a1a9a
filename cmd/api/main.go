package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-restaurant-reservations/internal/config"
	"github.com/ariefcatur/go-restaurant-reservations/internal/httpx"
	kafkax "github.com/ariefcatur/go-restaurant-reservations/internal/kafka"
	"github.com/ariefcatur/go-restaurant-reservations/internal/logging"
	"github.com/ariefcatur/go-restaurant-reservations/internal/postgres"
	"github.com/ariefcatur/go-restaurant-reservations/internal/redisx"
	"github.com/ariefcatur/go-restaurant-reservations/internal/reservations"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.ServiceName, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("api exited", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Store
	var store reservations.Store
	switch cfg.StoreBackend {
	case config.BackendMemory:
		store = reservations.NewMemoryStore()
	default:
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return err
		}
		store = &reservations.Repo{DB: db}
	}

	opts := []reservations.Option{
		reservations.WithLogger(log),
		reservations.WithClientIDs(cfg.AllowClientIDs),
	}

	// Kafka producer. It gets its own context so queued events still flush
	// after the signal cancels ctx.
	var prod *kafkax.Producer
	if cfg.EventsEnabled {
		prod = kafkax.NewProducer(cfg.KafkaBrokers, reservations.TopicReservationEvents, 1024, log)
		prod.Start(context.Background())
		opts = append(opts, reservations.WithPublisher(&kafkax.EventPublisher{Sink: prod}, cfg.ServiceName))
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := reservations.NewService(store, opts...)

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)
	}
	router := httpx.NewRouter(limiter)
	rh := &httpx.ReservationsHandler{
		Service: svc,
		Cache:   &redisx.ReservationCache{RDB: rdb},
		Log:     log,
	}
	rh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("store", cfg.StoreBackend),
			zap.Bool("events", cfg.EventsEnabled),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(sctx)
		if err != nil {
			log.Warn("http shutdown incomplete; late events will be rejected", zap.Error(err))
		}
		if prod != nil {
			// Handlers still running past the timeout get ErrProducerClosed.
			prod.Close()
			prod.WaitClosed()
		}
		return err
	})
	return g.Wait()
}
