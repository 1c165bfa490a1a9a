package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/go-restaurant-reservations/internal/config"
	kafkax "github.com/ariefcatur/go-restaurant-reservations/internal/kafka"
	"github.com/ariefcatur/go-restaurant-reservations/internal/logging"
	"github.com/ariefcatur/go-restaurant-reservations/internal/notify"
	"github.com/ariefcatur/go-restaurant-reservations/internal/redisx"
	"github.com/ariefcatur/go-restaurant-reservations/internal/reservations"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	name := cfg.ServiceName + "-notifier"
	log := logging.New(name, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &notify.Service{
		Dedup:  &redisx.Deduper{RDB: rdb, Service: "notifier"},
		Sender: notify.LogSender{Log: log},
		Log:    log,
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.NotifierGroup, reservations.TopicReservationEvents, cfg.NotifierWorkers, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("notifier consumer started",
			zap.String("group", cfg.NotifierGroup),
			zap.String("topic", reservations.TopicReservationEvents),
			zap.Int("workers", cfg.NotifierWorkers),
		)
		return cons.Start(gctx, svc.HandleEvent)
	})
	if err := g.Wait(); err != nil {
		log.Error("consumer exit", zap.Error(err))
		os.Exit(1)
	}
	log.Info("notifier stopped")
}
