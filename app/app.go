package app

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/dromero/biblioteca-service/config"
	"github.com/dromero/biblioteca-service/internal/handler"
	"github.com/dromero/biblioteca-service/internal/repository"
	"github.com/dromero/biblioteca-service/internal/server"
	"github.com/dromero/biblioteca-service/internal/service"
	"github.com/dromero/biblioteca-service/migrations"
	"github.com/dromero/biblioteca-service/pkg/kafka"
	"github.com/dromero/biblioteca-service/pkg/logger"
	"github.com/dromero/biblioteca-service/pkg/postgres"
)

// Run wires the process: one connection pool constructed here and injected
// into both repositories, services on top, echo handler and http server.
// The pool is closed exactly once, at shutdown.
func Run(cfg *config.Config) error {
	log := logger.NewLogger(cfg.Log, "biblioteca")

	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return fmt.Errorf("db init %v", err)
	}

	authorRepo, err := repository.NewAuthorRepository(db, log)
	if err != nil {
		return fmt.Errorf("author repo %v", err)
	}
	bookRepo, err := repository.NewBookRepository(db, log)
	if err != nil {
		return fmt.Errorf("book repo %v", err)
	}

	var events kafka.Enqueuer
	if len(cfg.Kafka.Addrs) > 0 {
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			return fmt.Errorf("kafka.NewProducer %v", err)
		}
		defer producer.Close() //nolint:errcheck
		events = kafka.NewEnqueuer(producer)
	}

	authorSvc := service.NewAuthorService(authorRepo, events, log)
	bookSvc := service.NewBookService(bookRepo, authorRepo, events, log)

	h := handler.New(authorSvc, bookSvc, log)
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.Error("srv.Stop", zap.Error(err))
	}
	db.Close()
	log.Info("Graceful shutdown finished")
	return nil
}
