package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"petclinic/internal/config"
	"petclinic/internal/database"
	"petclinic/internal/events"
	"petclinic/internal/middleware"
	"petclinic/internal/modules/assignment"
	"petclinic/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger.Init(cfg.App.Env, cfg.App.LogLevel)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DB.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("migrate database")
		}
	}

	deps := Dependencies{
		DB:        db,
		Lease:     assignment.NoLease{},
		Publisher: events.Nop{},
		Hub:       events.NewHub(middleware.AllowedOrigins(cfg.CORS.AllowedOrigins)...),
	}
	defer deps.Hub.Close()

	publishers := events.Fanout{deps.Hub}

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		deps.Lease = assignment.NewRedisLease(rdb, cfg.Assignment.LeaseTTL, cfg.Assignment.LeaseWait)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("assignment lease enabled")
	} else {
		log.Info().Msg("REDIS_ADDR not set, doctor assignment is best-effort")
	}

	if len(cfg.Kafka.Brokers) > 0 {
		producer := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.TopicBookings, cfg.Kafka.TopicInvoices)
		defer func() {
			if err := producer.Close(); err != nil {
				log.Warn().Err(err).Msg("close kafka producer")
			}
		}()
		publishers = append(publishers, producer)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Msg("kafka events enabled")
	}
	deps.Publisher = publishers

	router := NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Int("port", cfg.App.Port).Msg("petclinic api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
