package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/sweetshop/backend/internal/config"
	"github.com/sweetshop/backend/internal/es"
	"github.com/sweetshop/backend/internal/handlers"
	"github.com/sweetshop/backend/internal/logging"
	"github.com/sweetshop/backend/internal/middleware/auth"
	loggingmw "github.com/sweetshop/backend/internal/middleware/logging"
	"github.com/sweetshop/backend/internal/mykafka"
	"github.com/sweetshop/backend/internal/seed"
	"github.com/sweetshop/backend/internal/service/search"
	"github.com/sweetshop/backend/internal/token"
	httpserver "github.com/sweetshop/backend/internal/transport/http"
)

const sweetsIndex = "sweets"

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LogLevel)
	if configuration.SecretKey == config.DefaultSecretKey {
		logger.Warn("SECRET_KEY is using the insecure default, override it in production")
	}

	db, err := config.InitDB(context.Background(), configuration.DatabaseURL)
	if err != nil {
		log.Fatalf("Ошибка инициализации БД: %v", err)
	}

	if err := seed.Run(db, configuration.AdminEmail, configuration.AdminPassword); err != nil {
		log.Fatal(err)
	}

	tokens := token.NewService([]byte(configuration.SecretKey))

	var prod *mykafka.Producer
	if configuration.KafkaAddress != "" {
		brokers := []string{configuration.KafkaAddress}
		topics := []string{"user_events", "sweet_events"}
		prod, err = mykafka.NewProducer(brokers, topics)
		if err != nil {
			log.Fatal(err)
		}
	} else {
		logger.Warn("KAFKA_ADDRESS is empty, event publishing disabled")
	}

	var indexer *search.Indexer
	searchHandler := &handlers.SearchHandler{Index: sweetsIndex}
	if configuration.ESURL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Fatal(err)
		}
		indexer = &search.Indexer{ES: esClient, Index: sweetsIndex}
		searchHandler.ES = esClient
	} else {
		logger.Warn("ES_URL is empty, search disabled")
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), middleware.CORS())
	e.Use(loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		DB:            db,
		AuthHandler:   &handlers.AuthHandler{DB: db, Tokens: tokens, Producer: prod},
		SweetHandler:  &handlers.SweetHandler{DB: db, Producer: prod, Indexer: indexer},
		SearchHandler: searchHandler,
		Gate:          &auth.Gate{DB: db, Tokens: tokens},
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         configuration.HTTPAddr,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	} else {
		logger.Error("db() error", "error", err)
	}

	if prod != nil {
		if err := prod.Close(); err != nil {
			logger.Error("kafka close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
