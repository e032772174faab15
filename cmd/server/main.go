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

	"github.com/fanmarket/shop/internal/config"
	"github.com/fanmarket/shop/internal/es"
	"github.com/fanmarket/shop/internal/handlers"
	"github.com/fanmarket/shop/internal/handlers/cart"
	"github.com/fanmarket/shop/internal/logging"
	"github.com/fanmarket/shop/internal/middleware/loggingmw"
	"github.com/fanmarket/shop/internal/mykafka"
	"github.com/fanmarket/shop/internal/search"
	"github.com/fanmarket/shop/internal/token"
	httpserver "github.com/fanmarket/shop/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("db init: %v", err)
	}

	if err := config.RunMigrations(configuration, "migrations"); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	var prod *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		prod, err = mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
		if err != nil {
			log.Fatal(err)
		}
		defer prod.Close()
	} else {
		logger.Warn("KAFKA_ADDRESS not set, events disabled")
	}

	var index *search.Index
	var searchHandler *handlers.SearchHandler
	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Fatal(err)
		}
		index = &search.Index{ES: esClient, Name: "products"}
		searchHandler = &handlers.SearchHandler{DB: db, ES: esClient, Index: "products"}
	} else {
		logger.Warn("ES_URL not set, fuzzy search disabled")
		searchHandler = &handlers.SearchHandler{DB: db}
	}

	tokens := &token.Service{DB: db}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		DB:              db,
		Tokens:          tokens,
		AuthHandler:     &handlers.AuthHandler{DB: db, Tokens: tokens, Producer: prod},
		UserHandler:     &handlers.UserHandler{DB: db},
		ProductHandler:  &handlers.ProductHandler{DB: db, Producer: prod, Index: index},
		CategoryHandler: &handlers.CategoryHandler{DB: db},
		FavoriteHandler: &handlers.FavoriteHandler{DB: db, Producer: prod},
		ReviewHandler:   &handlers.ReviewHandler{DB: db, Producer: prod},
		CartHandler:     &cart.CartHandler{DB: db, Producer: prod},
		SearchHandler:   searchHandler,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.PORT,
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

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}
}
