package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/HaslienFotografene/haslien-short-2/cache"
	"github.com/HaslienFotografene/haslien-short-2/config"
	"github.com/HaslienFotografene/haslien-short-2/geo"
	"github.com/HaslienFotografene/haslien-short-2/handler"
	appLogger "github.com/HaslienFotografene/haslien-short-2/logger"
	"github.com/HaslienFotografene/haslien-short-2/middleware"
	"github.com/HaslienFotografene/haslien-short-2/model"
	redisClient "github.com/HaslienFotografene/haslien-short-2/redis"
	"github.com/HaslienFotografene/haslien-short-2/resolver"
	"github.com/HaslienFotografene/haslien-short-2/stats"
	"github.com/HaslienFotografene/haslien-short-2/store"
	"github.com/HaslienFotografene/haslien-short-2/token"
)

func main() {
	appLogger.Initialize()

	cfg := config.MustLoadConfig()
	log.Info().Msg("Configuration loaded successfully")

	rdb := redisClient.NewClient(cfg.Redis)
	st := store.New(rdb)

	// Fresh signing secret every start: outstanding gate tokens die with the
	// process.
	secret, err := token.NewSecret()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to generate signing secret")
	}
	issuer := token.NewIssuer(secret)

	var docCache *cache.Cache
	if cfg.Cache.Enabled {
		docCache, err = cache.New(cfg.Cache)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize cache")
		}
	} else {
		log.Info().Msg("Cache disabled in configuration")
	}

	bits := model.FlagBits{
		Deprecated: cfg.Flags.Deprecated,
		Passphrase: cfg.Flags.Passphrase,
		Login:      cfg.Flags.Login,
		Frame:      cfg.Flags.Frame,
	}

	res := resolver.New(st, docCache, bits, issuer)
	recorder := stats.NewRecorder(st, geo.NewClient(cfg.Geo))
	h := handler.New(st, res, recorder, issuer, docCache, cfg)

	apiAuth := middleware.NewAPIAuth(cfg.Auth.APIToken)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	r := mux.NewRouter()
	r.Use(middleware.CORS)
	r.Use(middleware.RequestLogger)
	r.Use(rateLimiter.Limit)

	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/cache/metrics", h.CacheMetrics).Methods("GET")

	r.HandleFunc("/auth/login", h.Login).Methods("POST")
	r.HandleFunc("/auth/passphrase", h.Passphrase).Methods("POST")
	r.HandleFunc("/.frame/", h.Frame).Methods("GET")
	r.HandleFunc("/qr/{path}", h.QR).Methods("GET")

	r.Handle("/new", apiAuth.Protect(http.HandlerFunc(h.Create))).Methods("POST")

	list := r.PathPrefix("/list").Subrouter()
	list.Use(apiAuth.Protect)
	list.HandleFunc("", h.List).Methods("GET")
	list.HandleFunc("/logs", h.ListLogs).Methods("GET")
	list.HandleFunc("/logs/{path}", h.ListPathLogs).Methods("GET")
	list.HandleFunc("/exist", h.ExistDest).Methods("GET")
	list.HandleFunc("/exist/{path}", h.ExistPath).Methods("GET")
	list.HandleFunc("/{path}", h.ListPath).Methods("GET")

	r.Handle("/{path}", apiAuth.Protect(http.HandlerFunc(h.Delete))).Methods("DELETE")

	// Redirect routes last so they never shadow the API surface
	r.HandleFunc("/", h.Root).Methods("GET")
	r.HandleFunc("/{path}", h.Redirect).Methods("GET")

	serverAddress := fmt.Sprintf("%s:%s", cfg.WebServer.IP, cfg.WebServer.Port)
	server := &http.Server{
		Addr:         serverAddress,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.WebServer.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WebServer.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info().
			Str("address", serverAddress).
			Str("scheme", cfg.WebServer.Scheme).
			Msg("Starting server")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.WebServer.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	docCache.Close()

	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close Redis connection")
	}

	log.Info().Msg("Server stopped gracefully")
}
