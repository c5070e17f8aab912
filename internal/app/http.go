package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/adanyl0v/go-task-api/docs"
	"github.com/adanyl0v/go-task-api/internal/config"
	v1 "github.com/adanyl0v/go-task-api/internal/delivery/http/v1"
	"github.com/adanyl0v/go-task-api/internal/metrics"
	"github.com/adanyl0v/go-task-api/internal/services"
)

func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP

	s := newStores(globalLogger, cfg, globalPostgresPool, globalRedisClient)
	router, err := newRouter(globalLogger, cfg, s, prometheus.NewRegistry())
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to set up http router")
		panic(err)
	}

	server := &http.Server{
		Addr:         net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler:      router,
		ReadTimeout:  httpCfg.ReadTimeout,
		WriteTimeout: httpCfg.WriteTimeout,
		IdleTimeout:  httpCfg.IdleTimeout,
	}

	go func() {
		globalLogger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	globalLogger.Info().
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err = server.Shutdown(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	globalLogger.Info().Msg("shut down http server")
}

// newRouter builds the gin engine serving the whole API.
func newRouter(logger zerolog.Logger, cfg *config.Config, s stores, reg *prometheus.Registry) (*gin.Engine, error) {
	tokens, err := services.NewTokenService(
		cfg.JWT.Issuer,
		[]byte(cfg.JWT.SigningKey),
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	authService := services.NewAuthService(logger, s.users, s.sessions, tokens)
	taskService := services.NewTaskService(logger, s.tasks)
	handler := v1.New(logger, authService, taskService, s.checks...)

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	router := gin.New()
	router.Use(v1.Recovery(logger))
	router.Use(v1.RequestLogger(logger))
	router.Use(m.Middleware())
	if len(cfg.HTTP.CORSAllowedOrigins) > 0 {
		router.Use(cors.New(corsConfig(cfg.HTTP.CORSAllowedOrigins)))
	}

	router.GET("/metrics", gin.WrapH(metrics.Handler(reg)))
	if cfg.HTTP.SwaggerEnabled {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	v1.RegisterRoutes(router, handler)
	return router, nil
}

func corsConfig(origins []string) cors.Config {
	corsCfg := cors.DefaultConfig()
	if slices.Contains(origins, "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	corsCfg.AddAllowHeaders("Authorization")
	return corsCfg
}
