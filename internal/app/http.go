package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexedwards/argon2id"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/adanyl0v/task-manager-api/internal/config"
	"github.com/adanyl0v/task-manager-api/internal/delivery/http/v1"
	"github.com/adanyl0v/task-manager-api/internal/services"
	"github.com/adanyl0v/task-manager-api/internal/storage"
	"github.com/adanyl0v/task-manager-api/internal/validation"
)

// NewRouter wires the services over store and mounts the API. A nil
// hashParams selects argon2id.DefaultParams.
func NewRouter(logger zerolog.Logger, cfg *config.Config, store storage.Store, hashParams *argon2id.Params) *gin.Engine {
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	validator := validation.New()
	authService := services.NewAuthService(
		logger.With().Str("service", "auth").Logger(),
		store,
		validator,
		services.TokenConfig{
			Issuer:     cfg.Auth.TokenIssuer,
			SigningKey: []byte(cfg.Auth.TokenSigningKey),
			TTL:        cfg.Auth.TokenTTL,
		},
		hashParams,
	)
	taskService := services.NewTaskService(
		logger.With().Str("service", "tasks").Logger(),
		store,
		validator,
	)
	v1Handler := v1.New(logger, authService, taskService, store)

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	if len(corsCfg.AllowOrigins) == 0 || corsCfg.AllowOrigins[0] == "*" {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(v1Handler.HandleRecovery)
	router.Use(cors.New(corsCfg))

	var authLimiter gin.HandlerFunc
	if cfg.Auth.RateLimitRPS > 0 {
		authLimiter = v1.RateLimiter(rate.Limit(cfg.Auth.RateLimitRPS), cfg.Auth.RateLimitBurst)
	}
	v1.RegisterRoutes(router, v1Handler, authLimiter)
	return router
}

func MustListenAndServeHTTP(logger zerolog.Logger, cfg *config.Config, handler http.Handler) {
	httpCfg := cfg.HTTP

	server := &http.Server{
		Addr:              net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: httpCfg.ReadHeaderTimeout,
	}

	go func() {
		logger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	// kill (no params) sends SIGTERM, kill -2 sends SIGINT.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	logger.Info().Msg("shut down http server")
}
