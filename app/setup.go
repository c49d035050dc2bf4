package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sahilchouksey/scholarhub/api"
	"github.com/sahilchouksey/scholarhub/config"
	"github.com/sahilchouksey/scholarhub/database"
	"github.com/sahilchouksey/scholarhub/router"
	"github.com/sahilchouksey/scholarhub/services"
	"github.com/sahilchouksey/scholarhub/services/cron"
	"github.com/sahilchouksey/scholarhub/services/digitalocean"
	"github.com/sahilchouksey/scholarhub/utils/auth"
	"github.com/sahilchouksey/scholarhub/utils/cache"
	"github.com/sahilchouksey/scholarhub/utils/logger"
	"github.com/sahilchouksey/scholarhub/utils/middleware"
	"github.com/sahilchouksey/scholarhub/utils/response"
)

func SetupAndRunServer() error {
	// .env is optional outside production
	if err := config.LoadENV(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	env, err := config.Get()
	if err != nil {
		return err
	}
	if env.JWT_SECRET == "" {
		return errors.New("JWT_SECRET environment variable is not set")
	}

	log, err := logger.New(env.GO_ENV)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()
	response.SetLogger(log)

	store, err := database.StartGORM(env, log)
	if err != nil {
		log.Error("check whether postgres is running", "host", env.DB_HOST, "port", env.DB_PORT)
		return err
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		return err
	}

	deps := router.Dependencies{
		Store: store,
		JWTManager: auth.NewJWTManager(auth.JWTConfig{
			Secret:        env.JWT_SECRET,
			Expiry:        24 * time.Hour,
			RefreshExpiry: 7 * 24 * time.Hour,
			Issuer:        env.JWT_ISSUER,
		}),
		Log: log,
		Security: &middleware.SecurityConfig{
			AllowedOrigins:    env.ALLOWED_ORIGINS,
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Audit: middleware.NewAuditLogger(store.GetDB(), log),
	}

	// Redis backs the stats cache and brute force protection
	redisCache, err := cache.NewRedisCache(env.REDIS_URL)
	if err != nil {
		log.Warn("redis unavailable, stats caching and brute force protection disabled", "error", err)
	} else {
		defer redisCache.Close()
		deps.Cache = redisCache
		deps.Health = redisCache
	}

	spacesConfig := digitalocean.SpacesConfig{
		AccessKey: env.DO_SPACES_ACCESS_KEY,
		SecretKey: env.DO_SPACES_SECRET_KEY,
		Bucket:    env.DO_SPACES_BUCKET,
		Region:    env.DO_SPACES_REGION,
		Endpoint:  env.DO_SPACES_ENDPOINT,
		CDNURL:    env.DO_SPACES_CDN_ENDPOINT,
	}
	if spacesConfig.IsConfigured() {
		spaces, err := digitalocean.NewSpacesClient(spacesConfig)
		if err != nil {
			log.Warn("spaces client unavailable, upload files will not be stored", "error", err)
		} else {
			deps.Files = spaces
		}
	}

	if env.MODEL_ACCESS_KEY != "" {
		deps.AI = digitalocean.NewInferenceClient(digitalocean.InferenceConfig{
			APIKey: env.MODEL_ACCESS_KEY,
			Model:  env.INFERENCE_MODEL,
		})
	}

	var cronManager *cron.CronManager
	if env.CRON_ENABLED {
		cronManager = cron.NewCronManager(store.GetDB(), services.NewAdminService(store.GetDB(), deps.Cache, log), log)
		if err := cronManager.Start(); err != nil {
			// the API still works without scheduled maintenance
			log.Warn("failed to start cron jobs", "error", err)
			cronManager = nil
		}
	}

	server := api.NewAPIServer(fmt.Sprintf(":%d", env.PORT), log)
	router.SetupRoutes(server.GetEngine(), deps)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}
	if cronManager != nil {
		cronManager.Stop()
	}
	deps.Audit.Wait()
	return nil
}
