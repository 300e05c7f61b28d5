package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/sahilchouksey/examace-vault/api"
	"github.com/sahilchouksey/examace-vault/catalog"
	"github.com/sahilchouksey/examace-vault/config"
	"github.com/sahilchouksey/examace-vault/database"
	"github.com/sahilchouksey/examace-vault/resources"
	"github.com/sahilchouksey/examace-vault/router"
	"github.com/sahilchouksey/examace-vault/services"
	"github.com/sahilchouksey/examace-vault/services/cron"
	"github.com/sahilchouksey/examace-vault/services/storage"
	"github.com/sahilchouksey/examace-vault/utils"
	"github.com/sahilchouksey/examace-vault/utils/cache"
)

const shutdownTimeout = 15 * time.Second

func SetupAndRunServer() error {
	// Load ENV; a missing .env is fine when the variables come from the shell
	if err := config.LoadENV(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	env, err := config.Get()
	if err != nil {
		return err
	}

	log, closeLog, err := utils.NewLogger(utils.LoggerConfig{
		Level:  env.LOG_LEVEL,
		Path:   env.LOG_FILE,
		Pretty: !env.IsProduction(),
	})
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer closeLog()

	// Initialize GORM database connection
	store, err := database.StartGORM(env, log)
	if err != nil {
		log.Error().Msg("check whether Postgres is running (make docker-up / make db-up)")
		return err
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// Redis is optional: without it every read goes to Postgres
	redisCache, err := cache.NewRedisCache(env.REDIS_URL)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, caching disabled")
		redisCache = nil
	} else {
		defer redisCache.Close()
	}

	spaces, err := storage.NewSpacesClient(storage.SpacesConfig{
		AccessKey:  env.SPACES_ACCESS_KEY,
		SecretKey:  env.SPACES_SECRET_KEY,
		Bucket:     env.SPACES_BUCKET,
		Region:     env.SPACES_REGION,
		Endpoint:   env.SPACES_ENDPOINT,
		CDNURL:     env.SPACES_CDN_ENDPOINT,
		PresignTTL: env.SPACES_PRESIGN_TTL,
	})
	if err != nil {
		return err
	}

	deps := build(env, store, redisCache, spaces, log)

	// Initialize Cron Manager (only if enabled via environment variable)
	if env.CRON_ENABLED {
		manager := cron.NewCronManager(database.NewCronLogRepository(store.DB()), log)
		for _, job := range deps.jobs {
			if err := manager.Register(job); err != nil {
				return err
			}
		}
		manager.Start()
		defer manager.Stop()
	}

	server := api.NewAPIServer(fmt.Sprintf(":%d", env.PORT), log)
	router.SetupRoutes(server.GetEngine(), deps.routes)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Run() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	// let pending download counters land before the pool closes
	deps.routes.Lister.Wait()
	return nil
}

type wiring struct {
	routes router.Dependencies
	jobs   []cron.Job
}

// build constructs every repository and service over the one injected
// connection
func build(env *config.EnvironmentVariable, store *database.GORMStore, redisCache *cache.RedisCache, spaces *storage.SpacesClient, log zerolog.Logger) wiring {
	db := store.DB()
	catalogRepo := database.NewCatalogRepository(db)
	resourceRepo := database.NewResourceRepository(db)
	formRepo := database.NewFormRepository(db)

	var (
		catalogStore catalog.Store = catalogRepo
		statsCache   catalog.Cache
	)
	if redisCache != nil {
		catalogStore = catalog.NewCachedStore(catalogRepo, redisCache, env.CACHE_TTL, log)
		statsCache = redisCache
	}
	fetcher := catalog.NewFetcher(catalogStore, log)

	lister := resources.NewLister(resourceRepo, spaces, resources.Options{
		PublishedOnly:    env.RESOURCES_PUBLISHED_ONLY,
		IncrementTimeout: 10 * time.Second,
	}, log)
	stats := services.NewStatsService(catalogRepo, resourceRepo, statsCache, env.CACHE_TTL, log)
	mailer := services.NewEmailService(env, log)

	w := wiring{
		routes: router.Dependencies{
			DB:                store,
			Loader:            fetcher,
			Lister:            lister,
			Search:            resourceRepo,
			Stats:             stats,
			Subscriptions:     services.NewSubscriptionService(formRepo, log),
			Contact:           services.NewContactService(formRepo, mailer, env.CONTACT_TO_EMAIL, log),
			AllowedOrigins:    env.ALLOWED_ORIGINS,
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			FormLimit:         5,
			FormWindow:        time.Minute,
			Logger:            log,
		},
		jobs: []cron.Job{
			cron.RefreshStats(stats),
			cron.PruneRunLogs(database.NewCronLogRepository(db), 30*24*time.Hour),
		},
	}
	if redisCache != nil {
		w.routes.Cache = redisCache
		w.jobs = append(w.jobs, cron.WarmCatalogCache(fetcher, redisCache))
	}
	return w
}
