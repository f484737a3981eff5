package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dlomaxw/shinebebright-sub001/internal/auth"
	"github.com/dlomaxw/shinebebright-sub001/internal/catalog"
	"github.com/dlomaxw/shinebebright-sub001/internal/cleanup"
	"github.com/dlomaxw/shinebebright-sub001/internal/config"
	"github.com/dlomaxw/shinebebright-sub001/internal/database"
	"github.com/dlomaxw/shinebebright-sub001/internal/handlers"
	"github.com/dlomaxw/shinebebright-sub001/internal/linkpreview"
	"github.com/dlomaxw/shinebebright-sub001/internal/logging"
	"github.com/dlomaxw/shinebebright-sub001/internal/media"
	"github.com/dlomaxw/shinebebright-sub001/internal/notify"
	"github.com/dlomaxw/shinebebright-sub001/internal/ratelimit"
	"github.com/dlomaxw/shinebebright-sub001/internal/registry"
	"github.com/dlomaxw/shinebebright-sub001/internal/scheduler"
	"github.com/dlomaxw/shinebebright-sub001/internal/search"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("failed to read .env")
	}

	configPath := config.GetEnv("CONFIG_PATH", "config/site.yaml")
	appConfig, err := config.LoadConfig(configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", configPath).Msg("failed to load config, using defaults")
		appConfig = config.DefaultConfig()
	}
	appConfig.ApplyEnv()

	logging.Init(appConfig.Logging)
	log.Info().Str("path", configPath).Str("database", appConfig.Database.Type).Msg("configuration loaded")

	gormDB, err := database.Open(appConfig.Database, logging.NewGormLogger(appConfig.Logging.LogQueries))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer gormDB.Close()

	if err := gormDB.InitSchema(); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize schema")
	}

	reg := registry.Default()
	if err := reg.Validate(); err != nil {
		// lookups still work; the admin validate endpoint lists the problems
		log.Error().Err(err).Msg("media registry is inconsistent")
	}
	cat := catalog.NewService(gormDB, reg)

	// Search is optional; without it /api/search answers 503
	var searchClient *search.SearchClient
	if appConfig.Search.Enabled {
		searchClient = search.NewSearchClient(appConfig.Search.Meilisearch.Host, appConfig.Search.Meilisearch.APIKey)
		if err := searchClient.InitIndexes(); err != nil {
			log.Warn().Err(err).Msg("failed to initialize search indexes")
		}
	}

	var mailer notify.Mailer = notify.NewLogMailer()
	if appConfig.Email.Enabled {
		resendMailer, err := notify.NewResendMailer(appConfig.Email.ResendAPIKey, appConfig.Email.From)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to configure email")
		}
		mailer = resendMailer
	}
	outboxWorker := notify.NewOutboxWorker(gormDB.DB(), mailer, appConfig.Email)
	if n, err := outboxWorker.RequeueStuck(10 * time.Minute); err != nil {
		log.Warn().Err(err).Msg("failed to requeue stuck notifications")
	} else if n > 0 {
		log.Info().Int64("count", n).Msg("requeued stuck notifications")
	}
	outboxWorker.Start()
	defer outboxWorker.Stop()

	thumbnails := media.NewThumbnailGenerator(
		appConfig.Media.RootDir,
		appConfig.Media.ThumbnailWidth,
		appConfig.Media.ThumbnailHeight,
		appConfig.Media.Workers,
	)

	appScheduler := scheduler.NewScheduler(gormDB)
	jobs := []scheduler.Job{
		scheduler.ThumbnailJob(appConfig.Media, thumbnails, reg.Folders()),
		scheduler.CleanupJob(appConfig.Leads, cleanup.NewService(gormDB.DB())),
	}
	if searchClient != nil {
		jobs = append(jobs, scheduler.ReindexJob(appConfig.Search, cat, searchClient))
	}
	for _, job := range jobs {
		if err := appScheduler.Register(job); err != nil {
			log.Fatal().Err(err).Str("job", job.Name).Msg("failed to register job")
		}
	}
	appScheduler.Start()
	defer appScheduler.Stop()

	limiter := ratelimit.NewKeyedLimiter(appConfig.RateLimit)
	go sweepLimiter(limiter, time.Hour)

	credentials := auth.ChainCredentials{
		auth.StaticCredentials{Username: appConfig.Admin.Username, Hash: appConfig.Admin.PasswordHash},
		gormDB.UserCredentials(),
	}

	adminDeps := handlers.AdminDeps{
		DB:        gormDB,
		Catalog:   cat,
		Scheduler: appScheduler,
		Outbox:    outboxWorker,
		Previews:  linkpreview.NewFetcher(appConfig.LinkPreview),
		Leads:     appConfig.Leads,
	}
	var searcher search.Searcher
	if searchClient != nil {
		searcher = searchClient
		adminDeps.Index = searchClient
	}

	if !appConfig.Logging.Pretty {
		gin.SetMode(gin.ReleaseMode)
	}
	r, err := handlers.NewEngine(appConfig.Server.TrustedProxies,
		gin.Recovery(),
		logging.RequestLogger(appConfig.Logging.LogRequests),
		cors.New(cors.Config{
			AllowOrigins:     appConfig.Server.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
			AllowHeaders:     []string{"Origin", "Content-Type", logging.TraceHeader},
			ExposeHeaders:    []string{logging.TraceHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)
	if err != nil {
		log.Fatal().Err(err).Strs("trusted_proxies", appConfig.Server.TrustedProxies).Msg("invalid trusted proxies")
	}

	handlers.Register(r, handlers.Routes{
		Public: handlers.NewPublicHandler(gormDB, cat, searcher),
		Leads:  handlers.NewLeadsHandler(gormDB, notify.NewOutbox(appConfig.Email.NotifyTo)),
		Auth:   handlers.NewAuthHandler(),
		Admin:  handlers.NewAdminHandler(adminDeps),
		Gate:   auth.NewManager(appConfig.Admin, credentials),
		Limit:  limiter.Middleware(),
	})

	srv := &http.Server{
		Addr:              ":" + appConfig.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("port", appConfig.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func sweepLimiter(limiter *ratelimit.KeyedLimiter, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for range ticker.C {
		if n := limiter.Sweep(); n > 0 {
			log.Debug().Int("removed", n).Int("tracked", limiter.Len()).Msg("rate limiter swept")
		}
	}
}
