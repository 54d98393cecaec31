package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Srengnx007/Khmer-AI/internal/application/admin"
	"github.com/Srengnx007/Khmer-AI/internal/application/assistant"
	"github.com/Srengnx007/Khmer-AI/internal/application/auth"
	"github.com/Srengnx007/Khmer-AI/internal/application/ports"
	"github.com/Srengnx007/Khmer-AI/internal/config"
	infraauth "github.com/Srengnx007/Khmer-AI/internal/infrastructure/auth"
	"github.com/Srengnx007/Khmer-AI/internal/infrastructure/feed"
	"github.com/Srengnx007/Khmer-AI/internal/infrastructure/gemini"
	httprouter "github.com/Srengnx007/Khmer-AI/internal/infrastructure/http"
	"github.com/Srengnx007/Khmer-AI/internal/infrastructure/http/handlers"
	"github.com/Srengnx007/Khmer-AI/internal/infrastructure/http/middleware"
	"github.com/Srengnx007/Khmer-AI/internal/infrastructure/lockout"
	"github.com/Srengnx007/Khmer-AI/internal/infrastructure/persistence/postgres"
	"github.com/Srengnx007/Khmer-AI/internal/infrastructure/queue"
	"github.com/Srengnx007/Khmer-AI/internal/infrastructure/security"
	"github.com/Srengnx007/Khmer-AI/internal/infrastructure/webhook"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("ping database")
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("parse REDIS_URL")
		}
		redisClient = redis.NewClient(opt)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis ping failed; continuing without redis")
			redisClient = nil
		}
	}

	healthHandler := handlers.NewHealthHandler(pool, redisClient)

	userRepo := postgres.NewUserRepository(pool)
	identityStore := postgres.NewIdentityRepository(pool)
	usageStore := postgres.NewUsageRepository(pool)
	tokenStore := postgres.NewTokenStore(pool)

	var emitter ports.WebhookEmitter
	if cfg.Webhook.AuditURL != "" {
		opts := []webhook.HTTPEmitterOption{}
		if cfg.Webhook.Secret != "" {
			opts = append(opts, webhook.WithHeader("X-Webhook-Secret", cfg.Webhook.Secret))
		}
		emitter = webhook.NewHTTPEmitter(cfg.Webhook.AuditURL, opts...)
	} else {
		emitter = webhook.NewNoopEmitter()
	}

	var taskEnqueuer ports.TaskEnqueuer
	var asynqWorker *queue.Worker
	if redisClient != nil {
		redisOpt, _ := redis.ParseURL(cfg.Redis.URL)
		asynqOpt := asynq.RedisClientOpt{Addr: redisOpt.Addr, Password: redisOpt.Password, DB: redisOpt.DB}
		asynqEnq, err := queue.NewAsynqEnqueuer(asynqOpt, log)
		if err != nil {
			log.Fatal().Err(err).Msg("create asynq enqueuer")
		}
		defer asynqEnq.Close()
		taskEnqueuer = asynqEnq
		asynqWorker = queue.NewWorker(asynqOpt, emitter, log)
		go func() {
			if err := asynqWorker.Run(); err != nil {
				log.Warn().Err(err).Msg("asynq worker stopped")
			}
		}()
	} else {
		taskEnqueuer = queue.NewInlineEnqueuer(emitter)
	}

	hasher := security.NewArgon2Hasher(security.Argon2Params{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  16,
		KeyLength:   32,
	})

	pemBytes, err := cfg.LoadJWTPrivateKey()
	if err != nil {
		log.Fatal().Err(err).Msg("load JWT private key")
	}
	privateKey, err := infraauth.LoadRSAPrivateKeyFromPEM(pemBytes)
	if err != nil {
		log.Fatal().Err(err).Msg("parse JWT private key")
	}
	issuer := infraauth.NewTokenIssuer(privateKey, cfg.JWT.Issuer, cfg.JWT.Audience)

	lockoutStore := lockout.NewMemoryStore(cfg.Lockout.MaxFailures, cfg.Lockout.LockSeconds)

	registerUC := auth.NewRegisterUser(userRepo, identityStore, hasher)
	loginUC := auth.NewLogin(userRepo, hasher, issuer, tokenStore, lockoutStore, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)
	refreshUC := auth.NewRefresh(userRepo, issuer, tokenStore, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)
	logoutUC := auth.NewLogout(tokenStore)
	oauthCallbackUC := auth.NewOAuthCallback(identityStore, userRepo, issuer, tokenStore, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)
	handlers.InitOAuthProviders(cfg.OAuth.CallbackBaseURL, cfg.OAuth.SessionSecret,
		cfg.OAuth.GoogleClientID, cfg.OAuth.GoogleClientSecret,
		cfg.OAuth.GithubClientID, cfg.OAuth.GithubClientSecret)

	if cfg.Gemini.APIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set; tool endpoints will fail")
	}
	geminiOpts := []gemini.Option{}
	if cfg.Gemini.Model != "" {
		geminiOpts = append(geminiOpts, gemini.WithDefaultModel(cfg.Gemini.Model))
	}
	generator := gemini.NewClient(cfg.Gemini.APIKey, geminiOpts...)

	registry := assistant.NewRegistry()
	quota := assistant.NewQuota(usageStore, cfg.Quota.Limit, time.Duration(cfg.Quota.WindowMinutes)*time.Minute)
	runToolUC := assistant.NewRunTool(generator, quota)

	listUsersUC := admin.NewListUsers(userRepo)
	toggleRoleUC := admin.NewToggleRole(userRepo)
	deleteUserUC := admin.NewDeleteUser(userRepo)
	userFeed := feed.NewPollWatcher(userRepo, 3*time.Second, log)

	ipLimit, err := middleware.NewIPRateLimiter(cfg.Server.IPRateLimit)
	if err != nil {
		log.Fatal().Err(err).Msg("create IP rate limiter")
	}
	secureMiddleware := middleware.NewSecure(middleware.SecureOptions(cfg.Server.IsDevelopment))
	corsMiddleware := middleware.CORS(cfg.Server.CORSOrigins, nil, nil)

	authHandler := handlers.NewAuthHandler(registerUC, loginUC, refreshUC, logoutUC, taskEnqueuer, log)
	usersHandler := handlers.NewUsersHandler(userRepo, log)
	adminHandler := handlers.NewAdminHandler(listUsersUC, toggleRoleUC, deleteUserUC, userFeed, taskEnqueuer, log)
	toolsHandler := handlers.NewToolsHandler(registry, runToolUC, cfg.Quota.ProtectedTools, log)

	validator := middleware.NewAuthValidator(issuer)
	router := httprouter.NewRouter(httprouter.RouterConfig{
		AuthHandler:   authHandler,
		UsersHandler:  usersHandler,
		AdminHandler:  adminHandler,
		ToolsHandler:  toolsHandler,
		HealthHandler: healthHandler,
		OAuthBegin:    handlers.OAuthBegin(),
		OAuthCallback: handlers.OAuthCallback(oauthCallbackUC, taskEnqueuer, cfg.OAuth.RedirectURL, log),
		RequireJWT:    validator.Handler,
		OptionalJWT:   validator.Optional,
		Secure:        secureMiddleware,
		CORS:          corsMiddleware,
		IPRateLimit:   ipLimit,
		Log:           log,
		Metrics:       true,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second, // generation calls can be slow
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	if asynqWorker != nil {
		asynqWorker.Shutdown()
	}
	log.Info().Msg("server stopped")
}
