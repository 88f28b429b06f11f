// File: medibot/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medibot/config"
	"medibot/cron"
	"medibot/database"
	appointmentRepo "medibot/database/repository/appointment"
	"medibot/handlers"
	"medibot/middleware"
	"medibot/routes"
	"medibot/services/appointments"
	"medibot/services/conversation"
	ai "medibot/services/intelligence"
	"medibot/services/session"
	"medibot/services/tasks"
	"medibot/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(handlers.RequestLogger())
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	handlerBundle := &handlers.HandlerBundle{}
	checks := map[string]utils.HealthCheck{}
	var shutdownHooks []func(context.Context)

	if config.ServesBackend() {
		shutdownHooks = append(shutdownHooks, setupBackend(rootCtx, handlerBundle, checks, logger)...)
	}
	if config.ServesAssistant() {
		shutdownHooks = append(shutdownHooks, setupAssistant(handlerBundle, checks, logger)...)
	}

	utils.StartHealthMonitor(rootCtx, checks)

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Info("Starting server", zap.String("addr", srv.Addr), zap.String("role", config.AppConfig.ServerRole))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("main: server failed to start", zap.Error(err))
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	cancelRoot()
	for _, hook := range shutdownHooks {
		hook(ctx)
	}

	logger.Info("main: server stopped gracefully")
}

// setupBackend wires the reference Record Store and Intent Classification Service.
func setupBackend(ctx context.Context, hb *handlers.HandlerBundle, checks map[string]utils.HealthCheck, logger *zap.Logger) []func(context.Context) {
	database.InitDB()
	checks["mongo"] = func(ctx context.Context) error { return database.MongoClient.Ping(ctx, nil) }

	classifier, closeClassifier := buildClassifier(ctx, logger)

	hb.Appointments = &handlers.AppointmentHandler{Store: appointmentRepo.NewMongoAppointmentRepo()}
	hb.Chat = &handlers.ChatHandler{Classifier: classifier, Timeout: config.HTTPTimeout()}

	return []func(context.Context){
		func(context.Context) { closeClassifier() },
		func(ctx context.Context) {
			if err := database.CloseDB(ctx); err != nil {
				logger.Warn("failed to disconnect MongoDB", zap.Error(err))
			}
		},
	}
}

// buildClassifier picks the classifier named by CLASSIFIER_PROVIDER, falling back to
// keywords when the model cannot be set up.
func buildClassifier(ctx context.Context, logger *zap.Logger) (ai.Classifier, func()) {
	noop := func() {}
	switch config.AppConfig.ClassifierProvider {
	case "gemini":
		client, err := ai.NewGeminiClient(ctx, config.AppConfig.GeminiAPIKey, config.AppConfig.GeminiModel)
		if err != nil {
			logger.Error("Gemini unavailable, using keyword classifier", zap.Error(err))
			return ai.KeywordClassifier{}, noop
		}
		logger.Info("Using Gemini classifier", zap.String("model", config.AppConfig.GeminiModel))
		return &ai.GeminiClassifier{Client: client}, func() { _ = client.Close() }
	case "openai":
		if config.AppConfig.OpenAIAPIKey == "" {
			logger.Error("OPENAI_API_KEY is not set, using keyword classifier")
			return ai.KeywordClassifier{}, noop
		}
		logger.Info("Using OpenAI classifier", zap.String("model", config.AppConfig.OpenAIModel))
		return ai.NewOpenAIClassifier(config.AppConfig.OpenAIAPIKey, config.AppConfig.OpenAIModel), noop
	default:
		return ai.KeywordClassifier{}, noop
	}
}

// setupAssistant wires sessions, reminders and one conversation per signed-in user.
func setupAssistant(hb *handlers.HandlerBundle, checks map[string]utils.HealthCheck, logger *zap.Logger) []func(context.Context) {
	redisClient := utils.GetSessionCacheClient()
	checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }

	auth, err := session.NewAuthenticator(session.NewRedisStore(redisClient), session.DemoCredentials, config.SessionTTL(), logger)
	if err != nil {
		logger.Fatal("main: failed to initialize authenticator", zap.Error(err))
	}

	queue := asynq.NewClient(cron.RedisOpt())
	reminders := tasks.NewReminderScheduler(queue, time.Duration(config.AppConfig.ReminderLeadMinutes)*time.Minute, logger).
		WithLocation(config.ReminderLocation())
	worker := cron.InitReminderWorker()

	store := appointments.NewHTTPRecordStore(config.AppConfig.APIBaseURL, config.HTTPTimeout(), logger)
	classifier := ai.NewRemoteClassifier(config.AppConfig.APIBaseURL, config.HTTPTimeout(), logger)

	registry := conversation.NewRegistry(func(userID string) *conversation.Orchestrator {
		userLogger := logger.With(zap.String("user", userID))
		return conversation.New(appointments.NewCache(store, userLogger), classifier, conversation.Options{
			UserID:    userID,
			Logger:    userLogger,
			Reminders: reminders,
		})
	}, logger)

	hb.Sessions = auth
	hb.Auth = &handlers.AuthHandler{Sessions: auth, Conversations: registry}
	hb.Assistant = &handlers.AssistantHandler{Conversations: registry}

	return []func(context.Context){
		func(context.Context) {
			worker.Shutdown()
			if err := queue.Close(); err != nil {
				logger.Warn("failed to close reminder queue", zap.Error(err))
			}
		},
	}
}
