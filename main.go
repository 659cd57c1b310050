package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"morse-service/internal/auth"
	"morse-service/internal/db"
	"morse-service/internal/handlers"
	"morse-service/internal/middleware"
	"morse-service/internal/observability"
	"morse-service/internal/rabbitmq"
	"morse-service/internal/relay"
	"morse-service/internal/repositories"
	"morse-service/internal/telemetry"
	"morse-service/internal/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	database, err := db.Connect()
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	shutdownTracing := telemetry.InitTracing(context.Background(),
		getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""), "morse-service")
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	amqpURL := getEnv("AMQP_URL", "")
	exchange := getEnv("AMQP_EXCHANGE", "morse.events")

	auditPublisher := rabbitmq.NewPublisher(amqpURL, exchange)
	defer auditPublisher.Close()
	auditor := telemetry.NewAuditEmitter(auditPublisher, "audit.morse-service",
		"morse-service", getEnv("ENVIRONMENT", "dev"))

	if wsPublisher, err := observability.NewAMQPPublisher(amqpURL, exchange); err != nil {
		log.Printf("ws event publishing disabled: %v", err)
	} else {
		observability.SetPublisher(wsPublisher)
		defer wsPublisher.Close()
	}

	verifier := auth.NewVerifier(getEnv("JWT_SECRET", "dev-secret"))
	userRepo := repositories.NewUserRepo(database)
	manager := relay.NewManager()

	channelHandler := handlers.NewChannelHandler(manager)
	followHandler := handlers.NewFollowHandler(userRepo, manager, auditor)
	channelWS := ws.NewChannelWebSocketHandler(manager, verifier, userRepo)

	router := gin.Default()

	// middlewares
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("morse-service"))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(verifier, userRepo)

	router.GET("/channel/list", authMiddleware, channelHandler.ListChannels)
	router.GET("/channel/random", channelWS.HandleRandom)
	router.GET("/channel/:channel_id", channelWS.HandleJoin)

	router.GET("/follow/list", authMiddleware, followHandler.ListFollows)
	router.POST("/follow/:user_id", authMiddleware, followHandler.Follow)
	router.DELETE("/follow/:user_id", authMiddleware, followHandler.Unfollow)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterDebugRoutes(router, auditor, getEnv("DEBUG_ROUTES", "") == "true")

	port := getEnv("PORT", "8087")
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
