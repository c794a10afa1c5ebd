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

	"github.com/ProsperCoded/Mini-Jira-Clone/broker"
	"github.com/ProsperCoded/Mini-Jira-Clone/config"
	"github.com/ProsperCoded/Mini-Jira-Clone/database"
	"github.com/ProsperCoded/Mini-Jira-Clone/middleware"
	"github.com/ProsperCoded/Mini-Jira-Clone/routes"
	"github.com/ProsperCoded/Mini-Jira-Clone/services"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Setup(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	eventBus := broker.New(cfg.NatsURL)
	defer eventBus.Close()

	// Initialize authentication service
	authService := services.NewAuthService(cfg.JWTSecret, cfg.JWTExpirationHours, services.UserServiceInstance)
	services.AuthServiceInstance = authService

	// Outbox dispatcher: pending events go out through the broker
	eventHandlerService := services.NewEventHandlerService(db, eventBus, time.Duration(cfg.EventPollIntervalMs)*time.Millisecond)
	services.EventHandlerServiceInstance = eventHandlerService
	eventHandlerService.Start()
	defer eventHandlerService.Stop()

	// Realtime hub fans broker events out to subscribed websocket clients
	webSocketService := services.NewWebSocketService(db, eventBus, &services.TeamService{})
	services.WebSocketServiceInstance = webSocketService
	if err := webSocketService.Start(); err != nil {
		log.Printf("Warning: realtime updates disabled: %v", err)
	} else {
		defer webSocketService.Stop()
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	api := router.Group("/api")
	routes.RegisterHealthRoutes(api, db)

	requireAuth := middleware.AuthMiddleware(db, authService, services.UserServiceInstance)
	routes.RegisterAuthRoutes(api, db, authService, requireAuth)
	routes.RegisterWebSocketRoutes(api, middleware.WebSocketAuthMiddleware(db, authService, services.UserServiceInstance), webSocketService)

	protected := api.Group("")
	protected.Use(requireAuth)
	routes.RegisterTaskRoutes(protected, db, services.TaskServiceInstance)
	routes.RegisterTeamRoutes(protected, db, services.TeamServiceInstance)

	server := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: router,
	}

	go func() {
		log.Printf("API server is running on port %s", cfg.AppPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shut down: %v", err)
	}
}
