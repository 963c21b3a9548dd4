package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/renthub-kz/renthub-be/internal/api"
	"github.com/renthub-kz/renthub-be/internal/api/handlers"
	"github.com/renthub-kz/renthub-be/internal/auth"
	"github.com/renthub-kz/renthub-be/internal/config"
	"github.com/renthub-kz/renthub-be/internal/database"
	"github.com/renthub-kz/renthub-be/internal/logger"
	"github.com/renthub-kz/renthub-be/internal/services"
	"github.com/renthub-kz/renthub-be/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.IsDevelopment())

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up the image store
	images, err := storage.NewDiskStore(cfg.UploadPath, cfg.PublicBaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize image store")
	}

	// Set up services
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	userService := services.NewUserService(db, tokens)
	listingService := services.NewListingService(db, images)
	bookingService := services.NewBookingService(db)

	// Seed the bootstrap admin outside the request path
	if err := userService.EnsureAdmin(cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed admin account")
	}

	// Set up router
	dev := cfg.IsDevelopment()
	router := api.NewRouter(api.Deps{
		Authenticator: auth.NewAuthenticator(tokens, userService),
		Auth:          handlers.NewAuthHandler(userService, dev),
		Listings:      handlers.NewListingHandler(listingService, dev),
		Bookings:      handlers.NewBookingHandler(bookingService, dev),
		Uploads:       handlers.NewUploadHandler(images, dev),
		UploadDir:     images.Root(),
	})

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
