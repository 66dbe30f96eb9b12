package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shpfusion-api/internal/client"
	"shpfusion-api/internal/config"
	"shpfusion-api/internal/handler"
	"shpfusion-api/internal/logger"
	"shpfusion-api/internal/ratelimit"
	"shpfusion-api/internal/repository"
	"shpfusion-api/internal/server"
	"shpfusion-api/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log)
	defer log.Sync()

	db, err := client.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}

	stripeClient := client.NewStripeClient(&cfg.Stripe)
	paypalClient := client.NewPaypalClient(&cfg.Paypal)
	emailClient := client.NewEmailClient(&cfg.Resend)
	sanityClient := client.NewSanityClient(&cfg.Sanity)

	orderRepo := repository.NewOrderRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	subscriberRepo := repository.NewSubscriberRepository(db)

	// password-reset requests are capped at 3 per address per hour
	resetLimiter := ratelimit.NewStore(3, time.Hour)

	sessionTTL := 7 * 24 * time.Hour
	if cfg.Environment.IsProduction() {
		sessionTTL = time.Hour
	}

	emailService := service.NewEmailService(emailClient, cfg.Resend.AdminEmail, cfg.BaseURL, log)
	orderService := service.NewOrderService(orderRepo, emailService, cfg.BaseURL, log)
	paymentService := service.NewPaymentService(
		orderRepo,
		webhookEventRepo,
		stripeClient,
		paypalClient,
		emailService,
		cfg.BaseURL,
		log,
	)
	userService := service.NewUserService(userRepo, emailService, resetLimiter, cfg.TokenSecret, sessionTTL, log)
	catalogService := service.NewCatalogService(productRepo, sanityClient, log)
	subscriptionService := service.NewSubscriptionService(subscriberRepo, emailService, log)

	checkoutHandler := handler.NewCheckoutHandler(orderService)
	paymentHandler := handler.NewPaymentHandler(paymentService, log)
	userHandler := handler.NewUserHandler(userService, sessionTTL, cfg.Environment.IsProduction())
	catalogHandler := handler.NewCatalogHandler(catalogService, subscriptionService, emailService)

	srv := server.NewServer(checkoutHandler, paymentHandler, userHandler, catalogHandler, cfg.TokenSecret, log)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	log.Info("starting HTTP server", zap.String("addr", serverAddr))
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info("signal received, starting graceful shutdown")

	if err := srv.Shutdown(); err != nil {
		log.Fatal("HTTP server shutdown error", zap.Error(err))
	}
}
