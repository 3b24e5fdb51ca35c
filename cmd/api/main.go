package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"inventory-api/internal/cache"
	"inventory-api/internal/config"
	"inventory-api/internal/db"
	"inventory-api/internal/email"
	apihttp "inventory-api/internal/http"
	"inventory-api/internal/repository"
	"inventory-api/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	adminRepo := repository.NewPgAdminRepository(pool)
	productRepo := repository.NewPgProductRepository(pool)
	supplierRepo := repository.NewPgSupplierRepository(pool)

	// Cache efimero: Redis si esta configurado, memoria como respaldo.
	store := cache.NewMemoryStore()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory cache", zap.Error(err))
		} else {
			store = cache.NewRedisStore(redisClient)
		}
		cancel()
	} else {
		logger.Warn("redis not configured, using in-memory cache")
	}

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	jwtSvc := service.NewJWTService(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)

	adminSvc := service.NewAdminService(logger, adminRepo, store, emailSender)
	productSvc := service.NewProductService(productRepo)
	supplierSvc := service.NewSupplierService(supplierRepo)
	reportSvc := service.NewReportService(productRepo, supplierRepo)

	adminHandler := apihttp.NewAdminHandler(logger, adminSvc, jwtSvc)
	productHandler := apihttp.NewProductHandler(logger, productSvc)
	supplierHandler := apihttp.NewSupplierHandler(logger, supplierSvc)
	reportHandler := apihttp.NewReportHandler(logger, reportSvc)
	router := apihttp.NewRouter(logger, jwtSvc, adminHandler, productHandler, supplierHandler, reportHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
