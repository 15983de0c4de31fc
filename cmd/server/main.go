package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"fc-pro-backend/internal/common/cache"
	"fc-pro-backend/internal/common/config"
	"fc-pro-backend/internal/common/logger"
	"fc-pro-backend/internal/common/middleware"
	"fc-pro-backend/internal/features/flow"
	flowhttp "fc-pro-backend/internal/features/flow/delivery/http"
	identityclient "fc-pro-backend/internal/features/identity/client"
	identityhttp "fc-pro-backend/internal/features/identity/delivery/http"
	identityservice "fc-pro-backend/internal/features/identity/service"
	manifesthttp "fc-pro-backend/internal/features/manifest/delivery/http"
	"fc-pro-backend/internal/features/notify"
	pricingservice "fc-pro-backend/internal/features/pricing/service"
	"fc-pro-backend/internal/platform/chain"
	redisplatform "fc-pro-backend/internal/platform/redis"
)

// @title           Farcaster Pro Subscription API
// @version         1.0
// @description     Backend for the Farcaster Pro mini app: pricing reads, profile display and the batched subscribe/gift purchase flow.

// @host      localhost:8080
// @BasePath  /api

// @tag.name identity
// @tag.description Profile display, pro status and username resolution

// @tag.name flow
// @tag.description Pricing and the purchase flow

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger.Init("fc-pro-backend", cfg.Debug)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	rdb, err := redisplatform.Open(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("Redis open failed")
	}
	defer rdb.Close()

	chainClient, err := chain.Dial(ctx, cfg.Chain.RPCURL, common.HexToAddress(cfg.Chain.TierRegistry))
	if err != nil {
		log.Fatal().Err(err).Msg("Chain dial failed")
	}
	defer chainClient.Close()

	cacheSvc := cache.NewService(rdb)

	pricingSvc := pricingservice.NewService(chainClient, cacheSvc)
	fcClient := identityclient.New(cfg.Farcaster.APIBase, cfg.Farcaster.FnameBase, cfg.Farcaster.APIToken)
	identitySvc := identityservice.NewService(fcClient, cacheSvc)
	notifySvc := notify.NewService(cfg.Farcaster.APIBase, cfg.Farcaster.APIToken)

	sessions := flow.NewStore(rdb)
	controller := flow.NewController(flow.Options{
		RequiredChainID: cfg.Chain.ChainID,
		Registry:        common.HexToAddress(cfg.Chain.TierRegistry),
		PaymentToken:    common.HexToAddress(cfg.Chain.PaymentToken),
		FeeRecipient:    common.HexToAddress(cfg.Chain.FeeRecipient),
		OperatorFID:     cfg.Farcaster.OperatorFID,
	}, pricingSvc, identitySvc, chainClient, chain.WalletSenderFromClient(chainClient), notifySvc)

	log.Info().
		Uint64("chain_id", cfg.Chain.ChainID).
		Str("registry", cfg.Chain.TierRegistry).
		Str("payment_token", cfg.Chain.PaymentToken).
		Msg("Flow controller initialized")

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler(log.Logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept"}
	router.Use(cors.New(corsConfig))

	manifestHandler, err := manifesthttp.NewHandler(cfg.Farcaster.ManifestPath, cfg.Farcaster.MiniAppURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Manifest load failed")
	}
	manifestHandler.RegisterRoutes(router)

	api := router.Group("/api")
	identityhttp.NewIdentityHandler(identitySvc, log.Logger).RegisterRoutes(api)
	flowhttp.NewFlowHandler(controller, sessions, identitySvc, pricingSvc, log.Logger).RegisterRoutes(api)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	stop()
	log.Info().Msg("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}
