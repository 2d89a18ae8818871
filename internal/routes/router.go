package routes

import (
	"context"
	"net/http"

	"carrier-rate-engine/internal/carrier/dhl"
	"carrier-rate-engine/internal/carrier/fedex"
	"carrier-rate-engine/internal/carrier/ups"
	"carrier-rate-engine/internal/catalog"
	"carrier-rate-engine/internal/config"
	"carrier-rate-engine/internal/delivery/http/handler"
	"carrier-rate-engine/internal/domain/shipping"
	"carrier-rate-engine/internal/infrastructure/cache"
	"carrier-rate-engine/internal/infrastructure/pricingfile"
	"carrier-rate-engine/internal/infrastructure/transport"
	"carrier-rate-engine/internal/logger"
	"carrier-rate-engine/internal/middleware"
	"carrier-rate-engine/internal/pricing"
	aggregation "carrier-rate-engine/internal/rating"
	"carrier-rate-engine/internal/request"
	ratingUsecase "carrier-rate-engine/internal/usecase/rating"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Infrastructure carries the optional backing stores opened by main. Nil
// fields fall back to in-process defaults.
type Infrastructure struct {
	Config     shipping.ConfigProvider
	QuoteCache aggregation.QuoteCache
	Events     ratingUsecase.EventPublisher
	Transport  shipping.Transport
	Health     map[string]handler.HealthCheck
}

func SetupRoutes(ctx context.Context, cfg *config.Config, infra Infrastructure) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	limiter := middleware.NewRateLimiter(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst)
	go limiter.Run(ctx)

	// Add middleware in order: recovery, request ID, logging, security headers, CORS, request size limit, general rate limit
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(middleware.DefaultMaxRequestSize))
	router.Use(middleware.RateLimitMiddleware(limiter))

	healthHandler := handler.NewHealthHandler(infra.Health)
	router.GET("/health", healthHandler.Health)

	ratingService := NewRatingService(cfg, infra)
	ratingHandler := handler.NewRatingHandler(ratingService)

	v1 := router.Group("/api/v1")
	{
		ratingHandler.RegisterRoutes(v1)

		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(cfg), middleware.AdminOnly())
		{
			ratingHandler.RegisterAdminRoutes(admin)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Route not found"})
	})

	logger.Info("All routes initialized")
	return router
}

// NewRatingService assembles adapters, aggregator, request builder and pricing
// configuration into the rating use case.
func NewRatingService(cfg *config.Config, infra Infrastructure) *ratingUsecase.Service {
	engine := cfg.Engine
	log := logger.Named("engine")

	adapters := enabledAdapters(cfg.Carriers, log)

	carrierTransport := infra.Transport
	if carrierTransport == nil {
		carrierTransport = transport.NewHTTPTransport(&http.Client{}, transport.EndpointsFromConfig(cfg.Carriers), log)
	}

	order := make([]shipping.CarrierCode, 0, len(engine.CarrierOrder))
	for _, name := range engine.CarrierOrder {
		if code, ok := shipping.ParseCarrierCode(name); ok {
			order = append(order, code)
		}
	}

	aggregator := aggregation.NewAggregator(carrierTransport, adapters, order, engine.CarrierTimeout, log)
	quoteCache := infra.QuoteCache
	if quoteCache == nil && engine.QuoteCacheTTL > 0 {
		quoteCache = cache.NewMemoryQuoteCache(engine.QuoteCacheTTL, 2*engine.QuoteCacheTTL)
	}
	if quoteCache != nil && engine.QuoteCacheTTL > 0 {
		aggregator = aggregator.WithCache(quoteCache, engine.QuoteCacheTTL)
	}

	configProvider := infra.Config
	if configProvider == nil {
		configProvider = pricingfile.NewProvider(engine.PricingFile)
	}
	if engine.ConfigCacheTTL > 0 {
		configProvider = cache.NewCachedConfigProvider(configProvider, engine.ConfigCacheTTL, log)
	}

	var invoices shipping.InvoiceGenerator
	if engine.InvoiceDir != "" {
		invoices = request.FileInvoiceGenerator{Dir: engine.InvoiceDir}
	}
	builder := request.NewBuilder(originDefaults(engine.Origin), invoices, engine.LowValueThreshold, log)

	opts := ratingUsecase.Options{
		Commissions: commissionOverrides(engine.Commissions),
		Classification: pricing.ClassificationRates{
			Dangerous: engine.Classification.Dangerous,
			Fragile:   engine.Classification.Fragile,
			Oversized: engine.Classification.Oversized,
		},
		FallbackRates:   fallbackOverrides(engine.FallbackRates),
		OfflineFallback: engine.OfflineFallback,
	}
	if engine.QuoteEventsEnabled && infra.Events != nil {
		opts.Events = infra.Events
	}

	logger.Info("Rating engine assembled",
		zap.Int("carriers", len(adapters)),
		zap.Duration("carrier_timeout", engine.CarrierTimeout),
		zap.Duration("quote_cache_ttl", engine.QuoteCacheTTL),
		zap.Bool("offline_fallback", engine.OfflineFallback),
		zap.Bool("quote_events", opts.Events != nil),
	)

	return ratingUsecase.NewService(builder, aggregator, configProvider, opts, log)
}

func enabledAdapters(cfg config.CarriersConfig, log *zap.Logger) []shipping.Adapter {
	var adapters []shipping.Adapter
	if cfg.FedEx.Enabled {
		adapters = append(adapters, fedex.New(cfg.FedEx.AccountNumber, log))
	}
	if cfg.DHL.Enabled {
		adapters = append(adapters, dhl.New(cfg.DHL.AccountNumber, log))
	}
	if cfg.UPS.Enabled {
		adapters = append(adapters, ups.New(cfg.UPS.AccountNumber, log))
	}
	return adapters
}

func originDefaults(o config.OriginConfig) request.OriginDefaults {
	origin := request.OriginDefaults{
		Contact: shipping.Contact{
			Name:    o.Name,
			Company: o.Company,
			Phone:   o.Phone,
			Email:   o.Email,
		},
		Address: shipping.Address{
			Street1:     o.Street1,
			City:        o.City,
			State:       o.State,
			PostalCode:  o.PostalCode,
			CountryCode: o.CountryCode,
		},
		Currency: o.Currency,
	}
	if o.Street2 != "" {
		street2 := o.Street2
		origin.Address.Street2 = &street2
	}
	return origin
}

func commissionOverrides(percents map[string]float64) map[shipping.CarrierCode]float64 {
	out := make(map[shipping.CarrierCode]float64, len(percents))
	for name, percent := range percents {
		if code, ok := shipping.ParseCarrierCode(name); ok {
			out[code] = percent
		}
	}
	return out
}

func fallbackOverrides(rates map[string]config.FallbackRateConfig) map[shipping.CarrierCode]catalog.FallbackRate {
	out := make(map[shipping.CarrierCode]catalog.FallbackRate, len(rates))
	for name, rate := range rates {
		if code, ok := shipping.ParseCarrierCode(name); ok {
			out[code] = catalog.FallbackRate{Base: rate.Base, PerLb: rate.PerLb}
		}
	}
	return out
}
