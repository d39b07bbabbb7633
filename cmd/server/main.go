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

	"lead_sites_go/config"
	"lead_sites_go/handlers"
	"lead_sites_go/middleware"
	"lead_sites_go/services/analytics"
	"lead_sites_go/services/dispatch"
	"lead_sites_go/services/i18n"
	"lead_sites_go/services/leads"
	"lead_sites_go/services/metrics"
	"lead_sites_go/services/turnstile"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger, err := config.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := i18n.Load(); err != nil {
		logger.Fatal("failed to load translations", zap.Error(err))
	}

	catalog, err := leads.LoadForms()
	if err != nil {
		logger.Fatal("failed to load form catalog", zap.Error(err))
	}
	if cfg.LeadRecipient != "" {
		for i := range catalog.Services {
			catalog.Services[i].Recipient = cfg.LeadRecipient
		}
	}

	m := metrics.New()

	client, err := dispatch.New(cfg, catalog.Services, logger, m)
	if err != nil {
		logger.Fatal("failed to configure email dispatch", zap.Error(err))
	}

	siteSink := analytics.NewAsync(analytics.NewGA4Collector(cfg.GA4Endpoint, cfg.GA4MeasurementID, cfg.GA4APISecret), logger, m)
	adsSink := analytics.NewAsync(analytics.NewAdsCollector(cfg.AdsConversionURL, cfg.AdsConversionLabel), logger, m)

	registry := leads.NewRegistry(catalog, leads.Deps{
		Dispatch:  client,
		Analytics: analytics.Pair{Site: siteSink, Ads: adsSink},
		Metrics:   m,
		Logger:    logger,
		Currency:  cfg.LeadCurrency,
	}, cfg.SessionIdleTTL)

	kraljPrefs := i18n.NewMemoryStore()

	env := &handlers.Env{
		Config:  cfg,
		Forms:   registry,
		Captcha: turnstile.NewVerifier(cfg.TurnstileSecretKey),
		// AiSajt keeps the language across visits, Kralj Residence only for
		// the running session
		Preferences: map[string]middleware.PreferenceSource{
			"aisajt": middleware.CookiePreferences(cfg),
			"kralj":  middleware.MemoryPreferences(kraljPrefs),
		},
		Logger: logger,
	}

	middleware.InitAssetVersions("static", "css/site.css", "js/reveal.js", "js/leads.js")

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				logger.Warn("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Info("request", fields...)
			return nil
		},
	}))
	e.Use(echomiddleware.Secure())
	e.Use(middleware.CSPNonce(logger))
	e.Use(handlers.Inject(env))
	e.Use(middleware.Session(cfg))
	e.Use(middleware.Locale(env.PreferenceSource()))

	// Static files
	e.Static("/static", "static")

	// Operational endpoints
	e.GET("/healthz", handlers.HealthHandler)
	e.GET("/metrics", echo.WrapHandler(m.Handler()))
	e.GET("/sitemap.xml", handlers.GetSitemapHandler)

	// Site pages and language toggle
	csrf := middleware.CSRF(cfg)
	e.GET("/", handlers.SiteRootHandler)
	for _, site := range handlers.Sites {
		for _, page := range site.Pages {
			e.GET(page.Path, handlers.PageHandler(site, page), csrf)
		}
	}
	e.POST("/:site/lang/toggle", handlers.LanguageToggleHandler, csrf)

	// Lead capture endpoints
	limiter := middleware.PublicFormRateLimiter()
	lead := e.Group("/leads/:form", csrf)
	{
		lead.POST("/field", handlers.LeadFieldHandler)
		lead.POST("/submit", handlers.LeadSubmitHandler, limiter.Middleware())
		lead.POST("/dismiss", handlers.LeadDismissHandler)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go registry.Run(ctx, time.Minute)
	go sweep(ctx, limiter, kraljPrefs, cfg.SessionIdleTTL, logger)

	go func() {
		logger.Info("server starting", zap.String("port", cfg.ServerPort), zap.String("environment", cfg.Environment))
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	registry.Close()
	for _, sink := range []analytics.Sink{siteSink, adsSink} {
		if a, ok := sink.(*analytics.Async); ok {
			a.Wait()
		}
	}
	logger.Info("server stopped")
}

// sweep drops idle rate limit buckets and language preferences of visitors
// not seen for ttl.
func sweep(ctx context.Context, limiter *middleware.RateLimiter, prefs *i18n.MemoryStore, ttl time.Duration, logger *zap.Logger) {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			limiter.Sweep(now)
			if n := prefs.Sweep(now, ttl); n > 0 {
				logger.Debug("swept language preferences", zap.Int("removed", n))
			}
		}
	}
}
