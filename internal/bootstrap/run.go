// Package bootstrap assembles and runs one server variant.
package bootstrap

import (
	"context"
	"net/url"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"imageproxy/internal/http/handlers"
	"imageproxy/internal/http/httpapi"
	"imageproxy/internal/imagegen"
	"imageproxy/internal/imagesource"
	"imageproxy/internal/infra"
	"imageproxy/internal/middleware"
	"imageproxy/internal/providers/gemini"
	"imageproxy/internal/storage"
)

// Run loads configuration, builds the clients and serves until SIGINT or SIGTERM.
func Run(variant httpapi.Variant) {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gen, err := gemini.NewClient(ctx, gemini.Options{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init gemini client")
	}

	pub, err := storage.NewFromConfig(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("failed to init storage")
	}

	var fetch imagegen.Fetcher
	if variant == httpapi.VariantURL {
		fetch = imagesource.NewFetcher(nil, cfg.ImageFetchTimeout)
	}
	app := handlers.NewApp(imagegen.NewService(gen, pub, fetch), logger)

	opts := httpapi.Options{
		Variant:          variant,
		Logger:           logger,
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		MaxJSONBodyBytes: cfg.MaxJSONBodyBytes,
		Upload: middleware.UploadOptions{
			Dir:      cfg.UploadDir,
			Field:    "file",
			MaxBytes: cfg.MaxUploadBytes,
		},
	}
	if cfg.StorageDriver == infra.StorageFilesystem {
		opts.StaticDir = cfg.StoragePath
		if u, err := url.Parse(cfg.StorageBaseURL); err == nil {
			opts.StaticPrefix = u.Path
		}
	}

	server := infra.NewHTTPServer(cfg, httpapi.NewRouter(app, opts))

	go func() {
		logger.Info().
			Str("variant", variant.String()).
			Str("model", gen.Model()).
			Str("storage", cfg.StorageDriver).
			Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
