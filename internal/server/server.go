package server

import (
	"context"
	"time"

	kratoshttp "github.com/go-kratos/kratos/v2/transport/http"
	swaggerUI "github.com/tx7do/kratos-swagger-ui"

	// Registers the canonical JSON codec used for every response.
	_ "github.com/go-tangra/go-tangra-tailscale-inventory/internal/codec"
	"github.com/go-tangra/go-tangra-tailscale-inventory/internal/config"
	"github.com/go-tangra/go-tangra-tailscale-inventory/internal/logging"
)

// requestTimeoutSlack is added to the tailscale timeout to bound a request.
const requestTimeoutSlack = 5 * time.Second

// NewHTTPServer builds the HTTP server with API-secret middleware, the
// inventory routes and, when enabled, Swagger UI.
func NewHTTPServer(cfg *config.Config, src StatusSource, logger *logging.Logger, openApiData []byte) *kratoshttp.Server {
	httpSrv := kratoshttp.NewServer(
		kratoshttp.Address(cfg.Listen),
		kratoshttp.Timeout(cfg.StatusTimeout+requestTimeoutSlack),
		kratoshttp.Middleware(ApiSecretMiddleware(cfg.ApiSecret)),
	)
	NewHandler(src, logger).register(httpSrv)

	// Swagger UI (registered via HandlePrefix, so it bypasses the middleware chain).
	if cfg.EnableSwagger && len(openApiData) > 0 {
		swaggerUI.RegisterSwaggerUIServerWithOption(
			httpSrv,
			swaggerUI.WithTitle("Tailscale Inventory"),
			swaggerUI.WithMemoryData(openApiData, "yaml"),
		)
		logger.Info("swagger UI enabled", "url", "http://"+cfg.Listen+"/docs/")
	}

	return httpSrv
}

// Run starts the HTTP server and blocks until the context is cancelled or
// the server fails.
func Run(ctx context.Context, cfg *config.Config, src StatusSource, logger *logging.Logger, openApiData []byte) error {
	httpSrv := NewHTTPServer(cfg, src, logger, openApiData)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.Start(ctx)
	}()

	logger.Info("tailscale inventory listening", "listen", cfg.Listen)

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		return httpSrv.Stop(context.Background())
	case err := <-errCh:
		return err
	}
}
