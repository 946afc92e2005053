package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/drblury/neurosynth/api"
	"github.com/drblury/neurosynth/config"
	"github.com/drblury/neurosynth/info"
	"github.com/drblury/neurosynth/openapi"
	"github.com/drblury/neurosynth/probe"
	"github.com/drblury/neurosynth/responder"
	"github.com/drblury/neurosynth/router"
	"github.com/drblury/neurosynth/store"
)

const (
	shutdownTimeout   = 15 * time.Second
	readHeaderTimeout = 10 * time.Second
)

var (
	quietRoutes = []string{"/healthz", "/readyz"}
	hideHeaders = []string{"Authorization", "Cookie"}
)

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := a.openStore(a.cfg.Database, a.logger)
			if err != nil {
				return err
			}
			defer st.Close()

			srv, err := newServer(ctx, a.cfg, st, a.logger)
			if err != nil {
				return err
			}

			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", srv.Addr, err)
			}
			return runServer(ctx, srv, ln, a.logger)
		},
	}

	flags := cmd.Flags()
	flags.String("addr", "", "Listen address (default :5000)")
	flags.Duration("timeout", 0, "Per-request timeout")
	flags.String("image", "", "Serve this GIF from /img instead of the bundled one")
	mustBind(a.v.BindPFlag("http.addr", flags.Lookup("addr")))
	mustBind(a.v.BindPFlag("http.timeout", flags.Lookup("timeout")))
	mustBind(a.v.BindPFlag("http.image_path", flags.Lookup("image")))
	return cmd
}

// newServer wires the store into the data and info handlers behind the
// validating middleware chain.
func newServer(ctx context.Context, cfg config.Config, st *store.Store, logger *slog.Logger) (*http.Server, error) {
	doc, err := openapi.Load(ctx)
	if err != nil {
		return nil, err
	}
	docJSON, err := openapi.JSON(ctx)
	if err != nil {
		return nil, err
	}

	resp := responder.NewResponder(
		responder.WithLogger(logger),
		responder.WithErrorClassifier(api.ClassifyError),
	)

	handler := api.NewHandler(st,
		api.WithResponder(resp),
		api.WithImagePath(cfg.HTTP.ImagePath),
	)

	db := st.DB()
	infoHandler := info.NewInfoHandler(
		info.WithInfoResponder(resp),
		info.WithInfoProvider(buildInfo),
		info.WithSwaggerProvider(func() ([]byte, error) { return docJSON, nil }),
		info.WithLivenessChecks(probe.NewPingProbe("process", func(context.Context) error { return nil })),
		info.WithReadinessChecks(
			probe.NewDBPingProbe("postgres", db),
			probe.NewTableProbe("neurosynth schema", db, st.Schema(), "coordinates", "metadata", "annotations_terms"),
			probe.NewExtensionProbe("postgis", db, "postgis"),
		),
	)

	mux := router.New(api.NewRouter(handler, infoHandler),
		router.WithLogger(logger),
		router.WithSwagger(doc),
		router.WithConfig(router.Config{
			Timeout:         cfg.HTTP.Timeout,
			CORS:            router.CORSConfig{Origins: cfg.HTTP.CORSOrigins},
			QuietdownRoutes: quietRoutes,
			HideHeaders:     hideHeaders,
		}),
		router.WithValidationErrorHandler(func(w http.ResponseWriter, message string, statusCode int) {
			resp.HandleAPIError(w, nil, statusCode, errors.New(message), "request rejected by OpenAPI validation")
		}),
	)

	return &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}, nil
}

// runServer serves on ln until ctx is cancelled, then drains in-flight
// requests for up to shutdownTimeout.
func runServer(ctx context.Context, srv *http.Server, ln net.Listener, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		logger.Info("listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
