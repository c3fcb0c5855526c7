package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	gcsstorage "cloud.google.com/go/storage"
	"github.com/rs/cors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/spendwise/backend/internal/api"
	"github.com/spendwise/backend/internal/archive"
	"github.com/spendwise/backend/internal/auth"
	"github.com/spendwise/backend/internal/config"
	"github.com/spendwise/backend/internal/logging"
	"github.com/spendwise/backend/internal/reasoner"
	"github.com/spendwise/backend/internal/search"
	"github.com/spendwise/backend/internal/service"
	"github.com/spendwise/backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logging.SetupLogging(cfg.LogLevel)

	// Amounts leave the API as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("Server.Run.Error")
	}
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	st, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	var opts []service.Option
	if cfg.Algolia.Enabled() {
		idx, err := search.NewAlgoliaClient(cfg.Algolia, log)
		if err != nil {
			return fmt.Errorf("algolia: %w", err)
		}
		opts = append(opts, service.WithSearch(idx))
		log.WithField("index", cfg.Algolia.IndexName).Info("Server.Search.Enabled")
	}
	if cfg.StatementBucket != "" {
		gcs, err := gcsstorage.NewClient(ctx)
		if err != nil {
			return fmt.Errorf("cloud storage: %w", err)
		}
		defer gcs.Close()
		opts = append(opts, service.WithArchive(archive.NewGCSArchive(gcs.Bucket(cfg.StatementBucket))))
		log.WithField("bucket", cfg.StatementBucket).Info("Server.Archive.Enabled")
	}

	gemini := reasoner.NewGeminiClient(cfg.Gemini, log)
	financeService := service.NewFinanceService(st, gemini, cfg.Challenge, log, opts...)

	authMiddleware, closeAuth, err := newAuthMiddleware(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeAuth()

	mux := api.NewServer(financeService, log, cfg.MaxUploadBytes).Routes()

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"User-Agent",
			"X-Debug-Impersonate-User",
		},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h2c.NewHandler(c.Handler(authMiddleware(mux)), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"port": cfg.Port, "store": cfg.StoreBackend, "auth": cfg.AuthProvider}).Info("HttpServer.Serve.Listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}

	log.Info("HttpServer.Serve.ShuttingDown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (store.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.StoreMemory:
		log.Info("Server.Store.Memory")
		return store.NewMemoryStore(), func() {}, nil
	case config.StoreSQLite:
		s, err := store.OpenSQLite(cfg.SQLitePath, log)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite: %w", err)
		}
		log.WithField("path", cfg.SQLitePath).Info("Server.Store.SQLite")
		return s, func() { _ = s.Close() }, nil
	case config.StoreFirestore:
		projectID := cfg.ProjectID
		if projectID == "" {
			projectID = firestore.DetectProjectID
		}
		client, err := firestore.NewClient(ctx, projectID)
		if err != nil {
			return nil, nil, fmt.Errorf("firestore: %w", err)
		}
		log.WithField("project", projectID).Info("Server.Store.Firestore")
		return store.NewFirestoreStore(client), func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func newAuthMiddleware(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (func(http.Handler) http.Handler, func(), error) {
	switch cfg.AuthProvider {
	case config.AuthNone:
		log.Warn("Server.Auth.LocalDev")
		return auth.LocalDevMiddleware(), func() {}, nil
	case config.AuthFirebase:
		fb, err := auth.NewFirebaseAuth(ctx, cfg.ProjectID)
		if err != nil {
			return nil, nil, fmt.Errorf("firebase auth: %w", err)
		}
		return auth.Middleware(fb, log), func() {}, nil
	case config.AuthAuth0:
		v, err := auth.NewAuth0Verifier(ctx, cfg.Auth0Domain, cfg.Auth0APIAudience, log)
		if err != nil {
			return nil, nil, fmt.Errorf("auth0: %w", err)
		}
		return auth.Middleware(v, log), v.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown auth provider %q", cfg.AuthProvider)
	}
}
