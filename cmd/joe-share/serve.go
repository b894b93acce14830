package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/joestump/joe-share/internal/access"
	"github.com/joestump/joe-share/internal/api"
	"github.com/joestump/joe-share/internal/auth"
	"github.com/joestump/joe-share/internal/config"
	"github.com/joestump/joe-share/internal/db"
	"github.com/joestump/joe-share/internal/metrics"
	"github.com/joestump/joe-share/internal/notify"
	"github.com/joestump/joe-share/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			logger := slog.Default()

			database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if err := db.Migrate(database, cfg.DB.Driver); err != nil {
				return err
			}

			sessionManager := auth.NewSessionManager(database, cfg.DB.Driver, cfg.SessionLifetime, !cfg.InsecureCookies)

			ctx := context.Background()
			oidcProvider, err := auth.NewProvider(ctx, cfg)
			if err != nil {
				return err
			}

			userStore := store.NewUserStore(database)
			connectionStore := store.NewConnectionStore(database)
			shareStore := store.NewShareStore(database, connectionStore)
			accessLogStore := store.NewAccessLogStore(database)
			tokenStore := auth.NewSQLTokenStore(database)

			resolver := access.NewResolver(shareStore, connectionStore, logger)
			notifier := notify.Async(notify.NewLogNotifier(logger))

			accessCh := make(chan store.AccessEvent, 256)
			go runAccessWriter(ctx, accessCh, accessLogStore, logger)

			authHandlers := auth.NewHandlers(oidcProvider, sessionManager, userStore, cfg.AdminEmail, !cfg.InsecureCookies)
			authMiddleware := auth.NewMiddleware(sessionManager, userStore)
			bearerMiddleware := auth.NewBearerTokenMiddleware(tokenStore, userStore)

			router := api.NewRouter(api.Deps{
				SessionManager:   sessionManager,
				AuthHandlers:     authHandlers,
				AuthMiddleware:   authMiddleware,
				BearerMiddleware: bearerMiddleware,
				UserStore:        userStore,
				ConnectionStore:  connectionStore,
				ShareStore:       shareStore,
				AccessLogStore:   accessLogStore,
				TokenStore:       tokenStore,
				Resolver:         resolver,
				Notifier:         notifier,
				AccessCh:         accessCh,
			})

			logger.Info("listening", "addr", cfg.HTTP.Addr)
			return http.ListenAndServe(cfg.HTTP.Addr, router)
		},
	}
}

// runAccessWriter reads access events from the channel and persists them.
// On context cancellation it drains remaining events before returning.
func runAccessWriter(ctx context.Context, ch <-chan store.AccessEvent, as *store.AccessLogStore, logger *slog.Logger) {
	record := func(ctx context.Context, e store.AccessEvent) {
		if err := as.Record(ctx, e); err != nil {
			metrics.AccessLogWriteErrorsTotal.Inc()
			logger.Error("access log write failed", "share_config_id", e.ShareConfigID, "error", err)
			return
		}
		metrics.AccessLogWritesTotal.Inc()
	}

	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return
			}
			record(ctx, e)
		case <-ctx.Done():
			// Drain remaining events.
			for {
				select {
				case e, ok := <-ch:
					if !ok {
						return
					}
					record(context.Background(), e)
				default:
					return
				}
			}
		}
	}
}
