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

	"github.com/spf13/cobra"

	"github.com/xraph/huddle/api"
	"github.com/xraph/huddle/refresh"
	"github.com/xraph/huddle/scope"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "", "listen address (overrides server.listen)")
	serveCmd.Flags().Duration("retention", 0, "evict cached events that started longer ago than this, 0 keeps them")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the event API over HTTP",
	Long: "Serve the event API, keep probing the remote and warm the cache on\n" +
		"tuning.warm_schedule. Requests carry the user as a bearer JWT when\n" +
		"server.jwt_secret is set.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		if a.monitor != nil {
			a.monitor.Start(ctx)
		}

		if a.hcfg.WarmSchedule != "" {
			opts := []refresh.Option{refresh.WithLogger(a.logger)}
			if retention, _ := cmd.Flags().GetDuration("retention"); retention > 0 {
				if p, ok := a.local.(refresh.Pruner); ok {
					opts = append(opts, refresh.WithPruner(p, retention))
				} else {
					a.logger.Warn("cache backend cannot prune, ignoring --retention", "backend", a.cfg.Cache.Backend)
				}
			}
			w, err := refresh.New(a.repo, a.hcfg.WarmSchedule, opts...)
			if err != nil {
				return err
			}
			if err := w.Start(ctx); err != nil {
				return err
			}
			defer w.Stop(context.Background())
		}

		var hopts []api.HandlerOption
		if a.cfg.Server.JWTSecret != "" {
			hopts = append(hopts, api.WithJWT(scope.NewJWT(a.cfg.Server.JWTSecret, a.cfg.Server.JWTIssuer)))
		}

		addr := a.cfg.Server.Listen
		if v, _ := cmd.Flags().GetString("listen"); v != "" {
			addr = v
		}
		srv := &http.Server{
			Addr:              addr,
			Handler:           api.NewHandler(a.repo, a.logger, hopts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			a.logger.Info("huddle api listening", "addr", addr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		a.logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	},
}
