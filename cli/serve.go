package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"uma-config/api"
	"uma-config/preset"
	"uma-config/watch"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the configuration API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().String(keyAddr, ":8080", "listen address")
	_ = a.v.BindPFlag(keyAddr, cmd.Flags().Lookup(keyAddr))
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := watch.NewHub()
	defer hub.Close()

	pm, closeStore, err := a.openPresets(preset.WithOnChange(api.PresetPublisher(hub, a.log)))
	if err != nil {
		return err
	}
	defer a.closeStorage(closeStore)

	srv := &http.Server{
		Addr:              a.v.GetString(keyAddr),
		Handler:           api.RegisterRoutes(pm, hub, a.log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		a.log.WithFields(logrus.Fields{
			"addr":    srv.Addr,
			"backend": a.v.GetString(keyBackend),
			"data":    a.v.GetString(keyDataDir),
		}).Info("uma-config listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
