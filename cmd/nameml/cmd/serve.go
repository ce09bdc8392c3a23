package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/YuminosukeSato/nameml/api"
	"github.com/YuminosukeSato/nameml/pkg/errors"
	"github.com/YuminosukeSato/nameml/pkg/log"
	"github.com/YuminosukeSato/nameml/predictor"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var warmup string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc := a.service()
			if warmup != "" {
				if _, err := a.train(ctx, svc, predictor.TrainingOptions{ModelType: predictor.ModelType(warmup)}); err != nil {
					return errors.Wrap(err, "warmup training")
				}
			}
			return a.serve(ctx, svc)
		},
	}
	cmd.Flags().StringVar(&warmup, "warmup", "", "train this model type before accepting requests")
	return cmd
}

// serve runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully.
func (a *app) serve(ctx context.Context, svc *predictor.Service) error {
	gin.SetMode(a.cfg.GinMode)
	h := api.NewHandler(svc,
		api.WithLogger(log.GetLoggerWithName("api")),
		api.WithTrainTimeout(a.cfg.TrainTimeout),
	)
	srv := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           api.SetupRoutes(h),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
