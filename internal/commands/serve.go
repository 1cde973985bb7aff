package commands

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
	"go.uber.org/zap"

	"github.com/cleared-dev/nisab/internal/api"
	"github.com/cleared-dev/nisab/internal/logger"
	"github.com/cleared-dev/nisab/internal/model"
	"github.com/cleared-dev/nisab/internal/scheduler"
)

const shutdownTimeout = 10 * time.Second

func newWatchCommand(opts *globalOptions) *cobra.Command {
	var schedule string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Refresh metal prices on a schedule and log the hawl countdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(ctx context.Context, ws *workspace) error {
				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()

				start, err := ws.cfg.HawlStart()
				if err != nil {
					return err
				}
				if schedule == "" {
					schedule = ws.cfg.Rates.RefreshSchedule
				}
				sched := scheduler.New(scheduler.Options{
					RefreshSchedule: schedule,
					Currency:        ws.cfg.Zakat.BaseCurrency,
					HawlStart:       start,
				}, ws.rates, ws.store, logger.Named(ws.log, "scheduler"))

				if err := sched.RefreshPrices(ctx); err != nil {
					return err
				}
				sched.RemindHawl()
				if err := sched.Start(); err != nil {
					return err
				}
				<-ctx.Done()
				sched.Stop()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&schedule, "schedule", "", "cron schedule for price refresh (default: rates.refresh_schedule)")
	return cmd
}

func newServeCommand(opts *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(ctx context.Context, ws *workspace) error {
				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()

				if addr == "" {
					addr = ws.cfg.Server.Addr
				}
				start, err := ws.cfg.HawlStart()
				if err != nil {
					return err
				}
				pinned, err := ws.cfg.PinnedPrice()
				if err != nil {
					return err
				}
				log := logger.Named(ws.log, "api")
				srv := api.NewServer(ws.rates, ws.portfolios, api.Defaults{
					BaseCurrency:  ws.cfg.Zakat.BaseCurrency,
					Calendar:      model.Calendar(ws.cfg.Zakat.Calendar),
					NisabStandard: model.NisabStandard(ws.cfg.Zakat.NisabStandard),
					PricePerGram:  pinned,
					PriceCurrency: ws.cfg.Zakat.BaseCurrency,
					HawlStart:     start,
				}, log)

				httpSrv := &http.Server{
					Addr:              addr,
					Handler:           srv.Router(),
					ReadHeaderTimeout: 10 * time.Second,
				}
				errCh := make(chan error, 1)
				go func() {
					log.Info("listening", zap.String("addr", addr))
					errCh <- httpSrv.ListenAndServe()
				}()

				select {
				case err := <-errCh:
					if !errors.Is(err, http.ErrServerClosed) {
						return fmt.Errorf("serving: %w", err)
					}
					return nil
				case <-ctx.Done():
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := httpSrv.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("shutting down: %w", err)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr)")
	return cmd
}
