package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"payroll-engine/internal/engine"
	"payroll-engine/internal/handler"
	"payroll-engine/internal/params"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the calculation service",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	reg := params.NewRegistry(cfg.Server.ParamsDir)
	years := reg.Available()
	if err := reg.Warm(years...); err != nil {
		return fmt.Errorf("failed to load parameters: %w", err)
	}

	h := handler.New(engine.New(reg), logger)
	srv := &fasthttp.Server{
		Handler:      h.Serve,
		Name:         "payroll-engine",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(cfg.Server.Addr)
	}()
	logger.Info("payroll engine listening",
		zap.String("addr", cfg.Server.Addr),
		zap.Ints("years", years))

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	return srv.Shutdown()
}
