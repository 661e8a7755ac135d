/*
PHRIS watches a camera or video file for people entering danger zones
and streams the annotated risk overlay over HTTP as MJPEG.
*/
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
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/phris-ai/phris"
)

var (
	cfgFile string
	debug   bool
)

func main() {

	rootCmd := &cobra.Command{
		Use:   "phris",
		Short: "Proactive Human Risk Intelligence System",
		Long: "PHRIS detects and tracks people in a video feed, scores each " +
			"person's risk from danger zones, movement, and posture, and " +
			"raises alerts when someone reaches critical risk.",
		RunE: run,
		// errors are logged by run
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Flags().StringVarP(&cfgFile, "config", "c", "",
		"Path to YAML configuration file")
	rootCmd.Flags().BoolVar(&debug, "debug", false,
		"Enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {

	log, err := newLogger(debug)

	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	defer log.Sync()

	cfg, err := phris.LoadConfig(cfgFile)

	if err != nil {
		log.Error("configuration failed", zap.Error(err))
		return err
	}

	pipeline, err := phris.NewPipeline(cfg, log)

	if err != nil {
		log.Error("pipeline setup failed", zap.Error(err))
		return err
	}

	defer pipeline.Close()

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	mux.HandleFunc("/stream", pipeline.StreamHandler())

	srv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: mux,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return pipeline.Run(ctx)
	})

	g.Go(func() error {
		log.Info("http server listening",
			zap.String("addr", cfg.HTTP.Addr),
			zap.String("stream", fmt.Sprintf("http://%s/stream", cfg.HTTP.Addr)))

		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			5*time.Second)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()

	stats := pipeline.Stats()
	log.Info("shutdown complete",
		zap.Int64("frames", stats.Frames()),
		zap.Int64("alerts", stats.Alerts()),
		zap.Duration("runtime", stats.Runtime()),
		zap.Float64("fps", stats.FPS()),
	)

	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("pipeline exited with error", zap.Error(err))
		return err
	}

	return nil
}

// newLogger builds the production zap logger, debug switches to the
// human readable development config
func newLogger(debug bool) (*zap.Logger, error) {

	if debug {
		return zap.NewDevelopment()
	}

	return zap.NewProduction()
}
