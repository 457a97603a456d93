package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-featuredb/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the index over HTTP",
		Long: `Start an HTTP server exposing session-scoped feature indexes. Feature files
given with -f are preloaded into a session whose id is logged at startup.`,
		Example: `  vibe-featuredb serve --addr :8080 --fasta GRCh38.fa.gz -f gencode.gtf.gz
  vibe-featuredb serve --rate-limit 50 --burst 100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, logger)
		},
	}

	cmd.Flags().String("addr", ":8080", "Listen address")
	cmd.Flags().Float64("rate-limit", 0, "Requests per second across all clients (0 = unlimited)")
	cmd.Flags().Int("burst", 100, "Requests allowed above the rate limit at once")
	cobra.CheckErr(viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr")))
	cobra.CheckErr(viper.BindPFlag("server.rate_limit", cmd.Flags().Lookup("rate-limit")))
	cobra.CheckErr(viper.BindPFlag("server.burst", cmd.Flags().Lookup("burst")))

	return cmd
}

func runServe(ctx context.Context, logger *zap.Logger) error {
	gin.SetMode(gin.ReleaseMode)

	reg := prometheus.NewRegistry()
	idx, err := loadIndex(ctx, logger, reg)
	if err != nil {
		return err
	}
	logger.Info("preloaded session", zap.String("session", idx.session.String()))

	cfg := server.DefaultConfig()
	cfg.Addr = viper.GetString("server.addr")
	cfg.RateLimit = viper.GetFloat64("server.rate_limit")
	cfg.Burst = viper.GetInt("server.burst")

	h := server.NewHandlers(idx.db, idx.genome)
	h.SetLogger(logger)
	return server.New(cfg, h, reg, logger).Run(ctx)
}
