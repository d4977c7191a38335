// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/parts-engine/internal/runlog"
	"github.com/pdiddy/parts-engine/internal/server"
	"github.com/pdiddy/parts-engine/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the parts pipeline over HTTP",
	Long: `Serve exposes the pipeline as a JSON API: POST a project description to
/api/v1/parts-lists to run the pipeline, and browse completed runs under
/api/v1/runs. Runs started over HTTP are recorded in the same history
database the CLI uses.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr from config)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := buildLogger(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	serverCfg := types.ServerConfig{
		Addr:           viper.GetString("server.addr"),
		Environment:    viper.GetString("server.environment"),
		AllowedOrigins: viper.GetStringSlice("server.allowed_origins"),
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		serverCfg.Addr = addr
	}

	store, err := runlog.Open(historyConfig())
	if err != nil {
		return fmt.Errorf("opening history store: %w", err)
	}
	defer store.Close()

	p := buildPipeline(pipelineConfig(), logger)
	handler := server.NewHandler(p, store, version, logger)
	router := server.SetupRouter(serverCfg, handler, logger)

	logger.Info("serving",
		zap.String("addr", serverCfg.Addr),
		zap.String("environment", serverCfg.Environment),
	)
	return router.Run(serverCfg.Addr)
}
