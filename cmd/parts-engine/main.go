// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the parts-engine CLI.
// Implements: prd007-pipeline, prd009-operations (CLI surface).
// See docs/ARCHITECTURE § Pipeline Interface, § Project Structure.
package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/parts-engine/internal/catalog"
	"github.com/pdiddy/parts-engine/internal/pipeline"
	"github.com/pdiddy/parts-engine/internal/reasoning"
	"github.com/pdiddy/parts-engine/internal/runlog"
	"github.com/pdiddy/parts-engine/internal/secrets"
	"github.com/pdiddy/parts-engine/internal/websearch"
	"github.com/pdiddy/parts-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const defaultUserAgent = "parts-engine/0.1"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the parts-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "parts-engine",
	Short: "Turn project descriptions into validated electronics parts lists",
	Long: `parts-engine runs a staged reasoning pipeline over a free-text project
description: it extracts component requirements, plans and executes web
searches, synthesizes candidate parts, selects a compatible final list, and
enriches the selections from a parts catalog.

Run the pipeline with "run", serve it over HTTP with "serve", and revisit
past runs with "history", "report", and "datasheets".`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./parts-engine.yaml or ~/.config/parts-engine/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "log at debug level with a development console encoder")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("parts-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "parts-engine"))
		}
	}

	viper.SetDefault("reasoning.model", "gpt-4o-mini")
	viper.SetDefault("reasoning.timeout", "90s")
	viper.SetDefault("search.timeout", "30s")
	viper.SetDefault("search.max_results", 5)
	viper.SetDefault("catalog.timeout", "30s")
	viper.SetDefault("history.path", filepath.Join("runs", "history.db"))
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.environment", "development")
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})

	viper.SetEnvPrefix("PARTS_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// buildLogger constructs the process logger. Verbose mode switches to the
// human-oriented development encoder at debug level.
func buildLogger(cmd *cobra.Command) (*zap.Logger, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// pipelineConfig assembles provider settings from config, environment, and
// the .secrets/ directory. Config file values win over secrets.
func pipelineConfig() types.PipelineConfig {
	return types.PipelineConfig{
		Reasoning: types.ReasoningConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("reasoning.timeout"),
				UserAgent: defaultUserAgent,
			},
			Model:       viper.GetString("reasoning.model"),
			APIKey:      secretDefault("reasoning-api-key", viper.GetString("reasoning.api_key")),
			MaxAttempts: viper.GetInt("reasoning.max_attempts"),
			Cooldown:    viper.GetDuration("reasoning.cooldown"),
			RetryDelay:  viper.GetDuration("reasoning.retry_delay"),
		},
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("search.timeout"),
				UserAgent: defaultUserAgent,
			},
			APIKey:     secretDefault("search-api-key", viper.GetString("search.api_key")),
			MaxResults: viper.GetInt("search.max_results"),
		},
		Catalog: types.CatalogConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("catalog.timeout"),
				UserAgent: defaultUserAgent,
			},
			ClientID:     secretDefault("catalog-client-id", viper.GetString("catalog.client_id")),
			ClientSecret: secretDefault("catalog-client-secret", viper.GetString("catalog.client_secret")),
		},
	}
}

// buildPipeline wires the live services into a pipeline.
func buildPipeline(cfg types.PipelineConfig, logger *zap.Logger) *pipeline.Pipeline {
	reasoner := reasoning.NewClient(&reasoning.OpenAIService{
		APIKey: cfg.Reasoning.APIKey,
		Model:  cfg.Reasoning.Model,
		Client: &http.Client{Timeout: cfg.Reasoning.Timeout},
	}, cfg.Reasoning, logger)

	searcher := websearch.NewTavilyService(cfg.Search)
	cat := catalog.NewDigiKeyService(cfg.Catalog)

	return pipeline.New(reasoner, searcher, cat, cfg.Catalog, logger)
}

func historyConfig() types.HistoryConfig {
	return types.HistoryConfig{
		Path:       viper.GetString("history.path"),
		MaxResults: viper.GetInt("history.max_results"),
	}
}

// loadRun resolves a stored run from a run-ID argument or, with --file, from
// a run YAML artifact.
func loadRun(cmd *cobra.Command, args []string) (*types.RunResult, error) {
	if file, _ := cmd.Flags().GetString("file"); file != "" {
		return pipeline.ReadRunFile(file)
	}
	if len(args) != 1 {
		return nil, fmt.Errorf("provide a run ID (list them with \"parts-engine history\") or --file")
	}

	store, err := runlog.Open(historyConfig())
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.GetRun(cmd.Context(), args[0])
}

func main() {
	// A local .env feeds viper's automatic environment lookup.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
