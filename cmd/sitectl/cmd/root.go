// Package cmd contains the sitectl commands.
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/go-sitegen-backend/config"
	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/bootstrap"
	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/logger"
	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/projects/domain"
	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/projects/service"
)

var (
	verbose bool
	output  string
)

var rootCmd = &cobra.Command{
	Use:   "sitectl",
	Short: "Administer the site generator",
	Long: `sitectl manages the site generator's projects, schema and deployments
using the same environment configuration as the API server.

Examples:
  # Apply pending schema migrations
  sitectl migrate up

  # List every project with its active version
  sitectl project list

  # Publish the active version of a project
  sitectl deploy --project 6f1c...`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "output format (table, json)")
}

func newLogger() *zap.Logger {
	level := "warn"
	if verbose {
		level = "debug"
	}
	l, err := logger.New(logger.Config{Level: level, Encoding: "console", OutputPath: "stderr"})
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// openProjects loads config and opens the store and event broker only, so
// read-only commands work without model or deploy credentials. Changes made
// here reach live subscribers the same way the API's do.
func openProjects(ctx context.Context) (*service.ProjectService, func() error, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, nil, err
	}
	log := newLogger()

	store, closeStore, err := bootstrap.OpenStore(ctx, &cfg.Database, log)
	if err != nil {
		return nil, nil, err
	}
	broker, closeEvents, err := bootstrap.OpenEvents(ctx, &cfg.Redis, log)
	if err != nil {
		_ = closeStore()
		return nil, nil, err
	}

	svc := service.NewProjectService(store,
		service.WithEvents(broker),
		service.WithLogger(log),
		service.WithLineage(domain.ParseLineage(cfg.Generation.PromptLineage)),
	)
	closeAll := func() error {
		return errors.Join(closeEvents(), closeStore())
	}
	return svc, closeAll, nil
}

// openApp wires the full application, as the API server does.
func openApp(ctx context.Context) (*bootstrap.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return bootstrap.Build(ctx, cfg, newLogger())
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func activeLabel(v *domain.ProjectVersion) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("v%d (%s)", v.VersionNumber, v.Status)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-2]) + ".."
}
