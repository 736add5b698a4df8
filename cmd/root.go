// Package cmd defines and implements the CLI commands for the recipepress
// executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ebrandel/recipepress/internal/logging"
	"github.com/ebrandel/recipepress/pkg/config"
)

var cfgFile string

// runtimeKeyType is the key for storing the runtime in the context.
type runtimeKeyType string

const runtimeKey runtimeKeyType = "runtime"

// runtime bundles the services every subcommand needs.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
}

func (rt *runtime) close() {
	if rt.logger != nil {
		_ = rt.logger.Sync()
	}
}

// newRuntime is a variable so tests can replace it with a fake factory.
var newRuntime = func(cfgPath string) (*runtime, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return &runtime{cfg: cfg, logger: logger}, nil
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipepress",
		Short: "Turn recipe web pages into an EPUB cookbook.",
		Long: `recipepress fetches recipe pages, extracts their ingredients and
instructions through a chain of extraction strategies, groups the results by
category, and assembles everything into a styled EPUB book.`,

		// Runs before every subcommand's RunE; builds the shared services
		// and injects them through the context.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newRuntime(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), runtimeKey, rt))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if rt, ok := cmd.Context().Value(runtimeKey).(*runtime); ok && rt != nil {
				rt.close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches ., /etc/recipepress, $HOME/.recipepress)")

	cmd.AddCommand(newBuildCmd())

	return cmd
}

// resolveRuntime pulls the injected runtime back out of the command context.
func resolveRuntime(ctx context.Context) (*runtime, error) {
	rt, ok := ctx.Value(runtimeKey).(*runtime)
	if !ok || rt == nil {
		return nil, errors.New("application services not initialized")
	}
	return rt, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
