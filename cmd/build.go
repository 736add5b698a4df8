package cmd

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ebrandel/recipepress/internal/book"
	"github.com/ebrandel/recipepress/internal/classify"
	"github.com/ebrandel/recipepress/internal/extract"
	"github.com/ebrandel/recipepress/internal/fetch"
	"github.com/ebrandel/recipepress/internal/linkcache"
	"github.com/ebrandel/recipepress/internal/pipeline"
	"github.com/ebrandel/recipepress/internal/progress"
	"github.com/ebrandel/recipepress/internal/progress/sinks"
	"github.com/ebrandel/recipepress/internal/scrape"
)

type buildFlags struct {
	output    string
	title     string
	author    string
	links     string
	fromCache bool
}

// newBuildCmd creates and configures the 'build' subcommand: fetch the given
// recipe URLs and write them as one EPUB.
func newBuildCmd() *cobra.Command {
	flags := &buildFlags{}
	cmd := &cobra.Command{
		Use:   "build [urls...]",
		Short: "Fetch recipe pages and assemble them into an EPUB",
		Long: `Fetches each recipe URL, extracts the recipe through the strategy
chain, classifies it into a category, and writes the grouped collection as a
styled EPUB book. With no URLs on the command line the previous session's
link cache is used.`,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuildCommand(cmd, args, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output EPUB path (default from config)")
	cmd.Flags().StringVar(&flags.title, "title", "", "book title (default from config)")
	cmd.Flags().StringVar(&flags.author, "author", "", "book author (default from config)")
	cmd.Flags().StringVar(&flags.links, "links", "", "markdown link cache path (default from config)")
	cmd.Flags().BoolVar(&flags.fromCache, "from-cache", false, "also process URLs from the link cache")

	return cmd
}

func runBuildCommand(cmd *cobra.Command, args []string, flags *buildFlags) error {
	rt, err := resolveRuntime(cmd.Context())
	if err != nil {
		return err
	}
	cfg := rt.cfg

	// Flags win over config file values.
	output := firstNonEmpty(flags.output, cfg.OutputPath)
	title := firstNonEmpty(flags.title, cfg.BookTitle)
	author := firstNonEmpty(flags.author, cfg.Author)
	cache := linkcache.New(firstNonEmpty(flags.links, cfg.LinksPath))

	urls := append([]string(nil), args...)
	if flags.fromCache || len(urls) == 0 {
		cached, err := cache.Load()
		if err != nil {
			return fmt.Errorf("load link cache: %w", err)
		}
		urls = append(urls, cached...)
	}
	if len(urls) == 0 {
		return fmt.Errorf("no recipe URLs: pass them as arguments or populate %s", cache.Path())
	}

	hub, store, err := buildProgressHub(rt.logger, cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := hub.Close(context.Background()); cerr != nil {
			rt.logger.Warn("progress hub close failed", zap.Error(cerr))
		}
	}()

	controller := pipeline.NewController(
		fetch.New(fetch.Config{UserAgent: cfg.UserAgent, Timeout: cfg.Timeout}, rt.logger),
		extract.Default(scrape.DefaultRegistry(), rt.logger),
		pipeline.Config{
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
			Politeness: cfg.Politeness,
		},
		rt.logger,
		pipeline.WithEmitter(hub),
	)

	res, err := controller.Run(cmd.Context(), urls)
	if err != nil {
		return fmt.Errorf("run batch: %w", err)
	}
	if len(res.Recipes) == 0 {
		return fmt.Errorf("no recipes could be extracted from %d URLs", len(urls))
	}

	classify.New().Apply(res.Recipes)

	if err := cache.Save(res.Recipes); err != nil {
		rt.logger.Warn("could not save link cache", zap.Error(err))
	}

	grouped := book.Group(title, res.Recipes)
	assembler := book.NewAssembler(rt.logger,
		book.WithAuthor(author),
		book.WithEmitter(hub),
	)
	if err := assembler.Assemble(cmd.Context(), grouped, output); err != nil {
		return fmt.Errorf("assemble book: %w", err)
	}

	if snap, ok := store.Snapshot(res.BatchID); ok {
		rt.logger.Info("batch summary",
			zap.Int("total", snap.Total),
			zap.Int("extracted", snap.Extracted),
			zap.Int("failed", snap.Failed),
		)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d recipes to %s\n", grouped.Len(), output)
	return nil
}

// buildProgressHub wires the console, log, snapshot, and Prometheus sinks.
func buildProgressHub(logger *zap.Logger, cmd *cobra.Command) (*progress.Hub, *sinks.StoreSink, error) {
	store := sinks.NewStoreSink()
	promSink, err := sinks.NewPrometheusSink(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, nil, fmt.Errorf("init metrics sink: %w", err)
	}
	hub := progress.NewHub(progress.Config{Logger: logger},
		sinks.NewConsoleSink(cmd.OutOrStdout()),
		sinks.NewLogSink(logger),
		store,
		promSink,
	)
	return hub, store, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
