package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"m365roadmap/internal/config"
	"m365roadmap/internal/logging"
	"m365roadmap/internal/mcp"
	"m365roadmap/internal/query"
	"m365roadmap/internal/roadmap"

	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	feedURL    string
	debug      bool
	width      int
}

// app holds the components shared by every command.
type app struct {
	cfg     *config.Config
	logger  *logging.AppLogger
	cache   *roadmap.Cache
	service *query.Service
}

func (o *rootOptions) buildApp() (*app, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if o.feedURL != "" {
		cfg.FeedURL = o.feedURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.NewAppLoggerWithOptions(logging.Options{
		Debug:   o.debug || cfg.Debug,
		LogFile: cfg.LogFile,
	})
	logger.DebugObject("config", *cfg)

	fetcher := roadmap.NewHTTPFetcher(cfg.FeedURL, cfg.UserAgent, cfg.FetchTimeout)
	logger.Debug("Roadmap feed configured", "url", fetcher.URL(), "fetch_timeout", cfg.FetchTimeout)
	cache := roadmap.NewCache(fetcher, roadmap.WithLogger(logger))

	return &app{
		cfg:     cfg,
		logger:  logger,
		cache:   cache,
		service: query.NewService(cache, query.WithLogger(logger)),
	}, nil
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "m365roadmap",
		Short:         "Microsoft 365 roadmap MCP server",
		Long:          "Serve the Microsoft 365 public roadmap to AI assistants over the Model Context Protocol.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config file (default: $XDG_CONFIG_HOME/m365roadmap/config.yaml)")
	flags.StringVar(&opts.feedURL, "feed-url", "", "override the roadmap feed URL")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newServeCommand(opts),
		newQueryCommand(opts),
		newConfigCommand(opts),
	)
	return root
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP over stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := opts.buildApp()
	if err != nil {
		return err
	}
	defer a.logger.Close()

	server := mcp.NewServer(a.cfg, a.logger, a.service)
	defer server.Stop()

	if err := server.Start(ctx); err != nil {
		a.logger.Error("MCP server exited with error", "error", err)
		return err
	}
	return nil
}

func newQueryCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a single roadmap query and print the result",
	}
	cmd.PersistentFlags().IntVar(&opts.width, "width", 0, "wrap output at this many columns (0 disables wrapping)")

	var listLimit, searchLimit, categoryLimit, recentLimit, days int

	list := &cobra.Command{
		Use:   "list",
		Short: "List roadmap items in feed order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, opts, func(ctx context.Context, svc *query.Service) (string, error) {
				return svc.List(ctx, listLimit)
			})
		},
	}
	list.Flags().IntVar(&listLimit, "limit", query.DefaultListLimit, "maximum number of items")

	search := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search roadmap items by keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, opts, func(ctx context.Context, svc *query.Service) (string, error) {
				return svc.Search(ctx, args[0], searchLimit)
			})
		},
	}
	search.Flags().IntVar(&searchLimit, "limit", query.DefaultSearchLimit, "maximum number of items")

	category := &cobra.Command{
		Use:   "category <name>",
		Short: "Filter roadmap items by category or product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, opts, func(ctx context.Context, svc *query.Service) (string, error) {
				return svc.ByCategory(ctx, args[0], categoryLimit)
			})
		},
	}
	category.Flags().IntVar(&categoryLimit, "limit", query.DefaultCategoryLimit, "maximum number of items")

	recent := &cobra.Command{
		Use:   "recent",
		Short: "Show roadmap items published in the last N days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, opts, func(ctx context.Context, svc *query.Service) (string, error) {
				return svc.Recent(ctx, days, recentLimit)
			})
		},
	}
	recent.Flags().IntVar(&days, "days", query.DefaultRecentDays, "number of days to look back")
	recent.Flags().IntVar(&recentLimit, "limit", query.DefaultRecentLimit, "maximum number of items")

	cmd.AddCommand(list, search, category, recent)
	return cmd
}

func runQuery(cmd *cobra.Command, opts *rootOptions, run func(context.Context, *query.Service) (string, error)) error {
	a, err := opts.buildApp()
	if err != nil {
		return err
	}
	defer a.logger.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	text, err := run(ctx, a.service)
	if err != nil {
		return err
	}
	return writeWrapped(cmd.OutOrStdout(), text, opts.width)
}

func writeWrapped(w io.Writer, text string, width int) error {
	if width > 0 {
		text = wordwrap.String(text, width)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}

func newConfigCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.configPath
			if path == "" {
				path = config.ConfigPath()
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.configPath
			if path == "" {
				path = config.ConfigPath()
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config file already exists at %s", path)
			}
			cfg := config.DefaultConfig()
			if err := cfg.SaveTo(path); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
			return err
		},
	})

	return cmd
}
