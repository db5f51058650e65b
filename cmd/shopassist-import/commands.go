package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopassist/internal/config"
	dbRedis "github.com/kailas-cloud/shopassist/internal/db/redis"
	logpkg "github.com/kailas-cloud/shopassist/internal/logger"
	"github.com/kailas-cloud/shopassist/internal/repository/catalog"
	"github.com/kailas-cloud/shopassist/internal/version"
)

type options struct {
	env       string
	addrs     []string
	password  string
	prefix    string
	delimiter string
	replace   bool
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:          "shopassist-import",
		Short:        "Load a product catalog into Redis",
		Long:         "Reads a delimited catalog file and stores each row as a Redis hash for the redis catalog driver.",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(), "config environment (config/<env>.yaml)")
	rootCmd.PersistentFlags().StringSliceVar(&opts.addrs, "addr", nil, "redis address, overrides database.addrs")
	rootCmd.PersistentFlags().StringVar(&opts.password, "password", "", "redis password, overrides database.password")
	rootCmd.PersistentFlags().StringVar(&opts.prefix, "prefix", "", "key prefix, overrides catalog.key_prefix")

	rootCmd.AddCommand(newImportCommand(opts))
	rootCmd.AddCommand(newClearCommand(opts))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func newImportCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import catalog rows from a delimited file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), opts, args[0])
		},
	}
	cmd.Flags().StringVarP(&opts.delimiter, "delimiter", "d", "", "field delimiter, overrides catalog.delimiter")
	cmd.Flags().BoolVar(&opts.replace, "replace", false, "delete existing catalog rows first")
	return cmd
}

func newClearCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every catalog row",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := setup(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer env.close()

			if err := env.importer.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear catalog: %w", err)
			}
			env.logger.Info("Catalog cleared", zap.String("prefix", env.prefix))
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println("shopassist-import " + version.String())
		},
	}
}

func runImport(ctx context.Context, opts *options, path string) error {
	env, err := setup(ctx, opts)
	if err != nil {
		return err
	}
	defer env.close()

	delimiter := env.cfg.Catalog.Delimiter
	if opts.delimiter != "" {
		delimiter = opts.delimiter
	}
	sep, err := parseDelimiter(delimiter)
	if err != nil {
		return err
	}

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	rows, err := catalog.ReadRows(f, sep)
	if err != nil {
		return fmt.Errorf("parse catalog: %w", err)
	}

	start := time.Now()
	n, err := env.importer.Import(ctx, rows, opts.replace)
	if err != nil {
		return fmt.Errorf("import catalog: %w", err)
	}

	env.logger.Info("Catalog imported",
		zap.String("file", path),
		zap.Int("rows", n),
		zap.Int("skipped", len(rows)-n),
		zap.Bool("replace", opts.replace),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

type importEnv struct {
	cfg      config.Config
	logger   *zap.Logger
	importer *catalog.Importer
	prefix   string
	close    func()
}

func setup(ctx context.Context, opts *options) (*importEnv, error) {
	cfg, err := config.Load(opts.env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(opts.env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	addrs := cfg.Database.Addrs
	if len(opts.addrs) > 0 {
		addrs = opts.addrs
	}
	if len(addrs) == 0 {
		return nil, errors.New("no redis address: set database.addrs or --addr")
	}
	password := cfg.Database.Password
	if opts.password != "" {
		password = opts.password
	}
	prefix := cfg.Catalog.KeyPrefix
	if opts.prefix != "" {
		prefix = opts.prefix
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:      addrs,
		Password:   password,
		Standalone: cfg.Database.Standalone,
	})
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}

	return &importEnv{
		cfg:      cfg,
		logger:   logger,
		importer: catalog.NewImporter(store, prefix),
		prefix:   prefix,
		close: func() {
			store.Close()
			_ = logger.Sync()
		},
	}, nil
}

func parseDelimiter(s string) (rune, error) {
	if s == `\t` {
		return '\t', nil
	}
	r := []rune(s)
	if len(r) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	return r[0], nil
}
