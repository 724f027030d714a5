package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"blogapi/config"
	"blogapi/internal/app"
	"blogapi/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		port        int
		dataFile    string
		driver      string
		databaseURL string
		basePath    string
		logLevel    string
		strictRead  bool
	)

	cmd := &cobra.Command{
		Use:           "blogapi",
		Short:         "Simple blog API backed by a JSON document",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file
			if err := godotenv.Load(); err != nil {
				fmt.Fprintln(os.Stderr, "No .env file found, using environment variables from OS")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			// Flags win over the environment, but only when given explicitly.
			flags := cmd.Flags()
			if flags.Changed("port") {
				cfg.HTTP.Port = port
			}
			if flags.Changed("data-file") {
				cfg.Store.DataFile = dataFile
			}
			if flags.Changed("driver") {
				cfg.Store.Driver = driver
			}
			if flags.Changed("database-url") {
				cfg.Store.DatabaseURL = databaseURL
			}
			if flags.Changed("base-path") {
				cfg.HTTP.BasePath = basePath
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if flags.Changed("strict-read") {
				cfg.Store.StrictRead = strictRead
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger.Init(cfg.LogLevel)
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return app.Run(ctx, cfg)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&port, "port", "p", config.DefaultPort, "HTTP port to listen on (env PORT)")
	flags.StringVar(&dataFile, "data-file", config.DefaultDataFile, "path of the posts JSON file (env POSTS_FILE)")
	flags.StringVar(&driver, "driver", config.DriverFile, "store driver: file or postgres (env STORE_DRIVER)")
	flags.StringVar(&databaseURL, "database-url", "", "postgres connection string (env DATABASE_URL)")
	flags.StringVar(&basePath, "base-path", "", "prefix for the post routes, e.g. /api (env API_BASE_PATH)")
	flags.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "debug, info, warn or error (env LOG_LEVEL)")
	flags.BoolVar(&strictRead, "strict-read", false, "fail requests instead of serving an empty list when the store is unreadable (env STORE_STRICT_READ)")

	return cmd
}
