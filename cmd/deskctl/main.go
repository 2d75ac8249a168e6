// Command deskctl drives the order desk against a running order API:
// listing and inspecting orders, recording receipts and deliveries,
// editing NEW orders and reading the sales dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/erp/orderdesk/internal/application/desk"
	"github.com/erp/orderdesk/internal/infrastructure/cache"
	"github.com/erp/orderdesk/internal/infrastructure/config"
	"github.com/erp/orderdesk/internal/infrastructure/logger"
	"github.com/erp/orderdesk/internal/infrastructure/notify"
	"github.com/erp/orderdesk/internal/infrastructure/remote"
	"github.com/erp/orderdesk/internal/infrastructure/storage"
	"go.uber.org/zap"
)

func main() {
	var (
		configPath string
		baseURL    string
		token      string
		username   string
		logLevel   string
	)

	flag.StringVar(&configPath, "config", "", "Path to a TOML config file")
	flag.StringVar(&baseURL, "url", "", "Order API base URL (overrides client.base_url)")
	flag.StringVar(&token, "token", "", "Bearer token (overrides client.token)")
	flag.StringVar(&username, "user", "", "Log in as this user; the password is read from ORDERDESK_PASSWORD")
	flag.StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}

	log, err := logger.New(logger.Config{Level: logLevel, Format: "console", Output: "stderr"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	opts := remote.OptionsFromConfig(cfg.Client)
	opts.Logger = log
	if baseURL != "" {
		opts.BaseURL = baseURL
	}
	if token != "" {
		opts.Token = token
	}

	client, err := remote.NewClient(opts)
	if err != nil {
		log.Fatal("Failed to create client", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if username != "" {
		session, err := client.Login(ctx, username, os.Getenv("ORDERDESK_PASSWORD"))
		if err != nil {
			fmt.Fprintln(os.Stderr, "login:", remote.ErrorMessage(err))
			os.Exit(1)
		}
		client = client.WithToken(session.AccessToken)
	}

	notifier := notify.New(cfg.Client.NotifyBuffer, log)
	done, err := printNotifications(notifier, os.Stderr)
	if err != nil {
		log.Fatal("Failed to subscribe to notifications", zap.Error(err))
	}

	queries := cache.NewQueryCache(cfg.Client.CacheTTL)
	app := &cli{
		desk:   desk.New(client, queries, notifier, log),
		client: client,
		cache:  queries,
		out:    os.Stdout,
	}
	if cfg.Storage.Enabled {
		archive, err := storage.NewArchive(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to configure dashboard archive", zap.Error(err))
		}
		app.archive = archive
	}

	runErr := app.run(ctx, args[0], args[1:])

	notifier.Close()
	<-done

	if runErr != nil {
		if _, ok := runErr.(usageError); ok {
			fmt.Fprintln(os.Stderr, runErr)
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Order desk command line client

Usage:
  deskctl [flags] <command> [arguments]

Commands:
  orders [-kind K] [-status S] [-search Q] [-page N] [-page-size N]
  show <order-id>
  fulfill -line <line-id> -warehouse <warehouse-id> -qty <n> [-note text] <order-id>
  edit [-set <line-id>=<qty> ...] [-description text] <order-id>
  place <order-id>
  cancel [-reason text] <order-id>
  dashboard [-from YYYY-MM-DD] [-to YYYY-MM-DD] [-top N] [-archive]

Flags:`)
	flag.PrintDefaults()
}
