// Package main is a command-line tool over the 5sim client library.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/jsamuelsen/fivesim-client"
	"github.com/jsamuelsen/fivesim-client/internal/platform/config"
	"github.com/jsamuelsen/fivesim-client/internal/platform/logging"
	"github.com/jsamuelsen/fivesim-client/internal/platform/telemetry"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD)"
var (
	// Version is the semantic version of the tool.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"
)

const usage = `usage: fivesim <command> [args]

guest commands (no API key needed):
  countries                          list the country catalog
  products <country> <operator>      list available products
  prices [country] [product]         show the price catalog
  notification <english|russian>     show the service notification

user commands (require api.key / APP_API_KEY):
  profile                            show account profile
  buy <country> <operator> <product> rent a number
  check|finish|cancel|ban <id>       apply an action to an order
  inbox <id>                         list messages of an order
  orders <activation|hosting>        list order history
  payments                           list payment history

vendor commands (require api.key / APP_API_KEY):
  wallets                            show vendor balances
`

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	args := os.Args[1:]
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("no command given")
	}

	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	slog.SetDefault(logger)

	logger.Debug("starting",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
	)

	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(ctx); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	apiKey := cfg.API.Key
	if apiKey == "" {
		// Guest commands work without credentials; the client still
		// requires a non-empty key for the authenticated surfaces.
		apiKey = "guest"
	}

	client, err := fivesim.New(fivesim.Config{
		APIKey:  apiKey,
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.Client.Timeout,
		Retry: fivesim.RetryConfig{
			MaxAttempts:     cfg.Client.Retry.MaxAttempts,
			InitialInterval: cfg.Client.Retry.InitialInterval,
			MaxInterval:     cfg.Client.Retry.MaxInterval,
			Multiplier:      cfg.Client.Retry.Multiplier,
			JitterFactor:    cfg.Client.Retry.JitterFactor,
		},
		Circuit: fivesim.CircuitConfig{
			MaxFailures:   cfg.Client.CircuitBreaker.MaxFailures,
			Timeout:       cfg.Client.CircuitBreaker.Timeout,
			HalfOpenLimit: cfg.Client.CircuitBreaker.HalfOpenLimit,
		},
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	return dispatch(ctx, client, args)
}

func dispatch(ctx context.Context, client *fivesim.FiveSim, args []string) error {
	command, rest := args[0], args[1:]

	switch command {
	case "countries":
		return print(client.Guest.GetCountries(ctx))

	case "products":
		if len(rest) < 2 {
			return fmt.Errorf("products needs <country> <operator>")
		}
		return print(client.Guest.GetProducts(ctx, fivesim.Country(rest[0]), fivesim.Operator(rest[1])))

	case "prices":
		filter := fivesim.PriceFilter{}
		if len(rest) > 0 {
			filter.Country = fivesim.Country(rest[0])
		}
		if len(rest) > 1 {
			filter.Product = fivesim.ActivationProduct(rest[1])
		}
		return print(client.Guest.GetPrices(ctx, filter))

	case "notification":
		if len(rest) < 1 {
			return fmt.Errorf("notification needs a language")
		}
		return print(client.Guest.GetNotification(ctx, fivesim.Language(rest[0])))

	case "profile":
		return print(client.User.GetProfile(ctx, false))

	case "buy":
		if len(rest) < 3 {
			return fmt.Errorf("buy needs <country> <operator> <product>")
		}
		product := fivesim.ParseProduct(rest[2])
		if product == nil {
			return fmt.Errorf("unknown product %q", rest[2])
		}
		return print(client.User.BuyNumber(ctx,
			fivesim.Country(rest[0]), fivesim.Operator(rest[1]), product, nil))

	case "check", "finish", "cancel", "ban":
		if len(rest) < 1 {
			return fmt.Errorf("%s needs an order id", command)
		}
		id, err := strconv.ParseInt(rest[0], 10, 64)
		if err != nil {
			return fmt.Errorf("order id must be numeric: %w", err)
		}
		return print(client.User.OrderAction(ctx, fivesim.OrderAction(command), id))

	case "inbox":
		if len(rest) < 1 {
			return fmt.Errorf("inbox needs an order id")
		}
		id, err := strconv.ParseInt(rest[0], 10, 64)
		if err != nil {
			return fmt.Errorf("order id must be numeric: %w", err)
		}
		return print(client.User.GetSMSInbox(ctx, id))

	case "orders":
		if len(rest) < 1 {
			return fmt.Errorf("orders needs <activation|hosting>")
		}
		return print(client.User.GetOrdersHistory(ctx, fivesim.Category(rest[0]), nil))

	case "payments":
		return print(client.User.GetPaymentsHistory(ctx, nil))

	case "wallets":
		return print(client.Vendor.GetWallets(ctx))

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

// print renders a call result as indented JSON on stdout.
func print[T any](result T, err error) error {
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	fmt.Println(string(out))

	return nil
}
