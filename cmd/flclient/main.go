// Command flclient looks up fulfillment locations from the command line. It
// prints a single location when LOCATION_ID is set and the list otherwise.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-envconfig"
	"github.com/trdlnk/fulfillmentlocation"
	"github.com/trdlnk/fulfillmentlocation/internal/cache"
	"github.com/trdlnk/fulfillmentlocation/internal/config"
	"github.com/trdlnk/fulfillmentlocation/internal/lifecycle"
	"github.com/trdlnk/fulfillmentlocation/internal/observe"
	"gopkg.in/yaml.v3"
)

// Request selects what is looked up and how it is printed.
type Request struct {
	Authorization string `env:"AUTHORIZATION, required"`
	LocationID    string `env:"LOCATION_ID"`
	ShowArchived  bool   `env:"SHOW_ARCHIVED, default=false"`
	FulfillerID   string `env:"FULFILLER_ID"`
	SkipCache     bool   `env:"SKIP_CACHE, default=false"`
	Output        string `env:"OUTPUT, default=yaml"`
}

const shutdownTimeout = 5 * time.Second

func main() {
	configureLogging()

	logBuildInfo()

	if err := run(context.Background(), nil, os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("lookup failed")
	}
}

func run(ctx context.Context, lookup envconfig.Lookuper, out io.Writer) (err error) {
	cfg, err := config.LoadFrom(ctx, lookup)
	if err != nil {
		return fmt.Errorf("configuration load failed: %w", err)
	}

	var req Request
	err = envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &req,
		Lookuper: lookup,
	})
	if err != nil {
		return fmt.Errorf("request configuration failed: %w", err)
	}
	if req.Output != "yaml" && req.Output != "json" {
		return fmt.Errorf("OUTPUT must be \"yaml\" or \"json\", got %q", req.Output)
	}

	hooks := &lifecycle.ShutdownHooks{}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		err = errors.Join(err, hooks.Execute(shutdownCtx))
	}()

	shutdownTelemetry, err := observe.Configure(ctx, cfg.Observe)
	if err != nil {
		return fmt.Errorf("telemetry bootstrap failed: %w", err)
	}
	hooks.AddContext("telemetry", shutdownTelemetry)

	client, err := newClient(ctx, cfg, hooks)
	if err != nil {
		return err
	}

	var result any
	if req.LocationID != "" {
		result, err = client.GetLocation(ctx, req.LocationID, fulfillmentlocation.LocationOptions{
			Authorization: req.Authorization,
			SkipCache:     req.SkipCache,
		})
	} else {
		result, err = client.GetLocations(ctx, fulfillmentlocation.ListOptions{
			Authorization: req.Authorization,
			SkipCache:     req.SkipCache,
			ShowArchived:  req.ShowArchived,
			FulfillerID:   req.FulfillerID,
		})
	}
	if err != nil {
		return err
	}

	return render(out, req.Output, result)
}

// newClient builds the location client and registers everything it holds
// with hooks.
func newClient(ctx context.Context, cfg config.Config, hooks *lifecycle.ShutdownHooks) (*fulfillmentlocation.Client, error) {
	httpClient := &http.Client{
		Transport: observe.HTTPTransport(configureHTTPTransport(cfg.Transport), cfg.Observe),
	}

	clientLog := log.Logger.With().Str("component", "fulfillmentlocation").Logger()

	opts := []fulfillmentlocation.ClientOption{
		fulfillmentlocation.WithURL(cfg.Client.URL),
		fulfillmentlocation.WithTimeout(cfg.Client.Timeout),
		fulfillmentlocation.WithHTTPClient(httpClient),
		fulfillmentlocation.WithLogger(fulfillmentlocation.NewZerologLogger(clientLog)),
	}

	if cfg.Cache.Enabled() {
		store, err := cache.NewFromConfig[json.RawMessage](ctx, cfg.Cache)
		if err != nil {
			return nil, fmt.Errorf("response cache configuration failed: %w", err)
		}
		hooks.AddClose("cache", store)
		opts = append(opts, fulfillmentlocation.WithStore(store))
	}

	client, err := fulfillmentlocation.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("client configuration failed: %w", err)
	}
	hooks.AddClose("client", client)

	return client, nil
}

func render(out io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		// via JSON, so fields only the service knows about are printed too
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return err
		}

		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}
}

func configureLogging() {
	// Set global level to the minimum: allows the Open Telemetry logging to be
	// configured separately.
	zerolog.SetGlobalLevel(zerolog.Level(-128))

	// default level is Warn, so request logging stays out of the way of output
	log.Logger = log.Level(zerolog.WarnLevel)

	if os.Getenv("ENV") == "development" {
		log.Logger = log.
			Output(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(zerolog.DebugLevel)
	}

	zerolog.DefaultContextLogger = &log.Logger
}

func logBuildInfo() {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	ev := log.Debug()
	for _, v := range buildInfo.Settings {
		if strings.HasPrefix(v.Key, "vcs.") ||
			strings.HasPrefix(v.Key, "GO") ||
			v.Key == "CGO_ENABLED" {
			ev = ev.Str(v.Key, v.Value)
		}
	}

	ev.Msg("build information")
}

func configureHTTPTransport(cfg config.TransportConfig) *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	transport.MaxIdleConns = cfg.OutgoingHTTPMaxIdleConns
	transport.MaxConnsPerHost = cfg.OutgoingHTTPMaxConnsPerHost

	return transport
}
