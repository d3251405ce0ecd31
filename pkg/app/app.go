// Package app assembles the homelink services from command line options and
// the persisted profile configuration. Both the HTTP and MCP binaries start
// from New.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/homelink/pkg/db"
	"github.com/urmzd/homelink/pkg/device"
	"github.com/urmzd/homelink/pkg/device/schema"
	"github.com/urmzd/homelink/pkg/fulfillment"
	"github.com/urmzd/homelink/pkg/homegraph"
	"github.com/urmzd/homelink/pkg/mqtt"
	"github.com/urmzd/homelink/pkg/oauth"
)

// App holds the wired services.
type App struct {
	DB     *db.DB
	Config *db.Config

	Registry   *device.Registry
	Store      *device.Store
	Executor   *device.Executor
	Dispatcher *fulfillment.Dispatcher
	Auth       *oauth.Engine
	Notifier   homegraph.Notifier

	// Publisher is nil when no MQTT broker is configured or reachable.
	Publisher *mqtt.Publisher
}

// New opens the database, resolves the active profile and builds every
// service. Integration failures (Home Graph, MQTT) are logged and the
// service falls back to running without them.
func New(ctx context.Context, opts *Options) (*App, error) {
	database, err := openDatabase(ctx, opts.DBPath)
	if err != nil {
		return nil, err
	}

	a, err := build(ctx, database, opts)
	if err != nil {
		_ = database.Close()
		return nil, err
	}
	return a, nil
}

func build(ctx context.Context, database *db.DB, opts *Options) (*App, error) {
	cfg, err := loadConfig(ctx, database, opts)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("profile", cfg.Profile.Name).
		Str("agent_user_id", cfg.AgentUserID()).
		Str("api_address", cfg.APIAddress()).
		Msg("Configuration loaded")

	registry, err := device.LoadCatalog(opts.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to load device catalog: %w", err)
	}
	log.Info().Int("devices", registry.Len()).Str("catalog", opts.Catalog).Msg("Device catalog loaded")

	store := device.NewStore(registry)
	executor := device.NewExecutor(registry, store, schema.NewValidator())

	auth, err := oauth.NewEngine(oauth.Config{
		Subject:     cfg.AgentUserID(),
		Secret:      []byte(opts.JWTSecret),
		StrictCodes: opts.StrictCodes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create auth engine: %w", err)
	}

	a := &App{
		DB:         database,
		Config:     cfg,
		Registry:   registry,
		Store:      store,
		Executor:   executor,
		Dispatcher: fulfillment.NewDispatcher(cfg.AgentUserID(), registry, store, executor),
		Auth:       auth,
		Notifier:   newNotifier(ctx, cfg.HomeGraphKeyFile(), opts.SyncTimeout),
	}

	if broker := cfg.MQTTBroker(); broker != "" {
		publisher, err := mqtt.Connect(mqtt.Config{
			Broker:      broker,
			Username:    opts.MQTTUsername,
			Password:    opts.MQTTPassword,
			TopicPrefix: cfg.MQTTTopicPrefix(),
			QoS:         byte(opts.MQTTQoS),
		})
		if err != nil {
			log.Warn().Err(err).Str("broker", broker).Msg("MQTT broker unavailable, state will not be mirrored")
		} else {
			a.Publisher = publisher
		}
	}

	return a, nil
}

// Run blocks mirroring state changes to MQTT until ctx is done. It returns
// immediately when no publisher is configured.
func (a *App) Run(ctx context.Context) {
	if a.Publisher == nil {
		return
	}
	a.Publisher.Run(ctx, a.Store)
}

// Close releases the publisher and database.
func (a *App) Close() error {
	if a.Publisher != nil {
		a.Publisher.Close()
	}
	return a.DB.Close()
}

func openDatabase(ctx context.Context, path string) (*db.DB, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	log.Info().Str("path", database.Path()).Msg("Database opened")

	if err := database.Migrate(ctx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	needsBootstrap, err := database.NeedsBootstrap(ctx)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to check bootstrap status: %w", err)
	}
	if needsBootstrap {
		log.Info().Msg("First run detected, bootstrapping database...")
		if err := database.Bootstrap(ctx); err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("failed to bootstrap database: %w", err)
		}
		log.Info().Msg("Database bootstrapped successfully")
	}

	return database, nil
}

// loadConfig activates the requested profile and persists any integration
// settings given on the command line.
func loadConfig(ctx context.Context, database *db.DB, opts *Options) (*db.Config, error) {
	var (
		cfg *db.Config
		err error
	)
	if opts.Profile != "" {
		cfg, err = database.UseProfile(ctx, opts.Profile)
	} else {
		cfg, err = database.ActiveConfig(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.AgentUserID != "" && opts.AgentUserID != cfg.AgentUserID() {
		if err := database.SetAgentUserID(ctx, cfg, opts.AgentUserID); err != nil {
			return nil, fmt.Errorf("failed to save agent user id: %w", err)
		}
	}

	if opts.Listen != "" {
		if err := database.SetListenAddress(ctx, cfg, opts.Listen); err != nil {
			return nil, fmt.Errorf("failed to save listen address: %w", err)
		}
	}

	if cfg.Integrations == nil {
		cfg.Integrations = &db.Integrations{MQTTTopicPrefix: mqtt.DefaultTopicPrefix}
	}
	changed := false
	for _, override := range []struct {
		value string
		field *string
	}{
		{opts.KeyFile, &cfg.Integrations.HomeGraphKeyFile},
		{opts.MQTTBroker, &cfg.Integrations.MQTTBroker},
		{opts.MQTTPrefix, &cfg.Integrations.MQTTTopicPrefix},
	} {
		if override.value != "" && override.value != *override.field {
			*override.field = override.value
			changed = true
		}
	}
	if changed {
		if err := database.SaveIntegrations(ctx, cfg); err != nil {
			return nil, fmt.Errorf("failed to save integrations: %w", err)
		}
	}

	return cfg, nil
}

func newNotifier(ctx context.Context, keyFile string, timeout time.Duration) homegraph.Notifier {
	if keyFile == "" {
		log.Info().Msg("No Home Graph key file configured, requestsync and reportstate are disabled")
		return homegraph.NewNullNotifier()
	}

	client, err := homegraph.NewClient(ctx, homegraph.Config{KeyFile: keyFile, Timeout: timeout})
	if err != nil {
		log.Warn().Err(err).Str("key_file", keyFile).Msg("Home Graph client unavailable, requestsync and reportstate are disabled")
		return homegraph.NewNullNotifier()
	}
	return client
}
