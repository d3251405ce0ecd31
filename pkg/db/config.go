package db

import (
	"context"
	"errors"
	"fmt"
)

var ErrNoActiveProfile = errors.New("no active profile found")

// Config represents the complete runtime configuration loaded from the database.
type Config struct {
	Profile      *Profile
	APIServer    *APIServer
	Integrations *Integrations
}

// APIAddress returns the API server listen address.
func (c *Config) APIAddress() string {
	if c.APIServer == nil {
		return (&APIServer{Host: DefaultAPIHost, Port: DefaultAPIPort}).Address()
	}
	return c.APIServer.Address()
}

// AgentUserID returns the account id reported in SYNC.
func (c *Config) AgentUserID() string {
	if c.Profile == nil || c.Profile.AgentUserID == "" {
		return DefaultAgentUserID
	}
	return c.Profile.AgentUserID
}

// HomeGraphKeyFile returns the service account key path, or "" when unset.
func (c *Config) HomeGraphKeyFile() string {
	if c.Integrations == nil {
		return ""
	}
	return c.Integrations.HomeGraphKeyFile
}

// MQTTBroker returns the broker URL, or "" when MQTT is disabled.
func (c *Config) MQTTBroker() string {
	if c.Integrations == nil {
		return ""
	}
	return c.Integrations.MQTTBroker
}

// MQTTTopicPrefix returns the topic prefix for published state.
func (c *Config) MQTTTopicPrefix() string {
	if c.Integrations == nil {
		return ""
	}
	return c.Integrations.MQTTTopicPrefix
}

// ActiveConfig loads the complete configuration for the active profile.
func (db *DB) ActiveConfig(ctx context.Context) (*Config, error) {
	profile, err := db.Profiles().GetActive(ctx)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, ErrNoActiveProfile
		}
		return nil, fmt.Errorf("failed to get active profile: %w", err)
	}

	return db.loadConfig(ctx, profile)
}

// UseProfile activates the named profile, creating it with defaults when it
// does not exist, and returns its configuration.
func (db *DB) UseProfile(ctx context.Context, name string) (*Config, error) {
	profile, err := db.Profiles().GetByName(ctx, name)
	if errors.Is(err, ErrProfileNotFound) {
		profile, err = db.createProfile(ctx, &Profile{Name: name})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile %q: %w", name, err)
	}

	if !profile.IsActive {
		if err := db.Profiles().SetActive(ctx, profile.ID); err != nil {
			return nil, fmt.Errorf("failed to activate profile %q: %w", name, err)
		}
		profile.IsActive = true
	}

	return db.loadConfig(ctx, profile)
}

// SetAgentUserID persists a new account id on the profile in cfg.
func (db *DB) SetAgentUserID(ctx context.Context, cfg *Config, agentUserID string) error {
	if cfg.Profile == nil {
		return ErrNoActiveProfile
	}
	p := *cfg.Profile
	p.AgentUserID = agentUserID
	if err := db.Profiles().Update(ctx, &p); err != nil {
		return err
	}
	cfg.Profile = &p
	return nil
}

// SetListenAddress parses addr and persists it as the API listen address of
// the profile in cfg.
func (db *DB) SetListenAddress(ctx context.Context, cfg *Config, addr string) error {
	if cfg.Profile == nil {
		return ErrNoActiveProfile
	}
	host, port, err := ParseAddress(addr)
	if err != nil {
		return err
	}
	server := &APIServer{ProfileID: cfg.Profile.ID, Host: host, Port: port}
	if err := db.APIServers().Save(ctx, server); err != nil {
		return err
	}
	cfg.APIServer = server
	return nil
}

// SaveIntegrations persists the integration settings in cfg.
func (db *DB) SaveIntegrations(ctx context.Context, cfg *Config) error {
	if cfg.Profile == nil || cfg.Integrations == nil {
		return ErrNoActiveProfile
	}
	cfg.Integrations.ProfileID = cfg.Profile.ID
	return db.Integrations().Save(ctx, cfg.Integrations)
}

func (db *DB) loadConfig(ctx context.Context, profile *Profile) (*Config, error) {
	config := &Config{Profile: profile}

	apiServer, err := db.APIServers().Get(ctx, profile.ID)
	if err != nil && !errors.Is(err, ErrAPIServerNotFound) {
		return nil, fmt.Errorf("failed to get API server config: %w", err)
	}
	config.APIServer = apiServer

	integrations, err := db.Integrations().Get(ctx, profile.ID)
	if err != nil && !errors.Is(err, ErrIntegrationsNotFound) {
		return nil, fmt.Errorf("failed to get integrations config: %w", err)
	}
	config.Integrations = integrations

	return config, nil
}
