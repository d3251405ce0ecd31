package db

import (
	"context"
	"fmt"
)

// DefaultProfileName is the profile created on first run.
const DefaultProfileName = "default"

// Bootstrap initializes the database with default data if it's empty.
// This is called after migrations and handles first-run setup.
func (db *DB) Bootstrap(ctx context.Context) error {
	needs, err := db.NeedsBootstrap(ctx)
	if err != nil {
		return fmt.Errorf("failed to check profiles: %w", err)
	}
	if !needs {
		return nil
	}

	_, err = db.createProfile(ctx, &Profile{
		Name:        DefaultProfileName,
		AgentUserID: DefaultAgentUserID,
		IsActive:    true,
	})
	return err
}

// NeedsBootstrap returns true if the database needs initial setup.
func (db *DB) NeedsBootstrap(ctx context.Context) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&count)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// createProfile inserts p with a default API server and empty integrations.
func (db *DB) createProfile(ctx context.Context, p *Profile) (*Profile, error) {
	if err := db.Profiles().Create(ctx, p); err != nil {
		return nil, err
	}
	if err := db.APIServers().Save(ctx, &APIServer{ProfileID: p.ID}); err != nil {
		return nil, fmt.Errorf("failed to create default API server: %w", err)
	}
	if err := db.Integrations().Save(ctx, &Integrations{ProfileID: p.ID, MQTTTopicPrefix: "homelink"}); err != nil {
		return nil, fmt.Errorf("failed to create default integrations: %w", err)
	}
	return p, nil
}
