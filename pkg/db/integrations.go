package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrIntegrationsNotFound = errors.New("integrations config not found")

// Integrations holds the outbound integration settings of a profile.
type Integrations struct {
	ProfileID        int64
	HomeGraphKeyFile string
	MQTTBroker       string
	MQTTTopicPrefix  string
	UpdatedAt        time.Time
}

// IntegrationStore provides integration config operations.
type IntegrationStore interface {
	Get(ctx context.Context, profileID int64) (*Integrations, error)
	Save(ctx context.Context, i *Integrations) error
}

// Integrations returns an IntegrationStore for this database.
func (db *DB) Integrations() IntegrationStore {
	return &integrationStore{db: db}
}

type integrationStore struct {
	db *DB
}

func (s *integrationStore) Get(ctx context.Context, profileID int64) (*Integrations, error) {
	i := &Integrations{}
	var updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT profile_id, homegraph_key_file, mqtt_broker, mqtt_topic_prefix, updated_at
		FROM integrations WHERE profile_id = ?
	`, profileID).Scan(&i.ProfileID, &i.HomeGraphKeyFile, &i.MQTTBroker, &i.MQTTTopicPrefix, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrIntegrationsNotFound
	}
	if err != nil {
		return nil, err
	}
	i.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
	return i, nil
}

// Save inserts or replaces the settings for i.ProfileID.
func (s *integrationStore) Save(ctx context.Context, i *Integrations) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO integrations (profile_id, homegraph_key_file, mqtt_broker, mqtt_topic_prefix)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(profile_id) DO UPDATE SET
			homegraph_key_file = excluded.homegraph_key_file,
			mqtt_broker = excluded.mqtt_broker,
			mqtt_topic_prefix = excluded.mqtt_topic_prefix,
			updated_at = datetime('now')
	`, i.ProfileID, i.HomeGraphKeyFile, i.MQTTBroker, i.MQTTTopicPrefix)
	if err != nil {
		return fmt.Errorf("failed to save integrations: %w", err)
	}
	return nil
}
