package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/homelink/pkg/db"
	"github.com/urmzd/homelink/pkg/homegraph"
	"github.com/urmzd/homelink/pkg/mqtt"
)

func TestParseOptions(t *testing.T) {
	t.Setenv("HOMELINK_AGENT_USER_ID", "env-user")
	t.Setenv("HOMELINK_SYNC_TIMEOUT", "3s")

	opts, err := ParseOptions("homelink", []string{"-profile", "lab", "-strict-codes"})
	require.NoError(t, err)

	assert.Equal(t, "lab", opts.Profile)
	assert.True(t, opts.StrictCodes)
	assert.Equal(t, "env-user", opts.AgentUserID)
	assert.Equal(t, 3*time.Second, opts.SyncTimeout)
	assert.Equal(t, "info", opts.LogLevel)
	assert.Equal(t, uint(1), opts.MQTTQoS)
}

func TestParseOptions_Defaults(t *testing.T) {
	opts, err := ParseOptions("homelink", nil)
	require.NoError(t, err)
	assert.Equal(t, homegraph.DefaultTimeout, opts.SyncTimeout)
	assert.Empty(t, opts.Catalog)
}

func TestParseOptions_Errors(t *testing.T) {
	_, err := ParseOptions("homelink", []string{"-mqtt-qos", "3"})
	assert.ErrorIs(t, err, mqtt.ErrInvalidQoS)

	_, err = ParseOptions("homelink", []string{"-no-such-flag"})
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "homelink.db")

	a, err := New(ctx, &Options{DBPath: dbPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.Equal(t, "default", a.Config.Profile.Name)
	assert.Equal(t, "123", a.Dispatcher.AgentUserID())
	assert.Equal(t, 4, a.Registry.Len())
	assert.False(t, a.Notifier.IsConfigured())
	assert.Nil(t, a.Publisher)

	// Run returns at once without a publisher.
	a.Run(ctx)
}

func TestNew_PersistsOverrides(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "homelink.db")

	a, err := New(ctx, &Options{
		DBPath:      dbPath,
		Profile:     "lab",
		AgentUserID: "user-7",
		KeyFile:     filepath.Join(t.TempDir(), "missing.json"),
		MQTTPrefix:  "lab",
		Listen:      "127.0.0.1:9000",
	})
	require.NoError(t, err)
	assert.Equal(t, "user-7", a.Dispatcher.AgentUserID())
	// An unreadable key file leaves Home Graph disabled.
	assert.False(t, a.Notifier.IsConfigured())
	require.NoError(t, a.Close())

	// A second start without flags keeps the stored values.
	a, err = New(ctx, &Options{DBPath: dbPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.Equal(t, "lab", a.Config.Profile.Name)
	assert.Equal(t, "user-7", a.Config.AgentUserID())
	assert.Equal(t, "lab", a.Config.MQTTTopicPrefix())
	assert.Equal(t, "127.0.0.1:9000", a.Config.APIAddress())
	assert.Contains(t, a.Config.HomeGraphKeyFile(), "missing.json")
}

func TestNew_BadListenAddress(t *testing.T) {
	_, err := New(context.Background(), &Options{
		DBPath: filepath.Join(t.TempDir(), "homelink.db"),
		Listen: "localhost",
	})
	assert.ErrorIs(t, err, db.ErrInvalidAddress)
}

func TestNew_BadCatalog(t *testing.T) {
	dir := t.TempDir()
	catalog := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(catalog, []byte("devices: [{id: x, type: action.devices.types.FAN, traits: [bogus]}]"), 0o600))

	_, err := New(context.Background(), &Options{
		DBPath:  filepath.Join(dir, "homelink.db"),
		Catalog: catalog,
	})
	assert.Error(t, err)
}

func TestSetupLogging(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	var console bytes.Buffer
	file := filepath.Join(t.TempDir(), "homelink.log")

	closer, err := SetupLogging("debug", file, &console)
	require.NoError(t, err)

	log.Debug().Str("device", "washer").Msg("state applied")
	require.NoError(t, closer.Close())

	assert.Contains(t, console.String(), "state applied")
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"device":"washer"`)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestSetupLogging_InvalidLevel(t *testing.T) {
	_, err := SetupLogging("loud", "", &bytes.Buffer{})
	assert.Error(t, err)
}
