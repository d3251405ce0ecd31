package app

import (
	"flag"
	"fmt"
	"time"

	"github.com/peterbourgon/ff/v3"
	"github.com/urmzd/homelink/pkg/homegraph"
	"github.com/urmzd/homelink/pkg/mqtt"
)

// EnvVarPrefix prefixes the environment variable form of every flag
// (e.g. -key-file is also read from HOMELINK_KEY_FILE).
const EnvVarPrefix = "HOMELINK"

// Options are the command line settings shared by the homelink binaries.
// Empty values fall back to what the active database profile holds.
type Options struct {
	DBPath  string
	Profile string
	Catalog string
	Listen  string

	AgentUserID string
	KeyFile     string
	SyncTimeout time.Duration

	MQTTBroker   string
	MQTTPrefix   string
	MQTTUsername string
	MQTTPassword string
	MQTTQoS      uint

	JWTSecret   string
	StrictCodes bool

	LogLevel string
	LogFile  string
}

// RegisterFlags binds the options to fs.
func (o *Options) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&o.DBPath, "db", "", "Path to database file (default: ~/.config/homelink/homelink.db)")
	fs.StringVar(&o.Profile, "profile", "", "Configuration profile to activate (created if missing)")
	fs.StringVar(&o.Catalog, "catalog", "", "Path to a YAML device catalog (default: built-in catalog)")

	fs.StringVar(&o.Listen, "listen", "", "HTTP listen address (e.g. :8080), persisted to the profile")

	fs.StringVar(&o.AgentUserID, "agent-user-id", "", "Account id reported in SYNC, persisted to the profile")
	fs.StringVar(&o.KeyFile, "key-file", "", "Home Graph service account key, persisted to the profile")
	fs.DurationVar(&o.SyncTimeout, "sync-timeout", homegraph.DefaultTimeout, "Timeout for Home Graph calls")

	fs.StringVar(&o.MQTTBroker, "mqtt-broker", "", "MQTT broker URL (e.g. tcp://localhost:1883), persisted to the profile")
	fs.StringVar(&o.MQTTPrefix, "mqtt-prefix", "", "MQTT topic prefix, persisted to the profile")
	fs.StringVar(&o.MQTTUsername, "mqtt-username", "", "MQTT username")
	fs.StringVar(&o.MQTTPassword, "mqtt-password", "", "MQTT password")
	fs.UintVar(&o.MQTTQoS, "mqtt-qos", 1, "MQTT publish QoS (0-2)")

	fs.StringVar(&o.JWTSecret, "jwt-secret", "", "HMAC secret for access tokens (default: random per process)")
	fs.BoolVar(&o.StrictCodes, "strict-codes", false, "Reject authorization_code grants without a code")

	fs.StringVar(&o.LogLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	fs.StringVar(&o.LogFile, "log-file", "", "Also write logs to this file, rotated by size")
}

// ParseOptions parses args and HOMELINK_* environment variables.
func ParseOptions(name string, args []string) (*Options, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	opts := &Options{}
	opts.RegisterFlags(fs)

	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix(EnvVarPrefix)); err != nil {
		return nil, err
	}
	if opts.MQTTQoS > 2 {
		return nil, fmt.Errorf("%w: %d", mqtt.ErrInvalidQoS, opts.MQTTQoS)
	}
	return opts, nil
}
