package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

var (
	ErrAPIServerNotFound = errors.New("api server config not found")
	ErrInvalidAddress    = errors.New("invalid listen address")
)

// Default listen address for new profiles.
const (
	DefaultAPIHost = "0.0.0.0"
	DefaultAPIPort = 8080
)

// APIServer is the HTTP listen address of a profile.
type APIServer struct {
	ProfileID int64
	Host      string
	Port      int
	UpdatedAt time.Time
}

// Address returns host:port, bracketing IPv6 hosts.
func (a *APIServer) Address() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// ParseAddress splits a listen address such as ":9000" or "127.0.0.1:8080".
// An empty host means all interfaces.
func ParseAddress(addr string) (host string, port int, err error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	port, err = strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("%w: port %q", ErrInvalidAddress, portStr)
	}
	if host == "" {
		host = DefaultAPIHost
	}
	return host, port, nil
}

// APIServerStore provides API server config operations.
type APIServerStore interface {
	Get(ctx context.Context, profileID int64) (*APIServer, error)
	Save(ctx context.Context, a *APIServer) error
}

// APIServers returns an APIServerStore for this database.
func (db *DB) APIServers() APIServerStore {
	return &apiServerStore{db: db}
}

type apiServerStore struct {
	db *DB
}

func (s *apiServerStore) Get(ctx context.Context, profileID int64) (*APIServer, error) {
	a := &APIServer{ProfileID: profileID}
	var updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT host, port, updated_at FROM api_servers WHERE profile_id = ?
	`, profileID).Scan(&a.Host, &a.Port, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAPIServerNotFound
	}
	if err != nil {
		return nil, err
	}
	a.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
	return a, nil
}

// Save upserts the listen address of a.ProfileID, filling in defaults for an
// empty host or zero port.
func (s *apiServerStore) Save(ctx context.Context, a *APIServer) error {
	if a.Host == "" {
		a.Host = DefaultAPIHost
	}
	if a.Port == 0 {
		a.Port = DefaultAPIPort
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO api_servers (profile_id, host, port)
		VALUES (?, ?, ?)
		ON CONFLICT(profile_id) DO UPDATE SET
			host = excluded.host,
			port = excluded.port,
			updated_at = datetime('now')
	`, a.ProfileID, a.Host, a.Port)
	if err != nil {
		return fmt.Errorf("failed to save API server config: %w", err)
	}
	return nil
}
