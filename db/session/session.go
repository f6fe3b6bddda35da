package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/viant/mcp-snowflake/auth"
	"github.com/viant/mcp-snowflake/db/driver"
)

// VerifyStatement is run once after connecting to prove the session works.
const VerifyStatement = "SELECT 'MCP Server Snowflake'"

// Version is reported in the query tag.
type Version struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
}

// Tag annotates every query issued by the server in Snowflake query history.
type Tag struct {
	Origin  string  `json:"origin"`
	Name    string  `json:"name"`
	Version Version `json:"version"`
}

// DefaultTag is the query tag attached to the session.
var DefaultTag = Tag{Origin: "sf_sit", Name: "mcp_server", Version: Version{Major: 0, Minor: 4}}

// Config controls session construction.
type Config struct {
	Tag            *Tag
	MaxConnections int
}

func (c *Config) init() {
	if c.Tag == nil {
		tag := DefaultTag
		c.Tag = &tag
	}
	if c.MaxConnections <= 0 {
		c.MaxConnections = 1
	}
}

// Session is the server's single long-lived database session. It moves from
// closed to open on Open and back to closed on Close.
type Session struct {
	config  *Config
	connect func(ctx context.Context) (*sqlx.DB, error)
	db      *sqlx.DB
	mux     sync.RWMutex
	open    uint32
}

// IsOpen reports whether the session is usable.
func (s *Session) IsOpen() bool {
	return atomic.LoadUint32(&s.open) == 1
}

// Open connects and verifies the session. On failure the session stays closed.
func (s *Session) Open(ctx context.Context) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.db != nil {
		return nil
	}
	db, err := s.connect(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	db.SetMaxOpenConns(s.config.MaxConnections)
	db.SetMaxIdleConns(s.config.MaxConnections)
	var label string
	if err = db.QueryRowxContext(ctx, VerifyStatement).Scan(&label); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to verify connection: %w", err)
	}
	s.db = db
	atomic.StoreUint32(&s.open, 1)
	log.Debug().Str("verify", label).Msg("session opened")
	return nil
}

// Close releases the session. Closing a closed session is a no-op.
func (s *Session) Close() error {
	s.mux.Lock()
	defer s.mux.Unlock()
	atomic.StoreUint32(&s.open, 0)
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// DB returns the underlying handle of an open session.
func (s *Session) DB() (*sqlx.DB, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	if s.db == nil {
		return nil, ErrSessionClosed
	}
	return s.db, nil
}

// Scoped hands fn a cursor for one call and closes it on every exit path,
// panics included. The session itself stays open.
func (s *Session) Scoped(ctx context.Context, structured bool, fn func(cursor *Cursor) error) error {
	db, err := s.DB()
	if err != nil {
		return err
	}
	conn, err := db.Connx(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire cursor: %w", err)
	}
	cursor := &Cursor{conn: conn, structured: structured}
	defer cursor.Close()
	return fn(cursor)
}

// Fetch runs statement on a structured cursor and returns rows as mappings.
func (s *Session) Fetch(ctx context.Context, statement string) ([]map[string]interface{}, error) {
	var ret []map[string]interface{}
	err := s.Scoped(ctx, true, func(cursor *Cursor) error {
		var err error
		ret, err = cursor.FetchMaps(ctx, statement)
		return err
	})
	return ret, err
}

// New creates a closed Snowflake session for credentials.
func New(config *Config, credentials *auth.Credentials) *Session {
	if config == nil {
		config = &Config{}
	}
	config.init()
	ret := &Session{config: config}
	ret.connect = func(ctx context.Context) (*sqlx.DB, error) {
		tag, err := json.Marshal(config.Tag)
		if err != nil {
			return nil, err
		}
		cfg, err := driver.Config(credentials, map[string]string{"query_tag": string(tag)})
		if err != nil {
			return nil, err
		}
		return sqlx.NewDb(sql.OpenDB(driver.Connector(cfg)), driver.Name), nil
	}
	return ret
}

// NewWithDB creates a closed session that adopts db on Open.
func NewWithDB(config *Config, db *sqlx.DB) *Session {
	if config == nil {
		config = &Config{}
	}
	config.init()
	return &Session{config: config, connect: func(ctx context.Context) (*sqlx.DB, error) {
		return db, nil
	}}
}
