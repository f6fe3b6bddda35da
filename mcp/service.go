package mcp

import (
	"github.com/viant/mcp-snowflake/config"
	"github.com/viant/mcp-snowflake/cortex"
	"github.com/viant/mcp-snowflake/db/object"
	"github.com/viant/mcp-snowflake/db/query"
	"github.com/viant/mcp-snowflake/db/semantic"
	"github.com/viant/mcp-snowflake/db/session"
	"github.com/viant/mcp-snowflake/policy"
)

// DefaultClassifierCacheSize bounds the statement classification cache.
const DefaultClassifierCacheSize = 512

type Service struct {
	services   *config.Services
	policy     *policy.Policy
	classifier *policy.Classifier
	session    *session.Session
	cortex     *cortex.Client
	query      *query.Service
	objects    *object.Service
	semantic   *semantic.Service
	modelsURL  string

	// useText determines which field (`text` vs `data`) tool results populate.
	useText bool
}

// Policy returns the statement policy enforced before dispatch.
func (s *Service) Policy() *policy.Policy {
	return s.policy
}

// Session returns the shared Snowflake session.
func (s *Service) Session() *session.Session {
	return s.session
}

// UseTextField indicates whether tool results go to the `text` field (true,
// default) or the `data` field (false).
func (s *Service) UseTextField() bool {
	return s.useText
}

// Close releases the shared session.
func (s *Service) Close() error {
	if s.session == nil {
		return nil
	}
	return s.session.Close()
}

func NewService(cfg *Config, sess *session.Session, client *cortex.Client) *Service {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.Init()

	ret := &Service{
		services:   cfg.Services,
		policy:     cfg.Services.Policy(),
		classifier: policy.NewClassifier(DefaultClassifierCacheSize),
		session:    sess,
		cortex:     client,
		modelsURL:  cfg.ModelsURL,
		useText:    !cfg.UseData,
	}
	if sess != nil {
		ret.query = query.New(sess)
		ret.objects = object.New(sess)
		ret.semantic = semantic.New(sess)
	}
	return ret
}
