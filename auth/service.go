package auth

import (
	"crypto/rsa"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	// ContainerTokenPath is where Snowpark Container Services mounts the session token.
	ContainerTokenPath = "/snowflake/session/token"

	// HostSuffix completes a bare account identifier into a host name.
	HostSuffix = ".snowflakecomputing.com"

	tokenTypeHeader  = "X-Snowflake-Authorization-Token-Type"
	tokenTypePAT     = "PROGRAMMATIC_ACCESS_TOKEN"
	tokenTypeKeyPair = "KEYPAIR_JWT"
	tokenTypeOAuth   = "OAUTH"
)

// Environment identifies where the server runs.
type Environment string

const (
	EnvironmentHost      Environment = "host"
	EnvironmentContainer Environment = "container"
)

// Options holds the credentials supplied by the operator.
type Options struct {
	Account            string
	Host               string
	User               string
	Password           string
	// Token is an OAuth access token used with the oauth authenticator.
	Token              string
	Role               string
	Warehouse          string
	Passcode           string
	PasscodeInPassword bool
	Authenticator      string
	PrivateKey         *rsa.PrivateKey
	// TokenPath overrides ContainerTokenPath.
	TokenPath string
}

// Credentials is the resolved credential bundle used to open a session.
type Credentials struct {
	Environment        Environment
	Account            string
	Host               string
	User               string
	Password           string
	Token              string
	Role               string
	Warehouse          string
	Passcode           string
	PasscodeInPassword bool
	Authenticator      string
	PrivateKey         *rsa.PrivateKey
}

// Service resolves credentials and REST headers for the current environment.
type Service struct {
	options   *Options
	tokenPath string
	getenv    func(string) string
	now       func() time.Time
}

// IsContainer reports whether the container token file is present.
func (s *Service) IsContainer() bool {
	info, err := os.Stat(s.tokenPath)
	return err == nil && info.Mode().IsRegular()
}

// Environment returns the detected environment.
func (s *Service) Environment() Environment {
	if s.IsContainer() {
		return EnvironmentContainer
	}
	return EnvironmentHost
}

// Resolve returns the credential bundle for the detected environment.
func (s *Service) Resolve() (*Credentials, error) {
	if s.IsContainer() {
		token, err := s.containerToken()
		if err != nil {
			return nil, err
		}
		return &Credentials{
			Environment:   EnvironmentContainer,
			Host:          s.containerHost(),
			Account:       s.containerAccount(),
			Token:         token,
			Authenticator: "oauth",
			Role:          s.options.Role,
			Warehouse:     s.options.Warehouse,
		}, nil
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	o := s.options
	return &Credentials{
		Environment:        EnvironmentHost,
		Account:            o.Account,
		Host:               o.Host,
		User:               o.User,
		Password:           o.Password,
		Token:              o.Token,
		Role:               o.Role,
		Warehouse:          o.Warehouse,
		Passcode:           o.Passcode,
		PasscodeInPassword: o.PasscodeInPassword,
		Authenticator:      o.Authenticator,
		PrivateKey:         o.PrivateKey,
	}, nil
}

// Validate checks host-mode credentials, including PAT expiry.
func (s *Service) Validate() error {
	if s.IsContainer() {
		return nil
	}
	o := s.options
	var missing []string
	if o.Account == "" {
		missing = append(missing, "account")
	}
	if o.Password == "" && o.PrivateKey == nil && !interactive(o.Authenticator) {
		missing = append(missing, "password or private key")
	}
	if len(missing) > 0 {
		return &ConfigError{Missing: missing}
	}
	if o.Password != "" {
		if expiry, ok := tokenExpiry(o.Password); ok && !expiry.After(s.now()) {
			return &ConfigError{Message: fmt.Sprintf("programmatic access token expired at %s", expiry.UTC().Format(time.RFC3339))}
		}
	}
	return nil
}

// Headers returns the headers every Cortex REST call carries.
func (s *Service) Headers() (http.Header, error) {
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Accept", "application/json, text/event-stream")
	if s.IsContainer() {
		token, err := s.containerToken()
		if err != nil {
			return nil, err
		}
		header.Set("Authorization", "Bearer "+token)
		return header, nil
	}
	o := s.options
	switch {
	case o.Token != "":
		header.Set(tokenTypeHeader, tokenTypeOAuth)
		header.Set("Authorization", "Bearer "+o.Token)
	case o.Password != "":
		header.Set(tokenTypeHeader, tokenTypePAT)
		header.Set("Authorization", "Bearer "+o.Password)
	case o.PrivateKey != nil:
		token, err := KeyPairJWT(o.Account, o.User, o.PrivateKey, s.now())
		if err != nil {
			return nil, err
		}
		header.Set(tokenTypeHeader, tokenTypeKeyPair)
		header.Set("Authorization", "Bearer "+token)
	default:
		return nil, &ConfigError{Missing: []string{"password or private key"}}
	}
	return header, nil
}

// Host returns the Snowflake host or account used for REST calls.
func (s *Service) Host() string {
	if s.IsContainer() {
		if host := s.containerHost(); host != "" {
			return host
		}
		return s.containerAccount()
	}
	if s.options.Host != "" {
		return s.options.Host
	}
	return s.options.Account
}

// BaseURL returns the REST base URL.
func (s *Service) BaseURL() string {
	return BaseURL(s.Host())
}

// BaseURL completes host into an https URL unless it already carries a scheme.
func BaseURL(host string) string {
	if strings.HasPrefix(host, "https://") || strings.HasPrefix(host, "http://") {
		return strings.TrimRight(host, "/")
	}
	if !strings.HasSuffix(host, HostSuffix) {
		host += HostSuffix
	}
	return "https://" + host
}

// containerHost prefers the host injected into the container.
func (s *Service) containerHost() string {
	if host := s.getenv("SNOWFLAKE_HOST"); host != "" {
		return host
	}
	return s.options.Host
}

func (s *Service) containerAccount() string {
	if s.options.Account != "" {
		return s.options.Account
	}
	return s.getenv("SNOWFLAKE_ACCOUNT")
}

func (s *Service) containerToken() (string, error) {
	data, err := os.ReadFile(s.tokenPath)
	if err != nil {
		return "", fmt.Errorf("failed to read container token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func interactive(authenticator string) bool {
	switch strings.ToLower(authenticator) {
	case "externalbrowser", "oauth":
		return true
	}
	return false
}

// New creates a resolver for options.
func New(options *Options) *Service {
	if options == nil {
		options = &Options{}
	}
	ret := &Service{options: options, tokenPath: options.TokenPath, getenv: os.Getenv, now: time.Now}
	if ret.tokenPath == "" {
		ret.tokenPath = ContainerTokenPath
	}
	return ret
}
