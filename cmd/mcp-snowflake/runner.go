package main

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"reflect"
	"strings"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/viant/afs"
	"github.com/viant/mcp-protocol/authorization"
	"github.com/viant/mcp-protocol/oauth2/meta"
	"github.com/viant/mcp-protocol/schema"
	"github.com/viant/mcp-snowflake/auth"
	"github.com/viant/mcp-snowflake/config"
	"github.com/viant/mcp-snowflake/cortex"
	"github.com/viant/mcp-snowflake/db/session"
	"github.com/viant/mcp-snowflake/mcp"
	"github.com/viant/mcp-snowflake/policy"
	mcpsrv "github.com/viant/mcp/server"
	serverauth "github.com/viant/mcp/server/auth"
	"github.com/viant/scy"
	"github.com/viant/scy/auth/flow"
	"github.com/viant/scy/cred"
)

const (
	serverName    = "mcp-snowflake"
	serverVersion = "0.4.0"
)

// run is invoked by main and orchestrates CLI parsing, credential resolution,
// session setup, server construction and graceful shutdown.
func run(argv []string) error {
	opts, err := parseFlags(argv)
	if err != nil || opts == nil {
		return err
	}
	if err = configureLogging(opts.LogLevel); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service, err := newService(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := service.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close Snowflake session")
		}
	}()

	oauthPolicy, err := loadOauthPolicy(ctx, opts.Oauth2Config)
	if err != nil {
		return err
	}
	srvOpts := append(coreOptions(service), oauthOptions(oauthPolicy)...)
	srv, err := mcpsrv.New(srvOpts...)
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}

	var httpSrv *http.Server
	var stdioCh <-chan error
	switch opts.Transport {
	case "sse", "streamable-http":
		httpSrv = startHTTP(ctx, srv, opts.HTTPAddr, opts.Endpoint)
	default:
		stdioCh = startStdio(ctx, srv)
	}

	if err := waitForShutdown(ctx, stdioCh); err != nil {
		return err
	}
	return gracefulShutdown(httpSrv)
}

func parseFlags(args []string) (*Options, error) {
	opts := &Options{}
	_, err := flags.ParseArgs(opts, args)
	if err == nil {
		return opts, nil
	}
	// flags returns *flags.Error for help – treat as non error.
	var fe *flags.Error
	if errors.As(err, &fe) && fe.Type == flags.ErrHelp {
		return nil, nil
	}
	return nil, err
}

// configureLogging writes to stderr; stdout belongs to the stdio transport.
func configureLogging(level string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	return nil
}

// newService resolves credentials, loads the service configuration and opens
// the shared session.
func newService(ctx context.Context, opts *Options) (*mcp.Service, error) {
	if err := applyProfile(opts); err != nil {
		return nil, err
	}
	if err := loadSecret(ctx, opts); err != nil {
		return nil, err
	}
	authOptions, err := buildAuthOptions(ctx, opts)
	if err != nil {
		return nil, err
	}
	authService := auth.New(authOptions)
	if missing := opts.missing(authService.IsContainer()); len(missing) > 0 {
		return nil, &MissingArgumentsError{Missing: missing}
	}
	services, err := config.Load(ctx, opts.ServiceConfigFile)
	if err != nil {
		return nil, err
	}
	credentials, err := authService.Resolve()
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("environment", string(credentials.Environment)).
		Str("account", credentials.Account).
		Str("user", credentials.User).
		Str("host", authService.Host()).
		Msg("resolved Snowflake credentials")

	sess := session.New(&session.Config{MaxConnections: opts.MaxConnections}, credentials)
	if err = sess.Open(ctx); err != nil {
		return nil, fmt.Errorf("failed to open Snowflake session: %w", err)
	}
	client := cortex.NewClient(authService, nil)
	return mcp.NewService(&mcp.Config{Services: services, UseData: opts.UseData}, sess, client), nil
}

// applyProfile merges the connections.toml profile when one is selected.
func applyProfile(opts *Options) error {
	if opts.ConnectionName == "" {
		return nil
	}
	profile, err := loadProfile(connectionsFile(), opts.ConnectionName)
	if err != nil {
		return err
	}
	profile.apply(opts)
	return nil
}

// loadSecret fills user and token from an encrypted scy secret.
func loadSecret(ctx context.Context, opts *Options) error {
	if opts.Secret == "" {
		return nil
	}
	resource := scy.NewResource(reflect.TypeOf(&cred.Basic{}), opts.Secret, "blowfish://default")
	secret, err := scy.New().Load(ctx, resource)
	if err != nil {
		return fmt.Errorf("unable to load secret %v: %w", opts.Secret, err)
	}
	basic, ok := secret.Target.(*cred.Basic)
	if !ok {
		return fmt.Errorf("unexpected secret type %T", secret.Target)
	}
	if opts.User == "" {
		opts.User = basic.Username
	}
	if opts.password() == "" {
		opts.Password = basic.Password
	}
	return nil
}

func buildAuthOptions(ctx context.Context, opts *Options) (*auth.Options, error) {
	key, err := loadPrivateKey(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &auth.Options{
		Account:            opts.Account,
		Host:               opts.Host,
		User:               opts.User,
		Password:           opts.password(),
		Token:              opts.Token,
		Role:               opts.Role,
		Warehouse:          opts.Warehouse,
		Passcode:           opts.Passcode,
		PasscodeInPassword: opts.PasscodeInPassword,
		Authenticator:      opts.Authenticator,
		PrivateKey:         key,
	}, nil
}

func loadPrivateKey(ctx context.Context, opts *Options) (*rsa.PrivateKey, error) {
	data := []byte(opts.PrivateKey)
	if len(data) == 0 && opts.PrivateKeyFile != "" {
		var err error
		if data, err = afs.New().DownloadWithURL(ctx, config.NormalizeURL(opts.PrivateKeyFile)); err != nil {
			return nil, fmt.Errorf("failed to read private key %v: %w", opts.PrivateKeyFile, err)
		}
	}
	if len(data) == 0 {
		return nil, nil
	}
	return auth.ParsePrivateKey(data, opts.PrivateKeyPwd)
}

// loadOauthPolicy reads the encrypted OAuth2 client protecting HTTP transports.
func loadOauthPolicy(ctx context.Context, URL string) (*policy.Policy, error) {
	if URL == "" {
		return nil, nil
	}
	resource := scy.NewResource(reflect.TypeOf(&cred.Oauth2Config{}), URL, "blowfish://default")
	secret, err := scy.New().Load(ctx, resource)
	if err != nil {
		return nil, fmt.Errorf("unable to load OAuth2 config %v: %w", URL, err)
	}
	oauthCfg, ok := secret.Target.(*cred.Oauth2Config)
	if !ok {
		return nil, fmt.Errorf("unexpected OAuth2 secret type %T", secret.Target)
	}
	return &policy.Policy{RequireIdentityToken: true, Oauth2Config: &oauthCfg.Config}, nil
}

// coreOptions returns server options that are always enabled.
func coreOptions(service *mcp.Service) []mcpsrv.Option {
	return []mcpsrv.Option{
		mcpsrv.WithNewHandler(mcp.NewHandler(service)),
		mcpsrv.WithImplementation(schema.Implementation{Name: serverName, Version: serverVersion}),
	}
}

// oauthOptions conditionally builds auth-related server options.
func oauthOptions(p *policy.Policy) []mcpsrv.Option {
	if p == nil || p.Oauth2Config == nil {
		return nil
	}
	authPolicy := &authorization.Policy{
		Global: &authorization.Authorization{
			UseIdToken: p.RequireIdentityToken,
			ProtectedResourceMetadata: &meta.ProtectedResourceMetadata{
				AuthorizationServers: []string{p.Oauth2Config.Endpoint.AuthURL},
			},
		},
		ExcludeURI: "/sse",
	}
	bff := &serverauth.BackendForFrontend{
		Client:                      p.Oauth2Config,
		AuthorizationExchangeHeader: flow.AuthorizationExchangeHeader,
	}
	authSvc, err := serverauth.New(&serverauth.Config{Policy: authPolicy, BackendForFrontend: bff})
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialise auth service, running without OAuth")
		return nil
	}
	return []mcpsrv.Option{
		mcpsrv.WithAuthorizer(authSvc.Middleware),
		mcpsrv.WithProtectedResourcesHandler(authSvc.ProtectedResourcesHandler),
	}
}

// startHTTP boots the HTTP transports, optionally under an endpoint prefix.
func startHTTP(ctx context.Context, srv *mcpsrv.Server, addr, endpoint string) *http.Server {
	httpSrv := srv.HTTP(ctx, addr)
	mount(httpSrv, endpoint)
	go func() {
		log.Info().Str("addr", addr).Str("endpoint", endpoint).Msg("mcp-snowflake listening on HTTP")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()
	return httpSrv
}

// mount serves handler routes under endpoint.
func mount(httpSrv *http.Server, endpoint string) {
	prefix := strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if prefix == "" {
		return
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	handler := httpSrv.Handler
	if handler == nil {
		handler = http.DefaultServeMux
	}
	httpSrv.Handler = http.StripPrefix(prefix, handler)
}

// startStdio boots the stdio transport.
func startStdio(ctx context.Context, srv *mcpsrv.Server) <-chan error {
	ch := make(chan error, 1)
	go func() {
		log.Info().Msg("mcp-snowflake listening on stdio")
		ch <- srv.Stdio(ctx).ListenAndServe()
	}()
	return ch
}

// waitForShutdown blocks until CTRL-C or the stdio transport terminates.
func waitForShutdown(ctx context.Context, stdio <-chan error) error {
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		return nil
	case err := <-stdio:
		if err != nil {
			return fmt.Errorf("stdio server terminated: %w", err)
		}
	}
	return nil
}

// gracefulShutdown attempts to close the HTTP server within 5s.
func gracefulShutdown(srv *http.Server) error {
	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
