// Package driver translates resolved credentials into a gosnowflake
// configuration and connector.
package driver

import (
	"database/sql/driver"
	"fmt"
	"net/url"
	"strings"

	"github.com/snowflakedb/gosnowflake"
	"github.com/viant/mcp-snowflake/auth"
)

// Name is the database/sql driver name registered by gosnowflake.
const Name = "snowflake"

// Application identifies the client in Snowflake query history.
const Application = "mcp-snowflake"

// Config builds a gosnowflake configuration with params as session parameters.
func Config(credentials *auth.Credentials, params map[string]string) (*gosnowflake.Config, error) {
	authType, oktaURL, err := authenticator(credentials)
	if err != nil {
		return nil, err
	}
	ret := &gosnowflake.Config{
		Account:                credentials.Account,
		User:                   credentials.User,
		Password:               credentials.Password,
		Role:                   credentials.Role,
		Warehouse:              credentials.Warehouse,
		Passcode:               credentials.Passcode,
		PasscodeInPassword:     credentials.PasscodeInPassword,
		PrivateKey:             credentials.PrivateKey,
		Token:                  credentials.Token,
		Authenticator:          authType,
		OktaURL:                oktaURL,
		Application:            Application,
		ClientSessionKeepAlive: true,
	}
	if host := credentials.Host; host != "" {
		if parsed, err := url.Parse(host); err == nil && parsed.Host != "" {
			host = parsed.Host
		}
		ret.Host = host
	}
	if len(params) > 0 {
		ret.Params = make(map[string]*string, len(params))
		for k, v := range params {
			value := v
			ret.Params[k] = &value
		}
	}
	return ret, nil
}

// Connector returns a database/sql connector for cfg.
func Connector(cfg *gosnowflake.Config) driver.Connector {
	return gosnowflake.NewConnector(gosnowflake.SnowflakeDriver{}, *cfg)
}

func authenticator(credentials *auth.Credentials) (gosnowflake.AuthType, *url.URL, error) {
	name := strings.ToLower(strings.TrimSpace(credentials.Authenticator))
	switch name {
	case "":
		if credentials.Token != "" {
			return gosnowflake.AuthTypeOAuth, nil, nil
		}
		if credentials.Password == "" && credentials.PrivateKey != nil {
			return gosnowflake.AuthTypeJwt, nil, nil
		}
		return gosnowflake.AuthTypeSnowflake, nil, nil
	case "snowflake", "programmatic_access_token":
		return gosnowflake.AuthTypeSnowflake, nil, nil
	case "snowflake_jwt", "jwt":
		return gosnowflake.AuthTypeJwt, nil, nil
	case "oauth":
		return gosnowflake.AuthTypeOAuth, nil, nil
	case "externalbrowser":
		return gosnowflake.AuthTypeExternalBrowser, nil, nil
	case "username_password_mfa":
		return gosnowflake.AuthTypeUsernamePasswordMFA, nil, nil
	}
	if strings.HasPrefix(name, "https://") {
		oktaURL, err := url.Parse(credentials.Authenticator)
		if err != nil {
			return 0, nil, fmt.Errorf("invalid okta authenticator URL: %w", err)
		}
		return gosnowflake.AuthTypeOkta, oktaURL, nil
	}
	return 0, nil, fmt.Errorf("unsupported authenticator: %v", credentials.Authenticator)
}
