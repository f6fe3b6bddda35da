package main

// Options defines CLI flags for the mcp-snowflake server. Unset flags fall back
// to the environment and then to the selected connections.toml profile.
type Options struct {
	Account            string `long:"account" env:"SNOWFLAKE_ACCOUNT" description:"Snowflake account identifier"`
	Host               string `long:"host" env:"SNOWFLAKE_HOST" description:"Snowflake host, defaults to <account>.snowflakecomputing.com"`
	User               string `long:"user" env:"SNOWFLAKE_USER" description:"Snowflake user name"`
	Password           string `long:"password" env:"SNOWFLAKE_PASSWORD" description:"Password or programmatic access token"`
	PAT                string `long:"pat" env:"SNOWFLAKE_PAT" description:"Programmatic access token (alias of --password)"`
	Token              string `long:"token" env:"SNOWFLAKE_TOKEN" description:"OAuth access token for --authenticator oauth"`
	Role               string `long:"role" env:"SNOWFLAKE_ROLE" description:"Session role"`
	Warehouse          string `long:"warehouse" env:"SNOWFLAKE_WAREHOUSE" description:"Session warehouse"`
	Passcode           string `long:"passcode" env:"SNOWFLAKE_PASSCODE" description:"MFA passcode"`
	PasscodeInPassword bool   `long:"passcode-in-password" description:"The MFA passcode is appended to the password"`
	PrivateKey         string `long:"private-key" env:"SNOWFLAKE_PRIVATE_KEY" description:"PEM encoded private key for key pair authentication"`
	PrivateKeyFile     string `long:"private-key-file" env:"SNOWFLAKE_PRIVATE_KEY_FILE" description:"Path to a PEM encoded private key"`
	PrivateKeyPwd      string `long:"private-key-pwd" env:"SNOWFLAKE_PRIVATE_KEY_PWD" description:"Private key passphrase"`
	Authenticator      string `long:"authenticator" env:"SNOWFLAKE_AUTHENTICATOR" description:"snowflake, snowflake_jwt, programmatic_access_token, externalbrowser, oauth, username_password_mfa or an Okta URL"`
	ConnectionName     string `long:"connection-name" env:"SNOWFLAKE_DEFAULT_CONNECTION_NAME" description:"Profile name in ~/.snowflake/connections.toml"`
	Secret             string `long:"secret" description:"scy URL of an encrypted user/token secret, e.g. ~/.secret/snowflake.json"`

	ServiceConfigFile string `short:"c" long:"service-config-file" env:"SERVICE_CONFIG_FILE" description:"Path or URL of the YAML service configuration"`
	Transport         string `short:"t" long:"transport" choice:"stdio" choice:"sse" choice:"streamable-http" default:"stdio" description:"MCP transport"`
	HTTPAddr          string `short:"a" long:"addr" default:"localhost:9000" description:"HTTP listen address for sse and streamable-http"`
	Endpoint          string `long:"endpoint" env:"SNOWFLAKE_MCP_ENDPOINT" description:"Path prefix the HTTP transports are mounted under"`

	// Return tool results using the `data` field instead of the default `text` field.
	UseData        bool   `short:"d" long:"data" description:"Return tool results using the 'data' field of CallToolResultContentElem (default uses 'text')"`
	LogLevel       string `long:"log-level" env:"SNOWFLAKE_MCP_LOG_LEVEL" default:"info" description:"trace, debug, info, warn or error"`
	MaxConnections int    `long:"max-connections" default:"1" description:"Maximum open Snowflake connections"`
	Oauth2Config   string `short:"o" long:"oauth2config" description:"scy URL of an encrypted OAuth2 client configuration protecting the HTTP transports"`
}

// password returns the password, falling back to the token.
func (o *Options) password() string {
	if o.Password != "" {
		return o.Password
	}
	return o.PAT
}

// missing lists mandatory arguments without a value.
func (o *Options) missing(container bool) []string {
	var ret []string
	if o.ServiceConfigFile == "" {
		ret = append(ret, "service_config_file")
	}
	if !container && o.Account == "" {
		ret = append(ret, "account")
	}
	return ret
}
