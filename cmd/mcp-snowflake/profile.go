package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Profile is one connection entry of connections.toml.
type Profile struct {
	Account           string `toml:"account"`
	Host              string `toml:"host"`
	User              string `toml:"user"`
	Password          string `toml:"password"`
	Token             string `toml:"token"`
	Role              string `toml:"role"`
	Warehouse         string `toml:"warehouse"`
	Authenticator     string `toml:"authenticator"`
	PrivateKeyFile    string `toml:"private_key_file"`
	PrivateKeyPath    string `toml:"private_key_path"`
	PrivateKeyFilePwd string `toml:"private_key_file_pwd"`
}

// connectionsFile returns the connections.toml location, honoring SNOWFLAKE_HOME.
func connectionsFile() string {
	if home := os.Getenv("SNOWFLAKE_HOME"); home != "" {
		return filepath.Join(home, "connections.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".snowflake", "connections.toml")
}

// loadProfile decodes the named connection; an empty name selects
// default_connection_name.
func loadProfile(location, name string) (*Profile, error) {
	var raw map[string]toml.Primitive
	meta, err := toml.DecodeFile(location, &raw)
	if err != nil {
		return nil, fmt.Errorf("failed to read connections file %v: %w", location, err)
	}
	if name == "" {
		if value, ok := raw["default_connection_name"]; ok {
			if err = meta.PrimitiveDecode(value, &name); err != nil {
				return nil, fmt.Errorf("invalid default_connection_name: %w", err)
			}
		}
	}
	value, ok := raw[name]
	if name == "" || !ok {
		return nil, fmt.Errorf("connection %q not found in %v", name, location)
	}
	ret := &Profile{}
	if err = meta.PrimitiveDecode(value, ret); err != nil {
		return nil, fmt.Errorf("invalid connection %q: %w", name, err)
	}
	return ret, nil
}

// apply fills options left empty by flags and environment. The profile token
// is the OAuth access token for the oauth authenticator and a programmatic
// access token otherwise.
func (p *Profile) apply(options *Options) {
	fill := func(target *string, value string) {
		if *target == "" {
			*target = value
		}
	}
	fill(&options.Account, p.Account)
	fill(&options.Host, p.Host)
	fill(&options.User, p.User)
	fill(&options.Authenticator, p.Authenticator)
	if strings.EqualFold(options.Authenticator, "oauth") {
		fill(&options.Token, p.Token)
	} else if options.password() == "" {
		fill(&options.Password, p.Password)
		fill(&options.PAT, p.Token)
	}
	fill(&options.Role, p.Role)
	fill(&options.Warehouse, p.Warehouse)
	if options.PrivateKey == "" {
		fill(&options.PrivateKeyFile, p.PrivateKeyFile)
		fill(&options.PrivateKeyFile, p.PrivateKeyPath)
	}
	fill(&options.PrivateKeyPwd, p.PrivateKeyFilePwd)
}
