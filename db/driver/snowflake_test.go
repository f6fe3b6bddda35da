package driver

import (
	"testing"

	"github.com/snowflakedb/gosnowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/mcp-snowflake/auth"
)

func TestConfig(t *testing.T) {
	testCases := []struct {
		description string
		credentials *auth.Credentials
		expectAuth  gosnowflake.AuthType
		expectHost  string
		expectErr   bool
	}{
		{description: "password", credentials: &auth.Credentials{Account: "a", User: "u", Password: "p"}, expectAuth: gosnowflake.AuthTypeSnowflake},
		{description: "container token", credentials: &auth.Credentials{Account: "a", Token: "t", Authenticator: "oauth", Host: "a.snowflakecomputing.com"}, expectAuth: gosnowflake.AuthTypeOAuth, expectHost: "a.snowflakecomputing.com"},
		{description: "host with scheme", credentials: &auth.Credentials{Account: "a", Password: "p", Host: "https://h.example"}, expectAuth: gosnowflake.AuthTypeSnowflake, expectHost: "h.example"},
		{description: "browser", credentials: &auth.Credentials{Account: "a", Authenticator: "externalbrowser"}, expectAuth: gosnowflake.AuthTypeExternalBrowser},
		{description: "mfa", credentials: &auth.Credentials{Account: "a", Password: "p", Authenticator: "USERNAME_PASSWORD_MFA"}, expectAuth: gosnowflake.AuthTypeUsernamePasswordMFA},
		{description: "okta", credentials: &auth.Credentials{Account: "a", Password: "p", Authenticator: "https://acme.okta.com"}, expectAuth: gosnowflake.AuthTypeOkta},
		{description: "unsupported", credentials: &auth.Credentials{Account: "a", Authenticator: "kerberos"}, expectErr: true},
	}
	for _, testCase := range testCases {
		cfg, err := Config(testCase.credentials, map[string]string{"query_tag": "tag"})
		if testCase.expectErr {
			assert.Error(t, err, testCase.description)
			continue
		}
		require.NoError(t, err, testCase.description)
		assert.EqualValues(t, testCase.expectAuth, cfg.Authenticator, testCase.description)
		assert.EqualValues(t, testCase.expectHost, cfg.Host, testCase.description)
		assert.True(t, cfg.ClientSessionKeepAlive, testCase.description)
		require.NotNil(t, cfg.Params["query_tag"], testCase.description)
		assert.EqualValues(t, "tag", *cfg.Params["query_tag"], testCase.description)
	}
}
