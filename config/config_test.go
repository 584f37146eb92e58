// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/pixivfe/biliapi/core/audit"
	"codeberg.org/pixivfe/biliapi/core/wbi"
)

/*
LoadConfig touches the process environment and the global logger, so the
tests that call it do not run in parallel.
*/

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := &ClientConfig{}
	require.NoError(t, cfg.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")))

	assert.Equal(t, 30*time.Second, cfg.Request.Timeout)
	assert.Equal(t, "https://www.bilibili.com/", cfg.Request.Referer)
	assert.True(t, cfg.Signing.Ticket)
	assert.Equal(t, time.Hour, cfg.Signing.WBIKeyCacheTTL)
	assert.True(t, cfg.Credential().IsZero())
}

func TestLoadConfigPrecedence(t *testing.T) {
	path := writeFile(t, "config.yaml", `
basic:
  cookie: "SESSDATA=from-cookie; bili_jct=cookie-jct; DedeUserID=2"
  sessdata: from-yaml
request:
  timeout: 10s
  referer: https://space.bilibili.com/
  rateLimit: 4
signing:
  wbiKeyCacheTTL: 30m
`)

	// overwrite fields replace YAML values, the others only fill gaps
	t.Setenv("BILIAPI_TIMEOUT", "5s")
	t.Setenv("BILIAPI_SESSDATA", "from-env")
	t.Setenv("BILIAPI_BILI_JCT", "env-jct")

	cfg := &ClientConfig{}
	require.NoError(t, cfg.LoadConfig(path))

	assert.Equal(t, 5*time.Second, cfg.Request.Timeout)
	assert.Equal(t, "https://space.bilibili.com/", cfg.Request.Referer)
	assert.Equal(t, 4, cfg.Request.RateLimit)
	assert.Equal(t, 1, cfg.Request.RateBurst)
	assert.Equal(t, 30*time.Minute, cfg.Signing.WBIKeyCacheTTL)

	cred := cfg.Credential()
	assert.Equal(t, "from-yaml", cred.SESSDATA)
	assert.Equal(t, "env-jct", cred.BiliJct)
	assert.Equal(t, "2", cred.DedeUserID)
}

func TestLoadConfigFromEnvFile(t *testing.T) {
	t.Setenv("BILIAPI_CONFIGFILE", writeFile(t, "custom.yaml", "log:\n  logLevel: warn\n"))

	cfg := &ClientConfig{}
	require.NoError(t, cfg.LoadConfig(""))

	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		yaml    string
		wantErr error
	}{
		{
			name:    "Malformed Accept-Language",
			env:     map[string]string{"BILIAPI_ACCEPT_LANGUAGE": "en;q=abc"},
			wantErr: errInvalidAcceptLanguage,
		},
		{
			name:    "Relative referer",
			env:     map[string]string{"BILIAPI_REFERER": "www.bilibili.com"},
			wantErr: errInvalidURL,
		},
		{
			name:    "Zero timeout",
			env:     map[string]string{"BILIAPI_TIMEOUT": "0s"},
			wantErr: errInvalidTimeout,
		},
		{
			name:    "Negative rate limit",
			env:     map[string]string{"BILIAPI_RATE_LIMIT": "-1"},
			wantErr: errInvalidRateLimit,
		},
		{
			name:    "Unknown log level",
			env:     map[string]string{"BILIAPI_LOG_LEVEL": "verbose"},
			wantErr: errInvalidLogLevel,
		},
		{
			name:    "Negative refresh margin",
			env:     map[string]string{"BILIAPI_TICKET_REFRESH_MARGIN": "-1m"},
			wantErr: errInvalidRefreshMargin,
		},
		{
			name: "Unparseable duration",
			env:  map[string]string{"BILIAPI_TIMEOUT": "soon"},
		},
		{
			name: "Unknown YAML key",
			yaml: "request:\n  proxy: http://localhost\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := filepath.Join(t.TempDir(), "missing.yaml")
			if tt.yaml != "" {
				path = writeFile(t, "config.yaml", tt.yaml)
			}

			err := (&ClientConfig{}).LoadConfig(path)
			require.Error(t, err)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestCredentialMerge(t *testing.T) {
	t.Parallel()

	cfg := &ClientConfig{}
	cfg.Basic.Cookie = `SESSDATA=abc%2C123; bili_jct=jct; buvid3="quoted"; other=x`
	cfg.Basic.Buvid3 = "explicit"

	cred := cfg.Credential()
	assert.Equal(t, "abc%2C123", cred.SESSDATA)
	assert.Equal(t, "jct", cred.BiliJct)
	assert.Equal(t, "explicit", cred.Buvid3)
}

func TestUserAgentFunc(t *testing.T) {
	t.Parallel()

	cfg := &ClientConfig{}
	cfg.Request.UserAgent = "fixed/1.0"
	assert.Equal(t, "fixed/1.0", cfg.UserAgentFunc()())

	cfg.Request.UserAgent = RandomUserAgent
	ua := cfg.UserAgentFunc()()
	assert.True(t, slices.ContainsFunc(desktopAgents, func(agents []string) bool {
		return slices.Contains(agents, ua)
	}))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := &ClientConfig{}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())

	cfg.Signing.WBIKeyCacheTTL = 48 * time.Hour
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 48*time.Hour, cfg.Signing.WBIKeyCacheTTL, "Validate leaves the config untouched")

	require.NoError(t, cfg.validateAndSet())
	assert.Equal(t, wbi.MaxCacheTTL, cfg.Signing.WBIKeyCacheTTL)

	cfg.Signing.WBIKeyCacheTTL = -time.Second
	require.ErrorIs(t, cfg.Validate(), errInvalidCacheTTL)

	cfg.Signing.WBIKeyCacheTTL = 0
	cfg.Development.SaveResponses = true
	cfg.Development.ResponseSaveLocation = ""
	require.ErrorIs(t, cfg.Validate(), errEmptyResponseLocation)
}

func TestSetupAuditEnablesResponseSaving(t *testing.T) {
	prevSave, prevDir := audit.SaveResponses, audit.ResponseDirectory
	prevLevel, prevLogger := zerolog.GlobalLevel(), log.Logger

	t.Cleanup(func() {
		audit.SaveResponses, audit.ResponseDirectory = prevSave, prevDir
		zerolog.SetGlobalLevel(prevLevel)
		log.Logger = prevLogger
	})

	dir := filepath.Join(t.TempDir(), "responses")

	cfg := &ClientConfig{}
	cfg.SetDefaults()
	cfg.Development.SaveResponses = true
	cfg.Development.ResponseSaveLocation = dir

	require.NoError(t, cfg.setupAudit())

	assert.True(t, audit.SaveResponses)
	assert.Equal(t, dir, audit.ResponseDirectory)
	assert.DirExists(t, dir)
}

func TestRedactedYAML(t *testing.T) {
	t.Parallel()

	cfg := &ClientConfig{}
	cfg.SetDefaults()
	cfg.Basic.Cookie = "SESSDATA=secret-session"
	cfg.Basic.BiliJct = "secret-jct"
	cfg.Basic.DedeUserID = "2"

	out, err := cfg.YAML()
	require.NoError(t, err)

	text := string(out)
	assert.NotContains(t, text, "secret-session")
	assert.NotContains(t, text, "secret-jct")
	assert.Contains(t, text, redactedValue)
	assert.Contains(t, text, "dedeUserID: \"2\"")
	assert.Contains(t, text, "timeout: 30s")

	assert.Equal(t, "secret-jct", cfg.Basic.BiliJct, "the original is not modified")
}

func TestReadEnvRejectsNonStruct(t *testing.T) {
	t.Parallel()

	var n int

	require.ErrorIs(t, readEnv(n), errExpectedPointerToStruct)
	require.ErrorIs(t, readEnv(&n), errExpectedPointerToStruct)
}

func TestTryLoadDotEnv(t *testing.T) {
	t.Setenv("BILIAPI_TEST_PRESET", "from-process")

	path := writeFile(t, ".env", `
# comment
BILIAPI_TEST_QUOTED="quoted value"
BILIAPI_TEST_PRESET=from-file
not a pair
`)

	t.Cleanup(func() { _ = os.Unsetenv("BILIAPI_TEST_QUOTED") })

	require.NoError(t, tryLoadDotEnv(path))
	require.NoError(t, tryLoadDotEnv(filepath.Join(t.TempDir(), ".env")), "missing files are skipped")

	assert.Equal(t, "quoted value", os.Getenv("BILIAPI_TEST_QUOTED"))
	assert.Equal(t, "from-process", os.Getenv("BILIAPI_TEST_PRESET"))
}

func TestGetRandomUserAgent(t *testing.T) {
	t.Parallel()

	for range 20 {
		ua := GetRandomUserAgent()
		require.NotEmpty(t, ua)
		assert.Contains(t, ua, "Mozilla/5.0")
	}
}

func TestRevision(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "unknown", (&buildInfo{}).Revision())
	assert.Equal(t, "2025-01-02-0123abcd+dirty", (&buildInfo{
		VcsRevision: "0123abcdef",
		VcsTime:     "2025-01-02T03:04:05Z",
		VcsModified: true,
	}).Revision())
}
