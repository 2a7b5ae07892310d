package infra

import (
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	tc, err := cfg.TransportConfig()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, tc.Timeout)
}

func TestLoadConfig_File(t *testing.T) {
	t.Setenv("CREDS_PATH", "/etc/rivulet/credentials.hcl")
	path := writeFile(t, "rivulet.hcl", `
credentials_file = env("CREDS_PATH")

server {
  port = 9090
}

log {
  level = "debug"
  json  = true
}

transport {
  timeout = "5s"
}
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/etc/rivulet/credentials.hcl", cfg.CredentialsFile)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)
	tc, err := cfg.TransportConfig()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, tc.Timeout)
}

func TestLoadConfig_PartialBlocks(t *testing.T) {
	path := writeFile(t, "rivulet.hcl", `
server {}
log {
  json = true
}
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "30s", cfg.Transport.Timeout)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("RIV_API_PORT", "7000")
	t.Setenv("RIV_LOG_LEVEL", "trace")
	t.Setenv("RIV_CREDENTIALS_FILE", "creds.yaml")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "trace", cfg.Log.Level)
	assert.Equal(t, "creds.yaml", cfg.CredentialsFile)

	assert.True(t, cfg.NewLogger("test").IsTrace())
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]struct {
		env     map[string]string
		content string
		want    string
	}{
		"bad port env": {
			env:  map[string]string{"RIV_API_PORT": "http"},
			want: "RIV_API_PORT",
		},
		"port out of range": {
			content: "server {\n  port = 70000\n}\n",
			want:    "server",
		},
		"unknown level": {
			content: "log {\n  level = \"loud\"\n}\n",
			want:    `unknown level "loud"`,
		},
		"bad timeout": {
			content: "transport {\n  timeout = \"soon\"\n}\n",
			want:    "transport",
		},
		"negative timeout": {
			content: "transport {\n  timeout = \"-1s\"\n}\n",
			want:    "must not be negative",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			path := ""
			if tc.content != "" {
				path = writeFile(t, "rivulet.hcl", tc.content)
			}

			_, err := LoadConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig("/does/not/exist.hcl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration file not found")
}

func TestNewLogger(t *testing.T) {
	cfg := DefaultConfig()
	log := cfg.NewLogger("rivulet")
	assert.Equal(t, "rivulet", log.Name())
	assert.Equal(t, hclog.Info, log.GetLevel())
}
