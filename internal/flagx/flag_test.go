package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	cfgFlags := []string{"-c", "-config"}
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{"separate value", []string{"-c", "mg.json", "-s", "redis"}, cfgFlags, []string{"-c", "mg.json"}},
		{"equals form", []string{"-config=mg.json", "-m", "gemini"}, cfgFlags, []string{"-config=mg.json"}},
		{"equals value may start with dash", []string{"-config=-odd.json"}, cfgFlags, []string{"-config=-odd.json"}},
		{"positional and unknown dropped", []string{"chat", "-t", "30s"}, cfgFlags, []string{}},
		{"trailing flag without value", []string{"-s", "s3", "-c"}, cfgFlags, []string{"-c"}},
		{"dash token is not a value", []string{"-c", "-s", "memory"}, cfgFlags, []string{"-c"}},
		{"several allowed, order kept", []string{"-s", "sqlite", "-k", "k", "-c", "a.json", "-c", "b.json"},
			[]string{"-c", "-s"}, []string{"-s", "sqlite", "-c", "a.json", "-c", "b.json"}},
		{"nil args", nil, cfgFlags, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigFile(t *testing.T) {
	t.Setenv(ConfigEnvVar, "")

	t.Run("short -c with value", func(t *testing.T) {
		assert.Equal(t, "/path/short.json", ConfigFile([]string{"-c", "/path/short.json"}))
	})

	t.Run("long -config with value", func(t *testing.T) {
		assert.Equal(t, "/path/long.json", ConfigFile([]string{"-config", "/path/long.json"}))
	})

	t.Run("unknown flags are ignored", func(t *testing.T) {
		assert.Empty(t, ConfigFile([]string{"-x", "1", "-y", "2"}))
	})

	t.Run("multiple flags, last wins", func(t *testing.T) {
		assert.Equal(t, "/path/2.json", ConfigFile([]string{"-c", "/path/1.json", "-config", "/path/2.json"}))
	})

	t.Run("environment fallback", func(t *testing.T) {
		t.Setenv(ConfigEnvVar, "/etc/medigenie.json")
		assert.Equal(t, "/etc/medigenie.json", ConfigFile([]string{"-s", "redis"}))
	})

	t.Run("flag beats environment", func(t *testing.T) {
		t.Setenv(ConfigEnvVar, "/etc/medigenie.json")
		assert.Equal(t, "local.json", ConfigFile([]string{"-c=local.json"}))
	})
}

func TestJsonConfigFlags_ReadsProcessArgs(t *testing.T) {
	t.Setenv(ConfigEnvVar, "")
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin", "-l", ":9000", "-config", "/path/app.json"}
	assert.Equal(t, "/path/app.json", JsonConfigFlags())
}
