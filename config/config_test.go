package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{EnvBaseURI, EnvUsername, EnvPassword, EnvVersion} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, t.TempDir(), "clarity.yaml", `
baseuri: https://lims.example.com/
username: apiuser
password: "p@ss word "
main_log: /tmp/clarity.log
`)
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, &Config{
		BaseURI:  "https://lims.example.com/",
		Username: "apiuser",
		Password: "p@ss word ",
		Version:  "v2",
		MainLog:  "/tmp/clarity.log",
	}, c)
	assert.Equal(t, "https://lims.example.com/api/v2", c.APIRoot())
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvBaseURI, "https://other.example.com")
	t.Setenv(EnvVersion, "v3")

	c, err := Parse([]byte("baseuri: https://lims.example.com\nusername: u\npassword: p\n"))
	require.NoError(t, err)
	assert.Equal(t, "https://other.example.com", c.BaseURI)
	assert.Equal(t, "v3", c.Version)
	assert.Equal(t, "u", c.Username)

	t.Setenv(EnvUsername, "envuser")
	t.Setenv(EnvPassword, "envpass")
	c, err = Parse([]byte("{}"))
	require.NoError(t, err)
	assert.Equal(t, "envuser", c.Username)
	assert.Equal(t, "https://other.example.com/api/v3", c.APIRoot())
}

func TestInvalid(t *testing.T) {
	clearEnv(t)
	_, err := Parse([]byte("baseuri: https://lims.example.com\nusername: u\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password is not set")

	_, err = Parse([]byte("baseuri: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse clarity configuration")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(errors.Cause(err)))
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	second := writeFile(t, dir, "b.yaml", "")
	third := writeFile(t, dir, "c.yaml", "")

	got, err := find([]string{filepath.Join(dir, "a.yaml"), dir, second, third})
	require.NoError(t, err)
	assert.Equal(t, second, got)

	_, err = find([]string{filepath.Join(dir, "a.yaml")})
	assert.Equal(t, ErrNotFound, errors.Cause(err))
}

func TestSearchPathHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	paths := SearchPath()
	require.Len(t, paths, 3)
	assert.Equal(t, filepath.Join(home, ".clarity.yaml"), paths[0])
	assert.Equal(t, "/etc/clarity.yaml", paths[2])
}
